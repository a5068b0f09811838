package types

const (
	// Field length bounds enforced by the validator and the schema.
	PointOfInterestNameMaxLen        = 50
	PointOfInterestDescriptionMaxLen = 200
)

// PointOfInterest matches the points_of_interest table structure. CityID is
// the owning city and never changes after creation.
type PointOfInterest struct {
	ID          int     `json:"id"`
	CityID      int     `json:"cityId"`
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
}

// PointOfInterestForCreation is the POST body for a new point of interest.
// The id is store-assigned and must not appear in the request.
type PointOfInterestForCreation struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
}

// PointOfInterestForUpdate carries the mutable fields only. It is the full
// replacement body for PUT and the merge target for PATCH.
type PointOfInterestForUpdate struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
}

// PatchOperation is a single field-replacement step. Op defaults to
// "replace" when omitted; any other kind is rejected.
type PatchOperation struct {
	Op    string  `json:"op"`
	Path  string  `json:"path"`
	Value *string `json:"value"`
}

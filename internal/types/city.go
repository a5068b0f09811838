package types

// City matches the cities table structure. PointsOfInterest is only
// populated when the caller explicitly asks for children.
type City struct {
	ID               int               `json:"id"`
	Name             string            `json:"name"`
	Description      string            `json:"description,omitempty"`
	PointsOfInterest []PointOfInterest `json:"pointsOfInterest,omitempty"`
}

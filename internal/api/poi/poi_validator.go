package poi

import (
	"fmt"
	"unicode/utf8"

	"github.com/FACorreiaa/city-info-api/internal/types"
)

// ValidatePointOfInterest checks a candidate's mutable fields and returns
// every violation found. An empty result means the candidate is acceptable.
// The same rules run on create, full update and after a patch merge.
func ValidatePointOfInterest(name string, description *string) []types.FieldViolation {
	var violations []types.FieldViolation

	if name == "" {
		violations = append(violations, types.FieldViolation{
			Field:   "name",
			Message: "You should provide the name value",
		})
	} else if utf8.RuneCountInString(name) > types.PointOfInterestNameMaxLen {
		violations = append(violations, types.FieldViolation{
			Field:   "name",
			Message: fmt.Sprintf("The name must not exceed %d characters", types.PointOfInterestNameMaxLen),
		})
	}

	if description != nil && utf8.RuneCountInString(*description) > types.PointOfInterestDescriptionMaxLen {
		violations = append(violations, types.FieldViolation{
			Field:   "description",
			Message: fmt.Sprintf("The description must not exceed %d characters", types.PointOfInterestDescriptionMaxLen),
		})
	}

	if name != "" && description != nil && name == *description {
		violations = append(violations, types.FieldViolation{
			Field:   "description",
			Message: "The description should be different from the name",
		})
	}

	return violations
}

package poi

import (
	"fmt"
	"strings"

	"github.com/FACorreiaa/city-info-api/internal/types"
)

// ApplyPatch merges an ordered batch of field-replacement operations into a
// detached snapshot of a point of interest's mutable fields and returns the
// merged copy; the input is never touched, so a caller can throw the result
// away when validation of the merged state fails.
//
// The whole batch is checked before any field is applied: one bad path or
// an operation kind other than replace rejects the document as a whole.
func ApplyPatch(current types.PointOfInterestForUpdate, ops []types.PatchOperation) (types.PointOfInterestForUpdate, error) {
	for _, op := range ops {
		if op.Op != "" && op.Op != "replace" {
			return current, &types.PatchError{
				Reason: fmt.Sprintf("operation %q is not supported, only replace is", op.Op),
				Err:    types.ErrUnsupportedPatchOp,
			}
		}
		switch normalizePath(op.Path) {
		case "name", "description":
		case "id", "cityid":
			return current, &types.PatchError{
				Reason: fmt.Sprintf("field %q is read-only", op.Path),
			}
		default:
			return current, &types.PatchError{
				Reason: fmt.Sprintf("unknown field path %q", op.Path),
			}
		}
	}

	// Later operations override earlier ones touching the same field.
	merged := current
	for _, op := range ops {
		switch normalizePath(op.Path) {
		case "name":
			if op.Value != nil {
				merged.Name = *op.Value
			} else {
				merged.Name = ""
			}
		case "description":
			merged.Description = op.Value
		}
	}
	return merged, nil
}

// normalizePath accepts both bare field names and JSON-pointer style paths
// with a leading slash.
func normalizePath(path string) string {
	return strings.ToLower(strings.TrimPrefix(path, "/"))
}

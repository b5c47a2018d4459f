package handler

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
)

// GenerateETag derives a strong ETag from the JSON form of a resource.
// Format: "<resource_type>-<first 16 hex chars of sha256>"
func GenerateETag(resourceType string, v any) string {
	raw, _ := json.Marshal(v)
	sum := sha256.Sum256(raw)
	return `"` + resourceType + "-" + hex.EncodeToString(sum[:8]) + `"`
}

// SetETagHeader sets the ETag header on the response.
func SetETagHeader(w http.ResponseWriter, etag string) {
	w.Header().Set("ETag", etag)
}

// CheckIfMatch checks if the If-Match header matches the current ETag.
// Returns true if:
//   - No If-Match header is present (ETag checking is optional)
//   - The If-Match header matches the current ETag
func CheckIfMatch(r *http.Request, currentETag string) bool {
	ifMatch := r.Header.Get("If-Match")
	if ifMatch == "" || ifMatch == "*" {
		return true
	}
	return ifMatch == currentETag
}

// RespondPreconditionFailed writes a 412 Precondition Failed response.
func RespondPreconditionFailed(w http.ResponseWriter, currentETag string) {
	respondStandardError(w, http.StatusPreconditionFailed, "PRECONDITION_FAILED",
		"resource has been modified", "", map[string]any{
			"currentETag": currentETag,
		})
}

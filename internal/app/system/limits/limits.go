// internal/app/system/limits/limits.go
package limits

// Request body size limits.
// These limits help prevent memory exhaustion from oversized requests.
const (
	// MaxJSONBodySize caps JSON request bodies. Every API payload is a
	// small document, so 1 MB is generous.
	MaxJSONBodySize = 1 << 20
)

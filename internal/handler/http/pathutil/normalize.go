package pathutil

import (
	"regexp"
	"strings"
)

// PathPattern represents a regex pattern and its corresponding normalized template.
type PathPattern struct {
	Pattern  *regexp.Regexp
	Template string
}

// pathPatterns defines the list of patterns for dynamic routes.
// Patterns are evaluated in order from most specific to least specific.
// Pre-compiled at initialization for optimal performance (<1μs per operation).
// uuidPattern matches the canonical 8-4-4-4-12 hex UUID representation used
// for every entity identity in this engine.
const uuidPattern = `[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}`

var pathPatterns = []*PathPattern{
	// Article routes with UUID identities
	{Pattern: regexp.MustCompile(`^/articles/` + uuidPattern + `$`), Template: "/articles/:id"},

	// Source routes with UUID identities
	{Pattern: regexp.MustCompile(`^/sources/` + uuidPattern + `$`), Template: "/sources/:id"},

	// Job routes with UUID identities
	{Pattern: regexp.MustCompile(`^/jobs/` + uuidPattern + `$`), Template: "/jobs/:id"},
	{Pattern: regexp.MustCompile(`^/jobs/` + uuidPattern + `/logs$`), Template: "/jobs/:id/logs"},
	{Pattern: regexp.MustCompile(`^/jobs/` + uuidPattern + `/cancel$`), Template: "/jobs/:id/cancel"},
}

// NormalizePath normalizes dynamic URL paths to prevent metrics label cardinality explosion.
// It converts paths with IDs (e.g., /articles/123) to template format (e.g., /articles/:id).
// Static paths and search endpoints remain unchanged.
//
// Performance: <1μs per operation (pre-compiled regex patterns)
//
// Examples:
//
//	NormalizePath("/articles/123")          // "/articles/:id"
//	NormalizePath("/articles/456")          // "/articles/:id"
//	NormalizePath("/sources/789")           // "/sources/:id"
//	NormalizePath("/articles/search")       // "/articles/search" (unchanged)
//	NormalizePath("/sources/search")        // "/sources/search" (unchanged)
//	NormalizePath("/health")                // "/health" (unchanged)
//	NormalizePath("/metrics")               // "/metrics" (unchanged)
//	NormalizePath("/auth/token")            // "/auth/token" (unchanged)
//	NormalizePath("/unknown/path/123")      // "/unknown/path/123" (no match, return original)
//
// Query parameters and trailing slashes are handled:
//
//	NormalizePath("/articles/123?page=1")   // "/articles/:id"
//	NormalizePath("/articles/123/")         // "/articles/:id"
func NormalizePath(path string) string {
	// Strip query parameters if present
	if idx := strings.IndexByte(path, '?'); idx != -1 {
		path = path[:idx]
	}

	// Strip trailing slash if present (except for root path)
	if len(path) > 1 && path[len(path)-1] == '/' {
		path = path[:len(path)-1]
	}

	// Try to match against known patterns
	for _, p := range pathPatterns {
		if p.Pattern.MatchString(path) {
			return p.Template
		}
	}

	// No match found, return original path
	// This is safe - static paths like /health, /metrics, /auth/token
	// and search endpoints like /articles/search will pass through unchanged
	return path
}

// GetExpectedCardinality returns the expected number of unique path labels
// after normalization. This is useful for capacity planning and monitoring.
//
// Expected cardinality calculation:
//   - Static endpoints: ~8-10 (health, metrics, auth, etc.)
//   - Template endpoints: ~10-15 (articles/:id, sources/:id, etc.)
//   - Search endpoints: ~4-6 (articles/search, sources/search, etc.)
//   - Total: ~20-30 unique path labels
func GetExpectedCardinality() int {
	// Count template patterns
	templateCount := len(pathPatterns)

	// Estimate static endpoints
	staticCount := 10 // /health, /metrics, /auth/token, etc.

	// Total expected cardinality
	return templateCount + staticCount
}

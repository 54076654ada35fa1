// Package htmlsanitize strips markup from user-supplied text fields.
//
// The API stores plain text only (names, descriptions, addresses), so a
// strict policy removes every tag rather than allowlisting a safe subset.
package htmlsanitize

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var policy = bluemonday.StrictPolicy()

// Sanitize removes all HTML markup from s and trims surrounding space.
func Sanitize(s string) string {
	return strings.TrimSpace(policy.Sanitize(s))
}

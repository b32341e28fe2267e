// Package version exposes the corral release version embedded at
// build time.
package version

import (
	_ "embed"
	"strings"
)

//go:embed VERSION
var raw string

// Get returns the release version with surrounding whitespace
// stripped.
func Get() string {
	return strings.TrimSpace(raw)
}

package utils

import (
	"path/filepath"
	"regexp"
)

var unsafeFilename = regexp.MustCompile(`[^\w.\-]`)

// SanitizeFilename strips directories and anything outside [\w.-].
func SanitizeFilename(name string) string {
	clean := unsafeFilename.ReplaceAllString(filepath.Base(name), "_")
	if clean == "" || clean == "." || clean == ".." {
		return "file"
	}
	return clean
}

// Package encoding normalizes text read from scene, OBJ and MTL files.
package encoding

import (
	"io"
	"path/filepath"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// NewReader returns a reader yielding UTF-8 text. A leading byte order mark
// is removed, and UTF-16 input marked by one is converted. Input without a
// BOM passes through unchanged.
func NewReader(r io.Reader) io.Reader {
	return transform.NewReader(r, unicode.BOMOverride(transform.Nop))
}

// NormalizePath converts a file reference written with either slash style to
// the host separator. Tools on Windows often emit backslashes.
func NormalizePath(path string) string {
	return filepath.FromSlash(strings.ReplaceAll(path, "\\", "/"))
}

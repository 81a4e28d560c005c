// Package filesource provides the file-reading capability the parsers
// consume: whole-file UTF-8 content, tolerating a leading byte-order mark.
package filesource

import (
	"fmt"
	"os"
	"strings"
)

// Source reads a file's entire content as text.
type Source interface {
	Read(path string) (string, error)
}

// OS reads from the local filesystem.
type OS struct{}

// Read returns the file content with any UTF-8 BOM stripped.
func (OS) Read(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("filesource: %w", err)
	}
	return strings.TrimPrefix(string(data), "\uFEFF"), nil
}

// Package version exposes the deployed release identifier, read from a
// version file written by the packaging step.
package version

import (
	"bufio"
	"os"
	"strings"
)

// Placeholder is reported when no version file is available. A missing
// file is not fatal: the backend runs fine without release metadata.
const Placeholder = "No version information."

// Read returns the first line of the version file at path, or Placeholder
// when the file cannot be read.
func Read(path string) string {
	f, err := os.Open(path)
	if err != nil {
		return Placeholder
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	if !scanner.Scan() {
		return Placeholder
	}
	v := strings.TrimSpace(scanner.Text())
	if v == "" {
		return Placeholder
	}
	return v
}

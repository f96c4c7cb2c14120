package compose

import (
	"errors"
	"io/fs"
	"os"

	"github.com/KazanKK/dataferry/internal/outcome"
)

// ValidateManifest checks that path exists and is a regular file. It has no
// side effects; the returned error is a validation failure naming the reason.
func ValidateManifest(path string) error {
	if path == "" {
		return outcome.Validation("manifest", "no compose manifest configured")
	}
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return outcome.Validation("manifest", "compose manifest not found at %s", path)
		}
		return outcome.Validation("manifest", "cannot stat compose manifest %s: %v", path, err)
	}
	if !info.Mode().IsRegular() {
		return outcome.Validation("manifest", "compose manifest %s is not a regular file", path)
	}
	return nil
}

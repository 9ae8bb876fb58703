package artifact

import "errors"

// ErrInvalidFilename is returned when a filename fails validation.
var ErrInvalidFilename = errors.New("invalid filename")

// ValidateFilename checks that a resolved filename is safe to display and
// to match against preview references. Returns ErrInvalidFilename if not.
//
// Rules:
//   - Must not be empty
//   - Must not exceed 255 characters
//   - Must not contain path separators (/, \) or null bytes
//   - Must not be "." or ".."
func ValidateFilename(name string) error {
	if name == "" || len(name) > 255 {
		return ErrInvalidFilename
	}
	for _, c := range name {
		if c == '/' || c == '\\' || c == '\x00' {
			return ErrInvalidFilename
		}
	}
	if name == "." || name == ".." {
		return ErrInvalidFilename
	}
	return nil
}

package updater

import "fmt"

// NetworkError reports a failed manifest or archive fetch. Language is empty
// for the checksum listing.
type NetworkError struct {
	Language string
	Err      error
}

func (e *NetworkError) Error() string {
	if e.Language == "" {
		return fmt.Sprintf("fetch checksums: %v", e.Err)
	}
	return fmt.Sprintf("fetch pages for '%s': %v", e.Language, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// ChecksumMismatchError reports a downloaded archive that does not match the
// published digest. The archive is never extracted.
type ChecksumMismatchError struct {
	Language string
	Expected string
	Actual   string
}

func (e *ChecksumMismatchError) Error() string {
	return fmt.Sprintf("checksum mismatch for '%s': expected %s, got %s", e.Language, e.Expected, e.Actual)
}

// ExtractError reports an archive that could not be unpacked or installed.
type ExtractError struct {
	Language string
	Err      error
}

func (e *ExtractError) Error() string {
	return fmt.Sprintf("install pages for '%s': %v", e.Language, e.Err)
}

func (e *ExtractError) Unwrap() error {
	return e.Err
}

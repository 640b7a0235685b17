package archive

import (
	"fmt"
	"strings"
)

// MismatchError reports an archive whose digest differs from the published one.
type MismatchError struct {
	Expected string
	Actual   string
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("checksum mismatch:\nactual:   %s\nexpected: %s", e.Actual, e.Expected)
}

// Verify compares a computed digest with the expected one (case-insensitive).
func Verify(actual, expected string) error {
	if expected == "" || !strings.EqualFold(actual, expected) {
		return &MismatchError{Expected: expected, Actual: actual}
	}
	return nil
}

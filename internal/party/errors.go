// internal/party/errors.go
package party

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates no record exists under the requested name. It is a
// normal branch for callers, not a failure.
var ErrNotFound = errors.New("party not found")

// ErrEmptyName rejects a create or lookup with an empty party name. Length
// validation beyond non-empty lives at the form boundary.
var ErrEmptyName = errors.New("party name must not be empty")

// ErrClosed rejects joining a party whose record is closed. The name is
// free for re-creation; the ended game itself cannot be entered.
var ErrClosed = errors.New("party is closed")

// CorruptRecordError reports that bytes stored under a party key did not
// decode into a Party. It signals store corruption or a version mismatch and
// must not be confused with ErrNotFound.
type CorruptRecordError struct {
	Name string
	Err  error
}

func (e *CorruptRecordError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("corrupt party record: %v", e.Err)
	}
	return fmt.Sprintf("corrupt party record %q: %v", e.Name, e.Err)
}

func (e *CorruptRecordError) Unwrap() error { return e.Err }

// Sentinel and typed errors for the item tree. Callers match sentinels with
// errors.Is and typed errors with errors.As.
package item

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound = errors.New("item not found")
)

// PathNotFoundError reports a strict path lookup that hit a missing segment.
// Prefix holds the segments up to and including the first missing name, so the
// caller can show exactly which part of the path does not exist.
type PathNotFoundError struct {
	Prefix []string
}

func (e *PathNotFoundError) Error() string {
	return fmt.Sprintf("path not found: /%s", strings.Join(e.Prefix, "/"))
}

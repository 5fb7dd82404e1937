// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidDstSize = errors.New("dst size must be multiple of channels")
	ErrUnknownFormat  = errors.New("no decoder registered for format")
	ErrNotSeekable    = errors.New("source cannot seek backwards")
)

// FormatError reports a path whose extension has no registered decoder.
type FormatError struct {
	Format string
	Path   string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("%s: %q (%s)", ErrUnknownFormat, e.Format, e.Path)
}

func (e *FormatError) Unwrap() error { return ErrUnknownFormat }

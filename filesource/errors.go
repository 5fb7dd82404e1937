// SPDX-License-Identifier: EPL-2.0

package filesource

import "errors"

var (
	// ErrCacheClosed is returned when opening a source on a closed cache.
	ErrCacheClosed = errors.New("file cache is closed")

	// ErrNotDirectory is returned by ScanDir when root is a regular file.
	ErrNotDirectory = errors.New("not a directory")
)

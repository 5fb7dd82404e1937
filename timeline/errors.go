// SPDX-License-Identifier: EPL-2.0

package timeline

import "errors"

// ErrInvalidLink is returned when linking would alias a group with itself,
// chain links, or create a cycle through a descendant.
var ErrInvalidLink = errors.New("invalid group link")

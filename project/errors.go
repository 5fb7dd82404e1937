// SPDX-License-Identifier: EPL-2.0

package project

import "errors"

var (
	// ErrUnknownGroup is returned when a reference names no group.
	ErrUnknownGroup = errors.New("unknown group")

	ErrDuplicateName = errors.New("duplicate group name")

	// ErrNoRoot is returned when the project does not name its root group.
	ErrNoRoot = errors.New("project has no root group")

	// ErrInvalidTree is returned when a child cannot be placed, for example
	// because it would contain its own parent.
	ErrInvalidTree = errors.New("invalid group tree")
)

// SPDX-License-Identifier: EPL-2.0

// Package aiff decodes AIFF files with github.com/go-audio/aiff.
//
// Sources report their length from the COMM chunk. Seeking is emulated:
// a backwards seek re-reads the headers from the start of the input and
// every seek then skips forward frame by frame, so it costs time
// proportional to the target offset.
package aiff

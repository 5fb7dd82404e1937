// SPDX-License-Identifier: EPL-2.0

// Package keypad plays live-triggered notes.
//
// A Pool is a timeline group whose children are short-lived voices. Each
// Trigger starts a voice at the pool's cursor; the pool reclaims voices as
// soon as their cursor reaches their end. Release shortens a sounding voice
// with a quarter-second fade instead of cutting it, and recording keeps
// onset and offset times of every voice for later quantization.
package keypad

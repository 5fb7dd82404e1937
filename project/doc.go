// SPDX-License-Identifier: EPL-2.0

// Package project saves and loads timeline trees as YAML.
//
// A project lists every group by a unique name. A group either owns
// children, which are file or group references placed at a time, or links
// to a master group whose children it shares. Pools and in-memory sample
// nodes are not persisted.
package project

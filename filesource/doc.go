// SPDX-License-Identifier: EPL-2.0

// Package filesource plays audio files on a timeline.
//
// A Cache hands out reference counted Sources, one per (path, requested
// length) pair. A Source decodes its file on first access. Files shorter
// than the lazy threshold are materialized in memory and count against the
// cache budget; longer files stay on disk and are decoded range by range.
// When the budget is exceeded the least recently accessed materialized
// sources are unloaded until the cache fits again.
//
// Decode failures never reach the render path: a broken or missing file
// plays as silence and is reported through the cache logger.
//
// Basic usage:
//
//	cache := filesource.NewCache(filesource.NewFormatOpener(format), format)
//	defer cache.Close()
//
//	node, err := filesource.NewNode(cache, "kick.wav")
//	if err != nil {
//	    return err
//	}
//	group.Add(node, 0, timeline.UnitBeat)
package filesource

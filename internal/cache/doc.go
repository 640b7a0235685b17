// Package cache owns the on-disk page cache.
//
// # Layout
//
//	<dir>/
//	  state.json                      archive digests and sync timestamps
//	  pages.<lang>                    symlink to the live generation
//	  .generations/<lang>-<uuid>/     extracted archives, one per sync
//	      <platform>/<command>.md
//	  .locks/<lang>.lock              per-language writer lock
//	  .locks/state.lock               state.json writer lock
//
// A language is published by pointing pages.<lang> at a fully extracted
// generation with a single rename, so readers see either the old or the new
// tree. Filesystems without symlinks fall back to moving the old directory
// aside and renaming the new one into place.
//
// All filesystem access goes through afero so lookups can be tested against
// an in-memory filesystem.
package cache

// Package mirror keeps one local bare mirror in step with its remote.
//
// A mirror path is in one of two states, derived from the filesystem only:
// absent (clone it) or present (repoint origin if needed, then fetch). The
// sidecar files description and cloneurl are written next to the git data
// by MetadataWriter.
package mirror

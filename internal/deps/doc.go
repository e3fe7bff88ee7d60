// Package deps reports the availability of external binaries mediaprobe can
// delegate to. Only the ffprobe backend needs one; the native backend is
// self-contained.
package deps

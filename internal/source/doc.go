// Package source opens the byte stream a demuxer reads from: a regular file,
// or standard input when the path is "-". Files are checked for readability
// up front and hinted for sequential access where the platform supports it.
package source

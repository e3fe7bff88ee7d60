// Package demux opens input files as media.Demuxer values. The native
// backend sniffs the leading bytes and hands the source to the best scoring
// format; the ffprobe backend delegates the whole file to an external binary.
package demux

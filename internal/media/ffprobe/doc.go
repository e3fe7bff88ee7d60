// Package ffprobe runs an external ffprobe binary and serves its JSON
// description of a file through the media.Demuxer interface.
//
// Key types:
//   - Result: parsed ffprobe output containing streams, packets and format metadata
//   - Demuxer: replays a Result as packets without payloads
//
// Primary entry points:
//   - Inspect: executes ffprobe and returns the parsed Result
//   - Open: inspects a file and wraps the Result in a Demuxer
//
// Packets served by this backend carry sizes and timing only, so the probe
// pipeline counts them but never decodes them.
package ffprobe

// Package media defines the collaborator contracts the probe core consumes.
//
// A Demuxer turns a container into a sequence of Packets and exposes the
// container (FormatInfo) and per-stream (StreamInfo) descriptors. Concrete
// demuxers live in internal/demux (native formats) and internal/media/ffprobe
// (external ffprobe backend); decoders live in internal/codec.
//
// Timestamps are stream ticks. units.NoTimestamp marks an unknown value and
// must never be confused with tick 0.
package media

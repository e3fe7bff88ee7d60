package probe

import (
	"mediaprobe/internal/codec"
	"mediaprobe/internal/media"
)

// Container is the per-file handle. It owns every Stream and the aggregate
// counters; nothing in it is shared across files.
type Container struct {
	Path    string
	Format  media.FormatInfo
	Streams []*Stream

	PacketBytes int64
	Packets     int64
	FrameBytes  int64
	Frames      int64

	// Valid only while one packet is being processed.
	current *PacketRecord
	active  *Stream
}

// Stream is the per-stream state owned by a Container.
type Stream struct {
	Info media.StreamInfo
	// Decoder is nil when no decoder could be bound; DecoderErr says why.
	Decoder    codec.Decoder
	DecoderErr error

	PacketBytes  int64
	Packets      int64
	FrameBytes   int64
	Frames       int64
	DecodeErrors int64

	container *Container
}

// NewContainer builds the handle for an opened demuxer description.
func NewContainer(path string, format media.FormatInfo, infos []media.StreamInfo) *Container {
	c := &Container{Path: path, Format: format}
	c.Streams = make([]*Stream, len(infos))
	for i, info := range infos {
		info.Index = i
		c.Streams[i] = &Stream{Info: info, container: c}
	}
	return c
}

// Stream returns the stream with the given index, or nil.
func (c *Container) Stream(index int) *Stream {
	if index < 0 || index >= len(c.Streams) {
		return nil
	}
	return c.Streams[index]
}

// CurrentPacket returns the packet being processed, or nil between packets.
func (c *Container) CurrentPacket() *PacketRecord {
	return c.current
}

// ActiveStream returns the stream of the packet being processed, or nil.
func (c *Container) ActiveStream() *Stream {
	return c.active
}

// RecordPacket counts one packet of size bytes for s and returns the
// post-increment file and stream packet ordinals. Call exactly once per packet.
func (c *Container) RecordPacket(s *Stream, size int) (fileNb, streamNb int64) {
	c.mustOwn(s)
	c.PacketBytes += int64(size)
	c.Packets++
	s.PacketBytes += int64(size)
	s.Packets++
	return c.Packets, s.Packets
}

// RecordFrame counts one frame of size bytes for s and returns the
// post-increment file and stream frame ordinals. Call exactly once per frame.
func (c *Container) RecordFrame(s *Stream, size int) (fileNb, streamNb int64) {
	c.mustOwn(s)
	c.FrameBytes += int64(size)
	c.Frames++
	s.FrameBytes += int64(size)
	s.Frames++
	return c.Frames, s.Frames
}

// Close closes every bound decoder, including after a failed probe.
func (c *Container) Close() error {
	var first error
	for _, s := range c.Streams {
		if s.Decoder == nil {
			continue
		}
		if err := s.Decoder.Close(); err != nil && first == nil {
			first = err
		}
	}
	c.current = nil
	c.active = nil
	return first
}

func (c *Container) mustOwn(s *Stream) {
	if s == nil || s.container != c {
		panic("probe: stream does not belong to container")
	}
}

// DecoderName returns the bound decoder's name, or "" when none is bound.
func (s *Stream) DecoderName() string {
	if s.Decoder == nil {
		return ""
	}
	return s.Decoder.Name()
}

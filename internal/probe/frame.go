package probe

import (
	"mediaprobe/internal/codec"
	"mediaprobe/internal/media"
)

// PacketRecord is one observed packet. Frames carry a copy of the record of
// the packet that produced them.
type PacketRecord struct {
	Stream   *Stream
	Size     int
	PTS      int64
	DTS      int64
	Duration int64
	Key      bool

	FilePacketNumber   int64
	StreamPacketNumber int64
}

// Payload is the decoded content of a frame: *PicturePayload,
// *SamplePayload or *SubtitlePayload.
type Payload interface {
	Kind() media.CodecType
	isPayload()
}

// PicturePayload holds a decoded picture.
type PicturePayload struct {
	Picture *codec.Picture
}

// SamplePayload holds interleaved signed 16-bit samples.
type SamplePayload struct {
	Samples []byte
}

// SubtitlePayload holds one subtitle event.
type SubtitlePayload struct {
	Subtitle *codec.Subtitle
}

func (*PicturePayload) Kind() media.CodecType  { return media.CodecTypeVideo }
func (*SamplePayload) Kind() media.CodecType   { return media.CodecTypeAudio }
func (*SubtitlePayload) Kind() media.CodecType { return media.CodecTypeSubtitle }

func (*PicturePayload) isPayload()  {}
func (*SamplePayload) isPayload()   {}
func (*SubtitlePayload) isPayload() {}

// Frame is one decoded unit. Its payload is only valid until Release.
type Frame struct {
	Source  PacketRecord
	Payload Payload
	// Size is the compressed size attributed to the frame: the bytes a decode
	// call consumed, or the source packet size for pictures.
	Size int

	FileFrameNumber   int64
	StreamFrameNumber int64

	release  func()
	released bool
}

// Stream returns the stream that produced the frame.
func (f *Frame) Stream() *Stream {
	return f.Source.Stream
}

// Released reports whether the payload has been handed back.
func (f *Frame) Released() bool {
	return f.released
}

// Release hands the payload back. Calls after the first are no-ops.
func (f *Frame) Release() {
	if f == nil || f.released {
		return
	}
	f.released = true
	if f.release != nil {
		f.release()
	}
	f.Payload = nil
}

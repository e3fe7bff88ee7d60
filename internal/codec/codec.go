package codec

import (
	"errors"

	"mediaprobe/internal/media"
)

var (
	// ErrDecoderNotFound reports a codec identifier without a registered decoder.
	ErrDecoderNotFound = errors.New("decoder not found")
	// ErrInvalidData reports a unit the decoder cannot interpret.
	ErrInvalidData = errors.New("invalid data")
)

// Decoder is the common surface of every decoder.
type Decoder interface {
	Name() string
	Type() media.CodecType
	Close() error
}

// AudioDecoder decodes from the start of data and returns how many bytes it
// consumed plus interleaved signed 16-bit samples (nil when nothing was
// produced). Callers advance through the packet and call again.
type AudioDecoder interface {
	Decoder
	DecodeAudio(data []byte) (int, []byte, error)
}

// VideoDecoder consumes a whole packet per call. The returned picture may
// originate from an earlier packet when the decoder buffers internally.
type VideoDecoder interface {
	Decoder
	SetAllocator(alloc Allocator)
	DecodeVideo(data []byte) (int, *Picture, error)
}

// SubtitleDecoder consumes a whole packet and yields at most one event.
type SubtitleDecoder interface {
	Decoder
	DecodeSubtitle(data []byte) (int, *Subtitle, error)
}

// Flusher is implemented by decoders that hold pictures back. Flush returns
// the next buffered picture, or nil once drained.
type Flusher interface {
	Flush() (*Picture, error)
}

// Subtitle is one decoded subtitle event.
type Subtitle struct {
	// Format is 0 for bitmap and 1 for text events.
	Format int
	Rects  []string
}

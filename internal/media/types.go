package media

import (
	"context"
	"strings"

	"mediaprobe/internal/units"
)

// CodecType classifies a stream. The set is closed.
type CodecType int

const (
	CodecTypeUnknown CodecType = iota
	CodecTypeVideo
	CodecTypeAudio
	CodecTypeData
	CodecTypeSubtitle
)

// String returns the report name of the codec type.
func (t CodecType) String() string {
	switch t {
	case CodecTypeVideo:
		return "video"
	case CodecTypeAudio:
		return "audio"
	case CodecTypeData:
		return "data"
	case CodecTypeSubtitle:
		return "subtitle"
	default:
		return "unknown"
	}
}

// ParseCodecType maps a report name back to a CodecType.
func ParseCodecType(value string) CodecType {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "video":
		return CodecTypeVideo
	case "audio":
		return CodecTypeAudio
	case "data":
		return CodecTypeData
	case "subtitle":
		return CodecTypeSubtitle
	default:
		return CodecTypeUnknown
	}
}

// Tags is the container-level tag set reported in [TAGS] and [FILE] blocks.
type Tags struct {
	Track     int
	Title     string
	Author    string
	Copyright string
	Comment   string
	Album     string
	Year      int
	Genre     string
}

// FormatInfo describes a container.
type FormatInfo struct {
	Filename string
	// Name is the short demuxer name ("wav"); LongName is optional.
	Name     string
	LongName string
	// StartTime and Duration are expressed in units.TimeBaseMicros.
	StartTime int64
	Duration  int64
	// FileSize is the size known from the byte source, 0 when unknown.
	FileSize int64
	BitRate  int64
	Tags     Tags
}

// StreamInfo describes one elementary stream of a container.
type StreamInfo struct {
	Index     int
	CodecID   string
	CodecType CodecType
	// TimeBase converts packet ticks to seconds.
	TimeBase units.Rational
	// CodecTimeBase is the decoder-level time base (1/frame rate, 1/sample rate).
	CodecTimeBase units.Rational
	Language      string
	StartTime     int64
	Duration      int64
	NumFrames     int64
	BitRate       int64

	// Video.
	FrameRate         units.Rational
	Width             int
	Height            int
	SampleAspectRatio units.Rational
	PixelFormat       string
	GOPSize           int
	HasBFrames        int
	Interlaced        bool
	TopFieldFirst     bool

	// Audio.
	SampleRate    int
	Channels      int
	BitsPerSample int
	BlockAlign    int
}

// Packet is one demuxed unit of compressed data.
type Packet struct {
	StreamIndex int
	// Data is nil for backends that only report packet metadata.
	Data []byte
	// Size is the payload size in bytes; equal to len(Data) when Data is set.
	Size     int
	PTS      int64
	DTS      int64
	Duration int64
	Key      bool
}

// PayloadSize returns the packet size, falling back to len(Data).
func (p Packet) PayloadSize() int {
	if p.Size > 0 {
		return p.Size
	}
	return len(p.Data)
}

// Demuxer yields packets from a container. ReadPacket returns io.EOF once the
// container is exhausted.
type Demuxer interface {
	Format() FormatInfo
	Streams() []StreamInfo
	ReadPacket(ctx context.Context) (Packet, error)
	Close() error
}

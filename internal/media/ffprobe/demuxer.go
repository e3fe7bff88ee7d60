package ffprobe

import (
	"context"
	"io"
	"math"
	"strings"

	"mediaprobe/internal/media"
	"mediaprobe/internal/units"
)

// Demuxer replays an ffprobe Result. Packets carry no payload.
type Demuxer struct {
	format  media.FormatInfo
	streams []media.StreamInfo
	packets []Packet
	next    int
}

// Open runs ffprobe on path and wraps the result.
func Open(ctx context.Context, binary, path string) (*Demuxer, error) {
	result, err := Inspect(ctx, binary, path, InspectOptions{Packets: true})
	if err != nil {
		return nil, err
	}
	return NewDemuxer(result), nil
}

// NewDemuxer converts a parsed Result into demuxer descriptors.
func NewDemuxer(result Result) *Demuxer {
	d := &Demuxer{
		format:  convertFormat(result),
		streams: make([]media.StreamInfo, 0, len(result.Streams)),
		packets: result.Packets,
	}
	for _, s := range result.Streams {
		d.streams = append(d.streams, convertStream(s))
	}
	return d
}

func (d *Demuxer) Format() media.FormatInfo { return d.format }

func (d *Demuxer) Streams() []media.StreamInfo { return d.streams }

func (d *Demuxer) ReadPacket(ctx context.Context) (media.Packet, error) {
	if err := ctx.Err(); err != nil {
		return media.Packet{}, err
	}
	if d.next >= len(d.packets) {
		return media.Packet{}, io.EOF
	}
	p := d.packets[d.next]
	d.next++
	return media.Packet{
		StreamIndex: p.StreamIndex,
		Size:        int(parseInt(p.Size)),
		PTS:         tick(p.PTS),
		DTS:         tick(p.DTS),
		Duration:    valueOr(p.Duration, 0),
		Key:         strings.HasPrefix(p.Flags, "K"),
	}, nil
}

func (d *Demuxer) Close() error { return nil }

func convertFormat(r Result) media.FormatInfo {
	f := r.Format
	info := media.FormatInfo{
		Filename:  f.Filename,
		Name:      f.FormatName,
		LongName:  f.FormatLongName,
		StartTime: micros(f.StartTime),
		Duration:  micros(f.Duration),
		FileSize:  r.SizeBytes(),
		BitRate:   r.BitRate(),
	}
	tags := lowerKeys(f.Tags)
	info.Tags = media.Tags{
		Track:     int(leadingNumber(tags["track"])),
		Title:     tags["title"],
		Author:    first(tags["artist"], tags["author"]),
		Copyright: tags["copyright"],
		Comment:   tags["comment"],
		Album:     tags["album"],
		Year:      int(leadingNumber(first(tags["date"], tags["year"]))),
		Genre:     tags["genre"],
	}
	return info
}

func convertStream(s Stream) media.StreamInfo {
	info := media.StreamInfo{
		Index:         s.Index,
		CodecID:       s.CodecName,
		CodecType:     media.ParseCodecType(s.CodecType),
		TimeBase:      rational(s.TimeBase),
		CodecTimeBase: rational(s.CodecTimeBase),
		Language:      lowerKeys(s.Tags)["language"],
		StartTime:     tick(s.StartPTS),
		Duration:      tick(s.DurationTS),
		NumFrames:     parseInt(s.NBFrames),
		BitRate:       parseInt(s.BitRate),
		FrameRate:     rational(s.RFrameRate),
		Width:         s.Width,
		Height:        s.Height,
		PixelFormat:   s.PixFmt,
		HasBFrames:    s.HasBFrames,
		SampleRate:    int(parseInt(s.SampleRate)),
		Channels:      s.Channels,
		BitsPerSample: s.BitsPerSample,
		BlockAlign:    s.BlockAlign,
	}
	if sar := rational(s.SampleAspectRatio); !sar.IsZero() {
		info.SampleAspectRatio = sar
	}
	switch s.FieldOrder {
	case "tt", "tb":
		info.Interlaced, info.TopFieldFirst = true, true
	case "bb", "bt":
		info.Interlaced = true
	}
	if info.CodecTimeBase.IsZero() {
		switch info.CodecType {
		case media.CodecTypeVideo:
			if !info.FrameRate.IsZero() {
				info.CodecTimeBase = info.FrameRate.Invert()
			}
		case media.CodecTypeAudio:
			if info.SampleRate > 0 {
				info.CodecTimeBase = units.Rational{Num: 1, Den: int64(info.SampleRate)}
			}
		}
	}
	return info
}

func tick(v *int64) int64 {
	return valueOr(v, units.NoTimestamp)
}

func valueOr(v *int64, fallback int64) int64 {
	if v == nil {
		return fallback
	}
	return *v
}

// micros converts ffprobe's decimal seconds to the container time base.
func micros(seconds string) int64 {
	if strings.TrimSpace(seconds) == "" {
		return units.NoTimestamp
	}
	v := parseFloat(seconds)
	if math.IsNaN(v) {
		return units.NoTimestamp
	}
	return int64(math.Round(v * 1_000_000))
}

func rational(value string) units.Rational {
	r, err := units.ParseRational(value)
	if err != nil || r.Den == 0 {
		return units.Rational{}
	}
	return r
}

func lowerKeys(tags map[string]string) map[string]string {
	out := make(map[string]string, len(tags))
	for k, v := range tags {
		out[strings.ToLower(k)] = strings.TrimSpace(v)
	}
	return out
}

func first(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func leadingNumber(value string) int64 {
	end := 0
	for end < len(value) && value[end] >= '0' && value[end] <= '9' {
		end++
	}
	return parseInt(value[:end])
}

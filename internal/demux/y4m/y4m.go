// Package y4m demuxes YUV4MPEG2 streams into one rawvideo packet per frame.
package y4m

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"mediaprobe/internal/codec"
	"mediaprobe/internal/media"
	"mediaprobe/internal/source"
	"mediaprobe/internal/units"
)

const (
	signature = "YUV4MPEG2"
	frameTag  = "FRAME"

	maxHeaderLine = 1024
)

// ErrInvalid reports a malformed stream or frame header.
var ErrInvalid = errors.New("invalid yuv4mpeg stream")

var colorspaces = map[string]string{
	"420jpeg":  "yuv420p",
	"420paldv": "yuv420p",
	"420mpeg2": "yuv420p",
	"420":      "yuv420p",
	"422":      "yuv422p",
	"444":      "yuv444p",
	"411":      "yuv411p",
	"mono":     "gray",
	"mono16":   "gray16le",
	"444alpha": "yuva444p",
	"420p10":   "yuv420p10le",
	"422p10":   "yuv422p10le",
	"444p10":   "yuv444p10le",
}

// Probe scores how likely head is the start of a YUV4MPEG2 stream.
func Probe(head []byte) int {
	if len(head) >= len(signature)+1 && string(head[:len(signature)]) == signature && head[len(signature)] == ' ' {
		return 100
	}
	return 0
}

// Demuxer reads one YUV4MPEG2 stream.
type Demuxer struct {
	src       *source.Source
	format    media.FormatInfo
	stream    media.StreamInfo
	frameSize int
	frames    int64
}

// Open parses the stream header.
func Open(src *source.Source) (*Demuxer, error) {
	line, err := readLine(src)
	if err != nil {
		return nil, fmt.Errorf("read stream header: %w", err)
	}
	fields := strings.Fields(line)
	if len(fields) == 0 || fields[0] != signature {
		return nil, fmt.Errorf("%w: missing %s signature", ErrInvalid, signature)
	}

	st := media.StreamInfo{
		CodecID:           "rawvideo",
		CodecType:         media.CodecTypeVideo,
		PixelFormat:       "yuv420p",
		SampleAspectRatio: units.Rational{Num: 0, Den: 1},
		Duration:          units.NoTimestamp,
		GOPSize:           1,
	}
	for _, field := range fields[1:] {
		key, value := field[0], field[1:]
		switch key {
		case 'W':
			if st.Width, err = strconv.Atoi(value); err != nil {
				return nil, fmt.Errorf("%w: width %q", ErrInvalid, value)
			}
		case 'H':
			if st.Height, err = strconv.Atoi(value); err != nil {
				return nil, fmt.Errorf("%w: height %q", ErrInvalid, value)
			}
		case 'F':
			if st.FrameRate, err = units.ParseRational(value); err != nil {
				return nil, fmt.Errorf("%w: frame rate: %v", ErrInvalid, err)
			}
		case 'A':
			if aspect, err := units.ParseRational(value); err == nil {
				st.SampleAspectRatio = aspect
			}
		case 'I':
			switch value {
			case "t":
				st.Interlaced, st.TopFieldFirst = true, true
			case "b":
				st.Interlaced = true
			}
		case 'C':
			pixfmt, ok := colorspaces[value]
			if !ok {
				return nil, fmt.Errorf("%w: unsupported colorspace %q", ErrInvalid, value)
			}
			st.PixelFormat = pixfmt
		}
	}
	if st.Width <= 0 || st.Height <= 0 {
		return nil, fmt.Errorf("%w: missing picture size", ErrInvalid)
	}
	if st.Width > codec.MaxDimension || st.Height > codec.MaxDimension {
		return nil, fmt.Errorf("%w: picture size %dx%d exceeds %d", ErrInvalid, st.Width, st.Height, codec.MaxDimension)
	}
	if st.FrameRate.IsZero() || st.FrameRate.Num < 0 || st.FrameRate.Den < 0 {
		return nil, fmt.Errorf("%w: missing frame rate", ErrInvalid)
	}

	frameSize := codec.FrameSize(st.PixelFormat, st.Width, st.Height)
	if frameSize <= 0 {
		return nil, fmt.Errorf("%w: no picture size for %dx%d %s", ErrInvalid, st.Width, st.Height, st.PixelFormat)
	}
	st.TimeBase = st.FrameRate.Invert()
	st.CodecTimeBase = st.TimeBase
	st.StartTime = 0
	st.BitRate = int64(float64(frameSize*8) * st.FrameRate.Float64())

	d := &Demuxer{
		src:       src,
		stream:    st,
		frameSize: frameSize,
		format: media.FormatInfo{
			Name:      "yuv4mpegpipe",
			LongName:  "YUV4MPEG pipe",
			StartTime: 0,
			Duration:  units.NoTimestamp,
			FileSize:  src.Size(),
			BitRate:   st.BitRate,
		},
	}
	if size := src.Size(); size > 0 {
		// Estimate assumes bare "FRAME\n" markers.
		payload := size - int64(len(line)) - 1
		frames := payload / int64(frameSize+len(frameTag)+1)
		d.stream.Duration = frames
		d.stream.NumFrames = frames
		d.format.Duration = frames * st.FrameRate.Den * 1_000_000 / st.FrameRate.Num
	}
	return d, nil
}

func (d *Demuxer) Format() media.FormatInfo { return d.format }

func (d *Demuxer) Streams() []media.StreamInfo { return []media.StreamInfo{d.stream} }

// ReadPacket returns the next picture. A picture cut short by the end of the
// file is an io.ErrUnexpectedEOF.
func (d *Demuxer) ReadPacket(ctx context.Context) (media.Packet, error) {
	if err := ctx.Err(); err != nil {
		return media.Packet{}, err
	}
	line, err := readLine(d.src)
	if errors.Is(err, io.EOF) && line == "" {
		return media.Packet{}, io.EOF
	}
	if err != nil {
		return media.Packet{}, fmt.Errorf("read frame header: %w", err)
	}
	if !strings.HasPrefix(line, frameTag) {
		return media.Packet{}, fmt.Errorf("%w: frame %d header %q", ErrInvalid, d.frames, line)
	}

	buf := make([]byte, d.frameSize)
	if _, err := io.ReadFull(d.src, buf); err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return media.Packet{}, fmt.Errorf("read frame %d: %w", d.frames, err)
	}
	pkt := media.Packet{
		StreamIndex: 0,
		Data:        buf,
		Size:        len(buf),
		PTS:         d.frames,
		DTS:         d.frames,
		Duration:    1,
		Key:         true,
	}
	d.frames++
	return pkt, nil
}

func (d *Demuxer) Close() error {
	return d.src.Close()
}

// readLine reads up to and excluding the next newline.
func readLine(r io.Reader) (string, error) {
	var (
		b    strings.Builder
		one  [1]byte
		read int
	)
	for read < maxHeaderLine {
		n, err := r.Read(one[:])
		if n == 1 {
			read++
			if one[0] == '\n' {
				return b.String(), nil
			}
			b.WriteByte(one[0])
			continue
		}
		if err != nil {
			if errors.Is(err, io.EOF) && b.Len() > 0 {
				return b.String(), io.ErrUnexpectedEOF
			}
			return b.String(), err
		}
	}
	return "", fmt.Errorf("%w: header line longer than %d bytes", ErrInvalid, maxHeaderLine)
}

package demux

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"mediaprobe/internal/demux/srt"
	"mediaprobe/internal/demux/wav"
	"mediaprobe/internal/demux/y4m"
	"mediaprobe/internal/media"
	"mediaprobe/internal/media/ffprobe"
	"mediaprobe/internal/source"
)

// Backend names accepted in Options.
const (
	BackendNative  = "native"
	BackendFFprobe = "ffprobe"
)

const probeBytes = 2048

// ErrUnknownFormat is returned when no native format recognises the input.
var ErrUnknownFormat = errors.New("unknown container format")

// Options selects the backend and tunes the native demuxers.
type Options struct {
	Backend        string
	FFprobeBinary  string
	WAVPacketBytes int
}

// Format is one native container format.
type Format struct {
	Name  string
	Probe func(head []byte) int
	Open  func(src *source.Source, opts Options) (media.Demuxer, error)
}

var formats = []Format{
	{
		Name:  "wav",
		Probe: wav.Probe,
		Open: func(src *source.Source, opts Options) (media.Demuxer, error) {
			return wav.Open(src, wav.Options{PacketBytes: opts.WAVPacketBytes})
		},
	},
	{
		Name:  "yuv4mpegpipe",
		Probe: y4m.Probe,
		Open: func(src *source.Source, _ Options) (media.Demuxer, error) {
			return y4m.Open(src)
		},
	},
	{
		Name:  "srt",
		Probe: srt.Probe,
		Open: func(src *source.Source, _ Options) (media.Demuxer, error) {
			return srt.Open(src)
		},
	},
}

// Formats lists the native format names in detection order.
func Formats() []string {
	names := make([]string, 0, len(formats))
	for _, f := range formats {
		names = append(names, f.Name)
	}
	return names
}

// Open opens path with the configured backend. "-" reads standard input and
// is only supported by the native backend.
func Open(ctx context.Context, path string, opts Options) (media.Demuxer, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if strings.EqualFold(strings.TrimSpace(opts.Backend), BackendFFprobe) {
		if path == source.StdinName {
			return nil, fmt.Errorf("ffprobe backend cannot read standard input")
		}
		d, err := ffprobe.Open(ctx, opts.FFprobeBinary, path)
		if err != nil {
			return nil, err
		}
		return d, nil
	}

	src, err := source.Open(path)
	if err != nil {
		return nil, err
	}
	d, err := openNative(src, opts)
	if err != nil {
		_ = src.Close()
		return nil, err
	}
	return named{Demuxer: d, filename: src.Name(), size: src.Size()}, nil
}

func openNative(src *source.Source, opts Options) (media.Demuxer, error) {
	head, err := src.Peek(probeBytes)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("read input header: %w", err)
	}
	var (
		best  *Format
		score int
	)
	for i := range formats {
		if s := formats[i].Probe(head); s > score {
			best, score = &formats[i], s
		}
	}
	if best == nil {
		if ext := strings.TrimPrefix(filepath.Ext(src.Name()), "."); ext != "" {
			return nil, fmt.Errorf("%w (extension %q)", ErrUnknownFormat, ext)
		}
		return nil, ErrUnknownFormat
	}
	d, err := best.Open(src, opts)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", best.Name, err)
	}
	return d, nil
}

// named stamps the file name and size from the byte source onto the
// container descriptor.
type named struct {
	media.Demuxer
	filename string
	size     int64
}

func (n named) Format() media.FormatInfo {
	f := n.Demuxer.Format()
	f.Filename = n.filename
	if f.FileSize == 0 {
		f.FileSize = n.size
	}
	return f
}

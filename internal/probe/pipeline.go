package probe

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"mediaprobe/internal/codec"
	"mediaprobe/internal/logging"
	"mediaprobe/internal/media"
)

// Sink receives one file's report entities in emission order.
type Sink interface {
	Tags(c *Container) error
	Packet(p PacketRecord) error
	Frame(f *Frame) error
	Stream(s *Stream) error
	File(c *Container) error
}

// OpenFunc opens a demuxer for path.
type OpenFunc func(ctx context.Context, path string) (media.Demuxer, error)

// DecoderOpener binds decoders to streams; *codec.Registry implements it.
type DecoderOpener interface {
	Open(info media.StreamInfo) (codec.Decoder, error)
}

// Prober probes single files.
type Prober struct {
	open     OpenFunc
	decoders DecoderOpener
	opts     Options
	logger   *slog.Logger
}

// NewProber wires a prober. Options are normalized.
func NewProber(open OpenFunc, decoders DecoderOpener, opts Options, logger *slog.Logger) *Prober {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Prober{
		open:     open,
		decoders: decoders,
		opts:     opts.Normalize(),
		logger:   logging.NewComponentLogger(logger, "probe"),
	}
}

// Options returns the normalized options in effect.
func (p *Prober) Options() Options {
	return p.opts
}

// ProbeFile probes one input and reports it to sink. Failures that end the
// probe come back as *FileError; stream and packet failures are absorbed and
// only show up in the counters. The returned container is closed.
func (p *Prober) ProbeFile(ctx context.Context, path string, sink Sink) (*Container, error) {
	logger := logging.WithContext(logging.WithFile(ctx, path), p.logger)

	dmx, err := p.open(ctx, path)
	if err != nil {
		return nil, &FileError{Path: path, Op: "open", Err: err}
	}
	defer func() {
		if cerr := dmx.Close(); cerr != nil {
			logger.Debug("demuxer close failed", logging.Error(cerr))
		}
	}()

	c := NewContainer(path, dmx.Format(), dmx.Streams())
	if c.Format.Filename == "" {
		c.Format.Filename = path
	}
	machine := NewMachine(c, p.frameFunc(sink), logger)
	defer func() {
		if cerr := c.Close(); cerr != nil {
			logger.Debug("decoder close failed", logging.Error(cerr))
		}
		machine.Close()
	}()
	p.bindDecoders(c, machine, logger)

	if p.opts.ShowTags {
		if err := sink.Tags(c); err != nil {
			return c, &FileError{Path: path, Op: "report", Err: err}
		}
	}
	if p.opts.ReadPackets {
		if err := p.readPackets(ctx, dmx, c, machine, sink, logger); err != nil {
			return c, err
		}
	}
	if p.opts.ShowStreams {
		for _, s := range c.Streams {
			if err := sink.Stream(s); err != nil {
				return c, &FileError{Path: path, Op: "report", Err: err}
			}
		}
	}
	if p.opts.ShowFiles {
		if err := sink.File(c); err != nil {
			return c, &FileError{Path: path, Op: "report", Err: err}
		}
	}
	for _, s := range c.Streams {
		if s.DecodeErrors > 0 {
			logging.WarnWithContext(logger, "packets failed to decode", "decode_errors",
				logging.Int("stream_index", s.Info.Index),
				logging.Int64("decode_errors", s.DecodeErrors),
				logging.String(logging.FieldErrorHint, "the stream may be corrupt or truncated"),
				logging.String(logging.FieldImpact, "frame counts for the stream are incomplete"),
			)
		}
	}
	return c, nil
}

func (p *Prober) bindDecoders(c *Container, machine *Machine, logger *slog.Logger) {
	for _, s := range c.Streams {
		if p.decoders == nil {
			s.DecoderErr = codec.ErrDecoderNotFound
			continue
		}
		dec, err := p.decoders.Open(s.Info)
		if err == nil {
			s.Decoder = dec
			err = machine.Bind(s)
		} else {
			s.DecoderErr = err
		}
		if err == nil {
			continue
		}
		attrs := []logging.Attr{
			logging.Int("stream_index", s.Info.Index),
			logging.String("codec_id", s.Info.CodecID),
			logging.Error(err),
		}
		if errors.Is(err, codec.ErrDecoderNotFound) || !p.opts.ReadFrames {
			logger.Debug("no decoder for stream", logging.Args(attrs...)...)
			continue
		}
		attrs = append(attrs,
			logging.String(logging.FieldErrorHint, "the stream parameters may be invalid"),
			logging.String(logging.FieldImpact, "no frames will be reported for the stream"),
		)
		logging.WarnWithContext(logger, "decoder unavailable", "decoder_unavailable", attrs...)
	}
}

func (p *Prober) readPackets(ctx context.Context, dmx media.Demuxer, c *Container, machine *Machine, sink Sink, logger *slog.Logger) error {
	for {
		if err := ctx.Err(); err != nil {
			return &FileError{Path: c.Path, Op: "read", Err: err}
		}
		pkt, err := dmx.ReadPacket(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return &FileError{Path: c.Path, Op: "read", Err: ctxErr}
			}
			logging.WarnWithContext(logger, "packet read stopped early", "demux_error",
				logging.Int64("packets", c.Packets),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "the file may be truncated"),
				logging.String(logging.FieldImpact, "counters cover the packets read so far"),
			)
			break
		}
		if err := p.handlePacket(c, machine, sink, pkt, logger); err != nil {
			return &FileError{Path: c.Path, Op: "report", Err: err}
		}
	}
	if p.opts.ReadFrames && p.opts.Drain {
		if err := machine.Drain(); err != nil {
			return &FileError{Path: c.Path, Op: "report", Err: err}
		}
	}
	return nil
}

func (p *Prober) handlePacket(c *Container, machine *Machine, sink Sink, pkt media.Packet, logger *slog.Logger) error {
	s := c.Stream(pkt.StreamIndex)
	if s == nil {
		logger.Debug("packet for unknown stream", logging.Int("stream_index", pkt.StreamIndex))
		return nil
	}
	size := pkt.PayloadSize()
	rec := PacketRecord{
		Stream:   s,
		Size:     size,
		PTS:      pkt.PTS,
		DTS:      pkt.DTS,
		Duration: pkt.Duration,
		Key:      pkt.Key,
	}
	rec.FilePacketNumber, rec.StreamPacketNumber = c.RecordPacket(s, size)
	c.current = &rec
	c.active = s
	defer func() {
		c.current = nil
		c.active = nil
	}()

	if p.opts.ShowPackets {
		if err := sink.Packet(rec); err != nil {
			return err
		}
	}
	// Metadata-only backends deliver no payload to decode.
	if !p.opts.ReadFrames || len(pkt.Data) == 0 {
		return nil
	}
	if err := machine.Decode(s, rec, pkt.Data); err != nil {
		return fmt.Errorf("frame: %w", err)
	}
	return nil
}

func (p *Prober) frameFunc(sink Sink) FrameFunc {
	if !p.opts.ShowFrames {
		return nil
	}
	return sink.Frame
}

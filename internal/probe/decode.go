package probe

import (
	"errors"
	"fmt"
	"log/slog"

	"mediaprobe/internal/codec"
	"mediaprobe/internal/logging"
	"mediaprobe/internal/media"
	"mediaprobe/internal/units"
)

// ErrUnsupportedCodecType marks a stream whose codec type has no decode strategy.
var ErrUnsupportedCodecType = errors.New("unsupported codec type")

// FrameFunc receives every produced frame. The frame is released when the
// function returns; an error aborts the file.
type FrameFunc func(*Frame) error

// step runs one decode call at cur and returns the advanced cursor.
type step func(m *Machine, s *Stream, rec PacketRecord, cur PacketCursor) (PacketCursor, error)

var strategies = map[media.CodecType]step{
	media.CodecTypeAudio:    audioStep,
	media.CodecTypeVideo:    videoStep,
	media.CodecTypeSubtitle: subtitleStep,
}

// Machine runs the decode strategies for one container.
type Machine struct {
	container *Container
	emit      FrameFunc
	logger    *slog.Logger

	// pending maps picture handles to the provenance captured when the
	// buffer was allocated.
	pending    map[uint64]PacketRecord
	allocators map[*Stream]*hookAllocator
	// inflight is the packet of the video decode call in progress.
	inflight *PacketRecord
}

// NewMachine returns a decode machine stamping frames into c.
func NewMachine(c *Container, emit FrameFunc, logger *slog.Logger) *Machine {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Machine{
		container:  c,
		emit:       emit,
		logger:     logger,
		pending:    make(map[uint64]PacketRecord),
		allocators: make(map[*Stream]*hookAllocator),
	}
}

// Bind checks the stream's decoder against its codec type and installs the
// allocation hooks. A stream that cannot be bound loses its decoder for good.
func (m *Machine) Bind(s *Stream) error {
	if s.Decoder == nil {
		return nil
	}
	var ok bool
	switch s.Info.CodecType {
	case media.CodecTypeAudio:
		_, ok = s.Decoder.(codec.AudioDecoder)
	case media.CodecTypeSubtitle:
		_, ok = s.Decoder.(codec.SubtitleDecoder)
	case media.CodecTypeVideo:
		var dec codec.VideoDecoder
		dec, ok = s.Decoder.(codec.VideoDecoder)
		if ok {
			alloc := &hookAllocator{machine: m, stream: s, inner: codec.DefaultAllocator{}}
			m.allocators[s] = alloc
			dec.SetAllocator(alloc)
		}
	}
	if ok {
		return nil
	}
	err := fmt.Errorf("%w: %s decoder for %s stream", ErrUnsupportedCodecType, s.Decoder.Name(), s.Info.CodecType)
	m.unbind(s, err)
	return err
}

// Decode runs the stream's strategy over one packet payload. Decode errors
// stay local to the packet; only errors from the frame consumer are returned.
func (m *Machine) Decode(s *Stream, rec PacketRecord, data []byte) error {
	if s.Decoder == nil {
		return nil
	}
	run, ok := strategies[s.Info.CodecType]
	if !ok {
		m.unbind(s, fmt.Errorf("%w: %s", ErrUnsupportedCodecType, s.Info.CodecType))
		return nil
	}

	cur := NewPacketCursor(data)
	for !cur.Exhausted() {
		next, err := run(m, s, rec, cur)
		if err != nil {
			var emitErr *emitError
			if errors.As(err, &emitErr) {
				return emitErr.err
			}
			s.DecodeErrors++
			m.logger.Debug("packet decode failed",
				logging.Int("stream_index", s.Info.Index),
				logging.Int64("file_pkt_nb", rec.FilePacketNumber),
				logging.Int("remaining_bytes", cur.Len()),
				logging.Error(err),
			)
			return nil
		}
		if next.Consumed() == cur.Consumed() {
			break
		}
		cur = next
	}
	return nil
}

// Drain pulls the pictures held back by decoders that support flushing.
// Their provenance is whatever was captured when they were allocated.
func (m *Machine) Drain() error {
	for _, s := range m.container.Streams {
		if s.Decoder == nil || s.Info.CodecType != media.CodecTypeVideo {
			continue
		}
		flusher, ok := s.Decoder.(codec.Flusher)
		if !ok {
			continue
		}
		for {
			pic, err := flusher.Flush()
			if err != nil {
				s.DecodeErrors++
				m.logger.Debug("decoder drain failed",
					logging.Int("stream_index", s.Info.Index),
					logging.Error(err),
				)
				break
			}
			if pic == nil {
				break
			}
			if err := m.producePicture(s, pic, PacketRecord{Stream: s, PTS: units.NoTimestamp, DTS: units.NoTimestamp}); err != nil {
				var emitErr *emitError
				if errors.As(err, &emitErr) {
					return emitErr.err
				}
				return err
			}
		}
	}
	return nil
}

// Pending returns the number of allocated pictures not yet produced or released.
func (m *Machine) Pending() int {
	return len(m.pending)
}

// Close drops every pending provenance record.
func (m *Machine) Close() {
	clear(m.pending)
	m.inflight = nil
}

func (m *Machine) unbind(s *Stream, err error) {
	if s.Decoder != nil {
		if cerr := s.Decoder.Close(); cerr != nil {
			m.logger.Debug("decoder close failed", logging.Int("stream_index", s.Info.Index), logging.Error(cerr))
		}
	}
	s.Decoder = nil
	s.DecoderErr = err
	delete(m.allocators, s)
}

func (m *Machine) produce(rec PacketRecord, payload Payload, size int, release func()) error {
	f := &Frame{Source: rec, Payload: payload, Size: size, release: release}
	defer f.Release()
	f.FileFrameNumber, f.StreamFrameNumber = m.container.RecordFrame(rec.Stream, size)
	if m.emit == nil {
		return nil
	}
	if err := m.emit(f); err != nil {
		return &emitError{err: err}
	}
	return nil
}

func (m *Machine) producePicture(s *Stream, pic *codec.Picture, fallback PacketRecord) error {
	rec, ok := m.pending[pic.Handle]
	if ok {
		delete(m.pending, pic.Handle)
	} else {
		rec = fallback
	}
	release := func() {}
	if alloc := m.allocators[s]; alloc != nil {
		release = func() { alloc.ReleaseBuffer(pic) }
	}
	return m.produce(rec, &PicturePayload{Picture: pic}, rec.Size, release)
}

func audioStep(m *Machine, s *Stream, rec PacketRecord, cur PacketCursor) (PacketCursor, error) {
	dec := s.Decoder.(codec.AudioDecoder)
	n, samples, err := dec.DecodeAudio(cur.Remaining())
	if err != nil {
		return cur, err
	}
	next, err := cur.Advance(n)
	if err != nil {
		return cur, err
	}
	if len(samples) > 0 {
		if err := m.produce(rec, &SamplePayload{Samples: samples}, n, nil); err != nil {
			return cur, err
		}
	}
	return next, nil
}

func videoStep(m *Machine, s *Stream, rec PacketRecord, cur PacketCursor) (PacketCursor, error) {
	dec := s.Decoder.(codec.VideoDecoder)
	m.inflight = &rec
	_, pic, err := dec.DecodeVideo(cur.Remaining())
	m.inflight = nil
	if err != nil {
		return cur, err
	}
	// A video decode call always takes the whole packet.
	next, _ := cur.Advance(cur.Len())
	if pic == nil {
		return next, nil
	}
	if err := m.producePicture(s, pic, rec); err != nil {
		return cur, err
	}
	return next, nil
}

func subtitleStep(m *Machine, s *Stream, rec PacketRecord, cur PacketCursor) (PacketCursor, error) {
	dec := s.Decoder.(codec.SubtitleDecoder)
	n, sub, err := dec.DecodeSubtitle(cur.Remaining())
	if err != nil {
		return cur, err
	}
	next, _ := cur.Advance(cur.Len())
	if sub == nil {
		return next, nil
	}
	if err := m.produce(rec, &SubtitlePayload{Subtitle: sub}, n, nil); err != nil {
		return cur, err
	}
	return next, nil
}

// hookAllocator records provenance for every picture buffer a decoder takes.
type hookAllocator struct {
	machine *Machine
	stream  *Stream
	inner   codec.Allocator
}

func (a *hookAllocator) GetBuffer(pic *codec.Picture) error {
	if err := a.inner.GetBuffer(pic); err != nil {
		return err
	}
	rec := PacketRecord{Stream: a.stream, PTS: units.NoTimestamp, DTS: units.NoTimestamp}
	if inflight := a.machine.inflight; inflight != nil && inflight.Stream == a.stream {
		rec = *inflight
	}
	a.machine.pending[pic.Handle] = rec
	return nil
}

func (a *hookAllocator) ReleaseBuffer(pic *codec.Picture) {
	if pic == nil {
		return
	}
	delete(a.machine.pending, pic.Handle)
	a.inner.ReleaseBuffer(pic)
}

type emitError struct {
	err error
}

func (e *emitError) Error() string { return e.err.Error() }

func (e *emitError) Unwrap() error { return e.err }

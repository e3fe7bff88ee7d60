package probe

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"mediaprobe/internal/codec"
	"mediaprobe/internal/media"
)

type fakeDemuxer struct {
	format  media.FormatInfo
	streams []media.StreamInfo
	packets []media.Packet
	readErr error
	closed  bool
}

func (d *fakeDemuxer) Format() media.FormatInfo    { return d.format }
func (d *fakeDemuxer) Streams() []media.StreamInfo { return d.streams }
func (d *fakeDemuxer) Close() error                { d.closed = true; return nil }
func (d *fakeDemuxer) ReadPacket(ctx context.Context) (media.Packet, error) {
	if err := ctx.Err(); err != nil {
		return media.Packet{}, err
	}
	if len(d.packets) == 0 {
		if d.readErr != nil {
			return media.Packet{}, d.readErr
		}
		return media.Packet{}, io.EOF
	}
	pkt := d.packets[0]
	d.packets = d.packets[1:]
	return pkt, nil
}

func openerFor(dmx media.Demuxer) OpenFunc {
	return func(context.Context, string) (media.Demuxer, error) {
		return dmx, nil
	}
}

func audioPacket(stream int, pts int64, data []byte) media.Packet {
	return media.Packet{StreamIndex: stream, Data: data, Size: len(data), PTS: pts, DTS: pts, Duration: 1, Key: true}
}

// chunkAudioDecoder consumes chunk bytes per call and produces samples for
// every call whose index is not listed in silent.
type chunkAudioDecoder struct {
	chunk  int
	silent map[int]bool
	failAt int
	calls  int
	closed bool
}

func (d *chunkAudioDecoder) Name() string          { return "chunk" }
func (d *chunkAudioDecoder) Type() media.CodecType { return media.CodecTypeAudio }
func (d *chunkAudioDecoder) Close() error          { d.closed = true; return nil }

func (d *chunkAudioDecoder) DecodeAudio(data []byte) (int, []byte, error) {
	d.calls++
	if d.failAt > 0 && d.calls == d.failAt {
		return 0, nil, codec.ErrInvalidData
	}
	n := min(d.chunk, len(data))
	if d.silent[d.calls] {
		return n, nil, nil
	}
	return n, make([]byte, n*2), nil
}

// delayedVideoDecoder returns each picture one packet late and keeps the
// last one until Flush or Close.
type delayedVideoDecoder struct {
	alloc  codec.Allocator
	held   *codec.Picture
	closed bool
}

func (d *delayedVideoDecoder) Name() string                       { return "delayed" }
func (d *delayedVideoDecoder) Type() media.CodecType              { return media.CodecTypeVideo }
func (d *delayedVideoDecoder) SetAllocator(alloc codec.Allocator) { d.alloc = alloc }

func (d *delayedVideoDecoder) DecodeVideo(data []byte) (int, *codec.Picture, error) {
	if len(data) == 0 {
		return 0, nil, codec.ErrInvalidData
	}
	pic := &codec.Picture{Width: 2, Height: 2, PixelFormat: "gray"}
	if err := d.alloc.GetBuffer(pic); err != nil {
		return 0, nil, err
	}
	out := d.held
	d.held = pic
	return len(data), out, nil
}

func (d *delayedVideoDecoder) Flush() (*codec.Picture, error) {
	out := d.held
	d.held = nil
	return out, nil
}

func (d *delayedVideoDecoder) Close() error {
	if d.held != nil {
		d.alloc.ReleaseBuffer(d.held)
		d.held = nil
	}
	d.closed = true
	return nil
}

type scriptedOpener struct {
	decoders map[int]codec.Decoder
	errs     map[int]error
}

func (o *scriptedOpener) Open(info media.StreamInfo) (codec.Decoder, error) {
	if err := o.errs[info.Index]; err != nil {
		return nil, err
	}
	if dec, ok := o.decoders[info.Index]; ok {
		return dec, nil
	}
	return nil, fmt.Errorf("%w: %s", codec.ErrDecoderNotFound, info.CodecID)
}

type recordingSink struct {
	events []string
	frames []*Frame
	failOn string
	mu     *sync.Mutex
	out    *[]string
	path   string
}

func newRecordingSink() *recordingSink {
	return &recordingSink{}
}

func (s *recordingSink) note(event string) error {
	s.events = append(s.events, event)
	if s.failOn != "" && strings.HasPrefix(event, s.failOn) {
		return errors.New("sink failed")
	}
	return nil
}

func (s *recordingSink) Tags(c *Container) error {
	return s.note("tags " + c.Format.Tags.Title)
}

func (s *recordingSink) Packet(p PacketRecord) error {
	return s.note(fmt.Sprintf("packet %d/%d", p.FilePacketNumber, p.StreamPacketNumber))
}

func (s *recordingSink) Frame(f *Frame) error {
	s.frames = append(s.frames, f)
	return s.note(fmt.Sprintf("frame %d/%d pkt %d/%d", f.FileFrameNumber, f.StreamFrameNumber,
		f.Source.FilePacketNumber, f.Source.StreamPacketNumber))
}

func (s *recordingSink) Stream(st *Stream) error {
	return s.note(fmt.Sprintf("stream %d %s", st.Info.Index, st.DecoderName()))
}

func (s *recordingSink) File(c *Container) error {
	return s.note(fmt.Sprintf("file %d %d", c.Packets, c.Frames))
}

func (s *recordingSink) Commit() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	*s.out = append(*s.out, s.path)
	return nil
}

type recordingOutput struct {
	mu        sync.Mutex
	opened    []string
	committed []string
}

func (o *recordingOutput) FileSink(path string) FileSink {
	o.mu.Lock()
	o.opened = append(o.opened, path)
	o.mu.Unlock()
	return &recordingSink{mu: &o.mu, out: &o.committed, path: path}
}

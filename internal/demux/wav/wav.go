// Package wav demuxes RIFF/WAVE files into fixed-size PCM packets.
package wav

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"mediaprobe/internal/media"
	"mediaprobe/internal/source"
	"mediaprobe/internal/units"
)

const (
	formatPCM        = 0x0001
	formatADPCM      = 0x0002
	formatFloat      = 0x0003
	formatALaw       = 0x0006
	formatMuLaw      = 0x0007
	formatIMAADPCM   = 0x0011
	formatMP3        = 0x0055
	formatAC3        = 0x2000
	formatExtensible = 0xFFFE

	// Streaming writers leave the data size at 0 or all ones.
	unknownDataSize = 0xFFFFFFFF

	DefaultPacketBytes = 4096
)

// ErrInvalid reports a RIFF/WAVE structure the demuxer cannot follow.
var ErrInvalid = errors.New("invalid wav file")

// Options tunes packetization.
type Options struct {
	PacketBytes int
}

// Probe scores how likely head is the start of a WAV file.
func Probe(head []byte) int {
	if len(head) >= 12 && string(head[0:4]) == "RIFF" && string(head[8:12]) == "WAVE" {
		return 100
	}
	return 0
}

type fmtChunk struct {
	tag           uint16
	channels      int
	sampleRate    int
	byteRate      int
	blockAlign    int
	bitsPerSample int
}

// Demuxer reads one WAV file.
type Demuxer struct {
	src       *source.Source
	format    media.FormatInfo
	stream    media.StreamInfo
	packet    int
	remaining int64 // -1 until EOF
	samples   int64
}

// Open parses the header chunks up to the start of the sample data.
func Open(src *source.Source, opts Options) (*Demuxer, error) {
	var riff [12]byte
	if _, err := io.ReadFull(src, riff[:]); err != nil {
		return nil, fmt.Errorf("read riff header: %w", err)
	}
	if Probe(riff[:]) == 0 {
		return nil, fmt.Errorf("%w: missing RIFF/WAVE signature", ErrInvalid)
	}

	var (
		fc       *fmtChunk
		tags     media.Tags
		dataSize int64 = -1
	)
	for dataSize < 0 {
		id, size, err := readChunkHeader(src)
		if err != nil {
			return nil, fmt.Errorf("%w: no data chunk: %v", ErrInvalid, err)
		}
		switch id {
		case "fmt ":
			body, err := readChunk(src, size)
			if err != nil {
				return nil, err
			}
			if fc, err = parseFmt(body); err != nil {
				return nil, err
			}
		case "LIST":
			body, err := readChunk(src, size)
			if err != nil {
				return nil, err
			}
			parseInfo(body, &tags)
		case "data":
			if fc == nil {
				return nil, fmt.Errorf("%w: data chunk before fmt chunk", ErrInvalid)
			}
			dataSize = int64(size)
			if size == unknownDataSize || size == 0 {
				dataSize = 0
			}
		default:
			if err := src.Discard(int64(size) + int64(size&1)); err != nil {
				return nil, fmt.Errorf("skip %q chunk: %w", id, err)
			}
		}
	}

	d := &Demuxer{src: src, remaining: -1}
	if dataSize > 0 {
		d.remaining = dataSize
	}
	packetBytes := opts.PacketBytes
	if packetBytes <= 0 {
		packetBytes = DefaultPacketBytes
	}
	d.packet = max(packetBytes/fc.blockAlign, 1) * fc.blockAlign

	timeBase := units.Rational{Num: 1, Den: int64(fc.sampleRate)}
	d.stream = media.StreamInfo{
		CodecID:       codecID(fc),
		CodecType:     media.CodecTypeAudio,
		TimeBase:      timeBase,
		CodecTimeBase: timeBase,
		StartTime:     0,
		Duration:      units.NoTimestamp,
		BitRate:       int64(fc.byteRate) * 8,
		SampleRate:    fc.sampleRate,
		Channels:      fc.channels,
		BitsPerSample: fc.bitsPerSample,
		BlockAlign:    fc.blockAlign,
	}
	d.format = media.FormatInfo{
		Name:      "wav",
		LongName:  "WAV / WAVE (Waveform Audio)",
		StartTime: 0,
		Duration:  units.NoTimestamp,
		FileSize:  src.Size(),
		BitRate:   int64(fc.byteRate) * 8,
		Tags:      tags,
	}
	if dataSize > 0 {
		frames := dataSize / int64(fc.blockAlign)
		d.stream.Duration = frames
		d.format.Duration = frames * 1_000_000 / int64(fc.sampleRate)
	}
	return d, nil
}

func (d *Demuxer) Format() media.FormatInfo { return d.format }

func (d *Demuxer) Streams() []media.StreamInfo { return []media.StreamInfo{d.stream} }

// ReadPacket returns the next run of whole sample frames. A truncated tail is
// returned as is.
func (d *Demuxer) ReadPacket(ctx context.Context) (media.Packet, error) {
	if err := ctx.Err(); err != nil {
		return media.Packet{}, err
	}
	want := int64(d.packet)
	if d.remaining >= 0 {
		if d.remaining == 0 {
			return media.Packet{}, io.EOF
		}
		want = min(want, d.remaining)
	}
	buf := make([]byte, want)
	n, err := io.ReadFull(d.src, buf)
	if n == 0 {
		if err == nil || errors.Is(err, io.ErrUnexpectedEOF) {
			err = io.EOF
		}
		return media.Packet{}, err
	}
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) {
		return media.Packet{}, fmt.Errorf("read samples: %w", err)
	}
	if d.remaining >= 0 {
		d.remaining -= int64(n)
		if n < len(buf) {
			// The header promised more data than the file holds.
			d.remaining = 0
		}
	}
	frames := int64(n / d.stream.BlockAlign)
	pkt := media.Packet{
		StreamIndex: 0,
		Data:        buf[:n],
		Size:        n,
		PTS:         d.samples,
		DTS:         d.samples,
		Duration:    frames,
		Key:         true,
	}
	d.samples += frames
	return pkt, nil
}

func (d *Demuxer) Close() error {
	return d.src.Close()
}

func readChunkHeader(r io.Reader) (string, uint32, error) {
	var hdr [8]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return "", 0, err
	}
	return string(hdr[0:4]), binary.LittleEndian.Uint32(hdr[4:8]), nil
}

const maxHeaderChunk = 1 << 20

func readChunk(src *source.Source, size uint32) ([]byte, error) {
	if size > maxHeaderChunk {
		return nil, fmt.Errorf("%w: header chunk of %d bytes", ErrInvalid, size)
	}
	body := make([]byte, int(size)+int(size&1))
	if _, err := io.ReadFull(src, body); err != nil {
		return nil, fmt.Errorf("read chunk: %w", err)
	}
	return body[:size], nil
}

func parseFmt(body []byte) (*fmtChunk, error) {
	if len(body) < 16 {
		return nil, fmt.Errorf("%w: fmt chunk too short (%d bytes)", ErrInvalid, len(body))
	}
	le := binary.LittleEndian
	fc := &fmtChunk{
		tag:           le.Uint16(body[0:2]),
		channels:      int(le.Uint16(body[2:4])),
		sampleRate:    int(le.Uint32(body[4:8])),
		byteRate:      int(le.Uint32(body[8:12])),
		blockAlign:    int(le.Uint16(body[12:14])),
		bitsPerSample: int(le.Uint16(body[14:16])),
	}
	if fc.tag == formatExtensible && len(body) >= 26 {
		// The sub-format GUID starts with the real format tag.
		fc.tag = le.Uint16(body[24:26])
	}
	if fc.channels == 0 || fc.sampleRate == 0 {
		return nil, fmt.Errorf("%w: %d channels at %d Hz", ErrInvalid, fc.channels, fc.sampleRate)
	}
	if fc.blockAlign == 0 {
		fc.blockAlign = max(fc.channels*fc.bitsPerSample/8, 1)
	}
	return fc, nil
}

func codecID(fc *fmtChunk) string {
	switch fc.tag {
	case formatPCM:
		switch fc.bitsPerSample {
		case 8:
			return "pcm_u8"
		case 16:
			return "pcm_s16le"
		case 24:
			return "pcm_s24le"
		case 32:
			return "pcm_s32le"
		}
	case formatFloat:
		switch fc.bitsPerSample {
		case 32:
			return "pcm_f32le"
		case 64:
			return "pcm_f64le"
		}
	case formatALaw:
		return "pcm_alaw"
	case formatMuLaw:
		return "pcm_mulaw"
	case formatADPCM:
		return "adpcm_ms"
	case formatIMAADPCM:
		return "adpcm_ima_wav"
	case formatMP3:
		return "mp3"
	case formatAC3:
		return "ac3"
	}
	return fmt.Sprintf("wav_0x%04x", fc.tag)
}

// parseInfo reads a LIST/INFO chunk into tags; other list types are ignored.
func parseInfo(body []byte, tags *media.Tags) {
	if len(body) < 4 || string(body[0:4]) != "INFO" {
		return
	}
	rest := body[4:]
	for len(rest) >= 8 {
		id := string(rest[0:4])
		size := int(binary.LittleEndian.Uint32(rest[4:8]))
		rest = rest[8:]
		if size > len(rest) {
			return
		}
		value := strings.TrimSpace(string(bytes.TrimRight(rest[:size], "\x00")))
		switch id {
		case "INAM":
			tags.Title = value
		case "IART":
			tags.Author = value
		case "ICOP":
			tags.Copyright = value
		case "ICMT":
			tags.Comment = value
		case "IPRD":
			tags.Album = value
		case "IGNR":
			tags.Genre = value
		case "ICRD":
			tags.Year = leadingInt(value, 4)
		case "ITRK", "IPRT":
			tags.Track = leadingInt(value, 0)
		}
		size += size & 1
		if size > len(rest) {
			return
		}
		rest = rest[size:]
	}
}

// leadingInt parses the leading digits of value, at most limit of them when
// limit is positive.
func leadingInt(value string, limit int) int {
	end := 0
	for end < len(value) && value[end] >= '0' && value[end] <= '9' {
		end++
		if limit > 0 && end == limit {
			break
		}
	}
	n, err := strconv.Atoi(value[:end])
	if err != nil {
		return 0
	}
	return n
}

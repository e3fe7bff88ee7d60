package testsupport

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"mediaprobe/internal/codec"
)

// WriteFile writes data to path, creating parent directories.
func WriteFile(t testing.TB, path string, data []byte) string {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

// WAV describes a synthetic RIFF/WAVE file. Zero fields get 16-bit mono
// PCM at 8 kHz.
type WAV struct {
	FormatTag     uint16
	Channels      int
	SampleRate    int
	BitsPerSample int
	// Data is the raw sample payload.
	Data []byte
	// Info entries are written as a LIST/INFO chunk before the data, in order.
	Info [][2]string
	// DeclaredDataSize overrides the size written in the data chunk header.
	DeclaredDataSize *uint32
}

// Bytes renders the file.
func (w WAV) Bytes() []byte {
	if w.FormatTag == 0 {
		w.FormatTag = 1
	}
	if w.Channels == 0 {
		w.Channels = 1
	}
	if w.SampleRate == 0 {
		w.SampleRate = 8000
	}
	if w.BitsPerSample == 0 {
		w.BitsPerSample = 16
	}
	blockAlign := w.Channels * w.BitsPerSample / 8
	le := binary.LittleEndian

	var body bytes.Buffer
	body.WriteString("WAVE")

	fmtChunk := make([]byte, 16)
	le.PutUint16(fmtChunk[0:], w.FormatTag)
	le.PutUint16(fmtChunk[2:], uint16(w.Channels))
	le.PutUint32(fmtChunk[4:], uint32(w.SampleRate))
	le.PutUint32(fmtChunk[8:], uint32(w.SampleRate*blockAlign))
	le.PutUint16(fmtChunk[12:], uint16(blockAlign))
	le.PutUint16(fmtChunk[14:], uint16(w.BitsPerSample))
	writeChunk(&body, "fmt ", fmtChunk)

	if len(w.Info) > 0 {
		var info bytes.Buffer
		info.WriteString("INFO")
		for _, entry := range w.Info {
			writeChunk(&info, entry[0], append([]byte(entry[1]), 0))
		}
		writeChunk(&body, "LIST", info.Bytes())
	}

	size := uint32(len(w.Data))
	if w.DeclaredDataSize != nil {
		size = *w.DeclaredDataSize
	}
	body.WriteString("data")
	_ = binary.Write(&body, le, size)
	body.Write(w.Data)

	var out bytes.Buffer
	out.WriteString("RIFF")
	_ = binary.Write(&out, le, uint32(body.Len()))
	out.Write(body.Bytes())
	return out.Bytes()
}

func writeChunk(buf *bytes.Buffer, id string, data []byte) {
	buf.WriteString(id)
	_ = binary.Write(buf, binary.LittleEndian, uint32(len(data)))
	buf.Write(data)
	if len(data)%2 == 1 {
		buf.WriteByte(0)
	}
}

// WriteWAV writes a synthetic WAV file into dir and returns its path.
func WriteWAV(t testing.TB, dir, name string, w WAV) string {
	t.Helper()
	return WriteFile(t, filepath.Join(dir, name), w.Bytes())
}

// Y4M describes a synthetic YUV4MPEG2 stream. Zero fields get 4x2 4:2:0 at
// 25 fps.
type Y4M struct {
	Width  int
	Height int
	Rate   string
	// Colorspace is written as the C parameter when set; PixelFormat must
	// match it and sizes the frames.
	Colorspace  string
	PixelFormat string
	Interlace   string
	Aspect      string
	Frames      int
	// TruncateLast drops this many bytes from the last frame.
	TruncateLast int
}

// Bytes renders the stream.
func (y Y4M) Bytes() []byte {
	if y.Width == 0 {
		y.Width = 4
	}
	if y.Height == 0 {
		y.Height = 2
	}
	if y.Rate == "" {
		y.Rate = "25:1"
	}
	if y.PixelFormat == "" {
		y.PixelFormat = "yuv420p"
	}
	header := []string{"YUV4MPEG2", fmt.Sprintf("W%d", y.Width), fmt.Sprintf("H%d", y.Height), "F" + y.Rate}
	if y.Interlace != "" {
		header = append(header, "I"+y.Interlace)
	}
	if y.Aspect != "" {
		header = append(header, "A"+y.Aspect)
	}
	if y.Colorspace != "" {
		header = append(header, "C"+y.Colorspace)
	}

	var out bytes.Buffer
	out.WriteString(strings.Join(header, " "))
	out.WriteByte('\n')
	frameSize := codec.FrameSize(y.PixelFormat, y.Width, y.Height)
	for i := 0; i < y.Frames; i++ {
		out.WriteString("FRAME\n")
		frame := bytes.Repeat([]byte{byte(i)}, frameSize)
		if i == y.Frames-1 && y.TruncateLast > 0 {
			frame = frame[:frameSize-y.TruncateLast]
		}
		out.Write(frame)
	}
	return out.Bytes()
}

// WriteY4M writes a synthetic Y4M file into dir and returns its path.
func WriteY4M(t testing.TB, dir, name string, y Y4M) string {
	t.Helper()
	return WriteFile(t, filepath.Join(dir, name), y.Bytes())
}

// Cue is one SubRip cue.
type Cue struct {
	Start time.Duration
	End   time.Duration
	Text  string
}

// SRT renders cues as a SubRip document.
func SRT(cues ...Cue) string {
	var b strings.Builder
	for i, cue := range cues {
		fmt.Fprintf(&b, "%d\n%s --> %s\n%s\n\n", i+1, srtTime(cue.Start), srtTime(cue.End), cue.Text)
	}
	return b.String()
}

// WriteSRT writes cues as a SubRip file into dir and returns its path.
func WriteSRT(t testing.TB, dir, name string, cues ...Cue) string {
	t.Helper()
	return WriteFile(t, filepath.Join(dir, name), []byte(SRT(cues...)))
}

func srtTime(d time.Duration) string {
	ms := d.Milliseconds()
	return fmt.Sprintf("%02d:%02d:%02d,%03d", ms/3_600_000, ms/60_000%60, ms/1000%60, ms%1000)
}

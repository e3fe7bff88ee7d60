package report

import (
	"bytes"
	"io"
	"sync"

	"mediaprobe/internal/probe"
)

// Text writes the bracketed key=value block format.
type Text struct {
	mu        sync.Mutex
	w         io.Writer
	builder   Builder
	streaming bool
}

// NewText returns a text writer for w that buffers each file's blocks until
// Commit, so concurrently probed files never interleave.
func NewText(w io.Writer, builder Builder) *Text {
	return &Text{w: w, builder: builder}
}

// NewStreamingText returns a text writer that writes every block to w as
// soon as it is built. Use it only when files are probed one at a time.
func NewStreamingText(w io.Writer, builder Builder) *Text {
	return &Text{w: w, builder: builder, streaming: true}
}

// FileSink returns the sink for one file's blocks.
func (t *Text) FileSink(string) probe.FileSink {
	return &sectionSink{builder: t.builder, commit: t.write, immediate: t.streaming}
}

func (t *Text) write(sections []Section) error {
	var buf bytes.Buffer
	for _, s := range sections {
		WriteSection(&buf, s)
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	_, err := t.w.Write(buf.Bytes())
	return err
}

// WriteSection appends one block to buf.
func WriteSection(buf *bytes.Buffer, s Section) {
	buf.WriteString("[" + s.Kind + "]\n")
	for _, f := range s.Fields {
		buf.WriteString(f.Key)
		buf.WriteByte('=')
		buf.WriteString(f.Value)
		buf.WriteByte('\n')
	}
	buf.WriteString("[/" + s.Kind + "]\n")
}

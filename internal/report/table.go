package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"mediaprobe/internal/language"
	"mediaprobe/internal/media"
	"mediaprobe/internal/media/audio"
	"mediaprobe/internal/probe"
	"mediaprobe/internal/textutil"
	"mediaprobe/internal/units"
)

const maxTitleWidth = 72

// Table prints one stream summary table per file. Packet and frame blocks
// are not shown; their counts appear in the table. The primary audio stream
// is marked with an asterisk.
type Table struct {
	mu                sync.Mutex
	w                 io.Writer
	preferredLanguage string
}

// NewTable returns a table writer for w. preferredLanguage steers the
// primary audio choice and may be empty.
func NewTable(w io.Writer, preferredLanguage string) *Table {
	return &Table{w: w, preferredLanguage: preferredLanguage}
}

// FileSink collects the stream and file summaries until Commit.
func (t *Table) FileSink(string) probe.FileSink {
	return &tableSink{out: t}
}

type streamRow struct {
	info    media.StreamInfo
	decoder string
	packets int64
	frames  int64
}

type tableSink struct {
	out     *Table
	streams []streamRow
	file    *probe.Container
}

func (s *tableSink) Tags(*probe.Container) error { return nil }

func (s *tableSink) Packet(probe.PacketRecord) error { return nil }

func (s *tableSink) Frame(*probe.Frame) error { return nil }

func (s *tableSink) Stream(st *probe.Stream) error {
	s.streams = append(s.streams, streamRow{
		info:    st.Info,
		decoder: st.DecoderName(),
		packets: st.Packets,
		frames:  st.Frames,
	})
	return nil
}

func (s *tableSink) File(c *probe.Container) error {
	s.file = c
	return nil
}

func (s *tableSink) Commit() error {
	if s.file == nil && len(s.streams) == 0 {
		return nil
	}
	rendered := s.render()
	s.out.mu.Lock()
	defer s.out.mu.Unlock()
	_, err := io.WriteString(s.out.w, rendered+"\n")
	return err
}

func (s *tableSink) render() string {
	infos := make([]media.StreamInfo, 0, len(s.streams))
	for _, row := range s.streams {
		infos = append(infos, row.info)
	}
	primary := audio.Select(infos, s.out.preferredLanguage)

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"#", "Type", "Codec", "Details", "Language", "Duration", "Packets", "Frames"})
	for _, row := range s.streams {
		info := row.info
		codecName := info.CodecID
		if row.decoder != "" && row.decoder != codecName {
			codecName += " (" + row.decoder + ")"
		}
		lang := ""
		if info.Language != "" {
			lang = language.DisplayName(info.Language)
		}
		index := strconv.Itoa(info.Index)
		if primary.IsPrimary(info.Index) {
			index += " *"
		}
		tw.AppendRow(table.Row{
			index,
			info.CodecType.String(),
			codecName,
			streamDetails(info),
			lang,
			units.TimeString(info.Duration, info.TimeBase, units.Pretty),
			row.packets,
			row.frames,
		})
	}
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight},
		{Number: 7, Align: text.AlignRight},
		{Number: 8, Align: text.AlignRight},
	})
	if c := s.file; c != nil {
		tw.SetTitle(textutil.Truncate(textutil.SanitizeValue(c.Format.Filename), maxTitleWidth))
		tw.SetCaption(fileCaption(c))
	}
	return tw.Render()
}

func streamDetails(info media.StreamInfo) string {
	var parts []string
	switch info.CodecType {
	case media.CodecTypeVideo:
		parts = append(parts, fmt.Sprintf("%dx%d", info.Width, info.Height))
		if info.PixelFormat != "" {
			parts = append(parts, info.PixelFormat)
		}
		if !info.FrameRate.IsZero() {
			parts = append(parts, strconv.FormatFloat(info.FrameRate.Float64(), 'f', 3, 64)+" fps")
		}
		if info.Interlaced {
			parts = append(parts, "interlaced")
		}
	case media.CodecTypeAudio:
		parts = append(parts, units.ValueString(float64(info.SampleRate), units.UnitHertz, units.Pretty))
		parts = append(parts, fmt.Sprintf("%d ch", info.Channels))
		if info.BitsPerSample > 0 {
			parts = append(parts, fmt.Sprintf("%d bit", info.BitsPerSample))
		}
	}
	return strings.Join(parts, ", ")
}

func fileCaption(c *probe.Container) string {
	f := c.Format
	parts := []string{
		"format " + f.Name,
		"duration " + units.TimeString(f.Duration, units.TimeBaseMicros, units.Pretty),
		"size " + units.ValueString(float64(f.FileSize), units.UnitByte, units.Pretty),
	}
	if f.BitRate > 0 {
		parts = append(parts, "bit rate "+units.ValueString(float64(f.BitRate), units.UnitBitPerSecond, units.Pretty))
	}
	if c.Packets > 0 {
		parts = append(parts, fmt.Sprintf("%d packets", c.Packets))
	}
	if c.Frames > 0 {
		parts = append(parts, fmt.Sprintf("%d frames", c.Frames))
	}
	return strings.Join(parts, " | ")
}

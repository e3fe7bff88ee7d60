// Package srt demuxes SubRip subtitle files. Every cue becomes one packet in
// a 1/1000 time base.
package srt

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"mediaprobe/internal/media"
	"mediaprobe/internal/source"
	"mediaprobe/internal/units"
)

// maxFileSize bounds how much text is buffered for one subtitle file.
const maxFileSize = 32 << 20

var (
	// ErrNoCues is returned when the file holds no parsable cue.
	ErrNoCues = errors.New("no subtitle cues found")

	timingLine = regexp.MustCompile(`^(\d{1,3}):(\d{2}):(\d{2})[,.](\d{3})\s*-->\s*(\d{1,3}):(\d{2}):(\d{2})[,.](\d{3})`)
	probeHead  = regexp.MustCompile(`^(?:\xEF\xBB\xBF)?\s*\d+\s*\r?\n\d{1,3}:\d{2}:\d{2}[,.]\d{3}\s*-->`)
)

var bom = []byte{0xEF, 0xBB, 0xBF}

// Probe scores how likely head is the start of a SubRip file. Text formats
// are matched by pattern, so the score stays below binary signatures.
func Probe(head []byte) int {
	if probeHead.Match(head) {
		return 50
	}
	return 0
}

type cue struct {
	start int64
	end   int64
	text  string
}

// Demuxer serves the parsed cues of one file.
type Demuxer struct {
	src    *source.Source
	format media.FormatInfo
	stream media.StreamInfo
	cues   []cue
	next   int
}

// Open reads and parses the whole file.
func Open(src *source.Source) (*Demuxer, error) {
	data, err := io.ReadAll(io.LimitReader(src, maxFileSize+1))
	if err != nil {
		return nil, fmt.Errorf("read subtitles: %w", err)
	}
	if len(data) > maxFileSize {
		return nil, fmt.Errorf("subtitle file larger than %d bytes", maxFileSize)
	}
	cues := parse(data)
	if len(cues) == 0 {
		return nil, ErrNoCues
	}
	slices.SortStableFunc(cues, func(a, b cue) int {
		switch {
		case a.start < b.start:
			return -1
		case a.start > b.start:
			return 1
		}
		return 0
	})

	var end int64
	for _, c := range cues {
		end = max(end, c.end)
	}
	timeBase := units.Rational{Num: 1, Den: 1000}
	return &Demuxer{
		src:  src,
		cues: cues,
		stream: media.StreamInfo{
			CodecID:       "subrip",
			CodecType:     media.CodecTypeSubtitle,
			TimeBase:      timeBase,
			CodecTimeBase: timeBase,
			StartTime:     cues[0].start,
			Duration:      end - cues[0].start,
			NumFrames:     int64(len(cues)),
		},
		format: media.FormatInfo{
			Name:      "srt",
			LongName:  "SubRip subtitle",
			StartTime: cues[0].start * 1000,
			Duration:  (end - cues[0].start) * 1000,
			FileSize:  src.Size(),
		},
	}, nil
}

func (d *Demuxer) Format() media.FormatInfo { return d.format }

func (d *Demuxer) Streams() []media.StreamInfo { return []media.StreamInfo{d.stream} }

// ReadPacket returns the next cue in start order.
func (d *Demuxer) ReadPacket(ctx context.Context) (media.Packet, error) {
	if err := ctx.Err(); err != nil {
		return media.Packet{}, err
	}
	if d.next >= len(d.cues) {
		return media.Packet{}, io.EOF
	}
	c := d.cues[d.next]
	d.next++
	data := []byte(c.text)
	return media.Packet{
		StreamIndex: 0,
		Data:        data,
		Size:        len(data),
		PTS:         c.start,
		DTS:         c.start,
		Duration:    c.end - c.start,
		Key:         true,
	}, nil
}

func (d *Demuxer) Close() error {
	return d.src.Close()
}

// parse splits the document into cues. Blocks without a timing line are
// skipped; the numeric counter line is optional.
func parse(data []byte) []cue {
	data = bytes.TrimPrefix(data, bom)
	text := strings.ReplaceAll(string(data), "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	var (
		cues    []cue
		current *cue
		lines   []string
	)
	flush := func() {
		if current != nil {
			current.text = strings.Join(lines, "\n")
			cues = append(cues, *current)
		}
		current, lines = nil, nil
	}
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if m := timingLine.FindStringSubmatch(trimmed); m != nil {
			flush()
			start, end := millis(m[1:5]), millis(m[5:9])
			if end < start {
				end = start
			}
			current = &cue{start: start, end: end}
			continue
		}
		if current == nil {
			continue
		}
		if trimmed == "" {
			flush()
			continue
		}
		lines = append(lines, strings.TrimRight(line, " \t"))
	}
	flush()
	return cues
}

func millis(parts []string) int64 {
	var v [4]int64
	for i, p := range parts {
		v[i], _ = strconv.ParseInt(p, 10, 64)
	}
	return ((v[0]*60+v[1])*60+v[2])*1000 + v[3]
}

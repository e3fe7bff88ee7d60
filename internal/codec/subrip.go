package codec

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"mediaprobe/internal/media"
)

type subRipDecoder struct{}

func newSubRipDecoder(media.StreamInfo, Options) (Decoder, error) {
	return subRipDecoder{}, nil
}

func (subRipDecoder) Name() string { return "subrip" }

func (subRipDecoder) Type() media.CodecType { return media.CodecTypeSubtitle }

func (subRipDecoder) Close() error { return nil }

// DecodeSubtitle turns a cue payload into a text event, one rect per line.
// An empty cue consumes the packet without producing an event.
func (subRipDecoder) DecodeSubtitle(data []byte) (int, *Subtitle, error) {
	if !utf8.Valid(data) {
		return 0, nil, fmt.Errorf("%w: subtitle text is not valid UTF-8", ErrInvalidData)
	}
	text := strings.TrimSpace(strings.ReplaceAll(string(data), "\r\n", "\n"))
	if text == "" {
		return len(data), nil, nil
	}
	return len(data), &Subtitle{Format: 1, Rects: strings.Split(text, "\n")}, nil
}

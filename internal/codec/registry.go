package codec

import (
	"fmt"
	"sort"
	"strings"

	"mediaprobe/internal/media"
)

// DefaultMaxAudioSamples bounds the sample frames an audio decoder returns per call.
const DefaultMaxAudioSamples = 1152

// Options tunes the built-in decoders.
type Options struct {
	MaxAudioSamples int
}

// Factory builds a decoder bound to one stream.
type Factory func(info media.StreamInfo, opts Options) (Decoder, error)

// Registry maps codec identifiers to decoder factories.
type Registry struct {
	opts      Options
	factories map[string]Factory
}

// NewRegistry returns a registry populated with the built-in decoders.
func NewRegistry(opts Options) *Registry {
	if opts.MaxAudioSamples <= 0 {
		opts.MaxAudioSamples = DefaultMaxAudioSamples
	}
	r := &Registry{opts: opts, factories: make(map[string]Factory)}
	for id, format := range pcmFormats {
		r.Register(id, newPCMFactory(id, format))
	}
	r.Register("rawvideo", newRawVideoDecoder)
	r.Register("subrip", newSubRipDecoder)
	return r
}

// Register binds a factory to a codec identifier, replacing any previous one.
func (r *Registry) Register(codecID string, factory Factory) {
	r.factories[strings.ToLower(strings.TrimSpace(codecID))] = factory
}

// Open creates a decoder for the stream.
func (r *Registry) Open(info media.StreamInfo) (Decoder, error) {
	id := strings.ToLower(strings.TrimSpace(info.CodecID))
	factory, ok := r.factories[id]
	if !ok {
		return nil, fmt.Errorf("%w: codec %q", ErrDecoderNotFound, info.CodecID)
	}
	dec, err := factory(info, r.opts)
	if err != nil {
		return nil, fmt.Errorf("open %s decoder: %w", id, err)
	}
	return dec, nil
}

// Codecs lists the registered codec identifiers in sorted order.
func (r *Registry) Codecs() []string {
	ids := make([]string, 0, len(r.factories))
	for id := range r.factories {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

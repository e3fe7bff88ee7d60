package codec

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"mediaprobe/internal/media"
)

type pcmFormat struct {
	sampleBytes int
	toS16       func(b []byte) int16
}

var pcmFormats = map[string]pcmFormat{
	"pcm_u8": {1, func(b []byte) int16 { return int16(int(b[0])-128) << 8 }},
	"pcm_s16le": {2, func(b []byte) int16 {
		return int16(binary.LittleEndian.Uint16(b))
	}},
	"pcm_s16be": {2, func(b []byte) int16 {
		return int16(binary.BigEndian.Uint16(b))
	}},
	"pcm_s24le": {3, func(b []byte) int16 {
		v := int32(b[0])<<8 | int32(b[1])<<16 | int32(b[2])<<24
		return int16(v >> 16)
	}},
	"pcm_s32le": {4, func(b []byte) int16 {
		return int16(int32(binary.LittleEndian.Uint32(b)) >> 16)
	}},
	"pcm_f32le": {4, func(b []byte) int16 {
		return floatToS16(float64(math.Float32frombits(binary.LittleEndian.Uint32(b))))
	}},
	"pcm_f64le": {8, func(b []byte) int16 {
		return floatToS16(math.Float64frombits(binary.LittleEndian.Uint64(b)))
	}},
}

func floatToS16(v float64) int16 {
	if math.IsNaN(v) {
		return 0
	}
	scaled := math.Round(v * 32767)
	return int16(max(-32768, min(32767, scaled)))
}

type pcmDecoder struct {
	name       string
	format     pcmFormat
	channels   int
	blockAlign int
	maxSamples int
}

func newPCMFactory(id string, format pcmFormat) Factory {
	return func(info media.StreamInfo, opts Options) (Decoder, error) {
		if info.Channels <= 0 {
			return nil, errors.New("channel count must be positive")
		}
		if info.SampleRate <= 0 {
			return nil, errors.New("sample rate must be positive")
		}
		return &pcmDecoder{
			name:       id,
			format:     format,
			channels:   info.Channels,
			blockAlign: format.sampleBytes * info.Channels,
			maxSamples: opts.MaxAudioSamples,
		}, nil
	}
}

func (d *pcmDecoder) Name() string { return d.name }

func (d *pcmDecoder) Type() media.CodecType { return media.CodecTypeAudio }

func (d *pcmDecoder) Close() error { return nil }

// DecodeAudio converts up to maxSamples sample frames from the head of data.
func (d *pcmDecoder) DecodeAudio(data []byte) (int, []byte, error) {
	if len(data) == 0 {
		return 0, nil, nil
	}
	if len(data) < d.blockAlign {
		return 0, nil, fmt.Errorf("%w: %d trailing bytes shorter than block align %d", ErrInvalidData, len(data), d.blockAlign)
	}

	frames := min(len(data)/d.blockAlign, d.maxSamples)
	samples := frames * d.channels
	out := make([]byte, samples*2)
	step := d.format.sampleBytes
	for i := 0; i < samples; i++ {
		v := d.format.toS16(data[i*step : (i+1)*step])
		binary.LittleEndian.PutUint16(out[i*2:], uint16(v))
	}
	return frames * d.blockAlign, out, nil
}

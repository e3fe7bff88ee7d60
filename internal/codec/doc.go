// Package codec provides the decoders the probe pipeline binds to streams.
//
// Decoders are split by media kind because each kind consumes its input
// differently: AudioDecoder may consume only part of a packet per call and
// returns the byte count it used, VideoDecoder takes the whole packet and
// obtains picture memory through an Allocator so the caller can attach
// provenance at allocation time, SubtitleDecoder yields at most one event per
// packet. Registry maps codec identifiers to decoder factories; an unknown
// identifier reports ErrDecoderNotFound.
//
// Built-in decoders:
//   - pcm_u8, pcm_s16le, pcm_s16be, pcm_s24le, pcm_s32le, pcm_f32le, pcm_f64le
//   - rawvideo (planar YUV/gray layouts from pixfmt.go)
//   - subrip
package codec

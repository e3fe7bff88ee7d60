// Package audio ranks the audio streams of a container and picks the one a
// player would most likely default to.
//
// Candidates are ranked by:
//  1. Preferred language, when one is configured
//  2. Channel count (8ch > 6ch > 4ch > 2ch > mono)
//  3. Lossless codecs over lossy (PCM, FLAC, ALAC, TrueHD)
//  4. Bits per sample, then sample rate
//
// Ties keep stream order. The table report uses the selection to mark the
// primary audio stream.
package audio

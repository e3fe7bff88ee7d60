package audio

import (
	"testing"

	"mediaprobe/internal/media"
)

func TestSelectPrefersHighestChannelCount(t *testing.T) {
	streams := []media.StreamInfo{
		{Index: 0, CodecType: media.CodecTypeVideo, CodecID: "rawvideo"},
		{Index: 1, CodecType: media.CodecTypeAudio, CodecID: "pcm_s16le", Channels: 2, BitsPerSample: 16},
		{Index: 2, CodecType: media.CodecTypeAudio, CodecID: "pcm_s16le", Channels: 6, BitsPerSample: 16},
		{Index: 3, CodecType: media.CodecTypeAudio, CodecID: "pcm_s16le", Channels: 1, BitsPerSample: 16},
	}

	sel := Select(streams, "")
	if sel.PrimaryIndex != 2 {
		t.Fatalf("expected 6-channel track (index 2), got %d", sel.PrimaryIndex)
	}
	want := []int{2, 1, 3}
	if len(sel.Ranked) != len(want) {
		t.Fatalf("ranked = %v, want %v", sel.Ranked, want)
	}
	for i := range want {
		if sel.Ranked[i] != want[i] {
			t.Fatalf("ranked = %v, want %v", sel.Ranked, want)
		}
	}
	if !sel.IsPrimary(2) || sel.IsPrimary(1) {
		t.Fatal("IsPrimary disagrees with PrimaryIndex")
	}
}

func TestSelectPrefersLosslessOverLossy(t *testing.T) {
	streams := []media.StreamInfo{
		{Index: 0, CodecType: media.CodecTypeAudio, CodecID: "pcm_mulaw", Channels: 2, BitsPerSample: 8},
		{Index: 1, CodecType: media.CodecTypeAudio, CodecID: "pcm_u8", Channels: 2, BitsPerSample: 8},
	}
	if sel := Select(streams, ""); sel.PrimaryIndex != 1 {
		t.Fatalf("expected lossless pcm_u8 (index 1), got %d", sel.PrimaryIndex)
	}
}

func TestSelectHonorsPreferredLanguage(t *testing.T) {
	streams := []media.StreamInfo{
		{Index: 0, CodecType: media.CodecTypeAudio, CodecID: "pcm_s24le", Channels: 6, BitsPerSample: 24, Language: "eng"},
		{Index: 1, CodecType: media.CodecTypeAudio, CodecID: "pcm_s16le", Channels: 2, BitsPerSample: 16, Language: "ger"},
	}
	if sel := Select(streams, "de"); sel.PrimaryIndex != 1 {
		t.Fatalf("expected German track, got %d", sel.PrimaryIndex)
	}
	if sel := Select(streams, ""); sel.PrimaryIndex != 0 {
		t.Fatalf("expected 5.1 track without preference, got %d", sel.PrimaryIndex)
	}
}

func TestSelectTiesKeepStreamOrder(t *testing.T) {
	streams := []media.StreamInfo{
		{Index: 4, CodecType: media.CodecTypeAudio, CodecID: "pcm_s16le", Channels: 2, BitsPerSample: 16, SampleRate: 48000},
		{Index: 7, CodecType: media.CodecTypeAudio, CodecID: "pcm_s16le", Channels: 2, BitsPerSample: 16, SampleRate: 48000},
	}
	if sel := Select(streams, ""); sel.PrimaryIndex != 4 {
		t.Fatalf("expected first stream on tie, got %d", sel.PrimaryIndex)
	}
}

func TestSelectWithoutAudio(t *testing.T) {
	sel := Select([]media.StreamInfo{{Index: 0, CodecType: media.CodecTypeSubtitle}}, "en")
	if sel.HasPrimary() || sel.PrimaryIndex != -1 || len(sel.Ranked) != 0 {
		t.Fatalf("unexpected selection %+v", sel)
	}
}

package media

import "testing"

func TestCodecTypeRoundTrip(t *testing.T) {
	for _, kind := range []CodecType{CodecTypeVideo, CodecTypeAudio, CodecTypeData, CodecTypeSubtitle, CodecTypeUnknown} {
		if got := ParseCodecType(kind.String()); got != kind {
			t.Fatalf("ParseCodecType(%q) = %v, want %v", kind.String(), got, kind)
		}
	}
	if got := CodecType(42).String(); got != "unknown" {
		t.Fatalf("out of range codec type rendered as %q", got)
	}
	if got := ParseCodecType(" Audio "); got != CodecTypeAudio {
		t.Fatalf("expected case-insensitive parse, got %v", got)
	}
}

func TestPacketPayloadSize(t *testing.T) {
	if got := (Packet{Data: make([]byte, 12)}).PayloadSize(); got != 12 {
		t.Fatalf("expected 12, got %d", got)
	}
	if got := (Packet{Size: 300}).PayloadSize(); got != 300 {
		t.Fatalf("expected 300 for metadata-only packet, got %d", got)
	}
}

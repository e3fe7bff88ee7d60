package srt

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"mediaprobe/internal/media"
	"mediaprobe/internal/source"
	"mediaprobe/internal/testsupport"
)

func openText(t *testing.T, text string) *Demuxer {
	t.Helper()
	d, err := Open(source.FromReader("mem.srt", bytes.NewReader([]byte(text)), int64(len(text))))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return d
}

func TestCuesBecomePackets(t *testing.T) {
	d := openText(t, testsupport.SRT(
		testsupport.Cue{Start: time.Second, End: 2500 * time.Millisecond, Text: "Hello"},
		testsupport.Cue{Start: 3 * time.Second, End: 4 * time.Second, Text: "Two\nlines"},
	))

	st := d.Streams()[0]
	if st.CodecID != "subrip" || st.CodecType != media.CodecTypeSubtitle {
		t.Fatalf("unexpected codec %s/%s", st.CodecID, st.CodecType)
	}
	if st.StartTime != 1000 || st.Duration != 3000 || st.NumFrames != 2 {
		t.Fatalf("unexpected stream timing %+v", st)
	}

	first, err := d.ReadPacket(context.Background())
	if err != nil {
		t.Fatalf("ReadPacket: %v", err)
	}
	if first.PTS != 1000 || first.Duration != 1500 || string(first.Data) != "Hello" {
		t.Fatalf("unexpected first packet %+v", first)
	}
	second, err := d.ReadPacket(context.Background())
	if err != nil {
		t.Fatalf("ReadPacket: %v", err)
	}
	if string(second.Data) != "Two\nlines" || second.PTS != 3000 {
		t.Fatalf("unexpected second packet %+v", second)
	}
	if _, err := d.ReadPacket(context.Background()); !errors.Is(err, io.EOF) {
		t.Fatalf("expected io.EOF, got %v", err)
	}
}

func TestParseToleratesBOMAndCRLF(t *testing.T) {
	text := "\xEF\xBB\xBF1\r\n00:00:00.250 --> 00:00:01.000\r\nCRLF cue\r\n\r\n"
	d := openText(t, text)
	pkt, err := d.ReadPacket(context.Background())
	if err != nil {
		t.Fatalf("ReadPacket: %v", err)
	}
	if pkt.PTS != 250 || pkt.Duration != 750 || string(pkt.Data) != "CRLF cue" {
		t.Fatalf("unexpected packet %+v", pkt)
	}
	if Probe([]byte(text)) != 50 {
		t.Fatal("expected BOM-prefixed SubRip to probe")
	}
}

func TestCuesAreServedInStartOrder(t *testing.T) {
	d := openText(t, testsupport.SRT(
		testsupport.Cue{Start: 5 * time.Second, End: 6 * time.Second, Text: "late"},
		testsupport.Cue{Start: time.Second, End: 2 * time.Second, Text: "early"},
	))
	pkt, err := d.ReadPacket(context.Background())
	if err != nil {
		t.Fatalf("ReadPacket: %v", err)
	}
	if string(pkt.Data) != "early" {
		t.Fatalf("expected early cue first, got %q", pkt.Data)
	}
}

func TestOpenWithoutCues(t *testing.T) {
	_, err := Open(source.FromReader("empty", bytes.NewReader([]byte("just text\n")), 0))
	if !errors.Is(err, ErrNoCues) {
		t.Fatalf("expected ErrNoCues, got %v", err)
	}
}

func TestProbeRejectsOtherText(t *testing.T) {
	if Probe([]byte("WEBVTT\n\n00:00.000 --> 00:01.000\n")) != 0 {
		t.Fatal("WebVTT must not probe as SubRip")
	}
}

package demux

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"mediaprobe/internal/testsupport"
)

func TestOpenDetectsNativeFormats(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		path string
		want string
	}{
		{testsupport.WriteWAV(t, dir, "tone.bin", testsupport.WAV{Data: make([]byte, 64)}), "wav"},
		{testsupport.WriteY4M(t, dir, "clip.y4m", testsupport.Y4M{Frames: 2}), "yuv4mpegpipe"},
		{testsupport.WriteSRT(t, dir, "subs.txt", testsupport.Cue{Start: 0, End: time.Second, Text: "hi"}), "srt"},
	}
	for _, tt := range tests {
		d, err := Open(context.Background(), tt.path, Options{})
		if err != nil {
			t.Fatalf("%s: %v", tt.path, err)
		}
		f := d.Format()
		if f.Name != tt.want {
			t.Fatalf("%s detected as %s, want %s", tt.path, f.Name, tt.want)
		}
		if f.Filename != tt.path {
			t.Fatalf("filename = %q, want %q", f.Filename, tt.path)
		}
		info, _ := os.Stat(tt.path)
		if f.FileSize != info.Size() {
			t.Fatalf("file size = %d, want %d", f.FileSize, info.Size())
		}
		if err := d.Close(); err != nil {
			t.Fatalf("close: %v", err)
		}
	}
}

func TestOpenUnknownFormat(t *testing.T) {
	path := testsupport.WriteFile(t, filepath.Join(t.TempDir(), "noise.dat"), []byte("\x00\x01\x02 not media"))
	_, err := Open(context.Background(), path, Options{})
	if !errors.Is(err, ErrUnknownFormat) {
		t.Fatalf("expected ErrUnknownFormat, got %v", err)
	}
}

func TestOpenMissingFile(t *testing.T) {
	_, err := Open(context.Background(), filepath.Join(t.TempDir(), "missing.wav"), Options{})
	if err == nil || !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}

func TestOpenWrapsFormatErrors(t *testing.T) {
	// A WAV signature without chunks.
	path := testsupport.WriteFile(t, filepath.Join(t.TempDir(), "empty.wav"), []byte("RIFF\x04\x00\x00\x00WAVE"))
	_, err := Open(context.Background(), path, Options{})
	if err == nil || errors.Is(err, ErrUnknownFormat) {
		t.Fatalf("expected a wav open error, got %v", err)
	}
}

func TestFFprobeBackendRejectsStdin(t *testing.T) {
	if _, err := Open(context.Background(), "-", Options{Backend: BackendFFprobe}); err == nil {
		t.Fatal("expected error for stdin with the ffprobe backend")
	}
}

func TestFFprobeBackendUsesBinary(t *testing.T) {
	dir := t.TempDir()
	stub := filepath.Join(dir, "ffprobe")
	script := "#!/bin/sh\necho '{\"streams\":[],\"packets\":[],\"format\":{\"format_name\":\"mp3\",\"filename\":\"x\"}}'\n"
	testsupport.WriteFile(t, stub, []byte(script))
	if err := os.Chmod(stub, 0o755); err != nil {
		t.Fatalf("chmod: %v", err)
	}
	d, err := Open(context.Background(), "x", Options{Backend: BackendFFprobe, FFprobeBinary: stub})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if d.Format().Name != "mp3" {
		t.Fatalf("unexpected format %q", d.Format().Name)
	}
}

package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"mediaprobe/internal/config"
)

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Chdir(t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}
	if resolved != filepath.Join(tempHome, ".config", "mediaprobe", "config.toml") {
		t.Fatalf("unexpected resolved path %q", resolved)
	}
	wantHistory := filepath.Join(tempHome, ".local", "share", "mediaprobe", "history.db")
	if cfg.History.Path != wantHistory {
		t.Fatalf("unexpected history path: got %q want %q", cfg.History.Path, wantHistory)
	}
	if cfg.Probe.Output != "text" || cfg.Probe.Backend != "native" || cfg.Probe.Jobs != 1 {
		t.Fatalf("unexpected probe defaults: %+v", cfg.Probe)
	}
	if !cfg.Probe.ShowFiles || !cfg.Probe.ShowStreams || cfg.Probe.ReadPackets {
		t.Fatalf("unexpected show defaults: %+v", cfg.Probe)
	}
	if !cfg.Probe.DrainDecoders {
		t.Fatal("expected decoder draining on by default")
	}
	if cfg.Logging.Dir != "" {
		t.Fatalf("expected no log dir by default, got %q", cfg.Logging.Dir)
	}
}

func TestLoadProjectConfig(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	dir := t.TempDir()
	t.Chdir(dir)
	content := "[probe]\nshow_frames = true\noutput = \"JSON\"\n"
	if err := os.WriteFile(filepath.Join(dir, "mediaprobe.toml"), []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || filepath.Base(resolved) != "mediaprobe.toml" {
		t.Fatalf("expected project config, got %q exists=%v", resolved, exists)
	}
	if cfg.Probe.Output != "json" {
		t.Fatalf("output not normalized: %q", cfg.Probe.Output)
	}
	if !cfg.Probe.ReadFrames || !cfg.Probe.ReadPackets {
		t.Fatalf("show_frames should imply reading frames and packets: %+v", cfg.Probe)
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[probe]\nshow_everything = true\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	_, _, _, err := config.Load(path)
	if err == nil || !strings.Contains(err.Error(), "show_everything") {
		t.Fatalf("expected unknown key error, got %v", err)
	}
}

func TestEnvironmentOverrides(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("MEDIAPROBE_LOG_LEVEL", " DEBUG ")
	t.Setenv("MEDIAPROBE_FFPROBE", "/opt/ffmpeg/bin/ffprobe")

	cfg, _, _, err := config.Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Logging.Level != "debug" {
		t.Fatalf("log level = %q", cfg.Logging.Level)
	}
	if cfg.FFprobeBinary() != "/opt/ffmpeg/bin/ffprobe" {
		t.Fatalf("ffprobe binary = %q", cfg.FFprobeBinary())
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{"output", func(c *config.Config) { c.Probe.Output = "xml" }, "probe.output"},
		{"backend", func(c *config.Config) { c.Probe.Backend = "gstreamer" }, "probe.backend"},
		{"jobs", func(c *config.Config) { c.Probe.Jobs = -2 }, "probe.jobs"},
		{"wav packet", func(c *config.Config) { c.Demux.WAVPacketBytes = 8 }, "demux.wav_packet_bytes"},
		{"samples", func(c *config.Config) { c.Decode.MaxAudioSamples = -1 }, "decode.max_audio_samples"},
		{"log format", func(c *config.Config) { c.Logging.Format = "xml" }, "logging.format"},
		{"log level", func(c *config.Config) { c.Logging.Level = "chatty" }, "logging.level"},
		{"language", func(c *config.Config) { c.Probe.PreferredLanguage = "klingonese" }, "probe.preferred_language"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			tt.mutate(&cfg)
			if err := cfg.Normalize(); err != nil {
				t.Fatalf("normalize: %v", err)
			}
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error mentioning %q, got %v", tt.want, err)
			}
		})
	}
}

func TestCreateSampleRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	var decoded config.Config
	if err := toml.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("sample does not parse: %v", err)
	}
	want := config.Default()
	if decoded.Probe != want.Probe || decoded.Demux != want.Demux || decoded.Decode != want.Decode {
		t.Fatalf("sample drifted from defaults:\n got %+v\nwant %+v", decoded, want)
	}
	if _, _, _, err := config.Load(path); err != nil {
		t.Fatalf("sample does not load: %v", err)
	}
}

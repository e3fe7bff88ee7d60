package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"mediaprobe/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config whose paths live in a per-test temp directory.
// History is disabled unless WithHistory is applied.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.History.Path = filepath.Join(base, "history", "history.db")
	cfgVal.Logging.Level = "error"

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}
	for _, opt := range opts {
		opt(builder)
	}
	return builder.cfg
}

// WithHistory enables the probe history database.
func WithHistory() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.History.Enabled = true
	}
}

// WithLogDir sends a copy of the logs to a temp directory.
func WithLogDir() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Logging.Dir = filepath.Join(b.baseDir, "logs")
	}
}

// WithProbe lets a test adjust the probe section directly.
func WithProbe(fn func(*config.Probe)) ConfigOption {
	return func(b *configBuilder) {
		fn(&b.cfg.Probe)
	}
}

// WithStubbedBinaries writes stub executables for the provided names and
// prepends them to PATH. If names is empty, ffprobe is stubbed.
func WithStubbedBinaries(names ...string) ConfigOption {
	return func(b *configBuilder) {
		if len(names) == 0 {
			names = []string{"ffprobe"}
		}
		binDir := filepath.Join(b.baseDir, "bin")
		if err := os.MkdirAll(binDir, 0o755); err != nil {
			b.t.Fatalf("mkdir bin dir: %v", err)
		}
		script := []byte("#!/bin/sh\nexit 0\n")
		for _, name := range names {
			target := filepath.Join(binDir, name)
			if err := os.WriteFile(target, script, 0o755); err != nil {
				b.t.Fatalf("write stub %s: %v", name, err)
			}
		}
		path := binDir
		if existing := os.Getenv("PATH"); existing != "" {
			path = binDir + string(os.PathListSeparator) + existing
		}
		b.t.Setenv("PATH", path)
	}
}

// BaseDir returns the temp directory backing the config paths.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(filepath.Dir(cfg.History.Path))
}

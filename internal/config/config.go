package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Probe selects what is read from each input and what is reported.
type Probe struct {
	Pretty        bool   `toml:"pretty"`
	ReadPackets   bool   `toml:"read_packets"`
	ReadFrames    bool   `toml:"read_frames"`
	ShowFiles     bool   `toml:"show_files"`
	ShowStreams   bool   `toml:"show_streams"`
	ShowPackets   bool   `toml:"show_packets"`
	ShowFrames    bool   `toml:"show_frames"`
	ShowTags      bool   `toml:"show_tags"`
	KeepGoing     bool   `toml:"keep_going"`
	DrainDecoders bool   `toml:"drain_decoders"`
	Output        string `toml:"output"`
	Backend       string `toml:"backend"`
	FFprobeBinary string `toml:"ffprobe_binary"`
	Jobs          int    `toml:"jobs"`

	// PreferredLanguage steers which audio stream the table report marks as
	// primary. Any ISO 639 or BCP 47 code; empty means no preference.
	PreferredLanguage string `toml:"preferred_language"`
}

// Demux tunes the native demuxers.
type Demux struct {
	// WAVPacketBytes is the target payload size of WAV packets; rounded down
	// to a whole number of sample frames.
	WAVPacketBytes int `toml:"wav_packet_bytes"`
}

// Decode tunes the built-in decoders.
type Decode struct {
	MaxAudioSamples int `toml:"max_audio_samples"`
}

// Logging contains configuration for log output.
type Logging struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
	// Dir, when set, receives a copy of every log line in mediaprobe.log.
	Dir string `toml:"dir"`
}

// History controls the probe history database.
type History struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

// Config encapsulates all configuration values for mediaprobe.
type Config struct {
	Probe   Probe   `toml:"probe"`
	Demux   Demux   `toml:"demux"`
	Decode  Decode  `toml:"decode"`
	Logging Logging `toml:"logging"`
	History History `toml:"history"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. It returns the
// config, the path that was considered, and whether that file exists.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			var strict *toml.StrictMissingError
			if errors.As(err, &strict) {
				return nil, "", false, fmt.Errorf("parse config: %s", strings.TrimSpace(strict.String()))
			}
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.Normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs(projectConfigName)
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the log and history directories when they are in use.
func (c *Config) EnsureDirectories() error {
	if c.Logging.Dir != "" {
		if err := os.MkdirAll(c.Logging.Dir, 0o755); err != nil {
			return fmt.Errorf("create log directory %q: %w", c.Logging.Dir, err)
		}
	}
	if c.History.Enabled && c.History.Path != "" {
		dir := filepath.Dir(c.History.Path)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create history directory %q: %w", dir, err)
		}
	}
	return nil
}

// FFprobeBinary returns the ffprobe executable used by the ffprobe backend.
func (c *Config) FFprobeBinary() string {
	if c.Probe.FFprobeBinary == "" {
		return defaultFFprobeBinary
	}
	return c.Probe.FFprobeBinary
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

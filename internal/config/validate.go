package config

import (
	"errors"
	"fmt"
	"strings"

	"mediaprobe/internal/language"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateProbe(); err != nil {
		return err
	}
	if err := c.validateDemux(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateProbe() error {
	switch c.Probe.Output {
	case OutputText, OutputJSON, OutputTable:
	default:
		return fmt.Errorf("probe.output must be one of text, json, table (got %q)", c.Probe.Output)
	}
	switch c.Probe.Backend {
	case BackendNative, BackendFFprobe:
	default:
		return fmt.Errorf("probe.backend must be native or ffprobe (got %q)", c.Probe.Backend)
	}
	if c.Probe.Jobs < 1 || c.Probe.Jobs > 64 {
		return fmt.Errorf("probe.jobs must be between 1 and 64 (got %d)", c.Probe.Jobs)
	}
	if c.Probe.PreferredLanguage != "" && language.Canonical(c.Probe.PreferredLanguage) == "" {
		return fmt.Errorf("probe.preferred_language is not a known language code (got %q)", c.Probe.PreferredLanguage)
	}
	if c.Probe.Backend == BackendFFprobe && strings.TrimSpace(c.Probe.FFprobeBinary) == "" {
		return errors.New("probe.ffprobe_binary must be set when probe.backend is ffprobe")
	}
	return nil
}

func (c *Config) validateDemux() error {
	if c.Demux.WAVPacketBytes < 64 {
		return fmt.Errorf("demux.wav_packet_bytes must be at least 64 (got %d)", c.Demux.WAVPacketBytes)
	}
	if c.Decode.MaxAudioSamples < 1 {
		return fmt.Errorf("decode.max_audio_samples must be positive (got %d)", c.Decode.MaxAudioSamples)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json (got %q)", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn or error (got %q)", c.Logging.Level)
	}
	return nil
}

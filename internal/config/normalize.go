package config

import (
	"fmt"
	"os"
	"strings"
)

// Normalize canonicalizes enum values, expands paths, applies environment
// overrides and the probe option implications.
func (c *Config) Normalize() error {
	c.normalizeProbe()
	c.normalizeLogging()
	return c.normalizePaths()
}

func (c *Config) normalizeProbe() {
	c.Probe.Output = strings.ToLower(strings.TrimSpace(c.Probe.Output))
	if c.Probe.Output == "" {
		c.Probe.Output = defaultOutput
	}
	c.Probe.Backend = strings.ToLower(strings.TrimSpace(c.Probe.Backend))
	if c.Probe.Backend == "" {
		c.Probe.Backend = defaultBackend
	}
	if value, ok := os.LookupEnv("MEDIAPROBE_FFPROBE"); ok && strings.TrimSpace(value) != "" {
		c.Probe.FFprobeBinary = strings.TrimSpace(value)
	}
	c.Probe.FFprobeBinary = strings.TrimSpace(c.Probe.FFprobeBinary)
	if c.Probe.FFprobeBinary == "" {
		c.Probe.FFprobeBinary = defaultFFprobeBinary
	}
	c.Probe.PreferredLanguage = strings.TrimSpace(c.Probe.PreferredLanguage)
	if c.Probe.Jobs == 0 {
		c.Probe.Jobs = defaultJobs
	}
	if c.Demux.WAVPacketBytes == 0 {
		c.Demux.WAVPacketBytes = defaultWAVPacketBytes
	}
	if c.Decode.MaxAudioSamples == 0 {
		c.Decode.MaxAudioSamples = defaultMaxAudioSamples
	}

	if c.Probe.ShowFrames {
		c.Probe.ReadFrames = true
	}
	if c.Probe.ReadFrames || c.Probe.ShowPackets {
		c.Probe.ReadPackets = true
	}
}

func (c *Config) normalizeLogging() {
	if value, ok := os.LookupEnv("MEDIAPROBE_LOG_LEVEL"); ok && strings.TrimSpace(value) != "" {
		c.Logging.Level = value
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Logging.Dir, err = expandPath(strings.TrimSpace(c.Logging.Dir)); err != nil {
		return fmt.Errorf("logging.dir: %w", err)
	}
	if strings.TrimSpace(c.History.Path) == "" {
		c.History.Path = defaultHistoryPath
	}
	if c.History.Path, err = expandPath(strings.TrimSpace(c.History.Path)); err != nil {
		return fmt.Errorf("history.path: %w", err)
	}
	return nil
}

package config

const (
	defaultConfigPath      = "~/.config/mediaprobe/config.toml"
	projectConfigName      = "mediaprobe.toml"
	defaultOutput          = "text"
	defaultBackend         = "native"
	defaultFFprobeBinary   = "ffprobe"
	defaultJobs            = 1
	defaultWAVPacketBytes  = 4096
	defaultMaxAudioSamples = 1152
	defaultLogLevel        = "warn"
	defaultLogFormat       = "console"
	defaultHistoryPath     = "~/.local/share/mediaprobe/history.db"
)

// Output formats accepted by probe.output.
const (
	OutputText  = "text"
	OutputJSON  = "json"
	OutputTable = "table"
)

// Backends accepted by probe.backend.
const (
	BackendNative  = "native"
	BackendFFprobe = "ffprobe"
)

// Default returns a Config populated with defaults: files and streams are
// reported, nothing is read past the headers.
func Default() Config {
	return Config{
		Probe: Probe{
			ShowFiles:     true,
			ShowStreams:   true,
			DrainDecoders: true,
			Output:        defaultOutput,
			Backend:       defaultBackend,
			FFprobeBinary: defaultFFprobeBinary,
			Jobs:          defaultJobs,
		},
		Demux: Demux{
			WAVPacketBytes: defaultWAVPacketBytes,
		},
		Decode: Decode{
			MaxAudioSamples: defaultMaxAudioSamples,
		},
		Logging: Logging{
			Level:  defaultLogLevel,
			Format: defaultLogFormat,
		},
		History: History{
			Path: defaultHistoryPath,
		},
	}
}

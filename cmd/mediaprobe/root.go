package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"mediaprobe/internal/codec"
	"mediaprobe/internal/config"
	"mediaprobe/internal/demux"
	"mediaprobe/internal/logging"
	"mediaprobe/internal/media"
	"mediaprobe/internal/probe"
	"mediaprobe/internal/report"
	"mediaprobe/internal/store"
	"mediaprobe/internal/units"
)

func newRootCommand() *cobra.Command {
	var configFlag string
	var logLevelFlag string
	var flags probeFlags

	ctx := newCommandContext(&configFlag, &logLevelFlag)

	rootCmd := &cobra.Command{
		Use:           "mediaprobe [flags] FILE...",
		Short:         "Report container, stream, packet and frame details of media files",
		Long:          "mediaprobe reads each input file, optionally decodes its packets, and prints\none report per file. Use - to read standard input.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if shouldSkipConfig(cmd) {
				return nil
			}
			_, err := ctx.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return errors.New("no input files; run `mediaprobe --help` for usage")
			}
			base, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			cfg := *base
			if err := flags.apply(cmd, &cfg); err != nil {
				return err
			}
			return runProbe(cmd.Context(), &cfg, args, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "Log level (debug, info, warn, error)")
	flags.register(rootCmd)

	rootCmd.AddCommand(newConfigCommand(ctx))
	rootCmd.AddCommand(newHistoryCommand(ctx))
	rootCmd.AddCommand(newCheckCommand(ctx))
	rootCmd.AddCommand(newVersionCommand())

	return rootCmd
}

// probeFlags override the [probe] section for one invocation. Only flags
// given on the command line are applied.
type probeFlags struct {
	pretty      bool
	readPackets bool
	readFrames  bool
	showFiles   bool
	showStreams bool
	showPackets bool
	showFrames  bool
	showTags    bool
	keepGoing   bool
	noDrain     bool
	noHistory   bool
	jobs        int
	output      string
	backend     string
	ffprobe     string
	language    string
}

func (f *probeFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.BoolVar(&f.pretty, "pretty", false, "Use units, magnitude prefixes and h:mm:ss time")
	fs.BoolVar(&f.readPackets, "read-packets", false, "Read every packet of each file")
	fs.BoolVar(&f.readFrames, "read-frames", false, "Decode packets into frames (implies --read-packets)")
	fs.BoolVar(&f.showFiles, "show-files", true, "Report the FILE block")
	fs.BoolVar(&f.showStreams, "show-streams", true, "Report one STREAM block per stream")
	fs.BoolVar(&f.showPackets, "show-packets", false, "Report one PACKET block per packet (implies --read-packets)")
	fs.BoolVar(&f.showFrames, "show-frames", false, "Report one FRAME block per frame (implies --read-frames)")
	fs.BoolVar(&f.showTags, "show-tags", false, "Report the TAGS block")
	fs.BoolVarP(&f.keepGoing, "keep-going", "k", false, "Continue after a file fails and exit successfully")
	fs.BoolVar(&f.noDrain, "no-drain", false, "Do not drain buffered decoder output after the last packet")
	fs.BoolVar(&f.noHistory, "no-history", false, "Do not record this run in the history database")
	fs.IntVarP(&f.jobs, "jobs", "j", 1, "Number of files probed at once")
	fs.StringVarP(&f.output, "output", "o", config.OutputText, "Report format (text, json, table)")
	fs.StringVar(&f.backend, "backend", config.BackendNative, "Demuxer backend (native, ffprobe)")
	fs.StringVar(&f.ffprobe, "ffprobe", "", "ffprobe binary used by the ffprobe backend")
	fs.StringVar(&f.language, "prefer-language", "", "Audio language marked as primary in table output")
}

func (f *probeFlags) apply(cmd *cobra.Command, cfg *config.Config) error {
	fs := cmd.Flags()
	boolFlags := []struct {
		name  string
		value bool
		dst   *bool
	}{
		{"pretty", f.pretty, &cfg.Probe.Pretty},
		{"read-packets", f.readPackets, &cfg.Probe.ReadPackets},
		{"read-frames", f.readFrames, &cfg.Probe.ReadFrames},
		{"show-files", f.showFiles, &cfg.Probe.ShowFiles},
		{"show-streams", f.showStreams, &cfg.Probe.ShowStreams},
		{"show-packets", f.showPackets, &cfg.Probe.ShowPackets},
		{"show-frames", f.showFrames, &cfg.Probe.ShowFrames},
		{"show-tags", f.showTags, &cfg.Probe.ShowTags},
		{"keep-going", f.keepGoing, &cfg.Probe.KeepGoing},
	}
	for _, b := range boolFlags {
		if fs.Changed(b.name) {
			*b.dst = b.value
		}
	}
	if fs.Changed("no-drain") {
		cfg.Probe.DrainDecoders = !f.noDrain
	}
	if fs.Changed("no-history") && f.noHistory {
		cfg.History.Enabled = false
	}
	if fs.Changed("jobs") {
		cfg.Probe.Jobs = f.jobs
	}
	if fs.Changed("output") {
		cfg.Probe.Output = strings.ToLower(strings.TrimSpace(f.output))
	}
	if fs.Changed("backend") {
		cfg.Probe.Backend = strings.ToLower(strings.TrimSpace(f.backend))
	}
	if fs.Changed("prefer-language") {
		cfg.Probe.PreferredLanguage = strings.TrimSpace(f.language)
	}
	if fs.Changed("ffprobe") {
		cfg.Probe.FFprobeBinary = strings.TrimSpace(f.ffprobe)
	}
	return cfg.Validate()
}

func probeOptions(p config.Probe) probe.Options {
	return probe.Options{
		ReadPackets: p.ReadPackets,
		ReadFrames:  p.ReadFrames,
		ShowTags:    p.ShowTags,
		ShowPackets: p.ShowPackets,
		ShowFrames:  p.ShowFrames,
		ShowStreams: p.ShowStreams,
		ShowFiles:   p.ShowFiles,
		Drain:       p.DrainDecoders,
	}.Normalize()
}

func reportFlags(p config.Probe) units.Flags {
	if p.Pretty {
		return units.Pretty
	}
	return 0
}

// runProbe probes paths with cfg and writes the reports to stdout. Logs go
// to stderr.
func runProbe(ctx context.Context, cfg *config.Config, paths []string, stdout, stderr io.Writer) error {
	logger, err := logging.NewFromConfig(cfg, stderr)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Close()

	runID := uuid.NewString()
	ctx = logging.WithRunID(ctx, runID)
	log := logging.WithContext(ctx, logger.Logger)

	demuxOpts := demux.Options{
		Backend:        cfg.Probe.Backend,
		FFprobeBinary:  cfg.FFprobeBinary(),
		WAVPacketBytes: cfg.Demux.WAVPacketBytes,
	}
	open := func(ctx context.Context, path string) (media.Demuxer, error) {
		return demux.Open(ctx, path, demuxOpts)
	}
	registry := codec.NewRegistry(codec.Options{MaxAudioSamples: cfg.Decode.MaxAudioSamples})
	prober := probe.NewProber(open, registry, probeOptions(cfg.Probe), logger.Logger)

	runner := &probe.Runner{
		Prober:    prober,
		Jobs:      cfg.Probe.Jobs,
		KeepGoing: cfg.Probe.KeepGoing,
		Logger:    logger.Logger,
	}
	if cfg.History.Enabled {
		history, err := store.Open(ctx, cfg.History.Path)
		if err != nil {
			logging.WarnWithContext(log, "history unavailable", "history_open_failed",
				logging.String("path", cfg.History.Path),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "run with --no-history or fix history.path"),
				logging.String(logging.FieldImpact, "this run is not recorded"),
			)
		} else {
			defer history.Close()
			runner.Recorder = history
		}
	}

	out, closeOutput := newOutput(cfg.Probe, prober.Options(), stdout)
	log.Debug("probe run starting",
		logging.Int("files", len(paths)),
		logging.String("backend", cfg.Probe.Backend),
		logging.String("output", cfg.Probe.Output),
		logging.Int("jobs", cfg.Probe.Jobs),
	)
	summary, runErr := runner.Run(ctx, paths, out)
	closeErr := closeOutput()
	log.Info("probe run finished",
		logging.Int("probed", summary.Probed),
		logging.Int("failed", summary.Failed),
		logging.Int("skipped", summary.Skipped),
	)
	if runErr != nil {
		return runErr
	}
	if closeErr != nil {
		return fmt.Errorf("write report: %w", closeErr)
	}
	return nil
}

// newOutput returns the report writer for the configured format and a
// function that flushes it. Text is streamed unless files run concurrently.
func newOutput(p config.Probe, opts probe.Options, w io.Writer) (probe.Output, func() error) {
	builder := report.NewBuilder(reportFlags(p), opts)
	switch p.Output {
	case config.OutputJSON:
		j := report.NewJSON(w, builder)
		return j, j.Close
	case config.OutputTable:
		return report.NewTable(w, p.PreferredLanguage), func() error { return nil }
	default:
		if p.Jobs <= 1 {
			return report.NewStreamingText(w, builder), func() error { return nil }
		}
		return report.NewText(w, builder), func() error { return nil }
	}
}

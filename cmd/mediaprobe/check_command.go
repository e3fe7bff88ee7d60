package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"mediaprobe/internal/codec"
	"mediaprobe/internal/config"
	"mediaprobe/internal/demux"
	"mediaprobe/internal/deps"
)

func newCheckCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Report built-in formats, decoders and external tools",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			registry := codec.NewRegistry(codec.Options{MaxAudioSamples: cfg.Decode.MaxAudioSamples})
			fmt.Fprintf(out, "Native formats: %s\n", strings.Join(demux.Formats(), ", "))
			fmt.Fprintf(out, "Decoders:       %s\n", strings.Join(registry.Codecs(), ", "))
			fmt.Fprintf(out, "Backend:        %s\n", cfg.Probe.Backend)

			required := cfg.Probe.Backend == config.BackendFFprobe
			statuses := deps.CheckBinaries(cmd.Context(), []deps.Requirement{
				deps.FFprobe(cfg.FFprobeBinary(), required),
			})
			rows := make([][]string, 0, len(statuses))
			for _, s := range statuses {
				detail := s.Detail
				if s.Available {
					detail = s.Path
					if s.Version != "" {
						detail += " (" + s.Version + ")"
					}
				}
				rows = append(rows, []string{s.Name, s.Command, yesNo(s.Available), yesNo(!s.Optional), detail})
			}
			fmt.Fprint(out, renderTable([]string{"Tool", "Command", "Available", "Required", "Detail"}, rows))

			if missing := deps.Missing(statuses); len(missing) > 0 {
				names := make([]string, 0, len(missing))
				for _, m := range missing {
					names = append(names, m.Name)
				}
				return fmt.Errorf("missing required tools: %s", strings.Join(names, ", "))
			}
			return nil
		},
	}
}

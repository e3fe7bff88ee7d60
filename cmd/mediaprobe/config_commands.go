package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"mediaprobe/internal/config"
	"mediaprobe/internal/logging"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration utilities",
	}

	configCmd.AddCommand(newConfigValidateCommand(ctx))
	configCmd.AddCommand(newConfigInitCommand())

	return configCmd
}

func newConfigInitCommand() *cobra.Command {
	var targetPath string
	var overwrite bool

	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Create a sample configuration file",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			target := strings.TrimSpace(targetPath)
			if target == "" {
				defaultPath, err := config.DefaultConfigPath()
				if err != nil {
					return fmt.Errorf("determine default config path: %w", err)
				}
				target = defaultPath
			} else {
				expanded, err := config.ExpandPath(target)
				if err != nil {
					return fmt.Errorf("resolve config path: %w", err)
				}
				target = expanded
			}

			dir := filepath.Dir(target)
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("create config directory %q: %w", dir, err)
			}

			if !overwrite {
				if _, err := os.Stat(target); err == nil {
					return fmt.Errorf("config file already exists at %s (use --overwrite to replace it)", target)
				} else if !os.IsNotExist(err) {
					return fmt.Errorf("check config path: %w", err)
				}
			}

			if err := config.CreateSample(target); err != nil {
				return fmt.Errorf("create sample config: %w", err)
			}

			cfg, _, _, err := config.Load(target)
			if err != nil {
				return fmt.Errorf("load sample config: %w", err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote sample configuration to %s\n", target)
			printConfigSummary(out, cfg)
			fmt.Fprintf(out, "Edit the file, then run: mediaprobe --config %s config validate\n", target)
			return nil
		},
	}

	cmd.Flags().StringVarP(&targetPath, "path", "p", "", "Destination for the configuration file")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Overwrite existing configuration if present")
	return cmd
}

func newConfigValidateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:         "validate",
		Short:       "Validate configuration file",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			var path string
			if ctx.configFlag != nil {
				path = strings.TrimSpace(*ctx.configFlag)
			}
			cfg, resolved, exists, err := config.Load(path)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if err := cfg.EnsureDirectories(); err != nil {
				return fmt.Errorf("ensure directories: %w", err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Config path: %s\n", resolved)
			if !exists {
				fmt.Fprintln(out, "Config file did not exist; defaults were used")
			}
			printConfigSummary(out, cfg)
			fmt.Fprintln(out, "Configuration valid")
			return nil
		},
	}
}

// printConfigSummary prints the settings a probe run would use, with every
// path already expanded.
func printConfigSummary(out io.Writer, cfg *config.Config) {
	fmt.Fprintf(out, "Output: %s  Backend: %s  Jobs: %d\n", cfg.Probe.Output, cfg.Probe.Backend, cfg.Probe.Jobs)
	if cfg.Probe.Backend == config.BackendFFprobe {
		fmt.Fprintf(out, "ffprobe: %s\n", cfg.FFprobeBinary())
	}
	fmt.Fprintf(out, "History: %s (%s)\n", yesNo(cfg.History.Enabled), cfg.History.Path)
	if cfg.Logging.Dir == "" {
		fmt.Fprintf(out, "Logs: stderr (%s, %s)\n", cfg.Logging.Level, cfg.Logging.Format)
	} else {
		fmt.Fprintf(out, "Logs: stderr and %s (%s, %s)\n", filepath.Join(cfg.Logging.Dir, logging.LogFileName), cfg.Logging.Level, cfg.Logging.Format)
	}
}

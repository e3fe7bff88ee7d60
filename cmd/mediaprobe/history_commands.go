package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"mediaprobe/internal/store"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect recorded probe runs",
	}

	historyCmd.AddCommand(newHistoryListCommand(ctx))
	historyCmd.AddCommand(newHistoryShowCommand(ctx))
	historyCmd.AddCommand(newHistoryClearCommand(ctx))

	return historyCmd
}

func (c *commandContext) withStore(cmd *cobra.Command, fn func(*store.Store) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	if !cfg.History.Enabled {
		fmt.Fprintln(cmd.ErrOrStderr(), "History is disabled; set [history] enabled = true to record probes")
	}
	st, err := store.Open(cmd.Context(), cfg.History.Path)
	if err != nil {
		return err
	}
	defer st.Close()
	return fn(st)
}

func newHistoryListCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var status string
	var runID string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recorded probes, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			status = strings.ToLower(strings.TrimSpace(status))
			switch status {
			case "", store.StatusOK, store.StatusFailed:
			default:
				return fmt.Errorf("--status must be %s or %s (got %q)", store.StatusOK, store.StatusFailed, status)
			}
			return ctx.withStore(cmd, func(st *store.Store) error {
				entries, err := st.List(cmd.Context(), store.ListOptions{
					Limit:  limit,
					Status: status,
					RunID:  strings.TrimSpace(runID),
				})
				if err != nil {
					return err
				}
				if len(entries) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No probes recorded")
					return nil
				}
				rows := buildHistoryRows(entries, time.Now())
				headers := []string{"ID", "When", "File", "Format", "Streams", "Packets", "Size", "Duration", "Status"}
				fmt.Fprint(cmd.OutOrStdout(), renderTable(headers, rows, 0, 4, 5, 6, 7))
				return nil
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of probes to list (0 lists all)")
	cmd.Flags().StringVar(&status, "status", "", "Only list probes with this status (ok, failed)")
	cmd.Flags().StringVar(&runID, "run", "", "Only list probes of this run id")
	return cmd
}

func buildHistoryRows(entries []store.Entry, now time.Time) [][]string {
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		format := e.FormatName
		if format == "" {
			format = "-"
		}
		rows = append(rows, []string{
			strconv.FormatInt(e.ID, 10),
			humanize.RelTime(e.StartedAt, now, "ago", "from now"),
			filepath.Base(e.Path),
			format,
			strconv.Itoa(e.Streams),
			humanize.Comma(e.Packets),
			humanize.IBytes(uint64(max(e.PacketBytes, 0))),
			formatDuration(e.Duration),
			e.Status,
		})
	}
	return rows
}

func formatDuration(d *time.Duration) string {
	if d == nil {
		return "-"
	}
	return d.Round(time.Millisecond).String()
}

func newHistoryShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Show one recorded probe",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(strings.TrimSpace(args[0]), 10, 64)
			if err != nil || id <= 0 {
				return fmt.Errorf("invalid probe id %q", args[0])
			}
			return ctx.withStore(cmd, func(st *store.Store) error {
				entry, err := st.Get(cmd.Context(), id)
				if err != nil {
					return err
				}
				if entry == nil {
					return fmt.Errorf("probe %d not found", id)
				}
				writeEntry(cmd, entry)
				return nil
			})
		},
	}
}

func writeEntry(cmd *cobra.Command, e *store.Entry) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "ID:           %d\n", e.ID)
	fmt.Fprintf(out, "Run:          %s\n", e.RunID)
	fmt.Fprintf(out, "File:         %s\n", e.Path)
	if e.FormatName != "" {
		fmt.Fprintf(out, "Format:       %s\n", e.FormatName)
	}
	fmt.Fprintf(out, "Status:       %s\n", e.Status)
	if e.Error != "" {
		fmt.Fprintf(out, "Error:        %s\n", e.Error)
	}
	fmt.Fprintf(out, "Streams:      %d\n", e.Streams)
	fmt.Fprintf(out, "Packets:      %s (%s)\n", humanize.Comma(e.Packets), humanize.IBytes(uint64(max(e.PacketBytes, 0))))
	fmt.Fprintf(out, "Frames:       %s\n", humanize.Comma(e.Frames))
	fmt.Fprintf(out, "Duration:     %s\n", formatDuration(e.Duration))
	fmt.Fprintf(out, "Started:      %s\n", e.StartedAt.Local().Format(time.RFC3339))
	fmt.Fprintf(out, "Elapsed:      %s\n", e.Elapsed)
}

func newHistoryClearCommand(ctx *commandContext) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every recorded probe",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return errors.New("refusing to clear history without --yes")
			}
			return ctx.withStore(cmd, func(st *store.Store) error {
				removed, err := st.Clear(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %d probe(s) from %s\n", removed, st.Path())
				return nil
			})
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Confirm deletion")
	return cmd
}

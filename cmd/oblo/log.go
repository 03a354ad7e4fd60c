package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/oblo-platform/oblo/pkg/logger"
)

func newLogCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "log",
		Short: "Log management commands",
		Long:  "Commands for inspecting the logger hierarchy and managing log files, including rotation and statistics",
	}

	statsCmd := &cobra.Command{
		Use:   "stats",
		Short: "Show log statistics",
		Long:  "Display current log file statistics including size and rotation policy for every file sink",
		Args:  cobra.NoArgs,
		RunE:  runLogStats,
	}
	statsCmd.Flags().StringP("output", "o", "text", "output format (text, json)")

	rotateCmd := &cobra.Command{
		Use:   "rotate [sink]",
		Short: "Manually rotate log files",
		Long:  "Rotate the named file sink, or every file sink when no name is given",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLogRotate,
	}

	treeCmd := &cobra.Command{
		Use:   "tree",
		Short: "Show the logger hierarchy",
		Long:  "Print every configured logger with its explicit and effective level and the sinks it writes to",
		Args:  cobra.NoArgs,
		RunE:  runLogTree,
	}

	cmd.AddCommand(statsCmd, rotateCmd, treeCmd)
	return cmd
}

func runLogStats(cmd *cobra.Command, args []string) error {
	logs, err := newLogging(cmd, logConfigPath(cmd))
	if err != nil {
		return err
	}
	defer logs.Close()

	stats := logs.GetLogStats()
	out := cmd.OutOrStdout()

	if output, _ := cmd.Flags().GetString("output"); output == "json" {
		data, err := json.MarshalIndent(stats, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal log stats: %w", err)
		}
		fmt.Fprintln(out, string(data))
		return nil
	}

	if len(stats) == 0 {
		fmt.Fprintln(out, "Log rotation not enabled (no file sinks configured)")
		return nil
	}

	fmt.Fprintln(out, "=== Oblo Log Statistics ===")
	for _, st := range stats {
		fmt.Fprintf(out, "\n[%s]\n", st.Sink)
		fmt.Fprintf(out, "  Current File:  %s\n", st.CurrentFile)
		fmt.Fprintf(out, "  Current Size:  %s\n", st.FormatSize(st.CurrentSize))
		if !st.LastModified.IsZero() {
			fmt.Fprintf(out, "  Last Modified: %s\n", st.LastModified.Format("2006-01-02 15:04:05"))
		}
		switch st.Policy {
		case "size":
			fmt.Fprintf(out, "  Max Size:      %s\n", st.FormatSize(st.MaxBytes))
			if st.MaxBytes > 0 && float64(st.CurrentSize) > float64(st.MaxBytes)*0.8 {
				fmt.Fprintf(out, "  Warning: log file is %.1f%% of max size\n",
					float64(st.CurrentSize)/float64(st.MaxBytes)*100)
			}
		default:
			fmt.Fprintf(out, "  Rollover:      every %s (%s)\n", st.Interval, st.When)
		}
		fmt.Fprintf(out, "  Max Backups:   %d\n", st.MaxBackups)
		fmt.Fprintf(out, "  Compression:   %t\n", st.Compress)
	}
	return nil
}

func runLogRotate(cmd *cobra.Command, args []string) error {
	logs, err := newLogging(cmd, logConfigPath(cmd))
	if err != nil {
		return err
	}
	defer logs.Close()

	var sink string
	if len(args) > 0 {
		sink = args[0]
	}

	if err := logs.RotateLog(sink); err != nil {
		return fmt.Errorf("failed to rotate log: %w", err)
	}

	if sink == "" {
		fmt.Fprintln(cmd.OutOrStdout(), "Rotated all file sinks")
	} else {
		fmt.Fprintf(cmd.OutOrStdout(), "Rotated %s\n", sink)
	}
	return nil
}

func runLogTree(cmd *cobra.Command, args []string) error {
	logs, err := newLogging(cmd, logConfigPath(cmd))
	if err != nil {
		return err
	}
	defer logs.Close()

	printLoggerTree(cmd.OutOrStdout(), logs.Loggers())
	return nil
}

// printLoggerTree prints loggers indented by depth. Loggers must be sorted
// with the root first.
func printLoggerTree(w io.Writer, loggers []logger.LoggerInfo) {
	for _, l := range loggers {
		depth := 0
		if l.Name != logger.RootLoggerName {
			depth = strings.Count(l.Name, ".") + 1
		}

		level := l.EffectiveLevel
		if l.Level == "" || l.Level == logger.LevelNotSet.String() {
			level += " (inherited)"
		}

		line := fmt.Sprintf("%s%s [%s]", strings.Repeat("  ", depth), l.Name, level)
		if len(l.Sinks) > 0 {
			line += " -> " + strings.Join(l.Sinks, ", ")
		}
		if !l.Propagate {
			line += " (no propagate)"
		}
		fmt.Fprintln(w, line)
	}
}

package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// BuildInfo represents build information
type BuildInfo struct {
	Version   string `json:"version"`
	BuildTime string `json:"build_time"`
	GitCommit string `json:"git_commit"`
}

func newVersionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long:  "Print version information including build time and git commit",
		Args:  cobra.NoArgs,
		RunE:  runVersion,
	}
	cmd.Flags().StringP("output", "o", "text", "output format (text, json)")
	return cmd
}

func runVersion(cmd *cobra.Command, args []string) error {
	output, _ := cmd.Flags().GetString("output")

	buildInfo := BuildInfo{
		Version:   Version,
		BuildTime: BuildTime,
		GitCommit: GitCommit,
	}

	out := cmd.OutOrStdout()
	switch output {
	case "json":
		jsonData, err := json.MarshalIndent(buildInfo, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal version info: %w", err)
		}
		fmt.Fprintln(out, string(jsonData))
	default:
		fmt.Fprintf(out, "Oblo %s\n", buildInfo.Version)
		fmt.Fprintf(out, "Build Time: %s\n", buildInfo.BuildTime)
		fmt.Fprintf(out, "Git Commit: %s\n", buildInfo.GitCommit)
	}

	return nil
}

package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/oblo-platform/oblo/pkg/logger"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management commands",
		Long:  "Validate the logging configuration and inspect the environment settings",
	}

	validateCmd := &cobra.Command{
		Use:   "validate [config-file]",
		Short: "Validate a logging configuration file",
		Long: `Validate the syntax and content of a logging configuration file.

This command checks:
- YAML, JSON or TOML syntax
- Environment variable resolution
- Level names, handler classes and rotation parameters
- Handler and formatter references
- Duplicate logger names`,
		Args: cobra.MaximumNArgs(1),
		RunE: runConfigValidate,
	}
	validateCmd.Flags().String("format", "text", "output format (text, json)")

	checkCmd := &cobra.Command{
		Use:   "check",
		Short: "Check the environment settings",
		Long: `Load the settings of the selected environment and report variables left
at their default value and env file variables that are not settings.`,
		Args: cobra.NoArgs,
		RunE: runConfigCheck,
	}
	checkCmd.Flags().Bool("show", false, "print the resolved settings, secrets masked")

	cmd.AddCommand(validateCmd, checkCmd)
	return cmd
}

// validationResult is the JSON output of config validate
type validationResult struct {
	File   string                   `json:"file"`
	Valid  bool                     `json:"valid"`
	Errors []string                 `json:"errors,omitempty"`
	Fields []logger.ValidationError `json:"fields,omitempty"`
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	file := logConfigPath(cmd)
	if len(args) > 0 {
		file = args[0]
	}

	if _, err := os.Stat(file); os.IsNotExist(err) {
		return fmt.Errorf("configuration file does not exist: %s", file)
	}

	result := validationResult{File: file, Valid: true}
	cfg, err := logger.LoadConfigFile(file)
	if err == nil {
		err = cfg.Validate()
	}
	if err != nil {
		result.Valid = false
		var verrs logger.ValidationErrors
		if errors.As(err, &verrs) {
			result.Fields = verrs
		} else {
			result.Errors = []string{err.Error()}
		}
	}

	out := cmd.OutOrStdout()
	if format, _ := cmd.Flags().GetString("format"); format == "json" {
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal validation result: %w", err)
		}
		fmt.Fprintln(out, string(data))
	} else if result.Valid {
		fmt.Fprintf(out, "Configuration is valid: %s\n", file)
	} else {
		fmt.Fprintf(out, "Configuration validation FAILED\n\nFile: %s\n", file)
		for _, e := range result.Errors {
			fmt.Fprintf(out, "  - %s\n", e)
		}
		for _, e := range result.Fields {
			fmt.Fprintf(out, "  - %s: %s\n", e.Field, e.Message)
		}
	}

	if !result.Valid {
		return fmt.Errorf("configuration validation failed")
	}
	return nil
}

func runConfigCheck(cmd *cobra.Command, args []string) error {
	configManager, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	unset, err := configManager.CheckUnset()
	if err != nil {
		return err
	}
	redundant, err := configManager.CheckRedundant()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	env := configManager.Environment()
	fmt.Fprintf(out, "Env: %s (%s)\n", env.Name, env.File)

	if len(unset) > 0 {
		keys := make([]string, 0, len(unset))
		for k := range unset {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		fmt.Fprintln(out, "\nUnset variables (using default):")
		for _, k := range keys {
			fmt.Fprintf(out, "  %s = %v\n", k, unset[k])
		}
	}

	if len(redundant) > 0 {
		fmt.Fprintln(out, "\nRedundant variables:")
		for _, k := range redundant {
			fmt.Fprintf(out, "  %s\n", k)
		}
	}

	if show, _ := cmd.Flags().GetBool("show"); show {
		data, err := json.MarshalIndent(configManager.Get(), "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal settings: %w", err)
		}
		fmt.Fprintf(out, "\n%s\n", data)
	}
	return nil
}

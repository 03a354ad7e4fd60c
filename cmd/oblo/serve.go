package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/oblo-platform/oblo/internal/api"
	"github.com/oblo-platform/oblo/pkg/logger"
)

type serveOptions struct {
	host            string
	port            int
	shutdownTimeout time.Duration
}

func newServeCmd() *cobra.Command {
	opts := serveOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the Oblo HTTP API",
		Long: `Start the HTTP API with the settings of the selected environment.

SIGINT and SIGTERM stop the server gracefully. SIGHUP rotates every file
log sink, for use after external log shipping.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
			defer signal.Stop(sigChan)

			return runServe(cmd, opts, sigChan, nil)
		},
	}

	cmd.Flags().StringVar(&opts.host, "host", "0.0.0.0", "address to bind")
	cmd.Flags().IntVar(&opts.port, "port", 0, "port to listen on (default is PORT from the settings)")
	cmd.Flags().DurationVar(&opts.shutdownTimeout, "shutdown-timeout", 30*time.Second, "time allowed for in-flight requests on shutdown")
	return cmd
}

// runServe runs the server until a stop signal arrives. started, when not
// nil, receives the server once it accepts connections.
func runServe(cmd *cobra.Command, opts serveOptions, sigChan <-chan os.Signal, started chan<- *api.Server) error {
	configManager, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	settings := configManager.Get()

	logPath := settings.LogConfigPath
	if override, ok := logConfigOverride(cmd); ok {
		logPath = override
	}
	logs, err := newLogging(cmd, logPath)
	if err != nil {
		return err
	}
	defer logs.Close()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	startupCtx := logger.WithContext(ctx, logger.LogContext{
		Component: "app",
		Module:    "startup",
		Operation: "serve",
	})
	startupLogger := logs.WithGoContext(startupCtx)

	if _, err := configManager.CheckRedundant(); err != nil {
		return err
	}
	if settings.IsDev() {
		unset, err := configManager.CheckUnset()
		if err != nil {
			return err
		}
		keys := make([]string, 0, len(unset))
		for k := range unset {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			startupLogger.WithField("value", unset[k]).Debugf("Unset env variable: %s", k)
		}
	}

	port := opts.port
	if port == 0 {
		port = settings.Port
	}
	addr := net.JoinHostPort(opts.host, strconv.Itoa(port))

	startupLogger.WithFields(logger.Fields{
		"env":        settings.Env,
		"addr":       addr,
		"log_config": logPath,
	}).Info("Starting Oblo")

	server := api.NewServer(addr, settings, logs)
	if err := server.Start(ctx); err != nil {
		return fmt.Errorf("failed to start API server: %w", err)
	}
	if started != nil {
		started <- server
	}

	for sig := range sigChan {
		startupLogger.WithField("signal", sig.String()).Info("Received signal")

		if sig == syscall.SIGHUP {
			if err := logs.RotateAll(); err != nil {
				startupLogger.WithError(err).Error("Failed to rotate logs")
			}
			continue
		}
		break
	}

	startupLogger.WithField("operation", "shutdown").Info("Initiating graceful shutdown")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), opts.shutdownTimeout)
	defer shutdownCancel()

	if err := server.Stop(shutdownCtx); err != nil {
		startupLogger.WithError(err).Error("Error during shutdown")
		return err
	}

	startupLogger.Info("Oblo stopped successfully")
	return nil
}

// logConfigOverride returns the logging configuration path given on the
// command line or in OBLO_LOG_CONFIG
func logConfigOverride(cmd *cobra.Command) (string, bool) {
	if f := cmd.Flags().Lookup("log-config"); f != nil && f.Changed {
		return f.Value.String(), true
	}
	if path := viper.GetString("log_config"); path != "" {
		return path, true
	}
	return "", false
}

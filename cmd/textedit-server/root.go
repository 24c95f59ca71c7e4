package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"textedit-server/internal/config"
	"textedit-server/internal/filesystem"
	"textedit-server/internal/lock"
	"textedit-server/internal/mcp"
	"textedit-server/internal/service"
	"textedit-server/internal/transport"
)

var (
	flagDir         string
	flagTransport   string
	flagPort        int
	flagMaxFileSize int
	flagMaxEdits    int
	flagTimeout     int
	flagEnvFile     string
	flagDebug       bool
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "textedit-server",
		Short: "Pattern-based text editing server speaking MCP over stdio or HTTP",
		Long: `textedit-server exposes pattern-addressed file editing tools over the
Model Context Protocol. Edits locate their targets with regular expressions
instead of line numbers, refuse ambiguous matches, and verify expected
content before touching a file.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd)
		},
	}

	cmd.Flags().StringVar(&flagDir, "dir", "", "working directory containing editable files (default: current directory)")
	cmd.Flags().StringVar(&flagTransport, "transport", "", "transport to serve on: stdio or http")
	cmd.Flags().IntVar(&flagPort, "port", 0, "HTTP port (http transport only)")
	cmd.Flags().IntVar(&flagMaxFileSize, "max-file-size", 0, "maximum file size in MB")
	cmd.Flags().IntVar(&flagMaxEdits, "max-edits", 0, "maximum edit operations per request")
	cmd.Flags().IntVar(&flagTimeout, "timeout", 0, "operation timeout in seconds")
	cmd.Flags().StringVar(&flagEnvFile, "env-file", "", "optional .env file with TEXTEDIT_* settings")
	cmd.Flags().BoolVar(&flagDebug, "debug", false, "enable debug logging")
	return cmd
}

// buildConfig layers defaults, environment, and explicit flags, in that order.
func buildConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.Default()
	if err := cfg.LoadEnv(flagEnvFile); err != nil {
		return nil, err
	}
	if cmd.Flags().Changed("dir") {
		cfg.WorkingDirectory = flagDir
	}
	if cmd.Flags().Changed("transport") {
		cfg.Transport = flagTransport
	}
	if cmd.Flags().Changed("port") {
		cfg.Port = flagPort
	}
	if cmd.Flags().Changed("max-file-size") {
		cfg.MaxFileSizeMB = flagMaxFileSize
	}
	if cmd.Flags().Changed("max-edits") {
		cfg.MaxEditsPerRequest = flagMaxEdits
	}
	if cmd.Flags().Changed("timeout") {
		cfg.OperationTimeoutSec = flagTimeout
	}
	if cfg.WorkingDirectory == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("resolve working directory: %w", err)
		}
		cfg.WorkingDirectory = cwd
	}
	return cfg, cfg.Validate()
}

// newLogger writes to stderr so stdio transport keeps stdout clean for
// JSON-RPC frames.
func newLogger() zerolog.Logger {
	level := zerolog.InfoLevel
	if flagDebug {
		level = zerolog.DebugLevel
	}
	return zerolog.New(os.Stderr).Level(level).With().Timestamp().Logger()
}

func run(cmd *cobra.Command) error {
	logger := newLogger()

	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	logger.Info().
		Str("dir", cfg.WorkingDirectory).
		Str("transport", cfg.Transport).
		Int("max_file_size_mb", cfg.MaxFileSizeMB).
		Int("max_edits", cfg.MaxEditsPerRequest).
		Msg("configuration loaded")

	svc, err := service.NewTextEditService(filesystem.NewOSAdapter(), lock.NewFlockManager(), cfg, logger)
	if err != nil {
		return fmt.Errorf("initialize service: %w", err)
	}
	processor := mcp.NewProcessor(svc, logger)

	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, os.Interrupt, syscall.SIGTERM)
	serverDone := make(chan error, 1)

	switch cfg.Transport {
	case "stdio":
		handler := transport.NewStdioHandler(processor, svc, logger)
		go func() {
			serverDone <- handler.Start(os.Stdin, os.Stdout)
		}()
		select {
		case sig := <-shutdownChan:
			logger.Info().Str("signal", sig.String()).Msg("shutting down")
			return nil
		case err := <-serverDone:
			return err
		}
	case "http":
		handler := transport.NewHTTPHandler(processor, svc, logger)
		go func() {
			serverDone <- handler.StartServer(cfg.Port, cfg.OperationTimeoutSec, cfg.OperationTimeoutSec)
		}()
		select {
		case sig := <-shutdownChan:
			logger.Info().Str("signal", sig.String()).Msg("shutting down")
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := handler.Shutdown(ctx); err != nil {
				return fmt.Errorf("shutdown http server: %w", err)
			}
			return <-serverDone
		case err := <-serverDone:
			return err
		}
	default:
		return fmt.Errorf("unsupported transport: %s", cfg.Transport)
	}
}

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/omarluq/lm-sidekick/internal/api"
	"github.com/omarluq/lm-sidekick/internal/di"
	"github.com/omarluq/lm-sidekick/internal/ro"
)

// shutdownTimeout bounds the whole container teardown, which includes the
// server's own graceful drain.
const shutdownTimeout = 35 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the lm-sidekick tool server",
	Long: `Start the HTTP server that exposes the sidekick tools and mediates
between callers and the configured LM Studio backend.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) error {
	configPath := cfgFile
	if configPath == "" {
		configPath = findConfigFile()
	}

	container, err := di.NewContainer(configPath)
	if err != nil {
		log.Error().Err(err).Str("path", configPath).Msg("failed to initialize")
		return err
	}

	logSvc, err := di.Invoke[*di.LoggerService](container)
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize logger")
		return err
	}

	log.Logger = *logSvc.Logger
	zerolog.DefaultContextLogger = logSvc.Logger

	serverSvc, err := di.Invoke[*di.ServerService](container)
	if err != nil {
		log.Error().Err(err).Msg("failed to assemble server")
		return err
	}

	return runWithGracefulShutdown(serverSvc.Server, container)
}

// runWithGracefulShutdown serves until SIGINT or SIGTERM arrives, then
// drains the container. The server itself is stopped through the
// container's shutdown chain.
func runWithGracefulShutdown(server *api.Server, container *di.Container) error {
	done := make(chan struct{})

	go func() {
		defer close(done)

		sig, err := ro.WaitForShutdown(context.Background())
		if err != nil {
			log.Error().Err(err).Msg("shutdown wait failed")
		} else {
			log.Info().Str("signal", sig.String()).Msg("shutting down...")
		}

		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := container.ShutdownWithContext(ctx); err != nil {
			log.Error().Err(err).Msg("shutdown error")
		}
	}()

	log.Info().Str("listen", server.Addr()).Msg("starting lm-sidekick")

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error().Err(err).Msg("server error")
		return err
	}

	<-done
	log.Info().Msg("server stopped")

	return nil
}

// findConfigFile searches for the config file in the working directory,
// then under ~/.config/lm-sidekick/.
func findConfigFile() string {
	wd, err := os.Getwd()
	if err != nil {
		return defaultConfigFile
	}
	return findConfigIn(wd)
}

func findConfigIn(dir string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = ""
	}
	return findConfigInWithHome(dir, home)
}

func findConfigInWithHome(dir, home string) string {
	p := filepath.Join(dir, defaultConfigFile)
	if _, err := os.Stat(p); err == nil {
		return p
	}
	if home != "" {
		p := filepath.Join(home, ".config", "lm-sidekick", defaultConfigFile)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	return defaultConfigFile // Default, will error if not found
}

// Copyright 2026 The PartyCrusher Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/partycrusher/partycrusher/lib/clock"
	"github.com/partycrusher/partycrusher/lib/config"
	"github.com/partycrusher/partycrusher/lib/lfgbot"
	"github.com/partycrusher/partycrusher/lib/lfgmatrix"
	"github.com/partycrusher/partycrusher/lib/metrics"
	"github.com/partycrusher/partycrusher/lib/ref"
	"github.com/partycrusher/partycrusher/lib/roleresolver"
	"github.com/partycrusher/partycrusher/lib/service"
	"github.com/partycrusher/partycrusher/lib/version"
	"github.com/partycrusher/partycrusher/messaging"
)

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

const usageText = `Usage: partycrusher [command] [flags]

Commands:
  run       connect to Matrix and serve group listings (default)
  login     log in with a password and store the access token
  version   print version information
`

func run(args []string, stdin io.Reader, stdout io.Writer) error {
	subcommand := "run"
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		subcommand, args = args[0], args[1:]
	}

	switch subcommand {
	case "run":
		return runBot(args)
	case "login":
		return runLogin(args, stdin, stdout)
	case "version":
		fmt.Fprintf(stdout, "partycrusher %s\n", version.Full())
		return nil
	case "help":
		fmt.Fprint(stdout, usageText)
		return nil
	default:
		return fmt.Errorf("unknown command %q\n\n%s", subcommand, usageText)
	}
}

// loadConfig loads .env.{APP_ENV} from secretsDir, then the YAML
// configuration from configPath or PARTYCRUSHER_CONFIG.
func loadConfig(configPath, secretsDir string) (*config.Config, error) {
	if _, err := config.LoadSecrets(secretsDir); err != nil {
		return nil, fmt.Errorf("loading secrets: %w", err)
	}

	var (
		cfg *config.Config
		err error
	)
	if configPath != "" {
		cfg, err = config.LoadFile(configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration:\n%w", err)
	}
	return cfg, nil
}

// openSession connects with the session file when one is configured,
// otherwise with MATRIX_ACCESS_TOKEN.
func openSession(cfg *config.Config, logger *slog.Logger) (*messaging.DirectSession, error) {
	if cfg.Matrix.SessionFile != "" {
		_, session, err := service.LoadSession(cfg.Matrix.SessionFile, cfg.Matrix.HomeserverURL, logger)
		return session, err
	}

	token, err := config.AccessToken(cfg.Environment)
	if err != nil {
		return nil, err
	}
	userID, err := ref.ParseUserID(cfg.Matrix.UserID)
	if err != nil {
		return nil, fmt.Errorf("matrix.user_id: %w", err)
	}
	_, session, err := service.NewTokenSession(cfg.Matrix.HomeserverURL, userID, token, logger)
	return session, err
}

func runBot(args []string) error {
	var (
		configPath  string
		secretsDir  string
		showVersion bool
	)
	flagSet := pflag.NewFlagSet("run", pflag.ContinueOnError)
	flagSet.StringVarP(&configPath, "config", "c", "", "path to partycrusher.yaml (default: $PARTYCRUSHER_CONFIG)")
	flagSet.StringVar(&secretsDir, "secrets-dir", ".", "directory holding .env.{APP_ENV}")
	flagSet.BoolVar(&showVersion, "version", false, "print version information and exit")
	if err := flagSet.Parse(args); err != nil {
		return err
	}
	if showVersion {
		fmt.Printf("partycrusher %s\n", version.Info())
		return nil
	}

	cfg, err := loadConfig(configPath, secretsDir)
	if err != nil {
		return err
	}

	level, err := service.ParseLevel(cfg.Log.Level)
	if err != nil {
		return err
	}
	logger := service.NewLogger(level)
	logger.Info("starting partycrusher",
		"version", version.Info(),
		"environment", cfg.Environment,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	session, err := openSession(cfg, logger)
	if err != nil {
		return fmt.Errorf("opening matrix session: %w", err)
	}
	defer session.Close()

	userID, err := service.ValidateSession(ctx, session)
	if err != nil {
		return err
	}
	logger.Info("matrix session valid", "user_id", userID)

	return serve(ctx, cfg, session, clock.Real(), logger)
}

// serve wires the bot to session and runs it until ctx is cancelled
// or a component fails.
func serve(ctx context.Context, cfg *config.Config, session messaging.Session, clk clock.Clock, logger *slog.Logger) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	recorder := metrics.New()

	resolver, err := roleresolver.New(roleresolver.Config{
		Source:   lfgmatrix.NewRoleSource(session, logger),
		Capacity: cfg.Roles.CacheGuilds,
		Observer: recorder,
		Logger:   logger,
	})
	if err != nil {
		return err
	}

	surface, err := lfgmatrix.NewSurface(lfgmatrix.SurfaceConfig{
		Session:   session,
		SendRate:  cfg.Matrix.SendRate,
		SendBurst: cfg.Matrix.SendBurst,
		Metrics:   recorder,
		Logger:    logger,
	})
	if err != nil {
		return err
	}

	bot, err := lfgbot.New(lfgbot.Config{
		Surface:       surface,
		Roles:         resolver,
		Clock:         clk,
		Expiry:        cfg.Listing.Expiry,
		DraftTimeout:  cfg.Listing.DraftTimeout,
		Retention:     cfg.Listing.Retention,
		PruneSchedule: cfg.Listing.PruneSchedule,
		Metrics:       recorder,
		Logger:        logger,
	})
	if err != nil {
		return err
	}

	handler, err := lfgmatrix.NewHandler(lfgmatrix.HandlerConfig{
		Session: session,
		Actions: bot,
		Surface: surface,
		Roles:   resolver,
		Prefix:  cfg.Matrix.CommandPrefix,
		Rooms:   cfg.RoomIDs(),
		Logger:  logger,
	})
	if err != nil {
		return err
	}

	// Buffered for every goroutine below so none blocks after the
	// first failure.
	failures := make(chan error, 3)

	if address := cfg.Metrics.ListenAddress; address != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", recorder.Handler())
		server := service.NewHTTPServer(service.HTTPServerConfig{
			Address: address,
			Handler: mux,
			Logger:  logger,
		})
		go func() {
			if err := server.Serve(ctx); err != nil {
				failures <- fmt.Errorf("metrics server: %w", err)
			}
		}()
	}

	sinceToken, initial, err := service.InitialSync(ctx, session, lfgmatrix.SyncFilter)
	if err != nil {
		return err
	}
	handler.Prime(ctx, initial)

	go func() {
		if err := bot.Run(ctx); err != nil {
			failures <- err
		}
	}()

	go func() {
		service.RunSyncLoop(ctx, session, service.SyncConfig{
			Filter:  lfgmatrix.SyncFilter,
			Timeout: int(cfg.Matrix.SyncTimeout.Milliseconds()),
		}, sinceToken, handler.HandleSync, clk, logger)
		if ctx.Err() == nil {
			failures <- errors.New("sync loop stopped")
		}
	}()

	logger.Info("partycrusher running",
		"prefix", cfg.Matrix.CommandPrefix,
		"rooms", len(cfg.Matrix.Rooms),
		"metrics", cfg.Metrics.ListenAddress,
	)

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
		return nil
	case err := <-failures:
		return err
	}
}

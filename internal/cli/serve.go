package cli

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	commands "github.com/urfave/cli/v3"

	"github.com/st3v3nmw/hiscore/internal/config"
	"github.com/st3v3nmw/hiscore/internal/server"
	"github.com/st3v3nmw/hiscore/internal/store"
)

func Serve(ctx context.Context, cmd *commands.Command) error {
	cfg, err := serveConfig(cmd)
	if err != nil {
		return err
	}

	log, err := newLogger(cfg.Log)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	backend, err := store.OpenBackend(ctx, cfg.Storage)
	if err != nil {
		return err
	}

	st := store.New(backend, store.WithLogger(log))
	defer st.Close()

	log.WithFields(logrus.Fields{
		"backend": cfg.Storage.Backend,
		"strict":  cfg.Strict,
	}).Info("starting score server")

	srv := server.New(st, server.Options{
		MaxEntries:    cfg.MaxEntries,
		MaxNameLength: cfg.MaxNameLength,
		Strict:        cfg.Strict,
	}, log, server.NewMetrics())

	return srv.Run(ctx, cfg.Listen, cfg.MetricsAddr)
}

// serveConfig loads the config file and applies command-line overrides.
func serveConfig(cmd *commands.Command) (*config.Config, error) {
	cfg, err := config.LoadFrom(cmd.String("config"))
	if err != nil {
		return nil, err
	}

	if cmd.IsSet("listen") {
		cfg.Listen = cmd.String("listen")
	}

	if cmd.IsSet("port") {
		host, _, err := net.SplitHostPort(cfg.Listen)
		if err != nil {
			return nil, fmt.Errorf("invalid listen address %q: %w", cfg.Listen, err)
		}
		cfg.Listen = net.JoinHostPort(host, cmd.String("port"))
	}

	if cmd.Bool("strict") {
		cfg.Strict = true
	}

	if dir := cmd.String("working-dir"); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create working directory: %w", err)
		}
		cfg.WithWorkingDir(dir)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func newLogger(cfg config.Log) (*logrus.Logger, error) {
	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}

	log := logrus.New()
	log.SetOutput(os.Stderr)
	log.SetLevel(level)

	switch cfg.Format {
	case "json":
		log.SetFormatter(&logrus.JSONFormatter{})
	default:
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	return log, nil
}

// Package cli locates the reference-data directory the way a library
// caller would and prints it, bootstrapping the data on first run.
package cli

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"webbpsf/internal/config"
	"webbpsf/internal/datafetch"
	"webbpsf/internal/datapath"
	"webbpsf/internal/logging"
	"webbpsf/internal/paths"
)

func Run(ctx context.Context, stdout, stderr io.Writer) int {
	configPath, err := paths.ConfigPath()
	if err != nil {
		fmt.Fprintf(stderr, "config: %v\n", err)
		return 1
	}
	cfg, err := config.LoadOptional(configPath)
	if err != nil {
		fmt.Fprintf(stderr, "config %s: %v\n", configPath, err)
		return 1
	}
	logger := logging.New(stderr, cfg.LogLevel)

	envPath, err := paths.EnvFilePath()
	if err != nil {
		logger.Error("config.env", "err", err)
		return 1
	}
	overlay, err := config.LoadEnvFile(envPath)
	if err != nil {
		logger.Error("config.env", "path", envPath, "err", err)
		return 1
	}

	fetcher, err := datafetch.FromConfig(cfg.Data, logger)
	if err != nil {
		logger.Error("datafetch.config", "err", err)
		return 1
	}

	resolver := datapath.NewResolver(datapath.Options{
		Setting:   cfg.DataPath,
		LookupEnv: config.Environ(overlay),
		Fetcher:   fetcher,
		Logger:    logger,
		Strict:    cfg.StrictEnvironment,
	})
	if !cfg.Watch {
		return report(ctx, resolver, stdout, stderr)
	}

	// Watch mode prints the path once, then again after every config change.
	if err := paths.EnsureDir(filepath.Dir(configPath)); err != nil {
		logger.Error("config.watch", "err", err)
		return 1
	}
	changed := make(chan struct{}, 1)
	stop, err := resolver.Follow(ctx, configPath, func() {
		select {
		case changed <- struct{}{}:
		default:
		}
	})
	if err != nil {
		logger.Error("config.watch", "path", configPath, "err", err)
		return 1
	}
	defer stop()

	report(ctx, resolver, stdout, stderr)
	for {
		select {
		case <-ctx.Done():
			return 0
		case <-changed:
			report(ctx, resolver, stdout, stderr)
		}
	}
}

func report(ctx context.Context, resolver *datapath.Resolver, stdout, stderr io.Writer) int {
	res, err := resolver.Resolve(ctx)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	for _, adv := range res.Advisories {
		fmt.Fprintf(stderr, "warning: %s\n", adv)
	}
	fmt.Fprintln(stdout, res.Path)
	return 0
}

package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"time"

	"horse.fit/seoguard/internal/cli"
)

func runHealth(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("health", flag.ContinueOnError)
	fs.SetOutput(stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	timeout := fs.Duration("timeout", 5*time.Second, "Database ping timeout")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	rt, err := connect(ctx, envLoader, stderr, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "Health check failed: %v\n", err)
		return 1
	}
	defer rt.Close()

	if err := rt.pool.Ping(ctx); err != nil {
		rt.logger.Error().Err(err).Msg("health check failed")
		fmt.Fprintf(stderr, "Health check failed: %v\n", err)
		return 1
	}

	rt.logger.Info().
		Str("driver", rt.cfg.Driver()).
		Dur("timeout", *timeout).
		Msg("database health check passed")
	fmt.Fprintln(stdout, "ok: database ping successful")
	return 0
}

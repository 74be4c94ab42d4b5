package app

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/rs/zerolog"

	"horse.fit/seoguard/internal/cli"
	"horse.fit/seoguard/internal/config"
	"horse.fit/seoguard/internal/db"
	"horse.fit/seoguard/internal/logging"
)

const (
	outputFormatTable = "table"
	outputFormatJSON  = "json"
)

type session struct {
	cfg    *config.Config
	logger zerolog.Logger
	pool   *db.Pool
}

// connect loads the env file and config, builds a logger writing to logOut and
// opens the database pool.
func connect(ctx context.Context, envLoader *cli.EnvLoader, logOut, stderr io.Writer) (*session, error) {
	envFile := ""
	if envLoader != nil {
		loaded, err := envLoader.Load()
		if err != nil {
			fmt.Fprintf(stderr, "Warning: %v\n", err)
		}
		envFile = loaded
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := logging.NewWithWriter(cfg.Environment, cfg.LogLevel, logOut)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	if envFile != "" {
		logger.Debug().Str("env_file", envFile).Msg("environment loaded")
	}

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		logger.Error().Err(err).Str("driver", cfg.Driver()).Msg("database connection failed")
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return &session{cfg: cfg, logger: logger, pool: pool}, nil
}

func (r *session) Close() {
	if r != nil && r.pool != nil {
		_ = r.pool.Close()
	}
}

func parseOutputFormat(raw, defaultFormat string) (string, error) {
	format := strings.TrimSpace(strings.ToLower(raw))
	if format == "" {
		format = defaultFormat
	}
	switch format {
	case outputFormatTable, outputFormatJSON:
		return format, nil
	default:
		return "", fmt.Errorf("--format must be table or json")
	}
}

func printJSON(w io.Writer, value any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(value)
}

func writeTable(w io.Writer, headers []string, rows [][]string) error {
	writer := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)
	if _, err := fmt.Fprintln(writer, strings.Join(headers, "\t")); err != nil {
		return err
	}
	for _, row := range rows {
		if _, err := fmt.Fprintln(writer, strings.Join(row, "\t")); err != nil {
			return err
		}
	}
	return writer.Flush()
}

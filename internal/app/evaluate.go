package app

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"horse.fit/seoguard/internal/cli"
	"horse.fit/seoguard/internal/dedup"
	"horse.fit/seoguard/internal/guardrail"
	"horse.fit/seoguard/internal/seotext"
)

// evaluationLine is one JSON line of evaluate output.
type evaluationLine struct {
	File     string              `json:"file"`
	PageType string              `json:"page_type,omitempty"`
	Decision *guardrail.Decision `json:"decision,omitempty"`
	Error    string              `json:"error,omitempty"`
}

func runEvaluate(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("evaluate", flag.ContinueOnError)
	fs.SetOutput(stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	file := fs.String("file", "", "Request .json file to evaluate")
	dir := fs.String("dir", "", "Directory of request .json files to evaluate")
	recursive := fs.Bool("recursive", false, "Recursively scan --dir")
	workers := fs.Int("workers", 1, "Concurrent evaluations; 1 keeps canonical assignment in file order")
	minWords := fs.Int("min-words", -1, "Thin-content minimum for every page type (-1 uses config)")
	timeout := fs.Duration("timeout", 5*time.Minute, "Command timeout")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if *workers <= 0 {
		fmt.Fprintln(stderr, "--workers must be > 0")
		return 2
	}

	files, err := resolveInputs(*file, *dir, *recursive)
	if err != nil {
		fmt.Fprintf(stderr, "Invalid input: %v\n", err)
		return 2
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	rt, err := connect(ctx, envLoader, stderr, stderr)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	defer rt.Close()

	detector := dedup.NewDetector(rt.pool, rt.logger, dedup.Options{
		MaxDistance:    rt.cfg.NearDupMaxDistance,
		CandidateLimit: rt.cfg.NearDupCandidateLimit,
	})
	policyFor := func(pageType string) guardrail.Policy {
		if *minWords >= 0 {
			return guardrail.Policy{PageType: pageType, MinWords: *minWords}
		}
		return guardrail.Policy{PageType: pageType, MinWords: rt.cfg.MinWordsFor(pageType)}
	}

	lines, err := evaluateFiles(ctx, files, *workers, detector, policyFor)
	if err != nil {
		rt.logger.Error().Err(err).Int("files", len(files)).Msg("evaluate batch failed")
		fmt.Fprintf(stderr, "Evaluate failed: %v\n", err)
		return 1
	}

	encoder := json.NewEncoder(stdout)
	invalid := 0
	for _, line := range lines {
		if line.Error != "" {
			invalid++
		}
		if err := encoder.Encode(line); err != nil {
			fmt.Fprintf(stderr, "Failed to encode JSON: %v\n", err)
			return 1
		}
	}

	rt.logger.Info().
		Int("files", len(files)).
		Int("invalid", invalid).
		Int("workers", *workers).
		Msg("evaluate batch completed")

	if invalid > 0 {
		return 1
	}
	return 0
}

// evaluateFiles evaluates every file with at most workers in flight and returns
// one line per file in input order. Unreadable or invalid requests become error
// lines; store errors abort the batch.
func evaluateFiles(
	ctx context.Context,
	files []string,
	workers int,
	finder guardrail.DuplicateFinder,
	policyFor func(pageType string) guardrail.Policy,
) ([]evaluationLine, error) {
	lines := make([]evaluationLine, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, path := range files {
		g.Go(func() error {
			lines[i].File = path

			raw, err := os.ReadFile(path)
			if err != nil {
				lines[i].Error = fmt.Sprintf("read failed: %v", err)
				return nil
			}
			req, err := seotext.ParseRequest(raw, true)
			if err != nil {
				lines[i].Error = err.Error()
				return nil
			}
			lines[i].PageType = req.PageType

			decision, err := guardrail.Evaluate(gctx, guardrail.Input{
				CanonicalPath:      req.CanonicalPath,
				RequestedIndexable: req.RequestedIndexable,
				Content:            req.Content,
			}, policyFor(req.PageType), finder)
			if err != nil {
				return fmt.Errorf("evaluate %s: %w", path, err)
			}
			lines[i].Decision = &decision
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return lines, nil
}

package app

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"horse.fit/seoguard/internal/seotext"
)

type validateResult struct {
	Scanned int
	Valid   int
	Invalid int
}

func runValidate(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("validate", flag.ContinueOnError)
	fs.SetOutput(stderr)

	dir := fs.String("dir", "testdata/requests", "Directory containing request .json files")
	recursive := fs.Bool("recursive", true, "Recursively scan subdirectories")
	requirePageType := fs.Bool("require-page-type", true, "Reject requests without a page_type")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	root := strings.TrimSpace(*dir)
	files, err := collectRequestFiles(root, *recursive)
	if err != nil {
		fmt.Fprintf(stderr, "Validation setup failed: %v\n", err)
		return 1
	}

	result := validateResult{}
	for _, path := range files {
		result.Scanned++

		raw, err := os.ReadFile(path)
		if err != nil {
			result.Invalid++
			fmt.Fprintf(stderr, "INVALID %s: read failed: %v\n", path, err)
			continue
		}
		if _, err := seotext.ParseRequest(raw, *requirePageType); err != nil {
			result.Invalid++
			fmt.Fprintf(stderr, "INVALID %s: %v\n", path, err)
			continue
		}
		result.Valid++
	}

	fmt.Fprintf(
		stdout,
		"validate scanned=%d valid=%d invalid=%d dir=%s recursive=%t\n",
		result.Scanned,
		result.Valid,
		result.Invalid,
		root,
		*recursive,
	)

	if result.Scanned == 0 {
		fmt.Fprintf(stderr, "Validation failed: no .json files found under %s\n", root)
		return 1
	}
	if result.Invalid > 0 {
		return 1
	}
	return 0
}

package app

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// Run executes the CLI command and returns a process exit code.
func Run(args []string) int {
	return run(args, os.Stdout, os.Stderr)
}

func run(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		printUsage(stderr)
		return 2
	}

	switch strings.ToLower(strings.TrimSpace(args[0])) {
	case "help", "--help", "-h":
		printUsage(stderr)
		return 0
	case "health":
		return runHealth(args[1:], stdout, stderr)
	case "evaluate":
		return runEvaluate(args[1:], stdout, stderr)
	case "fingerprint":
		return runFingerprint(args[1:], stdout, stderr)
	case "validate":
		return runValidate(args[1:], stdout, stderr)
	case "serve":
		return runServe(args[1:], stderr)
	default:
		fmt.Fprintf(stderr, "unknown command: %s\n\n", args[0])
		printUsage(stderr)
		return 2
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "seoguard CLI")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  seoguard <command> [flags]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  health       Verify database connectivity")
	fmt.Fprintln(w, "  evaluate     Evaluate request files and print one decision per line")
	fmt.Fprintln(w, "  fingerprint  Print fingerprint diagnostics for a request or HTML file")
	fmt.Fprintln(w, "  validate     Validate request JSON files against the request schema")
	fmt.Fprintln(w, "  serve        Start Echo API server")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Use \"seoguard <command> -h\" for command-specific flags.")
}

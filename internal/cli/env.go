// Package cli holds flag helpers shared by seoguard subcommands.
package cli

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
)

// EnvOverrideVar names an env file that wins over the --env flag.
const EnvOverrideVar = "SEOGUARD_ENV_FILE"

// EnvLoader loads one .env file chosen from the --env flag, its override
// variable and a default path.
type EnvLoader struct {
	value       *string
	defaultPath string
}

// AddEnvFlag registers --env on fs and returns the loader bound to it.
func AddEnvFlag(fs *flag.FlagSet, defaultPath, description string) *EnvLoader {
	if fs == nil {
		fs = flag.CommandLine
	}
	if strings.TrimSpace(defaultPath) == "" {
		defaultPath = ".env"
	}
	if description == "" {
		description = "Path to the .env file"
	}
	return &EnvLoader{
		value:       fs.String("env", defaultPath, description),
		defaultPath: defaultPath,
	}
}

// Candidates lists the files Load tries, in order: $SEOGUARD_ENV_FILE, the
// --env value, its basename, then the default path. Duplicates are dropped.
func (l *EnvLoader) Candidates() []string {
	requested := l.defaultPath
	if l.value != nil && strings.TrimSpace(*l.value) != "" {
		requested = strings.TrimSpace(*l.value)
	}

	ordered := []string{
		strings.TrimSpace(os.Getenv(EnvOverrideVar)),
		requested,
		filepath.Base(requested),
		l.defaultPath,
	}
	seen := make(map[string]struct{}, len(ordered))
	out := make([]string, 0, len(ordered))
	for _, path := range ordered {
		if path == "" || path == "." {
			continue
		}
		if _, dup := seen[path]; dup {
			continue
		}
		seen[path] = struct{}{}
		out = append(out, path)
	}
	return out
}

// Load applies the first readable candidate with godotenv.Overload and
// returns its path. Values in the file replace existing process variables.
func (l *EnvLoader) Load() (string, error) {
	if l == nil {
		return "", fmt.Errorf("env loader is nil")
	}

	candidates := l.Candidates()
	var errs []error
	for _, path := range candidates {
		err := godotenv.Overload(path)
		if err == nil {
			return path, nil
		}
		errs = append(errs, fmt.Errorf("%s: %w", path, err))
	}
	return "", fmt.Errorf("load env file (tried %s): %w", strings.Join(candidates, ", "), errors.Join(errs...))
}

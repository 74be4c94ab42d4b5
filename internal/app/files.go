package app

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// collectRequestFiles lists the .json files under root in lexical order.
// Hidden files and hidden directories below root are skipped.
func collectRequestFiles(root string, recursive bool) ([]string, error) {
	cleanRoot := strings.TrimSpace(root)
	if cleanRoot == "" {
		return nil, fmt.Errorf("directory path is empty")
	}

	info, err := os.Stat(cleanRoot)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", cleanRoot, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", cleanRoot)
	}

	var files []string
	err = filepath.WalkDir(cleanRoot, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		hidden := strings.HasPrefix(d.Name(), ".")
		if d.IsDir() {
			if path == cleanRoot {
				return nil
			}
			if hidden || !recursive {
				return filepath.SkipDir
			}
			return nil
		}
		if !hidden && strings.EqualFold(filepath.Ext(d.Name()), ".json") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk directory %s: %w", cleanRoot, err)
	}

	sort.Strings(files)
	return files, nil
}

// resolveInputs turns the mutually exclusive --file / --dir flags into a file list.
func resolveInputs(file, dir string, recursive bool) ([]string, error) {
	file = strings.TrimSpace(file)
	dir = strings.TrimSpace(dir)
	switch {
	case file != "" && dir != "":
		return nil, fmt.Errorf("use either --file or --dir, not both")
	case file != "":
		return []string{file}, nil
	case dir != "":
		files, err := collectRequestFiles(dir, recursive)
		if err != nil {
			return nil, err
		}
		if len(files) == 0 {
			return nil, fmt.Errorf("no .json files found under %s", dir)
		}
		return files, nil
	default:
		return nil, fmt.Errorf("--file or --dir is required")
	}
}

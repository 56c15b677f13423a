package config

import (
	"os"
	"path/filepath"
	"strings"
)

// DiscoverDatasets scans the configured paths for directories containing a
// .tasktable/ subdirectory and returns them in scan order without duplicates.
func DiscoverDatasets(cfg Config) []string {
	seen := make(map[string]bool)
	var result []string

	for _, scanPath := range cfg.Discovery.ScanPaths {
		maxDepth := cfg.Discovery.MaxDepth
		if maxDepth <= 0 {
			maxDepth = 3
		}
		for _, f := range scanForDataDirs(scanPath, maxDepth) {
			if !seen[f] {
				seen[f] = true
				result = append(result, f)
			}
		}
	}
	return result
}

// scanForDataDirs walks a directory tree up to maxDepth levels deep,
// looking for directories that contain a .tasktable/ subdirectory.
func scanForDataDirs(root string, maxDepth int) []string {
	root = expandHome(root)
	var results []string

	rootDepth := strings.Count(filepath.Clean(root), string(filepath.Separator))

	_ = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return filepath.SkipDir
		}
		if !d.IsDir() {
			return nil
		}

		currentDepth := strings.Count(filepath.Clean(path), string(filepath.Separator)) - rootDepth
		if currentDepth > maxDepth {
			return filepath.SkipDir
		}

		// Hidden directories are skipped, including .tasktable itself; its
		// parent is what gets reported.
		name := d.Name()
		if path != root && strings.HasPrefix(name, ".") {
			return filepath.SkipDir
		}

		if info, err := os.Stat(filepath.Join(path, DirName)); err == nil && info.IsDir() {
			results = append(results, path)
			return filepath.SkipDir // Don't recurse into datasets
		}
		return nil
	})

	return results
}

// FindRoot walks up from dir looking for a .tasktable/ directory and returns
// the directory containing it. The walk stops at the home directory.
func FindRoot(dir string) (string, bool) {
	home, _ := os.UserHomeDir()

	for {
		if info, err := os.Stat(filepath.Join(dir, DirName)); err == nil && info.IsDir() {
			return dir, true
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break // Reached filesystem root
		}
		if home != "" && dir == home {
			break
		}
		dir = parent
	}
	return "", false
}

// DetectRoot is FindRoot from the working directory.
func DetectRoot() (string, bool) {
	dir, err := os.Getwd()
	if err != nil {
		return "", false
	}
	return FindRoot(dir)
}

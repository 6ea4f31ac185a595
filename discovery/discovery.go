// Package discovery locates test source files under a target directory.
package discovery

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/mattn/go-zglob"
)

// DefaultTestFilePatterns covers the common test-file naming conventions of
// the runners this tool is pointed at.
var DefaultTestFilePatterns = []string{
	"**/test_*.py",
	"**/*_test.py",
	"**/tests/**/*.py",
	"**/test/**/*.py",
	"**/*.test.js",
	"**/*.spec.js",
	"**/*_test.go",
}

// DefaultExcludeDirs are directory names whose contents are never scanned.
var DefaultExcludeDirs = []string{
	"node_modules", ".git", "__pycache__", ".venv", "venv", "env", "target", "build",
}

// FindTestFiles globs for test files under root, filters excluded
// directories, and returns a sorted, deduplicated list. A root pointing at a
// single file returns just that file.
func FindTestFiles(root string, patterns, excludeDirs []string) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("target %s is not accessible: %w", root, err)
	}
	if !info.IsDir() {
		return []string{root}, nil
	}

	if len(patterns) == 0 {
		patterns = DefaultTestFilePatterns
	}
	if excludeDirs == nil {
		excludeDirs = DefaultExcludeDirs
	}

	seen := make(map[string]struct{})
	for _, pattern := range patterns {
		paths, err := zglob.Glob(filepath.Join(root, pattern))
		if err != nil {
			// A pattern with no matches is fine; a malformed pattern is a
			// configuration problem worth surfacing.
			if err == os.ErrNotExist || os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("glob %s: %w", pattern, err)
		}
		for _, path := range paths {
			if excluded(path, excludeDirs) {
				continue
			}
			seen[path] = struct{}{}
		}
	}

	files := make([]string, 0, len(seen))
	for path := range seen {
		files = append(files, path)
	}
	sort.Strings(files)
	return files, nil
}

// excluded reports whether any path element matches an excluded directory.
func excluded(path string, excludeDirs []string) bool {
	for _, segment := range strings.Split(filepath.ToSlash(path), "/") {
		for _, dir := range excludeDirs {
			if segment == dir {
				return true
			}
		}
	}
	return false
}

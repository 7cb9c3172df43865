package watcher

import (
	"path/filepath"
	"strings"
)

// sourceExtensions are the files whose change warrants a rebuild.
var sourceExtensions = map[string]bool{
	".tex": true,
	".bib": true,
	".sty": true,
	".cls": true,
	".bst": true,
	".png": true,
	".jpg": true,
	".jpeg": true,
	".pdf": true,
	".eps": true,
	".svg": true,
}

// SourceFilter accepts LaTeX sources, bibliography and style files and images.
func SourceFilter(path string) bool {
	return sourceExtensions[strings.ToLower(filepath.Ext(path))]
}

// NoTempFilter rejects editor swap, backup and lock files.
func NoTempFilter(path string) bool {
	base := filepath.Base(path)
	switch {
	case strings.HasPrefix(base, ".#"), strings.HasPrefix(base, "~$"):
		return false
	case strings.HasSuffix(base, "~"), strings.HasSuffix(base, ".swp"), strings.HasSuffix(base, ".swo"):
		return false
	case base == "4913":
		return false
	}
	return true
}

// ProjectDirFilter returns a DirFilter for root that skips the output
// directory, the .easypaper metadata directory and .git.
func ProjectDirFilter(root, outDir string) DirFilter {
	root = filepath.Clean(root)
	skip := []string{
		filepath.Join(root, filepath.Clean(outDir)),
		filepath.Join(root, ".easypaper"),
		filepath.Join(root, ".git"),
	}

	return func(path string) bool {
		path = filepath.Clean(path)
		for _, s := range skip {
			if path == s || strings.HasPrefix(path, s+string(filepath.Separator)) {
				return false
			}
		}
		return true
	}
}

// Package discovery locates module descriptor files under a project root.
package discovery

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"slices"

	"github.com/mattn/go-zglob"

	"monosplit/internal/paths"
)

// Options configures Find.
type Options struct {
	// DescriptorName is the descriptor file name, e.g. pom.xml.
	DescriptorName string
	// ExcludeDirs drops any match with a path segment equal to one of these
	// names, relative to the root.
	ExcludeDirs []string
	Logger      *slog.Logger
}

// Find returns the absolute paths of every descriptor under root, sorted.
func Find(root string, opts Options) ([]string, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	name := opts.DescriptorName
	if name == "" {
		name = "pom.xml"
	}

	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve root %s: %w", root, err)
	}

	// zglob treats ** as zero or more directories, so the root descriptor matches too.
	matches, err := zglob.Glob(filepath.ToSlash(filepath.Join(abs, "**", name)))
	if err != nil {
		return nil, fmt.Errorf("failed to search %s: %w", abs, err)
	}

	var found []string
	excluded := 0
	for _, m := range matches {
		m = filepath.Clean(m)
		if !paths.FileExists(m) {
			continue
		}
		if isExcluded(paths.SafeRel(m, abs), opts.ExcludeDirs) {
			excluded++
			continue
		}
		found = append(found, m)
	}
	slices.Sort(found)
	found = slices.Compact(found)

	logger.Debug("Discovered descriptors", "root", abs, "found", len(found), "excluded", excluded)
	return found, nil
}

func isExcluded(rel string, dirs []string) bool {
	for _, d := range dirs {
		if paths.HasPathSegment(filepath.Dir(rel), d) {
			return true
		}
	}
	return false
}

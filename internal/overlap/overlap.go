// Package overlap scans module source trees for package and class names that
// appear in more than one module.
package overlap

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/mattn/go-zglob"

	"monosplit/internal/paths"
)

// Row kinds.
const (
	KindPackage = "package"
	KindClass   = "class"
)

// Module is one source root to scan.
type Module struct {
	// Name is the label used in rows, normally the artifact id.
	Name string
	Dir  string
}

// Row is one overlapping package or class.
type Row struct {
	Kind        string `json:"kind" yaml:"kind"`
	Name        string `json:"name" yaml:"name"`
	ModuleCount int    `json:"moduleCount" yaml:"moduleCount"`
	// Modules is "a(3), b(1)" for packages and "a, b" for classes.
	Modules string `json:"modules" yaml:"modules"`
}

// Options configures Scan.
type Options struct {
	// SourceRoot is the module-relative source directory.
	SourceRoot string
	// ParseSources reads package and type names from the files instead of
	// inferring them from the directory layout. Ignored when no parser is
	// available in this build.
	ParseSources bool
	Logger       *slog.Logger
}

// Stats summarizes a scan.
type Stats struct {
	Files   int  `json:"files" yaml:"files"`
	Modules int  `json:"modules" yaml:"modules"`
	Parsed  bool `json:"parsed" yaml:"parsed"`
}

// Scan walks each module's source root and returns rows for every package or
// class name found in at least two modules, sorted by module count
// descending, then kind, then name.
func Scan(ctx context.Context, modules []Module, opts Options) ([]Row, Stats, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	srcRoot := opts.SourceRoot
	if srcRoot == "" {
		srcRoot = "src/main/java"
	}

	var reader *sourceReader
	if opts.ParseSources {
		reader = newSourceReader()
		if reader == nil {
			logger.Warn("Source parsing unavailable in this build, inferring packages from paths")
		}
	}

	pkgFiles := make(map[string]map[string]int)   // package -> module -> files
	classMods := make(map[string]map[string]bool) // fqcn -> modules
	stats := Stats{Parsed: reader != nil}

	for _, m := range modules {
		if err := ctx.Err(); err != nil {
			return nil, stats, err
		}
		base := filepath.Join(m.Dir, filepath.FromSlash(srcRoot))
		if !paths.DirExists(base) {
			continue
		}
		files, err := zglob.Glob(filepath.ToSlash(filepath.Join(base, "**", "*.java")))
		if err != nil {
			return nil, stats, fmt.Errorf("failed to list sources in %s: %w", base, err)
		}
		slices.Sort(files)
		counted := false
		for _, f := range files {
			f = filepath.Clean(f)
			if !paths.FileExists(f) {
				continue
			}
			pkg, classes := inferFromPath(f, base)
			if reader != nil {
				if src, err := os.ReadFile(f); err == nil {
					if p, cs, ok := reader.read(ctx, src); ok {
						pkg = p
						if len(cs) > 0 {
							classes = cs
						}
					}
				} else {
					logger.Debug("Failed to read source", "path", f, "error", err)
				}
			}

			stats.Files++
			counted = true
			if pkg != "" {
				if pkgFiles[pkg] == nil {
					pkgFiles[pkg] = make(map[string]int)
				}
				pkgFiles[pkg][m.Name]++
			}
			for _, c := range classes {
				fqcn := c
				if pkg != "" {
					fqcn = pkg + "." + c
				}
				if classMods[fqcn] == nil {
					classMods[fqcn] = make(map[string]bool)
				}
				classMods[fqcn][m.Name] = true
			}
		}
		if counted {
			stats.Modules++
		}
	}

	var rows []Row
	for pkg, perMod := range pkgFiles {
		if len(perMod) < 2 {
			continue
		}
		names := sortedKeys(perMod)
		parts := make([]string, len(names))
		for i, n := range names {
			parts[i] = fmt.Sprintf("%s(%d)", n, perMod[n])
		}
		rows = append(rows, Row{Kind: KindPackage, Name: pkg, ModuleCount: len(perMod), Modules: strings.Join(parts, ", ")})
	}
	for cls, mods := range classMods {
		if len(mods) < 2 {
			continue
		}
		rows = append(rows, Row{Kind: KindClass, Name: cls, ModuleCount: len(mods), Modules: strings.Join(sortedKeys(mods), ", ")})
	}
	slices.SortFunc(rows, func(a, b Row) int {
		return cmp.Or(
			cmp.Compare(b.ModuleCount, a.ModuleCount),
			strings.Compare(a.Kind, b.Kind),
			strings.Compare(a.Name, b.Name),
		)
	})

	logger.Debug("Scanned sources", "files", stats.Files, "modules", stats.Modules, "overlaps", len(rows))
	return rows, stats, nil
}

// inferFromPath derives the package from the directory below base and the
// class from the file name.
func inferFromPath(file, base string) (string, []string) {
	rel, err := filepath.Rel(base, file)
	if err != nil {
		return "", nil
	}
	rel = filepath.ToSlash(rel)
	class := strings.TrimSuffix(filepath.Base(rel), ".java")
	dir := filepath.ToSlash(filepath.Dir(rel))
	if dir == "." {
		return "", []string{class}
	}
	return strings.ReplaceAll(dir, "/", "."), []string{class}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

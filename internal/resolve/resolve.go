// Package resolve back-fills missing group and version coordinates from
// parent descriptors.
package resolve

import (
	"log/slog"
	"path/filepath"

	"monosplit/internal/descriptor"
	"monosplit/internal/paths"
)

// DefaultParentPath is the parent location assumed when <relativePath> is absent.
const DefaultParentPath = "../pom.xml"

// Options configures Resolve.
type Options struct {
	Logger *slog.Logger
}

// Result is a resolved copy of the input set plus bookkeeping.
type Result struct {
	Records descriptor.Set
	// Passes is the number of propagation passes until the fixed point.
	Passes int
	// Filled counts group and version fields that were back-filled.
	Filled int
	// MissingParents lists records that declare a parent which is not a parsed
	// descriptor at the expected location, sorted by path.
	MissingParents []string
	// ParentCycles lists records whose parent chain runs into a cycle.
	ParentCycles []string
}

type field int

const (
	groupField field = iota
	versionField
)

func (f field) String() string {
	if f == groupField {
		return "groupId"
	}
	return "version"
}

func (f field) get(r *descriptor.Record) string {
	if f == groupField {
		return r.Coordinate.GroupID
	}
	return r.Coordinate.Version
}

func (f field) set(r *descriptor.Record, v string) {
	if f == groupField {
		r.Coordinate.GroupID = v
	} else {
		r.Coordinate.Version = v
	}
}

func (f field) declared(r *descriptor.Record) string {
	if r.Parent == nil {
		return ""
	}
	if f == groupField {
		return r.Parent.GroupID
	}
	return r.Parent.Version
}

// ParentPath returns the expected parent descriptor location for rec, or ""
// when rec declares no parent artifact. A relativePath naming a directory
// resolves to the pom.xml inside it.
func ParentPath(rec *descriptor.Record) string {
	if rec.Parent == nil || rec.Parent.ArtifactID == "" {
		return ""
	}
	rel := rec.Parent.RelativePath
	if rel == "" {
		rel = DefaultParentPath
	}
	candidate := filepath.Join(rec.Dir, filepath.FromSlash(rel))
	if paths.DirExists(candidate) {
		candidate = filepath.Join(candidate, "pom.xml")
	}
	return candidate
}

// StructuralParents maps each record path to the path of its parsed parent
// record. Records without a parsed parent are absent from the map.
func StructuralParents(records descriptor.Set) map[string]string {
	parents := make(map[string]string, len(records))
	for p, rec := range records {
		pp := ParentPath(rec)
		if pp == "" || pp == p {
			continue
		}
		if _, ok := records[pp]; ok {
			parents[p] = pp
		}
	}
	return parents
}

// Resolve returns a copy of records with group and version back-filled.
//
// A record's missing field takes its structural parent's value once that
// parent is settled. When the parent is settled without a value, or no parsed
// parent exists, the value declared in the record's own <parent> block is used.
// Passes repeat until one makes no change, so chains of any depth resolve
// independently of iteration order. The input set is not modified.
func Resolve(records descriptor.Set, opts Options) *Result {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	out := records.Clone()
	parents := StructuralParents(out)
	ordered := out.Sorted()
	res := &Result{Records: out}

	for _, rec := range ordered {
		if ParentPath(rec) != "" {
			if _, ok := parents[rec.Path]; !ok {
				res.MissingParents = append(res.MissingParents, rec.Path)
				logger.Warn("Parent descriptor not found, using declared parent coordinates",
					"path", rec.Path,
					"expected", ParentPath(rec),
					"parent", rec.Parent.ArtifactID,
				)
			}
		}
	}

	cycles := make(map[string]bool)
	for _, f := range []field{groupField, versionField} {
		settled := make(map[string]bool, len(out))
		for {
			res.Passes++
			changed := false
			for _, rec := range ordered {
				if settled[rec.Path] {
					continue
				}
				if f.get(rec) != "" {
					settled[rec.Path] = true
					changed = true
					continue
				}
				parentPath, hasParent := parents[rec.Path]
				if hasParent && !settled[parentPath] {
					continue
				}
				v := f.declared(rec)
				if hasParent {
					if pv := f.get(out[parentPath]); pv != "" {
						v = pv
					}
				}
				if v != "" {
					f.set(rec, v)
					res.Filled++
					logger.Debug("Back-filled coordinate", "path", rec.Path, "field", f.String(), "value", v)
				}
				settled[rec.Path] = true
				changed = true
			}
			if !changed {
				break
			}
		}

		// Whatever is still unsettled sits on a parent cycle.
		for _, rec := range ordered {
			if settled[rec.Path] {
				continue
			}
			cycles[rec.Path] = true
			if v := f.declared(rec); v != "" {
				f.set(rec, v)
				res.Filled++
			}
		}
	}

	for _, rec := range ordered {
		if cycles[rec.Path] {
			res.ParentCycles = append(res.ParentCycles, rec.Path)
			logger.Warn("Parent chain is cyclic, using declared parent coordinates", "path", rec.Path)
		}
	}

	logger.Debug("Resolved coordinates", "passes", res.Passes, "filled", res.Filled)
	return res
}

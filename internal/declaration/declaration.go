// Package declaration reads MONOSPLIT.toml, the optional per-repository
// overrides for application detection and module filtering.
package declaration

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	toml "github.com/pelletier/go-toml/v2"

	"monosplit/internal/descriptor"
	"monosplit/internal/errors"
)

// DefaultFile is the default declaration filename at the repository root.
const DefaultFile = "MONOSPLIT.toml"

// Application forces a module to be treated as an application.
type Application struct {
	// Artifact is an artifact id or a group:artifact key.
	Artifact string `toml:"artifact"`

	// Reason is free text shown in the proposal.
	Reason string `toml:"reason,omitempty"`
}

// File is the root structure of MONOSPLIT.toml.
type File struct {
	Version int `toml:"version"`

	// Ignore lists artifact ids or group:artifact keys removed from the graph.
	Ignore []string `toml:"ignore,omitempty"`

	Applications []Application `toml:"application,omitempty"`

	// Path and Checksum are set by Parse.
	Path     string `toml:"-"`
	Checksum string `toml:"-"`
}

// Parse reads and validates a declaration file.
func Parse(filePath string) (*File, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", filepath.Base(filePath), err)
	}

	var f File
	if err := toml.Unmarshal(data, &f); err != nil {
		return nil, errors.New(errors.DeclarationInvalid,
			fmt.Sprintf("failed to parse %s", filePath), err)
	}

	if f.Version < 1 {
		f.Version = 1
	}
	for i, app := range f.Applications {
		if app.Artifact == "" {
			return nil, errors.Newf(errors.DeclarationInvalid,
				"%s: application entry %d is missing required 'artifact' field", filePath, i+1)
		}
	}

	sum := sha256.Sum256(data)
	f.Path = filePath
	f.Checksum = hex.EncodeToString(sum[:8])
	return &f, nil
}

// Load reads <repoRoot>/<name> when it exists. A missing file returns nil, nil.
func Load(repoRoot, name string) (*File, error) {
	if name == "" {
		name = DefaultFile
	}
	filePath := filepath.Join(repoRoot, name)
	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		return nil, nil
	}
	return Parse(filePath)
}

// Write writes f as TOML, creating parent directories.
func Write(filePath string, f *File) error {
	data, err := toml.Marshal(f)
	if err != nil {
		return fmt.Errorf("failed to marshal declaration: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", filepath.Base(filePath), err)
	}
	return nil
}

// Example returns a starter declaration.
func Example() *File {
	return &File{
		Version: 1,
		Ignore:  []string{"legacy-tools"},
		Applications: []Application{
			{Artifact: "batch-runner", Reason: "scheduled job packaged as a plain jar"},
		},
	}
}

// ApplicationArtifacts returns the forced application keys. Nil-safe.
func (f *File) ApplicationArtifacts() []string {
	if f == nil {
		return nil
	}
	out := make([]string, 0, len(f.Applications))
	for _, a := range f.Applications {
		out = append(out, a.Artifact)
	}
	return out
}

// Ignores reports whether rec matches an ignore entry. Nil-safe.
func (f *File) Ignores(rec *descriptor.Record) bool {
	if f == nil {
		return false
	}
	return slices.Contains(f.Ignore, rec.ArtifactID()) ||
		slices.Contains(f.Ignore, rec.Coordinate.Key().String())
}

// Filter returns the records not ignored by f, plus the ignored paths in path order.
func (f *File) Filter(records descriptor.Set) (descriptor.Set, []string) {
	if f == nil || len(f.Ignore) == 0 {
		return records, nil
	}
	kept := make(descriptor.Set, len(records))
	var dropped []string
	for _, rec := range records.Sorted() {
		if f.Ignores(rec) {
			dropped = append(dropped, rec.Path)
			continue
		}
		kept[rec.Path] = rec
	}
	return kept, dropped
}

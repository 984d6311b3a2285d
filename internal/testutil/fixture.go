// Package testutil builds on-disk descriptor trees for tests.
package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// Tree is a temporary project tree rooted in t.TempDir().
type Tree struct {
	t    testing.TB
	Root string
}

// NewTree creates an empty tree.
func NewTree(t testing.TB) *Tree {
	t.Helper()
	root, err := filepath.EvalSymlinks(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to resolve temp dir: %v", err)
	}
	return &Tree{t: t, Root: root}
}

// Path returns the absolute path of rel inside the tree.
func (tr *Tree) Path(rel string) string {
	return filepath.Join(tr.Root, filepath.FromSlash(rel))
}

// Write writes content to rel, creating parent directories, and returns the absolute path.
func (tr *Tree) Write(rel string, content string) string {
	tr.t.Helper()
	p := tr.Path(rel)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		tr.t.Fatalf("Failed to create directory for %s: %v", rel, err)
	}
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		tr.t.Fatalf("Failed to write %s: %v", rel, err)
	}
	return p
}

// Mkdir creates rel (and parents) and returns the absolute path.
func (tr *Tree) Mkdir(rel string) string {
	tr.t.Helper()
	p := tr.Path(rel)
	if err := os.MkdirAll(p, 0o755); err != nil {
		tr.t.Fatalf("Failed to create %s: %v", rel, err)
	}
	return p
}

// Pom writes dir/pom.xml from desc and returns its absolute path.
// Use "" or "." for the tree root.
func (tr *Tree) Pom(dir string, desc Pom) string {
	tr.t.Helper()
	return tr.Write(filepath.ToSlash(filepath.Join(dir, "pom.xml")), desc.XML())
}

// Pom describes a descriptor to generate. Empty strings are omitted.
type Pom struct {
	Group     string
	Artifact  string
	Version   string
	Packaging string
	Parent    *Parent
	Modules   []string
	Deps      []Dep
	// Namespaced emits the standard POM xmlns on <project>.
	Namespaced bool
}

// Parent describes a <parent> block.
type Parent struct {
	Group        string
	Artifact     string
	Version      string
	RelativePath string
}

// Dep describes a <dependency> entry.
type Dep struct {
	Group    string
	Artifact string
	Version  string
	Scope    string
	Type     string
	Optional string
}

// XML renders the descriptor.
func (p Pom) XML() string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	if p.Namespaced {
		b.WriteString(`<project xmlns="http://maven.apache.org/POM/4.0.0">` + "\n")
	} else {
		b.WriteString("<project>\n")
	}
	b.WriteString("  <modelVersion>4.0.0</modelVersion>\n")

	if p.Parent != nil {
		b.WriteString("  <parent>\n")
		elem(&b, "    ", "groupId", p.Parent.Group)
		elem(&b, "    ", "artifactId", p.Parent.Artifact)
		elem(&b, "    ", "version", p.Parent.Version)
		elem(&b, "    ", "relativePath", p.Parent.RelativePath)
		b.WriteString("  </parent>\n")
	}

	elem(&b, "  ", "groupId", p.Group)
	elem(&b, "  ", "artifactId", p.Artifact)
	elem(&b, "  ", "version", p.Version)
	elem(&b, "  ", "packaging", p.Packaging)

	if len(p.Modules) > 0 {
		b.WriteString("  <modules>\n")
		for _, m := range p.Modules {
			elem(&b, "    ", "module", m)
		}
		b.WriteString("  </modules>\n")
	}

	if len(p.Deps) > 0 {
		b.WriteString("  <dependencies>\n")
		for _, d := range p.Deps {
			b.WriteString("    <dependency>\n")
			elem(&b, "      ", "groupId", d.Group)
			elem(&b, "      ", "artifactId", d.Artifact)
			elem(&b, "      ", "version", d.Version)
			elem(&b, "      ", "scope", d.Scope)
			elem(&b, "      ", "type", d.Type)
			elem(&b, "      ", "optional", d.Optional)
			b.WriteString("    </dependency>\n")
		}
		b.WriteString("  </dependencies>\n")
	}

	b.WriteString("</project>\n")
	return b.String()
}

func elem(b *strings.Builder, indent, name, value string) {
	if value == "" {
		return
	}
	b.WriteString(indent + "<" + name + ">" + value + "</" + name + ">\n")
}

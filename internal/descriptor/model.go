// Package descriptor reads Maven pom.xml module descriptors into Records.
//
// Identity fields use the empty string for "absent". Element text is trimmed,
// so an empty or whitespace-only element is absent as well.
package descriptor

import (
	"slices"
	"strings"
)

// Placeholders used when a coordinate is rendered with unresolved fields.
const (
	UnknownGroup   = "UNKNOWN_GROUP"
	UnknownVersion = "UNKNOWN_VERSION"
)

// DefaultPackaging is the packaging assumed when a descriptor declares none.
const DefaultPackaging = "jar"

// Kind is the coarse packaging classification of a module.
type Kind string

const (
	KindLibrary Kind = "library"
	KindWebApp  Kind = "application-web"
	KindEarApp  Kind = "application-ear"
	KindOther   Kind = "other"
)

// KindOf maps a raw packaging value to its Kind.
func KindOf(packaging string) Kind {
	switch packaging {
	case "", "jar":
		return KindLibrary
	case "war":
		return KindWebApp
	case "ear":
		return KindEarApp
	default:
		return KindOther
	}
}

// Key is the (group, artifact) pair used to match dependencies to modules.
type Key struct {
	Group    string
	Artifact string
}

func (k Key) String() string {
	return k.Group + ":" + k.Artifact
}

// Coordinate is a module's group/artifact/version triple.
type Coordinate struct {
	GroupID    string `json:"groupId,omitempty" yaml:"groupId,omitempty"`
	ArtifactID string `json:"artifactId" yaml:"artifactId"`
	Version    string `json:"version,omitempty" yaml:"version,omitempty"`
}

// Key returns the matching key for the coordinate.
func (c Coordinate) Key() Key {
	return Key{Group: c.GroupID, Artifact: c.ArtifactID}
}

// GAV renders group:artifact:version with placeholders for absent fields.
func (c Coordinate) GAV() string {
	g := c.GroupID
	if g == "" {
		g = UnknownGroup
	}
	v := c.Version
	if v == "" {
		v = UnknownVersion
	}
	return g + ":" + c.ArtifactID + ":" + v
}

// ParentRef is the <parent> block as declared.
type ParentRef struct {
	GroupID      string `json:"groupId,omitempty" yaml:"groupId,omitempty"`
	ArtifactID   string `json:"artifactId,omitempty" yaml:"artifactId,omitempty"`
	Version      string `json:"version,omitempty" yaml:"version,omitempty"`
	RelativePath string `json:"relativePath,omitempty" yaml:"relativePath,omitempty"`
}

// Dependency is one <dependency> entry, flags preserved verbatim.
type Dependency struct {
	GroupID    string `json:"groupId" yaml:"groupId"`
	ArtifactID string `json:"artifactId" yaml:"artifactId"`
	Version    string `json:"version,omitempty" yaml:"version,omitempty"`
	Scope      string `json:"scope,omitempty" yaml:"scope,omitempty"`
	Type       string `json:"type,omitempty" yaml:"type,omitempty"`
	Optional   *bool  `json:"optional,omitempty" yaml:"optional,omitempty"`
}

// Key returns the (group, artifact) pair of the dependency target.
func (d Dependency) Key() Key {
	return Key{Group: d.GroupID, Artifact: d.ArtifactID}
}

// IsTestScoped reports whether the dependency only applies to tests.
func (d Dependency) IsTestScoped() bool {
	return strings.TrimSpace(d.Scope) == "test"
}

// Record is one parsed descriptor. Path is the node identity: two records are
// the same module iff their descriptor paths are equal.
type Record struct {
	Path         string       `json:"path" yaml:"path"`
	Dir          string       `json:"dir" yaml:"dir"`
	Coordinate   Coordinate   `json:"coordinate" yaml:"coordinate"`
	Packaging    string       `json:"packaging" yaml:"packaging"`
	Parent       *ParentRef   `json:"parent,omitempty" yaml:"parent,omitempty"`
	Modules      []string     `json:"modules,omitempty" yaml:"modules,omitempty"`
	Dependencies []Dependency `json:"dependencies,omitempty" yaml:"dependencies,omitempty"`
}

// Kind returns the packaging classification of the record.
func (r *Record) Kind() Kind {
	return KindOf(r.Packaging)
}

// GAV is shorthand for r.Coordinate.GAV().
func (r *Record) GAV() string {
	return r.Coordinate.GAV()
}

// ArtifactID is shorthand for r.Coordinate.ArtifactID.
func (r *Record) ArtifactID() string {
	return r.Coordinate.ArtifactID
}

// Clone returns a deep copy of the record.
func (r *Record) Clone() *Record {
	c := *r
	if r.Parent != nil {
		p := *r.Parent
		c.Parent = &p
	}
	c.Modules = slices.Clone(r.Modules)
	c.Dependencies = make([]Dependency, len(r.Dependencies))
	for i, d := range r.Dependencies {
		c.Dependencies[i] = d
		if d.Optional != nil {
			o := *d.Optional
			c.Dependencies[i].Optional = &o
		}
	}
	return &c
}

// Set holds parsed records keyed by descriptor path.
type Set map[string]*Record

// Sorted returns the records ordered by descriptor path.
func (s Set) Sorted() []*Record {
	out := make([]*Record, 0, len(s))
	for _, r := range s {
		out = append(out, r)
	}
	slices.SortFunc(out, func(a, b *Record) int {
		return strings.Compare(a.Path, b.Path)
	})
	return out
}

// Clone deep-copies every record.
func (s Set) Clone() Set {
	out := make(Set, len(s))
	for k, r := range s {
		out[k] = r.Clone()
	}
	return out
}

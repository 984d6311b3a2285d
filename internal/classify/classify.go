// Package classify detects application modules and sorts every other module
// into shared, high-fan-in and application-exclusive sets.
package classify

import (
	"cmp"
	"log/slog"
	"path/filepath"
	"slices"

	"monosplit/internal/depgraph"
	"monosplit/internal/descriptor"
	"monosplit/internal/paths"
)

// Reason records why a module was detected as an application.
type Reason string

const (
	ReasonPackaging Reason = "packaging"
	ReasonWebSource Reason = "web-source"
	ReasonDeclared  Reason = "declared"
)

// Options configures Classify.
type Options struct {
	// ApplicationPackaging lists packaging values that mark an application.
	ApplicationPackaging []string
	// WebSourceMarkers are module-relative directories that mark an application.
	WebSourceMarkers []string
	// ForcedApplications are artifact ids or group:artifact keys treated as
	// applications regardless of packaging.
	ForcedApplications []string
	// MinSharedApps is the application count at which a library is shared.
	// Values below 2 are raised to 2.
	MinSharedApps int
	// MinFanIn is the direct dependent count at which a library is high-fan-in.
	// Values below 2 are raised to 2.
	MinFanIn int
	Logger   *slog.Logger
}

// DefaultOptions mirrors the default configuration.
func DefaultOptions() Options {
	return Options{
		ApplicationPackaging: []string{"war", "ear"},
		WebSourceMarkers:     []string{"src/main/webapp"},
		MinSharedApps:        2,
		MinFanIn:             2,
	}
}

// Application is a detected application and its dependency closure.
type Application struct {
	Node   depgraph.NodeID
	Reason Reason
	// Closure excludes the application itself and is in node order.
	Closure []depgraph.NodeID
}

// SharedLibrary is a library reached by at least MinSharedApps applications.
type SharedLibrary struct {
	Node depgraph.NodeID
	Apps []depgraph.NodeID
}

// FanInLibrary is a non-shared library with at least MinFanIn direct dependents.
type FanInLibrary struct {
	Node       depgraph.NodeID
	Dependents []depgraph.NodeID
}

// Proposal is the classified module set a split recommendation is built from.
type Proposal struct {
	Applications []Application
	Libraries    []depgraph.NodeID
	// Shared is sorted by application count descending, then GAV.
	Shared []SharedLibrary
	// HighFanIn is sorted by dependent count descending, then GAV.
	HighFanIn []FanInLibrary
	// Exclusive maps an application to the libraries only it reaches, in GAV order.
	Exclusive map[depgraph.NodeID][]depgraph.NodeID
	// Unreached lists libraries no application reaches.
	Unreached []depgraph.NodeID
	// LibraryApps maps every library to the applications whose closure contains it.
	LibraryApps map[depgraph.NodeID][]depgraph.NodeID

	Graph *depgraph.Graph
}

// Classify computes application closures and library classes over g.
func Classify(g *depgraph.Graph, opts Options) *Proposal {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	minShared := max(opts.MinSharedApps, 2)
	minFanIn := max(opts.MinFanIn, 2)

	p := &Proposal{
		Exclusive:   make(map[depgraph.NodeID][]depgraph.NodeID),
		LibraryApps: make(map[depgraph.NodeID][]depgraph.NodeID),
		Graph:       g,
	}

	isApp := make([]bool, g.Len())
	for i, rec := range g.Nodes() {
		id := depgraph.NodeID(i)
		reason, ok := detect(rec, opts)
		if !ok {
			p.Libraries = append(p.Libraries, id)
			continue
		}
		isApp[i] = true
		p.Applications = append(p.Applications, Application{
			Node:    id,
			Reason:  reason,
			Closure: g.Closure(id),
		})
		logger.Debug("Detected application", "artifact", rec.ArtifactID(), "reason", string(reason))
	}

	for _, app := range p.Applications {
		for _, m := range app.Closure {
			if !isApp[m] {
				p.LibraryApps[m] = append(p.LibraryApps[m], app.Node)
			}
		}
	}

	for _, lib := range p.Libraries {
		apps := p.LibraryApps[lib]
		switch {
		case len(apps) >= minShared:
			p.Shared = append(p.Shared, SharedLibrary{Node: lib, Apps: apps})
		case len(apps) == 0:
			p.Unreached = append(p.Unreached, lib)
		}
		if len(apps) == 1 {
			p.Exclusive[apps[0]] = append(p.Exclusive[apps[0]], lib)
		}
	}
	shared := make(map[depgraph.NodeID]bool, len(p.Shared))
	for _, s := range p.Shared {
		shared[s.Node] = true
	}
	for _, lib := range p.Libraries {
		if shared[lib] {
			continue
		}
		if deps := g.Dependents(lib); len(deps) >= minFanIn {
			p.HighFanIn = append(p.HighFanIn, FanInLibrary{Node: lib, Dependents: deps})
		}
	}

	// Node ids are in GAV order, so the id is the coordinate tie-break.
	slices.SortStableFunc(p.Shared, func(a, b SharedLibrary) int {
		return cmp.Or(cmp.Compare(len(b.Apps), len(a.Apps)), cmp.Compare(a.Node, b.Node))
	})
	slices.SortStableFunc(p.HighFanIn, func(a, b FanInLibrary) int {
		return cmp.Or(cmp.Compare(len(b.Dependents), len(a.Dependents)), cmp.Compare(a.Node, b.Node))
	})

	logger.Debug("Classified modules",
		"applications", len(p.Applications),
		"shared", len(p.Shared),
		"highFanIn", len(p.HighFanIn),
		"unreached", len(p.Unreached),
	)
	return p
}

func detect(rec *descriptor.Record, opts Options) (Reason, bool) {
	if slices.Contains(opts.ApplicationPackaging, rec.Packaging) {
		return ReasonPackaging, true
	}
	for _, marker := range opts.WebSourceMarkers {
		if paths.DirExists(filepath.Join(rec.Dir, filepath.FromSlash(marker))) {
			return ReasonWebSource, true
		}
	}
	if slices.Contains(opts.ForcedApplications, rec.ArtifactID()) ||
		slices.Contains(opts.ForcedApplications, rec.Coordinate.Key().String()) {
		return ReasonDeclared, true
	}
	return "", false
}

// IsApplication reports whether id was detected as an application.
func (p *Proposal) IsApplication(id depgraph.NodeID) bool {
	for _, a := range p.Applications {
		if a.Node == id {
			return true
		}
	}
	return false
}

// IsShared reports whether id is in the shared set.
func (p *Proposal) IsShared(id depgraph.NodeID) bool {
	for _, s := range p.Shared {
		if s.Node == id {
			return true
		}
	}
	return false
}

// Role names the class of a module for tables and exports.
func (p *Proposal) Role(id depgraph.NodeID) string {
	switch {
	case p.IsApplication(id):
		return "application"
	case p.IsShared(id):
		return "shared"
	}
	for _, f := range p.HighFanIn {
		if f.Node == id {
			return "high-fan-in"
		}
	}
	switch len(p.LibraryApps[id]) {
	case 0:
		return "unreached"
	case 1:
		return "exclusive"
	}
	return "library"
}

// SortedArtifacts renders ids as artifact ids in lexical order.
func (p *Proposal) SortedArtifacts(ids []depgraph.NodeID) []string {
	out := p.Graph.Artifacts(ids)
	slices.Sort(out)
	return out
}

// Package depgraph builds the internal module dependency graph.
//
// Vertices are keyed by descriptor path in a directed graph. Alongside it the
// records live in an arena ordered by GAV (ties broken by descriptor path), so
// a NodeID is both a stable handle and the deterministic report position.
package depgraph

import (
	"cmp"
	"errors"
	"log/slog"
	"slices"
	"strings"

	graphlib "github.com/dominikbraun/graph"

	"monosplit/internal/descriptor"
)

// NodeID indexes a module in the graph arena.
type NodeID int

// Edge means From declares a non-test dependency on To.
type Edge struct {
	From NodeID
	To   NodeID
}

// Options configures Build.
type Options struct {
	Logger *slog.Logger
}

// Stats counts what happened to dependency entries during Build.
type Stats struct {
	Declared    int `json:"declared" yaml:"declared"`
	Internal    int `json:"internal" yaml:"internal"`
	External    int `json:"external" yaml:"external"`
	TestScoped  int `json:"testScoped" yaml:"testScoped"`
	UniqueEdges int `json:"uniqueEdges" yaml:"uniqueEdges"`
}

// Graph is the internal dependency graph over resolved records.
type Graph struct {
	nodes   []*descriptor.Record
	nodeIdx map[string]NodeID // descriptor path -> id
	index   map[descriptor.Key]NodeID

	// dag holds one vertex per descriptor path and one edge per distinct
	// dependency.
	dag graphlib.Graph[string, *descriptor.Record]

	// edges is the working set, duplicates included, in build order.
	edges []Edge
	// out and in are read back from dag, sorted ascending by NodeID.
	out [][]NodeID
	in  [][]NodeID

	stats Stats
	// Duplicates lists (group, artifact) keys declared by more than one record.
	Duplicates []descriptor.Key
}

// Build indexes records by resolved (group, artifact) and turns every matching
// non-test dependency entry into an edge. Entries that match nothing are
// dropped. When two records share a key the first in node order wins.
func Build(records descriptor.Set, opts Options) *Graph {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	nodes := make([]*descriptor.Record, 0, len(records))
	for _, r := range records {
		nodes = append(nodes, r)
	}
	slices.SortFunc(nodes, func(a, b *descriptor.Record) int {
		return cmp.Or(strings.Compare(a.GAV(), b.GAV()), strings.Compare(a.Path, b.Path))
	})

	g := &Graph{
		nodes:   nodes,
		nodeIdx: make(map[string]NodeID, len(nodes)),
		index:   make(map[descriptor.Key]NodeID, len(nodes)),
		dag:     graphlib.New(func(r *descriptor.Record) string { return r.Path }, graphlib.Directed()),
	}

	for i, r := range nodes {
		id := NodeID(i)
		g.nodeIdx[r.Path] = id
		if err := g.dag.AddVertex(r); err != nil {
			// paths are unique in a Set
			logger.Warn("Skipping module vertex", "path", r.Path, "error", err)
		}
		if r.Coordinate.GroupID == "" {
			continue
		}
		key := r.Coordinate.Key()
		if prev, ok := g.index[key]; ok {
			g.Duplicates = append(g.Duplicates, key)
			logger.Warn("Duplicate module coordinates, keeping first",
				"key", key.String(),
				"kept", nodes[prev].Path,
				"ignored", r.Path,
			)
			continue
		}
		g.index[key] = id
	}

	for i, r := range nodes {
		from := NodeID(i)
		for _, d := range r.Dependencies {
			g.stats.Declared++
			to, ok := g.index[d.Key()]
			if !ok {
				g.stats.External++
				continue
			}
			if d.IsTestScoped() {
				g.stats.TestScoped++
				continue
			}
			g.edges = append(g.edges, Edge{From: from, To: to})
		}
	}
	g.stats.Internal = len(g.edges)

	for _, e := range g.edges {
		err := g.dag.AddEdge(nodes[e.From].Path, nodes[e.To].Path)
		switch {
		case err == nil:
			g.stats.UniqueEdges++
		case errors.Is(err, graphlib.ErrEdgeAlreadyExists):
		default:
			logger.Warn("Skipping dependency edge",
				"from", nodes[e.From].Path,
				"to", nodes[e.To].Path,
				"error", err,
			)
		}
	}
	g.out = g.sortedNeighbors(g.dag.AdjacencyMap)
	g.in = g.sortedNeighbors(g.dag.PredecessorMap)

	logger.Debug("Built dependency graph",
		"modules", len(nodes),
		"edges", g.stats.Internal,
		"unique", g.stats.UniqueEdges,
		"external", g.stats.External,
		"testScoped", g.stats.TestScoped,
	)
	return g
}

// sortedNeighbors converts an adjacency or predecessor map of dag into
// per-node NodeID lists in node order.
func (g *Graph) sortedNeighbors(adjacency func() (map[string]map[string]graphlib.Edge[string], error)) [][]NodeID {
	out := make([][]NodeID, len(g.nodes))
	m, err := adjacency()
	if err != nil {
		return out
	}
	for path, targets := range m {
		from, ok := g.nodeIdx[path]
		if !ok {
			continue
		}
		for target := range targets {
			out[from] = append(out[from], g.nodeIdx[target])
		}
		slices.Sort(out[from])
	}
	return out
}

// Len returns the number of nodes.
func (g *Graph) Len() int { return len(g.nodes) }

// Node returns the record behind id.
func (g *Graph) Node(id NodeID) *descriptor.Record { return g.nodes[id] }

// Nodes returns all records in node order. The slice must not be modified.
func (g *Graph) Nodes() []*descriptor.Record { return g.nodes }

// Lookup finds the node for a descriptor path.
func (g *Graph) Lookup(path string) (NodeID, bool) {
	id, ok := g.nodeIdx[path]
	return id, ok
}

// Find returns the node matched by a (group, artifact) key.
func (g *Graph) Find(key descriptor.Key) (NodeID, bool) {
	id, ok := g.index[key]
	return id, ok
}

// Edges returns the working edge set, duplicates included.
func (g *Graph) Edges() []Edge { return g.edges }

// UniqueEdges returns each distinct edge once, ordered by (From, To), which is
// (from GAV, to GAV) order.
func (g *Graph) UniqueEdges() []Edge {
	out := make([]Edge, 0, g.stats.UniqueEdges)
	for from, tos := range g.out {
		for _, to := range tos {
			out = append(out, Edge{From: NodeID(from), To: to})
		}
	}
	return out
}

// Successors returns the distinct direct dependencies of id in node order.
func (g *Graph) Successors(id NodeID) []NodeID { return g.out[id] }

// Dependents returns the distinct modules directly depending on id.
func (g *Graph) Dependents(id NodeID) []NodeID { return g.in[id] }

// FanIn is the number of distinct direct dependents of id.
func (g *Graph) FanIn(id NodeID) int { return len(g.in[id]) }

// Stats returns the edge bookkeeping from Build.
func (g *Graph) Stats() Stats { return g.stats }

// Closure returns every node reachable from start through dependency edges,
// excluding start itself, in node order.
func (g *Graph) Closure(start NodeID) []NodeID {
	seen := make([]bool, len(g.nodes))
	err := graphlib.DFS(g.dag, g.nodes[start].Path, func(path string) bool {
		seen[g.nodeIdx[path]] = true
		return false
	})
	if err != nil {
		return nil
	}
	seen[start] = false

	var out []NodeID
	for i, ok := range seen {
		if ok {
			out = append(out, NodeID(i))
		}
	}
	return out
}

// GAVs renders ids as GAV strings.
func (g *Graph) GAVs(ids []NodeID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = g.nodes[id].GAV()
	}
	return out
}

// Artifacts renders ids as artifact ids.
func (g *Graph) Artifacts(ids []NodeID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = g.nodes[id].ArtifactID()
	}
	return out
}

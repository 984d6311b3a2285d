package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"monosplit/internal/depgraph"
	"monosplit/internal/descriptor"
	"monosplit/internal/testutil"
)

type mod struct {
	name      string
	packaging string
	deps      []string
}

func graphOf(t *testing.T, root string, mods ...mod) *depgraph.Graph {
	t.Helper()
	s := make(descriptor.Set, len(mods))
	for _, m := range mods {
		r := &descriptor.Record{
			Path:       root + "/" + m.name + "/pom.xml",
			Dir:        root + "/" + m.name,
			Coordinate: descriptor.Coordinate{GroupID: "com.x", ArtifactID: m.name, Version: "1.0"},
			Packaging:  m.packaging,
		}
		if r.Packaging == "" {
			r.Packaging = descriptor.DefaultPackaging
		}
		for _, d := range m.deps {
			r.Dependencies = append(r.Dependencies, descriptor.Dependency{GroupID: "com.x", ArtifactID: d})
		}
		s[r.Path] = r
	}
	return depgraph.Build(s, depgraph.Options{})
}

func node(t *testing.T, g *depgraph.Graph, name string) depgraph.NodeID {
	t.Helper()
	id, ok := g.Find(descriptor.Key{Group: "com.x", Artifact: name})
	require.True(t, ok, name)
	return id
}

func TestSharedAcrossTwoApps(t *testing.T) {
	g := graphOf(t, "/repo",
		mod{name: "app1", packaging: "war", deps: []string{"common"}},
		mod{name: "app2", packaging: "war", deps: []string{"common"}},
		mod{name: "common"},
	)

	p := Classify(g, DefaultOptions())

	require.Len(t, p.Shared, 1)
	assert.Equal(t, "common", g.Node(p.Shared[0].Node).ArtifactID())
	assert.Equal(t, []string{"app1", "app2"}, p.SortedArtifacts(p.Shared[0].Apps))
	assert.Empty(t, p.HighFanIn, "shared libraries are not repeated as high fan-in")
	assert.Len(t, p.Applications, 2)
}

func TestClosureScenario(t *testing.T) {
	g := graphOf(t, "/repo",
		mod{name: "app", packaging: "war", deps: []string{"lib1"}},
		mod{name: "app2", packaging: "ear", deps: []string{"lib2"}},
		mod{name: "lib1", deps: []string{"lib2"}},
		mod{name: "lib2"},
		mod{name: "tool", deps: []string{"lib3"}},
		mod{name: "lib3"},
	)

	p := Classify(g, DefaultOptions())

	require.Len(t, p.Shared, 1)
	assert.Equal(t, node(t, g, "lib2"), p.Shared[0].Node)
	assert.Equal(t, []depgraph.NodeID{node(t, g, "lib1")}, p.Exclusive[node(t, g, "app")])
	assert.Empty(t, p.Exclusive[node(t, g, "app2")])
	assert.Empty(t, p.HighFanIn)
	assert.Equal(t, "unreached", p.Role(node(t, g, "lib3")))
	assert.Equal(t, "exclusive", p.Role(node(t, g, "lib1")))
	assert.Equal(t, "shared", p.Role(node(t, g, "lib2")))
	assert.Equal(t, "application", p.Role(node(t, g, "app2")))
}

func TestUnreachedLibraryBecomesHighFanIn(t *testing.T) {
	g := graphOf(t, "/repo",
		mod{name: "app", packaging: "war"},
		mod{name: "tool-a", deps: []string{"lib3"}},
		mod{name: "tool-b", deps: []string{"lib3"}},
		mod{name: "lib3"},
	)

	p := Classify(g, DefaultOptions())

	require.Len(t, p.HighFanIn, 1)
	assert.Equal(t, node(t, g, "lib3"), p.HighFanIn[0].Node)
	assert.Equal(t, []string{"tool-a", "tool-b"}, p.SortedArtifacts(p.HighFanIn[0].Dependents))
	assert.Empty(t, p.Shared)
}

func TestSortOrders(t *testing.T) {
	g := graphOf(t, "/repo",
		mod{name: "a1", packaging: "war", deps: []string{"zz", "yy", "xx"}},
		mod{name: "a2", packaging: "war", deps: []string{"zz", "yy", "xx"}},
		mod{name: "a3", packaging: "war", deps: []string{"zz"}},
		mod{name: "xx"},
		mod{name: "yy"},
		mod{name: "zz"},
		mod{name: "u1", deps: []string{"h2", "h1"}},
		mod{name: "u2", deps: []string{"h2", "h1"}},
		mod{name: "u3", deps: []string{"h2"}},
		mod{name: "h1"},
		mod{name: "h2"},
	)

	p := Classify(g, DefaultOptions())

	var shared []string
	for _, s := range p.Shared {
		shared = append(shared, g.Node(s.Node).ArtifactID())
	}
	assert.Equal(t, []string{"zz", "xx", "yy"}, shared)

	var fanIn []string
	for _, f := range p.HighFanIn {
		fanIn = append(fanIn, g.Node(f.Node).ArtifactID())
	}
	assert.Equal(t, []string{"h2", "h1"}, fanIn)
}

func TestWebSourceMarkerDetectsApplication(t *testing.T) {
	tree := testutil.NewTree(t)
	tree.Mkdir("portal/src/main/webapp/WEB-INF")
	g := graphOf(t, tree.Root, mod{name: "portal"}, mod{name: "core"})

	p := Classify(g, DefaultOptions())

	require.Len(t, p.Applications, 1)
	assert.Equal(t, ReasonWebSource, p.Applications[0].Reason)
	assert.Equal(t, "portal", g.Node(p.Applications[0].Node).ArtifactID())
}

func TestForcedApplication(t *testing.T) {
	g := graphOf(t, "/repo",
		mod{name: "batch", deps: []string{"core"}},
		mod{name: "cli", deps: []string{"core"}},
		mod{name: "core"},
	)
	opts := DefaultOptions()
	opts.ForcedApplications = []string{"batch", "com.x:cli"}

	p := Classify(g, opts)

	require.Len(t, p.Applications, 2)
	assert.Equal(t, ReasonDeclared, p.Applications[0].Reason)
	require.Len(t, p.Shared, 1)
	assert.Equal(t, node(t, g, "core"), p.Shared[0].Node)
}

func TestNoApplications(t *testing.T) {
	g := graphOf(t, "/repo", mod{name: "a", deps: []string{"b"}}, mod{name: "b"})

	p := Classify(g, DefaultOptions())

	assert.Empty(t, p.Applications)
	assert.Empty(t, p.Shared)
	assert.Len(t, p.Unreached, 2)
}

func TestHigherSharedThreshold(t *testing.T) {
	g := graphOf(t, "/repo",
		mod{name: "app1", packaging: "war", deps: []string{"common"}},
		mod{name: "app2", packaging: "war", deps: []string{"common"}},
		mod{name: "common"},
	)
	opts := DefaultOptions()
	opts.MinSharedApps = 3

	p := Classify(g, opts)

	assert.Empty(t, p.Shared)
	assert.Equal(t, "high-fan-in", p.Role(node(t, g, "common")))
	require.Len(t, p.HighFanIn, 1)
}

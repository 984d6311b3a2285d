package resolve

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"monosplit/internal/descriptor"
	"monosplit/internal/testutil"
)

func parseTree(t *testing.T, paths ...string) descriptor.Set {
	t.Helper()
	res, err := descriptor.ParseAll(context.Background(), paths, descriptor.Options{})
	require.NoError(t, err)
	require.Empty(t, res.Failed)
	return res.Records
}

func TestResolveChildFromRoot(t *testing.T) {
	tree := testutil.NewTree(t)
	root := tree.Pom("", testutil.Pom{Group: "com.x", Artifact: "root", Version: "1.0", Packaging: "pom"})
	child := tree.Pom("child", testutil.Pom{
		Artifact: "child",
		Parent:   &testutil.Parent{Artifact: "root"},
	})

	res := Resolve(parseTree(t, root, child), Options{})

	c := res.Records[child]
	assert.Equal(t, "com.x", c.Coordinate.GroupID)
	assert.Equal(t, "1.0", c.Coordinate.Version)
	assert.Equal(t, 2, res.Filled)
	assert.Empty(t, res.MissingParents)
}

func TestResolveDeepChainOrderIndependent(t *testing.T) {
	tree := testutil.NewTree(t)
	paths := []string{tree.Pom("", testutil.Pom{Group: "com.root", Artifact: "root", Version: "3.2"})}
	dir := ""
	prev := "root"
	for _, name := range []string{"l1", "l2", "l3", "l4", "l5"} {
		dir = dir + name + "/"
		paths = append(paths, tree.Pom(dir, testutil.Pom{
			Artifact: name,
			Parent:   &testutil.Parent{Artifact: prev},
		}))
		prev = name
	}

	// deepest first
	reversed := make([]string, len(paths))
	for i, p := range paths {
		reversed[len(paths)-1-i] = p
	}

	res := Resolve(parseTree(t, reversed...), Options{})
	for _, p := range paths {
		rec := res.Records[p]
		assert.Equal(t, "com.root", rec.Coordinate.GroupID, rec.ArtifactID())
		assert.Equal(t, "3.2", rec.Coordinate.Version, rec.ArtifactID())
	}
}

func TestResolveMidChainOverride(t *testing.T) {
	tree := testutil.NewTree(t)
	root := tree.Pom("", testutil.Pom{Group: "com.root", Artifact: "root", Version: "1.0"})
	mid := tree.Pom("mid", testutil.Pom{
		Group:    "com.mid",
		Artifact: "mid",
		Parent:   &testutil.Parent{Artifact: "root"},
	})
	leaf := tree.Pom("mid/leaf", testutil.Pom{
		Artifact: "leaf",
		Parent:   &testutil.Parent{Artifact: "mid"},
	})

	res := Resolve(parseTree(t, root, mid, leaf), Options{})

	assert.Equal(t, "com.mid", res.Records[leaf].Coordinate.GroupID)
	assert.Equal(t, "1.0", res.Records[leaf].Coordinate.Version)
	assert.Equal(t, "1.0", res.Records[mid].Coordinate.Version)
}

func TestResolveIdempotent(t *testing.T) {
	tree := testutil.NewTree(t)
	root := tree.Pom("", testutil.Pom{Group: "com.x", Artifact: "root", Version: "1.0"})
	child := tree.Pom("child", testutil.Pom{Artifact: "child", Parent: &testutil.Parent{Artifact: "root"}})

	first := Resolve(parseTree(t, root, child), Options{})
	second := Resolve(first.Records, Options{})

	assert.Zero(t, second.Filled)
	assert.Equal(t, first.Records[child].Coordinate, second.Records[child].Coordinate)
}

func TestResolveDoesNotMutateInput(t *testing.T) {
	tree := testutil.NewTree(t)
	root := tree.Pom("", testutil.Pom{Group: "com.x", Artifact: "root", Version: "1.0"})
	child := tree.Pom("child", testutil.Pom{Artifact: "child", Parent: &testutil.Parent{Artifact: "root"}})
	in := parseTree(t, root, child)

	Resolve(in, Options{})

	assert.Empty(t, in[child].Coordinate.GroupID)
}

func TestResolveMissingParentFallsBackToDeclared(t *testing.T) {
	tree := testutil.NewTree(t)
	app := tree.Pom("app", testutil.Pom{
		Artifact: "app",
		Parent: &testutil.Parent{
			Group:    "org.springframework.boot",
			Artifact: "spring-boot-starter-parent",
			Version:  "3.3.0",
		},
	})

	res := Resolve(parseTree(t, app), Options{})

	assert.Equal(t, "org.springframework.boot", res.Records[app].Coordinate.GroupID)
	assert.Equal(t, "3.3.0", res.Records[app].Coordinate.Version)
	assert.Equal(t, []string{app}, res.MissingParents)
}

func TestResolveExplicitRelativePath(t *testing.T) {
	tree := testutil.NewTree(t)
	parent := tree.Pom("build/parent", testutil.Pom{Group: "com.acme", Artifact: "parent", Version: "9"})
	mod := tree.Pom("modules/core", testutil.Pom{
		Artifact: "core",
		Parent:   &testutil.Parent{Artifact: "parent", RelativePath: "../../build/parent"},
	})

	res := Resolve(parseTree(t, parent, mod), Options{})

	assert.Equal(t, "com.acme", res.Records[mod].Coordinate.GroupID)
	assert.Empty(t, res.MissingParents)
	assert.Equal(t, map[string]string{mod: parent}, StructuralParents(res.Records))
}

func TestResolveStructuralParentWithoutValueUsesDeclared(t *testing.T) {
	tree := testutil.NewTree(t)
	root := tree.Pom("", testutil.Pom{Artifact: "root"})
	child := tree.Pom("child", testutil.Pom{
		Artifact: "child",
		Parent:   &testutil.Parent{Group: "com.declared", Artifact: "root", Version: "2.0"},
	})
	grandchild := tree.Pom("child/gc", testutil.Pom{
		Artifact: "gc",
		Parent:   &testutil.Parent{Artifact: "child"},
	})

	res := Resolve(parseTree(t, root, child, grandchild), Options{})

	assert.Empty(t, res.Records[root].Coordinate.GroupID, "absent is a valid terminal state")
	assert.Equal(t, "com.declared", res.Records[child].Coordinate.GroupID)
	assert.Equal(t, "com.declared", res.Records[grandchild].Coordinate.GroupID)
	assert.Equal(t, "2.0", res.Records[grandchild].Coordinate.Version)
}

func TestResolveNoAncestorLeavesAbsent(t *testing.T) {
	tree := testutil.NewTree(t)
	lone := tree.Pom("lone", testutil.Pom{Artifact: "lone"})

	res := Resolve(parseTree(t, lone), Options{})

	assert.Empty(t, res.Records[lone].Coordinate.GroupID)
	assert.Equal(t, "UNKNOWN_GROUP:lone:UNKNOWN_VERSION", res.Records[lone].GAV())
	assert.Empty(t, res.MissingParents)
}

func TestResolveParentCycleTerminates(t *testing.T) {
	tree := testutil.NewTree(t)
	a := tree.Pom("a", testutil.Pom{
		Artifact: "a",
		Parent:   &testutil.Parent{Group: "com.a", Artifact: "b", RelativePath: "../b"},
	})
	b := tree.Pom("b", testutil.Pom{
		Artifact: "b",
		Parent:   &testutil.Parent{Artifact: "a", RelativePath: "../a"},
	})

	res := Resolve(parseTree(t, a, b), Options{})

	assert.ElementsMatch(t, []string{a, b}, res.ParentCycles)
	assert.Equal(t, "com.a", res.Records[a].Coordinate.GroupID)
	assert.Empty(t, res.Records[b].Coordinate.GroupID)
}

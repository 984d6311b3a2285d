package descriptor

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"monosplit/internal/testutil"
)

func TestParseAllSkipsMalformed(t *testing.T) {
	tree := testutil.NewTree(t)
	good := tree.Pom("a", testutil.Pom{Group: "g", Artifact: "a"})
	bad := tree.Write("b/pom.xml", "<project><artifactId>b</artifactId>")
	other := tree.Pom("c", testutil.Pom{Group: "g", Artifact: "c"})

	res, err := ParseAll(context.Background(), []string{good, bad, other}, Options{Parallelism: 2})
	require.NoError(t, err)

	assert.Len(t, res.Records, 2)
	assert.Contains(t, res.Records, good)
	assert.Contains(t, res.Records, other)
	assert.Equal(t, []string{bad}, res.Failed)
	require.Error(t, res.Err())
	assert.Len(t, res.Warnings.Errors, 1)
}

func TestParseAllAllGood(t *testing.T) {
	tree := testutil.NewTree(t)
	var paths []string
	for _, name := range []string{"a", "b", "c", "d", "e"} {
		paths = append(paths, tree.Pom(name, testutil.Pom{Group: "g", Artifact: name}))
	}

	res, err := ParseAll(context.Background(), paths, Options{})
	require.NoError(t, err)
	assert.Len(t, res.Records, 5)
	assert.NoError(t, res.Err())
	assert.Empty(t, res.Failed)

	sorted := res.Records.Sorted()
	for i := 1; i < len(sorted); i++ {
		assert.Less(t, sorted[i-1].Path, sorted[i].Path)
	}
}

func TestParseAllMissingFileIsWarning(t *testing.T) {
	tree := testutil.NewTree(t)
	res, err := ParseAll(context.Background(), []string{tree.Path("nope/pom.xml")}, Options{})
	require.NoError(t, err)
	assert.Empty(t, res.Records)
	assert.Len(t, res.Failed, 1)
}

func TestParseAllCancelled(t *testing.T) {
	tree := testutil.NewTree(t)
	p := tree.Pom("a", testutil.Pom{Artifact: "a"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := ParseAll(ctx, []string{p}, Options{})
	assert.ErrorIs(t, err, context.Canceled)
}

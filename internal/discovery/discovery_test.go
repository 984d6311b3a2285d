package discovery

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"monosplit/internal/testutil"
)

func TestFind(t *testing.T) {
	tree := testutil.NewTree(t)
	root := tree.Pom("", testutil.Pom{Artifact: "root"})
	core := tree.Pom("core", testutil.Pom{Artifact: "core"})
	deep := tree.Pom("apps/web/portal", testutil.Pom{Artifact: "portal"})
	tree.Pom("core/target/classes/META-INF", testutil.Pom{Artifact: "copy"})
	tree.Pom("target", testutil.Pom{Artifact: "copy2"})
	tree.Write("docs/pom.xml.bak", "x")
	tree.Mkdir("odd/pom.xml")

	found, err := Find(tree.Root, Options{DescriptorName: "pom.xml", ExcludeDirs: []string{"target"}})

	require.NoError(t, err)
	assert.Equal(t, []string{deep, core, root}, found)
}

func TestFindRootUnderExcludedName(t *testing.T) {
	tree := testutil.NewTree(t)
	base := tree.Mkdir("target/checkout")
	tree.Pom("target/checkout/lib", testutil.Pom{Artifact: "lib"})

	found, err := Find(base, Options{ExcludeDirs: []string{"target"}})

	require.NoError(t, err)
	assert.Len(t, found, 1, "exclusion applies to paths below the root only")
}

func TestFindNothing(t *testing.T) {
	tree := testutil.NewTree(t)
	tree.Write("README.md", "# empty")

	found, err := Find(tree.Root, Options{})

	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestFindCustomDescriptorName(t *testing.T) {
	tree := testutil.NewTree(t)
	tree.Pom("a", testutil.Pom{Artifact: "a"})
	want := tree.Write("b/module.xml", testutil.Pom{Artifact: "b"}.XML())

	found, err := Find(tree.Root, Options{DescriptorName: "module.xml"})

	require.NoError(t, err)
	assert.Equal(t, []string{want}, found)
}

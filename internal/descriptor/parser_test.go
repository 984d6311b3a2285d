package descriptor

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"monosplit/internal/errors"
	"monosplit/internal/testutil"
)

func TestParseFullDescriptor(t *testing.T) {
	tree := testutil.NewTree(t)
	path := tree.Pom("core", testutil.Pom{
		Namespaced: true,
		Group:      "com.acme",
		Artifact:   "core",
		Version:    "2.1.0",
		Parent: &testutil.Parent{
			Group:        "com.acme",
			Artifact:     "parent",
			Version:      "2.1.0",
			RelativePath: "../build/pom.xml",
		},
		Modules: []string{"api", "impl"},
		Deps: []testutil.Dep{
			{Group: "com.acme", Artifact: "model", Scope: "compile", Optional: "TRUE"},
			{Group: "junit", Artifact: "junit", Version: "4.13", Scope: "test"},
			{Group: "com.acme", Artifact: "shared", Type: "pom", Optional: "false"},
		},
	})

	rec, err := ParseFile(path)
	require.NoError(t, err)

	assert.Equal(t, path, rec.Path)
	assert.Equal(t, filepath.Dir(path), rec.Dir)
	assert.Equal(t, Coordinate{GroupID: "com.acme", ArtifactID: "core", Version: "2.1.0"}, rec.Coordinate)
	assert.Equal(t, "jar", rec.Packaging)
	assert.Equal(t, KindLibrary, rec.Kind())

	require.NotNil(t, rec.Parent)
	assert.Equal(t, ParentRef{GroupID: "com.acme", ArtifactID: "parent", Version: "2.1.0", RelativePath: "../build/pom.xml"}, *rec.Parent)
	assert.Equal(t, []string{"api", "impl"}, rec.Modules)

	require.Len(t, rec.Dependencies, 3)
	model := rec.Dependencies[0]
	assert.Equal(t, Key{Group: "com.acme", Artifact: "model"}, model.Key())
	assert.Empty(t, model.Version, "missing version stays absent")
	require.NotNil(t, model.Optional)
	assert.True(t, *model.Optional)

	assert.True(t, rec.Dependencies[1].IsTestScoped())
	assert.Nil(t, rec.Dependencies[1].Optional)

	assert.Equal(t, "pom", rec.Dependencies[2].Type)
	require.NotNil(t, rec.Dependencies[2].Optional)
	assert.False(t, *rec.Dependencies[2].Optional)
}

func TestParseAbsentFields(t *testing.T) {
	rec, err := Parse("/x/child/pom.xml", []byte(`<project>
  <parent><artifactId>root</artifactId></parent>
  <artifactId> child </artifactId>
  <groupId>   </groupId>
</project>`))
	require.NoError(t, err)

	assert.Empty(t, rec.Coordinate.GroupID, "whitespace-only group is absent")
	assert.Empty(t, rec.Coordinate.Version)
	assert.Equal(t, "child", rec.ArtifactID())
	assert.Equal(t, "UNKNOWN_GROUP:child:UNKNOWN_VERSION", rec.GAV())
	assert.Equal(t, "/x/child", rec.Dir)
	require.NotNil(t, rec.Parent)
	assert.Equal(t, "root", rec.Parent.ArtifactID)
	assert.Empty(t, rec.Parent.RelativePath)
}

func TestParseIgnoresNestedDependencyBlocks(t *testing.T) {
	rec, err := Parse("/x/pom.xml", []byte(`<project>
  <artifactId>bom</artifactId>
  <packaging>pom</packaging>
  <dependencyManagement>
    <dependencies>
      <dependency><groupId>g</groupId><artifactId>managed</artifactId></dependency>
    </dependencies>
  </dependencyManagement>
  <build><plugins><plugin><dependencies>
    <dependency><groupId>g</groupId><artifactId>plugin-dep</artifactId></dependency>
  </dependencies></plugin></plugins></build>
</project>`))
	require.NoError(t, err)

	assert.Empty(t, rec.Dependencies)
	assert.Nil(t, rec.Parent)
	assert.Equal(t, KindOther, rec.Kind())
}

func TestParseMalformed(t *testing.T) {
	for name, content := range map[string]string{
		"unclosed":  "<project><artifactId>x</artifactId>",
		"empty":     "",
		"garbage":   "not xml at all <<<",
		"trailing":  "<project><artifactId>a</artifactId></project><broken",
		"leading":   "not xml at all <project><artifactId>b</artifactId></project>",
		"twoRoots":  "<project><artifactId>c</artifactId></project><project><artifactId>d</artifactId></project>",
		"textAfter": "<project><artifactId>e</artifactId></project>\ntrailing words\n",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Parse("/x/pom.xml", []byte(content))
			require.Error(t, err)
			assert.True(t, errors.Is(err, errors.DescriptorMalformed))
		})
	}
}

func TestParseAllowsProlog(t *testing.T) {
	content := `<?xml version="1.0" encoding="ISO-8859-1"?>
<!-- generated -->
<!DOCTYPE project>
<project>
  <groupId>g</groupId>
  <artifactId>a</artifactId>
</project>
<!-- trailer -->
`
	rec, err := Parse("/x/pom.xml", []byte(content))
	require.NoError(t, err)
	assert.Equal(t, "g:a:UNKNOWN_VERSION", rec.GAV())
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindLibrary, KindOf(""))
	assert.Equal(t, KindLibrary, KindOf("jar"))
	assert.Equal(t, KindWebApp, KindOf("war"))
	assert.Equal(t, KindEarApp, KindOf("ear"))
	assert.Equal(t, KindOther, KindOf("bundle"))
}

func TestRecordClone(t *testing.T) {
	opt := true
	rec := &Record{
		Path:         "/a/pom.xml",
		Parent:       &ParentRef{ArtifactID: "p"},
		Modules:      []string{"m"},
		Dependencies: []Dependency{{ArtifactID: "d", Optional: &opt}},
	}
	c := rec.Clone()
	c.Parent.ArtifactID = "changed"
	c.Modules[0] = "changed"
	*c.Dependencies[0].Optional = false

	assert.Equal(t, "p", rec.Parent.ArtifactID)
	assert.Equal(t, "m", rec.Modules[0])
	assert.True(t, *rec.Dependencies[0].Optional)
}

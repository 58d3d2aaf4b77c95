package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/kkkqkx123/graphdb/internal/graph"
)

func TestSnapshotIncludesTagsEdgeTypesAndIndexes(t *testing.T) {
	c := New()
	space, err := c.CreateSpace("social")
	require.NoError(t, err)

	_, err = c.CreateTag(space, &graph.TagSchema{Name: "Person", Properties: []graph.PropertyDef{
		{Name: "name", Type: graph.TypeString},
		{Name: "age", Type: graph.TypeInt, Nullable: true},
	}})
	require.NoError(t, err)

	_, err = c.CreateEdgeType(space, &graph.EdgeTypeSchema{Name: "FOLLOWS"})
	require.NoError(t, err)

	personId, ok := c.TagByName(space, "Person")
	require.True(t, ok)
	_, err = c.CreateIndex(space, &graph.IndexSchema{
		Name: "person_name_idx", Kind: graph.IndexKindTag, Tag: personId.ID, Columns: []string{"name"}, Unique: true,
	})
	require.NoError(t, err)

	snap, err := c.Snapshot("social")
	require.NoError(t, err)
	assert.Equal(t, "social", snap.Space)
	require.Len(t, snap.Tags, 1)
	assert.Equal(t, "Person", snap.Tags[0].Name)
	assert.ElementsMatch(t, []PropertySnapshot{
		{Name: "name", Type: "string"},
		{Name: "age", Type: "int", Nullable: true},
	}, snap.Tags[0].Properties)
	require.Len(t, snap.EdgeTypes, 1)
	assert.Equal(t, "FOLLOWS", snap.EdgeTypes[0].Name)
	require.Len(t, snap.Indexes, 1)
	assert.Equal(t, "person_name_idx", snap.Indexes[0].Name)
	assert.Equal(t, "Person", snap.Indexes[0].On)
	assert.True(t, snap.Indexes[0].Unique)
}

func TestSnapshotUnknownSpaceErrors(t *testing.T) {
	c := New()
	_, err := c.Snapshot("ghost")
	assert.Error(t, err)
}

func TestSpaceSnapshotToYAMLRoundTrips(t *testing.T) {
	c := New()
	_, err := c.CreateSpace("social")
	require.NoError(t, err)
	snap, err := c.Snapshot("social")
	require.NoError(t, err)

	body, err := snap.ToYAML()
	require.NoError(t, err)

	var decoded SpaceSnapshot
	require.NoError(t, yaml.Unmarshal(body, &decoded))
	assert.Equal(t, "social", decoded.Space)
}

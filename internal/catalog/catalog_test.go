package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kkkqkx123/graphdb/internal/graph"
)

func TestCreateSpaceAssignsDenseIds(t *testing.T) {
	c := New()
	s1, err := c.CreateSpace("social")
	require.NoError(t, err)
	s2, err := c.CreateSpace("commerce")
	require.NoError(t, err)
	assert.NotEqual(t, s1, s2)

	_, err = c.CreateSpace("social")
	assert.Error(t, err, "duplicate space name must be rejected")
}

func TestCreateTagAssignsDenseIdsPerSpace(t *testing.T) {
	c := New()
	space, err := c.CreateSpace("social")
	require.NoError(t, err)

	personId, err := c.CreateTag(space, &graph.TagSchema{Name: "Person", Properties: []graph.PropertyDef{
		{Name: "name", Type: graph.TypeString},
		{Name: "age", Type: graph.TypeInt},
	}})
	require.NoError(t, err)
	assert.Equal(t, int32(1), int32(personId), "first tag in a space gets dense id 1")

	companyId, err := c.CreateTag(space, &graph.TagSchema{Name: "Company"})
	require.NoError(t, err)
	assert.NotEqual(t, personId, companyId)

	_, err = c.CreateTag(space, &graph.TagSchema{Name: "Person"})
	assert.Error(t, err, "duplicate tag name within a space must be rejected")

	schema, ok := c.TagByName(space, "Person")
	require.True(t, ok)
	assert.Equal(t, "Person", schema.Name)
	prop, ok := schema.PropertyDef("age")
	require.True(t, ok)
	assert.Equal(t, graph.TypeInt, prop.Type)
}

func TestSchemaVersioningRecordsChanges(t *testing.T) {
	c := New()
	space, err := c.CreateSpace("social")
	require.NoError(t, err)

	v0, err := c.CurrentVersion(space)
	require.NoError(t, err)

	_, err = c.CreateTag(space, &graph.TagSchema{Name: "Person"})
	require.NoError(t, err)

	v1, err := c.CurrentVersion(space)
	require.NoError(t, err)
	assert.Greater(t, v1, v0, "creating a tag must bump the space's current version")

	changes := c.Changes()
	require.NotEmpty(t, changes)
	found := false
	for _, ch := range changes {
		if ch.Target == "Person" && ch.Type == ChangeCreateTag {
			found = true
		}
	}
	assert.True(t, found, "schema_changes must record the tag creation")
}

func TestCreateIndexAndLookupByTag(t *testing.T) {
	c := New()
	space, err := c.CreateSpace("social")
	require.NoError(t, err)
	tagId, err := c.CreateTag(space, &graph.TagSchema{Name: "User", Properties: []graph.PropertyDef{{Name: "age", Type: graph.TypeInt}}})
	require.NoError(t, err)

	_, err = c.CreateIndex(space, &graph.IndexSchema{Name: "age_idx", Kind: graph.IndexKindTag, Tag: tagId, Columns: []string{"age"}})
	require.NoError(t, err)

	idxs := c.IndexesForTag(space, tagId)
	require.Len(t, idxs, 1)
	assert.Equal(t, "age_idx", idxs[0].Name)
}

func TestDropTagRemovesFromLookup(t *testing.T) {
	c := New()
	space, _ := c.CreateSpace("social")
	_, err := c.CreateTag(space, &graph.TagSchema{Name: "Person"})
	require.NoError(t, err)

	require.NoError(t, c.DropTag(space, "Person"))
	_, ok := c.TagByName(space, "Person")
	assert.False(t, ok)

	err = c.DropTag(space, "Person")
	assert.Error(t, err, "dropping an already-dropped tag must fail")
}

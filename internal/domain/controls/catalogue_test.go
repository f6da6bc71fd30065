package controls

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_LookupKnownIDs(t *testing.T) {
	cat := Default()
	for _, id := range []string{"A.5.1", "A.5.2", "A.6.1", "A.6.2", "A.7.1", "A.7.2", "A.8.1", "A.8.2", "A.8.3"} {
		ctl, ok := cat.Lookup(id)
		require.True(t, ok, "expected %s in catalogue", id)
		assert.Equal(t, id, ctl.ID)
		assert.NotEmpty(t, ctl.Name)
	}
}

func TestDefault_LookupUnknownIDs(t *testing.T) {
	cat := Default()
	for _, id := range []string{"", "Z.9.9", "A.9.9", "a.8.1", " A.8.1"} {
		_, ok := cat.Lookup(id)
		assert.False(t, ok, "did not expect %q in catalogue", id)
	}
}

func TestDefault_ListOrderAndCategories(t *testing.T) {
	list := Default().List()
	require.Len(t, list, 9)
	assert.Equal(t, "A.5.1", list[0].ID)
	assert.Equal(t, "A.8.3", list[len(list)-1].ID)

	ctl, _ := Default().Lookup("A.8.1")
	assert.Equal(t, "User endpoint devices", ctl.Name)
	assert.Equal(t, CategoryTechnological, ctl.Category)

	ctl, _ = Default().Lookup("A.6.1")
	assert.Equal(t, CategoryPeople, ctl.Category)
}

func TestList_ReturnsCopy(t *testing.T) {
	cat := Default()
	list := cat.List()
	list[0].Name = "tampered"

	again := cat.List()
	assert.Equal(t, "Policies for information security", again[0].Name)
	assert.Equal(t, list[1:], again[1:])
}

func TestNewCatalogue_FirstDuplicateWins(t *testing.T) {
	cat := NewCatalogue(
		Control{ID: "X.1", Name: "first"},
		Control{ID: "X.1", Name: "second"},
		Control{ID: "X.2", Name: "other"},
	)
	assert.Equal(t, 2, cat.Len())
	ctl, ok := cat.Lookup("X.1")
	require.True(t, ok)
	assert.Equal(t, "first", ctl.Name)
}

package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"aurotex/internal/core/entity"
	"aurotex/internal/core/id"
)

type mockCatalog struct {
	entity.Catalog
	Kind   string `db:"kind" json:"kind"`
	Hidden string `db:"-" json:"hidden"`
	NoTag  string
}

func TestExtractDBColumns(t *testing.T) {
	cols := ExtractDBColumns[mockCatalog]()

	expected := []string{"id", "deletion_mark", "version", "code", "name", "kind"}
	for _, col := range expected {
		assert.Contains(t, cols, col)
	}

	assert.NotContains(t, cols, "-")
	assert.Len(t, cols, len(expected))
}

func TestStructToMap(t *testing.T) {
	c := mockCatalog{
		Catalog: entity.Catalog{
			BaseCatalog: entity.BaseCatalog{
				BaseEntity: entity.BaseEntity{
					ID:           id.New(),
					DeletionMark: true,
					Version:      5,
				},
			},
			Code: "RM-0007",
			Name: "Polyester thread 40/2",
		},
		Kind:   "thread",
		Hidden: "should not appear",
		NoTag:  "should not appear",
	}

	m := StructToMap(c)

	assert.Equal(t, c.ID, m["id"])
	assert.Equal(t, true, m["deletion_mark"])
	assert.Equal(t, 5, m["version"])
	assert.Equal(t, "RM-0007", m["code"])
	assert.Equal(t, "Polyester thread 40/2", m["name"])
	assert.Equal(t, "thread", m["kind"])
	assert.Len(t, m, 6)
}

func TestStructToMap_Pointer(t *testing.T) {
	c := &mockCatalog{Kind: "fabric"}
	m := StructToMap(c)
	assert.Equal(t, "fabric", m["kind"])
}

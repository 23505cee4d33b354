package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"khata/internal/core/entity"
	"khata/internal/core/id"
)

type mockCatalog struct {
	entity.BaseEntity
	Code    string  `db:"code" json:"code"`
	Name    string  `db:"name" json:"name"`
	Ignored string  `db:"-" json:"ignored"`
	NoTag   string  `json:"noTag"`
	Phone   *string `db:"phone" json:"phone,omitempty"`
}

func TestExtractDBColumns(t *testing.T) {
	cols := ExtractDBColumns[mockCatalog]()

	expected := []string{"id", "firm_id", "created_at", "updated_at", "code", "name", "phone"}
	for _, col := range expected {
		assert.Contains(t, cols, col)
	}
	assert.NotContains(t, cols, "-")
	assert.NotContains(t, cols, "ignored")
	assert.NotContains(t, cols, "no_tag")
}

func TestStructToMap(t *testing.T) {
	firmID := id.New()
	cat := mockCatalog{
		BaseEntity: entity.NewBaseEntity(firmID),
		Code:       "TEST",
		Name:       "Test Name",
		Ignored:    "skip me",
	}

	m := StructToMap(cat)

	assert.Equal(t, cat.ID, m["id"])
	assert.Equal(t, firmID, m["firm_id"])
	assert.Equal(t, "TEST", m["code"])
	assert.Equal(t, "Test Name", m["name"])
	assert.Nil(t, m["phone"])
	assert.NotContains(t, m, "ignored")
}

func TestStructToMapPointerInput(t *testing.T) {
	cat := &mockCatalog{Code: "PTR"}
	m := StructToMap(cat)
	assert.Equal(t, "PTR", m["code"])
}

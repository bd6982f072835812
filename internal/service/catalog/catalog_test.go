// file: internal/service/catalog/catalog_test.go

package catalog

import (
	"RecordAegis/internal/core/domain"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDefaultCatalog(t *testing.T) *Catalog {
	t.Helper()
	c, err := New(DefaultCollections()...)
	require.NoError(t, err)
	return c
}

func TestCatalog_FieldExists(t *testing.T) {
	c := newDefaultCatalog(t)

	tests := []struct {
		recordType string
		path       string
		want       bool
	}{
		{"patients", "firstName", true},
		{"patients", "address", true},
		{"patients", "address.city", true},
		{"patients", "address.country", false},
		{"patients", "phones", true},
		{"patients", "phones.number", false}, // 数组不是容器
		{"patients", "__v", false},
		{"patients", "", false},
		{"patients", "address.city.name", false},
		{"examples", "nestedSchema.number", true},
		{"examples", "firstName", false},
		{"ghosts", "id", false},
	}
	for _, tt := range tests {
		t.Run(tt.recordType+"/"+tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, c.FieldExists(tt.recordType, tt.path))
		})
	}
}

func TestCatalog_Lookups(t *testing.T) {
	c := newDefaultCatalog(t)

	assert.Equal(t, "id", c.DefaultIdentifierField("patients"))
	assert.Equal(t, "", c.DefaultIdentifierField("ghosts"))

	typ, ok := c.FieldType("examples", "nestedSchema.number")
	require.True(t, ok)
	assert.Equal(t, domain.FieldNumber, typ)

	typ, ok = c.FieldType("patients", "dob")
	require.True(t, ok)
	assert.Equal(t, domain.FieldTime, typ)

	assert.True(t, c.IsFilterable("patients", "status"))
	assert.True(t, c.IsFilterable("patients", "address.city"))
	assert.False(t, c.IsFilterable("patients", "firstName"))

	def, ok := c.Collection("patients")
	require.True(t, ok)
	assert.Equal(t, "patients", def.Name)

	names := []string{}
	for _, d := range c.Collections() {
		names = append(names, d.Name)
	}
	assert.Equal(t, []string{"examples", "patients"}, names)
}

func TestNew_RejectsInvalidDefinitions(t *testing.T) {
	tests := []struct {
		name string
		defs []domain.CollectionDefinition
	}{
		{"缺少名称", []domain.CollectionDefinition{{Fields: []domain.FieldDefinition{{Name: "id", Type: domain.FieldString}}}}},
		{"重复集合", []domain.CollectionDefinition{
			{Name: "a", Fields: []domain.FieldDefinition{{Name: "id", Type: domain.FieldString}}},
			{Name: "a", Fields: []domain.FieldDefinition{{Name: "id", Type: domain.FieldString}}},
		}},
		{"标识字段不存在", []domain.CollectionDefinition{{Name: "a", IdentifierField: "uid", Fields: []domain.FieldDefinition{{Name: "id", Type: domain.FieldString}}}}},
		{"字段名含点", []domain.CollectionDefinition{{Name: "a", Fields: []domain.FieldDefinition{{Name: "id", Type: domain.FieldString}, {Name: "x.y", Type: domain.FieldString}}}}},
		{"非对象携带子字段", []domain.CollectionDefinition{{Name: "a", Fields: []domain.FieldDefinition{
			{Name: "id", Type: domain.FieldString},
			{Name: "tags", Type: domain.FieldArray, Fields: []domain.FieldDefinition{{Name: "x", Type: domain.FieldString}}},
		}}}},
		{"嵌套超过一层", []domain.CollectionDefinition{{Name: "a", Fields: []domain.FieldDefinition{
			{Name: "id", Type: domain.FieldString},
			{Name: "o", Type: domain.FieldObject, Fields: []domain.FieldDefinition{
				{Name: "p", Type: domain.FieldObject, Fields: []domain.FieldDefinition{{Name: "q", Type: domain.FieldString}}},
			}},
		}}}},
		{"可过滤字段不存在", []domain.CollectionDefinition{{Name: "a", Fields: []domain.FieldDefinition{{Name: "id", Type: domain.FieldString}}, Filterable: []string{"nope"}}}},
		{"对象字段不能过滤", []domain.CollectionDefinition{{Name: "a", Fields: []domain.FieldDefinition{
			{Name: "id", Type: domain.FieldString},
			{Name: "o", Type: domain.FieldObject, Fields: []domain.FieldDefinition{{Name: "p", Type: domain.FieldString}}},
		}, Filterable: []string{"o"}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.defs...)
			assert.Error(t, err)
		})
	}
}

func TestNew_DefaultsIdentifierToID(t *testing.T) {
	c, err := New(domain.CollectionDefinition{Name: "a", Fields: []domain.FieldDefinition{{Name: "id", Type: domain.FieldString}}})
	require.NoError(t, err)
	assert.Equal(t, "id", c.DefaultIdentifierField("a"))
}

func TestAgeFromDOB(t *testing.T) {
	now := time.Date(2024, time.June, 15, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, 34, ageFromDOB(map[string]any{"dob": "1990-06-15T00:00:00.000Z"}, now))
	assert.Equal(t, 33, ageFromDOB(map[string]any{"dob": "1990-06-16T00:00:00.000Z"}, now))
	assert.Equal(t, 24, ageFromDOB(map[string]any{"dob": "2000-01-01T00:00:00Z"}, now))
	assert.Nil(t, ageFromDOB(map[string]any{}, now))
	assert.Nil(t, ageFromDOB(map[string]any{"dob": "not-a-date"}, now))
}

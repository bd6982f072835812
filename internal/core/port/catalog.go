// Package port file: internal/core/port/catalog.go
package port

import "RecordAegis/internal/core/domain"

// FieldCatalog 回答 "某类记录上是否存在某字段" 的问题。
// path 可以是顶层字段，也可以是一层嵌套对象中的字段 (例如 "address.city")。
type FieldCatalog interface {
	FieldExists(recordType, path string) bool
	DefaultIdentifierField(recordType string) string
}

// CollectionCatalog 在 FieldCatalog 之上提供集合定义和字段类型。
type CollectionCatalog interface {
	FieldCatalog
	Collection(name string) (*domain.CollectionDefinition, bool)
	Collections() []domain.CollectionDefinition
	FieldType(recordType, path string) (domain.FieldType, bool)
	IsFilterable(recordType, path string) bool
}

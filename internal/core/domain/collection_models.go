// Package domain file: internal/core/domain/collection_models.go
package domain

import "time"

// TimeLayout 是 time 类型字段的存储与比较格式。固定宽度的 UTC 格式使字典序与时间顺序一致。
const TimeLayout = "2006-01-02T15:04:05.000Z"

// NormalizeTime 把 RFC 3339 文本转换为存储格式，无法解析时原样返回
func NormalizeTime(s string) string {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.UTC().Format(TimeLayout)
	}
	return s
}

// FieldType 是记录字段的存储类型
type FieldType string

const (
	FieldString FieldType = "string"
	FieldNumber FieldType = "number"
	FieldBool   FieldType = "bool"
	FieldTime   FieldType = "time"
	FieldObject FieldType = "object"
	FieldArray  FieldType = "array"
)

// FieldDefinition 定义集合中的一个字段。
// 只有 object 类型的字段可以携带子字段 (一层嵌套)。
type FieldDefinition struct {
	Name   string            `json:"name"`
	Type   FieldType         `json:"type"`
	Fields []FieldDefinition `json:"fields,omitempty"`
}

// VirtualField 在记录返回前按已有字段计算出的附加字段
type VirtualField struct {
	Name    string                                        `json:"name"`
	Compute func(record map[string]any, now time.Time) any `json:"-"`
}

// CollectionDefinition 定义了一个可查询的记录集合
type CollectionDefinition struct {
	Name            string            `json:"name"`
	IdentifierField string            `json:"identifier_field"`
	Fields          []FieldDefinition `json:"fields"`
	Filterable      []string          `json:"filterable"`
	Virtuals        []VirtualField    `json:"virtuals,omitempty"`
}

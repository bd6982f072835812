// Package catalog file: internal/service/catalog/collections.go
package catalog

import (
	"RecordAegis/internal/core/domain"
	"time"
)

// PatientStatuses 是 patients.status 的合法取值，第一个为默认值
var PatientStatuses = []string{"active", "inactive"}

// DefaultCollections 返回内置的集合定义
func DefaultCollections() []domain.CollectionDefinition {
	return []domain.CollectionDefinition{
		{
			Name:            "patients",
			IdentifierField: "id",
			Fields: []domain.FieldDefinition{
				{Name: "id", Type: domain.FieldString},
				{Name: "firstName", Type: domain.FieldString},
				{Name: "middleName", Type: domain.FieldString},
				{Name: "lastName", Type: domain.FieldString},
				{Name: "phones", Type: domain.FieldArray},
				{Name: "email", Type: domain.FieldString},
				{Name: "dob", Type: domain.FieldTime},
				{Name: "gender", Type: domain.FieldString},
				{Name: "status", Type: domain.FieldString},
				{Name: "termsAccepted", Type: domain.FieldBool},
				{Name: "address", Type: domain.FieldObject, Fields: []domain.FieldDefinition{
					{Name: "line1", Type: domain.FieldString},
					{Name: "line2", Type: domain.FieldString},
					{Name: "city", Type: domain.FieldString},
					{Name: "state", Type: domain.FieldString},
					{Name: "zip", Type: domain.FieldString},
				}},
				{Name: "createdAt", Type: domain.FieldTime},
				{Name: "updatedAt", Type: domain.FieldTime},
			},
			Filterable: []string{"status", "gender", "email", "lastName", "termsAccepted", "address.city", "address.state"},
			Virtuals:   []domain.VirtualField{{Name: "age", Compute: ageFromDOB}},
		},
		{
			Name:            "examples",
			IdentifierField: "id",
			Fields: []domain.FieldDefinition{
				{Name: "id", Type: domain.FieldString},
				{Name: "nestedSchema", Type: domain.FieldObject, Fields: []domain.FieldDefinition{
					{Name: "number", Type: domain.FieldNumber},
				}},
				{Name: "uniqueField", Type: domain.FieldString},
				{Name: "createdAt", Type: domain.FieldTime},
			},
			Filterable: []string{"uniqueField"},
		},
	}
}

// ageFromDOB 按 dob 计算周岁，dob 缺失或无法解析时返回 nil
func ageFromDOB(record map[string]any, now time.Time) any {
	raw, ok := record["dob"].(string)
	if !ok || raw == "" {
		return nil
	}
	dob, err := time.Parse(domain.TimeLayout, raw)
	if err != nil {
		if dob, err = time.Parse(time.RFC3339Nano, raw); err != nil {
			return nil
		}
	}
	now = now.UTC()
	age := now.Year() - dob.Year()
	if now.Month() < dob.Month() || (now.Month() == dob.Month() && now.Day() < dob.Day()) {
		age--
	}
	if age < 0 {
		return 0
	}
	return age
}

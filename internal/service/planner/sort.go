// Package planner file: internal/service/planner/sort.go
package planner

import (
	"RecordAegis/internal/core/domain"
	"RecordAegis/internal/core/port"
	"strings"
)

const (
	createdAtField    = "createdAt"
	fallbackIDField   = "id"
	descendingPrefix  = "-"
	sortTermSeparator = ","
)

// BuildSortPlan 解析逗号分隔的排序串。
// 不存在的字段被静默丢弃；保留原始顺序与重复项；没有有效项时退回默认排序。该函数不会失败。
func BuildSortPlan(raw, recordType string, catalog port.FieldCatalog) domain.SortPlan {
	var plan domain.SortPlan
	for _, token := range strings.Split(raw, sortTermSeparator) {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		term := domain.SortTerm{Field: token, Direction: domain.Ascending}
		if strings.HasPrefix(token, descendingPrefix) {
			term = domain.SortTerm{Field: token[len(descendingPrefix):], Direction: domain.Descending}
		}
		if term.Field == "" || !catalog.FieldExists(recordType, term.Field) {
			continue
		}
		plan = append(plan, term)
	}
	if len(plan) == 0 {
		return defaultSortPlan(recordType, catalog)
	}
	return plan
}

// defaultSortPlan 优先按 createdAt 升序，否则按标识字段升序
func defaultSortPlan(recordType string, catalog port.FieldCatalog) domain.SortPlan {
	if catalog.FieldExists(recordType, createdAtField) {
		return domain.SortPlan{{Field: createdAtField, Direction: domain.Ascending}}
	}
	idField := catalog.DefaultIdentifierField(recordType)
	if idField == "" {
		idField = fallbackIDField
	}
	return domain.SortPlan{{Field: idField, Direction: domain.Ascending}}
}

// Package planner file: internal/service/planner/count.go
package planner

import "RecordAegis/internal/core/domain"

// ApplyCountOverride 在请求计数时把计划改写为只计数、不分页
func ApplyCountOverride(plan domain.QueryPlan, params domain.RequestParams) domain.QueryPlan {
	if !params.Count {
		return plan
	}
	plan.CountOnly = true
	plan.Pagination = domain.PaginationPlan{Kind: domain.PaginationNone}
	return plan
}

// Package planner file: internal/service/planner/composer.go
package planner

import (
	"RecordAegis/internal/core/domain"
	"RecordAegis/internal/core/port"
)

// Compose 依次执行 排序 -> 分页 -> 投影 -> 计数开关，得到完整的查询计划。
// 分页依赖主排序字段，所以排序必须先确定。计数请求不会调用分页规划。
func Compose(
	filter domain.FilterCriteria,
	params domain.RequestParams,
	recordType string,
	catalog port.FieldCatalog,
	cfg Config,
) (domain.QueryPlan, error) {
	sort := BuildSortPlan(params.Sort, recordType, catalog)

	pagination := domain.PaginationPlan{Kind: domain.PaginationNone}
	if !params.Count {
		var err error
		pagination, err = BuildPaginationPlan(params, sort, cfg)
		if err != nil {
			return domain.QueryPlan{}, err
		}
	}

	plan := domain.QueryPlan{
		Filter:     cloneFilter(filter),
		Sort:       sort,
		Pagination: pagination,
		Projection: BuildProjectionPlan(),
	}
	return ApplyCountOverride(plan, params), nil
}

func cloneFilter(filter domain.FilterCriteria) domain.FilterCriteria {
	out := make(domain.FilterCriteria, len(filter))
	for k, v := range filter {
		out[k] = v
	}
	return out
}

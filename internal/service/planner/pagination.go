// Package planner file: internal/service/planner/pagination.go
package planner

import (
	"RecordAegis/internal/core/domain"
	"RecordAegis/internal/core/port"
	"fmt"
)

// BuildPaginationPlan 根据排序计划和原始分页参数生成分页计划。
// pageLimit 超过上限时返回 *port.ValidationError，不做静默截断。
// 同时提供 pageRefItem 与 offset 时，pageRefItem 优先，offset 被忽略。
func BuildPaginationPlan(params domain.RequestParams, sort domain.SortPlan, cfg Config) (domain.PaginationPlan, error) {
	cfg = cfg.normalized()

	limit, err := resolveLimit(params.PageLimit, cfg)
	if err != nil {
		return domain.PaginationPlan{}, err
	}

	if params.PageRefItem == nil {
		if cfg.AllowUnbounded && params.Offset == nil && params.PageLimit == nil {
			return domain.PaginationPlan{Kind: domain.PaginationNone}, nil
		}
		skip := 0
		if params.Offset != nil && *params.Offset > 0 {
			skip = *params.Offset
		}
		return domain.PaginationPlan{Kind: domain.PaginationOffset, Skip: skip, Limit: limit}, nil
	}

	primary, ok := sort.Primary()
	if !ok {
		// 排序计划按约定不会为空；万一为空则无法确定游标字段，退回首页
		return domain.PaginationPlan{Kind: domain.PaginationOffset, Limit: limit}, nil
	}
	cmp := domain.GreaterThan
	if primary.Direction == domain.Descending {
		cmp = domain.LessThan
	}
	return domain.PaginationPlan{
		Kind:            domain.PaginationKeyset,
		Limit:           limit,
		ReferenceValue:  params.PageRefItem,
		ComparisonField: primary.Field,
		Comparison:      cmp,
	}, nil
}

func resolveLimit(pageLimit *int, cfg Config) (int, error) {
	if pageLimit == nil || *pageLimit <= 0 {
		return cfg.DefaultPageLimit, nil
	}
	if *pageLimit > cfg.MaxPageLimit {
		return 0, &port.ValidationError{
			Param:  "pageLimit",
			Reason: fmt.Sprintf("不能超过 %d (收到 %d)", cfg.MaxPageLimit, *pageLimit),
		}
	}
	return *pageLimit, nil
}

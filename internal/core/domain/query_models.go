// Package domain file: internal/core/domain/query_models.go
package domain

// SortDirection 表示单个排序项的方向
type SortDirection int

const (
	Ascending SortDirection = iota
	Descending
)

func (d SortDirection) String() string {
	if d == Descending {
		return "desc"
	}
	return "asc"
}

func (d SortDirection) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

// SortTerm 是排序计划中的一项 (字段, 方向)
type SortTerm struct {
	Field     string        `json:"field"`
	Direction SortDirection `json:"direction"`
}

// SortPlan 是有序的排序项列表，第一项为主排序键，后续各项依次作为并列时的决胜键。
type SortPlan []SortTerm

// Primary 返回主排序项。计划为空时 ok 为 false。
func (p SortPlan) Primary() (SortTerm, bool) {
	if len(p) == 0 {
		return SortTerm{}, false
	}
	return p[0], true
}

// Comparison 是游标分页时相对参考值的比较方向
type Comparison int

const (
	GreaterThan Comparison = iota
	LessThan
)

func (c Comparison) String() string {
	if c == LessThan {
		return "lt"
	}
	return "gt"
}

func (c Comparison) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

// PaginationKind 区分分页策略
type PaginationKind int

const (
	PaginationNone PaginationKind = iota
	PaginationOffset
	PaginationKeyset
)

func (k PaginationKind) String() string {
	switch k {
	case PaginationOffset:
		return "offset"
	case PaginationKeyset:
		return "keyset"
	default:
		return "none"
	}
}

func (k PaginationKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// PaginationPlan 描述一次查询的分页方式。
// Offset 使用 Skip/Limit；Keyset 使用 ReferenceValue/ComparisonField/Comparison/Limit；None 不限制结果集。
type PaginationPlan struct {
	Kind            PaginationKind `json:"kind"`
	Skip            int            `json:"skip,omitempty"`
	Limit           int            `json:"limit,omitempty"`
	ReferenceValue  any            `json:"referenceValue,omitempty"`
	ComparisonField string         `json:"comparisonField,omitempty"`
	Comparison      Comparison     `json:"comparison,omitempty"`
}

// ProjectionPlan 列出需要从结果记录中剔除的字段
type ProjectionPlan struct {
	Exclude []string `json:"exclude"`
}

// Excludes 判断字段是否被投影剔除
func (p ProjectionPlan) Excludes(field string) bool {
	for _, f := range p.Exclude {
		if f == field {
			return true
		}
	}
	return false
}

// FilterCriteria 是字段到等值条件的映射，由上游构建。
type FilterCriteria map[string]any

// QueryPlan 是一次请求的完整查询计划。每个请求新建一份，构建后不再修改，由执行器消费一次。
type QueryPlan struct {
	Filter     FilterCriteria `json:"filter"`
	Sort       SortPlan       `json:"sort"`
	Pagination PaginationPlan `json:"pagination"`
	Projection ProjectionPlan `json:"projection"`
	CountOnly  bool           `json:"countOnly"`
}

// RequestParams 是客户端提交的原始排序/分页/计数参数。
// 指针字段为 nil 表示客户端未提供；PageRefItem 为 nil 表示未提供游标。
type RequestParams struct {
	Sort        string
	Offset      *int
	PageLimit   *int
	PageRefItem any
	Count       bool
}

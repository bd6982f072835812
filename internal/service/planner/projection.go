// Package planner file: internal/service/planner/projection.go
package planner

import "RecordAegis/internal/core/domain"

// VersionField 是存储层内部使用的修订计数字段
const VersionField = "__v"

// BuildProjectionPlan 返回需要从结果中剔除的内部字段
func BuildProjectionPlan() domain.ProjectionPlan {
	return domain.ProjectionPlan{Exclude: []string{VersionField}}
}

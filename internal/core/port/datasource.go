// Package port file: internal/core/port/datasource.go
package port

import (
	"RecordAegis/internal/core/domain"
	"context"
	"errors"
	"fmt"
)

// Standard errors
var (
	ErrCollectionNotFound = errors.New("指定的集合未找到")
	ErrRecordNotFound     = errors.New("指定的记录未找到")
	ErrFieldNotFound      = errors.New("指定的字段不存在")
)

// ValidationError 表示客户端输入被拒绝。Param 为出错的参数名。
type ValidationError struct {
	Param  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("参数 '%s' 无效: %s", e.Param, e.Reason)
}

// QueryResult 是执行查询计划的结果。
// CountOnly 为 true 时只有 Count 有意义；否则 Records 为当前页，Total 为忽略分页后的过滤总数。
type QueryResult struct {
	Records   []map[string]any
	Total     int64
	Count     int64
	CountOnly bool
}

// Executor 执行查询计划
type Executor interface {
	Execute(ctx context.Context, collection string, plan domain.QueryPlan) (*QueryResult, error)
}

// RecordStore 是服务层依赖的存储能力
type RecordStore interface {
	Executor

	// FindByID 按标识字段获取单条记录，不存在时返回 ErrRecordNotFound
	FindByID(ctx context.Context, collection, id string, projection domain.ProjectionPlan) (map[string]any, error)

	// HealthCheck 检查存储的健康状况
	HealthCheck(ctx context.Context) error
}

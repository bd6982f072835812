// Package service file: internal/service/record_service.go
package service

import (
	"RecordAegis/internal/aegobserve"
	"RecordAegis/internal/core/domain"
	"RecordAegis/internal/core/port"
	"RecordAegis/internal/service/planner"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

// LimitsProvider 在每次请求时提供当前的分页配置，配置热加载后立即生效
type LimitsProvider interface {
	PlannerConfig() planner.Config
}

// StaticLimits 是固定不变的分页配置
type StaticLimits planner.Config

// PlannerConfig 实现 LimitsProvider
func (l StaticLimits) PlannerConfig() planner.Config { return planner.Config(l) }

// ListRequest 是一次列表查询的输入。Filters 为原始查询参数，只有可过滤字段会生效。
type ListRequest struct {
	Collection string
	Params     domain.RequestParams
	Filters    map[string]string
}

// ListResult 是列表查询的输出
type ListResult struct {
	Collection string
	Records    []map[string]any
	Total      int64
	Count      int64
	CountOnly  bool
	Plan       domain.QueryPlan
}

// RecordService 负责把请求参数交给规划器、执行计划并补齐虚拟字段
type RecordService struct {
	catalog port.CollectionCatalog
	store   port.RecordStore
	limits  LimitsProvider
	log     *zap.Logger
	now     func() time.Time
}

// NewRecordService 创建 RecordService
func NewRecordService(catalog port.CollectionCatalog, store port.RecordStore, limits LimitsProvider, logger *zap.Logger) (*RecordService, error) {
	if catalog == nil || store == nil {
		return nil, errors.New("RecordService 初始化失败: catalog 与 store 不能为 nil")
	}
	if limits == nil {
		limits = StaticLimits{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RecordService{catalog: catalog, store: store, limits: limits, log: logger, now: time.Now}, nil
}

// List 构建查询计划并执行
func (s *RecordService) List(ctx context.Context, req ListRequest) (*ListResult, error) {
	if _, ok := s.catalog.Collection(req.Collection); !ok {
		return nil, port.ErrCollectionNotFound
	}

	filter, err := s.buildFilter(req.Collection, req.Filters)
	if err != nil {
		s.reject(req.Collection, err)
		return nil, err
	}

	params := req.Params
	if params.PageRefItem != nil && !params.Count {
		// 游标值按主排序字段的类型转换，才能与存储中的值正确比较
		primary, _ := planner.BuildSortPlan(params.Sort, req.Collection, s.catalog).Primary()
		typ, _ := s.catalog.FieldType(req.Collection, primary.Field)
		if params.PageRefItem, err = coerceValue(typ, params.PageRefItem, "pageRefItem"); err != nil {
			s.reject(req.Collection, err)
			return nil, err
		}
	}

	plan, err := planner.Compose(filter, params, req.Collection, s.catalog, s.limits.PlannerConfig())
	if err != nil {
		s.reject(req.Collection, err)
		return nil, err
	}
	mode := plan.Pagination.Kind.String()
	if plan.CountOnly {
		mode = "count"
	}
	aegobserve.PlansBuilt.WithLabelValues(req.Collection, mode).Inc()

	res, err := s.store.Execute(ctx, req.Collection, plan)
	if err != nil {
		return nil, fmt.Errorf("执行集合 '%s' 的查询失败: %w", req.Collection, err)
	}

	out := &ListResult{
		Collection: req.Collection,
		Records:    res.Records,
		Total:      res.Total,
		Count:      res.Count,
		CountOnly:  res.CountOnly,
		Plan:       plan,
	}
	if !out.CountOnly {
		s.applyVirtuals(req.Collection, out.Records)
	}
	return out, nil
}

// Get 按标识获取单条记录。field 非空时只返回该字段的值，以字段路径的最后一段为键。
func (s *RecordService) Get(ctx context.Context, collection, id, field string) (map[string]any, error) {
	if _, ok := s.catalog.Collection(collection); !ok {
		return nil, port.ErrCollectionNotFound
	}
	if field != "" && !s.catalog.FieldExists(collection, field) {
		return nil, fmt.Errorf("%w: '%s'", port.ErrFieldNotFound, field)
	}

	record, err := s.store.FindByID(ctx, collection, id, planner.BuildProjectionPlan())
	if err != nil {
		return nil, err
	}
	s.applyVirtuals(collection, []map[string]any{record})
	if field == "" {
		return record, nil
	}
	key, value := nestedValue(record, field)
	return map[string]any{key: value}, nil
}

// Collections 返回所有集合定义
func (s *RecordService) Collections() []domain.CollectionDefinition {
	return s.catalog.Collections()
}

// HealthCheck 检查存储是否可用
func (s *RecordService) HealthCheck(ctx context.Context) error {
	return s.store.HealthCheck(ctx)
}

// buildFilter 从原始查询参数中取出可过滤字段，并按字段类型转换取值
func (s *RecordService) buildFilter(collection string, raw map[string]string) (domain.FilterCriteria, error) {
	filter := domain.FilterCriteria{}
	for field, value := range raw {
		if !s.catalog.IsFilterable(collection, field) {
			continue
		}
		typ, _ := s.catalog.FieldType(collection, field)
		v, err := coerceValue(typ, value, field)
		if err != nil {
			return nil, err
		}
		filter[field] = v
	}
	return filter, nil
}

func (s *RecordService) applyVirtuals(collection string, records []map[string]any) {
	def, ok := s.catalog.Collection(collection)
	if !ok || len(def.Virtuals) == 0 {
		return
	}
	now := s.now()
	for _, rec := range records {
		for _, v := range def.Virtuals {
			rec[v.Name] = v.Compute(rec, now)
		}
	}
}

func (s *RecordService) reject(collection string, err error) {
	var ve *port.ValidationError
	if errors.As(err, &ve) {
		aegobserve.PlansRejected.WithLabelValues(collection, ve.Param).Inc()
		s.log.Debug("[RecordService] 请求参数被拒绝", zap.String("collection", collection), zap.Error(err))
	}
}

// nestedValue 沿点分路径取值，返回最后一段字段名与取到的值
func nestedValue(record map[string]any, path string) (string, any) {
	keys := strings.Split(path, ".")
	var cur any = record
	for _, k := range keys {
		m, ok := cur.(map[string]any)
		if !ok {
			return keys[len(keys)-1], nil
		}
		cur = m[k]
	}
	return keys[len(keys)-1], cur
}

// file: internal/adapter/datasource/sqlite/query.go
package sqlite

import (
	"RecordAegis/internal/core/domain"
	"RecordAegis/internal/core/port"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Execute 实现 port.Executor。
// 只计数的计划执行一次 COUNT；否则并发执行当前页查询与过滤总数查询。
func (s *Store) Execute(ctx context.Context, collection string, plan domain.QueryPlan) (*port.QueryResult, error) {
	def, ok := s.catalog.Collection(collection)
	if !ok {
		return nil, port.ErrCollectionNotFound
	}
	if err := s.validatePlanFields(collection, plan); err != nil {
		return nil, err
	}

	if plan.CountOnly {
		count, err := s.count(ctx, collection, plan.Filter)
		if err != nil {
			return nil, err
		}
		return &port.QueryResult{Count: count, CountOnly: true}, nil
	}

	physical, err := s.physicalColumns(ctx, collection)
	if err != nil {
		return nil, fmt.Errorf("读取集合 '%s' 的列信息失败: %w", collection, err)
	}
	columns := selectColumns(physical, plan.Projection)

	var (
		records []map[string]any
		total   int64
	)
	g, queryCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		n, errCount := s.count(queryCtx, collection, plan.Filter)
		if errCount != nil {
			return errCount
		}
		total = n
		return nil
	})

	g.Go(func() error {
		query, args, errBuild := buildSelectSQL(collection, columns, plan)
		if errBuild != nil {
			return fmt.Errorf("构建查询语句失败: %w", errBuild)
		}
		rows, errExec := s.db.QueryContext(queryCtx, query, args...)
		if errExec != nil {
			return fmt.Errorf("查询集合 '%s' 失败: %w", collection, errExec)
		}
		defer rows.Close()
		page, errScan := s.scanRecords(rows, def)
		if errScan != nil {
			return fmt.Errorf("读取集合 '%s' 的结果失败: %w", collection, errScan)
		}
		records = page
		return nil
	})

	if err := g.Wait(); err != nil {
		s.log.Error("[RecordStore] 执行查询计划失败", zap.String("collection", collection), zap.Error(err))
		return nil, err
	}

	s.log.Debug("[RecordStore] 查询计划已执行",
		zap.String("collection", collection),
		zap.String("pagination", plan.Pagination.Kind.String()),
		zap.Int("returned", len(records)),
		zap.Int64("total", total),
	)
	return &port.QueryResult{Records: records, Total: total}, nil
}

// FindByID 实现 port.RecordStore
func (s *Store) FindByID(ctx context.Context, collection, id string, projection domain.ProjectionPlan) (map[string]any, error) {
	def, ok := s.catalog.Collection(collection)
	if !ok {
		return nil, port.ErrCollectionNotFound
	}
	physical, err := s.physicalColumns(ctx, collection)
	if err != nil {
		return nil, fmt.Errorf("读取集合 '%s' 的列信息失败: %w", collection, err)
	}
	plan := domain.QueryPlan{
		Filter:     domain.FilterCriteria{def.IdentifierField: id},
		Pagination: domain.PaginationPlan{Kind: domain.PaginationOffset, Limit: 1},
		Projection: projection,
	}
	query, args, err := buildSelectSQL(collection, selectColumns(physical, projection), plan)
	if err != nil {
		return nil, fmt.Errorf("构建查询语句失败: %w", err)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("查询集合 '%s' 记录 '%s' 失败: %w", collection, id, err)
	}
	defer rows.Close()

	records, err := s.scanRecords(rows, def)
	if err != nil {
		return nil, fmt.Errorf("读取集合 '%s' 的结果失败: %w", collection, err)
	}
	if len(records) == 0 {
		return nil, port.ErrRecordNotFound
	}
	return records[0], nil
}

func (s *Store) count(ctx context.Context, collection string, filter domain.FilterCriteria) (int64, error) {
	query, args, err := buildCountSQL(collection, filter)
	if err != nil {
		return 0, fmt.Errorf("构建COUNT查询失败: %w", err)
	}
	var n int64
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("统计集合 '%s' 失败: %w", collection, err)
	}
	return n, nil
}

// validatePlanFields 确认计划中出现的字段都在目录中，SQL 中的标识符只来自目录。
func (s *Store) validatePlanFields(collection string, plan domain.QueryPlan) error {
	check := func(field string) error {
		if !s.catalog.FieldExists(collection, field) {
			return fmt.Errorf("%w: 集合 '%s' 没有字段 '%s'", port.ErrFieldNotFound, collection, field)
		}
		return nil
	}
	for f := range plan.Filter {
		if err := check(f); err != nil {
			return err
		}
	}
	for _, t := range plan.Sort {
		if err := check(t.Field); err != nil {
			return err
		}
	}
	if plan.Pagination.Kind == domain.PaginationKeyset {
		return check(plan.Pagination.ComparisonField)
	}
	return nil
}

// scanRecords 把结果行解码为记录，按字段类型还原 JSON、布尔值
func (s *Store) scanRecords(rows *sql.Rows, def *domain.CollectionDefinition) ([]map[string]any, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	records := make([]map[string]any, 0)
	for rows.Next() {
		scanDest := make([]any, len(columns))
		scanDestPtrs := make([]any, len(columns))
		for i := range scanDest {
			scanDestPtrs[i] = &scanDest[i]
		}
		if err := rows.Scan(scanDestPtrs...); err != nil {
			return nil, err
		}
		record := make(map[string]any, len(columns))
		for i, col := range columns {
			typ, _ := s.catalog.FieldType(def.Name, col)
			v, errDecode := decodeValue(typ, scanDest[i])
			if errDecode != nil {
				s.log.Warn("[RecordStore] 字段解码失败，按原始文本返回",
					zap.String("collection", def.Name), zap.String("field", col), zap.Error(errDecode))
			}
			record[col] = v
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

func decodeValue(typ domain.FieldType, raw any) (any, error) {
	if b, ok := raw.([]byte); ok {
		raw = string(b)
	}
	if raw == nil {
		return nil, nil
	}
	switch typ {
	case domain.FieldObject, domain.FieldArray:
		text, ok := raw.(string)
		if !ok {
			return raw, nil
		}
		var v any
		if err := json.Unmarshal([]byte(text), &v); err != nil {
			return text, err
		}
		return v, nil
	case domain.FieldBool:
		switch b := raw.(type) {
		case int64:
			return b != 0, nil
		case bool:
			return b, nil
		}
		return raw, errors.New("非布尔值")
	case domain.FieldNumber:
		if n, ok := raw.(int64); ok {
			return float64(n), nil
		}
	}
	return raw, nil
}

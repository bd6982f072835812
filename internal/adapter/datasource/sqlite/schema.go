// file: internal/adapter/datasource/sqlite/schema.go
package sqlite

import (
	"RecordAegis/internal/core/domain"
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// versionColumn 是内部修订计数列，查询时由投影剔除
const versionColumn = "__v"

// columnType 返回字段类型对应的 SQLite 列类型。object/array 以 JSON 文本存储，time 以固定格式文本存储。
func columnType(t domain.FieldType) string {
	switch t {
	case domain.FieldNumber:
		return "REAL"
	case domain.FieldBool:
		return "INTEGER"
	default:
		return "TEXT"
	}
}

// buildCreateTableSQL 为集合生成建表语句
func buildCreateTableSQL(def domain.CollectionDefinition) string {
	cols := make([]string, 0, len(def.Fields)+1)
	for _, f := range def.Fields {
		col := quoteIdent(f.Name) + " " + columnType(f.Type)
		if f.Name == def.IdentifierField {
			col += " PRIMARY KEY"
		}
		cols = append(cols, col)
	}
	cols = append(cols, quoteIdent(versionColumn)+" INTEGER NOT NULL DEFAULT 0")
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", quoteIdent(def.Name), strings.Join(cols, ", "))
}

// EnsureCollections 为目录中的每个集合建表 (已存在则跳过)，并为 createdAt 建索引。
func (s *Store) EnsureCollections(ctx context.Context) error {
	for _, def := range s.catalog.Collections() {
		if _, err := s.db.ExecContext(ctx, buildCreateTableSQL(def)); err != nil {
			return fmt.Errorf("创建集合 '%s' 的表失败: %w", def.Name, err)
		}
		if s.catalog.FieldExists(def.Name, "createdAt") {
			idx := fmt.Sprintf("CREATE INDEX IF NOT EXISTS %s ON %s (%s)",
				quoteIdent("idx_"+def.Name+"_createdAt"), quoteIdent(def.Name), quoteIdent("createdAt"))
			if _, err := s.db.ExecContext(ctx, idx); err != nil {
				s.log.Warn("[RecordStore] 创建索引失败", zap.String("collection", def.Name), zap.Error(err))
			}
		}
		s.columns.Remove(def.Name)
		s.log.Info("[RecordStore] 集合已就绪", zap.String("collection", def.Name))
	}
	return nil
}

// physicalColumns 返回表的物理列，优先读缓存
func (s *Store) physicalColumns(ctx context.Context, table string) ([]string, error) {
	if cols, ok := s.columns.Get(table); ok {
		return cols, nil
	}
	cols, err := listColumns(ctx, s.db, table, s.log)
	if err != nil {
		return nil, err
	}
	if len(cols) == 0 {
		return nil, fmt.Errorf("表 '%s' 不存在或没有任何列", table)
	}
	s.columns.Add(table, cols)
	return cols, nil
}

// selectColumns 从物理列中去掉被投影剔除的列
func selectColumns(physical []string, projection domain.ProjectionPlan) []string {
	out := make([]string, 0, len(physical))
	for _, c := range physical {
		if projection.Excludes(c) {
			continue
		}
		out = append(out, c)
	}
	return out
}

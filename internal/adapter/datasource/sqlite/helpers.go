// Package sqlite file: internal/adapter/datasource/sqlite/helpers.go
package sqlite

import (
	"RecordAegis/internal/core/domain"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"
)

// quoteIdent 把标识符包在双引号中，内部的双引号按 SQL 规则加倍
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// quoteLiteral 生成单引号字符串字面量
func quoteLiteral(s string) string {
	return `'` + strings.ReplaceAll(s, `'`, `''`) + `'`
}

// fieldExpr 把字段路径翻译为 SQL 表达式。嵌套路径 "a.b" 存在 JSON 列 a 中，用 json_extract 取值。
func fieldExpr(path string) string {
	top, sub, nested := strings.Cut(path, ".")
	if !nested {
		return quoteIdent(path)
	}
	return fmt.Sprintf("json_extract(%s, %s)", quoteIdent(top), quoteLiteral("$."+sub))
}

// buildSelectSQL 根据查询计划构建数据查询语句
func buildSelectSQL(table string, columns []string, plan domain.QueryPlan) (string, []any, error) {
	if table == "" || len(columns) == 0 {
		return "", nil, errors.New("表名和查询字段不能为空 (buildSelectSQL)")
	}

	quoted := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = quoteIdent(c)
	}

	var keyset *domain.PaginationPlan
	if plan.Pagination.Kind == domain.PaginationKeyset {
		keyset = &plan.Pagination
	}
	whereClause, args := buildWhereClause(plan.Filter, keyset)

	var sb strings.Builder
	sb.WriteString("SELECT ")
	sb.WriteString(strings.Join(quoted, ", "))
	sb.WriteString(" FROM ")
	sb.WriteString(quoteIdent(table))
	if whereClause != "" {
		sb.WriteString(" ")
		sb.WriteString(whereClause)
	}
	if orderClause := buildOrderClause(plan.Sort); orderClause != "" {
		sb.WriteString(" ")
		sb.WriteString(orderClause)
	}

	switch plan.Pagination.Kind {
	case domain.PaginationOffset:
		sb.WriteString(" LIMIT ? OFFSET ?")
		args = append(args, plan.Pagination.Limit, plan.Pagination.Skip)
	case domain.PaginationKeyset:
		sb.WriteString(" LIMIT ?")
		args = append(args, plan.Pagination.Limit)
	}
	return sb.String(), args, nil
}

// buildCountSQL 构建只带过滤条件的计数语句，忽略排序与分页
func buildCountSQL(table string, filter domain.FilterCriteria) (string, []any, error) {
	if table == "" {
		return "", nil, errors.New("表名不能为空 (buildCountSQL)")
	}
	whereClause, args := buildWhereClause(filter, nil)
	var sb strings.Builder
	sb.WriteString("SELECT COUNT(*) FROM ")
	sb.WriteString(quoteIdent(table))
	if whereClause != "" {
		sb.WriteString(" ")
		sb.WriteString(whereClause)
	}
	return sb.String(), args, nil
}

// buildWhereClause 把等值过滤条件 (按字段名排序以保证语句稳定) 与可选的游标比较条件用 AND 连接。
// 游标只约束主排序字段，主排序字段取值与参考值相同的记录不会出现在下一页。
func buildWhereClause(filter domain.FilterCriteria, keyset *domain.PaginationPlan) (string, []any) {
	fields := make([]string, 0, len(filter))
	for f := range filter {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	conditions := make([]string, 0, len(fields)+1)
	args := make([]any, 0, len(fields)+1)
	for _, f := range fields {
		v := filter[f]
		if v == nil {
			conditions = append(conditions, fieldExpr(f)+" IS NULL")
			continue
		}
		conditions = append(conditions, fieldExpr(f)+" = ?")
		args = append(args, v)
	}

	if keyset != nil {
		op := ">"
		if keyset.Comparison == domain.LessThan {
			op = "<"
		}
		conditions = append(conditions, fmt.Sprintf("%s %s ?", fieldExpr(keyset.ComparisonField), op))
		args = append(args, keyset.ReferenceValue)
	}

	if len(conditions) == 0 {
		return "", args
	}
	return "WHERE " + strings.Join(conditions, " AND "), args
}

// buildOrderClause 按排序计划的顺序生成 ORDER BY
func buildOrderClause(sortPlan domain.SortPlan) string {
	if len(sortPlan) == 0 {
		return ""
	}
	terms := make([]string, len(sortPlan))
	for i, t := range sortPlan {
		dir := "ASC"
		if t.Direction == domain.Descending {
			dir = "DESC"
		}
		terms[i] = fieldExpr(t.Field) + " " + dir
	}
	return "ORDER BY " + strings.Join(terms, ", ")
}

// buildInsertSQL 安全地构建 INSERT 语句
func buildInsertSQL(table string, data map[string]any) (string, []any, error) {
	if len(data) == 0 {
		return "", nil, errors.New("INSERT 操作需要提供数据")
	}
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	cols := make([]string, 0, len(keys))
	placeholders := make([]string, 0, len(keys))
	args := make([]any, 0, len(keys))
	for _, k := range keys {
		cols = append(cols, quoteIdent(k))
		placeholders = append(placeholders, "?")
		args = append(args, data[k])
	}
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", quoteIdent(table), strings.Join(cols, ", "), strings.Join(placeholders, ", "))
	return query, args, nil
}

// listColumns 返回指定表的所有物理列名 (按表定义顺序)
func listColumns(ctx context.Context, db *sql.DB, table string, logger *zap.Logger) ([]string, error) {
	rows, err := db.QueryContext(ctx, fmt.Sprintf(`PRAGMA table_info(%s)`, quoteIdent(table)))
	if err != nil {
		return nil, fmt.Errorf("PRAGMA table_info for table %q 失败: %w", table, err)
	}
	defer rows.Close()
	var cols []string
	for rows.Next() {
		var (
			cid       int
			colName   string
			colType   string
			notnull   int
			dfltValue sql.NullString
			pk        int
		)
		if err := rows.Scan(&cid, &colName, &colType, &notnull, &dfltValue, &pk); err != nil {
			logger.Warn("[RecordStore] 扫描列信息失败", zap.String("table", table), zap.Error(err))
			continue
		}
		cols = append(cols, colName)
	}
	return cols, rows.Err()
}

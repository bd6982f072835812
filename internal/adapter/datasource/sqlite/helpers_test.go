// file: internal/adapter/datasource/sqlite/helpers_test.go

package sqlite

import (
	"RecordAegis/internal/core/domain"
	"reflect"
	"testing"
)

// -----------------------------------------------------------------------------
// buildSelectSQL / buildCountSQL
// -----------------------------------------------------------------------------

func TestBuildSelectSQL_Offset(t *testing.T) {
	plan := domain.QueryPlan{
		Filter: domain.FilterCriteria{"status": "active"},
		Sort: domain.SortPlan{
			{Field: "lastName", Direction: domain.Ascending},
			{Field: "createdAt", Direction: domain.Descending},
		},
		Pagination: domain.PaginationPlan{Kind: domain.PaginationOffset, Skip: 20, Limit: 10},
	}
	sqlStr, args, err := buildSelectSQL("patients", []string{"id", "lastName"}, plan)
	if err != nil {
		t.Fatalf("buildSelectSQL 返回错误: %v", err)
	}

	wantSQL := `SELECT "id", "lastName" FROM "patients" WHERE "status" = ? ORDER BY "lastName" ASC, "createdAt" DESC LIMIT ? OFFSET ?`
	if sqlStr != wantSQL {
		t.Errorf("SQL 不匹配\n  got : %s\n  want: %s", sqlStr, wantSQL)
	}
	wantArgs := []any{"active", 10, 20}
	if !reflect.DeepEqual(args, wantArgs) {
		t.Errorf("参数不匹配\n  got : %#v\n  want: %#v", args, wantArgs)
	}
}

func TestBuildSelectSQL_Keyset(t *testing.T) {
	plan := domain.QueryPlan{
		Filter: domain.FilterCriteria{"address.city": "Austin", "gender": "Female"},
		Sort:   domain.SortPlan{{Field: "dob", Direction: domain.Descending}},
		Pagination: domain.PaginationPlan{
			Kind:            domain.PaginationKeyset,
			Limit:           5,
			ReferenceValue:  "1990-01-01T00:00:00.000Z",
			ComparisonField: "dob",
			Comparison:      domain.LessThan,
		},
	}
	sqlStr, args, err := buildSelectSQL("patients", []string{"id"}, plan)
	if err != nil {
		t.Fatalf("buildSelectSQL 返回错误: %v", err)
	}

	wantSQL := `SELECT "id" FROM "patients" WHERE json_extract("address", '$.city') = ? AND "gender" = ? AND "dob" < ? ORDER BY "dob" DESC LIMIT ?`
	if sqlStr != wantSQL {
		t.Errorf("SQL 不匹配\n  got : %s\n  want: %s", sqlStr, wantSQL)
	}
	wantArgs := []any{"Austin", "Female", "1990-01-01T00:00:00.000Z", 5}
	if !reflect.DeepEqual(args, wantArgs) {
		t.Errorf("参数不匹配\n  got : %#v\n  want: %#v", args, wantArgs)
	}
}

func TestBuildSelectSQL_Unbounded(t *testing.T) {
	plan := domain.QueryPlan{
		Sort:       domain.SortPlan{{Field: "address.zip", Direction: domain.Ascending}},
		Pagination: domain.PaginationPlan{Kind: domain.PaginationNone},
	}
	sqlStr, args, err := buildSelectSQL("patients", []string{"id"}, plan)
	if err != nil {
		t.Fatalf("buildSelectSQL 返回错误: %v", err)
	}
	wantSQL := `SELECT "id" FROM "patients" ORDER BY json_extract("address", '$.zip') ASC`
	if sqlStr != wantSQL {
		t.Errorf("SQL 不匹配: got=%s", sqlStr)
	}
	if len(args) != 0 {
		t.Errorf("不应有参数, got=%#v", args)
	}
}

func TestBuildSelectSQL_Errors(t *testing.T) {
	if _, _, err := buildSelectSQL("", []string{"id"}, domain.QueryPlan{}); err == nil {
		t.Error("空表名未返回错误")
	}
	if _, _, err := buildSelectSQL("t", nil, domain.QueryPlan{}); err == nil {
		t.Error("空列未返回错误")
	}
}

func TestBuildCountSQL(t *testing.T) {
	sqlStr, args, err := buildCountSQL("patients", domain.FilterCriteria{"status": "inactive", "middleName": nil})
	if err != nil {
		t.Fatalf("buildCountSQL 错误: %v", err)
	}
	wantSQL := `SELECT COUNT(*) FROM "patients" WHERE "middleName" IS NULL AND "status" = ?`
	if sqlStr != wantSQL {
		t.Errorf("SQL 不匹配: got=%s", sqlStr)
	}
	if len(args) != 1 || args[0] != "inactive" {
		t.Errorf("参数不匹配, got=%v", args)
	}

	sqlStr, _, _ = buildCountSQL("patients", nil)
	if sqlStr != `SELECT COUNT(*) FROM "patients"` {
		t.Errorf("无过滤条件时 SQL 不匹配: got=%s", sqlStr)
	}
}

// -----------------------------------------------------------------------------
// 标识符 / INSERT / 建表
// -----------------------------------------------------------------------------

func TestQuoting(t *testing.T) {
	if got := quoteIdent(`we"ird`); got != `"we""ird"` {
		t.Errorf("quoteIdent 结果错误: %s", got)
	}
	if got := fieldExpr("o'x.y'z"); got != `json_extract("o'x", '$.y''z')` {
		t.Errorf("fieldExpr 结果错误: %s", got)
	}
}

func TestBuildInsertSQL(t *testing.T) {
	sqlStr, args, err := buildInsertSQL("patients", map[string]any{"lastName": "Hopper", "firstName": "Grace"})
	if err != nil {
		t.Fatalf("buildInsertSQL 错误: %v", err)
	}
	wantSQL := `INSERT INTO "patients" ("firstName", "lastName") VALUES (?, ?)`
	if sqlStr != wantSQL {
		t.Errorf("SQL 不匹配: got=%s", sqlStr)
	}
	wantArgs := []any{"Grace", "Hopper"}
	if !reflect.DeepEqual(args, wantArgs) {
		t.Errorf("参数不匹配: %#v", args)
	}

	if _, _, err := buildInsertSQL("patients", nil); err == nil {
		t.Error("空数据未返回错误")
	}
}

func TestBuildCreateTableSQL(t *testing.T) {
	got := buildCreateTableSQL(catsCollection)
	want := `CREATE TABLE IF NOT EXISTS "cats" ("id" TEXT PRIMARY KEY, "name" TEXT, "hid" REAL, "indoor" INTEGER, "owner" TEXT, "toys" TEXT, "createdAt" TEXT, "__v" INTEGER NOT NULL DEFAULT 0)`
	if got != want {
		t.Errorf("建表语句不匹配\n  got : %s\n  want: %s", got, want)
	}
}

func TestSelectColumns(t *testing.T) {
	got := selectColumns([]string{"id", "name", "__v"}, domain.ProjectionPlan{Exclude: []string{"__v"}})
	if !reflect.DeepEqual(got, []string{"id", "name"}) {
		t.Errorf("投影结果错误: %#v", got)
	}
}

func TestDecodeValue(t *testing.T) {
	v, err := decodeValue(domain.FieldObject, []byte(`{"city":"Austin"}`))
	if err != nil || !reflect.DeepEqual(v, map[string]any{"city": "Austin"}) {
		t.Errorf("对象解码错误: %#v, %v", v, err)
	}
	v, _ = decodeValue(domain.FieldBool, int64(1))
	if v != true {
		t.Errorf("布尔解码错误: %#v", v)
	}
	v, _ = decodeValue(domain.FieldNumber, int64(3))
	if v != 3.0 {
		t.Errorf("数字解码错误: %#v", v)
	}
	v, err = decodeValue(domain.FieldArray, "not json")
	if err == nil || v != "not json" {
		t.Errorf("非法 JSON 应返回原文和错误: %#v, %v", v, err)
	}
	if v, _ := decodeValue(domain.FieldString, nil); v != nil {
		t.Errorf("NULL 应解码为 nil: %#v", v)
	}
}

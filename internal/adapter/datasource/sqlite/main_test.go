// file: internal/adapter/datasource/sqlite/main_test.go
package sqlite

import (
	"RecordAegis/internal/core/domain"
	"RecordAegis/internal/service/catalog"
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// ============================================================================
//  共享测试辅助工具 (Shared Test Helpers)
// ============================================================================

// catsCollection 是测试专用集合，字段覆盖字符串、数字、嵌套对象和时间
var catsCollection = domain.CollectionDefinition{
	Name:            "cats",
	IdentifierField: "id",
	Fields: []domain.FieldDefinition{
		{Name: "id", Type: domain.FieldString},
		{Name: "name", Type: domain.FieldString},
		{Name: "hid", Type: domain.FieldNumber},
		{Name: "indoor", Type: domain.FieldBool},
		{Name: "owner", Type: domain.FieldObject, Fields: []domain.FieldDefinition{
			{Name: "city", Type: domain.FieldString},
		}},
		{Name: "toys", Type: domain.FieldArray},
		{Name: "createdAt", Type: domain.FieldTime},
	},
	Filterable: []string{"name", "indoor", "owner.city"},
}

func newTestCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	defs := append(catalog.DefaultCollections(), catsCollection)
	c, err := catalog.New(defs...)
	require.NoError(t, err)
	return c
}

// newTestStore 在临时目录中创建数据库文件并建好所有集合的表。
func newTestStore(t *testing.T) *Store {
	t.Helper()
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "records.db")

	s, err := Open(ctx, path, newTestCatalog(t), zap.NewNop(), Options{})
	require.NoError(t, err)
	require.NoError(t, s.EnsureCollections(ctx))

	// t.Cleanup 会在每个测试（或子测试）结束时自动执行清理代码
	t.Cleanup(func() {
		_ = s.Close()
	})
	return s
}

// seedCats 按给定的 hid 顺序写入猫，name 为 cat-<hid 两位数>，createdAt 按 hid 递增
func seedCats(t *testing.T, s *Store, hids ...int) {
	t.Helper()
	base := time.Date(2021, time.March, 1, 0, 0, 0, 0, time.UTC)
	for _, hid := range hids {
		_, err := s.Insert(context.Background(), "cats", map[string]any{
			"id":        fmt.Sprintf("c%03d", hid),
			"name":      fmt.Sprintf("cat-%02d", hid),
			"hid":       float64(hid),
			"indoor":    hid%2 == 0,
			"owner":     map[string]any{"city": []string{"Austin", "Boston", "Chicago"}[hid%3]},
			"toys":      []string{"ball"},
			"createdAt": base.Add(time.Duration(hid) * time.Minute),
		})
		require.NoError(t, err)
	}
}

// shuffledRange 返回 1..n 的一个固定乱序排列，避免插入顺序与排序顺序一致
func shuffledRange(n int) []int {
	out := make([]int, 0, n)
	for i := 1; i <= n; i++ {
		out = append(out, i)
	}
	for i := range out {
		j := (i*7 + 3) % n
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// file: internal/service/planner/planner_test.go

package planner

import "RecordAegis/internal/core/domain"

// ============================================================================
//  共享测试辅助工具
// ============================================================================

// fakeCatalog 是 port.FieldCatalog 的测试替身，字段集合按记录类型静态给出
type fakeCatalog struct {
	fields map[string]map[string]bool
	ids    map[string]string
}

func (f fakeCatalog) FieldExists(recordType, path string) bool {
	return f.fields[recordType][path]
}

func (f fakeCatalog) DefaultIdentifierField(recordType string) string {
	return f.ids[recordType]
}

func newFakeCatalog() fakeCatalog {
	return fakeCatalog{
		fields: map[string]map[string]bool{
			"cats": {
				"name": true, "hid": true, "age": true, "createdAt": true,
				"owner": true, "owner.city": true, "id": true,
			},
			"robots": {"serial": true, "hid": true, "uid": true},
			"things": {"label": true},
		},
		ids: map[string]string{"cats": "id", "robots": "uid"},
	}
}

func intPtr(v int) *int { return &v }

func asc(f string) domain.SortTerm  { return domain.SortTerm{Field: f, Direction: domain.Ascending} }
func desc(f string) domain.SortTerm { return domain.SortTerm{Field: f, Direction: domain.Descending} }

// file: internal/adapter/datasource/sqlite/seed.go
package sqlite

import (
	"RecordAegis/internal/core/domain"
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

const patientsCollection = "patients"

var (
	seedFirstNames = []string{"Ada", "Grace", "Alan", "Edsger", "Barbara", "Donald", "Frances", "Ken", "Radia", "Niklaus"}
	seedLastNames  = []string{"Lovelace", "Hopper", "Turing", "Dijkstra", "Liskov", "Knuth", "Allen", "Thompson", "Perlman", "Wirth"}
	seedCities     = []struct{ city, state string }{{"Austin", "TX"}, {"Denver", "CO"}, {"Portland", "OR"}, {"Boston", "MA"}}
)

// SeedDemoPatients 在 patients 表为空时写入 n 条确定性的演示数据，返回写入条数。
func (s *Store) SeedDemoPatients(ctx context.Context, n int) (int, error) {
	if _, ok := s.catalog.Collection(patientsCollection); !ok || n <= 0 {
		return 0, nil
	}
	existing, err := s.count(ctx, patientsCollection, domain.FilterCriteria{})
	if err != nil {
		return 0, err
	}
	if existing > 0 {
		s.log.Info("[RecordStore] 已有数据，跳过演示数据写入", zap.Int64("existing", existing))
		return 0, nil
	}

	base := time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		first := seedFirstNames[i%len(seedFirstNames)]
		last := seedLastNames[(i/len(seedFirstNames))%len(seedLastNames)]
		loc := seedCities[i%len(seedCities)]
		gender := "Female"
		if i%2 == 1 {
			gender = "Male"
		}
		status := "active"
		if i%5 == 4 {
			status = "inactive"
		}
		created := base.Add(time.Duration(i) * time.Hour)
		record := map[string]any{
			"firstName":     first,
			"lastName":      last,
			"email":         fmt.Sprintf("%s.%s.%d@example.com", first, last, i),
			"dob":           base.AddDate(-20-i%50, i%12, 0),
			"gender":        gender,
			"status":        status,
			"termsAccepted": i%3 != 0,
			"phones":        []map[string]string{{"type": "Mobile", "number": fmt.Sprintf("555%07d", i)}},
			"address": map[string]any{
				"line1": fmt.Sprintf("%d Main St", 100+i),
				"line2": nil,
				"city":  loc.city,
				"state": loc.state,
				"zip":   fmt.Sprintf("%05d", 10000+i),
			},
			"createdAt": created,
			"updatedAt": created,
		}
		if _, err := s.Insert(ctx, patientsCollection, record); err != nil {
			return i, fmt.Errorf("写入第 %d 条演示数据失败: %w", i+1, err)
		}
	}
	s.log.Info("[RecordStore] 演示数据写入完成", zap.Int("count", n))
	return n, nil
}

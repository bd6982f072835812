// Package sqlite file: internal/adapter/datasource/sqlite/mutate.go
package sqlite

import (
	"RecordAegis/internal/core/domain"
	"RecordAegis/internal/core/port"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Insert 写入一条记录并返回其标识。
// 未提供标识时生成 UUID；集合定义了 createdAt/updatedAt 而记录未提供时填入当前时间。
func (s *Store) Insert(ctx context.Context, collection string, record map[string]any) (string, error) {
	def, ok := s.catalog.Collection(collection)
	if !ok {
		return "", port.ErrCollectionNotFound
	}

	data := make(map[string]any, len(record)+3)
	for field, v := range record {
		if strings.Contains(field, ".") {
			return "", fmt.Errorf("%w: 写入时只接受顶层字段, 收到 '%s'", port.ErrFieldNotFound, field)
		}
		typ, exists := s.catalog.FieldType(collection, field)
		if !exists {
			return "", fmt.Errorf("%w: 集合 '%s' 没有字段 '%s'", port.ErrFieldNotFound, collection, field)
		}
		encoded, err := encodeValue(typ, v)
		if err != nil {
			return "", fmt.Errorf("字段 '%s' 编码失败: %w", field, err)
		}
		data[field] = encoded
	}

	id, _ := data[def.IdentifierField].(string)
	if id == "" {
		id = uuid.NewString()
		data[def.IdentifierField] = id
	}
	now := s.now().UTC().Format(domain.TimeLayout)
	for _, field := range []string{"createdAt", "updatedAt"} {
		if _, set := data[field]; !set && s.catalog.FieldExists(collection, field) {
			data[field] = now
		}
	}

	query, args, err := buildInsertSQL(collection, data)
	if err != nil {
		return "", err
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return "", fmt.Errorf("写入集合 '%s' 失败: %w", collection, err)
	}
	s.log.Debug("[RecordStore] 记录已写入", zap.String("collection", collection), zap.String("id", id))
	return id, nil
}

// encodeValue 把 Go 值转为列存储值
func encodeValue(typ domain.FieldType, v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	switch typ {
	case domain.FieldObject, domain.FieldArray:
		if text, ok := v.(string); ok {
			return text, nil
		}
		b, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		return string(b), nil
	case domain.FieldTime:
		switch t := v.(type) {
		case time.Time:
			return t.UTC().Format(domain.TimeLayout), nil
		case string:
			return domain.NormalizeTime(t), nil
		}
		return nil, fmt.Errorf("无法把 %T 作为时间写入", v)
	case domain.FieldBool:
		b, ok := v.(bool)
		if !ok {
			return nil, fmt.Errorf("无法把 %T 作为布尔值写入", v)
		}
		if b {
			return int64(1), nil
		}
		return int64(0), nil
	}
	return v, nil
}

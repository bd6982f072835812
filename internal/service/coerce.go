// Package service file: internal/service/coerce.go
package service

import (
	"RecordAegis/internal/core/domain"
	"RecordAegis/internal/core/port"
	"fmt"
	"strconv"
)

// coerceValue 把客户端传入的值转换为字段类型对应的存储值。转换失败时返回以 param 命名的校验错误。
func coerceValue(typ domain.FieldType, raw any, param string) (any, error) {
	switch v := raw.(type) {
	case string:
		switch typ {
		case domain.FieldNumber:
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return nil, &port.ValidationError{Param: param, Reason: fmt.Sprintf("'%s' 不是数字", v)}
			}
			return f, nil
		case domain.FieldBool:
			b, err := strconv.ParseBool(v)
			if err != nil {
				return nil, &port.ValidationError{Param: param, Reason: fmt.Sprintf("'%s' 不是布尔值", v)}
			}
			return b, nil
		case domain.FieldTime:
			return domain.NormalizeTime(v), nil
		}
		return v, nil
	case float64:
		if typ == domain.FieldString || typ == domain.FieldTime {
			return strconv.FormatFloat(v, 'f', -1, 64), nil
		}
		return v, nil
	case int:
		return coerceValue(typ, float64(v), param)
	case int64:
		return coerceValue(typ, float64(v), param)
	case bool:
		if typ != domain.FieldBool {
			return strconv.FormatBool(v), nil
		}
		return v, nil
	}
	return raw, nil
}

// Package catalog 在启动时由静态集合定义构建字段目录，供规划器和存储层查询字段是否存在及其类型。
package catalog

import (
	"RecordAegis/internal/core/domain"
	"RecordAegis/internal/core/port"
	"fmt"
	"sort"
	"strings"
)

var _ port.CollectionCatalog = (*Catalog)(nil)

// Catalog 是只读的字段目录，构建后可被并发访问。
type Catalog struct {
	collections map[string]*domain.CollectionDefinition
	// paths 为每个集合记录所有合法字段路径及其类型 (顶层字段与一层嵌套对象的子字段)
	paths      map[string]map[string]domain.FieldType
	filterable map[string]map[string]struct{}
}

// New 根据集合定义构建目录。定义有误 (重名、非法嵌套、标识字段或可过滤字段不存在) 时返回错误。
func New(defs ...domain.CollectionDefinition) (*Catalog, error) {
	c := &Catalog{
		collections: make(map[string]*domain.CollectionDefinition, len(defs)),
		paths:       make(map[string]map[string]domain.FieldType, len(defs)),
		filterable:  make(map[string]map[string]struct{}, len(defs)),
	}
	for i := range defs {
		def := defs[i]
		if def.Name == "" {
			return nil, fmt.Errorf("集合定义 #%d 缺少名称", i)
		}
		if _, dup := c.collections[def.Name]; dup {
			return nil, fmt.Errorf("集合 '%s' 重复定义", def.Name)
		}
		paths, err := indexFields(def)
		if err != nil {
			return nil, err
		}
		if def.IdentifierField == "" {
			def.IdentifierField = "id"
		}
		if _, ok := paths[def.IdentifierField]; !ok {
			return nil, fmt.Errorf("集合 '%s' 的标识字段 '%s' 未定义", def.Name, def.IdentifierField)
		}
		filterable := make(map[string]struct{}, len(def.Filterable))
		for _, f := range def.Filterable {
			typ, ok := paths[f]
			if !ok {
				return nil, fmt.Errorf("集合 '%s' 的可过滤字段 '%s' 未定义", def.Name, f)
			}
			if typ == domain.FieldObject || typ == domain.FieldArray {
				return nil, fmt.Errorf("集合 '%s' 的字段 '%s' 类型为 %s，不能用于等值过滤", def.Name, f, typ)
			}
			filterable[f] = struct{}{}
		}
		c.collections[def.Name] = &def
		c.paths[def.Name] = paths
		c.filterable[def.Name] = filterable
	}
	return c, nil
}

func indexFields(def domain.CollectionDefinition) (map[string]domain.FieldType, error) {
	paths := make(map[string]domain.FieldType)
	for _, f := range def.Fields {
		if f.Name == "" || strings.Contains(f.Name, ".") {
			return nil, fmt.Errorf("集合 '%s' 中存在非法字段名 '%s'", def.Name, f.Name)
		}
		if _, dup := paths[f.Name]; dup {
			return nil, fmt.Errorf("集合 '%s' 中字段 '%s' 重复", def.Name, f.Name)
		}
		paths[f.Name] = f.Type
		if len(f.Fields) == 0 {
			continue
		}
		if f.Type != domain.FieldObject {
			return nil, fmt.Errorf("集合 '%s' 中只有 object 字段可以包含子字段, '%s' 为 %s", def.Name, f.Name, f.Type)
		}
		for _, sub := range f.Fields {
			if len(sub.Fields) > 0 || sub.Type == domain.FieldObject {
				return nil, fmt.Errorf("集合 '%s' 中字段 '%s.%s' 嵌套超过一层", def.Name, f.Name, sub.Name)
			}
			paths[f.Name+"."+sub.Name] = sub.Type
		}
	}
	return paths, nil
}

// FieldExists 实现 port.FieldCatalog
func (c *Catalog) FieldExists(recordType, path string) bool {
	_, ok := c.paths[recordType][path]
	return ok
}

// DefaultIdentifierField 实现 port.FieldCatalog，未知集合返回空串
func (c *Catalog) DefaultIdentifierField(recordType string) string {
	def, ok := c.collections[recordType]
	if !ok {
		return ""
	}
	return def.IdentifierField
}

// FieldType 返回字段路径的类型
func (c *Catalog) FieldType(recordType, path string) (domain.FieldType, bool) {
	typ, ok := c.paths[recordType][path]
	return typ, ok
}

// IsFilterable 判断字段是否允许作为等值过滤条件
func (c *Catalog) IsFilterable(recordType, path string) bool {
	_, ok := c.filterable[recordType][path]
	return ok
}

// Collection 返回集合定义
func (c *Catalog) Collection(name string) (*domain.CollectionDefinition, bool) {
	def, ok := c.collections[name]
	return def, ok
}

// Collections 按名称排序返回所有集合定义
func (c *Catalog) Collections() []domain.CollectionDefinition {
	out := make([]domain.CollectionDefinition, 0, len(c.collections))
	for _, def := range c.collections {
		out = append(out, *def)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

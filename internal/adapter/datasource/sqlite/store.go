// Package sqlite 是基于 SQLite 的记录存储适配器，负责执行查询计划。
// internal/adapter/datasource/sqlite/store.go
package sqlite

import (
	"RecordAegis/internal/core/port"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2/expirable"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// 断言 *Store 实现 port.RecordStore 接口，编译期校验
var _ port.RecordStore = (*Store)(nil)

const (
	defaultColumnCacheSize = 128
	defaultColumnCacheTTL  = 10 * time.Minute
)

// Options 控制存储的可选行为
type Options struct {
	// ColumnCacheTTL 是物理列信息缓存的过期时间
	ColumnCacheTTL time.Duration
	// ColumnCacheSize 是列缓存的最大条目数
	ColumnCacheSize int
}

// Store 持有一个 SQLite 连接和集合目录。每个集合对应一张表。
type Store struct {
	db      *sql.DB
	catalog port.CollectionCatalog

	// columns 缓存每张表的物理列，避免每次查询都执行 PRAGMA
	columns *lru.LRU[string, []string]

	log *zap.Logger
	now func() time.Time
}

// Open 打开 (或创建) path 处的数据库文件并检查连通性。
func Open(ctx context.Context, path string, catalog port.CollectionCatalog, logger *zap.Logger, opts Options) (*Store, error) {
	if path == "" {
		return nil, errors.New("数据库路径不能为空")
	}
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql.Open '%s' 失败: %w", path, err)
	}
	if errPing := db.PingContext(ctx); errPing != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping 数据库 '%s' 失败: %w", path, errPing)
	}
	s := NewWithDB(db, catalog, logger, opts)
	s.log.Info("[RecordStore] 数据库已打开", zap.String("path", path))
	return s, nil
}

// NewWithDB 使用已有连接构建 Store，测试中配合 sqlmock 使用。
func NewWithDB(db *sql.DB, catalog port.CollectionCatalog, logger *zap.Logger, opts Options) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.ColumnCacheSize <= 0 {
		opts.ColumnCacheSize = defaultColumnCacheSize
	}
	if opts.ColumnCacheTTL <= 0 {
		opts.ColumnCacheTTL = defaultColumnCacheTTL
	}
	return &Store{
		db:      db,
		catalog: catalog,
		columns: lru.NewLRU[string, []string](opts.ColumnCacheSize, nil, opts.ColumnCacheTTL),
		log:     logger,
		now:     time.Now,
	}
}

// DB 返回底层连接，供共享同一数据库文件的组件 (如用户表) 使用。
func (s *Store) DB() *sql.DB { return s.db }

// HealthCheck 实现 port.RecordStore
func (s *Store) HealthCheck(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close 关闭数据库连接
func (s *Store) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("关闭数据库失败: %w", err)
	}
	return nil
}

// Package aegconf 负责集中式配置加载

package aegconf

import (
	"RecordAegis/internal/service/planner"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// EnvPrefix 是环境变量覆盖的前缀，例如 AEGIS_SERVER_PORT
const EnvPrefix = "AEGIS"

// Config 是完整的应用配置
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Query     QueryConfig     `mapstructure:"query"`
	Auth      AuthConfig      `mapstructure:"auth"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
}

type ServerConfig struct {
	Port            int           `mapstructure:"port" validate:"min=1,max=65535"`
	GRPCPort        int           `mapstructure:"grpc_port" validate:"min=0,max=65535"`
	LogLevel        string        `mapstructure:"log_level" validate:"oneof=debug info warn error"`
	LogFormat       string        `mapstructure:"log_format" validate:"oneof=json console"`
	PprofAddr       string        `mapstructure:"pprof_addr"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"gt=0"`
}

type StorageConfig struct {
	Path           string        `mapstructure:"path" validate:"required"`
	SeedDemo       int           `mapstructure:"seed_demo" validate:"min=0"`
	ColumnCacheTTL time.Duration `mapstructure:"column_cache_ttl" validate:"min=0"`
}

// QueryConfig 是分页规划的限制，支持热加载
type QueryConfig struct {
	DefaultPageLimit int  `mapstructure:"default_page_limit" validate:"min=1"`
	MaxPageLimit     int  `mapstructure:"max_page_limit" validate:"min=1,gtefield=DefaultPageLimit"`
	AllowUnbounded   bool `mapstructure:"allow_unbounded"`
}

type AuthConfig struct {
	Enabled           bool          `mapstructure:"enabled"`
	JWTSecret         string        `mapstructure:"jwt_secret" validate:"required_if=Enabled true"`
	TokenTTL          time.Duration `mapstructure:"token_ttl" validate:"gt=0"`
	BootstrapUser     string        `mapstructure:"bootstrap_user"`
	BootstrapPassword string        `mapstructure:"bootstrap_password" validate:"required_with=BootstrapUser"`
}

type RateLimitConfig struct {
	Enabled bool    `mapstructure:"enabled"`
	RPS     float64 `mapstructure:"rps" validate:"gt=0"`
	Burst   int     `mapstructure:"burst" validate:"min=1"`
}

// Planner 把查询配置转换为规划器配置
func (q QueryConfig) Planner() planner.Config {
	return planner.Config{
		DefaultPageLimit: q.DefaultPageLimit,
		MaxPageLimit:     q.MaxPageLimit,
		AllowUnbounded:   q.AllowUnbounded,
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 10224)
	v.SetDefault("server.grpc_port", 0)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.log_format", "json")
	v.SetDefault("server.pprof_addr", "")
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("storage.path", "instance/records.db")
	v.SetDefault("storage.seed_demo", 0)
	v.SetDefault("storage.column_cache_ttl", 5*time.Minute)

	v.SetDefault("query.default_page_limit", planner.DefaultPageLimit)
	v.SetDefault("query.max_page_limit", planner.MaxPageLimit)
	v.SetDefault("query.allow_unbounded", false)

	v.SetDefault("auth.enabled", false)
	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.token_ttl", 24*time.Hour)
	v.SetDefault("auth.bootstrap_user", "")
	v.SetDefault("auth.bootstrap_password", "")

	v.SetDefault("rate_limit.enabled", false)
	v.SetDefault("rate_limit.rps", 20.0)
	v.SetDefault("rate_limit.burst", 40)
}

// Loader 持有 viper 实例，供首次加载与后续热加载共用
type Loader struct {
	v *viper.Viper
}

// NewLoader 创建 Loader。path 为空时只使用默认值和环境变量。
func NewLoader(path string) *Loader {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if path != "" {
		v.SetConfigFile(path)
	}
	return &Loader{v: v}
}

// Load 读取配置文件、合并环境变量并校验
func (l *Loader) Load() (*Config, error) {
	if l.v.ConfigFileUsed() != "" {
		if err := l.v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("读取配置文件 '%s' 失败: %w", l.v.ConfigFileUsed(), err)
		}
	}
	return l.decode()
}

func (l *Loader) decode() (*Config, error) {
	var cfg Config
	if err := l.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置到结构体失败: %w", err)
	}
	if err := validate.Struct(&cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s(%s)", fe.Namespace(), fe.Tag()))
			}
			return nil, fmt.Errorf("配置校验失败: %s", strings.Join(msgs, ", "))
		}
		return nil, fmt.Errorf("配置校验失败: %w", err)
	}
	return &cfg, nil
}

// Load 是 NewLoader(path).Load() 的便捷写法
func Load(path string) (*Config, error) {
	return NewLoader(path).Load()
}

// QueryLimits 以原子方式保存当前生效的查询配置
type QueryLimits struct {
	cur atomic.Pointer[QueryConfig]
}

// NewQueryLimits 以初始配置创建 QueryLimits
func NewQueryLimits(initial QueryConfig) *QueryLimits {
	q := &QueryLimits{}
	q.Store(initial)
	return q
}

// Store 替换当前配置
func (q *QueryLimits) Store(c QueryConfig) { q.cur.Store(&c) }

// Current 返回当前配置
func (q *QueryLimits) Current() QueryConfig { return *q.cur.Load() }

// PlannerConfig 返回当前的规划器配置
func (q *QueryLimits) PlannerConfig() planner.Config { return q.Current().Planner() }

// Watch 监听配置文件变化，把新的 query 段写入 limits。其余段需要重启才会生效。
func (l *Loader) Watch(limits *QueryLimits, logger *zap.Logger) {
	if l.v.ConfigFileUsed() == "" {
		return
	}
	l.v.OnConfigChange(func(e fsnotify.Event) {
		l.reload(e, limits, logger)
	})
	l.v.WatchConfig()
}

func (l *Loader) reload(e fsnotify.Event, limits *QueryLimits, logger *zap.Logger) {
	cfg, err := l.decode()
	if err != nil {
		logger.Warn("[aegconf] 配置热加载失败，保留旧配置", zap.String("file", e.Name), zap.Error(err))
		return
	}
	prev := limits.Current()
	if prev == cfg.Query {
		return
	}
	limits.Store(cfg.Query)
	logger.Info("[aegconf] 查询限制已更新",
		zap.String("file", e.Name),
		zap.Int("default_page_limit", cfg.Query.DefaultPageLimit),
		zap.Int("max_page_limit", cfg.Query.MaxPageLimit),
		zap.Bool("allow_unbounded", cfg.Query.AllowUnbounded),
	)
}

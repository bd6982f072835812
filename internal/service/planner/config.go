// Package planner 把不可信的请求参数翻译为确定的查询计划。
// 包内所有函数都是纯函数：不做 I/O，不持有共享状态，依赖全部通过参数传入。
package planner

const (
	// DefaultPageLimit 是未配置时的默认每页条数
	DefaultPageLimit = 100
	// MaxPageLimit 是未配置时允许的最大每页条数
	MaxPageLimit = 300
)

// Config 是分页策略配置
type Config struct {
	DefaultPageLimit int
	MaxPageLimit     int
	// AllowUnbounded 为 true 时，未提供任何分页参数的请求返回完整结果集
	AllowUnbounded bool
}

// normalized 补齐缺省值，并保证默认条数不超过上限
func (c Config) normalized() Config {
	if c.MaxPageLimit <= 0 {
		c.MaxPageLimit = MaxPageLimit
	}
	if c.DefaultPageLimit <= 0 {
		c.DefaultPageLimit = DefaultPageLimit
	}
	if c.DefaultPageLimit > c.MaxPageLimit {
		c.DefaultPageLimit = c.MaxPageLimit
	}
	return c
}

// Package aegmiddleware 提供请求限流与登录失败锁定
package aegmiddleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// ============================================================================
//  按 IP 限流 (Per-IP Rate Limiter)
// ============================================================================

// IPRateLimiter 为每个客户端 IP 维护一个令牌桶，长时间不活跃的条目自动过期
type IPRateLimiter struct {
	limiters *cache.Cache
	rps      rate.Limit
	burst    int
	log      *zap.Logger
}

// NewIPRateLimiter 创建 IPRateLimiter。idle 为条目在无访问后保留的时长。
func NewIPRateLimiter(rps float64, burst int, idle time.Duration, logger *zap.Logger) *IPRateLimiter {
	if idle <= 0 {
		idle = 15 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	logger.Info("[Limiter] 初始化完成", zap.Float64("rps", rps), zap.Int("burst", burst), zap.Duration("idle", idle))
	return &IPRateLimiter{
		limiters: cache.New(idle, 2*idle),
		rps:      rate.Limit(rps),
		burst:    burst,
		log:      logger,
	}
}

func (l *IPRateLimiter) getLimiter(ip string) *rate.Limiter {
	if v, found := l.limiters.Get(ip); found {
		lim := v.(*rate.Limiter)
		// 重新写入以刷新过期时间
		l.limiters.SetDefault(ip, lim)
		return lim
	}
	lim := rate.NewLimiter(l.rps, l.burst)
	if err := l.limiters.Add(ip, lim, cache.DefaultExpiration); err != nil {
		// 并发请求已抢先创建
		if v, found := l.limiters.Get(ip); found {
			return v.(*rate.Limiter)
		}
	}
	return lim
}

// Allow 报告该 IP 当前是否还有令牌
func (l *IPRateLimiter) Allow(ip string) bool {
	return l.getLimiter(ip).Allow()
}

// Middleware 返回 gin 中间件，超限时返回 429
func (l *IPRateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		if !l.Allow(ip) {
			l.log.Debug("[Limiter] 请求被限流", zap.String("ip", ip), zap.String("path", c.Request.URL.Path))
			c.Header("Retry-After", "1")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"status": "error", "error": "请求过于频繁，请稍后再试。"})
			return
		}
		c.Next()
	}
}

// ============================================================================
//  失败计数与临时锁定 (Failure Counting & Temporary Lockout)
// ============================================================================

// LoginFailureLock 在同一 IP 与用户名连续登录失败达到阈值后临时锁定
type LoginFailureLock struct {
	failureCache    *cache.Cache
	maxFailures     int
	lockoutDuration time.Duration
	log             *zap.Logger
}

// NewLoginFailureLock 创建一个新的登录失败锁定器
func NewLoginFailureLock(maxFailures int, lockoutDuration time.Duration, logger *zap.Logger) *LoginFailureLock {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LoginFailureLock{
		failureCache:    cache.New(5*time.Minute, 10*time.Minute),
		maxFailures:     maxFailures,
		lockoutDuration: lockoutDuration,
		log:             logger,
	}
}

// Locked 报告该组合是否处于锁定期
func (l *LoginFailureLock) Locked(ip, username string) bool {
	_, found := l.failureCache.Get("lock:" + ip + ":" + username)
	return found
}

// RecordFailure 记录一次失败，达到阈值时锁定并返回 true
func (l *LoginFailureLock) RecordFailure(ip, username string) bool {
	failureKey := "failures:" + ip + ":" + username
	n, err := l.failureCache.IncrementInt64(failureKey, 1)
	if err != nil {
		l.failureCache.Set(failureKey, int64(1), cache.DefaultExpiration)
		n = 1
	}
	l.log.Info("[Login Failure] 登录失败", zap.String("user", username), zap.String("ip", ip), zap.Int64("failures", n))

	if n >= int64(l.maxFailures) {
		l.failureCache.Set("lock:"+ip+":"+username, true, l.lockoutDuration)
		l.failureCache.Delete(failureKey)
		l.log.Warn("[Login Lock] 账户已被临时锁定", zap.String("user", username), zap.String("ip", ip), zap.Duration("duration", l.lockoutDuration))
		return true
	}
	return false
}

// Reset 在登录成功后清除失败计数
func (l *LoginFailureLock) Reset(ip, username string) {
	l.failureCache.Delete("failures:" + ip + ":" + username)
}

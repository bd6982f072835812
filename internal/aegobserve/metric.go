// Package aegobserve 暴露 Prometheus 指标
package aegobserve

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// 指标定义
var (
	httpRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "recordaegis_http_request_duration_seconds",
		Help:    "HTTP 请求耗时",
		Buckets: prometheus.DefBuckets,
	}, []string{"path", "method", "code"})

	// PlansBuilt 按集合和分页方式 (offset/keyset/none/count) 统计构建成功的查询计划
	PlansBuilt = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "recordaegis_query_plans_total",
		Help: "构建成功的查询计划数",
	}, []string{"collection", "mode"})

	// PlansRejected 统计因参数校验失败而被拒绝的请求
	PlansRejected = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "recordaegis_query_plans_rejected_total",
		Help: "参数校验失败的查询数",
	}, []string{"collection", "param"})
)

// Register 必须在 main 调用一次
func Register() {
	prometheus.MustRegister(httpRequestDuration, PlansBuilt, PlansRejected)
}

// Handler 返回 HTTP 处理器
func Handler() http.Handler { return promhttp.Handler() }

// PrometheusMiddleware 记录每个请求的耗时。path 使用路由模板，避免按具体 ID 产生无限多的标签。
func PrometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		httpRequestDuration.
			WithLabelValues(path, c.Request.Method, strconv.Itoa(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}

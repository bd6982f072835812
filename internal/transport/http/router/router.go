// file: internal/transport/http/router/router.go
package router

import (
	"RecordAegis/aegauth"
	"RecordAegis/internal/aegmiddleware"
	"RecordAegis/internal/aegobserve"
	"RecordAegis/internal/core/domain"
	"RecordAegis/internal/service"
	"RecordAegis/internal/transport/http/middleware"
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RecordQuerier 是路由所需的记录服务能力
type RecordQuerier interface {
	List(ctx context.Context, req service.ListRequest) (*service.ListResult, error)
	Get(ctx context.Context, collection, id, field string) (map[string]any, error)
	Collections() []domain.CollectionDefinition
	HealthCheck(ctx context.Context) error
}

// Dependencies 结构体用于将所有依赖项注入到路由器中。
// Auth 为 nil 时集合接口不需要认证；Limiter 为 nil 时不限流。
type Dependencies struct {
	Records   RecordQuerier
	Auth      *aegauth.Authenticator
	LoginLock *aegmiddleware.LoginFailureLock
	Limiter   *aegmiddleware.IPRateLimiter
	Logger    *zap.Logger
}

// 列表查询中具有固定含义的参数，其余参数视为过滤条件
var reservedParams = map[string]bool{
	"sort":        true,
	"offset":      true,
	"pageLimit":   true,
	"pageRefItem": true,
	"count":       true,
}

// New 创建并配置基于 Gin 的 HTTP 路由器 (V1 版本)
func New(deps Dependencies) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	router := gin.New()

	// --- 配置全局中间件 ---
	router.Use(
		middleware.RequestID(),
		middleware.AccessLog(logger),
		gin.Recovery(),
		aegobserve.PrometheusMiddleware(),
		gzip.Gzip(gzip.DefaultCompression),
		cors.New(cors.Config{
			AllowOrigins:  []string{"*"},
			AllowMethods:  []string{"GET", "POST", "OPTIONS"},
			AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", "Accept", middleware.RequestIDHeader},
			ExposeHeaders: []string{"Content-Length", middleware.RequestIDHeader},
			MaxAge:        12 * time.Hour,
		}),
		middleware.ErrorHandlingMiddleware(logger),
	)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "success", "data": gin.H{"message": "pong"}})
	})
	router.GET("/metrics", gin.WrapH(aegobserve.Handler()))

	v1 := router.Group("/api/v1")
	if deps.Limiter != nil {
		v1.Use(deps.Limiter.Middleware())
	}
	{
		v1.GET("/health", healthHandler(deps.Records))

		// --- 系统/认证平面 (System/Auth Plane) ---
		if deps.Auth != nil {
			v1.POST("/auth/login", loginHandler(deps.Auth, deps.LoginLock))
		}

		// --- 元数据/发现平面 (Metadata/Discovery Plane) ---
		metaGroup := v1.Group("/meta")
		// --- 数据平面 (Data Plane) ---
		dataGroup := v1.Group("/collections")
		if deps.Auth != nil {
			metaGroup.Use(deps.Auth.Middleware())
			dataGroup.Use(deps.Auth.Middleware())
		}
		metaGroup.GET("/collections", collectionsHandler(deps.Records))
		dataGroup.GET("/:collection", listHandler(deps.Records))
		dataGroup.GET("/:collection/:id", getHandler(deps.Records))
	}

	return router
}

// =============================================================================
//  处理器 (Handlers)
// =============================================================================

func healthHandler(records RecordQuerier) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := records.HealthCheck(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "error", "error": "存储不可用"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "success", "data": gin.H{"storage": "ok"}})
	}
}

// loginHandler 处理用户登录请求
func loginHandler(auth *aegauth.Authenticator, lock *aegmiddleware.LoginFailureLock) gin.HandlerFunc {
	type loginRequest struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	return func(c *gin.Context) {
		var req loginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			_ = c.Error(err).SetType(gin.ErrorTypeBind)
			return
		}
		ip := c.ClientIP()
		if lock != nil && lock.Locked(ip, req.Username) {
			_ = c.Error(aegauth.ErrInvalidCredentials)
			return
		}

		token, exp, err := auth.Login(c.Request.Context(), req.Username, req.Password)
		if err != nil {
			if lock != nil && errors.Is(err, aegauth.ErrInvalidCredentials) {
				lock.RecordFailure(ip, req.Username)
			}
			_ = c.Error(err)
			return
		}
		if lock != nil {
			lock.Reset(ip, req.Username)
		}
		c.JSON(http.StatusOK, gin.H{"status": "success", "data": gin.H{
			"token":      token,
			"expires_at": exp.UTC().Format(time.RFC3339),
		}})
	}
}

// collectionsHandler 返回所有集合的定义
func collectionsHandler(records RecordQuerier) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "success", "data": records.Collections()})
	}
}

type listQuery struct {
	Sort        string `form:"sort" binding:"max=512"`
	Offset      *int   `form:"offset"`
	PageLimit   *int   `form:"pageLimit"`
	PageRefItem string `form:"pageRefItem"`
	Count       bool   `form:"count"`
}

// listHandler 处理集合列表查询
func listHandler(records RecordQuerier) gin.HandlerFunc {
	return func(c *gin.Context) {
		var q listQuery
		if err := c.ShouldBindQuery(&q); err != nil {
			_ = c.Error(err).SetType(gin.ErrorTypeBind)
			return
		}

		params := domain.RequestParams{
			Sort:      q.Sort,
			Offset:    q.Offset,
			PageLimit: q.PageLimit,
			Count:     q.Count,
		}
		if q.PageRefItem != "" {
			params.PageRefItem = q.PageRefItem
		}

		filters := map[string]string{}
		for key, values := range c.Request.URL.Query() {
			if reservedParams[key] || len(values) == 0 {
				continue
			}
			filters[key] = values[0]
		}

		collection := c.Param("collection")
		res, err := records.List(c.Request.Context(), service.ListRequest{
			Collection: collection,
			Params:     params,
			Filters:    filters,
		})
		if err != nil {
			_ = c.Error(err)
			return
		}

		if res.CountOnly {
			c.JSON(http.StatusOK, gin.H{"status": "success", "data": gin.H{"count": res.Count}})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "success", "data": gin.H{
			collection:   res.Records,
			"total":      res.Total,
			"sort":       res.Plan.Sort,
			"pagination": paginationView(res.Plan.Pagination),
		}})
	}
}

// getHandler 按标识获取单条记录，?field= 时只返回该字段
func getHandler(records RecordQuerier) gin.HandlerFunc {
	return func(c *gin.Context) {
		record, err := records.Get(c.Request.Context(), c.Param("collection"), c.Param("id"), c.Query("field"))
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "success", "data": record})
	}
}

func paginationView(p domain.PaginationPlan) gin.H {
	v := gin.H{"kind": p.Kind.String()}
	switch p.Kind {
	case domain.PaginationOffset:
		v["skip"] = p.Skip
		v["limit"] = p.Limit
	case domain.PaginationKeyset:
		v["limit"] = p.Limit
		v["field"] = p.ComparisonField
		v["comparison"] = p.Comparison.String()
		v["reference"] = p.ReferenceValue
	}
	return v
}

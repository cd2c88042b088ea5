// Package server 提供 HTTP API 处理器
//
// 本包实现课程平台的 RESTful API 入口，包括：
//   - 路由配置（各领域接口分散在独立子包）
//   - 指标、限流、认证、CORS 中间件链
//   - 健康检查与存活探针
//
// 文件组织：
//   - common.go: Handler 定义和通用接口
//   - handler.go: 路由配置与中间件链
//   - metrics.go: Prometheus 指标
//   - ratelimit.go: 敏感接口限流
package server

import (
	"encoding/json"
	"net/http"

	"harmonic-server/internal/apiserver/auth"
	"harmonic-server/internal/apiserver/payment"
	"harmonic-server/internal/shared/cache"
	"harmonic-server/internal/shared/storage"
	"harmonic-server/pkg/logging"
)

// Handler API 处理器
//
// Handler 是所有 HTTP API 的入口，负责：
//   - 路由请求到各领域处理函数
//   - 管理存储层与缓存连接
//   - 组装中间件链
//
// 依赖接口说明（接口隔离原则）：
//   - store: 持久化业务数据（用户/课程/选课/报名）
//   - catalog: 课程目录缓存（热门/已上架列表）
//   - intents: 支付意向创建器
type Handler struct {
	store   storage.PersistentStore // MongoDB 存储层（持久化业务数据）
	catalog cache.CatalogCache      // 课程目录缓存
	intents payment.IntentCreator   // 支付处理器适配

	authConfig auth.Config // 认证配置

	metrics *Metrics        // Prometheus 指标
	limiter *RateLimiter    // 敏感接口限流
	logger  *logging.Logger // 访问日志
}

// NewHandler 创建 Handler 实例
//
// 参数：
//   - store: 持久化存储层实例
//   - catalog: 课程目录缓存，传 nil 时退化为直查存储
//   - intents: 支付意向创建器
//   - authCfg: 认证配置
func NewHandler(store storage.PersistentStore, catalog cache.CatalogCache, intents payment.IntentCreator, authCfg auth.Config) *Handler {
	if catalog == nil {
		catalog = cache.NewNoOpCache()
	}
	return &Handler{
		store:      store,
		catalog:    catalog,
		intents:    intents,
		authConfig: authCfg,
		metrics:    NewMetrics("harmonic"),
		limiter:    NewRateLimiter(DefaultRateLimiterConfig()),
		logger:     logging.Default("api-server"),
	}
}

// GetMetrics 返回指标实例
func (h *Handler) GetMetrics() *Metrics {
	return h.metrics
}

// writeJSON 将数据以 JSON 格式写入 HTTP 响应
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// Health 健康检查接口
//
// 路由: GET /health
//
// 用于负载均衡器和监控系统检查服务状态。
// 返回 {"status": "ok"} 表示服务正常运行。
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Root 存活探针
//
// 路由: GET /
//
// 保留历史纯文本响应，老客户端用它确认服务在线。
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("Harmonic server is running ...."))
}

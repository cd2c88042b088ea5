// Package server 路由配置与中间件链
package server

import (
	"net/http"
	"time"

	"harmonic-server/internal/apiserver/auth"
	"harmonic-server/internal/apiserver/cart"
	"harmonic-server/internal/apiserver/class"
	"harmonic-server/internal/apiserver/enrollment"
	"harmonic-server/internal/apiserver/payment"
	"harmonic-server/internal/apiserver/user"
)

// Router 返回配置好的 HTTP 路由
//
// 路由规则：
//
// 服务状态:
//   - GET  /          - 存活探针（纯文本）
//   - GET  /health    - 健康检查
//   - GET  /metrics   - Prometheus 指标
//
// 认证 (Auth):
//   - POST /jwt       - 签发访问令牌
//
// 用户管理 (User):
//   - PUT  /users/{email}        - 创建或更新用户
//   - GET  /users                - 列出全部用户
//   - GET  /users/{email}        - 获取用户详情
//   - GET  /topInstructor        - 热门讲师（最多 6 名）
//   - GET  /topInstructor/{role} - 按角色列出用户
//
// 课程管理 (Class):
//   - GET   /classes           - 列出全部课程
//   - GET   /classes/approved  - 列出已上架课程（带缓存）
//   - GET   /classes/{email}   - 列出讲师的课程
//   - GET   /popularClasses    - 热门课程（带缓存，最多 6 门）
//   - POST  /classes           - 提交新课程（进入待审核状态）
//   - PATCH /classes/{id}      - 更新课程（信息或审核状态）
//   - GET   /enrolledClass/{id} - 获取单个课程详情（历史路由名）
//
// 选课车 (Cart):
//   - GET    /selected/{email} - 列出学生的选课
//   - POST   /selected         - 加入选课
//   - DELETE /selected/{id}    - 移除选课
//
// 报名 (Enrollment):
//   - POST /enrolledClass           - 报名课程
//   - GET  /enrolledClasses/{email} - 列出学生的报名记录
//
// 支付 (Payment):
//   - POST /create-payment-intent - 创建支付意向
func (h *Handler) Router() http.Handler {
	mux := http.NewServeMux()

	// 服务状态
	mux.HandleFunc("GET /{$}", h.Root)
	mux.HandleFunc("GET /health", h.Health)

	// Prometheus 指标端点
	mux.Handle("GET /metrics", h.metrics.Handler())

	// Auth 接口（令牌签发）
	authHandler := auth.NewHandler(h.authConfig)
	authHandler.RegisterRoutes(mux)

	// User 接口
	userHandler := user.NewHandler(h.store)
	userHandler.RegisterRoutes(mux)

	// Class 接口（目录读取走缓存）
	classHandler := class.NewHandler(h.store, h.catalog)
	classHandler.RegisterRoutes(mux)

	// Cart 接口
	cartHandler := cart.NewHandler(h.store)
	cartHandler.RegisterRoutes(mux)

	// Enrollment 接口（报名时清理选课并刷新目录缓存）
	enrollHandler := enrollment.NewHandler(h.store, h.catalog)
	enrollHandler.RegisterRoutes(mux)

	// Payment 接口
	paymentHandler := payment.NewHandler(h.intents)
	paymentHandler.RegisterRoutes(mux)

	// 应用指标中间件
	apiHandler := h.metrics.MetricsMiddleware(mux)

	// 应用敏感接口限流
	limitedHandler := h.RateLimitMiddleware(apiHandler)

	// 应用认证中间件（按路由策略表校验令牌与归属）
	authedHandler := auth.Middleware(h.authConfig, auth.DefaultPolicy())(limitedHandler)

	// 应用 CORS 中间件
	corsHandler := corsMiddleware(authedHandler)

	// 最外层记录访问日志（含被认证/限流拒绝的请求）
	return h.requestLogMiddleware(corsHandler)
}

// requestLogMiddleware 结构化访问日志
func (h *Handler) requestLogMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapped, r)

		h.logger.HTTPRequestLog(r.Method, r.URL.Path, wrapped.statusCode, time.Since(start), h.clientIP(r))
	})
}

// corsMiddleware 添加 CORS 头支持跨域请求
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// Package server 敏感接口限流
package server

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiterConfig 限流配置
type RateLimiterConfig struct {
	// TokenRate 令牌签发接口速率（按客户端 IP）
	TokenRate  rate.Limit
	TokenBurst int

	// PaymentRate 支付意向接口速率（按客户端 IP）
	PaymentRate  rate.Limit
	PaymentBurst int

	// CleanupInterval 空闲限流器清理周期
	CleanupInterval time.Duration

	// TrustProxyHeaders 是否信任 X-Forwarded-For
	//
	// 仅在服务部署于可控反向代理之后时开启，
	// 否则客户端可伪造该头绕过按 IP 限流。
	TrustProxyHeaders bool
}

// DefaultRateLimiterConfig 返回默认限流配置
func DefaultRateLimiterConfig() RateLimiterConfig {
	return RateLimiterConfig{
		TokenRate:       rate.Limit(1), // 1 req/sec
		TokenBurst:      10,
		PaymentRate:     rate.Limit(0.5), // 1 req / 2 sec
		PaymentBurst:    5,
		CleanupInterval: 5 * time.Minute,
	}
}

// clientLimiter 保存单个客户端的限流器和最后访问时刻
type clientLimiter struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// RateLimiter 按客户端 IP 管理敏感接口的速率限制
//
// 令牌签发和支付意向两类接口各自独立计数，
// 空闲超过清理周期的客户端条目会被回收。
type RateLimiter struct {
	config RateLimiterConfig

	mu       sync.Mutex
	token    map[string]*clientLimiter
	payment  map[string]*clientLimiter
	stopOnce sync.Once
	stop     chan struct{}
}

// NewRateLimiter 创建限流器并启动后台清理
func NewRateLimiter(cfg RateLimiterConfig) *RateLimiter {
	rl := &RateLimiter{
		config:  cfg,
		token:   make(map[string]*clientLimiter),
		payment: make(map[string]*clientLimiter),
		stop:    make(chan struct{}),
	}
	if cfg.CleanupInterval > 0 {
		go rl.cleanupLoop()
	}
	return rl
}

// Stop 停止后台清理
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stop) })
}

// AllowToken 判断令牌签发请求是否放行
func (rl *RateLimiter) AllowToken(clientIP string) bool {
	return rl.allow(rl.token, clientIP, rl.config.TokenRate, rl.config.TokenBurst)
}

// AllowPayment 判断支付意向请求是否放行
func (rl *RateLimiter) AllowPayment(clientIP string) bool {
	return rl.allow(rl.payment, clientIP, rl.config.PaymentRate, rl.config.PaymentBurst)
}

func (rl *RateLimiter) allow(m map[string]*clientLimiter, key string, r rate.Limit, burst int) bool {
	rl.mu.Lock()
	cl, ok := m[key]
	if !ok {
		cl = &clientLimiter{limiter: rate.NewLimiter(r, burst)}
		m[key] = cl
	}
	cl.lastAccess = time.Now()
	rl.mu.Unlock()

	return cl.limiter.Allow()
}

func (rl *RateLimiter) cleanupLoop() {
	ticker := time.NewTicker(rl.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-rl.stop:
			return
		case <-ticker.C:
			rl.cleanup()
		}
	}
}

func (rl *RateLimiter) cleanup() {
	cutoff := time.Now().Add(-rl.config.CleanupInterval)
	rl.mu.Lock()
	defer rl.mu.Unlock()
	for key, cl := range rl.token {
		if cl.lastAccess.Before(cutoff) {
			delete(rl.token, key)
		}
	}
	for key, cl := range rl.payment {
		if cl.lastAccess.Before(cutoff) {
			delete(rl.payment, key)
		}
	}
}

// RateLimitMiddleware 对令牌签发和支付意向接口按客户端 IP 限流
func (h *Handler) RateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			switch r.URL.Path {
			case "/jwt":
				if !h.limiter.AllowToken(h.clientIP(r)) {
					h.metrics.RecordRateLimited(r.URL.Path)
					writeJSON(w, http.StatusTooManyRequests, map[string]string{"error": "too many requests"})
					return
				}
			case "/create-payment-intent":
				if !h.limiter.AllowPayment(h.clientIP(r)) {
					h.metrics.RecordRateLimited(r.URL.Path)
					writeJSON(w, http.StatusTooManyRequests, map[string]string{"error": "too many requests"})
					return
				}
			}
		}
		next.ServeHTTP(w, r)
	})
}

// clientIP 提取客户端 IP
//
// 默认只用 RemoteAddr；X-Forwarded-For 可被客户端随意伪造，
// 仅在显式配置了可信代理时才采用。
func (h *Handler) clientIP(r *http.Request) string {
	if h.limiter.config.TrustProxyHeaders {
		if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
			// 逗号分隔时取最左（最初的客户端）
			ip, _, _ := strings.Cut(fwd, ",")
			return strings.TrimSpace(ip)
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

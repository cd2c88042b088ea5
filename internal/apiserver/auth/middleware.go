package auth

import (
	"log"
	"net/http"
	"strings"
)

// Middleware 创建基于策略表的授权中间件
//
// 每个请求先查 Policy 确定访问级别，再统一执行检查：
//   - public: 直接放行，不读取令牌
//   - authenticated: 必须携带有效的 "Authorization: Bearer <token>"
//   - owner: 在 authenticated 之上，路径 {email} 必须等于令牌身份
//
// 授权失败时请求在此短路，不会发生任何仓储访问。
// 如果 cfg.Enabled() == false，直接放行所有请求（本地无认证模式）。
func Middleware(cfg Config, policy Policy) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// 无认证模式：直接放行
			if !cfg.Enabled() {
				next.ServeHTTP(w, r)
				return
			}

			// 按转义路径匹配，与 ServeMux 的通配段口径一致
			level, ownerEmail := policy.Match(r.Method, r.URL.EscapedPath())
			if level == AccessPublic {
				next.ServeHTTP(w, r)
				return
			}

			// 提取 Bearer Token
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				writeError(w, http.StatusUnauthorized, "missing authorization header")
				return
			}
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				writeError(w, http.StatusUnauthorized, "invalid authorization header")
				return
			}

			// 解析 JWT
			claims, err := ParseToken(cfg, parts[1])
			if err != nil {
				log.Printf("[auth] token parse error: %v", err)
				writeError(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}

			// 归属检查：认证通过但身份不符 → 403，个人记录绝不跨身份泄露
			if level == AccessOwner && ownerEmail != claims.Email {
				writeError(w, http.StatusForbidden, "forbidden access")
				return
			}

			// 注入已验证身份到 context
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), claims.Email)))
		})
	}
}

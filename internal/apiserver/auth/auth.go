// Package auth 请求授权：JWT 令牌签发/校验、路由访问策略、HTTP 中间件
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// contextKey context 键类型
type contextKey string

const ctxKeyIdentity contextKey = "identity"

// 令牌校验错误
var (
	// ErrInvalidToken 签名不匹配或令牌格式非法
	ErrInvalidToken = errors.New("invalid token")
	// ErrExpiredToken 令牌已过期
	ErrExpiredToken = errors.New("token expired")
)

// Config 认证配置
type Config struct {
	JWTSecret string        `yaml:"jwt_secret"`
	TokenTTL  time.Duration `yaml:"token_ttl"`
}

// DefaultConfig 返回默认认证配置
func DefaultConfig() Config {
	return Config{
		JWTSecret: "",
		TokenTTL:  7 * 24 * time.Hour,
	}
}

// Enabled 是否启用认证
func (c Config) Enabled() bool {
	return c.JWTSecret != ""
}

// ============================================================================
// JWT Token
// ============================================================================

// Claims JWT 声明，身份载荷为用户 email
type Claims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
}

// IssueToken 为给定身份签发令牌
//
// HS256 签名，有效期 cfg.TokenTTL（默认 7 天）。纯计算，无副作用。
func IssueToken(cfg Config, email string) (string, error) {
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(cfg.TokenTTL)),
		},
		Email: email,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(cfg.JWTSecret))
}

// ParseToken 解析并验证 JWT
//
// 过期返回 ErrExpiredToken，签名/格式问题返回 ErrInvalidToken。
// 纯计算，无 I/O。
func ParseToken(cfg Config, tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(cfg.JWTSecret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: %v", ErrExpiredToken, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// ============================================================================
// Context 辅助函数
// ============================================================================

// WithIdentity 将已验证的身份（email）注入 context
func WithIdentity(ctx context.Context, email string) context.Context {
	return context.WithValue(ctx, ctxKeyIdentity, email)
}

// GetIdentity 从 context 获取已验证的身份
// 返回空字符串表示请求未经认证（公开路由）
func GetIdentity(ctx context.Context) string {
	email, _ := ctx.Value(ctxKeyIdentity).(string)
	return email
}

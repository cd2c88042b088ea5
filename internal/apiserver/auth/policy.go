package auth

import (
	"net/url"
	"strings"
)

// AccessLevel 路由访问级别
type AccessLevel int

const (
	// AccessPublic 公开数据，无需认证（课程目录、讲师名录等）
	AccessPublic AccessLevel = iota
	// AccessAuthenticated 需要有效 Bearer 令牌
	AccessAuthenticated
	// AccessOwner 需要有效令牌，且路径中的 {email} 必须等于令牌身份
	AccessOwner
)

// Rule 单条路由策略
//
// Pattern 与路由注册使用同一写法：字面段精确匹配，
// {email} 段捕获资源归属方邮箱，其余 {xxx} 段为通配。
type Rule struct {
	Method  string
	Pattern string
	Level   AccessLevel
}

// Policy 按路由声明的访问策略表
//
// 每条路由的访问级别集中在一张表里统一检查，
// 而不是散落在各 handler 内各自为政。
type Policy []Rule

// DefaultPolicy 返回 Harmonic API 的访问策略表
//
// 公开的目录类数据不做访问控制；个人记录（自己的购物车、
// 购买记录、讲师自己的课程）必须由归属方本人访问。
func DefaultPolicy() Policy {
	return Policy{
		{"GET", "/", AccessPublic},
		{"GET", "/health", AccessPublic},
		{"POST", "/jwt", AccessPublic},
		{"POST", "/create-payment-intent", AccessPublic},

		{"PUT", "/users/{email}", AccessPublic},
		{"GET", "/users", AccessAuthenticated},
		{"GET", "/users/{email}", AccessPublic},

		{"GET", "/classes", AccessAuthenticated},
		{"GET", "/classes/approved", AccessPublic},
		{"GET", "/classes/{email}", AccessOwner},
		{"GET", "/popularClasses", AccessPublic},
		{"GET", "/topInstructor", AccessPublic},
		{"GET", "/topInstructor/{role}", AccessPublic},
		{"POST", "/classes", AccessPublic},
		{"PATCH", "/classes/{id}", AccessPublic},

		{"GET", "/selected/{email}", AccessOwner},
		{"POST", "/selected", AccessPublic},
		{"DELETE", "/selected/{id}", AccessPublic},

		{"POST", "/enrolledClass", AccessPublic},
		{"GET", "/enrolledClasses/{email}", AccessOwner},
		{"GET", "/enrolledClass/{id}", AccessPublic},
	}
}

// Match 在策略表中查找请求对应的规则
//
// path 必须是未解码的转义路径（r.URL.EscapedPath()）：ServeMux 按
// 转义形式匹配通配段，策略表必须看到同一形式，否则段内的 %2F 会
// 让两边对段数产生分歧。{email} 捕获值返回前按段解码，
// 与 r.PathValue 的结果一致。
//
// 返回访问级别和 {email} 段捕获到的归属方邮箱（仅 AccessOwner 规则有意义）。
// 字面段优先于通配段，因此 GET /classes/approved 命中 public 规则
// 而非 GET /classes/{email}。HEAD 按 GET 处理（ServeMux 的 GET 模式
// 同样接受 HEAD）。表中没有的路由视为 public——这样的请求随后会被
// 路由器以 404 拒绝，不会触达任何仓储。
func (p Policy) Match(method, path string) (AccessLevel, string) {
	if method == "HEAD" {
		method = "GET"
	}

	var (
		found      bool
		best       Rule
		bestExact  int
		ownerEmail string
	)

	for _, rule := range p {
		if rule.Method != method {
			continue
		}
		captured, exact, ok := matchPattern(rule.Pattern, path)
		if !ok {
			continue
		}
		if !found || exact > bestExact {
			found = true
			best = rule
			bestExact = exact
			ownerEmail = captured
		}
	}

	if !found {
		return AccessPublic, ""
	}
	return best.Level, ownerEmail
}

// matchPattern 按段匹配路径
//
// 返回 {email} 捕获值、字面段数量（用于优先级）和是否匹配。
func matchPattern(pattern, path string) (email string, exact int, ok bool) {
	if pattern == "/" {
		return "", 0, path == "/"
	}

	pSegs := strings.Split(strings.Trim(pattern, "/"), "/")
	segs := strings.Split(strings.Trim(path, "/"), "/")
	if len(pSegs) != len(segs) {
		return "", 0, false
	}

	for i, ps := range pSegs {
		if strings.HasPrefix(ps, "{") && strings.HasSuffix(ps, "}") {
			if ps == "{email}" {
				email = unescapeSegment(segs[i])
			}
			continue
		}
		if ps != segs[i] {
			return "", 0, false
		}
		exact++
	}
	return email, exact, true
}

// unescapeSegment 解码单个路径段，与 r.PathValue 的解码结果一致
func unescapeSegment(s string) string {
	decoded, err := url.PathUnescape(s)
	if err != nil {
		return s
	}
	return decoded
}

package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"harmonic-server/internal/apiserver/auth"
	"harmonic-server/internal/shared/storage/memstore"
)

type stubIntentCreator struct{}

func (stubIntentCreator) CreateIntent(context.Context, int64) (string, error) {
	return "pi_test_secret", nil
}

func newTestServer(t *testing.T, authCfg auth.Config) http.Handler {
	t.Helper()
	h := NewHandler(memstore.NewStore(), nil, stubIntentCreator{}, authCfg)
	t.Cleanup(h.limiter.Stop)
	return h.Router()
}

func TestRootLiveness(t *testing.T) {
	router := newTestServer(t, auth.Config{})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if got := w.Body.String(); got != "Harmonic server is running ...." {
		t.Errorf("unexpected liveness body %q", got)
	}
}

func TestHealth(t *testing.T) {
	router := newTestServer(t, auth.Config{})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var resp map[string]string
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp["status"] != "ok" {
		t.Errorf("unexpected health response %v", resp)
	}
}

func TestCORSPreflight(t *testing.T) {
	router := newTestServer(t, auth.Config{})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodOptions, "/classes", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 for preflight, got %d", w.Code)
	}
	if w.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("missing CORS allow-origin header")
	}
}

// 端到端：签发令牌，带令牌访问属主路由，无令牌被拒
func TestAuthFlowThroughRouter(t *testing.T) {
	cfg := auth.Config{JWTSecret: "test-secret", TokenTTL: auth.DefaultConfig().TokenTTL}
	router := newTestServer(t, cfg)

	// 无令牌访问属主路由
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/selected/sam@example.com", nil))
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", w.Code)
	}

	// 签发令牌
	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/jwt",
		bytes.NewBufferString(`{"email":"sam@example.com"}`)))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 from /jwt, got %d: %s", w.Code, w.Body.String())
	}
	var tokenResp map[string]string
	json.Unmarshal(w.Body.Bytes(), &tokenResp)
	token := tokenResp["token"]
	if token == "" {
		t.Fatal("no token issued")
	}

	// 本人购物车可访问
	req := httptest.NewRequest(http.MethodGet, "/selected/sam@example.com", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 with token, got %d: %s", w.Code, w.Body.String())
	}

	// 他人购物车被拒
	req = httptest.NewRequest(http.MethodGet, "/selected/other@example.com", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for foreign cart, got %d", w.Code)
	}

	// 公开目录无需令牌
	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/classes/approved", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 for public catalog, got %d", w.Code)
	}
}

func TestPaymentIntentThroughRouter(t *testing.T) {
	router := newTestServer(t, auth.Config{})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/create-payment-intent",
		bytes.NewBufferString(`{"payingAmount":"19.99"}`)))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp map[string]string
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp["clientSecret"] != "pi_test_secret" {
		t.Errorf("unexpected clientSecret %q", resp["clientSecret"])
	}
}

func TestRateLimiterRejectsBursts(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{
		TokenRate:    1,
		TokenBurst:   3,
		PaymentRate:  1,
		PaymentBurst: 3,
	})
	defer rl.Stop()

	for i := 0; i < 3; i++ {
		if !rl.AllowToken("10.0.0.1") {
			t.Fatalf("request %d should be allowed within burst", i)
		}
	}
	if rl.AllowToken("10.0.0.1") {
		t.Error("request beyond burst should be rejected")
	}
	// 不同客户端互不影响
	if !rl.AllowToken("10.0.0.2") {
		t.Error("other client should not be affected")
	}
	// 支付桶独立计数
	if !rl.AllowPayment("10.0.0.1") {
		t.Error("payment bucket should be independent of token bucket")
	}
}

func TestClientIP(t *testing.T) {
	h := NewHandler(memstore.NewStore(), nil, stubIntentCreator{}, auth.Config{})
	t.Cleanup(h.limiter.Stop)

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "192.0.2.1:34567"
	if got := h.clientIP(r); got != "192.0.2.1" {
		t.Errorf("clientIP = %q, want 192.0.2.1", got)
	}

	// 默认不信任代理头：伪造的 X-Forwarded-For 不得改变限流身份
	r.Header.Set("X-Forwarded-For", "203.0.113.9, 192.0.2.1")
	if got := h.clientIP(r); got != "192.0.2.1" {
		t.Errorf("clientIP with untrusted XFF = %q, want 192.0.2.1", got)
	}

	// 显式开启可信代理后，取最左转发地址
	h.limiter.config.TrustProxyHeaders = true
	if got := h.clientIP(r); got != "203.0.113.9" {
		t.Errorf("clientIP with trusted XFF = %q, want 203.0.113.9", got)
	}
}

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"/users/alice@example.com", "/users/{email}"},
		{"/selected/sel-abc123def456", "/selected/{id}"},
		{"/selected/alice@example.com", "/selected/{email}"},
		{"/enrolledClasses/alice@example.com", "/enrolledClasses/{email}"},
		{"/enrolledClass/cls-abc123def456", "/enrolledClass/{id}"},
		{"/topInstructor/instructor", "/topInstructor/{role}"},
		{"/classes/approved", "/classes/approved"},
		{"/classes/cls-abc123def456", "/classes/{id}"},
		{"/classes/ian@example.com", "/classes/{email}"},
		{"/classes", "/classes"},
		{"/health", "/health"},
		{"/", "/"},
	}
	for _, tt := range tests {
		if got := normalizePath(tt.in); got != tt.want {
			t.Errorf("normalizePath(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

// Package payment 支付意向 - HTTP 处理与支付处理器适配
package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
)

// IntentCreator 支付意向创建接口
//
// 一次性调用外部支付处理器，换取客户端完成支付所需的 client secret。
type IntentCreator interface {
	CreateIntent(ctx context.Context, amountCents int64) (clientSecret string, err error)
}

// Handler 支付 HTTP 处理器
type Handler struct {
	intents IntentCreator
}

// NewHandler 创建支付处理器
func NewHandler(intents IntentCreator) *Handler {
	return &Handler{intents: intents}
}

// RegisterRoutes 注册支付相关路由
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /create-payment-intent", h.CreateIntent)
}

type intentRequest struct {
	// PayingAmount 十进制金额，历史客户端既发数字也发数字字符串
	PayingAmount json.Number `json:"payingAmount"`
}

// CreateIntent 创建支付意向
// POST /create-payment-intent
//
// 金额缺失或非法时返回 400 而不是无响应挂起。
func (h *Handler) CreateIntent(w http.ResponseWriter, r *http.Request) {
	var req intentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.PayingAmount == "" {
		writeError(w, http.StatusBadRequest, "payingAmount is required")
		return
	}

	amountCents, err := parseAmountCents(req.PayingAmount.String())
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid payingAmount")
		return
	}
	if amountCents <= 0 {
		writeError(w, http.StatusBadRequest, "payingAmount must be positive")
		return
	}

	clientSecret, err := h.intents.CreateIntent(r.Context(), amountCents)
	if err != nil {
		log.Printf("[Payment] CreateIntent error: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to create payment intent")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"clientSecret": clientSecret})
}

// parseAmountCents 将十进制金额换算为最小货币单位（美分）
//
// 精确的字符串运算，绝不经过浮点："19.99" 必须得到 1999，
// 而 19.99*100 的浮点截断会得到 1998。分以下的位数直接截断。
func parseAmountCents(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.HasPrefix(s, "-") {
		return 0, fmt.Errorf("invalid amount %q", s)
	}

	intPart, fracPart, _ := strings.Cut(s, ".")
	if intPart == "" {
		intPart = "0"
	}

	dollars, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", s, err)
	}

	// 小数部分截断到两位，不足补零
	var cents int64
	if fracPart != "" {
		if len(fracPart) > 2 {
			fracPart = fracPart[:2]
		}
		for len(fracPart) < 2 {
			fracPart += "0"
		}
		cents, err = strconv.ParseInt(fracPart, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid amount %q: %w", s, err)
		}
	}

	return dollars*100 + cents, nil
}

// ============================================================================
// 工具函数
// ============================================================================

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

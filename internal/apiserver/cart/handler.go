// Package cart 选课（购物车）领域 - HTTP 处理
package cart

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"regexp"
	"time"

	"harmonic-server/internal/shared/model"
	"harmonic-server/internal/shared/storage"
)

// Handler 购物车 HTTP 处理器
type Handler struct {
	store storage.SelectionStore
}

// NewHandler 创建购物车处理器
func NewHandler(store storage.SelectionStore) *Handler {
	return &Handler{store: store}
}

// RegisterRoutes 注册购物车相关路由
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /selected/{email}", h.ListByStudent)
	mux.HandleFunc("POST /selected", h.Add)
	mux.HandleFunc("DELETE /selected/{id}", h.Remove)
}

type addRequest struct {
	StudentEmail string  `json:"studentEmail"`
	ClassID      string  `json:"classId"`
	ClassName    string  `json:"className"`
	Image        string  `json:"image"`
	Price        float64 `json:"price"`
}

// Add 加入购物车
// POST /selected
//
// 课程名/图片/价格是客户端提交的快照，之后课程变更不回写。
func (h *Handler) Add(w http.ResponseWriter, r *http.Request) {
	var req addRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !isValidEmail(req.StudentEmail) {
		writeError(w, http.StatusBadRequest, "valid studentEmail is required")
		return
	}
	if req.ClassID == "" {
		writeError(w, http.StatusBadRequest, "classId is required")
		return
	}

	sel := &model.Selection{
		ID:           generateID("sel"),
		StudentEmail: req.StudentEmail,
		ClassID:      req.ClassID,
		ClassName:    req.ClassName,
		Image:        req.Image,
		Price:        req.Price,
		CreatedAt:    time.Now(),
	}

	if err := h.store.CreateSelection(r.Context(), sel); err != nil {
		log.Printf("[Cart] Add error: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to add selection")
		return
	}
	writeJSON(w, http.StatusCreated, sel)
}

// ListByStudent 学生本人的购物车
// GET /selected/{email}
//
// 归属检查由授权中间件完成。
func (h *Handler) ListByStudent(w http.ResponseWriter, r *http.Request) {
	email := r.PathValue("email")
	selections, err := h.store.ListSelectionsByStudent(r.Context(), email)
	if err != nil {
		log.Printf("[Cart] ListByStudent error: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to list selections")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"selections": selections, "count": len(selections)})
}

// Remove 从购物车移除
// DELETE /selected/{id}
//
// 删除不存在的 ID 视为成功的空操作（重复点击、结算竞态都会走到这里）。
func (h *Handler) Remove(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := h.store.DeleteSelection(r.Context(), id); err != nil && !errors.Is(err, storage.ErrNotFound) {
		log.Printf("[Cart] Remove error: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to delete selection")
		return
	}
	w.WriteHeader(http.StatusNoContent)
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

func generateID(prefix string) string {
	b := make([]byte, 6)
	rand.Read(b)
	return prefix + "-" + hex.EncodeToString(b)
}

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

func isValidEmail(email string) bool {
	return emailRegex.MatchString(email)
}

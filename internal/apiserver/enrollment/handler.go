// Package enrollment 购买记录领域 - HTTP 处理
package enrollment

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"regexp"
	"time"

	"harmonic-server/internal/shared/cache"
	"harmonic-server/internal/shared/model"
	"harmonic-server/internal/shared/storage"
)

// Store 购买记录处理器依赖的存储能力
//
// 写入购买记录之外还要递增课程报名数、清理对应的购物车条目。
type Store interface {
	storage.EnrollmentStore
	storage.SelectionStore
	storage.ClassStore
}

// Handler 购买记录 HTTP 处理器
type Handler struct {
	store   Store
	catalog cache.CatalogCache
}

// NewHandler 创建购买记录处理器
func NewHandler(store Store, catalog cache.CatalogCache) *Handler {
	if catalog == nil {
		catalog = cache.NewNoOpCache()
	}
	return &Handler{store: store, catalog: catalog}
}

// RegisterRoutes 注册购买记录相关路由
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /enrolledClass", h.Create)
	mux.HandleFunc("GET /enrolledClasses/{email}", h.ListByStudent)
}

type createRequest struct {
	StudentEmail string  `json:"studentEmail"`
	ClassID      string  `json:"classId"`
	ClassName    string  `json:"className"`
	Image        string  `json:"image"`
	Price        float64 `json:"price"`
	// SelectionID 可选：结算自购物车时带上，购买落库后服务端
	// 顺手删除对应条目，客户端无需再调 DELETE /selected/{id}
	SelectionID string `json:"selectionId"`
}

// Create 记录购买
// POST /enrolledClass
//
// 购买记录、报名数递增、购物车清理是三次独立的存储调用，
// 之间没有跨文档事务：记录写入成功后，后两步失败只记日志，
// 遗留的购物车条目可由显式 DELETE 清理，报名数可能偏低。
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
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

	ec := &model.EnrolledClass{
		ID:           generateID("enr"),
		StudentEmail: req.StudentEmail,
		ClassID:      req.ClassID,
		ClassName:    req.ClassName,
		Image:        req.Image,
		Price:        req.Price,
		Date:         time.Now(),
	}

	if err := h.store.CreateEnrollment(r.Context(), ec); err != nil {
		log.Printf("[Enrollment] Create error: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to record enrollment")
		return
	}

	if err := h.store.IncrementClassEnrolled(r.Context(), req.ClassID); err != nil {
		// 课程可能已被下架，购买记录本身仍然有效
		log.Printf("[Enrollment] increment enrolled count for %s: %v", req.ClassID, err)
	}

	if req.SelectionID != "" {
		if err := h.store.DeleteSelection(r.Context(), req.SelectionID); err != nil && !errors.Is(err, storage.ErrNotFound) {
			log.Printf("[Enrollment] delete selection %s: %v", req.SelectionID, err)
		}
	}

	if err := h.catalog.InvalidateCatalog(r.Context()); err != nil {
		log.Printf("[Enrollment] invalidate catalog cache: %v", err)
	}

	writeJSON(w, http.StatusCreated, ec)
}

// ListByStudent 学生本人的购买记录，按购买时间倒序
// GET /enrolledClasses/{email}
//
// 归属检查由授权中间件完成。
func (h *Handler) ListByStudent(w http.ResponseWriter, r *http.Request) {
	email := r.PathValue("email")
	enrollments, err := h.store.ListEnrollmentsByStudent(r.Context(), email)
	if err != nil {
		log.Printf("[Enrollment] ListByStudent error: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to list enrollments")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"enrollments": enrollments, "count": len(enrollments)})
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

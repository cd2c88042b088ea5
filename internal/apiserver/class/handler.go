// Package class 课程领域 - HTTP 处理
//
// 覆盖课程的完整生命周期：讲师创建（默认 pending）、管理员审核
// （approved/denied + 反馈）、公开目录（approved/热门）查询。
// 公开目录读路径走 CatalogCache，写路径主动失效。
package class

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"log"
	"net/http"
	"regexp"
	"time"

	"harmonic-server/internal/shared/cache"
	"harmonic-server/internal/shared/model"
	"harmonic-server/internal/shared/storage"
)

// popularLimit 热门课程条数
const popularLimit = 6

// Handler 课程领域 HTTP 处理器
type Handler struct {
	store   storage.ClassStore
	catalog cache.CatalogCache
}

// NewHandler 创建课程处理器
func NewHandler(store storage.ClassStore, catalog cache.CatalogCache) *Handler {
	if catalog == nil {
		catalog = cache.NewNoOpCache()
	}
	return &Handler{store: store, catalog: catalog}
}

// RegisterRoutes 注册课程相关路由
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /classes", h.List)
	mux.HandleFunc("GET /classes/approved", h.ListApproved)
	mux.HandleFunc("GET /classes/{email}", h.ListByInstructor)
	mux.HandleFunc("GET /popularClasses", h.ListPopular)
	mux.HandleFunc("POST /classes", h.Create)
	mux.HandleFunc("PATCH /classes/{id}", h.Update)
	// 历史路由名：结算页按 ID 回查课程详情
	mux.HandleFunc("GET /enrolledClass/{id}", h.Get)
}

type createRequest struct {
	Name            string  `json:"name"`
	Image           string  `json:"image"`
	InstructorName  string  `json:"instructorName"`
	InstructorEmail string  `json:"instructorEmail"`
	AvailableSeats  int     `json:"availableSeats"`
	Price           float64 `json:"price"`
}

// Create 创建课程
// POST /classes
//
// 新课程始终以 pending 状态落库，approved/denied 由管理员
// 通过 PATCH 审核设置。instructorEmail 指向角色为 instructor
// 的用户是应用层约定，存储层不做引用完整性检查。
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	if !isValidEmail(req.InstructorEmail) {
		writeError(w, http.StatusBadRequest, "valid instructorEmail is required")
		return
	}
	if req.AvailableSeats < 0 {
		writeError(w, http.StatusBadRequest, "availableSeats must not be negative")
		return
	}
	if req.Price < 0 {
		writeError(w, http.StatusBadRequest, "price must not be negative")
		return
	}

	now := time.Now()
	class := &model.Class{
		ID:              generateID("cls"),
		Name:            req.Name,
		Image:           req.Image,
		InstructorName:  req.InstructorName,
		InstructorEmail: req.InstructorEmail,
		AvailableSeats:  req.AvailableSeats,
		Price:           req.Price,
		Status:          model.ClassStatusPending,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := h.store.CreateClass(r.Context(), class); err != nil {
		log.Printf("[Class] Create error: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to create class")
		return
	}

	h.invalidateCatalog(r)
	writeJSON(w, http.StatusCreated, class)
}

// Update 部分更新课程
// PATCH /classes/{id}
//
// 讲师编辑和管理员审核共用本接口；请求体解析为固定字段集合，
// 未知字段被忽略，非法状态值在存储层之前被拒绝。
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var update storage.ClassUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if update.Empty() {
		writeError(w, http.StatusBadRequest, "no fields to update")
		return
	}
	if update.Status != nil && !update.Status.Valid() {
		writeError(w, http.StatusBadRequest, "invalid status")
		return
	}
	if update.AvailableSeats != nil && *update.AvailableSeats < 0 {
		writeError(w, http.StatusBadRequest, "availableSeats must not be negative")
		return
	}
	if update.Price != nil && *update.Price < 0 {
		writeError(w, http.StatusBadRequest, "price must not be negative")
		return
	}

	if err := h.store.UpdateClass(r.Context(), id, update); err != nil {
		if err == storage.ErrNotFound {
			writeError(w, http.StatusNotFound, "class not found")
			return
		}
		log.Printf("[Class] Update error: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to update class")
		return
	}

	h.invalidateCatalog(r)
	writeJSON(w, http.StatusOK, map[string]string{"message": "class updated"})
}

// Get 按 ID 获取课程详情
// GET /enrolledClass/{id}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	class, err := h.store.GetClass(r.Context(), id)
	if err != nil {
		log.Printf("[Class] Get error: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to get class")
		return
	}
	if class == nil {
		writeError(w, http.StatusNotFound, "class not found")
		return
	}
	writeJSON(w, http.StatusOK, class)
}

// List 列出全部课程（管理后台审核列表）
// GET /classes
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	classes, err := h.store.ListClasses(r.Context())
	if err != nil {
		log.Printf("[Class] List error: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to list classes")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"classes": classes, "count": len(classes)})
}

// ListApproved 公开课程目录
// GET /classes/approved
func (h *Handler) ListApproved(w http.ResponseWriter, r *http.Request) {
	if classes, _ := h.catalog.GetClasses(r.Context(), cache.KeyApprovedClasses); classes != nil {
		writeJSON(w, http.StatusOK, map[string]interface{}{"classes": classes, "count": len(classes)})
		return
	}

	classes, err := h.store.ListClassesByStatus(r.Context(), model.ClassStatusApproved)
	if err != nil {
		log.Printf("[Class] ListApproved error: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to list classes")
		return
	}

	if err := h.catalog.SetClasses(r.Context(), cache.KeyApprovedClasses, classes); err != nil {
		log.Printf("[Class] cache approved classes: %v", err)
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"classes": classes, "count": len(classes)})
}

// ListPopular 热门课程
// GET /popularClasses
//
// 按报名人数倒序，至多 6 条。报名数相同的课程之间次序未定义。
func (h *Handler) ListPopular(w http.ResponseWriter, r *http.Request) {
	if classes, _ := h.catalog.GetClasses(r.Context(), cache.KeyPopularClasses); classes != nil {
		writeJSON(w, http.StatusOK, map[string]interface{}{"classes": classes, "count": len(classes)})
		return
	}

	classes, err := h.store.ListPopularClasses(r.Context(), popularLimit)
	if err != nil {
		log.Printf("[Class] ListPopular error: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to list classes")
		return
	}

	if err := h.catalog.SetClasses(r.Context(), cache.KeyPopularClasses, classes); err != nil {
		log.Printf("[Class] cache popular classes: %v", err)
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"classes": classes, "count": len(classes)})
}

// ListByInstructor 讲师本人的课程列表
// GET /classes/{email}
//
// 归属检查由授权中间件完成，到达这里的请求身份已与 email 一致。
func (h *Handler) ListByInstructor(w http.ResponseWriter, r *http.Request) {
	email := r.PathValue("email")
	classes, err := h.store.ListClassesByInstructor(r.Context(), email)
	if err != nil {
		log.Printf("[Class] ListByInstructor error: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to list classes")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"classes": classes, "count": len(classes)})
}

// invalidateCatalog 课程数据变更后使公开目录缓存失效
func (h *Handler) invalidateCatalog(r *http.Request) {
	if err := h.catalog.InvalidateCatalog(r.Context()); err != nil {
		log.Printf("[Class] invalidate catalog cache: %v", err)
	}
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

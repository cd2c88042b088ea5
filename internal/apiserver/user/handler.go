// Package user 用户领域 - HTTP 处理
package user

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"log"
	"net/http"
	"regexp"
	"time"

	"harmonic-server/internal/shared/model"
	"harmonic-server/internal/shared/storage"
)

// topInstructorLimit 首页讲师名录条数
const topInstructorLimit = 6

// Handler 用户领域 HTTP 处理器
type Handler struct {
	store storage.UserStore // 使用接口类型
}

// NewHandler 创建用户处理器
func NewHandler(store storage.UserStore) *Handler {
	return &Handler{store: store}
}

// RegisterRoutes 注册用户相关路由
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("PUT /users/{email}", h.Upsert)
	mux.HandleFunc("GET /users", h.List)
	mux.HandleFunc("GET /users/{email}", h.Get)
	mux.HandleFunc("GET /topInstructor", h.TopInstructors)
	mux.HandleFunc("GET /topInstructor/{role}", h.ListByRole)
}

type upsertRequest struct {
	Email    string         `json:"email"`
	Name     string         `json:"name"`
	PhotoURL string         `json:"photoURL"`
	Gender   string         `json:"gender"`
	Phone    string         `json:"phone"`
	Address  string         `json:"address"`
	Role     model.UserRole `json:"role"`
}

// Upsert 按 email 创建或更新用户
// PUT /users/{email}
//
// 首次登录时写入用户档案，重复提交同一文档幂等。
// 请求体中的 email 缺省时取路径参数，两者都给出时必须一致。
func (h *Handler) Upsert(w http.ResponseWriter, r *http.Request) {
	email := r.PathValue("email")

	var req upsertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Email == "" {
		req.Email = email
	}
	if req.Email != email {
		writeError(w, http.StatusBadRequest, "body email does not match path email")
		return
	}
	if !isValidEmail(req.Email) {
		writeError(w, http.StatusBadRequest, "invalid email format")
		return
	}
	if req.Role == "" {
		req.Role = model.UserRoleStudent
	}
	if !req.Role.Valid() {
		writeError(w, http.StatusBadRequest, "invalid role")
		return
	}

	now := time.Now()
	user := &model.User{
		ID:        generateID("usr"),
		Email:     req.Email,
		Name:      req.Name,
		PhotoURL:  req.PhotoURL,
		Gender:    req.Gender,
		Phone:     req.Phone,
		Address:   req.Address,
		Role:      req.Role,
		CreatedAt: now,
		UpdatedAt: now,
	}

	// 已存在时 store 保留原 _id/created_at，其余字段整体替换
	if err := h.store.UpsertUserByEmail(r.Context(), user); err != nil {
		log.Printf("[User] Upsert error: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to upsert user")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// Get 获取单个用户
// GET /users/{email}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	email := r.PathValue("email")
	user, err := h.store.GetUserByEmail(r.Context(), email)
	if err != nil {
		log.Printf("[User] Get error: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to get user")
		return
	}
	if user == nil {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// List 列出全部用户（管理后台）
// GET /users
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.store.ListUsers(r.Context())
	if err != nil {
		log.Printf("[User] List error: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to list users")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"users": users, "count": len(users)})
}

// TopInstructors 首页讲师名录
// GET /topInstructor
//
// 固定返回至多 6 位讲师。名次之间无排序语义。
func (h *Handler) TopInstructors(w http.ResponseWriter, r *http.Request) {
	instructors, err := h.store.ListUsersByRole(r.Context(), model.UserRoleInstructor, topInstructorLimit)
	if err != nil {
		log.Printf("[User] TopInstructors error: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to list instructors")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"users": instructors, "count": len(instructors)})
}

// ListByRole 按任意角色列出用户，不限条数
// GET /topInstructor/{role}
func (h *Handler) ListByRole(w http.ResponseWriter, r *http.Request) {
	role := model.UserRole(r.PathValue("role"))
	if !role.Valid() {
		writeError(w, http.StatusBadRequest, "invalid role")
		return
	}

	users, err := h.store.ListUsersByRole(r.Context(), role, 0)
	if err != nil {
		log.Printf("[User] ListByRole error: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to list users")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"users": users, "count": len(users)})
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

// generateID 生成带前缀的唯一标识符（prefix-xxxxxxxxxxxx）
func generateID(prefix string) string {
	b := make([]byte, 6)
	rand.Read(b)
	return prefix + "-" + hex.EncodeToString(b)
}

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

func isValidEmail(email string) bool {
	return emailRegex.MatchString(email)
}

// Package storage 定义持久化存储层抽象接口
//
// 设计原则：依赖倒置 (DIP)
//   - 调用方只依赖接口，不知道具体实现
//   - 具体实现在子包中：mongostore/（生产）、memstore/（测试）
//   - 初始化时在 main 中显式构造并通过依赖注入传入，
//     不存在进程级全局连接句柄
package storage

import (
	"context"

	"harmonic-server/internal/shared/model"
)

// ============================================================================
// 分领域接口（接口隔离，各 handler 只依赖自己需要的部分）
// ============================================================================

// UserStore 用户存储接口
type UserStore interface {
	// UpsertUserByEmail 按 email 创建或整体替换用户（幂等）
	UpsertUserByEmail(ctx context.Context, user *model.User) error
	// GetUserByEmail 按 email 查询，不存在时返回 (nil, nil)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	ListUsers(ctx context.Context) ([]*model.User, error)
	// ListUsersByRole 按角色筛选，limit <= 0 表示不限条数
	ListUsersByRole(ctx context.Context, role model.UserRole, limit int64) ([]*model.User, error)
}

// ClassUpdate 课程部分更新的字段集合
//
// nil 字段表示不更新。请求体在 HTTP 边界解析为本类型，
// 非法字段在到达存储层之前就被拒绝。
type ClassUpdate struct {
	Name           *string            `json:"name,omitempty"`
	Image          *string            `json:"image,omitempty"`
	AvailableSeats *int               `json:"availableSeats,omitempty"`
	Price          *float64           `json:"price,omitempty"`
	Status         *model.ClassStatus `json:"status,omitempty"`
	Feedback       *string            `json:"feedback,omitempty"`
}

// Empty 是否没有任何待更新字段
func (u ClassUpdate) Empty() bool {
	return u.Name == nil && u.Image == nil && u.AvailableSeats == nil &&
		u.Price == nil && u.Status == nil && u.Feedback == nil
}

// ClassStore 课程存储接口
type ClassStore interface {
	CreateClass(ctx context.Context, class *model.Class) error
	// GetClass 按 ID 查询，不存在时返回 (nil, nil)
	GetClass(ctx context.Context, id string) (*model.Class, error)
	ListClasses(ctx context.Context) ([]*model.Class, error)
	ListClassesByStatus(ctx context.Context, status model.ClassStatus) ([]*model.Class, error)
	ListClassesByInstructor(ctx context.Context, email string) ([]*model.Class, error)
	// ListPopularClasses 按报名人数倒序返回至多 limit 条。
	// 相同报名数之间的次序为存储引擎默认序，未定义。
	ListPopularClasses(ctx context.Context, limit int64) ([]*model.Class, error)
	// UpdateClass 部分更新，目标不存在时返回 ErrNotFound
	UpdateClass(ctx context.Context, id string, update ClassUpdate) error
	// IncrementClassEnrolled 报名人数 +1（购买成功后调用）
	IncrementClassEnrolled(ctx context.Context, id string) error
}

// SelectionStore 选课（购物车）存储接口
type SelectionStore interface {
	CreateSelection(ctx context.Context, sel *model.Selection) error
	// GetSelection 按 ID 查询，不存在时返回 (nil, nil)
	GetSelection(ctx context.Context, id string) (*model.Selection, error)
	ListSelectionsByStudent(ctx context.Context, email string) ([]*model.Selection, error)
	// DeleteSelection 按 ID 删除，目标不存在时返回 ErrNotFound
	DeleteSelection(ctx context.Context, id string) error
}

// EnrollmentStore 购买记录存储接口
type EnrollmentStore interface {
	CreateEnrollment(ctx context.Context, ec *model.EnrolledClass) error
	// GetEnrollment 按 ID 查询，不存在时返回 (nil, nil)
	GetEnrollment(ctx context.Context, id string) (*model.EnrolledClass, error)
	// ListEnrollmentsByStudent 按购买时间倒序
	ListEnrollmentsByStudent(ctx context.Context, email string) ([]*model.EnrolledClass, error)
}

// ============================================================================
// 组合接口
// ============================================================================

// PersistentStore 持久化存储组合接口
type PersistentStore interface {
	UserStore
	ClassStore
	SelectionStore
	EnrollmentStore
	Close() error
}

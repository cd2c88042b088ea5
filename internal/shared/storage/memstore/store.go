// Package memstore 实现基于内存的 PersistentStore
//
// 用于 handler 测试和无 MongoDB 的本地开发。与 mongostore 遵循同一契约：
// Get* 不存在时返回 (nil, nil)，删除/更新不存在的 ID 返回 ErrNotFound，
// 重复插入返回 ErrDuplicate。进程退出即丢失数据。
package memstore

import (
	"context"
	"sort"
	"sync"

	"harmonic-server/internal/shared/model"
	"harmonic-server/internal/shared/storage"
)

// Store 内存存储
type Store struct {
	mu          sync.RWMutex
	users       map[string]*model.User // key: email
	classes     map[string]*model.Class
	selections  map[string]*model.Selection
	enrollments map[string]*model.EnrolledClass
}

// NewStore 创建内存存储实例
func NewStore() *Store {
	return &Store{
		users:       make(map[string]*model.User),
		classes:     make(map[string]*model.Class),
		selections:  make(map[string]*model.Selection),
		enrollments: make(map[string]*model.EnrolledClass),
	}
}

// Close 满足 PersistentStore 接口，无资源需要释放
func (s *Store) Close() error { return nil }

// Compile-time interface check
var _ storage.PersistentStore = (*Store)(nil)

// ============================================================================
// UserStore
// ============================================================================

func (s *Store) UpsertUserByEmail(_ context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.users[user.Email]; ok {
		user.ID = existing.ID
		user.CreatedAt = existing.CreatedAt
	}
	cp := *user
	s.users[user.Email] = &cp
	return nil
}

func (s *Store) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[email]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (s *Store) ListUsers(_ context.Context) ([]*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*model.User, 0, len(s.users))
	for _, u := range s.users {
		cp := *u
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *Store) ListUsersByRole(_ context.Context, role model.UserRole, limit int64) ([]*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []*model.User{}
	for _, u := range s.users {
		if u.Role == role {
			cp := *u
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	if limit > 0 && int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

// ============================================================================
// ClassStore
// ============================================================================

func (s *Store) CreateClass(_ context.Context, class *model.Class) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.classes[class.ID]; ok {
		return storage.ErrDuplicate
	}
	cp := *class
	s.classes[class.ID] = &cp
	return nil
}

func (s *Store) GetClass(_ context.Context, id string) (*model.Class, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.classes[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (s *Store) listClassesLocked(match func(*model.Class) bool) []*model.Class {
	out := []*model.Class{}
	for _, c := range s.classes {
		if match(c) {
			cp := *c
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *Store) ListClasses(_ context.Context) ([]*model.Class, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listClassesLocked(func(*model.Class) bool { return true }), nil
}

func (s *Store) ListClassesByStatus(_ context.Context, status model.ClassStatus) ([]*model.Class, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listClassesLocked(func(c *model.Class) bool { return c.Status == status }), nil
}

func (s *Store) ListClassesByInstructor(_ context.Context, email string) ([]*model.Class, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listClassesLocked(func(c *model.Class) bool { return c.InstructorEmail == email }), nil
}

func (s *Store) ListPopularClasses(_ context.Context, limit int64) ([]*model.Class, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := s.listClassesLocked(func(*model.Class) bool { return true })
	sort.SliceStable(out, func(i, j int) bool { return out[i].EnrolledCount > out[j].EnrolledCount })
	if limit > 0 && int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Store) UpdateClass(_ context.Context, id string, update storage.ClassUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.classes[id]
	if !ok {
		return storage.ErrNotFound
	}
	if update.Name != nil {
		c.Name = *update.Name
	}
	if update.Image != nil {
		c.Image = *update.Image
	}
	if update.AvailableSeats != nil {
		c.AvailableSeats = *update.AvailableSeats
	}
	if update.Price != nil {
		c.Price = *update.Price
	}
	if update.Status != nil {
		c.Status = *update.Status
	}
	if update.Feedback != nil {
		c.Feedback = *update.Feedback
	}
	return nil
}

func (s *Store) IncrementClassEnrolled(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.classes[id]
	if !ok {
		return storage.ErrNotFound
	}
	c.EnrolledCount++
	return nil
}

// ============================================================================
// SelectionStore
// ============================================================================

func (s *Store) CreateSelection(_ context.Context, sel *model.Selection) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.selections[sel.ID]; ok {
		return storage.ErrDuplicate
	}
	cp := *sel
	s.selections[sel.ID] = &cp
	return nil
}

func (s *Store) GetSelection(_ context.Context, id string) (*model.Selection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sel, ok := s.selections[id]
	if !ok {
		return nil, nil
	}
	cp := *sel
	return &cp, nil
}

func (s *Store) ListSelectionsByStudent(_ context.Context, email string) ([]*model.Selection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []*model.Selection{}
	for _, sel := range s.selections {
		if sel.StudentEmail == email {
			cp := *sel
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *Store) DeleteSelection(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.selections[id]; !ok {
		return storage.ErrNotFound
	}
	delete(s.selections, id)
	return nil
}

// ============================================================================
// EnrollmentStore
// ============================================================================

func (s *Store) CreateEnrollment(_ context.Context, ec *model.EnrolledClass) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.enrollments[ec.ID]; ok {
		return storage.ErrDuplicate
	}
	cp := *ec
	s.enrollments[ec.ID] = &cp
	return nil
}

func (s *Store) GetEnrollment(_ context.Context, id string) (*model.EnrolledClass, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ec, ok := s.enrollments[id]
	if !ok {
		return nil, nil
	}
	cp := *ec
	return &cp, nil
}

func (s *Store) ListEnrollmentsByStudent(_ context.Context, email string) ([]*model.EnrolledClass, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []*model.EnrolledClass{}
	for _, ec := range s.enrollments {
		if ec.StudentEmail == email {
			cp := *ec
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out, nil
}

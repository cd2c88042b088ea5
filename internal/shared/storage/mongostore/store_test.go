package mongostore

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"harmonic-server/internal/shared/model"
	"harmonic-server/internal/shared/storage"
)

// testStore 创建测试用 Store，使用独立数据库避免污染
func testStore(t *testing.T) *Store {
	t.Helper()

	uri := os.Getenv("MONGO_TEST_URI")
	if uri == "" {
		uri = "mongodb://localhost:27017"
	}

	dbName := "harmonic_test"
	s, err := NewStore(uri, dbName)
	if err != nil {
		t.Skipf("MongoDB not available: %v", err)
	}

	// 清空测试数据库
	ctx := context.Background()
	if err := s.db.Drop(ctx); err != nil {
		t.Fatalf("Failed to drop test database: %v", err)
	}
	// 重新创建索引
	if err := s.ensureIndexes(ctx); err != nil {
		t.Fatalf("Failed to create indexes: %v", err)
	}

	t.Cleanup(func() {
		s.db.Drop(context.Background())
		s.Close()
	})

	return s
}

// Compile-time interface check
var _ storage.PersistentStore = (*Store)(nil)

func TestUserUpsert_Idempotent(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	user := &model.User{
		ID:        "usr-000000000001",
		Email:     "new@x.com",
		Name:      "New User",
		Role:      model.UserRoleStudent,
		CreatedAt: time.Now().UTC().Truncate(time.Millisecond),
		UpdatedAt: time.Now().UTC().Truncate(time.Millisecond),
	}

	if err := s.UpsertUserByEmail(ctx, user); err != nil {
		t.Fatalf("UpsertUserByEmail: %v", err)
	}

	// 完全相同的文档再次提交：不能产生第二条记录
	again := *user
	again.ID = "usr-000000000002" // 调用方生成了新 ID，store 必须保留原 _id
	if err := s.UpsertUserByEmail(ctx, &again); err != nil {
		t.Fatalf("UpsertUserByEmail(again): %v", err)
	}
	if again.ID != "usr-000000000001" {
		t.Errorf("Upsert should preserve original ID, got %q", again.ID)
	}

	users, err := s.ListUsers(ctx)
	if err != nil {
		t.Fatalf("ListUsers: %v", err)
	}
	if len(users) != 1 {
		t.Errorf("ListUsers len = %d, want 1", len(users))
	}

	got, err := s.GetUserByEmail(ctx, "new@x.com")
	if err != nil {
		t.Fatalf("GetUserByEmail: %v", err)
	}
	if got.Role != model.UserRoleStudent {
		t.Errorf("Role = %q, want student", got.Role)
	}
}

func TestUserUpsert_ReplacesFields(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Millisecond)
	user := &model.User{ID: "usr-1", Email: "a@x.com", Name: "A", Role: model.UserRoleStudent, CreatedAt: now, UpdatedAt: now}
	if err := s.UpsertUserByEmail(ctx, user); err != nil {
		t.Fatalf("UpsertUserByEmail: %v", err)
	}

	// 角色升级为 instructor
	updated := &model.User{ID: "usr-ignored", Email: "a@x.com", Name: "A", Role: model.UserRoleInstructor, CreatedAt: now, UpdatedAt: now.Add(time.Hour)}
	if err := s.UpsertUserByEmail(ctx, updated); err != nil {
		t.Fatalf("UpsertUserByEmail(update): %v", err)
	}

	got, _ := s.GetUserByEmail(ctx, "a@x.com")
	if got.Role != model.UserRoleInstructor {
		t.Errorf("Role = %q, want instructor", got.Role)
	}
	if got.ID != "usr-1" {
		t.Errorf("ID = %q, want usr-1", got.ID)
	}
	if !got.CreatedAt.Equal(now) {
		t.Errorf("CreatedAt changed on upsert: %v != %v", got.CreatedAt, now)
	}
}

func TestUsersByRole(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Millisecond)
	for _, u := range []*model.User{
		{ID: "usr-1", Email: "i1@x.com", Role: model.UserRoleInstructor, CreatedAt: now, UpdatedAt: now},
		{ID: "usr-2", Email: "i2@x.com", Role: model.UserRoleInstructor, CreatedAt: now, UpdatedAt: now},
		{ID: "usr-3", Email: "s1@x.com", Role: model.UserRoleStudent, CreatedAt: now, UpdatedAt: now},
	} {
		if err := s.UpsertUserByEmail(ctx, u); err != nil {
			t.Fatalf("UpsertUserByEmail(%s): %v", u.Email, err)
		}
	}

	instructors, err := s.ListUsersByRole(ctx, model.UserRoleInstructor, 6)
	if err != nil {
		t.Fatalf("ListUsersByRole: %v", err)
	}
	if len(instructors) != 2 {
		t.Errorf("instructors len = %d, want 2", len(instructors))
	}

	// limit <= 0 表示不限条数
	all, err := s.ListUsersByRole(ctx, model.UserRoleInstructor, 0)
	if err != nil {
		t.Fatalf("ListUsersByRole(unlimited): %v", err)
	}
	if len(all) != 2 {
		t.Errorf("unlimited len = %d, want 2", len(all))
	}

	// limit 截断
	one, err := s.ListUsersByRole(ctx, model.UserRoleInstructor, 1)
	if err != nil {
		t.Fatalf("ListUsersByRole(1): %v", err)
	}
	if len(one) != 1 {
		t.Errorf("limited len = %d, want 1", len(one))
	}
}

func TestClassCRUD(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Millisecond)
	class := &model.Class{
		ID:              "cls-001",
		Name:            "Jazz Piano",
		InstructorName:  "Ann",
		InstructorEmail: "ann@x.com",
		AvailableSeats:  10,
		Price:           19.99,
		Status:          model.ClassStatusPending,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.CreateClass(ctx, class); err != nil {
		t.Fatalf("CreateClass: %v", err)
	}

	// Duplicate insert
	if err := s.CreateClass(ctx, class); !errors.Is(err, storage.ErrDuplicate) {
		t.Errorf("duplicate CreateClass error = %v, want ErrDuplicate", err)
	}

	// Get
	got, err := s.GetClass(ctx, "cls-001")
	if err != nil {
		t.Fatalf("GetClass: %v", err)
	}
	if got.Status != model.ClassStatusPending {
		t.Errorf("Status = %q, want pending", got.Status)
	}

	// Get not found → (nil, nil)
	missing, err := s.GetClass(ctx, "nonexistent")
	if err != nil || missing != nil {
		t.Errorf("GetClass(nonexistent) = (%v, %v), want (nil, nil)", missing, err)
	}

	// 审核通过
	approved := model.ClassStatusApproved
	if err := s.UpdateClass(ctx, "cls-001", storage.ClassUpdate{Status: &approved}); err != nil {
		t.Fatalf("UpdateClass: %v", err)
	}
	got, _ = s.GetClass(ctx, "cls-001")
	if got.Status != model.ClassStatusApproved {
		t.Errorf("Status = %q, want approved", got.Status)
	}

	// 按状态筛选
	list, err := s.ListClassesByStatus(ctx, model.ClassStatusApproved)
	if err != nil {
		t.Fatalf("ListClassesByStatus: %v", err)
	}
	if len(list) != 1 {
		t.Errorf("approved len = %d, want 1", len(list))
	}

	// 按讲师筛选
	mine, err := s.ListClassesByInstructor(ctx, "ann@x.com")
	if err != nil {
		t.Fatalf("ListClassesByInstructor: %v", err)
	}
	if len(mine) != 1 {
		t.Errorf("instructor classes len = %d, want 1", len(mine))
	}

	// 更新不存在的课程
	if err := s.UpdateClass(ctx, "nonexistent", storage.ClassUpdate{Status: &approved}); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("UpdateClass(nonexistent) error = %v, want ErrNotFound", err)
	}
}

func TestPopularClasses_OrderAndLimit(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Millisecond)
	counts := []int{3, 9, 1, 7, 5, 0, 8, 2}
	for i, c := range counts {
		class := &model.Class{
			ID:              "cls-" + string(rune('a'+i)),
			Name:            "Class",
			InstructorEmail: "ann@x.com",
			Status:          model.ClassStatusApproved,
			EnrolledCount:   c,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		if err := s.CreateClass(ctx, class); err != nil {
			t.Fatalf("CreateClass(%d): %v", i, err)
		}
	}

	popular, err := s.ListPopularClasses(ctx, 6)
	if err != nil {
		t.Fatalf("ListPopularClasses: %v", err)
	}
	if len(popular) != 6 {
		t.Fatalf("popular len = %d, want 6", len(popular))
	}
	for i := 1; i < len(popular); i++ {
		if popular[i].EnrolledCount > popular[i-1].EnrolledCount {
			t.Errorf("popular not in descending order at %d: %d > %d", i, popular[i].EnrolledCount, popular[i-1].EnrolledCount)
		}
	}
	if popular[0].EnrolledCount != 9 {
		t.Errorf("top enrolled = %d, want 9", popular[0].EnrolledCount)
	}
}

func TestIncrementClassEnrolled(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Millisecond)
	class := &model.Class{ID: "cls-001", Name: "X", Status: model.ClassStatusApproved, CreatedAt: now, UpdatedAt: now}
	if err := s.CreateClass(ctx, class); err != nil {
		t.Fatalf("CreateClass: %v", err)
	}

	if err := s.IncrementClassEnrolled(ctx, "cls-001"); err != nil {
		t.Fatalf("IncrementClassEnrolled: %v", err)
	}
	if err := s.IncrementClassEnrolled(ctx, "cls-001"); err != nil {
		t.Fatalf("IncrementClassEnrolled(2): %v", err)
	}

	got, _ := s.GetClass(ctx, "cls-001")
	if got.EnrolledCount != 2 {
		t.Errorf("EnrolledCount = %d, want 2", got.EnrolledCount)
	}

	if err := s.IncrementClassEnrolled(ctx, "nonexistent"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("IncrementClassEnrolled(nonexistent) error = %v, want ErrNotFound", err)
	}
}

func TestSelectionCRUD(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Millisecond)
	sels := []*model.Selection{
		{ID: "sel-1", StudentEmail: "stu@x.com", ClassID: "cls-1", ClassName: "A", Price: 10, CreatedAt: now},
		{ID: "sel-2", StudentEmail: "stu@x.com", ClassID: "cls-2", ClassName: "B", Price: 20, CreatedAt: now},
		{ID: "sel-3", StudentEmail: "other@x.com", ClassID: "cls-1", ClassName: "A", Price: 10, CreatedAt: now},
	}
	for _, sel := range sels {
		if err := s.CreateSelection(ctx, sel); err != nil {
			t.Fatalf("CreateSelection(%s): %v", sel.ID, err)
		}
	}

	mine, err := s.ListSelectionsByStudent(ctx, "stu@x.com")
	if err != nil {
		t.Fatalf("ListSelectionsByStudent: %v", err)
	}
	if len(mine) != 2 {
		t.Errorf("selections len = %d, want 2", len(mine))
	}

	// 删除恰好移除目标记录，不影响其他记录
	if err := s.DeleteSelection(ctx, "sel-1"); err != nil {
		t.Fatalf("DeleteSelection: %v", err)
	}
	mine, _ = s.ListSelectionsByStudent(ctx, "stu@x.com")
	if len(mine) != 1 || mine[0].ID != "sel-2" {
		t.Errorf("after delete, selections = %+v, want only sel-2", mine)
	}
	others, _ := s.ListSelectionsByStudent(ctx, "other@x.com")
	if len(others) != 1 {
		t.Errorf("other student's selections affected: len = %d, want 1", len(others))
	}

	// 删除不存在的 ID → ErrNotFound（HTTP 层视为成功的空操作）
	if err := s.DeleteSelection(ctx, "sel-1"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("DeleteSelection(missing) error = %v, want ErrNotFound", err)
	}
}

func TestEnrollmentOrder(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	base := time.Now().UTC().Truncate(time.Millisecond)
	for i, d := range []time.Duration{0, 2 * time.Hour, time.Hour} {
		ec := &model.EnrolledClass{
			ID:           "enr-" + string(rune('a'+i)),
			StudentEmail: "stu@x.com",
			ClassID:      "cls-1",
			ClassName:    "A",
			Date:         base.Add(d),
		}
		if err := s.CreateEnrollment(ctx, ec); err != nil {
			t.Fatalf("CreateEnrollment(%d): %v", i, err)
		}
	}

	list, err := s.ListEnrollmentsByStudent(ctx, "stu@x.com")
	if err != nil {
		t.Fatalf("ListEnrollmentsByStudent: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("enrollments len = %d, want 3", len(list))
	}
	// 按购买时间倒序
	if list[0].ID != "enr-b" || list[1].ID != "enr-c" || list[2].ID != "enr-a" {
		t.Errorf("enrollments not in date-desc order: %s, %s, %s", list[0].ID, list[1].ID, list[2].ID)
	}

	got, err := s.GetEnrollment(ctx, "enr-a")
	if err != nil {
		t.Fatalf("GetEnrollment: %v", err)
	}
	if got.StudentEmail != "stu@x.com" {
		t.Errorf("StudentEmail = %q", got.StudentEmail)
	}
}

package mongostore

import (
	"context"

	"harmonic-server/internal/shared/model"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// ============================================================================
// UserStore
// ============================================================================

// UpsertUserByEmail 按 email 创建或整体替换用户
//
// 已存在时保留原 _id 和 created_at，其余字段整体替换，
// 重复提交同一文档不会产生第二条记录。
func (s *Store) UpsertUserByEmail(ctx context.Context, user *model.User) error {
	existing, err := s.GetUserByEmail(ctx, user.Email)
	if err != nil {
		return err
	}
	if existing != nil {
		user.ID = existing.ID
		user.CreatedAt = existing.CreatedAt
	}

	opts := options.Replace().SetUpsert(true)
	_, err = s.col(ColUsers).ReplaceOne(ctx, bson.D{{Key: "email", Value: user.Email}}, user, opts)
	return wrapError(err)
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	return findOne[model.User](ctx, s.col(ColUsers), bson.D{{Key: "email", Value: email}})
}

func (s *Store) ListUsers(ctx context.Context) ([]*model.User, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	return findMany[model.User](ctx, s.col(ColUsers), bson.D{}, opts)
}

func (s *Store) ListUsersByRole(ctx context.Context, role model.UserRole, limit int64) ([]*model.User, error) {
	opts := options.Find()
	if limit > 0 {
		opts = opts.SetLimit(limit)
	}
	return findMany[model.User](ctx, s.col(ColUsers), bson.D{{Key: "role", Value: role}}, opts)
}

package mongostore

import (
	"context"
	"time"

	"harmonic-server/internal/shared/model"
	"harmonic-server/internal/shared/storage"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// ============================================================================
// ClassStore
// ============================================================================

func (s *Store) CreateClass(ctx context.Context, class *model.Class) error {
	return insertOne(ctx, s.col(ColClasses), class)
}

func (s *Store) GetClass(ctx context.Context, id string) (*model.Class, error) {
	return findOne[model.Class](ctx, s.col(ColClasses), bson.D{{Key: "_id", Value: id}})
}

func (s *Store) ListClasses(ctx context.Context) ([]*model.Class, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	return findMany[model.Class](ctx, s.col(ColClasses), bson.D{}, opts)
}

func (s *Store) ListClassesByStatus(ctx context.Context, status model.ClassStatus) ([]*model.Class, error) {
	return findMany[model.Class](ctx, s.col(ColClasses), bson.D{{Key: "status", Value: status}})
}

func (s *Store) ListClassesByInstructor(ctx context.Context, email string) ([]*model.Class, error) {
	return findMany[model.Class](ctx, s.col(ColClasses), bson.D{{Key: "instructor_email", Value: email}})
}

// ListPopularClasses 按报名人数倒序返回至多 limit 条。
// 相同报名数之间的次序由 MongoDB 决定，未定义。
func (s *Store) ListPopularClasses(ctx context.Context, limit int64) ([]*model.Class, error) {
	opts := options.Find().SetSort(bson.D{{Key: "enrolled_count", Value: -1}}).SetLimit(limit)
	return findMany[model.Class](ctx, s.col(ColClasses), bson.D{}, opts)
}

func (s *Store) UpdateClass(ctx context.Context, id string, update storage.ClassUpdate) error {
	set := bson.D{{Key: "updated_at", Value: time.Now()}}
	if update.Name != nil {
		set = append(set, bson.E{Key: "name", Value: *update.Name})
	}
	if update.Image != nil {
		set = append(set, bson.E{Key: "image", Value: *update.Image})
	}
	if update.AvailableSeats != nil {
		set = append(set, bson.E{Key: "available_seats", Value: *update.AvailableSeats})
	}
	if update.Price != nil {
		set = append(set, bson.E{Key: "price", Value: *update.Price})
	}
	if update.Status != nil {
		set = append(set, bson.E{Key: "status", Value: *update.Status})
	}
	if update.Feedback != nil {
		set = append(set, bson.E{Key: "feedback", Value: *update.Feedback})
	}
	return updateByID(ctx, s.col(ColClasses), id, set)
}

func (s *Store) IncrementClassEnrolled(ctx context.Context, id string) error {
	res, err := s.col(ColClasses).UpdateOne(ctx,
		bson.D{{Key: "_id", Value: id}},
		bson.D{
			{Key: "$inc", Value: bson.D{{Key: "enrolled_count", Value: 1}}},
			{Key: "$set", Value: bson.D{{Key: "updated_at", Value: time.Now()}}},
		})
	if err != nil {
		return wrapError(err)
	}
	if res.MatchedCount == 0 {
		return storage.ErrNotFound
	}
	return nil
}

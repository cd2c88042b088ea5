package mongostore

import (
	"context"

	"harmonic-server/internal/shared/model"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// ============================================================================
// EnrollmentStore
// ============================================================================

func (s *Store) CreateEnrollment(ctx context.Context, ec *model.EnrolledClass) error {
	return insertOne(ctx, s.col(ColEnrolledClasses), ec)
}

func (s *Store) GetEnrollment(ctx context.Context, id string) (*model.EnrolledClass, error) {
	return findOne[model.EnrolledClass](ctx, s.col(ColEnrolledClasses), bson.D{{Key: "_id", Value: id}})
}

func (s *Store) ListEnrollmentsByStudent(ctx context.Context, email string) ([]*model.EnrolledClass, error) {
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: -1}})
	return findMany[model.EnrolledClass](ctx, s.col(ColEnrolledClasses), bson.D{{Key: "student_email", Value: email}}, opts)
}

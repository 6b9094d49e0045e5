package mongostore

import (
	"context"

	"afro-class/internal/shared/model"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// ============================================================================
// FileStore
// ============================================================================

func (s *Store) CreateFile(ctx context.Context, f *model.File) error {
	return insertOne(ctx, s.col(ColFiles), f)
}

func (s *Store) GetFile(ctx context.Context, id string) (*model.File, error) {
	return findOne[model.File](ctx, s.col(ColFiles), bson.D{{Key: "_id", Value: id}})
}

func (s *Store) DeleteFile(ctx context.Context, id string) error {
	return deleteByID(ctx, s.col(ColFiles), id)
}

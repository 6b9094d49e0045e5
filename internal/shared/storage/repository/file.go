package repository

import (
	"context"

	"afro-class/internal/shared/model"
	"afro-class/internal/shared/storage"
)

// CreateFile 创建文件记录
func (s *Store) CreateFile(ctx context.Context, f *model.File) error {
	query := s.rebind(`INSERT INTO files (id, object_key, name, content_type, size, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`)
	_, err := s.db.ExecContext(ctx, query,
		f.ID, f.Key, f.Name, f.ContentType, f.Size, f.CreatedAt.UTC())
	return s.wrapError(err)
}

// GetFile 获取文件记录
func (s *Store) GetFile(ctx context.Context, id string) (*model.File, error) {
	f := &model.File{}
	query := s.rebind(`SELECT id, object_key, name, content_type, size, created_at FROM files WHERE id = $1`)
	err := s.db.QueryRowContext(ctx, query, id).
		Scan(&f.ID, &f.Key, &f.Name, &f.ContentType, &f.Size, &f.CreatedAt)
	if err != nil {
		return nil, s.wrapError(err)
	}
	return f, nil
}

// DeleteFile 删除文件记录
func (s *Store) DeleteFile(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, s.rebind(`DELETE FROM files WHERE id = $1`), id)
	if err != nil {
		return s.wrapError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

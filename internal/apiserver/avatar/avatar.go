// Package avatar 头像上传与下载
//
// 头像内容保存在对象存储（MinIO），files 集合/表中保存 File 记录，
// 成员档案的 avatar 字段引用 File 的 ID。
package avatar

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"path"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"

	"afro-class/internal/shared/model"
	"afro-class/internal/shared/objstore"
	"afro-class/internal/shared/storage"
)

// MaxSize 头像最大字节数
const MaxSize = 5 << 20

var (
	// ErrInvalidAvatar 头像内容不合法（过大、为空或不是图片）
	ErrInvalidAvatar = errors.New("invalid avatar")
	// ErrUnavailable 未配置对象存储
	ErrUnavailable = errors.New("avatar upload is not available")
)

// ObjectStore 头像所需的对象存储能力，*objstore.Client 实现此接口
type ObjectStore interface {
	Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error
	Download(ctx context.Context, key string) (io.ReadCloser, objstore.ObjectInfo, error)
	Delete(ctx context.Context, key string) error
}

// Service 头像服务
type Service struct {
	files   storage.FileStore
	objects ObjectStore // 可为 nil
}

// NewService 创建头像服务，objects 为 nil 时拒绝上传
func NewService(files storage.FileStore, objects ObjectStore) *Service {
	return &Service{files: files, objects: objects}
}

// Enabled 是否可以上传
func (s *Service) Enabled() bool {
	return s.objects != nil
}

// Save 校验并保存上传的头像，返回 File 记录
func (s *Service) Save(ctx context.Context, fh *multipart.FileHeader) (*model.File, error) {
	if s.objects == nil {
		return nil, ErrUnavailable
	}
	if fh.Size > MaxSize {
		return nil, fmt.Errorf("%w: file exceeds %d bytes", ErrInvalidAvatar, MaxSize)
	}

	src, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	return s.save(ctx, fh.Filename, src)
}

func (s *Service) save(ctx context.Context, filename string, src io.Reader) (*model.File, error) {
	// 多读一个字节用于判断是否超限
	data, err := io.ReadAll(io.LimitReader(src, MaxSize+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: file is empty", ErrInvalidAvatar)
	}
	if len(data) > MaxSize {
		return nil, fmt.Errorf("%w: file exceeds %d bytes", ErrInvalidAvatar, MaxSize)
	}

	mt := mimetype.Detect(data)
	if !strings.HasPrefix(mt.String(), "image/") {
		return nil, fmt.Errorf("%w: unsupported content type %s", ErrInvalidAvatar, mt.String())
	}

	f := &model.File{
		ID:          model.NewID(),
		Name:        path.Base(filename),
		ContentType: mt.String(),
		Size:        int64(len(data)),
		CreatedAt:   time.Now().UTC(),
	}
	f.Key = "avatars/" + f.ID + mt.Extension()

	if err := s.objects.Upload(ctx, f.Key, bytes.NewReader(data), f.Size, f.ContentType); err != nil {
		return nil, fmt.Errorf("upload avatar: %w", err)
	}
	if err := s.files.CreateFile(ctx, f); err != nil {
		if delErr := s.objects.Delete(ctx, f.Key); delErr != nil {
			log.Printf("[avatar] cleanup object %s failed: %v", f.Key, delErr)
		}
		return nil, fmt.Errorf("create file record: %w", err)
	}
	return f, nil
}

// Remove 删除 File 记录与对象，默认头像不删除
func (s *Service) Remove(ctx context.Context, id string) error {
	if id == model.DefaultAvatarID {
		return nil
	}
	f, err := s.files.GetFile(ctx, id)
	if err != nil {
		return err
	}
	if err := s.files.DeleteFile(ctx, id); err != nil {
		return err
	}
	if s.objects != nil {
		if err := s.objects.Delete(ctx, f.Key); err != nil {
			return fmt.Errorf("delete object %s: %w", f.Key, err)
		}
	}
	return nil
}

// Exists 头像 ID 是否指向已有 File 记录（默认头像始终存在）
func (s *Service) Exists(ctx context.Context, id string) (bool, error) {
	if id == model.DefaultAvatarID {
		return true, nil
	}
	if !model.IsValidID(id) {
		return false, nil
	}
	_, err := s.files.GetFile(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Open 打开头像内容，调用方负责关闭
func (s *Service) Open(ctx context.Context, id string) (*model.File, io.ReadCloser, error) {
	if !model.IsValidID(id) {
		return nil, nil, storage.ErrNotFound
	}
	f, err := s.files.GetFile(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if s.objects == nil {
		return nil, nil, storage.ErrNotFound
	}
	rc, _, err := s.objects.Download(ctx, f.Key)
	if errors.Is(err, objstore.ErrObjectNotFound) {
		return nil, nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, nil, err
	}
	return f, rc, nil
}

// EnsureDefault 确保默认头像记录存在
func EnsureDefault(ctx context.Context, files storage.FileStore) error {
	_, err := files.GetFile(ctx, model.DefaultAvatarID)
	if err == nil {
		return nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return err
	}
	if err := files.CreateFile(ctx, model.DefaultAvatarFile()); err != nil && !errors.Is(err, storage.ErrDuplicate) {
		return err
	}
	log.Printf("[avatar] default avatar record created")
	return nil
}

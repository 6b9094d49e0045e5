package avatar

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"afro-class/internal/shared/model"
	"afro-class/internal/shared/objstore"
	"afro-class/internal/shared/storage"
)

// pngHeader 最小 PNG 头，足以被识别为 image/png
var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")

type fakeObjects struct {
	mu      sync.Mutex
	objects map[string][]byte
	failUp  bool
}

func newFakeObjects() *fakeObjects {
	return &fakeObjects{objects: make(map[string][]byte)}
}

func (f *fakeObjects) Upload(_ context.Context, key string, reader io.Reader, _ int64, _ string) error {
	if f.failUp {
		return errors.New("upload failed")
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[key] = data
	return nil
}

func (f *fakeObjects) Download(_ context.Context, key string) (io.ReadCloser, objstore.ObjectInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.objects[key]
	if !ok {
		return nil, objstore.ObjectInfo{}, objstore.ErrObjectNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), objstore.ObjectInfo{Size: int64(len(data))}, nil
}

func (f *fakeObjects) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, key)
	return nil
}

type fakeFiles struct {
	mu    sync.Mutex
	files map[string]*model.File
}

func newFakeFiles() *fakeFiles {
	return &fakeFiles{files: make(map[string]*model.File)}
}

func (f *fakeFiles) CreateFile(_ context.Context, file *model.File) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.files[file.ID]; ok {
		return storage.ErrDuplicate
	}
	cp := *file
	f.files[file.ID] = &cp
	return nil
}

func (f *fakeFiles) GetFile(_ context.Context, id string) (*model.File, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	file, ok := f.files[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	cp := *file
	return &cp, nil
}

func (f *fakeFiles) DeleteFile(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.files[id]; !ok {
		return storage.ErrNotFound
	}
	delete(f.files, id)
	return nil
}

// fileHeader 构造一个经过 multipart 解析的上传文件
func fileHeader(t *testing.T, name string, data []byte) *multipart.FileHeader {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("avatar", name)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(MaxSize*2))
	return req.MultipartForm.File["avatar"][0]
}

func TestService_Save(t *testing.T) {
	objects := newFakeObjects()
	files := newFakeFiles()
	svc := NewService(files, objects)
	ctx := context.Background()

	f, err := svc.Save(ctx, fileHeader(t, "me.png", pngHeader))
	require.NoError(t, err)
	assert.True(t, model.IsValidID(f.ID))
	assert.Equal(t, "avatars/"+f.ID+".png", f.Key)
	assert.Equal(t, "image/png", f.ContentType)
	assert.Equal(t, "me.png", f.Name)
	assert.Equal(t, int64(len(pngHeader)), f.Size)
	assert.Contains(t, objects.objects, f.Key)

	ok, err := svc.Exists(ctx, f.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	meta, rc, err := svc.Open(ctx, f.ID)
	require.NoError(t, err)
	defer rc.Close()
	data, _ := io.ReadAll(rc)
	assert.Equal(t, pngHeader, data)
	assert.Equal(t, f.Key, meta.Key)

	require.NoError(t, svc.Remove(ctx, f.ID))
	assert.NotContains(t, objects.objects, f.Key)
	_, _, err = svc.Open(ctx, f.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestService_SaveRejects(t *testing.T) {
	svc := NewService(newFakeFiles(), newFakeObjects())
	ctx := context.Background()

	_, err := svc.Save(ctx, fileHeader(t, "notes.txt", []byte("hello world")))
	assert.ErrorIs(t, err, ErrInvalidAvatar)

	_, err = svc.Save(ctx, fileHeader(t, "empty.png", nil))
	assert.ErrorIs(t, err, ErrInvalidAvatar)

	big := append(append([]byte{}, pngHeader...), make([]byte, MaxSize)...)
	_, err = svc.save(ctx, "big.png", bytes.NewReader(big))
	assert.ErrorIs(t, err, ErrInvalidAvatar)

	unavailable := NewService(newFakeFiles(), nil)
	assert.False(t, unavailable.Enabled())
	_, err = unavailable.Save(ctx, fileHeader(t, "me.png", pngHeader))
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestService_SaveUploadFailure(t *testing.T) {
	objects := newFakeObjects()
	objects.failUp = true
	files := newFakeFiles()
	svc := NewService(files, objects)

	_, err := svc.Save(context.Background(), fileHeader(t, "me.png", pngHeader))
	require.Error(t, err)
	assert.Empty(t, files.files)
}

func TestService_Exists(t *testing.T) {
	svc := NewService(newFakeFiles(), nil)
	ctx := context.Background()

	ok, err := svc.Exists(ctx, model.DefaultAvatarID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.Exists(ctx, model.NewID())
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = svc.Exists(ctx, "bogus")
	require.NoError(t, err)
	assert.False(t, ok)

	// 默认头像不会被删除
	assert.NoError(t, svc.Remove(ctx, model.DefaultAvatarID))
}

func TestEnsureDefault(t *testing.T) {
	files := newFakeFiles()
	ctx := context.Background()

	require.NoError(t, EnsureDefault(ctx, files))
	require.NoError(t, EnsureDefault(ctx, files))

	f, err := files.GetFile(ctx, model.DefaultAvatarID)
	require.NoError(t, err)
	assert.Equal(t, "avatars/default.png", f.Key)
}

func TestHandler_Get(t *testing.T) {
	objects := newFakeObjects()
	svc := NewService(newFakeFiles(), objects)
	f, err := svc.Save(context.Background(), fileHeader(t, "me.png", pngHeader))
	require.NoError(t, err)

	mux := http.NewServeMux()
	NewHandler(svc).RegisterRoutes(mux)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/files/"+f.ID, nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.Equal(t, pngHeader, rec.Body.Bytes())

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/files/"+model.NewID(), nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "File not found"))

	// 记录存在但对象缺失
	delete(objects.objects, f.Key)
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/files/"+f.ID, nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// Package repository SQLite 集成测试
//
// 使用 SQLite 内存数据库验证 repository 层所有存储接口的正确性。
// 无需外部数据库依赖，可在任何环境下运行。
package repository

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"afro-class/internal/shared/model"
	"afro-class/internal/shared/storage"
	"afro-class/internal/shared/storage/dbutil"
	sqlitedriver "afro-class/internal/shared/storage/driver/sqlite"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestStore 创建用于测试的 SQLite 内存数据库 Store
func newTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := sqlitedriver.Open(":memory:")
	require.NoError(t, err)
	dialect := sqlitedriver.NewDialect()
	require.NoError(t, dialect.AutoMigrate(db))
	store := NewStore(db, dialect)
	t.Cleanup(func() { store.Close() })
	return store
}

func newPerson(role model.Role, email, userName string) *model.Person {
	now := time.Now().UTC().Truncate(time.Second)
	p := &model.Person{
		ID:           model.NewID(),
		Role:         role,
		Email:        email,
		UserName:     userName,
		Name:         "Alice",
		Gender:       model.GenderFemale,
		PasswordHash: "$2a$04$hash",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	p.ApplyDefaults()
	return p
}

// ============================================================================
// Dialect 基础测试
// ============================================================================

func TestDialectTypes(t *testing.T) {
	d := sqlitedriver.NewDialect()
	assert.Equal(t, dbutil.DriverSQLite, d.DriverType())
	assert.False(t, d.IsUniqueViolation(nil))
	assert.False(t, d.IsUniqueViolation(fmt.Errorf("boom")))
}

func TestRebind(t *testing.T) {
	d := sqlitedriver.NewDialect()
	assert.Equal(t, "SELECT * FROM t WHERE id = ? AND name = ?",
		d.Rebind("SELECT * FROM t WHERE id = $1 AND name = $2"))
}

// ============================================================================
// Person 测试
// ============================================================================

func TestPersonCRUD(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	grade := 71.5
	p := newPerson(model.RoleStudent, "a@x.com", "alice")
	p.Grade = &grade

	// Create
	require.NoError(t, s.CreatePerson(ctx, model.RoleStudent, p))

	// Get
	got, err := s.GetPersonByID(ctx, model.RoleStudent, p.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RoleStudent, got.Role)
	assert.Equal(t, "a@x.com", got.Email)
	assert.Equal(t, "alice", got.UserName)
	assert.Equal(t, model.GenderFemale, got.Gender)
	assert.Equal(t, model.DefaultBio, got.Bio)
	assert.Equal(t, model.DefaultAvatarID, got.Avatar)
	assert.Equal(t, "$2a$04$hash", got.PasswordHash)
	require.NotNil(t, got.Grade)
	assert.Equal(t, 71.5, *got.Grade)
	assert.Nil(t, got.Subjects)
	assert.True(t, p.CreatedAt.Equal(got.CreatedAt))

	got, err = s.GetPersonByEmail(ctx, model.RoleStudent, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)

	got, err = s.GetPersonByUserName(ctx, model.RoleStudent, "alice")
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)

	// Update
	name := "Alicia"
	bio := "hello"
	updated, err := s.UpdatePerson(ctx, model.RoleStudent, p.ID, &model.PersonUpdate{Name: &name, Bio: &bio})
	require.NoError(t, err)
	assert.Equal(t, "Alicia", updated.Name)
	assert.Equal(t, "hello", updated.Bio)
	assert.Equal(t, "a@x.com", updated.Email)
	assert.False(t, updated.UpdatedAt.Before(p.UpdatedAt))

	// Delete
	deleted, err := s.DeletePerson(ctx, model.RoleStudent, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alicia", deleted.Name)

	_, err = s.GetPersonByID(ctx, model.RoleStudent, p.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestTeacherSubjects(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	p := newPerson(model.RoleTeacher, "t@x.com", "teach")
	p.Subjects = []string{"math", "physics"}
	require.NoError(t, s.CreatePerson(ctx, model.RoleTeacher, p))

	got, err := s.GetPersonByID(ctx, model.RoleTeacher, p.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"math", "physics"}, got.Subjects)
	assert.Nil(t, got.Grade)

	updated, err := s.UpdatePerson(ctx, model.RoleTeacher, p.ID, &model.PersonUpdate{Subjects: []string{"art"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"art"}, updated.Subjects)

	// 角色隔离
	_, err = s.GetPersonByID(ctx, model.RoleStudent, p.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestPersonNotFound(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.GetPersonByID(ctx, model.RoleStudent, model.NewID())
	assert.ErrorIs(t, err, storage.ErrNotFound)

	_, err = s.GetPersonByEmail(ctx, model.RoleStudent, "nobody@x.com")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	name := "x"
	_, err = s.UpdatePerson(ctx, model.RoleStudent, model.NewID(), &model.PersonUpdate{Name: &name})
	assert.ErrorIs(t, err, storage.ErrNotFound)

	_, err = s.DeletePerson(ctx, model.RoleStudent, model.NewID())
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestPersonDuplicate(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.CreatePerson(ctx, model.RoleStudent, newPerson(model.RoleStudent, "a@x.com", "alice")))

	err := s.CreatePerson(ctx, model.RoleStudent, newPerson(model.RoleStudent, "a@x.com", "other"))
	assert.ErrorIs(t, err, storage.ErrDuplicate)

	err = s.CreatePerson(ctx, model.RoleStudent, newPerson(model.RoleStudent, "b@x.com", "alice"))
	assert.ErrorIs(t, err, storage.ErrDuplicate)

	// 学生与教师的邮箱空间相互独立
	assert.NoError(t, s.CreatePerson(ctx, model.RoleTeacher, newPerson(model.RoleTeacher, "a@x.com", "alice")))

	// 更新到已占用的用户名
	bob := newPerson(model.RoleStudent, "bob@x.com", "bob")
	require.NoError(t, s.CreatePerson(ctx, model.RoleStudent, bob))
	userName := "alice"
	_, err = s.UpdatePerson(ctx, model.RoleStudent, bob.ID, &model.PersonUpdate{UserName: &userName})
	assert.ErrorIs(t, err, storage.ErrDuplicate)
}

// TestConcurrentCreateSameEmail 同一邮箱并发注册只能成功一次
func TestConcurrentCreateSameEmail(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	const n = 10
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			p := newPerson(model.RoleStudent, "race@x.com", fmt.Sprintf("racer%d", i))
			errs[i] = s.CreatePerson(ctx, model.RoleStudent, p)
		}(i)
	}
	wg.Wait()

	success := 0
	for _, err := range errs {
		if err == nil {
			success++
			continue
		}
		assert.ErrorIs(t, err, storage.ErrDuplicate)
	}
	assert.Equal(t, 1, success)

	people, err := s.ListPeople(ctx, model.RoleStudent)
	require.NoError(t, err)
	assert.Len(t, people, 1)
}

func TestListPeople(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	people, err := s.ListPeople(ctx, model.RoleStudent)
	require.NoError(t, err)
	assert.NotNil(t, people)
	assert.Empty(t, people)

	older := newPerson(model.RoleStudent, "old@x.com", "old")
	older.CreatedAt = older.CreatedAt.Add(-time.Hour)
	require.NoError(t, s.CreatePerson(ctx, model.RoleStudent, older))
	require.NoError(t, s.CreatePerson(ctx, model.RoleStudent, newPerson(model.RoleStudent, "new@x.com", "new")))

	people, err = s.ListPeople(ctx, model.RoleStudent)
	require.NoError(t, err)
	require.Len(t, people, 2)
	assert.Equal(t, "new@x.com", people[0].Email)
	assert.Equal(t, "old@x.com", people[1].Email)
}

func TestUnknownRole(t *testing.T) {
	s := newTestStore(t)
	_, err := s.ListPeople(context.Background(), model.Role("admin"))
	assert.ErrorIs(t, err, storage.ErrUnknownRole)
}

// ============================================================================
// File 测试
// ============================================================================

func TestFileCRUD(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	f := model.DefaultAvatarFile()
	require.NoError(t, s.CreateFile(ctx, f))
	assert.ErrorIs(t, s.CreateFile(ctx, f), storage.ErrDuplicate)

	got, err := s.GetFile(ctx, model.DefaultAvatarID)
	require.NoError(t, err)
	assert.Equal(t, "avatars/default.png", got.Key)
	assert.Equal(t, "image/png", got.ContentType)

	require.NoError(t, s.DeleteFile(ctx, model.DefaultAvatarID))
	assert.ErrorIs(t, s.DeleteFile(ctx, model.DefaultAvatarID), storage.ErrNotFound)

	_, err = s.GetFile(ctx, model.DefaultAvatarID)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

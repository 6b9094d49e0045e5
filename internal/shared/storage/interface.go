// Package storage 定义持久化存储层抽象接口
//
// 设计原则：依赖倒置 (DIP)
//   - 调用方只依赖接口，不知道具体实现
//   - 具体实现在子包中：mongostore/（默认）、repository/（PostgreSQL / SQLite）
//   - 初始化时通过依赖注入传入实现（见 infra.NewStorage）
package storage

import (
	"context"

	"afro-class/internal/shared/model"
)

// PersonStore 学生/教师档案存储接口
//
// 每个角色一个独立集合，唯一性（email、userName）只在同一角色内生效。
// 查询类方法在记录不存在时返回 ErrNotFound；插入/更新违反唯一约束时返回 ErrDuplicate。
type PersonStore interface {
	CreatePerson(ctx context.Context, role model.Role, p *model.Person) error
	GetPersonByID(ctx context.Context, role model.Role, id string) (*model.Person, error)
	GetPersonByEmail(ctx context.Context, role model.Role, email string) (*model.Person, error)
	GetPersonByUserName(ctx context.Context, role model.Role, userName string) (*model.Person, error)
	ListPeople(ctx context.Context, role model.Role) ([]*model.Person, error)
	// UpdatePerson 更新字段并返回更新后的记录
	UpdatePerson(ctx context.Context, role model.Role, id string, update *model.PersonUpdate) (*model.Person, error)
	// DeletePerson 删除并返回被删除的记录
	DeletePerson(ctx context.Context, role model.Role, id string) (*model.Person, error)
}

// FileStore 上传文件记录存储接口
type FileStore interface {
	CreateFile(ctx context.Context, f *model.File) error
	GetFile(ctx context.Context, id string) (*model.File, error)
	DeleteFile(ctx context.Context, id string) error
}

// PersistentStore 持久化存储组合接口
type PersistentStore interface {
	PersonStore
	FileStore
	Close() error
}

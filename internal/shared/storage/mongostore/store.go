// Package mongostore 实现基于 MongoDB 的 PersistentStore
//
// 使用 mongo-go-driver v2，通过 bson tag 实现 model 结构体的序列化/反序列化。
// 每个角色一个 Collection（students / teachers），上传文件记录在 files 中。
// 所有索引在 ensureIndexes 中统一管理，email / userName 唯一索引是唯一性的最终保证。
package mongostore

import (
	"context"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"afro-class/internal/shared/model"
	"afro-class/internal/shared/storage"
)

// Collection 名称常量
const (
	ColFiles = "files"
)

// Store 实现 storage.PersistentStore 接口的 MongoDB 驱动
type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

// NewStore 创建 MongoDB 存储实例
//
// uri: MongoDB 连接 URI，如 "mongodb://localhost:27017"
// dbName: 数据库名称，如 "afro_class"
func NewStore(uri, dbName string) (*Store, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongostore: connect failed: %w", err)
	}

	// 验证连接
	if err := client.Ping(ctx, nil); err != nil {
		client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongostore: ping failed: %w", err)
	}

	db := client.Database(dbName)
	s := &Store{client: client, db: db}

	// 唯一索引缺失时无法保证并发注册的唯一性，直接失败
	if err := s.ensureIndexes(ctx); err != nil {
		client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongostore: ensure indexes failed: %w", err)
	}

	log.Printf("[mongostore] Connected to database %s", dbName)
	return s, nil
}

// Close 关闭 MongoDB 连接
func (s *Store) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

// col 获取指定 Collection
func (s *Store) col(name string) *mongo.Collection {
	return s.db.Collection(name)
}

// roleCol 获取角色对应的 Collection
func (s *Store) roleCol(role model.Role) (*mongo.Collection, error) {
	name := role.Collection()
	if name == "" {
		return nil, fmt.Errorf("%w: %q", storage.ErrUnknownRole, role)
	}
	return s.col(name), nil
}

// ensureIndexes 创建所有必要的索引
func (s *Store) ensureIndexes(ctx context.Context) error {
	type idx struct {
		col    string
		keys   bson.D
		unique bool
	}

	var indexes []idx
	for _, role := range []model.Role{model.RoleStudent, model.RoleTeacher} {
		name := role.Collection()
		indexes = append(indexes,
			idx{name, bson.D{{Key: "email", Value: 1}}, true},
			idx{name, bson.D{{Key: "userName", Value: 1}}, true},
			idx{name, bson.D{{Key: "createdAt", Value: -1}}, false},
		)
	}

	for _, i := range indexes {
		im := mongo.IndexModel{Keys: i.keys}
		if i.unique {
			im.Options = options.Index().SetUnique(true)
		}
		if _, err := s.col(i.col).Indexes().CreateOne(ctx, im); err != nil {
			return fmt.Errorf("create index on %s: %w", i.col, err)
		}
	}

	return nil
}

var _ storage.PersistentStore = (*Store)(nil)

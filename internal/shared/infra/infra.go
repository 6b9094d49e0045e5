// Package infra 基础设施聚合层
//
// 提供统一的基础设施初始化和依赖注入，包括：
//   - Storage：持久化存储（MongoDB / PostgreSQL / SQLite）
//   - EventBus：账号事件流（Redis Streams，未配置时为空操作）
//   - Objects：对象存储（MinIO，未配置时为 nil）
package infra

import (
	"context"
	"fmt"
	"log"
	"time"

	"afro-class/internal/config"
	"afro-class/internal/shared/eventbus"
	eventbusredis "afro-class/internal/shared/eventbus/redis"
	"afro-class/internal/shared/objstore"
	"afro-class/internal/shared/storage"
)

// Infrastructure 基础设施聚合结构
type Infrastructure struct {
	// Storage 持久化存储
	Storage storage.PersistentStore

	// EventBus 账号事件总线
	EventBus eventbus.AccountEventBus

	// Objects 对象存储，nil 表示未配置
	Objects *objstore.Client
}

// New 根据配置初始化全部基础设施
//
// 存储不可用时返回错误；Redis 与 MinIO 为可选组件，未配置时降级。
func New(ctx context.Context, cfg *config.Config) (*Infrastructure, error) {
	store, err := NewStorage(cfg)
	if err != nil {
		return nil, err
	}

	infra := &Infrastructure{Storage: store}

	bus, err := NewEventBus(cfg.RedisURL)
	if err != nil {
		infra.Close()
		return nil, err
	}
	infra.EventBus = bus

	if cfg.MinIO.Enabled() {
		objects, err := objstore.NewClient(cfg.MinIO)
		if err != nil {
			infra.Close()
			return nil, err
		}
		ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		if err := objects.EnsureBucket(ctx); err != nil {
			infra.Close()
			return nil, fmt.Errorf("minio: %w", err)
		}
		infra.Objects = objects
		log.Printf("[infra] Object storage enabled: %s/%s", cfg.MinIO.Endpoint, objects.Bucket())
	} else {
		log.Printf("[infra] Object storage not configured, avatar uploads disabled")
	}

	return infra, nil
}

// NewEventBus 创建账号事件总线，redisURL 为空时返回空操作实现
func NewEventBus(redisURL string) (eventbus.AccountEventBus, error) {
	if redisURL == "" {
		log.Printf("[infra] Redis not configured, account events disabled")
		return eventbus.NewNoOpEventBus(), nil
	}
	return eventbusredis.NewStoreFromURL(redisURL)
}

// Close 关闭所有基础设施连接
func (i *Infrastructure) Close() error {
	var lastErr error

	if i.Storage != nil {
		if err := i.Storage.Close(); err != nil {
			lastErr = err
		}
	}

	if i.EventBus != nil {
		if err := i.EventBus.Close(); err != nil {
			lastErr = err
		}
	}

	return lastErr
}

// Package eventbus 事件总线 mock 实现
package eventbus

import (
	"context"
	"sync"

	"afro-class/internal/shared/model"
)

// ============================================================================
// NoOpEventBus - 空操作的 EventBus 实现（未配置 Redis 时使用）
// ============================================================================

// NoOpEventBus 是一个不做任何操作的 EventBus 实现
type NoOpEventBus struct{}

var _ AccountEventBus = (*NoOpEventBus)(nil)

// NewNoOpEventBus 创建 NoOpEventBus 实例
func NewNoOpEventBus() *NoOpEventBus {
	return &NoOpEventBus{}
}

// Close 关闭事件总线
func (e *NoOpEventBus) Close() error {
	return nil
}

func (e *NoOpEventBus) PublishAccountEvent(ctx context.Context, role model.Role, event *AccountEvent) error {
	return nil
}

func (e *NoOpEventBus) ListAccountEvents(ctx context.Context, role model.Role, count int64) ([]*AccountEvent, error) {
	return []*AccountEvent{}, nil
}

// ============================================================================
// MemoryEventBus - 内存实现（用于测试断言）
// ============================================================================

// MemoryEventBus 在内存中按角色保存事件
type MemoryEventBus struct {
	mu     sync.Mutex
	events map[model.Role][]*AccountEvent
}

var _ AccountEventBus = (*MemoryEventBus)(nil)

// NewMemoryEventBus 创建 MemoryEventBus 实例
func NewMemoryEventBus() *MemoryEventBus {
	return &MemoryEventBus{events: make(map[model.Role][]*AccountEvent)}
}

func (e *MemoryEventBus) Close() error {
	return nil
}

func (e *MemoryEventBus) PublishAccountEvent(ctx context.Context, role model.Role, event *AccountEvent) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	ev := *event
	e.events[role] = append(e.events[role], &ev)
	return nil
}

func (e *MemoryEventBus) ListAccountEvents(ctx context.Context, role model.Role, count int64) ([]*AccountEvent, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	events := e.events[role]
	if count > 0 && int64(len(events)) > count {
		events = events[:count]
	}
	return append([]*AccountEvent{}, events...), nil
}

// Package eventbus 事件总线抽象接口
//
// 提供账号生命周期事件的发布与回读能力，当前由 Redis Streams 实现。
package eventbus

import (
	"context"

	"afro-class/internal/shared/model"
)

// ============================================================================
// 事件总线接口定义
// ============================================================================

// AccountEventBus 账号事件总线接口
type AccountEventBus interface {
	// PublishAccountEvent 发布账号事件
	PublishAccountEvent(ctx context.Context, role model.Role, event *AccountEvent) error
	// ListAccountEvents 按发布顺序读取事件，count <= 0 表示全部
	ListAccountEvents(ctx context.Context, role model.Role, count int64) ([]*AccountEvent, error)
	Close() error
}

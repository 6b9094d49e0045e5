// Package eventbus 事件总线类型定义
package eventbus

import (
	"time"
)

// ============================================================================
// 事件类型
// ============================================================================

// AccountEventType 账号事件类型
type AccountEventType string

const (
	AccountRegistered AccountEventType = "registered"
	AccountLoggedIn   AccountEventType = "logged_in"
	AccountUpdated    AccountEventType = "updated"
	AccountDeleted    AccountEventType = "deleted"
)

// AccountEvent 账号生命周期事件
type AccountEvent struct {
	ID        string           `json:"id"`
	Type      AccountEventType `json:"type"`
	PersonID  string           `json:"person_id"`
	Email     string           `json:"email,omitempty"`
	Timestamp time.Time        `json:"timestamp"`
}

// NewAccountEvent 创建当前时间的账号事件
func NewAccountEvent(t AccountEventType, personID, email string) *AccountEvent {
	return &AccountEvent{
		Type:      t,
		PersonID:  personID,
		Email:     email,
		Timestamp: time.Now().UTC(),
	}
}

// ============================================================================
// Key 前缀和常量
// ============================================================================

const (
	// Key 前缀，后接角色名
	KeyAccountEvents = "afro:account_events:"

	// Stream 最大长度（近似裁剪）
	MaxStreamLength = 10000
)

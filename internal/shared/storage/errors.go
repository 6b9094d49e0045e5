// Package storage 定义存储层领域错误
//
// 这些错误用于隔离业务层与底层存储引擎的错误类型，
// 各驱动实现（mongostore/repository）负责将底层错误转换为这些领域错误。
package storage

import "errors"

var (
	// ErrNotFound 实体不存在
	// 替代 sql.ErrNoRows / mongo.ErrNoDocuments
	ErrNotFound = errors.New("entity not found")

	// ErrDuplicate 唯一键冲突（邮箱、用户名或 ID 重复）
	ErrDuplicate = errors.New("duplicate: entity already exists")

	// ErrUnknownRole 角色没有对应的集合
	ErrUnknownRole = errors.New("unknown role")
)

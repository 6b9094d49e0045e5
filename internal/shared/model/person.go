// Package model 定义核心数据模型
//
// person.go 包含学校成员（学生/教师）的数据模型定义：
//   - Role：角色枚举（student / teacher）
//   - Gender：性别枚举
//   - Person：学生与教师共用的基础档案，角色扩展字段（Grade / Subjects）按角色填充
//   - PersonUpdate：资料更新（nil 字段表示不修改）
package model

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// ============================================================================
// Role - 角色
// ============================================================================

// Role 用户角色，每个角色对应独立的集合/表
type Role string

const (
	RoleStudent Role = "student"
	RoleTeacher Role = "teacher"
)

// Valid 是否为已知角色
func (r Role) Valid() bool {
	return r == RoleStudent || r == RoleTeacher
}

// Collection 返回角色对应的集合名（MongoDB collection / SQL table）
func (r Role) Collection() string {
	switch r {
	case RoleStudent:
		return "students"
	case RoleTeacher:
		return "teachers"
	}
	return ""
}

// Label 返回角色显示名，用于响应消息
func (r Role) Label() string {
	switch r {
	case RoleStudent:
		return "Student"
	case RoleTeacher:
		return "Teacher"
	}
	return "User"
}

// ============================================================================
// Gender - 性别
// ============================================================================

// Gender 性别
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"
)

// ============================================================================
// 默认值
// ============================================================================

const (
	DefaultBio         = "Your bio goes here."
	DefaultDepartment  = "Your department goes here."
	DefaultNationality = "Your country goes here."

	// DefaultAvatarID 默认头像文件 ID（启动时确保 files 中存在该记录）
	DefaultAvatarID = "63f73594ba3c0813a218ff2e"
)

// ============================================================================
// Person - 成员档案
// ============================================================================

// Person 学生/教师档案
//
// PasswordHash 与 ResetToken 永远不会序列化到 JSON。
// Grade 仅学生使用，Subjects 仅教师使用。
type Person struct {
	ID           string    `json:"_id" bson:"_id"`
	Role         Role      `json:"role" bson:"role"`
	Email        string    `json:"email" bson:"email"`
	UserName     string    `json:"userName" bson:"userName"`
	Name         string    `json:"name" bson:"name"`
	Gender       Gender    `json:"gender" bson:"gender"`
	Bio          string    `json:"bio" bson:"bio"`
	Department   string    `json:"department" bson:"department"`
	Nationality  string    `json:"nationality" bson:"nationality"`
	Avatar       string    `json:"avatar" bson:"avatar"`
	PasswordHash string    `json:"-" bson:"passwordHash"`
	ResetToken   string    `json:"-" bson:"resetToken"`
	CreatedAt    time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt" bson:"updatedAt"`

	// 角色扩展
	Grade    *float64 `json:"grade,omitempty" bson:"grade,omitempty"`
	Subjects []string `json:"subjects,omitempty" bson:"subjects,omitempty"`
}

// ApplyDefaults 填充未设置的可选字段
func (p *Person) ApplyDefaults() {
	if p.Bio == "" {
		p.Bio = DefaultBio
	}
	if p.Department == "" {
		p.Department = DefaultDepartment
	}
	if p.Nationality == "" {
		p.Nationality = DefaultNationality
	}
	if p.Avatar == "" {
		p.Avatar = DefaultAvatarID
	}
}

// NormalizeEmail 邮箱统一为去空格小写形式
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ============================================================================
// PersonUpdate - 资料更新
// ============================================================================

// PersonUpdate 资料更新，nil 字段保持原值
//
// 密码以哈希形式传入，存储层不接触明文。
type PersonUpdate struct {
	Email        *string
	UserName     *string
	Name         *string
	Gender       *Gender
	Bio          *string
	Department   *string
	Nationality  *string
	Avatar       *string
	PasswordHash *string
	Grade        *float64
	Subjects     []string
}

// IsEmpty 是否没有任何字段需要更新
func (u *PersonUpdate) IsEmpty() bool {
	return u.Email == nil && u.UserName == nil && u.Name == nil && u.Gender == nil &&
		u.Bio == nil && u.Department == nil && u.Nationality == nil && u.Avatar == nil &&
		u.PasswordHash == nil && u.Grade == nil && u.Subjects == nil
}

// Apply 将更新应用到档案（内存实现与测试使用）
func (u *PersonUpdate) Apply(p *Person) {
	if u.Email != nil {
		p.Email = *u.Email
	}
	if u.UserName != nil {
		p.UserName = *u.UserName
	}
	if u.Name != nil {
		p.Name = *u.Name
	}
	if u.Gender != nil {
		p.Gender = *u.Gender
	}
	if u.Bio != nil {
		p.Bio = *u.Bio
	}
	if u.Department != nil {
		p.Department = *u.Department
	}
	if u.Nationality != nil {
		p.Nationality = *u.Nationality
	}
	if u.Avatar != nil {
		p.Avatar = *u.Avatar
	}
	if u.PasswordHash != nil {
		p.PasswordHash = *u.PasswordHash
	}
	if u.Grade != nil {
		g := *u.Grade
		p.Grade = &g
	}
	if u.Subjects != nil {
		p.Subjects = append([]string(nil), u.Subjects...)
	}
}

// ============================================================================
// StringList - 兼容字符串或字符串数组的 JSON 字段
// ============================================================================

// StringList 接受 "math" 或 ["math", "physics"] 两种写法
//
// 旧版客户端以单个字符串提交 subject 字段。
type StringList []string

// UnmarshalJSON 实现 json.Unmarshaler
func (l *StringList) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" {
		*l = nil
		return nil
	}
	if strings.HasPrefix(trimmed, "[") {
		var items []string
		if err := json.Unmarshal(data, &items); err != nil {
			return fmt.Errorf("expected a list of strings: %w", err)
		}
		*l = items
		return nil
	}
	var single string
	if err := json.Unmarshal(data, &single); err != nil {
		return fmt.Errorf("expected a string or a list of strings: %w", err)
	}
	*l = StringList{single}
	return nil
}

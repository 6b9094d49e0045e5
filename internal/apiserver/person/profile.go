// Package person 学生与教师的注册、登录与资料管理
//
// 两个角色共用一套实现，差异集中在 Profile 中：
//   - profile.go: 角色能力集（注册载荷、响应文案）
//   - service.go: 业务写路径（校验、唯一性、哈希、签发令牌、事件）
//   - handler.go: HTTP 处理与路由
//   - request.go: 请求体解析（JSON / 表单 / multipart）
package person

import (
	"strings"

	"afro-class/internal/apiserver/validation"
	"afro-class/internal/shared/model"
)

// Profile 角色能力集，启动时构建后传入 Service 与 Handler
type Profile struct {
	Role model.Role

	// NewSignup 返回该角色的空注册载荷
	NewSignup func() validation.Signup
}

// StudentProfile 学生角色
func StudentProfile() Profile {
	return Profile{
		Role:      model.RoleStudent,
		NewSignup: func() validation.Signup { return &validation.StudentSignup{} },
	}
}

// TeacherProfile 教师角色
func TeacherProfile() Profile {
	return Profile{
		Role:      model.RoleTeacher,
		NewSignup: func() validation.Signup { return &validation.TeacherSignup{} },
	}
}

// Label 角色显示名，如 Student
func (p Profile) Label() string {
	return p.Role.Label()
}

func (p Profile) lower() string {
	return strings.ToLower(p.Role.Label())
}

func (p Profile) msgRegistered() string { return p.Label() + " registered successfully!" }
func (p Profile) msgLoggedIn() string   { return p.Label() + " logged in successfully" }
func (p Profile) msgListed() string     { return "Retrieved " + p.lower() + "s successfully!" }
func (p Profile) msgRetrieved() string  { return "Retrieved " + p.lower() + " by ID successfully!" }
func (p Profile) msgUpdated() string    { return "Updated " + p.lower() + " by ID successfully!" }
func (p Profile) msgDeleted() string    { return "Deleted " + p.lower() + " by ID successfully!" }
func (p Profile) msgNotFound() string   { return p.Label() + " not found" }

package validation

import (
	"strings"

	"afro-class/internal/shared/model"
)

// Signup 角色注册载荷
type Signup interface {
	// Normalize 去除首尾空格、邮箱转小写并填充默认值
	Normalize()
	// Common 返回各角色共有的字段
	Common() *PersonSignup
	// ApplyExtension 将角色扩展字段写入档案
	ApplyExtension(p *model.Person)
}

// Update 资料更新载荷
type Update interface {
	Normalize()
}

// ============================================================================
// 注册
// ============================================================================

// PersonSignup 学生与教师共有的注册字段
type PersonSignup struct {
	Email       string `json:"email" validate:"required,min=6,email"`
	Password    string `json:"password" validate:"required,min=6,max=72"`
	UserName    string `json:"userName" validate:"required,alphanum"`
	Name        string `json:"name" validate:"required"`
	Gender      string `json:"gender" validate:"required,oneof=male female other"`
	Bio         string `json:"bio"`
	Department  string `json:"department"`
	Nationality string `json:"nationality"`
	Avatar      string `json:"avatar" validate:"omitempty,hexadecimal,len=24"`
}

// Normalize 规范化共有字段
func (s *PersonSignup) Normalize() {
	s.Email = model.NormalizeEmail(s.Email)
	s.Password = strings.TrimSpace(s.Password)
	s.UserName = strings.TrimSpace(s.UserName)
	s.Name = strings.TrimSpace(s.Name)
	s.Gender = strings.ToLower(strings.TrimSpace(s.Gender))
	s.Bio = strings.TrimSpace(s.Bio)
	s.Department = strings.TrimSpace(s.Department)
	s.Nationality = strings.TrimSpace(s.Nationality)
	s.Avatar = strings.TrimSpace(s.Avatar)

	if s.Bio == "" {
		s.Bio = model.DefaultBio
	}
	if s.Department == "" {
		s.Department = model.DefaultDepartment
	}
	if s.Nationality == "" {
		s.Nationality = model.DefaultNationality
	}
}

// Common 实现 Signup
func (s *PersonSignup) Common() *PersonSignup {
	return s
}

// Person 构建不含密码哈希的档案
func (s *PersonSignup) Person(role model.Role) *model.Person {
	p := &model.Person{
		Role:        role,
		Email:       s.Email,
		UserName:    s.UserName,
		Name:        s.Name,
		Gender:      model.Gender(s.Gender),
		Bio:         s.Bio,
		Department:  s.Department,
		Nationality: s.Nationality,
		Avatar:      s.Avatar,
	}
	p.ApplyDefaults()
	return p
}

// StudentSignup 学生注册载荷
type StudentSignup struct {
	PersonSignup
	Grade *float64 `json:"grade" validate:"required,min=0,max=100"`
}

// ApplyExtension 写入成绩
func (s *StudentSignup) ApplyExtension(p *model.Person) {
	if s.Grade != nil {
		g := *s.Grade
		p.Grade = &g
	}
}

// TeacherSignup 教师注册载荷
//
// 兼容旧字段 subject（字符串或列表），与 subjects 合并。
type TeacherSignup struct {
	PersonSignup
	Subjects model.StringList `json:"subjects" validate:"required,min=1,dive,required"`
	Subject  model.StringList `json:"subject,omitempty" validate:"-"`
}

// Normalize 规范化并合并科目
func (s *TeacherSignup) Normalize() {
	s.PersonSignup.Normalize()
	s.Subjects = mergeSubjects(s.Subjects, s.Subject)
	s.Subject = nil
}

// ApplyExtension 写入科目
func (s *TeacherSignup) ApplyExtension(p *model.Person) {
	if s.Subjects != nil {
		p.Subjects = append([]string(nil), s.Subjects...)
	}
}

// mergeSubjects 去空格、去重，保持首次出现顺序；空字符串保留以便报告错误
func mergeSubjects(lists ...model.StringList) model.StringList {
	var out model.StringList
	seen := make(map[string]bool)
	for _, list := range lists {
		for _, s := range list {
			s = strings.TrimSpace(s)
			if s != "" && seen[s] {
				continue
			}
			seen[s] = true
			out = append(out, s)
		}
	}
	if out == nil {
		for _, list := range lists {
			if list != nil {
				return model.StringList{}
			}
		}
	}
	return out
}

// ============================================================================
// 资料更新
// ============================================================================

// PersonUpdate 资料更新载荷，nil 字段表示不修改
type PersonUpdate struct {
	Email       *string          `json:"email" validate:"omitempty,min=6,email"`
	Password    *string          `json:"password" validate:"omitempty,min=6,max=72"`
	UserName    *string          `json:"userName" validate:"omitempty,alphanum"`
	Name        *string          `json:"name" validate:"omitempty,min=1"`
	Gender      *string          `json:"gender" validate:"omitempty,oneof=male female other"`
	Bio         *string          `json:"bio"`
	Department  *string          `json:"department"`
	Nationality *string          `json:"nationality"`
	Avatar      *string          `json:"avatar" validate:"omitempty,hexadecimal,len=24"`
	Grade       *float64         `json:"grade" validate:"omitempty,min=0,max=100"`
	Subjects    model.StringList `json:"subjects" validate:"omitempty,min=1,dive,required"`
	Subject     model.StringList `json:"subject,omitempty" validate:"-"`
}

// Normalize 规范化出现的字段
func (u *PersonUpdate) Normalize() {
	trim := func(s *string) {
		if s != nil {
			*s = strings.TrimSpace(*s)
		}
	}
	trim(u.Password)
	trim(u.UserName)
	trim(u.Name)
	trim(u.Bio)
	trim(u.Department)
	trim(u.Nationality)
	trim(u.Avatar)
	if u.Email != nil {
		*u.Email = model.NormalizeEmail(*u.Email)
	}
	if u.Gender != nil {
		*u.Gender = strings.ToLower(strings.TrimSpace(*u.Gender))
	}
	if u.Subjects != nil || u.Subject != nil {
		u.Subjects = mergeSubjects(u.Subjects, u.Subject)
	}
	u.Subject = nil
}

// IsEmpty 是否没有任何可更新字段
func (u *PersonUpdate) IsEmpty() bool {
	return u.Email == nil && u.Password == nil && u.UserName == nil && u.Name == nil &&
		u.Gender == nil && u.Bio == nil && u.Department == nil && u.Nationality == nil &&
		u.Avatar == nil && u.Grade == nil && u.Subjects == nil
}

// ForRole 去掉不属于该角色的扩展字段
func (u *PersonUpdate) ForRole(role model.Role) {
	if role != model.RoleStudent {
		u.Grade = nil
	}
	if role != model.RoleTeacher {
		u.Subjects = nil
	}
}

// ToModel 转换为存储层更新，密码哈希由调用方填充
func (u *PersonUpdate) ToModel() *model.PersonUpdate {
	mu := &model.PersonUpdate{
		Email:       u.Email,
		UserName:    u.UserName,
		Name:        u.Name,
		Bio:         u.Bio,
		Department:  u.Department,
		Nationality: u.Nationality,
		Avatar:      u.Avatar,
		Grade:       u.Grade,
	}
	if u.Gender != nil {
		g := model.Gender(*u.Gender)
		mu.Gender = &g
	}
	if u.Subjects != nil {
		mu.Subjects = append([]string{}, u.Subjects...)
	}
	return mu
}

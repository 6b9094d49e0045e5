package validation

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"afro-class/internal/shared/model"
)

func ptr[T any](v T) *T { return &v }

func validStudent() *StudentSignup {
	return &StudentSignup{
		PersonSignup: PersonSignup{
			Email:    "a@x.com",
			Password: "secret1",
			UserName: "alice",
			Name:     "Alice",
			Gender:   "female",
		},
		Grade: ptr(50.0),
	}
}

func TestValidateSignup_StudentOK(t *testing.T) {
	v := New()
	s := validStudent()
	s.Email = "  A@X.com "
	s.Name = "  Alice  "

	errs := v.ValidateSignup(s)
	require.Empty(t, errs)

	// 规范化与默认值
	assert.Equal(t, "a@x.com", s.Email)
	assert.Equal(t, "Alice", s.Name)
	assert.Equal(t, model.DefaultBio, s.Bio)
	assert.Equal(t, model.DefaultDepartment, s.Department)
	assert.Equal(t, model.DefaultNationality, s.Nationality)

	p := s.Person(model.RoleStudent)
	s.ApplyExtension(p)
	assert.Equal(t, model.DefaultAvatarID, p.Avatar)
	assert.Equal(t, model.GenderFemale, p.Gender)
	require.NotNil(t, p.Grade)
	assert.Equal(t, 50.0, *p.Grade)
}

func TestValidateSignup_StudentErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(s *StudentSignup)
		field  string
		msg    string
	}{
		{"missing email", func(s *StudentSignup) { s.Email = "" }, "email", `"email" is required`},
		{"bad email", func(s *StudentSignup) { s.Email = "not-an-email" }, "email", `"email" must be a valid email`},
		{"short email", func(s *StudentSignup) { s.Email = "a@b.c" }, "email", `"email" length must be at least 6 characters long`},
		{"short password", func(s *StudentSignup) { s.Password = "12345" }, "password", `"password" length must be at least 6 characters long`},
		{"whitespace password", func(s *StudentSignup) { s.Password = "      " }, "password", `"password" is required`},
		{"userName with space", func(s *StudentSignup) { s.UserName = "al ice" }, "userName", `"userName" must only contain alpha-numeric characters`},
		{"userName symbols", func(s *StudentSignup) { s.UserName = "al_ice" }, "userName", `"userName" must only contain alpha-numeric characters`},
		{"missing name", func(s *StudentSignup) { s.Name = "   " }, "name", `"name" is required`},
		{"bad gender", func(s *StudentSignup) { s.Gender = "robot" }, "gender", `"gender" must be one of [male, female, other]`},
		{"bad avatar", func(s *StudentSignup) { s.Avatar = "xyz" }, "avatar", `"avatar" must only contain hexadecimal characters`},
		{"short avatar", func(s *StudentSignup) { s.Avatar = "abc123" }, "avatar", `"avatar" length must be 24 characters long`},
		{"missing grade", func(s *StudentSignup) { s.Grade = nil }, "grade", `"grade" is required`},
		{"grade too high", func(s *StudentSignup) { s.Grade = ptr(100.5) }, "grade", `"grade" must be less than or equal to 100`},
		{"grade negative", func(s *StudentSignup) { s.Grade = ptr(-1.0) }, "grade", `"grade" must be greater than or equal to 0`},
	}

	v := New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := validStudent()
			tt.mutate(s)
			errs := v.ValidateSignup(s)
			require.Len(t, errs, 1, "errors: %v", errs)
			assert.Equal(t, tt.field, errs[0].Field)
			assert.Equal(t, tt.msg, errs.First())
		})
	}
}

func TestValidateSignup_GradeBoundaries(t *testing.T) {
	v := New()
	for _, g := range []float64{0, 100, 42.5} {
		s := validStudent()
		s.Grade = ptr(g)
		assert.Empty(t, v.ValidateSignup(s), "grade %v", g)
	}
}

// TestValidateSignup_CollectsAll 所有错误按字段声明顺序返回
func TestValidateSignup_CollectsAll(t *testing.T) {
	v := New()
	s := &StudentSignup{}

	errs := v.ValidateSignup(s)
	assert.Equal(t, []string{"email", "password", "userName", "name", "gender", "grade"}, errs.Fields())
	assert.Equal(t, `"email" is required`, errs.First())
	assert.Contains(t, errs.Error(), `"grade" is required`)
}

func TestValidateSignup_Teacher(t *testing.T) {
	v := New()

	var s TeacherSignup
	require.NoError(t, json.Unmarshal([]byte(`{
		"email": "t@x.com", "password": "secret1", "userName": "teach",
		"name": "T", "gender": "other", "subject": "math", "subjects": ["physics", "math"]
	}`), &s))

	require.Empty(t, v.ValidateSignup(&s))
	assert.Equal(t, model.StringList{"physics", "math"}, s.Subjects)

	p := s.Person(model.RoleTeacher)
	s.ApplyExtension(p)
	assert.Equal(t, []string{"physics", "math"}, p.Subjects)
	assert.Nil(t, p.Grade)
}

func TestValidateSignup_TeacherSubjectErrors(t *testing.T) {
	v := New()
	base := PersonSignup{Email: "t@x.com", Password: "secret1", UserName: "teach", Name: "T", Gender: "male"}

	s := &TeacherSignup{PersonSignup: base}
	errs := v.ValidateSignup(s)
	require.Len(t, errs, 1)
	assert.Equal(t, `"subjects" is required`, errs.First())

	s = &TeacherSignup{PersonSignup: base, Subjects: model.StringList{}}
	errs = v.ValidateSignup(s)
	require.Len(t, errs, 1)
	assert.Equal(t, `"subjects" must contain at least 1 items`, errs.First())

	s = &TeacherSignup{PersonSignup: base, Subjects: model.StringList{"math", "  "}}
	errs = v.ValidateSignup(s)
	require.Len(t, errs, 1)
	assert.Equal(t, `"subjects[1]" is required`, errs.First())

	// 旧字段单独提交也可以
	s = &TeacherSignup{PersonSignup: base, Subject: model.StringList{"art"}}
	assert.Empty(t, v.ValidateSignup(s))
	assert.Equal(t, model.StringList{"art"}, s.Subjects)
}

func TestValidateUpdate(t *testing.T) {
	v := New()

	u := &PersonUpdate{Name: ptr("  Alicia "), Email: ptr(" NEW@X.com")}
	require.Empty(t, v.ValidateUpdate(u))
	assert.Equal(t, "Alicia", *u.Name)
	assert.Equal(t, "new@x.com", *u.Email)
	assert.False(t, u.IsEmpty())

	// 出现的字段才校验
	assert.Empty(t, v.ValidateUpdate(&PersonUpdate{}))
	assert.True(t, (&PersonUpdate{}).IsEmpty())

	errs := v.ValidateUpdate(&PersonUpdate{Password: ptr("123")})
	require.Len(t, errs, 1)
	assert.Equal(t, "password", errs[0].Field)

	errs = v.ValidateUpdate(&PersonUpdate{Name: ptr("   ")})
	require.Len(t, errs, 1)
	assert.Equal(t, "name", errs[0].Field)

	errs = v.ValidateUpdate(&PersonUpdate{Grade: ptr(101.0), Gender: ptr("x")})
	assert.Equal(t, []string{"gender", "grade"}, errs.Fields())

	u = &PersonUpdate{Subject: model.StringList{" art "}}
	require.Empty(t, v.ValidateUpdate(u))
	assert.Equal(t, model.StringList{"art"}, u.Subjects)
	assert.Nil(t, u.Subject)
}

func TestPersonUpdate_ForRoleAndToModel(t *testing.T) {
	u := &PersonUpdate{Grade: ptr(10.0), Subjects: model.StringList{"math"}, Gender: ptr("male")}
	u.ForRole(model.RoleTeacher)
	assert.Nil(t, u.Grade)
	assert.Equal(t, model.StringList{"math"}, u.Subjects)

	mu := u.ToModel()
	require.NotNil(t, mu.Gender)
	assert.Equal(t, model.GenderMale, *mu.Gender)
	assert.Equal(t, []string{"math"}, mu.Subjects)
	assert.Nil(t, mu.PasswordHash)

	u = &PersonUpdate{Grade: ptr(10.0), Subjects: model.StringList{"math"}}
	u.ForRole(model.RoleStudent)
	assert.Nil(t, u.Subjects)
	assert.NotNil(t, u.Grade)
}

package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRole_Collection(t *testing.T) {
	assert.Equal(t, "students", RoleStudent.Collection())
	assert.Equal(t, "teachers", RoleTeacher.Collection())
	assert.Equal(t, "", Role("admin").Collection())

	assert.True(t, RoleStudent.Valid())
	assert.False(t, Role("admin").Valid())
	assert.Equal(t, "Teacher", RoleTeacher.Label())
}

func TestPerson_ApplyDefaults(t *testing.T) {
	p := &Person{Bio: "custom"}
	p.ApplyDefaults()

	assert.Equal(t, "custom", p.Bio)
	assert.Equal(t, DefaultDepartment, p.Department)
	assert.Equal(t, DefaultNationality, p.Nationality)
	assert.Equal(t, DefaultAvatarID, p.Avatar)
}

// TestPerson_JSONHidesCredentials 密码哈希与重置令牌不得出现在 JSON 中
func TestPerson_JSONHidesCredentials(t *testing.T) {
	grade := 88.5
	p := Person{
		ID:           NewID(),
		Email:        "a@x.com",
		PasswordHash: "$2a$10$abcdefghijklmnopqrstuv",
		ResetToken:   "reset-me",
		Grade:        &grade,
	}

	data, err := json.Marshal(p)
	require.NoError(t, err)

	var m map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &m))
	assert.NotContains(t, m, "passwordHash")
	assert.NotContains(t, m, "password")
	assert.NotContains(t, m, "resetToken")
	assert.NotContains(t, m, "subjects")
	assert.Equal(t, "a@x.com", m["email"])
	assert.Equal(t, 88.5, m["grade"])
}

func TestPersonUpdate_Apply(t *testing.T) {
	p := &Person{Name: "Alice", Subjects: []string{"math"}}

	u := &PersonUpdate{}
	assert.True(t, u.IsEmpty())

	name := "Alicia"
	grade := 42.0
	u = &PersonUpdate{Name: &name, Grade: &grade, Subjects: []string{"art"}}
	assert.False(t, u.IsEmpty())

	u.Apply(p)
	assert.Equal(t, "Alicia", p.Name)
	require.NotNil(t, p.Grade)
	assert.Equal(t, 42.0, *p.Grade)
	assert.Equal(t, []string{"art"}, p.Subjects)

	// 更新对象之后的修改不影响档案
	grade = 1
	u.Subjects[0] = "music"
	assert.Equal(t, 42.0, *p.Grade)
	assert.Equal(t, []string{"art"}, p.Subjects)
}

func TestStringList_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    StringList
		wantErr bool
	}{
		{"single string", `"math"`, StringList{"math"}, false},
		{"list", `["math","physics"]`, StringList{"math", "physics"}, false},
		{"empty list", `[]`, StringList{}, false},
		{"null", `null`, nil, false},
		{"number", `42`, nil, true},
		{"mixed list", `["math", 1]`, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got StringList
			err := json.Unmarshal([]byte(tt.input), &got)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "a@x.com", NormalizeEmail("  A@X.com "))
}

func TestNewID(t *testing.T) {
	id := NewID()
	assert.Len(t, id, 24)
	assert.True(t, IsValidID(id))
	assert.True(t, IsValidID(DefaultAvatarID))
	assert.False(t, IsValidID("not-an-id"))
	assert.NotEqual(t, id, NewID())
}

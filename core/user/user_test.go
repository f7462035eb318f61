package user

import (
	"testing"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pownas/dancecourse/core"
)

func TestRole_Can(t *testing.T) {
	tests := []struct {
		role Role
		perm Permission
		want bool
	}{
		{RoleInstructor, PermAuthor, true},
		{RoleInstructor, PermModifyAny, false},
		{RoleEditor, PermModifyOwn, true},
		{RoleReader, PermAuthor, false},
		{RoleReader, PermModifyOwn, false},
		{RoleAdmin, PermModifyAny, true},
		{Role("superstar"), PermAuthor, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.role.Can(tt.perm), "%s can %d", tt.role, tt.perm)
	}
}

func TestParseRole(t *testing.T) {
	role, ok := ParseRole(" Editor ")
	assert.True(t, ok)
	assert.Equal(t, RoleEditor, role)

	_, ok = ParseRole("superstar")
	assert.False(t, ok)
}

func TestUser_CanModify(t *testing.T) {
	owner := User{ID: "u1", Role: RoleInstructor}
	reader := User{ID: "u2", Role: RoleReader}
	admin := User{ID: "u3", Role: RoleAdmin}

	assert.True(t, owner.CanModify("u1"))
	assert.False(t, owner.CanModify("u2"))
	assert.False(t, owner.CanModify(""))
	assert.False(t, reader.CanModify("u2"))
	assert.True(t, admin.CanModify("u1"))
	assert.True(t, admin.CanModify(""))
}

func TestUser_InTeam(t *testing.T) {
	usr := User{TeamID: "t1"}
	assert.True(t, usr.InTeam("t1"))
	assert.False(t, usr.InTeam("t2"))
	assert.False(t, User{}.InTeam(""))
}

func TestUser_password(t *testing.T) {
	var usr User
	require.NoError(t, usr.SetPassword("password123"))
	assert.NoError(t, usr.CheckPassword("password123"))
	assert.Error(t, usr.CheckPassword("password124"))
}

func Test_validatePassword(t *testing.T) {
	_en := en.New()
	translator, _ := ut.New(_en, _en).GetTranslator("en")
	validate := validator.New()
	core.InitValidators(validate, translator)
	InitValidators(validate, translator)

	tests := []struct {
		name string
		pwd  string
		want string
	}{
		{name: "valid", pwd: "password123"},
		{name: "too short", pwd: "short", want: "password must contain at least 8 characters"},
		{name: "whitespace", pwd: "pass word 123", want: "password must not contain whitespace"},
		{name: "numeric", pwd: "1234567890", want: "password cannot be entirely numeric"},
		{name: "similar to name", pwd: "Josephine", want: "password cannot be similar to user attributes"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validate.Struct(NewUser{Name: "Josephine", Email: "jo@example.com", Password: tt.pwd})
			if tt.want == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			errs := err.(validator.ValidationErrors)
			require.Len(t, errs, 1)
			assert.Equal(t, "password", errs[0].Field())
			assert.Equal(t, tt.want, errs[0].Translate(translator))
		})
	}
}

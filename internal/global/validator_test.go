package global

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type apiPathInput struct {
	Path string `validate:"required,api_path"`
}

type roleNameInput struct {
	Name string `validate:"required,role_name"`
}

// TestValidateApiPath kiểm tra quy tắc chuỗi API path
func TestValidateApiPath(t *testing.T) {
	InitValidator()

	valid := []string{
		"/video/upload",
		"/rbac/createRbacApiPath",
		"/a",
	}
	for _, path := range valid {
		assert.NoError(t, Validate.Struct(apiPathInput{Path: path}), path)
	}

	invalid := []string{
		"video/upload",   // thiếu "/" đầu
		"/video upload",  // chứa khoảng trắng
		"/video//upload", // "//" liền nhau
		"",               // rỗng
	}
	for _, path := range invalid {
		assert.Error(t, Validate.Struct(apiPathInput{Path: path}), path)
	}
}

// TestValidateRoleName kiểm tra quy tắc tên role
func TestValidateRoleName(t *testing.T) {
	InitValidator()

	valid := []string{"administrator", "video-moderator", "Người kiểm duyệt"}
	for _, name := range valid {
		assert.NoError(t, Validate.Struct(roleNameInput{Name: name}), name)
	}

	invalid := []string{"", "   ", "admin/role", `admin\role`}
	for _, name := range invalid {
		assert.Error(t, Validate.Struct(roleNameInput{Name: name}), name)
	}
}

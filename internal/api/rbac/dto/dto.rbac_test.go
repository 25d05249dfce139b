package rbacdto_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	rbacdto "github.com/tratiger/KiraKiraDouga-Libre-sub001/internal/api/rbac/dto"
	"github.com/tratiger/KiraKiraDouga-Libre-sub001/internal/global"
)

func init() {
	global.InitValidator()
}

// TestApiPathCreateInputValidation kiểm tra validate input tạo API path
func TestApiPathCreateInputValidation(t *testing.T) {
	valid := rbacdto.ApiPathCreateInput{Path: "/video/upload", Color: "#66CCFF"}
	assert.NoError(t, global.Validate.Struct(valid))

	// Color sai định dạng hex
	badColor := rbacdto.ApiPathCreateInput{Path: "/video/upload", Color: "xanh"}
	assert.Error(t, global.Validate.Struct(badColor))

	// Path không bắt đầu bằng "/"
	badPath := rbacdto.ApiPathCreateInput{Path: "video/upload"}
	assert.Error(t, global.Validate.Struct(badPath))

	// Thiếu path
	assert.Error(t, global.Validate.Struct(rbacdto.ApiPathCreateInput{}))
}

// TestRoleUpdatePermissionsInputValidation kiểm tra validate từng phần tử
// trong tập quyền mới
func TestRoleUpdatePermissionsInputValidation(t *testing.T) {
	valid := rbacdto.RoleUpdatePermissionsInput{
		Name:               "administrator",
		ApiPathPermissions: []string{"/a", "/b/c"},
	}
	assert.NoError(t, global.Validate.Struct(valid))

	// Tập rỗng hợp lệ: thu hồi toàn bộ quyền của role
	empty := rbacdto.RoleUpdatePermissionsInput{Name: "administrator"}
	assert.NoError(t, global.Validate.Struct(empty))

	// Một phần tử sai làm cả input bị từ chối
	invalid := rbacdto.RoleUpdatePermissionsInput{
		Name:               "administrator",
		ApiPathPermissions: []string{"/a", "b"},
	}
	assert.Error(t, global.Validate.Struct(invalid))
}

// TestUserRolesUpdateInputValidation kiểm tra validate gán role cho principal
func TestUserRolesUpdateInputValidation(t *testing.T) {
	valid := rbacdto.UserRolesUpdateInput{UUID: "u-1", NewRoles: []string{"administrator"}}
	assert.NoError(t, global.Validate.Struct(valid))

	// Tên role chứa "/" bị từ chối
	invalid := rbacdto.UserRolesUpdateInput{UUID: "u-1", NewRoles: []string{"admin/role"}}
	assert.Error(t, global.Validate.Struct(invalid))

	// Thiếu UUID
	assert.Error(t, global.Validate.Struct(rbacdto.UserRolesUpdateInput{NewRoles: []string{"a"}}))
}

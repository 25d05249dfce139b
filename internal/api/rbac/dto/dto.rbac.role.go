package rbacdto

import (
	models "github.com/tratiger/KiraKiraDouga-Libre-sub001/internal/api/rbac/models"
)

// RoleCreateInput dùng cho tạo role. Role mới luôn bắt đầu với tập quyền rỗng.
type RoleCreateInput struct {
	Name        string `json:"roleName" validate:"required,role_name"`
	Type        string `json:"roleType,omitempty"`
	Color       string `json:"roleColor,omitempty" validate:"omitempty,hexcolor"`
	Description string `json:"roleDescription,omitempty"`
}

// RoleDeleteInput dùng cho xóa role theo tên.
type RoleDeleteInput struct {
	Name string `json:"roleName" validate:"required,role_name"`
}

// RoleUpdatePermissionsInput thay thế nguyên khối tập quyền của một role.
// Mọi path trong ApiPathPermissions phải tồn tại trong registry API path,
// nếu không toàn bộ update bị từ chối. Tập rỗng hợp lệ: thu hồi hết quyền.
type RoleUpdatePermissionsInput struct {
	Name               string   `json:"roleName" validate:"required,role_name"`
	ApiPathPermissions []string `json:"apiPathPermissions" validate:"dive,api_path"`
}

// RoleSearchInput dùng cho tìm kiếm + phân trang role.
type RoleSearchInput struct {
	SearchKey string `json:"search,omitempty"`
	Page      int64  `json:"page,omitempty"`
	PageSize  int64  `json:"pageSize,omitempty"`
}

// RoleCreateResult kết quả tạo role.
type RoleCreateResult struct {
	Success bool             `json:"success"`
	Message string           `json:"message,omitempty"`
	Result  *models.RbacRole `json:"result,omitempty"`
}

// RoleDeleteResult kết quả xóa role.
type RoleDeleteResult struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// RoleUpdatePermissionsResult kết quả thay thế tập quyền.
type RoleUpdatePermissionsResult struct {
	Success bool             `json:"success"`
	Message string           `json:"message,omitempty"`
	Result  *models.RbacRole `json:"result,omitempty"`
}

// RoleSearchResult kết quả tìm kiếm role.
type RoleSearchResult struct {
	Success bool              `json:"success"`
	Message string            `json:"message,omitempty"`
	Count   int64             `json:"count"`
	Result  []models.RbacRole `json:"result"`
}

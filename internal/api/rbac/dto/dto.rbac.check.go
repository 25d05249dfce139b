package rbacdto

import (
	models "github.com/tratiger/KiraKiraDouga-Libre-sub001/internal/api/rbac/models"
)

// Principal danh tính đã xác thực cần kiểm tra quyền.
// Đúng MỘT trong hai field phải được cung cấp: UUID (định danh ổn định)
// hoặc UID (định danh số). Cung cấp cả hai hoặc không cái nào là lỗi caller.
type Principal struct {
	UUID string `json:"uuid,omitempty"`
	UID  *int64 `json:"uid,omitempty"`
}

// CheckAccessResult phán quyết ủy quyền cho middleware tiêu thụ.
// Status: 200 cho phép, 403 từ chối (principal không tồn tại và principal
// không đủ quyền cố ý không phân biệt được), 500 lỗi resolver.
type CheckAccessResult struct {
	Status  int    `json:"status"`
	Message string `json:"message,omitempty"`
}

// UserRolesUpdateInput thay thế nguyên khối danh sách role của một principal.
// Mọi role trong NewRoles phải tồn tại trong registry role. Danh sách rỗng
// hợp lệ: tước hết role của principal.
type UserRolesUpdateInput struct {
	UUID     string   `json:"uuid" validate:"required"`
	NewRoles []string `json:"newRoles" validate:"dive,role_name"`
}

// UserRolesUpdateResult kết quả thay thế danh sách role.
type UserRolesUpdateResult struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// UserRolesResult danh sách role hiệu lực của một principal: tên role kèm
// document role đầy đủ (tên role mồ côi không có document tương ứng).
type UserRolesResult struct {
	Success bool              `json:"success"`
	Message string            `json:"message,omitempty"`
	Roles   []string          `json:"roles"`
	Result  []models.RbacRole `json:"result,omitempty"`
}

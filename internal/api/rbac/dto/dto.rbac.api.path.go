package rbacdto

import (
	models "github.com/tratiger/KiraKiraDouga-Libre-sub001/internal/api/rbac/models"
)

// ApiPathCreateInput dùng cho tạo API path được bảo vệ.
type ApiPathCreateInput struct {
	Path        string `json:"apiPath" validate:"required,api_path"`
	Type        string `json:"apiPathType,omitempty"`
	Color       string `json:"apiPathColor,omitempty" validate:"omitempty,hexcolor"`
	Description string `json:"apiPathDescription,omitempty"`
}

// ApiPathDeleteInput dùng cho xóa API path theo chuỗi path.
type ApiPathDeleteInput struct {
	Path string `json:"apiPath" validate:"required,api_path"`
}

// ApiPathSearchInput dùng cho tìm kiếm + phân trang API path.
// SearchKey khớp substring không phân biệt hoa thường trên các field text.
type ApiPathSearchInput struct {
	SearchKey string `json:"search,omitempty"`
	Page      int64  `json:"page,omitempty"`
	PageSize  int64  `json:"pageSize,omitempty"`
}

// ApiPathCreateResult kết quả tạo API path.
type ApiPathCreateResult struct {
	Success bool                `json:"success"`
	Message string              `json:"message,omitempty"`
	Result  *models.RbacApiPath `json:"result,omitempty"`
}

// ApiPathDeleteResult kết quả xóa API path.
// IsAssigned = true nghĩa là xóa bị từ chối vì còn role tham chiếu path;
// caller phải gỡ quyền khỏi các role trước.
type ApiPathDeleteResult struct {
	Success    bool   `json:"success"`
	IsAssigned bool   `json:"isAssigned"`
	Message    string `json:"message,omitempty"`
}

// ApiPathSearchResult kết quả tìm kiếm API path.
type ApiPathSearchResult struct {
	Success bool                       `json:"success"`
	Message string                     `json:"message,omitempty"`
	Count   int64                      `json:"count"`
	Result  []models.RbacApiPathResult `json:"result"`
}

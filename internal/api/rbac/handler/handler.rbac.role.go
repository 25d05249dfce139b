package rbachdl

import (
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v3"

	basehdl "github.com/tratiger/KiraKiraDouga-Libre-sub001/internal/api/base/handler"
	"github.com/tratiger/KiraKiraDouga-Libre-sub001/internal/api/middleware"
	rbacdto "github.com/tratiger/KiraKiraDouga-Libre-sub001/internal/api/rbac/dto"
	rbacsvc "github.com/tratiger/KiraKiraDouga-Libre-sub001/internal/api/rbac/service"
	"github.com/tratiger/KiraKiraDouga-Libre-sub001/internal/common"
)

// RoleHandler xử lý các route quản trị role.
type RoleHandler struct {
	RoleService *rbacsvc.RbacRoleService
}

// NewRoleHandler tạo instance mới của RoleHandler
func NewRoleHandler(sequence *rbacsvc.SequenceService, resolver *rbacsvc.RbacResolverService) (*RoleHandler, error) {
	roleService, err := rbacsvc.NewRbacRoleService(sequence, resolver)
	if err != nil {
		return nil, fmt.Errorf("failed to create role service: %v", err)
	}
	return &RoleHandler{RoleService: roleService}, nil
}

// HandleCreate tạo role mới với tập quyền rỗng
func (h *RoleHandler) HandleCreate(c fiber.Ctx) error {
	return basehdl.SafeHandler(c, func() error {
		actor, ok := middleware.PrincipalFromCtx(c)
		if !ok {
			return basehdl.HandleResponse(c, nil, common.ErrTokenMissing)
		}
		var input rbacdto.RoleCreateInput
		if err := basehdl.ParseRequestBody(c, &input); err != nil {
			return basehdl.HandleResponse(c, nil, err)
		}
		result, err := h.RoleService.CreateRole(c.Context(), actor, &input)
		if err != nil {
			return basehdl.HandleResponse(c, result, err)
		}
		return basehdl.HandleResponse(c, result, nil)
	})
}

// HandleDelete xóa role theo tên
func (h *RoleHandler) HandleDelete(c fiber.Ctx) error {
	return basehdl.SafeHandler(c, func() error {
		actor, ok := middleware.PrincipalFromCtx(c)
		if !ok {
			return basehdl.HandleResponse(c, nil, common.ErrTokenMissing)
		}
		var input rbacdto.RoleDeleteInput
		if err := basehdl.ParseRequestBody(c, &input); err != nil {
			return basehdl.HandleResponse(c, nil, err)
		}
		result, err := h.RoleService.DeleteRole(c.Context(), actor, &input)
		if err != nil {
			return basehdl.HandleResponse(c, result, err)
		}
		return basehdl.HandleResponse(c, result, nil)
	})
}

// HandleUpdatePermissions thay thế nguyên khối tập quyền của role
func (h *RoleHandler) HandleUpdatePermissions(c fiber.Ctx) error {
	return basehdl.SafeHandler(c, func() error {
		actor, ok := middleware.PrincipalFromCtx(c)
		if !ok {
			return basehdl.HandleResponse(c, nil, common.ErrTokenMissing)
		}
		var input rbacdto.RoleUpdatePermissionsInput
		if err := basehdl.ParseRequestBody(c, &input); err != nil {
			return basehdl.HandleResponse(c, nil, err)
		}
		result, err := h.RoleService.UpdateApiPathPermissionsForRole(c.Context(), actor, &input)
		if err != nil {
			return basehdl.HandleResponse(c, result, err)
		}
		return basehdl.HandleResponse(c, result, nil)
	})
}

// HandleSearch tìm kiếm + phân trang role
func (h *RoleHandler) HandleSearch(c fiber.Ctx) error {
	return basehdl.SafeHandler(c, func() error {
		actor, ok := middleware.PrincipalFromCtx(c)
		if !ok {
			return basehdl.HandleResponse(c, nil, common.ErrTokenMissing)
		}
		page, _ := strconv.ParseInt(c.Query("page", "0"), 10, 64)
		pageSize, _ := strconv.ParseInt(c.Query("pageSize", "0"), 10, 64)
		input := rbacdto.RoleSearchInput{
			SearchKey: c.Query("search"),
			Page:      page,
			PageSize:  pageSize,
		}
		result, err := h.RoleService.GetRoles(c.Context(), actor, &input)
		if err != nil {
			return basehdl.HandleResponse(c, nil, err)
		}
		return basehdl.HandleResponse(c, result, nil)
	})
}

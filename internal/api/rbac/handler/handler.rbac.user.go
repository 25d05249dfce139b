package rbachdl

import (
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v3"

	authsvc "github.com/tratiger/KiraKiraDouga-Libre-sub001/internal/api/auth/service"
	basehdl "github.com/tratiger/KiraKiraDouga-Libre-sub001/internal/api/base/handler"
	"github.com/tratiger/KiraKiraDouga-Libre-sub001/internal/api/middleware"
	rbacdto "github.com/tratiger/KiraKiraDouga-Libre-sub001/internal/api/rbac/dto"
	rbacsvc "github.com/tratiger/KiraKiraDouga-Libre-sub001/internal/api/rbac/service"
	"github.com/tratiger/KiraKiraDouga-Libre-sub001/internal/common"
)

// UserRoleHandler xử lý các route gán / tra cứu role của principal.
type UserRoleHandler struct {
	UserService *authsvc.UserService
}

// NewUserRoleHandler tạo instance mới của UserRoleHandler
func NewUserRoleHandler(resolver *rbacsvc.RbacResolverService) (*UserRoleHandler, error) {
	userService, err := authsvc.NewUserService(resolver)
	if err != nil {
		return nil, fmt.Errorf("failed to create user service: %v", err)
	}
	return &UserRoleHandler{UserService: userService}, nil
}

// HandleAdminUpdateUserRole thay thế nguyên khối danh sách role của principal
func (h *UserRoleHandler) HandleAdminUpdateUserRole(c fiber.Ctx) error {
	return basehdl.SafeHandler(c, func() error {
		actor, ok := middleware.PrincipalFromCtx(c)
		if !ok {
			return basehdl.HandleResponse(c, nil, common.ErrTokenMissing)
		}
		var input rbacdto.UserRolesUpdateInput
		if err := basehdl.ParseRequestBody(c, &input); err != nil {
			return basehdl.HandleResponse(c, nil, err)
		}
		result, err := h.UserService.AdminUpdateUserRoleByUUID(c.Context(), actor, &input)
		if err != nil {
			return basehdl.HandleResponse(c, result, err)
		}
		return basehdl.HandleResponse(c, result, nil)
	})
}

// HandleAdminGetUserRoles tra cứu danh sách role của principal theo UID
func (h *UserRoleHandler) HandleAdminGetUserRoles(c fiber.Ctx) error {
	return basehdl.SafeHandler(c, func() error {
		actor, ok := middleware.PrincipalFromCtx(c)
		if !ok {
			return basehdl.HandleResponse(c, nil, common.ErrTokenMissing)
		}
		uid, err := strconv.ParseInt(c.Query("uid"), 10, 64)
		if err != nil {
			return basehdl.HandleResponse(c, nil, common.NewError(
				common.ErrCodeValidationFormat, "uid không hợp lệ", common.StatusBadRequest, nil))
		}
		result, err := h.UserService.AdminGetUserRolesByUid(c.Context(), actor, uid)
		if err != nil {
			return basehdl.HandleResponse(c, result, err)
		}
		return basehdl.HandleResponse(c, result, nil)
	})
}

// HandleGetSelfRoles trả về danh sách role của chính principal đang gọi
func (h *UserRoleHandler) HandleGetSelfRoles(c fiber.Ctx) error {
	return basehdl.SafeHandler(c, func() error {
		principal, ok := middleware.PrincipalFromCtx(c)
		if !ok {
			return basehdl.HandleResponse(c, nil, common.ErrTokenMissing)
		}
		result, err := h.UserService.GetSelfRoles(c.Context(), principal)
		if err != nil {
			return basehdl.HandleResponse(c, result, err)
		}
		return basehdl.HandleResponse(c, result, nil)
	})
}

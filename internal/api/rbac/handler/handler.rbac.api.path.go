// Package rbachdl - HTTP handler cho các API quản trị RBAC.
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

// ApiPathHandler xử lý các route quản trị API path.
type ApiPathHandler struct {
	ApiPathService *rbacsvc.RbacApiPathService
}

// NewApiPathHandler tạo instance mới của ApiPathHandler
func NewApiPathHandler(sequence *rbacsvc.SequenceService, resolver *rbacsvc.RbacResolverService) (*ApiPathHandler, error) {
	apiPathService, err := rbacsvc.NewRbacApiPathService(sequence, resolver)
	if err != nil {
		return nil, fmt.Errorf("failed to create api path service: %v", err)
	}
	return &ApiPathHandler{ApiPathService: apiPathService}, nil
}

// HandleCreate đăng ký một API path mới
func (h *ApiPathHandler) HandleCreate(c fiber.Ctx) error {
	return basehdl.SafeHandler(c, func() error {
		actor, ok := middleware.PrincipalFromCtx(c)
		if !ok {
			return basehdl.HandleResponse(c, nil, common.ErrTokenMissing)
		}
		var input rbacdto.ApiPathCreateInput
		if err := basehdl.ParseRequestBody(c, &input); err != nil {
			return basehdl.HandleResponse(c, nil, err)
		}
		result, err := h.ApiPathService.CreateApiPath(c.Context(), actor, &input)
		if err != nil {
			return basehdl.HandleResponse(c, result, err)
		}
		return basehdl.HandleResponse(c, result, nil)
	})
}

// HandleDelete xóa một API path theo chuỗi path
func (h *ApiPathHandler) HandleDelete(c fiber.Ctx) error {
	return basehdl.SafeHandler(c, func() error {
		actor, ok := middleware.PrincipalFromCtx(c)
		if !ok {
			return basehdl.HandleResponse(c, nil, common.ErrTokenMissing)
		}
		var input rbacdto.ApiPathDeleteInput
		if err := basehdl.ParseRequestBody(c, &input); err != nil {
			return basehdl.HandleResponse(c, nil, err)
		}
		result, err := h.ApiPathService.DeleteApiPath(c.Context(), actor, &input)
		if err != nil {
			// Kết quả nghiệp vụ (path đang được gán, không tồn tại) vẫn
			// được trả kèm để client hiển thị cờ isAssigned.
			return basehdl.HandleResponse(c, result, err)
		}
		return basehdl.HandleResponse(c, result, nil)
	})
}

// HandleGetOptions trả về các giá trị apiPathType riêng biệt, phục vụ UI lọc
func (h *ApiPathHandler) HandleGetOptions(c fiber.Ctx) error {
	return basehdl.SafeHandler(c, func() error {
		actor, ok := middleware.PrincipalFromCtx(c)
		if !ok {
			return basehdl.HandleResponse(c, nil, common.ErrTokenMissing)
		}
		types, err := h.ApiPathService.GetApiPathOptions(c.Context(), actor)
		if err != nil {
			return basehdl.HandleResponse(c, nil, err)
		}
		return basehdl.HandleResponse(c, types, nil)
	})
}

// HandleSearch tìm kiếm + phân trang API path
func (h *ApiPathHandler) HandleSearch(c fiber.Ctx) error {
	return basehdl.SafeHandler(c, func() error {
		actor, ok := middleware.PrincipalFromCtx(c)
		if !ok {
			return basehdl.HandleResponse(c, nil, common.ErrTokenMissing)
		}
		page, _ := strconv.ParseInt(c.Query("page", "0"), 10, 64)
		pageSize, _ := strconv.ParseInt(c.Query("pageSize", "0"), 10, 64)
		input := rbacdto.ApiPathSearchInput{
			SearchKey: c.Query("search"),
			Page:      page,
			PageSize:  pageSize,
		}
		result, err := h.ApiPathService.GetApiPaths(c.Context(), actor, &input)
		if err != nil {
			return basehdl.HandleResponse(c, nil, err)
		}
		return basehdl.HandleResponse(c, result, nil)
	})
}

package rbachdl

import (
	"fmt"

	"github.com/gofiber/fiber/v3"

	basehdl "github.com/tratiger/KiraKiraDouga-Libre-sub001/internal/api/base/handler"
	"github.com/tratiger/KiraKiraDouga-Libre-sub001/internal/api/middleware"
	rbacsvc "github.com/tratiger/KiraKiraDouga-Libre-sub001/internal/api/rbac/service"
	"github.com/tratiger/KiraKiraDouga-Libre-sub001/internal/common"
)

// CheckHandler cho principal tự hỏi "tôi có được gọi path này không".
// Không cần quyền quản trị vì chỉ trả lời về chính principal đang gọi.
type CheckHandler struct {
	Resolver *rbacsvc.RbacResolverService
}

// NewCheckHandler tạo instance mới của CheckHandler
func NewCheckHandler(resolver *rbacsvc.RbacResolverService) (*CheckHandler, error) {
	if resolver == nil {
		return nil, fmt.Errorf("resolver is nil: %v", common.ErrRequiredField)
	}
	return &CheckHandler{Resolver: resolver}, nil
}

// HandleCheckSelfAccess phân giải quyền của chính principal trên một path
func (h *CheckHandler) HandleCheckSelfAccess(c fiber.Ctx) error {
	return basehdl.SafeHandler(c, func() error {
		principal, ok := middleware.PrincipalFromCtx(c)
		if !ok {
			return basehdl.HandleResponse(c, nil, common.ErrTokenMissing)
		}
		apiPath := c.Query("apiPath")
		if apiPath == "" {
			return basehdl.HandleResponse(c, nil, common.ErrRequiredField)
		}
		verdict := h.Resolver.CheckAccess(c.Context(), principal, apiPath)
		return basehdl.HandleResponse(c, verdict, nil)
	})
}

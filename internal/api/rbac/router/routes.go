// Package router đăng ký các route thuộc domain RBAC: API path, Role,
// gán role cho principal và tự tra cứu quyền.
package router

import (
	"fmt"

	"github.com/gofiber/fiber/v3"

	rbachdl "github.com/tratiger/KiraKiraDouga-Libre-sub001/internal/api/rbac/handler"
	rbacsvc "github.com/tratiger/KiraKiraDouga-Libre-sub001/internal/api/rbac/service"
)

// Register đăng ký tất cả route RBAC lên authed.
// authed đã đi qua middleware ExtractPrincipal; đường dẫn HTTP của mỗi
// route quản trị trùng chuỗi path đăng ký trong registry API path, nên
// phán quyết của resolver áp cho đúng endpoint vật lý tương ứng.
func Register(authed fiber.Router, sequence *rbacsvc.SequenceService, resolver *rbacsvc.RbacResolverService) error {
	apiPathHandler, err := rbachdl.NewApiPathHandler(sequence, resolver)
	if err != nil {
		return fmt.Errorf("create api path handler: %w", err)
	}
	authed.Post(rbacsvc.PathCreateApiPath, apiPathHandler.HandleCreate)
	authed.Post(rbacsvc.PathDeleteApiPath, apiPathHandler.HandleDelete)
	authed.Get(rbacsvc.PathGetApiPaths, apiPathHandler.HandleSearch)
	// Biến thể options của route liệt kê, dùng chung quyền getRbacApiPath.
	authed.Get("/rbac/getRbacApiPathOptions", apiPathHandler.HandleGetOptions)

	roleHandler, err := rbachdl.NewRoleHandler(sequence, resolver)
	if err != nil {
		return fmt.Errorf("create role handler: %w", err)
	}
	authed.Post(rbacsvc.PathCreateRole, roleHandler.HandleCreate)
	authed.Post(rbacsvc.PathDeleteRole, roleHandler.HandleDelete)
	authed.Post(rbacsvc.PathUpdateRolePermissions, roleHandler.HandleUpdatePermissions)
	authed.Get(rbacsvc.PathGetRoles, roleHandler.HandleSearch)

	userRoleHandler, err := rbachdl.NewUserRoleHandler(resolver)
	if err != nil {
		return fmt.Errorf("create user role handler: %w", err)
	}
	authed.Post(rbacsvc.PathAdminUpdateUserRole, userRoleHandler.HandleAdminUpdateUserRole)
	authed.Get(rbacsvc.PathAdminGetUserRoles, userRoleHandler.HandleAdminGetUserRoles)

	// Route tự phục vụ: principal hỏi về chính mình, chỉ cần token hợp lệ.
	checkHandler, err := rbachdl.NewCheckHandler(resolver)
	if err != nil {
		return fmt.Errorf("create check handler: %w", err)
	}
	authed.Get("/rbac/getSelfRoles", userRoleHandler.HandleGetSelfRoles)
	authed.Get("/rbac/checkSelfAccess", checkHandler.HandleCheckSelfAccess)

	return nil
}

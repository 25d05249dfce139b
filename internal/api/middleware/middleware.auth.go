// Package middleware - xác thực token và gác quyền RBAC cho các route.
package middleware

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v3"
	"github.com/golang-jwt/jwt/v5"

	basehdl "github.com/tratiger/KiraKiraDouga-Libre-sub001/internal/api/base/handler"
	rbacdto "github.com/tratiger/KiraKiraDouga-Libre-sub001/internal/api/rbac/dto"
	rbacsvc "github.com/tratiger/KiraKiraDouga-Libre-sub001/internal/api/rbac/service"
	"github.com/tratiger/KiraKiraDouga-Libre-sub001/internal/common"
)

// Khóa Locals lưu principal đã xác thực cho các handler phía sau.
const LocalsPrincipal = "principal"

// principalClaims là phần claims mà core này quan tâm trong token.
// Token do hệ thống đăng nhập phát hành; ở đây chỉ xác minh chữ ký và
// trích định danh principal.
type principalClaims struct {
	UUID string `json:"uuid,omitempty"`
	UID  *int64 `json:"uid,omitempty"`
	jwt.RegisteredClaims
}

// ExtractPrincipal trả về middleware xác thực Bearer token.
// Token hợp lệ: principal được đặt vào Locals. Token thiếu hoặc sai: 401.
func ExtractPrincipal(jwtSecret string) fiber.Handler {
	secret := []byte(jwtSecret)
	return func(c fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return basehdl.HandleResponse(c, nil, common.ErrTokenMissing)
		}
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader || tokenString == "" {
			return basehdl.HandleResponse(c, nil, common.ErrTokenInvalid)
		}

		claims := &principalClaims{}
		token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("phương thức ký không được hỗ trợ: %v", t.Header["alg"])
			}
			return secret, nil
		})
		if err != nil || !token.Valid {
			return basehdl.HandleResponse(c, nil, common.ErrTokenInvalid)
		}
		if claims.UUID == "" && claims.UID == nil {
			return basehdl.HandleResponse(c, nil, common.ErrTokenInvalid)
		}

		// Resolver yêu cầu đúng một định danh; token mang cả hai thì
		// ưu tiên UUID (định danh ổn định).
		principal := rbacdto.Principal{UUID: claims.UUID}
		if claims.UUID == "" {
			principal.UID = claims.UID
		}
		c.Locals(LocalsPrincipal, principal)
		return c.Next()
	}
}

// PrincipalFromCtx lấy principal đã được ExtractPrincipal đặt vào Locals.
func PrincipalFromCtx(c fiber.Ctx) (rbacdto.Principal, bool) {
	principal, ok := c.Locals(LocalsPrincipal).(rbacdto.Principal)
	return principal, ok
}

// RequireAccess trả về middleware gác một route bằng resolver RBAC.
// apiPath là chuỗi path logic đã đăng ký trong registry API path.
// Phán quyết 403/500 của resolver được trả nguyên trạng cho client;
// lỗi resolver không bao giờ biến thành lời cho phép.
func RequireAccess(resolver *rbacsvc.RbacResolverService, apiPath string) fiber.Handler {
	return func(c fiber.Ctx) error {
		principal, ok := PrincipalFromCtx(c)
		if !ok {
			return basehdl.HandleResponse(c, nil, common.ErrTokenMissing)
		}

		verdict := resolver.CheckAccess(c.Context(), principal, apiPath)
		switch verdict.Status {
		case common.StatusOK:
			return c.Next()
		case common.StatusForbidden:
			return basehdl.HandleResponse(c, nil, common.ErrNoPermission)
		default:
			return basehdl.HandleResponse(c, nil, common.NewError(
				common.ErrCodeInternalServer, verdict.Message, common.StatusInternalServerError, nil))
		}
	}
}

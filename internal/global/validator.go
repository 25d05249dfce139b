package global

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

// InitValidator khởi tạo và đăng ký các custom validator.
// "hexcolor" là validator built-in của go-playground, dùng cho field Color.
func InitValidator() {
	Validate = validator.New()

	_ = Validate.RegisterValidation("api_path", validateApiPath)
	_ = Validate.RegisterValidation("role_name", validateRoleName)
}

// validateApiPath kiểm tra chuỗi API path: phải bắt đầu bằng "/",
// không chứa khoảng trắng và không có "//" liền nhau.
func validateApiPath(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if !strings.HasPrefix(value, "/") {
		return false
	}
	if strings.ContainsAny(value, " \t\n") {
		return false
	}
	if strings.Contains(value, "//") {
		return false
	}
	return true
}

// validateRoleName kiểm tra tên role: không rỗng sau khi trim,
// không chứa ký tự phân tách đường dẫn (tránh nhầm với API path).
func validateRoleName(fl validator.FieldLevel) bool {
	value := strings.TrimSpace(fl.Field().String())
	if value == "" {
		return false
	}
	return !strings.ContainsAny(value, "/\\")
}

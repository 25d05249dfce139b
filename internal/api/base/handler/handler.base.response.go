// Package basehdl chứa các helper dùng chung cho mọi HTTP handler.
package basehdl

import (
	"errors"
	"fmt"
	"runtime/debug"

	"github.com/gofiber/fiber/v3"

	"github.com/tratiger/KiraKiraDouga-Libre-sub001/internal/common"
)

// JSONResponse trả về JSON response với Content-Type: application/json; charset=utf-8
// để các message tiếng Việt hiển thị đúng.
func JSONResponse(c fiber.Ctx, statusCode int, data interface{}) error {
	c.Set("Content-Type", "application/json; charset=utf-8")
	return c.Status(statusCode).JSON(data)
}

// HandleResponse chuẩn hóa response cho toàn bộ ứng dụng.
// Thành công: {status: "success", code, message, data}.
// Lỗi: {status: "error", code, message, details} với HTTP status lấy từ
// common.Error; lỗi không định kiểu rơi về 500.
func HandleResponse(c fiber.Ctx, data interface{}, err error) error {
	if err != nil {
		var customErr *common.Error
		if errors.As(err, &customErr) {
			return JSONResponse(c, customErr.StatusCode, fiber.Map{
				"status":  "error",
				"code":    customErr.Code.Code,
				"message": customErr.Message,
				"details": customErr.Details,
			})
		}
		return JSONResponse(c, common.StatusInternalServerError, fiber.Map{
			"status":  "error",
			"code":    common.ErrCodeInternalServer.Code,
			"message": err.Error(),
		})
	}

	return JSONResponse(c, common.StatusOK, fiber.Map{
		"status":  "success",
		"code":    common.StatusOK,
		"message": common.MsgSuccess,
		"data":    data,
	})
}

// SafeHandler bọc handler với recover để một panic trong xử lý request
// không kéo sập server; client luôn nhận được response.
func SafeHandler(c fiber.Ctx, handler func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			debug.PrintStack()
			err = HandleResponse(c, nil, common.NewError(
				common.ErrCodeInternalServer,
				fmt.Sprintf("Lỗi hệ thống không mong muốn: %v", r),
				common.StatusInternalServerError,
				nil,
			))
		}
	}()
	return handler()
}

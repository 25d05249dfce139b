package basehdl

import (
	"bytes"
	"encoding/json"

	"github.com/gofiber/fiber/v3"

	"github.com/tratiger/KiraKiraDouga-Libre-sub001/internal/common"
	"github.com/tratiger/KiraKiraDouga-Libre-sub001/internal/global"
)

// ParseRequestBody parse JSON body vào input rồi validate theo struct tag.
// UseNumber giữ nguyên độ chính xác các ID 64-bit.
func ParseRequestBody(c fiber.Ctx, input interface{}) error {
	decoder := json.NewDecoder(bytes.NewReader(c.Body()))
	decoder.UseNumber()
	if err := decoder.Decode(input); err != nil {
		return common.NewError(common.ErrCodeValidationFormat, common.MsgValidationError, common.StatusBadRequest, err)
	}

	if err := global.Validate.Struct(input); err != nil {
		return common.NewError(common.ErrCodeValidationInput, err.Error(), common.StatusBadRequest, nil)
	}
	return nil
}

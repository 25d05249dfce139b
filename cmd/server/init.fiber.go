package main

import (
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/gofiber/fiber/v3/middleware/requestid"
	"github.com/sirupsen/logrus"

	"github.com/tratiger/KiraKiraDouga-Libre-sub001/internal/common"
	"github.com/tratiger/KiraKiraDouga-Libre-sub001/internal/logger"
)

// InitFiberApp khởi tạo ứng dụng Fiber với các middleware cần thiết
func InitFiberApp() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:       "KiraKira RBAC Core",
		ServerHeader:  "KiraKira RBAC Core",
		StrictRouting: true,
		CaseSensitive: true,

		BodyLimit:    1 * 1024 * 1024,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,

		ErrorHandler: func(c fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			message := common.MsgInternalError
			errorCode := common.ErrCodeInternalServer.Code

			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
				message = e.Message
				switch code {
				case fiber.StatusBadRequest:
					errorCode = common.ErrCodeValidationInput.Code
				case fiber.StatusUnauthorized:
					errorCode = common.ErrCodeAuthToken.Code
				case fiber.StatusForbidden:
					errorCode = common.ErrCodeAuthPermission.Code
				case fiber.StatusNotFound:
					errorCode = common.ErrCodeDatabaseQuery.Code
				}
			}

			logger.GetAppLogger().WithFields(logrus.Fields{
				"requestId": c.Get("X-Request-ID"),
				"path":      c.Path(),
				"code":      code,
			}).Error(message)

			return c.Status(code).JSON(fiber.Map{
				"status":  "error",
				"code":    errorCode,
				"message": message,
			})
		},
	})

	// Request ID để trace log theo từng request
	app.Use(requestid.New(requestid.Config{
		Header: "X-Request-ID",
	}))

	// Recover để panic trong handler không kéo sập server
	app.Use(recover.New())

	app.Use(cors.New(cors.Config{
		AllowMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
	}))

	return app
}

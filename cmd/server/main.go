package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v3"

	basehdl "github.com/tratiger/KiraKiraDouga-Libre-sub001/internal/api/base/handler"
	"github.com/tratiger/KiraKiraDouga-Libre-sub001/internal/api/middleware"
	rbacrouter "github.com/tratiger/KiraKiraDouga-Libre-sub001/internal/api/rbac/router"
	rbacsvc "github.com/tratiger/KiraKiraDouga-Libre-sub001/internal/api/rbac/service"
	"github.com/tratiger/KiraKiraDouga-Libre-sub001/internal/database"
	"github.com/tratiger/KiraKiraDouga-Libre-sub001/internal/global"
	"github.com/tratiger/KiraKiraDouga-Libre-sub001/internal/logger"
)

func main() {
	InitGlobal()
	log := logger.GetAppLogger()

	sequence, err := rbacsvc.NewSequenceService()
	if err != nil {
		log.Fatalf("Failed to create sequence service: %v", err)
	}
	resolver, err := rbacsvc.NewRbacResolverService()
	if err != nil {
		log.Fatalf("Failed to create rbac resolver: %v", err)
	}

	InitDefaultData(sequence)

	app := InitFiberApp()

	// Health check không cần token, dành cho load balancer
	app.Get("/health", func(c fiber.Ctx) error {
		if err := global.MongoDB_Session.Ping(c.Context(), nil); err != nil {
			return basehdl.JSONResponse(c, fiber.StatusServiceUnavailable, fiber.Map{
				"status": "error", "message": "database unreachable",
			})
		}
		return basehdl.JSONResponse(c, fiber.StatusOK, fiber.Map{"status": "ok"})
	})

	authed := app.Group("", middleware.ExtractPrincipal(global.ServerConfig.JwtSecret))
	if err := rbacrouter.Register(authed, sequence, resolver); err != nil {
		log.Fatalf("Failed to register rbac routes: %v", err)
	}

	go func() {
		log.Infof("Starting server at %s", global.ServerConfig.Address)
		if err := app.Listen(global.ServerConfig.Address); err != nil {
			log.Fatalf("Server stopped: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")
	if err := app.Shutdown(); err != nil {
		log.Errorf("Error during shutdown: %v", err)
	}
	if err := database.CloseInstance(global.MongoDB_Session); err != nil {
		log.Errorf("Error closing MongoDB connection: %v", err)
	}
	log.Info("Server exited")
}

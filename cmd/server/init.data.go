package main

import (
	"context"

	rbacsvc "github.com/tratiger/KiraKiraDouga-Libre-sub001/internal/api/rbac/service"
	"github.com/tratiger/KiraKiraDouga-Libre-sub001/internal/global"
	"github.com/tratiger/KiraKiraDouga-Libre-sub001/internal/logger"
)

// InitDefaultData gieo dữ liệu RBAC tối thiểu. Idempotent, chạy lại vô hại.
func InitDefaultData(sequence *rbacsvc.SequenceService) {
	log := logger.GetAppLogger()
	ctx := context.Background()

	initService, err := rbacsvc.NewInitService(sequence)
	if err != nil {
		log.Fatalf("Failed to initialize init service: %v", err)
	}

	// 1. Đăng ký các API path quản trị của chính core RBAC
	if err := initService.InitAdminApiPaths(ctx); err != nil {
		log.Fatalf("Failed to initialize admin api paths: %v", err)
	}

	// 2. Tạo role administrator (nếu chưa có) và đồng bộ đủ quyền quản trị
	if err := initService.InitAdministratorRole(ctx); err != nil {
		log.Fatalf("Failed to initialize administrator role: %v", err)
	}

	// 3. Tạo principal quản trị đầu tiên từ ADMIN_UUID (tùy chọn)
	if global.ServerConfig.AdminUUID != "" {
		if err := initService.InitAdminUser(ctx, global.ServerConfig.AdminUUID); err != nil {
			log.Warnf("Failed to initialize admin user: %v", err)
		}
	} else {
		log.Info("ADMIN_UUID not set, bỏ qua bước tạo principal quản trị")
	}

	log.Info("InitDefaultData completed")
}

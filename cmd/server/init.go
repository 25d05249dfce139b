package main

import (
	"context"

	"github.com/tratiger/KiraKiraDouga-Libre-sub001/config"
	authmodels "github.com/tratiger/KiraKiraDouga-Libre-sub001/internal/api/auth/models"
	rbacmodels "github.com/tratiger/KiraKiraDouga-Libre-sub001/internal/api/rbac/models"
	"github.com/tratiger/KiraKiraDouga-Libre-sub001/internal/database"
	"github.com/tratiger/KiraKiraDouga-Libre-sub001/internal/global"
	"github.com/tratiger/KiraKiraDouga-Libre-sub001/internal/logger"
)

// InitGlobal khởi tạo các biến toàn cục theo đúng thứ tự phụ thuộc:
// config -> logger -> validator -> database.
func InitGlobal() {
	initConfig()
	initLogger()
	global.InitValidator()
	initDatabase_MongoDB()
}

// initConfig nạp cấu hình server từ env
func initConfig() {
	cfg, err := config.NewConfig()
	if err != nil {
		panic(err)
	}
	global.ServerConfig = cfg
}

// initLogger khởi tạo hệ thống log theo cấu hình
func initLogger() {
	if err := logger.Init(global.ServerConfig.LogLevel, global.ServerConfig.LogDir); err != nil {
		panic(err)
	}
}

// initDatabase_MongoDB kết nối MongoDB, đảm bảo database/collection tồn tại
// và tạo các index khai báo trên model.
func initDatabase_MongoDB() {
	log := logger.GetAppLogger()

	client, err := database.GetInstance(global.ServerConfig)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	global.MongoDB_Session = client

	if err := database.EnsureDatabaseAndCollections(client); err != nil {
		log.Fatalf("Failed to ensure collections: %v", err)
	}

	if err := database.EnsureIndexes(context.Background(), []database.IndexedModel{
		{CollectionName: global.MongoDB_ColNames.Users, Model: authmodels.User{}},
		{CollectionName: global.MongoDB_ColNames.RbacApiPaths, Model: rbacmodels.RbacApiPath{}},
		{CollectionName: global.MongoDB_ColNames.RbacRoles, Model: rbacmodels.RbacRole{}},
	}); err != nil {
		log.Fatalf("Failed to ensure indexes: %v", err)
	}

	log.Info("MongoDB initialized")
}

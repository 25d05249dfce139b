package global

import (
	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/tratiger/KiraKiraDouga-Libre-sub001/config"
	"github.com/tratiger/KiraKiraDouga-Libre-sub001/internal/registry"
)

// MongoDB_CollectionName chứa tên các collection trong MongoDB.
// Hai collection RBAC thuộc sở hữu riêng của subsystem RBAC; sequence-value
// là hạ tầng dùng chung cho mọi entity cần ID dạng số tự tăng.
type MongoDB_CollectionName struct {
	Users          string // Tên collection cho người dùng (danh sách role của principal nằm ở đây)
	RbacApiPaths   string // Tên collection cho danh sách API path được bảo vệ
	RbacRoles      string // Tên collection cho vai trò RBAC
	SequenceValues string // Tên collection cho bộ đếm sequence
}

// Các biến toàn cục
var Validate *validator.Validate       // Biến để xác thực dữ liệu
var MongoDB_Session *mongo.Client      // Phiên kết nối tới MongoDB
var ServerConfig *config.Configuration // Cấu hình của server
var MongoDB_ColNames = MongoDB_CollectionName{
	Users:          "users",
	RbacApiPaths:   "rbac-api-list",
	RbacRoles:      "rbac-role",
	SequenceValues: "sequence-value",
}

// Các Registry
var RegistryCollections = registry.NewRegistry[*mongo.Collection]() // Registry chứa các collections
var RegistryDatabase = registry.NewRegistry[*mongo.Database]()      // Registry chứa các databases

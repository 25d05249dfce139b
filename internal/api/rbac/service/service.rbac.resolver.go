package rbacsvc

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	authmodels "github.com/tratiger/KiraKiraDouga-Libre-sub001/internal/api/auth/models"
	basesvc "github.com/tratiger/KiraKiraDouga-Libre-sub001/internal/api/base/service"
	rbacdto "github.com/tratiger/KiraKiraDouga-Libre-sub001/internal/api/rbac/dto"
	"github.com/tratiger/KiraKiraDouga-Libre-sub001/internal/common"
	"github.com/tratiger/KiraKiraDouga-Libre-sub001/internal/global"
	"github.com/tratiger/KiraKiraDouga-Libre-sub001/internal/logger"
)

// Các API path quản trị của chính core RBAC. Chúng được đăng ký vào
// registry API path lúc khởi tạo và tự chịu kiểm soát truy cập qua
// CheckAccess như mọi path khác (không có cửa hậu).
const (
	PathCreateApiPath         = "/rbac/createRbacApiPath"
	PathDeleteApiPath         = "/rbac/deleteRbacApiPath"
	PathGetApiPaths           = "/rbac/getRbacApiPath"
	PathCreateRole            = "/rbac/createRbacRole"
	PathDeleteRole            = "/rbac/deleteRbacRole"
	PathUpdateRolePermissions = "/rbac/updateApiPathPermissionsForRole"
	PathGetRoles              = "/rbac/getRbacRole"
	PathAdminUpdateUserRole   = "/rbac/adminUpdateUserRoleByUUID"
	PathAdminGetUserRoles     = "/rbac/adminGetUserRolesByUid"
)

// AdminApiPaths liệt kê toàn bộ path quản trị, dùng cho bootstrap.
func AdminApiPaths() []string {
	return []string{
		PathCreateApiPath,
		PathDeleteApiPath,
		PathGetApiPaths,
		PathCreateRole,
		PathDeleteRole,
		PathUpdateRolePermissions,
		PathGetRoles,
		PathAdminUpdateUserRole,
		PathAdminGetUserRoles,
	}
}

// RbacResolverService trả lời câu hỏi "principal P có được gọi path A không".
// Phân giải chạy MỘT aggregation phía store: user -> join role theo tên ->
// tìm path trong các tập quyền. Không cache; mỗi lần hỏi đọc trạng thái mới.
type RbacResolverService struct {
	userPool *basesvc.BaseServiceMongoImpl[authmodels.User]
}

// NewRbacResolverService tạo mới RbacResolverService
func NewRbacResolverService() (*RbacResolverService, error) {
	collection, exist := global.RegistryCollections.Get(global.MongoDB_ColNames.Users)
	if !exist {
		return nil, fmt.Errorf("failed to get users collection: %v", common.ErrNotFound)
	}
	return &RbacResolverService{
		userPool: basesvc.NewBaseServiceMongo[authmodels.User](collection),
	}, nil
}

// principalMatch dựng stage $match cho principal. Đúng một trong UUID/UID
// phải được cung cấp; vi phạm là lỗi caller.
func principalMatch(principal rbacdto.Principal) (bson.D, error) {
	hasUUID := principal.UUID != ""
	hasUID := principal.UID != nil
	if hasUUID == hasUID {
		return nil, common.NewError(common.ErrCodeValidationInput,
			"principal phải có đúng một trong hai định danh uuid hoặc uid",
			common.StatusInternalServerError, nil)
	}
	if hasUUID {
		return bson.D{{Key: "$match", Value: bson.D{{Key: "uuid", Value: principal.UUID}}}}, nil
	}
	return bson.D{{Key: "$match", Value: bson.D{{Key: "uid", Value: *principal.UID}}}}, nil
}

// CheckAccessPipeline dựng aggregation phân giải quyền cho một cặp
// (principal, apiPath). Tách riêng để test được cấu trúc pipeline.
func CheckAccessPipeline(match bson.D, apiPath string) mongo.Pipeline {
	return mongo.Pipeline{
		match,
		bson.D{{Key: "$limit", Value: 1}},
		bson.D{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: global.MongoDB_ColNames.RbacRoles},
			{Key: "localField", Value: "roles"},
			{Key: "foreignField", Value: "roleName"},
			{Key: "as", Value: "matchedRoles"},
		}}},
		bson.D{{Key: "$unwind", Value: "$matchedRoles"}},
		bson.D{{Key: "$unwind", Value: "$matchedRoles.apiPathPermissions"}},
		bson.D{{Key: "$match", Value: bson.D{{Key: "matchedRoles.apiPathPermissions", Value: apiPath}}}},
		bson.D{{Key: "$limit", Value: 1}},
		bson.D{{Key: "$count", Value: "granted"}},
	}
}

// CheckAccess phân giải quyền của principal trên apiPath.
// Trả về Status 200 khi có ít nhất một role của principal chứa apiPath,
// 403 khi không (principal không tồn tại, role rỗng, role đã bị xóa hay
// không role nào chứa path đều cho cùng một 403, cố ý không phân biệt),
// 500 khi chính resolver gặp lỗi. Lỗi resolver không bao giờ là lời cho phép.
func (s *RbacResolverService) CheckAccess(ctx context.Context, principal rbacdto.Principal, apiPath string) rbacdto.CheckAccessResult {
	match, err := principalMatch(principal)
	if err != nil {
		return rbacdto.CheckAccessResult{Status: common.StatusInternalServerError, Message: err.Error()}
	}

	var rows []struct {
		Granted int64 `bson:"granted"`
	}
	if err := s.userPool.Aggregate(ctx, CheckAccessPipeline(match, apiPath), &rows); err != nil {
		logger.GetAppLogger().WithFields(logrus.Fields{
			"apiPath": apiPath,
			"error":   err.Error(),
		}).Error("Phân giải quyền RBAC thất bại")
		return rbacdto.CheckAccessResult{Status: common.StatusInternalServerError, Message: "không thể phân giải quyền"}
	}

	if len(rows) > 0 && rows[0].Granted > 0 {
		return rbacdto.CheckAccessResult{Status: common.StatusOK}
	}
	return rbacdto.CheckAccessResult{Status: common.StatusForbidden, Message: "không có quyền truy cập"}
}

// Authorize là tiện ích cho các thao tác quản trị: quy phán quyết về error.
// 200 -> nil, 403 -> ErrNoPermission, 500 -> lỗi nội bộ.
func (s *RbacResolverService) Authorize(ctx context.Context, actor rbacdto.Principal, apiPath string) error {
	verdict := s.CheckAccess(ctx, actor, apiPath)
	switch verdict.Status {
	case common.StatusOK:
		return nil
	case common.StatusForbidden:
		return common.ErrNoPermission
	default:
		return common.NewError(common.ErrCodeDatabaseQuery, verdict.Message, common.StatusInternalServerError, nil)
	}
}

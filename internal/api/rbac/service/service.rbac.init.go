package rbacsvc

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"

	authmodels "github.com/tratiger/KiraKiraDouga-Libre-sub001/internal/api/auth/models"
	basesvc "github.com/tratiger/KiraKiraDouga-Libre-sub001/internal/api/base/service"
	models "github.com/tratiger/KiraKiraDouga-Libre-sub001/internal/api/rbac/models"
	"github.com/tratiger/KiraKiraDouga-Libre-sub001/internal/common"
	"github.com/tratiger/KiraKiraDouga-Libre-sub001/internal/global"
	"github.com/tratiger/KiraKiraDouga-Libre-sub001/internal/logger"
)

// Định danh dùng cho dữ liệu bootstrap.
const (
	AdministratorRoleName = "administrator"
	SequenceUserUID       = "user-uid"
	systemCreatorUUID     = "system"
)

// InitService gieo dữ liệu RBAC tối thiểu lúc khởi động: các API path
// quản trị của chính core, role administrator nắm toàn bộ các path đó,
// và (tùy chọn) principal quản trị đầu tiên. Chạy TRƯỚC khi server nhận
// request nên thao tác trực tiếp trên pool, không qua cổng Authorize
// (lúc này chưa tồn tại principal nào có quyền để gác).
type InitService struct {
	apiPathPool *basesvc.BaseServiceMongoImpl[models.RbacApiPath]
	rolePool    *basesvc.BaseServiceMongoImpl[models.RbacRole]
	userPool    *basesvc.BaseServiceMongoImpl[authmodels.User]
	sequence    *SequenceService
}

// NewInitService tạo mới InitService
func NewInitService(sequence *SequenceService) (*InitService, error) {
	apiPathCol, exist := global.RegistryCollections.Get(global.MongoDB_ColNames.RbacApiPaths)
	if !exist {
		return nil, fmt.Errorf("failed to get api path collection: %v", common.ErrNotFound)
	}
	roleCol, exist := global.RegistryCollections.Get(global.MongoDB_ColNames.RbacRoles)
	if !exist {
		return nil, fmt.Errorf("failed to get role collection: %v", common.ErrNotFound)
	}
	userCol, exist := global.RegistryCollections.Get(global.MongoDB_ColNames.Users)
	if !exist {
		return nil, fmt.Errorf("failed to get users collection: %v", common.ErrNotFound)
	}
	return &InitService{
		apiPathPool: basesvc.NewBaseServiceMongo[models.RbacApiPath](apiPathCol),
		rolePool:    basesvc.NewBaseServiceMongo[models.RbacRole](roleCol),
		userPool:    basesvc.NewBaseServiceMongo[authmodels.User](userCol),
		sequence:    sequence,
	}, nil
}

// InitAdminApiPaths đăng ký các API path quản trị còn thiếu.
// Idempotent: path đã có được giữ nguyên, kể cả ApiPathID của nó.
func (s *InitService) InitAdminApiPaths(ctx context.Context) error {
	log := logger.GetAppLogger()
	for _, path := range AdminApiPaths() {
		exists, err := s.apiPathPool.DocumentExists(ctx, bson.M{"apiPath": path})
		if err != nil {
			return err
		}
		if exists {
			continue
		}

		apiPathId, err := s.sequence.Next(ctx, SequenceApiPathID, 0, DefaultStep())
		if err != nil {
			return err
		}
		_, err = s.apiPathPool.InsertOne(ctx, models.RbacApiPath{
			ApiPathID:   apiPathId,
			Path:        path,
			Type:        "rbac-admin",
			Description: "API quản trị RBAC (tạo tự động lúc khởi động)",
			CreatorUUID: systemCreatorUUID,
		})
		if err != nil {
			// Nhiều instance cùng bootstrap: kẻ đến sau thua unique index, bỏ qua.
			if errors.Is(err, common.ErrMongoDuplicate) {
				continue
			}
			return err
		}
		log.Infof("Đã đăng ký API path quản trị %s", path)
	}
	return nil
}

// InitAdministratorRole đảm bảo role administrator tồn tại và nắm đủ mọi
// API path quản trị. Path quản trị mới thêm ở phiên bản sau được tự động
// bổ sung vào role ở lần khởi động kế tiếp.
func (s *InitService) InitAdministratorRole(ctx context.Context) error {
	role, err := s.rolePool.FindOne(ctx, bson.M{"roleName": AdministratorRoleName}, nil)
	if err != nil {
		if !errors.Is(err, common.ErrNotFound) {
			return err
		}
		roleId, err := s.sequence.Next(ctx, SequenceRoleID, 0, DefaultStep())
		if err != nil {
			return err
		}
		_, err = s.rolePool.InsertOne(ctx, models.RbacRole{
			RoleID:             roleId,
			Name:               AdministratorRoleName,
			Type:               "system",
			Description:        "Role quản trị hệ thống (tạo tự động lúc khởi động)",
			ApiPathPermissions: AdminApiPaths(),
			CreatorUUID:        systemCreatorUUID,
		})
		if err != nil && !errors.Is(err, common.ErrMongoDuplicate) {
			return err
		}
		logger.GetAppLogger().Infof("Đã tạo role %s", AdministratorRoleName)
		return nil
	}

	missing := missingFromSet(AdminApiPaths(), role.ApiPathPermissions)
	if len(missing) == 0 {
		return nil
	}
	_, err = s.rolePool.UpdateOne(ctx, bson.M{"roleName": AdministratorRoleName}, &basesvc.UpdateData{
		Set: map[string]interface{}{
			"apiPathPermissions": append(role.ApiPathPermissions, missing...),
			"lastEditorUuid":     systemCreatorUUID,
		},
	})
	if err != nil {
		return err
	}
	logger.GetAppLogger().Infof("Đã bổ sung %d API path quản trị vào role %s", len(missing), AdministratorRoleName)
	return nil
}

// InitAdminUser đảm bảo principal quản trị đầu tiên tồn tại và giữ role
// administrator. adminUUID rỗng thì bỏ qua (hệ thống khác sẽ gán admin sau).
func (s *InitService) InitAdminUser(ctx context.Context, adminUUID string) error {
	if adminUUID == "" {
		return nil
	}

	user, err := s.userPool.FindOne(ctx, bson.M{"uuid": adminUUID}, nil)
	if err != nil {
		if !errors.Is(err, common.ErrNotFound) {
			return err
		}
		uid, err := s.sequence.Next(ctx, SequenceUserUID, 0, DefaultStep())
		if err != nil {
			return err
		}
		_, err = s.userPool.InsertOne(ctx, authmodels.User{
			UID:   uid,
			UUID:  adminUUID,
			Roles: []string{AdministratorRoleName},
		})
		if err != nil && !errors.Is(err, common.ErrMongoDuplicate) {
			return err
		}
		logger.GetAppLogger().Infof("Đã tạo principal quản trị %s", adminUUID)
		return nil
	}

	for _, r := range user.Roles {
		if r == AdministratorRoleName {
			return nil
		}
	}
	_, err = s.userPool.UpdateOne(ctx, bson.M{"uuid": adminUUID}, &basesvc.UpdateData{
		Set: map[string]interface{}{"roles": append(user.Roles, AdministratorRoleName)},
	})
	return err
}

// missingFromSet trả về các phần tử của want chưa có trong have.
func missingFromSet(want, have []string) []string {
	known := make(map[string]struct{}, len(have))
	for _, v := range have {
		known[v] = struct{}{}
	}
	missing := []string{}
	for _, v := range want {
		if _, ok := known[v]; !ok {
			missing = append(missing, v)
		}
	}
	return missing
}

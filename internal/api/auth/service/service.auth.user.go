// Package authsvc - service cho principal (user) nhìn từ phía core RBAC.
// Core này chỉ quan tâm danh sách role của principal; xác thực mật khẩu,
// email hay token nằm ở hệ thống khác.
package authsvc

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"

	authmodels "github.com/tratiger/KiraKiraDouga-Libre-sub001/internal/api/auth/models"
	basesvc "github.com/tratiger/KiraKiraDouga-Libre-sub001/internal/api/base/service"
	rbacdto "github.com/tratiger/KiraKiraDouga-Libre-sub001/internal/api/rbac/dto"
	rbacmodels "github.com/tratiger/KiraKiraDouga-Libre-sub001/internal/api/rbac/models"
	rbacsvc "github.com/tratiger/KiraKiraDouga-Libre-sub001/internal/api/rbac/service"
	"github.com/tratiger/KiraKiraDouga-Libre-sub001/internal/common"
	"github.com/tratiger/KiraKiraDouga-Libre-sub001/internal/database"
	"github.com/tratiger/KiraKiraDouga-Libre-sub001/internal/global"
)

// UserService gán role cho principal và tra cứu role hiệu lực.
type UserService struct {
	*basesvc.BaseServiceMongoImpl[authmodels.User]
	rolePool *basesvc.BaseServiceMongoImpl[rbacmodels.RbacRole]
	resolver *rbacsvc.RbacResolverService
}

// NewUserService tạo mới UserService
func NewUserService(resolver *rbacsvc.RbacResolverService) (*UserService, error) {
	userCol, exist := global.RegistryCollections.Get(global.MongoDB_ColNames.Users)
	if !exist {
		return nil, fmt.Errorf("failed to get users collection: %v", common.ErrNotFound)
	}
	roleCol, exist := global.RegistryCollections.Get(global.MongoDB_ColNames.RbacRoles)
	if !exist {
		return nil, fmt.Errorf("failed to get role collection: %v", common.ErrNotFound)
	}
	return &UserService{
		BaseServiceMongoImpl: basesvc.NewBaseServiceMongo[authmodels.User](userCol),
		rolePool:             basesvc.NewBaseServiceMongo[rbacmodels.RbacRole](roleCol),
		resolver:             resolver,
	}, nil
}

// AdminUpdateUserRoleByUUID thay thế nguyên khối danh sách role của một
// principal. Mọi tên role trong tập mới phải tồn tại; kiểm tra và ghi đè
// chạy trong cùng transaction để loại race với xóa role.
func (s *UserService) AdminUpdateUserRoleByUUID(ctx context.Context, actor rbacdto.Principal, input *rbacdto.UserRolesUpdateInput) (*rbacdto.UserRolesUpdateResult, error) {
	if err := s.resolver.Authorize(ctx, actor, rbacsvc.PathAdminUpdateUserRole); err != nil {
		return nil, err
	}
	if err := global.Validate.Struct(input); err != nil {
		return nil, common.NewError(common.ErrCodeValidationInput, err.Error(), common.StatusBadRequest, nil)
	}

	newRoles := dedupeRoleNames(input.NewRoles)

	err := database.WithTransaction(ctx, global.MongoDB_Session, func(sessCtx context.Context) error {
		if len(newRoles) > 0 {
			count, err := s.rolePool.CountDocuments(sessCtx, bson.M{"roleName": bson.M{"$in": newRoles}})
			if err != nil {
				return err
			}
			if count != int64(len(newRoles)) {
				return common.NewError(common.ErrCodeBusinessReference,
					"danh sách role mới chứa role chưa đăng ký", common.StatusBadRequest, nil)
			}
		}

		_, err := s.UpdateOne(sessCtx, bson.M{"uuid": input.UUID}, &basesvc.UpdateData{
			Set: map[string]interface{}{"roles": newRoles},
		})
		return err
	})
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return &rbacdto.UserRolesUpdateResult{Success: false, Message: "Principal không tồn tại"}, err
		}
		return nil, err
	}

	return &rbacdto.UserRolesUpdateResult{Success: true}, nil
}

// AdminGetUserRolesByUid tra cứu danh sách role hiệu lực của principal
// theo UID, dành cho màn hình quản trị.
func (s *UserService) AdminGetUserRolesByUid(ctx context.Context, actor rbacdto.Principal, uid int64) (*rbacdto.UserRolesResult, error) {
	if err := s.resolver.Authorize(ctx, actor, rbacsvc.PathAdminGetUserRoles); err != nil {
		return nil, err
	}

	user, err := s.FindOne(ctx, bson.M{"uid": uid}, nil)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return &rbacdto.UserRolesResult{Success: false, Message: "Principal không tồn tại", Roles: []string{}}, err
		}
		return nil, err
	}

	return s.resolveRoleDocuments(ctx, user.Roles)
}

// GetSelfRoles trả về danh sách role của chính principal đang gọi,
// không cần quyền quản trị.
func (s *UserService) GetSelfRoles(ctx context.Context, principal rbacdto.Principal) (*rbacdto.UserRolesResult, error) {
	filter := bson.M{}
	switch {
	case principal.UUID != "" && principal.UID == nil:
		filter["uuid"] = principal.UUID
	case principal.UUID == "" && principal.UID != nil:
		filter["uid"] = *principal.UID
	default:
		return nil, common.ErrInvalidInput
	}

	user, err := s.FindOne(ctx, filter, nil)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return &rbacdto.UserRolesResult{Success: false, Message: "Principal không tồn tại", Roles: []string{}}, err
		}
		return nil, err
	}

	return s.resolveRoleDocuments(ctx, user.Roles)
}

// resolveRoleDocuments nạp document role cho danh sách tên role.
// Tên role mồ côi (role đã bị xóa) vẫn có mặt trong Roles nhưng không có
// document tương ứng trong Result.
func (s *UserService) resolveRoleDocuments(ctx context.Context, roles []string) (*rbacdto.UserRolesResult, error) {
	if roles == nil {
		roles = []string{}
	}
	result := &rbacdto.UserRolesResult{Success: true, Roles: roles}
	if len(roles) == 0 {
		return result, nil
	}

	docs, err := s.rolePool.Find(ctx, bson.M{"roleName": bson.M{"$in": roles}}, nil)
	if err != nil {
		return nil, err
	}
	result.Result = docs
	return result, nil
}

func dedupeRoleNames(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, v := range in {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

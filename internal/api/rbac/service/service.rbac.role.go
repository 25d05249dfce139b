package rbacsvc

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	basesvc "github.com/tratiger/KiraKiraDouga-Libre-sub001/internal/api/base/service"
	rbacdto "github.com/tratiger/KiraKiraDouga-Libre-sub001/internal/api/rbac/dto"
	models "github.com/tratiger/KiraKiraDouga-Libre-sub001/internal/api/rbac/models"
	"github.com/tratiger/KiraKiraDouga-Libre-sub001/internal/common"
	"github.com/tratiger/KiraKiraDouga-Libre-sub001/internal/database"
	"github.com/tratiger/KiraKiraDouga-Libre-sub001/internal/global"
)

// RbacRoleService quản trị registry role và tập quyền của role.
type RbacRoleService struct {
	*basesvc.BaseServiceMongoImpl[models.RbacRole]
	apiPathPool *basesvc.BaseServiceMongoImpl[models.RbacApiPath]
	sequence    *SequenceService
	resolver    *RbacResolverService
}

// NewRbacRoleService tạo mới RbacRoleService
func NewRbacRoleService(sequence *SequenceService, resolver *RbacResolverService) (*RbacRoleService, error) {
	roleCol, exist := global.RegistryCollections.Get(global.MongoDB_ColNames.RbacRoles)
	if !exist {
		return nil, fmt.Errorf("failed to get role collection: %v", common.ErrNotFound)
	}
	apiPathCol, exist := global.RegistryCollections.Get(global.MongoDB_ColNames.RbacApiPaths)
	if !exist {
		return nil, fmt.Errorf("failed to get api path collection: %v", common.ErrNotFound)
	}
	return &RbacRoleService{
		BaseServiceMongoImpl: basesvc.NewBaseServiceMongo[models.RbacRole](roleCol),
		apiPathPool:          basesvc.NewBaseServiceMongo[models.RbacApiPath](apiPathCol),
		sequence:             sequence,
		resolver:             resolver,
	}, nil
}

// CreateRole tạo một role mới với tập quyền RỖNG.
// Quyền chỉ được gán sau đó qua UpdateApiPathPermissionsForRole.
func (s *RbacRoleService) CreateRole(ctx context.Context, actor rbacdto.Principal, input *rbacdto.RoleCreateInput) (*rbacdto.RoleCreateResult, error) {
	if err := s.resolver.Authorize(ctx, actor, PathCreateRole); err != nil {
		return nil, err
	}
	if err := global.Validate.Struct(input); err != nil {
		return nil, common.NewError(common.ErrCodeValidationInput, err.Error(), common.StatusBadRequest, nil)
	}

	exists, err := s.DocumentExists(ctx, bson.M{"roleName": input.Name})
	if err != nil {
		return nil, err
	}
	if exists {
		return &rbacdto.RoleCreateResult{Success: false, Message: "Role đã tồn tại"}, common.ErrDuplicate
	}

	roleId, err := s.sequence.Next(ctx, SequenceRoleID, 0, DefaultStep())
	if err != nil {
		return nil, err
	}

	created, err := s.InsertOne(ctx, models.RbacRole{
		RoleID:             roleId,
		Name:               input.Name,
		Type:               input.Type,
		Color:              input.Color,
		Description:        input.Description,
		ApiPathPermissions: []string{},
		CreatorUUID:        actor.UUID,
	})
	if err != nil {
		if errors.Is(err, common.ErrMongoDuplicate) {
			return &rbacdto.RoleCreateResult{Success: false, Message: "Role đã tồn tại"}, common.ErrDuplicate
		}
		return nil, err
	}

	return &rbacdto.RoleCreateResult{Success: true, Result: &created}, nil
}

// DeleteRole xóa một role theo tên. Principal đang giữ tên role này sẽ
// mất các quyền tương ứng ngay ở lần phân giải kế tiếp; danh sách role
// trên user không cần dọn (tên role mồ côi bị join bỏ qua vô hại).
func (s *RbacRoleService) DeleteRole(ctx context.Context, actor rbacdto.Principal, input *rbacdto.RoleDeleteInput) (*rbacdto.RoleDeleteResult, error) {
	if err := s.resolver.Authorize(ctx, actor, PathDeleteRole); err != nil {
		return nil, err
	}
	if err := global.Validate.Struct(input); err != nil {
		return nil, common.NewError(common.ErrCodeValidationInput, err.Error(), common.StatusBadRequest, nil)
	}

	if _, err := s.DeleteOne(ctx, bson.M{"roleName": input.Name}); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return &rbacdto.RoleDeleteResult{Success: false, Message: "Role không tồn tại"}, err
		}
		return nil, err
	}

	return &rbacdto.RoleDeleteResult{Success: true}, nil
}

// UpdateApiPathPermissionsForRole thay thế NGUYÊN KHỐI tập quyền của role.
// Mọi path trong tập mới phải tồn tại trong registry API path; một path lạ
// làm toàn bộ update bị từ chối, role giữ nguyên tập cũ. Kiểm tra tồn tại
// và ghi đè chạy trong cùng một transaction để loại race với xóa path.
func (s *RbacRoleService) UpdateApiPathPermissionsForRole(ctx context.Context, actor rbacdto.Principal, input *rbacdto.RoleUpdatePermissionsInput) (*rbacdto.RoleUpdatePermissionsResult, error) {
	if err := s.resolver.Authorize(ctx, actor, PathUpdateRolePermissions); err != nil {
		return nil, err
	}
	if err := global.Validate.Struct(input); err != nil {
		return nil, common.NewError(common.ErrCodeValidationInput, err.Error(), common.StatusBadRequest, nil)
	}

	// Tập quyền là tập hợp: khử trùng lặp trước khi so khớp và ghi.
	permissions := dedupeStrings(input.ApiPathPermissions)

	var updated models.RbacRole
	err := database.WithTransaction(ctx, global.MongoDB_Session, func(sessCtx context.Context) error {
		if len(permissions) > 0 {
			known, err := s.apiPathPool.Distinct(sessCtx, "apiPath", bson.M{"apiPath": bson.M{"$in": permissions}})
			if err != nil {
				return err
			}
			if unknown := missingStrings(permissions, known); len(unknown) > 0 {
				return common.NewReferenceError(
					fmt.Sprintf("các API path chưa đăng ký: %v", unknown), false, input.Name)
			}
		}

		role, err := s.UpdateOne(sessCtx, bson.M{"roleName": input.Name}, &basesvc.UpdateData{
			Set: map[string]interface{}{
				"apiPathPermissions": permissions,
				"lastEditorUuid":     actor.UUID,
			},
		})
		if err != nil {
			return err
		}
		updated = role
		return nil
	})
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return &rbacdto.RoleUpdatePermissionsResult{Success: false, Message: "Role không tồn tại"}, err
		}
		return nil, err
	}

	return &rbacdto.RoleUpdatePermissionsResult{Success: true, Result: &updated}, nil
}

// roleSearchFilter dựng filter tìm kiếm role theo substring không phân
// biệt hoa thường.
func roleSearchFilter(searchKey string) bson.M {
	if searchKey == "" {
		return bson.M{}
	}
	regex := primitive.Regex{Pattern: regexp.QuoteMeta(searchKey), Options: "i"}
	return bson.M{"$or": bson.A{
		bson.M{"roleName": regex},
		bson.M{"roleType": regex},
		bson.M{"roleDescription": regex},
	}}
}

// GetRoles tìm kiếm + phân trang role.
func (s *RbacRoleService) GetRoles(ctx context.Context, actor rbacdto.Principal, input *rbacdto.RoleSearchInput) (*rbacdto.RoleSearchResult, error) {
	if err := s.resolver.Authorize(ctx, actor, PathGetRoles); err != nil {
		return nil, err
	}

	filter := roleSearchFilter(input.SearchKey)
	page, err := s.FindWithPagination(ctx, filter, input.Page, input.PageSize, nil)
	if err != nil {
		return nil, err
	}

	return &rbacdto.RoleSearchResult{
		Success: true,
		Count:   page.Total,
		Result:  page.Items,
	}, nil
}

// dedupeStrings khử trùng lặp, giữ thứ tự xuất hiện đầu tiên.
func dedupeStrings(in []string) []string {
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

// missingStrings trả về các phần tử của want không có trong have
// (have là kết quả Distinct nên phần tử là interface{}).
func missingStrings(want []string, have []interface{}) []string {
	known := make(map[string]struct{}, len(have))
	for _, v := range have {
		if sv, ok := v.(string); ok {
			known[sv] = struct{}{}
		}
	}
	missing := []string{}
	for _, v := range want {
		if _, ok := known[v]; !ok {
			missing = append(missing, v)
		}
	}
	return missing
}

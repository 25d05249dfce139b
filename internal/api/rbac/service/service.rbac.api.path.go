package rbacsvc

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	basesvc "github.com/tratiger/KiraKiraDouga-Libre-sub001/internal/api/base/service"
	rbacdto "github.com/tratiger/KiraKiraDouga-Libre-sub001/internal/api/rbac/dto"
	models "github.com/tratiger/KiraKiraDouga-Libre-sub001/internal/api/rbac/models"
	"github.com/tratiger/KiraKiraDouga-Libre-sub001/internal/common"
	"github.com/tratiger/KiraKiraDouga-Libre-sub001/internal/global"
)

// Tên sequence cấp định danh số cho API path và role.
const (
	SequenceApiPathID = "rbac-api-path-id"
	SequenceRoleID    = "rbac-role-id"
)

// RbacApiPathService quản trị registry API path được bảo vệ.
// Mọi thao tác đều tự gác bằng resolver trước khi chạm store.
type RbacApiPathService struct {
	*basesvc.BaseServiceMongoImpl[models.RbacApiPath]
	rolePool *basesvc.BaseServiceMongoImpl[models.RbacRole]
	sequence *SequenceService
	resolver *RbacResolverService
}

// NewRbacApiPathService tạo mới RbacApiPathService
func NewRbacApiPathService(sequence *SequenceService, resolver *RbacResolverService) (*RbacApiPathService, error) {
	apiPathCol, exist := global.RegistryCollections.Get(global.MongoDB_ColNames.RbacApiPaths)
	if !exist {
		return nil, fmt.Errorf("failed to get api path collection: %v", common.ErrNotFound)
	}
	roleCol, exist := global.RegistryCollections.Get(global.MongoDB_ColNames.RbacRoles)
	if !exist {
		return nil, fmt.Errorf("failed to get role collection: %v", common.ErrNotFound)
	}
	return &RbacApiPathService{
		BaseServiceMongoImpl: basesvc.NewBaseServiceMongo[models.RbacApiPath](apiPathCol),
		rolePool:             basesvc.NewBaseServiceMongo[models.RbacRole](roleCol),
		sequence:             sequence,
		resolver:             resolver,
	}, nil
}

// CreateApiPath đăng ký một API path mới.
// Path trùng bị từ chối; ApiPathID cấp từ sequence và bất biến sau tạo.
func (s *RbacApiPathService) CreateApiPath(ctx context.Context, actor rbacdto.Principal, input *rbacdto.ApiPathCreateInput) (*rbacdto.ApiPathCreateResult, error) {
	if err := s.resolver.Authorize(ctx, actor, PathCreateApiPath); err != nil {
		return nil, err
	}
	if err := global.Validate.Struct(input); err != nil {
		return nil, common.NewError(common.ErrCodeValidationInput, err.Error(), common.StatusBadRequest, nil)
	}

	exists, err := s.DocumentExists(ctx, bson.M{"apiPath": input.Path})
	if err != nil {
		return nil, err
	}
	if exists {
		return &rbacdto.ApiPathCreateResult{Success: false, Message: "API path đã tồn tại"}, common.ErrDuplicate
	}

	apiPathId, err := s.sequence.Next(ctx, SequenceApiPathID, 0, DefaultStep())
	if err != nil {
		return nil, err
	}

	created, err := s.InsertOne(ctx, models.RbacApiPath{
		ApiPathID:   apiPathId,
		Path:        input.Path,
		Type:        input.Type,
		Color:       input.Color,
		Description: input.Description,
		CreatorUUID: actor.UUID,
	})
	if err != nil {
		// Hai request tạo cùng path đua nhau: unique index thắng cuộc,
		// kẻ thua nhận duplicate thay vì ghi đè.
		if errors.Is(err, common.ErrMongoDuplicate) {
			return &rbacdto.ApiPathCreateResult{Success: false, Message: "API path đã tồn tại"}, common.ErrDuplicate
		}
		return nil, err
	}

	return &rbacdto.ApiPathCreateResult{Success: true, Result: &created}, nil
}

// DeleteApiPath xóa một API path theo chuỗi path.
// Nếu còn bất kỳ role nào tham chiếu path, xóa bị từ chối với cờ
// isAssigned; caller phải gỡ path khỏi tập quyền của các role trước.
func (s *RbacApiPathService) DeleteApiPath(ctx context.Context, actor rbacdto.Principal, input *rbacdto.ApiPathDeleteInput) (*rbacdto.ApiPathDeleteResult, error) {
	if err := s.resolver.Authorize(ctx, actor, PathDeleteApiPath); err != nil {
		return nil, err
	}
	if err := global.Validate.Struct(input); err != nil {
		return nil, common.NewError(common.ErrCodeValidationInput, err.Error(), common.StatusBadRequest, nil)
	}

	assigned, err := s.rolePool.CountDocuments(ctx, bson.M{"apiPathPermissions": input.Path})
	if err != nil {
		return nil, err
	}
	if assigned > 0 {
		return &rbacdto.ApiPathDeleteResult{
			Success:    false,
			IsAssigned: true,
			Message:    fmt.Sprintf("API path đang được gán cho %d role, hãy gỡ quyền trước khi xóa", assigned),
		}, common.NewReferenceError("API path đang được role tham chiếu", true, input.Path)
	}

	if _, err := s.DeleteOne(ctx, bson.M{"apiPath": input.Path}); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return &rbacdto.ApiPathDeleteResult{Success: false, Message: "API path không tồn tại"}, err
		}
		return nil, err
	}

	return &rbacdto.ApiPathDeleteResult{Success: true}, nil
}

// apiPathSearchFilter dựng filter tìm kiếm substring không phân biệt hoa
// thường trên các field text của API path. SearchKey rỗng -> khớp tất cả.
func apiPathSearchFilter(searchKey string) bson.M {
	if searchKey == "" {
		return bson.M{}
	}
	// Search key luôn được hiểu như chuỗi literal, không phải pattern.
	regex := primitive.Regex{Pattern: regexp.QuoteMeta(searchKey), Options: "i"}
	return bson.M{"$or": bson.A{
		bson.M{"apiPath": regex},
		bson.M{"apiPathType": regex},
		bson.M{"apiPathDescription": regex},
	}}
}

// GetApiPaths tìm kiếm + phân trang API path, mỗi kết quả kèm cờ
// isAssignedOnce (path đã được gán vào ít nhất một role hay chưa) tính
// bằng join với collection role ngay trong aggregation.
func (s *RbacApiPathService) GetApiPaths(ctx context.Context, actor rbacdto.Principal, input *rbacdto.ApiPathSearchInput) (*rbacdto.ApiPathSearchResult, error) {
	if err := s.resolver.Authorize(ctx, actor, PathGetApiPaths); err != nil {
		return nil, err
	}

	filter := apiPathSearchFilter(input.SearchKey)
	total, err := s.CountDocuments(ctx, filter)
	if err != nil {
		return nil, err
	}

	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: filter}},
		bson.D{{Key: "$sort", Value: bson.D{{Key: "apiPathId", Value: 1}}}},
	}
	if input.Page > 0 && input.PageSize > 0 {
		pipeline = append(pipeline,
			bson.D{{Key: "$skip", Value: (input.Page - 1) * input.PageSize}},
			bson.D{{Key: "$limit", Value: input.PageSize}},
		)
	}
	pipeline = append(pipeline,
		bson.D{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: global.MongoDB_ColNames.RbacRoles},
			{Key: "localField", Value: "apiPath"},
			{Key: "foreignField", Value: "apiPathPermissions"},
			{Key: "as", Value: "assignedRoles"},
		}}},
		bson.D{{Key: "$addFields", Value: bson.D{
			{Key: "isAssignedOnce", Value: bson.D{
				{Key: "$gt", Value: bson.A{bson.D{{Key: "$size", Value: "$assignedRoles"}}, 0}},
			}},
		}}},
		bson.D{{Key: "$project", Value: bson.D{{Key: "assignedRoles", Value: 0}}}},
	)

	results := []models.RbacApiPathResult{}
	if err := s.Aggregate(ctx, pipeline, &results); err != nil {
		return nil, err
	}

	return &rbacdto.ApiPathSearchResult{
		Success: true,
		Count:   total,
		Result:  results,
	}, nil
}

// GetApiPathOptions lấy các giá trị type riêng biệt đang có, phục vụ UI lọc.
func (s *RbacApiPathService) GetApiPathOptions(ctx context.Context, actor rbacdto.Principal) ([]string, error) {
	if err := s.resolver.Authorize(ctx, actor, PathGetApiPaths); err != nil {
		return nil, err
	}
	raw, err := s.Distinct(ctx, "apiPathType", bson.M{"apiPathType": bson.M{"$ne": ""}})
	if err != nil {
		return nil, err
	}
	types := make([]string, 0, len(raw))
	for _, v := range raw {
		if sv, ok := v.(string); ok {
			types = append(types, sv)
		}
	}
	return types, nil
}

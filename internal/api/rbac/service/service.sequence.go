// Package rbacsvc - service bộ đếm sequence (giả lập auto-increment).
package rbacsvc

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	basesvc "github.com/tratiger/KiraKiraDouga-Libre-sub001/internal/api/base/service"
	models "github.com/tratiger/KiraKiraDouga-Libre-sub001/internal/api/rbac/models"
	"github.com/tratiger/KiraKiraDouga-Libre-sub001/internal/common"
	"github.com/tratiger/KiraKiraDouga-Libre-sub001/internal/global"
	"github.com/tratiger/KiraKiraDouga-Libre-sub001/internal/utility"
)

// SequenceService cấp phát số tự tăng theo tên logic.
// Tính đúng đắn dưới ghi đồng thời dựa hoàn toàn vào thao tác increment
// atomic của store, không có lock ở tầng ứng dụng.
type SequenceService struct {
	*basesvc.BaseServiceMongoImpl[models.SequenceValue]
}

// NewSequenceService tạo mới SequenceService
func NewSequenceService() (*SequenceService, error) {
	collection, exist := global.RegistryCollections.Get(global.MongoDB_ColNames.SequenceValues)
	if !exist {
		return nil, fmt.Errorf("failed to get sequence collection: %v", common.ErrNotFound)
	}
	return &SequenceService{
		BaseServiceMongoImpl: basesvc.NewBaseServiceMongo[models.SequenceValue](collection),
	}, nil
}

// DefaultStep trả về bước tăng sequence cấu hình qua SEQUENCE_STEP.
// Config chưa nạp hoặc giá trị không dương thì dùng 1.
func DefaultStep() int64 {
	if global.ServerConfig != nil && global.ServerConfig.SequenceStep > 0 {
		return global.ServerConfig.SequenceStep
	}
	return 1
}

// NextSequencePipeline dựng update pipeline atomic cho một lần cấp số:
// sequenceValue = ifNull(sequenceValue, defaultStart) + step.
// Create-then-increment là MỘT thao tác "increment with upsert" duy nhất,
// tránh race create/read/update; document mới trả về defaultStart + step.
func NextSequencePipeline(defaultStart, step int64) bson.A {
	return bson.A{
		bson.D{{Key: "$set", Value: bson.D{
			{Key: "sequenceValue", Value: bson.D{
				{Key: "$add", Value: bson.A{
					bson.D{{Key: "$ifNull", Value: bson.A{"$sequenceValue", defaultStart}}},
					step,
				}},
			}},
		}}},
	}
}

// Next cấp phát giá trị kế tiếp cho sequence sequenceId.
// Nếu document chưa tồn tại, nó được tạo atomic với giá trị ban đầu
// defaultStart rồi tăng step trong cùng một thao tác. Hai caller đồng thời
// trên cùng key không bao giờ nhận giá trị trùng nhau.
func (s *SequenceService) Next(ctx context.Context, sequenceId string, defaultStart, step int64) (int64, error) {
	result, err := s.FindOneAndUpdate(
		ctx,
		bson.M{"_id": sequenceId},
		NextSequencePipeline(defaultStart, step),
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	)
	if err != nil {
		return 0, err
	}
	return result.Value, nil
}

// NextExcluding cấp phát giá trị kế tiếp, bỏ qua mọi giá trị nằm trong
// excluded (các số được giữ lại, không bao giờ cấp phát). Vòng lặp loại
// trừ đơn giản, kết thúc nhanh với tập excluded nhỏ.
func (s *SequenceService) NextExcluding(ctx context.Context, sequenceId string, excluded []int64, defaultStart, step int64) (int64, error) {
	for {
		value, err := s.Next(ctx, sequenceId, defaultStart, step)
		if err != nil {
			return 0, err
		}
		if !utility.ContainsInt64(excluded, value) {
			return value, nil
		}
	}
}

// IncrementField tăng atomic một field số bất kỳ trên một document bất kỳ
// (địa chỉ theo _id), tái sử dụng cùng bảo đảm atomic increment của store.
// Dùng cho các bộ đếm nhúng trong document nghiệp vụ (ví dụ lượt xem).
func IncrementField[T any](ctx context.Context, pool *basesvc.BaseServiceMongoImpl[T], id primitive.ObjectID, fieldKey string, step int64) (T, error) {
	return pool.FindOneAndUpdate(
		ctx,
		bson.M{"_id": id},
		&basesvc.UpdateData{Inc: map[string]interface{}{fieldKey: step}},
		options.FindOneAndUpdate().SetUpsert(false).SetReturnDocument(options.After),
	)
}

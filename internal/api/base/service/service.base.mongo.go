// Package basesvc cung cấp các service cơ bản cho việc tương tác với MongoDB.
// Đây là điểm chốt duy nhất cho mọi I/O tới document store: kỷ luật
// transaction, lựa chọn read preference và binding schema/collection được
// áp dụng thống nhất tại đây.
package basesvc

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	basemodels "github.com/tratiger/KiraKiraDouga-Libre-sub001/internal/api/base/models"
	"github.com/tratiger/KiraKiraDouga-Libre-sub001/internal/common"
	"github.com/tratiger/KiraKiraDouga-Libre-sub001/internal/global"
	"github.com/tratiger/KiraKiraDouga-Libre-sub001/internal/logger"
	"github.com/tratiger/KiraKiraDouga-Libre-sub001/internal/utility"
)

// UpdateData định nghĩa kiểu dữ liệu cho partial update
type UpdateData struct {
	Set         map[string]interface{} `bson:"$set,omitempty"`         // Các trường cần update
	SetOnInsert map[string]interface{} `bson:"$setOnInsert,omitempty"` // Các trường chỉ set khi insert (upsert tạo mới)
	Unset       map[string]interface{} `bson:"$unset,omitempty"`       // Các trường cần xóa
	Inc         map[string]interface{} `bson:"$inc,omitempty"`         // Các trường tăng giảm atomic
}

// ToUpdateData chuyển đổi interface{} thành UpdateData
func ToUpdateData(data interface{}) (*UpdateData, error) {
	// Nếu data đã là UpdateData, return luôn
	if update, ok := data.(*UpdateData); ok {
		return update, nil
	}
	if update, ok := data.(UpdateData); ok {
		return &update, nil
	}

	// Chuyển data thành map
	dataMap, err := utility.ToMap(data)
	if err != nil {
		return nil, err
	}

	// Nếu data có sẵn các operator MongoDB ($set, $unset, $inc)
	if hasAnyOperator(dataMap) {
		update := &UpdateData{}
		if setVal, ok := dataMap["$set"].(map[string]interface{}); ok {
			update.Set = setVal
		}
		if setOnInsertVal, ok := dataMap["$setOnInsert"].(map[string]interface{}); ok {
			update.SetOnInsert = setOnInsertVal
		}
		if unsetVal, ok := dataMap["$unset"].(map[string]interface{}); ok {
			update.Unset = unsetVal
		}
		if incVal, ok := dataMap["$inc"].(map[string]interface{}); ok {
			update.Inc = incVal
		}
		return update, nil
	}

	// Nếu data là map thường, wrap trong $set
	return &UpdateData{
		Set: dataMap,
	}, nil
}

// hasAnyOperator kiểm tra map có chứa operator MongoDB được hỗ trợ không.
func hasAnyOperator(m map[string]interface{}) bool {
	for _, op := range []string{"$set", "$setOnInsert", "$unset", "$inc"} {
		if _, ok := m[op]; ok {
			return true
		}
	}
	return false
}

// isPipelineUpdate nhận diện update dạng aggregation pipeline (bson.A /
// mongo.Pipeline). Pipeline được truyền nguyên vẹn xuống driver, không
// stamp timestamp - caller tự chịu trách nhiệm về các stage của mình.
func isPipelineUpdate(update interface{}) bool {
	switch update.(type) {
	case mongo.Pipeline, bson.A, []bson.D, []bson.M, []interface{}:
		return true
	default:
		return false
	}
}

// ====================================
// INTERFACE VÀ STRUCT
// ====================================

// BaseServiceMongo định nghĩa interface chứa các phương thức cơ bản cho
// việc tương tác với MongoDB.
// Type Parameters:
//   - Model: Kiểu dữ liệu của model
type BaseServiceMongo[Model any] interface {
	// 1.1 Thao tác Insert
	InsertOne(ctx context.Context, data Model) (Model, error)
	InsertMany(ctx context.Context, data []Model) ([]Model, error)

	// 1.2 Thao tác Find
	FindOne(ctx context.Context, filter interface{}, opts *options.FindOneOptions) (Model, error)
	Find(ctx context.Context, filter interface{}, opts *options.FindOptions) ([]Model, error)

	// 1.3 Thao tác Update
	UpdateOne(ctx context.Context, filter interface{}, update interface{}) (Model, error)
	UpdateMany(ctx context.Context, filter interface{}, update interface{}) (*basemodels.UpdateManyResult, error)

	// 1.4 Thao tác Delete
	DeleteOne(ctx context.Context, filter interface{}) (*basemodels.DeleteResult, error)
	DeleteMany(ctx context.Context, filter interface{}) (*basemodels.DeleteResult, error)

	// 1.5 Thao tác Atomic
	FindOneAndUpdate(ctx context.Context, filter interface{}, update interface{}, opts *options.FindOneAndUpdateOptions) (Model, error)

	// 1.6 Các thao tác khác
	Aggregate(ctx context.Context, pipeline mongo.Pipeline, results interface{}) error
	CountDocuments(ctx context.Context, filter interface{}) (int64, error)
	Distinct(ctx context.Context, fieldName string, filter interface{}) ([]interface{}, error)

	// 2.1 Các hàm Find mở rộng
	FindOneById(ctx context.Context, id primitive.ObjectID) (Model, error)
	FindWithPagination(ctx context.Context, filter interface{}, page, limit int64, opts *options.FindOptions) (*basemodels.PaginateResult[Model], error)
	FindWithLookup(ctx context.Context, filter interface{}, lookup basemodels.Lookup) ([]bson.M, error)

	// 2.2 Các hàm kiểm tra
	DocumentExists(ctx context.Context, filter interface{}) (bool, error)
}

// BaseServiceMongoImpl triển khai BaseServiceMongo cho một collection.
// Hai collection handle được dựng một lần lúc khởi tạo: handle đọc primary
// (dùng bên trong transaction session) và handle đọc secondaryPreferred
// (mặc định ngoài transaction, để scale đọc). Không bao giờ sửa đổi options
// mà caller truyền vào - mọi options đều được dựng mới bên trong thao tác.
type BaseServiceMongoImpl[T any] struct {
	collection    *mongo.Collection // Collection gốc (ghi luôn đi primary)
	readPrimary   *mongo.Collection // Handle đọc từ primary
	readSecondary *mongo.Collection // Handle đọc prefer secondary
}

// NewBaseServiceMongo tạo mới một BaseServiceMongoImpl bound vào collection.
func NewBaseServiceMongo[T any](collection *mongo.Collection) *BaseServiceMongoImpl[T] {
	primary, err := collection.Clone(options.Collection().SetReadPreference(readpref.Primary()))
	if err != nil {
		primary = collection
	}
	secondary, err := collection.Clone(options.Collection().SetReadPreference(readpref.SecondaryPreferred()))
	if err != nil {
		secondary = collection
	}
	return &BaseServiceMongoImpl[T]{
		collection:    collection,
		readPrimary:   primary,
		readSecondary: secondary,
	}
}

// Collection trả về collection MongoDB gốc.
func (s *BaseServiceMongoImpl[T]) Collection() *mongo.Collection {
	return s.collection
}

// readCollection chọn collection handle cho thao tác đọc.
// Khi ctx mang session (đang trong transaction), đọc bắt buộc từ primary:
// đọc từ secondary bên trong transaction sẽ thấy state cũ so với các ghi
// chưa commit của chính transaction đó.
func (s *BaseServiceMongoImpl[T]) readCollection(ctx context.Context) *mongo.Collection {
	if mongo.SessionFromContext(ctx) != nil {
		return s.readPrimary
	}
	return s.readSecondary
}

// normalizeFilter chuẩn hóa filter nil/rỗng thành bson.D{}.
func normalizeFilter(filter interface{}) interface{} {
	if filter == nil {
		return bson.D{}
	}
	if filterMap, ok := filter.(map[string]interface{}); ok && len(filterMap) == 0 {
		return bson.D{}
	}
	return filter
}

// ====================================
// NHÓM 1: CÁC HÀM CHUẨN MONGODB DRIVER
// ====================================

// 1.1 Thao tác Insert
// -------------------

// InsertOne tạo mới một bản ghi trong database và trả về document vừa tạo
// (kèm identifier do server sinh). Uniqueness domain-level caller phải tự
// kiểm tra trước khi insert nếu index của store chưa đủ.
func (s *BaseServiceMongoImpl[T]) InsertOne(ctx context.Context, data T) (T, error) {
	var zero T

	// Chuyển data thành map để thêm timestamps
	dataMap, err := utility.ToMap(data)
	if err != nil {
		return zero, common.ErrInvalidFormat
	}

	now := time.Now().UnixMilli()
	dataMap["createdAt"] = now
	dataMap["updatedAt"] = now

	result, err := s.collection.InsertOne(ctx, dataMap)
	if err != nil {
		logger.GetDBLogger().WithFields(logrus.Fields{
			"collection": s.collection.Name(),
			"error":      err.Error(),
		}).Error("InsertOne failed")
		return zero, common.ConvertMongoError(err)
	}

	// Lấy lại document vừa tạo (đọc primary: phải thấy ghi của chính mình)
	var created T
	err = s.readPrimary.FindOne(ctx, bson.M{"_id": result.InsertedID}).Decode(&created)
	if err != nil {
		return zero, common.ConvertMongoError(err)
	}
	return created, nil
}

// InsertMany tạo nhiều bản ghi trong database
func (s *BaseServiceMongoImpl[T]) InsertMany(ctx context.Context, data []T) ([]T, error) {
	if len(data) == 0 {
		return []T{}, nil
	}

	var documents []interface{}
	now := time.Now().UnixMilli()
	for _, item := range data {
		dataMap, err := utility.ToMap(item)
		if err != nil {
			return nil, common.ErrInvalidFormat
		}
		dataMap["createdAt"] = now
		dataMap["updatedAt"] = now
		documents = append(documents, dataMap)
	}

	result, err := s.collection.InsertMany(ctx, documents)
	if err != nil {
		logger.GetDBLogger().WithFields(logrus.Fields{
			"collection": s.collection.Name(),
			"error":      err.Error(),
		}).Error("InsertMany failed")
		return nil, common.ConvertMongoError(err)
	}

	var created []T
	cursor, err := s.readPrimary.Find(ctx, bson.M{"_id": bson.M{"$in": result.InsertedIDs}})
	if err != nil {
		return nil, common.ConvertMongoError(err)
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &created); err != nil {
		return nil, common.ConvertMongoError(err)
	}
	return created, nil
}

// 1.2 Thao tác Find
// ----------------

// FindOne tìm một document theo điều kiện lọc.
// opts của caller không bị sửa đổi; sort/projection được copy sang một
// options value mới.
func (s *BaseServiceMongoImpl[T]) FindOne(ctx context.Context, filter interface{}, opts *options.FindOneOptions) (T, error) {
	var zero T
	var result T

	filter = normalizeFilter(filter)

	freshOpts := options.FindOne()
	if opts != nil {
		freshOpts.Sort = opts.Sort
		freshOpts.Projection = opts.Projection
	}

	findResult := s.readCollection(ctx).FindOne(ctx, filter, freshOpts)
	if err := findResult.Err(); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return zero, common.ErrNotFound
		}
		return zero, common.ConvertMongoError(err)
	}

	if err := findResult.Decode(&result); err != nil {
		// Lỗi decode BSON là lỗi format, không phải lỗi MongoDB command
		return zero, common.NewError(
			common.ErrCodeValidationFormat,
			"Lỗi định dạng dữ liệu khi decode từ MongoDB",
			common.StatusBadRequest,
			err,
		)
	}
	return result, nil
}

// Find tìm tất cả bản ghi theo điều kiện lọc
func (s *BaseServiceMongoImpl[T]) Find(ctx context.Context, filter interface{}, opts *options.FindOptions) ([]T, error) {
	filter = normalizeFilter(filter)

	freshOpts := options.Find()
	if opts != nil {
		freshOpts.Sort = opts.Sort
		freshOpts.Projection = opts.Projection
		freshOpts.Skip = opts.Skip
		freshOpts.Limit = opts.Limit
	}

	cursor, err := s.readCollection(ctx).Find(ctx, filter, freshOpts)
	if err != nil {
		return nil, common.ConvertMongoError(err)
	}
	defer cursor.Close(ctx)

	var results []T
	if err = cursor.All(ctx, &results); err != nil {
		return nil, common.ConvertMongoError(err)
	}

	// Đảm bảo luôn trả về mảng, không phải nil
	if results == nil {
		results = []T{}
	}
	return results, nil
}

// 1.3 Thao tác Update
// ------------------

// UpdateOne cập nhật một document và trả về document sau cập nhật
func (s *BaseServiceMongoImpl[T]) UpdateOne(ctx context.Context, filter interface{}, update interface{}) (T, error) {
	var zero T
	filter = normalizeFilter(filter)

	updateData, err := ToUpdateData(update)
	if err != nil {
		return zero, common.ErrInvalidFormat
	}

	// Thêm updatedAt vào $set
	if updateData.Set == nil {
		updateData.Set = make(map[string]interface{})
	}
	updateData.Set["updatedAt"] = time.Now().UnixMilli()

	opts := options.FindOneAndUpdate().
		SetUpsert(false).
		SetReturnDocument(options.After)

	var updated T
	err = s.collection.FindOneAndUpdate(ctx, filter, updateData, opts).Decode(&updated)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return zero, common.ErrNotFound
		}
		return zero, common.ConvertMongoError(err)
	}
	return updated, nil
}

// UpdateMany cập nhật nhiều document.
// Trả về số document khớp và số document thực sự thay đổi: không khớp
// document nào là thất bại (ErrNotFound); khớp nhưng không thay đổi gì
// (giá trị đã đúng) vẫn là thành công.
func (s *BaseServiceMongoImpl[T]) UpdateMany(ctx context.Context, filter interface{}, update interface{}) (*basemodels.UpdateManyResult, error) {
	filter = normalizeFilter(filter)

	updateData, err := ToUpdateData(update)
	if err != nil {
		return nil, common.ErrInvalidFormat
	}

	if updateData.Set == nil {
		updateData.Set = make(map[string]interface{})
	}
	updateData.Set["updatedAt"] = time.Now().UnixMilli()

	opts := options.Update().SetUpsert(false)
	result, err := s.collection.UpdateMany(ctx, filter, updateData, opts)
	if err != nil {
		logger.GetDBLogger().WithFields(logrus.Fields{
			"collection": s.collection.Name(),
			"error":      err.Error(),
		}).Error("UpdateMany failed")
		return nil, common.ConvertMongoError(err)
	}

	if result.MatchedCount == 0 {
		return nil, common.ErrNotFound
	}

	return &basemodels.UpdateManyResult{
		MatchedCount:  result.MatchedCount,
		ModifiedCount: result.ModifiedCount,
	}, nil
}

// 1.4 Thao tác Delete
// ------------------

// DeleteOne xóa một document, trả về số lượng đã xóa kèm cờ xác nhận
func (s *BaseServiceMongoImpl[T]) DeleteOne(ctx context.Context, filter interface{}) (*basemodels.DeleteResult, error) {
	filter = normalizeFilter(filter)

	result, err := s.collection.DeleteOne(ctx, filter)
	if err != nil {
		logger.GetDBLogger().WithFields(logrus.Fields{
			"collection": s.collection.Name(),
			"error":      err.Error(),
		}).Error("DeleteOne failed")
		return nil, common.ConvertMongoError(err)
	}

	if result.DeletedCount == 0 {
		return nil, common.ErrNotFound
	}

	return &basemodels.DeleteResult{
		DeletedCount: result.DeletedCount,
		Acknowledged: true,
	}, nil
}

// DeleteMany xóa nhiều document theo filter. Không khớp document nào
// không phải lỗi - trả về DeletedCount = 0.
func (s *BaseServiceMongoImpl[T]) DeleteMany(ctx context.Context, filter interface{}) (*basemodels.DeleteResult, error) {
	filter = normalizeFilter(filter)

	result, err := s.collection.DeleteMany(ctx, filter)
	if err != nil {
		logger.GetDBLogger().WithFields(logrus.Fields{
			"collection": s.collection.Name(),
			"error":      err.Error(),
		}).Error("DeleteMany failed")
		return nil, common.ConvertMongoError(err)
	}

	return &basemodels.DeleteResult{
		DeletedCount: result.DeletedCount,
		Acknowledged: true,
	}, nil
}

// 1.5 Thao tác Atomic
// ------------------

// FindOneAndUpdate tìm và cập nhật một document trong một thao tác atomic,
// trả về document sau cập nhật. Mặc định upsert = true.
//
// Hợp đồng với caller: filter phải khớp tối đa MỘT thực thể logic - nếu
// khớp nhiều hơn, chỉ một document tùy ý bị cập nhật. Tầng này không kiểm
// tra điều đó.
//
// Update dạng aggregation pipeline (bson.A / mongo.Pipeline) được truyền
// nguyên vẹn; update dạng document được stamp updatedAt.
func (s *BaseServiceMongoImpl[T]) FindOneAndUpdate(ctx context.Context, filter interface{}, update interface{}, opts *options.FindOneAndUpdateOptions) (T, error) {
	var zero T
	filter = normalizeFilter(filter)

	freshOpts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)
	if opts != nil {
		if opts.Upsert != nil {
			freshOpts.Upsert = opts.Upsert
		}
		if opts.ReturnDocument != nil {
			freshOpts.ReturnDocument = opts.ReturnDocument
		}
		freshOpts.Sort = opts.Sort
		freshOpts.Projection = opts.Projection
	}

	var effectiveUpdate interface{}
	if isPipelineUpdate(update) {
		effectiveUpdate = update
	} else {
		updateData, err := ToUpdateData(update)
		if err != nil {
			return zero, common.ErrInvalidFormat
		}
		if updateData.Set == nil {
			updateData.Set = make(map[string]interface{})
		}
		updateData.Set["updatedAt"] = time.Now().UnixMilli()
		effectiveUpdate = updateData
	}

	var result T
	err := s.collection.FindOneAndUpdate(ctx, filter, effectiveUpdate, freshOpts).Decode(&result)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return zero, common.ErrNotFound
		}
		logger.GetDBLogger().WithFields(logrus.Fields{
			"collection": s.collection.Name(),
			"error":      err.Error(),
		}).Error("FindOneAndUpdate failed")
		return zero, common.ConvertMongoError(err)
	}
	return result, nil
}

// 1.6 Các thao tác khác
// --------------------

// Aggregate chạy một pipeline nhiều stage và decode toàn bộ kết quả vào
// results (con trỏ tới slice). Dùng cho join, duyệt đồ thị quyền và đếm
// mà các thao tác find/update đơn giản không biểu diễn được.
func (s *BaseServiceMongoImpl[T]) Aggregate(ctx context.Context, pipeline mongo.Pipeline, results interface{}) error {
	cursor, err := s.readCollection(ctx).Aggregate(ctx, pipeline)
	if err != nil {
		logger.GetDBLogger().WithFields(logrus.Fields{
			"collection": s.collection.Name(),
			"error":      err.Error(),
		}).Error("Aggregate failed")
		return common.ConvertMongoError(err)
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, results); err != nil {
		return common.ConvertMongoError(err)
	}
	return nil
}

// CountDocuments đếm số lượng document
func (s *BaseServiceMongoImpl[T]) CountDocuments(ctx context.Context, filter interface{}) (int64, error) {
	filter = normalizeFilter(filter)

	count, err := s.readCollection(ctx).CountDocuments(ctx, filter)
	if err != nil {
		return 0, common.ConvertMongoError(err)
	}
	return count, nil
}

// Distinct lấy danh sách các giá trị duy nhất
func (s *BaseServiceMongoImpl[T]) Distinct(ctx context.Context, fieldName string, filter interface{}) ([]interface{}, error) {
	filter = normalizeFilter(filter)

	values, err := s.readCollection(ctx).Distinct(ctx, fieldName, filter)
	if err != nil {
		return nil, common.ConvertMongoError(err)
	}
	return values, nil
}

// ====================================
// NHÓM 2: CÁC HÀM TIỆN ÍCH MỞ RỘNG
// ====================================

// 2.1 Các hàm Find mở rộng
// -----------------------

// FindOneById tìm một document theo ObjectId
func (s *BaseServiceMongoImpl[T]) FindOneById(ctx context.Context, id primitive.ObjectID) (T, error) {
	return s.FindOne(ctx, bson.M{"_id": id}, nil)
}

// FindWithPagination tìm bản ghi với phân trang.
// page tính từ 1, skip = (page-1) * limit. page <= 0 hoặc limit <= 0 tắt
// phân trang và trả về toàn bộ kết quả khớp.
func (s *BaseServiceMongoImpl[T]) FindWithPagination(ctx context.Context, filter interface{}, page, limit int64, opts *options.FindOptions) (*basemodels.PaginateResult[T], error) {
	filter = normalizeFilter(filter)

	freshOpts := options.Find()
	if opts != nil {
		freshOpts.Sort = opts.Sort
		freshOpts.Projection = opts.Projection
	}

	paginated := page > 0 && limit > 0
	if paginated {
		freshOpts.SetSkip((page - 1) * limit)
		freshOpts.SetLimit(limit)
	}

	coll := s.readCollection(ctx)

	total, err := coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, common.ConvertMongoError(err)
	}

	var items []T
	cursor, err := coll.Find(ctx, filter, freshOpts)
	if err != nil {
		return nil, common.ConvertMongoError(err)
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &items); err != nil {
		return nil, common.ConvertMongoError(err)
	}
	if items == nil {
		items = []T{}
	}

	if !paginated {
		return &basemodels.PaginateResult[T]{
			Items:     items,
			Page:      1,
			Limit:     total,
			ItemCount: int64(len(items)),
			Total:     total,
			TotalPage: 1,
		}, nil
	}

	var totalPage int64
	if total > 0 {
		totalPage = (total + limit - 1) / limit
	}

	return &basemodels.PaginateResult[T]{
		Items:     items,
		Page:      page,
		Limit:     limit,
		ItemCount: int64(len(items)),
		Total:     total,
		TotalPage: totalPage,
	}, nil
}

// FindWithLookup tìm bản ghi kèm virtual join: nếu collection tham chiếu
// đã được đăng ký trong registry, mỗi kết quả được kèm theo các document
// khớp trong field lookup.As; nếu chưa đăng ký, trả về kết quả không join.
func (s *BaseServiceMongoImpl[T]) FindWithLookup(ctx context.Context, filter interface{}, lookup basemodels.Lookup) ([]bson.M, error) {
	filter = normalizeFilter(filter)

	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: filter}},
	}

	if _, registered := global.RegistryCollections.Get(lookup.From); registered {
		pipeline = append(pipeline, bson.D{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: lookup.From},
			{Key: "localField", Value: lookup.LocalField},
			{Key: "foreignField", Value: lookup.ForeignField},
			{Key: "as", Value: lookup.As},
		}}})
	}

	var results []bson.M
	if err := s.Aggregate(ctx, pipeline, &results); err != nil {
		return nil, err
	}
	if results == nil {
		results = []bson.M{}
	}
	return results, nil
}

// 2.2 Các hàm kiểm tra
// -------------------

// DocumentExists kiểm tra xem một document có tồn tại không
func (s *BaseServiceMongoImpl[T]) DocumentExists(ctx context.Context, filter interface{}) (bool, error) {
	count, err := s.CountDocuments(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

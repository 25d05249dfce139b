// Package utility chứa các hàm tiện ích dùng chung (chuyển đổi BSON, ObjectID).
package utility

import (
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ToMap chuyển struct (theo bson tag) thành map[string]interface{}.
// Dùng khi cần thêm field động (timestamps) trước khi ghi vào MongoDB.
func ToMap(s interface{}) (map[string]interface{}, error) {
	data, err := bson.Marshal(s)
	if err != nil {
		return nil, err
	}

	var stringInterfaceMap map[string]interface{}
	if err := bson.Unmarshal(data, &stringInterfaceMap); err != nil {
		return nil, err
	}
	return stringInterfaceMap, nil
}

// String2ObjectID chuyển chuỗi hex thành primitive.ObjectID.
// Trả về NilObjectID khi chuỗi không hợp lệ.
func String2ObjectID(s string) primitive.ObjectID {
	id, err := primitive.ObjectIDFromHex(s)
	if err != nil {
		return primitive.NilObjectID
	}
	return id
}

// ContainsInt64 kiểm tra giá trị có nằm trong tập số hay không.
// Dùng cho vòng loại trừ của sequence (các số bị giữ lại không cấp phát).
func ContainsInt64(set []int64, v int64) bool {
	for _, item := range set {
		if item == v {
			return true
		}
	}
	return false
}

// Package models - SequenceValue thuộc domain RBAC/hạ tầng dùng chung.
package models

// SequenceValue bộ đếm singleton theo tên logic, giả lập auto-increment
// trong database không có sequence native. Document được tạo ngầm ở lần
// tăng đầu tiên và sau đó chỉ tăng, không bao giờ reset hay xóa.
type SequenceValue struct {
	ID    string `json:"_id" bson:"_id"`                     // Tên logic của sequence (khóa)
	Value int64  `json:"sequenceValue" bson:"sequenceValue"` // Giá trị hiện tại
}

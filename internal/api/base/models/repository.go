// Package models chứa các kiểu dùng chung cho layer repository/base
// (kết quả phân trang, kết quả xóa/cập nhật, khai báo virtual join).
package models

// PaginateResult đại diện cho kết quả phân trang
type PaginateResult[T any] struct {
	// Trang hiện tại
	Page int64 `json:"page" bson:"page"`
	// Số lượng mục trên mỗi trang
	Limit int64 `json:"limit" bson:"limit"`
	// Số lượng mục trong trang hiện tại
	ItemCount int64 `json:"itemCount" bson:"itemCount"`
	// Danh sách các mục
	Items []T `json:"items" bson:"items"`
	// Tổng số mục
	Total int64 `json:"total" bson:"total"`
	// Tổng số trang
	TotalPage int64 `json:"totalPage" bson:"totalPage"`
}

// DeleteResult đại diện cho kết quả thao tác xóa
type DeleteResult struct {
	// Số lượng document đã xóa
	DeletedCount int64 `json:"deletedCount" bson:"deletedCount"`
	// Thao tác đã được server xác nhận
	Acknowledged bool `json:"acknowledged" bson:"acknowledged"`
}

// UpdateManyResult đại diện cho kết quả cập nhật nhiều document.
// MatchedCount = 0 là thất bại; ModifiedCount = 0 với MatchedCount > 0
// vẫn là thành công (update không thay đổi giá trị nào).
type UpdateManyResult struct {
	// Số lượng document khớp filter
	MatchedCount int64 `json:"matchedCount" bson:"matchedCount"`
	// Số lượng document thực sự bị thay đổi
	ModifiedCount int64 `json:"modifiedCount" bson:"modifiedCount"`
}

// Lookup khai báo một virtual join: khi collection tham chiếu đã được
// đăng ký, kết quả find sẽ kèm theo các document khớp trong field As.
type Lookup struct {
	From         string `json:"from"`         // Collection tham chiếu
	LocalField   string `json:"localField"`   // Field ở collection hiện tại
	ForeignField string `json:"foreignField"` // Field ở collection tham chiếu
	As           string `json:"as"`           // Tên field chứa kết quả join
}

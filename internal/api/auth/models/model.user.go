// Package models - User (principal) thuộc domain auth.
package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User bản ghi danh tính principal. Core RBAC chỉ đọc/ghi danh sách role
// (Roles); mọi thông tin xác thực khác (mật khẩu, token) nằm ngoài core này.
// Principal được định danh bằng UUID ổn định hoặc UID dạng số từ sequence.
type User struct {
	ID        primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	UID       int64              `json:"uid" bson:"uid" index:"unique"`
	UUID      string             `json:"uuid" bson:"uuid" index:"unique"`
	Roles     []string           `json:"roles" bson:"roles" index:"single:1"`
	IsBlock   bool               `json:"-" bson:"isBlock"`
	CreatedAt int64              `json:"createdAt" bson:"createdAt"`
	UpdatedAt int64              `json:"updatedAt" bson:"updatedAt"`
}

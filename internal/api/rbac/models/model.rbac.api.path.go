// Package models - các model thuộc domain RBAC.
package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RbacApiPath một đơn vị tài nguyên được bảo vệ (một endpoint logic).
// Path là duy nhất toàn cục; ApiPathID là định danh số ổn định, cấp từ
// sequence và bất biến sau khi tạo.
type RbacApiPath struct {
	ID             primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	ApiPathID      int64              `json:"apiPathId" bson:"apiPathId" index:"unique"`
	Path           string             `json:"apiPath" bson:"apiPath" index:"unique"`
	Type           string             `json:"apiPathType,omitempty" bson:"apiPathType,omitempty" index:"single:1"`
	Color          string             `json:"apiPathColor,omitempty" bson:"apiPathColor,omitempty"`
	Description    string             `json:"apiPathDescription,omitempty" bson:"apiPathDescription,omitempty"`
	CreatorUUID    string             `json:"creatorUuid" bson:"creatorUuid" index:"single:1"`
	LastEditorUUID string             `json:"lastEditorUuid,omitempty" bson:"lastEditorUuid,omitempty"`
	CreatedAt      int64              `json:"createdAt" bson:"createdAt"`
	UpdatedAt      int64              `json:"updatedAt" bson:"updatedAt"`
}

// RbacApiPathResult RbacApiPath kèm cờ isAssignedOnce (đã từng được gán
// vào role nào chưa), tính qua join với collection role lúc truy vấn.
type RbacApiPathResult struct {
	RbacApiPath    `bson:",inline"`
	IsAssignedOnce bool `json:"isAssignedOnce" bson:"isAssignedOnce"`
}

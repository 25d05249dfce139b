// Package models - Role thuộc domain RBAC.
package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RbacRole một bó quyền có tên, gán được cho principal.
// ApiPathPermissions là tập (không thứ tự) các chuỗi API path mà role cho
// phép gọi; tập này được thay thế nguyên khối, không patch từng phần.
// Ràng buộc subset với ApiPath.path được service kiểm tra lúc gán,
// không phải foreign key của store.
type RbacRole struct {
	ID                 primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	RoleID             int64              `json:"roleId" bson:"roleId" index:"unique"`
	Name               string             `json:"roleName" bson:"roleName" index:"unique"`
	Type               string             `json:"roleType,omitempty" bson:"roleType,omitempty" index:"single:1"`
	Color              string             `json:"roleColor,omitempty" bson:"roleColor,omitempty"`
	Description        string             `json:"roleDescription,omitempty" bson:"roleDescription,omitempty"`
	ApiPathPermissions []string           `json:"apiPathPermissions" bson:"apiPathPermissions" index:"single:1"`
	CreatorUUID        string             `json:"creatorUuid" bson:"creatorUuid"`
	LastEditorUUID     string             `json:"lastEditorUuid,omitempty" bson:"lastEditorUuid,omitempty"`
	CreatedAt          int64              `json:"createdAt" bson:"createdAt"`
	UpdatedAt          int64              `json:"updatedAt" bson:"updatedAt"`
}

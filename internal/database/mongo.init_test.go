package database

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	rbacmodels "github.com/tratiger/KiraKiraDouga-Libre-sub001/internal/api/rbac/models"
)

type indexedSample struct {
	UID    int64  `bson:"uid" index:"unique"`
	Name   string `bson:"name" index:"single:1"`
	Rank   int64  `bson:"rank" index:"single:-1"`
	Plain  string `bson:"plain"`
	Hidden string `bson:"-" index:"unique"`
	NoTag  string `index:"unique"`
}

// TestBuildIndexModels kiểm tra dựng index từ struct tag
func TestBuildIndexModels(t *testing.T) {
	models := buildIndexModels(reflect.TypeOf(indexedSample{}))
	require.Len(t, models, 3)

	// unique index trên uid
	assert.Equal(t, bson.D{{Key: "uid", Value: 1}}, models[0].Keys)
	require.NotNil(t, models[0].Options)
	require.NotNil(t, models[0].Options.Unique)
	assert.True(t, *models[0].Options.Unique)

	// index đơn tăng dần trên name
	assert.Equal(t, bson.D{{Key: "name", Value: 1}}, models[1].Keys)
	assert.Nil(t, models[1].Options)

	// index đơn giảm dần trên rank
	assert.Equal(t, bson.D{{Key: "rank", Value: -1}}, models[2].Keys)
}

// TestBuildIndexModelsPointer kiểm tra nhận cả con trỏ struct
func TestBuildIndexModelsPointer(t *testing.T) {
	byValue := buildIndexModels(reflect.TypeOf(indexedSample{}))
	byPointer := buildIndexModels(reflect.TypeOf(&indexedSample{}))
	assert.Equal(t, len(byValue), len(byPointer))
}

// TestBuildIndexModelsRbacModels kiểm tra các model RBAC khai báo đủ index
func TestBuildIndexModelsRbacModels(t *testing.T) {
	apiPathIndexes := buildIndexModels(reflect.TypeOf(rbacmodels.RbacApiPath{}))
	assert.GreaterOrEqual(t, len(apiPathIndexes), 2)

	roleIndexes := buildIndexModels(reflect.TypeOf(rbacmodels.RbacRole{}))
	assert.GreaterOrEqual(t, len(roleIndexes), 2)
}

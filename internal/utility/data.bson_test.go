package utility

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type sampleDoc struct {
	Name  string `bson:"roleName"`
	Count int64  `bson:"count"`
	Skip  string `bson:"skip,omitempty"`
}

// TestToMap kiểm tra chuyển struct thành map theo bson tag
func TestToMap(t *testing.T) {
	m, err := ToMap(sampleDoc{Name: "administrator", Count: 3})
	require.NoError(t, err)

	assert.Equal(t, "administrator", m["roleName"])
	assert.EqualValues(t, 3, m["count"])

	// omitempty: field rỗng không xuất hiện trong map
	_, exists := m["skip"]
	assert.False(t, exists)
}

// TestString2ObjectID kiểm tra chuyển chuỗi hex thành ObjectID
func TestString2ObjectID(t *testing.T) {
	id := primitive.NewObjectID()
	assert.Equal(t, id, String2ObjectID(id.Hex()))
	assert.Equal(t, primitive.NilObjectID, String2ObjectID("không phải hex"))
}

// TestContainsInt64 kiểm tra tra cứu tập số loại trừ
func TestContainsInt64(t *testing.T) {
	excluded := []int64{1, 7, 100}
	assert.True(t, ContainsInt64(excluded, 7))
	assert.False(t, ContainsInt64(excluded, 8))
	assert.False(t, ContainsInt64(nil, 0))
}

package rbacsvc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/tratiger/KiraKiraDouga-Libre-sub001/config"
	rbacdto "github.com/tratiger/KiraKiraDouga-Libre-sub001/internal/api/rbac/dto"
	"github.com/tratiger/KiraKiraDouga-Libre-sub001/internal/global"
)

// TestNextSequencePipeline kiểm tra cấu trúc update pipeline của sequence
func TestNextSequencePipeline(t *testing.T) {
	pipeline := NextSequencePipeline(0, 1)
	require.Len(t, pipeline, 1)

	stage, ok := pipeline[0].(bson.D)
	require.True(t, ok)
	require.Equal(t, "$set", stage[0].Key)

	set, ok := stage[0].Value.(bson.D)
	require.True(t, ok)
	require.Equal(t, "sequenceValue", set[0].Key)

	// sequenceValue = ifNull(sequenceValue, defaultStart) + step
	add, ok := set[0].Value.(bson.D)
	require.True(t, ok)
	require.Equal(t, "$add", add[0].Key)

	operands, ok := add[0].Value.(bson.A)
	require.True(t, ok)
	require.Len(t, operands, 2)

	ifNull, ok := operands[0].(bson.D)
	require.True(t, ok)
	assert.Equal(t, "$ifNull", ifNull[0].Key)
	assert.Equal(t, bson.A{"$sequenceValue", int64(0)}, ifNull[0].Value)
	assert.Equal(t, int64(1), operands[1])
}

// TestNextSequencePipelineCustomStart kiểm tra defaultStart và step tùy biến
func TestNextSequencePipelineCustomStart(t *testing.T) {
	pipeline := NextSequencePipeline(100, 5)
	stage := pipeline[0].(bson.D)
	set := stage[0].Value.(bson.D)
	add := set[0].Value.(bson.D)
	operands := add[0].Value.(bson.A)

	ifNull := operands[0].(bson.D)
	assert.Equal(t, bson.A{"$sequenceValue", int64(100)}, ifNull[0].Value)
	assert.Equal(t, int64(5), operands[1])
}

// TestPrincipalMatch kiểm tra ràng buộc "đúng một định danh"
func TestPrincipalMatch(t *testing.T) {
	uid := int64(7)

	t.Run("chỉ UUID", func(t *testing.T) {
		match, err := principalMatch(rbacdto.Principal{UUID: "abc"})
		require.NoError(t, err)
		assert.Equal(t, bson.D{{Key: "$match", Value: bson.D{{Key: "uuid", Value: "abc"}}}}, match)
	})

	t.Run("chỉ UID", func(t *testing.T) {
		match, err := principalMatch(rbacdto.Principal{UID: &uid})
		require.NoError(t, err)
		assert.Equal(t, bson.D{{Key: "$match", Value: bson.D{{Key: "uid", Value: int64(7)}}}}, match)
	})

	t.Run("không có định danh nào", func(t *testing.T) {
		_, err := principalMatch(rbacdto.Principal{})
		assert.Error(t, err)
	})

	t.Run("cả hai định danh", func(t *testing.T) {
		_, err := principalMatch(rbacdto.Principal{UUID: "abc", UID: &uid})
		assert.Error(t, err)
	})
}

// TestCheckAccessPipeline kiểm tra các stage của aggregation phân giải quyền
func TestCheckAccessPipeline(t *testing.T) {
	match, err := principalMatch(rbacdto.Principal{UUID: "abc"})
	require.NoError(t, err)

	pipeline := CheckAccessPipeline(match, "/video/upload")
	require.Len(t, pipeline, 8)

	// Stage lookup join role theo tên
	lookup := pipeline[2]
	require.Equal(t, "$lookup", lookup[0].Key)
	lookupSpec, ok := lookup[0].Value.(bson.D)
	require.True(t, ok)
	assert.Equal(t, global.MongoDB_ColNames.RbacRoles, lookupSpec[0].Value)
	assert.Equal(t, "roles", lookupSpec[1].Value)
	assert.Equal(t, "roleName", lookupSpec[2].Value)

	// Stage match path nằm sau hai lần unwind
	pathMatch := pipeline[5]
	require.Equal(t, "$match", pathMatch[0].Key)
	matchSpec, ok := pathMatch[0].Value.(bson.D)
	require.True(t, ok)
	assert.Equal(t, "matchedRoles.apiPathPermissions", matchSpec[0].Key)
	assert.Equal(t, "/video/upload", matchSpec[0].Value)

	// Stage cuối là $count
	count := pipeline[7]
	assert.Equal(t, "$count", count[0].Key)
}

// TestApiPathSearchFilter kiểm tra filter tìm kiếm API path
func TestApiPathSearchFilter(t *testing.T) {
	assert.Equal(t, bson.M{}, apiPathSearchFilter(""))

	filter := apiPathSearchFilter("video")
	or, ok := filter["$or"].(bson.A)
	require.True(t, ok)
	assert.Len(t, or, 3)

	// Ký tự đặc biệt regex phải được escape
	escaped := apiPathSearchFilter("a.b+c")
	or = escaped["$or"].(bson.A)
	first := or[0].(bson.M)
	regex, ok := first["apiPath"].(primitive.Regex)
	require.True(t, ok)
	assert.Equal(t, `a\.b\+c`, regex.Pattern)
	assert.Equal(t, "i", regex.Options)
}

// TestRoleSearchFilter kiểm tra filter tìm kiếm role
func TestRoleSearchFilter(t *testing.T) {
	assert.Equal(t, bson.M{}, roleSearchFilter(""))

	filter := roleSearchFilter("admin")
	or, ok := filter["$or"].(bson.A)
	require.True(t, ok)
	assert.Len(t, or, 3)
}

// TestDedupeStrings kiểm tra khử trùng lặp giữ thứ tự
func TestDedupeStrings(t *testing.T) {
	in := []string{"/a", "/b", "/a", "/c", "/b"}
	assert.Equal(t, []string{"/a", "/b", "/c"}, dedupeStrings(in))
	assert.Empty(t, dedupeStrings(nil))
}

// TestMissingStrings kiểm tra tìm phần tử chưa đăng ký
func TestMissingStrings(t *testing.T) {
	want := []string{"/a", "/b", "/c"}
	have := []interface{}{"/a", "/c"}
	assert.Equal(t, []string{"/b"}, missingStrings(want, have))
	assert.Empty(t, missingStrings(want, []interface{}{"/a", "/b", "/c"}))
}

// TestMissingFromSet kiểm tra đồng bộ quyền quản trị cho administrator
func TestMissingFromSet(t *testing.T) {
	have := []string{PathCreateApiPath, PathGetRoles}
	missing := missingFromSet(AdminApiPaths(), have)
	assert.Len(t, missing, len(AdminApiPaths())-2)
	assert.NotContains(t, missing, PathCreateApiPath)
	assert.NotContains(t, missing, PathGetRoles)

	assert.Empty(t, missingFromSet(AdminApiPaths(), AdminApiPaths()))
}

// TestAdminApiPathsUnique kiểm tra các path quản trị không trùng nhau
func TestAdminApiPathsUnique(t *testing.T) {
	paths := AdminApiPaths()
	assert.Equal(t, paths, dedupeStrings(paths))
	for _, p := range paths {
		assert.Regexp(t, `^/rbac/`, p)
	}
}

// TestDefaultStep kiểm tra bước tăng sequence lấy từ cấu hình
func TestDefaultStep(t *testing.T) {
	saved := global.ServerConfig
	defer func() { global.ServerConfig = saved }()

	global.ServerConfig = nil
	assert.EqualValues(t, 1, DefaultStep())

	global.ServerConfig = &config.Configuration{SequenceStep: 5}
	assert.EqualValues(t, 5, DefaultStep())

	// Giá trị không dương là cấu hình sai, rơi về 1
	global.ServerConfig = &config.Configuration{SequenceStep: 0}
	assert.EqualValues(t, 1, DefaultStep())
}

// Suite hành vi chạy trên MongoDB thật, gate qua biến môi trường
// RBAC_TEST_MONGODB_URI. Chưa đặt biến -> skip toàn bộ. URI phải trỏ tới
// deployment hỗ trợ transaction (replica set một node là đủ). Mỗi lần chạy
// dùng một database tên riêng và drop khi kết thúc.
package rbacsvc_test

import (
	"context"
	"fmt"
	"os"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/tratiger/KiraKiraDouga-Libre-sub001/config"
	authmodels "github.com/tratiger/KiraKiraDouga-Libre-sub001/internal/api/auth/models"
	authsvc "github.com/tratiger/KiraKiraDouga-Libre-sub001/internal/api/auth/service"
	basesvc "github.com/tratiger/KiraKiraDouga-Libre-sub001/internal/api/base/service"
	rbacdto "github.com/tratiger/KiraKiraDouga-Libre-sub001/internal/api/rbac/dto"
	rbacmodels "github.com/tratiger/KiraKiraDouga-Libre-sub001/internal/api/rbac/models"
	rbacsvc "github.com/tratiger/KiraKiraDouga-Libre-sub001/internal/api/rbac/service"
	"github.com/tratiger/KiraKiraDouga-Libre-sub001/internal/common"
	"github.com/tratiger/KiraKiraDouga-Libre-sub001/internal/database"
	"github.com/tratiger/KiraKiraDouga-Libre-sub001/internal/global"
	"github.com/tratiger/KiraKiraDouga-Libre-sub001/internal/logger"
)

const mongoSuiteEnv = "RBAC_TEST_MONGODB_URI"

var (
	mongoSuiteOnce sync.Once
	mongoSuiteErr  error
	mongoSuiteDB   string

	// Principal quản trị được gieo bởi bootstrap, dùng làm actor cho mọi
	// thao tác quản trị trong suite.
	suiteAdmin = rbacdto.Principal{UUID: "suite-admin-uuid"}
)

func TestMain(m *testing.M) {
	code := m.Run()
	if global.MongoDB_Session != nil && mongoSuiteDB != "" {
		_ = global.MongoDB_Session.Database(mongoSuiteDB).Drop(context.Background())
		_ = database.CloseInstance(global.MongoDB_Session)
	}
	os.Exit(code)
}

// setupMongoSuite skip test khi chưa có MongoDB, khởi tạo môi trường dùng
// chung cho cả suite ở lần gọi đầu tiên.
func setupMongoSuite(t *testing.T) {
	t.Helper()
	uri := os.Getenv(mongoSuiteEnv)
	if uri == "" {
		t.Skipf("bỏ qua: chưa đặt %s (cần MongoDB hỗ trợ transaction)", mongoSuiteEnv)
	}
	mongoSuiteOnce.Do(func() { mongoSuiteErr = initMongoSuite(uri) })
	require.NoError(t, mongoSuiteErr, "khởi tạo môi trường MongoDB cho suite thất bại")
}

// initMongoSuite dựng môi trường đúng theo trình tự khởi động của server:
// config -> logger -> validator -> database -> bootstrap dữ liệu RBAC.
func initMongoSuite(uri string) error {
	mongoSuiteDB = fmt.Sprintf("rbac-core-test-%d", time.Now().UnixNano())
	global.ServerConfig = &config.Configuration{
		MongoDB_ConnectionURI: uri,
		MongoDB_DBName:        mongoSuiteDB,
		LogLevel:              "error",
		LogDir:                os.TempDir(),
		SequenceStep:          1,
	}
	if err := logger.Init(global.ServerConfig.LogLevel, global.ServerConfig.LogDir); err != nil {
		return err
	}
	global.InitValidator()

	client, err := database.GetInstance(global.ServerConfig)
	if err != nil {
		return err
	}
	global.MongoDB_Session = client

	if err := database.EnsureDatabaseAndCollections(client); err != nil {
		return err
	}
	if err := database.EnsureIndexes(context.Background(), []database.IndexedModel{
		{CollectionName: global.MongoDB_ColNames.Users, Model: authmodels.User{}},
		{CollectionName: global.MongoDB_ColNames.RbacApiPaths, Model: rbacmodels.RbacApiPath{}},
		{CollectionName: global.MongoDB_ColNames.RbacRoles, Model: rbacmodels.RbacRole{}},
	}); err != nil {
		return err
	}

	sequence, err := rbacsvc.NewSequenceService()
	if err != nil {
		return err
	}
	seed, err := rbacsvc.NewInitService(sequence)
	if err != nil {
		return err
	}
	ctx := context.Background()
	if err := seed.InitAdminApiPaths(ctx); err != nil {
		return err
	}
	if err := seed.InitAdministratorRole(ctx); err != nil {
		return err
	}
	return seed.InitAdminUser(ctx, suiteAdmin.UUID)
}

// suiteServices dựng bộ service RBAC trên các collection đã đăng ký.
func suiteServices(t *testing.T) (*rbacsvc.SequenceService, *rbacsvc.RbacResolverService, *rbacsvc.RbacApiPathService, *rbacsvc.RbacRoleService) {
	t.Helper()
	sequence, err := rbacsvc.NewSequenceService()
	require.NoError(t, err)
	resolver, err := rbacsvc.NewRbacResolverService()
	require.NoError(t, err)
	apiPathSvc, err := rbacsvc.NewRbacApiPathService(sequence, resolver)
	require.NoError(t, err)
	roleSvc, err := rbacsvc.NewRbacRoleService(sequence, resolver)
	require.NoError(t, err)
	return sequence, resolver, apiPathSvc, roleSvc
}

func suiteRolePool(t *testing.T) *basesvc.BaseServiceMongoImpl[rbacmodels.RbacRole] {
	t.Helper()
	col, ok := global.RegistryCollections.Get(global.MongoDB_ColNames.RbacRoles)
	require.True(t, ok)
	return basesvc.NewBaseServiceMongo[rbacmodels.RbacRole](col)
}

func suiteUserPool(t *testing.T) *basesvc.BaseServiceMongoImpl[authmodels.User] {
	t.Helper()
	col, ok := global.RegistryCollections.Get(global.MongoDB_ColNames.Users)
	require.True(t, ok)
	return basesvc.NewBaseServiceMongo[authmodels.User](col)
}

// TestSequenceNextConcurrent kiểm tra N lần cấp số đồng thời trên cùng key
// nhận đúng N giá trị khác nhau, liên tục từ 1 đến N không khoảng trống.
func TestSequenceNextConcurrent(t *testing.T) {
	setupMongoSuite(t)
	sequence, _, _, _ := suiteServices(t)

	key := fmt.Sprintf("concurrent-%d", time.Now().UnixNano())
	const n = 50

	values := make(chan int64, n)
	errs := make(chan error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := sequence.Next(context.Background(), key, 0, 1)
			if err != nil {
				errs <- err
				return
			}
			values <- v
		}()
	}
	wg.Wait()
	close(values)
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}

	got := make([]int64, 0, n)
	for v := range values {
		got = append(got, v)
	}
	require.Len(t, got, n)

	sort.Slice(got, func(i, j int) bool { return got[i] < got[j] })
	for i, v := range got {
		assert.EqualValues(t, i+1, v, "dãy phải liên tục, không trùng không hổng")
	}
}

// TestSequenceNextExcluding kiểm tra giá trị bị loại trừ không bao giờ
// được cấp phát; các số bị bỏ qua vẫn được tiêu thụ khỏi bộ đếm.
func TestSequenceNextExcluding(t *testing.T) {
	setupMongoSuite(t)
	sequence, _, _, _ := suiteServices(t)
	ctx := context.Background()

	key := fmt.Sprintf("excluding-%d", time.Now().UnixNano())
	excluded := []int64{1, 2, 3}

	value, err := sequence.NextExcluding(ctx, key, excluded, 0, 1)
	require.NoError(t, err)
	assert.NotContains(t, excluded, value)
	assert.EqualValues(t, 4, value)

	// Bộ đếm đứng ở 4: lần kế tiếp loại trừ 5 phải trả về 6.
	value, err = sequence.NextExcluding(ctx, key, []int64{5}, 0, 1)
	require.NoError(t, err)
	assert.EqualValues(t, 6, value)
}

// TestCheckAccessVerdicts kiểm tra trọn kịch bản phân giải quyền:
// gán quyền -> 200, thiếu quyền / principal không tồn tại -> 403,
// định danh không hợp lệ -> 500, xóa role -> quyền biến mất ngay.
func TestCheckAccessVerdicts(t *testing.T) {
	setupMongoSuite(t)
	_, resolver, apiPathSvc, roleSvc := suiteServices(t)
	ctx := context.Background()

	// Admin bootstrap nắm các path quản trị.
	assert.Equal(t, common.StatusOK, resolver.CheckAccess(ctx, suiteAdmin, rbacsvc.PathGetRoles).Status)

	const videoPath = "/video/getVideoByKvid"
	const viewerRole = "video-viewer"
	_, err := apiPathSvc.CreateApiPath(ctx, suiteAdmin, &rbacdto.ApiPathCreateInput{Path: videoPath, Type: "video"})
	require.NoError(t, err)
	_, err = roleSvc.CreateRole(ctx, suiteAdmin, &rbacdto.RoleCreateInput{Name: viewerRole})
	require.NoError(t, err)
	_, err = roleSvc.UpdateApiPathPermissionsForRole(ctx, suiteAdmin, &rbacdto.RoleUpdatePermissionsInput{
		Name:               viewerRole,
		ApiPathPermissions: []string{videoPath},
	})
	require.NoError(t, err)

	const viewerUUID = "viewer-uuid-9001"
	const viewerUID = int64(9001)
	_, err = suiteUserPool(t).InsertOne(ctx, authmodels.User{UID: viewerUID, UUID: viewerUUID, Roles: []string{}})
	require.NoError(t, err)

	userSvc, err := authsvc.NewUserService(resolver)
	require.NoError(t, err)
	_, err = userSvc.AdminUpdateUserRoleByUUID(ctx, suiteAdmin, &rbacdto.UserRolesUpdateInput{
		UUID:     viewerUUID,
		NewRoles: []string{viewerRole},
	})
	require.NoError(t, err)

	viewer := rbacdto.Principal{UUID: viewerUUID}
	assert.Equal(t, common.StatusOK, resolver.CheckAccess(ctx, viewer, videoPath).Status)

	// Cùng principal định danh bằng UID.
	uid := viewerUID
	assert.Equal(t, common.StatusOK, resolver.CheckAccess(ctx, rbacdto.Principal{UID: &uid}, videoPath).Status)

	// Thiếu quyền và principal không tồn tại cho cùng phán quyết 403.
	assert.Equal(t, common.StatusForbidden, resolver.CheckAccess(ctx, viewer, rbacsvc.PathCreateRole).Status)
	assert.Equal(t, common.StatusForbidden, resolver.CheckAccess(ctx, rbacdto.Principal{UUID: "ghost-uuid"}, videoPath).Status)

	// Cả hai định danh cùng lúc là lỗi caller -> 500, không bao giờ là 200.
	both := rbacdto.Principal{UUID: viewerUUID, UID: &uid}
	assert.Equal(t, common.StatusInternalServerError, resolver.CheckAccess(ctx, both, videoPath).Status)

	// Xóa role: quyền biến mất ở lần phân giải kế tiếp dù user vẫn giữ tên role.
	_, err = roleSvc.DeleteRole(ctx, suiteAdmin, &rbacdto.RoleDeleteInput{Name: viewerRole})
	require.NoError(t, err)
	assert.Equal(t, common.StatusForbidden, resolver.CheckAccess(ctx, viewer, videoPath).Status)
}

// TestUpdateRolePermissionsRejectsUnknownPath kiểm tra một path lạ làm
// toàn bộ update bị từ chối và role giữ nguyên tập quyền cũ.
func TestUpdateRolePermissionsRejectsUnknownPath(t *testing.T) {
	setupMongoSuite(t)
	_, _, apiPathSvc, roleSvc := suiteServices(t)
	ctx := context.Background()

	const knownPath = "/comment/emitDanmaku"
	const roleName = "danmaku-editor"
	_, err := apiPathSvc.CreateApiPath(ctx, suiteAdmin, &rbacdto.ApiPathCreateInput{Path: knownPath, Type: "comment"})
	require.NoError(t, err)
	_, err = roleSvc.CreateRole(ctx, suiteAdmin, &rbacdto.RoleCreateInput{Name: roleName})
	require.NoError(t, err)
	_, err = roleSvc.UpdateApiPathPermissionsForRole(ctx, suiteAdmin, &rbacdto.RoleUpdatePermissionsInput{
		Name:               roleName,
		ApiPathPermissions: []string{knownPath},
	})
	require.NoError(t, err)

	result, err := roleSvc.UpdateApiPathPermissionsForRole(ctx, suiteAdmin, &rbacdto.RoleUpdatePermissionsInput{
		Name:               roleName,
		ApiPathPermissions: []string{knownPath, "/khong/ton/tai"},
	})
	require.Error(t, err)
	assert.Nil(t, result)

	role, err := suiteRolePool(t).FindOne(ctx, bson.M{"roleName": roleName}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{knownPath}, role.ApiPathPermissions)
}

// TestDeleteApiPathAssignedGuard kiểm tra xóa path còn được role tham
// chiếu bị từ chối với cờ isAssigned, và thành công sau khi gỡ quyền.
func TestDeleteApiPathAssignedGuard(t *testing.T) {
	setupMongoSuite(t)
	_, _, apiPathSvc, roleSvc := suiteServices(t)
	ctx := context.Background()

	const path = "/video/uploadVideo"
	const roleName = "video-uploader"
	_, err := apiPathSvc.CreateApiPath(ctx, suiteAdmin, &rbacdto.ApiPathCreateInput{Path: path, Type: "video"})
	require.NoError(t, err)
	_, err = roleSvc.CreateRole(ctx, suiteAdmin, &rbacdto.RoleCreateInput{Name: roleName})
	require.NoError(t, err)
	_, err = roleSvc.UpdateApiPathPermissionsForRole(ctx, suiteAdmin, &rbacdto.RoleUpdatePermissionsInput{
		Name:               roleName,
		ApiPathPermissions: []string{path},
	})
	require.NoError(t, err)

	result, err := apiPathSvc.DeleteApiPath(ctx, suiteAdmin, &rbacdto.ApiPathDeleteInput{Path: path})
	require.Error(t, err)
	require.NotNil(t, result)
	assert.True(t, result.IsAssigned)
	assert.False(t, result.Success)

	// Path vẫn còn và cờ isAssignedOnce bật trong kết quả tìm kiếm.
	search, err := apiPathSvc.GetApiPaths(ctx, suiteAdmin, &rbacdto.ApiPathSearchInput{SearchKey: path})
	require.NoError(t, err)
	require.Len(t, search.Result, 1)
	assert.True(t, search.Result[0].IsAssignedOnce)

	// Gỡ quyền (tập rỗng hợp lệ: thu hồi hết) rồi xóa lại.
	_, err = roleSvc.UpdateApiPathPermissionsForRole(ctx, suiteAdmin, &rbacdto.RoleUpdatePermissionsInput{
		Name:               roleName,
		ApiPathPermissions: []string{},
	})
	require.NoError(t, err)

	result, err = apiPathSvc.DeleteApiPath(ctx, suiteAdmin, &rbacdto.ApiPathDeleteInput{Path: path})
	require.NoError(t, err)
	assert.True(t, result.Success)

	exists, err := apiPathSvc.DocumentExists(ctx, bson.M{"apiPath": path})
	require.NoError(t, err)
	assert.False(t, exists)
}

// TestGetApiPathOptions kiểm tra danh sách type riêng biệt phục vụ UI lọc.
func TestGetApiPathOptions(t *testing.T) {
	setupMongoSuite(t)
	_, _, apiPathSvc, _ := suiteServices(t)
	ctx := context.Background()

	_, err := apiPathSvc.CreateApiPath(ctx, suiteAdmin, &rbacdto.ApiPathCreateInput{Path: "/tag/createTag", Type: "tag"})
	require.NoError(t, err)

	options, err := apiPathSvc.GetApiPathOptions(ctx, suiteAdmin)
	require.NoError(t, err)
	assert.Contains(t, options, "tag")
	// Các path quản trị gieo lúc bootstrap mang type rbac-admin.
	assert.Contains(t, options, "rbac-admin")
}

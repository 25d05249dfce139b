package registry

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestRegistryBasic kiểm tra đăng ký và tra cứu cơ bản
func TestRegistryBasic(t *testing.T) {
	r := NewRegistry[string]()

	isNew, err := r.Register("users", "collection-users")
	require.NoError(t, err)
	assert.True(t, isNew)

	value, exist := r.Get("users")
	assert.True(t, exist)
	assert.Equal(t, "collection-users", value)

	// Đăng ký trùng tên thì ghi đè
	isNew, err = r.Register("users", "collection-users-v2")
	require.NoError(t, err)
	assert.False(t, isNew)

	value, _ = r.Get("users")
	assert.Equal(t, "collection-users-v2", value)

	_, exist = r.Get("không-tồn-tại")
	assert.False(t, exist)
}

// TestRegistryRegisterEmpty kiểm tra từ chối tên rỗng
func TestRegistryRegisterEmpty(t *testing.T) {
	r := NewRegistry[int]()
	_, err := r.Register("", 1)
	assert.Error(t, err)
}

// TestRegistryGetOrCreate kiểm tra GetOrCreate chỉ tạo một lần
func TestRegistryGetOrCreate(t *testing.T) {
	r := NewRegistry[int]()
	calls := 0

	first, err := r.GetOrCreate("seq", func() (int, error) {
		calls++
		return 42, nil
	})
	require.NoError(t, err)

	second, err := r.GetOrCreate("seq", func() (int, error) {
		calls++
		return 99, nil
	})
	require.NoError(t, err)

	assert.Equal(t, 42, first)
	assert.Equal(t, 42, second)
	assert.Equal(t, 1, calls)
}

// TestRegistryGetOrCreateError kiểm tra lỗi từ creator không ghi vào registry
func TestRegistryGetOrCreateError(t *testing.T) {
	r := NewRegistry[int]()
	_, err := r.GetOrCreate("bad", func() (int, error) {
		return 0, errors.New("creator thất bại")
	})
	assert.Error(t, err)

	_, exist := r.Get("bad")
	assert.False(t, exist)
}

// TestRegistryClear kiểm tra xóa từng item và xóa tất cả, có cleanup
func TestRegistryClear(t *testing.T) {
	r := NewRegistry[int]()
	_, err := r.Register("a", 1)
	require.NoError(t, err)
	_, err = r.Register("b", 2)
	require.NoError(t, err)

	cleaned := 0
	deleted, err := r.Clear("a", func(int) error {
		cleaned++
		return nil
	})
	require.NoError(t, err)
	assert.True(t, deleted)
	assert.Equal(t, 1, cleaned)

	deleted, err = r.Clear("a", nil)
	require.NoError(t, err)
	assert.False(t, deleted)

	count, err := r.ClearAll(nil)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	_, exist := r.Get("b")
	assert.False(t, exist)
}

// TestRegistryConcurrent kiểm tra an toàn khi đọc ghi đồng thời
func TestRegistryConcurrent(t *testing.T) {
	r := NewRegistry[int]()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			key := fmt.Sprintf("key-%d", n%10)
			_, _ = r.Register(key, n)
			r.Get(key)
		}(i)
	}
	wg.Wait()

	for i := 0; i < 10; i++ {
		_, exist := r.Get(fmt.Sprintf("key-%d", i))
		assert.True(t, exist)
	}
}

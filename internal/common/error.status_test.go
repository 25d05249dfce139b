package common

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
)

// TestErrorIs kiểm tra so khớp sentinel qua errors.Is
func TestErrorIs(t *testing.T) {
	wrapped := fmt.Errorf("lớp ngoài: %w", ErrNotFound)
	assert.True(t, errors.Is(wrapped, ErrNotFound))
	assert.False(t, errors.Is(wrapped, ErrDuplicate))

	// Hai error cùng code được coi là tương đương
	same := NewError(ErrCodeDatabaseQuery, "message khác", StatusNotFound, nil)
	assert.True(t, errors.Is(same, ErrNotFound))
}

// TestNewReferenceError kiểm tra details của lỗi tham chiếu
func TestNewReferenceError(t *testing.T) {
	err := NewReferenceError("API path đang được role tham chiếu", true, "/video/upload")

	var customErr *Error
	require.True(t, errors.As(err, &customErr))
	assert.Equal(t, ErrCodeBusinessReference.Code, customErr.Code.Code)

	details, ok := customErr.Details.(ReferenceDetails)
	require.True(t, ok)
	assert.True(t, details.IsAssigned)
	assert.Equal(t, "/video/upload", details.Referenced)
}

// TestConvertMongoError kiểm tra ánh xạ lỗi driver sang error taxonomy
func TestConvertMongoError(t *testing.T) {
	t.Run("nil giữ nguyên nil", func(t *testing.T) {
		assert.NoError(t, ConvertMongoError(nil))
	})

	t.Run("ErrNoDocuments thành ErrNotFound", func(t *testing.T) {
		err := ConvertMongoError(mongo.ErrNoDocuments)
		assert.True(t, errors.Is(err, ErrNotFound))
	})

	t.Run("error đã định kiểu được giữ nguyên", func(t *testing.T) {
		err := ConvertMongoError(ErrNoPermission)
		assert.True(t, errors.Is(err, ErrNoPermission))
	})

	t.Run("duplicate key thành ErrMongoDuplicate", func(t *testing.T) {
		writeErr := mongo.WriteException{
			WriteErrors: mongo.WriteErrors{{Code: 11000, Message: "E11000 duplicate key"}},
		}
		err := ConvertMongoError(writeErr)
		assert.True(t, errors.Is(err, ErrMongoDuplicate))
	})

	t.Run("lỗi không nhận dạng được thành lỗi database chung", func(t *testing.T) {
		err := ConvertMongoError(errors.New("lỗi lạ"))
		var customErr *Error
		require.True(t, errors.As(err, &customErr))
		assert.Equal(t, ErrCodeDatabase.Code, customErr.Code.Code)
		assert.Equal(t, StatusInternalServerError, customErr.StatusCode)
	})
}

// TestErrorStatusCode kiểm tra HTTP status gắn với từng sentinel
func TestErrorStatusCode(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{ErrNotFound, StatusNotFound},
		{ErrDuplicate, StatusConflict},
		{ErrNoPermission, StatusForbidden},
		{ErrTokenInvalid, StatusUnauthorized},
		{ErrInvalidInput, StatusBadRequest},
	}
	for _, tc := range cases {
		var customErr *Error
		require.True(t, errors.As(tc.err, &customErr))
		assert.Equal(t, tc.status, customErr.StatusCode)
	}
}

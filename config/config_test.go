package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestNewConfig kiểm tra parse cấu hình từ biến môi trường
func TestNewConfig(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("MONGODB_CONNECTION_URI", "mongodb://localhost:27017")
	t.Setenv("MONGODB_DBNAME", "kirakira_test")

	cfg, err := NewConfig()
	require.NoError(t, err)

	assert.Equal(t, "test-secret", cfg.JwtSecret)
	assert.Equal(t, "mongodb://localhost:27017", cfg.MongoDB_ConnectionURI)
	assert.Equal(t, "kirakira_test", cfg.MongoDB_DBName)

	// Các giá trị mặc định
	assert.Equal(t, ":8080", cfg.Address)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.EqualValues(t, 1, cfg.SequenceStep)
}

// TestNewConfigMissingRequired kiểm tra thiếu biến bắt buộc
func TestNewConfigMissingRequired(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("MONGODB_CONNECTION_URI", "")
	t.Setenv("MONGODB_DBNAME", "")

	_, err := NewConfig()
	assert.Error(t, err)
}

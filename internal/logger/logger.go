// Package logger quản lý các logger logrus dùng chung trong ứng dụng.
// Mỗi logger được đặt tên (app, db) và ghi đồng thời ra stdout và file
// có rotation (lumberjack).
package logger

import (
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	loggers   = make(map[string]*logrus.Logger)
	loggersMu sync.Mutex

	// cấu hình hiện hành, set qua Init
	logLevel = "info"
	logDir   = "logs"
)

// Init cấu hình mức log và thư mục log cho toàn bộ ứng dụng.
// Gọi một lần từ main trước khi lấy logger.
func Init(level, dir string) error {
	loggersMu.Lock()
	defer loggersMu.Unlock()

	if level != "" {
		logLevel = level
	}
	if dir != "" {
		logDir = dir
	}
	return os.MkdirAll(logDir, 0o755)
}

// GetAppLogger trả về logger chính của ứng dụng.
func GetAppLogger() *logrus.Logger {
	return GetLogger("app")
}

// GetDBLogger trả về logger cho tầng truy cập dữ liệu.
func GetDBLogger() *logrus.Logger {
	return GetLogger("db")
}

// GetLogger trả về logger theo tên, tạo mới nếu chưa tồn tại.
func GetLogger(name string) *logrus.Logger {
	loggersMu.Lock()
	defer loggersMu.Unlock()

	if logger, ok := loggers[name]; ok {
		return logger
	}

	logger := createLogger(name)
	loggers[name] = logger
	return logger
}

// createLogger tạo một logger mới với cấu hình hiện hành.
func createLogger(name string) *logrus.Logger {
	logger := logrus.New()

	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05.000",
	})

	// File output với rotation + stdout
	fileWriter := &lumberjack.Logger{
		Filename:   filepath.Join(logDir, name+".log"),
		MaxSize:    50, // MB
		MaxBackups: 5,
		MaxAge:     30, // ngày
		Compress:   true,
	}
	logger.SetOutput(io.MultiWriter(os.Stdout, fileWriter))

	return logger
}

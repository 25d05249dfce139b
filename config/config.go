package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env"
	"github.com/joho/godotenv"
)

// Configuration chứa thông tin tĩnh cần thiết để chạy ứng dụng.
// Schema của dữ liệu được khai báo trong code; config chỉ chứa thông tin
// kết nối và tham số vận hành.
type Configuration struct {
	Address               string `env:"ADDRESS" envDefault:":8080"`      // Địa chỉ server
	JwtSecret             string `env:"JWT_SECRET,required"`             // Bí mật JWT (middleware trích principal từ token)
	MongoDB_ConnectionURI string `env:"MONGODB_CONNECTION_URI,required"` // URL kết nối cơ sở dữ liệu
	MongoDB_DBName        string `env:"MONGODB_DBNAME,required"`         // Tên cơ sở dữ liệu

	// Logging
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"` // Mức log (debug/info/warn/error)
	LogDir   string `env:"LOG_DIR" envDefault:"logs"`   // Thư mục chứa file log

	// Sequence
	SequenceStep int64 `env:"SEQUENCE_STEP" envDefault:"1"` // Bước tăng mặc định cho bộ đếm sequence

	// Bootstrap
	AdminUUID string `env:"ADMIN_UUID"` // UUID của principal quản trị đầu tiên (tùy chọn)
}

// getEnvPath trả về đường dẫn đến file env dựa trên môi trường.
// Tìm thư mục config/env bằng cách đi lên từ thư mục hiện tại.
func getEnvPath() string {
	environment := os.Getenv("GO_ENV")
	if environment == "" {
		environment = "development"
	}

	currentDir, err := os.Getwd()
	if err != nil {
		fmt.Printf("Không thể lấy được thư mục hiện tại: %v\n", err)
		return ""
	}

	for {
		envDir := filepath.Join(currentDir, "config", "env")
		if _, err := os.Stat(envDir); err == nil {
			return filepath.Join(envDir, fmt.Sprintf("%s.env", environment))
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			return ""
		}
		currentDir = parentDir
	}
}

// NewConfig đọc dữ liệu cấu hình từ file env (nếu có) rồi parse từ environment.
// File env không bắt buộc - khi chạy trong container, biến môi trường
// được set trực tiếp.
func NewConfig() (*Configuration, error) {
	if envPath := getEnvPath(); envPath != "" {
		if err := godotenv.Load(envPath); err != nil {
			// Dùng fmt.Printf vì logger có thể chưa được init ở đây
			fmt.Printf("Không thể load file env tại %s: %v\n", envPath, err)
		}
	}

	cfg := Configuration{}
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("lỗi khi parse config: %w", err)
	}

	return &cfg, nil
}

package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env"
	"github.com/joho/godotenv"
)

// Configuration chứa thông tin tĩnh cần thiết để chạy ứng dụng.
// Nó chứa thông tin kết nối MongoDB và cấu hình aggregation.
type Configuration struct {
	Address               string `env:"ADDRESS" envDefault:":8080"`      // Địa chỉ server
	MongoDB_ConnectionURI string `env:"MONGODB_CONNECTION_URI,required"` // URL kết nối MongoDB

	// Connection pool và timeout của MongoDB client
	MongoDB_MaxPoolSize    int `env:"MONGODB_MAX_POOL_SIZE" envDefault:"50"`   // Số connection tối đa trong pool
	MongoDB_MinPoolSize    int `env:"MONGODB_MIN_POOL_SIZE" envDefault:"10"`   // Số connection giữ sẵn trong pool
	MongoDB_ConnectTimeout int `env:"MONGODB_CONNECT_TIMEOUT" envDefault:"5"`  // Timeout khi kết nối (giây)
	MongoDB_SocketTimeout  int `env:"MONGODB_SOCKET_TIMEOUT" envDefault:"10"`  // Timeout gửi nhận dữ liệu (giây)

	// Olytics_EnabledGroups xác định các nhóm được bật content archive aggregation.
	// "*" = bật cho tất cả, ngược lại là danh sách "account_group" phân cách dấu phẩy.
	Olytics_EnabledGroups string `env:"OLYTICS_ENABLED_GROUPS" envDefault:"*"`

	// Giới hạn body của request ingest event (bytes)
	Ingest_BodyLimit int `env:"INGEST_BODY_LIMIT" envDefault:"65536"`

	CORS_Origins string `env:"CORS_ORIGINS" envDefault:"*"` // Các origins được phép (phân cách bởi dấu phẩy, * = tất cả)
}

// getEnvPath trả về đường dẫn đến file env dựa trên môi trường
func getEnvPath() string {
	// Mặc định sử dụng môi trường development
	env := os.Getenv("GO_ENV")
	if env == "" {
		env = "development"
	}

	currentDir, err := os.Getwd()
	if err != nil {
		// Sử dụng fmt.Printf vì logger có thể chưa được init ở đây
		fmt.Printf("Không thể lấy được thư mục hiện tại: %v\n", err)
		return ""
	}

	// Tìm thư mục config/env bằng cách đi lên từ working directory
	for {
		envDir := filepath.Join(currentDir, "config", "env")
		if _, err := os.Stat(envDir); err == nil {
			return filepath.Join(envDir, fmt.Sprintf("%s.env", env))
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			return ""
		}
		currentDir = parentDir
	}
}

// NewConfig đọc dữ liệu cấu hình từ file env (nếu có) và environment variables
func NewConfig() *Configuration {
	envPath := getEnvPath()
	if envPath != "" {
		if err := godotenv.Load(envPath); err != nil {
			// File env là tùy chọn khi chạy trong container, env vars có thể đã được set sẵn
			fmt.Printf("Không thể load file env tại %s: %v\n", envPath, err)
		}
	}

	cfg := Configuration{}
	if err := env.Parse(&cfg); err != nil {
		fmt.Printf("Lỗi khi parse config: %+v\n", err)
		return nil
	}

	return &cfg
}

// Package global giữ các biến dùng chung toàn process: cấu hình server, session
// MongoDB và các registry. Các biến này được gán một lần khi khởi động (cmd/server)
// và chỉ đọc sau đó.
package global

import (
	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/CaitlynKnudsvig/olytics/config"
	"github.com/CaitlynKnudsvig/olytics/internal/registry"
)

// Tên database của hai archive. Collection bên trong được đặt theo "{account}_{group}".
const (
	MongoDB_DBName_SessionArchive = "content_session_archive"
	MongoDB_DBName_TrafficArchive = "content_traffic_archive"
)

// Các biến toàn cục
var (
	// ServerConfig chứa cấu hình server đọc từ env
	ServerConfig *config.Configuration

	// MongoDB_Session là client MongoDB dùng chung cho toàn bộ ứng dụng
	MongoDB_Session *mongo.Client

	// RegistryCollections cache các collection handle theo key "{db}.{collection}".
	// Collection của archive được tạo theo account/group nên không biết trước khi chạy.
	RegistryCollections = registry.NewRegistry[*mongo.Collection]()

	// RegistryEnsuredIndexes đánh dấu các collection đã được ensure index trong
	// process này (key "{db}.{collection}"). Chỉ là tối ưu: đúng/sai của dữ liệu
	// không phụ thuộc vào cache này.
	RegistryEnsuredIndexes = registry.NewRegistry[bool]()

	// Validate là validator instance dùng chung
	Validate *validator.Validate
)

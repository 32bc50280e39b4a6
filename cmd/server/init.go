package main

import (
	"github.com/sirupsen/logrus"

	"github.com/CaitlynKnudsvig/olytics/config"
	"github.com/CaitlynKnudsvig/olytics/internal/database"
	"github.com/CaitlynKnudsvig/olytics/internal/global"
)

// Hàm khởi tạo các biến toàn cục
func InitGlobal() {
	initValidator()        // Khởi tạo validator
	initConfig()           // Khởi tạo cấu hình server
	initDatabase_MongoDB() // Khởi tạo kết nối database
}

// Hàm khởi tạo validator (đăng ký custom validator archive_key cho account/group/app key)
func initValidator() {
	global.InitValidator()
	logrus.Info("Initialized validator") // Ghi log thông báo đã khởi tạo validator
}

// Hàm khởi tạo cấu hình server
func initConfig() {
	global.ServerConfig = config.NewConfig()
	if global.ServerConfig == nil {
		logrus.Fatalf("Failed to initialize config: config is nil") // Ghi log lỗi nếu khởi tạo cấu hình thất bại
	}
	logrus.Info("Initialized server config") // Ghi log thông báo đã khởi tạo cấu hình server
}

// Hàm khởi tạo kết nối database
func initDatabase_MongoDB() {
	var err error
	global.MongoDB_Session, err = database.GetInstance(global.ServerConfig)
	if err != nil {
		logrus.Fatalf("Failed to get database instance: %v", err) // Ghi log lỗi nếu kết nối database thất bại
	}
	logrus.Info("Connected to MongoDB") // Ghi log thông báo đã kết nối database thành công

	// Index của hai archive được ensure lazy theo từng account/group khi có event đầu tiên,
	// vì tên collection chỉ biết được lúc chạy.
}

// addressFromConfig trả về địa chỉ listen của server
func addressFromConfig() string {
	return global.ServerConfig.Address
}

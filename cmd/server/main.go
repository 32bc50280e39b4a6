package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v3"

	"github.com/CaitlynKnudsvig/olytics/internal/database"
	"github.com/CaitlynKnudsvig/olytics/internal/global"
	"github.com/CaitlynKnudsvig/olytics/internal/logger"
)

// initLogger khởi tạo và cấu hình logger cho toàn bộ ứng dụng
func initLogger() {
	// Logger tự đọc environment variables để cấu hình
	if err := logger.Init(nil); err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}

	log := logger.GetAppLogger()
	log.Info("Logger system initialized successfully")
}

// main_thread khởi tạo và chạy Fiber server trên main thread
func main_thread(app *fiber.App, address string) {
	log := logger.GetAppLogger()
	log.WithFields(map[string]interface{}{
		"address":  address,
		"protocol": "HTTP",
	}).Info("Starting Fiber server...")

	if err := app.Listen(address, fiber.ListenConfig{}); err != nil {
		log.Fatalf("Error in Fiber Listen: %v", err)
	}
}

// Hàm main
func main() {
	// Khởi tạo logger
	initLogger()

	// Khởi tạo các biến toàn cục
	InitGlobal()

	// Khởi tạo aggregation manager và đăng ký các aggregation
	manager := InitAggregations()

	// Đóng kết nối MongoDB khi server dừng
	log := logger.GetAppLogger()
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sig
		log.Info("Shutting down...")
		if err := database.CloseInstance(global.MongoDB_Session); err != nil {
			log.WithError(err).Error("Error closing MongoDB connection")
		}
		os.Exit(0)
	}()

	// Khởi tạo app và chạy trên main thread
	app := InitFiberApp(manager)
	main_thread(app, addressFromConfig())
}

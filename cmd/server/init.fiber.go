package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/gofiber/fiber/v3/middleware/requestid"

	olyticsrouter "github.com/CaitlynKnudsvig/olytics/internal/api/olytics/router"
	olyticssvc "github.com/CaitlynKnudsvig/olytics/internal/api/olytics/service"
	"github.com/CaitlynKnudsvig/olytics/internal/common"
	"github.com/CaitlynKnudsvig/olytics/internal/global"
	"github.com/CaitlynKnudsvig/olytics/internal/logger"
)

// InitFiberApp khởi tạo ứng dụng Fiber với các middleware cần thiết
func InitFiberApp(manager *olyticssvc.AggregationManager) *fiber.App {
	app := fiber.New(fiber.Config{
		// Cấu hình cơ bản
		AppName:       "Olytics Archive API",
		ServerHeader:  "Olytics Archive API",
		StrictRouting: true, // /foo và /foo/ là khác nhau
		CaseSensitive: true, // /Foo và /foo là khác nhau
		UnescapePath:  true, // Tự động decode URL-encoded paths

		// Payload event từ tracking script rất nhỏ, giới hạn chặt để chống abuse
		BodyLimit: global.ServerConfig.Ingest_BodyLimit,

		// Timeout
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,

		// Error handling
		ErrorHandler: func(c fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			message := "Internal Server Error"
			errorCode := common.ErrCodeInternalServer.Code

			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
				message = e.Message
				switch code {
				case fiber.StatusBadRequest:
					errorCode = common.ErrCodeValidationInput.Code
				case fiber.StatusNotFound, fiber.StatusConflict:
					errorCode = common.ErrCodeDatabaseQuery.Code
				}
			}

			logger.WithRequest(c).WithFields(map[string]interface{}{
				"code":      code,
				"errorCode": errorCode,
				"message":   message,
			}).Error("Request error")

			return c.Status(code).JSON(fiber.Map{
				"code":    errorCode,
				"message": message,
				"status":  "error",
			})
		},
	})

	// Request ID Middleware, tạo ID duy nhất cho mỗi request để trace
	app.Use(requestid.New(requestid.Config{
		Header: "X-Request-ID",
		Generator: func() string {
			return fmt.Sprintf("%d", time.Now().UnixNano())
		},
	}))

	// CORS Middleware, đặt trước các middleware khác để xử lý preflight requests
	corsOrigins := global.ServerConfig.CORS_Origins
	var allowOrigins []string
	if corsOrigins == "*" {
		allowOrigins = []string{"*"}
	} else {
		allowOrigins = strings.Split(corsOrigins, ",")
		for i, origin := range allowOrigins {
			allowOrigins[i] = strings.TrimSpace(origin)
		}
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: allowOrigins,
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{
			"Origin",
			"Content-Type",
			"Accept",
			"X-Request-ID",
			"X-Requested-With",
		},
		ExposeHeaders: []string{"Content-Length", "X-Request-ID"},
		MaxAge:        24 * 60 * 60, // Cache preflight requests 24 giờ
	}))

	// Recover Middleware
	app.Use(recover.New(recover.Config{
		EnableStackTrace: true,
		StackTraceHandler: func(c fiber.Ctx, e interface{}) {
			logger.WithRequest(c).WithFields(map[string]interface{}{
				"panic": e,
			}).Error("Panic recovered")
		},
	}))

	// Health check
	app.Get("/health", func(c fiber.Ctx) error {
		return c.Status(common.StatusOK).JSON(fiber.Map{
			"status":       "ok",
			"aggregations": manager.Names(),
		})
	})

	// Đăng ký các route olytics
	v1 := app.Group("/api/v1")
	if err := olyticsrouter.Register(v1, manager); err != nil {
		log := logger.GetAppLogger()
		log.Fatalf("Failed to register olytics routes: %v", err)
	}

	return app
}

package database

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/CaitlynKnudsvig/olytics/config"
	"github.com/CaitlynKnudsvig/olytics/internal/logger"
)

// GetInstance kết nối MongoDB theo cấu hình và trả về client dùng chung.
// Pool size và timeout lấy từ config để chỉnh được theo môi trường triển khai,
// mỗi worker xử lý event dùng chung pool này.
func GetInstance(c *config.Configuration) (*mongo.Client, error) {
	if c.MongoDB_ConnectionURI == "" {
		return nil, fmt.Errorf("database connection URL is empty")
	}

	clientOptions := options.Client().ApplyURI(c.MongoDB_ConnectionURI).
		SetMaxPoolSize(uint64(c.MongoDB_MaxPoolSize)).
		SetMinPoolSize(uint64(c.MongoDB_MinPoolSize)).
		SetConnectTimeout(time.Duration(c.MongoDB_ConnectTimeout) * time.Second).
		SetSocketTimeout(time.Duration(c.MongoDB_SocketTimeout) * time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	// Ping để chắc chắn server trả lời trước khi nhận event
	ctxPing, cancelPing := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancelPing()

	if err := client.Ping(ctxPing, nil); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	logger.GetAppLogger().Info("Successfully connected to MongoDB")
	return client, nil
}

// CloseInstance ngắt kết nối client khi server dừng.
func CloseInstance(client *mongo.Client) error {
	if err := client.Disconnect(context.TODO()); err != nil {
		logger.GetAppLogger().WithError(err).Error("Failed to disconnect MongoDB client")
		return err
	}
	logger.GetAppLogger().Info("Successfully disconnected from MongoDB")
	return nil
}

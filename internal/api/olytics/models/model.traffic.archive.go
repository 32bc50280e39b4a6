package olyticsmodels

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TrafficMetadata là khóa định danh của một traffic record, lồng dưới field metadata.
type TrafficMetadata struct {
	Month     time.Time `json:"month" bson:"month"`                       // Đầu tháng UTC
	ContentID string    `json:"contentId" bson:"contentId"`               // ID nội dung phía client
	UserID    string    `json:"userId,omitempty" bson:"userId,omitempty"` // ID người dùng, bỏ qua field khi ẩn danh
}

// TrafficRecord là một document trong traffic archive.
// Mỗi record tổng hợp pageviews và visits của một cặp (nội dung, người dùng) trong một tháng.
type TrafficRecord struct {
	ID           primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"` // ID của record
	Metadata     TrafficMetadata    `json:"metadata" bson:"metadata"`          // Khóa định danh record
	LastAccessed time.Time          `json:"lastAccessed" bson:"lastAccessed"`  // Lần truy cập gần nhất
	Pageviews    int64              `json:"pageviews" bson:"pageviews"`        // Tổng số pageview trong tháng
	Visits       int64              `json:"visits" bson:"visits"`              // Số phiên riêng biệt, 0 nghĩa là chưa xác định
}

package olyticsmodels

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SessionRecord là một document trong session archive.
// Mỗi record đại diện cho một phiên truy cập một nội dung trong một tháng.
type SessionRecord struct {
	ID           primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`           // ID của record
	Month        time.Time          `json:"month" bson:"month"`                          // Đầu tháng UTC của tháng chứa event
	ContentID    string             `json:"contentId" bson:"contentId"`                  // ID nội dung phía client
	UserID       string             `json:"userId,omitempty" bson:"userId,omitempty"`    // ID người dùng, bỏ qua field khi ẩn danh
	SessionID    primitive.Binary   `json:"sessionId" bson:"sessionId"`                  // UUID phiên dạng BinData subtype 4
	LastAccessed time.Time          `json:"lastAccessed" bson:"lastAccessed"`            // Lần truy cập gần nhất trong phiên
}

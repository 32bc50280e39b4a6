// Package database - Quản lý kết nối MongoDB và vòng đời index của các archive collection.
package database

import (
	"context"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/CaitlynKnudsvig/olytics/internal/common"
)

// IndexSpec mô tả một index khai báo: thứ tự key và options (unique, TTL).
type IndexSpec struct {
	Keys    bson.D                // Thứ tự các field của index
	Options *options.IndexOptions // Options: unique, expireAfterSeconds, ...
}

// EnsureIndexes tạo các index khai báo trên collection nếu chúng chưa tồn tại.
// Hàm này idempotent và an toàn khi nhiều worker gọi đồng thời:
//   - Index đã tồn tại với cấu hình tương thích (kể cả khi race với worker khác) → bỏ qua.
//   - Index đã tồn tại với cấu hình khác (unique/TTL không khớp) → trả về
//     common.ErrMongoIndexConflict, lỗi cấu hình fatal, không được nuốt.
func EnsureIndexes(ctx context.Context, collection *mongo.Collection, specs []IndexSpec) error {
	for _, spec := range specs {
		model := mongo.IndexModel{
			Keys:    spec.Keys,
			Options: spec.Options,
		}
		if _, err := collection.Indexes().CreateOne(ctx, model); err != nil {
			if isIndexExistsError(err) {
				continue
			}
			if common.IsIndexConflictError(err) {
				return common.ErrMongoIndexConflict
			}
			return common.ConvertMongoError(err)
		}
	}
	return nil
}

// isIndexExistsError nhận diện lỗi "index đã tồn tại" với cấu hình tương thích.
// MongoDB trả về CreateOne thành công khi index giống hệt, nhưng một số phiên bản
// server cũ vẫn báo lỗi text "already exists".
func isIndexExistsError(err error) bool {
	if err == nil {
		return false
	}
	// Xung đột cấu hình không phải là "đã tồn tại tương thích"
	if common.IsIndexConflictError(err) {
		return false
	}
	return strings.Contains(err.Error(), "already exists")
}

package olyticssvc

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	olyticsmodels "github.com/CaitlynKnudsvig/olytics/internal/api/olytics/models"
	"github.com/CaitlynKnudsvig/olytics/internal/common"
	"github.com/CaitlynKnudsvig/olytics/internal/database"
	"github.com/CaitlynKnudsvig/olytics/internal/global"
	"github.com/CaitlynKnudsvig/olytics/internal/logger"
	"github.com/CaitlynKnudsvig/olytics/internal/registry"
)

const (
	// EntityTypeContent là loại entity duy nhất mà aggregation này xử lý
	EntityTypeContent = "content"

	// sessionArchiveTTLSeconds là thời gian sống của session record: 45 ngày
	sessionArchiveTTLSeconds = 3888000

	// bsonSubtypeUUID là subtype chuẩn của UUID trong BSON BinData
	bsonSubtypeUUID = 0x04
)

// archiveCollection là phần contract của *mongo.Collection mà aggregation dùng
// để ghi và đếm. Tách interface để core test được với store giả lập trong bộ nhớ.
type archiveCollection interface {
	UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error)
	CountDocuments(ctx context.Context, filter interface{}, opts ...*options.CountOptions) (int64, error)
}

// ContentArchiveAggregation tổng hợp event nội dung vào hai archive:
//   - session archive: một record cho mỗi (tháng, nội dung, người dùng, phiên)
//   - traffic archive: một record cho mỗi (tháng, nội dung, người dùng),
//     mang pageviews và visits dẫn xuất từ session archive
//
// Mỗi event được xử lý độc lập, đúng/sai chỉ dựa vào tính atomic
// của từng upsert phía MongoDB, không cần lock trong process.
type ContentArchiveAggregation struct {
	client      *mongo.Client
	enablement  EnablementChecker
	collections *registry.Registry[*mongo.Collection]
	ensured     *registry.Registry[bool]
	log         *logrus.Logger

	// openCollection trả về collection handle đã được ensure index.
	// Mặc định đi qua MongoDB client + registry, thay được trong test.
	openCollection func(ctx context.Context, dbName, collName string, specs []database.IndexSpec) (archiveCollection, error)
}

// NewContentArchiveAggregation tạo ContentArchiveAggregation với client và
// enablement checker được inject. Collection handle và trạng thái ensure index
// dùng chung registry toàn cục.
func NewContentArchiveAggregation(client *mongo.Client, enablement EnablementChecker) *ContentArchiveAggregation {
	a := &ContentArchiveAggregation{
		client:      client,
		enablement:  enablement,
		collections: global.RegistryCollections,
		ensured:     global.RegistryEnsuredIndexes,
		log:         logger.GetAppLogger(),
	}
	a.openCollection = a.openMongoCollection
	return a
}

// Name trả về tên đăng ký của aggregation.
func (a *ContentArchiveAggregation) Name() string {
	return "content_archive"
}

// GetIndexes trả về index của collection chính. Aggregation này chỉ ghi vào
// hai archive collection, được provision riêng theo từng account/group,
// nên danh sách ở đây rỗng.
func (a *ContentArchiveAggregation) GetIndexes() []database.IndexSpec {
	return []database.IndexSpec{}
}

// Supports kiểm tra event có đủ điều kiện: account/group được bật và
// entity của event phải có type "content".
func (a *ContentArchiveAggregation) Supports(event olyticsmodels.Event, accountKey, groupKey, appKey string) bool {
	if event == nil || event.Entity() == nil {
		return false
	}
	if !a.enablement.IsEnabled(accountKey, groupKey) {
		return false
	}
	return event.Entity().Type() == EntityTypeContent
}

// Process xử lý một event: upsert session archive trước, traffic archive sau.
// Thứ tự này bắt buộc vì bước traffic đếm số phiên từ session archive,
// nên phiên của chính event này phải đã được ghi xong trước khi đếm.
func (a *ContentArchiveAggregation) Process(ctx context.Context, event olyticsmodels.Event, accountKey, groupKey, appKey string) error {
	if !a.Supports(event, accountKey, groupKey, appKey) {
		a.log.WithFields(logrus.Fields{
			"account": accountKey,
			"group":   groupKey,
			"app":     appKey,
		}).Debug("Bỏ qua event không đủ điều kiện aggregate")
		return nil
	}

	key := archiveKeyFromEvent(event)
	eventTime := event.CreatedAt()

	if err := a.upsertSessionArchive(ctx, accountKey, groupKey, key, eventTime); err != nil {
		return err
	}
	return a.upsertTrafficArchive(ctx, accountKey, groupKey, key, eventTime)
}

// archiveKey là khóa dedup dẫn xuất từ một event, dùng chung cho cả hai archive.
type archiveKey struct {
	month     time.Time
	contentID string
	userID    string // Rỗng nghĩa là visitor ẩn danh, field sẽ không được ghi
	sessionID primitive.Binary
}

// archiveKeyFromEvent dẫn xuất khóa dedup từ event.
func archiveKeyFromEvent(event olyticsmodels.Event) archiveKey {
	return archiveKey{
		month:     monthOf(event.CreatedAt()),
		contentID: event.Entity().ClientID(),
		userID:    event.Session().CustomerID(),
		sessionID: mongoSessionID(event.Session().ID()),
	}
}

// monthOf cắt timestamp về thời điểm đầu tiên của tháng chứa nó, theo UTC.
// Cả hai archive dùng chung hàm này nên luôn bucket giống nhau cho cùng event.
func monthOf(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// mongoSessionID chuyển UUID phiên thành BSON BinData subtype 4.
func mongoSessionID(id uuid.UUID) primitive.Binary {
	return primitive.Binary{
		Subtype: bsonSubtypeUUID,
		Data:    id[:],
	}
}

// archiveCollectionName ghép account và group thành tên collection của archive.
func archiveCollectionName(accountKey, groupKey string) string {
	return accountKey + "_" + groupKey
}

// sessionArchiveIndexes trả về danh sách index bắt buộc của session archive.
func sessionArchiveIndexes() []database.IndexSpec {
	return []database.IndexSpec{
		{
			Keys: bson.D{
				{Key: "month", Value: 1},
				{Key: "contentId", Value: 1},
				{Key: "userId", Value: 1},
				{Key: "sessionId", Value: 1},
			},
			Options: options.Index().SetUnique(true),
		},
		{
			// Phục vụ query đếm visit theo (month, contentId, userId)
			Keys: bson.D{
				{Key: "month", Value: 1},
				{Key: "contentId", Value: 1},
				{Key: "userId", Value: 1},
			},
		},
		{
			Keys:    bson.D{{Key: "lastAccessed", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(sessionArchiveTTLSeconds),
		},
	}
}

// trafficArchiveIndexes trả về danh sách index bắt buộc của traffic archive.
func trafficArchiveIndexes() []database.IndexSpec {
	return []database.IndexSpec{
		{
			Keys: bson.D{
				{Key: "metadata.month", Value: 1},
				{Key: "metadata.contentId", Value: 1},
				{Key: "metadata.userId", Value: 1},
			},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "lastAccessed", Value: 1}},
		},
	}
}

// openMongoCollection lấy collection handle từ registry (tạo mới nếu chưa có)
// và ensure index trước khi trả về.
func (a *ContentArchiveAggregation) openMongoCollection(ctx context.Context, dbName, collName string, specs []database.IndexSpec) (archiveCollection, error) {
	key := dbName + "." + collName
	coll, err := a.collections.GetOrCreate(key, func() (*mongo.Collection, error) {
		return a.client.Database(dbName).Collection(collName), nil
	})
	if err != nil {
		return nil, err
	}
	if err := a.ensureArchiveIndexes(ctx, coll, specs); err != nil {
		return nil, err
	}
	return coll, nil
}

// ensureArchiveIndexes provision index cho một archive collection.
// Cache theo process để không gọi CreateOne trên mỗi event; đúng/sai
// không phụ thuộc cache vì EnsureIndexes tự nó idempotent.
func (a *ContentArchiveAggregation) ensureArchiveIndexes(ctx context.Context, coll *mongo.Collection, specs []database.IndexSpec) error {
	cacheKey := coll.Database().Name() + "." + coll.Name()
	if _, exists := a.ensured.Get(cacheKey); exists {
		return nil
	}
	if err := database.EnsureIndexes(ctx, coll, specs); err != nil {
		return err
	}
	if _, err := a.ensured.Register(cacheKey, true); err != nil {
		return err
	}
	return nil
}

// sessionFilter xây filter match đúng một session record theo khóa dedup.
// Visitor ẩn danh match bằng điều kiện "field userId không tồn tại",
// không bao giờ dùng null vì null sẽ đụng mọi phiên ẩn danh khác.
func sessionFilter(key archiveKey) bson.M {
	filter := bson.M{
		"month":     key.month,
		"contentId": key.contentID,
		"sessionId": key.sessionID,
	}
	if key.userID != "" {
		filter["userId"] = key.userID
	} else {
		filter["userId"] = bson.M{"$exists": false}
	}
	return filter
}

// sessionUpdate xây mutation cho session record: khóa dedup chỉ ghi khi insert,
// lastAccessed ghi lại trên mọi event.
func sessionUpdate(key archiveKey, eventTime time.Time) bson.M {
	setOnInsert := bson.M{
		"month":     key.month,
		"contentId": key.contentID,
		"sessionId": key.sessionID,
	}
	if key.userID != "" {
		setOnInsert["userId"] = key.userID
	}
	return bson.M{
		"$set":         bson.M{"lastAccessed": eventTime},
		"$setOnInsert": setOnInsert,
	}
}

// upsertSessionArchive ghi hoặc cập nhật session record của event.
func (a *ContentArchiveAggregation) upsertSessionArchive(ctx context.Context, accountKey, groupKey string, key archiveKey, eventTime time.Time) error {
	coll, err := a.openCollection(ctx, global.MongoDB_DBName_SessionArchive, archiveCollectionName(accountKey, groupKey), sessionArchiveIndexes())
	if err != nil {
		return err
	}
	opts := options.Update().SetUpsert(true)
	if _, err := coll.UpdateOne(ctx, sessionFilter(key), sessionUpdate(key, eventTime), opts); err != nil {
		return common.ConvertMongoError(err)
	}
	return nil
}

// sessionBucketFilter xây filter đếm mọi phiên của một bucket (month, contentId, userId),
// không phân biệt sessionId. Phân biệt ẩn danh/đăng nhập giống sessionFilter.
func sessionBucketFilter(key archiveKey) bson.M {
	filter := bson.M{
		"month":     key.month,
		"contentId": key.contentID,
	}
	if key.userID != "" {
		filter["userId"] = key.userID
	} else {
		filter["userId"] = bson.M{"$exists": false}
	}
	return filter
}

// contentVisits đếm chính xác số session record hiện có của bucket.
// Kết quả 0 nghĩa là "chưa xác định" chứ không phải "không có visit",
// vì dữ liệu có thể chưa kịp hiển thị với query này.
func (a *ContentArchiveAggregation) contentVisits(ctx context.Context, accountKey, groupKey string, key archiveKey) (int64, error) {
	coll, err := a.openCollection(ctx, global.MongoDB_DBName_SessionArchive, archiveCollectionName(accountKey, groupKey), sessionArchiveIndexes())
	if err != nil {
		return 0, err
	}
	count, err := coll.CountDocuments(ctx, sessionBucketFilter(key))
	if err != nil {
		return 0, common.ConvertMongoError(err)
	}
	return count, nil
}

// trafficFilter xây filter match đúng một traffic record theo bucket.
func trafficFilter(key archiveKey) bson.M {
	filter := bson.M{
		"metadata.month":     key.month,
		"metadata.contentId": key.contentID,
	}
	if key.userID != "" {
		filter["metadata.userId"] = key.userID
	} else {
		filter["metadata.userId"] = bson.M{"$exists": false}
	}
	return filter
}

// trafficUpdate xây mutation cho traffic record, áp dụng atomic trong một operation:
//   - metadata chỉ ghi khi insert
//   - lastAccessed ghi lại trên mọi event, pageviews tăng đúng 1
//   - visits chỉ ghi khi giá trị dẫn xuất dương, giữ nguyên giá trị cũ khi bằng 0
func trafficUpdate(key archiveKey, eventTime time.Time, visits int64) bson.M {
	metadata := bson.M{
		"month":     key.month,
		"contentId": key.contentID,
	}
	if key.userID != "" {
		metadata["userId"] = key.userID
	}
	set := bson.M{"lastAccessed": eventTime}
	if visits > 0 {
		set["visits"] = visits
	}
	return bson.M{
		"$setOnInsert": bson.M{"metadata": metadata},
		"$set":         set,
		"$inc":         bson.M{"pageviews": 1},
	}
}

// upsertTrafficArchive dẫn xuất visit count rồi ghi hoặc cập nhật traffic record.
// Đọc visit count thất bại không làm hỏng cả event: pageviews vẫn được tăng,
// chỉ visits của lần này bị bỏ qua.
func (a *ContentArchiveAggregation) upsertTrafficArchive(ctx context.Context, accountKey, groupKey string, key archiveKey, eventTime time.Time) error {
	visits, err := a.contentVisits(ctx, accountKey, groupKey, key)
	if err != nil {
		a.log.WithError(err).WithFields(logrus.Fields{
			"account":   accountKey,
			"group":     groupKey,
			"contentId": key.contentID,
		}).Warn("Không đọc được visit count từ session archive, bỏ qua cập nhật visits")
		visits = 0
	}

	coll, err := a.openCollection(ctx, global.MongoDB_DBName_TrafficArchive, archiveCollectionName(accountKey, groupKey), trafficArchiveIndexes())
	if err != nil {
		return err
	}
	opts := options.Update().SetUpsert(true)
	if _, err := coll.UpdateOne(ctx, trafficFilter(key), trafficUpdate(key, eventTime, visits), opts); err != nil {
		return common.ConvertMongoError(err)
	}
	return nil
}

package olyticssvc

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	olyticsmodels "github.com/CaitlynKnudsvig/olytics/internal/api/olytics/models"
	"github.com/CaitlynKnudsvig/olytics/internal/database"
	"github.com/CaitlynKnudsvig/olytics/internal/global"
)

// fakeArchiveStore giả lập ngữ nghĩa upsert/count của MongoDB cho hai archive
// và ghi lại thứ tự các thao tác để kiểm tra sequencing của pipeline.
type fakeArchiveStore struct {
	calls    []string
	sessions *fakeArchiveCollection
	traffic  *fakeArchiveCollection
}

func newFakeArchiveStore() *fakeArchiveStore {
	s := &fakeArchiveStore{}
	s.sessions = &fakeArchiveCollection{store: s, name: "session"}
	s.traffic = &fakeArchiveCollection{store: s, name: "traffic"}
	return s
}

func (s *fakeArchiveStore) open(ctx context.Context, dbName, collName string, specs []database.IndexSpec) (archiveCollection, error) {
	switch dbName {
	case global.MongoDB_DBName_SessionArchive:
		return s.sessions, nil
	case global.MongoDB_DBName_TrafficArchive:
		return s.traffic, nil
	}
	return nil, fmt.Errorf("unexpected database %q", dbName)
}

// fakeArchiveCollection giữ documents dưới dạng bson.M và áp dụng
// $setOnInsert/$set/$inc giống một upsert atomic phía server.
type fakeArchiveCollection struct {
	store     *fakeArchiveStore
	name      string
	docs      []bson.M
	updateErr error
	countErr  error
}

func (c *fakeArchiveCollection) UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error) {
	c.store.calls = append(c.store.calls, c.name+".update")
	if c.updateErr != nil {
		return nil, c.updateErr
	}
	f := filter.(bson.M)
	u := update.(bson.M)
	for _, doc := range c.docs {
		if matchFilter(doc, f) {
			applyUpdate(doc, u)
			return &mongo.UpdateResult{MatchedCount: 1, ModifiedCount: 1}, nil
		}
	}
	doc := bson.M{}
	if setOnInsert, ok := u["$setOnInsert"].(bson.M); ok {
		for k, v := range setOnInsert {
			doc[k] = v
		}
	}
	applyUpdate(doc, u)
	c.docs = append(c.docs, doc)
	return &mongo.UpdateResult{UpsertedCount: 1}, nil
}

func (c *fakeArchiveCollection) CountDocuments(ctx context.Context, filter interface{}, opts ...*options.CountOptions) (int64, error) {
	c.store.calls = append(c.store.calls, c.name+".count")
	if c.countErr != nil {
		return 0, c.countErr
	}
	var n int64
	for _, doc := range c.docs {
		if matchFilter(doc, filter.(bson.M)) {
			n++
		}
	}
	return n, nil
}

// lookupField đọc giá trị theo path có dấu chấm (metadata.month)
func lookupField(doc bson.M, path string) (interface{}, bool) {
	var cur interface{} = doc
	for _, part := range strings.Split(path, ".") {
		m, ok := cur.(bson.M)
		if !ok {
			return nil, false
		}
		cur, ok = m[part]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

func matchFilter(doc bson.M, filter bson.M) bool {
	for path, want := range filter {
		if cond, ok := want.(bson.M); ok {
			if exists, ok := cond["$exists"].(bool); ok {
				_, has := lookupField(doc, path)
				if has != exists {
					return false
				}
				continue
			}
			return false
		}
		got, has := lookupField(doc, path)
		if !has || !reflect.DeepEqual(got, want) {
			return false
		}
	}
	return true
}

func applyUpdate(doc bson.M, update bson.M) {
	if set, ok := update["$set"].(bson.M); ok {
		for k, v := range set {
			doc[k] = v
		}
	}
	if inc, ok := update["$inc"].(bson.M); ok {
		for k, v := range inc {
			cur, _ := doc[k].(int64)
			doc[k] = cur + toInt64(v)
		}
	}
}

func toInt64(v interface{}) int64 {
	switch n := v.(type) {
	case int:
		return int64(n)
	case int32:
		return int64(n)
	case int64:
		return n
	}
	return 0
}

func newAggregationWithFakeStore() (*ContentArchiveAggregation, *fakeArchiveStore) {
	agg := NewContentArchiveAggregation(nil, NewGroupEnablement("*"))
	store := newFakeArchiveStore()
	agg.openCollection = store.open
	return agg, store
}

func decodeInto(t *testing.T, doc bson.M, out interface{}) {
	t.Helper()
	data, err := bson.Marshal(doc)
	require.NoError(t, err)
	require.NoError(t, bson.Unmarshal(data, out))
}

// TestContentArchiveProcess kiểm tra toàn bộ pipeline xử lý một event
func TestContentArchiveProcess(t *testing.T) {
	ctx := context.Background()
	march := time.Date(2023, 3, 1, 0, 0, 0, 0, time.UTC)
	s1 := uuid.MustParse("11111111-1111-4111-8111-111111111111")
	s2 := uuid.MustParse("22222222-2222-4222-8222-222222222222")

	newEvent := func(sessionID uuid.UUID) olyticsmodels.Event {
		return olyticsmodels.NewWebEvent(
			time.Date(2023, 3, 15, 10, 0, 0, 0, time.UTC),
			EntityTypeContent, "C1", sessionID, "",
		)
	}

	t.Run("Session upsert chạy xong trước khi đếm visit, rồi mới ghi traffic", func(t *testing.T) {
		agg, store := newAggregationWithFakeStore()

		require.NoError(t, agg.Process(ctx, newEvent(s1), "acme", "news", "web"))
		assert.Equal(t, []string{"session.update", "session.count", "traffic.update"}, store.calls)
	})

	t.Run("Kịch bản ba event trong một tháng", func(t *testing.T) {
		agg, store := newAggregationWithFakeStore()

		// Event 1: phiên S1, ẩn danh
		require.NoError(t, agg.Process(ctx, newEvent(s1), "acme", "news", "web"))
		require.Len(t, store.sessions.docs, 1)
		require.Len(t, store.traffic.docs, 1)

		var session olyticsmodels.SessionRecord
		decodeInto(t, store.sessions.docs[0], &session)
		assert.Equal(t, march, session.Month.UTC())
		assert.Equal(t, "C1", session.ContentID)
		assert.Empty(t, session.UserID, "ẩn danh không có field userId")
		assert.Equal(t, byte(0x04), session.SessionID.Subtype)
		assert.Equal(t, s1[:], session.SessionID.Data)

		var traffic olyticsmodels.TrafficRecord
		decodeInto(t, store.traffic.docs[0], &traffic)
		assert.Equal(t, march, traffic.Metadata.Month.UTC())
		assert.Equal(t, "C1", traffic.Metadata.ContentID)
		assert.Empty(t, traffic.Metadata.UserID)
		assert.Equal(t, int64(1), traffic.Pageviews)
		assert.Equal(t, int64(1), traffic.Visits)

		// Event 2: phiên mới S2, cùng nội dung cùng ngày
		require.NoError(t, agg.Process(ctx, newEvent(s2), "acme", "news", "web"))
		require.Len(t, store.sessions.docs, 2)
		require.Len(t, store.traffic.docs, 1)

		decodeInto(t, store.traffic.docs[0], &traffic)
		assert.Equal(t, int64(2), traffic.Pageviews)
		assert.Equal(t, int64(2), traffic.Visits)

		// Event 3: lặp lại phiên S1
		require.NoError(t, agg.Process(ctx, newEvent(s1), "acme", "news", "web"))
		assert.Len(t, store.sessions.docs, 2, "phiên lặp lại không tạo record mới")

		decodeInto(t, store.traffic.docs[0], &traffic)
		assert.Equal(t, int64(3), traffic.Pageviews)
		assert.Equal(t, int64(2), traffic.Visits)
	})

	t.Run("Ẩn danh và đã đăng nhập là hai traffic bucket riêng", func(t *testing.T) {
		agg, store := newAggregationWithFakeStore()
		identified := olyticsmodels.NewWebEvent(
			time.Date(2023, 3, 15, 10, 0, 0, 0, time.UTC),
			EntityTypeContent, "C1", s1, "U1",
		)

		require.NoError(t, agg.Process(ctx, newEvent(s1), "acme", "news", "web"))
		require.NoError(t, agg.Process(ctx, identified, "acme", "news", "web"))

		assert.Len(t, store.sessions.docs, 2)
		assert.Len(t, store.traffic.docs, 2)
	})

	t.Run("Đếm visit lỗi thì pageviews vẫn tăng, visits giữ nguyên", func(t *testing.T) {
		agg, store := newAggregationWithFakeStore()

		require.NoError(t, agg.Process(ctx, newEvent(s1), "acme", "news", "web"))
		store.sessions.countErr = errors.New("connection reset")

		require.NoError(t, agg.Process(ctx, newEvent(s2), "acme", "news", "web"),
			"đọc visit count thất bại không làm hỏng cả event")

		var traffic olyticsmodels.TrafficRecord
		decodeInto(t, store.traffic.docs[0], &traffic)
		assert.Equal(t, int64(2), traffic.Pageviews)
		assert.Equal(t, int64(1), traffic.Visits, "không ghi đè visits khi count chưa xác định")
	})

	t.Run("Upsert session lỗi thì dừng trước bước traffic", func(t *testing.T) {
		agg, store := newAggregationWithFakeStore()
		store.sessions.updateErr = errors.New("socket timeout")

		err := agg.Process(ctx, newEvent(s1), "acme", "news", "web")
		require.Error(t, err)
		assert.Equal(t, []string{"session.update"}, store.calls)
		assert.Empty(t, store.traffic.docs)
	})

	t.Run("Event không đủ điều kiện là no-op", func(t *testing.T) {
		agg, store := newAggregationWithFakeStore()
		other := olyticsmodels.NewWebEvent(time.Now(), "product", "P1", s1, "")

		require.NoError(t, agg.Process(ctx, other, "acme", "news", "web"))
		assert.Empty(t, store.calls)
	})
}

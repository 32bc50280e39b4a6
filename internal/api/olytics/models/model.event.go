package olyticsmodels

import (
	"time"

	"github.com/google/uuid"
)

// Entity mô tả thực thể nội dung mà event tham chiếu tới.
type Entity interface {
	// Type trả về loại thực thể, ví dụ "content".
	Type() string
	// ClientID trả về định danh nội dung phía client.
	ClientID() string
}

// Session mô tả phiên truy cập của visitor gắn với event.
type Session interface {
	// ID trả về định danh phiên dạng UUID.
	ID() uuid.UUID
	// CustomerID trả về định danh người dùng đã đăng nhập.
	// Chuỗi rỗng nghĩa là visitor ẩn danh.
	CustomerID() string
}

// Event là khả năng tối thiểu mà một event cần có để được aggregate.
type Event interface {
	CreatedAt() time.Time
	Entity() Entity
	Session() Session
}

// WebEvent là event thu nhận từ tracking script trên web.
type WebEvent struct {
	Created        time.Time
	EntityType     string
	EntityClientID string
	SessionID      uuid.UUID
	CustomerID     string
}

// NewWebEvent tạo WebEvent mới. Nếu created là zero value thì dùng thời điểm hiện tại.
func NewWebEvent(created time.Time, entityType, entityClientID string, sessionID uuid.UUID, customerID string) *WebEvent {
	if created.IsZero() {
		created = time.Now().UTC()
	}
	return &WebEvent{
		Created:        created,
		EntityType:     entityType,
		EntityClientID: entityClientID,
		SessionID:      sessionID,
		CustomerID:     customerID,
	}
}

// CreatedAt trả về thời điểm event được tạo.
func (e *WebEvent) CreatedAt() time.Time {
	return e.Created
}

// Entity trả về thực thể của event.
func (e *WebEvent) Entity() Entity {
	return webEntity{event: e}
}

// Session trả về phiên của event.
func (e *WebEvent) Session() Session {
	return webSession{event: e}
}

type webEntity struct {
	event *WebEvent
}

func (w webEntity) Type() string {
	return w.event.EntityType
}

func (w webEntity) ClientID() string {
	return w.event.EntityClientID
}

type webSession struct {
	event *WebEvent
}

func (w webSession) ID() uuid.UUID {
	return w.event.SessionID
}

func (w webSession) CustomerID() string {
	return w.event.CustomerID
}

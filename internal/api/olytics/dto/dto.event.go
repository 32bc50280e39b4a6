package olyticsdto

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	olyticsmodels "github.com/CaitlynKnudsvig/olytics/internal/api/olytics/models"
	"github.com/CaitlynKnudsvig/olytics/internal/common"
)

// EventEntityInput là phần entity trong payload event từ tracking script
type EventEntityInput struct {
	Type     string `json:"type" validate:"required"`     // Loại entity, ví dụ "content"
	ClientID string `json:"clientId" validate:"required"` // ID nội dung phía client
}

// EventSessionInput là phần session trong payload event
type EventSessionInput struct {
	ID         string `json:"id" validate:"required,uuid"` // UUID phiên của visitor
	CustomerID string `json:"customerId,omitempty"`        // ID người dùng đã đăng nhập (tùy chọn)
}

// EventCreateInput là payload một event gửi vào endpoint ingest
type EventCreateInput struct {
	CreatedAt string            `json:"createdAt,omitempty"`        // Thời điểm tạo event, RFC3339 (mặc định: giờ server)
	Entity    EventEntityInput  `json:"entity" validate:"required"` // Entity mà event tham chiếu
	Session   EventSessionInput `json:"session" validate:"required"` // Phiên truy cập
}

// RouteParams là các routing key trên path của endpoint ingest
type RouteParams struct {
	Account string `uri:"account" validate:"required,archive_key"` // Account key
	Group   string `uri:"group" validate:"required,archive_key"`   // Group key
	App     string `uri:"app" validate:"required,archive_key"`     // App key
}

// ToWebEvent chuyển input đã validate thành WebEvent.
func (in *EventCreateInput) ToWebEvent() (*olyticsmodels.WebEvent, error) {
	sessionID, err := uuid.Parse(in.Session.ID)
	if err != nil {
		return nil, fmt.Errorf("parse session id: %w", common.ErrInvalidInput)
	}

	var created time.Time
	if in.CreatedAt != "" {
		created, err = time.Parse(time.RFC3339, in.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("parse createdAt: %w", common.ErrInvalidInput)
		}
	}

	return olyticsmodels.NewWebEvent(created, in.Entity.Type, in.Entity.ClientID, sessionID, in.Session.CustomerID), nil
}

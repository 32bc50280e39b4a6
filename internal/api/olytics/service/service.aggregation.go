package olyticssvc

import (
	"context"
	"fmt"

	olyticsmodels "github.com/CaitlynKnudsvig/olytics/internal/api/olytics/models"
	"github.com/CaitlynKnudsvig/olytics/internal/database"
	"github.com/CaitlynKnudsvig/olytics/internal/registry"
)

// Aggregation là interface chung của mọi aggregation xử lý event.
// Mỗi aggregation tự quyết định event nào thuộc về nó thông qua Supports.
type Aggregation interface {
	// Name trả về tên duy nhất của aggregation, dùng làm key trong registry.
	Name() string
	// Supports kiểm tra event có đủ điều kiện để aggregation này xử lý hay không.
	Supports(event olyticsmodels.Event, accountKey, groupKey, appKey string) bool
	// Process xử lý một event. Event không đủ điều kiện là no-op, không phải lỗi.
	Process(ctx context.Context, event olyticsmodels.Event, accountKey, groupKey, appKey string) error
	// GetIndexes trả về danh sách index của collection chính của aggregation.
	GetIndexes() []database.IndexSpec
}

// AggregationManager quản lý và điều phối các aggregation đã đăng ký.
// Một event đi vào sẽ được đưa qua lần lượt từng aggregation hỗ trợ nó.
type AggregationManager struct {
	registry *registry.Registry[Aggregation]
	order    []string // Thứ tự đăng ký, registry map không giữ thứ tự
}

// NewAggregationManager tạo AggregationManager rỗng.
func NewAggregationManager() *AggregationManager {
	return &AggregationManager{
		registry: registry.NewRegistry[Aggregation](),
	}
}

// Register đăng ký một aggregation theo tên của nó.
func (m *AggregationManager) Register(agg Aggregation) error {
	isNew, err := m.registry.Register(agg.Name(), agg)
	if err != nil {
		return fmt.Errorf("register aggregation %q: %w", agg.Name(), err)
	}
	if isNew {
		m.order = append(m.order, agg.Name())
	}
	return nil
}

// Dispatch đưa event qua tất cả aggregation hỗ trợ nó, theo thứ tự đăng ký.
// Trả về lỗi đầu tiên gặp phải, các aggregation phía sau không chạy nữa.
func (m *AggregationManager) Dispatch(ctx context.Context, event olyticsmodels.Event, accountKey, groupKey, appKey string) error {
	for _, name := range m.order {
		agg, exists := m.registry.Get(name)
		if !exists {
			continue
		}
		if !agg.Supports(event, accountKey, groupKey, appKey) {
			continue
		}
		if err := agg.Process(ctx, event, accountKey, groupKey, appKey); err != nil {
			return fmt.Errorf("aggregation %q: %w", name, err)
		}
	}
	return nil
}

// Names trả về tên các aggregation đã đăng ký theo thứ tự đăng ký.
func (m *AggregationManager) Names() []string {
	names := make([]string, len(m.order))
	copy(names, m.order)
	return names
}

package olyticssvc

import (
	"strings"
)

// EnablementChecker kiểm tra một cặp account/group có được bật aggregation hay không.
// Đây là collaborator bên ngoài của aggregation, tách interface để test dễ dàng.
type EnablementChecker interface {
	IsEnabled(accountKey, groupKey string) bool
}

// GroupEnablement là implementation của EnablementChecker dựa trên cấu hình env.
// Cấu hình là chuỗi "*" (bật tất cả) hoặc danh sách "account_group" phân tách bằng dấu phẩy.
type GroupEnablement struct {
	allowAll bool
	enabled  map[string]bool
}

// NewGroupEnablement parse chuỗi cấu hình OLYTICS_ENABLED_GROUPS thành GroupEnablement.
// Chuỗi rỗng được coi như "*".
func NewGroupEnablement(configValue string) *GroupEnablement {
	configValue = strings.TrimSpace(configValue)
	if configValue == "" || configValue == "*" {
		return &GroupEnablement{allowAll: true}
	}
	enabled := make(map[string]bool)
	for _, part := range strings.Split(configValue, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		enabled[part] = true
	}
	return &GroupEnablement{enabled: enabled}
}

// IsEnabled trả về true nếu cặp account/group được bật.
func (g *GroupEnablement) IsEnabled(accountKey, groupKey string) bool {
	if g.allowAll {
		return true
	}
	return g.enabled[accountKey+"_"+groupKey]
}

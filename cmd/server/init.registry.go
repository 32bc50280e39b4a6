package main

import (
	"github.com/sirupsen/logrus"

	olyticssvc "github.com/CaitlynKnudsvig/olytics/internal/api/olytics/service"
	"github.com/CaitlynKnudsvig/olytics/internal/global"
)

// InitAggregations khởi tạo aggregation manager và đăng ký các aggregation xử lý event.
func InitAggregations() *olyticssvc.AggregationManager {
	manager := olyticssvc.NewAggregationManager()

	enablement := olyticssvc.NewGroupEnablement(global.ServerConfig.Olytics_EnabledGroups)
	contentArchive := olyticssvc.NewContentArchiveAggregation(global.MongoDB_Session, enablement)
	if err := manager.Register(contentArchive); err != nil {
		logrus.Fatalf("Failed to register aggregation: %v", err)
	}

	logrus.Infof("Initialized aggregation manager: %v", manager.Names())
	return manager
}

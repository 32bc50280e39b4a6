// Package router đăng ký các route thuộc domain Olytics: ingest event.
package olyticsrouter

import (
	"github.com/gofiber/fiber/v3"

	olyticshdl "github.com/CaitlynKnudsvig/olytics/internal/api/olytics/handler"
	olyticssvc "github.com/CaitlynKnudsvig/olytics/internal/api/olytics/service"
)

// Register đăng ký các route olytics lên v1.
func Register(v1 fiber.Router, manager *olyticssvc.AggregationManager) error {
	eventHandler := olyticshdl.NewEventHandler(manager)
	v1.Post("/events/:account/:group/:app", eventHandler.IngestEvent)
	return nil
}

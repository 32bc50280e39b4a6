package olyticshdl

import (
	"bytes"
	"encoding/json"
	"errors"

	"github.com/gofiber/fiber/v3"

	olyticsdto "github.com/CaitlynKnudsvig/olytics/internal/api/olytics/dto"
	olyticssvc "github.com/CaitlynKnudsvig/olytics/internal/api/olytics/service"
	"github.com/CaitlynKnudsvig/olytics/internal/common"
	"github.com/CaitlynKnudsvig/olytics/internal/global"
)

// EventHandler xử lý các request ingest event và đưa chúng vào aggregation manager.
type EventHandler struct {
	Manager *olyticssvc.AggregationManager
}

// NewEventHandler tạo EventHandler với manager được inject.
func NewEventHandler(manager *olyticssvc.AggregationManager) *EventHandler {
	return &EventHandler{Manager: manager}
}

// IngestEvent nhận một event trên POST /events/:account/:group/:app,
// validate rồi dispatch cho các aggregation. Event không đủ điều kiện
// với mọi aggregation vẫn trả về thành công (no-op).
func (h *EventHandler) IngestEvent(c fiber.Ctx) error {
	var params olyticsdto.RouteParams
	if err := h.parseRequestParams(c, &params); err != nil {
		return h.handleResponse(c, nil, err)
	}

	var input olyticsdto.EventCreateInput
	if err := h.parseRequestBody(c, &input); err != nil {
		return h.handleResponse(c, nil, err)
	}

	event, err := input.ToWebEvent()
	if err != nil {
		return h.handleResponse(c, nil, err)
	}

	if err := h.Manager.Dispatch(c.Context(), event, params.Account, params.Group, params.App); err != nil {
		return h.handleResponse(c, nil, err)
	}

	return h.handleResponse(c, fiber.Map{
		"account": params.Account,
		"group":   params.Group,
		"app":     params.App,
	}, nil)
}

// parseRequestBody parse và validate body JSON của request.
func (h *EventHandler) parseRequestBody(c fiber.Ctx, input interface{}) error {
	decoder := json.NewDecoder(bytes.NewReader(c.Body()))
	decoder.UseNumber()
	if err := decoder.Decode(input); err != nil {
		return common.NewError(common.ErrCodeValidationFormat, common.MsgValidationError, common.StatusBadRequest, err)
	}
	if err := global.Validate.Struct(input); err != nil {
		return common.NewError(common.ErrCodeValidationInput, common.MsgValidationError, common.StatusBadRequest, err)
	}
	return nil
}

// parseRequestParams parse và validate các tham số từ URI.
func (h *EventHandler) parseRequestParams(c fiber.Ctx, input interface{}) error {
	if err := c.Bind().URI(input); err != nil {
		return common.NewError(common.ErrCodeValidationFormat, common.MsgValidationError, common.StatusBadRequest, err)
	}
	if err := global.Validate.Struct(input); err != nil {
		return common.NewError(common.ErrCodeValidationInput, common.MsgValidationError, common.StatusBadRequest, err)
	}
	return nil
}

// handleResponse chuẩn hóa response trả về cho client.
func (h *EventHandler) handleResponse(c fiber.Ctx, data interface{}, err error) error {
	c.Set("Content-Type", "application/json; charset=utf-8")
	if err != nil {
		var customErr *common.Error
		if errors.As(err, &customErr) {
			return c.Status(customErr.StatusCode).JSON(fiber.Map{
				"code":    customErr.Code.Code,
				"message": customErr.Message,
				"details": customErr.Details,
				"status":  "error",
			})
		}
		return c.Status(common.StatusInternalServerError).JSON(fiber.Map{
			"code":    common.ErrCodeDatabase.Code,
			"message": err.Error(),
			"status":  "error",
		})
	}
	return c.Status(common.StatusOK).JSON(fiber.Map{
		"code":    common.StatusOK,
		"message": common.MsgSuccess,
		"data":    data,
		"status":  "success",
	})
}

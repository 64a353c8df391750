package sms

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/wb-go/wbf/ginext"
	"github.com/wb-go/wbf/zlog"

	"github.com/duoduojuzi/fastsync-receiver/internal/api/respond"
	"github.com/duoduojuzi/fastsync-receiver/internal/model"
)

type notifier interface {
	Publish(p model.Payload) error
}

// Handler handles forwarded SMS requests.
type Handler struct {
	notifier  notifier
	validator *validator.Validate
}

// NewHandler creates a new SMS handler.
func NewHandler(n notifier, v *validator.Validate) *Handler {
	return &Handler{notifier: n, validator: v}
}

// ReceiveRequest represents the JSON body of a forwarded SMS. Code carries
// an extracted verification code and may be empty.
type ReceiveRequest struct {
	Sender  string `json:"sender" validate:"required"`
	Content string `json:"content" validate:"required"`
	Code    string `json:"code"`
}

// Receive handles POST /sms.
func (h *Handler) Receive(c *ginext.Context) {
	var req ReceiveRequest

	if err := json.NewDecoder(c.Request.Body).Decode(&req); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			respond.Fail(c.Writer, http.StatusRequestEntityTooLarge, fmt.Errorf("request body too large"))
			return
		}

		zlog.Logger.Error().Err(err).Msg("failed to decode request body")
		respond.Fail(c.Writer, http.StatusBadRequest, fmt.Errorf("invalid request body"))
		return
	}

	if err := h.validator.Struct(req); err != nil {
		zlog.Logger.Warn().Err(err).Msg("failed to validate request body")
		respond.Fail(c.Writer, http.StatusBadRequest, fmt.Errorf("validation error: %s", err.Error()))
		return
	}

	zlog.Logger.Info().Str("sender", req.Sender).Msg("sms received")

	p := model.Payload{
		Kind: model.KindSms,
		Sms: &model.SmsPayload{
			Sender:  req.Sender,
			Content: req.Content,
			Code:    req.Code,
		},
	}

	go func() {
		if err := h.notifier.Publish(p); err != nil {
			zlog.Logger.Error().Err(err).Msg("failed to show sms notification")
		}
	}()

	respond.OK(c.Writer, "sms received")
}

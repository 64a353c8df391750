package clipboard

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

// Handler handles clipboard sync requests. The pushed text is never written
// to the system clipboard directly; the user decides through the
// notification.
type Handler struct {
	notifier  notifier
	validator *validator.Validate
}

// NewHandler creates a new clipboard handler.
func NewHandler(n notifier, v *validator.Validate) *Handler {
	return &Handler{notifier: n, validator: v}
}

// ReceiveRequest represents the JSON body of a clipboard push. Timestamp is
// epoch milliseconds on the sender side.
type ReceiveRequest struct {
	Text      string `json:"text" validate:"required"`
	Timestamp int64  `json:"timestamp" validate:"required"`
}

// Receive handles POST /clipboard.
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

	zlog.Logger.Info().Int("length", len(req.Text)).Msg("clipboard content received")

	p := model.Payload{
		Kind: model.KindClipboard,
		Clipboard: &model.ClipboardPayload{
			Text:      req.Text,
			Timestamp: req.Timestamp,
		},
	}

	go func() {
		if err := h.notifier.Publish(p); err != nil {
			zlog.Logger.Error().Err(err).Msg("failed to show clipboard notification")
		}
	}()

	respond.OK(c.Writer, "clipboard received")
}

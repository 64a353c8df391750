package photo

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/wb-go/wbf/ginext"
	"github.com/wb-go/wbf/zlog"

	"github.com/duoduojuzi/fastsync-receiver/internal/api/respond"
	"github.com/duoduojuzi/fastsync-receiver/internal/model"
)

// multipartMemory caps how much of the form is held in memory while parsing;
// larger parts spill to disk. The request body cap is enforced upstream.
const multipartMemory = 32 << 20

// ErrMissingData is returned when the multipart form has no "data" field.
var ErrMissingData = errors.New("missing data field")

// notifier publishes an accepted payload as a notification. Publishing
// happens detached from the request, so the handler only hands the payload
// over.
type notifier interface {
	Publish(p model.Payload) error
}

// Handler handles photo upload requests.
type Handler struct {
	notifier notifier
}

// NewHandler creates a new photo upload handler.
func NewHandler(n notifier) *Handler {
	return &Handler{notifier: n}
}

// Upload handles POST /upload. It expects a multipart form with the image
// bytes in the "data" field; other fields are ignored. The response is sent
// as soon as decoding succeeds, notification work runs in the background.
func (h *Handler) Upload(c *ginext.Context) {
	data, err := imageField(c.Request)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			zlog.Logger.Warn().Err(err).Msg("upload body too large")
			respond.Fail(c.Writer, http.StatusRequestEntityTooLarge, fmt.Errorf("request body too large"))
			return
		}

		zlog.Logger.Warn().Err(err).Msg("failed to read image from upload")
		respond.Fail(c.Writer, http.StatusBadRequest, fmt.Errorf("missing data field"))
		return
	}

	zlog.Logger.Info().Int("size", len(data)).Msg("image received")

	p := model.Payload{
		Kind:  model.KindPhoto,
		Photo: &model.PhotoPayload{Data: data},
	}

	go func() {
		if err := h.notifier.Publish(p); err != nil {
			zlog.Logger.Error().Err(err).Msg("failed to show photo notification")
		}
	}()

	respond.OK(c.Writer, "photo received")
}

// imageField extracts the "data" field from the multipart form, whether it
// was sent as a file part or a plain value.
func imageField(r *http.Request) ([]byte, error) {
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		return nil, fmt.Errorf("parse multipart form: %w", err)
	}

	if headers := r.MultipartForm.File["data"]; len(headers) > 0 {
		file, err := headers[0].Open()
		if err != nil {
			return nil, fmt.Errorf("open data part: %w", err)
		}
		defer file.Close()

		data, err := io.ReadAll(file)
		if err != nil {
			return nil, fmt.Errorf("read data part: %w", err)
		}
		return data, nil
	}

	if values := r.MultipartForm.Value["data"]; len(values) > 0 {
		return []byte(values[0]), nil
	}

	return nil, ErrMissingData
}

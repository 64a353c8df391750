package router

import (
	"github.com/wb-go/wbf/ginext"

	"github.com/duoduojuzi/fastsync-receiver/internal/api/handlers/clipboard"
	"github.com/duoduojuzi/fastsync-receiver/internal/api/handlers/photo"
	"github.com/duoduojuzi/fastsync-receiver/internal/api/handlers/sms"
	"github.com/duoduojuzi/fastsync-receiver/internal/middlewares"
)

// New builds the ingestion gateway's route table. Routes are root-level so
// the companion app's fixed paths keep working.
func New(
	photoHandler *photo.Handler,
	smsHandler *sms.Handler,
	clipboardHandler *clipboard.Handler,
	maxBodyBytes int64,
) *ginext.Engine {
	e := ginext.New()
	e.Use(ginext.Logger())
	e.Use(ginext.Recovery())
	e.Use(middlewares.BodyLimit(maxBodyBytes))

	e.POST("/upload", photoHandler.Upload)
	e.POST("/sms", smsHandler.Receive)
	e.POST("/clipboard", clipboardHandler.Receive)

	return e
}

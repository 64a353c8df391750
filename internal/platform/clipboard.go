// Package platform wraps the OS-facing pieces the dispatcher and tray rely
// on: clipboard access and native dialogs.
package platform

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"

	"github.com/atotto/clipboard"
	"github.com/wb-go/wbf/zlog"
	xclip "golang.design/x/clipboard"
)

// ErrImageClipboardUnavailable is returned when the image clipboard backend
// failed to initialize at startup. Text writes keep working.
var ErrImageClipboardUnavailable = errors.New("image clipboard unavailable")

// SystemClipboard writes text and images to the system clipboard. Text goes
// through the portable text backend; images need the display-server backend,
// which may be unavailable on headless setups.
type SystemClipboard struct {
	imageReady bool
}

// NewSystemClipboard initializes the image backend. Initialization failure is
// downgraded to a warning because the daemon is still useful for text-only
// actions.
func NewSystemClipboard() *SystemClipboard {
	c := &SystemClipboard{}

	if err := xclip.Init(); err != nil {
		zlog.Logger.Warn().Err(err).Msg("image clipboard backend unavailable")
		return c
	}

	c.imageReady = true
	return c
}

// WriteText puts text on the clipboard verbatim.
func (c *SystemClipboard) WriteText(text string) error {
	if err := clipboard.WriteAll(text); err != nil {
		return fmt.Errorf("write clipboard text: %w", err)
	}
	return nil
}

// WriteImage puts decoded pixels on the clipboard as an image.
func (c *SystemClipboard) WriteImage(img *image.RGBA) error {
	if !c.imageReady {
		return ErrImageClipboardUnavailable
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return fmt.Errorf("encode clipboard image: %w", err)
	}

	xclip.Write(xclip.FmtImage, buf.Bytes())
	return nil
}

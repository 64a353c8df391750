package notify

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/wb-go/wbf/zlog"

	"github.com/duoduojuzi/fastsync-receiver/internal/model"
)

// Manager turns accepted payloads into visible notifications and keeps the
// live entries registered so a later activation can still reach the origin
// payload.
type Manager struct {
	surface  Surface
	registry *Registry
	tempDir  string
}

// NewManager creates a manager posting to surface and retaining entries in
// registry.
func NewManager(surface Surface, registry *Registry) *Manager {
	return &Manager{
		surface:  surface,
		registry: registry,
		tempDir:  os.TempDir(),
	}
}

// Publish renders the payload and posts it, replacing any prior notification
// with the same tag. It is called from detached goroutines after the HTTP
// response has been sent; failures are the caller's to log, never to surface
// to the sender.
func (m *Manager) Publish(p model.Payload) error {
	d, err := BuildDescriptor(p)
	if err != nil {
		return fmt.Errorf("build descriptor: %w", err)
	}

	// The surface renders images by file path, so the photo has to be on
	// disk before the notification is posted.
	if p.Kind == model.KindPhoto {
		path, err := m.saveTempImage(p.Photo.Data)
		if err != nil {
			return fmt.Errorf("save temp image: %w", err)
		}
		d.ImagePath = path
	}

	replaces := m.registry.HandleFor(d.Tag)

	handle, err := m.surface.Post(d, replaces)
	if err != nil {
		return fmt.Errorf("post notification: %w", err)
	}

	m.registry.Insert(d.Tag, handle, p)

	zlog.Logger.Info().
		Str("id", d.ID.String()).
		Str("tag", d.Tag).
		Uint32("handle", uint32(handle)).
		Msg("notification posted")

	return nil
}

// saveTempImage flushes image bytes to a uniquely named file in the temp
// directory. The millisecond timestamp keeps consecutive photos from
// colliding; the previous file is left for the OS to clean up.
func (m *Manager) saveTempImage(data []byte) (string, error) {
	name := fmt.Sprintf("fastsync_%d.png", time.Now().UnixMilli())
	path := filepath.Join(m.tempDir, name)

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}

	return path, nil
}

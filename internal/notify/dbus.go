package notify

import (
	"context"
	"fmt"

	"github.com/godbus/dbus/v5"
	"github.com/wb-go/wbf/zlog"
)

const (
	notifDest   = "org.freedesktop.Notifications"
	notifPath   = dbus.ObjectPath("/org/freedesktop/Notifications")
	notifMethod = "org.freedesktop.Notifications.Notify"
	notifSignal = "org.freedesktop.Notifications.ActionInvoked"
)

// DBusSurface posts notifications over the org.freedesktop.Notifications
// desktop bus interface and listens for action activations.
type DBusSurface struct {
	conn         *dbus.Conn
	appName      string
	desktopEntry string
}

// NewDBusSurface connects to the session bus and subscribes to action
// signals. desktopEntry names the .desktop file used by the surface to
// attribute notifications to the application.
func NewDBusSurface(appName, desktopEntry string) (*DBusSurface, error) {
	conn, err := dbus.SessionBus()
	if err != nil {
		return nil, fmt.Errorf("connect session bus: %w", err)
	}

	err = conn.AddMatchSignal(
		dbus.WithMatchObjectPath(notifPath),
		dbus.WithMatchInterface(notifDest),
		dbus.WithMatchMember("ActionInvoked"),
	)
	if err != nil {
		return nil, fmt.Errorf("subscribe to action signals: %w", err)
	}

	return &DBusSurface{
		conn:         conn,
		appName:      appName,
		desktopEntry: desktopEntry,
	}, nil
}

// Post sends the descriptor to the notification server. The descriptor's TTL
// becomes the server-side expiry; a non-zero replaces handle reuses the
// visible slot of the prior notification with the same tag.
func (s *DBusSurface) Post(d Descriptor, replaces Handle) (Handle, error) {
	actions := make([]string, 0, len(d.Actions)*2)
	for _, a := range d.Actions {
		actions = append(actions, a.ID, a.Label)
	}

	hints := map[string]dbus.Variant{
		"desktop-entry": dbus.MakeVariant(s.desktopEntry),
	}
	if d.ImagePath != "" {
		hints["image-path"] = dbus.MakeVariant(d.ImagePath)
	}

	expireMillis := int32(d.TTL.Milliseconds())

	obj := s.conn.Object(notifDest, notifPath)
	call := obj.Call(notifMethod, 0,
		s.appName,
		uint32(replaces),
		"", // app icon comes from the desktop entry
		d.Summary,
		d.Body,
		actions,
		hints,
		expireMillis,
	)
	if call.Err != nil {
		return 0, fmt.Errorf("notify call: %w", call.Err)
	}

	var id uint32
	if err := call.Store(&id); err != nil {
		return 0, fmt.Errorf("read notification id: %w", err)
	}

	return Handle(id), nil
}

// Listen reads ActionInvoked signals and packages each into an Activation on
// out. It does no other work on the signal path; anything that may block
// belongs to the dispatch workers consuming out.
func (s *DBusSurface) Listen(ctx context.Context, out chan<- Activation) {
	signals := make(chan *dbus.Signal, 32)
	s.conn.Signal(signals)

	for {
		select {
		case <-ctx.Done():
			s.conn.RemoveSignal(signals)
			return
		case sig, ok := <-signals:
			if !ok {
				return
			}
			if sig.Name != notifSignal || len(sig.Body) < 2 {
				continue
			}

			id, idOK := sig.Body[0].(uint32)
			actionID, actionOK := sig.Body[1].(string)
			if !idOK || !actionOK {
				zlog.Logger.Warn().Msgf("malformed action signal: %v", sig.Body)
				continue
			}

			select {
			case out <- Activation{Handle: Handle(id), ActionID: actionID}:
			case <-ctx.Done():
				s.conn.RemoveSignal(signals)
				return
			}
		}
	}
}

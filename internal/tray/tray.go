// Package tray runs the system tray presentation. Run blocks the calling
// goroutine for the daemon's lifetime; the tray event loop must own the main
// thread.
package tray

import (
	_ "embed"
	"fmt"

	"fyne.io/systray"
	"github.com/wb-go/wbf/zlog"

	"github.com/duoduojuzi/fastsync-receiver/internal/platform"
)

//go:embed icon.png
var iconPNG []byte

// Run starts the tray event loop and blocks until Quit is called. statusIP
// supplies the currently selected local address for the status dialog; onExit
// runs when the loop stops.
func Run(statusIP func() string, onExit func()) {
	systray.Run(func() {
		systray.SetIcon(iconPNG)
		systray.SetTitle("FastSync")
		systray.SetTooltip("FastSync Server")

		statusItem := systray.AddMenuItem("Status", "Show the receiver address")
		systray.AddSeparator()
		quitItem := systray.AddMenuItem("Quit", "Stop the receiver")

		go func() {
			for {
				select {
				case <-statusItem.ClickedCh:
					ip := statusIP()
					zlog.Logger.Info().Str("ip", ip).Msg("status requested")

					// The dialog blocks; keep the click loop responsive.
					go platform.ShowInfo("FastSync Info", fmt.Sprintf("FastSync running - IP: %s", ip))
				case <-quitItem.ClickedCh:
					systray.Quit()
					return
				}
			}
		}()
	}, onExit)
}

// Quit stops the tray event loop, unblocking Run.
func Quit() {
	systray.Quit()
}

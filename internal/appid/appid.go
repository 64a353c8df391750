// Package appid registers the application identity the notification surface
// uses to attribute notifications.
package appid

import (
	"fmt"
	"os"
	"path/filepath"
)

// AppID is the application identity string.
const AppID = "com.duoduojuzi.fastsync"

// DesktopEntry is the desktop file name (without extension) referenced by
// the notification surface's desktop-entry hint. Desktop files are named
// after the application identity, so the two match.
const DesktopEntry = AppID

// Register writes the application's desktop entry so notifications are
// attributed correctly. It is idempotent: an up-to-date entry is left
// untouched.
func Register() error {
	dir, err := applicationsDir()
	if err != nil {
		return err
	}

	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("resolve executable path: %w", err)
	}

	return register(dir, exe)
}

func register(dir, exe string) error {
	content := fmt.Sprintf(`[Desktop Entry]
Type=Application
Name=FastSync Receiver
Exec=%s
Terminal=false
NoDisplay=true
X-GNOME-UsesNotifications=true
`, exe)

	path := filepath.Join(dir, DesktopEntry+".desktop")

	if existing, err := os.ReadFile(path); err == nil && string(existing) == content {
		return nil
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create applications dir: %w", err)
	}

	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("write desktop entry: %w", err)
	}

	return nil
}

func applicationsDir() (string, error) {
	if dataHome := os.Getenv("XDG_DATA_HOME"); dataHome != "" {
		return filepath.Join(dataHome, "applications"), nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".local", "share", "applications"), nil
}

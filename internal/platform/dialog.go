package platform

import (
	"errors"
	"fmt"

	"github.com/ncruces/zenity"
)

// FileDialog prompts native save-file dialogs.
type FileDialog struct{}

// Save opens a save-file dialog defaulted to an image filter and filename.
// ok is false when the user cancelled.
func (FileDialog) Save(defaultName string) (string, bool, error) {
	path, err := zenity.SelectFileSave(
		zenity.Title("Save image"),
		zenity.Filename(defaultName),
		zenity.ConfirmOverwrite(),
		zenity.FileFilters{
			{Name: "Image", Patterns: []string{"*.png", "*.jpg", "*.jpeg"}, CaseFold: true},
		},
	)
	if errors.Is(err, zenity.ErrCanceled) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("save dialog: %w", err)
	}

	return path, true, nil
}

// ShowInfo blocks on an informational dialog.
func ShowInfo(title, text string) {
	_ = zenity.Info(text, zenity.Title(title), zenity.InfoIcon)
}

// ShowError blocks on an error dialog. Used for the top-level fatal handler,
// the one place a failure is surfaced synchronously to the user.
func ShowError(title, text string) {
	_ = zenity.Error(text, zenity.Title(title), zenity.ErrorIcon)
}

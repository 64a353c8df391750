package notify

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/duoduojuzi/fastsync-receiver/internal/model"
)

// Group is the notification group shared by all of the receiver's
// notifications. The surface uses tag+group to replace a visible notification
// instead of stacking a new one.
const Group = "FastSync"

// Notification tags, one per content class. Reusing a tag replaces the prior
// notification for that class.
const (
	TagPhoto     = "CurrentPhoto"
	TagSms       = "sms_sync"
	TagClipboard = "clipboard_sync"
)

// Time-to-live per content class. After expiry the surface auto-dismisses the
// notification without user action.
const (
	photoTTL     = 30 * time.Second
	smsTTL       = 60 * time.Second
	clipboardTTL = 30 * time.Second
)

// previewLimit is the maximum body preview length in characters, not bytes.
const previewLimit = 100

var (
	escaper   = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	unescaper = strings.NewReplacer("&amp;", "&", "&lt;", "<", "&gt;", ">")
)

// Action is one notification button: the label shown to the user and the
// identifier delivered back on activation.
type Action struct {
	Label string
	ID    string
}

// Descriptor is the rendered, time-bound representation of a Payload handed
// to the notification surface. The origin payload is retained so an action
// can later be dispatched against the original bytes.
type Descriptor struct {
	ID        uuid.UUID
	Tag       string
	Group     string
	Summary   string
	Body      string
	ImagePath string
	Actions   []Action
	TTL       time.Duration
	Payload   model.Payload
}

// Preview truncates text to the preview limit, appending an ellipsis marker
// when the text was cut. Counting is rune-based.
func Preview(text string) string {
	runes := []rune(text)
	if len(runes) <= previewLimit {
		return text
	}
	return string(runes[:previewLimit]) + "..."
}

// EscapeMarkup escapes characters that are unsafe inside the surface's body
// markup.
func EscapeMarkup(text string) string {
	return escaper.Replace(text)
}

// UnescapeMarkup reverses EscapeMarkup.
func UnescapeMarkup(text string) string {
	return unescaper.Replace(text)
}

// BuildDescriptor renders a payload into its notification descriptor. The
// action set is fixed per content class; the SMS "copy code" action is only
// offered when a verification code is present.
func BuildDescriptor(p model.Payload) (Descriptor, error) {
	d := Descriptor{
		ID:      uuid.New(),
		Group:   Group,
		Payload: p,
	}

	switch p.Kind {
	case model.KindPhoto:
		if p.Photo == nil {
			return Descriptor{}, fmt.Errorf("photo payload missing for kind %q", p.Kind)
		}
		d.Tag = TagPhoto
		d.Summary = "Photo received"
		d.TTL = photoTTL
		d.Actions = []Action{
			{Label: "Save", ID: model.ActionSave},
			{Label: "Copy", ID: model.ActionCopy},
			{Label: "Ignore", ID: model.ActionIgnore},
		}

	case model.KindSms:
		if p.Sms == nil {
			return Descriptor{}, fmt.Errorf("sms payload missing for kind %q", p.Kind)
		}
		d.Tag = TagSms
		d.Summary = "SMS from " + EscapeMarkup(p.Sms.Sender)
		d.Body = EscapeMarkup(Preview(p.Sms.Content))
		d.TTL = smsTTL
		d.Actions = []Action{
			{Label: "Copy text", ID: model.ActionCopyContent},
		}
		if p.Sms.Code != "" {
			d.Actions = append(d.Actions, Action{Label: "Copy code", ID: model.ActionCopyCode})
		}
		d.Actions = append(d.Actions, Action{Label: "Ignore", ID: model.ActionIgnore})

	case model.KindClipboard:
		if p.Clipboard == nil {
			return Descriptor{}, fmt.Errorf("clipboard payload missing for kind %q", p.Kind)
		}
		d.Tag = TagClipboard
		d.Summary = "Clipboard received"
		d.Body = EscapeMarkup(Preview(p.Clipboard.Text))
		d.TTL = clipboardTTL
		d.Actions = []Action{
			{Label: "Copy", ID: model.ActionCopyClipboard},
			{Label: "Ignore", ID: model.ActionIgnore},
		}

	default:
		return Descriptor{}, fmt.Errorf("unknown payload kind %q", p.Kind)
	}

	return d, nil
}

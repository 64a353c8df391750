package model

// Kind identifies which variant of a Payload is populated.
type Kind string

const (
	KindPhoto     Kind = "photo"
	KindSms       Kind = "sms"
	KindClipboard Kind = "clipboard"
)

// Action identifiers delivered back by the notification surface when the user
// picks a notification button.
const (
	ActionSave          = "save"
	ActionCopy          = "copy"
	ActionCopyContent   = "copy_content"
	ActionCopyCode      = "copy_code"
	ActionCopyClipboard = "copy_clipboard"
	ActionIgnore        = "ignore"
)

// PhotoPayload holds the raw image bytes pushed from the companion device.
// The bytes are kept undecoded; format sniffing happens only when the user
// asks for a clipboard copy.
type PhotoPayload struct {
	Data []byte
}

// SmsPayload holds a forwarded SMS. Code is the extracted verification code
// and may be empty.
type SmsPayload struct {
	Sender  string
	Content string
	Code    string
}

// ClipboardPayload holds clipboard text pushed from the companion device.
// Timestamp is epoch milliseconds on the sender side.
type ClipboardPayload struct {
	Text      string
	Timestamp int64
}

// Payload is a tagged union over the supported content kinds. Exactly one
// variant field is non-nil, matching Kind.
type Payload struct {
	Kind      Kind
	Photo     *PhotoPayload
	Sms       *SmsPayload
	Clipboard *ClipboardPayload
}

package dispatch

import (
	"context"
	"errors"
	"image"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wb-go/wbf/retry"

	"github.com/duoduojuzi/fastsync-receiver/internal/model"
	"github.com/duoduojuzi/fastsync-receiver/internal/notify"
)

type fakeClipboard struct {
	mu         sync.Mutex
	texts      []string
	images     []*image.RGBA
	textErr    error
	imageErr   error
	writeCalls int
}

func (c *fakeClipboard) WriteText(text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.writeCalls++
	if c.textErr != nil {
		return c.textErr
	}
	c.texts = append(c.texts, text)
	return nil
}

func (c *fakeClipboard) WriteImage(img *image.RGBA) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.writeCalls++
	if c.imageErr != nil {
		return c.imageErr
	}
	c.images = append(c.images, img)
	return nil
}

func (c *fakeClipboard) textCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.texts)
}

type fakeDialog struct {
	path string
	ok   bool
	err  error
}

func (d fakeDialog) Save(string) (string, bool, error) {
	return d.path, d.ok, d.err
}

func testStrategy() retry.Strategy {
	return retry.Strategy{Attempts: 1, Delay: time.Millisecond, Backoff: 1}
}

func setup(t *testing.T, clip *fakeClipboard, dialog fakeDialog, strategy retry.Strategy) (*Dispatcher, *notify.Registry) {
	t.Helper()
	registry := notify.NewRegistry()
	return New(registry, clip, dialog, strategy), registry
}

func TestDispatch_SavePhoto_WritesOriginalBytes(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "photo.png")
	clip := &fakeClipboard{}
	d, registry := setup(t, clip, fakeDialog{path: dest, ok: true}, testStrategy())

	data := []byte{0x01, 0x02, 0x03, 0xfe}
	registry.Insert(notify.TagPhoto, 1, model.Payload{
		Kind:  model.KindPhoto,
		Photo: &model.PhotoPayload{Data: data},
	})

	res := d.Dispatch(notify.Activation{Handle: 1, ActionID: model.ActionSave})
	require.Equal(t, OutcomeSaved, res.Outcome)
	assert.Equal(t, dest, res.Path)

	written, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, data, written, "save must be byte-identical, no transcoding")
}

func TestDispatch_SaveCancelled_IsNoOp(t *testing.T) {
	d, registry := setup(t, &fakeClipboard{}, fakeDialog{ok: false}, testStrategy())

	registry.Insert(notify.TagPhoto, 1, model.Payload{
		Kind:  model.KindPhoto,
		Photo: &model.PhotoPayload{Data: []byte{1}},
	})

	res := d.Dispatch(notify.Activation{Handle: 1, ActionID: model.ActionSave})
	assert.Equal(t, OutcomeIgnored, res.Outcome)
}

func TestDispatch_CopyPhoto_DecodesToClipboardImage(t *testing.T) {
	clip := &fakeClipboard{}
	d, registry := setup(t, clip, fakeDialog{}, testStrategy())

	registry.Insert(notify.TagPhoto, 1, model.Payload{
		Kind:  model.KindPhoto,
		Photo: &model.PhotoPayload{Data: encodeJPEG(t, testImage(6, 4))},
	})

	res := d.Dispatch(notify.Activation{Handle: 1, ActionID: model.ActionCopy})
	require.Equal(t, OutcomeCopied, res.Outcome)
	assert.Equal(t, "image", res.Kind)

	require.Len(t, clip.images, 1)
	img := clip.images[0]
	assert.Equal(t, 6, img.Bounds().Dx())
	assert.Equal(t, 4, img.Bounds().Dy())
	assert.Len(t, img.Pix, 6*4*4)
}

func TestDispatch_CopyPhoto_UndecodableFails(t *testing.T) {
	d, registry := setup(t, &fakeClipboard{}, fakeDialog{}, testStrategy())

	registry.Insert(notify.TagPhoto, 1, model.Payload{
		Kind:  model.KindPhoto,
		Photo: &model.PhotoPayload{Data: []byte("not an image")},
	})

	res := d.Dispatch(notify.Activation{Handle: 1, ActionID: model.ActionCopy})
	require.Equal(t, OutcomeFailed, res.Outcome)
	assert.ErrorIs(t, res.Err, ErrUndecodable)
}

func TestDispatch_CopyTextActions(t *testing.T) {
	tests := []struct {
		name     string
		payload  model.Payload
		actionID string
		want     string
	}{
		{
			name: "sms content",
			payload: model.Payload{
				Kind: model.KindSms,
				Sms:  &model.SmsPayload{Sender: "a", Content: "full text", Code: "1234"},
			},
			actionID: model.ActionCopyContent,
			want:     "full text",
		},
		{
			name: "sms code",
			payload: model.Payload{
				Kind: model.KindSms,
				Sms:  &model.SmsPayload{Sender: "a", Content: "full text", Code: "1234"},
			},
			actionID: model.ActionCopyCode,
			want:     "1234",
		},
		{
			name: "clipboard text verbatim",
			payload: model.Payload{
				Kind:      model.KindClipboard,
				Clipboard: &model.ClipboardPayload{Text: "a < b & c", Timestamp: 1},
			},
			actionID: model.ActionCopyClipboard,
			want:     "a < b & c",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clip := &fakeClipboard{}
			d, registry := setup(t, clip, fakeDialog{}, testStrategy())

			registry.Insert("tag", 1, tt.payload)

			res := d.Dispatch(notify.Activation{Handle: 1, ActionID: tt.actionID})
			require.Equal(t, OutcomeCopied, res.Outcome)
			assert.Equal(t, "text", res.Kind)
			require.Len(t, clip.texts, 1)
			assert.Equal(t, tt.want, clip.texts[0])
		})
	}
}

func TestDispatch_IgnoreAndUnknownActions(t *testing.T) {
	clip := &fakeClipboard{}
	d, registry := setup(t, clip, fakeDialog{}, testStrategy())

	registry.Insert(notify.TagSms, 1, model.Payload{
		Kind: model.KindSms,
		Sms:  &model.SmsPayload{Sender: "a", Content: "b"},
	})

	for _, actionID := range []string{model.ActionIgnore, "launch_missiles"} {
		res := d.Dispatch(notify.Activation{Handle: 1, ActionID: actionID})
		assert.Equal(t, OutcomeIgnored, res.Outcome, actionID)
	}
	assert.Zero(t, clip.writeCalls)
}

func TestDispatch_UnknownHandleFailsSilently(t *testing.T) {
	d, _ := setup(t, &fakeClipboard{}, fakeDialog{}, testStrategy())

	res := d.Dispatch(notify.Activation{Handle: 42, ActionID: model.ActionCopyContent})
	require.Equal(t, OutcomeFailed, res.Outcome)
	assert.ErrorIs(t, res.Err, ErrUnknownNotification)
}

func TestDispatch_PayloadMismatch(t *testing.T) {
	d, registry := setup(t, &fakeClipboard{}, fakeDialog{}, testStrategy())

	registry.Insert(notify.TagClipboard, 1, model.Payload{
		Kind:      model.KindClipboard,
		Clipboard: &model.ClipboardPayload{Text: "t", Timestamp: 1},
	})

	res := d.Dispatch(notify.Activation{Handle: 1, ActionID: model.ActionCopyCode})
	require.Equal(t, OutcomeFailed, res.Outcome)
	assert.ErrorIs(t, res.Err, ErrPayloadMismatch)
}

func TestDispatch_ClipboardWriteRetries(t *testing.T) {
	clip := &fakeClipboard{textErr: errors.New("clipboard busy")}
	strategy := retry.Strategy{Attempts: 3, Delay: time.Millisecond, Backoff: 1}
	d, registry := setup(t, clip, fakeDialog{}, strategy)

	registry.Insert(notify.TagClipboard, 1, model.Payload{
		Kind:      model.KindClipboard,
		Clipboard: &model.ClipboardPayload{Text: "t", Timestamp: 1},
	})

	res := d.Dispatch(notify.Activation{Handle: 1, ActionID: model.ActionCopyClipboard})
	assert.Equal(t, OutcomeFailed, res.Outcome)
	assert.Equal(t, 3, clip.writeCalls)
}

func TestRun_ConsumesActivations(t *testing.T) {
	clip := &fakeClipboard{}
	d, registry := setup(t, clip, fakeDialog{}, testStrategy())

	registry.Insert(notify.TagClipboard, 1, model.Payload{
		Kind:      model.KindClipboard,
		Clipboard: &model.ClipboardPayload{Text: "from worker", Timestamp: 1},
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events := make(chan notify.Activation, 1)
	go d.Run(ctx, events, 2)

	events <- notify.Activation{Handle: 1, ActionID: model.ActionCopyClipboard}

	require.Eventually(t, func() bool {
		return clip.textCount() == 1
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, "from worker", clip.texts[0])
}

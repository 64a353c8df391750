package dispatch

import (
	"context"
	"errors"
	"fmt"
	"image"
	"os"

	"github.com/wb-go/wbf/retry"
	"github.com/wb-go/wbf/zlog"

	"github.com/duoduojuzi/fastsync-receiver/internal/model"
	"github.com/duoduojuzi/fastsync-receiver/internal/notify"
)

// Dispatch outcomes. Results are logged, never persisted.
const (
	OutcomeSaved   = "saved"
	OutcomeCopied  = "copied"
	OutcomeIgnored = "ignored"
	OutcomeFailed  = "failed"
)

var (
	// ErrUnknownNotification means the activation arrived for a handle the
	// registry no longer knows; the dispatch fails silently.
	ErrUnknownNotification = errors.New("activation for unknown notification")

	// ErrPayloadMismatch means the action does not apply to the payload
	// variant retained for the notification.
	ErrPayloadMismatch = errors.New("action does not match payload kind")
)

// Result is the outcome of dispatching one activation.
type Result struct {
	Outcome string
	Path    string // destination, when saved
	Kind    string // clipboard content kind, when copied
	Err     error
}

// Clipboard writes dispatch effects to the system clipboard.
type Clipboard interface {
	WriteText(text string) error
	WriteImage(img *image.RGBA) error
}

// SaveDialog prompts the user for a destination path. ok is false when the
// user cancelled, which is a no-op rather than an error.
type SaveDialog interface {
	Save(defaultName string) (path string, ok bool, err error)
}

// activationRegistry resolves a live notification handle to its retained
// entry.
type activationRegistry interface {
	Resolve(h notify.Handle) (notify.Entry, bool)
}

// Dispatcher maps notification activations to local effects. All effects run
// on its worker goroutines, never on the goroutine delivering OS signals.
type Dispatcher struct {
	registry  activationRegistry
	clipboard Clipboard
	dialog    SaveDialog
	decoders  Chain
	strategy  retry.Strategy
}

// New creates a dispatcher with the default decode chain.
func New(registry activationRegistry, clipboard Clipboard, dialog SaveDialog, strategy retry.Strategy) *Dispatcher {
	return &Dispatcher{
		registry:  registry,
		clipboard: clipboard,
		dialog:    dialog,
		decoders:  DefaultChain(),
		strategy:  strategy,
	}
}

// Run consumes activations with workerCount goroutines until ctx is done.
func (d *Dispatcher) Run(ctx context.Context, events <-chan notify.Activation, workerCount int) {
	if workerCount < 1 {
		workerCount = 1
	}

	for i := 0; i < workerCount; i++ {
		go func(id int) {
			zlog.Logger.Printf("dispatch worker-%d started", id)

			for {
				select {
				case <-ctx.Done():
					zlog.Logger.Printf("dispatch worker-%d shutting down", id)
					return
				case ev := <-events:
					res := d.Dispatch(ev)
					logResult(ev, res)
				}
			}
		}(i)
	}

	<-ctx.Done()
	zlog.Logger.Print("dispatcher stopped")
}

func logResult(ev notify.Activation, res Result) {
	switch res.Outcome {
	case OutcomeFailed:
		zlog.Logger.Error().Err(res.Err).
			Str("action", ev.ActionID).
			Uint32("handle", uint32(ev.Handle)).
			Msg("dispatch failed")
	case OutcomeSaved:
		zlog.Logger.Info().Str("path", res.Path).Msg("file saved")
	case OutcomeCopied:
		zlog.Logger.Info().Str("kind", res.Kind).Msg("copied to clipboard")
	default:
		zlog.Logger.Debug().Str("action", ev.ActionID).Msg("activation ignored")
	}
}

// Dispatch performs the local effect for one activation.
func (d *Dispatcher) Dispatch(ev notify.Activation) Result {
	entry, ok := d.registry.Resolve(ev.Handle)
	if !ok {
		return Result{Outcome: OutcomeFailed, Err: ErrUnknownNotification}
	}

	switch ev.ActionID {
	case model.ActionSave:
		return d.savePhoto(entry.Payload)
	case model.ActionCopy:
		return d.copyPhoto(entry.Payload)
	case model.ActionCopyContent:
		if entry.Payload.Sms == nil {
			return failed(ErrPayloadMismatch)
		}
		return d.copyText(entry.Payload.Sms.Content)
	case model.ActionCopyCode:
		if entry.Payload.Sms == nil {
			return failed(ErrPayloadMismatch)
		}
		return d.copyText(entry.Payload.Sms.Code)
	case model.ActionCopyClipboard:
		if entry.Payload.Clipboard == nil {
			return failed(ErrPayloadMismatch)
		}
		return d.copyText(entry.Payload.Clipboard.Text)
	default:
		// Includes the explicit ignore action.
		return Result{Outcome: OutcomeIgnored}
	}
}

// savePhoto prompts for a destination and writes the original bytes
// unmodified; the image is never transcoded on save.
func (d *Dispatcher) savePhoto(p model.Payload) Result {
	if p.Photo == nil {
		return failed(ErrPayloadMismatch)
	}

	path, ok, err := d.dialog.Save("image.png")
	if err != nil {
		return failed(fmt.Errorf("save dialog: %w", err))
	}
	if !ok {
		return Result{Outcome: OutcomeIgnored}
	}

	if err := os.WriteFile(path, p.Photo.Data, 0o644); err != nil {
		return failed(fmt.Errorf("write %s: %w", path, err))
	}

	return Result{Outcome: OutcomeSaved, Path: path}
}

// copyPhoto decodes the photo through the chain and writes the pixels to the
// clipboard as an image.
func (d *Dispatcher) copyPhoto(p model.Payload) Result {
	if p.Photo == nil {
		return failed(ErrPayloadMismatch)
	}

	img, decoder, err := d.decoders.Decode(p.Photo.Data)
	if err != nil {
		return failed(err)
	}

	err = retry.Do(func() error { return d.clipboard.WriteImage(img) }, d.strategy)
	if err != nil {
		return failed(fmt.Errorf("clipboard image write: %w", err))
	}

	zlog.Logger.Info().Str("decoder", decoder).Msg("image decoded for clipboard")
	return Result{Outcome: OutcomeCopied, Kind: "image"}
}

func (d *Dispatcher) copyText(text string) Result {
	err := retry.Do(func() error { return d.clipboard.WriteText(text) }, d.strategy)
	if err != nil {
		return failed(fmt.Errorf("clipboard text write: %w", err))
	}
	return Result{Outcome: OutcomeCopied, Kind: "text"}
}

func failed(err error) Result {
	return Result{Outcome: OutcomeFailed, Err: err}
}

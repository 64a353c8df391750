package notify

import "errors"

// ErrSurfaceUnavailable is returned when no notification surface could be
// reached. Content is then accepted but not displayed.
var ErrSurfaceUnavailable = errors.New("notification surface unavailable")

// Activation is a user interaction packaged by the surface's signal listener
// and consumed by the dispatch workers.
type Activation struct {
	Handle   Handle
	ActionID string
}

// Surface posts descriptors to the OS notification surface. A non-zero
// replaces handle replaces the prior visible notification in-place.
type Surface interface {
	Post(d Descriptor, replaces Handle) (Handle, error)
}

// Discard is a Surface used when no real surface is reachable at startup.
// Posts fail with ErrSurfaceUnavailable; ingestion keeps working.
type Discard struct{}

func (Discard) Post(Descriptor, Handle) (Handle, error) {
	return 0, ErrSurfaceUnavailable
}

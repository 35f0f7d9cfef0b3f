package jump

import (
	"context"

	"tagnav/internal/buffer"
)

// View is an opened file whose content may still be loading. Ready is
// closed exactly once when the content is usable; an already-loaded
// view carries a closed channel.
type View struct {
	Source buffer.Source
	Ready  <-chan struct{}
}

// Opener opens files for navigation. Editor hosts provide asynchronous
// implementations; FileOpener reads straight from disk.
type Opener interface {
	Open(path string) (*View, error)
}

// FileOpener opens files synchronously from the filesystem.
type FileOpener struct{}

func (FileOpener) Open(path string) (*View, error) {
	src, err := buffer.Open(path)
	if err != nil {
		return nil, err
	}

	ready := make(chan struct{})
	close(ready)
	return &View{Source: src, Ready: ready}, nil
}

// WhenReady runs fn exactly once, as soon as the view has loaded. A
// loaded view runs fn synchronously; otherwise the continuation fires
// from a goroutine when Ready closes, or never if ctx is canceled
// first. Completion is the only trigger, so the continuation cannot
// fire again on later loads.
func WhenReady(ctx context.Context, v *View, fn func(buffer.Source)) {
	select {
	case <-v.Ready:
		fn(v.Source)
		return
	default:
	}

	go func() {
		select {
		case <-v.Ready:
			fn(v.Source)
		case <-ctx.Done():
		}
	}()
}

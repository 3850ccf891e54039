package graphics

import "context"

// HeadlessBackend is a no-op Backend used by tests and CI: it pulls
// frames from the source once so callers exercise the same path a real
// window would, then returns as soon as its context is canceled.
type HeadlessBackend struct {
	ctx    context.Context
	cancel context.CancelFunc
}

// NewHeadlessBackend creates a headless backend.
func NewHeadlessBackend() *HeadlessBackend {
	ctx, cancel := context.WithCancel(context.Background())
	return &HeadlessBackend{ctx: ctx, cancel: cancel}
}

// Run pulls one frame from source to confirm the pipeline is wired, then
// blocks until Close is called.
func (b *HeadlessBackend) Run(source FrameSource, sink InputSink) error {
	if source != nil {
		_ = source()
	}
	if sink != nil {
		sink(0)
	}
	<-b.ctx.Done()
	return nil
}

// Close unblocks Run.
func (b *HeadlessBackend) Close() error {
	b.cancel()
	return nil
}

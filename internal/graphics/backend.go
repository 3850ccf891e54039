// Package graphics abstracts the host presentation layer: blitting a
// rendered NES frame to a window and reading back a live gamepad byte.
package graphics

import "gones/internal/ppu"

// FrameSource supplies the most recently rendered frame, called once per
// host redraw. Implementations must be safe to call concurrently with
// the emulation goroutines writing the underlying buffer.
type FrameSource func() *[ppu.ScreenWidth * ppu.ScreenHeight]uint32

// InputSink receives the live gamepad state byte once per host update,
// in Button bit order (A, B, Select, Start, Up, Down, Left, Right).
type InputSink func(state uint8)

// Backend drives a single display/input surface for the emulator. Run
// blocks for the lifetime of the window (ebiten requires this to happen
// on the main OS thread), pulling frames from source and pushing polled
// input to sink; it returns when the host window is closed.
type Backend interface {
	Run(source FrameSource, sink InputSink) error
	Close() error
}

// Config configures backend construction.
type Config struct {
	WindowTitle string
	Scale       int
	Headless    bool
}

// Button indexes into the gamepad state byte a Backend reports, matching
// internal/input.Button's bit order.
type Button uint8

const (
	ButtonA Button = iota
	ButtonB
	ButtonSelect
	ButtonStart
	ButtonUp
	ButtonDown
	ButtonLeft
	ButtonRight
)

// NewBackend constructs the ebiten-backed GUI backend, or the headless
// no-op backend when cfg.Headless is set (used by tests and CI).
func NewBackend(cfg Config) (Backend, error) {
	if cfg.Headless {
		return NewHeadlessBackend(), nil
	}
	return NewEbitengineBackend(cfg)
}

// Package console orchestrates a running emulator: the CPU and PPU
// goroutines, their pacing, clean shutdown, and the three-file state dump
// taken on both a fatal error and a cancellation signal.
package console

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/golang/glog"

	"gones/internal/bus"
	"gones/internal/cartridge"
	"gones/internal/cpu"
	"gones/internal/ppu"
)

// instructionPause is the per-instruction throttle floor. The source this
// emulator follows uses a 10ns nanosleep as a crude ~1MHz approximation;
// Go's scheduler can't usefully sleep that short, so this is the smallest
// increment that reliably yields without pegging a core.
const instructionPause = time.Microsecond

// frameInterval approximates the NES's ~59.94Hz refresh.
const frameInterval = time.Second / 60

// Console runs a loaded cartridge: one goroutine stepping the CPU, one
// rendering PPU frames, both observing a shared stop flag.
type Console struct {
	CPU *cpu.CPU
	Bus *bus.Bus

	stopped atomic.Bool
	fatal   atomic.Value // error
}

// New builds a console around a parsed cartridge.
func New(cart *cartridge.Cartridge) *Console {
	b := bus.New(cart)
	c := cpu.New(bus.CPUView{Bus: b})
	return &Console{CPU: c, Bus: b}
}

// Reset runs the CPU's power-up sequence, loading PC from the reset
// vector. It does not clear the stop flag or a recorded fatal error.
func (con *Console) Reset() {
	con.CPU.Reset()
}

// Run starts the CPU and PPU loops and blocks until ctx is canceled, a
// fatal error occurs, or Stop is called. It returns the fatal error, if
// any; a cancellation or explicit Stop returns nil.
func (con *Console) Run(ctx context.Context) error {
	done := make(chan struct{})
	go con.runPPU(ctx)
	go con.runCPU(ctx, done)

	select {
	case <-ctx.Done():
	case <-done:
	}
	con.stopped.Store(true)

	if v := con.fatal.Load(); v != nil {
		return v.(error)
	}
	return nil
}

// Stop asks both loops to exit at their next loop head.
func (con *Console) Stop() {
	con.stopped.Store(true)
}

// Frame returns the PPU's most recently rendered frame, for a host
// frontend's redraw callback.
func (con *Console) Frame() *[ppu.ScreenWidth * ppu.ScreenHeight]uint32 {
	return con.Bus.PPU.Frame()
}

// SetGamepadState updates the live controller state byte from a host
// frontend's input poll.
func (con *Console) SetGamepadState(state uint8) {
	con.Bus.Controller.SetState(state)
}

func (con *Console) runCPU(ctx context.Context, done chan<- struct{}) {
	defer close(done)
	ticker := time.NewTicker(instructionPause)
	defer ticker.Stop()

	for {
		if con.stopped.Load() {
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		if con.Bus.TakeNMI() {
			con.CPU.RaiseNMI()
		}
		if err := con.CPU.Step(); err != nil {
			glog.Errorf("console: fatal CPU error: %v", err)
			con.fatal.Store(err)
			con.stopped.Store(true)
			return
		}
	}
}

func (con *Console) runPPU(ctx context.Context) {
	ticker := time.NewTicker(frameInterval)
	defer ticker.Stop()

	for {
		if con.stopped.Load() {
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		con.Bus.RenderFrame()
	}
}

// DumpState writes core.dump, oam.dump and ppu.dump to dir, matching the
// persisted-state layout spec'd for both the fatal and signal-driven
// shutdown paths.
func (con *Console) DumpState(dir string) error {
	core, oam, ppuMem := con.Bus.Snapshot()

	writes := []struct {
		name string
		data []byte
	}{
		{"core.dump", core[:]},
		{"oam.dump", oam[:]},
		{"ppu.dump", ppuMem[:]},
	}

	for _, w := range writes {
		path := filepath.Join(dir, w.name)
		if err := os.WriteFile(path, w.data, 0o644); err != nil {
			return fmt.Errorf("console: writing %s: %w", w.name, err)
		}
	}
	glog.Infof("console: wrote core.dump, oam.dump, ppu.dump to %s", dir)
	return nil
}

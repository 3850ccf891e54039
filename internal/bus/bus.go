// Package bus wires the CPU, PPU, APU, controller and cartridge into the
// two address spaces a running console needs, and guards the state the
// CPU and PPU goroutines share behind a single mutex.
package bus

import (
	"sync"

	"gones/internal/apu"
	"gones/internal/cartridge"
	"gones/internal/input"
	"gones/internal/memory"
	"gones/internal/ppu"
)

// Bus owns every piece of state the CPU and PPU goroutines touch. ReadCPU
// and WriteCPU take mu for a single access, and RenderFrame holds it for
// a whole frame; DMA and the PPU's NMI callback run inside those calls,
// under the lock already held. This gives the orderings spec'd for this
// emulator: a CPU store to a PPU register is visible to the next frame
// render, and an NMI raise is observable before the CPU's next instruction.
type Bus struct {
	mu sync.Mutex

	cpuBus *memory.CPUBus
	ppuBus *memory.PPUBus

	PPU        *ppu.PPU
	APU        *apu.APU
	Controller *input.Controller

	cart *cartridge.Cartridge

	nmiPending bool
}

// New builds a bus around a loaded cartridge. An NMI raised by the PPU is
// latched on the bus; the console collects it with TakeNMI and passes it
// on to the CPU's RaiseNMI.
func New(cart *cartridge.Cartridge) *Bus {
	b := &Bus{
		APU:        apu.New(),
		Controller: input.New(),
		cart:       cart,
	}
	b.ppuBus = memory.NewPPUBus(&cart.CHR)
	b.PPU = ppu.New(b.ppuBus, b.signalNMI)
	b.cpuBus = memory.NewCPUBus(b.PPU, b.APU, b.Controller, b, &cart.PRG)
	return b
}

// signalNMI is the PPU's NMI callback. The PPU calls it from inside
// RenderFrame, which already holds mu, so it must not lock again.
func (b *Bus) signalNMI() {
	b.nmiPending = true
}

// TakeNMI reports whether the PPU has raised NMI since the last call, and
// clears the flag. The console calls this once per CPU instruction.
func (b *Bus) TakeNMI() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	pending := b.nmiPending
	b.nmiPending = false
	return pending
}

// CPUView adapts a Bus to the cpu.Bus interface (plain Read/Write), so a
// console can hand it to cpu.New without the cpu package importing bus.
type CPUView struct{ *Bus }

func (v CPUView) Read(address uint16) uint8        { return v.Bus.ReadCPU(address) }
func (v CPUView) Write(address uint16, value uint8) { v.Bus.WriteCPU(address, value) }

// ReadCPU reads a byte from the CPU's address space.
func (b *Bus) ReadCPU(address uint16) uint8 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.cpuBus.Read(address)
}

// WriteCPU writes a byte to the CPU's address space.
func (b *Bus) WriteCPU(address uint16, value uint8) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.cpuBus.Write(address, value)
}

// DMA implements memory.DMASink: it is called by the CPU bus on a $4014
// write with the 256-byte RAM page to copy into OAM.
func (b *Bus) DMA(page [256]byte) {
	b.PPU.DMA(page)
}

// RenderFrame renders one full frame under the lock, so a CPU write that
// races with it is serialized rather than torn.
func (b *Bus) RenderFrame() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.PPU.RenderFrame()
}

// ResetVector reads the CPU reset vector at $FFFC/$FFFD from the
// cartridge PRG window.
func (b *Bus) ResetVector() uint16 {
	b.mu.Lock()
	defer b.mu.Unlock()
	lo := b.cpuBus.Read(0xFFFC)
	hi := b.cpuBus.Read(0xFFFD)
	return uint16(lo) | uint16(hi)<<8
}

// Snapshot captures the three dump artifacts spec'd for this emulator:
// 64KB of CPU-visible memory, the 256-byte OAM, and 64KB of PPU-visible
// memory. PPU/APU register ranges in the CPU dump are zero-filled rather
// than read through the register dispatch, since reading those registers
// has side effects (clearing VBlank, advancing the controller shift
// register) that a snapshot must not trigger.
func (b *Bus) Snapshot() (core [0x10000]byte, oam [256]byte, ppuMem [0x10000]byte) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i := 0; i < 0x2000; i++ {
		core[i] = b.cpuBus.Read(uint16(i & 0x07FF))
	}
	for i := 0x8000; i <= 0xFFFF; i++ {
		core[i] = b.cpuBus.Read(uint16(i))
	}

	oam = b.PPU.OAM()

	for i := 0; i < 0x4000; i++ {
		ppuMem[i] = b.ppuBus.Read(uint16(i))
	}

	return core, oam, ppuMem
}

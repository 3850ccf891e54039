// Package memory implements the NES CPU and PPU address buses: address
// decoding, RAM mirroring, register dispatch, and the PPU's flat VRAM/
// pattern-table/palette space.
package memory

import (
	"github.com/golang/glog"
)

// PPURegisters is the subset of the PPU the CPU bus dispatches register
// reads and writes to.
type PPURegisters interface {
	ReadRegister(address uint16) uint8
	WriteRegister(address uint16, value uint8)
}

// Controller is the subset of the input latch the CPU bus exposes at $4016.
type Controller interface {
	Read() uint8
	Write(value uint8)
}

// DMASource supplies the 256-byte page copied into OAM by a $4014 write.
type DMASource interface {
	ReadPage(page uint8) [256]byte
}

// DMASink receives the page copied out during a $4014 write.
type DMASink interface {
	DMA(page [256]byte)
}

// APU is the subset of the audio unit the CPU bus dispatches $4000-$4013,
// $4015 and $4017 to.
type APU interface {
	Read(address uint16) uint8
	Write(address uint16, value uint8)
}

// CPUBus is the CPU-visible address space: 2KB internal RAM mirrored to
// $1FFF, PPU registers mirrored every 8 bytes across $2000-$3FFF, APU/IO
// at $4000-$4017 ($4014 triggers OAM DMA, $4016 drives the controller
// latch, the rest is dispatched to the APU stub), and cartridge PRG-ROM
// at $8000-$FFFF.
type CPUBus struct {
	ram        [0x0800]uint8
	ppu        PPURegisters
	apu        APU
	controller Controller
	dmaSink    DMASink
	prg        *[0x8000]byte

	warnedAddr map[uint16]bool
}

// NewCPUBus creates a CPU bus wired to the given PPU, APU, controller and
// cartridge PRG image.
func NewCPUBus(ppu PPURegisters, apu APU, controller Controller, dmaSink DMASink, prg *[0x8000]byte) *CPUBus {
	return &CPUBus{
		ppu:        ppu,
		apu:        apu,
		controller: controller,
		dmaSink:    dmaSink,
		prg:        prg,
		warnedAddr: make(map[uint16]bool),
	}
}

func (b *CPUBus) warnOnce(address uint16, format string, args ...interface{}) {
	if b.warnedAddr[address] {
		return
	}
	b.warnedAddr[address] = true
	glog.Warningf(format, args...)
}

// Read returns the byte visible at address on the CPU bus.
func (b *CPUBus) Read(address uint16) uint8 {
	switch {
	case address < 0x2000:
		return b.ram[address&0x07FF]
	case address < 0x4000:
		return b.ppu.ReadRegister(0x2000 + address&0x0007)
	case address == 0x4016:
		return b.controller.Read()
	case address < 0x4018:
		return b.apu.Read(address)
	case address < 0x8000:
		b.warnOnce(address, "bus: read from unmapped address $%04X, returning 0", address)
		return 0
	default:
		return b.prg[address-0x8000]
	}
}

// Write stores value at address on the CPU bus. A $4014 write triggers
// OAM DMA: 256 bytes starting at (value<<8) are copied from RAM into OAM.
func (b *CPUBus) Write(address uint16, value uint8) {
	switch {
	case address < 0x2000:
		b.ram[address&0x07FF] = value
	case address < 0x4000:
		b.ppu.WriteRegister(0x2000+address&0x0007, value)
	case address == 0x4014:
		var page [256]byte
		base := uint16(value) << 8
		for i := 0; i < 256; i++ {
			page[i] = b.ram[(base+uint16(i))&0x07FF]
		}
		b.dmaSink.DMA(page)
	case address == 0x4016:
		b.controller.Write(value)
	case address < 0x4018:
		b.apu.Write(address, value)
	case address < 0x8000:
		b.warnOnce(address, "bus: write to unmapped address $%04X ignored", address)
	default:
		b.warnOnce(address, "bus: write to cartridge PRG-ROM at $%04X ignored", address)
	}
}

// ReadPage exposes a raw 256-byte RAM page: the same block a $4014 write
// copies into OAM.
func (b *CPUBus) ReadPage(page uint8) [256]byte {
	var out [256]byte
	base := uint16(page) << 8
	for i := 0; i < 256; i++ {
		out[i] = b.ram[(base+uint16(i))&0x07FF]
	}
	return out
}

// PPUBus is the PPU-visible address space: pattern tables backed by
// cartridge CHR at $0000-$1FFF, two 1KiB nametables horizontally mirrored
// across $2000-$2FFF (the only mirroring mode this emulator renders with),
// a $3000-$3EFF mirror of the nametables, and 32 bytes of palette RAM at
// $3F00-$3F1F with $3F10/$3F14/$3F18/$3F1C aliased onto
// $3F00/$3F04/$3F08/$3F0C.
type PPUBus struct {
	chr        *[0x2000]byte
	nametables [0x0800]uint8
	palette    [32]uint8

	warnedAddr map[uint16]bool
}

// NewPPUBus creates a PPU bus backed by the given cartridge CHR image.
func NewPPUBus(chr *[0x2000]byte) *PPUBus {
	return &PPUBus{chr: chr, warnedAddr: make(map[uint16]bool)}
}

func (b *PPUBus) warnOnce(address uint16, format string, args ...interface{}) {
	if b.warnedAddr[address] {
		return
	}
	b.warnedAddr[address] = true
	glog.Warningf(format, args...)
}

// nametableIndex folds a $2000-$2FFF address into the 2KB physical
// nametable RAM using horizontal mirroring: the two physical tables are
// selected by the low bit of the logical table index, so table 0 and
// table 2 share one physical bank and table 1 and table 3 share the
// other ($2800 aliases $2000, $2C00 aliases $2400).
func nametableIndex(address uint16) uint16 {
	offset := (address - 0x2000) % 0x1000
	table := offset / 0x0400
	inTable := offset % 0x0400
	physical := table % 2
	return physical*0x0400 + inTable
}

func palettIndex(address uint16) uint16 {
	idx := (address - 0x3F00) % 0x20
	switch idx {
	case 0x10, 0x14, 0x18, 0x1C:
		idx -= 0x10
	}
	return idx
}

// Read returns the byte visible at address on the PPU bus.
func (b *PPUBus) Read(address uint16) uint8 {
	address &= 0x3FFF
	switch {
	case address < 0x2000:
		return b.chr[address]
	case address < 0x3F00:
		return b.nametables[nametableIndex(address)]
	default:
		return b.palette[palettIndex(address)]
	}
}

// Write stores value at address on the PPU bus. Writes into the pattern
// table range are accepted (CHR-RAM behavior) even when the cartridge
// shipped no CHR data, matching how this emulator treats CHR-less images.
func (b *PPUBus) Write(address uint16, value uint8) {
	address &= 0x3FFF
	switch {
	case address < 0x2000:
		b.chr[address] = value
	case address < 0x3F00:
		b.nametables[nametableIndex(address)] = value
	default:
		b.palette[palettIndex(address)] = value
	}
}

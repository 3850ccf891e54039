// Package ppu implements the Ricoh 2C02 Picture Processing Unit: the
// register surface the CPU sees at $2000-$2007/$4014, OAM, palette RAM, and
// the scanline renderer that composes background and sprites into a frame.
//
// This is a scanline-at-a-time renderer, not a cycle-accurate one: a whole
// frame is produced at once from the register/OAM/VRAM state as it stands
// when the frame is rendered. Timing inside a scanline is not modeled.
package ppu

import (
	"github.com/golang/glog"

	"gones/internal/memory"
)

const (
	ScreenWidth  = 256
	ScreenHeight = 240

	ctrlNametableMask = 0x03
	ctrlIncrement     = 1 << 2
	ctrlSpritePattern = 1 << 3
	ctrlBGPattern     = 1 << 4
	ctrlSpriteSize    = 1 << 5
	ctrlNMIEnable     = 1 << 7

	maskShowBackground = 1 << 3
	maskShowSprites    = 1 << 4

	statusSpriteOverflow = 1 << 5
	statusSprite0Hit     = 1 << 6
	statusVBlank         = 1 << 7

	maxSpritesPerLine = 8
)

// Palette is the fixed 64-entry NES master palette, RGB triples, in the
// same order as the 2C02's internal color indices.
var Palette = [64][3]byte{
	{0x75, 0x75, 0x75}, {0x27, 0x1B, 0x8F}, {0x00, 0x00, 0xAB}, {0x47, 0x00, 0x9F},
	{0x8F, 0x00, 0x77}, {0xAB, 0x00, 0x13}, {0xA7, 0x00, 0x00}, {0x7F, 0x0B, 0x00},
	{0x43, 0x2F, 0x00}, {0x00, 0x47, 0x00}, {0x00, 0x51, 0x00}, {0x00, 0x3F, 0x17},
	{0x1B, 0x3F, 0x5F}, {0x00, 0x00, 0x00}, {0x00, 0x00, 0x00}, {0x00, 0x00, 0x00},
	{0xBC, 0xBC, 0xBC}, {0x00, 0x73, 0xEF}, {0x23, 0x3B, 0xEF}, {0x83, 0x00, 0xF3},
	{0xBF, 0x00, 0xBF}, {0xE7, 0x00, 0x5B}, {0xDB, 0x2B, 0x00}, {0xCB, 0x4F, 0x0F},
	{0x8B, 0x73, 0x00}, {0x00, 0x97, 0x00}, {0x00, 0xAB, 0x00}, {0x00, 0x93, 0x3B},
	{0x00, 0x83, 0x8B}, {0x00, 0x00, 0x00}, {0x00, 0x00, 0x00}, {0x00, 0x00, 0x00},
	{0xFF, 0xFF, 0xFF}, {0x3F, 0xBF, 0xFF}, {0x5F, 0x97, 0xFF}, {0xA7, 0x8B, 0xFD},
	{0xF7, 0x7B, 0xFF}, {0xFF, 0x77, 0xB7}, {0xFF, 0x77, 0x63}, {0xFF, 0x9B, 0x3B},
	{0xF3, 0xBF, 0x3F}, {0x83, 0xD3, 0x13}, {0x4F, 0xDF, 0x4B}, {0x58, 0xF8, 0x98},
	{0x00, 0xEB, 0xDB}, {0x00, 0x00, 0x00}, {0x00, 0x00, 0x00}, {0x00, 0x00, 0x00},
	{0xFF, 0xFF, 0xFF}, {0xAB, 0xE7, 0xFF}, {0xC7, 0xD7, 0xFF}, {0xD7, 0xCB, 0xFF},
	{0xFF, 0xC7, 0xFF}, {0xFF, 0xC7, 0xDB}, {0xFF, 0xBF, 0xB3}, {0xFF, 0xDB, 0xAB},
	{0xFF, 0xE7, 0xA3}, {0xE3, 0xFF, 0xA3}, {0xAB, 0xF3, 0xBF}, {0xB3, 0xFF, 0xCF},
	{0x9F, 0xFF, 0xF3}, {0x00, 0x00, 0x00}, {0x00, 0x00, 0x00}, {0x00, 0x00, 0x00},
}

// sprite is one decoded 4-byte OAM entry.
type sprite struct {
	y, tile, attr, x uint8
	oamIndex         int
}

func (s sprite) palette() uint8    { return s.attr & 0x03 }
func (s sprite) priority() bool    { return s.attr&0x20 != 0 }
func (s sprite) flipX() bool       { return s.attr&0x40 != 0 }
func (s sprite) flipY() bool       { return s.attr&0x80 != 0 }

// PPU is the NES picture processing unit.
type PPU struct {
	control1 uint8 // $2000
	control2 uint8 // $2001
	status   uint8 // $2002 (only bits 5-7 are meaningful)

	addr      uint16 // current VRAM address, shared by $2006/$2007
	addrHigh  bool   // write toggle shared by $2005/$2006: false means the next $2006 write latches the high byte (or $2005 sets scroll-x)
	firstRead bool   // the read right after an address is set returns 0

	scrollX, scrollY uint8

	oamAddr uint8
	oam     [256]byte

	bus *memory.PPUBus

	frame [ScreenWidth * ScreenHeight]uint32

	nmi func()

	warnedUnmapped bool
}

// New creates a PPU wired to the given PPU bus (pattern tables, nametables,
// palette RAM). onNMI is invoked once per frame at VBlank if NMI generation
// is enabled in Control1.
func New(bus *memory.PPUBus, onNMI func()) *PPU {
	return &PPU{bus: bus, nmi: onNMI}
}

// ReadRegister implements the CPU-visible $2000-$2007 window (already
// demirrored by the CPU bus to one of these eight addresses).
func (p *PPU) ReadRegister(address uint16) uint8 {
	switch address {
	case 0x2002:
		value := p.status
		p.status &^= statusVBlank
		p.addrHigh = false
		return value
	case 0x2007:
		return p.readData()
	default:
		if !p.warnedUnmapped {
			glog.Warningf("ppu: read from write-only register $%04X, returning 0", address)
			p.warnedUnmapped = true
		}
		return 0
	}
}

// WriteRegister implements the CPU-visible $2000-$2007 window.
func (p *PPU) WriteRegister(address uint16, value uint8) {
	switch address {
	case 0x2000:
		p.control1 = value
	case 0x2001:
		p.control2 = value
	case 0x2003:
		p.oamAddr = value
	case 0x2004:
		// OAMADDR is deliberately not auto-incremented here: this
		// emulator follows the source it was built from, which never
		// advances oamAddr on a $2004 write. Real 2C02 hardware does.
		p.oam[p.oamAddr] = value
	case 0x2005:
		p.writeScroll(value)
	case 0x2006:
		p.writeAddr(value)
	case 0x2007:
		p.writeData(value)
	default:
		if !p.warnedUnmapped {
			glog.Warningf("ppu: write to read-only register $%04X ignored", address)
			p.warnedUnmapped = true
		}
	}
}

func (p *PPU) writeAddr(value uint8) {
	p.firstRead = true
	if !p.addrHigh {
		p.addr = (p.addr & 0x00FF) | uint16(value)<<8
	} else {
		p.addr = (p.addr & 0xFF00) | uint16(value)
	}
	p.addrHigh = !p.addrHigh
}

func (p *PPU) writeScroll(value uint8) {
	if !p.addrHigh {
		p.scrollX = value
	} else {
		p.scrollY = value
	}
	p.addrHigh = !p.addrHigh
}

func (p *PPU) increment() uint16 {
	if p.control1&ctrlIncrement != 0 {
		return 32
	}
	return 1
}

func (p *PPU) readData() uint8 {
	if p.firstRead {
		p.firstRead = false
		return 0
	}
	value := p.bus.Read(p.addr)
	p.addr += p.increment()
	return value
}

func (p *PPU) writeData(value uint8) {
	p.bus.Write(p.addr, value)
	p.addr += p.increment()
}

// DMA performs the $4014 OAM DMA transfer: page is the 256-byte block of
// CPU RAM to copy verbatim into OAM, independent of OAMADDR.
func (p *PPU) DMA(page [256]byte) {
	p.oam = page
}

// Frame returns the most recently rendered frame as palette-index pixels
// packed into the low byte of each uint32 (see NESColorToRGB for display).
func (p *PPU) Frame() *[ScreenWidth * ScreenHeight]uint32 {
	return &p.frame
}

// NESColorToRGB expands a 6-bit NES palette index to 24-bit RGB.
func NESColorToRGB(index uint8) uint32 {
	c := Palette[index&0x3F]
	return uint32(c[0])<<16 | uint32(c[1])<<8 | uint32(c[2])
}

// RenderFrame composes a full 256x240 frame from the current register,
// OAM, and VRAM state, then sets VBlank and fires NMI if enabled. It
// clears VBlank and the sprite-0-hit flag at the start of the next call,
// matching the frame state machine in spec.md section 4.2.
func (p *PPU) RenderFrame() {
	p.status &^= statusVBlank
	p.status &^= statusSprite0Hit
	p.status &^= statusSpriteOverflow

	for line := 0; line < ScreenHeight; line++ {
		sprites, sprite0Present := p.evaluateSprites(uint8(line))
		if sprite0Present {
			p.status |= statusSprite0Hit
		}
		if len(p.oam) >= 4*8 && countOverflow(p.oam[:], uint8(line)) {
			p.status |= statusSpriteOverflow
		}
		p.renderBackgroundLine(line)
		p.renderSpriteLine(line, sprites)
	}

	p.status |= statusVBlank
	if p.control1&ctrlNMIEnable != 0 && p.nmi != nil {
		p.nmi()
	}
}

// evaluateSprites finds up to 8 sprites visible on the given scanline, in
// OAM order, matching them against spec.md's y < line < y+8, y != 0 rule.
// Sprite-0-hit is asserted here (evaluation time), not when an opaque
// sprite-0 pixel actually coincides with an opaque background pixel: the
// source this emulator follows approximates the flag this way.
func (p *PPU) evaluateSprites(line uint8) ([]sprite, bool) {
	var out []sprite
	sawSprite0 := false
	for i := 0; i < 64; i++ {
		base := i * 4
		y := p.oam[base]
		if y == 0 {
			continue
		}
		if line > y && uint16(line) < uint16(y)+8 {
			s := sprite{y: y, tile: p.oam[base+1], attr: p.oam[base+2], x: p.oam[base+3], oamIndex: i}
			if i == 0 {
				sawSprite0 = true
			}
			if len(out) < maxSpritesPerLine {
				out = append(out, s)
			}
		}
	}
	return out, sawSprite0
}

func countOverflow(oam []byte, line uint8) bool {
	count := 0
	for i := 0; i < 64; i++ {
		y := oam[i*4]
		if y == 0 {
			continue
		}
		if line > y && uint16(line) < uint16(y)+8 {
			count++
			if count > maxSpritesPerLine {
				return true
			}
		}
	}
	return false
}

func (p *PPU) nametableBase() uint16 {
	return 0x2000 + uint16(p.control1&ctrlNametableMask)*0x0400
}

func (p *PPU) backgroundPatternTable() uint16 {
	if p.control1&ctrlBGPattern != 0 {
		return 0x1000
	}
	return 0x0000
}

func (p *PPU) spritePatternTable() uint16 {
	if p.control1&ctrlSpritePattern != 0 {
		return 0x1000
	}
	return 0x0000
}

// renderBackgroundLine paints one scanline of background pixels, per
// spec.md's tile/attribute/pattern composition. Only horizontal scroll
// affects the sampled tile, matching the source.
func (p *PPU) renderBackgroundLine(line int) {
	nametable := p.nametableBase()
	attrTable := nametable + 0x03C0
	pattern := p.backgroundPatternTable()
	scroll := p.scrollX
	y := uint8(line)

	for x := 0; x < ScreenWidth; x++ {
		tileX := (uint8(x) + scroll) / 8
		tileY := y / 8

		tileAddr := nametable + uint16(tileX) + uint16(tileY)*32
		tile := p.bus.Read(tileAddr)

		attrAddr := attrTable + uint16(tileX/4) + uint16(tileY/4)*8
		attr := p.bus.Read(attrAddr)

		quadrant := 0
		if tileX%4 >= 2 {
			quadrant += 1
		}
		if tileY%4 >= 2 {
			quadrant += 2
		}
		color := (attr >> (uint(quadrant) * 2)) & 0x03

		low := p.bus.Read(pattern + 16*uint16(tile) + uint16(y%8))
		high := p.bus.Read(pattern + 16*uint16(tile) + 8 + uint16(y%8))

		bit := 7 - ((uint(x) + uint(scroll)) % 8)
		pixel := (low>>bit)&1 | ((high>>bit)&1)<<1

		var palIndex uint8
		if pixel == 0 {
			palIndex = p.bus.Read(0x3F00)
		} else {
			palIndex = p.bus.Read(0x3F00 + 4*uint16(color) + uint16(pixel))
		}

		if p.control2&maskShowBackground != 0 {
			p.frame[line*ScreenWidth+x] = uint32(palIndex)
		}
	}
}

// renderSpriteLine overlays the scanline's selected sprites on top of the
// background pixels already painted by renderBackgroundLine.
func (p *PPU) renderSpriteLine(line int, sprites []sprite) {
	if p.control2&maskShowSprites == 0 {
		return
	}
	pattern := p.spritePatternTable()
	y := uint8(line)

	for _, s := range sprites {
		row := y - s.y - 1
		if s.flipY() {
			row = 7 - row
		}
		low := p.bus.Read(pattern + 16*uint16(s.tile) + uint16(row))
		high := p.bus.Read(pattern + 16*uint16(s.tile) + 8 + uint16(row))

		for col := uint8(0); col < 8; col++ {
			bit := col
			if !s.flipX() {
				bit = 7 - col
			}
			pixel := (low>>bit)&1 | ((high>>bit)&1)<<1
			if pixel == 0 {
				continue
			}
			screenX := int(s.x) + int(col)
			if screenX < 0 || screenX >= ScreenWidth {
				continue
			}
			palIndex := p.bus.Read(0x3F10 + 4*uint16(s.palette()) + uint16(pixel))
			p.frame[line*ScreenWidth+screenX] = uint32(palIndex)
		}
	}
}

// Status bit accessors, used by bus/console for dumps and tests.
func (p *PPU) VBlank() bool         { return p.status&statusVBlank != 0 }
func (p *PPU) Sprite0Hit() bool     { return p.status&statusSprite0Hit != 0 }
func (p *PPU) SpriteOverflow() bool { return p.status&statusSpriteOverflow != 0 }
func (p *PPU) OAM() [256]byte       { return p.oam }

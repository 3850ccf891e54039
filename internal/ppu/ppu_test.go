package ppu

import (
	"testing"

	"gones/internal/memory"
)

func newTestPPU() (*PPU, *memory.PPUBus) {
	chr := &[0x2000]byte{}
	bus := memory.NewPPUBus(chr)
	return New(bus, nil), bus
}

func TestStatusReadClearsVBlankAndAddressToggle(t *testing.T) {
	p, _ := newTestPPU()
	p.status |= statusVBlank
	p.addrHigh = true

	got := p.ReadRegister(0x2002)
	if got&statusVBlank == 0 {
		t.Fatalf("expected VBlank bit set in the value returned by the $2002 read")
	}
	if p.VBlank() {
		t.Fatalf("VBlank should be cleared by reading $2002")
	}
	if p.addrHigh {
		t.Fatalf("reading $2002 must reset the write toggle shared by $2005 and $2006")
	}
}

func TestAddrWriteOrderIsHighThenLow(t *testing.T) {
	p, _ := newTestPPU()
	p.WriteRegister(0x2006, 0x23)
	p.WriteRegister(0x2006, 0x05)
	if p.addr != 0x2305 {
		t.Fatalf("addr = %#04x, want 0x2305 (high byte first)", p.addr)
	}
}

func TestFirstReadAfterAddrSetReturnsZero(t *testing.T) {
	p, bus := newTestPPU()
	bus.Write(0x2305, 0x42)

	p.WriteRegister(0x2006, 0x23)
	p.WriteRegister(0x2006, 0x05)

	if got := p.ReadRegister(0x2007); got != 0 {
		t.Fatalf("first $2007 read after setting address = %#02x, want 0", got)
	}
	if got := p.ReadRegister(0x2007); got != 0x42 {
		t.Fatalf("second $2007 read = %#02x, want 0x42", got)
	}
}

func TestDataIncrementFollowsControl1Bit2(t *testing.T) {
	p, _ := newTestPPU()
	p.WriteRegister(0x2006, 0x20)
	p.WriteRegister(0x2006, 0x00)
	p.ReadRegister(0x2007) // buffered first read, no increment
	if p.addr != 0x2000 {
		t.Fatalf("addr advanced on the buffered first read: %#04x", p.addr)
	}
	p.ReadRegister(0x2007)
	if p.addr != 0x2001 {
		t.Fatalf("addr = %#04x after a +1 read, want 0x2001", p.addr)
	}

	p.WriteRegister(0x2000, ctrlIncrement)
	p.WriteRegister(0x2006, 0x20)
	p.WriteRegister(0x2006, 0x00)
	p.ReadRegister(0x2007)
	p.ReadRegister(0x2007)
	if p.addr != 0x2020 {
		t.Fatalf("addr = %#04x after a +32 read, want 0x2020", p.addr)
	}
}

func TestOAMAddrDoesNotAutoIncrementOnDataWrite(t *testing.T) {
	p, _ := newTestPPU()
	p.WriteRegister(0x2003, 0x10)
	p.WriteRegister(0x2004, 0xAA)
	p.WriteRegister(0x2004, 0xBB)

	if p.oamAddr != 0x10 {
		t.Fatalf("oamAddr = %#02x, want unchanged at 0x10", p.oamAddr)
	}
	if p.oam[0x10] != 0xBB {
		t.Fatalf("oam[0x10] = %#02x, want the last value written (0xBB) since oamAddr never advanced", p.oam[0x10])
	}
}

func TestDMAOverwritesOAMIndependentOfOAMAddr(t *testing.T) {
	p, _ := newTestPPU()
	p.WriteRegister(0x2003, 0xFE)

	var page [256]byte
	for i := range page {
		page[i] = byte(i)
	}
	p.DMA(page)

	oam := p.OAM()
	for i := range page {
		if oam[i] != byte(i) {
			t.Fatalf("oam[%d] = %#02x, want %#02x", i, oam[i], byte(i))
		}
	}
}

func TestSprite0HitSetAtEvaluationNotPixelCoincidence(t *testing.T) {
	p, _ := newTestPPU()
	p.oam[0] = 10 // sprite 0 visible on lines 11-17
	p.oam[1] = 0
	p.oam[2] = 0
	p.oam[3] = 0

	_, saw := p.evaluateSprites(11)
	if !saw {
		t.Fatalf("expected sprite-0 to be flagged present purely from its evaluation window")
	}
	_, saw = p.evaluateSprites(10)
	if saw {
		t.Fatalf("sprite at y=10 should not be visible on line 10 (y < line required)")
	}
}

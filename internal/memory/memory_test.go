package memory

import "testing"

type stubPPU struct {
	reads  []uint16
	writes map[uint16]uint8
}

func newStubPPU() *stubPPU { return &stubPPU{writes: make(map[uint16]uint8)} }

func (s *stubPPU) ReadRegister(address uint16) uint8 {
	s.reads = append(s.reads, address)
	return 0xAB
}
func (s *stubPPU) WriteRegister(address uint16, value uint8) { s.writes[address] = value }

type stubController struct {
	written uint8
	readHit bool
}

func (c *stubController) Read() uint8        { c.readHit = true; return 0x01 }
func (c *stubController) Write(value uint8) { c.written = value }

type stubAPU struct {
	reads  []uint16
	writes map[uint16]uint8
}

func newStubAPU() *stubAPU { return &stubAPU{writes: make(map[uint16]uint8)} }

func (a *stubAPU) Read(address uint16) uint8        { a.reads = append(a.reads, address); return 0 }
func (a *stubAPU) Write(address uint16, value uint8) { a.writes[address] = value }

type stubDMASink struct{ page [256]byte }

func (d *stubDMASink) DMA(page [256]byte) { d.page = page }

func newTestCPUBus() (*CPUBus, *stubPPU, *stubAPU, *stubController, *stubDMASink, *[0x8000]byte) {
	ppu := newStubPPU()
	apu := newStubAPU()
	ctrl := &stubController{}
	sink := &stubDMASink{}
	prg := &[0x8000]byte{}
	return NewCPUBus(ppu, apu, ctrl, sink, prg), ppu, apu, ctrl, sink, prg
}

func TestRAMMirrorsAcrossFourBanks(t *testing.T) {
	bus, _, _, _, _, _ := newTestCPUBus()
	bus.Write(0x0010, 0x42)
	for _, mirror := range []uint16{0x0010, 0x0810, 0x1010, 0x1810} {
		if got := bus.Read(mirror); got != 0x42 {
			t.Fatalf("Read(%#04x) = %#02x, want 0x42 (RAM mirror)", mirror, got)
		}
	}
}

func TestPPURegistersMirrorEveryEightBytes(t *testing.T) {
	bus, ppu, _, _, _, _ := newTestCPUBus()
	bus.Write(0x2000, 0x11)
	bus.Write(0x2008, 0x22)
	if ppu.writes[0x2000] != 0x22 {
		t.Fatalf("write to $2008 should mirror to $2000, got %#02x", ppu.writes[0x2000])
	}
	bus.Read(0x3FF8)
	if ppu.reads[len(ppu.reads)-1] != 0x2000 {
		t.Fatalf("read from $3FF8 should mirror to $2000, got %#04x", ppu.reads[len(ppu.reads)-1])
	}
}

func TestOAMDMACopiesExactly256BytesFromPageBase(t *testing.T) {
	bus, _, _, _, sink, _ := newTestCPUBus()
	for i := 0; i < 256; i++ {
		bus.Write(0x0200+uint16(i), byte(i))
	}
	bus.Write(0x4014, 0x02)
	for i := 0; i < 256; i++ {
		if sink.page[i] != byte(i) {
			t.Fatalf("DMA page[%d] = %#02x, want %#02x", i, sink.page[i], byte(i))
		}
	}
}

func TestControllerLatchAtAddress4016(t *testing.T) {
	bus, _, _, ctrl, _, _ := newTestCPUBus()
	bus.Write(0x4016, 0x01)
	if ctrl.written != 0x01 {
		t.Fatalf("controller.Write not invoked by a $4016 write")
	}
	bus.Read(0x4016)
	if !ctrl.readHit {
		t.Fatalf("controller.Read not invoked by a $4016 read")
	}
}

func TestAPUHandlesRemainingIORange(t *testing.T) {
	bus, _, apu, _, _, _ := newTestCPUBus()
	bus.Write(0x4000, 0x7F)
	if apu.writes[0x4000] != 0x7F {
		t.Fatalf("write to $4000 did not reach the APU stub")
	}
	bus.Read(0x4015)
	if len(apu.reads) == 0 || apu.reads[0] != 0x4015 {
		t.Fatalf("read from $4015 did not reach the APU stub")
	}
}

func TestPRGReadAtCartridgeWindow(t *testing.T) {
	bus, _, _, _, _, prg := newTestCPUBus()
	prg[0] = 0x4C
	if got := bus.Read(0x8000); got != 0x4C {
		t.Fatalf("Read(0x8000) = %#02x, want 0x4C", got)
	}
}

func TestPaletteMirrorAliasesBackgroundEntries(t *testing.T) {
	chr := &[0x2000]byte{}
	bus := NewPPUBus(chr)
	bus.Write(0x3F00, 0x0F)
	if got := bus.Read(0x3F10); got != 0x0F {
		t.Fatalf("Read(0x3F10) = %#02x, want 0x0F (aliased to 0x3F00)", got)
	}
	bus.Write(0x3F14, 0x05)
	if got := bus.Read(0x3F04); got != 0x05 {
		t.Fatalf("Read(0x3F04) = %#02x, want 0x05 (0x3F14 aliases onto it)", got)
	}
}

func TestNametableHorizontalMirroring(t *testing.T) {
	chr := &[0x2000]byte{}
	bus := NewPPUBus(chr)
	bus.Write(0x2000, 0xAA)
	if got := bus.Read(0x2800); got != 0xAA {
		t.Fatalf("Read(0x2800) = %#02x, want 0xAA (table 2 aliases table 0)", got)
	}
	bus.Write(0x2400, 0xBB)
	if got := bus.Read(0x2C00); got != 0xBB {
		t.Fatalf("Read(0x2C00) = %#02x, want 0xBB (table 3 aliases table 1)", got)
	}
	if got := bus.Read(0x2000); got == 0xBB {
		t.Fatalf("table 0 and table 1 must not alias each other")
	}
}

func TestCHRPatternTableWritable(t *testing.T) {
	chr := &[0x2000]byte{}
	bus := NewPPUBus(chr)
	bus.Write(0x0005, 0x99)
	if chr[5] != 0x99 {
		t.Fatalf("write to pattern-table range did not reach CHR backing store")
	}
	if got := bus.Read(0x0005); got != 0x99 {
		t.Fatalf("Read(0x0005) = %#02x, want 0x99", got)
	}
}

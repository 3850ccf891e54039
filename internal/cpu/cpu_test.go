package cpu

import "testing"

// testBus is a flat 64KB address space used to drive the CPU in isolation.
type testBus struct {
	mem [0x10000]uint8
}

func (b *testBus) Read(address uint16) uint8       { return b.mem[address] }
func (b *testBus) Write(address uint16, value uint8) { b.mem[address] = value }

func newTestCPU(prg []byte, resetVector uint16) (*CPU, *testBus) {
	bus := &testBus{}
	copy(bus.mem[0x8000:], prg)
	bus.mem[0xFFFC] = uint8(resetVector)
	bus.mem[0xFFFD] = uint8(resetVector >> 8)
	c := New(bus)
	c.Reset()
	return c, bus
}

func TestResetLoadsVectorAndStackPointer(t *testing.T) {
	c, _ := newTestCPU([]byte{0xEA}, 0x8000)
	if c.PC != 0x8000 {
		t.Fatalf("PC = %04X, want 8000", c.PC)
	}
	if c.SP != 0xFF {
		t.Fatalf("SP = %02X, want FF", c.SP)
	}
}

func TestLDAImmediateThenSTAZeroPage(t *testing.T) {
	// LDA #$42; STA $10; BRK
	c, bus := newTestCPU([]byte{0xA9, 0x42, 0x85, 0x10, 0x00}, 0x8000)

	if err := c.Step(); err != nil {
		t.Fatalf("LDA: %v", err)
	}
	if c.A != 0x42 || c.Z || c.N {
		t.Fatalf("after LDA: A=%02X Z=%v N=%v", c.A, c.Z, c.N)
	}

	if err := c.Step(); err != nil {
		t.Fatalf("STA: %v", err)
	}
	if bus.mem[0x0010] != 0x42 {
		t.Fatalf("RAM[$10] = %02X, want 42", bus.mem[0x0010])
	}

	if err := c.Step(); err != nil {
		t.Fatalf("BRK: %v", err)
	}
}

func TestADCSetsOverflowWithoutCarry(t *testing.T) {
	// LDA #$7F; ADC #$01 -> overflow (0x7F + 1 = 0x80, signed overflow)
	c, _ := newTestCPU([]byte{0xA9, 0x7F, 0x69, 0x01}, 0x8000)
	mustStep(t, c)
	mustStep(t, c)
	if c.A != 0x80 {
		t.Fatalf("A = %02X, want 80", c.A)
	}
	if !c.V {
		t.Fatalf("expected overflow flag set")
	}
	if c.C {
		t.Fatalf("expected no carry out")
	}
	if !c.N {
		t.Fatalf("expected negative flag set")
	}
}

func TestINXWrapsTo00AndSetsZero(t *testing.T) {
	// LDX #$FF; INX
	c, _ := newTestCPU([]byte{0xA2, 0xFF, 0xE8}, 0x8000)
	mustStep(t, c)
	mustStep(t, c)
	if c.X != 0x00 {
		t.Fatalf("X = %02X, want 00", c.X)
	}
	if !c.Z {
		t.Fatalf("expected zero flag set")
	}
}

func TestJSRRTSRoundTrip(t *testing.T) {
	// $8000: JSR $8006; LDA #$55; BRK
	// $8006: LDA #$AA; RTS
	prg := []byte{
		0x20, 0x06, 0x80, // JSR $8006
		0xA9, 0x55, // LDA #$55
		0x00,       // BRK
		0xA9, 0xAA, // LDA #$AA  (at $8006)
		0x60, // RTS
	}
	c, bus := newTestCPU(prg, 0x8000)

	mustStep(t, c) // JSR
	if c.PC != 0x8006 {
		t.Fatalf("PC after JSR = %04X, want 8006", c.PC)
	}
	// JSR pushed the address of the last operand byte (0x8002), high then low.
	if bus.mem[0x01FF] != 0x80 || bus.mem[0x01FE] != 0x02 {
		t.Fatalf("stack after JSR = %02X %02X, want 80 02", bus.mem[0x01FF], bus.mem[0x01FE])
	}

	mustStep(t, c) // LDA #$AA at $8006
	if c.A != 0xAA {
		t.Fatalf("A = %02X, want AA", c.A)
	}

	mustStep(t, c) // RTS
	if c.PC != 0x8003 {
		t.Fatalf("PC after RTS = %04X, want 8003", c.PC)
	}

	mustStep(t, c) // LDA #$55
	if c.A != 0x55 {
		t.Fatalf("A = %02X, want 55", c.A)
	}
}

func TestCompareUsesGreaterOrEqualForCarry(t *testing.T) {
	// LDA #$10; CMP #$10 -> equal, carry set
	c, _ := newTestCPU([]byte{0xA9, 0x10, 0xC9, 0x10}, 0x8000)
	mustStep(t, c)
	mustStep(t, c)
	if !c.C || !c.Z {
		t.Fatalf("CMP equal: C=%v Z=%v, want both true", c.C, c.Z)
	}
}

func TestIllegalOpcodeReturnsError(t *testing.T) {
	c, _ := newTestCPU([]byte{0xFF}, 0x8000)
	err := c.Step()
	if err == nil {
		t.Fatalf("expected an illegal-opcode error")
	}
	if _, ok := err.(*IllegalOpcodeError); !ok {
		t.Fatalf("expected *IllegalOpcodeError, got %T", err)
	}
}

func TestJMPIndirectPageWrapQuirk(t *testing.T) {
	// JMP ($02FF) with the high byte fetched from $0200, not $0300.
	c, bus := newTestCPU([]byte{0x6C, 0xFF, 0x02}, 0x8000)
	bus.mem[0x02FF] = 0x34
	bus.mem[0x0200] = 0x12 // high byte, read from the start of the same page
	bus.mem[0x0300] = 0xFF // the next page's first byte; should NOT be used
	mustStep(t, c)
	if c.PC != 0x1234 {
		t.Fatalf("PC = %04X, want 1234 (page-wrap quirk)", c.PC)
	}
}

func mustStep(t *testing.T, c *CPU) {
	t.Helper()
	if err := c.Step(); err != nil {
		t.Fatalf("Step: %v", err)
	}
}

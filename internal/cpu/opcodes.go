package cpu

// buildTable populates the 256-entry decode table with the official 6502
// instruction set. Entries left nil decode as illegal opcodes.
func (c *CPU) buildTable() {
	set := func(opcode uint8, name string, mode AddressingMode, exec func(c *CPU, addr uint16, acc bool)) {
		c.table[opcode] = &instruction{name: name, mode: mode, exec: exec}
	}

	set(0x00, "BRK", ModeImplied, opBRK)
	set(0x01, "ORA", ModeIndexedIndirect, opORA)
	set(0x05, "ORA", ModeZeroPage, opORA)
	set(0x06, "ASL", ModeZeroPage, opASL)
	set(0x08, "PHP", ModeImplied, opPHP)
	set(0x09, "ORA", ModeImmediate, opORA)
	set(0x0A, "ASL", ModeAccumulator, opASL)
	set(0x0D, "ORA", ModeAbsolute, opORA)
	set(0x0E, "ASL", ModeAbsolute, opASL)
	set(0x10, "BPL", ModeRelative, opBPL)
	set(0x11, "ORA", ModeIndirectIndexed, opORA)
	set(0x15, "ORA", ModeZeroPageX, opORA)
	set(0x16, "ASL", ModeZeroPageX, opASL)
	set(0x18, "CLC", ModeImplied, opCLC)
	set(0x19, "ORA", ModeAbsoluteY, opORA)
	set(0x1D, "ORA", ModeAbsoluteX, opORA)
	set(0x1E, "ASL", ModeAbsoluteX, opASL)
	set(0x20, "JSR", ModeAbsolute, opJSR)
	set(0x21, "AND", ModeIndexedIndirect, opAND)
	set(0x24, "BIT", ModeZeroPage, opBIT)
	set(0x25, "AND", ModeZeroPage, opAND)
	set(0x26, "ROL", ModeZeroPage, opROL)
	set(0x28, "PLP", ModeImplied, opPLP)
	set(0x29, "AND", ModeImmediate, opAND)
	set(0x2A, "ROL", ModeAccumulator, opROL)
	set(0x2C, "BIT", ModeAbsolute, opBIT)
	set(0x2D, "AND", ModeAbsolute, opAND)
	set(0x2E, "ROL", ModeAbsolute, opROL)
	set(0x30, "BMI", ModeRelative, opBMI)
	set(0x31, "AND", ModeIndirectIndexed, opAND)
	set(0x35, "AND", ModeZeroPageX, opAND)
	set(0x36, "ROL", ModeZeroPageX, opROL)
	set(0x38, "SEC", ModeImplied, opSEC)
	set(0x39, "AND", ModeAbsoluteY, opAND)
	set(0x3D, "AND", ModeAbsoluteX, opAND)
	set(0x3E, "ROL", ModeAbsoluteX, opROL)
	set(0x40, "RTI", ModeImplied, opRTI)
	set(0x41, "EOR", ModeIndexedIndirect, opEOR)
	set(0x45, "EOR", ModeZeroPage, opEOR)
	set(0x46, "LSR", ModeZeroPage, opLSR)
	set(0x48, "PHA", ModeImplied, opPHA)
	set(0x49, "EOR", ModeImmediate, opEOR)
	set(0x4A, "LSR", ModeAccumulator, opLSR)
	set(0x4C, "JMP", ModeAbsolute, opJMP)
	set(0x4D, "EOR", ModeAbsolute, opEOR)
	set(0x4E, "LSR", ModeAbsolute, opLSR)
	set(0x50, "BVC", ModeRelative, opBVC)
	set(0x51, "EOR", ModeIndirectIndexed, opEOR)
	set(0x55, "EOR", ModeZeroPageX, opEOR)
	set(0x56, "LSR", ModeZeroPageX, opLSR)
	set(0x58, "CLI", ModeImplied, opCLI)
	set(0x59, "EOR", ModeAbsoluteY, opEOR)
	set(0x5D, "EOR", ModeAbsoluteX, opEOR)
	set(0x5E, "LSR", ModeAbsoluteX, opLSR)
	set(0x60, "RTS", ModeImplied, opRTS)
	set(0x61, "ADC", ModeIndexedIndirect, opADC)
	set(0x65, "ADC", ModeZeroPage, opADC)
	set(0x66, "ROR", ModeZeroPage, opROR)
	set(0x68, "PLA", ModeImplied, opPLA)
	set(0x69, "ADC", ModeImmediate, opADC)
	set(0x6A, "ROR", ModeAccumulator, opROR)
	set(0x6C, "JMP", ModeIndirect, opJMP)
	set(0x6D, "ADC", ModeAbsolute, opADC)
	set(0x6E, "ROR", ModeAbsolute, opROR)
	set(0x70, "BVS", ModeRelative, opBVS)
	set(0x71, "ADC", ModeIndirectIndexed, opADC)
	set(0x75, "ADC", ModeZeroPageX, opADC)
	set(0x76, "ROR", ModeZeroPageX, opROR)
	set(0x78, "SEI", ModeImplied, opSEI)
	set(0x79, "ADC", ModeAbsoluteY, opADC)
	set(0x7D, "ADC", ModeAbsoluteX, opADC)
	set(0x7E, "ROR", ModeAbsoluteX, opROR)
	set(0x81, "STA", ModeIndexedIndirect, opSTA)
	set(0x84, "STY", ModeZeroPage, opSTY)
	set(0x85, "STA", ModeZeroPage, opSTA)
	set(0x86, "STX", ModeZeroPage, opSTX)
	set(0x88, "DEY", ModeImplied, opDEY)
	set(0x8A, "TXA", ModeImplied, opTXA)
	set(0x8C, "STY", ModeAbsolute, opSTY)
	set(0x8D, "STA", ModeAbsolute, opSTA)
	set(0x8E, "STX", ModeAbsolute, opSTX)
	set(0x90, "BCC", ModeRelative, opBCC)
	set(0x91, "STA", ModeIndirectIndexed, opSTA)
	set(0x94, "STY", ModeZeroPageX, opSTY)
	set(0x95, "STA", ModeZeroPageX, opSTA)
	set(0x96, "STX", ModeZeroPageY, opSTX)
	set(0x98, "TYA", ModeImplied, opTYA)
	set(0x99, "STA", ModeAbsoluteY, opSTA)
	set(0x9A, "TXS", ModeImplied, opTXS)
	set(0x9D, "STA", ModeAbsoluteX, opSTA)
	set(0xA0, "LDY", ModeImmediate, opLDY)
	set(0xA1, "LDA", ModeIndexedIndirect, opLDA)
	set(0xA2, "LDX", ModeImmediate, opLDX)
	set(0xA4, "LDY", ModeZeroPage, opLDY)
	set(0xA5, "LDA", ModeZeroPage, opLDA)
	set(0xA6, "LDX", ModeZeroPage, opLDX)
	set(0xA8, "TAY", ModeImplied, opTAY)
	set(0xA9, "LDA", ModeImmediate, opLDA)
	set(0xAA, "TAX", ModeImplied, opTAX)
	set(0xAC, "LDY", ModeAbsolute, opLDY)
	set(0xAD, "LDA", ModeAbsolute, opLDA)
	set(0xAE, "LDX", ModeAbsolute, opLDX)
	set(0xB0, "BCS", ModeRelative, opBCS)
	set(0xB1, "LDA", ModeIndirectIndexed, opLDA)
	set(0xB4, "LDY", ModeZeroPageX, opLDY)
	set(0xB5, "LDA", ModeZeroPageX, opLDA)
	set(0xB6, "LDX", ModeZeroPageY, opLDX)
	set(0xB8, "CLV", ModeImplied, opCLV)
	set(0xB9, "LDA", ModeAbsoluteY, opLDA)
	set(0xBA, "TSX", ModeImplied, opTSX)
	set(0xBC, "LDY", ModeAbsoluteX, opLDY)
	set(0xBD, "LDA", ModeAbsoluteX, opLDA)
	set(0xBE, "LDX", ModeAbsoluteY, opLDX)
	set(0xC0, "CPY", ModeImmediate, opCPY)
	set(0xC1, "CMP", ModeIndexedIndirect, opCMP)
	set(0xC4, "CPY", ModeZeroPage, opCPY)
	set(0xC5, "CMP", ModeZeroPage, opCMP)
	set(0xC6, "DEC", ModeZeroPage, opDEC)
	set(0xC8, "INY", ModeImplied, opINY)
	set(0xC9, "CMP", ModeImmediate, opCMP)
	set(0xCA, "DEX", ModeImplied, opDEX)
	set(0xCC, "CPY", ModeAbsolute, opCPY)
	set(0xCD, "CMP", ModeAbsolute, opCMP)
	set(0xCE, "DEC", ModeAbsolute, opDEC)
	set(0xD0, "BNE", ModeRelative, opBNE)
	set(0xD1, "CMP", ModeIndirectIndexed, opCMP)
	set(0xD5, "CMP", ModeZeroPageX, opCMP)
	set(0xD6, "DEC", ModeZeroPageX, opDEC)
	set(0xD8, "CLD", ModeImplied, opCLD)
	set(0xD9, "CMP", ModeAbsoluteY, opCMP)
	set(0xDD, "CMP", ModeAbsoluteX, opCMP)
	set(0xDE, "DEC", ModeAbsoluteX, opDEC)
	set(0xE0, "CPX", ModeImmediate, opCPX)
	set(0xE1, "SBC", ModeIndexedIndirect, opSBC)
	set(0xE4, "CPX", ModeZeroPage, opCPX)
	set(0xE5, "SBC", ModeZeroPage, opSBC)
	set(0xE6, "INC", ModeZeroPage, opINC)
	set(0xE8, "INX", ModeImplied, opINX)
	set(0xE9, "SBC", ModeImmediate, opSBC)
	set(0xEA, "NOP", ModeImplied, opNOP)
	set(0xEC, "CPX", ModeAbsolute, opCPX)
	set(0xED, "SBC", ModeAbsolute, opSBC)
	set(0xEE, "INC", ModeAbsolute, opINC)
	set(0xF0, "BEQ", ModeRelative, opBEQ)
	set(0xF1, "SBC", ModeIndirectIndexed, opSBC)
	set(0xF5, "SBC", ModeZeroPageX, opSBC)
	set(0xF6, "INC", ModeZeroPageX, opINC)
	set(0xF8, "SED", ModeImplied, opSED)
	set(0xF9, "SBC", ModeAbsoluteY, opSBC)
	set(0xFD, "SBC", ModeAbsoluteX, opSBC)
	set(0xFE, "INC", ModeAbsoluteX, opINC)
}

func opLDA(c *CPU, addr uint16, acc bool) { c.A = c.bus.Read(addr); c.setZN(c.A) }
func opLDX(c *CPU, addr uint16, acc bool) { c.X = c.bus.Read(addr); c.setZN(c.X) }
func opLDY(c *CPU, addr uint16, acc bool) { c.Y = c.bus.Read(addr); c.setZN(c.Y) }

func opSTA(c *CPU, addr uint16, acc bool) { c.bus.Write(addr, c.A) }
func opSTX(c *CPU, addr uint16, acc bool) { c.bus.Write(addr, c.X) }
func opSTY(c *CPU, addr uint16, acc bool) { c.bus.Write(addr, c.Y) }

func opADC(c *CPU, addr uint16, acc bool) {
	m := c.bus.Read(addr)
	var result uint8
	var carry, overflow bool
	result, carry, overflow = addWithCarry(c.A, m, c.C)
	c.A, c.C, c.V = result, carry, overflow
	c.setZN(c.A)
}

func opSBC(c *CPU, addr uint16, acc bool) {
	m := c.bus.Read(addr)
	result, carry, overflow := addWithCarry(c.A, m^0xFF, c.C)
	c.A, c.C, c.V = result, carry, overflow
	c.setZN(c.A)
}

func opAND(c *CPU, addr uint16, acc bool) { c.A &= c.bus.Read(addr); c.setZN(c.A) }
func opORA(c *CPU, addr uint16, acc bool) { c.A |= c.bus.Read(addr); c.setZN(c.A) }
func opEOR(c *CPU, addr uint16, acc bool) { c.A ^= c.bus.Read(addr); c.setZN(c.A) }

func opASL(c *CPU, addr uint16, acc bool) {
	v := c.readOperand(addr, acc)
	c.C = v&0x80 != 0
	v <<= 1
	c.writeResult(addr, acc, v)
	c.setZN(v)
}

func opLSR(c *CPU, addr uint16, acc bool) {
	v := c.readOperand(addr, acc)
	c.C = v&0x01 != 0
	v >>= 1
	c.writeResult(addr, acc, v)
	c.setZN(v)
}

func opROL(c *CPU, addr uint16, acc bool) {
	v := c.readOperand(addr, acc)
	carryIn := uint8(0)
	if c.C {
		carryIn = 1
	}
	c.C = v&0x80 != 0
	v = (v << 1) | carryIn
	c.writeResult(addr, acc, v)
	c.setZN(v)
}

func opROR(c *CPU, addr uint16, acc bool) {
	v := c.readOperand(addr, acc)
	carryIn := uint8(0)
	if c.C {
		carryIn = 0x80
	}
	c.C = v&0x01 != 0
	v = (v >> 1) | carryIn
	c.writeResult(addr, acc, v)
	c.setZN(v)
}

func branchIf(c *CPU, cond bool, addr uint16) {
	if cond {
		c.PC = addr
	}
}

func opBPL(c *CPU, addr uint16, acc bool) { branchIf(c, !c.N, addr) }
func opBMI(c *CPU, addr uint16, acc bool) { branchIf(c, c.N, addr) }
func opBVC(c *CPU, addr uint16, acc bool) { branchIf(c, !c.V, addr) }
func opBVS(c *CPU, addr uint16, acc bool) { branchIf(c, c.V, addr) }
func opBCC(c *CPU, addr uint16, acc bool) { branchIf(c, !c.C, addr) }
func opBCS(c *CPU, addr uint16, acc bool) { branchIf(c, c.C, addr) }
func opBNE(c *CPU, addr uint16, acc bool) { branchIf(c, !c.Z, addr) }
func opBEQ(c *CPU, addr uint16, acc bool) { branchIf(c, c.Z, addr) }

func opCMP(c *CPU, addr uint16, acc bool) {
	m := c.bus.Read(addr)
	result := c.A - m
	c.C = c.A >= m
	c.Z = c.A == m
	c.N = result&0x80 != 0
}

func opCPX(c *CPU, addr uint16, acc bool) {
	m := c.bus.Read(addr)
	result := c.X - m
	c.C = c.X >= m
	c.Z = c.X == m
	c.N = result&0x80 != 0
}

func opCPY(c *CPU, addr uint16, acc bool) {
	m := c.bus.Read(addr)
	result := c.Y - m
	c.C = c.Y >= m
	c.Z = c.Y == m
	c.N = result&0x80 != 0
}

func opBIT(c *CPU, addr uint16, acc bool) {
	m := c.bus.Read(addr)
	c.Z = c.A&m == 0
	c.N = m&0x80 != 0
	c.V = m&0x40 != 0
}

func opJMP(c *CPU, addr uint16, acc bool) { c.PC = addr }

func opJSR(c *CPU, addr uint16, acc bool) {
	ret := c.PC - 1
	c.push16(ret)
	c.PC = addr
}

func opRTS(c *CPU, addr uint16, acc bool) { c.PC = c.pull16() + 1 }

func opRTI(c *CPU, addr uint16, acc bool) {
	c.setP(c.pull8())
	c.PC = c.pull16()
}

func opBRK(c *CPU, addr uint16, acc bool) {
	c.push16(c.PC + 1)
	c.push8(c.encodeP(true))
	c.I = true
	c.PC = c.read16(vectorIRQ)
}

func opTAX(c *CPU, addr uint16, acc bool) { c.X = c.A; c.setZN(c.X) }
func opTAY(c *CPU, addr uint16, acc bool) { c.Y = c.A; c.setZN(c.Y) }
func opTXA(c *CPU, addr uint16, acc bool) { c.A = c.X; c.setZN(c.A) }
func opTYA(c *CPU, addr uint16, acc bool) { c.A = c.Y; c.setZN(c.A) }
func opTSX(c *CPU, addr uint16, acc bool) { c.X = c.SP; c.setZN(c.X) }
func opTXS(c *CPU, addr uint16, acc bool) { c.SP = c.X }

func opPHA(c *CPU, addr uint16, acc bool) { c.push8(c.A) }
func opPLA(c *CPU, addr uint16, acc bool) { c.A = c.pull8(); c.setZN(c.A) }
func opPHP(c *CPU, addr uint16, acc bool) { c.push8(c.encodeP(true)) }
func opPLP(c *CPU, addr uint16, acc bool) { c.setP(c.pull8()) }

func opINX(c *CPU, addr uint16, acc bool) { c.X++; c.setZN(c.X) }
func opINY(c *CPU, addr uint16, acc bool) { c.Y++; c.setZN(c.Y) }
func opDEX(c *CPU, addr uint16, acc bool) { c.X--; c.setZN(c.X) }
func opDEY(c *CPU, addr uint16, acc bool) { c.Y--; c.setZN(c.Y) }

func opINC(c *CPU, addr uint16, acc bool) {
	v := c.bus.Read(addr) + 1
	c.bus.Write(addr, v)
	c.setZN(v)
}

func opDEC(c *CPU, addr uint16, acc bool) {
	v := c.bus.Read(addr) - 1
	c.bus.Write(addr, v)
	c.setZN(v)
}

func opSEC(c *CPU, addr uint16, acc bool) { c.C = true }
func opCLC(c *CPU, addr uint16, acc bool) { c.C = false }
func opSEI(c *CPU, addr uint16, acc bool) { c.I = true }
func opCLI(c *CPU, addr uint16, acc bool) { c.I = false }
func opSED(c *CPU, addr uint16, acc bool) { c.D = true }
func opCLD(c *CPU, addr uint16, acc bool) { c.D = false }
func opCLV(c *CPU, addr uint16, acc bool) { c.V = false }

func opNOP(c *CPU, addr uint16, acc bool) {}

package cpu

// Instruction is the decoded, timed, flag-annotated record the executor
// consumes (§3 "Instruction", §4.1). Exec performs the operation itself;
// its bool return reports whether a conditional branch was taken (ignored
// for unconditional instructions).
type Instruction struct {
	Length       int
	ReadCycles   int
	Cycles       int
	BranchCycles int
	SetFlags     byte
	ResetFlags   byte
	Exec         func(c *CPU) bool
}

// builder mirrors the reference InstructionBuilder: sensible defaults
// (length 1, no operand-fetch cycles, 4 base cycles, branch cycles equal to
// base unless a conditional instruction overrides it).
type builder struct{ i Instruction }

func newInstr(exec func(c *CPU) bool) *builder {
	return &builder{i: Instruction{Length: 1, ReadCycles: 0, Cycles: 4, Exec: exec}}
}

func (b *builder) length(n int) *builder {
	b.i.Length = n
	b.i.ReadCycles = (n - 1) * 4
	return b
}
func (b *builder) cycles(n int) *builder       { b.i.Cycles = n; return b }
func (b *builder) branch(n int) *builder       { b.i.BranchCycles = n; return b }
func (b *builder) setFlags(mask byte) *builder { b.i.SetFlags = mask; return b }
func (b *builder) resetFlags(mask byte) *builder {
	b.i.ResetFlags = mask
	return b
}

func (b *builder) build() Instruction {
	if b.i.BranchCycles == 0 {
		b.i.BranchCycles = b.i.Cycles
	}
	return b.i
}

func noBranch(fn func(c *CPU)) func(c *CPU) bool {
	return func(c *CPU) bool {
		fn(c)
		return false
	}
}

// buildPrimaryTable constructs the 256-entry primary opcode table by
// decomposing every byte value into its x/y/z/p/q fields and dispatching
// exactly as the canonical decoder does (§4.1). Unrecognized slots are left
// with a nil Exec, which the executor treats as the "undefined opcode"
// case (§4.9).
func buildPrimaryTable() [256]Instruction {
	var t [256]Instruction
	for i := 0; i < 256; i++ {
		b := byte(i)
		d := decomposeByte(b)
		instr, ok := decodePrimary(b, d)
		if ok {
			t[i] = instr
		}
	}
	return t
}

func decodePrimary(raw byte, d decomposed) (Instruction, bool) {
	switch d.x {
	case 0:
		return decodeX0(d)
	case 1:
		return decodeX1(d)
	case 2:
		return decodeX2(d)
	case 3:
		return decodeX3(d)
	}
	_ = raw
	return Instruction{}, false
}

func decodeX0(d decomposed) (Instruction, bool) {
	switch d.z {
	case 0:
		switch {
		case d.y == 0: // NOP
			return newInstr(noBranch(func(c *CPU) {})).build(), true
		case d.y == 1: // LD (nn),SP
			return newInstr(noBranch(func(c *CPU) {
				c.memWriteTick16(c.opImm16, c.regs.SP)
			})).length(3).cycles(20).build(), true
		case d.y == 2: // STOP
			return newInstr(noBranch(func(c *CPU) {})).length(2).cycles(4).build(), true
		case d.y == 3: // JR d
			return newInstr(noBranch(func(c *CPU) {
				c.regs.PC = uint16(int32(c.regs.PC) + int32(c.opDisp))
			})).length(2).cycles(12).build(), true
		default: // JR cc,d (y = 4..7)
			cond := flagConditionFromY(d.y - 4)
			return newInstr(func(c *CPU) bool {
				if !c.checkCond(cond) {
					return false
				}
				c.regs.PC = uint16(int32(c.regs.PC) + int32(c.opDisp))
				return true
			}).length(2).cycles(8).branch(12).build(), true
		}
	case 1:
		wr := wideFromRP(d.p)
		if d.q == 0 { // LD rp,nn
			return newInstr(noBranch(func(c *CPU) {
				c.wideWrite(wr, c.opImm16)
			})).length(3).cycles(12).build(), true
		}
		// ADD HL,rp
		return newInstr(noBranch(func(c *CPU) {
			c.addWide(WideHL, wr)
		})).cycles(8).resetFlags(FlagN).build(), true
	case 2:
		switch d.q {
		case 0:
			switch d.p {
			case 0: // LD (BC),A
				return newInstr(noBranch(func(c *CPU) { c.memWriteTick(c.regs.BC(), c.regs.A) })).cycles(8).build(), true
			case 1: // LD (DE),A
				return newInstr(noBranch(func(c *CPU) { c.memWriteTick(c.regs.DE(), c.regs.A) })).cycles(8).build(), true
			case 2: // LD (HL+),A
				return newInstr(noBranch(func(c *CPU) {
					c.memWriteTick(c.regs.HL(), c.regs.A)
					c.regs.SetHL(c.regs.HL() + 1)
				})).cycles(8).build(), true
			case 3: // LD (HL-),A
				return newInstr(noBranch(func(c *CPU) {
					c.memWriteTick(c.regs.HL(), c.regs.A)
					c.regs.SetHL(c.regs.HL() - 1)
				})).cycles(8).build(), true
			}
		case 1:
			switch d.p {
			case 0: // LD A,(BC)
				return newInstr(noBranch(func(c *CPU) { c.regs.A = c.memReadTick(c.regs.BC()) })).cycles(8).build(), true
			case 1: // LD A,(DE)
				return newInstr(noBranch(func(c *CPU) { c.regs.A = c.memReadTick(c.regs.DE()) })).cycles(8).build(), true
			case 2: // LD A,(HL+)
				return newInstr(noBranch(func(c *CPU) {
					c.regs.A = c.memReadTick(c.regs.HL())
					c.regs.SetHL(c.regs.HL() + 1)
				})).cycles(8).build(), true
			case 3: // LD A,(HL-)
				return newInstr(noBranch(func(c *CPU) {
					c.regs.A = c.memReadTick(c.regs.HL())
					c.regs.SetHL(c.regs.HL() - 1)
				})).cycles(8).build(), true
			}
		}
	case 3:
		wr := wideFromRP(d.p)
		if d.q == 0 {
			return newInstr(noBranch(func(c *CPU) { c.incWide(wr) })).cycles(8).build(), true
		}
		return newInstr(noBranch(func(c *CPU) { c.decWide(wr) })).cycles(8).build(), true
	case 4:
		r := Register(d.y)
		cycles := 4
		if r == RegHLInd {
			cycles = 12
		}
		return newInstr(noBranch(func(c *CPU) { c.inc(r) })).cycles(cycles).resetFlags(FlagN).build(), true
	case 5:
		r := Register(d.y)
		cycles := 4
		if r == RegHLInd {
			cycles = 12
		}
		return newInstr(noBranch(func(c *CPU) { c.dec(r) })).cycles(cycles).setFlags(FlagN).build(), true
	case 6:
		r := Register(d.y)
		cycles := 8
		if r == RegHLInd {
			cycles = 12
		}
		return newInstr(noBranch(func(c *CPU) { c.regWrite(r, c.opImm8) })).length(2).cycles(cycles).build(), true
	case 7:
		return decodeX0Z7(d.y), true
	}
	return Instruction{}, false
}

func decodeX0Z7(y byte) Instruction {
	switch y {
	case 0: // RLCA
		return newInstr(noBranch(func(c *CPU) { c.rlc(RegA, false) })).resetFlags(FlagZ | FlagN | FlagH).build()
	case 1: // RRCA
		return newInstr(noBranch(func(c *CPU) { c.rrc(RegA, false) })).resetFlags(FlagZ | FlagN | FlagH).build()
	case 2: // RLA
		return newInstr(noBranch(func(c *CPU) { c.rl(RegA, false) })).resetFlags(FlagZ | FlagN | FlagH).build()
	case 3: // RRA
		return newInstr(noBranch(func(c *CPU) { c.rr(RegA, false) })).resetFlags(FlagZ | FlagN | FlagH).build()
	case 4: // DAA
		return newInstr(noBranch(func(c *CPU) { c.daa() })).build()
	case 5: // CPL
		return newInstr(noBranch(func(c *CPU) { c.regs.A = ^c.regs.A })).setFlags(FlagN | FlagH).build()
	case 6: // SCF
		return newInstr(noBranch(func(c *CPU) {})).setFlags(FlagC).resetFlags(FlagN | FlagH).build()
	case 7: // CCF
		return newInstr(noBranch(func(c *CPU) {
			c.regs.SetFlag(FlagC, !c.regs.FlagSet(FlagC))
		})).resetFlags(FlagN | FlagH).build()
	}
	panic("cpu: unreachable x0z7 case")
}

func decodeX1(d decomposed) (Instruction, bool) {
	if d.z == 6 && d.y == 6 { // HALT
		return newInstr(noBranch(func(c *CPU) { c.halt() })).build(), true
	}
	dst, src := Register(d.y), Register(d.z)
	cycles := 4
	if dst == RegHLInd || src == RegHLInd {
		cycles = 8
	}
	return newInstr(noBranch(func(c *CPU) {
		c.regWrite(dst, c.regRead(src))
	})).cycles(cycles).build(), true
}

func decodeX2(d decomposed) (Instruction, bool) {
	src := Register(d.z)
	cycles := 4
	if src == RegHLInd {
		cycles = 8
	}
	switch d.y {
	case 0:
		return newInstr(noBranch(func(c *CPU) { c.add(c.regRead(src)) })).cycles(cycles).resetFlags(FlagN).build(), true
	case 1:
		return newInstr(noBranch(func(c *CPU) { c.adc(c.regRead(src)) })).cycles(cycles).resetFlags(FlagN).build(), true
	case 2:
		return newInstr(noBranch(func(c *CPU) { c.sub(c.regRead(src)) })).cycles(cycles).setFlags(FlagN).build(), true
	case 3:
		return newInstr(noBranch(func(c *CPU) { c.sbc(c.regRead(src)) })).cycles(cycles).setFlags(FlagN).build(), true
	case 4:
		return newInstr(noBranch(func(c *CPU) { c.and(c.regRead(src)) })).cycles(cycles).setFlags(FlagH).resetFlags(FlagN | FlagC).build(), true
	case 5:
		return newInstr(noBranch(func(c *CPU) { c.xor(c.regRead(src)) })).cycles(cycles).resetFlags(FlagN | FlagH | FlagC).build(), true
	case 6:
		return newInstr(noBranch(func(c *CPU) { c.or(c.regRead(src)) })).cycles(cycles).resetFlags(FlagN | FlagH | FlagC).build(), true
	case 7:
		return newInstr(noBranch(func(c *CPU) { c.cp(c.regRead(src)) })).cycles(cycles).setFlags(FlagN).build(), true
	}
	return Instruction{}, false
}

func decodeX3(d decomposed) (Instruction, bool) {
	switch d.z {
	case 0:
		switch {
		case d.y <= 3: // RET cc
			cond := flagConditionFromY(d.y)
			return newInstr(func(c *CPU) bool {
				if !c.checkCond(cond) {
					return false
				}
				c.regs.PC = c.pop16()
				return true
			}).cycles(8).branch(20).build(), true
		case d.y == 4: // LDH (n),A
			return newInstr(noBranch(func(c *CPU) {
				c.memWriteTick(0xFF00+uint16(c.opImm8), c.regs.A)
			})).length(2).cycles(12).build(), true
		case d.y == 5: // ADD SP,d8
			return newInstr(noBranch(func(c *CPU) {
				c.regs.SP = c.addSPOffset(int8(c.opImm8))
			})).length(2).cycles(16).resetFlags(FlagZ | FlagN).build(), true
		case d.y == 6: // LDH A,(n)
			return newInstr(noBranch(func(c *CPU) {
				c.regs.A = c.memReadTick(0xFF00 + uint16(c.opImm8))
			})).length(2).cycles(12).build(), true
		case d.y == 7: // LD HL,SP+d8
			return newInstr(noBranch(func(c *CPU) {
				c.regs.SetHL(c.addSPOffset(int8(c.opImm8)))
			})).length(2).cycles(12).resetFlags(FlagZ | FlagN).build(), true
		}
	case 1:
		if d.q == 0 { // POP rp2
			wr := wideFromRP2(d.p)
			return newInstr(noBranch(func(c *CPU) {
				c.wideWrite(wr, c.pop16())
			})).cycles(12).build(), true
		}
		switch d.p {
		case 0: // RET
			return newInstr(noBranch(func(c *CPU) { c.regs.PC = c.pop16() })).cycles(16).build(), true
		case 1: // RETI
			return newInstr(noBranch(func(c *CPU) {
				c.regs.PC = c.pop16()
				c.ime = true
			})).cycles(16).build(), true
		case 2: // JP HL
			return newInstr(noBranch(func(c *CPU) { c.regs.PC = c.regs.HL() })).cycles(4).build(), true
		case 3: // LD SP,HL
			return newInstr(noBranch(func(c *CPU) { c.regs.SP = c.regs.HL() })).cycles(8).build(), true
		}
	case 2:
		switch {
		case d.y <= 3: // JP cc,nn
			cond := flagConditionFromY(d.y)
			return newInstr(func(c *CPU) bool {
				if !c.checkCond(cond) {
					return false
				}
				c.regs.PC = c.opImm16
				return true
			}).length(3).cycles(12).branch(16).build(), true
		case d.y == 4: // LDH (C),A
			return newInstr(noBranch(func(c *CPU) {
				c.memWriteTick(0xFF00+uint16(c.regs.C), c.regs.A)
			})).cycles(8).build(), true
		case d.y == 5: // LD (nn),A
			return newInstr(noBranch(func(c *CPU) {
				c.memWriteTick(c.opImm16, c.regs.A)
			})).length(3).cycles(16).build(), true
		case d.y == 6: // LDH A,(C)
			return newInstr(noBranch(func(c *CPU) {
				c.regs.A = c.memReadTick(0xFF00 + uint16(c.regs.C))
			})).cycles(8).build(), true
		case d.y == 7: // LD A,(nn)
			return newInstr(noBranch(func(c *CPU) {
				c.regs.A = c.memReadTick(c.opImm16)
			})).length(3).cycles(16).build(), true
		}
	case 3:
		switch d.y {
		case 0: // JP nn
			return newInstr(noBranch(func(c *CPU) { c.regs.PC = c.opImm16 })).length(3).cycles(16).build(), true
		case 6: // DI
			return newInstr(noBranch(func(c *CPU) { c.di() })).build(), true
		case 7: // EI
			return newInstr(noBranch(func(c *CPU) { c.ei() })).build(), true
		default: // 1,2,3,4,5: undefined
			return Instruction{}, false
		}
	case 4:
		if d.y <= 3 { // CALL cc,nn
			cond := flagConditionFromY(d.y)
			return newInstr(func(c *CPU) bool {
				if !c.checkCond(cond) {
					return false
				}
				c.push16(c.regs.PC)
				c.regs.PC = c.opImm16
				return true
			}).length(3).cycles(12).branch(24).build(), true
		}
		return Instruction{}, false // 4..7 undefined
	case 5:
		if d.q == 0 { // PUSH rp2
			wr := wideFromRP2(d.p)
			return newInstr(noBranch(func(c *CPU) { c.push16(c.wideRead(wr)) })).cycles(16).build(), true
		}
		if d.p == 0 { // CALL nn
			return newInstr(noBranch(func(c *CPU) {
				c.push16(c.regs.PC)
				c.regs.PC = c.opImm16
			})).length(3).cycles(24).build(), true
		}
		return Instruction{}, false // q=1,p=1..3 undefined
	case 6:
		switch d.y {
		case 0:
			return newInstr(noBranch(func(c *CPU) { c.add(c.opImm8) })).length(2).cycles(8).resetFlags(FlagN).build(), true
		case 1:
			return newInstr(noBranch(func(c *CPU) { c.adc(c.opImm8) })).length(2).cycles(8).resetFlags(FlagN).build(), true
		case 2:
			return newInstr(noBranch(func(c *CPU) { c.sub(c.opImm8) })).length(2).cycles(8).setFlags(FlagN).build(), true
		case 3:
			return newInstr(noBranch(func(c *CPU) { c.sbc(c.opImm8) })).length(2).cycles(8).setFlags(FlagN).build(), true
		case 4:
			return newInstr(noBranch(func(c *CPU) { c.and(c.opImm8) })).length(2).cycles(8).setFlags(FlagH).resetFlags(FlagN | FlagC).build(), true
		case 5:
			return newInstr(noBranch(func(c *CPU) { c.xor(c.opImm8) })).length(2).cycles(8).resetFlags(FlagN | FlagH | FlagC).build(), true
		case 6:
			return newInstr(noBranch(func(c *CPU) { c.or(c.opImm8) })).length(2).cycles(8).resetFlags(FlagN | FlagH | FlagC).build(), true
		case 7:
			return newInstr(noBranch(func(c *CPU) { c.cp(c.opImm8) })).length(2).cycles(8).setFlags(FlagN).build(), true
		}
	case 7: // RST y*8
		target := uint16(d.y) * 8
		return newInstr(noBranch(func(c *CPU) {
			c.push16(c.regs.PC)
			c.regs.PC = target
		})).cycles(16).build(), true
	}
	return Instruction{}, false
}

// buildCBTable constructs the 256-entry CB-prefixed table: rotate/shift
// group (x=0), BIT (x=1), RES (x=2), SET (x=3), each over the 8 register
// choices (z). All CB instructions are length 2 (§4.1).
func buildCBTable() [256]Instruction {
	var t [256]Instruction
	for i := 0; i < 256; i++ {
		b := byte(i)
		d := decomposeByte(b)
		r := Register(d.z)
		cycles := 8
		if r == RegHLInd {
			cycles = 16
		}
		switch d.x {
		case 0:
			switch d.y {
			case 0:
				t[i] = newInstr(noBranch(func(c *CPU) { c.rlc(r, true) })).length(2).cycles(cycles).resetFlags(FlagN | FlagH).build()
			case 1:
				t[i] = newInstr(noBranch(func(c *CPU) { c.rrc(r, true) })).length(2).cycles(cycles).resetFlags(FlagN | FlagH).build()
			case 2:
				t[i] = newInstr(noBranch(func(c *CPU) { c.rl(r, true) })).length(2).cycles(cycles).resetFlags(FlagN | FlagH).build()
			case 3:
				t[i] = newInstr(noBranch(func(c *CPU) { c.rr(r, true) })).length(2).cycles(cycles).resetFlags(FlagN | FlagH).build()
			case 4:
				t[i] = newInstr(noBranch(func(c *CPU) { c.sla(r) })).length(2).cycles(cycles).resetFlags(FlagN | FlagH).build()
			case 5:
				t[i] = newInstr(noBranch(func(c *CPU) { c.sra(r) })).length(2).cycles(cycles).resetFlags(FlagN | FlagH).build()
			case 6:
				t[i] = newInstr(noBranch(func(c *CPU) { c.swap(r) })).length(2).cycles(cycles).resetFlags(FlagN | FlagH | FlagC).build()
			case 7:
				t[i] = newInstr(noBranch(func(c *CPU) { c.srl(r) })).length(2).cycles(cycles).resetFlags(FlagN | FlagH).build()
			}
		case 1: // BIT y,r
			bitCycles := 8
			if r == RegHLInd {
				bitCycles = 12
			}
			y := d.y
			t[i] = newInstr(noBranch(func(c *CPU) { c.bit(y, r) })).length(2).cycles(bitCycles).setFlags(FlagH).resetFlags(FlagN).build()
		case 2: // RES y,r
			y := d.y
			t[i] = newInstr(noBranch(func(c *CPU) { c.res(y, r) })).length(2).cycles(cycles).build()
		case 3: // SET y,r
			y := d.y
			t[i] = newInstr(noBranch(func(c *CPU) { c.set(y, r) })).length(2).cycles(cycles).build()
		}
	}
	return t
}

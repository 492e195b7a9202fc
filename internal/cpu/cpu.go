// Package cpu implements the LR35902 register file, the instruction
// decoder/executor, and cycle-exact T-cycle accounting (§4.1, §4.6, §4.7).
package cpu

import (
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"gbcore/internal/interrupt"
	"gbcore/internal/mmu"
)

var logger = log.With().Str("component", "cpu").Logger()

// SetLogger overrides the package-level logger.
func SetLogger(l zerolog.Logger) { logger = l }

// MMU is the minimal memory interface the CPU depends on; *mmu.MMU
// satisfies it.
type MMU interface {
	Read(addr uint16) byte
	Write(addr uint16, value byte)
	Tick(cycles int)
	Interrupts() *interrupt.Controller
}

// CPU owns the register file and drives the fetch-decode-execute loop
// against an MMU-backed byte source.
type CPU struct {
	regs Registers
	bus  MMU

	ime         bool
	eiDelayed   bool
	halted      bool
	haltBugNext bool

	primary [256]Instruction
	cb      [256]Instruction

	// Operand staging: populated during fetch, consumed by Exec.
	opImm8  byte
	opImm16 uint16
	opDisp  int8

	rwCycles int
}

func New(bus MMU) *CPU {
	c := &CPU{bus: bus}
	c.primary = buildPrimaryTable()
	c.cb = buildCBTable()
	return c
}

// NewWithMMU is a convenience constructor for the concrete *mmu.MMU type.
func NewWithMMU(m *mmu.MMU) *CPU { return New(m) }

func (c *CPU) Registers() *Registers { return &c.regs }
func (c *CPU) PC() uint16           { return c.regs.PC }
func (c *CPU) Halted() bool          { return c.halted }
func (c *CPU) IME() bool             { return c.ime }

// --- memory helpers -------------------------------------------------------

func (c *CPU) rawFetch8() byte {
	v := c.bus.Read(c.regs.PC)
	c.regs.PC++
	return v
}

func (c *CPU) rawFetch16() uint16 {
	lo := c.rawFetch8()
	hi := c.rawFetch8()
	return uint16(hi)<<8 | uint16(lo)
}

// memReadTick reads a byte during instruction execution (i.e. not as part
// of operand fetch); each such access costs 4 T-cycles, charged immediately.
func (c *CPU) memReadTick(addr uint16) byte {
	v := c.bus.Read(addr)
	c.bus.Tick(4)
	c.rwCycles += 4
	return v
}

func (c *CPU) memWriteTick(addr uint16, value byte) {
	c.bus.Write(addr, value)
	c.bus.Tick(4)
	c.rwCycles += 4
}

func (c *CPU) memReadTick16(addr uint16) uint16 {
	lo := c.memReadTick(addr)
	hi := c.memReadTick(addr + 1)
	return uint16(hi)<<8 | uint16(lo)
}

func (c *CPU) memWriteTick16(addr uint16, value uint16) {
	c.memWriteTick(addr, byte(value))
	c.memWriteTick(addr+1, byte(value>>8))
}

// --- register/operand access ----------------------------------------------

func (c *CPU) regRead(r Register) byte {
	switch r {
	case RegB:
		return c.regs.B
	case RegC:
		return c.regs.C
	case RegD:
		return c.regs.D
	case RegE:
		return c.regs.E
	case RegH:
		return c.regs.H
	case RegL:
		return c.regs.L
	case RegHLInd:
		return c.memReadTick(c.regs.HL())
	case RegA:
		return c.regs.A
	default:
		panic("cpu: invalid register")
	}
}

func (c *CPU) regWrite(r Register, v byte) {
	switch r {
	case RegB:
		c.regs.B = v
	case RegC:
		c.regs.C = v
	case RegD:
		c.regs.D = v
	case RegE:
		c.regs.E = v
	case RegH:
		c.regs.H = v
	case RegL:
		c.regs.L = v
	case RegHLInd:
		c.memWriteTick(c.regs.HL(), v)
	case RegA:
		c.regs.A = v
	default:
		panic("cpu: invalid register")
	}
}

func (c *CPU) wideRead(w WideRegister) uint16 {
	switch w {
	case WideBC:
		return c.regs.BC()
	case WideDE:
		return c.regs.DE()
	case WideHL:
		return c.regs.HL()
	case WideSP:
		return c.regs.SP
	case WideAF:
		return c.regs.AF()
	default:
		panic("cpu: invalid wide register")
	}
}

func (c *CPU) wideWrite(w WideRegister, v uint16) {
	switch w {
	case WideBC:
		c.regs.SetBC(v)
	case WideDE:
		c.regs.SetDE(v)
	case WideHL:
		c.regs.SetHL(v)
	case WideSP:
		c.regs.SP = v
	case WideAF:
		c.regs.SetAF(v)
	default:
		panic("cpu: invalid wide register")
	}
}

func (c *CPU) push16(v uint16) {
	c.regs.SP -= 2
	c.memWriteTick16(c.regs.SP, v)
}

func (c *CPU) pop16() uint16 {
	v := c.memReadTick16(c.regs.SP)
	c.regs.SP += 2
	return v
}

func (c *CPU) checkCond(cond FlagCondition) bool {
	switch cond {
	case CondNZ:
		return !c.regs.FlagSet(FlagZ)
	case CondZ:
		return c.regs.FlagSet(FlagZ)
	case CondNC:
		return !c.regs.FlagSet(FlagC)
	case CondC:
		return c.regs.FlagSet(FlagC)
	default:
		panic("cpu: invalid flag condition")
	}
}

// --- fetch/execute loop ----------------------------------------------------

// Step services any pending interrupt, then fetches and executes exactly
// one instruction, returning the number of T-cycles consumed (§4.6, §4.7).
func (c *CPU) Step() int {
	if cycles, handled := c.serviceInterrupt(); handled {
		return cycles
	}

	ic := c.bus.Interrupts()
	if c.halted {
		if _, pending := ic.PriorityInterrupt(); pending {
			c.halted = false
		} else {
			c.bus.Tick(4)
			return 4
		}
	}

	if c.eiDelayed {
		c.eiDelayed = false
		c.ime = true
	}

	return c.fetchExecute()
}

func (c *CPU) serviceInterrupt() (int, bool) {
	ic := c.bus.Interrupts()
	kind, pending := ic.PriorityInterrupt()
	if !pending || !c.ime {
		return 0, false
	}

	c.ime = false
	ic.IfReset(kind)
	c.halted = false

	c.push16(c.regs.PC)
	c.regs.PC = kind.HandlerAddress()
	// push16 already charged 8 T-cycles for the stack write; the remaining
	// 12 cover the two wasted machine cycles plus the jump, for a fixed
	// 20-cycle dispatch.
	c.bus.Tick(12)
	return 20, true
}

func (c *CPU) fetchExecute() int {
	c.rwCycles = 0

	opcodeAddr := c.regs.PC
	opcode := c.rawFetch8()

	// The HALT bug: if HALT was entered with ime false and interrupts
	// already pending, the very next opcode fetch fails to advance PC, so
	// the following fetch re-reads the same byte (it is effectively
	// consumed twice: once as this opcode, once as whatever starts the
	// next instruction).
	if c.haltBugNext {
		c.haltBugNext = false
		c.regs.PC = opcodeAddr
	}

	var instr Instruction
	var cbByte byte
	if opcode == 0xCB {
		cbByte = c.rawFetch8()
		instr = c.cb[cbByte]
	} else {
		instr = c.primary[opcode]
	}

	if instr.Exec == nil {
		logger.Error().Uint16("addr", opcodeAddr).Uint8("opcode", opcode).Msg("undefined opcode")
		c.bus.Tick(4)
		return 4
	}

	switch instr.Length {
	case 2:
		if opcode == 0xCB {
			// length already fully consumed (prefix + op byte).
		} else {
			b := c.rawFetch8()
			c.opImm8 = b
			c.opDisp = int8(b)
		}
	case 3:
		c.opImm16 = c.rawFetch16()
	}

	c.bus.Tick(instr.ReadCycles)
	c.rwCycles += instr.ReadCycles

	branchTaken := instr.Exec(c)

	c.regs.F |= instr.SetFlags
	c.regs.F &^= instr.ResetFlags
	c.regs.F &= 0xF0

	total := instr.Cycles
	if branchTaken {
		total = instr.BranchCycles
	}
	remainder := total - c.rwCycles
	if remainder < 0 {
		remainder = 0
	}
	c.bus.Tick(remainder)
	return total
}

// --- interrupt-control helpers used by EI/DI/HALT ---------------------------

// EI arms the one-instruction-delayed interrupt-enable latch.
func (c *CPU) ei() { c.eiDelayed = true }

// DI clears ime and the delayed-enable latch immediately.
func (c *CPU) di() {
	c.ime = false
	c.eiDelayed = false
}

// halt enters the halted state, reproducing the HALT-bug condition when
// ime is false and an interrupt is already pending.
func (c *CPU) halt() {
	ic := c.bus.Interrupts()
	_, pending := ic.PriorityInterrupt()
	if !c.ime && pending {
		c.haltBugNext = true
	} else {
		c.halted = true
	}
}

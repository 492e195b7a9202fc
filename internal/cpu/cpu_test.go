package cpu

import (
	"testing"

	"gbcore/internal/interrupt"
)

// fakeBus is a flat 64KiB byte array standing in for the MMU, so the cpu
// package can be exercised without pulling in cartridge/mmu wiring.
type fakeBus struct {
	mem    [1 << 16]byte
	ic     *interrupt.Controller
	ticked int
}

func newFakeBus() *fakeBus {
	return &fakeBus{ic: interrupt.New()}
}

func (b *fakeBus) Read(addr uint16) byte          { return b.mem[addr] }
func (b *fakeBus) Write(addr uint16, value byte)  { b.mem[addr] = value }
func (b *fakeBus) Tick(cycles int)                { b.ticked += cycles }
func (b *fakeBus) Interrupts() *interrupt.Controller { return b.ic }

func newCPUWithProgram(program ...byte) (*CPU, *fakeBus) {
	bus := newFakeBus()
	for i, v := range program {
		bus.mem[i] = v
	}
	c := New(bus)
	return c, bus
}

func TestNopConsumesFourCycles(t *testing.T) {
	c, bus := newCPUWithProgram(0x00)
	cycles := c.Step()
	if cycles != 4 {
		t.Fatalf("Step() = %d, want 4", cycles)
	}
	if bus.ticked != 4 {
		t.Fatalf("bus ticked %d, want 4", bus.ticked)
	}
	if c.regs.PC != 1 {
		t.Fatalf("PC = %#04x, want 1", c.regs.PC)
	}
}

func TestLdBNImmediate(t *testing.T) {
	c, _ := newCPUWithProgram(0x06, 0x42) // LD B,0x42
	c.Step()
	if c.regs.B != 0x42 {
		t.Fatalf("B = %#02x, want 0x42", c.regs.B)
	}
	if c.regs.PC != 2 {
		t.Fatalf("PC = %#04x, want 2", c.regs.PC)
	}
}

func TestAddAB(t *testing.T) {
	c, _ := newCPUWithProgram(0x80) // ADD A,B
	c.regs.A = 0x3A
	c.regs.B = 0xC6
	cycles := c.Step()
	if cycles != 4 {
		t.Fatalf("cycles = %d, want 4", cycles)
	}
	if c.regs.A != 0x00 {
		t.Fatalf("A = %#02x, want 0x00", c.regs.A)
	}
	if !c.regs.FlagSet(FlagZ) || !c.regs.FlagSet(FlagC) || !c.regs.FlagSet(FlagH) {
		t.Fatalf("expected Z,H,C all set, F=%#02x", c.regs.F)
	}
}

func TestAddHLBC16Bit(t *testing.T) {
	c, _ := newCPUWithProgram(0x09) // ADD HL,BC
	c.regs.SetHL(0x8A23)
	c.regs.SetBC(0x0605)
	cycles := c.Step()
	if cycles != 8 {
		t.Fatalf("cycles = %d, want 8", cycles)
	}
	if c.regs.HL() != 0x9028 {
		t.Fatalf("HL = %#04x, want 0x9028", c.regs.HL())
	}
	if !c.regs.FlagSet(FlagH) {
		t.Fatalf("expected H set")
	}
	if c.regs.FlagSet(FlagC) {
		t.Fatalf("expected C clear")
	}
}

func TestLdHLIndirectRoundTrip(t *testing.T) {
	c, bus := newCPUWithProgram(0x36, 0x99, 0x7E) // LD (HL),0x99 ; LD A,(HL)
	c.regs.SetHL(0xC000)
	cyc1 := c.Step()
	if cyc1 != 12 {
		t.Fatalf("LD (HL),n cycles = %d, want 12", cyc1)
	}
	if bus.mem[0xC000] != 0x99 {
		t.Fatalf("mem[0xC000] = %#02x, want 0x99", bus.mem[0xC000])
	}
	cyc2 := c.Step()
	if cyc2 != 8 {
		t.Fatalf("LD A,(HL) cycles = %d, want 8", cyc2)
	}
	if c.regs.A != 0x99 {
		t.Fatalf("A = %#02x, want 0x99", c.regs.A)
	}
}

func TestJrConditionalNotTaken(t *testing.T) {
	c, _ := newCPUWithProgram(0x20, 0x05) // JR NZ,+5
	c.regs.SetFlag(FlagZ, true)
	cycles := c.Step()
	if cycles != 8 {
		t.Fatalf("cycles = %d, want 8 (not taken)", cycles)
	}
	if c.regs.PC != 2 {
		t.Fatalf("PC = %#04x, want 2", c.regs.PC)
	}
}

func TestJrConditionalTaken(t *testing.T) {
	c, _ := newCPUWithProgram(0x20, 0x05) // JR NZ,+5
	cycles := c.Step()
	if cycles != 12 {
		t.Fatalf("cycles = %d, want 12 (taken)", cycles)
	}
	if c.regs.PC != 7 {
		t.Fatalf("PC = %#04x, want 7", c.regs.PC)
	}
}

func TestCallAndRet(t *testing.T) {
	bus := newFakeBus()
	bus.mem[0] = 0xCD // CALL 0x0010
	bus.mem[1] = 0x10
	bus.mem[2] = 0x00
	bus.mem[0x10] = 0xC9 // RET
	c := New(bus)
	c.regs.SP = 0xFFFE

	cycles := c.Step()
	if cycles != 24 {
		t.Fatalf("CALL cycles = %d, want 24", cycles)
	}
	if c.regs.PC != 0x0010 {
		t.Fatalf("PC = %#04x, want 0x0010", c.regs.PC)
	}
	if c.regs.SP != 0xFFFC {
		t.Fatalf("SP = %#04x, want 0xFFFC", c.regs.SP)
	}

	cycles = c.Step()
	if cycles != 16 {
		t.Fatalf("RET cycles = %d, want 16", cycles)
	}
	if c.regs.PC != 0x0003 {
		t.Fatalf("PC = %#04x, want 0x0003 (return address)", c.regs.PC)
	}
	if c.regs.SP != 0xFFFE {
		t.Fatalf("SP = %#04x, want 0xFFFE", c.regs.SP)
	}
}

func TestPushPopRoundTrip(t *testing.T) {
	c, _ := newCPUWithProgram(0xC5, 0xD1) // PUSH BC ; POP DE
	c.regs.SetBC(0xBEEF)
	c.regs.SP = 0xFFFE

	cyc1 := c.Step()
	if cyc1 != 16 {
		t.Fatalf("PUSH cycles = %d, want 16", cyc1)
	}
	cyc2 := c.Step()
	if cyc2 != 12 {
		t.Fatalf("POP cycles = %d, want 12", cyc2)
	}
	if c.regs.DE() != 0xBEEF {
		t.Fatalf("DE = %#04x, want 0xBEEF", c.regs.DE())
	}
}

func TestCbPrefixedBitOnHL(t *testing.T) {
	c, _ := newCPUWithProgram(0xCB, 0x46) // BIT 0,(HL)
	c.regs.SetHL(0xC000)
	cycles := c.Step()
	if cycles != 12 {
		t.Fatalf("cycles = %d, want 12", cycles)
	}
	if !c.regs.FlagSet(FlagZ) {
		t.Fatalf("expected Z set, bit 0 of zeroed memory is clear")
	}
}

func TestUndefinedOpcodeFallsThroughSafely(t *testing.T) {
	for _, op := range []byte{0xD3, 0xDB, 0xDD, 0xE3, 0xE4, 0xEB, 0xEC, 0xED, 0xF4, 0xFC, 0xFD} {
		c, _ := newCPUWithProgram(op)
		cycles := c.Step()
		if cycles != 4 {
			t.Fatalf("opcode %#02x: cycles = %d, want 4", op, cycles)
		}
		if c.regs.PC != 1 {
			t.Fatalf("opcode %#02x: PC = %#04x, want 1", op, c.regs.PC)
		}
	}
}

func TestInterruptDispatchHighestPriority(t *testing.T) {
	c, bus := newCPUWithProgram(0x00) // NOP at PC 0, never reached
	c.ime = true
	c.regs.PC = 0x0100
	c.regs.SP = 0xFFFE
	bus.ic.WriteIE(0xFF)
	bus.ic.IfSet(interrupt.Timer)
	bus.ic.IfSet(interrupt.VBlank)

	cycles := c.Step()
	if cycles != 20 {
		t.Fatalf("cycles = %d, want 20", cycles)
	}
	if c.regs.PC != interrupt.VBlank.HandlerAddress() {
		t.Fatalf("PC = %#04x, want VBlank handler", c.regs.PC)
	}
	if c.ime {
		t.Fatalf("expected ime cleared on dispatch")
	}
	if bus.ic.ReadIF()&1 != 0 {
		t.Fatalf("expected VBlank IF bit cleared")
	}
	if bus.ic.ReadIF()&(1<<interrupt.Timer) == 0 {
		t.Fatalf("expected Timer IF bit to remain pending")
	}
}

func TestHaltStaysHaltedWithoutPendingInterrupt(t *testing.T) {
	c, bus := newCPUWithProgram(0x76, 0x00) // HALT ; NOP
	c.ime = false
	bus.ic.WriteIE(0)

	c.Step() // executes HALT; ime=false and no pending interrupt -> genuinely halts
	if !c.halted {
		t.Fatalf("expected CPU halted")
	}

	cycles := c.Step()
	if cycles != 4 {
		t.Fatalf("cycles while halted = %d, want 4", cycles)
	}
	if c.regs.PC != 1 {
		t.Fatalf("PC should not advance while halted, got %#04x", c.regs.PC)
	}
}

func TestHaltWakesOnPendingInterrupt(t *testing.T) {
	c, bus := newCPUWithProgram(0x76, 0x00) // HALT ; NOP
	c.ime = true
	bus.ic.WriteIE(0)
	c.Step() // HALT

	bus.ic.WriteIE(1 << interrupt.VBlank)
	bus.ic.IfSet(interrupt.VBlank)

	cycles := c.Step()
	if cycles != 20 {
		t.Fatalf("cycles = %d, want 20 (interrupt dispatch on wake)", cycles)
	}
	if c.halted {
		t.Fatalf("expected CPU no longer halted")
	}
	if c.regs.PC != interrupt.VBlank.HandlerAddress() {
		t.Fatalf("PC = %#04x, want VBlank handler", c.regs.PC)
	}
}

func TestHaltBugReReadsNextOpcodeByte(t *testing.T) {
	bus := newFakeBus()
	bus.mem[0] = 0x76 // HALT
	bus.mem[1] = 0x3C // INC A
	bus.mem[2] = 0x3C // INC A
	bus.ic.WriteIE(1 << interrupt.VBlank)
	bus.ic.IfSet(interrupt.VBlank) // pending already, ime false -> triggers halt bug

	c := New(bus)
	c.ime = false

	c.Step() // HALT observes ime=false with a pending interrupt: halt bug armed, CPU does not actually halt
	if c.halted {
		t.Fatalf("halt bug case should not leave the CPU halted")
	}
	if !c.haltBugNext {
		t.Fatalf("expected haltBugNext armed")
	}

	c.Step() // PC fails to advance past the byte at 1
	if c.regs.A != 1 {
		t.Fatalf("A = %d, want 1 after first INC A", c.regs.A)
	}
	if c.regs.PC != 1 {
		t.Fatalf("PC = %#04x, want 1 (fetch did not advance it)", c.regs.PC)
	}

	c.Step() // byte at 1 is re-read as the next opcode; PC advances normally this time
	if c.regs.A != 2 {
		t.Fatalf("A = %d, want 2 after second INC A", c.regs.A)
	}
	if c.regs.PC != 2 {
		t.Fatalf("PC = %#04x, want 2", c.regs.PC)
	}
}

func TestEiDelayedByOneInstruction(t *testing.T) {
	c, bus := newCPUWithProgram(0xFB, 0x00, 0x00) // EI ; NOP ; NOP
	bus.ic.WriteIE(1 << interrupt.VBlank)
	bus.ic.IfSet(interrupt.VBlank)

	c.Step() // EI: arms eiDelayed, ime still false
	if c.ime {
		t.Fatalf("ime should not be set immediately after EI")
	}

	c.Step() // instruction following EI: ime becomes true only after this retires
	if !c.ime {
		t.Fatalf("expected ime true after the instruction following EI retires")
	}

	cycles := c.Step() // now dispatch should fire
	if cycles != 20 {
		t.Fatalf("cycles = %d, want 20 (interrupt dispatch)", cycles)
	}
	if c.regs.PC != interrupt.VBlank.HandlerAddress() {
		t.Fatalf("PC = %#04x, want VBlank handler", c.regs.PC)
	}
}

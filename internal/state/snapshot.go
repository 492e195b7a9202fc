package state

import (
	"gbcore/internal/cpu"
	"gbcore/internal/mmu"
)

// RegisterInfo describes a single register for display (§4.8).
type RegisterInfo struct {
	Name  string
	Value uint64
	Group string // "general", "flags", "pointer"
}

// FlagBits breaks the F register out into its named bits, since external
// observers want Z/N/H/C individually rather than a raw byte.
type FlagBits struct {
	Z, N, H, C bool
}

// Snapshot is the passive, copied-out view of the emulator's internal
// state (§4.8): registers, flags, bank ranges, WRAM/HRAM contents, a
// disassembly window starting at PC, and any serial bytes transmitted so far.
// It shares no mutable state with the running core.
type Snapshot struct {
	Registers []RegisterInfo
	Flags     FlagBits

	PC     uint16
	SP     uint16
	IME    bool
	Halted bool

	BootMode bool
	ROMBank0 int
	ROMBank1 int
	RAMBank  int

	WRAM []byte
	HRAM []byte

	Disassembly []DisassembledLine

	SerialASCII string
}

// DisassemblyWindow controls how many instructions Capture decodes starting
// at PC.
const DisassemblyWindow = 16

// Capture builds a Snapshot from the given CPU and MMU. Per §5, the host
// must only call this between steps, never from inside c.Step(); capture
// itself never advances any clock.
func Capture(c *cpu.CPU, m *mmu.MMU) Snapshot {
	regs := c.Registers()
	rom0, rom1, ram := m.Cartridge().BankState()

	snap := Snapshot{
		Registers: []RegisterInfo{
			{Name: "A", Value: uint64(regs.A), Group: "general"},
			{Name: "F", Value: uint64(regs.F), Group: "flags"},
			{Name: "B", Value: uint64(regs.B), Group: "general"},
			{Name: "C", Value: uint64(regs.C), Group: "general"},
			{Name: "D", Value: uint64(regs.D), Group: "general"},
			{Name: "E", Value: uint64(regs.E), Group: "general"},
			{Name: "H", Value: uint64(regs.H), Group: "general"},
			{Name: "L", Value: uint64(regs.L), Group: "general"},
			{Name: "SP", Value: uint64(regs.SP), Group: "pointer"},
			{Name: "PC", Value: uint64(regs.PC), Group: "pointer"},
		},
		Flags: FlagBits{
			Z: regs.F&cpu.FlagZ != 0,
			N: regs.F&cpu.FlagN != 0,
			H: regs.F&cpu.FlagH != 0,
			C: regs.F&cpu.FlagC != 0,
		},
		PC:       regs.PC,
		SP:       regs.SP,
		IME:      c.IME(),
		Halted:   c.Halted(),
		BootMode: m.BootMode(),
		ROMBank0: rom0,
		ROMBank1: rom1,
		RAMBank:  ram,
		WRAM:     m.WRAMSnapshot(),
		HRAM:     m.HRAMSnapshot(),
	}

	snap.Disassembly = Disassemble(m, regs.PC, DisassemblyWindow, regs.PC)
	snap.SerialASCII = serialASCII(m.IO().SentBytes())
	return snap
}

// serialASCII renders transmitted serial bytes as a printable string,
// substituting '.' for bytes outside the printable ASCII range (§4.8
// "transmitted serial bytes as ASCII").
func serialASCII(sent []byte) string {
	out := make([]byte, len(sent))
	for i, b := range sent {
		if b >= 0x20 && b < 0x7F {
			out[i] = b
		} else {
			out[i] = '.'
		}
	}
	return string(out)
}

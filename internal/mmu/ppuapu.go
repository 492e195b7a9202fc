package mmu

import "gbcore/internal/interrupt"

// PPU is the pluggable interface the graphics renderer must satisfy to sit
// behind the MMU's 0x8000-0x9FFF, 0xFE00-0xFE9F and 0xFF40-0xFF4B windows
// (§6 "PPU interface contract"). The core ships only NullPPU, a passive
// byte-store stand-in; a real PPU that honors the same tick contract can be
// substituted without touching the MMU.
type PPU interface {
	VRAMRead(addr uint16) byte
	VRAMWrite(addr uint16, value byte)
	OAMRead(addr uint16) byte
	OAMWrite(addr uint16, value byte)
	RegRead(addr uint16) byte
	RegWrite(addr uint16, value byte)
	Tick(cycles int, ic *interrupt.Controller)
}

// APU is the pluggable interface the sound unit must satisfy to sit behind
// the MMU's 0xFF10-0xFF3F window (§6 "APU interface contract").
type APU interface {
	RegRead(addr uint16) byte
	RegWrite(addr uint16, value byte)
	Tick(cycles int)
}

const (
	vramSize = 0x2000
	oamSize  = 0xA0
	ppuRegLo = 0xFF40
	ppuRegHi = 0xFF4B
	apuRegLo = 0xFF10
	apuRegHi = 0xFF3F
)

// NullPPU is a passive stand-in for the graphics renderer: it stores whatever
// is written and returns it unmodified, never raises LcdStat, and never
// renders a frame. It exists so the MMU's address decode stays total even
// when no real PPU is plugged in.
type NullPPU struct {
	vram [vramSize]byte
	oam  [oamSize]byte
	regs [ppuRegHi - ppuRegLo + 1]byte
}

func NewNullPPU() *NullPPU { return &NullPPU{} }

func (p *NullPPU) VRAMRead(addr uint16) byte          { return p.vram[addr] }
func (p *NullPPU) VRAMWrite(addr uint16, value byte)  { p.vram[addr] = value }
func (p *NullPPU) OAMRead(addr uint16) byte           { return p.oam[addr] }
func (p *NullPPU) OAMWrite(addr uint16, value byte)   { p.oam[addr] = value }
func (p *NullPPU) RegRead(addr uint16) byte           { return p.regs[addr-ppuRegLo] }
func (p *NullPPU) RegWrite(addr uint16, value byte)   { p.regs[addr-ppuRegLo] = value }
func (p *NullPPU) Tick(cycles int, ic *interrupt.Controller) {}

// NullAPU is the sound-unit equivalent of NullPPU.
type NullAPU struct {
	regs [apuRegHi - apuRegLo + 1]byte
}

func NewNullAPU() *NullAPU { return &NullAPU{} }

func (a *NullAPU) RegRead(addr uint16) byte         { return a.regs[addr-apuRegLo] }
func (a *NullAPU) RegWrite(addr uint16, value byte) { a.regs[addr-apuRegLo] = value }
func (a *NullAPU) Tick(cycles int)                  {}

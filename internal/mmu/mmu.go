// Package mmu implements the 16-bit address decoder that ties the
// cartridge, work/high RAM, timer, joypad/serial stub, interrupt
// controller, and the pluggable PPU/APU into a single memory space (§4.4).
package mmu

import (
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"gbcore/internal/cartridge"
	"gbcore/internal/gberr"
	"gbcore/internal/interrupt"
	"gbcore/internal/iobus"
	"gbcore/internal/timer"
)

const (
	BootRomSize = 0x0100

	romBank0Start, romBank0End   = 0x0000, 0x3FFF
	romBank1Start, romBank1End   = 0x4000, 0x7FFF
	vramStart, vramEnd           = 0x8000, 0x9FFF
	externalRamStart, ramEnd     = 0xA000, 0xBFFF
	wramStart, wramEnd           = 0xC000, 0xDFFF
	mirrorStart, mirrorEnd       = 0xE000, 0xFDFF
	oamStart, oamEnd             = 0xFE00, 0xFE9F
	unusableStart, unusableEnd   = 0xFEA0, 0xFEFF
	ioRegStart, ioRegEnd         = 0xFF00, 0xFF02
	timerRegStart, timerRegEnd   = 0xFF04, 0xFF07
	interruptFlagAddr            = 0xFF0F
	apuRegStart, apuRegEnd       = 0xFF10, 0xFF3F
	ppuRegStart, ppuRegEnd       = 0xFF40, 0xFF4B
	bankRegAddr                  = 0xFF50
	hramStart, hramEnd           = 0xFF80, 0xFFFE
	interruptEnableAddr          = 0xFFFF

	defaultReadValue = 0xFF
	wramSize         = wramEnd - wramStart + 1
	hramSize         = hramEnd - hramStart + 1
)

var logger = log.With().Str("component", "mmu").Logger()

// SetLogger overrides the package-level logger.
func SetLogger(l zerolog.Logger) { logger = l }

// MMU owns every device on the 16-bit bus and dispatches reads/writes to the
// right one, including the boot-ROM overlay (§4.4).
type MMU struct {
	bootRom  [BootRomSize]byte
	bootMode bool

	cartridge cartridge.Cartridge
	interrupt *interrupt.Controller
	timer     *timer.Timer
	io        *iobus.IOBus
	ppu       PPU
	apu       APU

	wram [wramSize]byte
	hram [hramSize]byte
}

// New constructs an MMU from a ROM image and a boot ROM, wiring in
// default NullPPU/NullAPU stand-ins. Use WithPPU/WithAPU to plug in real
// implementations.
func New(rom, bootRom []byte) (*MMU, error) {
	if len(bootRom) != BootRomSize {
		return nil, &gberr.BootRomError{Expected: BootRomSize, Found: len(bootRom)}
	}
	cart, err := cartridge.New(rom)
	if err != nil {
		return nil, err
	}
	m := &MMU{
		bootMode:  true,
		cartridge: cart,
		interrupt: interrupt.New(),
		timer:     timer.New(),
		io:        iobus.New(),
		ppu:       NewNullPPU(),
		apu:       NewNullAPU(),
	}
	copy(m.bootRom[:], bootRom)
	return m, nil
}

// WithPPU replaces the default NullPPU with a real implementation.
func (m *MMU) WithPPU(p PPU) { m.ppu = p }

// WithAPU replaces the default NullAPU with a real implementation.
func (m *MMU) WithAPU(a APU) { m.apu = a }

func (m *MMU) Cartridge() cartridge.Cartridge     { return m.cartridge }
func (m *MMU) Interrupts() *interrupt.Controller  { return m.interrupt }
func (m *MMU) Timer() *timer.Timer                { return m.timer }
func (m *MMU) IO() *iobus.IOBus                   { return m.io }
func (m *MMU) BootMode() bool                     { return m.bootMode }

// WRAMSnapshot copies work RAM out for a state observer (§4.8). It never
// aliases m.wram, so the caller cannot mutate live emulator state through
// the returned slice.
func (m *MMU) WRAMSnapshot() []byte {
	out := make([]byte, len(m.wram))
	copy(out, m.wram[:])
	return out
}

// HRAMSnapshot copies high RAM out for a state observer (§4.8).
func (m *MMU) HRAMSnapshot() []byte {
	out := make([]byte, len(m.hram))
	copy(out, m.hram[:])
	return out
}

// Read returns the byte at addr, dispatching to whichever device owns that
// range. Unmapped holes return 0xFF and are logged.
func (m *MMU) Read(addr uint16) byte {
	if m.bootMode && addr < BootRomSize {
		return m.bootRom[addr]
	}
	switch {
	case addr <= romBank0End:
		return m.cartridge.ReadROM(addr)
	case addr <= romBank1End:
		return m.cartridge.ReadROM(addr)
	case addr <= vramEnd:
		return m.ppu.VRAMRead(addr - vramStart)
	case addr <= ramEnd:
		return m.cartridge.ReadRAM(addr - externalRamStart)
	case addr <= wramEnd:
		return m.wram[addr-wramStart]
	case addr <= mirrorEnd:
		return m.wram[(addr-0x2000)-wramStart]
	case addr <= oamEnd:
		return m.ppu.OAMRead(addr - oamStart)
	case addr <= unusableEnd:
		logger.Debug().Uint16("addr", addr).Msg("read from unusable memory region")
		return defaultReadValue
	case addr >= ioRegStart && addr <= ioRegEnd:
		return m.io.Read(addr)
	case addr >= timerRegStart && addr <= timerRegEnd:
		return m.timer.Read(addr)
	case addr == interruptFlagAddr:
		return m.interrupt.ReadIF()
	case addr >= apuRegStart && addr <= apuRegEnd:
		return m.apu.RegRead(addr)
	case addr >= ppuRegStart && addr <= ppuRegEnd:
		return m.ppu.RegRead(addr)
	case addr == bankRegAddr:
		return defaultReadValue // write-only; read value is undefined.
	case addr >= hramStart && addr <= hramEnd:
		return m.hram[addr-hramStart]
	case addr == interruptEnableAddr:
		return m.interrupt.ReadIE()
	default:
		logger.Error().Uint16("addr", addr).Msg("read from unmapped memory address")
		return defaultReadValue
	}
}

// Write stores value at addr, dispatching to whichever device owns that
// range. Unmapped holes drop the write and are logged.
func (m *MMU) Write(addr uint16, value byte) {
	switch {
	case addr <= romBank0End:
		m.cartridge.WriteROM(addr, value)
	case addr <= romBank1End:
		m.cartridge.WriteROM(addr, value)
	case addr <= vramEnd:
		m.ppu.VRAMWrite(addr-vramStart, value)
	case addr <= ramEnd:
		m.cartridge.WriteRAM(addr-externalRamStart, value)
	case addr <= wramEnd:
		m.wram[addr-wramStart] = value
	case addr <= mirrorEnd:
		m.wram[(addr-0x2000)-wramStart] = value
	case addr <= oamEnd:
		m.ppu.OAMWrite(addr-oamStart, value)
	case addr <= unusableEnd:
		logger.Debug().Uint16("addr", addr).Msg("write to unusable memory region dropped")
	case addr >= ioRegStart && addr <= ioRegEnd:
		m.io.Write(addr, value)
	case addr >= timerRegStart && addr <= timerRegEnd:
		m.timer.Write(addr, value, m.interrupt)
	case addr == interruptFlagAddr:
		m.interrupt.WriteIF(value)
	case addr >= apuRegStart && addr <= apuRegEnd:
		m.apu.RegWrite(addr, value)
	case addr >= ppuRegStart && addr <= ppuRegEnd:
		m.ppu.RegWrite(addr, value)
	case addr == bankRegAddr:
		if m.bootMode && value != 0 {
			m.bootMode = false
			logger.Trace().Msg("boot mode disabled")
		}
	case addr >= hramStart && addr <= hramEnd:
		m.hram[addr-hramStart] = value
	case addr == interruptEnableAddr:
		m.interrupt.WriteIE(value)
	default:
		logger.Error().Uint16("addr", addr).Msg("write to unmapped memory address dropped")
	}
}

// Tick advances every downstream peripheral by cycles T-cycles.
func (m *MMU) Tick(cycles int) {
	m.timer.Tick(cycles, m.interrupt)
	m.io.Tick(cycles)
	m.ppu.Tick(cycles, m.interrupt)
	m.apu.Tick(cycles)
}

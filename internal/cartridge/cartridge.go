// Package cartridge implements cartridge header parsing and the memory bank
// controller (MBC) variants that re-map ROM/RAM windows under software
// control (§4.3).
package cartridge

import (
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"gbcore/internal/gberr"
)

const (
	RomBankSize = 16 * 1024
	RamBankSize = 8 * 1024
)

var logger = log.With().Str("component", "cartridge").Logger()

// SetLogger overrides the package-level logger (used by hosts that want a
// differently configured sink).
func SetLogger(l zerolog.Logger) { logger = l }

// Cartridge is implemented by every supported MBC variant: ROM-only and
// MBC1. read_rom/write_rom/read_ram/write_ram mirror the four operations
// the MMU dispatches to the cartridge (§4.3).
type Cartridge interface {
	ReadROM(addr uint16) byte
	WriteROM(addr uint16, value byte)
	ReadRAM(addr uint16) byte
	WriteRAM(addr uint16, value byte)
	Header() Header

	// BankState reports the currently windowed bank indices, for state
	// observers (§4.8): the fixed low bank, the switchable high bank, and
	// the external RAM bank.
	BankState() (romBank0, romBank1, ramBank int)
}

// New parses rom's header and constructs the matching MBC variant. This is
// the only place a runtime error escapes the emulator core (§4.9) — it runs
// once, at load time.
func New(rom []byte) (Cartridge, error) {
	header, err := ParseHeader(rom)
	if err != nil {
		return nil, err
	}
	logger.Debug().
		Str("title", header.Title).
		Str("type", header.CartridgeType.String()).
		Int("rom_banks", header.RomBanks).
		Int("ram_banks", header.RamBanks).
		Bool("checksum_ok", header.ChecksumPassed).
		Msg("parsed cartridge header")

	if header.RomBanks*RomBankSize != len(rom) {
		return nil, &gberr.RomSizeMismatch{
			Expected: header.RomBanks * RomBankSize,
			Found:    len(rom),
		}
	}

	switch header.CartridgeType {
	case TypeRomOnly:
		return newRomOnly(rom, header)
	case TypeMBC1, TypeMBC1Ram, TypeMBC1RamBattery:
		return newMBC1(rom, header)
	default:
		return nil, &gberr.UnsupportedCartridgeType{CartridgeType: header.CartridgeType.String()}
	}
}

// base holds the state common to every MBC variant: the ROM image, optional
// external RAM, the currently windowed bank indices, and the RAM-enable
// latch. Variants compose base rather than inherit from it (§9).
type base struct {
	rom []byte
	ram []byte // nil if header.RamBanks == 0

	romBank0 int
	romBank1 int
	ramBank  int
	ramEnabled bool

	header Header
}

func newBase(rom []byte, header Header) base {
	var ram []byte
	if header.RamBanks > 0 {
		ram = make([]byte, RamBankSize*header.RamBanks)
	}
	return base{
		rom:      append([]byte(nil), rom...),
		ram:      ram,
		romBank0: 0,
		romBank1: 1,
		ramBank:  0,
		header:   header,
	}
}

func (b *base) Header() Header { return b.header }

func (b *base) bankState() (int, int, int) { return b.romBank0, b.romBank1, b.ramBank }

func (b *base) readROM(addr uint16) byte {
	switch {
	case addr <= 0x3FFF:
		return b.rom[RomBankSize*b.romBank0+int(addr)]
	case addr <= 0x7FFF:
		return b.rom[RomBankSize*b.romBank1+int(addr-0x4000)]
	default:
		logger.Error().Uint16("addr", addr).Msg("read_rom: address out of range")
		return 0xFF
	}
}

func (b *base) readRAM(addr uint16) byte {
	if b.ram == nil {
		logger.Error().Msg("attempted to read from non-existent external RAM")
		return 0xFF
	}
	if !b.ramEnabled {
		logger.Error().Msg("attempted to read from external RAM, but RAM is not enabled")
		return 0xFF
	}
	return b.ram[RamBankSize*b.ramBank+int(addr)]
}

func (b *base) writeRAM(addr uint16, value byte) {
	if b.ram == nil {
		logger.Error().Msg("attempted to write to non-existent external RAM")
		return
	}
	if !b.ramEnabled {
		logger.Error().Msg("attempted to write to external RAM, but RAM is not enabled")
		return
	}
	b.ram[RamBankSize*b.ramBank+int(addr)] = value
}

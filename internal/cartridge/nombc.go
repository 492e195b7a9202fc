package cartridge

import "gbcore/internal/gberr"

// romOnly is the no-MBC (ROM-only) cartridge variant. The ROM must be
// exactly 32 KiB (2 banks); external RAM, if present, is always enabled and
// writes to ROM are ignored with a warning (§4.3).
type romOnly struct {
	base
}

func newRomOnly(rom []byte, header Header) (Cartridge, error) {
	if header.RomBanks != 2 {
		return nil, &gberr.RomOversized{
			CartridgeType: header.CartridgeType.String(),
			Found:         RomBankSize * header.RomBanks,
		}
	}
	if header.RamBanks > 1 {
		logger.Error().
			Str("type", header.CartridgeType.String()).
			Int("ram_banks", header.RamBanks).
			Msg("cartridge type does not support more than one RAM bank")
	}
	c := &romOnly{base: newBase(rom, header)}
	if header.RamBanks != 0 {
		c.ramEnabled = true
	}
	return c, nil
}

func (c *romOnly) ReadROM(addr uint16) byte { return c.readROM(addr) }

func (c *romOnly) WriteROM(addr uint16, value byte) {
	logger.Warn().Uint16("addr", addr).Msg("attempted to write to cartridge ROM: ROM-only cartridge does not support bank switching")
}

func (c *romOnly) ReadRAM(addr uint16) byte          { return c.readRAM(addr) }
func (c *romOnly) WriteRAM(addr uint16, value byte) { c.writeRAM(addr, value) }

func (c *romOnly) BankState() (int, int, int) { return c.bankState() }

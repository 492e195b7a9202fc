package cartridge

import "gbcore/internal/gberr"

// bankMode selects whether the low ROM/RAM windows are locked to bank 0
// (Simple) or bank-switchable via the secondary 2-bit register (Advanced).
type bankMode byte

const (
	bankModeSimple bankMode = iota
	bankModeAdvanced
)

const (
	ramEnableRegStart     = 0x0000
	ramEnableRegEnd       = 0x1FFF
	romBankRegStart       = 0x2000
	romBankRegEnd         = 0x3FFF
	ramBankRegStart       = 0x4000
	ramBankRegEnd         = 0x5FFF
	bankModeSelectStart   = 0x6000
	bankModeSelectEnd     = 0x7FFF
)

// mbc1 implements the MBC1 cartridge variant (§4.3): a 5-bit ROM bank
// register, a 2-bit RAM bank/high-ROM-bit register, and a 1-bit banking
// mode selector that together window ROM and RAM.
type mbc1 struct {
	base

	romBankReg  byte
	romBankMask byte
	ramBankReg  byte
	mode        bankMode

	largeROM bool
	largeRAM bool
}

func newMBC1(rom []byte, header Header) (Cartridge, error) {
	if header.RomBanks > 128 {
		return nil, &gberr.RomOversized{
			CartridgeType: header.CartridgeType.String(),
			Found:         RomBankSize * header.RomBanks,
		}
	}

	largeROM := header.RomBanks >= 64
	var largeRAM bool
	switch {
	case header.RamBanks > 4:
		logger.Error().
			Str("type", header.CartridgeType.String()).
			Int("ram_banks", header.RamBanks).
			Msg("MBC1 does not support more than 4 RAM banks; clamping")
		if largeROM {
			header.RamBanks = 1
			largeRAM = false
		} else {
			header.RamBanks = 4
			largeRAM = true
		}
	case largeROM && header.RamBanks == 4:
		logger.Error().
			Int("rom_banks", header.RomBanks).
			Msg("MBC1 does not support this many ROM banks together with 4 RAM banks; clamping RAM to 1 bank")
		header.RamBanks = 1
		largeRAM = false
	default:
		largeRAM = header.RamBanks == 4
	}
	if largeRAM && largeROM {
		panic("cartridge: large_rom and large_ram are mutually exclusive")
	}

	var mask byte
	switch header.RomBanks {
	case 2:
		mask = 0b0000_0001
	case 4:
		mask = 0b0000_0011
	case 8:
		mask = 0b0000_0111
	case 16:
		mask = 0b0000_1111
	default:
		mask = 0b0001_1111
	}

	return &mbc1{
		base:        newBase(rom, header),
		romBankMask: mask,
		mode:        bankModeSimple,
		largeROM:    largeROM,
		largeRAM:    largeRAM,
	}, nil
}

func (m *mbc1) ReadROM(addr uint16) byte { return m.readROM(addr) }

func (m *mbc1) WriteROM(addr uint16, value byte) {
	switch {
	case addr >= ramEnableRegStart && addr <= ramEnableRegEnd:
		enable := value&0x0F == 0x0A
		if enable && m.header.RamBanks != 0 {
			m.ramEnabled = true
			logger.Debug().Msg("external RAM enabled")
		} else {
			m.ramEnabled = false
			logger.Debug().Msg("external RAM disabled")
		}
	case addr >= romBankRegStart && addr <= romBankRegEnd:
		m.romBankReg = value & 0b0001_1111
	case addr >= ramBankRegStart && addr <= ramBankRegEnd:
		if m.largeROM || m.largeRAM {
			m.ramBankReg = value & 0b0000_0011
		} else {
			m.ramBankReg = 0
		}
	case addr >= bankModeSelectStart && addr <= bankModeSelectEnd:
		if m.largeROM || m.largeRAM {
			if value&1 == 0 {
				m.mode = bankModeSimple
			} else {
				m.mode = bankModeAdvanced
			}
		}
	default:
		logger.Error().Uint16("addr", addr).Msg("MBC1: write_rom address out of range")
		return
	}
	m.updateBanks()
}

func (m *mbc1) updateBanks() {
	// Low ROM window (0x0000-0x3FFF).
	switch {
	case m.mode == bankModeSimple:
		m.romBank0 = 0
	case m.largeRAM:
		m.romBank0 = 0
	default:
		m.romBank0 = int(m.ramBankReg) << 5
	}

	// High ROM window (0x4000-0x7FFF).
	bank := int(m.romBankReg & m.romBankMask)
	if bank == 0 {
		bank++
	}
	if m.largeROM {
		bank |= int(m.ramBankReg) << 5
	}
	m.romBank1 = bank

	// RAM window.
	switch {
	case m.mode == bankModeSimple:
		m.ramBank = 0
	case !m.largeROM:
		m.ramBank = int(m.ramBankReg)
	default:
		m.ramBank = 0
	}

	if m.romBank0 >= m.header.RomBanks || m.romBank1 >= m.header.RomBanks {
		panic("cartridge: MBC1 computed ROM bank out of range")
	}
	if m.header.RamBanks > 0 && m.ramBank >= m.header.RamBanks {
		panic("cartridge: MBC1 computed RAM bank out of range")
	}
}

func (m *mbc1) ReadRAM(addr uint16) byte          { return m.readRAM(addr) }
func (m *mbc1) WriteRAM(addr uint16, value byte) { m.writeRAM(addr, value) }

func (m *mbc1) BankState() (int, int, int) { return m.bankState() }

package cartridge

import "testing"

func buildMBC1Rom(banks int) []byte {
	rom := buildTestRom(RomBankSize*banks, byte(TypeMBC1), romSizeCodeForBanks(banks), 0x00, "MBC1TEST")
	// Stamp each bank with its index at offset 0 so window checks are verifiable.
	for b := 0; b < banks; b++ {
		rom[b*RomBankSize] = byte(b)
	}
	return rom
}

func romSizeCodeForBanks(banks int) byte {
	for code := byte(0); code <= 0x08; code++ {
		if 2<<code == banks {
			return code
		}
	}
	panic("unsupported bank count in test helper")
}

func TestMBC1BankSwitch(t *testing.T) {
	rom := buildMBC1Rom(128) // 2 MiB-class cart (128 * 16 KiB), exercises large_rom path.
	c, err := New(rom)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	c.WriteROM(0x2000, 0x05)
	if got := c.ReadROM(0x4000); got != 0x05 {
		t.Errorf("after selecting bank 5, ReadROM(0x4000) = %#x, want 0x05", got)
	}

	// Writing 0 to the ROM bank register rewrites to bank 1 (never bank 0).
	c.WriteROM(0x2000, 0x00)
	if got := c.ReadROM(0x4000); got != 0x01 {
		t.Errorf("after selecting bank 0, ReadROM(0x4000) = %#x, want 0x01 (bank 0 rewrite)", got)
	}
}

func TestMBC1RamEnable(t *testing.T) {
	rom := buildTestRom(RomBankSize*2, byte(TypeMBC1Ram), 0x00, 0x02, "X")
	c, err := New(rom)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if got := c.ReadRAM(0); got != 0xFF {
		t.Errorf("disabled RAM read = %#x, want 0xFF", got)
	}
	c.WriteROM(0x0000, 0x0A)
	c.WriteRAM(0, 0x42)
	if got := c.ReadRAM(0); got != 0x42 {
		t.Errorf("enabled RAM read = %#x, want 0x42", got)
	}
	c.WriteROM(0x0000, 0x00)
	if got := c.ReadRAM(0); got != 0xFF {
		t.Errorf("re-disabled RAM read = %#x, want 0xFF", got)
	}
}

func TestMBC1NeverSelectsRewriteBanks(t *testing.T) {
	rom := buildMBC1Rom(128)
	c, err := New(rom)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	m := c.(*mbc1)
	for reg := byte(0); reg < 32; reg++ {
		c.WriteROM(0x2000, reg)
		if m.romBank1 == 0x00 || m.romBank1 == 0x20 || m.romBank1 == 0x40 || m.romBank1 == 0x60 {
			t.Errorf("reg=%#x produced forbidden high-window bank %#x", reg, m.romBank1)
		}
	}
}

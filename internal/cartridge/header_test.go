package cartridge

import "testing"

func buildTestRom(size int, cartType byte, romSizeCode byte, ramSizeCode byte, title string) []byte {
	rom := make([]byte, size)
	copy(rom[titleStart:titleEnd+1], title)
	rom[cartridgeTypeOffset] = cartType
	rom[romSizeOffset] = romSizeCode
	rom[ramSizeOffset] = ramSizeCode

	var checksum byte
	for _, b := range rom[titleStart:headerChecksumOffs] {
		checksum = checksum - b - 1
	}
	rom[headerChecksumOffs] = checksum
	return rom
}

func TestParseHeaderNoMBC(t *testing.T) {
	rom := buildTestRom(32*1024, byte(TypeRomOnly), 0x00, 0x00, "TESTROM")
	h, err := ParseHeader(rom)
	if err != nil {
		t.Fatalf("ParseHeader: %v", err)
	}
	if h.Title != "TESTROM" {
		t.Errorf("Title = %q, want TESTROM", h.Title)
	}
	if h.RomBanks != 2 {
		t.Errorf("RomBanks = %d, want 2", h.RomBanks)
	}
	if h.RamBanks != 0 {
		t.Errorf("RamBanks = %d, want 0", h.RamBanks)
	}
	if !h.ChecksumPassed {
		t.Errorf("ChecksumPassed = false, want true")
	}
}

func TestParseHeaderUndersized(t *testing.T) {
	_, err := ParseHeader(make([]byte, 100))
	if err == nil {
		t.Fatal("expected error for undersized rom")
	}
}

func TestParseHeaderRomSizeTable(t *testing.T) {
	for code := byte(0); code <= 0x08; code++ {
		rom := buildTestRom(32*1024, byte(TypeRomOnly), code, 0x00, "X")
		h, err := ParseHeader(rom)
		if err != nil {
			t.Fatalf("code %#x: %v", code, err)
		}
		want := 2 << code
		if h.RomBanks != want {
			t.Errorf("code %#x: RomBanks = %d, want %d", code, h.RomBanks, want)
		}
	}
	rom := buildTestRom(32*1024, byte(TypeRomOnly), 0x09, 0x00, "X")
	if _, err := ParseHeader(rom); err == nil {
		t.Fatal("expected error for unrecognized rom size")
	}
}

func TestParseHeaderRamSizeTable(t *testing.T) {
	cases := map[byte]int{0x00: 0, 0x02: 1, 0x03: 4, 0x04: 16, 0x05: 8}
	for code, want := range cases {
		rom := buildTestRom(32*1024, byte(TypeRomOnly), 0x00, code, "X")
		h, err := ParseHeader(rom)
		if err != nil {
			t.Fatalf("code %#x: %v", code, err)
		}
		if h.RamBanks != want {
			t.Errorf("code %#x: RamBanks = %d, want %d", code, h.RamBanks, want)
		}
	}
}

func TestParseHeaderBadChecksum(t *testing.T) {
	rom := buildTestRom(32*1024, byte(TypeRomOnly), 0x00, 0x00, "TESTROM")
	rom[headerChecksumOffs] ^= 0xFF
	h, err := ParseHeader(rom)
	if err != nil {
		t.Fatalf("ParseHeader: %v", err)
	}
	if h.ChecksumPassed {
		t.Errorf("ChecksumPassed = true, want false")
	}
}

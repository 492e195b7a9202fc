package cartridge

import (
	"strings"

	"gbcore/internal/gberr"
)

const (
	minCartridgeSize    = 32 * 1024
	titleStart          = 0x0134
	titleEnd            = 0x0143
	cartridgeTypeOffset = 0x0147
	romSizeOffset       = 0x0148
	ramSizeOffset       = 0x0149
	headerChecksumOffs  = 0x014D
)

// Type enumerates the cartridge-type byte at header offset 0x147. Only
// RomOnly and MBC1 variants are implemented (§4.3); the rest are recognized
// for error-reporting purposes only.
type Type byte

const (
	TypeRomOnly                    Type = 0x00
	TypeMBC1                       Type = 0x01
	TypeMBC1Ram                    Type = 0x02
	TypeMBC1RamBattery             Type = 0x03
	TypeMBC2                       Type = 0x05
	TypeMBC2Battery                Type = 0x06
	TypeRomRam                     Type = 0x08
	TypeRomRamBattery              Type = 0x09
	TypeMMM01                      Type = 0x0B
	TypeMMM01Ram                   Type = 0x0C
	TypeMMM01RamBattery            Type = 0x0D
	TypeMBC3TimerBattery           Type = 0x0F
	TypeMBC3TimerRamBattery        Type = 0x10
	TypeMBC3                       Type = 0x11
	TypeMBC3Ram                    Type = 0x12
	TypeMBC3RamBattery             Type = 0x13
	TypeMBC5                       Type = 0x19
	TypeMBC5Ram                    Type = 0x1A
	TypeMBC5RamBattery             Type = 0x1B
	TypeMBC5Rumble                 Type = 0x1C
	TypeMBC5RumbleRam              Type = 0x1D
	TypeMBC5RumbleRamBattery       Type = 0x1E
	TypeMBC6                       Type = 0x20
	TypeMBC7SensorRumbleRamBattery Type = 0x22
	TypePocketCamera               Type = 0xFC
	TypeBandaiTama5                Type = 0xFD
	TypeHuC3                       Type = 0xFE
	TypeHuC1RamBattery             Type = 0xFF
)

var typeNames = map[Type]string{
	TypeRomOnly:                    "RomOnly",
	TypeMBC1:                       "MBC1",
	TypeMBC1Ram:                    "MBC1+RAM",
	TypeMBC1RamBattery:             "MBC1+RAM+BATTERY",
	TypeMBC2:                       "MBC2",
	TypeMBC2Battery:                "MBC2+BATTERY",
	TypeRomRam:                     "ROM+RAM",
	TypeRomRamBattery:              "ROM+RAM+BATTERY",
	TypeMMM01:                      "MMM01",
	TypeMMM01Ram:                   "MMM01+RAM",
	TypeMMM01RamBattery:            "MMM01+RAM+BATTERY",
	TypeMBC3TimerBattery:           "MBC3+TIMER+BATTERY",
	TypeMBC3TimerRamBattery:        "MBC3+TIMER+RAM+BATTERY",
	TypeMBC3:                       "MBC3",
	TypeMBC3Ram:                    "MBC3+RAM",
	TypeMBC3RamBattery:             "MBC3+RAM+BATTERY",
	TypeMBC5:                       "MBC5",
	TypeMBC5Ram:                    "MBC5+RAM",
	TypeMBC5RamBattery:             "MBC5+RAM+BATTERY",
	TypeMBC5Rumble:                 "MBC5+RUMBLE",
	TypeMBC5RumbleRam:              "MBC5+RUMBLE+RAM",
	TypeMBC5RumbleRamBattery:       "MBC5+RUMBLE+RAM+BATTERY",
	TypeMBC6:                       "MBC6",
	TypeMBC7SensorRumbleRamBattery: "MBC7+SENSOR+RUMBLE+RAM+BATTERY",
	TypePocketCamera:               "POCKET CAMERA",
	TypeBandaiTama5:                "BANDAI TAMA5",
	TypeHuC3:                       "HuC3",
	TypeHuC1RamBattery:             "HuC1+RAM+BATTERY",
}

// String returns a human-readable cartridge type name, used in error text
// and trace logging.
func (t Type) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return "UNKNOWN"
}

func parseType(code byte) (Type, error) {
	t := Type(code)
	if _, ok := typeNames[t]; !ok {
		return 0, &gberr.UnrecognizedCartridgeType{Code: code}
	}
	return t, nil
}

// ramBankTable maps header byte 0x149 to a RAM bank count.
var ramBankTable = map[byte]int{
	0x00: 0,
	0x02: 1,
	0x03: 4,
	0x04: 16,
	0x05: 8,
}

// Header holds the parsed, validated cartridge header.
type Header struct {
	Title           string
	CartridgeType   Type
	RomBanks        int
	RamBanks        int
	Checksum        byte
	ComputedCheck   byte
	ChecksumPassed  bool
}

// ParseHeader parses and validates the cartridge header embedded in rom.
func ParseHeader(rom []byte) (Header, error) {
	if len(rom) < minCartridgeSize {
		return Header{}, &gberr.RomUndersized{Expected: minCartridgeSize, Found: len(rom)}
	}

	var title strings.Builder
	for _, b := range rom[titleStart : titleEnd+1] {
		if b == 0 || b > 0x7F {
			break
		}
		title.WriteByte(b)
	}

	cartType, err := parseType(rom[cartridgeTypeOffset])
	if err != nil {
		return Header{}, err
	}

	romSizeCode := rom[romSizeOffset]
	if romSizeCode > 0x08 {
		return Header{}, &gberr.UnrecognizedRomSize{Code: romSizeCode}
	}
	romBanks := 2 << romSizeCode

	ramSizeCode := rom[ramSizeOffset]
	ramBanks, ok := ramBankTable[ramSizeCode]
	if !ok {
		return Header{}, &gberr.UnrecognizedRamSize{Code: ramSizeCode}
	}

	checksum := rom[headerChecksumOffs]
	var computed byte
	for _, b := range rom[titleStart:headerChecksumOffs] {
		computed = computed - b - 1
	}

	return Header{
		Title:          title.String(),
		CartridgeType:  cartType,
		RomBanks:       romBanks,
		RamBanks:       ramBanks,
		Checksum:       checksum,
		ComputedCheck:  computed,
		ChecksumPassed: checksum == computed,
	}, nil
}

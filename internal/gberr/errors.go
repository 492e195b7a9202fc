// Package gberr defines the load-time error taxonomy for cartridge and boot
// ROM parsing. Every error here is returned at construction time only: once
// an emulator session is running, no runtime path surfaces an error (§4.9).
package gberr

import "fmt"

// RomError is the sentinel type for every cartridge-load failure.
type RomError interface {
	error
	romError()
}

// RomUndersized means the ROM image was shorter than the minimum 32 KiB
// header-bearing size.
type RomUndersized struct {
	Expected, Found int
}

func (e *RomUndersized) Error() string {
	return fmt.Sprintf("rom undersized: expected at least %d bytes, found %d bytes", e.Expected, e.Found)
}
func (*RomUndersized) romError() {}

// RomSizeMismatch means the ROM's declared bank count disagrees with its
// actual length.
type RomSizeMismatch struct {
	Expected, Found int
}

func (e *RomSizeMismatch) Error() string {
	return fmt.Sprintf("rom size mismatch: expected %d bytes, found %d bytes", e.Expected, e.Found)
}
func (*RomSizeMismatch) romError() {}

// RomOversized means the ROM is larger than the declared MBC can map.
type RomOversized struct {
	CartridgeType string
	Found         int
}

func (e *RomOversized) Error() string {
	return fmt.Sprintf("rom oversized for cartridge type %s: found %d bytes", e.CartridgeType, e.Found)
}
func (*RomOversized) romError() {}

// UnrecognizedCartridgeType means header byte 0x147 did not match any known
// cartridge type code.
type UnrecognizedCartridgeType struct {
	Code byte
}

func (e *UnrecognizedCartridgeType) Error() string {
	return fmt.Sprintf("unrecognized cartridge type code $%02X", e.Code)
}
func (*UnrecognizedCartridgeType) romError() {}

// UnrecognizedRomSize means header byte 0x148 is out of the known 0x00-0x08 range.
type UnrecognizedRomSize struct {
	Code byte
}

func (e *UnrecognizedRomSize) Error() string {
	return fmt.Sprintf("unrecognized ROM size code $%02X", e.Code)
}
func (*UnrecognizedRomSize) romError() {}

// UnrecognizedRamSize means header byte 0x149 did not match the 5-entry table.
type UnrecognizedRamSize struct {
	Code byte
}

func (e *UnrecognizedRamSize) Error() string {
	return fmt.Sprintf("unrecognized RAM size code $%02X", e.Code)
}
func (*UnrecognizedRamSize) romError() {}

// UnsupportedCartridgeType means the cartridge type is recognized but has no
// MBC implementation (anything beyond ROM-only and MBC1).
type UnsupportedCartridgeType struct {
	CartridgeType string
}

func (e *UnsupportedCartridgeType) Error() string {
	return fmt.Sprintf("unsupported cartridge type: %s", e.CartridgeType)
}
func (*UnsupportedCartridgeType) romError() {}

// BootRomError is returned when the boot ROM image is not exactly 256 bytes.
type BootRomError struct {
	Expected, Found int
}

func (e *BootRomError) Error() string {
	return fmt.Sprintf("boot rom size mismatch: expected %d bytes, found %d bytes", e.Expected, e.Found)
}

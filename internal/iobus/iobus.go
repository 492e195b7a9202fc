// Package iobus implements the joypad register (P1/JOYP) and the serial
// transfer stub (SB/SC) that share the 0xFF00-0xFF02 I/O window (§4.4).
package iobus

import "gbcore/internal/bitops"

const (
	JoypadAddr = 0xFF00
	SBAddr     = 0xFF01
	SCAddr     = 0xFF02
)

// Button enumerates the eight physical inputs.
type Button int

const (
	Up Button = iota
	Down
	Left
	Right
	A
	B
	Start
	Select
)

// IOBus owns the joypad select latch, the button matrix, and the serial
// transfer registers. Serial bytes are recorded rather than transmitted
// anywhere, since there is no link-cable peer in this core (§6).
type IOBus struct {
	joy byte // only bits 4-5 are stored; the rest is computed on read.
	sb  byte
	sc  byte

	sentBytes       []byte
	remainingCycles int

	buttons [8]bool
}

func New() *IOBus { return &IOBus{} }

// Read returns the value of one of the three registers in this window.
func (io *IOBus) Read(addr uint16) byte {
	switch addr {
	case JoypadAddr:
		return io.computeJoy()
	case SBAddr:
		return io.sb
	case SCAddr:
		return io.sc
	default:
		panic("iobus: read from unmapped address")
	}
}

// Write updates one of the three registers in this window.
func (io *IOBus) Write(addr uint16, value byte) {
	switch addr {
	case JoypadAddr:
		io.joy = value & 0b0011_0000
	case SBAddr:
		io.sb = value
	case SCAddr:
		io.sc = value & 0b1000_0001
	default:
		panic("iobus: write to unmapped address")
	}
}

// computeJoy overlays the button-matrix bits onto the stored select bits.
// Bit 5 clear selects the action buttons (Start/Select/B/A); bit 4 clear
// selects the direction buttons (Down/Up/Left/Right). A set bit means
// "not pressed" per the matrix's active-low wiring.
func (io *IOBus) computeJoy() byte {
	value := io.joy
	switch {
	case !bitops.Bit(io.joy, 5):
		value = setBitIfNotPressed(value, 3, io.buttons[Start])
		value = setBitIfNotPressed(value, 2, io.buttons[Select])
		value = setBitIfNotPressed(value, 1, io.buttons[B])
		value = setBitIfNotPressed(value, 0, io.buttons[A])
	case !bitops.Bit(io.joy, 4):
		value = setBitIfNotPressed(value, 3, io.buttons[Down])
		value = setBitIfNotPressed(value, 2, io.buttons[Up])
		value = setBitIfNotPressed(value, 1, io.buttons[Left])
		value = setBitIfNotPressed(value, 0, io.buttons[Right])
	}
	return value
}

func setBitIfNotPressed(value byte, index uint, pressed bool) byte {
	if pressed {
		return bitops.ResetBit(value, index)
	}
	return bitops.SetBit(value, index)
}

// ButtonPressed marks a button as held down.
func (io *IOBus) ButtonPressed(b Button) { io.buttons[b] = true }

// ButtonReleased marks a button as released.
func (io *IOBus) ButtonReleased(b Button) { io.buttons[b] = false }

// Tick advances the serial transfer stub. A transfer is "in flight" only
// while SC == 0x81 (transfer-start, internal clock); after 4 cycles the
// pending byte is recorded and the transfer-start bit clears.
func (io *IOBus) Tick(cycles int) {
	if io.sc != 0x81 {
		return
	}
	io.remainingCycles += cycles
	if io.remainingCycles >= 4 {
		io.remainingCycles = 0
		io.transferByte()
	}
}

func (io *IOBus) transferByte() {
	io.sentBytes = append(io.sentBytes, io.sb)
	io.sb = 0
	io.sc = bitops.ResetBit(io.sc, 7)
}

// SentBytes returns the bytes transmitted over the serial stub so far.
func (io *IOBus) SentBytes() []byte { return append([]byte(nil), io.sentBytes...) }

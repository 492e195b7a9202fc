package interrupt

import "testing"

func TestWriteTruncatesToFiveBits(t *testing.T) {
	c := New()
	c.WriteIE(0xFF)
	if got := c.ReadIE(); got != meaningfulBits {
		t.Errorf("ReadIE() = %#02x, want %#02x", got, meaningfulBits)
	}
	c.WriteIF(0xFF)
	if got := c.ReadIF(); got != meaningfulBits {
		t.Errorf("ReadIF() = %#02x, want %#02x", got, meaningfulBits)
	}
}

func TestIfSetReset(t *testing.T) {
	c := New()
	c.IfSet(Timer)
	if got := c.ReadIF(); got != 1<<Timer.bit() {
		t.Errorf("ReadIF() after IfSet(Timer) = %#02x, want %#02x", got, 1<<Timer.bit())
	}
	c.IfReset(Timer)
	if got := c.ReadIF(); got != 0 {
		t.Errorf("ReadIF() after IfReset(Timer) = %#02x, want 0", got)
	}
}

func TestPriorityOrder(t *testing.T) {
	c := New()
	c.WriteIE(0b0001_1111)
	c.IfSet(Joypad)
	c.IfSet(Serial)
	c.IfSet(Timer)
	c.IfSet(VBlank)

	k, ok := c.PriorityInterrupt()
	if !ok || k != VBlank {
		t.Fatalf("PriorityInterrupt() = %v, %v, want VBlank, true", k, ok)
	}
	c.IfReset(VBlank)

	k, ok = c.PriorityInterrupt()
	if !ok || k != Timer {
		t.Fatalf("PriorityInterrupt() = %v, %v, want Timer, true", k, ok)
	}
}

func TestPriorityRespectsIE(t *testing.T) {
	c := New()
	c.IfSet(VBlank)
	c.IfSet(Timer)
	c.WriteIE(1 << Timer.bit()) // only Timer enabled

	k, ok := c.PriorityInterrupt()
	if !ok || k != Timer {
		t.Fatalf("PriorityInterrupt() = %v, %v, want Timer, true", k, ok)
	}
}

func TestPriorityNoneActive(t *testing.T) {
	c := New()
	c.WriteIE(0b0001_1111)
	if _, ok := c.PriorityInterrupt(); ok {
		t.Fatal("PriorityInterrupt() returned ok=true with no pending flags")
	}
}

func TestHandlerAddresses(t *testing.T) {
	cases := map[Kind]uint16{
		VBlank:  0x0040,
		LcdStat: 0x0048,
		Timer:   0x0050,
		Serial:  0x0058,
		Joypad:  0x0060,
	}
	for k, want := range cases {
		if got := k.HandlerAddress(); got != want {
			t.Errorf("%v.HandlerAddress() = %#04x, want %#04x", k, got, want)
		}
	}
}

package cpu

// Pure flag-arithmetic helpers (§4.2). These never touch memory; callers
// are responsible for reading/writing the operand register (which may be
// the (HL) virtual register and thus incur a memory access).

func halfCarryAdd(x, y byte) bool {
	return (((x & 0x0F) + (y & 0x0F)) & 0x10) == 0x10
}

func halfCarryAdc(x, y byte, c bool) bool {
	var carry byte
	if c {
		carry = 1
	}
	return (((x & 0x0F) + (y & 0x0F) + carry) & 0x10) == 0x10
}

func halfCarrySub(x, y byte) bool {
	return ((x&0x0F)-(y&0x0F))&0x10 == 0x10
}

func halfCarrySbc(x, y byte, c bool) bool {
	var carry byte
	if c {
		carry = 1
	}
	return (x & 0x0F) < (y&0x0F)+carry
}

func halfCarryAddWide(x, y uint16) bool {
	return (((x & 0x0FFF) + (y & 0x0FFF)) & 0x1000) == 0x1000
}

// add adds n to A, updating Z/H/C; N is reset by the caller's flag masks.
func (c *CPU) add(n byte) {
	a := c.regs.A
	hc := halfCarryAdd(a, n)
	result := a + n
	carry := result < a
	c.regs.A = result
	c.regs.SetFlag(FlagH, hc)
	c.regs.SetFlag(FlagC, carry)
	c.regs.SetFlag(FlagZ, result == 0)
}

func (c *CPU) adc(n byte) {
	a := c.regs.A
	oldCarry := c.regs.FlagSet(FlagC)
	hc := halfCarryAdc(a, n, oldCarry)
	r1 := a + n
	carry1 := r1 < a
	var add2 byte
	if oldCarry {
		add2 = 1
	}
	result := r1 + add2
	carry2 := result < r1
	c.regs.A = result
	c.regs.SetFlag(FlagH, hc)
	c.regs.SetFlag(FlagC, carry1 || carry2)
	c.regs.SetFlag(FlagZ, result == 0)
}

func (c *CPU) sub(n byte) {
	a := c.regs.A
	hc := halfCarrySub(a, n)
	result := a - n
	carry := a < n
	c.regs.A = result
	c.regs.SetFlag(FlagH, hc)
	c.regs.SetFlag(FlagC, carry)
	c.regs.SetFlag(FlagZ, result == 0)
}

func (c *CPU) sbc(n byte) {
	a := c.regs.A
	oldCarry := c.regs.FlagSet(FlagC)
	hc := halfCarrySbc(a, n, oldCarry)
	var sub2 byte
	if oldCarry {
		sub2 = 1
	}
	carry1 := a < n
	r1 := a - n
	carry2 := r1 < sub2
	result := r1 - sub2
	c.regs.A = result
	c.regs.SetFlag(FlagH, hc)
	c.regs.SetFlag(FlagC, carry1 || carry2)
	c.regs.SetFlag(FlagZ, result == 0)
}

func (c *CPU) and(n byte) {
	c.regs.A &= n
	c.regs.SetFlag(FlagZ, c.regs.A == 0)
}

func (c *CPU) xor(n byte) {
	c.regs.A ^= n
	c.regs.SetFlag(FlagZ, c.regs.A == 0)
}

func (c *CPU) or(n byte) {
	c.regs.A |= n
	c.regs.SetFlag(FlagZ, c.regs.A == 0)
}

// cp compares n against A without storing the result.
func (c *CPU) cp(n byte) {
	a := c.regs.A
	hc := halfCarrySub(a, n)
	result := a - n
	carry := a < n
	c.regs.SetFlag(FlagH, hc)
	c.regs.SetFlag(FlagC, carry)
	c.regs.SetFlag(FlagZ, result == 0)
}

func (c *CPU) addWide(lhs, rhs WideRegister) {
	x := c.wideRead(lhs)
	y := c.wideRead(rhs)
	hc := halfCarryAddWide(x, y)
	result := x + y
	carry := result < x
	c.wideWrite(lhs, result)
	c.regs.SetFlag(FlagH, hc)
	c.regs.SetFlag(FlagC, carry)
}

func (c *CPU) inc(r Register) {
	v := c.regRead(r)
	hc := halfCarryAdd(v, 1)
	v++
	c.regWrite(r, v)
	c.regs.SetFlag(FlagZ, v == 0)
	c.regs.SetFlag(FlagH, hc)
}

func (c *CPU) dec(r Register) {
	v := c.regRead(r)
	hc := halfCarrySub(v, 1)
	v--
	c.regWrite(r, v)
	c.regs.SetFlag(FlagZ, v == 0)
	c.regs.SetFlag(FlagH, hc)
}

func (c *CPU) incWide(w WideRegister) { c.wideWrite(w, c.wideRead(w)+1) }
func (c *CPU) decWide(w WideRegister) { c.wideWrite(w, c.wideRead(w)-1) }

func (c *CPU) rlc(r Register, zFlag bool) {
	v := c.regRead(r)
	carry := v&0x80 != 0
	v <<= 1
	if carry {
		v |= 0x01
	}
	c.regWrite(r, v)
	if zFlag {
		c.regs.SetFlag(FlagZ, v == 0)
	}
	c.regs.SetFlag(FlagC, carry)
}

func (c *CPU) rrc(r Register, zFlag bool) {
	v := c.regRead(r)
	carry := v&0x01 != 0
	v >>= 1
	if carry {
		v |= 0x80
	}
	c.regWrite(r, v)
	if zFlag {
		c.regs.SetFlag(FlagZ, v == 0)
	}
	c.regs.SetFlag(FlagC, carry)
}

func (c *CPU) rl(r Register, zFlag bool) {
	v := c.regRead(r)
	oldCarry := c.regs.FlagSet(FlagC)
	carry := v&0x80 != 0
	v <<= 1
	if oldCarry {
		v |= 0x01
	}
	c.regWrite(r, v)
	if zFlag {
		c.regs.SetFlag(FlagZ, v == 0)
	}
	c.regs.SetFlag(FlagC, carry)
}

func (c *CPU) rr(r Register, zFlag bool) {
	v := c.regRead(r)
	oldCarry := c.regs.FlagSet(FlagC)
	carry := v&0x01 != 0
	v >>= 1
	if oldCarry {
		v |= 0x80
	}
	c.regWrite(r, v)
	if zFlag {
		c.regs.SetFlag(FlagZ, v == 0)
	}
	c.regs.SetFlag(FlagC, carry)
}

func (c *CPU) sla(r Register) {
	v := c.regRead(r)
	carry := v&0x80 != 0
	v <<= 1
	c.regWrite(r, v)
	c.regs.SetFlag(FlagZ, v == 0)
	c.regs.SetFlag(FlagC, carry)
}

func (c *CPU) sra(r Register) {
	v := c.regRead(r)
	carry := v&0x01 != 0
	sign := v & 0x80
	v = v>>1 | sign
	c.regWrite(r, v)
	c.regs.SetFlag(FlagZ, v == 0)
	c.regs.SetFlag(FlagC, carry)
}

func (c *CPU) swap(r Register) {
	v := c.regRead(r)
	v = (v&0x0F)<<4 | (v >> 4)
	c.regWrite(r, v)
	c.regs.SetFlag(FlagZ, v == 0)
}

func (c *CPU) srl(r Register) {
	v := c.regRead(r)
	carry := v&0x01 != 0
	v >>= 1
	c.regWrite(r, v)
	c.regs.SetFlag(FlagZ, v == 0)
	c.regs.SetFlag(FlagC, carry)
}

func (c *CPU) bit(b byte, r Register) {
	v := c.regRead(r)
	c.regs.SetFlag(FlagZ, v&(1<<b) == 0)
	c.regs.SetFlag(FlagH, true)
}

func (c *CPU) res(b byte, r Register) {
	c.regWrite(r, c.regRead(r)&^(1<<b))
}

func (c *CPU) set(b byte, r Register) {
	c.regWrite(r, c.regRead(r)|(1<<b))
}

// addSPOffset adds the signed 8-bit offset to SP, updating H/C from the
// unsigned byte-wise addition of SP's low byte and the offset; it returns
// the resulting 16-bit value without storing it (callers decide the
// destination: SP itself for ADD SP,d8, or HL for LD HL,SP+d8).
func (c *CPU) addSPOffset(offset int8) uint16 {
	sp := c.regs.SP
	lo := byte(sp)
	unsignedOffset := byte(offset)

	hc := halfCarryAdd(lo, unsignedOffset)
	carry := lo+unsignedOffset < lo

	c.regs.SetFlag(FlagH, hc)
	c.regs.SetFlag(FlagC, carry)

	return uint16(int32(sp) + int32(offset))
}

// daa decimal-adjusts A after a BCD add/sub (§4.2).
func (c *CPU) daa() {
	a := c.regs.A
	if !c.regs.FlagSet(FlagN) {
		if c.regs.FlagSet(FlagC) || a > 0x99 {
			a += 0x60
			c.regs.SetFlag(FlagC, true)
		}
		if c.regs.FlagSet(FlagH) || a&0x0F > 0x09 {
			a += 0x06
		}
	} else {
		if c.regs.FlagSet(FlagC) {
			a -= 0x60
		}
		if c.regs.FlagSet(FlagH) {
			a -= 0x06
		}
	}
	c.regs.A = a
	c.regs.SetFlag(FlagZ, a == 0)
	c.regs.SetFlag(FlagH, false)
}

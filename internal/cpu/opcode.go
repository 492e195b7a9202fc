package cpu

// Register indexes the eight register-or-memory operand slots used by the
// canonical opcode encoding: {B,C,D,E,H,L,(HL),A}.
type Register byte

const (
	RegB Register = iota
	RegC
	RegD
	RegE
	RegH
	RegL
	RegHLInd
	RegA
)

// WideRegister indexes a 16-bit register. Two selection tables exist: rp
// (BC,DE,HL,SP) for arithmetic/load forms and rp2 (BC,DE,HL,AF) for
// push/pop forms.
type WideRegister byte

const (
	WideBC WideRegister = iota
	WideDE
	WideHL
	WideSP
	WideAF
)

func wideFromRP(p byte) WideRegister {
	return [4]WideRegister{WideBC, WideDE, WideHL, WideSP}[p&3]
}

func wideFromRP2(p byte) WideRegister {
	return [4]WideRegister{WideBC, WideDE, WideHL, WideAF}[p&3]
}

// FlagCondition indexes the four conditional-branch tests.
type FlagCondition byte

const (
	CondNZ FlagCondition = iota
	CondZ
	CondNC
	CondC
)

func flagConditionFromY(y byte) FlagCondition { return FlagCondition(y & 3) }

// decomposed holds the canonical x/y/z/p/q field split of an opcode byte:
// x = bits 7-6, y = bits 5-3, z = bits 2-0, p = y>>1, q = y&1.
type decomposed struct {
	x, y, z, p, q byte
}

func decomposeByte(b byte) decomposed {
	x := b >> 6
	y := (b >> 3) & 0b111
	z := b & 0b111
	return decomposed{x: x, y: y, z: z, p: y >> 1, q: y & 1}
}

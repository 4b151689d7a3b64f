package program

import (
	"fmt"
	"strings"
)

// Mnemonic identifies one instruction of the stack ISA.
type Mnemonic uint8

// The instruction set is closed. Adding a member requires a new case in every
// exhaustive switch over Mnemonic.
const (
	PUSH Mnemonic = iota
	PEEK
	POP
	DUP
	SWAP
	DROP
	CALL
	RET
	ADD
	SUB
	SUM
	MUL
	PROD
	DIV
	MOD
	SQRT
	BEQ
	BNEQ
	BGT
	BGE
	BLT
	BLE
	BEZ
	BNEZ
	JMP

	numMnemonics
)

// NoMnemonic marks errors that are not raised by an instruction, such as
// running past the last line.
const NoMnemonic Mnemonic = 0xFF

// ArgKind describes what an instruction expects as its second token.
type ArgKind uint8

const (
	// ArgNone means any argument is ignored.
	ArgNone ArgKind = iota
	// ArgTag is an optional free-form tag printed next to the value.
	ArgTag
	// ArgDecimal is a required decimal literal.
	ArgDecimal
	// ArgTarget is a required jump target, "=n" or ">label".
	ArgTarget
)

// InstInfo is the static description of one mnemonic.
type InstInfo struct {
	Mnemonic Mnemonic
	Name     string
	Arg      ArgKind
}

// ISA is a struct that represents an Instruction Set Architecture.
type ISA struct {
	// name of the ISA.
	isaName string
	// map from upper-case instruction name to its description.
	nameToInst map[string]InstInfo
	byMnemonic [numMnemonics]InstInfo
}

// NewISA creates an empty ISA.
func NewISA(name string) *ISA {
	return &ISA{
		isaName:    name,
		nameToInst: make(map[string]InstInfo),
	}
}

// Name returns the ISA name.
func (isa *ISA) Name() string {
	return isa.isaName
}

func (isa *ISA) registerNewInst(m Mnemonic, name string, arg ArgKind) {
	info := InstInfo{Mnemonic: m, Name: name, Arg: arg}
	isa.nameToInst[name] = info
	isa.byMnemonic[m] = info
}

// Lookup resolves an instruction name case-insensitively.
func (isa *ISA) Lookup(name string) (InstInfo, bool) {
	info, ok := isa.nameToInst[strings.ToUpper(name)]
	return info, ok
}

// Info returns the description of a mnemonic.
func (isa *ISA) Info(m Mnemonic) InstInfo {
	if m >= numMnemonics {
		panic(fmt.Sprintf("mnemonic %d out of range", m))
	}
	return isa.byMnemonic[m]
}

// Mnemonics lists every member of the ISA in declaration order.
func (isa *ISA) Mnemonics() []Mnemonic {
	out := make([]Mnemonic, 0, numMnemonics)
	for m := Mnemonic(0); m < numMnemonics; m++ {
		out = append(out, m)
	}
	return out
}

var defaultISA = newDefaultISA()

func newDefaultISA() *ISA {
	isa := NewISA("Decimal Stack ISA")

	isa.registerNewInst(PUSH, "PUSH", ArgDecimal)
	isa.registerNewInst(PEEK, "PEEK", ArgTag)
	isa.registerNewInst(POP, "POP", ArgTag)
	isa.registerNewInst(DUP, "DUP", ArgNone)
	isa.registerNewInst(SWAP, "SWAP", ArgNone)
	isa.registerNewInst(DROP, "DROP", ArgNone)

	isa.registerNewInst(CALL, "CALL", ArgTarget)
	isa.registerNewInst(RET, "RET", ArgNone)

	isa.registerNewInst(ADD, "ADD", ArgNone)
	isa.registerNewInst(SUB, "SUB", ArgNone)
	isa.registerNewInst(SUM, "SUM", ArgNone)
	isa.registerNewInst(MUL, "MUL", ArgNone)
	isa.registerNewInst(PROD, "PROD", ArgNone)
	isa.registerNewInst(DIV, "DIV", ArgNone)
	isa.registerNewInst(MOD, "MOD", ArgNone)
	isa.registerNewInst(SQRT, "SQRT", ArgNone)

	isa.registerNewInst(BEQ, "BEQ", ArgTarget)
	isa.registerNewInst(BNEQ, "BNEQ", ArgTarget)
	isa.registerNewInst(BGT, "BGT", ArgTarget)
	isa.registerNewInst(BGE, "BGE", ArgTarget)
	isa.registerNewInst(BLT, "BLT", ArgTarget)
	isa.registerNewInst(BLE, "BLE", ArgTarget)
	isa.registerNewInst(BEZ, "BEZ", ArgTarget)
	isa.registerNewInst(BNEZ, "BNEZ", ArgTarget)
	isa.registerNewInst(JMP, "JMP", ArgTarget)

	return isa
}

// DefaultISA returns the instruction set understood by the interpreter.
func DefaultISA() *ISA {
	return defaultISA
}

// ParseMnemonic is a case-insensitive lookup in the default ISA.
func ParseMnemonic(s string) (Mnemonic, bool) {
	info, ok := defaultISA.Lookup(s)
	return info.Mnemonic, ok
}

func (m Mnemonic) String() string {
	if m == NoMnemonic {
		return "-"
	}
	if m >= numMnemonics {
		return fmt.Sprintf("Mnemonic(%d)", uint8(m))
	}
	return defaultISA.byMnemonic[m].Name
}

// Arg returns the argument kind of the mnemonic.
func (m Mnemonic) Arg() ArgKind {
	return defaultISA.Info(m).Arg
}

// IsBranch reports whether the mnemonic transfers control to a target.
func (m Mnemonic) IsBranch() bool {
	return m.Arg() == ArgTarget
}

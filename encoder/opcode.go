// Package encoder implements the opcode table, the two-pass assembler
// driver, and the bytecode encoder that turns a parsed parser.Program into
// a self-describing binary image.
package encoder

import (
	"strings"

	"github.com/rocky-lang/rocky/parser"
)

// Opcode is one of the 23 closed instruction codes. Any byte outside this
// range decodes to IGL; the table never grows at runtime.
type Opcode uint8

const (
	HLT  Opcode = 0  // halt, returns exit code 0
	LOAD Opcode = 1  // load $reg #imm|@label
	ADD  Opcode = 2  // add $a $b $dst
	SUB  Opcode = 3  // sub $a $b $dst
	MUL  Opcode = 4  // mul $a $b $dst
	DIV  Opcode = 5  // div $a $b $dst; also sets remainder
	JMP  Opcode = 6  // jmp $reg        (absolute: HEADER_LEN + code_offset + reg)
	JMPF Opcode = 7  // jmpf $reg       (relative forward from current pc)
	JMPB Opcode = 8  // jmpb $reg       (relative backward from current pc)
	EQ   Opcode = 9  // eq $a $b
	NEQ  Opcode = 10 // neq $a $b
	GT   Opcode = 11 // gt $a $b
	LT   Opcode = 12 // lt $a $b
	GTQ  Opcode = 13 // gtq $a $b
	LTQ  Opcode = 14 // ltq $a $b
	JEQ  Opcode = 15 // jeq $reg        (conditional absolute jump on equal_flag)
	ALOC Opcode = 16 // aloc $reg       (grow heap by $reg zero bytes)
	PRTS Opcode = 17 // prts #heap_index|@label
	SLP  Opcode = 18 // slp $reg        (sleep milliseconds)
	SLPS Opcode = 19 // slps $reg       (sleep seconds)
	ASKI Opcode = 20 // aski #heap_index|@label
	ASKS Opcode = 21 // asks #heap_index|@label
	GRPS Opcode = 22 // grps #a #b #dst (heap descriptor indices, byte-sized)

	// IGL is the catch-all decoding of any byte outside 0..22. It is never
	// itself a valid mnemonic.
	IGL Opcode = 0xFF
)

var opcodeNames = map[Opcode]string{
	HLT:  "hlt",
	LOAD: "load",
	ADD:  "add",
	SUB:  "sub",
	MUL:  "mul",
	DIV:  "div",
	JMP:  "jmp",
	JMPF: "jmpf",
	JMPB: "jmpb",
	EQ:   "eq",
	NEQ:  "neq",
	GT:   "gt",
	LT:   "lt",
	GTQ:  "gtq",
	LTQ:  "ltq",
	JEQ:  "jeq",
	ALOC: "aloc",
	PRTS: "prts",
	SLP:  "slp",
	SLPS: "slps",
	ASKI: "aski",
	ASKS: "asks",
	GRPS: "grps",
}

var mnemonicToOpcode map[string]Opcode

func init() {
	mnemonicToOpcode = make(map[string]Opcode, len(opcodeNames))
	names := make([]string, 0, len(opcodeNames))
	for op, name := range opcodeNames {
		mnemonicToOpcode[name] = op
		names = append(names, name)
	}
	parser.RegisterOpcodeNames(names)
}

func (op Opcode) String() string {
	if name, ok := opcodeNames[op]; ok {
		return name
	}
	return "igl"
}

// OpcodeFromMnemonic resolves a lowercase mnemonic to its Opcode. Unknown
// mnemonics resolve to IGL — they still occupy a decodable 4-byte slot,
// they just aren't one the VM will execute: every byte decodes to
// something, and outside the table that's always IGL.
func OpcodeFromMnemonic(name string) Opcode {
	if op, ok := mnemonicToOpcode[strings.ToLower(name)]; ok {
		return op
	}
	return IGL
}

// DecodeOpcode maps a raw byte back to an Opcode, returning IGL for
// anything outside the closed table.
func DecodeOpcode(b byte) Opcode {
	op := Opcode(b)
	if _, ok := opcodeNames[op]; ok {
		return op
	}
	return IGL
}

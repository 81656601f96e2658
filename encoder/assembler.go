package encoder

import (
	"encoding/binary"

	"github.com/rocky-lang/rocky/parser"
)

// Assembler runs the two fixed passes over a parser.Program and produces a
// finished binary image. Pass 1 opens sections, populates the heap as
// data/rodata declarations are walked, and declares labels; pass 2 emits
// bytecode. Code labels are declared but never assigned a code address in
// this variant — control-flow opcodes take their target from a register,
// not a label — so a label used where a register is expected is rejected
// the same as any other operand-kind mismatch.
type Assembler struct {
	Symbols *parser.SymbolTable
	Heap    *MemoryHeap
	errs    parser.ErrorList
}

// NewAssembler returns an assembler ready to run both passes.
func NewAssembler() *Assembler {
	return &Assembler{
		Symbols: parser.NewSymbolTable(),
		Heap:    NewMemoryHeap(),
	}
}

// Assemble runs both passes and, if neither accumulated any fatal error,
// builds the final image. Assembly fails atomically: any error recorded in
// either pass means no image is built at all.
func (a *Assembler) Assemble(prog *parser.Program) ([]byte, error) {
	a.runPass1(prog)
	if a.errs.HasErrors() {
		return nil, &a.errs
	}

	code := a.runPass2(prog)
	if a.errs.HasErrors() {
		return nil, &a.errs
	}

	return BuildImage(a.Heap, code)
}

// Errors returns the accumulated error list, for callers that want
// diagnostics even after a failed assemble.
func (a *Assembler) Errors() *parser.ErrorList {
	return &a.errs
}

// runPass1 walks the program once, opening sections, populating the heap
// for data/rodata declarations, and declaring every label.
func (a *Assembler) runPass1(prog *parser.Program) {
	section := parser.SectionUnknown
	seenSections := map[parser.Section]bool{}
	seenData := false

	for _, inst := range prog.Instructions {
		// A labelled line is an error before any section header, whether
		// the line is a directive or a code instruction; an unlabelled
		// section header is exactly what establishes the section, so it is
		// exempt.
		if section == parser.SectionUnknown && (inst.IsLabel() || !inst.IsDirective()) {
			a.errs.AddError(parser.ErrNoSegmentDeclarationFound, inst.Pos, "instruction found before any section declaration")
		}

		if inst.IsDirective() {
			a.processDirective(inst, &section, seenSections, &seenData)
			continue
		}

		if section == parser.SectionUnknown {
			continue
		}

		// Code labels are declared for completeness (xref, duplicate
		// detection) but carry no resolved address: this opcode table's
		// branch instructions all take their target from a register, never
		// from a label.
		if inst.IsLabel() {
			if err := a.Symbols.Declare(inst.LabelName(), 0); err != nil {
				a.errs.AddError(parser.ErrSymbolAlreadyDeclared, inst.Pos, "%v", err)
			}
		}
	}

	if len(seenSections) < 2 {
		a.errs.AddError(parser.ErrInsufficientSections, parser.Position{}, "fewer than two sections declared")
	}
}

func (a *Assembler) processDirective(inst *parser.Instruction, section *parser.Section, seenSections map[parser.Section]bool, seenData *bool) {
	name := inst.DirectiveName()

	switch name {
	case "data", "rodata", "code":
		a.processSectionHeader(inst, name, section, seenSections, seenData)
	case "str":
		a.processStringDirective(inst)
	case "int":
		a.processIntDirective(inst)
	default:
		a.errs.AddError(parser.ErrUnknownDirectiveFound, inst.Pos, "unknown directive %q", name)
	}
}

// processSectionHeader switches the active section. A rodata header that
// follows a data header is a non-fatal diagnostic, not an assembly error —
// the ordering is discouraged, not forbidden outright.
func (a *Assembler) processSectionHeader(inst *parser.Instruction, name string, section *parser.Section, seenSections map[parser.Section]bool, seenData *bool) {
	sect := parser.SectionFromName(name)
	if sect == parser.SectionReadOnlyData && *seenData {
		a.errs.AddDiagnostic(inst.Pos, "rodata section declared after data section")
	}
	if sect == parser.SectionData {
		*seenData = true
	}
	seenSections[sect] = true
	*section = sect
}

func (a *Assembler) processStringDirective(inst *parser.Instruction) {
	if !inst.IsLabel() {
		a.errs.AddError(parser.ErrStringConstantDeclaredWithoutLabel, inst.Pos, ".str directive requires a label")
		return
	}
	if inst.Operand1 == nil || inst.Operand1.Kind != parser.TokenString {
		a.errs.AddError(parser.ErrInvalidOperand, inst.Pos, ".str requires a string operand")
		return
	}

	// Blob length matches the literal exactly: no padding, no null
	// terminator. `.str 'Hello'` yields a 5-byte heap descriptor, not a
	// fixed-size slot.
	index := a.Heap.Add([]byte(inst.Operand1.Text))
	if err := a.declareOrUpdate(inst.LabelName(), index, inst.Pos); err != nil {
		a.errs.AddError(parser.ErrSymbolAlreadyDeclared, inst.Pos, "%v", err)
	}
}

func (a *Assembler) processIntDirective(inst *parser.Instruction) {
	if !inst.IsLabel() {
		a.errs.AddError(parser.ErrStringConstantDeclaredWithoutLabel, inst.Pos, ".int directive requires a label")
		return
	}
	if inst.Operand1 == nil || inst.Operand1.Kind != parser.TokenInteger {
		a.errs.AddError(parser.ErrInvalidOperand, inst.Pos, ".int requires an integer operand")
		return
	}

	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], uint32(inst.Operand1.Value))
	index := a.Heap.Add(buf[:])
	if err := a.declareOrUpdate(inst.LabelName(), index, inst.Pos); err != nil {
		a.errs.AddError(parser.ErrSymbolAlreadyDeclared, inst.Pos, "%v", err)
	}
}

// declareOrUpdate binds a data symbol to a heap descriptor index: a name not
// yet in the table is declared here, on first sight of its directive —
// unlike code labels, which runPass1's main loop declares with index 0 — and
// a name already in the table has its index overwritten.
func (a *Assembler) declareOrUpdate(name string, index uint32, pos parser.Position) error {
	if a.Symbols.Has(name) {
		return a.Symbols.SetIndex(name, index)
	}
	return a.Symbols.Declare(name, index)
}

// runPass2 re-walks the program, emitting one fixed 4-byte instruction per
// opcode line. Label declarations themselves produce no bytes.
func (a *Assembler) runPass2(prog *parser.Program) []byte {
	var code []byte

	for _, inst := range prog.Instructions {
		if !inst.IsOpcode() {
			continue
		}
		op := OpcodeFromMnemonic(inst.Opcode.Name)
		operandBytes := a.encodeOperands(op, inst)
		code = append(code, EncodeInstruction(op, operandBytes...)...)
	}
	return code
}

// AssembleLine assembles a single instruction against this assembler's
// persistent symbol table and heap, skipping the section bookkeeping
// runPass1 needs across a whole program. Intended for the REPL shell,
// which feeds one line at a time to a long-lived VM and never sees a
// ".data"/".code" pair. A directive line returns no bytes; an opcode line
// returns its encoded 4-byte instruction.
func (a *Assembler) AssembleLine(inst *parser.Instruction) ([]byte, error) {
	a.errs = parser.ErrorList{}

	if inst.IsDirective() {
		a.processDirective(inst, new(parser.Section), map[parser.Section]bool{}, new(bool))
		if a.errs.HasErrors() {
			return nil, &a.errs
		}
		return nil, nil
	}

	if inst.IsLabel() {
		if err := a.Symbols.Declare(inst.LabelName(), 0); err != nil {
			a.errs.AddError(parser.ErrSymbolAlreadyDeclared, inst.Pos, "%v", err)
			return nil, &a.errs
		}
	}

	if !inst.IsOpcode() {
		return nil, nil
	}

	op := OpcodeFromMnemonic(inst.Opcode.Name)
	operandBytes := a.encodeOperands(op, inst)
	if a.errs.HasErrors() {
		return nil, &a.errs
	}
	return EncodeInstruction(op, operandBytes...), nil
}

func (a *Assembler) encodeOperands(op Opcode, inst *parser.Instruction) []byte {
	operands := inst.Operands()

	switch op {
	case HLT:
		return nil
	case JMP, JMPF, JMPB, JEQ, ALOC, SLP, SLPS:
		return a.encodeRegisterOperand(operands[0], inst.Pos)
	case LOAD:
		reg := a.encodeRegisterOperand(operands[0], inst.Pos)
		imm := a.encodeHeapOrImmediateOperand(operands[1], inst.Pos)
		return append(reg, imm...)
	case PRTS, ASKI, ASKS:
		return a.encodeHeapOrImmediateOperand(operands[0], inst.Pos)
	case EQ, NEQ, GT, LT, GTQ, LTQ:
		a1 := a.encodeRegisterOperand(operands[0], inst.Pos)
		a2 := a.encodeRegisterOperand(operands[1], inst.Pos)
		return append(a1, a2...)
	case ADD, SUB, MUL, DIV:
		a1 := a.encodeRegisterOperand(operands[0], inst.Pos)
		a2 := a.encodeRegisterOperand(operands[1], inst.Pos)
		a3 := a.encodeRegisterOperand(operands[2], inst.Pos)
		return append(append(a1, a2...), a3...)
	case GRPS:
		// Three heap descriptor indices must fit in the instruction's three
		// operand bytes, so unlike every other heap-index operand these are
		// single bytes rather than 16-bit immediates; see DESIGN.md.
		a1 := a.encodeHeapIndexByte(operands[0], inst.Pos)
		a2 := a.encodeHeapIndexByte(operands[1], inst.Pos)
		a3 := a.encodeHeapIndexByte(operands[2], inst.Pos)
		return []byte{a1, a2, a3}
	default:
		// Unknown mnemonics already resolved to IGL by OpcodeFromMnemonic;
		// IGL still occupies a full 4-byte slot, with its operands dropped
		// and all three operand bytes zero.
		return nil
	}
}

func (a *Assembler) encodeRegisterOperand(tok *parser.Token, pos parser.Position) []byte {
	if tok == nil || tok.Kind != parser.TokenRegister {
		a.errs.AddError(parser.ErrInvalidOperand, pos, "expected register operand")
		return []byte{0}
	}
	return EncodeRegister(tok.Register)
}

// encodeHeapOrImmediateOperand resolves an "I" operand: either a literal
// integer or a label use resolved to its data symbol's heap descriptor
// index, encoded as a 2-byte big-endian immediate either way.
func (a *Assembler) encodeHeapOrImmediateOperand(tok *parser.Token, pos parser.Position) []byte {
	if tok == nil {
		a.errs.AddError(parser.ErrInvalidOperand, pos, "expected operand")
		return []byte{0, 0}
	}

	switch tok.Kind {
	case parser.TokenInteger:
		return EncodeImmediate(uint16(tok.Value))
	case parser.TokenLabelUse:
		sym, ok := a.Symbols.Lookup(tok.Name)
		if !ok {
			a.errs.AddError(parser.ErrInvalidOperand, pos, "undefined label %q", tok.Name)
			return []byte{0, 0}
		}
		return EncodeImmediate(uint16(sym.Index))
	default:
		a.errs.AddError(parser.ErrInvalidOperand, pos, "expected integer or label operand, got %s", tok.Kind)
		return []byte{0, 0}
	}
}

func (a *Assembler) encodeHeapIndexByte(tok *parser.Token, pos parser.Position) byte {
	if tok == nil {
		a.errs.AddError(parser.ErrInvalidOperand, pos, "expected heap index operand")
		return 0
	}

	switch tok.Kind {
	case parser.TokenInteger:
		return byte(tok.Value)
	case parser.TokenLabelUse:
		sym, ok := a.Symbols.Lookup(tok.Name)
		if !ok {
			a.errs.AddError(parser.ErrInvalidOperand, pos, "undefined label %q", tok.Name)
			return 0
		}
		return byte(sym.Index)
	default:
		a.errs.AddError(parser.ErrInvalidOperand, pos, "expected integer or label operand, got %s", tok.Kind)
		return 0
	}
}

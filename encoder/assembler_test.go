package encoder

import (
	"testing"

	"github.com/rocky-lang/rocky/parser"
)

func mustParse(t *testing.T, source string) *parser.Program {
	t.Helper()
	prog, err := parser.NewParser(source, "t.rk").ParseProgram()
	if err != nil {
		t.Fatalf("ParseProgram failed: %v", err)
	}
	return prog
}

func TestAssembleWorkedExample(t *testing.T) {
	source := ".rodata\ntest1: .str 'Hello'\n.code\nhlt\n"
	prog := mustParse(t, source)

	asm := NewAssembler()
	image, err := asm.Assemble(prog)
	if err != nil {
		t.Fatalf("Assemble failed: %v", err)
	}

	heapHeader, heapBody, code, err := SplitImage(image)
	if err != nil {
		t.Fatalf("SplitImage failed: %v", err)
	}
	if string(heapBody) != "Hello" {
		t.Errorf("expected heap body %q, got %q", "Hello", heapBody)
	}
	descs := ParseHeapHeader(heapHeader)
	if len(descs) != 1 || descs[0].Offset != 0 || descs[0].Length != 5 {
		t.Errorf("expected one descriptor {0,5}, got %+v", descs)
	}
	if len(code) != 4 || code[0] != byte(HLT) {
		t.Errorf("expected a single 4-byte HLT instruction, got %v", code)
	}
}

func TestAssembleRodataAfterDataIsDiagnosticNotError(t *testing.T) {
	prog := mustParse(t, ".data\na: .str 'x'\n.rodata\nb: .str 'y'\n.code\nhlt\n")
	asm := NewAssembler()
	_, err := asm.Assemble(prog)
	if err != nil {
		t.Fatalf("expected rodata-after-data to assemble successfully, got error: %v", err)
	}
	if len(asm.Errors().Diagnostics) == 0 {
		t.Error("expected a diagnostic for rodata declared after data")
	}
}

func TestAssembleRejectsFewerThanTwoSections(t *testing.T) {
	prog := mustParse(t, ".code\nhlt\n")
	_, err := NewAssembler().Assemble(prog)
	if err == nil {
		t.Fatal("expected an error for a program with only one section")
	}
}

func TestAssembleRejectsLabelledDirectiveBeforeAnySection(t *testing.T) {
	prog := mustParse(t, "test1: .str 'Hello'\n.code\nhlt\n")
	_, err := NewAssembler().Assemble(prog)
	if !hasErrorKind(err, parser.ErrNoSegmentDeclarationFound) {
		t.Fatalf("expected ErrNoSegmentDeclarationFound for a labelled directive before any section, got %v", err)
	}
}

func TestAssembleRejectsLabelledInstructionBeforeAnySection(t *testing.T) {
	prog := mustParse(t, "start: hlt\n.data\nx: .int #1\n.code\nhlt\n")
	_, err := NewAssembler().Assemble(prog)
	if !hasErrorKind(err, parser.ErrNoSegmentDeclarationFound) {
		t.Fatalf("expected ErrNoSegmentDeclarationFound for a labelled instruction before any section, got %v", err)
	}
}

func hasErrorKind(err error, kind parser.ErrorKind) bool {
	list, ok := err.(*parser.ErrorList)
	if !ok {
		return false
	}
	for _, e := range list.Errors {
		if e.Kind == kind {
			return true
		}
	}
	return false
}

func TestAssembleRejectsStringDirectiveWithoutLabel(t *testing.T) {
	prog := mustParse(t, ".data\n.str 'oops'\n.code\nhlt\n")
	_, err := NewAssembler().Assemble(prog)
	if err == nil {
		t.Fatal("expected an error for a .str directive with no label")
	}
}

func TestAssembleRejectsUnknownDirective(t *testing.T) {
	prog := mustParse(t, ".data\n.bogus\n.code\nhlt\n")
	_, err := NewAssembler().Assemble(prog)
	if err == nil {
		t.Fatal("expected an error for an unknown directive")
	}
}

func TestAssembleResolvesLabelToHeapIndex(t *testing.T) {
	prog := mustParse(t, ".data\nmsg: .str 'Hi'\n.code\nload $0 @msg\nprts @msg\nhlt\n")
	asm := NewAssembler()
	image, err := asm.Assemble(prog)
	if err != nil {
		t.Fatalf("Assemble failed: %v", err)
	}
	_, _, code, err := SplitImage(image)
	if err != nil {
		t.Fatalf("SplitImage failed: %v", err)
	}
	// load $0 #0 (the label resolves to descriptor index 0)
	if code[0] != byte(LOAD) || code[1] != 0 || code[2] != 0 || code[3] != 0 {
		t.Errorf("expected load $0 #0, got %v", code[:4])
	}
}

func TestAssembleThreeOperandArithmetic(t *testing.T) {
	prog := mustParse(t, ".data\nx: .int #1\n.code\nadd $0 $1 $2\nhlt\n")
	asm := NewAssembler()
	image, err := asm.Assemble(prog)
	if err != nil {
		t.Fatalf("Assemble failed: %v", err)
	}
	_, _, code, err := SplitImage(image)
	if err != nil {
		t.Fatalf("SplitImage failed: %v", err)
	}
	if code[0] != byte(ADD) || code[1] != 0 || code[2] != 1 || code[3] != 2 {
		t.Errorf("expected add $0 $1 $2, got %v", code[:4])
	}
}

func TestAssembleGRPSUsesSingleByteHeapIndices(t *testing.T) {
	prog := mustParse(t, ".data\na: .str 'x'\nb: .str 'y'\nc: .str 'z'\n.code\ngrps @a @b @c\nhlt\n")
	asm := NewAssembler()
	image, err := asm.Assemble(prog)
	if err != nil {
		t.Fatalf("Assemble failed: %v", err)
	}
	_, _, code, err := SplitImage(image)
	if err != nil {
		t.Fatalf("SplitImage failed: %v", err)
	}
	if code[0] != byte(GRPS) || code[1] != 0 || code[2] != 1 || code[3] != 2 {
		t.Errorf("expected grps #0 #1 #2, got %v", code[:4])
	}
}

func TestAssembleRejectsUndefinedLabel(t *testing.T) {
	prog := mustParse(t, ".data\nx: .int #1\n.code\nload $0 @nope\nhlt\n")
	_, err := NewAssembler().Assemble(prog)
	if err == nil {
		t.Fatal("expected an error referencing an undefined label")
	}
}

func TestAssembleRejectsRegisterTypeMismatch(t *testing.T) {
	prog := mustParse(t, ".data\nx: .int #1\n.code\nadd #1 $1 $2\nhlt\n")
	_, err := NewAssembler().Assemble(prog)
	if err == nil {
		t.Fatal("expected an error using an integer where a register operand is required")
	}
}

func TestAssembleLineEncodesSingleInstruction(t *testing.T) {
	inst := mustParse(t, "load $0 #42\n").Instructions[0]
	asm := NewAssembler()
	code, err := asm.AssembleLine(inst)
	if err != nil {
		t.Fatalf("AssembleLine failed: %v", err)
	}
	want := EncodeInstruction(LOAD, 0, 0, 42)
	if string(code) != string(want) {
		t.Errorf("AssembleLine(load $0 #42) = %v, want %v", code, want)
	}
}

func TestAssembleLineDirectiveProducesNoBytesButUpdatesHeap(t *testing.T) {
	inst := mustParse(t, "msg: .str 'hi'\n").Instructions[0]
	asm := NewAssembler()
	code, err := asm.AssembleLine(inst)
	if err != nil {
		t.Fatalf("AssembleLine failed: %v", err)
	}
	if code != nil {
		t.Errorf("expected a directive line to produce no code, got %v", code)
	}
	sym, ok := asm.Symbols.Lookup("msg")
	if !ok {
		t.Fatal("expected 'msg' to be declared in the symbol table")
	}
	slice, err := asm.Heap.GetSlice(sym.Index)
	if err != nil {
		t.Fatalf("GetSlice failed: %v", err)
	}
	if string(slice) != "hi" {
		t.Errorf("expected heap blob %q, got %q", "hi", slice)
	}
}

func TestAssembleLineRejectsDuplicateLabel(t *testing.T) {
	asm := NewAssembler()
	first := mustParse(t, "start: hlt\n").Instructions[0]
	if _, err := asm.AssembleLine(first); err != nil {
		t.Fatalf("first AssembleLine failed: %v", err)
	}
	second := mustParse(t, "start: hlt\n").Instructions[0]
	if _, err := asm.AssembleLine(second); err == nil {
		t.Fatal("expected an error redeclaring 'start'")
	}
}

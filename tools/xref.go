package tools

import (
	"fmt"
	"strings"

	"github.com/rocky-lang/rocky/encoder"
	"github.com/rocky-lang/rocky/parser"
)

// Xref renders a cross-reference listing of every symbol in the table, in
// declaration order, with its resolved index.
func Xref(symbols *parser.SymbolTable) string {
	var sb strings.Builder

	sb.WriteString("Symbol Cross-Reference\n")
	sb.WriteString("=======================\n\n")

	for i, sym := range symbols.All() {
		sb.WriteString(fmt.Sprintf("%3d  %-24s index=%d\n", i, sym.Name, sym.Index))
	}

	sb.WriteString(fmt.Sprintf("\n%d symbol(s)\n", len(symbols.All())))
	return sb.String()
}

// XrefSource parses and assembles source far enough to populate a symbol
// table, then renders its cross-reference. The symbol table pass 1 builds
// is returned even when pass 2 or image assembly subsequently fails, so a
// caller can still inspect what got declared.
func XrefSource(source, filename string) (string, error) {
	prog, err := parser.NewParser(source, filename).ParseProgram()
	if err != nil {
		return "", fmt.Errorf("tools: parsing %s: %w", filename, err)
	}

	asm := encoder.NewAssembler()
	_, _ = asm.Assemble(prog)
	return Xref(asm.Symbols), nil
}

package tools

import (
	"fmt"
	"strings"

	"github.com/rocky-lang/rocky/parser"
)

// FormatOptions controls the formatter's column layout.
type FormatOptions struct {
	InstructionColumn int
	OperandColumn     int
	AlignOperands     bool
}

// DefaultFormatOptions places mnemonics and directives at column 8 and
// operands at column 16, padded with spaces; operands are separated by a
// single space, the only separator the parser accepts.
func DefaultFormatOptions() *FormatOptions {
	return &FormatOptions{
		InstructionColumn: 8,
		OperandColumn:     16,
		AlignOperands:     true,
	}
}

// Formatter re-renders a parsed Program back to canonical source text.
type Formatter struct {
	options *FormatOptions
}

// NewFormatter returns a formatter using options, or DefaultFormatOptions
// if nil.
func NewFormatter(options *FormatOptions) *Formatter {
	if options == nil {
		options = DefaultFormatOptions()
	}
	return &Formatter{options: options}
}

// Format re-renders prog as source text. Re-parsing the result and
// re-formatting it again must be a no-op (formatter idempotence).
func (f *Formatter) Format(prog *parser.Program) string {
	var out strings.Builder
	for _, inst := range prog.Instructions {
		f.formatLine(&out, inst)
	}
	return out.String()
}

func (f *Formatter) formatLine(out *strings.Builder, inst *parser.Instruction) {
	var line strings.Builder

	if inst.IsLabel() {
		line.WriteString(inst.LabelName())
		line.WriteString(":")
		if inst.IsOpcode() || inst.IsDirective() {
			f.padToColumn(&line, f.options.InstructionColumn)
		}
	} else if inst.IsOpcode() || inst.IsDirective() {
		f.padToColumn(&line, f.options.InstructionColumn)
	}

	switch {
	case inst.IsOpcode():
		line.WriteString(inst.Opcode.Name)
		f.writeOperands(&line, inst)
	case inst.IsDirective():
		line.WriteString(".")
		line.WriteString(inst.DirectiveName())
		f.writeOperands(&line, inst)
	}

	out.WriteString(strings.TrimRight(line.String(), " "))
	out.WriteString("\n")
}

func (f *Formatter) writeOperands(line *strings.Builder, inst *parser.Instruction) {
	operands := inst.Operands()
	var parts []string
	for _, op := range operands {
		if op == nil {
			continue
		}
		parts = append(parts, op.String())
	}
	if len(parts) == 0 {
		return
	}

	if f.options.AlignOperands {
		f.padToColumn(line, f.options.OperandColumn)
	} else {
		line.WriteString(" ")
	}
	line.WriteString(strings.Join(parts, " "))
}

func (f *Formatter) padToColumn(sb *strings.Builder, column int) {
	current := sb.Len()
	switch {
	case current < column:
		sb.WriteString(strings.Repeat(" ", column-current))
	case current == column:
	default:
		sb.WriteString(" ")
	}
}

// Format is a convenience function using DefaultFormatOptions.
func Format(prog *parser.Program) string {
	return NewFormatter(DefaultFormatOptions()).Format(prog)
}

// FormatSource parses source, then formats it, surfacing any parse error.
func FormatSource(source, filename string) (string, error) {
	prog, err := parser.NewParser(source, filename).ParseProgram()
	if err != nil {
		return "", fmt.Errorf("tools: parsing %s: %w", filename, err)
	}
	return Format(prog), nil
}

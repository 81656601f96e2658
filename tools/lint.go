package tools

import (
	"fmt"
	"sort"

	"github.com/rocky-lang/rocky/parser"
)

// LintLevel is the severity of a lint finding.
type LintLevel int

const (
	LintError LintLevel = iota
	LintWarning
)

func (l LintLevel) String() string {
	switch l {
	case LintError:
		return "error"
	case LintWarning:
		return "warning"
	default:
		return "unknown"
	}
}

// LintIssue is a single static-analysis finding.
type LintIssue struct {
	Level   LintLevel
	Pos     parser.Position
	Message string
	Code    string
}

func (i *LintIssue) String() string {
	return fmt.Sprintf("%s: %s: %s [%s]", i.Pos, i.Level, i.Message, i.Code)
}

var knownDirectives = map[string]bool{
	"data": true, "rodata": true, "code": true, "str": true, "int": true,
}

// Lint runs static checks over a parsed program without assembling it:
// unknown directive names, rodata declared after data, and labels
// declared but never used as an operand anywhere in the program.
func Lint(prog *parser.Program) []*LintIssue {
	var issues []*LintIssue

	issues = append(issues, checkDirectives(prog)...)
	issues = append(issues, checkSectionOrder(prog)...)
	issues = append(issues, checkUnusedLabels(prog)...)

	sort.Slice(issues, func(i, j int) bool {
		if issues[i].Pos.Line == issues[j].Pos.Line {
			return issues[i].Pos.Column < issues[j].Pos.Column
		}
		return issues[i].Pos.Line < issues[j].Pos.Line
	})
	return issues
}

func checkDirectives(prog *parser.Program) []*LintIssue {
	var issues []*LintIssue
	for _, inst := range prog.Instructions {
		if !inst.IsDirective() {
			continue
		}
		if !knownDirectives[inst.DirectiveName()] {
			issues = append(issues, &LintIssue{
				Level:   LintError,
				Pos:     inst.Pos,
				Message: fmt.Sprintf("unknown directive %q", inst.DirectiveName()),
				Code:    "UNKNOWN_DIRECTIVE",
			})
		}
	}
	return issues
}

func checkSectionOrder(prog *parser.Program) []*LintIssue {
	var issues []*LintIssue
	seenData := false

	for _, inst := range prog.Instructions {
		if !inst.IsDirective() {
			continue
		}
		switch inst.DirectiveName() {
		case "data":
			seenData = true
		case "rodata":
			if seenData {
				issues = append(issues, &LintIssue{
					Level:   LintWarning,
					Pos:     inst.Pos,
					Message: "rodata section declared after data section",
					Code:    "RODATA_AFTER_DATA",
				})
			}
		}
	}
	return issues
}

// checkUnusedLabels warns about labels declared but never referenced by a
// label-use operand anywhere in the program. Code labels in this opcode
// table are never referenced this way (branch targets are registers, not
// labels), so a code label is always reported unused — this is expected
// and not itself a bug in the program being linted.
func checkUnusedLabels(prog *parser.Program) []*LintIssue {
	declared := map[string]parser.Position{}
	used := map[string]bool{}

	for _, inst := range prog.Instructions {
		if inst.IsLabel() {
			if _, dup := declared[inst.LabelName()]; dup {
				continue
			}
			declared[inst.LabelName()] = inst.Pos
		}
		for _, op := range inst.Operands() {
			if op != nil && op.Kind == parser.TokenLabelUse {
				used[op.Name] = true
			}
		}
	}

	var issues []*LintIssue
	for name, pos := range declared {
		if !used[name] {
			issues = append(issues, &LintIssue{
				Level:   LintWarning,
				Pos:     pos,
				Message: fmt.Sprintf("label %q declared but never used as an operand", name),
				Code:    "UNUSED_LABEL",
			})
		}
	}
	return issues
}

// LintSource parses source, then lints it, surfacing any parse error.
func LintSource(source, filename string) ([]*LintIssue, error) {
	prog, err := parser.NewParser(source, filename).ParseProgram()
	if err != nil {
		return nil, fmt.Errorf("tools: parsing %s: %w", filename, err)
	}
	return Lint(prog), nil
}

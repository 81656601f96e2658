package parser

import (
	"fmt"
	"strings"
)

// ErrorKind categorizes an assembly-time failure.
type ErrorKind int

const (
	ErrParse ErrorKind = iota
	ErrUnterminatedProgram
	ErrNoSegmentDeclarationFound
	ErrSymbolAlreadyDeclared
	ErrStringConstantDeclaredWithoutLabel
	ErrUnknownDirectiveFound
	ErrInsufficientSections
	ErrInvalidOperand
)

var errorKindNames = map[ErrorKind]string{
	ErrParse:                              "ParseError",
	ErrUnterminatedProgram:                "UnterminatedProgram",
	ErrNoSegmentDeclarationFound:          "NoSegmentDeclarationFound",
	ErrSymbolAlreadyDeclared:              "SymbolAlreadyDeclared",
	ErrStringConstantDeclaredWithoutLabel: "StringConstantDeclaredWithoutLabel",
	ErrUnknownDirectiveFound:              "UnknownDirectiveFound",
	ErrInsufficientSections:               "InsufficientSections",
	ErrInvalidOperand:                     "InvalidOperand",
}

func (k ErrorKind) String() string {
	if name, ok := errorKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// Error is a single assembly-time failure, tagged with its kind and the
// position it occurred at.
type Error struct {
	Kind    ErrorKind
	Pos     Position
	Message string
}

func (e *Error) Error() string {
	if (e.Pos == Position{}) {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("%s: %s: %s", e.Pos, e.Kind, e.Message)
}

func newError(kind ErrorKind, pos Position, format string, args ...any) *Error {
	return &Error{Kind: kind, Pos: pos, Message: fmt.Sprintf(format, args...)}
}

// Diagnostic is a non-fatal warning, such as a rodata section declared
// after a data section. Diagnostics never fail a pass.
type Diagnostic struct {
	Pos     Position
	Message string
}

func (d Diagnostic) String() string {
	if (d.Pos == Position{}) {
		return d.Message
	}
	return fmt.Sprintf("%s: %s", d.Pos, d.Message)
}

// ErrorList collects multiple errors and diagnostics across one assembly
// pass. Assembly fails atomically: if the list is non-empty at a pass
// boundary, no partial image is emitted.
type ErrorList struct {
	Errors      []*Error
	Diagnostics []Diagnostic
}

// AddError adds an error to the list.
func (el *ErrorList) AddError(kind ErrorKind, pos Position, format string, args ...any) {
	el.Errors = append(el.Errors, newError(kind, pos, format, args...))
}

// AddDiagnostic adds a non-fatal diagnostic to the list.
func (el *ErrorList) AddDiagnostic(pos Position, format string, args ...any) {
	el.Diagnostics = append(el.Diagnostics, Diagnostic{Pos: pos, Message: fmt.Sprintf(format, args...)})
}

// HasErrors reports whether any fatal error has been recorded.
func (el *ErrorList) HasErrors() bool {
	return len(el.Errors) > 0
}

// Error implements the error interface by rendering every accumulated
// error, one per line.
func (el *ErrorList) Error() string {
	var sb strings.Builder
	for _, e := range el.Errors {
		sb.WriteString(e.Error())
		sb.WriteByte('\n')
	}
	return sb.String()
}

package parser

import (
	"errors"
	"fmt"
)

var errUnterminated = errors.New(ErrUnterminatedProgram.String())

// Parser turns a token stream into a Program. It is a hand-rolled
// recursive-descent scanner: once a token boundary is crossed it is never
// revisited.
type Parser struct {
	lex    *Lexer
	peeked *Token
}

// NewParser creates a parser over source text tagged with filename for
// error positions.
func NewParser(source, filename string) *Parser {
	return &Parser{lex: NewLexer(source, filename)}
}

func (p *Parser) next() Token {
	if p.peeked != nil {
		t := *p.peeked
		p.peeked = nil
		return t
	}
	return p.lex.Next()
}

func (p *Parser) peek() Token {
	if p.peeked == nil {
		t := p.lex.Next()
		p.peeked = &t
	}
	return *p.peeked
}

// ParseProgram consumes the entire token stream and returns the resulting
// Program. Any fatal failure is ErrUnterminatedProgram: the parser could
// not consume the program and left a non-empty remainder.
func (p *Parser) ParseProgram() (*Program, error) {
	prog := &Program{}

	for p.peek().Kind != TokenEOF {
		inst, err := p.parseInstruction()
		if err != nil {
			return nil, err
		}
		prog.Instructions = append(prog.Instructions, inst)
	}

	if lexErrs := p.lex.Errors(); len(lexErrs) > 0 {
		return nil, fmt.Errorf("%w: %v", errUnterminated, lexErrs[0])
	}

	return prog, nil
}

// parseInstruction parses one line: an optional label declaration followed
// by either an opcode or a directive, followed by up to three operands.
// Operand matching tries, in order, integer, string,
// register, label-use — TokenKind already disambiguates these, so the
// "first match" rule falls out of IsOperand's single switch.
func (p *Parser) parseInstruction() (*Instruction, error) {
	inst := &Instruction{Pos: p.peek().Pos}

	if p.peek().Kind == TokenLabelDecl {
		t := p.next()
		inst.Label = &t
	}

	switch p.peek().Kind {
	case TokenOpcode:
		t := p.next()
		inst.Opcode = &t
	case TokenDirective:
		t := p.next()
		inst.Directive = &t
	default:
		bad := p.next()
		return nil, fmt.Errorf("%w: expected opcode or directive at %s, got %s", errUnterminated, bad.Pos, bad.Kind)
	}

	slots := [3]**Token{&inst.Operand1, &inst.Operand2, &inst.Operand3}
	for _, slot := range slots {
		if !p.peek().IsOperand() {
			break
		}
		t := p.next()
		*slot = &t
	}

	return inst, nil
}

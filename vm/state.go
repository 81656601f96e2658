// Package vm implements the register-based virtual machine core: state,
// image loading/verification, and the fetch/decode/execute loop.
package vm

import (
	"bufio"
	"io"
	"os"

	"github.com/google/uuid"

	"github.com/rocky-lang/rocky/encoder"
)

// RegisterCount is the fixed size of the register file, $0 through $31.
const RegisterCount = 32

// ExecutionState is the coarse lifecycle state of a VM: Ready → Running →
// (Halted | Crashed).
type ExecutionState int

const (
	StateReady ExecutionState = iota
	StateRunning
	StateHalted
	StateCrashed
)

func (s ExecutionState) String() string {
	switch s {
	case StateReady:
		return "Ready"
	case StateRunning:
		return "Running"
	case StateHalted:
		return "Halted"
	case StateCrashed:
		return "Crashed"
	default:
		return "Unknown"
	}
}

// VM is one independent machine instance: its own registers, program
// bytes, heap, and event log. Two VMs share no mutable state.
type VM struct {
	Registers [RegisterCount]int32
	PC        uint32
	Remainder uint32
	EqualFlag bool

	Program  []byte
	Heap     *encoder.MemoryHeap
	CodeBase uint32 // absolute offset within Program where code begins

	ID     uuid.UUID
	Events []Event
	State  ExecutionState

	// OutputWriter receives PRTS output and ASKI/ASKS prompts; InputReader
	// supplies ASKI/ASKS input. Both default to the process's standard
	// streams but are swappable for tests and for the REPL shell.
	OutputWriter io.Writer
	InputReader  *bufio.Reader
}

// NewVM creates a VM with a fresh random id and standard I/O streams.
func NewVM() *VM {
	return &VM{
		ID:           uuid.New(),
		State:        StateReady,
		OutputWriter: os.Stdout,
		InputReader:  bufio.NewReader(os.Stdin),
	}
}

// Reset restores the VM to its just-constructed state, preserving its id
// but discarding registers, program, heap, and event log.
func (v *VM) Reset() {
	v.Registers = [RegisterCount]int32{}
	v.PC = 0
	v.Remainder = 0
	v.EqualFlag = false
	v.Program = nil
	v.Heap = nil
	v.CodeBase = 0
	v.Events = nil
	v.State = StateReady
}

// codeStart returns the absolute byte offset where the code section
// begins. For an image loaded via SetProgram/Run this is the fixed header
// length plus the heap body size; the REPL shell, which has no header or
// heap body prepended to its code buffer, leaves CodeBase at its zero value.
func (v *VM) codeStart() uint32 {
	return v.CodeBase
}

func (v *VM) register(index uint8) int32 {
	if int(index) >= RegisterCount {
		return 0
	}
	return v.Registers[index]
}

func (v *VM) setRegister(index uint8, value int32) {
	if int(index) >= RegisterCount {
		return
	}
	v.Registers[index] = value
}

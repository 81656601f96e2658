package vm

import (
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rocky-lang/rocky/encoder"
)

// Run executes the loaded program to completion, returning the full event
// log. Exactly one Start event is pushed on entry; a header failure
// produces a single Crash event and stops; otherwise the fetch/decode/
// execute loop runs until halt, illegal opcode, or a fatal divide, and
// exactly one GracefulStop{code} event is appended.
func (v *VM) Run() []Event {
	v.Events = append(v.Events, newStartEvent(v.ID))
	v.State = StateRunning

	if err := v.verifyAndLoad(); err != nil {
		v.State = StateCrashed
		v.Events = append(v.Events, newCrashEvent(v.ID))
		return v.Events
	}

	var code int
	for {
		done, c := v.step()
		if done {
			code = c
			break
		}
	}

	v.State = StateHalted
	v.Events = append(v.Events, newGracefulStopEvent(v.ID, int32(code)))
	return v.Events
}

// RunOnce executes a single instruction without managing the event log,
// for callers (the REPL shell) that drive execution step by step. It does
// not verify or load an image: it runs from the current PC, CodeBase, and
// Heap as the caller left them.
func (v *VM) RunOnce() (done bool, code int) {
	return v.step()
}

// step fetches one 4-byte instruction word and executes it. PC is
// advanced to the start of the next instruction before execute runs, so
// every opcode handler that does not branch needs to do nothing further;
// branching opcodes overwrite PC explicitly.
func (v *VM) step() (done bool, code int) {
	start := v.PC
	if int(start)+4 > len(v.Program) {
		return true, 1
	}

	var word [4]byte
	copy(word[:], v.Program[start:start+4])
	v.PC = start + 4

	decoded := encoder.DecodeInstruction(word)
	return v.execute(decoded)
}

func (v *VM) execute(d encoder.DecodedInstruction) (done bool, code int) {
	switch d.Opcode {
	case encoder.HLT:
		return true, 0

	case encoder.LOAD:
		imm := encoder.Immediate16(d.B2, d.B3)
		v.setRegister(d.B1, int32(imm))

	case encoder.ADD:
		v.setRegister(d.B3, v.register(d.B1)+v.register(d.B2))
	case encoder.SUB:
		v.setRegister(d.B3, v.register(d.B1)-v.register(d.B2))
	case encoder.MUL:
		v.setRegister(d.B3, v.register(d.B1)*v.register(d.B2))
	case encoder.DIV:
		a, b := v.register(d.B1), v.register(d.B2)
		if b == 0 {
			return true, 1
		}
		v.setRegister(d.B3, a/b)
		v.Remainder = uint32(a % b)

	case encoder.JMP:
		v.PC = v.codeStart() + uint32(v.register(d.B1))
	case encoder.JMPF:
		v.PC += uint32(v.register(d.B1))
	case encoder.JMPB:
		v.PC -= uint32(v.register(d.B1))
	case encoder.JEQ:
		if v.EqualFlag {
			v.PC = v.codeStart() + uint32(v.register(d.B1))
		}
		// else: PC is already positioned past this instruction's operand
		// bytes.

	case encoder.EQ:
		v.EqualFlag = v.register(d.B1) == v.register(d.B2)
	case encoder.NEQ:
		v.EqualFlag = v.register(d.B1) != v.register(d.B2)
	case encoder.GT:
		v.EqualFlag = v.register(d.B1) > v.register(d.B2)
	case encoder.LT:
		v.EqualFlag = v.register(d.B1) < v.register(d.B2)
	case encoder.GTQ:
		v.EqualFlag = v.register(d.B1) >= v.register(d.B2)
	case encoder.LTQ:
		v.EqualFlag = v.register(d.B1) <= v.register(d.B2)

	case encoder.ALOC:
		v.Heap.Alloc(uint32(v.register(d.B1)))

	case encoder.PRTS:
		v.printString(encoder.Immediate16(d.B1, d.B2))

	case encoder.SLP:
		time.Sleep(time.Duration(v.register(d.B1)) * time.Millisecond)
	case encoder.SLPS:
		time.Sleep(time.Duration(v.register(d.B1)) * time.Second)

	case encoder.ASKI:
		v.askInt(encoder.Immediate16(d.B1, d.B2))
	case encoder.ASKS:
		v.askString(encoder.Immediate16(d.B1, d.B2))

	case encoder.GRPS:
		v.concatBlobs(d.B1, d.B2, d.B3)

	default: // IGL
		fmt.Fprintln(v.OutputWriter, "illegal instruction encountered")
		return true, 1
	}

	return false, 0
}

func (v *VM) printString(heapIndex uint16) {
	blob, err := v.Heap.GetSlice(uint32(heapIndex))
	if err != nil {
		fmt.Fprintln(v.OutputWriter, "error decoding string for prts instruction")
		return
	}
	fmt.Fprintln(v.OutputWriter, string(blob))
}

// askInt prompts with the blob at heapIndex, reads a line, parses it as
// i32, and writes the result back into that same blob as little-endian
// bytes. A read or parse failure is absorbed locally: the blob is left
// untouched and PC still advances.
func (v *VM) askInt(heapIndex uint16) {
	prompt, err := v.Heap.GetSlice(uint32(heapIndex))
	if err != nil {
		return
	}
	fmt.Fprint(v.OutputWriter, string(prompt))

	line, err := v.InputReader.ReadString('\n')
	if err != nil && line == "" {
		return
	}
	n, err := strconv.ParseInt(strings.TrimSpace(line), 10, 32)
	if err != nil {
		return
	}

	buf := make([]byte, 4)
	binary.LittleEndian.PutUint32(buf, uint32(int32(n)))
	_ = v.Heap.Edit(buf, uint32(heapIndex))
}

// askString prompts with the blob at heapIndex, reads a line, and writes
// it back verbatim (trimming the trailing newline) into that blob.
func (v *VM) askString(heapIndex uint16) {
	prompt, err := v.Heap.GetSlice(uint32(heapIndex))
	if err != nil {
		return
	}
	fmt.Fprint(v.OutputWriter, string(prompt))

	line, err := v.InputReader.ReadString('\n')
	if err != nil && line == "" {
		return
	}
	line = strings.TrimRight(line, "\r\n")
	_ = v.Heap.Edit([]byte(line), uint32(heapIndex))
}

func (v *VM) concatBlobs(leftIdx, rightIdx, destIdx byte) {
	left, err := v.Heap.GetSlice(uint32(leftIdx))
	if err != nil {
		return
	}
	right, err := v.Heap.GetSlice(uint32(rightIdx))
	if err != nil {
		return
	}

	combined := make([]byte, 0, len(left)+len(right))
	combined = append(combined, left...)
	combined = append(combined, right...)
	_ = v.Heap.Edit(combined, uint32(destIdx))
}

package vm

import "github.com/rocky-lang/rocky/encoder"

// SetProgram installs the raw assembled image. Verification and heap
// reconstruction happen lazily, on the first Run, so that a Crash event —
// not a Go error — is how header failure is reported.
func (v *VM) SetProgram(image []byte) {
	v.Program = image
}

// AppendCode grows the running program by one instruction's worth of
// bytes without re-verifying or reloading the whole image. Used by the
// REPL shell to grow a long-lived program one line at a time.
func (v *VM) AppendCode(code []byte) {
	v.Program = append(v.Program, code...)
}

// verifyAndLoad implements the VM loader/verifier: check the magic bytes,
// reconstruct the heap from the header, and position PC at the start of
// the code section.
func (v *VM) verifyAndLoad() error {
	heapHeader, heapBody, _, err := encoder.SplitImage(v.Program)
	if err != nil {
		return err
	}

	heap, err := encoder.HeapFromBytes(heapHeader, heapBody)
	if err != nil {
		return err
	}

	v.Heap = heap
	v.CodeBase = uint32(encoder.HeaderLen) + uint32(heap.BodyLen())
	v.PC = v.codeStart()
	return nil
}

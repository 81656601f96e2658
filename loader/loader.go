// Package loader wires the assembler pipeline to the VM core: read
// source text, assemble it to an image, load the image into a VM ready
// to run. It is the glue the CLI (main.go) and the scheduler sit on
// top of.
package loader

import (
	"fmt"
	"os"

	"github.com/rocky-lang/rocky/encoder"
	"github.com/rocky-lang/rocky/parser"
	"github.com/rocky-lang/rocky/vm"
)

// Assemble parses and assembles source into a finished binary image.
func Assemble(source, filename string) ([]byte, error) {
	prog, err := parser.NewParser(source, filename).ParseProgram()
	if err != nil {
		return nil, fmt.Errorf("loader: parsing %s: %w", filename, err)
	}

	asm := encoder.NewAssembler()
	image, err := asm.Assemble(prog)
	if err != nil {
		return nil, fmt.Errorf("loader: assembling %s: %w", filename, err)
	}
	return image, nil
}

// AssembleFile reads filename and assembles it.
func AssembleFile(filename string) ([]byte, error) {
	source, err := os.ReadFile(filename) // #nosec G304 -- user-specified source path
	if err != nil {
		return nil, fmt.Errorf("loader: reading %s: %w", filename, err)
	}
	return Assemble(string(source), filename)
}

// LoadFile assembles filename and returns a fresh VM with the image
// installed, ready for Run.
func LoadFile(filename string) (*vm.VM, error) {
	image, err := AssembleFile(filename)
	if err != nil {
		return nil, err
	}
	machine := vm.NewVM()
	machine.SetProgram(image)
	return machine, nil
}

// Package replshell implements the thin, line-at-a-time REPL front end
// for the VM core. It is intentionally shallow: assemble-and-execute one
// line at a time, register and heap inspection, command history, and a
// hexadecimal display mode —
// not the full breakpoint/watchpoint/expression-evaluator debugger a
// general-purpose machine might carry.
package replshell

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/rocky-lang/rocky/encoder"
	"github.com/rocky-lang/rocky/parser"
	"github.com/rocky-lang/rocky/vm"
)

// Shell assembles and executes one instruction per entered line against a
// long-lived VM, sharing one symbol table and heap across the whole
// session so that a `.str`/`.int` declared in an earlier line stays valid
// in later ones.
type Shell struct {
	VM        *vm.VM
	Assembler *encoder.Assembler
	History   *History
	HexMode   bool

	App          *tview.Application
	Pages        *tview.Pages
	OutputView   *tview.TextView
	RegisterView *tview.TextView
	CommandInput *tview.InputField
	MainLayout   *tview.Flex
}

// NewShell creates a shell with a fresh VM sharing its heap with a fresh
// assembler, ready to read lines.
func NewShell(historySize int, hexMode bool) *Shell {
	s := &Shell{
		VM:        vm.NewVM(),
		Assembler: encoder.NewAssembler(),
		History:   NewHistory(historySize),
		HexMode:   hexMode,
		App:       tview.NewApplication(),
	}
	s.VM.Heap = s.Assembler.Heap
	s.VM.State = vm.StateRunning

	s.initializeViews()
	s.VM.OutputWriter = s.OutputView
	s.buildLayout()
	s.refreshRegisters()
	return s
}

func (s *Shell) initializeViews() {
	s.OutputView = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true).
		SetWrap(true)
	s.OutputView.SetBorder(true).SetTitle(" Output ")

	s.RegisterView = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(false)
	s.RegisterView.SetBorder(true).SetTitle(" Registers ")

	s.CommandInput = tview.NewInputField().
		SetLabel("rocky> ").
		SetFieldWidth(0)
	s.CommandInput.SetBorder(true).SetTitle(" Input ")
	s.CommandInput.SetDoneFunc(s.handleInput)
}

func (s *Shell) buildLayout() {
	top := tview.NewFlex().
		SetDirection(tview.FlexColumn).
		AddItem(s.OutputView, 0, 3, false).
		AddItem(s.RegisterView, 36, 0, false)

	s.MainLayout = tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(top, 0, 4, false).
		AddItem(s.CommandInput, 3, 0, true)

	s.Pages = tview.NewPages().AddPage("main", s.MainLayout, true, true)

	s.App.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyCtrlC:
			s.App.Stop()
			return nil
		case tcell.KeyUp:
			s.CommandInput.SetText(s.History.Previous())
			return nil
		case tcell.KeyDown:
			s.CommandInput.SetText(s.History.Next())
			return nil
		}
		return event
	})
}

func (s *Shell) handleInput(key tcell.Key) {
	if key != tcell.KeyEnter {
		return
	}
	line := s.CommandInput.GetText()
	s.CommandInput.SetText("")
	if strings.TrimSpace(line) == "" {
		return
	}

	s.History.Add(line)
	s.writeOutput(fmt.Sprintf("[gray]rocky>[white] %s\n", line))
	s.Eval(line)
	s.refreshRegisters()
}

// Eval assembles and executes one line, writing output and any error to
// the output view. It is exported so non-interactive callers (tests, a
// `-H`-mode batch runner) can drive the shell without the tview event
// loop.
func (s *Shell) Eval(line string) {
	trimmed := strings.TrimSpace(line)
	if strings.HasPrefix(trimmed, ":") {
		s.evalMeta(trimmed)
		return
	}

	prog, err := parser.NewParser(line+"\n", "<repl>").ParseProgram()
	if err != nil {
		s.writeOutput(fmt.Sprintf("[red]parse error:[white] %v\n", err))
		return
	}

	for _, inst := range prog.Instructions {
		code, err := s.Assembler.AssembleLine(inst)
		if err != nil {
			s.writeOutput(fmt.Sprintf("[red]assemble error:[white] %v\n", err))
			return
		}
		if len(code) == 0 {
			continue
		}

		s.VM.AppendCode(code)
		done, exitCode := s.VM.RunOnce()
		if done {
			s.writeOutput(fmt.Sprintf("[yellow]halted with code %d[white]\n", exitCode))
		}
	}
}

// evalMeta handles shell commands that are not assembly: ":hex" toggles
// the register display's number base, ":regs" reprints the register
// view, ":heap N" dumps heap blob N, ":quit" exits.
func (s *Shell) evalMeta(cmd string) {
	fields := strings.Fields(cmd)
	switch fields[0] {
	case ":hex":
		s.HexMode = !s.HexMode
		s.writeOutput(fmt.Sprintf("hex mode: %v\n", s.HexMode))
	case ":regs":
		s.refreshRegisters()
	case ":heap":
		if len(fields) != 2 {
			s.writeOutput("usage: :heap <index>\n")
			return
		}
		s.dumpHeap(fields[1])
	case ":quit":
		s.App.Stop()
	default:
		s.writeOutput(fmt.Sprintf("unknown command %q\n", fields[0]))
	}
}

func (s *Shell) dumpHeap(indexStr string) {
	var index uint32
	if _, err := fmt.Sscanf(indexStr, "%d", &index); err != nil {
		s.writeOutput(fmt.Sprintf("invalid heap index %q\n", indexStr))
		return
	}
	blob, err := s.VM.Heap.GetSlice(index)
	if err != nil {
		s.writeOutput(fmt.Sprintf("[red]%v[white]\n", err))
		return
	}
	if s.HexMode {
		s.writeOutput(fmt.Sprintf("heap[%d] = % x\n", index, blob))
	} else {
		s.writeOutput(fmt.Sprintf("heap[%d] = %q\n", index, blob))
	}
}

func (s *Shell) writeOutput(text string) {
	fmt.Fprint(s.OutputView, text)
	s.OutputView.ScrollToEnd()
}

func (s *Shell) refreshRegisters() {
	var sb strings.Builder
	for i, v := range s.VM.Registers {
		if s.HexMode {
			fmt.Fprintf(&sb, "$%-2d = 0x%08x\n", i, uint32(v))
		} else {
			fmt.Fprintf(&sb, "$%-2d = %d\n", i, v)
		}
	}
	fmt.Fprintf(&sb, "\npc = %d  eq = %v  rem = %d\n", s.VM.PC, s.VM.EqualFlag, s.VM.Remainder)

	s.RegisterView.Clear()
	fmt.Fprint(s.RegisterView, sb.String())
}

// Run starts the tview event loop, blocking until the shell exits.
func (s *Shell) Run() error {
	return s.App.SetRoot(s.Pages, true).SetFocus(s.CommandInput).Run()
}

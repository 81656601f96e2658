package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/rocky-lang/rocky/config"
	"github.com/rocky-lang/rocky/loader"
	"github.com/rocky-lang/rocky/replshell"
	"github.com/rocky-lang/rocky/scheduler"
	"github.com/rocky-lang/rocky/tools"
	"github.com/rocky-lang/rocky/vm"
)

// Version information, overridable at build time with:
// go build -ldflags "-X main.Version=v1.2.3"
var (
	Version = "dev"
	Commit  = "unknown"
)

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "add-ssh-key":
			runAddSSHKey(os.Args[2:])
			return
		case "fmt":
			runFmt(os.Args[2:])
			return
		case "lint":
			runLint(os.Args[2:])
			return
		case "xref":
			runXref(os.Args[2:])
			return
		}
	}
	runAssembleAndRun(os.Args[1:])
}

func runAssembleAndRun(args []string) {
	fs := flag.NewFlagSet("rocky", flag.ExitOnError)
	threadHint := fs.Int("t", 1, "number of VMs to run concurrently (each runs the same program)")
	hexMode := fs.Bool("H", false, "hex-dump mode in the REPL")
	debugFlag := fs.Bool("d", false, "enable debug diagnostics")
	showVersion := fs.Bool("version", false, "show version information")
	_ = fs.Bool("s", false, "start the SSH front-end (unimplemented: out of scope, see DESIGN.md)")
	_ = fs.Int("p", 2222, "SSH front-end port")
	fs.Parse(args) // #nosec G104 -- ExitOnError handles parse failures

	if *showVersion {
		fmt.Printf("rocky %s (%s)\n", Version, Commit)
		return
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "rocky: loading config: %v\n", err)
		os.Exit(1)
	}
	if *debugFlag {
		cfg.Execution.Debug = true
	}

	rest := fs.Args()
	if len(rest) == 0 {
		shell := replshell.NewShell(cfg.REPL.HistorySize, *hexMode || cfg.REPL.HexMode)
		if err := shell.Run(); err != nil {
			fmt.Fprintf(os.Stderr, "rocky: repl: %v\n", err)
			os.Exit(1)
		}
		return
	}

	filename := rest[0]
	n := *threadHint
	if n <= 0 {
		n = cfg.Execution.ThreadHint
	}
	if n <= 0 {
		n = 1
	}

	machines := make([]*vm.VM, n)
	for i := 0; i < n; i++ {
		machine, err := loader.LoadFile(filename)
		if err != nil {
			fmt.Fprintf(os.Stderr, "rocky: %v\n", err)
			os.Exit(1)
		}
		machines[i] = machine
	}

	sched := &scheduler.Scheduler{}
	handles := sched.SpawnAll(machines)

	exitCode := 0
	for _, h := range handles {
		events := h.Wait()
		last := events[len(events)-1]
		if *debugFlag {
			for _, e := range events {
				fmt.Fprintln(os.Stderr, e.String())
			}
		}
		if last.Kind != vm.EventGracefulStop || last.Code != 0 {
			exitCode = 1
		}
	}
	os.Exit(exitCode)
}

func runAddSSHKey(args []string) {
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "usage: rocky add-ssh-key <path>")
		os.Exit(1)
	}

	data, err := os.ReadFile(args[0]) // #nosec G304 -- user-specified key file
	if err != nil {
		fmt.Fprintf(os.Stderr, "rocky: reading %s: %v\n", args[0], err)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "rocky: loading config: %v\n", err)
		os.Exit(1)
	}

	reg, err := config.LoadSSHKeyRegistry(cfg.SSH.KeyFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "rocky: %v\n", err)
		os.Exit(1)
	}

	key, err := reg.AddKey(string(data))
	if err != nil {
		fmt.Fprintf(os.Stderr, "rocky: %v\n", err)
		os.Exit(1)
	}
	if err := reg.SaveTo(cfg.SSH.KeyFile); err != nil {
		fmt.Fprintf(os.Stderr, "rocky: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("registered key %s\n", key.Fingerprint)
}

func runFmt(args []string) {
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "usage: rocky fmt <file.rk>")
		os.Exit(1)
	}
	source, err := os.ReadFile(args[0]) // #nosec G304 -- user-specified source path
	if err != nil {
		fmt.Fprintf(os.Stderr, "rocky: %v\n", err)
		os.Exit(1)
	}
	out, err := tools.FormatSource(string(source), args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "rocky: %v\n", err)
		os.Exit(1)
	}
	fmt.Print(out)
}

func runLint(args []string) {
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "usage: rocky lint <file.rk>")
		os.Exit(1)
	}
	source, err := os.ReadFile(args[0]) // #nosec G304 -- user-specified source path
	if err != nil {
		fmt.Fprintf(os.Stderr, "rocky: %v\n", err)
		os.Exit(1)
	}
	issues, err := tools.LintSource(string(source), args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "rocky: %v\n", err)
		os.Exit(1)
	}
	for _, issue := range issues {
		fmt.Println(issue.String())
	}
	if len(issues) > 0 {
		os.Exit(1)
	}
}

func runXref(args []string) {
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "usage: rocky xref <file.rk>")
		os.Exit(1)
	}
	source, err := os.ReadFile(args[0]) // #nosec G304 -- user-specified source path
	if err != nil {
		fmt.Fprintf(os.Stderr, "rocky: %v\n", err)
		os.Exit(1)
	}
	out, err := tools.XrefSource(string(source), args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "rocky: %v\n", err)
		os.Exit(1)
	}
	fmt.Print(out)
}

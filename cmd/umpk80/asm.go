package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ezrec/umpk80/cpu"
	"github.com/ezrec/umpk80/emulator"
	"github.com/ezrec/umpk80/translate"
)

type asmCmd struct {
	File    string   `arg:"" type:"existingfile" help:"8080 source file."`
	Output  string   `short:"o" help:"Binary output file. Defaults to FILE with a .bin suffix."`
	Org     string   `default:"0x0800" help:"Origin address."`
	Define  []string `short:"D" placeholder:"NAME=VALUE" help:"Predefine an equate."`
	List    bool     `short:"l" help:"Print the listing."`
	Verbose bool     `short:"v" help:"Verbose mode."`
}

// assembleFile assembles a source file, with the board symbols and
// defines predefined.
func assembleFile(path string, org uint16, defines []string, verbose bool) (prog *cpu.Program, err error) {
	inf, err := os.Open(path)
	if err != nil {
		return
	}
	defer inf.Close()

	asm := &cpu.Assembler{Org: org, Verbose: verbose}

	emu := emulator.NewEmulator()
	defer emu.Close()
	for name, value := range emu.Defines() {
		asm.Predefine(name, value)
	}

	for _, define := range defines {
		name, value, ok := strings.Cut(define, "=")
		if !ok {
			value = "1"
		}
		asm.Predefine(name, value)
	}

	prog, err = asm.Parse(inf)
	if err != nil {
		err = fmt.Errorf("%v: %w", path, err)
		return
	}

	return
}

func (cmd *asmCmd) Run() (err error) {
	org, err := parseAddress(cmd.Org)
	if err != nil {
		return
	}

	prog, err := assembleFile(cmd.File, org, cmd.Define, cmd.Verbose)
	if err != nil {
		return
	}

	if cmd.List {
		for _, op := range prog.Opcodes {
			hex := make([]string, len(op.Bytes))
			for n, b := range op.Bytes {
				hex[n] = fmt.Sprintf("%02X", b)
			}
			translate.Fprintf(os.Stdout, "%04X: %-12v %5d  %v\n", op.Address, strings.Join(hex, " "), op.LineNo, strings.Join(op.Words, " "))
		}
	}

	output := cmd.Output
	if len(output) == 0 {
		output = strings.TrimSuffix(cmd.File, filepath.Ext(cmd.File)) + ".bin"
	}

	err = os.WriteFile(output, prog.Binary(org), 0o644)
	return
}

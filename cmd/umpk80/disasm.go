package main

import (
	"os"

	"github.com/ezrec/umpk80/cpu"
	"github.com/ezrec/umpk80/translate"
)

type disasmCmd struct {
	File string `arg:"" type:"existingfile" help:"Binary image."`
	Org  string `default:"0x0000" help:"Load address of the image."`
}

func (cmd *disasmCmd) Run() (err error) {
	org, err := parseAddress(cmd.Org)
	if err != nil {
		return
	}

	code, err := os.ReadFile(cmd.File)
	if err != nil {
		return
	}

	for _, lst := range cpu.Disassembly(code, org) {
		translate.Fprintf(os.Stdout, "%v\n", lst)
	}

	return
}

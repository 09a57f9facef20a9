// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package main

import (
	"log"
	"strconv"

	"github.com/alecthomas/kong"
)

var cli struct {
	Run    runCmd    `cmd:"" default:"1" help:"Run the emulator."`
	Asm    asmCmd    `cmd:"" help:"Assemble an 8080 source file."`
	Disasm disasmCmd `cmd:"" help:"Disassemble a binary image."`
}

// parseAddress parses a 16-bit address in Go integer syntax.
func parseAddress(text string) (addr uint16, err error) {
	value, err := strconv.ParseUint(text, 0, 16)
	if err != nil {
		return
	}

	addr = uint16(value)
	return
}

func main() {
	ctx := kong.Parse(&cli,
		kong.Name("umpk80"),
		kong.Description("UMPK-80 trainer board emulator."),
		kong.UsageOnError(),
	)

	err := ctx.Run()
	if err != nil {
		log.Fatalf("umpk80: %v", err)
	}
}

package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ezrec/umpk80/bus"
	"github.com/ezrec/umpk80/emulator"
	"github.com/ezrec/umpk80/internal"
	"github.com/ezrec/umpk80/io"
	"github.com/ezrec/umpk80/translate"
)

const (
	TICK_SLICE    = 10 * time.Millisecond  // Tick loop pacing interval.
	REFRESH       = 50 * time.Millisecond  // Display refresh interval.
	KEY_HOLD_TIME = 150 * time.Millisecond // Host keys have no release; hold each press this long.
)

type runCmd struct {
	Os           string   `type:"existingfile" help:"Monitor firmware image, loaded into ROM."`
	Program      string   `type:"existingfile" help:"User program, binary or .asm source, loaded into RAM."`
	At           string   `default:"0x0800" help:"Load address of the user program."`
	Jump         bool     `help:"Start the user program instead of the monitor."`
	Hz           int      `default:"2000000" help:"Instructions per second, 0 for unthrottled."`
	Ticks        int      `default:"0" help:"Stop after this many instructions, 0 for no limit."`
	Input        []string `default:"0xff" placeholder:"[PORT=]VALUE" help:"Value read from an unbound input port, the user IO port by default."`
	Trace        bool     `help:"Trace each instruction."`
	Verbose      bool     `short:"v" help:"Verbose mode."`
	Undocumented bool     `help:"Execute undocumented opcodes instead of halting."`
}

// load prepares the emulator from the command line.
func (cmd *runCmd) load(emu *emulator.Emulator) (err error) {
	if len(cmd.Os) != 0 {
		var image []byte
		image, err = os.ReadFile(cmd.Os)
		if err != nil {
			return
		}
		err = emu.LoadOS(image)
		if err != nil {
			err = fmt.Errorf("%v: %w", cmd.Os, err)
			return
		}
	}

	at, err := parseAddress(cmd.At)
	if err != nil {
		return
	}

	if len(cmd.Program) != 0 {
		if strings.HasSuffix(strings.ToLower(cmd.Program), ".asm") {
			prog, err := assembleFile(cmd.Program, at, nil, cmd.Verbose)
			if err != nil {
				return err
			}
			at, err = emu.LoadListing(prog)
			if err != nil {
				return err
			}
		} else {
			var data []byte
			data, err = os.ReadFile(cmd.Program)
			if err != nil {
				return
			}
			err = emu.LoadProgram(data, at)
			if err != nil {
				err = fmt.Errorf("%v: %w", cmd.Program, err)
				return
			}
		}
	}

	if cmd.Jump {
		emu.Jump(at)
	}

	for _, input := range cmd.Input {
		var port uint8
		var value byte
		port, value, err = parseInput(input)
		if err != nil {
			return
		}
		emu.SetInput(port, value)
	}

	emu.Verbose = cmd.Trace
	emu.SetUndocumented(cmd.Undocumented)

	return
}

// parseInput parses an input latch setting, 'PORT=VALUE' or 'VALUE' for
// the user IO port.
func parseInput(text string) (port uint8, value byte, err error) {
	port = emulator.PORT_IO

	number, data, ok := strings.Cut(text, "=")
	if ok {
		var n int64
		n, err = strconv.ParseInt(number, 0, 0)
		if err != nil {
			return
		}
		port, err = bus.Port(int(n))
		if err != nil {
			return
		}
	} else {
		data = number
	}

	v, err := strconv.ParseUint(data, 0, 8)
	if err != nil {
		return
	}

	value = byte(v)
	return
}

// status renders the display and CPU state as one line.
func status(emu *emulator.Emulator) string {
	var text strings.Builder

	text.WriteString("[")
	lit := emu.DisplayLit()
	for _, pattern := range emu.DisplayDigits() {
		r := ' '
		if lit {
			r = io.SegmentRune(pattern)
		}
		text.WriteRune(r)
	}
	text.WriteString("]")

	regs := emu.Snapshot()
	fmt.Fprintf(&text, " PC=%04X SP=%04X A=%02X IO=%02X %v",
		regs.PC, regs.SP, regs.A, emu.Output(emulator.PORT_IO), regs.State)

	return text.String()
}

// tick runs the emulator, paced to hz instructions per second.
func (cmd *runCmd) tick(ctx context.Context, emu *emulator.Emulator) (err error) {
	batch := 0
	if cmd.Hz > 0 {
		batch = max(1, cmd.Hz*int(TICK_SLICE)/int(time.Second))
	}

	ticker := time.NewTicker(TICK_SLICE)
	defer ticker.Stop()

	total := 0
	for cmd.Ticks <= 0 || total < cmd.Ticks {
		count := batch
		if count == 0 {
			count = 10000
		}
		if cmd.Ticks > 0 {
			count = min(count, cmd.Ticks-total)
		}

		for range count {
			_, err = emu.Tick()
			if err != nil {
				// The CPU halts on a fault; keep ticking so R and ST still work.
				log.Printf("umpk80: %v", err)
				err = nil
			}
		}
		total += count

		if batch == 0 {
			select {
			case <-ctx.Done():
				return
			default:
			}
			continue
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}

	return
}

func (cmd *runCmd) Run() (err error) {
	emu := emulator.NewEmulator()
	defer emu.Close()

	err = cmd.load(emu)
	if err != nil {
		return
	}

	if cmd.Verbose {
		for name, value := range internal.IterSeq2Sorted(emu.Defines()) {
			log.Printf("%v = %v", name, value)
		}
	}

	tty, err := NewTerminal()
	if err != nil {
		return
	}
	defer tty.Restore()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer cancel()
		return cmd.tick(ctx, emu)
	})

	var keys <-chan byte
	if tty != nil {
		keys = tty.Keys()
	}

	g.Go(func() error {
		refresh := time.NewTicker(REFRESH)
		defer refresh.Stop()

		var release time.Time
		for {
			select {
			case <-ctx.Done():
				return nil
			case c, ok := <-keys:
				if !ok {
					keys = nil
					continue
				}
				if c == KEY_QUIT || c == KEY_INTR {
					cancel()
					return nil
				}
				key, found := keyMap[c]
				if !found {
					continue
				}
				err := emu.PressKey(key)
				if err != nil {
					return err
				}
				release = time.Now().Add(KEY_HOLD_TIME)
			case now := <-refresh.C:
				if !release.IsZero() && now.After(release) {
					emu.ReleaseKey()
					release = time.Time{}
				}
				if tty != nil {
					translate.Fprintf(os.Stdout, "\r%v\x1b[K", status(emu))
				}
			}
		}
	})

	err = g.Wait()

	if tty != nil {
		translate.Fprintf(os.Stdout, "\r\n")
	}
	translate.Fprintf(os.Stdout, "%v\n", status(emu))
	if cmd.Verbose {
		translate.Fprintf(os.Stdout, "%v\n", emu)
	}

	return
}

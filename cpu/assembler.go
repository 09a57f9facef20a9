// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package cpu

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"maps"
	"regexp"
	"strconv"
	"strings"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

// Macro represents a macro definition in the assembly language.
type Macro struct {
	LineNo int      // Line number of the macro definition.
	Args   []string // Arguments for the macro.
	Lines  []string // Lines of macro text to expand.
}

// systemEquates returns the predefined system equates.
func systemEquates() (equ map[string]string) {
	equ = maps.Clone(_cpu_defines)
	equ["LINENO"] = "0"
	return
}

// Assembler is a single pass macro assembler for the 8080.
type Assembler struct {
	Verbose bool     // If set, verbosely logs the assembler actions.
	Org     uint16   // Address of the first generated byte, unless set by .org.
	Opcode  []Opcode // List of generated opcodes.

	predefine map[string]string   // Predefines
	Label     map[string]int      // Map of labels to addresses.
	Equate    map[string]string   // Map of equates.
	Macro     map[string](*Macro) // Map of macros.

	address   int // Address of the next generated byte.
	expansion int // Count of macro expansions.
}

// Predefine defines a new equate or redefines an existing equate.
func (asm *Assembler) Predefine(equ string, value string) {
	if asm.predefine == nil {
		asm.predefine = map[string]string{equ: value}
	} else {
		asm.predefine[equ] = value
	}
}

type mnemonicInfo struct {
	operand Operand // Inline operand kind.
	args    int     // Number of register arguments.
}

// opcodeMap maps the mnemonics of documented instructions to opcodes,
// and mnemonicMap their bare names to their argument layout.
var opcodeMap, mnemonicMap = makeOpcodeMaps()

func makeOpcodeMaps() (opcodes map[string]byte, mnemonics map[string]mnemonicInfo) {
	opcodes = make(map[string]byte, len(Instructions))
	mnemonics = make(map[string]mnemonicInfo)

	for n := range Instructions {
		ins := &Instructions[n]
		if ins.Undocumented {
			continue
		}
		opcodes[ins.Mnemonic] = byte(n)

		info := mnemonicInfo{operand: ins.Operand}
		if name := ins.Name(); name != ins.Mnemonic {
			info.args = len(strings.Split(ins.Mnemonic[len(name)+1:], ","))
		}
		mnemonics[ins.Name()] = info
	}

	return
}

var reLabel = regexp.MustCompile(`^[A-Za-z_.@][A-Za-z0-9_.@]*$`)

// valueOf returns the value of a simple word.
// Accepts Go style integers (0x.., 0b.., 0o..) and Intel style
// hexadecimal (0FFh).
func (asm *Assembler) valueOf(word string) (value int, err error) {
	if len(word) == 0 {
		err = ErrParseNumber(word)
		return
	}

	invert := false
	if word[0] == '~' {
		invert = true
		word = word[1:]
	}
	if len(word) > 0 && word[0] == '\'' {
		// Character quotes should have been expanded into
		// values in parseLine()
		err = ErrParseCharacter(strings.Trim(word, "'"))
		return
	}

	var v64 int64
	last := len(word) - 1
	if last > 0 && (word[last] == 'h' || word[last] == 'H') && word[0] >= '0' && word[0] <= '9' {
		v64, err = strconv.ParseInt(word[:last], 16, 32)
	} else {
		v64, err = strconv.ParseInt(word, 0, 32)
	}
	if err != nil {
		err = ErrParseNumber(word)
		return
	}

	value = int(v64)
	if invert {
		value = ^value & 0xffff
	}

	return
}

// valueRange checks value against a field width, allowing negative
// values down to the signed minimum. Returns the value truncated to the
// field.
func valueRange(value int, width int) (field int, err error) {
	limit := 1 << width
	if value < -(limit/2) || value >= limit {
		err = ErrValueRange
		return
	}

	field = value & (limit - 1)
	return
}

// parenEval does compile-time $(...) evaluations
func (asm *Assembler) parenEval(expr string) (value int, err error) {
	thread := starlark.Thread{}
	opts := syntax.FileOptions{}
	pred := starlark.StringDict{}
	for key, str := range asm.Equate {
		var number int
		number, err = asm.valueOf(str)
		if err != nil {
			// Ignore non-integer equates. They may be registers
			// or something else.
			continue
		}
		pred[key] = starlark.MakeInt(number)
	}
	for key, addr := range asm.Label {
		pred[key] = starlark.MakeInt(addr)
	}
	pred["HERE"] = starlark.MakeInt(asm.address)
	err = nil

	prog := "rc=" + expr + "\n"
	dict, err := starlark.ExecFileOptions(&opts, &thread, "expr", prog, pred)
	if err != nil {
		return
	}
	st_rc, ok := dict["rc"]
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	st_int, ok := st_rc.(starlark.Int)
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	st_int64, ok := st_int.Int64()
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	value = int(st_int64)
	return
}

var (
	reCharacter = regexp.MustCompile(`'\\?[^']'`)
	reParen     = regexp.MustCompile(`\$\([^\$]*\)`)
)

// parseLine parses a single line into words.
func (asm *Assembler) parseLine(line string, lineno int) (words []string, err error) {
	// Set line number.
	asm.Equate["LINENO"] = fmt.Sprintf("%v", lineno)

	// Do 'x' evaluations
	line = reCharacter.ReplaceAllStringFunc(line, func(word string) string {
		str := word[1 : len(word)-1]
		if str[0] == '\\' {
			str = str[1:]
			switch str {
			case "\\":
				str = "\\"
			case "n":
				str = "\n"
			case "r":
				str = "\r"
			case "e":
				str = "\033"
			default:
				return word
			}
		} else if len(str) != 1 {
			return word
		}
		return fmt.Sprintf("%v", str[0])
	})

	// Do $() evaluations
	line = reParen.ReplaceAllStringFunc(line, func(str string) string {
		value, _err := asm.parenEval(str[2 : len(str)-1])
		if _err != nil {
			err = _err
		}
		return fmt.Sprintf("%d", value)
	})
	if err != nil {
		return
	}

	// Operands are separated by commas or spaces.
	words = strings.Fields(strings.ReplaceAll(line, ",", " "))

	if len(words) == 0 {
		return
	}

	// .equ CONST VALUE
	if strings.ToLower(words[0]) == ".equ" {
		if len(words) != 3 {
			err = ErrEquateSyntax
			return
		}
		_, ok := asm.Equate[words[1]]
		if ok {
			err = ErrEquateDuplicate
			return
		}
		asm.Equate[words[1]] = words[2]
		words = words[:0]
		return
	}

	for n, word := range words {
		// Check for equate next
		equate, ok := asm.Equate[word]
		if ok {
			words[n] = equate
		}
	}

	for strings.HasSuffix(words[0], ":") {
		label := words[0][:len(words[0])-1]
		if !reLabel.MatchString(label) {
			err = ErrLabelInvalid
			return
		}
		_, ok := asm.Label[label]
		if ok {
			err = ErrLabelDuplicate
			return
		}

		asm.Label[label] = asm.address
		words = words[1:]
		if len(words) == 0 {
			return
		}
	}

	// .macro processing
	macro, ok := asm.Macro[words[0]]
	if ok {
		name := words[0]

		args := words[1:]
		if len(args) != len(macro.Args) {
			err = ErrMacroSyntax
			return
		}
		// Turn args into equs
		old_equate := maps.Clone(asm.Equate)
		for n, arg := range macro.Args {
			asm.Equate[arg] = words[1+n]
		}
		defer func() { asm.Equate = old_equate }()

		asm.expansion++
		expansion := asm.expansion

		for n, line := range macro.Lines {
			lineno := macro.LineNo + n

			line = strings.ReplaceAll(line, "@", fmt.Sprintf("%v_%v_", name, expansion))
			words, err = asm.parseLine(line, lineno)
			if err != nil {
				err = &ErrMacro{Macro: name, Line: lineno, Err: err}
				err = &ErrSyntax{LineNo: lineno, Line: line, Err: err}
				return
			}

			err = asm.parseWords(words, lineno)
			if err != nil {
				err = &ErrMacro{Macro: name, Line: lineno, Err: err}
				err = &ErrSyntax{LineNo: lineno, Line: line, Err: err}
				return
			}
		}

		words = nil
		return
	}

	return
}

// Parse parses an input stream into a Program containing opcodes.
func (asm *Assembler) Parse(input io.Reader) (prog *Program, err error) {

	scanner := bufio.NewScanner(input)

	var line string
	var lineno int
	var macro *Macro

	defer func() {
		if err != nil {
			err = &ErrSyntax{LineNo: lineno, Line: line, Err: err}
		}
	}()

	asm.address = int(asm.Org)
	asm.expansion = 0
	asm.Label = make(map[string]int, 16)
	asm.Opcode = asm.Opcode[:0]
	if asm.Macro == nil {
		asm.Macro = make(map[string](*Macro))
	}
	clear(asm.Macro)
	asm.Equate = systemEquates()
	for attr, val := range asm.predefine {
		asm.Equate[attr] = val
	}

	for scanner.Scan() {
		text := scanner.Text()
		lineno += 1

		if asm.Verbose {
			log.Printf("%v: %v\n", lineno, text)
		}

		text_comment := strings.Split(text, ";")
		line = strings.TrimSpace(text_comment[0])
		words := strings.Fields(line)

		// .macro NAME arg...
		if len(words) > 0 && strings.ToLower(words[0]) == ".macro" {
			if macro != nil {
				err = ErrMacroNesting
				return
			}
			if len(words) < 2 {
				err = ErrMacroSyntax
				return
			}
			_, ok := asm.Macro[words[1]]
			if ok {
				err = ErrMacroDuplicate
				return
			}
			macro = &Macro{
				LineNo: lineno + 1,
			}
			if len(words) > 2 {
				macro.Args = strings.Fields(strings.ReplaceAll(strings.Join(words[2:], " "), ",", " "))
			}
			asm.Macro[words[1]] = macro
			continue
		}

		if len(words) > 0 && strings.ToLower(words[0]) == ".endm" {
			if macro == nil {
				err = ErrMacroLonelyEndm
				return
			}
			macro = nil
			continue
		}

		if macro != nil {
			macro.Lines = append(macro.Lines, line)
			continue
		}

		words, err = asm.parseLine(line, lineno)
		if err != nil {
			return
		}

		err = asm.parseWords(words, lineno)
		if err != nil {
			return
		}
	}

	err = scanner.Err()
	if err != nil {
		return
	}

	if macro != nil {
		err = ErrMacroLonely
		return
	}

	// Final linking of labels.
	for n := range asm.Opcode {
		op := &asm.Opcode[n]

		for _, link := range op.Links {
			addr, ok := asm.Label[link.Label]
			if !ok {
				lineno = op.LineNo
				line = strings.Join(op.Words, " ")
				err = ErrLabelMissing(link.Label)
				return
			}
			op.Bytes[link.Offset] = byte(addr)
			op.Bytes[link.Offset+1] = byte(addr >> 8)
		}
	}

	prog = &Program{
		Opcodes: make([]Opcode, len(asm.Opcode)),
	}
	copy(prog.Opcodes, asm.Opcode)

	return
}

// byteOf evaluates a word as an 8-bit value.
func (asm *Assembler) byteOf(word string) (data byte, err error) {
	value, err := asm.valueOf(word)
	if err != nil {
		return
	}

	value, err = valueRange(value, 8)
	if err != nil {
		return
	}

	data = byte(value)
	return
}

// wordOf evaluates a word as a 16-bit value, or as a reference to a label
// to be linked later.
func (asm *Assembler) wordOf(word string) (data [2]byte, label string, err error) {
	value, err := asm.valueOf(word)
	if err != nil {
		if reLabel.MatchString(word) {
			label = word
			err = nil
		}
		return
	}

	value, err = valueRange(value, 16)
	if err != nil {
		return
	}

	data = [2]byte{byte(value), byte(value >> 8)}
	return
}

// parseWords evaluates the words in a line of assembly text.
func (asm *Assembler) parseWords(words []string, lineno int) (err error) {
	var data []byte
	var links []Link

	// no-op
	if len(words) == 0 {
		return
	}

	initial_words := words

	defer func() {
		if err != nil || len(data) == 0 {
			return
		}
		opcode := Opcode{LineNo: lineno, Address: asm.address, Words: initial_words, Bytes: data, Links: links}
		asm.Opcode = append(asm.Opcode, opcode)
		asm.address += len(data)
	}()

	switch strings.ToLower(words[0]) {
	case ".org":
		if len(words) != 2 {
			err = ErrOrgSyntax
			return
		}
		var addr int
		addr, err = asm.valueOf(words[1])
		if err != nil {
			return
		}
		if addr < 0 || addr > 0xffff {
			err = ErrAddressRange
			return
		}
		asm.address = addr
		return
	case ".db":
		if len(words) < 2 {
			err = ErrOpcodeValueMissing
			return
		}
		for _, word := range words[1:] {
			var value byte
			value, err = asm.byteOf(word)
			if err != nil {
				return
			}
			data = append(data, value)
		}
		return
	case ".dw":
		if len(words) < 2 {
			err = ErrOpcodeValueMissing
			return
		}
		for _, word := range words[1:] {
			var value [2]byte
			var label string
			value, label, err = asm.wordOf(word)
			if err != nil {
				return
			}
			if len(label) != 0 {
				links = append(links, Link{Offset: len(data), Label: label})
			}
			data = append(data, value[:]...)
		}
		return
	}

	if strings.HasPrefix(words[0], ".") {
		err = ErrDataSyntax
		return
	}

	mnemonic := strings.ToUpper(words[0])
	args := words[1:]

	info, ok := mnemonicMap[mnemonic]
	if !ok {
		err = ErrOpcodeInvalid
		return
	}

	var operand string
	if info.operand != OPERAND_NONE {
		if len(args) <= info.args {
			err = ErrOpcodeValueMissing
			return
		}
		operand = args[len(args)-1]
		args = args[:len(args)-1]
	}
	if len(args) > info.args {
		err = ErrOpcodeExtraArgs
		return
	}
	if len(args) < info.args {
		err = ErrOpcodeValueMissing
		return
	}

	key := mnemonic
	if mnemonic == "RST" {
		var vector int
		vector, err = asm.valueOf(args[0])
		if err != nil {
			return
		}
		key = fmt.Sprintf("RST %d", vector)
	} else if len(args) > 0 {
		key += " " + strings.ToUpper(strings.Join(args, ","))
	}

	code, ok := opcodeMap[key]
	if !ok {
		if mnemonic == "RST" {
			err = ErrValueRange
		} else {
			err = ErrRegisterInvalid
		}
		return
	}

	data = []byte{code}

	switch info.operand {
	case OPERAND_D8, OPERAND_PORT:
		var value byte
		value, err = asm.byteOf(operand)
		if err != nil {
			return
		}
		data = append(data, value)
	case OPERAND_D16, OPERAND_ADDR:
		var value [2]byte
		var label string
		value, label, err = asm.wordOf(operand)
		if err != nil {
			return
		}
		if len(label) != 0 {
			links = append(links, Link{Offset: len(data), Label: label})
		}
		data = append(data, value[:]...)
	}

	return
}

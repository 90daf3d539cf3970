package asm

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/retroenv/retrogolib/arch/cpu/chip8"

	"gochip8/pkg/cpu"
	"gochip8/pkg/utils"
)

// mnemonic names come from the shared CHIP-8 instruction table so the
// assembler and the disassembly in pkg/cpu agree on spelling.
var (
	mnCLS  = strings.ToUpper(chip8.Cls.Name)
	mnRET  = strings.ToUpper(chip8.Ret.Name)
	mnJP   = strings.ToUpper(chip8.Jp.Name)
	mnCALL = strings.ToUpper(chip8.Call.Name)
	mnSE   = strings.ToUpper(chip8.Se.Name)
	mnSNE  = strings.ToUpper(chip8.Sne.Name)
	mnLD   = strings.ToUpper(chip8.Ld.Name)
	mnADD  = strings.ToUpper(chip8.Add.Name)
	mnOR   = strings.ToUpper(chip8.Or.Name)
	mnAND  = strings.ToUpper(chip8.And.Name)
	mnXOR  = strings.ToUpper(chip8.Xor.Name)
	mnSUB  = strings.ToUpper(chip8.Sub.Name)
	mnSUBN = strings.ToUpper(chip8.Subn.Name)
	mnSHR  = strings.ToUpper(chip8.Shr.Name)
	mnSHL  = strings.ToUpper(chip8.Shl.Name)
	mnRND  = strings.ToUpper(chip8.Rnd.Name)
	mnDRW  = strings.ToUpper(chip8.Drw.Name)
	mnSKP  = strings.ToUpper(chip8.Skp.Name)
	mnSKNP = strings.ToUpper(chip8.Sknp.Name)
)

var zeroOperandOps = map[string]cpu.Kind{
	mnCLS: cpu.KindCls,
	mnRET: cpu.KindRet,
}

var twoRegisterOps = map[string]cpu.Kind{
	mnOR:   cpu.KindOr,
	mnAND:  cpu.KindAnd,
	mnXOR:  cpu.KindXor,
	mnSUB:  cpu.KindSub,
	mnSUBN: cpu.KindSubn,
}

var shiftOps = map[string]cpu.Kind{
	mnSHR: cpu.KindShr,
	mnSHL: cpu.KindShl,
}

var keyOps = map[string]cpu.Kind{
	mnSKP:  cpu.KindSkp,
	mnSKNP: cpu.KindSknp,
}

// registerOrImmediateOps take "Vx, Vy" or "Vx, byte".
var registerOrImmediateOps = map[string][2]cpu.Kind{
	mnSE:  {cpu.KindSeReg, cpu.KindSeImm},
	mnSNE: {cpu.KindSneReg, cpu.KindSneImm},
}

// ldSpecial maps "LD <special>, Vx" forms.
var ldSpecial = map[string]cpu.Kind{
	"DT":  cpu.KindLdDTVx,
	"ST":  cpu.KindLdSTVx,
	"F":   cpu.KindLdF,
	"B":   cpu.KindLdB,
	"[I]": cpu.KindStore,
}

// ldFromSpecial maps "LD Vx, <special>" forms.
var ldFromSpecial = map[string]cpu.Kind{
	"DT":  cpu.KindLdVxDT,
	"K":   cpu.KindLdVxK,
	"[I]": cpu.KindLoad,
}

type Assembler struct {
	labels map[string]uint16
}

type parsedLine struct {
	lineNo   int
	labels   []string
	mnemonic string
	operands []string
}

func NewAssembler() *Assembler {
	return &Assembler{
		labels: make(map[string]uint16),
	}
}

// Assemble translates source into a program image that loads at
// cpu.ProgramStart. The source map links image offsets to source lines.
func Assemble(code string) ([]byte, map[uint16]int, error) {
	return NewAssembler().Assemble(code)
}

func (a *Assembler) Assemble(code string) ([]byte, map[uint16]int, error) {
	lines := strings.Split(code, "\n")

	if err := a.pass1(lines); err != nil {
		return nil, nil, err
	}

	return a.pass2(lines)
}

// Labels returns the resolved label addresses, keyed by upper-case name.
func (a *Assembler) Labels() map[string]uint16 {
	out := make(map[string]uint16, len(a.labels))
	for k, v := range a.labels {
		out[k] = v
	}
	return out
}

func (a *Assembler) pass1(lines []string) error {
	address := uint32(cpu.ProgramStart)

	for i, raw := range lines {
		lineNo := i + 1
		p, err := parseLine(raw, lineNo)
		if err != nil {
			return err
		}

		// Labels on an .ORG line bind to the new origin.
		if p.mnemonic == ".ORG" {
			target, err := parseOrigin(p.operands, lineNo)
			if err != nil {
				return err
			}
			if target < address {
				return fmt.Errorf("cannot move origin backward on line %d", lineNo)
			}
			address = target
		}

		if err := a.bindLabels(p.labels, address, lineNo); err != nil {
			return err
		}

		switch p.mnemonic {
		case "", ".ORG":
			continue

		case ".BYTE":
			if len(p.operands) == 0 {
				return fmt.Errorf(".BYTE expects at least one operand on line %d", lineNo)
			}
			address += uint32(len(p.operands))

		case ".WORD":
			if len(p.operands) != 1 {
				return fmt.Errorf(".WORD expects exactly one operand on line %d", lineNo)
			}
			address += 2

		default:
			if !isMnemonic(p.mnemonic) {
				return fmt.Errorf("unknown instruction on line %d: %s", lineNo, p.mnemonic)
			}
			address += 2
		}

		if address > cpu.MemorySize {
			return fmt.Errorf("program too large near line %d", lineNo)
		}
	}

	return nil
}

func (a *Assembler) bindLabels(labels []string, address uint32, lineNo int) error {
	for _, lbl := range labels {
		if address >= cpu.MemorySize {
			return fmt.Errorf("label '%s' on line %d points past addressable memory", lbl, lineNo)
		}
		key := normalizeLabel(lbl)
		if _, exists := a.labels[key]; exists {
			return fmt.Errorf("duplicate label '%s' on line %d", lbl, lineNo)
		}
		a.labels[key] = uint16(address)
	}
	return nil
}

func (a *Assembler) pass2(lines []string) ([]byte, map[uint16]int, error) {
	program := make([]byte, 0)
	sourceMap := make(map[uint16]int)

	for i, raw := range lines {
		lineNo := i + 1
		p, err := parseLine(raw, lineNo)
		if err != nil {
			return nil, nil, err
		}

		if p.mnemonic == "" {
			continue
		}

		if p.mnemonic != ".ORG" {
			sourceMap[uint16(len(program))] = lineNo
		}

		switch p.mnemonic {
		case ".ORG":
			target, err := parseOrigin(p.operands, lineNo)
			if err != nil {
				return nil, nil, err
			}
			padding := int(target) - cpu.ProgramStart - len(program)
			if padding < 0 {
				return nil, nil, fmt.Errorf("cannot move origin backward on line %d", lineNo)
			}
			program = append(program, make([]byte, padding)...)
			continue

		case ".BYTE":
			for _, op := range p.operands {
				val, err := a.parseValue(op, 0xFF, lineNo)
				if err != nil {
					return nil, nil, err
				}
				program = append(program, byte(val))
			}
			continue

		case ".WORD":
			val, err := a.parseValue(p.operands[0], 0xFFFF, lineNo)
			if err != nil {
				return nil, nil, err
			}
			program = append(program, byte(val>>8), byte(val&0xFF))
			continue
		}

		word, err := a.encode(p)
		if err != nil {
			return nil, nil, err
		}
		program = append(program, byte(word>>8), byte(word&0xFF))
	}

	return program, sourceMap, nil
}

// encode assembles one instruction line into its big-endian word.
func (a *Assembler) encode(p parsedLine) (uint16, error) {
	mnemonic, ops, lineNo := p.mnemonic, p.operands, p.lineNo

	expect := func(n int) error {
		if len(ops) != n {
			return fmt.Errorf("%s expects %d operands on line %d", mnemonic, n, lineNo)
		}
		return nil
	}

	if kind, ok := zeroOperandOps[mnemonic]; ok {
		if err := expect(0); err != nil {
			return 0, err
		}
		return cpu.Encode(kind, 0, 0, 0), nil
	}

	if kind, ok := twoRegisterOps[mnemonic]; ok {
		if err := expect(2); err != nil {
			return 0, err
		}
		x, y, err := parseRegisterPair(ops, lineNo)
		if err != nil {
			return 0, err
		}
		return cpu.Encode(kind, x, y, 0), nil
	}

	if kind, ok := shiftOps[mnemonic]; ok {
		if len(ops) != 1 && len(ops) != 2 {
			return 0, fmt.Errorf("%s expects 1 or 2 operands on line %d", mnemonic, lineNo)
		}
		x, err := parseRegister(ops[0], lineNo)
		if err != nil {
			return 0, err
		}
		y := x
		if len(ops) == 2 {
			if y, err = parseRegister(ops[1], lineNo); err != nil {
				return 0, err
			}
		}
		return cpu.Encode(kind, x, y, 0), nil
	}

	if kind, ok := keyOps[mnemonic]; ok {
		if err := expect(1); err != nil {
			return 0, err
		}
		x, err := parseRegister(ops[0], lineNo)
		if err != nil {
			return 0, err
		}
		return cpu.Encode(kind, x, 0, 0), nil
	}

	if kinds, ok := registerOrImmediateOps[mnemonic]; ok {
		if err := expect(2); err != nil {
			return 0, err
		}
		return a.encodeRegisterOrImmediate(kinds[0], kinds[1], ops, lineNo)
	}

	switch mnemonic {
	case mnJP:
		if len(ops) == 2 {
			if !strings.EqualFold(ops[0], "V0") {
				return 0, fmt.Errorf("JP with offset expects V0 on line %d", lineNo)
			}
			addr, err := a.parseValue(ops[1], 0xFFF, lineNo)
			if err != nil {
				return 0, err
			}
			return cpu.Encode(cpu.KindJpOffset, 0, 0, addr), nil
		}
		if err := expect(1); err != nil {
			return 0, err
		}
		addr, err := a.parseValue(ops[0], 0xFFF, lineNo)
		if err != nil {
			return 0, err
		}
		return cpu.Encode(cpu.KindJp, 0, 0, addr), nil

	case mnCALL:
		if err := expect(1); err != nil {
			return 0, err
		}
		addr, err := a.parseValue(ops[0], 0xFFF, lineNo)
		if err != nil {
			return 0, err
		}
		return cpu.Encode(cpu.KindCall, 0, 0, addr), nil

	case mnADD:
		if err := expect(2); err != nil {
			return 0, err
		}
		if strings.EqualFold(ops[0], "I") {
			x, err := parseRegister(ops[1], lineNo)
			if err != nil {
				return 0, err
			}
			return cpu.Encode(cpu.KindAddI, x, 0, 0), nil
		}
		return a.encodeRegisterOrImmediate(cpu.KindAddReg, cpu.KindAddImm, ops, lineNo)

	case mnLD:
		if err := expect(2); err != nil {
			return 0, err
		}
		return a.encodeLoad(ops, lineNo)

	case mnRND:
		if err := expect(2); err != nil {
			return 0, err
		}
		x, err := parseRegister(ops[0], lineNo)
		if err != nil {
			return 0, err
		}
		nn, err := a.parseValue(ops[1], 0xFF, lineNo)
		if err != nil {
			return 0, err
		}
		return cpu.Encode(cpu.KindRnd, x, 0, nn), nil

	case mnDRW:
		if err := expect(3); err != nil {
			return 0, err
		}
		x, y, err := parseRegisterPair(ops[:2], lineNo)
		if err != nil {
			return 0, err
		}
		n, err := a.parseValue(ops[2], 0xF, lineNo)
		if err != nil {
			return 0, err
		}
		return cpu.Encode(cpu.KindDrw, x, y, n), nil
	}

	return 0, fmt.Errorf("unknown instruction on line %d: %s", lineNo, mnemonic)
}

func (a *Assembler) encodeRegisterOrImmediate(regKind, immKind cpu.Kind, ops []string, lineNo int) (uint16, error) {
	x, err := parseRegister(ops[0], lineNo)
	if err != nil {
		return 0, err
	}
	if y, ok := registerIndex(ops[1]); ok {
		return cpu.Encode(regKind, x, y, 0), nil
	}
	nn, err := a.parseValue(ops[1], 0xFF, lineNo)
	if err != nil {
		return 0, err
	}
	return cpu.Encode(immKind, x, 0, nn), nil
}

func (a *Assembler) encodeLoad(ops []string, lineNo int) (uint16, error) {
	dst, src := strings.ToUpper(ops[0]), strings.ToUpper(ops[1])

	if dst == "I" {
		addr, err := a.parseValue(ops[1], 0xFFF, lineNo)
		if err != nil {
			return 0, err
		}
		return cpu.Encode(cpu.KindLdI, 0, 0, addr), nil
	}

	if kind, ok := ldSpecial[dst]; ok {
		x, err := parseRegister(ops[1], lineNo)
		if err != nil {
			return 0, err
		}
		return cpu.Encode(kind, x, 0, 0), nil
	}

	x, err := parseRegister(ops[0], lineNo)
	if err != nil {
		return 0, err
	}
	if kind, ok := ldFromSpecial[src]; ok {
		return cpu.Encode(kind, x, 0, 0), nil
	}
	if y, ok := registerIndex(ops[1]); ok {
		return cpu.Encode(cpu.KindLdReg, x, y, 0), nil
	}
	nn, err := a.parseValue(ops[1], 0xFF, lineNo)
	if err != nil {
		return 0, err
	}
	return cpu.Encode(cpu.KindLdImm, x, 0, nn), nil
}

func parseLine(raw string, lineNo int) (parsedLine, error) {
	p := parsedLine{lineNo: lineNo}

	line := strings.TrimSpace(stripComments(raw))
	if line == "" {
		return p, nil
	}

	for {
		colon := strings.IndexByte(line, ':')
		if colon <= 0 {
			break
		}

		beforeColon := strings.TrimSpace(line[:colon])
		if strings.ContainsAny(beforeColon, " \t") {
			break
		}

		if !isIdentifier(beforeColon) {
			return p, fmt.Errorf("invalid label '%s' on line %d", beforeColon, lineNo)
		}

		p.labels = append(p.labels, beforeColon)
		line = strings.TrimSpace(line[colon+1:])
		if line == "" {
			return p, nil
		}
	}

	fields := strings.Fields(normalizeInstructionText(line))
	if len(fields) == 0 {
		return p, nil
	}

	p.mnemonic = strings.ToUpper(fields[0])
	if len(fields) > 1 {
		p.operands = fields[1:]
	}

	return p, nil
}

func stripComments(line string) string {
	semicolon := strings.Index(line, ";")
	doubleSlash := strings.Index(line, "//")

	cut := -1
	if semicolon >= 0 {
		cut = semicolon
	}
	if doubleSlash >= 0 && (cut == -1 || doubleSlash < cut) {
		cut = doubleSlash
	}
	if cut >= 0 {
		return line[:cut]
	}
	return line
}

func normalizeInstructionText(line string) string {
	return strings.ReplaceAll(line, ",", " ")
}

func parseOrigin(ops []string, lineNo int) (uint32, error) {
	if len(ops) != 1 {
		return 0, fmt.Errorf(".ORG expects exactly one operand on line %d", lineNo)
	}
	target, err := parseNumber(ops[0])
	if err != nil {
		return 0, fmt.Errorf("invalid .ORG value on line %d: %s", lineNo, ops[0])
	}
	if target < cpu.ProgramStart || target >= cpu.MemorySize {
		return 0, fmt.Errorf(".ORG out of range on line %d: %s", lineNo, ops[0])
	}
	return uint32(target), nil
}

// registerIndex parses V0-VF.
func registerIndex(token string) (uint8, bool) {
	if len(token) != 2 || (token[0] != 'V' && token[0] != 'v') {
		return 0, false
	}
	v, err := strconv.ParseUint(token[1:], 16, 8)
	if err != nil {
		return 0, false
	}
	return uint8(v), true
}

func parseRegister(token string, lineNo int) (uint8, error) {
	if x, ok := registerIndex(token); ok {
		return x, nil
	}
	return 0, fmt.Errorf("invalid register '%s' on line %d", token, lineNo)
}

func parseRegisterPair(ops []string, lineNo int) (uint8, uint8, error) {
	x, err := parseRegister(ops[0], lineNo)
	if err != nil {
		return 0, 0, err
	}
	y, err := parseRegister(ops[1], lineNo)
	if err != nil {
		return 0, 0, err
	}
	return x, y, nil
}

// parseNumber accepts Go literals (42, 0x2A, 0b101010) and $-prefixed hex.
func parseNumber(token string) (uint64, error) {
	if strings.HasPrefix(token, "$") {
		return strconv.ParseUint(token[1:], 16, 32)
	}
	return strconv.ParseUint(token, 0, 32)
}

func (a *Assembler) parseValue(token string, max uint16, lineNo int) (uint16, error) {
	if value, err := parseNumber(token); err == nil {
		if value > uint64(max) {
			return 0, fmt.Errorf("value out of range on line %d: %s", lineNo, token)
		}
		return uint16(value), nil
	}

	label := normalizeLabel(token)
	if addr, ok := a.labels[label]; ok {
		if addr > max {
			return 0, fmt.Errorf("label '%s' out of range on line %d", token, lineNo)
		}
		return addr, nil
	}

	if isIdentifier(token) {
		return 0, fmt.Errorf("undefined label '%s' on line %d", token, lineNo)
	}

	return 0, fmt.Errorf("invalid value '%s' on line %d", token, lineNo)
}

func isMnemonic(mnemonic string) bool {
	if _, ok := zeroOperandOps[mnemonic]; ok {
		return true
	}
	if _, ok := twoRegisterOps[mnemonic]; ok {
		return true
	}
	if _, ok := shiftOps[mnemonic]; ok {
		return true
	}
	if _, ok := keyOps[mnemonic]; ok {
		return true
	}
	if _, ok := registerOrImmediateOps[mnemonic]; ok {
		return true
	}
	switch mnemonic {
	case mnJP, mnCALL, mnADD, mnLD, mnRND, mnDRW:
		return true
	}
	return false
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}

	for i, r := range s {
		if i == 0 {
			if !unicode.IsLetter(r) && r != '_' {
				return false
			}
			continue
		}

		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' {
			return false
		}
	}

	return true
}

func normalizeLabel(label string) string {
	return strings.ToUpper(label)
}

// LoadFile returns the program image stored at path. Files with the source
// extension are assembled first; anything else is taken as a raw image.
func LoadFile(path string) ([]byte, error) {
	data, err := utils.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if !utils.IsSource(path) {
		return data, nil
	}
	image, _, err := Assemble(string(data))
	if err != nil {
		return nil, fmt.Errorf("assembling %q: %w", path, err)
	}
	return image, nil
}

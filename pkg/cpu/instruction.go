package cpu

import (
	"fmt"

	"github.com/retroenv/retrogolib/arch/cpu/chip8"
)

// Kind identifies a decoded instruction. It is a closed set: any word that
// does not map onto one of the known opcodes decodes to KindInvalid.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindCls          // 00E0
	KindRet          // 00EE
	KindJp           // 1NNN
	KindCall         // 2NNN
	KindSeImm        // 3XNN
	KindSneImm       // 4XNN
	KindSeReg        // 5XY0
	KindLdImm        // 6XNN
	KindAddImm       // 7XNN
	KindLdReg        // 8XY0
	KindOr           // 8XY1
	KindAnd          // 8XY2
	KindXor          // 8XY3
	KindAddReg       // 8XY4
	KindSub          // 8XY5
	KindShr          // 8XY6
	KindSubn         // 8XY7
	KindShl          // 8XYE
	KindSneReg       // 9XY0
	KindLdI          // ANNN
	KindJpOffset     // BNNN
	KindRnd          // CXNN
	KindDrw          // DXYN
	KindSkp          // EX9E
	KindSknp         // EXA1
	KindLdVxDT       // FX07
	KindLdVxK        // FX0A
	KindLdDTVx       // FX15
	KindLdSTVx       // FX18
	KindAddI         // FX1E
	KindLdF          // FX29
	KindLdB          // FX33
	KindStore        // FX55
	KindLoad         // FX65

	numKinds
)

var kindInstructions = [numKinds]*chip8.Instruction{
	KindCls:      chip8.Cls,
	KindRet:      chip8.Ret,
	KindJp:       chip8.Jp,
	KindCall:     chip8.Call,
	KindSeImm:    chip8.Se,
	KindSneImm:   chip8.Sne,
	KindSeReg:    chip8.Se,
	KindLdImm:    chip8.Ld,
	KindAddImm:   chip8.Add,
	KindLdReg:    chip8.Ld,
	KindOr:       chip8.Or,
	KindAnd:      chip8.And,
	KindXor:      chip8.Xor,
	KindAddReg:   chip8.Add,
	KindSub:      chip8.Sub,
	KindShr:      chip8.Shr,
	KindSubn:     chip8.Subn,
	KindShl:      chip8.Shl,
	KindSneReg:   chip8.Sne,
	KindLdI:      chip8.Ld,
	KindJpOffset: chip8.Jp,
	KindRnd:      chip8.Rnd,
	KindDrw:      chip8.Drw,
	KindSkp:      chip8.Skp,
	KindSknp:     chip8.Sknp,
	KindLdVxDT:   chip8.Ld,
	KindLdVxK:    chip8.Ld,
	KindLdDTVx:   chip8.Ld,
	KindLdSTVx:   chip8.Ld,
	KindAddI:     chip8.Add,
	KindLdF:      chip8.Ld,
	KindLdB:      chip8.Ld,
	KindStore:    chip8.Ld,
	KindLoad:     chip8.Ld,
}

// String returns the assembler mnemonic.
func (k Kind) String() string {
	if k >= numKinds || kindInstructions[k] == nil {
		return "invalid"
	}
	return kindInstructions[k].Name
}

// Instruction is one decoded instruction word with every operand field
// extracted, whether or not the opcode uses it.
type Instruction struct {
	Word   uint16
	Kind   Kind
	Family uint8  // bits 12-15
	Addr   uint16 // bits 0-11
	Imm    byte   // bits 0-7
	N      byte   // bits 0-3
	X      uint8  // bits 8-11
	Y      uint8  // bits 4-7
}

// Decode splits word into its fields and resolves the instruction kind.
// It never fails; unknown words get KindInvalid.
func Decode(word uint16) Instruction {
	ins := Instruction{
		Word:   word,
		Family: uint8(word >> 12),
		Addr:   word & 0x0FFF,
		Imm:    byte(word & 0x00FF),
		N:      byte(word & 0x000F),
		X:      uint8((word & 0x0F00) >> 8),
		Y:      uint8((word & 0x00F0) >> 4),
	}
	ins.Kind = resolveKind(ins)
	return ins
}

func resolveKind(ins Instruction) Kind {
	switch ins.Family {
	case 0x0:
		switch ins.Word {
		case 0x00E0:
			return KindCls
		case 0x00EE:
			return KindRet
		}
	case 0x1:
		return KindJp
	case 0x2:
		return KindCall
	case 0x3:
		return KindSeImm
	case 0x4:
		return KindSneImm
	case 0x5:
		if ins.N == 0 {
			return KindSeReg
		}
	case 0x6:
		return KindLdImm
	case 0x7:
		return KindAddImm
	case 0x8:
		switch ins.N {
		case 0x0:
			return KindLdReg
		case 0x1:
			return KindOr
		case 0x2:
			return KindAnd
		case 0x3:
			return KindXor
		case 0x4:
			return KindAddReg
		case 0x5:
			return KindSub
		case 0x6:
			return KindShr
		case 0x7:
			return KindSubn
		case 0xE:
			return KindShl
		}
	case 0x9:
		if ins.N == 0 {
			return KindSneReg
		}
	case 0xA:
		return KindLdI
	case 0xB:
		return KindJpOffset
	case 0xC:
		return KindRnd
	case 0xD:
		return KindDrw
	case 0xE:
		switch ins.Imm {
		case 0x9E:
			return KindSkp
		case 0xA1:
			return KindSknp
		}
	case 0xF:
		switch ins.Imm {
		case 0x07:
			return KindLdVxDT
		case 0x0A:
			return KindLdVxK
		case 0x15:
			return KindLdDTVx
		case 0x18:
			return KindLdSTVx
		case 0x1E:
			return KindAddI
		case 0x29:
			return KindLdF
		case 0x33:
			return KindLdB
		case 0x55:
			return KindStore
		case 0x65:
			return KindLoad
		}
	}
	return KindInvalid
}

// Operands formats the operand list in assembler syntax.
func (ins Instruction) Operands() string {
	switch ins.Kind {
	case KindCls, KindRet:
		return ""
	case KindJp, KindCall:
		return fmt.Sprintf("$%03X", ins.Addr)
	case KindSeImm, KindSneImm, KindLdImm, KindAddImm, KindRnd:
		return fmt.Sprintf("V%X, $%02X", ins.X, ins.Imm)
	case KindSeReg, KindSneReg, KindLdReg, KindOr, KindAnd, KindXor,
		KindAddReg, KindSub, KindSubn, KindShr, KindShl:
		return fmt.Sprintf("V%X, V%X", ins.X, ins.Y)
	case KindLdI:
		return fmt.Sprintf("I, $%03X", ins.Addr)
	case KindJpOffset:
		return fmt.Sprintf("V0, $%03X", ins.Addr)
	case KindDrw:
		return fmt.Sprintf("V%X, V%X, $%X", ins.X, ins.Y, ins.N)
	case KindSkp, KindSknp:
		return fmt.Sprintf("V%X", ins.X)
	case KindLdVxDT:
		return fmt.Sprintf("V%X, DT", ins.X)
	case KindLdVxK:
		return fmt.Sprintf("V%X, K", ins.X)
	case KindLdDTVx:
		return fmt.Sprintf("DT, V%X", ins.X)
	case KindLdSTVx:
		return fmt.Sprintf("ST, V%X", ins.X)
	case KindAddI:
		return fmt.Sprintf("I, V%X", ins.X)
	case KindLdF:
		return fmt.Sprintf("F, V%X", ins.X)
	case KindLdB:
		return fmt.Sprintf("B, V%X", ins.X)
	case KindStore:
		return fmt.Sprintf("[I], V%X", ins.X)
	case KindLoad:
		return fmt.Sprintf("V%X, [I]", ins.X)
	}
	return fmt.Sprintf("$%04X", ins.Word)
}

func (ins Instruction) String() string {
	if ins.Kind == KindInvalid {
		return fmt.Sprintf(".word $%04X", ins.Word)
	}
	ops := ins.Operands()
	if ops == "" {
		return ins.Kind.String()
	}
	return ins.Kind.String() + " " + ops
}

// Disassemble decodes the words in [from, to) and returns one line per
// instruction, prefixed with its address.
func Disassemble(mem *Memory, from, to uint16) ([]string, error) {
	var lines []string
	for addr := from; addr+1 < to; addr += 2 {
		word, err := mem.Fetch(addr)
		if err != nil {
			return lines, err
		}
		lines = append(lines, fmt.Sprintf("%03X: %04X  %s", addr, word, Decode(word)))
	}
	return lines, nil
}

// Encode builds the instruction word for kind, the inverse of Decode.
// operand carries NNN, NN or N depending on the kind; fields the kind does
// not use are ignored.
func Encode(kind Kind, x, y uint8, operand uint16) uint16 {
	vx := uint16(x&0xF) << 8
	vy := uint16(y&0xF) << 4
	nnn := operand & 0x0FFF
	nn := operand & 0x00FF
	n := operand & 0x000F

	switch kind {
	case KindCls:
		return 0x00E0
	case KindRet:
		return 0x00EE
	case KindJp:
		return 0x1000 | nnn
	case KindCall:
		return 0x2000 | nnn
	case KindSeImm:
		return 0x3000 | vx | nn
	case KindSneImm:
		return 0x4000 | vx | nn
	case KindSeReg:
		return 0x5000 | vx | vy
	case KindLdImm:
		return 0x6000 | vx | nn
	case KindAddImm:
		return 0x7000 | vx | nn
	case KindLdReg:
		return 0x8000 | vx | vy
	case KindOr:
		return 0x8001 | vx | vy
	case KindAnd:
		return 0x8002 | vx | vy
	case KindXor:
		return 0x8003 | vx | vy
	case KindAddReg:
		return 0x8004 | vx | vy
	case KindSub:
		return 0x8005 | vx | vy
	case KindShr:
		return 0x8006 | vx | vy
	case KindSubn:
		return 0x8007 | vx | vy
	case KindShl:
		return 0x800E | vx | vy
	case KindSneReg:
		return 0x9000 | vx | vy
	case KindLdI:
		return 0xA000 | nnn
	case KindJpOffset:
		return 0xB000 | nnn
	case KindRnd:
		return 0xC000 | vx | nn
	case KindDrw:
		return 0xD000 | vx | vy | n
	case KindSkp:
		return 0xE09E | vx
	case KindSknp:
		return 0xE0A1 | vx
	case KindLdVxDT:
		return 0xF007 | vx
	case KindLdVxK:
		return 0xF00A | vx
	case KindLdDTVx:
		return 0xF015 | vx
	case KindLdSTVx:
		return 0xF018 | vx
	case KindAddI:
		return 0xF01E | vx
	case KindLdF:
		return 0xF029 | vx
	case KindLdB:
		return 0xF033 | vx
	case KindStore:
		return 0xF055 | vx
	case KindLoad:
		return 0xF065 | vx
	}
	return operand
}

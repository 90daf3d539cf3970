package cpu

import (
	"errors"
	"fmt"
)

var (
	ErrStackUnderflow = errors.New("return with empty call stack")
	ErrStackOverflow  = errors.New("call stack exhausted")
	ErrOutOfBounds    = errors.New("memory access out of bounds")
	ErrImageTooLarge  = errors.New("program image too large for memory")
	ErrHalted         = errors.New("machine halted")
)

// DecodeError reports an instruction word that matches no known opcode.
type DecodeError struct {
	Addr uint16
	Word uint16
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("unknown instruction 0x%04X at 0x%03X", e.Word, e.Addr)
}

// AddressError reports an access that falls outside emulated memory.
type AddressError struct {
	Addr uint16
	Len  int
}

func (e *AddressError) Error() string {
	return fmt.Sprintf("%v: 0x%04X+%d", ErrOutOfBounds, e.Addr, e.Len)
}

func (e *AddressError) Unwrap() error {
	return ErrOutOfBounds
}

// Fault wraps a fatal error with the address of the instruction that caused it.
type Fault struct {
	PC  uint16
	Err error
}

func (f *Fault) Error() string {
	return fmt.Sprintf("fault at 0x%03X: %v", f.PC, f.Err)
}

func (f *Fault) Unwrap() error {
	return f.Err
}

package cpu

const (
	NumRegisters = 16

	// Flag is the register overwritten by carry, borrow, shift and collision results.
	Flag = 0xF

	// StackDepth mirrors the sixteen return slots of the reference hardware.
	StackDepth = 16
)

// Registers holds V0-VF, the address register I and the call stack.
type Registers struct {
	V [NumRegisters]byte
	I uint16

	stack []uint16
}

func (r *Registers) Get(x uint8) byte {
	return r.V[x&0xF]
}

func (r *Registers) Set(x uint8, val byte) {
	r.V[x&0xF] = val
}

func (r *Registers) setFlag(set bool) {
	if set {
		r.V[Flag] = 1
	} else {
		r.V[Flag] = 0
	}
}

func (r *Registers) Push(addr uint16) error {
	if len(r.stack) >= StackDepth {
		return ErrStackOverflow
	}
	r.stack = append(r.stack, addr)
	return nil
}

func (r *Registers) Pop() (uint16, error) {
	if len(r.stack) == 0 {
		return 0, ErrStackUnderflow
	}
	addr := r.stack[len(r.stack)-1]
	r.stack = r.stack[:len(r.stack)-1]
	return addr, nil
}

func (r *Registers) Depth() int {
	return len(r.stack)
}

// Stack returns a copy of the return addresses, oldest first.
func (r *Registers) Stack() []uint16 {
	out := make([]uint16, len(r.stack))
	copy(out, r.stack)
	return out
}

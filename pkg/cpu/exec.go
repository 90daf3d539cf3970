package cpu

// execute runs one decoded instruction. Each case advances or sets PC
// itself. Handlers that can fail check before mutating anything, so a
// failed instruction leaves the machine as it was.
func (c *CPU) execute(pc uint16, ins Instruction, keys Keys) error {
	r := &c.Regs
	x, y := ins.X, ins.Y

	switch ins.Kind {
	case KindCls:
		// 00E0 Clears the screen.
		c.Display.Clear()
		c.next()

	case KindRet:
		// 00EE Returns from a subroutine.
		addr, err := r.Pop()
		if err != nil {
			return err
		}
		c.jump(addr)

	case KindJp:
		// 1NNN Jumps to address NNN.
		c.jump(ins.Addr)

	case KindCall:
		// 2NNN Calls subroutine at NNN.
		if err := r.Push(pc + 2); err != nil {
			return err
		}
		c.jump(ins.Addr)

	case KindSeImm:
		// 3XNN Skips the next instruction if VX equals NN.
		c.skipIf(r.Get(x) == ins.Imm)

	case KindSneImm:
		// 4XNN Skips the next instruction if VX doesn't equal NN.
		c.skipIf(r.Get(x) != ins.Imm)

	case KindSeReg:
		// 5XY0 Skips the next instruction if VX equals VY.
		c.skipIf(r.Get(x) == r.Get(y))

	case KindLdImm:
		// 6XNN Sets VX to NN.
		r.Set(x, ins.Imm)
		c.next()

	case KindAddImm:
		// 7XNN Adds NN to VX. VF is untouched.
		r.Set(x, r.Get(x)+ins.Imm)
		c.next()

	case KindLdReg:
		// 8XY0 Sets VX to the value of VY.
		r.Set(x, r.Get(y))
		c.next()

	case KindOr:
		// 8XY1 Sets VX to VX or VY.
		r.Set(x, r.Get(x)|r.Get(y))
		c.next()

	case KindAnd:
		// 8XY2 Sets VX to VX and VY.
		r.Set(x, r.Get(x)&r.Get(y))
		c.next()

	case KindXor:
		// 8XY3 Sets VX to VX xor VY.
		r.Set(x, r.Get(x)^r.Get(y))
		c.next()

	case KindAddReg:
		// 8XY4 Adds VY to VX. VF is set to 1 when there's a carry, and to 0 when there isn't.
		sum := uint16(r.Get(x)) + uint16(r.Get(y))
		r.Set(x, byte(sum))
		r.setFlag(sum > 0xFF)
		c.next()

	case KindSub:
		// 8XY5 VY is subtracted from VX. VF is set to 0 when there's a borrow, and 1 when there isn't.
		vx, vy := r.Get(x), r.Get(y)
		r.Set(x, vx-vy)
		r.setFlag(vx >= vy)
		c.next()

	case KindShr:
		// 8XY6 Shifts VX right by one. VF is set to the bit shifted out.
		src := c.shiftSource(x, y)
		r.Set(x, src>>1)
		r.V[Flag] = src & 0x01
		c.next()

	case KindSubn:
		// 8XY7 Sets VX to VY minus VX. VF is set to 0 when there's a borrow, and 1 when there isn't.
		vx, vy := r.Get(x), r.Get(y)
		r.Set(x, vy-vx)
		r.setFlag(vy >= vx)
		c.next()

	case KindShl:
		// 8XYE Shifts VX left by one. VF is set to the bit shifted out.
		src := c.shiftSource(x, y)
		r.Set(x, src<<1)
		r.V[Flag] = src >> 7
		c.next()

	case KindSneReg:
		// 9XY0 Skips the next instruction if VX doesn't equal VY.
		c.skipIf(r.Get(x) != r.Get(y))

	case KindLdI:
		// ANNN Sets I to the address NNN.
		r.I = ins.Addr
		c.next()

	case KindJpOffset:
		// BNNN Jumps to the address NNN plus V0 (or VX with the jump quirk).
		base := r.Get(0)
		if c.Quirks.JumpUsesVX {
			base = r.Get(x)
		}
		c.jump(ins.Addr + uint16(base))

	case KindRnd:
		// CXNN Sets VX to a random number and NN.
		r.Set(x, c.Random.Byte()&ins.Imm)
		c.next()

	case KindDrw:
		// DXYN Draws an N row sprite from I at (VX, VY). VF is set to 1 if
		// any lit pixel was turned off, and to 0 otherwise.
		sprite, err := c.Memory.Slice(r.I, int(ins.N))
		if err != nil {
			return err
		}
		r.setFlag(c.Display.Draw(sprite, r.Get(x), r.Get(y)))
		c.next()

	case KindSkp:
		// EX9E Skips the next instruction if the key stored in VX is pressed.
		c.skipIf(keys != nil && keys.Pressed(r.Get(x)))

	case KindSknp:
		// EXA1 Skips the next instruction if the key stored in VX isn't pressed.
		c.skipIf(keys == nil || !keys.Pressed(r.Get(x)))

	case KindLdVxDT:
		// FX07 Sets VX to the value of the delay timer.
		r.Set(x, c.Delay.Read())
		c.next()

	case KindLdVxK:
		// FX0A A key press is awaited, and then stored in VX.
		c.Waiting = true
		c.waitReg = x
		c.next()

	case KindLdDTVx:
		// FX15 Sets the delay timer to VX.
		c.Delay.Set(r.Get(x))
		c.next()

	case KindLdSTVx:
		// FX18 Sets the sound timer to VX. Nothing is ever played.
		c.SoundTimer = r.Get(x)
		c.next()

	case KindAddI:
		// FX1E Adds VX to I. VF is untouched.
		r.I += uint16(r.Get(x))
		c.next()

	case KindLdF:
		// FX29 Sets I to the glyph for the character in VX.
		r.I = uint16(r.Get(x)) * GlyphSize
		c.next()

	case KindLdB:
		// FX33 Stores the BCD digits of VX at I, I+1 and I+2.
		dst, err := c.Memory.Slice(r.I, 3)
		if err != nil {
			return err
		}
		vx := r.Get(x)
		dst[0] = vx / 100
		dst[1] = vx / 10 % 10
		dst[2] = vx % 10
		c.next()

	case KindStore:
		// FX55 Stores V0 to VX in memory starting at I. I ends at I+X+1.
		n := int(x) + 1
		dst, err := c.Memory.Slice(r.I, n)
		if err != nil {
			return err
		}
		copy(dst, r.V[:n])
		r.I += uint16(n)
		c.next()

	case KindLoad:
		// FX65 Fills V0 to VX from memory starting at I. I ends at I+X+1.
		n := int(x) + 1
		src, err := c.Memory.Slice(r.I, n)
		if err != nil {
			return err
		}
		copy(r.V[:n], src)
		r.I += uint16(n)
		c.next()

	default:
		// KindInvalid
		return &DecodeError{Addr: pc, Word: ins.Word}
	}

	return nil
}

func (c *CPU) shiftSource(x, y uint8) byte {
	if c.Quirks.ShiftUsesVY {
		return c.Regs.Get(y)
	}
	return c.Regs.Get(x)
}

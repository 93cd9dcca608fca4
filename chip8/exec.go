package chip8

import "fmt"

// Fetch reads the instruction at PC into Op and advances PC past it.
func (p *Processor) Fetch() Instr {
	p.Op = Instr(short(p.read(p.PC), p.read(p.PC+1)))
	p.PC += 2
	return p.Op
}

// Step executes the instruction at PC. It only returns a non-nil error,
// always a HaltError, if the instruction is not part of the instruction
// set; execution cannot meaningfully continue after that.
func (p *Processor) Step() error {
	addr := p.PC
	op := p.Fetch()
	p.waiting = false

	x, y := op.X(), op.Y()
	vx, vy := p.V[x], p.V[y]

	switch op.Kind() {
	case Op00E0:
		p.Display.Clear()
	case Op00EE:
		n := len(p.Stack)
		if n == 0 {
			p.Logf("chip8: return with empty stack at %.3x", addr)
			return nil
		}
		p.PC = p.Stack[n-1]
		p.Stack = p.Stack[:n-1]
	case Op1NNN:
		p.PC = op.NNN()
	case Op2NNN:
		p.Stack = append(p.Stack, p.PC)
		p.PC = op.NNN()
	case Op3XNN:
		p.skipIf(vx == op.NN())
	case Op4XNN:
		p.skipIf(vx != op.NN())
	case Op5XY0:
		p.skipIf(vx == vy)
	case Op6XNN:
		p.V[x] = op.NN()
	case Op7XNN:
		p.V[x] = vx + op.NN()
	case Op8XY0:
		p.V[x] = vy
	case Op8XY1:
		p.V[x] = vx | vy
	case Op8XY2:
		p.V[x] = vx & vy
	case Op8XY3:
		p.V[x] = vx ^ vy
	// The ALU ops set VF before writing V[X], and all but 8XY4 reread
	// their operands after VF changes, so VF as an operand sees the flag.
	case Op8XY4:
		sum := uint16(vx) + uint16(vy)
		p.V[0xf] = flag(sum > 0xff)
		p.V[x] = byte(sum)
	case Op8XY5:
		p.V[0xf] = flag(vx >= vy)
		p.V[x] = p.V[x] - p.V[y]
	case Op8XY6:
		p.V[0xf] = vx & 0x01
		p.V[x] = p.V[x] >> 1
	case Op8XY7:
		p.V[0xf] = flag(vy >= vx)
		p.V[x] = p.V[y] - p.V[x]
	case Op8XYE:
		p.V[0xf] = vx >> 7
		p.V[x] = p.V[x] << 1
	case Op9XY0:
		p.skipIf(vx != vy)
	case OpANNN:
		p.I = op.NNN()
	case OpBNNN:
		p.PC = op.NNN() + uint16(p.V[0])
	case OpCXNN:
		p.V[x] = p.rand() & op.NN()
	case OpDXYN:
		sprite := make([]byte, op.N())
		for j := range sprite {
			sprite[j] = p.read(p.I + uint16(j))
		}
		p.V[0xf] = flag(p.Display.Draw(vx%Width, vy%Height, sprite))
	case OpEX9E:
		p.skipIf(p.Keys[vx&0xf])
	case OpEXA1:
		p.skipIf(!p.Keys[vx&0xf])
	case OpFX07:
		p.V[x] = p.Delay
	case OpFX0A:
		for k := byte(0); k < 0xf; k++ {
			if p.Keys[k] {
				p.V[x] = k
				return nil
			}
		}
		p.PC -= 2
		p.waiting = true
	case OpFX15:
		p.Delay = vx
	case OpFX18:
		p.Sound = vx
	case OpFX1E:
		sum := uint32(p.I) + uint32(vx)
		p.I = uint16(sum)
		p.V[0xf] = flag(sum > 0xfff)
	case OpFX29:
		p.I = uint16(vx) * FontSprite
	case OpFX33:
		p.write(p.I, vx/100)
		p.write(p.I+1, vx/10%10)
		p.write(p.I+2, vx%10)
	case OpFX55:
		for r := uint16(0); r <= uint16(x); r++ {
			p.write(p.I+r, p.V[r])
		}
	case OpFX65:
		for r := uint16(0); r <= uint16(x); r++ {
			p.V[r] = p.read(p.I + r)
		}
	default:
		return HaltError{Op: op, Addr: addr}
	}
	return nil
}

func (p *Processor) skipIf(cond bool) {
	if cond {
		p.PC += 2
	}
}

// OpAddr returns the memory address referred to by the instruction at
// addr, and reports whether the instruction refers to one at all (jumps,
// calls and index loads do, arithmetic does not).
func (p *Processor) OpAddr(addr uint16) (uint16, bool) {
	op := Instr(short(p.read(addr), p.read(addr+1)))
	switch op.Kind() {
	case Op1NNN, Op2NNN, OpANNN:
		return op.NNN(), true
	case OpBNNN:
		return op.NNN() + uint16(p.V[0]), true
	case OpFX29:
		return uint16(p.V[op.X()]) * FontSprite, true
	}
	return 0, false
}

// HaltError is returned by Step when it encounters an instruction
// outside the instruction set.
type HaltError struct {
	Op   Instr
	Addr uint16
}

func (e HaltError) Error() string {
	return fmt.Sprintf("illegal instruction %.4x at %.3x", uint16(e.Op), e.Addr)
}

func flag(b bool) byte {
	if b {
		return 1
	}
	return 0
}

func short(hi, lo byte) uint16 {
	return uint16(hi)<<8 + uint16(lo)
}

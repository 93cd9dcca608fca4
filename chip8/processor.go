// Package chip8 provides an implementation of the CHIP-8 virtual machine,
// called Processor, that can be used to execute CHIP-8 programs.
package chip8

import (
	"errors"
	"fmt"
	"io"
	"log"
	"math/rand/v2"
	"os"
)

const (
	// MemSize is the size of the address space in bytes.
	MemSize = 0x1000

	// ProgramStart is where programs are loaded and execution begins.
	ProgramStart = 0x200

	// MaxProgramSize is the largest program image Load accepts.
	MaxProgramSize = 0xfff - ProgramStart

	addrMask = MemSize - 1
)

// ErrProgramTooLarge is returned by Load for images over MaxProgramSize bytes.
// The image cannot run correctly, so callers should treat it as fatal.
var ErrProgramTooLarge = errors.New("program too large")

// Processor is an implementation of a CHIP-8 interpreter.
// It is not safe for concurrent use.
type Processor struct {
	Mem     [MemSize]byte
	V       [16]byte // VF doubles as the carry, borrow and collision flag
	I       uint16
	PC      uint16
	Stack   []uint16
	Delay   byte
	Sound   byte
	Display Display
	Keys    [16]bool

	// Op is the instruction most recently fetched.
	Op Instr

	// Logf reports conditions that do not stop execution.
	Logf func(format string, args ...any)

	rand    func() byte
	waiting bool
}

// New returns a Processor in its reset state.
func New() *Processor {
	p := &Processor{
		Logf: log.Printf,
		rand: randomByte,
	}
	p.Reset()
	return p
}

func randomByte() byte { return byte(rand.Uint32()) }

// Nopf is a Logf that discards its input.
func Nopf(string, ...any) {}

// Reset zeroes memory, registers, stack, timers, display and keys,
// copies the font to address 0 and sets PC to ProgramStart.
func (p *Processor) Reset() {
	logf, rnd := p.Logf, p.rand
	*p = Processor{
		PC:   ProgramStart,
		Logf: logf,
		rand: rnd,
	}
	copy(p.Mem[:], font[:])
}

// Load resets the processor and copies rom into memory at ProgramStart.
func (p *Processor) Load(rom []byte) error {
	p.Reset()
	if len(rom) > MaxProgramSize {
		return fmt.Errorf("%w: %d bytes, limit is %d", ErrProgramTooLarge, len(rom), MaxProgramSize)
	}
	copy(p.Mem[ProgramStart:], rom)
	return nil
}

// ReadProgram reads the named program image, failing with
// ErrProgramTooLarge without reading past MaxProgramSize+1 bytes.
func ReadProgram(name string) ([]byte, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	rom, err := io.ReadAll(io.LimitReader(f, MaxProgramSize+1))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", name, err)
	}
	if len(rom) > MaxProgramSize {
		return nil, fmt.Errorf("%w: %s is over %d bytes", ErrProgramTooLarge, name, MaxProgramSize)
	}
	return rom, nil
}

// Press marks key k as held down. Keys above 0xf are ignored.
func (p *Processor) Press(k byte) {
	if int(k) < len(p.Keys) {
		p.Keys[k] = true
	}
}

// Release marks key k as up. Keys above 0xf are ignored.
func (p *Processor) Release(k byte) {
	if int(k) < len(p.Keys) {
		p.Keys[k] = false
	}
}

// DecrementTimers counts the delay and sound timers down by one,
// stopping at zero. It reports whether the sound timer is still
// running, in which case a tone should be playing.
func (p *Processor) DecrementTimers() (tone bool) {
	if p.Delay > 0 {
		p.Delay--
	}
	if p.Sound > 0 {
		p.Sound--
	}
	return p.Sound > 0
}

// Waiting reports whether the last Step was blocked waiting for a key.
func (p *Processor) Waiting() bool { return p.waiting }

func (p *Processor) read(addr uint16) byte { return p.Mem[addr&addrMask] }

func (p *Processor) write(addr uint16, v byte) { p.Mem[addr&addrMask] = v }

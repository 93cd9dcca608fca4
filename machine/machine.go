// Package machine runs a CHIP-8 processor against a clock, a keypad
// and a screen.
package machine

import (
	"errors"
	"log"
	"sync"
	"time"

	"github.com/nf/ch8/chip8"
)

// Config controls the pacing and presentation of a Machine.
type Config struct {
	Speed     int // instructions per second
	TimerRate int // timer ticks (and frames) per second
	Scale     int // window pixels per display pixel
	Theme     Theme
}

// DefaultConfig runs at the conventional 700 instructions per second
// with 60 Hz timers.
var DefaultConfig = Config{
	Speed:     700,
	TimerRate: 60,
	Scale:     10,
	Theme:     DefaultTheme,
}

func (c Config) stepsPerFrame() int {
	if c.TimerRate <= 0 {
		return 1
	}
	return max(1, c.Speed/c.TimerRate)
}

func (c Config) frameInterval() time.Duration {
	if c.TimerRate <= 0 {
		return time.Second / 60
	}
	return time.Second / time.Duration(c.TimerRate)
}

// StateKind describes why a StateFunc is being called.
type StateKind int

const (
	ClearState StateKind = iota // execution resumed
	QuietState                  // periodic update while running
	DebugState                  // PC reached the debug address
	BreakState                  // PC reached the break address; paused
	PauseState                  // paused or single-stepped
	HaltState                   // the processor halted
)

// StateFunc receives the processor state for debugging. It is called
// from the execution goroutine with the machine locked, so it may read
// p but must not retain it.
type StateFunc func(p *chip8.Processor, k StateKind)

// Machine owns a Processor and serializes access to it between the
// execution loop and the frontend.
type Machine struct {
	cfg   Config
	state StateFunc

	mu     sync.Mutex
	p      *chip8.Processor
	tone   bool
	frames int
	paused bool
	resume bool // step over a break address once
	brk    breakpoint
	dbg    breakpoint
	trace  traceLog
	halt   chan bool
}

type breakpoint struct {
	addr uint16
	set  bool
}

// New returns a Machine with rom loaded.
func New(rom []byte, cfg Config) (*Machine, error) {
	m := &Machine{
		cfg:  cfg,
		p:    chip8.New(),
		halt: make(chan bool),
	}
	if err := m.p.Load(rom); err != nil {
		return nil, err
	}
	return m, nil
}

// Load resets the machine and loads a new program. Breakpoints are kept.
func (m *Machine) Load(rom []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tone = false
	m.paused = false
	m.resume = false
	m.trace.Reset()
	return m.p.Load(rom)
}

// Press marks keypad key k as held.
func (m *Machine) Press(k byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.p.Press(k)
}

// Release marks keypad key k as up.
func (m *Machine) Release(k byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.p.Release(k)
}

// Display returns a copy of the current framebuffer.
func (m *Machine) Display() chip8.Display {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.p.Display
}

// Tone reports whether the sound timer was running at the last frame.
func (m *Machine) Tone() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tone
}

// Paused reports whether execution is paused by the debugger.
func (m *Machine) Paused() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.paused
}

// Frame runs one frame worth of instructions and then ticks the timers.
// A paused machine does neither.
func (m *Machine) Frame() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.frames++
	if m.state != nil && m.frames%10 == 0 {
		m.state(m.p, QuietState)
	}
	for i := m.cfg.stepsPerFrame(); i > 0 && !m.paused; i-- {
		if err := m.step(); err != nil {
			return err
		}
	}
	if m.paused {
		return nil
	}
	m.tone = m.p.DecrementTimers()
	return nil
}

func (m *Machine) step() error {
	pc := m.p.PC
	if m.brk.set && pc == m.brk.addr && !m.resume {
		m.paused = true
		m.report(BreakState)
		return nil
	}
	m.resume = false
	err := m.p.Step()
	m.trace.Add(pc, m.p.Op)
	if err != nil {
		m.report(HaltState)
		return err
	}
	if m.dbg.set && pc == m.dbg.addr {
		m.report(DebugState)
	}
	return nil
}

func (m *Machine) report(k StateKind) {
	if m.state != nil {
		m.state(m.p, k)
	}
}

type command struct {
	name string
	addr uint16
}

var errExit = errors.New("exit")

// apply executes a debugger command. Address zero clears a breakpoint.
func (m *Machine) apply(c command) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	switch c.name {
	case "b", "break":
		m.brk = breakpoint{addr: c.addr, set: c.addr != 0}
	case "d", "debug":
		m.dbg = breakpoint{addr: c.addr, set: c.addr != 0}
	case "p", "pause":
		m.paused = true
		m.report(PauseState)
	case "c", "cont", "continue":
		if m.paused {
			m.paused = false
			m.resume = true
			m.report(ClearState)
		}
	case "s", "step":
		if !m.paused {
			m.paused = true
		} else {
			m.resume = true
			if err := m.step(); err != nil {
				return err
			}
		}
		m.report(PauseState)
	default:
		log.Printf("unknown debug command %q", c.name)
	}
	return nil
}

// exec runs frames at the configured rate until the machine halts,
// is stopped, or receives the exit command.
func (m *Machine) exec(cmds <-chan command) error {
	t := time.NewTicker(m.cfg.frameInterval())
	defer t.Stop()
	for {
		select {
		case <-t.C:
			if err := m.Frame(); err != nil {
				return err
			}
		case c := <-cmds:
			if c.name == "exit" {
				return errExit
			}
			if err := m.apply(c); err != nil {
				return err
			}
		case <-m.halt:
			return nil
		}
	}
}

// traceLog keeps the most recently executed instructions.
type traceLog struct {
	entries [maxTrace]traceEntry
	next    int // slot for the next entry
	n       int // entries in use
}

type traceEntry struct {
	pc uint16
	op chip8.Instr
}

const maxTrace = 100

func (t *traceLog) Add(pc uint16, op chip8.Instr) {
	t.entries[t.next] = traceEntry{pc, op}
	t.next = (t.next + 1) % maxTrace
	t.n = min(t.n+1, maxTrace)
}

// Emit logs the entries oldest first.
func (t *traceLog) Emit() {
	for i := range t.n {
		e := t.entries[(t.next-t.n+i+maxTrace)%maxTrace]
		log.Printf("%.3x %.4x %v", e.pc, uint16(e.op), e.op)
	}
}

func (t *traceLog) Reset() { t.next, t.n = 0, 0 }

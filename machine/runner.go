package machine

import (
	"errors"
	"log"
)

// Frontend selects how a Runner presents the machine.
type Frontend int

const (
	Headless Frontend = iota // no display or keyboard
	Window                   // native window
	Terminal                 // terminal cells
)

type frontend interface {
	Run(exit <-chan bool) error
}

// Runner executes a program on a Machine and drives its frontend.
type Runner struct {
	cfg   Config
	front Frontend
	dev   bool
	state StateFunc

	swap     chan []byte
	swapDone chan bool
	cmds     chan command
}

// NewRunner returns a Runner. In dev mode a halted program does not end
// the run; the runner waits for Swap or the exit command instead.
func NewRunner(cfg Config, front Frontend, devMode bool, f StateFunc) *Runner {
	return &Runner{
		cfg:      cfg,
		front:    front,
		dev:      devMode,
		state:    f,
		swap:     make(chan []byte),
		swapDone: make(chan bool),
		cmds:     make(chan command),
	}
}

// Swap resets the running machine with a new program.
func (r *Runner) Swap(rom []byte) {
	if !r.dev {
		panic("Swap called while not running in dev mode")
	}
	r.swap <- rom
	<-r.swapDone
}

// Debug sends a command to the running machine. The exit command ends
// the run.
func (r *Runner) Debug(cmd string, addr uint16) {
	r.cmds <- command{name: cmd, addr: addr}
}

// Run executes rom until the program halts (outside dev mode), the
// frontend is closed, or the exit command is received. It returns the
// error that halted the program, if any.
func (r *Runner) Run(rom []byte) error {
	m, err := New(rom, r.cfg)
	if err != nil {
		return err
	}
	m.state = r.state

	var (
		exit   = make(chan bool)
		result error
	)
	go func() {
		defer close(exit)
		var (
			execErr = make(chan error)
			running = true
		)
		go func() { execErr <- m.exec(r.cmds) }()
		for {
			// While the machine is running it receives commands itself.
			var cmds <-chan command
			if !running {
				cmds = r.cmds
			}
			select {
			case rom := <-r.swap:
				if running {
					select {
					case m.halt <- true:
						<-execErr
					case <-execErr:
					}
				}
				if err := m.Load(rom); err != nil {
					log.Printf("chip8: %v", err)
					running = false
				} else {
					running = true
					go func() { execErr <- m.exec(r.cmds) }()
				}
				r.swapDone <- true
			case c := <-cmds:
				if c.name == "exit" {
					return
				}
				if err := m.apply(c); err != nil {
					log.Printf("chip8: %v", err)
				}
			case err := <-execErr:
				running = false
				if errors.Is(err, errExit) {
					return
				}
				if r.dev {
					log.Printf("chip8: %v", err)
					m.trace.Emit()
					continue
				}
				result = err
				return
			}
		}
	}()

	var f frontend
	switch r.front {
	case Window:
		f = newGUI(m, r.cfg)
	case Terminal:
		f = newTerm(m, r.cfg)
	}
	if f != nil {
		if err := f.Run(exit); err != nil {
			log.Printf("frontend: %v", err)
		}
		select {
		case r.cmds <- command{name: "exit"}:
		case <-exit:
		}
	}
	<-exit
	return result
}

package main

import (
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/nf/ch8/chip8"
	"github.com/nf/ch8/machine"
)

type debugger struct {
	run *machine.Runner

	app    *tview.Application
	log    *tview.TextView
	screen *tview.TextView
	watch  *tview.TextView
	state  *tview.TextView
	input  *tview.InputField

	mu       sync.Mutex
	dbg, brk *symbol
	syms     *symbols
	watches  []watch
}

type watch struct {
	symbol
	short bool
}

// stateColors are the text and background colors of the state line.
var stateColors = map[machine.StateKind][2]tcell.Color{
	machine.ClearState: {tcell.ColorBlack, tcell.ColorDarkGrey},
	machine.DebugState: {tcell.ColorBlack, tcell.ColorDarkGrey},
	machine.BreakState: {tcell.ColorYellow, tcell.ColorDarkBlue},
	machine.PauseState: {tcell.ColorWhite, tcell.ColorDarkBlue},
	machine.HaltState:  {tcell.ColorWhite, tcell.ColorDarkRed},
}

func (d *debugger) symbols() *symbols {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.syms
}

func (d *debugger) setSymbols(s *symbols) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.syms = s
}

func newDebugger() *debugger {
	d := &debugger{
		app:    tview.NewApplication(),
		log:    tview.NewTextView().SetMaxLines(1000),
		screen: tview.NewTextView().SetWrap(false),
		watch: tview.NewTextView().
			SetWrap(false).
			SetTextAlign(tview.AlignRight),
		state: tview.NewTextView().SetWrap(false),
		input: tview.NewInputField().SetLabel("> "),
	}
	d.log.SetChangedFunc(func() { d.app.Draw() })
	d.screen.SetBorder(true).SetTitle(" display ")
	d.watch.SetBackgroundColor(tcell.ColorDarkBlue)
	d.state.SetBackgroundColor(tcell.ColorDarkGrey)

	left := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(d.screen, chip8.Height/2+2, 0, false).
		AddItem(d.watch, 0, 1, false)
	top := tview.NewFlex().
		AddItem(left, chip8.Width+2, 0, false).
		AddItem(d.log, 0, 1, false)
	root := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(top, 0, 1, false).
		AddItem(d.state, 3, 0, false).
		AddItem(d.input, 1, 0, true)
	d.app.SetRoot(root, true)

	d.input.SetAutocompleteFunc(d.complete)
	d.input.SetAutocompletedFunc(func(t string, index, src int) bool {
		if src != tview.AutocompletedNavigate {
			d.input.SetText(t)
		}
		return src == tview.AutocompletedEnter || src == tview.AutocompletedClick
	})
	d.input.SetDoneFunc(func(key tcell.Key) {
		if key != tcell.KeyEnter {
			return
		}
		cmd := strings.TrimSpace(d.input.GetText())
		if cmd == "" {
			return
		}
		d.input.SetText("")
		if cmd == "exit" {
			d.app.Stop()
			return
		}
		d.command(cmd)
	})
	return d
}

// complete offers symbol labels for commands that take an address.
func (d *debugger) complete(t string) (entries []string) {
	cmd, arg, ok := strings.Cut(t, " ")
	if !ok {
		return nil
	}
	switch cmd {
	case "b", "break", "d", "debug", "w", "w2", "watch", "watch2":
		for _, s := range d.symbols().withLabelPrefix(arg) {
			entries = append(entries, cmd+" "+s.label)
		}
	}
	return entries
}

// command interprets a debugger command line other than exit.
func (d *debugger) command(line string) {
	cmd, arg, hasArg := strings.Cut(line, " ")
	switch cmd {
	case "b", "break", "d", "debug":
		var s *symbol
		if hasArg {
			sym, ok := d.symbols().resolve(arg)
			if !ok {
				log.Printf("invalid address %q", arg)
				return
			}
			s = &sym
		}
		var addr uint16
		if s != nil {
			addr = s.addr
		}
		d.run.Debug(cmd, addr)
		d.mu.Lock()
		if cmd[0] == 'b' {
			d.brk = s
		} else {
			d.dbg = s
		}
		d.mu.Unlock()
		if s == nil {
			log.Printf("cleared %s", cmd)
		} else {
			log.Printf("set %s %.3x", cmd, s.addr)
		}
	case "w", "w2", "watch", "watch2":
		s, ok := d.symbols().resolve(arg)
		if !hasArg || !ok {
			log.Printf("invalid address %q", arg)
			return
		}
		d.mu.Lock()
		d.watches = append(d.watches,
			watch{symbol: s, short: strings.HasSuffix(cmd, "2")})
		d.mu.Unlock()
		log.Printf("watching %.3x", s.addr)
	default:
		d.run.Debug(cmd, 0)
	}
}

func (d *debugger) Run() error { return d.app.Run() }

func (d *debugger) StateFunc(p *chip8.Processor, k machine.StateKind) {
	var (
		watch  = d.watchContent(p)
		screen = displayText(&p.Display)
		state  string
	)
	showState := k != machine.ClearState && k != machine.QuietState
	if showState {
		state = stateMsg(d.symbols(), p, k)
	}
	d.app.QueueUpdateDraw(func() {
		if c, ok := stateColors[k]; ok {
			d.state.SetTextColor(c[0])
			d.state.SetBackgroundColor(c[1])
		}
		d.screen.SetText(screen)
		d.watch.SetText(watch)
		if showState {
			d.state.SetText(state)
		}
	})
}

// displayText draws the display with half blocks, two pixel rows per
// line of text.
func displayText(disp *chip8.Display) string {
	var b strings.Builder
	for y := 0; y < chip8.Height; y += 2 {
		for x := 0; x < chip8.Width; x++ {
			switch top, bot := disp[y][x] != 0, disp[y+1][x] != 0; {
			case top && bot:
				b.WriteRune('█')
			case top:
				b.WriteRune('▀')
			case bot:
				b.WriteRune('▄')
			default:
				b.WriteByte(' ')
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// stateMsg describes the instruction at PC and the registers in three
// lines. A halted processor has already fetched the offending
// instruction, so it is described from p.Op instead.
func stateMsg(syms *symbols, p *chip8.Processor, k machine.StateKind) string {
	var (
		pc    = p.PC
		op    = opAt(p, pc)
		pcSym string
		sym   string
	)
	if k == machine.HaltState {
		pc, op = p.PC-2, p.Op
	}
	if s := syms.forAddr(pc); len(s) > 0 {
		pcSym = s[0].String() + " -> "
	}
	if addr, ok := p.OpAddr(pc); ok && k != machine.HaltState {
		for i, s := range syms.forAddr(addr) {
			if i != 0 {
				sym += " "
			}
			sym += s.String()
		}
	}
	kind := "       "
	switch k {
	case machine.BreakState:
		kind = "[break]"
	case machine.DebugState:
		kind = "[debug]"
	case machine.PauseState:
		kind = "[pause]"
	case machine.HaltState:
		kind = "[HALT!]"
	}
	var wait string
	if p.Waiting() {
		wait = " [key?]"
	}
	return fmt.Sprintf("%.3x %-16s %s %s%s\nv: % x\ni: %.3x dt: %.2x st: %.2x sp: %.3x%s\n",
		pc&0xfff, op, kind, pcSym, sym, p.V, p.I, p.Delay, p.Sound, p.Stack, wait)
}

func opAt(p *chip8.Processor, addr uint16) chip8.Instr {
	return chip8.Instr(uint16(p.Mem[addr&0xfff])<<8 | uint16(p.Mem[(addr+1)&0xfff]))
}

func (d *debugger) watchContent(p *chip8.Processor) string {
	d.mu.Lock()
	defer d.mu.Unlock()
	var b strings.Builder
	if s := d.brk; s != nil {
		fmt.Fprintf(&b, "%s [%.3x] brk!\n", s.label, s.addr)
	}
	if s := d.dbg; s != nil {
		fmt.Fprintf(&b, "%s [%.3x] dbg?\n", s.label, s.addr)
	}
	for _, w := range d.watches {
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%s [%.3x] ", w.label, w.addr)
		if w.short {
			fmt.Fprintf(&b, "%.4x", uint16(opAt(p, w.addr)))
		} else {
			fmt.Fprintf(&b, "  %.2x", p.Mem[w.addr&0xfff])
		}
	}
	return b.String()
}

package machine

import (
	"image/color"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/nf/ch8/chip8"
)

// Terminals report key presses but not releases, so a key is
// released once it has not repeated for keyHold.
const keyHold = 150 * time.Millisecond

type term struct {
	m   *Machine
	cfg Config

	held  map[byte]time.Time
	last  chip8.Display
	drawn bool
	tone  bool
}

func newTerm(m *Machine, cfg Config) *term {
	return &term{m: m, cfg: cfg, held: make(map[byte]time.Time)}
}

func (t *term) Run(exit <-chan bool) error {
	s, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := s.Init(); err != nil {
		return err
	}
	defer s.Fini()

	var (
		events = make(chan tcell.Event)
		quit   = make(chan struct{})
		tick   = time.NewTicker(t.cfg.frameInterval())
	)
	defer tick.Stop()
	defer close(quit)
	go s.ChannelEvents(events, quit)

	for {
		select {
		case <-exit:
			return nil
		case now := <-tick.C:
			t.releaseHeld(now)
			t.draw(s)
			tone := t.m.Tone()
			if tone && !t.tone {
				s.Beep()
			}
			t.tone = tone
		case ev := <-events:
			switch ev := ev.(type) {
			case *tcell.EventKey:
				switch ev.Key() {
				case tcell.KeyEscape, tcell.KeyCtrlC:
					return nil
				case tcell.KeyRune:
					t.press(ev.Rune(), ev.When())
				}
			case *tcell.EventResize:
				s.Sync()
				t.drawn = false
			}
		}
	}
}

func (t *term) press(r rune, when time.Time) {
	k, ok := KeyFor(r)
	if !ok {
		return
	}
	t.m.Press(k)
	t.held[k] = when
}

func (t *term) releaseHeld(now time.Time) {
	for k, at := range t.held {
		if now.Sub(at) >= keyHold {
			t.m.Release(k)
			delete(t.held, k)
		}
	}
}

// draw renders two display rows per terminal row using upper half
// blocks: the foreground is the top pixel and the background the bottom.
func (t *term) draw(s tcell.Screen) {
	d := t.m.Display()
	if t.drawn && d == t.last {
		return
	}
	t.last, t.drawn = d, true
	on, off := tcellColor(t.cfg.Theme.On), tcellColor(t.cfg.Theme.Off)
	px := func(v byte) tcell.Color {
		if v != 0 {
			return on
		}
		return off
	}
	for y := 0; y < chip8.Height; y += 2 {
		for x := 0; x < chip8.Width; x++ {
			st := tcell.StyleDefault.Foreground(px(d[y][x])).Background(px(d[y+1][x]))
			s.SetContent(x, y/2, '▀', nil, st)
		}
	}
	s.Show()
}

func tcellColor(c color.RGBA) tcell.Color {
	return tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B))
}

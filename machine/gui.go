package machine

import (
	"image"
	"log"
	"os"
	"time"

	"golang.org/x/exp/shiny/driver"
	"golang.org/x/exp/shiny/screen"
	"golang.org/x/mobile/event/key"
	"golang.org/x/mobile/event/lifecycle"
	"golang.org/x/mobile/event/paint"
	"golang.org/x/mobile/event/size"

	"github.com/nf/ch8/chip8"
)

type gui struct {
	m   *Machine
	cfg Config
	scr *Screen

	buf   screen.Buffer
	tone  bool
	dirty bool
}

func newGUI(m *Machine, cfg Config) *gui {
	return &gui{m: m, cfg: cfg, scr: NewScreen(cfg.Theme)}
}

func (g *gui) Run(exit <-chan bool) (err error) {
	driver.Main(func(s screen.Screen) {
		scale := max(1, g.cfg.Scale)
		w, werr := s.NewWindow(&screen.NewWindowOptions{
			Title:  "ch8",
			Width:  chip8.Width * scale,
			Height: chip8.Height * scale,
		})
		if werr != nil {
			err = werr
			return
		}
		defer w.Release()

		type update struct{}
		var (
			done    = make(chan struct{})
			stopped = make(chan struct{})
		)
		go func() {
			defer close(stopped)
			ticks(g.cfg.frameInterval(), func() { w.Send(update{}) }, exit, done)
		}()
		// Runs before w.Release, so nothing is sent to a released window.
		defer func() {
			close(done)
			<-stopped
		}()

		defer g.release()

		for {
			e := w.NextEvent()

			select {
			case <-exit:
				return
			default:
			}

			switch e := e.(type) {
			case lifecycle.Event:
				if e.To == lifecycle.StageDead {
					return
				}

			case size.Event:
				if e.WidthPx+e.HeightPx == 0 {
					return
				}
				if err = g.resize(s, e.Size()); err != nil {
					return
				}

			case key.Event:
				if e.Code == key.CodeEscape {
					return
				}
				k, ok := KeyFor(e.Rune)
				if !ok {
					break
				}
				switch e.Direction {
				case key.DirPress:
					g.m.Press(k)
				case key.DirRelease:
					g.m.Release(k)
				}

			case paint.Event:
				g.dirty = true

			case update:
				d := g.m.Display()
				if g.scr.Update(&d) {
					g.dirty = true
				}
				tone := g.m.Tone()
				if tone && !g.tone {
					beep()
				}
				g.tone = tone
				if g.dirty && g.buf != nil {
					g.scr.ScaleTo(g.buf.RGBA(), g.buf.Bounds())
					w.Upload(image.Point{}, g.buf, g.buf.Bounds())
					w.Publish()
					g.dirty = false
				}

			case error:
				log.Print(e)
			}
		}
	})
	return err
}

func (g *gui) resize(s screen.Screen, sz image.Point) error {
	g.release()
	buf, err := s.NewBuffer(sz)
	if err != nil {
		return err
	}
	g.buf = buf
	g.dirty = true
	return nil
}

func (g *gui) release() {
	if g.buf != nil {
		g.buf.Release()
		g.buf = nil
	}
}

// ticks calls send every interval until done is closed or exit is
// closed. Closing exit sends once more so the receiver notices.
func ticks(interval time.Duration, send func(), exit <-chan bool, done <-chan struct{}) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-t.C:
			send()
		case <-exit:
			send()
			return
		case <-done:
			return
		}
	}
}

// beep rings the terminal bell.
func beep() {
	os.Stderr.Write([]byte{'\a'})
}

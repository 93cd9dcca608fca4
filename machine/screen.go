package machine

import (
	"image"
	"image/color"

	"golang.org/x/image/draw"

	"github.com/nf/ch8/chip8"
)

// Theme holds the colors of lit and unlit pixels.
type Theme struct {
	On, Off color.RGBA
}

var DefaultTheme = Theme{
	On:  color.RGBA{0xff, 0xff, 0xff, 0xff},
	Off: color.RGBA{0x00, 0x00, 0x00, 0xff},
}

// Screen renders a chip8.Display into an image, one image pixel per
// display pixel.
type Screen struct {
	theme Theme
	disp  chip8.Display
	img   *image.RGBA
}

func NewScreen(t Theme) *Screen {
	s := &Screen{
		theme: t,
		img:   image.NewRGBA(image.Rect(0, 0, chip8.Width, chip8.Height)),
	}
	s.render()
	return s
}

// Update renders d if it differs from the last display rendered,
// and reports whether it did.
func (s *Screen) Update(d *chip8.Display) bool {
	if *d == s.disp {
		return false
	}
	s.disp = *d
	s.render()
	return true
}

func (s *Screen) render() {
	for y, row := range s.disp {
		for x, px := range row {
			c := s.theme.Off
			if px != 0 {
				c = s.theme.On
			}
			s.img.SetRGBA(x, y, c)
		}
	}
}

func (s *Screen) Image() *image.RGBA { return s.img }

// ScaleTo draws the screen into r of dst, stretching each display pixel
// into a block.
func (s *Screen) ScaleTo(dst draw.Image, r image.Rectangle) {
	draw.NearestNeighbor.Scale(dst, r, s.img, s.img.Bounds(), draw.Src, nil)
}

package chip8

import "strings"

// Display dimensions in pixels.
const (
	Width  = 64
	Height = 32
)

// Display is the monochrome framebuffer, indexed [y][x].
// Every cell holds 0 (off) or 1 (on).
type Display [Height][Width]byte

// Clear turns every pixel off.
func (d *Display) Clear() { *d = Display{} }

// At returns the pixel at (x, y), wrapping both coordinates.
func (d *Display) At(x, y int) byte {
	return d[mod(y, Height)][mod(x, Width)]
}

// Draw XORs an 8-pixel-wide sprite onto the display with its top-left
// corner at (x, y). Each pixel wraps around the edges independently.
// It reports whether any pixel was turned from on to off.
func (d *Display) Draw(x, y byte, sprite []byte) (collision bool) {
	for row, bits := range sprite {
		py := (int(y) + row) % Height
		for col := 0; col < 8; col++ {
			if bits&(0x80>>col) == 0 {
				continue
			}
			px := (int(x) + col) % Width
			if d[py][px] == 1 {
				collision = true
			}
			d[py][px] ^= 1
		}
	}
	return collision
}

func (d Display) String() string {
	var b strings.Builder
	for _, row := range d {
		for _, px := range row {
			if px != 0 {
				b.WriteByte('#')
			} else {
				b.WriteByte('.')
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func mod(v, n int) int {
	v %= n
	if v < 0 {
		v += n
	}
	return v
}

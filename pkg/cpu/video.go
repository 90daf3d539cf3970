package cpu

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"strings"

	"golang.org/x/image/draw"

	"gochip8/pkg/grid"
)

const (
	ScreenWidth  = 64
	ScreenHeight = 32

	// SpriteWidth is the number of pixels in one sprite row byte.
	SpriteWidth = 8
)

// DrawPolicy decides what happens to sprite pixels that fall past the
// right or bottom edge. The same rule is applied to both axes.
type DrawPolicy int

const (
	// DrawWrap plots off-screen pixels modulo the screen size.
	DrawWrap DrawPolicy = iota
	// DrawClip drops off-screen pixels.
	DrawClip
)

func (p DrawPolicy) String() string {
	switch p {
	case DrawWrap:
		return "wrap"
	case DrawClip:
		return "clip"
	}
	return fmt.Sprintf("DrawPolicy(%d)", int(p))
}

// ParseDrawPolicy accepts "wrap" or "clip".
func ParseDrawPolicy(s string) (DrawPolicy, error) {
	switch strings.ToLower(s) {
	case "wrap", "":
		return DrawWrap, nil
	case "clip":
		return DrawClip, nil
	}
	return DrawWrap, fmt.Errorf("unknown draw policy %q", s)
}

var (
	DefaultOn  = color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}
	DefaultOff = color.RGBA{R: 0x30, G: 0x20, B: 0x19, A: 0xFF}
)

// Display is the monochrome pixel plane. Cells are stored row-major, one
// byte per pixel, 1 meaning lit.
type Display struct {
	Policy DrawPolicy

	// Collision is true when the most recent Draw turned a lit cell off.
	Collision bool

	cells [ScreenWidth * ScreenHeight]byte
}

func NewDisplay(policy DrawPolicy) *Display {
	return &Display{Policy: policy}
}

func (d *Display) Clear() {
	d.cells = [ScreenWidth * ScreenHeight]byte{}
}

// Pixel reports whether the cell at (x, y) is lit. Out-of-range
// coordinates read as unlit.
func (d *Display) Pixel(x, y int) bool {
	if x < 0 || y < 0 || x >= ScreenWidth || y >= ScreenHeight {
		return false
	}
	return d.cells[grid.Index(x, y, ScreenWidth)] == 1
}

// Cells returns a copy of the plane in row-major order.
func (d *Display) Cells() []byte {
	out := make([]byte, len(d.cells))
	copy(out, d.cells[:])
	return out
}

// Lit counts lit cells.
func (d *Display) Lit() int {
	n := 0
	for _, c := range d.cells {
		n += int(c)
	}
	return n
}

// Draw XORs an 8-pixel-wide sprite onto the plane with its top-left corner
// at (x0, y0), one sprite byte per row, most significant bit leftmost. It
// returns true, and sets Collision, if any lit cell was turned off.
func (d *Display) Draw(sprite []byte, x0, y0 byte) bool {
	d.Collision = false

	for r, row := range sprite {
		y, ok := d.place(int(y0)+r, ScreenHeight)
		if !ok {
			continue
		}
		for bit := 0; bit < SpriteWidth; bit++ {
			if row&(0x80>>bit) == 0 {
				continue
			}
			x, ok := d.place(int(x0)+bit, ScreenWidth)
			if !ok {
				continue
			}
			idx := grid.Index(x, y, ScreenWidth)
			if d.cells[idx] == 1 {
				d.Collision = true
			}
			d.cells[idx] ^= 1
		}
	}

	return d.Collision
}

// place maps a coordinate onto an axis of the given size under the policy.
func (d *Display) place(v, size int) (int, bool) {
	if d.Policy == DrawClip {
		return v, v < size
	}
	return v % size, true
}

// String renders the plane as text, '#' for lit and '.' for unlit cells.
func (d *Display) String() string {
	var b strings.Builder
	b.Grow((ScreenWidth + 1) * ScreenHeight)
	for i, c := range d.cells {
		if c == 1 {
			b.WriteByte('#')
		} else {
			b.WriteByte('.')
		}
		if x, _ := grid.GetGridCoords(i, ScreenWidth); x == ScreenWidth-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// FramebufferRGBA decodes the plane into a 64x32 RGBA8888 byte slice.
func (d *Display) FramebufferRGBA(on, off color.RGBA) []byte {
	pixels := make([]byte, ScreenWidth*ScreenHeight*4)
	for i, c := range d.cells {
		col := off
		if c == 1 {
			col = on
		}
		pixels[i*4+0] = col.R
		pixels[i*4+1] = col.G
		pixels[i*4+2] = col.B
		pixels[i*4+3] = col.A
	}
	return pixels
}

// Image returns the plane as an *image.RGBA at native resolution.
func (d *Display) Image(on, off color.RGBA) *image.RGBA {
	return &image.RGBA{
		Pix:    d.FramebufferRGBA(on, off),
		Stride: ScreenWidth * 4,
		Rect:   image.Rect(0, 0, ScreenWidth, ScreenHeight),
	}
}

// ScaledImage returns the plane enlarged by scale using nearest-neighbour
// sampling so cell edges stay sharp.
func (d *Display) ScaledImage(scale int, on, off color.RGBA) *image.RGBA {
	src := d.Image(on, off)
	if scale <= 1 {
		return src
	}
	dst := image.NewRGBA(image.Rect(0, 0, ScreenWidth*scale, ScreenHeight*scale))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return dst
}

// SaveScreenshot encodes the plane as a PNG and writes it to filename.
func (d *Display) SaveScreenshot(filename string, scale int) error {
	img := d.ScaledImage(scale, DefaultOn, DefaultOff)
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

package cpu

import (
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/retroenv/retrogolib/assert"
)

func TestDrawXOR(t *testing.T) {
	d := NewDisplay(DrawWrap)

	if d.Draw([]byte{0xF0}, 0, 0) {
		t.Errorf("first draw: expected no collision")
	}
	assert.Equal(t, 4, d.Lit())

	// Overlapping in two cells turns those off and lights the other two.
	if !d.Draw([]byte{0x3C}, 0, 0) {
		t.Errorf("second draw: expected collision")
	}
	assert.True(t, d.Collision)
	assert.Equal(t, 4, d.Lit())
	assert.True(t, d.Pixel(0, 0))
	assert.True(t, d.Pixel(1, 0))
	assert.False(t, d.Pixel(2, 0))
	assert.False(t, d.Pixel(3, 0))
	assert.True(t, d.Pixel(4, 0))
	assert.True(t, d.Pixel(5, 0))
}

func TestDrawTwiceRestores(t *testing.T) {
	for _, policy := range []DrawPolicy{DrawWrap, DrawClip} {
		d := NewDisplay(policy)
		d.Draw([]byte{0x81}, 3, 3)
		before := d.Cells()

		sprite := []byte{0xFF, 0x81, 0xA5, 0x5A, 0xFF}
		for _, pos := range [][2]byte{{0, 0}, {60, 30}, {200, 100}} {
			d.Draw(sprite, pos[0], pos[1])
			d.Draw(sprite, pos[0], pos[1])
			assert.Equal(t, before, d.Cells())
		}
	}
}

func TestDrawZeroRows(t *testing.T) {
	d := NewDisplay(DrawWrap)
	d.Draw([]byte{0xFF}, 0, 0)
	assert.False(t, d.Draw(nil, 0, 0))
	assert.Equal(t, 8, d.Lit())
}

func TestDrawWrapsCoordinates(t *testing.T) {
	d := NewDisplay(DrawWrap)
	// Start coordinates are reduced too: (70, 40) is (6, 8).
	d.Draw([]byte{0x80}, 70, 40)
	assert.True(t, d.Pixel(6, 8))

	d.Clear()
	d.Draw([]byte{0xFF}, 60, 31)
	for _, x := range []int{60, 61, 62, 63, 0, 1, 2, 3} {
		assert.True(t, d.Pixel(x, 31))
	}
	assert.Equal(t, 8, d.Lit())
}

func TestDrawClipsCoordinates(t *testing.T) {
	d := NewDisplay(DrawClip)
	d.Draw([]byte{0xFF, 0xFF}, 60, 31)
	assert.Equal(t, 4, d.Lit())
	assert.False(t, d.Pixel(0, 31))
	assert.False(t, d.Pixel(60, 0))

	d.Clear()
	d.Draw([]byte{0xFF}, 70, 40)
	assert.Equal(t, 0, d.Lit())
}

func TestPixelOutOfRange(t *testing.T) {
	d := NewDisplay(DrawWrap)
	d.Draw([]byte{0x80}, 0, 0)
	assert.False(t, d.Pixel(-1, 0))
	assert.False(t, d.Pixel(ScreenWidth, 0))
	assert.False(t, d.Pixel(0, ScreenHeight))
}

func TestDisplayString(t *testing.T) {
	d := NewDisplay(DrawWrap)
	d.Draw([]byte{0xA0}, 0, 1)

	lines := strings.Split(d.String(), "\n")
	assert.Len(t, lines, ScreenHeight+1)
	assert.Equal(t, strings.Repeat(".", ScreenWidth), lines[0])
	assert.Equal(t, "#.#."+strings.Repeat(".", ScreenWidth-4), lines[1])
	assert.Equal(t, "", lines[ScreenHeight])
}

func TestFramebufferRGBA(t *testing.T) {
	d := NewDisplay(DrawWrap)
	d.Draw([]byte{0x80}, 1, 0)

	pix := d.FramebufferRGBA(DefaultOn, DefaultOff)
	assert.Len(t, pix, ScreenWidth*ScreenHeight*4)
	assert.Equal(t, []byte{DefaultOff.R, DefaultOff.G, DefaultOff.B, DefaultOff.A}, pix[0:4])
	assert.Equal(t, []byte{DefaultOn.R, DefaultOn.G, DefaultOn.B, DefaultOn.A}, pix[4:8])
}

func TestScaledImage(t *testing.T) {
	d := NewDisplay(DrawWrap)
	d.Draw([]byte{0x80}, 2, 1)

	img := d.ScaledImage(4, DefaultOn, DefaultOff)
	assert.Equal(t, ScreenWidth*4, img.Bounds().Dx())
	assert.Equal(t, ScreenHeight*4, img.Bounds().Dy())
	assert.Equal(t, DefaultOn, img.RGBAAt(8, 4))
	assert.Equal(t, DefaultOn, img.RGBAAt(11, 7))
	assert.Equal(t, DefaultOff, img.RGBAAt(12, 4))

	assert.Equal(t, ScreenWidth, d.ScaledImage(1, DefaultOn, DefaultOff).Bounds().Dx())
}

func TestSaveScreenshot(t *testing.T) {
	d := NewDisplay(DrawWrap)
	d.Draw([]byte{0xFF}, 0, 0)

	path := filepath.Join(t.TempDir(), "shot.png")
	assert.NoError(t, d.SaveScreenshot(path, 2))

	f, err := os.Open(path)
	assert.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	assert.NoError(t, err)
	assert.Equal(t, ScreenWidth*2, img.Bounds().Dx())
	assert.Equal(t, ScreenHeight*2, img.Bounds().Dy())
}

func TestParseDrawPolicy(t *testing.T) {
	tests := []struct {
		in      string
		want    DrawPolicy
		wantErr bool
	}{
		{"wrap", DrawWrap, false},
		{"", DrawWrap, false},
		{"CLIP", DrawClip, false},
		{"bounce", DrawWrap, true},
	}
	for _, tt := range tests {
		got, err := ParseDrawPolicy(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseDrawPolicy(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		assert.Equal(t, tt.want, got)
	}
	assert.Equal(t, "clip", DrawClip.String())
	assert.Equal(t, "DrawPolicy(7)", DrawPolicy(7).String())
}

package effects

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func solid(c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func TestParseFilter(t *testing.T) {
	cases := []struct {
		expr string
		ops  int
		err  bool
	}{
		{"", 0, false},
		{"none", 0, false},
		{"brightness(1.2)", 1, false},
		{"contrast(120%) saturate(0.5)", 2, false},
		{"hue-rotate(90deg), invert(1)", 2, false},
		{"hue-rotate(0.5turn)", 1, false},
		{"opacity(50%)", 1, false},
		{"blur(2px)", 0, true},
		{"brightness(", 0, true},
		{"brightness(-1)", 0, true},
		{"hue-rotate(30)", 0, true},
		{"brightness(NaN)", 0, true},
		{"contrast(Inf%)", 0, true},
		{"hue-rotate(NaNdeg)", 0, true},
		{"hue-rotate(-Infturn)", 0, true},
	}
	for _, tc := range cases {
		f, err := ParseFilter(tc.expr)
		if tc.err {
			assert.Error(t, err, tc.expr)
			continue
		}
		require.NoError(t, err, tc.expr)
		assert.Len(t, f.ops, tc.ops, tc.expr)
	}
}

func TestResolvePresets(t *testing.T) {
	for _, name := range PresetNames() {
		f, err := Resolve(name)
		require.NoError(t, err, name)
		assert.Equal(t, name == "none", f.Identity(), name)
	}

	f, err := Resolve("sepia(1)")
	require.NoError(t, err)
	assert.Equal(t, "sepia(1)", f.String())
}

// graded runs f over a copy of img and returns the result.
func graded(f *Filter, img *image.RGBA, r image.Rectangle) *image.RGBA {
	out := image.NewRGBA(img.Rect)
	copy(out.Pix, img.Pix)
	f.Draw(out, img, r)
	return out
}

func assertColor(t *testing.T, want, got color.RGBA, msg string) {
	t.Helper()
	assert.InDelta(t, int(want.R), int(got.R), 1, msg)
	assert.InDelta(t, int(want.G), int(got.G), 1, msg)
	assert.InDelta(t, int(want.B), int(got.B), 1, msg)
	assert.InDelta(t, int(want.A), int(got.A), 1, msg)
}

func TestIdentityLeavesPixels(t *testing.T) {
	img := solid(color.RGBA{10, 120, 200, 255})
	var f *Filter
	out := graded(f, img, img.Rect)
	assert.Equal(t, color.RGBA{10, 120, 200, 255}, out.RGBAAt(1, 1))
}

func TestDraw(t *testing.T) {
	cases := []struct {
		expr string
		in   color.RGBA
		want color.RGBA
	}{
		{"brightness(0.5)", color.RGBA{200, 100, 50, 255}, color.RGBA{100, 50, 25, 255}},
		{"brightness(2)", color.RGBA{200, 100, 50, 255}, color.RGBA{255, 200, 100, 255}},
		{"invert(1)", color.RGBA{0, 255, 100, 255}, color.RGBA{255, 0, 155, 255}},
		{"contrast(0)", color.RGBA{0, 255, 30, 255}, color.RGBA{128, 128, 128, 255}},
		{"grayscale(1)", color.RGBA{255, 255, 255, 255}, color.RGBA{255, 255, 255, 255}},
		{"opacity(0.5)", color.RGBA{200, 100, 50, 255}, color.RGBA{100, 50, 25, 128}},
	}
	for _, tc := range cases {
		f, err := ParseFilter(tc.expr)
		require.NoError(t, err)
		img := solid(tc.in)
		out := graded(f, img, img.Rect)
		assertColor(t, tc.want, out.RGBAAt(2, 2), tc.expr)
	}
}

func TestGrayscaleEqualisesChannels(t *testing.T) {
	f, err := ParseFilter("grayscale(100%)")
	require.NoError(t, err)
	img := solid(color.RGBA{255, 0, 0, 255})
	out := graded(f, img, img.Rect)

	px := out.RGBAAt(0, 0)
	assert.Equal(t, px.R, px.G)
	assert.Equal(t, px.G, px.B)
	assert.InDelta(t, 54, int(px.R), 1)
}

func TestApplyRespectsRect(t *testing.T) {
	f, err := ParseFilter("invert(1)")
	require.NoError(t, err)
	img := solid(color.RGBA{0, 0, 0, 255})
	out := graded(f, img, image.Rect(0, 0, 2, 4))

	assert.Equal(t, color.RGBA{255, 255, 255, 255}, out.RGBAAt(1, 1))
	assert.Equal(t, color.RGBA{0, 0, 0, 255}, out.RGBAAt(3, 1))
}

func TestDrawOverBlendsTranslucentResult(t *testing.T) {
	f, err := ParseFilter("opacity(0)")
	require.NoError(t, err)
	dst := solid(color.RGBA{0, 0, 255, 255})
	src := solid(color.RGBA{255, 0, 0, 255})
	f.DrawOver(dst, src, src.Rect)
	assertColor(t, color.RGBA{0, 0, 255, 255}, dst.RGBAAt(1, 1), "fully transparent layer")
}

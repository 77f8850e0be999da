package effects

import (
	"fmt"
	"image"
	"image/draw"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/disintegration/gift"
)

// Presets are the selectable looks. An AI grade resolved elsewhere is just
// another expression passed to Resolve.
var Presets = map[string]string{
	"none":    "",
	"noir":    "grayscale(1) contrast(1.3)",
	"vintage": "sepia(0.6) contrast(1.1) brightness(0.9)",
	"vivid":   "saturate(1.6) contrast(1.1)",
	"cool":    "hue-rotate(-15deg) saturate(1.1)",
	"warm":    "sepia(0.2) saturate(1.2)",
}

// PresetNames returns the preset names in sorted order.
func PresetNames() []string {
	names := make([]string, 0, len(Presets))
	for n := range Presets {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// matrix is a 3x4 affine colour transform on normalised RGB.
type matrix [3][4]float64

type op struct {
	name   string
	amount float64
	m      matrix
}

// Filter is a parsed chain of photographic adjustments applied in order.
// The zero value (and nil) is the identity.
type Filter struct {
	expr    string
	ops     []op
	opacity float64
	g       *gift.GIFT
}

// Resolve accepts a preset name or a raw expression.
func Resolve(nameOrExpr string) (*Filter, error) {
	if expr, ok := Presets[strings.ToLower(strings.TrimSpace(nameOrExpr))]; ok {
		return ParseFilter(expr)
	}
	return ParseFilter(nameOrExpr)
}

// ParseFilter parses a CSS-like filter list such as
// "brightness(1.1) contrast(120%) hue-rotate(30deg)".
func ParseFilter(expr string) (*Filter, error) {
	f := &Filter{expr: strings.TrimSpace(expr), opacity: 1}
	rest := f.expr
	if rest == "" || rest == "none" {
		return f, nil
	}

	for rest != "" {
		open := strings.IndexByte(rest, '(')
		if open <= 0 {
			return nil, fmt.Errorf("malformed filter near %q", rest)
		}
		closing := strings.IndexByte(rest, ')')
		if closing < open {
			return nil, fmt.Errorf("unbalanced parenthesis near %q", rest)
		}
		name := strings.ToLower(strings.TrimSpace(rest[:open]))
		arg := strings.TrimSpace(rest[open+1 : closing])
		rest = strings.TrimLeft(rest[closing+1:], " \t,")

		if name == "opacity" {
			v, err := parseAmount(arg)
			if err != nil {
				return nil, fmt.Errorf("opacity: %w", err)
			}
			f.opacity *= clamp01(v)
			f.ops = append(f.ops, op{name: name, amount: v})
			continue
		}

		o, err := newOp(name, arg)
		if err != nil {
			return nil, err
		}
		f.ops = append(f.ops, o)
	}
	f.g = gift.New(gift.ColorFunc(f.pixel))
	return f, nil
}

func newOp(name, arg string) (op, error) {
	if name == "hue-rotate" {
		deg, err := parseAngle(arg)
		if err != nil {
			return op{}, fmt.Errorf("hue-rotate: %w", err)
		}
		return op{name: name, amount: deg, m: hueRotate(deg)}, nil
	}

	v, err := parseAmount(arg)
	if err != nil {
		return op{}, fmt.Errorf("%s: %w", name, err)
	}
	if v < 0 {
		return op{}, fmt.Errorf("%s: negative amount %v", name, v)
	}

	switch name {
	case "brightness":
		return op{name: name, amount: v, m: scaleMatrix(v, 0)}, nil
	case "contrast":
		return op{name: name, amount: v, m: scaleMatrix(v, 0.5*(1-v))}, nil
	case "saturate":
		return op{name: name, amount: v, m: saturate(v)}, nil
	case "grayscale":
		return op{name: name, amount: v, m: saturate(1 - math.Min(v, 1))}, nil
	case "sepia":
		return op{name: name, amount: v, m: sepia(math.Min(v, 1))}, nil
	case "invert":
		a := math.Min(v, 1)
		return op{name: name, amount: v, m: scaleMatrix(1-2*a, a)}, nil
	}
	return op{}, fmt.Errorf("unknown filter function %q", name)
}

// String returns the expression the filter was parsed from.
func (f *Filter) String() string {
	if f == nil {
		return ""
	}
	return f.expr
}

// Identity reports whether applying the filter is a no-op.
func (f *Filter) Identity() bool {
	return f == nil || len(f.ops) == 0
}

// Draw grades the r region of src and writes it to dst at r.Min,
// replacing what was there.
func (f *Filter) Draw(dst draw.Image, src image.Image, r image.Rectangle) {
	f.draw(dst, src, r, gift.CopyOperator, draw.Src)
}

// DrawOver grades the r region of src and blends it over dst at r.Min.
func (f *Filter) DrawOver(dst draw.Image, src image.Image, r image.Rectangle) {
	f.draw(dst, src, r, gift.OverOperator, draw.Over)
}

func (f *Filter) draw(dst draw.Image, src image.Image, r image.Rectangle, gop gift.Operator, dop draw.Op) {
	r = r.Intersect(src.Bounds())
	if r.Empty() {
		return
	}
	if f.Identity() {
		draw.Draw(dst, r, src, r.Min, dop)
		return
	}
	f.g.DrawAt(dst, subImage(src, r), r.Min, gop)
}

// pixel runs the colour chain on one non-premultiplied pixel.
func (f *Filter) pixel(r, g, b, a float32) (float32, float32, float32, float32) {
	c := [3]float64{float64(r), float64(g), float64(b)}
	for _, o := range f.ops {
		if o.name == "opacity" {
			continue
		}
		c = o.m.apply(c)
	}
	return float32(c[0]), float32(c[1]), float32(c[2]), a * float32(f.opacity)
}

func subImage(img image.Image, r image.Rectangle) image.Image {
	if s, ok := img.(interface {
		SubImage(image.Rectangle) image.Image
	}); ok {
		return s.SubImage(r)
	}
	return img
}

func (m matrix) apply(c [3]float64) [3]float64 {
	var out [3]float64
	for row := 0; row < 3; row++ {
		v := m[row][0]*c[0] + m[row][1]*c[1] + m[row][2]*c[2] + m[row][3]
		out[row] = clamp01(v)
	}
	return out
}

func scaleMatrix(k, offset float64) matrix {
	return matrix{
		{k, 0, 0, offset},
		{0, k, 0, offset},
		{0, 0, k, offset},
	}
}

// Luminance weights shared by saturate, grayscale and hue-rotate.
const (
	lumR = 0.2126
	lumG = 0.7152
	lumB = 0.0722
)

func saturate(s float64) matrix {
	return matrix{
		{lumR + (1-lumR)*s, lumG - lumG*s, lumB - lumB*s, 0},
		{lumR - lumR*s, lumG + (1-lumG)*s, lumB - lumB*s, 0},
		{lumR - lumR*s, lumG - lumG*s, lumB + (1-lumB)*s, 0},
	}
}

func sepia(a float64) matrix {
	k := 1 - a
	return matrix{
		{0.393 + 0.607*k, 0.769 - 0.769*k, 0.189 - 0.189*k, 0},
		{0.349 - 0.349*k, 0.686 + 0.314*k, 0.168 - 0.168*k, 0},
		{0.272 - 0.272*k, 0.534 - 0.534*k, 0.131 + 0.869*k, 0},
	}
}

func hueRotate(deg float64) matrix {
	rad := deg * math.Pi / 180
	cs, sn := math.Cos(rad), math.Sin(rad)
	return matrix{
		{lumR + cs*(1-lumR) - sn*lumR, lumG - cs*lumG - sn*lumG, lumB - cs*lumB + sn*(1-lumB), 0},
		{lumR - cs*lumR + sn*0.143, lumG + cs*(1-lumG) + sn*0.140, lumB - cs*lumB - sn*0.283, 0},
		{lumR - cs*lumR - sn*(1-lumR), lumG - cs*lumG + sn*lumG, lumB + cs*(1-lumB) + sn*lumB, 0},
	}
}

func parseAmount(s string) (float64, error) {
	if s == "" {
		return 1, nil
	}
	pct := strings.HasSuffix(s, "%")
	v, err := strconv.ParseFloat(strings.TrimSuffix(s, "%"), 64)
	if err != nil {
		return 0, fmt.Errorf("bad amount %q", s)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("bad amount %q", s)
	}
	if pct {
		v /= 100
	}
	return v, nil
}

func parseAngle(s string) (float64, error) {
	switch {
	case strings.HasSuffix(s, "deg"):
		s = strings.TrimSuffix(s, "deg")
	case strings.HasSuffix(s, "turn"):
		v, err := strconv.ParseFloat(strings.TrimSuffix(s, "turn"), 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, fmt.Errorf("bad angle %q", s)
		}
		return v * 360, nil
	case s == "0":
	default:
		return 0, fmt.Errorf("angle %q needs a deg or turn unit", s)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("bad angle %q", s)
	}
	return v, nil
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}


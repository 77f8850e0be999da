package renderer

import (
	"image"
	"image/color"
	"math"
	"strings"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

var (
	fontOnce   sync.Once
	parsedFont *opentype.Font
	fontErr    error
)

func loadFont() (*opentype.Font, error) {
	fontOnce.Do(func() {
		parsedFont, fontErr = opentype.Parse(goregular.TTF)
	})
	return parsedFont, fontErr
}

// textPainter draws caption text centred near the bottom edge: a dark
// outline pass first, then the fill.
type textPainter struct {
	face    font.Face
	outline int
	fill    image.Image
	stroke  image.Image
}

func newTextPainter(size float64) (*textPainter, error) {
	f, err := loadFont()
	if err != nil {
		return nil, err
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, err
	}
	return &textPainter{
		face:    face,
		outline: int(math.Max(1, math.Round(size/14))),
		fill:    image.NewUniform(color.White),
		stroke:  image.NewUniform(color.Black),
	}, nil
}

func (p *textPainter) draw(dst *image.RGBA, content string) {
	b := dst.Bounds()
	lines := p.wrap(content, b.Dx()*9/10)
	if len(lines) == 0 {
		return
	}

	m := p.face.Metrics()
	lineH := m.Height.Ceil()
	bottom := b.Max.Y - b.Dy()/10
	first := bottom - m.Descent.Ceil() - (len(lines)-1)*lineH

	for i, line := range lines {
		w := font.MeasureString(p.face, line).Ceil()
		x := b.Min.X + (b.Dx()-w)/2
		y := first + i*lineH

		for dy := -p.outline; dy <= p.outline; dy++ {
			for dx := -p.outline; dx <= p.outline; dx++ {
				if dx == 0 && dy == 0 {
					continue
				}
				p.drawString(dst, p.stroke, line, x+dx, y+dy)
			}
		}
		p.drawString(dst, p.fill, line, x, y)
	}
}

func (p *textPainter) drawString(dst *image.RGBA, src image.Image, s string, x, y int) {
	d := &font.Drawer{
		Dst:  dst,
		Src:  src,
		Face: p.face,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(s)
}

// wrap breaks content on explicit newlines and then on words so that no
// line is wider than maxWidth. A single over-long word keeps its own line.
func (p *textPainter) wrap(content string, maxWidth int) []string {
	var lines []string
	for _, hard := range strings.Split(content, "\n") {
		words := strings.Fields(hard)
		if len(words) == 0 {
			continue
		}
		line := words[0]
		for _, w := range words[1:] {
			candidate := line + " " + w
			if font.MeasureString(p.face, candidate).Ceil() > maxWidth {
				lines = append(lines, line)
				line = w
				continue
			}
			line = candidate
		}
		lines = append(lines, line)
	}
	return lines
}

package renderer

import (
	"fmt"
	"image"
	"strings"

	"github.com/skip2/go-qrcode"
	xdraw "golang.org/x/image/draw"
)

// BurnInPayload is the text encoded into the verification stamp.
func BurnInPayload(t float64, clipIDs []string) string {
	return fmt.Sprintf("t=%.3f;clips=%s", t, strings.Join(clipIDs, ","))
}

func (c *Compositor) burnIn(frame *Frame) {
	var ids []string
	for _, l := range frame.Layers {
		ids = append(ids, l.ClipID)
	}
	for _, a := range frame.Audio {
		if a.ClipID != "" {
			ids = append(ids, a.ClipID)
		}
	}

	q, err := qrcode.New(BurnInPayload(frame.Time, ids), qrcode.Medium)
	if err != nil {
		c.log.Debug().Err(err).Msg("burn-in skipped")
		return
	}

	size := c.canvas.Rect.Dy() / 5
	if size < 64 {
		size = 64
	}
	stamp := q.Image(size)
	r := image.Rect(8, 8, 8+stamp.Bounds().Dx(), 8+stamp.Bounds().Dy()).Intersect(c.canvas.Rect)
	xdraw.Draw(c.canvas, r, stamp, stamp.Bounds().Min, xdraw.Src)
}

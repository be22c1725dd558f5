package bahtinov

import (
	"fmt"
	"image/color"

	colorful "github.com/lucasb-eyer/go-colorful"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/ironsheep/bahtinov-focus-mcp/internal/imaging"
)

// OffsetMagnification scales the focus offset in overlays so that a one
// pixel error is still visible.
const OffsetMagnification = 15.0

// Spike colours: red, green and dark green, in theta order.
var spikeColors = [3]colorful.Color{
	colorful.Hsv(0, 1, 1),
	colorful.Hsv(120, 1, 1),
	colorful.Hsv(120, 1, 0.5),
}

// SpikeColor returns the hex colour used for spike i (0..2) in overlays.
func SpikeColor(i int) string {
	return spikeColors[i].Hex()
}

// RenderOverlay draws the detected spikes and the magnified focus offset
// over the edge buffer and returns the result as base64 PNG.
func RenderOverlay(edges []uint8, width, height int, p *Pattern, scale float64) (*imaging.EncodedImage, error) {
	base, err := imaging.GrayFromBuffer(edges, width, height)
	if err != nil {
		return nil, err
	}

	strokes := make([]imaging.Stroke, 0, 4)
	for i, line := range p.Lines {
		strokes = append(strokes, imaging.Stroke{
			X1:    line.Begin.X,
			Y1:    line.Begin.Y,
			X2:    line.End.X,
			Y2:    line.End.Y,
			Color: toRGBA(spikeColors[i]),
			Label: fmt.Sprintf("%.1f", line.AngleDegrees()),
		})
	}

	tip := r2.Add(p.Focus.Projection, r2.Scale(OffsetMagnification, p.Focus.Offset))
	strokes = append(strokes, imaging.Stroke{
		X1:    p.Focus.Projection.X,
		Y1:    p.Focus.Projection.Y,
		X2:    tip.X,
		Y2:    tip.Y,
		Color: color.RGBA{255, 255, 255, 255},
		Label: fmt.Sprintf("%+.2f px", p.Focus.Error),
	})

	return imaging.EncodePNG(imaging.DrawOverlay(base, strokes), scale)
}

func toRGBA(c colorful.Color) color.RGBA {
	r, g, b := c.Clamped().RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 255}
}

package imaging

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// maxStrokeSteps bounds the number of pixels plotted for a single stroke.
const maxStrokeSteps = 1 << 16

// Stroke is a straight line drawn over an image, with an optional label
// placed at its start.
type Stroke struct {
	X1, Y1 float64
	X2, Y2 float64
	Color  color.Color
	Label  string
}

// DrawOverlay renders base (usually an edge map) dimmed to half intensity
// and draws the strokes on top. Stroke coordinates may lie outside the
// image; only the visible part is drawn. Strokes without a colour are drawn
// in red.
func DrawOverlay(base *image.Gray, strokes []Stroke) *image.RGBA {
	bounds := base.Bounds()
	result := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))

	for y := 0; y < bounds.Dy(); y++ {
		for x := 0; x < bounds.Dx(); x++ {
			v := base.GrayAt(bounds.Min.X+x, bounds.Min.Y+y).Y / 2
			result.SetRGBA(x, y, color.RGBA{R: v, G: v, B: v, A: 255})
		}
	}

	for _, s := range strokes {
		drawStroke(result, s)
	}
	for _, s := range strokes {
		if s.Label != "" {
			drawLabel(result, int(math.Round(s.X1)), int(math.Round(s.Y1)), s.Label, strokeColor(s))
		}
	}
	return result
}

func strokeColor(s Stroke) color.Color {
	if s.Color == nil {
		return color.RGBA{255, 0, 0, 255}
	}
	return s.Color
}

// drawStroke plots the stroke with a simple DDA walk.
func drawStroke(img *image.RGBA, s Stroke) {
	c := strokeColor(s)
	dx := s.X2 - s.X1
	dy := s.Y2 - s.Y1
	steps := int(math.Ceil(math.Max(math.Abs(dx), math.Abs(dy))))
	if steps > maxStrokeSteps {
		steps = maxStrokeSteps
	}
	if steps == 0 {
		setIfInside(img, int(math.Round(s.X1)), int(math.Round(s.Y1)), c)
		return
	}

	for i := 0; i <= steps; i++ {
		f := float64(i) / float64(steps)
		setIfInside(img, int(math.Round(s.X1+f*dx)), int(math.Round(s.Y1+f*dy)), c)
	}
}

func setIfInside(img *image.RGBA, x, y int, c color.Color) {
	if image.Pt(x, y).In(img.Bounds()) {
		img.Set(x, y, c)
	}
}

// drawLabel writes text with its top-left corner near (x, y), clamped so
// the label stays inside the image, over a dark background box.
func drawLabel(img *image.RGBA, x, y int, text string, fg color.Color) {
	face := basicfont.Face7x13
	bounds := img.Bounds()
	labelWidth := font.MeasureString(face, text).Ceil()
	labelHeight := face.Metrics().Height.Ceil()

	x = clamp(x+2, 0, max(0, bounds.Dx()-labelWidth))
	y = clamp(y+2, 0, max(0, bounds.Dy()-labelHeight))

	bg := image.NewUniform(color.RGBA{0, 0, 0, 180})
	draw.Draw(img, image.Rect(x-1, y-1, x+labelWidth+1, y+labelHeight+1).Intersect(bounds), bg, image.Point{}, draw.Over)

	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(fg),
		Face: face,
		Dot:  fixed.P(x, y+face.Metrics().Ascent.Ceil()),
	}
	d.DrawString(text)
}

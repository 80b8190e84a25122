package display

import (
	"image"
	"image/color"

	"github.com/hajimehoshi/bitmapfont/v2"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

const (
	glyphWidth = 6
	lineHeight = 12
	baseline   = 10
)

var (
	white        = color.RGBA{255, 255, 255, 255}
	uniformWhite = image.NewUniform(white)
	uniformBlack = image.NewUniform(color.RGBA{0, 0, 0, 255})
)

func newCanvas(width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	clearCanvas(img)
	return img
}

func clearCanvas(img *image.RGBA) {
	draw.Draw(img, img.Bounds(), uniformBlack, image.Point{}, draw.Src)
}

// addLabel draws label with its baseline at y
func addLabel(img *image.RGBA, x, y int, label string) {
	d := &font.Drawer{
		Dst:  img,
		Src:  uniformWhite,
		Face: bitmapfont.Face,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(label)
}

func addCenteredLabel(img *image.RGBA, y int, label string) {
	x := (img.Bounds().Dx() - len(label)*glyphWidth) / 2
	if x < 0 {
		x = 0
	}
	addLabel(img, x, y, label)
}

func addProgressBar(img *image.RGBA, r image.Rectangle, percent int) {
	if percent < 0 {
		return
	}
	if percent > 100 {
		percent = 100
	}
	draw.Draw(img, r, uniformWhite, image.Point{}, draw.Src)
	draw.Draw(img, r.Inset(1), uniformBlack, image.Point{}, draw.Src)
	filled := r.Inset(2)
	filled.Max.X = filled.Min.X + filled.Dx()*percent/100
	draw.Draw(img, filled, uniformWhite, image.Point{}, draw.Src)
}

// drawPage lays out a title, as many lines as fit, and an optional progress bar on the last row
func drawPage(img *image.RGBA, page Page) {
	clearCanvas(img)
	bounds := img.Bounds()
	rows := bounds.Dy() / lineHeight

	addCenteredLabel(img, baseline, page.Title)
	lines := page.Lines
	available := rows - 1
	if page.Progress >= 0 {
		available--
	}
	if available < 0 {
		available = 0
	}
	if len(lines) > available {
		lines = lines[:available]
	}
	for i, line := range lines {
		addLabel(img, 0, baseline+(i+1)*lineHeight, line)
	}
	if page.Progress >= 0 {
		top := (rows - 1) * lineHeight
		addProgressBar(img, image.Rect(0, top+1, bounds.Dx(), top+lineHeight-1), page.Progress)
	}
}

func rotate180(src *image.RGBA) *image.RGBA {
	b := src.Bounds()
	dst := image.NewRGBA(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			dst.SetRGBA(b.Max.X-1-(x-b.Min.X), b.Max.Y-1-(y-b.Min.Y), src.RGBAAt(x, y))
		}
	}
	return dst
}

package output

import (
	"image"
	"image/draw"

	"github.com/fogleman/gg"
)

// captionHeight is the height in pixels of the strip Annotate draws
const captionHeight = 18

// Annotate returns a copy of img with caption drawn on a translucent strip
// along the bottom edge. The source image is not modified.
func Annotate(img image.Image, caption string) *image.RGBA {
	dc := gg.NewContextForImage(img)
	width := float64(dc.Width())
	height := float64(dc.Height())

	dc.SetRGBA(0, 0, 0, 0.6)
	dc.DrawRectangle(0, height-captionHeight, width, captionHeight)
	dc.Fill()

	// Default face is the 7x13 bitmap font, no font file needed
	dc.SetRGB(1, 1, 1)
	dc.DrawStringAnchored(caption, 4, height-captionHeight/2, 0, 0.35)

	if rgba, ok := dc.Image().(*image.RGBA); ok {
		return rgba
	}
	out := image.NewRGBA(image.Rect(0, 0, dc.Width(), dc.Height()))
	draw.Draw(out, out.Bounds(), dc.Image(), image.Point{}, draw.Src)
	return out
}

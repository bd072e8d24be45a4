// Package display turns image buffers into bitmaps and fits them to the viewport.
package display

import (
	"image"
	"image/color"

	"image-workbench/internal/models"
)

// grayPalette maps every intensity to itself
var grayPalette = func() color.Palette {
	p := make(color.Palette, 256)
	for i := range p {
		p[i] = color.Gray{Y: uint8(i)}
	}
	return p
}()

// ToDisplayable converts a buffer into a bitmap of size (W, H).
// Single-channel buffers share their samples with the returned paletted
// image; three-channel buffers are expanded to RGBA. Any other shape is a
// StructuralError and no bitmap is produced.
func ToDisplayable(buf *models.Buffer) (image.Image, error) {
	if err := buf.Validate(); err != nil {
		return nil, err
	}

	width, height := buf.Width(), buf.Height()
	rect := image.Rect(0, 0, width, height)

	switch buf.Rank() {
	case 2:
		return &image.Paletted{
			Pix:     buf.Pix,
			Stride:  width,
			Rect:    rect,
			Palette: grayPalette,
		}, nil
	case 3:
		stride := width * models.RGBChannels
		dst := image.NewRGBA(rect)
		for y := 0; y < height; y++ {
			row := buf.Pix[y*stride : (y+1)*stride]
			out := dst.Pix[y*dst.Stride : y*dst.Stride+width*4]
			for x := 0; x < width; x++ {
				out[x*4] = row[x*3]
				out[x*4+1] = row[x*3+1]
				out[x*4+2] = row[x*3+2]
				out[x*4+3] = 0xff
			}
		}
		return dst, nil
	default:
		return nil, models.NewStructuralError(buf.Shape, "unsupported rank %d", buf.Rank())
	}
}

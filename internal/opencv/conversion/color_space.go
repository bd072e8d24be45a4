package conversion

import (
	"github.com/pkg/errors"
	"gocv.io/x/gocv"

	"image-workbench/internal/models"
)

// GrayscaleOperation is the operation name reported for Grayscale
const GrayscaleOperation = "grayscale"

// Rec. 709 luma weights, in R, G, B order
var luma709 = [models.RGBChannels]float32{0.2125, 0.7154, 0.0721}

// lumaEpsilon absorbs float32 rounding so neutral pixels keep their value
const lumaEpsilon = 1e-3

// Grayscale converts an RGB buffer to a single-channel 8-bit buffer using
// Rec. 709 luma weights. Fractions are truncated, so pure red becomes 54.
// A gray buffer is returned as a copy.
func Grayscale(buf *models.Buffer) (*models.Buffer, error) {
	if err := buf.Validate(); err != nil {
		return nil, err
	}
	if buf.IsGray() {
		return buf.Clone(), nil
	}

	// RGB bytes as-is; the kernel below is in RGB order.
	src, err := gocv.NewMatFromBytes(buf.Height(), buf.Width(), gocv.MatTypeCV8UC3, buf.Pix)
	if err != nil {
		return nil, errors.Wrap(err, "mat from buffer")
	}
	defer src.Close()

	samples := gocv.NewMat()
	defer samples.Close()
	src.ConvertTo(&samples, gocv.MatTypeCV32F)

	kernel := gocv.NewMatWithSize(1, models.RGBChannels, gocv.MatTypeCV32F)
	defer kernel.Close()
	for i, w := range luma709 {
		kernel.SetFloatAt(0, i, w)
	}

	luma := gocv.NewMat()
	defer luma.Close()
	gocv.Transform(samples, &luma, kernel)
	if luma.Empty() {
		return nil, errors.New("color conversion produced an empty mat")
	}

	values, err := luma.DataPtrFloat32()
	if err != nil {
		return nil, errors.Wrap(err, "read luma")
	}

	gray := models.NewGrayBuffer(buf.Height(), buf.Width())
	if len(values) != len(gray.Pix) {
		return nil, errors.Errorf("luma has %d samples, want %d", len(values), len(gray.Pix))
	}
	for i, v := range values {
		gray.Pix[i] = truncate(v + lumaEpsilon)
	}
	return gray, nil
}

// truncate drops the fraction and saturates to the 8-bit range
func truncate(v float32) uint8 {
	switch {
	case v <= 0:
		return 0
	case v >= 255:
		return 255
	default:
		return uint8(v)
	}
}

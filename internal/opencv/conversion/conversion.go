// Package conversion moves pixel data between models.Buffer and gocv.Mat and
// hosts the OpenCV-backed transforms.
package conversion

import (
	"github.com/pkg/errors"
	"gocv.io/x/gocv"

	"image-workbench/internal/models"
)

// BufferToMat copies buf into a new 8-bit Mat. Three-channel buffers are
// reordered from RGB to the BGR layout OpenCV expects. The caller closes the Mat.
func BufferToMat(buf *models.Buffer) (gocv.Mat, error) {
	if err := buf.Validate(); err != nil {
		return gocv.NewMat(), err
	}

	matType := gocv.MatTypeCV8UC1
	if !buf.IsGray() {
		matType = gocv.MatTypeCV8UC3
	}

	data := make([]byte, len(buf.Pix))
	copy(data, buf.Pix)
	if !buf.IsGray() {
		swapRedBlue(data)
	}

	mat, err := gocv.NewMatFromBytes(buf.Height(), buf.Width(), matType, data)
	if err != nil {
		return gocv.NewMat(), errors.Wrap(err, "mat from buffer")
	}

	// NewMatFromBytes borrows data; the clone owns its pixels.
	owned := mat.Clone()
	mat.Close()
	return owned, nil
}

// MatToBuffer copies an 8-bit one or three channel Mat into a Buffer.
// Three-channel Mats are read as BGR and stored as RGB.
func MatToBuffer(mat gocv.Mat) (*models.Buffer, error) {
	if err := validateMat(mat, "mat to buffer"); err != nil {
		return nil, err
	}

	src := mat
	if !mat.IsContinuous() {
		src = mat.Clone()
		defer src.Close()
	}

	pix := src.ToBytes()
	rows, cols := src.Rows(), src.Cols()

	switch src.Channels() {
	case models.GrayChannels:
		return models.NewBuffer([]int{rows, cols}, pix)
	case models.RGBChannels:
		swapRedBlue(pix)
		return models.NewBuffer([]int{rows, cols, models.RGBChannels}, pix)
	default:
		return nil, models.NewStructuralError([]int{rows, cols, src.Channels()},
			"unsupported channel count %d", src.Channels())
	}
}

// swapRedBlue converts packed RGB to BGR and back in place
func swapRedBlue(pix []byte) {
	for i := 0; i+2 < len(pix); i += 3 {
		pix[i], pix[i+2] = pix[i+2], pix[i]
	}
}

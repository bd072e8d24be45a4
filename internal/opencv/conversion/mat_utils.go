package conversion

import (
	"github.com/pkg/errors"
	"gocv.io/x/gocv"

	"image-workbench/internal/models"
)

// MatProperties describes a decoded Mat
type MatProperties struct {
	Rows     int
	Cols     int
	Channels int
	Type     gocv.MatType
	Empty    bool
}

// GetMatProperties returns the shape information of mat
func GetMatProperties(mat gocv.Mat) MatProperties {
	if mat.Empty() {
		return MatProperties{Empty: true}
	}

	return MatProperties{
		Rows:     mat.Rows(),
		Cols:     mat.Cols(),
		Channels: mat.Channels(),
		Type:     mat.Type(),
	}
}

// DecodeFile reads an image file into an RGB buffer
func DecodeFile(path string) (*models.Buffer, error) {
	mat := gocv.IMRead(path, gocv.IMReadColor)
	defer mat.Close()

	if mat.Empty() {
		return nil, errors.Errorf("cannot decode image %q", path)
	}

	// IMReadColor yields BGR; MatToBuffer reorders it.
	buf, err := MatToBuffer(mat)
	if err != nil {
		return nil, errors.Wrapf(err, "decode %q", path)
	}
	return buf, nil
}

// EncodeFile writes buf to path; the format follows the file extension
func EncodeFile(path string, buf *models.Buffer) error {
	mat, err := BufferToMat(buf)
	if err != nil {
		return err
	}
	defer mat.Close()

	if !gocv.IMWrite(path, mat) {
		return errors.Errorf("cannot encode image %q", path)
	}
	return nil
}

func validateMat(mat gocv.Mat, operation string) error {
	props := GetMatProperties(mat)
	if props.Empty {
		return errors.Errorf("mat is empty for operation: %s", operation)
	}
	if props.Rows <= 0 || props.Cols <= 0 {
		return errors.Errorf("mat has invalid dimensions %dx%d for operation: %s",
			props.Cols, props.Rows, operation)
	}
	if props.Type != gocv.MatTypeCV8UC1 && props.Type != gocv.MatTypeCV8UC3 {
		return errors.Errorf("mat type %v is not 8-bit for operation: %s", props.Type, operation)
	}
	return nil
}

// FileCodec reads and writes image files through OpenCV
type FileCodec struct{}

// Decode implements services.Codec
func (FileCodec) Decode(path string) (*models.Buffer, error) {
	return DecodeFile(path)
}

// Encode implements services.Codec
func (FileCodec) Encode(path string, buf *models.Buffer) error {
	return EncodeFile(path, buf)
}

package conversion

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"image-workbench/internal/models"
)

func rgbBuffer(t *testing.T, h, w int, pixels ...[3]uint8) *models.Buffer {
	t.Helper()
	buf := models.NewRGBBuffer(h, w)
	for i, p := range pixels {
		copy(buf.Pix[i*3:], p[:])
	}
	return buf
}

func TestBufferMatRoundTripKeepsRGBOrder(t *testing.T) {
	buf := rgbBuffer(t, 1, 2, [3]uint8{255, 0, 0}, [3]uint8{1, 2, 3})

	mat, err := BufferToMat(buf)
	require.NoError(t, err)
	defer mat.Close()

	props := GetMatProperties(mat)
	assert.Equal(t, 1, props.Rows)
	assert.Equal(t, 2, props.Cols)
	assert.Equal(t, 3, props.Channels)

	// stored as BGR
	assert.Equal(t, uint8(255), mat.GetVecbAt(0, 0)[2])

	back, err := MatToBuffer(mat)
	require.NoError(t, err)
	assert.Equal(t, buf.Shape, back.Shape)
	assert.Equal(t, buf.Pix, back.Pix)
}

func TestGrayscale(t *testing.T) {
	buf := rgbBuffer(t, 2, 3,
		[3]uint8{0, 0, 0},
		[3]uint8{255, 255, 255},
		[3]uint8{255, 0, 0},
		[3]uint8{0, 255, 0},
		[3]uint8{0, 0, 255},
		[3]uint8{128, 128, 128},
	)

	gray, err := Grayscale(buf)
	require.NoError(t, err)
	assert.Equal(t, []int{2, 3}, gray.Shape)
	// Rec. 709 weights with the fraction dropped: 0.2125*255 = 54.19
	assert.Equal(t, []uint8{0, 255, 54, 182, 18, 128}, gray.Pix)
	assert.Equal(t, []uint8{255, 0, 0}, buf.Pix[6:9])
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, uint8(0), truncate(-3))
	assert.Equal(t, uint8(54), truncate(54.9))
	assert.Equal(t, uint8(255), truncate(300))
}

func TestGrayscale_GrayInputIsCopied(t *testing.T) {
	buf := models.NewGrayBuffer(1, 3)
	buf.Pix[1] = 9

	gray, err := Grayscale(buf)
	require.NoError(t, err)
	assert.Equal(t, buf.Pix, gray.Pix)
	assert.NotSame(t, &buf.Pix[0], &gray.Pix[0])
}

func TestGrayscale_RejectsMalformed(t *testing.T) {
	_, err := Grayscale(&models.Buffer{Shape: []int{2, 2, 4}, Pix: make([]uint8, 16)})
	assert.True(t, models.IsStructuralError(err))
}

func TestEncodeDecodeFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pixel.png")
	buf := rgbBuffer(t, 1, 2, [3]uint8{10, 20, 30}, [3]uint8{200, 100, 50})

	require.NoError(t, EncodeFile(path, buf))

	decoded, err := DecodeFile(path)
	require.NoError(t, err)
	assert.Equal(t, buf.Shape, decoded.Shape)
	assert.Equal(t, buf.Pix, decoded.Pix)
}

func TestDecodeFile_Missing(t *testing.T) {
	_, err := DecodeFile(filepath.Join(t.TempDir(), "absent.png"))
	assert.Error(t, err)
}

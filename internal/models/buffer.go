package models

// Channel counts accepted for an image buffer.
const (
	GrayChannels = 1
	RGBChannels  = 3
)

// Buffer is an 8-bit pixel array of shape (H, W) or (H, W, 3).
// Samples are row-major and interleaved; Pix has exactly H*W*C entries.
type Buffer struct {
	Shape []int
	Pix   []uint8
}

// NewBuffer wraps pix with the given shape after validating it
func NewBuffer(shape []int, pix []uint8) (*Buffer, error) {
	buf := &Buffer{Shape: append([]int(nil), shape...), Pix: pix}
	if err := buf.Validate(); err != nil {
		return nil, err
	}
	return buf, nil
}

// NewGrayBuffer allocates a zeroed single-channel buffer
func NewGrayBuffer(height, width int) *Buffer {
	return &Buffer{
		Shape: []int{height, width},
		Pix:   make([]uint8, height*width),
	}
}

// NewRGBBuffer allocates a zeroed three-channel buffer
func NewRGBBuffer(height, width int) *Buffer {
	return &Buffer{
		Shape: []int{height, width, RGBChannels},
		Pix:   make([]uint8, height*width*RGBChannels),
	}
}

// Validate checks the rank, the channel count and the sample count
func (b *Buffer) Validate() error {
	if b == nil {
		return NewStructuralError(nil, "buffer is nil")
	}

	switch len(b.Shape) {
	case 2:
	case 3:
		if b.Shape[2] != RGBChannels {
			return NewStructuralError(b.Shape, "expected %d channels, got %d", RGBChannels, b.Shape[2])
		}
	default:
		return NewStructuralError(b.Shape, "unsupported rank %d", len(b.Shape))
	}

	if b.Shape[0] <= 0 || b.Shape[1] <= 0 {
		return NewStructuralError(b.Shape, "invalid dimensions %dx%d", b.Shape[1], b.Shape[0])
	}

	if want := b.Shape[0] * b.Shape[1] * b.Channels(); len(b.Pix) != want {
		return NewStructuralError(b.Shape, "expected %d samples, got %d", want, len(b.Pix))
	}

	return nil
}

// Rank returns the number of dimensions
func (b *Buffer) Rank() int {
	return len(b.Shape)
}

// Height returns the number of rows
func (b *Buffer) Height() int {
	if len(b.Shape) < 2 {
		return 0
	}
	return b.Shape[0]
}

// Width returns the number of columns
func (b *Buffer) Width() int {
	if len(b.Shape) < 2 {
		return 0
	}
	return b.Shape[1]
}

// Channels returns 1 for (H, W) buffers and the last dimension otherwise
func (b *Buffer) Channels() int {
	if len(b.Shape) == 3 {
		return b.Shape[2]
	}
	return GrayChannels
}

// Stride returns the number of samples per row
func (b *Buffer) Stride() int {
	return b.Width() * b.Channels()
}

// IsGray reports whether the buffer is single-channel
func (b *Buffer) IsGray() bool {
	return len(b.Shape) == 2
}

// Clone returns a deep copy
func (b *Buffer) Clone() *Buffer {
	pix := make([]uint8, len(b.Pix))
	copy(pix, b.Pix)
	return &Buffer{Shape: append([]int(nil), b.Shape...), Pix: pix}
}

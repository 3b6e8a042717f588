// Package video implements the pixel-FIFO PPU: background/window and
// sprite fetchers feeding two FIFOs, OAM scan, and the mode state machine
// that drives LY/STAT and VBlank/LCD-STAT interrupts.
package video

// GBColor is one of the four shades the DMG LCD can display, already
// resolved through a palette register.
type GBColor uint32

const (
	FrameWidth  = 160
	FrameHeight = 144
	FrameSize   = FrameWidth * FrameHeight
)

const (
	WhiteColor     GBColor = 0xFFFFFFFF
	LightGreyColor GBColor = 0x989898FF
	DarkGreyColor  GBColor = 0x4C4C4CFF
	BlackColor     GBColor = 0x000000FF
)

// ByteToColor resolves a 2-bit shade index (already run through a palette
// register) to a display color.
func ByteToColor(value byte) GBColor {
	switch value & 0x3 {
	case 0:
		return WhiteColor
	case 1:
		return LightGreyColor
	case 2:
		return DarkGreyColor
	default:
		return BlackColor
	}
}

// FrameBuffer holds one completed 160x144 frame as packed RGBA pixels.
type FrameBuffer struct {
	buffer []uint32
}

// NewFrameBuffer returns a black 160x144 framebuffer.
func NewFrameBuffer() *FrameBuffer {
	return &FrameBuffer{buffer: make([]uint32, FrameSize)}
}

func (fb *FrameBuffer) GetPixel(x, y int) uint32 {
	return fb.buffer[y*FrameWidth+x]
}

func (fb *FrameBuffer) SetPixel(x, y int, color GBColor) {
	fb.buffer[y*FrameWidth+x] = uint32(color)
}

func (fb *FrameBuffer) ToSlice() []uint32 {
	return fb.buffer
}

// Clear resets the framebuffer to black.
func (fb *FrameBuffer) Clear() {
	for i := range fb.buffer {
		fb.buffer[i] = uint32(BlackColor)
	}
}

// ToBinaryData returns the framebuffer as raw big-endian RGBA bytes, for
// snapshot-style test comparison.
func (fb *FrameBuffer) ToBinaryData() []byte {
	data := make([]byte, len(fb.buffer)*4)
	for i, pixel := range fb.buffer {
		data[i*4] = byte(pixel >> 24)
		data[i*4+1] = byte(pixel >> 16)
		data[i*4+2] = byte(pixel >> 8)
		data[i*4+3] = byte(pixel)
	}
	return data
}

// ToGrayscale reduces the framebuffer to one of 4 shade indices per pixel,
// for simpler test comparison against reference images.
func (fb *FrameBuffer) ToGrayscale() []byte {
	data := make([]byte, len(fb.buffer))
	for i, pixel := range fb.buffer {
		switch GBColor(pixel) {
		case BlackColor:
			data[i] = 0
		case DarkGreyColor:
			data[i] = 1
		case LightGreyColor:
			data[i] = 2
		case WhiteColor:
			data[i] = 3
		default:
			data[i] = 0
		}
	}
	return data
}

package video

import "github.com/rgcarr/dmgcore/bit"

// TileRow is one decoded 8x8-tile row: two bit planes combine to give each
// pixel a 2-bit color index. Bit 7 is the leftmost pixel.
type TileRow struct {
	Low  byte
	High byte
}

// Pixel extracts the color index (0-3) at pixelX (0-7, left to right).
func (t TileRow) Pixel(pixelX int) uint8 {
	bitIndex := uint8(7 - pixelX)
	var p uint8
	if bit.IsSet(bitIndex, t.Low) {
		p |= 1
	}
	if bit.IsSet(bitIndex, t.High) {
		p |= 2
	}
	return p
}

// PixelFlipped is Pixel with the row read right-to-left, for sprites with
// the X-flip attribute set.
func (t TileRow) PixelFlipped(pixelX int) uint8 {
	bitIndex := uint8(pixelX)
	var p uint8
	if bit.IsSet(bitIndex, t.Low) {
		p |= 1
	}
	if bit.IsSet(bitIndex, t.High) {
		p |= 2
	}
	return p
}

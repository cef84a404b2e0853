package chip8

import "sync"

// Framebuffer dimensions in pixels.
const (
	DisplayWidth  = 64
	DisplayHeight = 32
)

// Display is the 64x32 monochrome framebuffer. Sprites are combined with
// the existing pixels via XOR and wrap around both screen edges. The
// framebuffer is guarded by a lock so a front-end can snapshot it while the
// CPU goroutine draws.
type Display struct {
	mu     sync.RWMutex
	pixels [DisplayWidth * DisplayHeight]byte
}

// NewDisplay returns a cleared framebuffer.
func NewDisplay() *Display {
	return &Display{}
}

// Clear unsets all pixels.
func (d *Display) Clear() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.pixels = [DisplayWidth * DisplayHeight]byte{}
}

// DrawSprite XORs the sprite onto the framebuffer at the given coordinates.
// Each sprite byte is one row of 8 horizontal pixels, most significant bit
// leftmost. Rows and columns wrap around the screen edges, sprites are not
// clipped. It reports whether any set pixel was flipped to unset.
func (d *Display) DrawSprite(x, y uint8, sprite []byte) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	collided := false
	for row, bits := range sprite {
		py := (int(y) + row) % DisplayHeight
		for col := range 8 {
			if bits&(0x80>>col) == 0 {
				continue
			}
			px := (int(x) + col) % DisplayWidth
			index := py*DisplayWidth + px
			if d.pixels[index] != 0 {
				collided = true
			}
			d.pixels[index] ^= 1
		}
	}
	return collided
}

// Snapshot returns a copy of the framebuffer in row-major order, one byte
// per pixel, 0 for unset and 1 for set.
func (d *Display) Snapshot() []byte {
	d.mu.RLock()
	defer d.mu.RUnlock()

	buf := make([]byte, len(d.pixels))
	copy(buf, d.pixels[:])
	return buf
}

package gui

import (
	"context"
	"fmt"
	"image/color"

	"github.com/Marvin-Dziedzina/chip-8-emulator/internal/chip8"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text"
	"github.com/retroenv/retrogolib/log"
	"golang.org/x/image/font/basicfont"
)

const windowTitle = "CHIP-8"

// Window displays the framebuffer in a desktop window, scaled up with crisp
// pixel edges, and polls the keyboard into the keypad once per tick.
type Window struct {
	logger *log.Logger
	cpu    *chip8.CPU
	scale  int

	ctx    context.Context
	screen *ebiten.Image
	frame  []byte
}

// NewWindow creates the desktop window front-end.
func NewWindow(logger *log.Logger, cpu *chip8.CPU, scale int) *Window {
	return &Window{
		logger: logger,
		cpu:    cpu,
		scale:  scale,
		frame:  make([]byte, chip8.DisplayWidth*chip8.DisplayHeight*4),
	}
}

// Run opens the window and blocks until it is closed or the context ends.
// It has to run on the main goroutine.
func (w *Window) Run(ctx context.Context) error {
	w.ctx = ctx

	ebiten.SetWindowSize(chip8.DisplayWidth*w.scale, chip8.DisplayHeight*w.scale)
	ebiten.SetWindowTitle(windowTitle)

	w.logger.Debug("Opening window",
		log.Int("width", chip8.DisplayWidth*w.scale),
		log.Int("height", chip8.DisplayHeight*w.scale),
	)

	if err := ebiten.RunGame(w); err != nil {
		return fmt.Errorf("running window: %w", err)
	}
	return nil
}

// Update feeds the currently pressed pad key into the keypad. It runs at
// the ebiten tick rate of 60Hz, keeping key state current for the machine
// without any event plumbing. Escape quits.
func (w *Window) Update() error {
	select {
	case <-w.ctx.Done():
		return ebiten.Termination
	default:
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}

	w.cpu.Keypad().SetKey(pressedPadKey())
	return nil
}

// Draw renders the current framebuffer snapshot scaled to the window size.
func (w *Window) Draw(screen *ebiten.Image) {
	if w.screen == nil {
		w.screen = ebiten.NewImage(chip8.DisplayWidth, chip8.DisplayHeight)
	}

	for i, pixel := range w.cpu.Display().Snapshot() {
		value := byte(0x00)
		if pixel != 0 {
			value = 0xFF
		}
		offset := i * 4
		w.frame[offset] = value
		w.frame[offset+1] = value
		w.frame[offset+2] = value
		w.frame[offset+3] = 0xFF
	}
	w.screen.WritePixels(w.frame)

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(float64(w.scale), float64(w.scale))
	screen.DrawImage(w.screen, op)

	if w.cpu.Paused() {
		w.drawKeyPrompt(screen)
	}
}

// Layout fixes the logical resolution to the scaled framebuffer size.
func (w *Window) Layout(_, _ int) (int, int) {
	return chip8.DisplayWidth * w.scale, chip8.DisplayHeight * w.scale
}

// drawKeyPrompt overlays a hint while the machine is blocked on a key wait.
func (w *Window) drawKeyPrompt(screen *ebiten.Image) {
	const prompt = "press a key"
	face := basicfont.Face7x13

	width := chip8.DisplayWidth * w.scale
	height := chip8.DisplayHeight * w.scale
	bounds := text.BoundString(face, prompt)

	barHeight := bounds.Dy() + 12
	barY := height - barHeight
	ebitenutil.DrawRect(screen, 0, float64(barY), float64(width), float64(barHeight),
		color.RGBA{A: 0xB4})

	x := (width - bounds.Dx()) / 2
	y := height - (barHeight-bounds.Dy())/2
	text.Draw(screen, prompt, face, x, y, color.White)
}

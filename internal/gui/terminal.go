package gui

import (
	"context"
	"fmt"
	"os"
	"strings"
	"syscall"
	"time"

	"github.com/Marvin-Dziedzina/chip-8-emulator/internal/chip8"
	"github.com/retroenv/retrogolib/log"
	"golang.org/x/term"
)

// ANSI control sequences used by the terminal front-end.
const (
	hideCursor  = "\x1b[?25l"
	showCursor  = "\x1b[?25h"
	clearScreen = "\x1b[2J"
	cursorHome  = "\x1b[H"
	eraseLine   = "\x1b[K"
)

const (
	// terminalRefreshInterval paces the redraw at 30 frames per second.
	terminalRefreshInterval = time.Second / 30

	// keyReleaseDelay ends a key press some time after its last input byte,
	// terminals report presses but never releases.
	keyReleaseDelay = 150 * time.Millisecond

	// inputPollInterval paces the non-blocking stdin reads.
	inputPollInterval = 5 * time.Millisecond
)

// Terminal renders the framebuffer as half block characters on stdout and
// reads pad keys from raw stdin. One character cell covers two vertically
// stacked pixels, fitting the display into 64x16 cells. Escape or ctrl-c
// quits.
type Terminal struct {
	logger *log.Logger
	cpu    *chip8.CPU
}

// NewTerminal creates the terminal front-end.
func NewTerminal(logger *log.Logger, cpu *chip8.CPU) *Terminal {
	return &Terminal{
		logger: logger,
		cpu:    cpu,
	}
}

// Run switches the terminal into raw mode and renders until the context
// ends or the user quits.
func (t *Terminal) Run(ctx context.Context) error {
	fd := int(os.Stdin.Fd())

	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return fmt.Errorf("entering terminal raw mode: %w", err)
	}
	if err := syscall.SetNonblock(fd, true); err != nil {
		_ = term.Restore(fd, oldState)
		return fmt.Errorf("setting stdin non-blocking: %w", err)
	}

	defer func() {
		_ = syscall.SetNonblock(fd, false)
		_ = term.Restore(fd, oldState)
		fmt.Print(showCursor + clearScreen + cursorHome)
	}()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go t.readKeys(ctx, cancel, fd)

	fmt.Print(hideCursor + clearScreen)

	ticker := time.NewTicker(terminalRefreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			t.render()
		}
	}
}

// readKeys polls raw stdin and feeds mapped pad keys into the keypad. A
// press is released again after a short delay since terminals deliver no
// key release events.
func (t *Terminal) readKeys(ctx context.Context, cancel context.CancelFunc, fd int) {
	keypad := t.cpu.Keypad()

	var release *time.Timer
	defer func() {
		if release != nil {
			release.Stop()
		}
	}()

	buf := make([]byte, 1)
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		n, err := syscall.Read(fd, buf)
		if err == syscall.EAGAIN || n == 0 {
			time.Sleep(inputPollInterval)
			continue
		}
		if err != nil {
			t.logger.Debug("Reading stdin failed", log.Err(err))
			return
		}

		switch b := buf[0]; b {
		case 0x03, 0x1B: // ctrl-c, escape
			cancel()
			return

		default:
			key, ok := terminalPadKey(b)
			if !ok {
				continue
			}

			keypad.SetKey(key)
			if release != nil {
				release.Stop()
			}
			release = time.AfterFunc(keyReleaseDelay, func() {
				keypad.SetKey(chip8.KeyNone)
			})
		}
	}
}

// render redraws the whole frame with a single write to avoid tearing.
func (t *Terminal) render() {
	frame := renderFrame(t.cpu.Display().Snapshot(), t.cpu.Paused())
	fmt.Print(frame)
}

// renderFrame builds the terminal frame for a framebuffer snapshot. Each
// character cell stacks two pixels using the upper and lower half block
// characters.
func renderFrame(snapshot []byte, paused bool) string {
	var sb strings.Builder
	sb.Grow(len(snapshot)*2 + 64)
	sb.WriteString(cursorHome)

	for y := 0; y < chip8.DisplayHeight; y += 2 {
		for x := range chip8.DisplayWidth {
			top := snapshot[y*chip8.DisplayWidth+x] != 0
			bottom := snapshot[(y+1)*chip8.DisplayWidth+x] != 0

			switch {
			case top && bottom:
				sb.WriteRune('█')
			case top:
				sb.WriteRune('▀')
			case bottom:
				sb.WriteRune('▄')
			default:
				sb.WriteByte(' ')
			}
		}
		sb.WriteString("\r\n")
	}

	if paused {
		sb.WriteString("press a key")
	}
	sb.WriteString(eraseLine)

	return sb.String()
}

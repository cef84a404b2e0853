// Package gui contains the user-facing front-ends of the emulator: a
// desktop window, a terminal renderer, a headless mode and the beeper.
// Every front-end renders the framebuffer and feeds pressed pad keys back
// into the keypad; the machine itself never draws or reads input.
package gui

import (
	"context"
	"fmt"

	"github.com/Marvin-Dziedzina/chip-8-emulator/internal/chip8"
	"github.com/retroenv/retrogolib/log"
)

// Video front-end names selectable with the -video flag.
const (
	VideoEbiten   = "ebiten"
	VideoTerminal = "terminal"
	VideoNone     = "none"
)

// Frontend presents the machine to the user until the context ends or the
// user quits.
type Frontend interface {
	Run(ctx context.Context) error
}

// New returns the front-end selected by name.
func New(video string, logger *log.Logger, cpu *chip8.CPU, scale int) (Frontend, error) {
	switch video {
	case VideoEbiten:
		return NewWindow(logger, cpu, scale), nil
	case VideoTerminal:
		return NewTerminal(logger, cpu), nil
	case VideoNone:
		return Headless{}, nil
	default:
		return nil, fmt.Errorf("unknown video front-end: %s", video)
	}
}

// Headless runs the machine without any presentation, for unattended use.
type Headless struct{}

// Run blocks until the context ends.
func (Headless) Run(ctx context.Context) error {
	<-ctx.Done()
	return nil
}

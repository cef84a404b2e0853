// Package emulator wires the machine, the ROM loader and the selected
// front-end together into a runnable system.
package emulator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Marvin-Dziedzina/chip-8-emulator/internal/chip8"
	"github.com/Marvin-Dziedzina/chip-8-emulator/internal/gui"
	"github.com/Marvin-Dziedzina/chip-8-emulator/internal/loader"
	"github.com/Marvin-Dziedzina/chip-8-emulator/internal/options"
	"github.com/retroenv/retrogolib/log"
)

// shutdownGrace bounds the wait for the machine goroutine after the
// front-end has returned. The machine can be parked in a key wait that
// only a key press ends; it holds no resources worth waiting longer for.
const shutdownGrace = 250 * time.Millisecond

// Emulator owns a loaded machine and the front-end presenting it.
type Emulator struct {
	logger   *log.Logger
	opts     options.Program
	cpu      *chip8.CPU
	frontend gui.Frontend
	beeper   *gui.Beeper
}

// New loads the ROM file and assembles the machine and front-end
// according to the program options.
func New(logger *log.Logger, opts options.Program) (*Emulator, error) {
	rom, err := loader.New(logger).Load(opts.ROMFile)
	if err != nil {
		return nil, err
	}

	cpu := chip8.New(logger)
	if err := cpu.LoadROM(rom); err != nil {
		return nil, fmt.Errorf("initializing machine: %w", err)
	}
	cpu.SetClockSpeed(opts.ClockSpeed)
	cpu.SetCycleLimit(opts.Cycles)

	frontend, err := gui.New(opts.Video, logger, cpu, opts.Scale)
	if err != nil {
		return nil, err
	}

	emu := &Emulator{
		logger:   logger,
		opts:     opts,
		cpu:      cpu,
		frontend: frontend,
	}

	if !opts.Mute && opts.Video != gui.VideoNone {
		beeper, err := gui.NewBeeper(logger, cpu.SoundTimer())
		if err != nil {
			logger.Warn("Audio output unavailable, continuing muted", log.Err(err))
		} else {
			emu.beeper = beeper
		}
	}

	return emu, nil
}

// Run executes the machine until the front-end quits, the context is
// cancelled, the optional cycle limit is reached or the machine faults.
func (e *Emulator) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	defer e.cpu.Stop()

	if e.beeper != nil {
		defer func() {
			if err := e.beeper.Close(); err != nil {
				e.logger.Debug("Closing beeper failed", log.Err(err))
			}
		}()
	}

	e.logger.Info("Starting emulation",
		log.String("rom", e.opts.ROMFile),
		log.Int("clock_hz", e.opts.ClockSpeed),
		log.String("video", e.opts.Video),
	)

	machineErr := make(chan error, 1)
	go func() {
		machineErr <- e.cpu.Run(ctx)
		cancel() // halt the front-end when the machine stops
	}()

	frontendErr := e.frontend.Run(ctx)
	cancel()

	var runErr error
	select {
	case runErr = <-machineErr:
	case <-time.After(shutdownGrace):
		e.logger.Debug("Machine did not stop within the grace period")
	}

	if frontendErr != nil {
		return fmt.Errorf("running front-end: %w", frontendErr)
	}
	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		return runErr
	}
	return nil
}

// PrintBanner prints the program version unless quiet mode is active.
func PrintBanner(logger *log.Logger, opts options.Program, version, commit, date string) {
	if opts.Quiet {
		return
	}

	versionString := version
	if commit != "" {
		if len(commit) > 7 {
			commit = commit[:7]
		}
		versionString += fmt.Sprintf(" (%s)", commit)
	}

	logger.Info("chip8", log.String("version", versionString))

	if date != "" && !strings.Contains(date, "unknown") {
		logger.Info("Build", log.String("date", date))
	}
}

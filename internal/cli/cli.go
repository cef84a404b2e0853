// Package cli handles command line interface logic
package cli

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/Marvin-Dziedzina/chip-8-emulator/internal/chip8"
	"github.com/Marvin-Dziedzina/chip-8-emulator/internal/gui"
	"github.com/Marvin-Dziedzina/chip-8-emulator/internal/options"
)

// ParseFlags parses command line flags and returns the program options
func ParseFlags() (options.Program, error) {
	flags := flag.NewFlagSet(os.Args[0], flag.ExitOnError)
	var opts options.Program
	readOptionFlags(flags, &opts)

	err := flags.Parse(os.Args[1:])
	args := flags.Args()
	if err != nil || len(args) == 0 {
		return opts, &UsageError{flags: flags}
	}

	if err := validateArgs(args); err != nil {
		return opts, err
	}

	if err := validateOptions(&opts); err != nil {
		return opts, err
	}

	opts.ROMFile = args[0]

	return opts, nil
}

// UsageError represents an error that should show usage information
type UsageError struct {
	flags *flag.FlagSet
	msg   string
}

func (e *UsageError) Error() string {
	return e.msg
}

func (e *UsageError) ShowUsage() {
	fmt.Printf("usage: chip8 [options] <ROM file>\n\n")
	e.flags.PrintDefaults()
	fmt.Println()
}

// validateArgs checks if arguments are in correct order
func validateArgs(args []string) error {
	for i, arg := range args {
		if i > 0 && arg[0] == '-' {
			return &UsageError{
				msg: fmt.Sprintf("Potential argument %s found after ROM file, please pass the ROM file as last argument", arg),
			}
		}
	}
	return nil
}

// validateOptions normalizes and validates option values
func validateOptions(opts *options.Program) error {
	opts.Video = strings.ToLower(opts.Video)

	validVideos := []string{gui.VideoEbiten, gui.VideoTerminal, gui.VideoNone}
	found := false
	for _, valid := range validVideos {
		if opts.Video == valid {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("unsupported video front-end: %s. Valid options: %s",
			opts.Video, strings.Join(validVideos, ", "))
	}

	if opts.ClockSpeed < 1 {
		return fmt.Errorf("clock speed has to be at least 1 instruction per second, got %d", opts.ClockSpeed)
	}
	if opts.Scale < 1 {
		return fmt.Errorf("window scale factor has to be at least 1, got %d", opts.Scale)
	}
	if opts.Cycles < 0 {
		return fmt.Errorf("cycle limit can not be negative, got %d", opts.Cycles)
	}

	return nil
}

func readOptionFlags(flags *flag.FlagSet, opts *options.Program) {
	flags.IntVar(&opts.ClockSpeed, "clock", chip8.DefaultClockSpeed, "number of instructions to execute per second")
	flags.IntVar(&opts.Scale, "scale", 10, "window scale factor of the desktop front-end")
	flags.StringVar(&opts.Video, "video", gui.VideoEbiten, "video front-end to use (ebiten/terminal/none)")
	flags.IntVar(&opts.Cycles, "cycles", 0, "stop after this many cycles, 0 runs until exit")
	flags.BoolVar(&opts.Mute, "mute", false, "disable sound output")
	flags.BoolVar(&opts.Debug, "debug", false, "enable debugging options for extended logging")
	flags.BoolVar(&opts.Quiet, "q", false, "perform operations quietly")
}

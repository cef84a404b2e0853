// Package options contains the program options.
package options

// Positional contains positional arguments.
type Positional struct {
	ROMFile string `arg:"positional" usage:"ROM file to run"`
}

// Flags contains behavior options.
type Flags struct {
	ClockSpeed int    `flag:"clock" usage:"instructions executed per second" default:"500"`
	Scale      int    `flag:"scale" usage:"window scale factor" default:"10"`
	Video      string `flag:"video" usage:"video front-end: ebiten, terminal, none" default:"ebiten"`
	Cycles     int    `flag:"cycles" usage:"stop after this many cycles, 0 runs until exit"`
	Mute       bool   `flag:"mute" usage:"disable sound output"`
	Debug      bool   `flag:"debug" usage:"enable debug logging"`
	Quiet      bool   `flag:"q" usage:"quiet mode"`
}

// Program options of the emulator.
type Program struct {
	Positional
	Flags
}

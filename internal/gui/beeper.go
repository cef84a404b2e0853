package gui

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/Marvin-Dziedzina/chip-8-emulator/internal/chip8"
	"github.com/ebitengine/oto/v3"
	"github.com/retroenv/retrogolib/log"
)

const (
	beepSampleRate = 44100
	beepFrequency  = 440.0
	beepVolume     = 0.25

	bytesPerSample = 4 // one float32 mono sample
)

// Beeper turns the sound timer into an audible tone. It streams a square
// wave to the audio device whenever the timer is above zero and silence
// otherwise, so the tone starts and stops with the timer without any
// signalling between the machine and the audio layer.
type Beeper struct {
	logger *log.Logger
	timer  *chip8.Timer
	player *oto.Player

	phase     float64
	increment float64
}

// NewBeeper opens the audio device and starts the silent output stream.
// The audio context can only be created once per process.
func NewBeeper(logger *log.Logger, timer *chip8.Timer) (*Beeper, error) {
	op := &oto.NewContextOptions{
		SampleRate:   beepSampleRate,
		ChannelCount: 1,
		Format:       oto.FormatFloat32LE,
	}

	ctx, ready, err := oto.NewContext(op)
	if err != nil {
		return nil, fmt.Errorf("creating audio context: %w", err)
	}
	<-ready

	b := &Beeper{
		logger:    logger,
		timer:     timer,
		increment: beepFrequency / beepSampleRate,
	}
	b.player = ctx.NewPlayer(b)
	b.player.Play()

	logger.Debug("Beeper started",
		log.Int("sample_rate", beepSampleRate),
		log.Int("frequency", int(beepFrequency)),
	)
	return b, nil
}

// Close stops the audio output.
func (b *Beeper) Close() error {
	if err := b.player.Close(); err != nil {
		return fmt.Errorf("closing audio player: %w", err)
	}
	return nil
}

// Read fills the buffer with square wave samples while the sound timer is
// running and with silence otherwise. The audio device pulls from here on
// its own schedule.
func (b *Beeper) Read(p []byte) (int, error) {
	samples := len(p) / bytesPerSample
	if samples == 0 {
		return 0, nil
	}

	active := b.timer.Read() > 0
	if !active {
		b.phase = 0
	}

	for i := range samples {
		var sample float32
		if active {
			if b.phase < 0.5 {
				sample = beepVolume
			} else {
				sample = -beepVolume
			}
			b.phase += b.increment
			if b.phase >= 1 {
				b.phase--
			}
		}
		binary.LittleEndian.PutUint32(p[i*bytesPerSample:], math.Float32bits(sample))
	}

	return samples * bytesPerSample, nil
}

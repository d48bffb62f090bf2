// Package sfx synthesizes the short sine beeps played on paddle hits and goals.
package sfx

import (
	"fmt"
	"math"
	"time"

	"airhockey/hockey"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/generators"
)

// SampleRate is the rate every effect is rendered at
const SampleRate = beep.SampleRate(44100)

const (
	// decayFloor is the level the envelope ramps down to
	decayFloor = 1e-4
	// tail keeps the oscillator running briefly after the ramp ends
	tail = 20 * time.Millisecond
)

// Tone is a sine beep with an exponential fade-out
type Tone struct {
	Freq     float64
	Duration time.Duration // length of the fade
	Gain     float64       // starting amplitude
}

var (
	// Hit is short and high
	Hit = Tone{Freq: 560, Duration: 60 * time.Millisecond, Gain: 0.025}
	// Goal is lower and longer
	Goal = Tone{Freq: 300, Duration: 140 * time.Millisecond, Gain: 0.035}
)

// ForEvent returns the tone a match event should play, if any
func ForEvent(e hockey.Event) (Tone, bool) {
	switch e.Kind {
	case hockey.EventHit:
		return Hit, true
	case hockey.EventGoal:
		return Goal, true
	}
	return Tone{}, false
}

// Len returns the number of frames the tone lasts at sr
func (t Tone) Len(sr beep.SampleRate) int {
	return sr.N(t.Duration + tail)
}

// Streamer renders the tone at sr
func (t Tone) Streamer(sr beep.SampleRate) (beep.Streamer, error) {
	if t.Duration <= 0 || t.Gain <= 0 {
		return nil, fmt.Errorf("sfx: tone needs a positive duration and gain, got %v/%v", t.Duration, t.Gain)
	}
	sine, err := generators.SineTone(sr, t.Freq)
	if err != nil {
		return nil, fmt.Errorf("sfx: %w", err)
	}
	shaped := &decay{
		streamer: beep.Take(t.Len(sr), sine),
		total:    sr.N(t.Duration),
		ratio:    math.Min(1, decayFloor/t.Gain),
	}
	return &effects.Volume{Streamer: shaped, Base: 2, Volume: math.Log2(t.Gain)}, nil
}

// decay ramps the stream exponentially from 1 to ratio over total samples and
// holds it there afterwards
type decay struct {
	streamer beep.Streamer
	position int
	total    int
	ratio    float64
}

func (d *decay) Stream(samples [][2]float64) (n int, ok bool) {
	n, ok = d.streamer.Stream(samples)
	for i := 0; i < n; i++ {
		k := 1.0
		if d.total > 0 && d.position < d.total {
			k = float64(d.position) / float64(d.total)
		}
		vol := math.Pow(d.ratio, k)
		samples[i][0] *= vol
		samples[i][1] *= vol
		d.position++
	}
	return n, ok
}

func (d *decay) Err() error { return d.streamer.Err() }

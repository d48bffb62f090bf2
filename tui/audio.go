package main

import (
	"sync"
	"time"

	"airhockey/sfx"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
	"k8s.io/klog/v2"
)

// tonePlayer plays short effect tones
type tonePlayer interface {
	Play(t sfx.Tone)
}

// speakerPlayer mixes tones onto the system speaker
type speakerPlayer struct {
	mu     sync.Mutex
	mixer  *beep.Mixer
	closed bool
}

// newSpeakerPlayer opens the audio device. Failure is not fatal to the
// game; callers run silent instead.
func newSpeakerPlayer() (*speakerPlayer, error) {
	sr := sfx.SampleRate
	if err := speaker.Init(sr, sr.N(time.Second/10)); err != nil {
		return nil, err
	}
	p := &speakerPlayer{mixer: &beep.Mixer{}}
	speaker.Play(p.mixer)
	return p, nil
}

func (p *speakerPlayer) Play(t sfx.Tone) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	s, err := t.Streamer(sfx.SampleRate)
	if err != nil {
		klog.Warningf("tone %v: %v", t, err)
		return
	}
	speaker.Lock()
	p.mixer.Add(s)
	speaker.Unlock()
}

func (p *speakerPlayer) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.closed = true
	speaker.Lock()
	p.mixer.Clear()
	speaker.Unlock()
	speaker.Close()
}

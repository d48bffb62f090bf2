package sfx

import (
	"errors"
	"fmt"
	"io"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/wav"
)

// Format is the encoding of the served effect files
var Format = beep.Format{SampleRate: SampleRate, NumChannels: 1, Precision: 2}

// EncodeWAV writes t as a mono 16-bit WAV file
func EncodeWAV(w io.WriteSeeker, t Tone) error {
	s, err := t.Streamer(Format.SampleRate)
	if err != nil {
		return err
	}
	if err := wav.Encode(w, s, Format); err != nil {
		return fmt.Errorf("sfx: encode wav: %w", err)
	}
	return nil
}

// WAV returns t encoded as a complete WAV file
func WAV(t Tone) ([]byte, error) {
	var buf writeBuffer
	if err := EncodeWAV(&buf, t); err != nil {
		return nil, err
	}
	return buf.data, nil
}

// writeBuffer is an in-memory io.WriteSeeker; the WAV encoder seeks back to
// patch its header once the data length is known
type writeBuffer struct {
	data []byte
	pos  int
}

func (b *writeBuffer) Write(p []byte) (int, error) {
	if end := b.pos + len(p); end > len(b.data) {
		b.data = append(b.data, make([]byte, end-len(b.data))...)
	}
	n := copy(b.data[b.pos:], p)
	b.pos += n
	return n, nil
}

func (b *writeBuffer) Seek(offset int64, whence int) (int64, error) {
	var abs int64
	switch whence {
	case io.SeekStart:
		abs = offset
	case io.SeekCurrent:
		abs = int64(b.pos) + offset
	case io.SeekEnd:
		abs = int64(len(b.data)) + offset
	default:
		return 0, errors.New("sfx: invalid whence")
	}
	if abs < 0 {
		return 0, errors.New("sfx: negative position")
	}
	b.pos = int(abs)
	return abs, nil
}

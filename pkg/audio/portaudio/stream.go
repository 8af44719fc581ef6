package portaudio

import (
	"errors"
	"sync"
	"time"

	"github.com/ttskit/claude-tts/pkg/audio/pcm"
)

// OutputStream plays PCM audio on the default output device. Writes block
// at the device's pace, so the caller can stream frames in real time.
type OutputStream struct {
	dev    *device
	format pcm.Format
	frames int
	buf    []int16
	mu     sync.Mutex
	closed bool
}

// NewOutputStream opens the default output device for playback.
// bufferDuration is the size of each write frame (e.g. 20ms).
func NewOutputStream(format pcm.Format, bufferDuration time.Duration) (*OutputStream, error) {
	framesPerBuffer := format.SamplesInDuration(bufferDuration)

	dev, err := openOutput(format.Channels(), float64(format.SampleRate()), framesPerBuffer)
	if err != nil {
		return nil, err
	}

	return &OutputStream{
		dev:    dev,
		format: format,
		frames: framesPerBuffer,
		buf:    make([]int16, framesPerBuffer*format.Channels()),
	}, nil
}

// WriteFrame plays one frame of little-endian int16 PCM bytes. A frame
// shorter than the configured buffer duration is zero-padded.
func (os *OutputStream) WriteFrame(b []byte) error {
	os.mu.Lock()
	defer os.mu.Unlock()

	if os.closed {
		return errors.New("portaudio: stream closed")
	}

	n := len(b) / 2
	if n > len(os.buf) {
		n = len(os.buf)
	}
	for i := 0; i < n; i++ {
		os.buf[i] = int16(b[i*2]) | int16(b[i*2+1])<<8
	}
	for i := n; i < len(os.buf); i++ {
		os.buf[i] = 0
	}

	return os.dev.Write(os.buf)
}

// FrameBytes returns the size in bytes of one full write frame.
func (os *OutputStream) FrameBytes() int {
	return os.frames * os.format.Channels() * 2
}

// Format returns the PCM format.
func (os *OutputStream) Format() pcm.Format {
	return os.format
}

// Close stops and closes the stream.
func (os *OutputStream) Close() error {
	os.mu.Lock()
	defer os.mu.Unlock()

	if os.closed {
		return nil
	}
	os.closed = true

	return os.dev.Close()
}

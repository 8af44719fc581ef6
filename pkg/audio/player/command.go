package player

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"

	"github.com/google/uuid"
	"github.com/ttskit/claude-tts/pkg/audio/pcm"
	"github.com/ttskit/claude-tts/pkg/audio/wav"
)

// ErrNoPlayer is returned when no known command-line audio player is
// installed on the host.
var ErrNoPlayer = errors.New("player: no audio player found")

// lookPath is swapped out in tests to control which players "exist".
var lookPath = exec.LookPath

// CommandSink plays a turn through an external player process. It buffers
// the whole PCM stream, writes a temporary WAV file on Finish and launches
// the first available player against it. Latency is a full synthesis turn,
// so this is the fallback for hosts without a usable PortAudio device.
type CommandSink struct {
	format pcm.Format
	buf    bytes.Buffer

	cmd *exec.Cmd
	tmp string
	err error
}

// NewCommandSink returns a sink that plays format-encoded PCM via an
// external player.
func NewCommandSink(format pcm.Format) *CommandSink {
	return &CommandSink{format: format}
}

// Feed appends one PCM chunk to the buffer.
func (s *CommandSink) Feed(chunk []byte) {
	s.buf.Write(chunk)
}

// Finish writes the buffered audio to a temporary WAV file and starts the
// player. An empty buffer is a no-op.
func (s *CommandSink) Finish() {
	if s.buf.Len() == 0 {
		return
	}

	name, args, err := PlayerCommand()
	if err != nil {
		s.err = err
		return
	}

	s.tmp = filepath.Join(os.TempDir(), "tts-"+uuid.NewString()+".wav")
	f, err := os.Create(s.tmp)
	if err != nil {
		s.err = fmt.Errorf("player: create temp wav: %w", err)
		return
	}
	if err := wav.Encode(f, s.format, s.buf.Bytes()); err != nil {
		f.Close()
		s.err = fmt.Errorf("player: write temp wav: %w", err)
		return
	}
	if err := f.Close(); err != nil {
		s.err = fmt.Errorf("player: write temp wav: %w", err)
		return
	}

	cmd := exec.Command(name, append(args, s.tmp)...)
	if err := cmd.Start(); err != nil {
		s.err = fmt.Errorf("player: start %s: %w", name, err)
		return
	}
	s.cmd = cmd
}

// WaitDone waits for the player process to exit and removes the temporary
// file.
func (s *CommandSink) WaitDone() error {
	if s.cmd != nil {
		if err := s.cmd.Wait(); err != nil && s.err == nil {
			s.err = fmt.Errorf("player: %s: %w", s.cmd.Path, err)
		}
	}
	if s.tmp != "" {
		os.Remove(s.tmp)
	}
	return s.err
}

// PCM returns the buffered audio. The dispatcher uses it to hand an
// already-collected stream to the cache.
func (s *CommandSink) PCM() []byte {
	return s.buf.Bytes()
}

// PlayerCommand probes the host for a command-line audio player and
// returns its name and base arguments. Probe order prefers the native
// sound server, then ALSA, then mpv.
func PlayerCommand() (name string, args []string, err error) {
	candidates := [][]string{
		{"paplay"},
		{"aplay", "-q"},
		{"mpv", "--really-quiet"},
	}
	if runtime.GOOS == "darwin" {
		candidates = [][]string{{"afplay"}}
	}
	for _, c := range candidates {
		if _, err := lookPath(c[0]); err == nil {
			return c[0], c[1:], nil
		}
	}
	return "", nil, ErrNoPlayer
}

// HavePlayer reports whether any known external player is installed.
func HavePlayer() bool {
	_, _, err := PlayerCommand()
	return err == nil
}

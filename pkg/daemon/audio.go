package daemon

import (
	"log/slog"
	"time"

	"github.com/ttskit/claude-tts/pkg/audio/pcm"
	"github.com/ttskit/claude-tts/pkg/audio/player"
	"github.com/ttskit/claude-tts/pkg/audio/portaudio"
)

// frameDuration is the write granularity of the streaming sink. 20ms
// frames keep the device buffer short enough that the first chunk is
// audible almost immediately.
const frameDuration = 20 * time.Millisecond

// sinkFactory builds one player.Output per spoken message.
type sinkFactory interface {
	NewSink() player.Output
}

// streamFactory plays through PortAudio with a small pre-buffer.
type streamFactory struct{}

func (streamFactory) NewSink() player.Output {
	return player.NewStreamSink(openOutputDevice, player.DefaultPreBuffer)
}

func openOutputDevice() (player.FrameWriter, error) {
	return portaudio.NewOutputStream(pcm.L16Mono24K, frameDuration)
}

// commandFactory plays whole turns through an external player process.
type commandFactory struct{}

func (commandFactory) NewSink() player.Output {
	return player.NewCommandSink(pcm.L16Mono24K)
}

// newSinkFactory probes the host's audio outputs at startup. PortAudio
// wins when a device exists; otherwise turns are handed to an external
// player, and if neither is available the daemon still runs so the cache
// keeps filling.
func newSinkFactory(logger *slog.Logger) sinkFactory {
	if portaudio.HasOutputDevice() {
		logger.Info("audio output: portaudio streaming")
		return streamFactory{}
	}
	if player.HavePlayer() {
		name, _, _ := player.PlayerCommand()
		logger.Info("audio output: external player", "player", name)
		return commandFactory{}
	}
	logger.Warn("no audio output available, synthesis will only fill the cache")
	return commandFactory{}
}

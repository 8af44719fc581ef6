package tts

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/ttskit/claude-tts/pkg/audio/player"
	"google.golang.org/genai"
)

// ErrNoAudio is returned when the model completed a turn without emitting
// any audio.
var ErrNoAudio = errors.New("tts: no audio in model turn")

// Synthesize sends text as a single user turn on an open Live session and
// streams the model's audio reply into sink chunk by chunk. It returns the
// complete PCM stream for caching once the turn completes.
//
// The caller finalizes the sink: Synthesize never calls Finish, so the
// sink is released on error paths too.
func Synthesize(session LiveSession, text string, sink player.Output, logger *slog.Logger) ([]byte, error) {
	err := session.SendClientContent(genai.LiveClientContentInput{
		Turns: []*genai.Content{
			{Role: genai.RoleUser, Parts: []*genai.Part{genai.NewPartFromText(text)}},
		},
		TurnComplete: genai.Ptr(true),
	})
	if err != nil {
		return nil, fmt.Errorf("send turn: %w", err)
	}

	var audio []byte
	for {
		msg, err := session.Receive()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("receive: %w", err)
		}
		sc := msg.ServerContent
		if sc == nil {
			continue
		}
		if sc.ModelTurn != nil {
			for _, part := range sc.ModelTurn.Parts {
				if part.InlineData == nil || len(part.InlineData.Data) == 0 {
					continue
				}
				chunk := part.InlineData.Data
				logger.Debug("audio chunk", "bytes", len(chunk))
				audio = append(audio, chunk...)
				sink.Feed(chunk)
			}
		}
		if sc.TurnComplete {
			logger.Debug("turn complete", "total_bytes", len(audio))
			break
		}
	}

	if len(audio) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrNoAudio, truncate(text, 100))
	}
	return audio, nil
}

package daemon

import (
	"context"
	"errors"
	"io"
	"net"
	"os"
	"strings"
	"time"

	"github.com/ttskit/claude-tts/pkg/audio/pcm"
	"github.com/ttskit/claude-tts/pkg/audio/player"
	"github.com/ttskit/claude-tts/pkg/tts"
)

const (
	// readTimeout bounds how long a client may dawdle over its request.
	readTimeout = 5 * time.Second

	// maxRequestBytes is the size of a single socket read; the protocol
	// is one short text per connection.
	maxRequestBytes = 4096
)

// handleConn reads one text request off the connection and speaks it.
func (d *Daemon) handleConn(ctx context.Context, conn net.Conn) {
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(readTimeout))
	buf := make([]byte, maxRequestBytes)
	n, err := conn.Read(buf)
	if err != nil && err != io.EOF {
		d.logger.Warn("client read failed", "error", err)
		return
	}

	text := strings.TrimSpace(string(buf[:n]))
	if text == "" {
		return
	}
	d.logger.Debug("received", "text", preview(text, 100))
	d.Speak(ctx, text)
}

// Speak renders text through the cache-then-synthesize pipeline and plays
// it. Requests are serialized; a second message waits for the first to
// finish playing.
func (d *Daemon) Speak(ctx context.Context, text string) {
	d.speakMu.Lock()
	defer d.speakMu.Unlock()

	cfg := d.loadConfig()

	if r := []rune(text); cfg.MaxChars > 0 && len(r) > cfg.MaxChars {
		text = string(r[:cfg.MaxChars])
		d.logger.Debug("truncated request", "max_chars", cfg.MaxChars)
	}

	key := d.cache.Key(text, cfg)
	if audio, ok := d.cache.Load(key); ok {
		d.logger.Debug("Cache hit", "key", key, "text", preview(text, 50))
		if err := d.index.Touch(key, time.Now()); err != nil {
			d.logger.Warn("index touch failed", "error", err)
		}
		d.play(audio)
		return
	}

	d.logger.Info("synthesizing", "text", preview(text, 50))
	session, err := d.sessions.Ensure(ctx, cfg)
	if err != nil {
		d.logger.Error("no live session", "error", err)
		return
	}

	sink := d.sinks.NewSink()
	audio, err := tts.Synthesize(session, text, sink, d.logger)
	sink.Finish()
	if err != nil {
		if errors.Is(err, tts.ErrNoAudio) {
			d.logger.Warn("synthesis produced no audio", "error", err)
		} else {
			// A dead connection also poisons the session; drop it so
			// the maintain loop dials a fresh one.
			d.sessions.Invalidate()
			d.logger.Error("synthesis failed", "error", err)
		}
		sink.WaitDone()
		return
	}

	if err := d.cache.Store(key, audio); err != nil {
		d.logger.Warn("cache store failed", "error", err)
	} else {
		d.recordEntry(key, text, cfg)
	}

	if err := sink.WaitDone(); err != nil {
		d.logger.Warn("stream playback failed, using external player", "error", err)
		d.playCommand(audio)
	}
}

// play replays already-rendered PCM through a fresh sink.
func (d *Daemon) play(audio []byte) {
	sink := d.sinks.NewSink()
	sink.Feed(audio)
	sink.Finish()
	if err := sink.WaitDone(); err != nil {
		d.logger.Warn("stream playback failed, using external player", "error", err)
		d.playCommand(audio)
	}
}

// playCommand is the last-ditch path: hand the whole turn to an external
// player process.
func (d *Daemon) playCommand(audio []byte) {
	sink := player.NewCommandSink(pcm.L16Mono24K)
	sink.Feed(audio)
	sink.Finish()
	if err := sink.WaitDone(); err != nil {
		d.logger.Error("playback failed", "error", err)
	}
}

// recordEntry catalogs a freshly stored cache file in the index.
func (d *Daemon) recordEntry(key, text string, cfg tts.Config) {
	size := int64(0)
	if fi, err := os.Stat(d.cache.Path(key)); err == nil {
		size = fi.Size()
	}
	now := time.Now()
	err := d.index.Record(tts.IndexEntry{
		Key:        key,
		Text:       preview(text, 200),
		Voice:      cfg.Voice,
		Style:      cfg.Style,
		Size:       size,
		CreatedAt:  now,
		LastAccess: now,
	})
	if err != nil {
		d.logger.Warn("index record failed", "error", err)
	}
}

func preview(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}

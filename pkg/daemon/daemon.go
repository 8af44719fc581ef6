// Package daemon wires the TTS pipeline together: a Unix socket server
// accepting text, a warm Gemini Live session, the WAV cache and the audio
// sinks.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"sync"

	"github.com/ttskit/claude-tts/pkg/tts"
)

// ErrAlreadyRunning is returned by Run when another daemon instance holds
// the PID file.
var ErrAlreadyRunning = errors.New("TTS daemon is already running")

// sessionSource is the slice of tts.SessionManager the dispatcher uses.
type sessionSource interface {
	Ensure(ctx context.Context, cfg tts.Config) (tts.LiveSession, error)
	Invalidate()
	Close()
	Maintain(ctx context.Context, loadConfig func() tts.Config)
}

// Daemon is the long-running TTS service.
type Daemon struct {
	paths    *tts.Paths
	cache    *tts.Cache
	index    *tts.Index
	sessions sessionSource
	sinks    sinkFactory
	logger   *slog.Logger

	// speakMu serializes playback: overlapping spoken messages are
	// useless, so requests queue behind the current one.
	speakMu sync.Mutex
}

// New builds a daemon from the environment. GEMINI_API_KEY must be set.
func New(ctx context.Context, logger *slog.Logger) (*Daemon, error) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		return nil, errors.New("GEMINI_API_KEY environment variable not set")
	}

	paths, err := tts.NewPaths()
	if err != nil {
		return nil, err
	}
	if err := paths.EnsureBaseDir(); err != nil {
		return nil, err
	}

	cache, err := tts.NewCache(paths.CacheDir())
	if err != nil {
		return nil, err
	}

	// The index only powers listing and pruning; run without it rather
	// than refuse to speak.
	index, err := tts.OpenIndex(paths.IndexDir())
	if err != nil {
		logger.Warn("cache index unavailable", "error", err)
		index = nil
	}

	sessions, err := tts.NewSessionManager(ctx, apiKey, logger)
	if err != nil {
		index.Close()
		return nil, err
	}

	return &Daemon{
		paths:    paths,
		cache:    cache,
		index:    index,
		sessions: sessions,
		sinks:    newSinkFactory(logger),
		logger:   logger,
	}, nil
}

// Run serves the Unix socket until ctx is cancelled. It refuses to start
// while another instance is alive, and cleans up the socket and PID file
// on the way out.
func (d *Daemon) Run(ctx context.Context) error {
	if IsRunning(d.paths.PIDFile()) {
		return ErrAlreadyRunning
	}
	if err := WritePID(d.paths.PIDFile()); err != nil {
		return fmt.Errorf("write pid file: %w", err)
	}
	defer RemovePID(d.paths.PIDFile())

	// A stale socket from a crashed daemon blocks the listen.
	os.Remove(d.paths.Socket())

	ln, err := net.Listen("unix", d.paths.Socket())
	if err != nil {
		return fmt.Errorf("listen on %s: %w", d.paths.Socket(), err)
	}
	defer func() {
		ln.Close()
		os.Remove(d.paths.Socket())
	}()

	// The hook may run as a different user within the session.
	if err := os.Chmod(d.paths.Socket(), 0666); err != nil {
		d.logger.Warn("chmod socket", "error", err)
	}
	d.logger.Info("listening", "socket", d.paths.Socket())

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go d.sessions.Maintain(ctx, d.loadConfig)
	defer d.sessions.Close()
	defer d.index.Close()

	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				d.logger.Info("shutting down")
				return nil
			}
			return fmt.Errorf("accept: %w", err)
		}
		go d.handleConn(ctx, conn)
	}
}

// loadConfig reads the config file fresh, falling back to defaults when
// it is broken.
func (d *Daemon) loadConfig() tts.Config {
	cfg, err := tts.LoadConfig(d.paths.ConfigFile())
	if err != nil {
		d.logger.Warn("config load failed, using defaults", "error", err)
	}
	return cfg
}

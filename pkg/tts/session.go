package tts

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"google.golang.org/genai"
)

const (
	// maintainInterval is how often the background loop checks that a
	// warm session exists.
	maintainInterval = 5 * time.Second

	initialBackoff = 1 * time.Second
	maxBackoff     = 30 * time.Second
)

// LiveSession is the slice of *genai.Session the manager needs. Tests
// substitute a fake.
type LiveSession interface {
	SendClientContent(input genai.LiveClientContentInput) error
	Receive() (*genai.LiveServerMessage, error)
	Close() error
}

// connectFunc dials a Live session configured for cfg.
type connectFunc func(ctx context.Context, cfg Config) (LiveSession, error)

// SessionManager keeps one warm Gemini Live session so the first chunk of
// a request doesn't pay the connection handshake. It reconnects in the
// background with exponential backoff, and transparently re-dials when
// the configuration drifts in a way that bakes into the connection.
type SessionManager struct {
	connect connectFunc
	logger  *slog.Logger

	mu      sync.Mutex
	session LiveSession
	current Config
	backoff time.Duration
	retryIn time.Duration
}

// NewSessionManager builds a manager that dials the Gemini Live API with
// the given API key.
func NewSessionManager(ctx context.Context, apiKey string, logger *slog.Logger) (*SessionManager, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("genai client: %w", err)
	}

	dial := func(ctx context.Context, cfg Config) (LiveSession, error) {
		instruction := cfg.Instruction()
		session, err := client.Live.Connect(ctx, Model, &genai.LiveConnectConfig{
			ResponseModalities: []genai.Modality{genai.ModalityAudio},
			SpeechConfig: &genai.SpeechConfig{
				VoiceConfig: &genai.VoiceConfig{
					PrebuiltVoiceConfig: &genai.PrebuiltVoiceConfig{VoiceName: cfg.Voice},
				},
			},
			SystemInstruction: &genai.Content{
				Parts: []*genai.Part{{Text: instruction}},
			},
		})
		if err != nil {
			return nil, err
		}
		logger.Info("connected to Gemini Live API",
			"voice", cfg.Voice, "instruction", truncate(instruction, 50))
		return session, nil
	}
	return newSessionManager(dial, logger), nil
}

func newSessionManager(dial connectFunc, logger *slog.Logger) *SessionManager {
	return &SessionManager{
		connect: dial,
		logger:  logger,
		backoff: initialBackoff,
	}
}

// Connected reports whether a live session is currently held.
func (m *SessionManager) Connected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.session != nil
}

// Ensure returns a session configured for cfg, dialing or re-dialing as
// needed. A held session whose settings match cfg is returned as is.
func (m *SessionManager) Ensure(ctx context.Context, cfg Config) (LiveSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.session != nil {
		if m.current.SessionEquals(cfg) {
			return m.session, nil
		}
		m.logger.Info("config changed, reconnecting",
			"voice", cfg.Voice, "style", cfg.Style, "mode", cfg.Mode, "language", cfg.Language)
		m.session.Close()
		m.session = nil
	}
	return m.dialLocked(ctx, cfg)
}

// dialLocked connects and updates backoff state. Callers hold m.mu.
func (m *SessionManager) dialLocked(ctx context.Context, cfg Config) (LiveSession, error) {
	session, err := m.connect(ctx, cfg)
	if err != nil {
		m.retryIn = m.backoff
		m.backoff = min(m.backoff*2, maxBackoff)
		return nil, fmt.Errorf("connect live session: %w", err)
	}
	m.session = session
	m.current = cfg
	m.backoff = initialBackoff
	return session, nil
}

// Invalidate drops the held session after a transport error so the next
// request (or the maintain loop) dials a fresh one.
func (m *SessionManager) Invalidate() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session != nil {
		m.session.Close()
		m.session = nil
	}
}

// Close shuts the held session down.
func (m *SessionManager) Close() {
	m.Invalidate()
}

// Maintain keeps a warm session alive until ctx is cancelled. loadConfig
// is called before every dial so the session always reflects the settings
// on disk. Failed dials retry with exponential backoff.
func (m *SessionManager) Maintain(ctx context.Context, loadConfig func() Config) {
	for {
		var delay time.Duration

		m.mu.Lock()
		if m.session == nil {
			if _, err := m.dialLocked(ctx, loadConfig()); err != nil {
				delay = m.retryIn
				m.logger.Error("live session connect failed", "error", err, "retry_in", delay)
			}
		}
		m.mu.Unlock()

		if delay == 0 {
			delay = maintainInterval
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(delay):
		}
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}

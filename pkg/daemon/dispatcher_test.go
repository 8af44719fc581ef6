package daemon

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ttskit/claude-tts/pkg/audio/player"
	"github.com/ttskit/claude-tts/pkg/tts"
	"google.golang.org/genai"
)

// fakeLive replays a scripted audio turn.
type fakeLive struct {
	mu      sync.Mutex
	sent    []string
	audio   [][]byte
	sendErr error
}

func (f *fakeLive) SendClientContent(input genai.LiveClientContentInput) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return f.sendErr
	}
	for _, turn := range input.Turns {
		for _, p := range turn.Parts {
			f.sent = append(f.sent, p.Text)
		}
	}
	return nil
}

func (f *fakeLive) Receive() (*genai.LiveServerMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.audio) == 0 {
		return &genai.LiveServerMessage{
			ServerContent: &genai.LiveServerContent{TurnComplete: true},
		}, nil
	}
	chunk := f.audio[0]
	f.audio = f.audio[1:]
	return &genai.LiveServerMessage{
		ServerContent: &genai.LiveServerContent{
			ModelTurn: &genai.Content{
				Parts: []*genai.Part{{InlineData: &genai.Blob{Data: chunk}}},
			},
		},
	}, nil
}

func (f *fakeLive) Close() error { return nil }

// fakeSessions hands out a single fakeLive.
type fakeSessions struct {
	mu          sync.Mutex
	live        *fakeLive
	ensureErr   error
	ensures     int
	invalidated bool
}

func (s *fakeSessions) Ensure(ctx context.Context, cfg tts.Config) (tts.LiveSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensures++
	if s.ensureErr != nil {
		return nil, s.ensureErr
	}
	return s.live, nil
}

func (s *fakeSessions) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.invalidated = true
}

func (s *fakeSessions) Close() {}

func (s *fakeSessions) Maintain(ctx context.Context, loadConfig func() tts.Config) {
	<-ctx.Done()
}

// memorySink records what was played.
type memorySink struct {
	mu       sync.Mutex
	played   []byte
	finished bool
	err      error
}

func (s *memorySink) Feed(chunk []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.played = append(s.played, chunk...)
}

func (s *memorySink) Finish() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.finished = true
}

func (s *memorySink) WaitDone() error { return s.err }

// memoryFactory hands out memorySinks and remembers them.
type memoryFactory struct {
	mu    sync.Mutex
	sinks []*memorySink
	err   error
}

func (f *memoryFactory) NewSink() player.Output {
	f.mu.Lock()
	defer f.mu.Unlock()
	s := &memorySink{err: f.err}
	f.sinks = append(f.sinks, s)
	return s
}

func (f *memoryFactory) last(t *testing.T) *memorySink {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.sinks) == 0 {
		t.Fatal("no sink was created")
	}
	return f.sinks[len(f.sinks)-1]
}

func newTestDaemon(t *testing.T, sessions *fakeSessions) (*Daemon, *memoryFactory) {
	t.Helper()

	home := t.TempDir()
	paths := &tts.Paths{HomeDir: home}
	if err := paths.EnsureBaseDir(); err != nil {
		t.Fatal(err)
	}
	cache, err := tts.NewCache(paths.CacheDir())
	if err != nil {
		t.Fatal(err)
	}
	index, err := tts.OpenIndexInMemory()
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { index.Close() })

	sinks := &memoryFactory{}
	return &Daemon{
		paths:    paths,
		cache:    cache,
		index:    index,
		sessions: sessions,
		sinks:    sinks,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}, sinks
}

func TestSpeakSynthesizesAndCaches(t *testing.T) {
	sessions := &fakeSessions{live: &fakeLive{audio: [][]byte{{1, 2}, {3, 4}}}}
	d, sinks := newTestDaemon(t, sessions)

	d.Speak(context.Background(), "hello world")

	sink := sinks.last(t)
	if !bytes.Equal(sink.played, []byte{1, 2, 3, 4}) {
		t.Errorf("played = %v", sink.played)
	}
	if !sink.finished {
		t.Error("sink not finalized")
	}

	key := d.cache.Key("hello world", tts.DefaultConfig())
	if audio, ok := d.cache.Load(key); !ok || !bytes.Equal(audio, []byte{1, 2, 3, 4}) {
		t.Errorf("cache entry = %v, %v", audio, ok)
	}
	entries, err := d.index.List()
	if err != nil || len(entries) != 1 || entries[0].Key != key {
		t.Errorf("index = %+v, %v", entries, err)
	}
	if entries[0].Text != "hello world" || entries[0].Voice != "Aoede" {
		t.Errorf("index entry = %+v", entries[0])
	}
}

func TestSpeakCacheHitSkipsSynthesis(t *testing.T) {
	sessions := &fakeSessions{live: &fakeLive{}}
	d, sinks := newTestDaemon(t, sessions)

	var logBuf bytes.Buffer
	d.logger = slog.New(slog.NewTextHandler(&logBuf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	key := d.cache.Key("hello", tts.DefaultConfig())
	if err := d.cache.Store(key, []byte{9, 9, 9, 9}); err != nil {
		t.Fatal(err)
	}

	d.Speak(context.Background(), "hello")

	if sessions.ensures != 0 {
		t.Error("cache hit still dialed a session")
	}
	if got := sinks.last(t).played; !bytes.Equal(got, []byte{9, 9, 9, 9}) {
		t.Errorf("played = %v, want cached audio", got)
	}
	if !strings.Contains(logBuf.String(), "Cache hit") {
		t.Errorf("log = %q, want a Cache hit line", logBuf.String())
	}
}

func TestSpeakTruncatesToMaxChars(t *testing.T) {
	sessions := &fakeSessions{live: &fakeLive{audio: [][]byte{{1, 2}}}}
	d, _ := newTestDaemon(t, sessions)

	cfg := tts.DefaultConfig()
	cfg.MaxChars = 5
	if err := cfg.Save(d.paths.ConfigFile()); err != nil {
		t.Fatal(err)
	}

	d.Speak(context.Background(), "hello world, this is long")

	if len(sessions.live.sent) != 1 || sessions.live.sent[0] != "hello" {
		t.Errorf("sent = %v, want truncated text", sessions.live.sent)
	}
}

func TestSpeakSynthesisErrorInvalidatesSession(t *testing.T) {
	sessions := &fakeSessions{live: &fakeLive{sendErr: errors.New("connection reset")}}
	d, sinks := newTestDaemon(t, sessions)

	d.Speak(context.Background(), "hello")

	if !sessions.invalidated {
		t.Error("failed synthesis did not invalidate the session")
	}
	if !sinks.last(t).finished {
		t.Error("sink leaked on the error path")
	}
	key := d.cache.Key("hello", tts.DefaultConfig())
	if _, ok := d.cache.Load(key); ok {
		t.Error("failed synthesis must not populate the cache")
	}
}

func TestSpeakEmptyTurnKeepsSession(t *testing.T) {
	// A turn that completes without audio is not a transport failure.
	sessions := &fakeSessions{live: &fakeLive{}}
	d, sinks := newTestDaemon(t, sessions)

	d.Speak(context.Background(), "hello")

	if sessions.invalidated {
		t.Error("empty turn must not invalidate the session")
	}
	if !sinks.last(t).finished {
		t.Error("sink leaked on the empty-turn path")
	}
	key := d.cache.Key("hello", tts.DefaultConfig())
	if _, ok := d.cache.Load(key); ok {
		t.Error("empty turn must not populate the cache")
	}
}

func TestSpeakNoSessionAvailable(t *testing.T) {
	sessions := &fakeSessions{ensureErr: errors.New("api down")}
	d, sinks := newTestDaemon(t, sessions)

	d.Speak(context.Background(), "hello")

	sinks.mu.Lock()
	defer sinks.mu.Unlock()
	if len(sinks.sinks) != 0 {
		t.Error("sink created with no session to feed it")
	}
}

func TestRunServesSocketRequests(t *testing.T) {
	sessions := &fakeSessions{live: &fakeLive{audio: [][]byte{{1, 2}}}}
	d, sinks := newTestDaemon(t, sessions)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	errCh := make(chan error, 1)
	go func() { errCh <- d.Run(ctx) }()

	var conn net.Conn
	var err error
	for i := 0; i < 100; i++ {
		conn, err = net.Dial("unix", d.paths.Socket())
		if err == nil {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	if err != nil {
		t.Fatalf("dial daemon: %v", err)
	}
	if _, err := conn.Write([]byte("hello over the wire")); err != nil {
		t.Fatal(err)
	}
	conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		sinks.mu.Lock()
		n := len(sinks.sinks)
		sinks.mu.Unlock()
		if n > 0 {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	if got := sinks.last(t).played; !bytes.Equal(got, []byte{1, 2}) {
		t.Errorf("played = %v", got)
	}

	cancel()
	if err := <-errCh; err != nil {
		t.Errorf("Run returned %v", err)
	}
	if _, err := os.Stat(d.paths.Socket()); !os.IsNotExist(err) {
		t.Error("socket not removed on shutdown")
	}
	if _, err := os.Stat(d.paths.PIDFile()); !os.IsNotExist(err) {
		t.Error("pid file not removed on shutdown")
	}
}

func TestRunRefusesSecondInstance(t *testing.T) {
	d, _ := newTestDaemon(t, &fakeSessions{})

	if err := WritePID(d.paths.PIDFile()); err != nil {
		t.Fatal(err)
	}
	if err := d.Run(context.Background()); !errors.Is(err, ErrAlreadyRunning) {
		t.Errorf("Run = %v, want ErrAlreadyRunning", err)
	}
}

func TestPreview(t *testing.T) {
	if got := preview("short", 10); got != "short" {
		t.Errorf("preview = %q", got)
	}
	if got := preview("привет мир", 6); got != "привет..." {
		t.Errorf("preview = %q", got)
	}
}

// Package tts holds the daemon's domain logic: runtime configuration,
// voice presets, the content-addressed audio cache and the Gemini Live
// synthesis session.
package tts

import (
	"os"
	"path/filepath"
)

// DefaultBaseDir is the runtime directory name under the user's home.
const DefaultBaseDir = ".claude"

// Paths provides access to the daemon's runtime files. Everything lives
// flat under ~/.claude so the hook, the CLI and the daemon agree on
// locations without any handshake.
type Paths struct {
	// HomeDir is the user's home directory.
	HomeDir string
}

// NewPaths creates a Paths instance rooted at the user's home directory.
func NewPaths() (*Paths, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	return &Paths{HomeDir: home}, nil
}

// BaseDir returns the runtime directory (~/.claude).
func (p *Paths) BaseDir() string {
	return filepath.Join(p.HomeDir, DefaultBaseDir)
}

// Socket returns the Unix socket path (~/.claude/tts.sock).
func (p *Paths) Socket() string {
	return filepath.Join(p.BaseDir(), "tts.sock")
}

// PIDFile returns the daemon PID file path (~/.claude/tts_daemon.pid).
func (p *Paths) PIDFile() string {
	return filepath.Join(p.BaseDir(), "tts_daemon.pid")
}

// CacheDir returns the audio cache directory (~/.claude/tts_cache).
func (p *Paths) CacheDir() string {
	return filepath.Join(p.BaseDir(), "tts_cache")
}

// IndexDir returns the cache index directory (~/.claude/tts_index).
func (p *Paths) IndexDir() string {
	return filepath.Join(p.BaseDir(), "tts_index")
}

// LogFile returns the daemon log file path (~/.claude/tts_daemon.log).
func (p *Paths) LogFile() string {
	return filepath.Join(p.BaseDir(), "tts_daemon.log")
}

// ConfigFile returns the config file path (~/.claude/tts_config.json).
func (p *Paths) ConfigFile() string {
	return filepath.Join(p.BaseDir(), "tts_config.json")
}

// EnsureBaseDir creates the runtime directory if it doesn't exist.
func (p *Paths) EnsureBaseDir() error {
	return os.MkdirAll(p.BaseDir(), 0755)
}

// EnsureCacheDir creates the cache directory if it doesn't exist.
func (p *Paths) EnsureCacheDir() error {
	return os.MkdirAll(p.CacheDir(), 0755)
}

// CachePath returns a path within the cache directory.
func (p *Paths) CachePath(name string) string {
	return filepath.Join(p.CacheDir(), name)
}

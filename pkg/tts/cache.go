package tts

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/ttskit/claude-tts/pkg/audio/pcm"
	"github.com/ttskit/claude-tts/pkg/audio/wav"
)

// Cache stores synthesized audio as WAV files, content-addressed by the
// text and the voice settings that produced it. A config change therefore
// misses naturally; the old entries stay around for when the user switches
// back.
type Cache struct {
	dir    string
	format pcm.Format
}

// NewCache creates the cache directory if needed and returns a handle.
func NewCache(dir string) (*Cache, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}
	return &Cache{dir: dir, format: pcm.L16Mono24K}, nil
}

// Dir returns the cache directory.
func (c *Cache) Dir() string {
	return c.dir
}

// Key derives the cache key for text under cfg: an MD5 digest over the
// text and every setting that changes the rendered audio.
func (c *Cache) Key(text string, cfg Config) string {
	sum := md5.Sum(fmt.Appendf(nil, "%s:%s:%s:%s:%s", text, cfg.Voice, cfg.Style, cfg.Mode, cfg.Language))
	return hex.EncodeToString(sum[:])
}

// Path returns the WAV file path for a key.
func (c *Cache) Path(key string) string {
	return filepath.Join(c.dir, key+".wav")
}

// Load reads the cached PCM frames for key. ok is false when the entry is
// absent or cannot be decoded; a corrupt file is treated as a miss, not an
// error, so the caller just re-synthesizes.
func (c *Cache) Load(key string) (data []byte, ok bool) {
	f, err := os.Open(c.Path(key))
	if err != nil {
		return nil, false
	}
	defer f.Close()

	format, frames, err := wav.Decode(f)
	if err != nil || format != c.format {
		return nil, false
	}
	return frames, true
}

// Store writes PCM frames to the cache under key. The WAV is assembled in
// a temp file in the same directory and renamed into place, so concurrent
// readers never see a partial entry.
func (c *Cache) Store(key string, data []byte) error {
	tmp := filepath.Join(c.dir, "."+uuid.NewString()+".tmp")
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("cache store: %w", err)
	}
	if err := wav.Encode(f, c.format, data); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("cache store: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("cache store: %w", err)
	}
	if err := os.Rename(tmp, c.Path(key)); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("cache store: %w", err)
	}
	return nil
}

// Remove deletes the cached entry for key, if present.
func (c *Cache) Remove(key string) error {
	err := os.Remove(c.Path(key))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

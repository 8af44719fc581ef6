// Package pcm provides arithmetic over raw PCM audio formats.
//
// All formats are signed 16-bit little-endian mono. The daemon's wire and
// disk format is L16Mono24K; the other rates exist so WAV files produced by
// older tools can still be identified on read.
package pcm

import "time"

const (
	// L16Mono16K represents audio/L16; rate=16000; channels=1
	L16Mono16K Format = iota
	// L16Mono24K represents audio/L16; rate=24000; channels=1
	L16Mono24K
	// L16Mono48K represents audio/L16; rate=48000; channels=1
	L16Mono48K
)

// Format identifies a PCM audio format.
type Format int

// SampleRate returns the sample rate in Hz.
func (f Format) SampleRate() int {
	switch f {
	case L16Mono16K:
		return 16000
	case L16Mono24K:
		return 24000
	case L16Mono48K:
		return 48000
	}
	panic("pcm: invalid format")
}

// Channels returns the number of audio channels.
func (f Format) Channels() int { return 1 }

// Depth returns the bit depth.
func (f Format) Depth() int { return 16 }

// BytesRate returns the number of PCM bytes per second.
func (f Format) BytesRate() int {
	return f.SampleRate() * f.Channels() * f.Depth() / 8
}

// SamplesInDuration returns the number of samples covering d.
func (f Format) SamplesInDuration(d time.Duration) int {
	return int(time.Duration(f.SampleRate()) * d / time.Second)
}

// BytesInDuration returns the number of PCM bytes covering d.
func (f Format) BytesInDuration(d time.Duration) int {
	return f.SamplesInDuration(d) * f.Channels() * f.Depth() / 8
}

// Duration returns the play time of the given number of PCM bytes.
func (f Format) Duration(bytes int) time.Duration {
	samples := bytes * 8 / f.Channels() / f.Depth()
	return time.Duration(samples) * time.Second / time.Duration(f.SampleRate())
}

// ByRate returns the format with the given sample rate, if any.
func ByRate(rate int) (Format, bool) {
	switch rate {
	case 16000:
		return L16Mono16K, true
	case 24000:
		return L16Mono24K, true
	case 48000:
		return L16Mono48K, true
	}
	return 0, false
}

// String returns the MIME-style description of the format.
func (f Format) String() string {
	switch f {
	case L16Mono16K:
		return "audio/L16; rate=16000; channels=1"
	case L16Mono24K:
		return "audio/L16; rate=24000; channels=1"
	case L16Mono48K:
		return "audio/L16; rate=48000; channels=1"
	}
	panic("pcm: invalid format")
}

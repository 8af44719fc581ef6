// Package player plays streams of PCM chunks as they arrive.
//
// Two implementations of Output exist: StreamSink drives a low-latency
// frame device (PortAudio) and starts playback after a small pre-buffer,
// padding network gaps with silence; CommandSink collects the whole turn
// and hands a temporary WAV to an external player process.
package player

// Output accepts a stream of PCM chunks and plays them.
//
// The caller feeds chunks in arrival order, signals the end of the stream
// with Finish, and then blocks on WaitDone until playback is over. Finish
// must be called exactly once, including on error paths, so the underlying
// device is always released.
type Output interface {
	// Feed appends one PCM chunk. Chunks fed after Finish are dropped.
	Feed(chunk []byte)

	// Finish marks end-of-stream. Playback starts now if it has not
	// already (the short-message case where pre-buffer was never met).
	Finish()

	// WaitDone blocks until all buffered and in-flight audio has been
	// played, then releases the output device. It returns the first
	// playback error, if any.
	WaitDone() error
}

// FrameWriter is the device behind a StreamSink. WriteFrame plays one
// frame of little-endian int16 PCM bytes, blocking at the device's pace;
// frames shorter than FrameBytes are zero-padded by the device.
type FrameWriter interface {
	WriteFrame(b []byte) error
	FrameBytes() int
	Close() error
}

// OpenDevice opens a FrameWriter. StreamSink calls it lazily, when
// playback actually starts.
type OpenDevice func() (FrameWriter, error)

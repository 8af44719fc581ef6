package player

import "sync"

const (
	// DefaultPreBuffer is how many chunks to accumulate before opening the
	// device. A small head start absorbs early network jitter without
	// adding noticeable latency.
	DefaultPreBuffer = 2

	queueDepth = 256
)

// StreamSink plays chunks through a FrameWriter as they arrive. The device
// is opened lazily once the pre-buffer fills (or on Finish, whichever comes
// first), and a consumer goroutine then writes fixed-size frames at the
// device's pace. When chunks do not arrive fast enough it writes silence
// instead of stalling the device, so playback never glitches on a slow
// network turn.
type StreamSink struct {
	open      OpenDevice
	preBuffer int

	queue chan []byte
	done  chan struct{}

	mu       sync.Mutex
	started  bool
	finished bool
	chunks   int

	err error
}

// NewStreamSink returns a sink that will open a device via open when
// playback starts. preBuffer <= 0 falls back to DefaultPreBuffer.
func NewStreamSink(open OpenDevice, preBuffer int) *StreamSink {
	if preBuffer <= 0 {
		preBuffer = DefaultPreBuffer
	}
	return &StreamSink{
		open:      open,
		preBuffer: preBuffer,
		queue:     make(chan []byte, queueDepth),
		done:      make(chan struct{}),
	}
}

// Feed queues one chunk and starts playback once the pre-buffer is met.
func (s *StreamSink) Feed(chunk []byte) {
	if len(chunk) == 0 {
		return
	}

	s.mu.Lock()
	if s.finished {
		s.mu.Unlock()
		return
	}
	s.chunks++
	start := !s.started && s.chunks >= s.preBuffer
	if start {
		s.started = true
	}
	// The send stays under the lock so a concurrent Finish cannot close
	// the queue between the finished check and here. The consumer drains
	// without the lock, so a full queue still makes progress.
	s.queue <- chunk
	s.mu.Unlock()

	if start {
		go s.run()
	}
}

// Finish closes the stream. If playback never started because the message
// was shorter than the pre-buffer, it starts now; if nothing was fed at
// all, the sink completes immediately without touching the device.
func (s *StreamSink) Finish() {
	s.mu.Lock()
	if s.finished {
		s.mu.Unlock()
		return
	}
	s.finished = true
	start := !s.started && s.chunks > 0
	empty := !s.started && s.chunks == 0
	if start {
		s.started = true
	}
	close(s.queue)
	s.mu.Unlock()

	if start {
		go s.run()
	}
	if empty {
		close(s.done)
	}
}

// WaitDone blocks until the consumer has drained the stream and closed the
// device, and returns the first device error, if any.
func (s *StreamSink) WaitDone() error {
	<-s.done
	return s.err
}

func (s *StreamSink) run() {
	defer close(s.done)

	dev, err := s.open()
	if err != nil {
		s.err = err
		s.drain()
		return
	}
	defer dev.Close()

	frameBytes := dev.FrameBytes()
	silence := make([]byte, frameBytes)

	var (
		pending []byte
		closed  bool
	)
	for {
		pending, closed = s.fill(pending, closed, frameBytes)

		if closed && len(pending) == 0 {
			// Flush the device with one last silent frame so the tail
			// of the audio is not clipped when the stream closes.
			dev.WriteFrame(silence)
			return
		}

		n := min(frameBytes, len(pending))
		if err := dev.WriteFrame(pending[:n]); err != nil {
			s.err = err
			s.drain()
			return
		}
		pending = pending[n:]
	}
}

// fill tops up pending from the queue without blocking. Returning short
// (or empty) pending means the producer is behind and the caller should
// pad with silence; WriteFrame blocking at the device pace keeps this
// loop from spinning.
func (s *StreamSink) fill(pending []byte, closed bool, want int) ([]byte, bool) {
	for len(pending) < want && !closed {
		select {
		case chunk, ok := <-s.queue:
			if !ok {
				closed = true
			} else {
				pending = append(pending, chunk...)
			}
		default:
			return pending, closed
		}
	}
	return pending, closed
}

// drain discards queued chunks after a device failure so Feed never blocks
// on a full queue.
func (s *StreamSink) drain() {
	for range s.queue {
	}
}

// Package portaudio is a minimal CGO binding to the PortAudio library,
// exposing just enough to drive a blocking low-latency output device.
//
// Requires portaudio installed via pkg-config (e.g. brew install portaudio,
// apt install portaudio19-dev).
package portaudio

/*
#cgo pkg-config: portaudio-2.0

#include <portaudio.h>
#include <stdlib.h>
#include <string.h>

// Wrappers using void* to avoid CGO type issues with PaStream.
static PaError pa_open_output(void **stream,
                              const PaStreamParameters *outputParams,
                              double sampleRate,
                              unsigned long framesPerBuffer) {
    return Pa_OpenStream((PaStream**)stream, NULL, outputParams, sampleRate,
                         framesPerBuffer, paClipOff, NULL, NULL);
}

static PaError pa_start_stream(void *stream) {
    return Pa_StartStream((PaStream*)stream);
}

static PaError pa_stop_stream(void *stream) {
    return Pa_StopStream((PaStream*)stream);
}

static PaError pa_close_stream(void *stream) {
    return Pa_CloseStream((PaStream*)stream);
}

static PaError pa_write_stream(void *stream, const void *buffer, unsigned long frames) {
    return Pa_WriteStream((PaStream*)stream, buffer, frames);
}
*/
import "C"

import (
	"errors"
	"sync"
	"unsafe"
)

var (
	initOnce sync.Once
	initErr  error
)

// paError converts a PortAudio error code to a Go error.
func paError(code C.PaError) error {
	if code == C.paNoError {
		return nil
	}
	return errors.New(C.GoString(C.Pa_GetErrorText(code)))
}

// Initialize initializes the PortAudio library.
// It is safe to call multiple times.
func Initialize() error {
	initOnce.Do(func() {
		initErr = paError(C.Pa_Initialize())
	})
	return initErr
}

// Terminate terminates the PortAudio library.
func Terminate() error {
	return paError(C.Pa_Terminate())
}

// HasOutputDevice reports whether a default output device is available.
func HasOutputDevice() bool {
	if err := Initialize(); err != nil {
		return false
	}
	return C.Pa_GetDefaultOutputDevice() != C.paNoDevice
}

// device is an open PortAudio output stream with a reusable C-side buffer.
type device struct {
	stream     unsafe.Pointer
	buffer     unsafe.Pointer
	bufferSize int
	closed     bool
	mu         sync.Mutex
}

// openOutput opens the default output device for blocking int16 writes.
func openOutput(channels int, sampleRate float64, framesPerBuffer int) (*device, error) {
	if err := Initialize(); err != nil {
		return nil, err
	}

	outputDevice := C.Pa_GetDefaultOutputDevice()
	if outputDevice == C.paNoDevice {
		return nil, errors.New("portaudio: no default output device")
	}
	outputInfo := C.Pa_GetDeviceInfo(outputDevice)
	outputParams := &C.PaStreamParameters{
		device:                    outputDevice,
		channelCount:              C.int(channels),
		sampleFormat:              C.paInt16,
		suggestedLatency:          outputInfo.defaultLowOutputLatency,
		hostApiSpecificStreamInfo: nil,
	}

	var paStream unsafe.Pointer
	err := paError(C.pa_open_output(
		&paStream,
		outputParams,
		C.double(sampleRate),
		C.ulong(framesPerBuffer),
	))
	if err != nil {
		return nil, err
	}

	bufferSize := framesPerBuffer * channels * 2 // int16 = 2 bytes

	d := &device{
		stream:     paStream,
		buffer:     C.malloc(C.size_t(bufferSize)),
		bufferSize: bufferSize,
	}
	if err := paError(C.pa_start_stream(d.stream)); err != nil {
		d.Close()
		return nil, err
	}
	return d, nil
}

// Write plays the given samples. It blocks until the audio subsystem has
// consumed the buffer, which paces the caller at real time.
func (d *device) Write(samples []int16) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return errors.New("portaudio: stream closed")
	}
	if len(samples)*2 > d.bufferSize {
		return errors.New("portaudio: write exceeds frame buffer")
	}

	C.memcpy(d.buffer, unsafe.Pointer(&samples[0]), C.size_t(len(samples)*2))
	return paError(C.pa_write_stream(d.stream, d.buffer, C.ulong(len(samples))))
}

// Close stops and closes the stream.
func (d *device) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return nil
	}
	d.closed = true

	C.pa_stop_stream(d.stream)
	err := paError(C.pa_close_stream(d.stream))
	C.free(d.buffer)
	return err
}

// Package wav reads and writes RIFF/WAVE containers around raw PCM frames.
//
// Only uncompressed 16-bit mono PCM is supported; that is the only format
// the daemon ever puts on disk.
package wav

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/ttskit/claude-tts/pkg/audio/pcm"
)

// ErrUnsupported is returned by Decode when the container is not a
// 16-bit mono PCM WAV at a recognized sample rate.
var ErrUnsupported = errors.New("wav: unsupported format")

const headerSize = 44

// Encode writes data as a complete WAV file: a canonical 44-byte header
// followed by the PCM frames.
func Encode(w io.Writer, f pcm.Format, data []byte) error {
	var hdr [headerSize]byte

	byteRate := f.BytesRate()
	blockAlign := f.Channels() * f.Depth() / 8

	copy(hdr[0:4], "RIFF")
	binary.LittleEndian.PutUint32(hdr[4:8], uint32(36+len(data)))
	copy(hdr[8:12], "WAVE")

	copy(hdr[12:16], "fmt ")
	binary.LittleEndian.PutUint32(hdr[16:20], 16) // PCM fmt chunk size
	binary.LittleEndian.PutUint16(hdr[20:22], 1)  // audio format: PCM
	binary.LittleEndian.PutUint16(hdr[22:24], uint16(f.Channels()))
	binary.LittleEndian.PutUint32(hdr[24:28], uint32(f.SampleRate()))
	binary.LittleEndian.PutUint32(hdr[28:32], uint32(byteRate))
	binary.LittleEndian.PutUint16(hdr[32:34], uint16(blockAlign))
	binary.LittleEndian.PutUint16(hdr[34:36], uint16(f.Depth()))

	copy(hdr[36:40], "data")
	binary.LittleEndian.PutUint32(hdr[40:44], uint32(len(data)))

	if _, err := w.Write(hdr[:]); err != nil {
		return err
	}
	_, err := w.Write(data)
	return err
}

// Decode reads a WAV file and returns its PCM format and raw frames.
// Chunks other than "fmt " and "data" are skipped.
func Decode(r io.Reader) (pcm.Format, []byte, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return 0, nil, err
	}
	if len(raw) < 12 || string(raw[0:4]) != "RIFF" || string(raw[8:12]) != "WAVE" {
		return 0, nil, fmt.Errorf("%w: missing RIFF header", ErrUnsupported)
	}

	var (
		haveFmt     bool
		audioFormat uint16
		channels    uint16
		sampleRate  uint32
		depth       uint16
		frames      []byte
	)
	for off := 12; off+8 <= len(raw); {
		id := string(raw[off : off+4])
		size := int(binary.LittleEndian.Uint32(raw[off+4 : off+8]))
		off += 8
		if size < 0 || off+size > len(raw) {
			return 0, nil, fmt.Errorf("%w: truncated chunk %q", ErrUnsupported, id)
		}
		body := raw[off : off+size]
		switch id {
		case "fmt ":
			if size < 16 {
				return 0, nil, fmt.Errorf("%w: short fmt chunk", ErrUnsupported)
			}
			haveFmt = true
			audioFormat = binary.LittleEndian.Uint16(body[0:2])
			channels = binary.LittleEndian.Uint16(body[2:4])
			sampleRate = binary.LittleEndian.Uint32(body[4:8])
			depth = binary.LittleEndian.Uint16(body[14:16])
		case "data":
			frames = body
		}
		off += size
		if size%2 == 1 {
			off++ // chunks are word-aligned
		}
	}

	if !haveFmt || frames == nil {
		return 0, nil, fmt.Errorf("%w: missing fmt or data chunk", ErrUnsupported)
	}
	if audioFormat != 1 || channels != 1 || depth != 16 {
		return 0, nil, fmt.Errorf("%w: fmt=%d channels=%d depth=%d", ErrUnsupported, audioFormat, channels, depth)
	}
	f, ok := pcm.ByRate(int(sampleRate))
	if !ok {
		return 0, nil, fmt.Errorf("%w: sample rate %d", ErrUnsupported, sampleRate)
	}
	return f, frames, nil
}

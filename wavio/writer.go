// Package wavio bridges audioio callbacks to WAV files: a Writer sinks
// recorder output into a file, a Reader sources player input from one.
// Only 16-bit PCM files are handled, matching the stream sample format.
package wavio

import (
	"encoding/binary"
	"fmt"
	"os"
	"sync"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/xorangestudio/audioio"
)

// Writer encodes captured PCM into a WAV file. Its Callback can be
// registered on a Recorder directly.
type Writer struct {
	mu         sync.Mutex
	f          *os.File
	enc        *wav.Encoder
	sampleRate int
	channels   int
	closed     bool
}

// NewWriter creates path and prepares a 16-bit PCM WAV encoder for it.
func NewWriter(path string, sampleRate, channels int) (*Writer, error) {
	if sampleRate <= 0 {
		return nil, &audioio.Error{Kind: audioio.KindInvalidParameter, Message: "sample rate must be positive"}
	}
	if channels <= 0 {
		return nil, &audioio.Error{Kind: audioio.KindInvalidParameter, Message: "channel count must be positive"}
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, &audioio.Error{Kind: audioio.KindSystemCallFailed, Message: "create wav file", Err: err}
	}
	return &Writer{
		f:          f,
		enc:        wav.NewEncoder(f, sampleRate, 16, channels, 1),
		sampleRate: sampleRate,
		channels:   channels,
	}, nil
}

// Callback returns a recorder audio callback that appends every captured
// buffer to the file.
func (w *Writer) Callback() audioio.RecordCallback {
	return func(buf []byte) error {
		return w.Write(buf)
	}
}

// Write appends pcm, which must hold whole 16-bit little-endian samples,
// to the file.
func (w *Writer) Write(pcm []byte) error {
	if len(pcm)%2 != 0 {
		return &audioio.Error{
			Kind:    audioio.KindInvalidParameter,
			Message: fmt.Sprintf("pcm length %d is not a whole number of 16-bit samples", len(pcm)),
		}
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return &audioio.Error{Kind: audioio.KindInvalidOperation, Message: "wav writer is closed"}
	}

	data := make([]int, len(pcm)/2)
	for i := range data {
		data[i] = int(int16(binary.LittleEndian.Uint16(pcm[i*2:])))
	}
	ib := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: w.channels, SampleRate: w.sampleRate},
		Data:           data,
		SourceBitDepth: 16,
	}
	if err := w.enc.Write(ib); err != nil {
		return &audioio.Error{Kind: audioio.KindSystemCallFailed, Message: "encode wav data", Err: err}
	}
	return nil
}

// Close finalizes the WAV header and closes the file. Closing twice is an
// error.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return &audioio.Error{Kind: audioio.KindInvalidOperation, Message: "wav writer is already closed"}
	}
	w.closed = true

	if err := w.enc.Close(); err != nil {
		w.f.Close()
		return &audioio.Error{Kind: audioio.KindSystemCallFailed, Message: "finalize wav file", Err: err}
	}
	if err := w.f.Close(); err != nil {
		return &audioio.Error{Kind: audioio.KindSystemCallFailed, Message: "close wav file", Err: err}
	}
	return nil
}

package wavio

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/xorangestudio/audioio"
)

func pcm16(samples ...int16) []byte {
	out := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(out[i*2:], uint16(s))
	}
	return out
}

func TestWriteReadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "capture.wav")

	w, err := NewWriter(path, 16000, 1)
	if err != nil {
		t.Fatalf("new writer: %v", err)
	}

	first := pcm16(0, 100, -100, 32767, -32768)
	second := pcm16(7, -7)
	cb := w.Callback()
	if err := cb(first); err != nil {
		t.Fatalf("write first buffer: %v", err)
	}
	if err := cb(second); err != nil {
		t.Fatalf("write second buffer: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}

	r, err := NewReader(path)
	if err != nil {
		t.Fatalf("new reader: %v", err)
	}
	if r.SampleRate() != 16000 || r.Channels() != 1 {
		t.Fatalf("unexpected format: %d Hz %d channels", r.SampleRate(), r.Channels())
	}
	if r.Drained() {
		t.Fatal("reader drained before playback")
	}

	want := append(append([]byte(nil), first...), second...)
	got := make([]byte, len(want))
	if err := r.Callback()(got); err != nil {
		t.Fatalf("play callback: %v", err)
	}
	if !bytes.Equal(got, want) {
		t.Fatal("decoded pcm differs from captured pcm")
	}
	if !r.Drained() {
		t.Fatalf("reader not drained after playback")
	}
}

func TestReaderZeroFillsAfterDrain(t *testing.T) {
	path := filepath.Join(t.TempDir(), "short.wav")

	w, err := NewWriter(path, 8000, 1)
	if err != nil {
		t.Fatalf("new writer: %v", err)
	}
	if err := w.Write(pcm16(5, 5)); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	r, err := NewReader(path)
	if err != nil {
		t.Fatalf("new reader: %v", err)
	}

	buf := bytes.Repeat([]byte{0xff}, 8)
	if err := r.Callback()(buf); err != nil {
		t.Fatalf("play callback: %v", err)
	}
	if !bytes.Equal(buf[4:], []byte{0, 0, 0, 0}) {
		t.Fatalf("tail not zero-filled: %v", buf)
	}
}

func TestWriterArgumentValidation(t *testing.T) {
	dir := t.TempDir()
	if _, err := NewWriter(filepath.Join(dir, "x.wav"), 0, 1); !audioio.IsKind(err, audioio.KindInvalidParameter) {
		t.Fatalf("zero sample rate: got %v", err)
	}
	if _, err := NewWriter(filepath.Join(dir, "x.wav"), 16000, 0); !audioio.IsKind(err, audioio.KindInvalidParameter) {
		t.Fatalf("zero channels: got %v", err)
	}
	if _, err := NewWriter(filepath.Join(dir, "missing", "x.wav"), 16000, 1); !audioio.IsKind(err, audioio.KindSystemCallFailed) {
		t.Fatalf("unwritable path: got %v", err)
	}
}

func TestWriterRejectsOddBuffer(t *testing.T) {
	w, err := NewWriter(filepath.Join(t.TempDir(), "x.wav"), 16000, 1)
	if err != nil {
		t.Fatalf("new writer: %v", err)
	}
	defer w.Close()

	if err := w.Write([]byte{1, 2, 3}); !audioio.IsKind(err, audioio.KindInvalidParameter) {
		t.Fatalf("odd-length buffer: got %v", err)
	}
}

func TestWriterClosedState(t *testing.T) {
	w, err := NewWriter(filepath.Join(t.TempDir(), "x.wav"), 16000, 1)
	if err != nil {
		t.Fatalf("new writer: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := w.Write(pcm16(1)); !audioio.IsKind(err, audioio.KindInvalidOperation) {
		t.Fatalf("write after close: got %v", err)
	}
	if err := w.Close(); !audioio.IsKind(err, audioio.KindInvalidOperation) {
		t.Fatalf("double close: got %v", err)
	}
}

func TestReaderRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "not.wav")
	if err := os.WriteFile(path, []byte("definitely not a wav file"), 0644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	if _, err := NewReader(path); !audioio.IsKind(err, audioio.KindUnsupportedFormat) {
		t.Fatalf("garbage file: got %v", err)
	}
	if _, err := NewReader(filepath.Join(t.TempDir(), "missing.wav")); !audioio.IsKind(err, audioio.KindSystemCallFailed) {
		t.Fatalf("missing file: got %v", err)
	}
}

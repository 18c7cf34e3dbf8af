package wavio

import (
	"encoding/binary"
	"os"

	"github.com/go-audio/wav"

	"github.com/xorangestudio/audioio"
	"github.com/xorangestudio/audioio/pcmqueue"
)

// Reader decodes a 16-bit PCM WAV file and plays it back through a
// player callback, zero-filling once the data runs out.
type Reader struct {
	q          *pcmqueue.Queue
	sampleRate int
	channels   int
}

// NewReader decodes the whole file at path into memory.
func NewReader(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &audioio.Error{Kind: audioio.KindSystemCallFailed, Message: "open wav file", Err: err}
	}
	defer f.Close()

	d := wav.NewDecoder(f)
	if !d.IsValidFile() {
		return nil, &audioio.Error{Kind: audioio.KindUnsupportedFormat, Message: "not a valid wav file", Err: d.Err()}
	}
	buf, err := d.FullPCMBuffer()
	if err != nil {
		return nil, &audioio.Error{Kind: audioio.KindSystemCallFailed, Message: "decode wav data", Err: err}
	}
	if d.BitDepth != 16 {
		return nil, &audioio.Error{
			Kind:    audioio.KindUnsupportedFormat,
			Message: "only 16-bit pcm wav files are supported",
		}
	}

	pcm := make([]byte, len(buf.Data)*2)
	for i, s := range buf.Data {
		binary.LittleEndian.PutUint16(pcm[i*2:], uint16(int16(s)))
	}
	q := pcmqueue.New()
	q.Push(pcm)

	return &Reader{
		q:          q,
		sampleRate: int(d.SampleRate),
		channels:   int(d.NumChans),
	}, nil
}

// SampleRate returns the file's sample rate in frames per second.
func (r *Reader) SampleRate() int { return r.sampleRate }

// Channels returns the file's interleaved channel count.
func (r *Reader) Channels() int { return r.channels }

// Drained reports whether all decoded audio has been consumed.
func (r *Reader) Drained() bool { return r.q.Len() == 0 }

// Callback returns a player audio callback that plays the file once.
// After the data is exhausted it keeps filling silence; poll Drained to
// know when to stop the player.
func (r *Reader) Callback() audioio.PlayCallback {
	return func(buf []byte) error {
		n := r.q.PopInto(buf)
		for i := n; i < len(buf); i++ {
			buf[i] = 0
		}
		return nil
	}
}

package audioio

import (
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/gordonklaus/portaudio"
)

// RecordCallback receives captured 16-bit little-endian interleaved PCM.
// The buffer is only valid for the duration of the call; callbacks that
// retain audio must copy it. It is invoked on the backend's audio thread
// and must not block.
type RecordCallback func(buf []byte) error

// Recorder delivers PCM captured from one input device to a user
// callback.
type Recorder struct {
	opts    RecorderOptions
	backend *backendHandle
	stream  hostStream

	audioMu sync.Mutex
	audioCb RecordCallback

	errMu sync.Mutex
	errCb ErrorCallback

	stateMu sync.Mutex
	running bool
	closed  bool
}

// NewRecorder opens an input stream on the device named by opts. The
// requested format is validated against the backend before the stream is
// opened; on any failure no stream or backend reference is left behind.
func NewRecorder(opts RecorderOptions) (*Recorder, error) {
	return newRecorder(defaultHost, opts)
}

func newRecorder(h host, opts RecorderOptions) (*Recorder, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}

	backend, err := acquireBackend(h)
	if err != nil {
		return nil, err
	}

	dev, err := resolveInputDevice(h, opts.Device)
	if err != nil {
		backend.release()
		return nil, err
	}

	latency := opts.SuggestedLatency
	if latency == 0 {
		latency = dev.DefaultLowInputLatency
	}
	params := portaudio.StreamParameters{
		Input: portaudio.StreamDeviceParameters{
			Device:   dev,
			Channels: opts.ChannelCount,
			Latency:  latency,
		},
		SampleRate:      float64(opts.SampleRate),
		FramesPerBuffer: opts.FramesPerBuffer,
	}

	r := &Recorder{opts: opts, backend: backend}

	if err := h.isFormatSupported(params, r.capture); err != nil {
		backend.release()
		return nil, wrapError(KindUnsupportedFormat,
			fmt.Sprintf("%d Hz %d-channel capture not supported on %q", opts.SampleRate, opts.ChannelCount, dev.Name),
			err)
	}

	stream, err := h.openStream(params, r.capture)
	if err != nil {
		backend.release()
		return nil, backendError("open input stream", err)
	}
	r.stream = stream

	pkgLog().Debug().
		Str("device", dev.Name).
		Int("channels", opts.ChannelCount).
		Int("sample_rate", opts.SampleRate).
		Int("frames_per_buffer", opts.FramesPerBuffer).
		Msg("recorder stream opened")
	return r, nil
}

// SetAudioCallback replaces the callback that consumes captured PCM.
func (r *Recorder) SetAudioCallback(cb RecordCallback) {
	r.audioMu.Lock()
	r.audioCb = cb
	r.audioMu.Unlock()
}

// SetErrorCallback replaces the callback that receives audio-thread
// errors.
func (r *Recorder) SetErrorCallback(cb ErrorCallback) {
	r.errMu.Lock()
	r.errCb = cb
	r.errMu.Unlock()
}

// Start asks the backend to begin delivering captured audio.
func (r *Recorder) Start() error {
	if r == nil {
		return newError(KindInvalidParameter, "recorder is nil")
	}

	r.stateMu.Lock()
	defer r.stateMu.Unlock()

	if r.closed {
		return newError(KindInvalidOperation, "recorder is closed")
	}
	if r.running {
		return newError(KindInvalidOperation, "recorder is already running")
	}
	if err := r.stream.Start(); err != nil {
		return backendError("start input stream", err)
	}
	r.running = true
	pkgLog().Debug().Msg("recorder started")
	return nil
}

// Stop halts capture. When forcibly is true the stream is aborted and
// buffered input is discarded; otherwise the backend drains it first.
// Must not be called from inside an audio callback.
func (r *Recorder) Stop(forcibly bool) error {
	if r == nil {
		return newError(KindInvalidParameter, "recorder is nil")
	}

	r.stateMu.Lock()
	defer r.stateMu.Unlock()

	if r.closed {
		return newError(KindInvalidOperation, "recorder is closed")
	}
	if !r.running {
		return newError(KindInvalidOperation, "recorder is not running")
	}
	var err error
	if forcibly {
		err = r.stream.Abort()
	} else {
		err = r.stream.Stop()
	}
	if err != nil {
		return backendError("stop input stream", err)
	}
	r.running = false
	pkgLog().Debug().Bool("forcibly", forcibly).Msg("recorder stopped")
	return nil
}

// Close force-stops the stream if it is still running, closes it, and
// drops the backend reference. Closing twice is an error; stop failures
// during teardown are suppressed.
func (r *Recorder) Close() error {
	if r == nil {
		return newError(KindInvalidParameter, "recorder is nil")
	}

	r.stateMu.Lock()
	defer r.stateMu.Unlock()

	if r.closed {
		return newError(KindInvalidOperation, "recorder is already closed")
	}
	if r.running {
		if err := r.stream.Abort(); err != nil {
			pkgLog().Error().Err(err).Msg("recorder abort on close failed")
		}
		r.running = false
	}
	if err := r.stream.Close(); err != nil {
		pkgLog().Error().Err(err).Msg("recorder stream close failed")
	}
	r.backend.release()
	r.closed = true
	pkgLog().Debug().Msg("recorder closed")
	return nil
}

// capture runs on the backend's audio thread once per buffer period.
func (r *Recorder) capture(in []int16) {
	defer func() {
		if v := recover(); v != nil {
			r.emitError(newError(KindUnexpectedError, fmt.Sprintf("capture path panicked: %v", v)))
		}
	}()

	buf := make([]byte, len(in)*bytesPerSample)
	for i, s := range in {
		binary.LittleEndian.PutUint16(buf[i*bytesPerSample:], uint16(s))
	}
	if err := r.emitAudio(buf); err != nil {
		r.emitError(err)
	}
}

func (r *Recorder) emitAudio(buf []byte) (failure *Error) {
	defer func() {
		if v := recover(); v != nil {
			failure = newError(KindCallbackFailed, fmt.Sprintf("audio callback panicked: %v", v))
		}
	}()

	r.audioMu.Lock()
	defer r.audioMu.Unlock()

	if r.audioCb == nil {
		return nil
	}
	if err := r.audioCb(buf); err != nil {
		return wrapError(KindCallbackFailed, "audio callback failed", err)
	}
	return nil
}

// emitError must never panic; it runs on the backend's audio thread.
func (r *Recorder) emitError(failure *Error) {
	defer func() {
		if v := recover(); v != nil {
			pkgLog().Error().Interface("panic", v).Msg("recorder error callback panicked")
		}
	}()

	pkgLog().Error().Err(failure).Msg("recorder audio callback error")

	r.errMu.Lock()
	defer r.errMu.Unlock()

	if r.errCb != nil {
		r.errCb(failure)
	}
}

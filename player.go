package audioio

import (
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/gordonklaus/portaudio"
)

// PlayCallback fills buf with 16-bit little-endian interleaved PCM. The
// buffer holds exactly framesPerBuffer * channels samples and is zeroed
// on entry; whatever the callback leaves in it is played verbatim. It is
// invoked on the backend's audio thread and must not block.
type PlayCallback func(buf []byte) error

// ErrorCallback receives errors raised on the backend's audio thread,
// where they cannot be returned to the caller.
type ErrorCallback func(err error)

// Player writes PCM pulled from a user callback to one output device.
type Player struct {
	opts    PlayerOptions
	backend *backendHandle
	stream  hostStream

	audioMu sync.Mutex
	audioCb PlayCallback

	errMu sync.Mutex
	errCb ErrorCallback

	stateMu sync.Mutex
	running bool
	closed  bool
}

// NewPlayer opens an output stream on the device named by opts. The
// requested format is validated against the backend before the stream is
// opened; on any failure no stream or backend reference is left behind.
func NewPlayer(opts PlayerOptions) (*Player, error) {
	return newPlayer(defaultHost, opts)
}

func newPlayer(h host, opts PlayerOptions) (*Player, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}

	backend, err := acquireBackend(h)
	if err != nil {
		return nil, err
	}

	dev, err := resolveOutputDevice(h, opts.Device)
	if err != nil {
		backend.release()
		return nil, err
	}

	latency := opts.SuggestedLatency
	if latency == 0 {
		latency = dev.DefaultLowOutputLatency
	}
	params := portaudio.StreamParameters{
		Output: portaudio.StreamDeviceParameters{
			Device:   dev,
			Channels: opts.ChannelCount,
			Latency:  latency,
		},
		SampleRate:      float64(opts.SampleRate),
		FramesPerBuffer: opts.FramesPerBuffer,
	}

	p := &Player{opts: opts, backend: backend}

	if err := h.isFormatSupported(params, p.fill); err != nil {
		backend.release()
		return nil, wrapError(KindUnsupportedFormat,
			fmt.Sprintf("%d Hz %d-channel playback not supported on %q", opts.SampleRate, opts.ChannelCount, dev.Name),
			err)
	}

	stream, err := h.openStream(params, p.fill)
	if err != nil {
		backend.release()
		return nil, backendError("open output stream", err)
	}
	p.stream = stream

	pkgLog().Debug().
		Str("device", dev.Name).
		Int("channels", opts.ChannelCount).
		Int("sample_rate", opts.SampleRate).
		Int("frames_per_buffer", opts.FramesPerBuffer).
		Msg("player stream opened")
	return p, nil
}

// SetAudioCallback replaces the callback that produces PCM for the
// stream. It may be called at any time, including while running.
func (p *Player) SetAudioCallback(cb PlayCallback) {
	p.audioMu.Lock()
	p.audioCb = cb
	p.audioMu.Unlock()
}

// SetErrorCallback replaces the callback that receives audio-thread
// errors.
func (p *Player) SetErrorCallback(cb ErrorCallback) {
	p.errMu.Lock()
	p.errCb = cb
	p.errMu.Unlock()
}

// Start asks the backend to begin pulling audio through the callback.
func (p *Player) Start() error {
	if p == nil {
		return newError(KindInvalidParameter, "player is nil")
	}

	p.stateMu.Lock()
	defer p.stateMu.Unlock()

	if p.closed {
		return newError(KindInvalidOperation, "player is closed")
	}
	if p.running {
		return newError(KindInvalidOperation, "player is already running")
	}
	if err := p.stream.Start(); err != nil {
		return backendError("start output stream", err)
	}
	p.running = true
	pkgLog().Debug().Msg("player started")
	return nil
}

// Stop halts playback. When forcibly is true the stream is aborted and
// audio already handed to the backend is discarded; otherwise the backend
// drains it first. Must not be called from inside an audio callback.
func (p *Player) Stop(forcibly bool) error {
	if p == nil {
		return newError(KindInvalidParameter, "player is nil")
	}

	p.stateMu.Lock()
	defer p.stateMu.Unlock()

	if p.closed {
		return newError(KindInvalidOperation, "player is closed")
	}
	if !p.running {
		return newError(KindInvalidOperation, "player is not running")
	}
	var err error
	if forcibly {
		err = p.stream.Abort()
	} else {
		err = p.stream.Stop()
	}
	if err != nil {
		return backendError("stop output stream", err)
	}
	p.running = false
	pkgLog().Debug().Bool("forcibly", forcibly).Msg("player stopped")
	return nil
}

// Close force-stops the stream if it is still running, closes it, and
// drops the backend reference. Closing twice is an error; stop failures
// during teardown are suppressed.
func (p *Player) Close() error {
	if p == nil {
		return newError(KindInvalidParameter, "player is nil")
	}

	p.stateMu.Lock()
	defer p.stateMu.Unlock()

	if p.closed {
		return newError(KindInvalidOperation, "player is already closed")
	}
	if p.running {
		if err := p.stream.Abort(); err != nil {
			pkgLog().Error().Err(err).Msg("player abort on close failed")
		}
		p.running = false
	}
	if err := p.stream.Close(); err != nil {
		pkgLog().Error().Err(err).Msg("player stream close failed")
	}
	p.backend.release()
	p.closed = true
	pkgLog().Debug().Msg("player closed")
	return nil
}

// fill runs on the backend's audio thread once per buffer period.
func (p *Player) fill(out []int16) {
	buf := make([]byte, len(out)*bytesPerSample)
	if err := p.emitAudio(buf); err != nil {
		for i := range out {
			out[i] = 0
		}
		p.emitError(err)
		return
	}
	for i := range out {
		out[i] = int16(binary.LittleEndian.Uint16(buf[i*bytesPerSample:]))
	}
}

func (p *Player) emitAudio(buf []byte) (failure *Error) {
	defer func() {
		if v := recover(); v != nil {
			failure = newError(KindCallbackFailed, fmt.Sprintf("audio callback panicked: %v", v))
		}
	}()

	p.audioMu.Lock()
	defer p.audioMu.Unlock()

	if p.audioCb == nil {
		return nil
	}
	if err := p.audioCb(buf); err != nil {
		return wrapError(KindCallbackFailed, "audio callback failed", err)
	}
	return nil
}

// emitError must never panic; it runs on the backend's audio thread.
func (p *Player) emitError(failure *Error) {
	defer func() {
		if v := recover(); v != nil {
			pkgLog().Error().Interface("panic", v).Msg("player error callback panicked")
		}
	}()

	pkgLog().Error().Err(failure).Msg("player audio callback error")

	p.errMu.Lock()
	defer p.errMu.Unlock()

	if p.errCb != nil {
		p.errCb(failure)
	}
}

package audioio

import (
	"sync"

	"github.com/gordonklaus/portaudio"
)

// host abstracts the PortAudio entry points this package uses, so that
// lifecycle and enumeration logic can be exercised without audio hardware.
type host interface {
	initialize() error
	terminate() error
	devices() ([]*portaudio.DeviceInfo, error)
	defaultInputDevice() (*portaudio.DeviceInfo, error)
	defaultOutputDevice() (*portaudio.DeviceInfo, error)
	isFormatSupported(p portaudio.StreamParameters, args ...interface{}) error
	openStream(p portaudio.StreamParameters, args ...interface{}) (hostStream, error)
}

// hostStream is one open PortAudio stream.
type hostStream interface {
	Start() error
	Stop() error
	Abort() error
	Close() error
}

type paHost struct{}

func (paHost) initialize() error { return portaudio.Initialize() }
func (paHost) terminate() error  { return portaudio.Terminate() }

func (paHost) devices() ([]*portaudio.DeviceInfo, error) {
	return portaudio.Devices()
}

func (paHost) defaultInputDevice() (*portaudio.DeviceInfo, error) {
	return portaudio.DefaultInputDevice()
}

func (paHost) defaultOutputDevice() (*portaudio.DeviceInfo, error) {
	return portaudio.DefaultOutputDevice()
}

func (paHost) isFormatSupported(p portaudio.StreamParameters, args ...interface{}) error {
	return portaudio.IsFormatSupported(p, args...)
}

func (paHost) openStream(p portaudio.StreamParameters, args ...interface{}) (hostStream, error) {
	return portaudio.OpenStream(p, args...)
}

var defaultHost host = paHost{}

var (
	backendMu   sync.Mutex
	backendRefs int
)

// backendHandle is a reference on the process-wide backend lifetime. The
// backend is initialized when the first handle is acquired and terminated
// when the last one is released.
type backendHandle struct {
	h        host
	released bool
}

func acquireBackend(h host) (*backendHandle, error) {
	backendMu.Lock()
	defer backendMu.Unlock()

	if backendRefs == 0 {
		if err := h.initialize(); err != nil {
			return nil, backendError("initialize audio backend", err)
		}
		pkgLog().Debug().Msg("audio backend initialized")
	}
	backendRefs++
	return &backendHandle{h: h}, nil
}

// release is idempotent. Termination failures are logged, not reported;
// release runs on teardown paths that cannot surface errors.
func (b *backendHandle) release() {
	backendMu.Lock()
	defer backendMu.Unlock()

	if b.released {
		return
	}
	b.released = true
	backendRefs--
	if backendRefs == 0 {
		if err := b.h.terminate(); err != nil {
			pkgLog().Error().Err(err).Msg("audio backend termination failed")
		} else {
			pkgLog().Debug().Msg("audio backend terminated")
		}
	}
}

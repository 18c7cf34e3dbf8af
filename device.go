package audioio

import (
	"fmt"
	"sync"
	"time"

	"github.com/gordonklaus/portaudio"
)

// InputDevice describes one input-capable audio device at the time it was
// enumerated. IDs are backend enumeration indices and may change when
// devices are plugged or unplugged; records hold no persistent identity.
type InputDevice struct {
	ID                 int
	Name               string
	DefaultLowLatency  time.Duration
	DefaultHighLatency time.Duration
	IsDefault          bool

	info *portaudio.DeviceInfo
}

// OutputDevice describes one output-capable audio device at the time it
// was enumerated.
type OutputDevice struct {
	ID                 int
	Name               string
	DefaultLowLatency  time.Duration
	DefaultHighLatency time.Duration
	IsDefault          bool

	info *portaudio.DeviceInfo
}

// DeviceManager enumerates audio devices. There is at most one per
// process; obtain it with SharedDeviceManager and release it with Close.
type DeviceManager struct {
	backend *backendHandle
	h       host

	inputMu  sync.Mutex
	outputMu sync.Mutex
}

var (
	managerMu   sync.Mutex
	manager     *DeviceManager
	managerRefs int
)

// SharedDeviceManager returns the process-wide device manager, creating
// it (and initializing the backend) if no live reference exists. Every
// successful call must be paired with a Close.
func SharedDeviceManager() (*DeviceManager, error) {
	return sharedDeviceManager(defaultHost)
}

func sharedDeviceManager(h host) (*DeviceManager, error) {
	managerMu.Lock()
	defer managerMu.Unlock()

	if manager != nil {
		managerRefs++
		return manager, nil
	}

	backend, err := acquireBackend(h)
	if err != nil {
		return nil, err
	}
	manager = &DeviceManager{backend: backend, h: h}
	managerRefs = 1
	pkgLog().Debug().Msg("device manager created")
	return manager, nil
}

// Close drops one reference on the shared manager. The backend is torn
// down when the last reference is dropped; closing more times than the
// manager was obtained is an error.
func (m *DeviceManager) Close() error {
	if m == nil {
		return newError(KindInvalidParameter, "device manager is nil")
	}

	managerMu.Lock()
	defer managerMu.Unlock()

	if manager != m || managerRefs == 0 {
		return newError(KindInvalidOperation, "device manager is already closed")
	}
	managerRefs--
	if managerRefs == 0 {
		m.backend.release()
		manager = nil
		pkgLog().Debug().Msg("device manager released")
	}
	return nil
}

// InputDevices enumerates every device that exposes input channels, in
// backend order, marking the backend's current default. The backend is
// re-queried on every call.
func (m *DeviceManager) InputDevices() ([]InputDevice, error) {
	m.inputMu.Lock()
	defer m.inputMu.Unlock()

	devs, err := m.h.devices()
	if err != nil {
		return nil, backendError("enumerate devices", err)
	}
	def, err := m.h.defaultInputDevice()
	if err != nil {
		def = nil
	}

	var out []InputDevice
	for i, d := range devs {
		if d == nil || d.MaxInputChannels == 0 {
			continue
		}
		out = append(out, InputDevice{
			ID:                 i,
			Name:               d.Name,
			DefaultLowLatency:  d.DefaultLowInputLatency,
			DefaultHighLatency: d.DefaultHighInputLatency,
			IsDefault:          def != nil && d == def,
			info:               d,
		})
	}
	pkgLog().Debug().Int("count", len(out)).Msg("enumerated input devices")
	return out, nil
}

// OutputDevices enumerates every device that exposes output channels, in
// backend order, marking the backend's current default.
func (m *DeviceManager) OutputDevices() ([]OutputDevice, error) {
	m.outputMu.Lock()
	defer m.outputMu.Unlock()

	devs, err := m.h.devices()
	if err != nil {
		return nil, backendError("enumerate devices", err)
	}
	def, err := m.h.defaultOutputDevice()
	if err != nil {
		def = nil
	}

	var out []OutputDevice
	for i, d := range devs {
		if d == nil || d.MaxOutputChannels == 0 {
			continue
		}
		out = append(out, OutputDevice{
			ID:                 i,
			Name:               d.Name,
			DefaultLowLatency:  d.DefaultLowOutputLatency,
			DefaultHighLatency: d.DefaultHighOutputLatency,
			IsDefault:          def != nil && d == def,
			info:               d,
		})
	}
	pkgLog().Debug().Int("count", len(out)).Msg("enumerated output devices")
	return out, nil
}

// DefaultInputDevice returns the backend's current default input device.
func (m *DeviceManager) DefaultInputDevice() (InputDevice, error) {
	m.inputMu.Lock()
	defer m.inputMu.Unlock()

	def, err := m.h.defaultInputDevice()
	if err != nil || def == nil {
		return InputDevice{}, wrapError(KindNoDeviceAvailable, "no default input device", err)
	}
	return InputDevice{
		ID:                 m.deviceIndex(def),
		Name:               def.Name,
		DefaultLowLatency:  def.DefaultLowInputLatency,
		DefaultHighLatency: def.DefaultHighInputLatency,
		IsDefault:          true,
		info:               def,
	}, nil
}

// DefaultOutputDevice returns the backend's current default output device.
func (m *DeviceManager) DefaultOutputDevice() (OutputDevice, error) {
	m.outputMu.Lock()
	defer m.outputMu.Unlock()

	def, err := m.h.defaultOutputDevice()
	if err != nil || def == nil {
		return OutputDevice{}, wrapError(KindNoDeviceAvailable, "no default output device", err)
	}
	return OutputDevice{
		ID:                 m.deviceIndex(def),
		Name:               def.Name,
		DefaultLowLatency:  def.DefaultLowOutputLatency,
		DefaultHighLatency: def.DefaultHighOutputLatency,
		IsDefault:          true,
		info:               def,
	}, nil
}

func (m *DeviceManager) deviceIndex(target *portaudio.DeviceInfo) int {
	devs, err := m.h.devices()
	if err != nil {
		return 0
	}
	for i, d := range devs {
		if d == target {
			return i
		}
	}
	return 0
}

// resolveInputDevice turns a device record into the binding's device
// handle, re-resolving by ID when the record was built by hand.
func resolveInputDevice(h host, dev InputDevice) (*portaudio.DeviceInfo, error) {
	if dev.info != nil {
		return dev.info, nil
	}
	devs, err := h.devices()
	if err != nil {
		return nil, backendError("enumerate devices", err)
	}
	if dev.ID < 0 || dev.ID >= len(devs) {
		return nil, newError(KindInvalidParameter, fmt.Sprintf("unknown input device id %d", dev.ID))
	}
	d := devs[dev.ID]
	if d == nil || d.MaxInputChannels == 0 {
		return nil, newError(KindUnsupportedFormat, fmt.Sprintf("device %d has no input channels", dev.ID))
	}
	return d, nil
}

func resolveOutputDevice(h host, dev OutputDevice) (*portaudio.DeviceInfo, error) {
	if dev.info != nil {
		return dev.info, nil
	}
	devs, err := h.devices()
	if err != nil {
		return nil, backendError("enumerate devices", err)
	}
	if dev.ID < 0 || dev.ID >= len(devs) {
		return nil, newError(KindInvalidParameter, fmt.Sprintf("unknown output device id %d", dev.ID))
	}
	d := devs[dev.ID]
	if d == nil || d.MaxOutputChannels == 0 {
		return nil, newError(KindUnsupportedFormat, fmt.Sprintf("device %d has no output channels", dev.ID))
	}
	return d, nil
}

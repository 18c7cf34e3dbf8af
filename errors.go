package audioio

import (
	"errors"

	"github.com/gordonklaus/portaudio"
)

// Kind classifies an Error.
type Kind uint8

const (
	// KindInvalidParameter means a required argument was nil or invalid.
	KindInvalidParameter Kind = iota + 1
	// KindBackendCallFailed means PortAudio reported an error.
	KindBackendCallFailed
	// KindAllocationFailed means the backend could not allocate memory.
	KindAllocationFailed
	// KindSystemCallFailed means an OS-level call failed.
	KindSystemCallFailed
	// KindNoDeviceAvailable means no suitable device exists.
	KindNoDeviceAvailable
	// KindUnsupportedFormat means the device/channel/rate combination is
	// not supported by the backend.
	KindUnsupportedFormat
	// KindInvalidOperation means a lifecycle method was called in the
	// wrong state.
	KindInvalidOperation
	// KindCallbackFailed means a user-supplied callback returned an error
	// or panicked.
	KindCallbackFailed
	// KindUnexpectedError covers failures that fit no other kind.
	KindUnexpectedError
)

func (k Kind) String() string {
	switch k {
	case KindInvalidParameter:
		return "invalid parameter"
	case KindBackendCallFailed:
		return "backend call failed"
	case KindAllocationFailed:
		return "allocation failed"
	case KindSystemCallFailed:
		return "system call failed"
	case KindNoDeviceAvailable:
		return "no device available"
	case KindUnsupportedFormat:
		return "unsupported format"
	case KindInvalidOperation:
		return "invalid operation"
	case KindCallbackFailed:
		return "callback failed"
	case KindUnexpectedError:
		return "unexpected error"
	default:
		return "unknown"
	}
}

// Error is the failure value reported by every operation in this package.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// IsKind reports whether err is (or wraps) an *Error of kind k.
func IsKind(err error, k Kind) bool {
	var ae *Error
	return errors.As(err, &ae) && ae.Kind == k
}

func newError(k Kind, msg string) *Error {
	return &Error{Kind: k, Message: msg}
}

func wrapError(k Kind, msg string, err error) *Error {
	return &Error{Kind: k, Message: msg, Err: err}
}

// backendError wraps an error returned by the PortAudio binding, mapping
// well-known PortAudio error codes onto kinds.
func backendError(msg string, err error) *Error {
	kind := KindBackendCallFailed
	var pa portaudio.Error
	if errors.As(err, &pa) {
		switch pa {
		case portaudio.InsufficientMemory:
			kind = KindAllocationFailed
		case portaudio.DeviceUnavailable:
			kind = KindNoDeviceAvailable
		case portaudio.InvalidDevice,
			portaudio.InvalidChannelCount,
			portaudio.InvalidSampleRate,
			portaudio.SampleFormatNotSupported,
			portaudio.BadIODeviceCombination:
			kind = KindUnsupportedFormat
		}
	}
	return &Error{Kind: kind, Message: msg, Err: err}
}

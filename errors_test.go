package audioio

import (
	"errors"
	"fmt"
	"testing"

	"github.com/gordonklaus/portaudio"
)

func TestErrorFormatting(t *testing.T) {
	e := newError(KindInvalidOperation, "player is not running")
	if e.Error() != "player is not running" {
		t.Fatalf("unexpected message: %q", e.Error())
	}

	cause := errors.New("device gone")
	w := wrapError(KindBackendCallFailed, "start output stream", cause)
	if w.Error() != "start output stream: device gone" {
		t.Fatalf("unexpected message: %q", w.Error())
	}
	if !errors.Is(w, cause) {
		t.Fatal("wrapped cause not reachable via errors.Is")
	}
}

func TestIsKindThroughWrapping(t *testing.T) {
	e := newError(KindNoDeviceAvailable, "no default input device")
	outer := fmt.Errorf("loading defaults: %w", e)

	if !IsKind(outer, KindNoDeviceAvailable) {
		t.Fatal("kind not found through wrapping")
	}
	if IsKind(outer, KindInvalidOperation) {
		t.Fatal("wrong kind matched")
	}
	if IsKind(errors.New("plain"), KindNoDeviceAvailable) {
		t.Fatal("plain error matched a kind")
	}
}

func TestKindStrings(t *testing.T) {
	kinds := map[Kind]string{
		KindInvalidParameter:  "invalid parameter",
		KindBackendCallFailed: "backend call failed",
		KindAllocationFailed:  "allocation failed",
		KindSystemCallFailed:  "system call failed",
		KindNoDeviceAvailable: "no device available",
		KindUnsupportedFormat: "unsupported format",
		KindInvalidOperation:  "invalid operation",
		KindCallbackFailed:    "callback failed",
		KindUnexpectedError:   "unexpected error",
	}
	for k, want := range kinds {
		if k.String() != want {
			t.Errorf("kind %d: got %q, expected %q", k, k.String(), want)
		}
	}
	if Kind(0).String() != "unknown" {
		t.Errorf("zero kind: got %q", Kind(0).String())
	}
}

func TestBackendErrorClassification(t *testing.T) {
	cases := []struct {
		err  error
		kind Kind
	}{
		{portaudio.InsufficientMemory, KindAllocationFailed},
		{portaudio.DeviceUnavailable, KindNoDeviceAvailable},
		{portaudio.InvalidSampleRate, KindUnsupportedFormat},
		{portaudio.InvalidChannelCount, KindUnsupportedFormat},
		{portaudio.SampleFormatNotSupported, KindUnsupportedFormat},
		{portaudio.InvalidDevice, KindUnsupportedFormat},
		{portaudio.NotInitialized, KindBackendCallFailed},
		{errors.New("unrecognized"), KindBackendCallFailed},
	}
	for _, c := range cases {
		got := backendError("op", c.err)
		if got.Kind != c.kind {
			t.Errorf("%v: got kind %v, expected %v", c.err, got.Kind, c.kind)
		}
		if !errors.Is(got, c.err) {
			t.Errorf("%v: cause not wrapped", c.err)
		}
	}
}

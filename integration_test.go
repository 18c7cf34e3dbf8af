package audioio

import (
	"os"
	"testing"
	"time"

	"github.com/xorangestudio/audioio/pcmqueue"
)

// These tests exercise real audio hardware through PortAudio and are
// skipped unless AUDIOIO_HW_TEST is set.

func requireHardware(t *testing.T) {
	t.Helper()
	if os.Getenv("AUDIOIO_HW_TEST") == "" {
		t.Skip("set AUDIOIO_HW_TEST=1 to run against real audio hardware")
	}
}

func TestHardwareDeviceEnumeration(t *testing.T) {
	requireHardware(t)
	resetShared(t)

	m, err := SharedDeviceManager()
	if err != nil {
		t.Fatalf("shared instance: %v", err)
	}
	defer m.Close()

	inputs, err := m.InputDevices()
	if err != nil {
		t.Fatalf("input devices: %v", err)
	}
	outputs, err := m.OutputDevices()
	if err != nil {
		t.Fatalf("output devices: %v", err)
	}
	if len(inputs) == 0 || len(outputs) == 0 {
		t.Fatalf("expected devices in both directions, got %d inputs and %d outputs", len(inputs), len(outputs))
	}

	defaults := 0
	for _, d := range inputs {
		if d.IsDefault {
			defaults++
		}
	}
	if defaults != 1 {
		t.Fatalf("expected exactly one default input device, got %d", defaults)
	}
}

func TestHardwareRecordThenPlay(t *testing.T) {
	requireHardware(t)
	resetShared(t)

	m, err := SharedDeviceManager()
	if err != nil {
		t.Fatalf("shared instance: %v", err)
	}
	defer m.Close()

	in, err := m.DefaultInputDevice()
	if err != nil {
		t.Fatalf("default input: %v", err)
	}
	out, err := m.DefaultOutputDevice()
	if err != nil {
		t.Fatalf("default output: %v", err)
	}

	q := pcmqueue.New()

	rec, err := NewRecorder(RecorderOptions{
		Device:           in,
		ChannelCount:     1,
		SampleRate:       16000,
		SuggestedLatency: in.DefaultLowLatency,
		FramesPerBuffer:  1024,
	})
	if err != nil {
		t.Fatalf("new recorder: %v", err)
	}
	defer rec.Close()

	rec.SetAudioCallback(func(buf []byte) error {
		if len(buf) != 2048 {
			t.Errorf("capture buffer was %d bytes, expected 2048", len(buf))
		}
		q.Push(buf)
		return nil
	})
	rec.SetErrorCallback(func(err error) {
		t.Errorf("recorder error: %v", err)
	})

	if err := rec.Start(); err != nil {
		t.Fatalf("start recorder: %v", err)
	}
	time.Sleep(3 * time.Second)
	if err := rec.Stop(false); err != nil {
		t.Fatalf("stop recorder: %v", err)
	}
	if q.Len() == 0 {
		t.Fatal("nothing was captured")
	}

	player, err := NewPlayer(PlayerOptions{
		Device:           out,
		ChannelCount:     1,
		SampleRate:       16000,
		SuggestedLatency: out.DefaultLowLatency,
		FramesPerBuffer:  1024,
	})
	if err != nil {
		t.Fatalf("new player: %v", err)
	}
	defer player.Close()

	player.SetAudioCallback(func(buf []byte) error {
		q.PopInto(buf)
		return nil
	})
	player.SetErrorCallback(func(err error) {
		t.Errorf("player error: %v", err)
	})

	if err := player.Start(); err != nil {
		t.Fatalf("start player: %v", err)
	}
	deadline := time.Now().Add(10 * time.Second)
	for q.Len() > 0 && time.Now().Before(deadline) {
		time.Sleep(256 * time.Millisecond)
	}
	if err := player.Stop(false); err != nil {
		t.Fatalf("stop player: %v", err)
	}
	if q.Len() != 0 {
		t.Fatalf("playback did not drain the queue, %d bytes left", q.Len())
	}
}

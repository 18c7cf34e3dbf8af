// Package config loads and saves stream settings as JSON and resolves
// them into audioio options against an enumerated device list.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/xorangestudio/audioio"
)

type Config struct {
	Input    StreamConfig `json:"input"`
	Output   StreamConfig `json:"output"`
	LogLevel string       `json:"log_level"`
}

// StreamConfig describes one direction of audio I/O. An empty Device
// selects the backend default; a zero LatencyMs uses the chosen device's
// default low latency.
type StreamConfig struct {
	Device          string `json:"device"`
	Channels        int    `json:"channels"`
	SampleRate      int    `json:"sample_rate"`
	FramesPerBuffer int    `json:"frames_per_buffer"`
	LatencyMs       int    `json:"latency_ms"`
}

// Default returns the built-in settings: mono 16 kHz capture, stereo
// 44.1 kHz playback, 1024-frame buffers.
func Default() *Config {
	return &Config{
		Input: StreamConfig{
			Channels:        1,
			SampleRate:      16000,
			FramesPerBuffer: 1024,
		},
		Output: StreamConfig{
			Channels:        2,
			SampleRate:      44100,
			FramesPerBuffer: 1024,
		},
		LogLevel: "info",
	}
}

// Load reads settings from path, falling back to defaults for a missing
// file and for any field the file omits.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the settings to path, creating parent directories as
// needed.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// RecorderOptions resolves s against devices, selecting by name or, when
// the name is empty, the default device.
func (s StreamConfig) RecorderOptions(devices []audioio.InputDevice) (audioio.RecorderOptions, error) {
	var dev audioio.InputDevice
	found := false
	for _, d := range devices {
		if matches(s.Device, d.Name, d.IsDefault) {
			dev = d
			found = true
			break
		}
	}
	if !found {
		return audioio.RecorderOptions{}, deviceErr("input", s.Device)
	}
	latency := dev.DefaultLowLatency
	if s.LatencyMs > 0 {
		latency = time.Duration(s.LatencyMs) * time.Millisecond
	}
	return audioio.RecorderOptions{
		Device:           dev,
		ChannelCount:     s.Channels,
		SampleRate:       s.SampleRate,
		SuggestedLatency: latency,
		FramesPerBuffer:  s.FramesPerBuffer,
	}, nil
}

// PlayerOptions resolves s against devices, selecting by name or, when
// the name is empty, the default device.
func (s StreamConfig) PlayerOptions(devices []audioio.OutputDevice) (audioio.PlayerOptions, error) {
	var dev audioio.OutputDevice
	found := false
	for _, d := range devices {
		if matches(s.Device, d.Name, d.IsDefault) {
			dev = d
			found = true
			break
		}
	}
	if !found {
		return audioio.PlayerOptions{}, deviceErr("output", s.Device)
	}
	latency := dev.DefaultLowLatency
	if s.LatencyMs > 0 {
		latency = time.Duration(s.LatencyMs) * time.Millisecond
	}
	return audioio.PlayerOptions{
		Device:           dev,
		ChannelCount:     s.Channels,
		SampleRate:       s.SampleRate,
		SuggestedLatency: latency,
		FramesPerBuffer:  s.FramesPerBuffer,
	}, nil
}

func matches(want, name string, isDefault bool) bool {
	if want == "" {
		return isDefault
	}
	return name == want
}

func deviceErr(direction, name string) error {
	if name == "" {
		return fmt.Errorf("no default %s device", direction)
	}
	return fmt.Errorf("%s device not found: %s", direction, name)
}

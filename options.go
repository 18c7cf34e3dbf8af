package audioio

import "time"

// Streams carry 16-bit PCM, two bytes per sample.
const bytesPerSample = 2

// PlayerOptions configures a Player. Options are fixed at construction; a
// stream with different parameters requires a new Player.
type PlayerOptions struct {
	// Device is the output device to bind, normally taken from a
	// DeviceManager enumeration.
	Device OutputDevice
	// ChannelCount is the number of interleaved channels.
	ChannelCount int
	// SampleRate in frames per second.
	SampleRate int
	// SuggestedLatency is passed to the backend as a hint. Zero asks for
	// the device's default low latency.
	SuggestedLatency time.Duration
	// FramesPerBuffer is the number of frames requested per audio
	// callback invocation.
	FramesPerBuffer int
}

// RecorderOptions configures a Recorder.
type RecorderOptions struct {
	// Device is the input device to bind.
	Device InputDevice
	// ChannelCount is the number of interleaved channels.
	ChannelCount int
	// SampleRate in frames per second.
	SampleRate int
	// SuggestedLatency is passed to the backend as a hint. Zero asks for
	// the device's default low latency.
	SuggestedLatency time.Duration
	// FramesPerBuffer is the number of frames delivered per audio
	// callback invocation.
	FramesPerBuffer int
}

func validateStreamOptions(channels, sampleRate, frames int, latency time.Duration) error {
	if channels <= 0 {
		return newError(KindInvalidParameter, "channel count must be positive")
	}
	if sampleRate <= 0 {
		return newError(KindInvalidParameter, "sample rate must be positive")
	}
	if frames <= 0 {
		return newError(KindInvalidParameter, "frames per buffer must be positive")
	}
	if latency < 0 {
		return newError(KindInvalidParameter, "suggested latency must not be negative")
	}
	return nil
}

func (o PlayerOptions) validate() error {
	return validateStreamOptions(o.ChannelCount, o.SampleRate, o.FramesPerBuffer, o.SuggestedLatency)
}

func (o RecorderOptions) validate() error {
	return validateStreamOptions(o.ChannelCount, o.SampleRate, o.FramesPerBuffer, o.SuggestedLatency)
}

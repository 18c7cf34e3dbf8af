// Package audioio provides audio device enumeration and callback-driven
// PCM playback and capture on top of PortAudio.
//
// All streams carry 16-bit little-endian interleaved PCM. A DeviceManager
// enumerates input and output devices, a Player pulls PCM from a user
// callback and writes it to an output device, and a Recorder delivers
// captured PCM to a user callback. Audio callbacks run on a thread owned
// by PortAudio, never on the caller's goroutine; errors raised there are
// reported through a separately registered error callback rather than
// returned.
package audioio

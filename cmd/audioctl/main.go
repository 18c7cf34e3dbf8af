package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/xorangestudio/audioio"
	"github.com/xorangestudio/audioio/config"
	"github.com/xorangestudio/audioio/wavio"
)

var (
	// Version is set via ldflags at build time
	Version = "dev"
)

func main() {
	configPath := flag.String("config", "", "path to a JSON settings file")
	duration := flag.Duration("duration", 0, "stop recording after this long (0 = until interrupted)")
	flag.Usage = usage
	flag.Parse()

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().Timestamp().Logger()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", *configPath).Msg("Failed to load config")
	}
	if level, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		log = log.Level(level)
	}
	audioio.SetLogger(log)

	switch flag.Arg(0) {
	case "devices":
		err = listDevices(os.Stdout)
	case "record":
		if flag.Arg(1) == "" {
			usage()
			os.Exit(2)
		}
		err = record(log, cfg, flag.Arg(1), *duration)
	case "play":
		if flag.Arg(1) == "" {
			usage()
			os.Exit(2)
		}
		err = play(log, cfg, flag.Arg(1))
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		log.Fatal().Err(err).Msg("Command failed")
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, `audioctl %s

Usage:
  audioctl [flags] devices            list input and output devices
  audioctl [flags] record <file.wav>  capture from the input device into a WAV file
  audioctl [flags] play <file.wav>    play a 16-bit WAV file on the output device

Flags:
`, Version)
	flag.PrintDefaults()
}

func listDevices(w *os.File) error {
	mgr, err := audioio.SharedDeviceManager()
	if err != nil {
		return err
	}
	defer mgr.Close()

	inputs, err := mgr.InputDevices()
	if err != nil {
		return err
	}
	outputs, err := mgr.OutputDevices()
	if err != nil {
		return err
	}

	fmt.Fprintln(w, "Input devices:")
	for _, d := range inputs {
		fmt.Fprintf(w, "  [%d] %s%s\n", d.ID, d.Name, defaultMark(d.IsDefault))
	}
	fmt.Fprintln(w, "Output devices:")
	for _, d := range outputs {
		fmt.Fprintf(w, "  [%d] %s%s\n", d.ID, d.Name, defaultMark(d.IsDefault))
	}
	return nil
}

func defaultMark(isDefault bool) string {
	if isDefault {
		return " (default)"
	}
	return ""
}

func record(log zerolog.Logger, cfg *config.Config, path string, duration time.Duration) error {
	mgr, err := audioio.SharedDeviceManager()
	if err != nil {
		return err
	}
	defer mgr.Close()

	inputs, err := mgr.InputDevices()
	if err != nil {
		return err
	}
	opts, err := cfg.Input.RecorderOptions(inputs)
	if err != nil {
		return err
	}

	writer, err := wavio.NewWriter(path, opts.SampleRate, opts.ChannelCount)
	if err != nil {
		return err
	}

	rec, err := audioio.NewRecorder(opts)
	if err != nil {
		writer.Close()
		return err
	}
	rec.SetAudioCallback(writer.Callback())
	rec.SetErrorCallback(func(err error) {
		log.Error().Err(err).Msg("Capture error")
	})

	if err := rec.Start(); err != nil {
		rec.Close()
		writer.Close()
		return err
	}
	log.Info().Str("device", opts.Device.Name).Str("file", path).Msg("Recording, press Ctrl-C to stop")

	wait(duration)

	if err := rec.Stop(false); err != nil {
		log.Error().Err(err).Msg("Stop failed")
	}
	if err := rec.Close(); err != nil {
		writer.Close()
		return err
	}
	return writer.Close()
}

func play(log zerolog.Logger, cfg *config.Config, path string) error {
	reader, err := wavio.NewReader(path)
	if err != nil {
		return err
	}

	mgr, err := audioio.SharedDeviceManager()
	if err != nil {
		return err
	}
	defer mgr.Close()

	outputs, err := mgr.OutputDevices()
	if err != nil {
		return err
	}
	// The file decides the stream format, the config only picks the device.
	streamCfg := cfg.Output
	streamCfg.Channels = reader.Channels()
	streamCfg.SampleRate = reader.SampleRate()
	opts, err := streamCfg.PlayerOptions(outputs)
	if err != nil {
		return err
	}

	player, err := audioio.NewPlayer(opts)
	if err != nil {
		return err
	}
	defer player.Close()

	player.SetAudioCallback(reader.Callback())
	player.SetErrorCallback(func(err error) {
		log.Error().Err(err).Msg("Playback error")
	})

	if err := player.Start(); err != nil {
		return err
	}
	log.Info().Str("device", opts.Device.Name).Str("file", path).Msg("Playing")

	bufferInterval := time.Duration(opts.FramesPerBuffer) * time.Second / time.Duration(opts.SampleRate)
	for !reader.Drained() {
		time.Sleep(bufferInterval)
	}
	// Let the last buffer drain through the device before stopping.
	time.Sleep(2 * bufferInterval)
	return player.Stop(false)
}

func wait(duration time.Duration) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	if duration > 0 {
		select {
		case <-sigChan:
		case <-time.After(duration):
		}
		return
	}
	<-sigChan
}

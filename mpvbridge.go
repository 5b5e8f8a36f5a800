// Copyright 2023 The STMPS Authors
// SPDX-License-Identifier: GPL-3.0-only

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime/debug"
	"strings"
	"syscall"

	"github.com/spezifisch/mpvbridge/config"
	"github.com/spezifisch/mpvbridge/libmpv"
	"github.com/spezifisch/mpvbridge/logger"
	"github.com/spezifisch/mpvbridge/mpvplayer"
	"github.com/spezifisch/mpvbridge/remote"
	"github.com/spezifisch/mpvbridge/store"
	"golang.org/x/sync/errgroup"
)

var osExit = os.Exit // A variable to allow mocking os.Exit in tests

const DEVELOPMENT = "development"

// Name is the program name used in usage and version output
var Name string = "mpvbridge"

// Version is the program version; usually set from BuildInfo
var Version string = DEVELOPMENT

// return codes:
// 0 - OK
// 1 - runtime errors
// 2 - usage and config errors
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

func main() {
	osExit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	flags := flag.NewFlagSet(Name, flag.ContinueOnError)
	flags.SetOutput(stderr)

	help := flags.Bool("help", false, "Print usage")
	enableMpris := flags.Bool("mpris", false, "Enable MPRIS2 (also mpris.enabled in the config)")
	configFile := flags.String("config", "", "use config `file`")
	volume := flags.Int("volume", 0, "start at volume `percent` instead of the saved one")
	eq := flags.String("eq", "", "apply equalizer `preset`")
	listErrors := flags.Bool("errors", false, "print the libmpv error codes and exit")
	probe := flags.Bool("probe", false, "check that an mpv handle can be created and exit")
	version := flags.Bool("version", false, "print the mpvbridge version and exit")

	if err := flags.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitConfig
	}
	if *help {
		fmt.Fprintf(stderr, "USAGE: %s <args> <file|url>...\n", Name)
		flags.PrintDefaults()
		fmt.Fprintf(stderr, "\nbuilt-in equalizer presets: %s\n", strings.Join(mpvplayer.PresetNames(), ", "))
		return exitOK
	}
	if Version == DEVELOPMENT {
		if bi, ok := debug.ReadBuildInfo(); ok && bi.Main.Version != "" {
			Version = bi.Main.Version
		}
	}
	if *version {
		fmt.Fprintf(stdout, "%s %s\n", Name, Version)
		return exitOK
	}
	if *listErrors {
		printErrorTable(stdout)
		return exitOK
	}
	if *probe {
		return probeMpv(stdout, stderr)
	}

	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintf(stderr, "Failed to read configuration: %v\n", err)
		return exitConfig
	}
	volumeSet := false
	flags.Visit(func(f *flag.Flag) {
		volumeSet = volumeSet || f.Name == "volume"
	})
	if volumeSet && (*volume < 0 || *volume > 100) {
		fmt.Fprintf(stderr, "volume must be between 0 and 100, got %d\n", *volume)
		return exitConfig
	}
	useMpris := *enableMpris || cfg.Mpris.Enabled
	if flags.NArg() == 0 && !useMpris {
		fmt.Fprintf(stderr, "nothing to play\nUSAGE: %s <args> <file|url>...\n", Name)
		return exitConfig
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	logger := logger.Init()
	go logger.Drain(ctx, stderr)

	st, err := store.Open(cfg.State.Path)
	if err != nil {
		fmt.Fprintf(stderr, "Unable to open state: %v\n", err)
		return exitRuntime
	}
	defer st.Close()

	opts := playerOptions(cfg)
	if volumeSet {
		opts.Volume = int64(*volume)
	} else if saved, err := st.LoadVolume(); err == nil {
		opts.Volume = saved
	}

	// init mpv engine
	player, err := mpvplayer.Open(opts, logger)
	if err != nil {
		fmt.Fprintf(stderr, "Unable to initialize mpv: %v. Is libmpv installed?\n", err)
		return exitRuntime
	}
	defer player.Close()

	preset := cfg.Equalizer.Preset
	if saved, err := st.LoadEqualizer(); err == nil {
		preset = saved
	}
	if *eq != "" {
		preset = *eq
	}
	if err := player.ApplyPreset(preset); err != nil {
		if *eq != "" {
			fmt.Fprintf(stderr, "%v\n", err)
			return exitConfig
		}
		logger.PrintError("ApplyPreset", err)
	}

	// init mpris2 player control (linux only but fails gracefully on other systems)
	if useMpris {
		mprisPlayer, err := remote.RegisterMprisPlayer(player, logger)
		if err != nil {
			fmt.Fprintf(stderr, "Unable to register MPRIS with DBUS: %s\n", err)
			fmt.Fprintln(stderr, "Try running without MPRIS")
			return exitRuntime
		}
		defer mprisPlayer.Close()
	}

	el := newEventLoop(player, st, logger, stdout)
	player.RegisterEventConsumer(el)

	// the event loop ends playback at the end of the queue
	ctx, stop := context.WithCancel(ctx)
	defer stop()
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		player.Run(gctx)
		return nil
	})
	g.Go(func() error {
		defer stop()
		el.run(gctx)
		return nil
	})

	for i, arg := range flags.Args() {
		item := queueItemFor(arg)
		if i > 0 {
			player.AddToQueue(&item)
			continue
		}
		if err := player.Play(item); err != nil {
			fmt.Fprintf(stderr, "Unable to play %s: %v\n", arg, err)
			return exitRuntime
		}
	}

	_ = g.Wait()
	saveState(player, st, logger)
	return exitOK
}

// playerOptions converts the config into mpvplayer options.
func playerOptions(cfg *config.Config) mpvplayer.Options {
	opts := mpvplayer.DefaultOptions()
	opts.AudioDevice = cfg.Player.AudioDevice
	opts.Volume = cfg.Player.Volume
	opts.PollInterval = cfg.Player.PollInterval
	opts.Extra = cfg.Player.Options

	if len(cfg.Equalizer.Presets) > 0 {
		opts.Presets = make(map[string]mpvplayer.Preset, len(cfg.Equalizer.Presets))
		for name, p := range cfg.Equalizer.Presets {
			opts.Presets[strings.ToLower(name)] = mpvplayer.Preset{Preamp: p.Preamp, Bands: p.Bands}
		}
	}
	return opts
}

func saveState(player *mpvplayer.Player, st *store.Store, logger logger.LoggerInterface) {
	if vol, err := player.Volume(); err == nil {
		if err := st.SaveVolume(vol); err != nil {
			logger.PrintError("SaveVolume", err)
		}
	}
	if status, err := player.Status(); err == nil && status.Equalizer != "" {
		if err := st.SaveEqualizer(status.Equalizer); err != nil {
			logger.PrintError("SaveEqualizer", err)
		}
	}
}

func printErrorTable(w io.Writer) {
	for _, code := range libmpv.Codes() {
		fmt.Fprintf(w, "%4d  %s\n", int(code), libmpv.ErrorString(code))
	}
}

// probeMpv runs a create/destroy cycle against libmpv.
func probeMpv(stdout, stderr io.Writer) int {
	if err := libmpv.CheckABI(); err != nil {
		fmt.Fprintf(stderr, "libmpv: %v\n", err)
		return exitRuntime
	}
	handle, err := libmpv.Create()
	if err != nil {
		fmt.Fprintf(stderr, "libmpv: %v\n", err)
		return exitRuntime
	}
	handle.Destroy()
	fmt.Fprintln(stdout, "libmpv: ok")
	return exitOK
}

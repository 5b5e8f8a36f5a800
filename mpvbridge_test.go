package main

import (
	"bytes"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/spezifisch/mpvbridge/config"
	"github.com/spezifisch/mpvbridge/libmpv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runWith(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "mpvbridge.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestMainWithoutTUI(t *testing.T) {
	// Mock osExit to prevent actual exit during test
	exitCalled := false
	osExit = func(code int) {
		exitCalled = true

		if code != 0 {
			// Capture and print the stack trace
			stackBuf := make([]byte, 1024)
			stackSize := runtime.Stack(stackBuf, false)
			stackTrace := string(stackBuf[:stackSize])

			t.Fatalf("Unexpected exit with code: %d\nStack trace:\n%s\n", code, stackTrace)
		}
	}

	// Restore patches after the test
	args := os.Args
	defer func() {
		osExit = os.Exit
		os.Args = args
	}()

	// Set command-line arguments to trigger the help flag
	os.Args = []string{"cmd", "--config=mpvbridge-example.toml", "--help"}

	main()

	if !exitCalled {
		t.Fatalf("osExit was not called")
	}
}

func TestRunInfoFlags(t *testing.T) {
	code, _, stderr := runWith(t, "--help")
	assert.Equal(t, exitOK, code)
	assert.Contains(t, stderr, "-config")
	assert.Contains(t, stderr, "bass-boost")

	code, stdout, _ := runWith(t, "--version")
	assert.Equal(t, exitOK, code)
	assert.Contains(t, stdout, "mpvbridge ")

	code, _, _ = runWith(t, "--no-such-flag")
	assert.Equal(t, exitConfig, code)
}

func TestRunErrorTable(t *testing.T) {
	code, stdout, _ := runWith(t, "--errors")
	assert.Equal(t, exitOK, code)
	assert.Contains(t, stdout, "   0  success\n")
	assert.Contains(t, stdout, "  -5  option not found\n")
	assert.Contains(t, stdout, " -20  something happened\n")
	assert.Equal(t, len(libmpv.Codes()), bytes.Count([]byte(stdout), []byte("\n")))
}

func TestRunProbe(t *testing.T) {
	code, stdout, stderr := runWith(t, "--probe")
	if libmpv.Available() {
		assert.Equal(t, exitOK, code, stderr)
		assert.Contains(t, stdout, "libmpv: ok")
	} else {
		assert.Equal(t, exitRuntime, code)
		assert.Contains(t, stderr, "libmpv not available")
	}
}

func TestRunConfigErrors(t *testing.T) {
	code, _, stderr := runWith(t, "--config", writeConfig(t, "[player\nvolume ="), "a.flac")
	assert.Equal(t, exitConfig, code)
	assert.Contains(t, stderr, "Failed to read configuration")

	path := writeConfig(t, "[state]\npath = \"\"\n")
	for _, volume := range []string{"101", "-1", "-5"} {
		code, _, stderr = runWith(t, "--config", path, "--volume", volume, "a.flac")
		assert.Equal(t, exitConfig, code, volume)
		assert.Contains(t, stderr, "volume must be between 0 and 100", volume)
	}

	code, _, stderr = runWith(t, "--config", path)
	assert.Equal(t, exitConfig, code)
	assert.Contains(t, stderr, "nothing to play")
}

func TestRunWithoutLibmpv(t *testing.T) {
	if libmpv.Available() {
		t.Skip("built against libmpv")
	}
	path := writeConfig(t, "[state]\npath = \"\"\n")
	code, _, stderr := runWith(t, "--config", path, "a.flac")
	assert.Equal(t, exitRuntime, code)
	assert.Contains(t, stderr, "Unable to initialize mpv")
}

func TestPlayerOptions(t *testing.T) {
	cfg, err := config.Load(writeConfig(t, `
[player]
volume = 30
audio_device = "pulse"

[player.options]
replaygain = "album"

[equalizer.presets.Night]
preamp = -1.0
bands = { "60" = 2.0 }
`))
	require.NoError(t, err)

	opts := playerOptions(cfg)
	assert.Equal(t, int64(30), opts.Volume)
	assert.Equal(t, "pulse", opts.AudioDevice)
	assert.Equal(t, "album", opts.Extra["replaygain"])
	require.Contains(t, opts.Presets, "night")
	assert.Equal(t, -1.0, opts.Presets["night"].Preamp)
	assert.Equal(t, 2.0, opts.Presets["night"].Bands["60"])
}

func TestExampleConfig(t *testing.T) {
	cfg, err := config.Load("mpvbridge-example.toml")
	require.NoError(t, err)
	assert.Equal(t, int64(80), cfg.Player.Volume)
	assert.Contains(t, cfg.Equalizer.Presets, "night")

	opts := playerOptions(cfg)
	assert.Equal(t, -3.0, opts.Presets["night"].Bands["16000"])
}

package libmpv

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCore struct {
	mu         sync.Mutex
	initCode   ErrorCode
	destroyed  int
	options    map[string]string
	commands   [][]string
	properties map[string]any
	getCode    ErrorCode
}

func newFakeCore() *fakeCore {
	return &fakeCore{
		options:    make(map[string]string),
		properties: make(map[string]any),
	}
}

func (f *fakeCore) initialize() ErrorCode { return f.initCode }

func (f *fakeCore) destroy() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.destroyed++
}

func (f *fakeCore) setOptionString(name, value string) ErrorCode {
	if name == "no-such-option" {
		return ErrOptionNotFound
	}
	f.options[name] = value
	return Success
}

func (f *fakeCore) command(args []string) ErrorCode {
	f.commands = append(f.commands, args)
	return Success
}

func (f *fakeCore) setProperty(name string, format Format, value any) ErrorCode {
	f.properties[name] = value
	return Success
}

func (f *fakeCore) getProperty(name string, format Format) (any, ErrorCode) {
	if f.getCode < 0 {
		return nil, f.getCode
	}
	v, ok := f.properties[name]
	if !ok {
		return nil, ErrPropertyNotFound
	}
	return v, Success
}

func TestHandleLifecycle(t *testing.T) {
	core := newFakeCore()
	h := newHandle(core)

	assert.ErrorIs(t, h.Command("stop"), ErrUninitialized, "commands need an initialized handle")

	require.NoError(t, h.SetOptionString("video", "no"))
	require.NoError(t, h.Initialize())
	assert.True(t, h.Initialized())
	assert.ErrorIs(t, h.Initialize(), ErrAlreadyInitialized)

	require.NoError(t, h.Command("loadfile", "a.flac", "replace"))
	assert.Equal(t, [][]string{{"loadfile", "a.flac", "replace"}}, core.commands)
	assert.Equal(t, "no", core.options["video"])

	h.Destroy()
	h.Destroy()
	assert.Equal(t, 1, core.destroyed, "native destroy must run exactly once")
	assert.False(t, h.Initialized())

	assert.ErrorIs(t, h.Initialize(), ErrDestroyed)
	assert.ErrorIs(t, h.SetOptionString("video", "no"), ErrDestroyed)
	assert.ErrorIs(t, h.Command("stop"), ErrDestroyed)
	assert.ErrorIs(t, h.SetProperty("pause", FormatFlag, true), ErrDestroyed)
	_, err := h.GetProperty("pause", FormatFlag)
	assert.ErrorIs(t, err, ErrDestroyed)
}

func TestHandleZeroValue(t *testing.T) {
	var h Handle

	assert.ErrorIs(t, h.Initialize(), ErrDestroyed)
	assert.ErrorIs(t, h.SetOptionString("video", "no"), ErrDestroyed)
	assert.ErrorIs(t, h.Command("stop"), ErrDestroyed)
	assert.ErrorIs(t, h.SetProperty("pause", FormatFlag, true), ErrDestroyed)
	_, err := h.GetProperty("pause", FormatFlag)
	assert.ErrorIs(t, err, ErrDestroyed)
	assert.False(t, h.Initialized())

	h.Destroy()
	h.Destroy()
}

func TestHandleCreateThenDestroy(t *testing.T) {
	core := newFakeCore()
	h := newHandle(core)
	h.Destroy()
	assert.Equal(t, 1, core.destroyed)
}

func TestHandleInitializeFailure(t *testing.T) {
	core := newFakeCore()
	core.initCode = ErrAOInitFailed
	h := newHandle(core)

	err := h.Initialize()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAOInitFailed)

	var callErr *CallError
	require.True(t, errors.As(err, &callErr))
	assert.Equal(t, "initialize", callErr.Op)
	assert.Equal(t, "mpv_initialize failed: audio output initialization failed", err.Error())
	assert.False(t, h.Initialized())
}

func TestHandleOptionNotFound(t *testing.T) {
	h := newHandle(newFakeCore())
	err := h.SetOptionString("no-such-option", "1")
	assert.ErrorIs(t, err, ErrOptionNotFound)
	assert.Contains(t, err.Error(), "no-such-option")
}

func TestHandleEmptyCommand(t *testing.T) {
	core := newFakeCore()
	h := newHandle(core)
	require.NoError(t, h.Initialize())

	assert.ErrorIs(t, h.Command(), ErrInvalidParameter)
	assert.Empty(t, core.commands)
}

func TestHandleProperties(t *testing.T) {
	core := newFakeCore()
	h := newHandle(core)
	require.NoError(t, h.Initialize())

	testCases := []struct {
		name   string
		format Format
		set    any
		want   any
	}{
		{"media-title", FormatString, "Song", "Song"},
		{"pause", FormatFlag, true, true},
		{"volume", FormatInt64, 80, int64(80)},
		{"speed", FormatInt64, int64(2), int64(2)},
		{"time-pos", FormatDouble, 12.5, 12.5},
		{"gain", FormatDouble, float32(0.5), 0.5},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			require.NoError(t, h.SetProperty(tc.name, tc.format, tc.set))
			got, err := h.GetProperty(tc.name, tc.format)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestHandlePropertyFormatMismatch(t *testing.T) {
	core := newFakeCore()
	h := newHandle(core)
	require.NoError(t, h.Initialize())

	assert.ErrorIs(t, h.SetProperty("pause", FormatFlag, "yes"), ErrFormatMismatch)
	assert.ErrorIs(t, h.SetProperty("volume", FormatInt64, 1.5), ErrFormatMismatch)
	assert.ErrorIs(t, h.SetProperty("volume", FormatNone, nil), ErrPropertyFormat)
	assert.ErrorIs(t, h.SetProperty("title", Format(2), "x"), ErrPropertyFormat)
	assert.Empty(t, core.properties, "mismatched values must not reach the library")

	_, err := h.GetProperty("volume", FormatNone)
	assert.ErrorIs(t, err, ErrPropertyFormat)
	_, err = h.GetProperty("volume", Format(42))
	assert.ErrorIs(t, err, ErrPropertyFormat)
}

func TestHandleGetPropertyError(t *testing.T) {
	core := newFakeCore()
	core.getCode = ErrPropertyUnavailable
	h := newHandle(core)
	require.NoError(t, h.Initialize())

	v, err := h.GetProperty("duration", FormatDouble)
	assert.Nil(t, v)
	assert.ErrorIs(t, err, ErrPropertyUnavailable)
	assert.Equal(t, "mpv_get_property(duration) failed: property unavailable", err.Error())
}

func TestHandleConcurrentCalls(t *testing.T) {
	core := newFakeCore()
	h := newHandle(core)
	require.NoError(t, h.Initialize())

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = h.SetProperty("volume", FormatInt64, i)
			_, _ = h.GetProperty("volume", FormatInt64)
		}(i)
	}
	wg.Wait()
	h.Destroy()
	assert.Equal(t, 1, core.destroyed)
}

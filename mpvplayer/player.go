// Copyright 2023 The STMPS Authors
// SPDX-License-Identifier: GPL-3.0-only

package mpvplayer

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/spezifisch/mpvbridge/libmpv"
	"github.com/spezifisch/mpvbridge/logger"
	"github.com/spezifisch/mpvbridge/remote"
)

var (
	ErrClosed     = errors.New("player closed")
	ErrQueueEmpty = errors.New("queue empty")
	ErrNotPlaying = errors.New("not playing")
)

const DefaultPollInterval = 200 * time.Millisecond

type PlayerQueue []QueueItem

// Options configure a Player. Extra holds additional mpv options applied
// before initialization.
type Options struct {
	AudioDevice  string
	Volume       int64
	PollInterval time.Duration
	Extra        map[string]string
	Presets      map[string]Preset
}

func DefaultOptions() Options {
	return Options{
		AudioDevice:  "auto",
		Volume:       100,
		PollInterval: DefaultPollInterval,
	}
}

type Player struct {
	mu            sync.Mutex
	instance      libmpv.Client
	eventConsumer EventConsumer
	queue         PlayerQueue
	logger        logger.LoggerInterface
	opts          Options

	// uri of a loadfile we issued that mpv hasn't started yet, and the path
	// mpv was playing when we issued it
	pendingUri   string
	pendingFrom  string
	pendingSince time.Time
	stopped      bool
	loaded       bool
	paused       bool
	closed       bool
	status       Status
	eqName       string

	pending []UiEvent
	done    chan struct{}

	cbOnPaused     []func()
	cbOnStopped    []func()
	cbOnPlaying    []func()
	cbOnSeek       []func()
	cbOnPosition   []func(float64)
	cbOnSongChange []func(remote.TrackInterface)
}

var _ remote.ControlledPlayer = (*Player)(nil)

// Open creates a libmpv handle and wraps it in a Player.
func Open(opts Options, logger logger.LoggerInterface) (*Player, error) {
	instance, err := libmpv.Create()
	if err != nil {
		return nil, err
	}
	return NewPlayer(instance, opts, logger)
}

// NewPlayer configures and initializes client, which must be freshly created.
// On failure the client is destroyed.
func NewPlayer(client libmpv.Client, opts Options, logger logger.LoggerInterface) (player *Player, err error) {
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}

	required := [][2]string{
		{"audio-display", "no"},
		{"video", "no"},
		{"vo", "null"},
		{"idle", "yes"},
	}
	for _, o := range required {
		if err = client.SetOptionString(o[0], o[1]); err != nil {
			client.Destroy()
			return nil, fmt.Errorf("failed to set %s=%s: %w", o[0], o[1], err)
		}
	}

	// not critical
	if err := client.SetOptionString("terminal", "no"); err != nil {
		logger.PrintError("option terminal", err)
	}
	if opts.AudioDevice != "" {
		if err := client.SetOptionString("audio-device", opts.AudioDevice); err != nil {
			logger.PrintError("option audio-device", err)
		}
	}

	extra := make([]string, 0, len(opts.Extra))
	for name := range opts.Extra {
		extra = append(extra, name)
	}
	sort.Strings(extra)
	for _, name := range extra {
		if err = client.SetOptionString(name, opts.Extra[name]); err != nil {
			client.Destroy()
			return nil, fmt.Errorf("failed to set option %s: %w", name, err)
		}
	}

	if err = client.Initialize(); err != nil {
		client.Destroy()
		return nil, err
	}

	player = &Player{
		instance:      client,
		eventConsumer: nil, // must be set by calling RegisterEventConsumer()
		queue:         make([]QueueItem, 0),
		logger:        logger,
		opts:          opts,
		stopped:       true,
		done:          make(chan struct{}),
	}

	if err := player.SetVolume(opts.Volume); err != nil {
		logger.PrintError("SetVolume", err)
	}
	return player, nil
}

// locked runs fn under the player lock and delivers the events it queued
// after releasing it, so consumers may call back into the player.
func (p *Player) locked(fn func() error) error {
	p.mu.Lock()
	err := fn()
	events := p.pending
	p.pending = nil
	p.mu.Unlock()

	for _, evt := range events {
		p.dispatch(evt)
	}
	return err
}

func (p *Player) fail(err error) error {
	p.status.LastError = err.Error()
	return err
}

// Close stops Run and destroys the mpv handle.
func (p *Player) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	p.closed = true
	close(p.done)
	p.instance.Destroy()
	return nil
}

// Quit is Close for callers that don't care about the error.
func (p *Player) Quit() {
	_ = p.Close()
}

func (p *Player) RegisterEventConsumer(consumer EventConsumer) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.eventConsumer = consumer
}

// loadfile replaces whatever mpv plays with uri. Caller holds p.mu.
func (p *Player) loadfile(uri string) error {
	from := p.currentPath()
	if err := p.instance.Command("loadfile", uri, "replace"); err != nil {
		return p.fail(err)
	}
	p.pendingUri = uri
	p.pendingFrom = from
	p.pendingSince = time.Now()
	p.stopped = false
	return nil
}

// Play replaces the queue with item and starts it.
func (p *Player) Play(item QueueItem) error {
	return p.locked(func() error {
		if p.closed {
			return ErrClosed
		}
		p.queue = PlayerQueue{item}
		if p.paused {
			if err := p.instance.SetProperty("pause", libmpv.FormatFlag, false); err != nil {
				p.logger.PrintError("setprop pause", err)
			} else {
				p.paused = false
			}
		}
		return p.loadfile(item.Uri)
	})
}

// Load plays url, sending headers with every HTTP request mpv makes for it.
func (p *Player) Load(url string, headers map[string]string) error {
	if err := p.setHeaders(headers); err != nil {
		return err
	}
	return p.Play(QueueItem{Uri: url})
}

func (p *Player) setHeaders(headers map[string]string) error {
	fields := make([]string, 0, len(headers))
	for k, v := range headers {
		fields = append(fields, k+": "+strings.ReplaceAll(v, ",", `\,`))
	}
	sort.Strings(fields)

	return p.locked(func() error {
		if p.closed {
			return ErrClosed
		}
		return p.instance.SetProperty("http-header-fields", libmpv.FormatString, strings.Join(fields, ","))
	})
}

func (p *Player) PlayNextTrack() error {
	return p.locked(func() error {
		if p.closed {
			return ErrClosed
		}
		if len(p.queue) > 0 {
			// advance queue if any tracks left
			p.queue = p.queue[1:]
		}
		if len(p.queue) > 0 {
			return p.loadfile(p.queue[0].Uri)
		}
		// stop with empty queue
		return p.stop()
	})
}

// NextTrack is PlayNextTrack for remote control.
func (p *Player) NextTrack() error {
	return p.PlayNextTrack()
}

func (p *Player) Stop() error {
	return p.locked(func() error {
		if p.closed {
			return ErrClosed
		}
		p.logger.Printf("stopping (user)")
		return p.stop()
	})
}

// stop halts playback and reports it. Caller holds p.mu.
func (p *Player) stop() error {
	wasStopped := p.stopped
	p.stopped = true
	p.pendingUri = ""
	if err := p.instance.Command("stop"); err != nil {
		return p.fail(err)
	}
	p.status.PositionSec = 0
	if !wasStopped {
		p.queueEvent(EventStopped, nil)
	}
	return nil
}

func (p *Player) IsSongLoaded() (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.isSongLoaded()
}

func (p *Player) isSongLoaded() (bool, error) {
	idle, err := p.getPropertyBool("idle-active")
	return !idle, err
}

func (p *Player) IsPaused() (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.getPropertyBool("pause")
}

func (p *Player) IsPlaying() (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.isPlaying()
}

func (p *Player) isPlaying() (bool, error) {
	loaded, err := p.isSongLoaded()
	if err != nil {
		return false, err
	}
	paused, err := p.getPropertyBool("pause")
	if err != nil {
		return false, err
	}
	return loaded && !paused, nil
}

func (p *Player) currentSong() QueueItem {
	if len(p.queue) > 0 {
		return p.queue[0]
	}
	return QueueItem{}
}

// Pause toggles playing music
// If a song is playing, it is paused. If a song is paused, playing resumes.
// If stopped, the song starts playing.
func (p *Player) Pause() error {
	return p.locked(func() error {
		if p.closed {
			return ErrClosed
		}
		return p.togglePause()
	})
}

// togglePause does the work of Pause. Caller holds p.mu.
func (p *Player) togglePause() error {
	if p.pendingUri != "" {
		// mpv keeps the pause property across the start of the file
		pause := !p.paused
		if err := p.instance.SetProperty("pause", libmpv.FormatFlag, pause); err != nil {
			return p.fail(err)
		}
		p.paused = pause
		if pause {
			p.queueEvent(EventPaused, p.currentSong())
		} else {
			p.queueEvent(EventUnpaused, p.currentSong())
		}
		return nil
	}

	loaded, err := p.isSongLoaded()
	if err != nil {
		return err
	}
	paused, err := p.getPropertyBool("pause")
	if err != nil {
		return err
	}

	if loaded && !p.stopped {
		// toggle pause if not stopped
		if err := p.instance.Command("cycle", "pause"); err != nil {
			return p.fail(err)
		}
		p.paused = !paused
		if p.paused {
			p.queueEvent(EventPaused, p.currentSong())
		} else {
			p.queueEvent(EventUnpaused, p.currentSong())
		}
		return nil
	}

	if len(p.queue) == 0 {
		if !p.stopped {
			p.stopped = true
			p.queueEvent(EventStopped, nil)
		}
		return nil
	}

	wasStopped := p.stopped
	if err := p.loadfile(p.queue[0].Uri); err != nil {
		return err
	}
	if err := p.instance.SetProperty("pause", libmpv.FormatFlag, false); err != nil {
		p.logger.PrintError("setprop pause", err)
	} else {
		p.paused = false
	}
	if !wasStopped {
		p.queueEvent(EventUnpaused, p.currentSong())
	}
	// otherwise polling reports the start of the file
	return nil
}

// SetPause pauses or resumes without toggling. Resuming from stopped
// restarts the current queue item.
func (p *Player) SetPause(pause bool) error {
	return p.locked(func() error {
		if p.closed {
			return ErrClosed
		}
		paused := p.paused
		if p.pendingUri == "" {
			playing, err := p.isPlaying()
			if err != nil {
				return err
			}
			paused = !playing
		}
		if pause == paused {
			return nil
		}
		return p.togglePause()
	})
}

func (p *Player) SetVolume(percentValue int64) error {
	if percentValue > 100 {
		percentValue = 100
	} else if percentValue < 0 {
		percentValue = 0
	}

	return p.locked(func() error {
		if p.closed {
			return ErrClosed
		}
		if err := p.instance.SetProperty("volume", libmpv.FormatInt64, percentValue); err != nil {
			return p.fail(err)
		}
		p.status.Volume = float64(percentValue)
		return nil
	})
}

func (p *Player) AdjustVolume(increment int64) error {
	volume, err := p.Volume()
	if err != nil {
		return err
	}
	return p.SetVolume(volume + increment)
}

func (p *Player) Volume() (int64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	volume, err := p.getPropertyInt64("volume")
	if err != nil {
		return -1, err
	}
	return volume, nil
}

// Seek moves by increment seconds relative to the current position.
func (p *Player) Seek(increment int) error {
	return p.locked(func() error {
		if p.closed {
			return ErrClosed
		}
		if err := p.instance.Command("seek", strconv.Itoa(increment)); err != nil {
			return p.fail(err)
		}
		// OnSeek callbacks read the position before the next poll
		pos := p.status.PositionSec + float64(increment)
		if p.status.DurationSec > 0 && pos > p.status.DurationSec {
			pos = p.status.DurationSec
		}
		p.status.PositionSec = math.Max(pos, 0)
		p.queueSeek()
		return nil
	})
}

// SeekSeconds jumps to an absolute position. Before a file is loaded only the
// reported position changes.
func (p *Player) SeekSeconds(seconds float64) error {
	if seconds < 0 {
		seconds = 0
	}
	return p.locked(func() error {
		if p.closed {
			return ErrClosed
		}
		p.status.PositionSec = seconds
		if !p.loaded || p.status.DurationSec == 0 {
			return nil
		}
		if err := p.instance.SetProperty("time-pos", libmpv.FormatDouble, seconds); err != nil {
			if errors.Is(err, libmpv.ErrPropertyUnavailable) {
				return nil
			}
			return p.fail(err)
		}
		p.queueSeek()
		return nil
	})
}

// Status polls mpv and returns the current playback state.
func (p *Player) Status() (Status, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return Status{}, ErrClosed
	}
	p.updateProperties()
	return p.snapshot(), nil
}

// GetTimePos returns the position seen by the last poll, in seconds.
func (p *Player) GetTimePos() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status.PositionSec
}

// accessed from gui context
func (p *Player) ClearQueue() {
	if err := p.locked(func() error {
		p.queue = make([]QueueItem, 0)
		if p.closed {
			return nil
		}
		return p.stop()
	}); err != nil {
		p.logger.PrintError("Stop", err)
	}
}

func (p *Player) DeleteQueueItem(index int) {
	p.mu.Lock()
	if index < 0 || index >= len(p.queue) {
		p.mu.Unlock()
		return
	}
	if len(p.queue) > 1 && index > 0 {
		p.queue = append(p.queue[:index], p.queue[index+1:]...)
		p.mu.Unlock()
		return
	}
	single := len(p.queue) == 1
	p.mu.Unlock()

	if single {
		p.ClearQueue()
	} else if err := p.PlayNextTrack(); err != nil {
		p.logger.PrintError("PlayNextTrack", err)
	}
}

func (p *Player) AddToQueue(item *QueueItem) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.queue = append(p.queue, *item)
}

func (p *Player) GetQueueItem(index int) (QueueItem, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if index < 0 || index >= len(p.queue) {
		return QueueItem{}, errors.New("invalid queue entry")
	}
	return p.queue[index], nil
}

func (p *Player) GetQueueCopy() PlayerQueue {
	p.mu.Lock()
	defer p.mu.Unlock()
	cpy := make(PlayerQueue, len(p.queue))
	copy(cpy, p.queue)
	return cpy
}

// accessed from background context
func (p *Player) GetPlayingTrack() (QueueItem, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	paused, err := p.getPropertyBool("pause")
	if err != nil {
		return QueueItem{}, err
	}
	if paused || p.stopped {
		return QueueItem{}, ErrNotPlaying
	}
	if len(p.queue) == 0 {
		return QueueItem{}, ErrQueueEmpty
	}
	return p.queue[0], nil
}

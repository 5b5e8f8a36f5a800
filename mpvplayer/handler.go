// Copyright 2023 The STMPS Authors
// SPDX-License-Identifier: GPL-3.0-only

package mpvplayer

import (
	"context"
	"time"

	"github.com/spezifisch/mpvbridge/remote"
)

// loadTimeout is how long mpv may stay idle after a loadfile before the
// file counts as failed.
const loadTimeout = 5 * time.Second

// Run polls mpv every PollInterval until ctx is done or the player is
// closed, turning state changes into events.
func (p *Player) Run(ctx context.Context) {
	ticker := time.NewTicker(p.opts.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-p.done:
			return
		case <-ticker.C:
			p.poll()
		}
	}
}

func (p *Player) poll() {
	_ = p.locked(func() error {
		if p.closed {
			return nil
		}

		loaded, err := p.isSongLoaded()
		if err != nil {
			p.logger.PrintError("mpv.poll: idle-active", err)
			return nil
		}
		p.updateProperties()

		switch {
		case p.pendingUri == "":
			if p.loaded && !loaded {
				p.endFile()
			}
		case loaded && p.started():
			p.startFile()
		case !loaded && time.Since(p.pendingSince) > loadTimeout:
			// mpv went back to idle without ever starting the file
			p.status.LastError = "loading failed: " + p.pendingUri
			p.logger.Printf("mpv.poll: %s", p.status.LastError)
			p.pendingUri = ""
			p.endFile()
		}
		p.loaded = loaded

		p.queueEvent(EventStatus, StatusData{
			Volume:   int64(p.status.Volume),
			Position: p.status.PositionSec,
			Duration: p.status.DurationSec,
		})
		return nil
	})
}

func (p *Player) currentPath() string {
	path, err := p.getPropertyString("path")
	if err != nil {
		return ""
	}
	return path
}

// started reports whether mpv is playing the pending file. Directories and
// playlists are expanded by mpv, so path names an entry rather than the uri.
func (p *Player) started() bool {
	path := p.currentPath()
	if path == "" {
		return false
	}
	return path == p.pendingUri || path != p.pendingFrom
}

// startFile handles mpv having started the file we asked for.
func (p *Player) startFile() {
	p.pendingUri = ""
	p.stopped = false

	if p.paused {
		p.queueEvent(EventPaused, p.currentSong())
	} else {
		p.queueEvent(EventPlaying, p.currentSong())
	}
}

// endFile handles mpv going idle on its own.
func (p *Player) endFile() {
	p.resetStreamStatus()

	if p.stopped {
		// feedback for a user-requested stop, already reported
		return
	}

	// advance queue and play next track
	if len(p.queue) > 0 {
		p.queue = p.queue[1:]
	}
	if len(p.queue) > 0 {
		if err := p.loadfile(p.queue[0].Uri); err != nil {
			p.logger.PrintError("mpv.poll: load next", err)
		} else {
			return
		}
	}

	p.logger.Print("mpv.poll: stopping (auto)")
	p.stopped = true
	p.queueEvent(EventStopped, nil)
}

// queueEvent records an event for delivery once p.mu is released.
func (p *Player) queueEvent(typ UiEventType, data interface{}) {
	p.pending = append(p.pending, UiEvent{Type: typ, Data: data})
}

func (p *Player) queueSeek() {
	p.pending = append(p.pending, UiEvent{Type: eventSeek})
}

// eventSeek only reaches OnSeek callbacks.
const eventSeek UiEventType = -1

func (p *Player) dispatch(evt UiEvent) {
	p.mu.Lock()
	consumer := p.eventConsumer
	var callbacks []func()
	var songChange []func(remote.TrackInterface)
	var position []func(float64)
	switch evt.Type {
	case EventStatus:
		position = append(position, p.cbOnPosition...)
	case EventStopped:
		callbacks = append(callbacks, p.cbOnStopped...)
	case EventPlaying, EventUnpaused:
		callbacks = append(callbacks, p.cbOnPlaying...)
		songChange = append(songChange, p.cbOnSongChange...)
	case EventPaused:
		callbacks = append(callbacks, p.cbOnPaused...)
		songChange = append(songChange, p.cbOnSongChange...)
	case eventSeek:
		callbacks = append(callbacks, p.cbOnSeek...)
	}
	p.mu.Unlock()

	if consumer != nil && evt.Type != eventSeek {
		consumer.SendEvent(evt)
	}

	if status, ok := evt.Data.(StatusData); ok {
		for _, cb := range position {
			cb(status.Position)
		}
	}
	if track, ok := evt.Data.(QueueItem); ok {
		for _, cb := range songChange {
			cb(&track)
		}
	}
	for _, cb := range callbacks {
		cb()
	}
}

// Registers a callback which is invoked when the player transitions to the Paused state.
func (p *Player) OnPaused(cb func()) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cbOnPaused = append(p.cbOnPaused, cb)
}

// Registers a callback which is invoked when the player transitions to the Stopped state.
func (p *Player) OnStopped(cb func()) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cbOnStopped = append(p.cbOnStopped, cb)
}

// Registers a callback which is invoked when the player transitions to the Playing state.
func (p *Player) OnPlaying(cb func()) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cbOnPlaying = append(p.cbOnPlaying, cb)
}

// Registers a callback which is invoked whenever a seek event occurs.
func (p *Player) OnSeek(cb func()) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cbOnSeek = append(p.cbOnSeek, cb)
}

// OnPosition registers a callback that receives the position in seconds after
// every poll.
func (p *Player) OnPosition(cb func(seconds float64)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cbOnPosition = append(p.cbOnPosition, cb)
}

func (p *Player) OnSongChange(cb func(track remote.TrackInterface)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cbOnSongChange = append(p.cbOnSongChange, cb)
}

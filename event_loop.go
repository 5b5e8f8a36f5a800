// Copyright 2023 The STMPS Authors
// SPDX-License-Identifier: GPL-3.0-only

package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spezifisch/mpvbridge/logger"
	"github.com/spezifisch/mpvbridge/mpvplayer"
	"github.com/spezifisch/mpvbridge/store"
)

// maxHistoryDelay caps how long a track must play before it is recorded.
const maxHistoryDelay = 240

// playbackControl is the part of mpvplayer.Player the event loop uses.
type playbackControl interface {
	GetPlayingTrack() (mpvplayer.QueueItem, error)
	GetQueueCopy() mpvplayer.PlayerQueue
}

type eventLoop struct {
	player playbackControl
	store  *store.Store
	logger logger.LoggerInterface
	out    io.Writer
	events chan mpvplayer.UiEvent

	// history entries are recorded once a track played long enough
	historyTimer *time.Timer
	historyArmed bool
	current      mpvplayer.QueueItem
	duration     float64
}

func newEventLoop(player playbackControl, st *store.Store, logger logger.LoggerInterface, out io.Writer) *eventLoop {
	el := &eventLoop{
		player: player,
		store:  st,
		logger: logger,
		out:    out,
		events: make(chan mpvplayer.UiEvent, 100),
	}

	// create reused timer to record history after delay
	el.historyTimer = time.NewTimer(0)
	if !el.historyTimer.Stop() {
		<-el.historyTimer.C
	}
	return el
}

// SendEvent is called by the player. Status updates are dropped when the
// loop falls behind.
func (el *eventLoop) SendEvent(event mpvplayer.UiEvent) {
	if event.Type == mpvplayer.EventStatus {
		select {
		case el.events <- event:
		default:
		}
		return
	}
	el.events <- event
}

// run prints playback progress until ctx is done or the queue ran out.
func (el *eventLoop) run(ctx context.Context) {
	defer el.historyTimer.Stop()

	for {
		select {
		case <-ctx.Done():
			fmt.Fprintln(el.out)
			return

		case <-el.historyTimer.C:
			el.recordHistory()

		case mpvEvent := <-el.events:
			if done := el.handle(mpvEvent); done {
				return
			}
		}
	}
}

// handle reacts to one player event and reports whether playback is over.
func (el *eventLoop) handle(mpvEvent mpvplayer.UiEvent) bool {
	switch mpvEvent.Type {
	case mpvplayer.EventStatus:
		statusData, ok := mpvEvent.Data.(mpvplayer.StatusData)
		if !ok {
			return false
		}
		fmt.Fprintf(el.out, "\r%s", formatPlayerStatus(statusData.Volume, statusData.Position, statusData.Duration))

		if !el.historyArmed && el.current.IsValid() && statusData.Duration > 0 {
			el.duration = statusData.Duration
			el.armHistory(statusData.Duration, statusData.Position)
		}

	case mpvplayer.EventStopped:
		el.logger.Print("mpvEvent: stopped")
		el.historyTimer.Stop()
		el.historyArmed = false
		el.current = mpvplayer.QueueItem{}
		fmt.Fprintln(el.out, "\nStopped")
		if len(el.player.GetQueueCopy()) == 0 {
			return true
		}

	case mpvplayer.EventPlaying:
		el.logger.Print("mpvEvent: playing")
		currentSong, _ := mpvEvent.Data.(mpvplayer.QueueItem)
		el.current = currentSong
		el.duration = 0
		el.historyArmed = false
		el.historyTimer.Stop()
		fmt.Fprintf(el.out, "\nPlaying %s\n", formatSong(&currentSong))

		if currentSong.Duration > 0 {
			el.duration = float64(currentSong.Duration)
			el.armHistory(el.duration, 0)
		}

	case mpvplayer.EventPaused:
		el.logger.Print("mpvEvent: paused")
		currentSong, _ := mpvEvent.Data.(mpvplayer.QueueItem)
		fmt.Fprintf(el.out, "\nPaused %s\n", formatSong(&currentSong))

	case mpvplayer.EventUnpaused:
		el.logger.Print("mpvEvent: unpaused")
		currentSong, _ := mpvEvent.Data.(mpvplayer.QueueItem)
		fmt.Fprintf(el.out, "\nPlaying %s\n", formatSong(&currentSong))

	default:
		el.logger.Printf("eventLoop: unhandled mpvEvent %v", mpvEvent)
	}
	return false
}

// armHistory starts the history timer.
// A track is recorded when it is longer than 30 seconds and has been playing
// for half its duration or for 4 minutes, whichever occurs earlier.
func (el *eventLoop) armHistory(duration, position float64) {
	el.historyArmed = true
	if duration <= 30 {
		el.logger.Printf("history: track too short")
		return
	}

	delay := historyDelay(duration) - time.Duration(position*float64(time.Second))
	if delay < 0 {
		delay = 0
	}
	el.historyTimer.Reset(delay)
	el.logger.Printf("history: timer started, %v", delay)
}

func historyDelay(duration float64) time.Duration {
	delay := duration / 2
	if delay > maxHistoryDelay {
		delay = maxHistoryDelay
	}
	return time.Duration(delay * float64(time.Second))
}

func (el *eventLoop) recordHistory() {
	currentSong, err := el.player.GetPlayingTrack()
	if err != nil {
		// user paused/stopped
		el.logger.Printf("not recording history: %v", err)
		return
	}

	el.logger.Printf("history: %s", currentSong.Uri)
	err = el.store.AddHistory(store.Entry{
		URL:         currentSong.Uri,
		Title:       currentSong.Title,
		Artist:      currentSong.Artist,
		DurationSec: el.duration,
	})
	if err != nil {
		el.logger.PrintError("history", err)
	}
}

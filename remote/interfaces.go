// Copyright 2023 The STMPS Authors
// SPDX-License-Identifier: GPL-3.0-only

package remote

type ControlledPlayer interface {
	// Registers a callback which is invoked when the player transitions to the Paused state.
	OnPaused(cb func())

	// Registers a callback which is invoked when the player transitions to the Stopped state.
	OnStopped(cb func())

	// Registers a callback which is invoked when the player transitions to the Playing state.
	OnPlaying(cb func())

	// Registers a callback which is invoked whenever a seek event occurs.
	OnSeek(cb func())

	// Registers a callback which receives the playback position in seconds
	// whenever the player refreshes it.
	OnPosition(cb func(seconds float64))

	OnSongChange(func(track TrackInterface))

	// position in seconds
	GetTimePos() float64

	IsPaused() (bool, error)
	IsPlaying() (bool, error)

	// Pause toggles between playing and paused.
	Pause() error
	SetPause(pause bool) error
	Stop() error
	NextTrack() error
	SetVolume(percent int64) error
	Volume() (int64, error)

	// Seek is relative, SeekSeconds absolute.
	Seek(increment int) error
	SeekSeconds(seconds float64) error

	// Load replaces the queue with url.
	Load(url string, headers map[string]string) error
}

type TrackInterface interface {
	GetArtist() string
	GetTitle() string
	GetDuration() int

	// something like Uri != ""
	IsValid() bool
}

// Copyright 2023 The STMPS Authors
// SPDX-License-Identifier: GPL-3.0-only

package mpvplayer

type QueueItem struct {
	Id       string
	Uri      string
	Title    string
	Artist   string
	Duration int // seconds, 0 if unknown
}

// StatusData is a player progress report for the UI
type StatusData struct {
	Volume   int64
	Position float64
	Duration float64
}

// Playback states reported in Status.State
const (
	StatePlaying = "playing"
	StatePaused  = "paused"
	StateStopped = "stopped"
)

// Status is a snapshot of playback and of the decoded audio stream.
type Status struct {
	State       string  `json:"state"`
	PositionSec float64 `json:"position_sec"`
	DurationSec float64 `json:"duration_sec"`
	Volume      float64 `json:"volume"`
	CurrentURL  string  `json:"current_url"`
	AudioCodec  string  `json:"audio_codec,omitempty"`
	SampleRate  int     `json:"sample_rate,omitempty"`
	BitDepth    int     `json:"bit_depth,omitempty"`
	Channels    int     `json:"channels,omitempty"`
	Container   string  `json:"container,omitempty"`
	IsHiRes     bool    `json:"is_hires"`
	Equalizer   string  `json:"equalizer,omitempty"`
	LastError   string  `json:"last_error,omitempty"`
}

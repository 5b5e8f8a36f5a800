// Copyright 2023 The STMPS Authors
// SPDX-License-Identifier: GPL-3.0-only

package main

import (
	"fmt"
	"math"
	"net/url"
	"path"
	"path/filepath"

	"github.com/spezifisch/mpvbridge/mpvplayer"
)

func secondsToMinAndSec(seconds int64) (int, int) {
	minutes := math.Floor(float64(seconds) / 60)
	remainingSeconds := int(seconds) % 60
	return int(minutes), remainingSeconds
}

func formatPlayerStatus(volume int64, position float64, duration float64) string {
	if position < 0 {
		position = 0
	}

	if duration < 0 {
		duration = 0
	}

	positionMin, positionSec := secondsToMinAndSec(int64(position))
	durationMin, durationSec := secondsToMinAndSec(int64(duration))

	return fmt.Sprintf("[%d%%][%02d:%02d/%02d:%02d]", volume, positionMin, positionSec, durationMin, durationSec)
}

func formatSong(currentSong *mpvplayer.QueueItem) (text string) {
	if currentSong == nil {
		return
	}
	text = currentSong.GetTitle()
	if currentSong.Artist != "" {
		text += " by " + currentSong.Artist
	}
	return
}

// titleFromUri derives a display title from a file path or URL.
func titleFromUri(uri string) string {
	u, err := url.Parse(uri)
	if err != nil || u.Scheme == "" || len(u.Scheme) == 1 {
		// plain path, or a windows drive letter
		return filepath.Base(uri)
	}
	if u.Path == "" || u.Path == "/" {
		return u.Host
	}
	return path.Base(u.Path)
}

// Copyright 2023 The STMPS Authors
// SPDX-License-Identifier: GPL-3.0-only

package main

import (
	"net/url"
	"os"

	"github.com/dhowden/tag"
	"github.com/spezifisch/mpvbridge/mpvplayer"
)

// queueItemFor builds a queue entry for a command line argument. Local files
// get title and artist from their tags when they have any.
func queueItemFor(arg string) mpvplayer.QueueItem {
	item := mpvplayer.QueueItem{Uri: arg, Title: titleFromUri(arg)}

	path := localPath(arg)
	if path == "" {
		return item
	}
	f, err := os.Open(path)
	if err != nil {
		return item
	}
	defer f.Close()

	m, err := tag.ReadFrom(f)
	if err != nil {
		return item
	}
	if m.Title() != "" {
		item.Title = m.Title()
	}
	item.Artist = m.Artist()
	if item.Artist == "" {
		item.Artist = m.AlbumArtist()
	}
	return item
}

// localPath returns the file path behind arg, or "" for remote URLs.
func localPath(arg string) string {
	u, err := url.Parse(arg)
	if err != nil || u.Scheme == "" || len(u.Scheme) == 1 {
		return arg
	}
	if u.Scheme == "file" {
		return u.Path
	}
	return ""
}

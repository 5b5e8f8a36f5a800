// Copyright 2023 The STMPS Authors
// SPDX-License-Identifier: GPL-3.0-only

package mpvplayer

import (
	"fmt"
	"strings"
)

// ValidateHiRes checks whether a stream qualifies as hi-res (at least 48kHz
// and 24 bit). The string explains a negative answer.
func ValidateHiRes(sampleRate int, bitDepth int) (bool, string) {
	if sampleRate <= 0 {
		return false, "missing sample rate"
	}
	if bitDepth <= 0 {
		return false, "missing bit depth"
	}
	if sampleRate < 48000 {
		return false, fmt.Sprintf("sample rate too low for hi-res: %d", sampleRate)
	}
	if bitDepth < 24 {
		return false, fmt.Sprintf("bit depth too low for hi-res: %d", bitDepth)
	}
	return true, ""
}

// parseBitDepth reads the sample size from mpv's audio-params/format, e.g.
// "s16", "s32p", "floatp". Unknown formats give 0.
func parseBitDepth(format string) int {
	format = strings.TrimSuffix(format, "p")
	switch format {
	case "u8":
		return 8
	case "s16":
		return 16
	case "s24":
		return 24
	case "s32", "float":
		return 32
	case "s64", "double":
		return 64
	}
	return 0
}

// updateProperties refreshes the cached status from mpv. Properties that are
// unavailable (nothing loaded) keep their previous value.
func (p *Player) updateProperties() {
	if pos, err := p.getPropertyDouble("time-pos"); err == nil {
		p.status.PositionSec = pos
	}
	if dur, err := p.getPropertyDouble("duration"); err == nil {
		p.status.DurationSec = dur
	}
	if vol, err := p.getPropertyDouble("volume"); err == nil {
		p.status.Volume = vol
	}
	if paused, err := p.getPropertyBool("pause"); err == nil {
		p.paused = paused
	}
	if codec, err := p.getPropertyString("audio-codec-name"); err == nil {
		p.status.AudioCodec = codec
	}
	if sr, err := p.getPropertyInt64("audio-params/samplerate"); err == nil {
		p.status.SampleRate = int(sr)
	}
	if ch, err := p.getPropertyInt64("audio-params/channel-count"); err == nil {
		p.status.Channels = int(ch)
	}
	if format, err := p.getPropertyString("audio-params/format"); err == nil {
		if bits := parseBitDepth(format); bits > 0 {
			p.status.BitDepth = bits
		}
	}
	if container, err := p.getPropertyString("file-format"); err == nil {
		p.status.Container = container
	}
}

func (p *Player) resetStreamStatus() {
	p.status.PositionSec = 0
	p.status.DurationSec = 0
	p.status.AudioCodec = ""
	p.status.SampleRate = 0
	p.status.BitDepth = 0
	p.status.Channels = 0
	p.status.Container = ""
}

// snapshot builds Status from the cached fields. Caller holds p.mu.
func (p *Player) snapshot() Status {
	s := p.status
	switch {
	case !p.loaded:
		s.State = StateStopped
	case p.paused:
		s.State = StatePaused
	default:
		s.State = StatePlaying
	}
	if len(p.queue) > 0 {
		s.CurrentURL = p.queue[0].Uri
	}
	s.IsHiRes, _ = ValidateHiRes(s.SampleRate, s.BitDepth)
	s.Equalizer = p.eqName
	return s
}

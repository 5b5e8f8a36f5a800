// Copyright 2023 The STMPS Authors
// SPDX-License-Identifier: GPL-3.0-only

package mpvplayer

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/spezifisch/mpvbridge/libmpv"
)

var ErrUnknownPreset = errors.New("unknown equalizer preset")

// StandardBands are the center frequencies in Hz that every filter carries.
var StandardBands = []float64{32, 64, 125, 250, 500, 1000, 2000, 4000, 8000, 16000}

// Preset maps band frequency in Hz to gain in dB. Preamp is added to every
// band.
type Preset struct {
	Preamp float64
	Bands  map[string]float64
}

var builtinPresets = map[string]Preset{
	"flat": {},
	"rock": {Preamp: -2, Bands: map[string]float64{
		"60": 5, "170": 4, "310": -3, "600": -2, "1000": 1,
		"3000": 3, "6000": 4, "12000": 5, "14000": 5, "16000": 5,
	}},
	"pop": {Preamp: -1, Bands: map[string]float64{
		"60": -1, "170": 2, "310": 4, "600": 4, "1000": 3,
		"3000": 0, "6000": -1, "12000": -1, "14000": -1, "16000": -2,
	}},
	"jazz": {Preamp: -1, Bands: map[string]float64{
		"60": 3, "170": 2, "310": 1, "600": 1, "1000": -1,
		"3000": -1, "6000": 0, "12000": 2, "14000": 3, "16000": 3,
	}},
	"classical": {Bands: map[string]float64{
		"60": 3, "170": 2, "310": 0, "600": 0, "1000": 0,
		"3000": 0, "6000": -1, "12000": -1, "14000": 2, "16000": 3,
	}},
	"electronic": {Preamp: -2, Bands: map[string]float64{
		"60": 6, "170": 5, "310": 1, "600": 0, "1000": -2,
		"3000": 2, "6000": 1, "12000": 3, "14000": 4, "16000": 5,
	}},
	"bass-boost": {Preamp: -3, Bands: map[string]float64{
		"60": 7, "170": 6, "310": 5, "600": 3,
	}},
	"vocal": {Bands: map[string]float64{
		"60": -2, "170": -1, "310": 1, "600": 3, "1000": 4,
		"3000": 4, "6000": 3, "12000": 1, "14000": 0, "16000": -1,
	}},
}

// PresetNames lists the built-in presets, sorted.
func PresetNames() []string {
	names := make([]string, 0, len(builtinPresets))
	for name := range builtinPresets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func normalizePresetName(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "-")
}

// EqualizerFilter builds the value for mpv's "af" property: one lavfi
// equalizer per band, over StandardBands plus any other frequency in bands.
// An all-zero curve yields "", which clears the filter chain.
func EqualizerFilter(bands map[string]float64, preamp float64) (string, error) {
	gains := make(map[float64]float64, len(StandardBands)+len(bands))
	for _, f := range StandardBands {
		gains[f] = 0
	}
	for key, gain := range bands {
		f, err := strconv.ParseFloat(strings.TrimSpace(key), 64)
		if err != nil || f <= 0 {
			return "", fmt.Errorf("invalid band frequency %q", key)
		}
		gains[f] = gain
	}

	freqs := make([]float64, 0, len(gains))
	flat := true
	for f, g := range gains {
		freqs = append(freqs, f)
		if g+preamp != 0 {
			flat = false
		}
	}
	if flat {
		return "", nil
	}
	sort.Float64s(freqs)

	parts := make([]string, 0, len(freqs))
	for _, f := range freqs {
		parts = append(parts, fmt.Sprintf("equalizer=f=%s:width_type=q:width=1:g=%.1f",
			strconv.FormatFloat(f, 'f', -1, 64), gains[f]+preamp))
	}
	return "lavfi=[" + strings.Join(parts, ",") + "]", nil
}

// SetEqualizer applies a gain curve; name is kept for Status.
func (p *Player) SetEqualizer(name string, bands map[string]float64, preamp float64) error {
	filter, err := EqualizerFilter(bands, preamp)
	if err != nil {
		return err
	}

	return p.locked(func() error {
		if p.closed {
			return ErrClosed
		}
		if err := p.instance.SetProperty("af", libmpv.FormatString, filter); err != nil {
			return p.fail(err)
		}
		p.eqName = name
		return nil
	})
}

// ApplyPreset looks name up in the configured presets, then the built-in
// ones. Lookup ignores case and treats spaces as dashes.
func (p *Player) ApplyPreset(name string) error {
	key := normalizePresetName(name)
	preset, ok := p.opts.Presets[key]
	if !ok {
		preset, ok = builtinPresets[key]
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownPreset, name)
	}
	return p.SetEqualizer(key, preset.Bands, preset.Preamp)
}

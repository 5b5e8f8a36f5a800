// Copyright 2023 The STMPS Authors
// SPDX-License-Identifier: GPL-3.0-only

package remote

import (
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/godbus/dbus/v5"
	"github.com/godbus/dbus/v5/introspect"
	"github.com/godbus/dbus/v5/prop"
	"github.com/spezifisch/mpvbridge/logger"
)

const (
	mprisPath      = "/org/mpris/MediaPlayer2"
	mprisInterface = "org.mpris.MediaPlayer2"
	playerIface    = "org.mpris.MediaPlayer2.Player"
	busName        = "org.mpris.MediaPlayer2.mpvbridge"

	noTrack = dbus.ObjectPath("/org/mpris/MediaPlayer2/TrackList/NoTrack")
)

// MPRIS PlaybackStatus values
const (
	StatusPlaying = "Playing"
	StatusPaused  = "Paused"
	StatusStopped = "Stopped"
)

type MprisPlayer struct {
	dbus   *dbus.Conn
	props  *prop.Properties
	player ControlledPlayer
	logger logger.LoggerInterface

	mu      sync.Mutex
	trackId dbus.ObjectPath
	trackNo int
	lastKey string
}

func RegisterMprisPlayer(player ControlledPlayer, logger_ logger.LoggerInterface) (mpp *MprisPlayer, err error) {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return
	}

	mpp = &MprisPlayer{
		dbus:    conn,
		player:  player,
		logger:  logger_,
		trackId: noTrack,
	}

	err = conn.ExportMethodTable(mpp.methods(), mprisPath, playerIface)
	if err != nil {
		conn.Close()
		return nil, err
	}
	err = conn.ExportMethodTable(map[string]interface{}{
		"Raise": func() *dbus.Error { return nil },
		"Quit":  func() *dbus.Error { return nil },
	}, mprisPath, mprisInterface)
	if err != nil {
		conn.Close()
		return nil, err
	}

	volume, err := player.Volume()
	if err != nil {
		logger_.PrintError("mpris: Volume", err)
		volume = 100
	}

	var mprisPlayer = map[string]*prop.Prop{
		"CanControl":     {Value: true, Writable: false, Emit: prop.EmitFalse, Callback: nil},
		"CanGoNext":      {Value: true, Writable: false, Emit: prop.EmitFalse, Callback: nil},
		"CanPause":       {Value: true, Writable: false, Emit: prop.EmitFalse, Callback: nil},
		"CanPlay":        {Value: true, Writable: false, Emit: prop.EmitFalse, Callback: nil},
		"CanSeek":        {Value: true, Writable: false, Emit: prop.EmitFalse, Callback: nil},
		"CanGoPrevious":  {Value: false, Writable: false, Emit: prop.EmitFalse, Callback: nil},
		"Metadata":       {Value: Metadata(nil, noTrack), Writable: false, Emit: prop.EmitTrue, Callback: nil},
		"Volume":         {Value: PercentToVolume(volume), Writable: true, Emit: prop.EmitTrue, Callback: mpp.volumeChange},
		"PlaybackStatus": {Value: StatusStopped, Writable: false, Emit: prop.EmitTrue, Callback: nil},
		"Rate":           {Value: 1.0, Writable: false, Emit: prop.EmitFalse, Callback: nil},
		"MinimumRate":    {Value: 1.0, Writable: false, Emit: prop.EmitFalse, Callback: nil},
		"MaximumRate":    {Value: 1.0, Writable: false, Emit: prop.EmitFalse, Callback: nil},
		"Position":       {Value: int64(0), Writable: false, Emit: prop.EmitFalse, Callback: nil},
	}

	var mediaPlayer = map[string]*prop.Prop{
		"CanQuit":             {Value: false, Writable: false, Emit: prop.EmitFalse, Callback: nil},
		"CanRaise":            {Value: false, Writable: false, Emit: prop.EmitFalse, Callback: nil},
		"HasTrackList":        {Value: false, Writable: false, Emit: prop.EmitFalse, Callback: nil},
		"Identity":            {Value: "mpvbridge", Writable: false, Emit: prop.EmitFalse, Callback: nil},
		"SupportedUriSchemes": {Value: []string{"file", "http", "https"}, Writable: false, Emit: prop.EmitFalse, Callback: nil},
		"SupportedMimeTypes":  {Value: []string{"audio/mpeg", "audio/flac", "audio/ogg", "audio/wav"}, Writable: false, Emit: prop.EmitFalse, Callback: nil},
	}

	props, err := prop.Export(
		conn,
		mprisPath,
		map[string]map[string]*prop.Prop{
			mprisInterface: mediaPlayer,
			playerIface:    mprisPlayer,
		},
	)
	if err != nil {
		conn.Close()
		return nil, err
	}
	mpp.props = props

	n := &introspect.Node{
		Name: mprisPath,
		Interfaces: []introspect.Interface{
			introspect.IntrospectData,
			prop.IntrospectData,
			{
				Name:       mprisInterface,
				Methods:    []introspect.Method{{Name: "Raise"}, {Name: "Quit"}},
				Properties: props.Introspection(mprisInterface),
			},
			{
				Name:       playerIface,
				Methods:    mpp.introspection(),
				Signals:    []introspect.Signal{{Name: "Seeked", Args: []introspect.Arg{{Name: "Position", Type: "x"}}}},
				Properties: props.Introspection(playerIface), // we implement the standard interface
			},
		},
	}
	err = conn.Export(introspect.NewIntrospectable(n), mprisPath, "org.freedesktop.DBus.Introspectable")
	if err != nil {
		conn.Close()
		return nil, err
	}

	// our unique name
	reply, err := conn.RequestName(busName, dbus.NameFlagDoNotQueue)
	if err != nil {
		conn.Close()
		return nil, err
	}
	if reply != dbus.RequestNameReplyPrimaryOwner {
		conn.Close()
		return nil, errors.New("name already owned")
	}

	player.OnPlaying(func() { mpp.OnPlaybackStatus(StatusPlaying) })
	player.OnPaused(func() { mpp.OnPlaybackStatus(StatusPaused) })
	player.OnStopped(func() { mpp.OnPlaybackStatus(StatusStopped) })
	player.OnSeek(mpp.OnSeek)
	player.OnPosition(mpp.OnPosition)
	player.OnSongChange(mpp.OnSongChange)
	return mpp, nil
}

func (m *MprisPlayer) methods() map[string]interface{} {
	return map[string]interface{}{
		"Next":        m.Next,
		"Previous":    m.Previous,
		"Pause":       m.Pause,
		"PlayPause":   m.PlayPause,
		"Stop":        m.Stop,
		"Play":        m.Play,
		"Seek":        m.Seek,
		"SetPosition": m.SetPosition,
		"OpenUri":     m.OpenUri,
	}
}

// introspection describes only the methods in the method table.
func (m *MprisPlayer) introspection() []introspect.Method {
	table := m.methods()
	var methods []introspect.Method
	for _, method := range introspect.Methods(m) {
		if _, ok := table[method.Name]; ok {
			methods = append(methods, method)
		}
	}
	return methods
}

func (m *MprisPlayer) Close() {
	if err := m.dbus.Close(); err != nil {
		m.logger.PrintError("mpp Close", err)
	}
}

// Mandatory functions
func (m *MprisPlayer) Stop() *dbus.Error {
	if err := m.player.Stop(); err != nil {
		m.logger.PrintError("mpp Stop", err)
		return dbus.MakeFailedError(err)
	}
	return nil
}

func (m *MprisPlayer) Next() *dbus.Error {
	if err := m.player.NextTrack(); err != nil {
		m.logger.PrintError("mpp NextTrack", err)
		return dbus.MakeFailedError(err)
	}
	return nil
}

// CanGoPrevious is false, so this does nothing
func (m *MprisPlayer) Previous() *dbus.Error {
	return nil
}

// set paused
func (m *MprisPlayer) Pause() *dbus.Error {
	if err := m.player.SetPause(true); err != nil {
		m.logger.PrintError("mpp Pause", err)
		return dbus.MakeFailedError(err)
	}
	return nil
}

// set playing
func (m *MprisPlayer) Play() *dbus.Error {
	if err := m.player.SetPause(false); err != nil {
		m.logger.PrintError("mpp Play", err)
		return dbus.MakeFailedError(err)
	}
	return nil
}

func (m *MprisPlayer) PlayPause() *dbus.Error {
	if err := m.player.Pause(); err != nil {
		m.logger.PrintError("mpp PlayPause", err)
		return dbus.MakeFailedError(err)
	}
	return nil
}

func (m *MprisPlayer) OpenUri(uri string) *dbus.Error {
	if err := m.player.Load(uri, nil); err != nil {
		m.logger.PrintError("mpp OpenUri", err)
		return dbus.MakeFailedError(err)
	}
	return nil
}

// Seek moves by offset microseconds.
func (m *MprisPlayer) Seek(offset int64) *dbus.Error {
	target := m.player.GetTimePos() + MicrosToSeconds(offset)
	if err := m.player.SeekSeconds(target); err != nil {
		m.logger.PrintError("mpp Seek", err)
		return dbus.MakeFailedError(err)
	}
	return nil
}

// SetPosition is ignored unless trackId is the current track.
func (m *MprisPlayer) SetPosition(trackId dbus.ObjectPath, position int64) *dbus.Error {
	m.mu.Lock()
	current := m.trackId
	m.mu.Unlock()

	if trackId != current || position < 0 {
		return nil
	}
	if err := m.player.SeekSeconds(MicrosToSeconds(position)); err != nil {
		m.logger.PrintError("mpp SetPosition", err)
		return dbus.MakeFailedError(err)
	}
	return nil
}

func (m *MprisPlayer) volumeChange(c *prop.Change) *dbus.Error {
	fVol, ok := c.Value.(float64)
	if !ok {
		return dbus.MakeFailedError(fmt.Errorf("volume must be a double, got %T", c.Value))
	}

	percentVol := VolumeToPercent(fVol)
	if err := m.player.SetVolume(percentVol); err != nil {
		m.logger.PrintError("volumeChange", err)
		return dbus.MakeFailedError(err)
	}
	m.logger.Printf("mpris: adjust volume %f -> %d%%", fVol, percentVol)
	return nil
}

// OnPlaybackStatus publishes one of StatusPlaying, StatusPaused or StatusStopped.
func (m *MprisPlayer) OnPlaybackStatus(status string) {
	m.props.SetMust(playerIface, "PlaybackStatus", status)
	if status == StatusStopped {
		m.OnSongChange(nil)
	}
}

// OnSeek emits Seeked with the new position.
func (m *MprisPlayer) OnSeek() {
	position := SecondsToMicros(m.player.GetTimePos())
	m.props.SetMust(playerIface, "Position", position)
	if err := m.dbus.Emit(mprisPath, playerIface+".Seeked", position); err != nil {
		m.logger.PrintError("mpris: Emit Seeked", err)
	}
}

// OnPosition keeps Position current. Clients are not notified, as MPRIS
// only signals jumps through Seeked.
func (m *MprisPlayer) OnPosition(seconds float64) {
	m.props.SetMust(playerIface, "Position", SecondsToMicros(seconds))
}

// OnSongChange method to be called by eventLoop
func (m *MprisPlayer) OnSongChange(currentSong TrackInterface) {
	m.mu.Lock()
	switch key := trackKey(currentSong); {
	case key == "":
		m.trackId = noTrack
		m.lastKey = ""
	case key != m.lastKey:
		// pause and resume report the same track again
		m.trackNo++
		m.trackId = dbus.ObjectPath(fmt.Sprintf("/org/mpris/MediaPlayer2/mpvbridge/track/%d", m.trackNo))
		m.lastKey = key
	}
	trackId := m.trackId
	m.mu.Unlock()

	metadata := Metadata(currentSong, trackId)
	m.logger.Printf("mpris: metadata %+v", metadata)
	m.props.SetMust(playerIface, "Metadata", metadata)
}

func trackKey(track TrackInterface) string {
	if track == nil || !track.IsValid() {
		return ""
	}
	if u, ok := track.(interface{ GetUri() string }); ok {
		return u.GetUri()
	}
	return track.GetArtist() + "\x00" + track.GetTitle()
}

// Metadata builds the MPRIS Metadata map for track, which may be nil.
func Metadata(track TrackInterface, trackId dbus.ObjectPath) map[string]dbus.Variant {
	if track == nil || !track.IsValid() {
		return map[string]dbus.Variant{
			"mpris:trackid": dbus.MakeVariant(noTrack),
		}
	}

	metadata := map[string]dbus.Variant{
		"mpris:trackid": dbus.MakeVariant(trackId),
		"mpris:length":  dbus.MakeVariant(int64(track.GetDuration()) * 1000000), // duration in microseconds
		"xesam:title":   dbus.MakeVariant(track.GetTitle()),
	}
	if artist := track.GetArtist(); artist != "" {
		metadata["xesam:artist"] = dbus.MakeVariant([]string{artist})
	}
	if u, ok := track.(interface{ GetUri() string }); ok {
		metadata["xesam:url"] = dbus.MakeVariant(u.GetUri())
	}
	return metadata
}

// VolumeToPercent converts MPRIS volume (1.0 is full) to percent, clamped
// to 0..100.
func VolumeToPercent(volume float64) int64 {
	percent := int64(math.Round(volume * 100))
	if percent < 0 {
		return 0
	}
	if percent > 100 {
		return 100
	}
	return percent
}

func PercentToVolume(percent int64) float64 {
	return float64(percent) / 100
}

func SecondsToMicros(seconds float64) int64 {
	return int64(math.Round(seconds * 1e6))
}

func MicrosToSeconds(micros int64) float64 {
	return float64(micros) / 1e6
}

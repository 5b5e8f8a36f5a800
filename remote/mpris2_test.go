package remote

import (
	"testing"

	"github.com/godbus/dbus/v5"
	"github.com/stretchr/testify/assert"
)

type track struct {
	artist, title, uri string
	duration           int
}

func (t *track) GetArtist() string { return t.artist }
func (t *track) GetTitle() string  { return t.title }
func (t *track) GetDuration() int  { return t.duration }
func (t *track) GetUri() string    { return t.uri }
func (t *track) IsValid() bool     { return t.uri != "" }

func TestMetadata(t *testing.T) {
	id := dbus.ObjectPath("/org/mpris/MediaPlayer2/mpvbridge/track/1")
	md := Metadata(&track{artist: "Artist", title: "Song", uri: "file:///song.flac", duration: 215}, id)

	assert.Equal(t, id, md["mpris:trackid"].Value())
	assert.Equal(t, int64(215000000), md["mpris:length"].Value())
	assert.Equal(t, "Song", md["xesam:title"].Value())
	assert.Equal(t, []string{"Artist"}, md["xesam:artist"].Value())
	assert.Equal(t, "file:///song.flac", md["xesam:url"].Value())

	md = Metadata(&track{title: "No artist", uri: "x"}, id)
	assert.NotContains(t, md, "xesam:artist")
}

func TestMetadataNoTrack(t *testing.T) {
	for _, tr := range []TrackInterface{nil, &track{title: "invalid"}} {
		md := Metadata(tr, "/ignored")
		assert.Len(t, md, 1)
		assert.Equal(t, noTrack, md["mpris:trackid"].Value())
	}
}

func TestTrackKey(t *testing.T) {
	assert.Empty(t, trackKey(nil))
	assert.Empty(t, trackKey(&track{title: "invalid"}))
	assert.Equal(t, "file:///a.flac", trackKey(&track{uri: "file:///a.flac"}))
}

func TestVolumeConversion(t *testing.T) {
	testCases := []struct {
		volume  float64
		percent int64
	}{
		{0, 0},
		{0.5, 50},
		{0.333, 33},
		{1, 100},
		{1.7, 100},
		{-0.2, 0},
	}
	for _, tc := range testCases {
		assert.Equal(t, tc.percent, VolumeToPercent(tc.volume), "%v", tc.volume)
	}
	assert.Equal(t, 0.42, PercentToVolume(42))
}

func TestTimeConversion(t *testing.T) {
	assert.Equal(t, int64(1500000), SecondsToMicros(1.5))
	assert.Equal(t, 2.25, MicrosToSeconds(2250000))
	assert.Equal(t, -10.0, MicrosToSeconds(-10000000))
}

func TestIntrospectionMatchesMethodTable(t *testing.T) {
	m := &MprisPlayer{}
	names := map[string]bool{}
	for _, method := range m.introspection() {
		names[method.Name] = true
	}
	assert.Len(t, names, len(m.methods()))
	assert.True(t, names["SetPosition"])
	assert.False(t, names["OnSongChange"])
}

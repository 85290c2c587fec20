package score

import (
	"archive/zip"
	"bytes"
	"testing"

	"github.com/jsphweid/fingerbot/model"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

// one quarter per second, half-quarter divisions
const testScore = `<?xml version="1.0" encoding="UTF-8"?>
<score-partwise version="3.1">
  <part-list><score-part id="P1"><part-name>Flute</part-name></score-part></part-list>
  <part id="P1">
    <measure number="1">
      <attributes><divisions>2</divisions></attributes>
      <direction><sound tempo="60"/></direction>
      <note><pitch><step>C</step><octave>4</octave></pitch><duration>2</duration></note>
      <note><chord/><pitch><step>E</step><octave>4</octave></pitch><duration>2</duration></note>
      <note><grace/><pitch><step>D</step><octave>4</octave></pitch></note>
      <note><pitch><step>G</step><octave>4</octave></pitch><duration>2</duration><tie type="start"/></note>
    </measure>
    <measure number="2">
      <note><pitch><step>G</step><octave>4</octave></pitch><duration>2</duration><tie type="stop"/></note>
      <backup><duration>2</duration></backup>
      <note><pitch><step>B</step><alter>-1</alter><octave>3</octave></pitch><duration>1</duration></note>
      <note><rest/><duration>1</duration></note>
    </measure>
  </part>
</score-partwise>`

var testSchedule = model.Schedule{Groups: []model.Group{
	{Timestamp: 0, Events: []model.NoteEvent{
		{Name: "C", Octave: 4, Duration: 1},
		{Name: "E", Octave: 4, Duration: 1},
	}},
	{Timestamp: 1, Events: []model.NoteEvent{
		{Name: "G", Octave: 4, Duration: 2},
	}},
	{Timestamp: 2, Events: []model.NoteEvent{
		{Name: "A#", Octave: 3, Duration: 0.5},
	}},
}}

func writeFile(t *testing.T, fs afero.Fs, path string, data []byte) {
	require.NoError(t, afero.WriteFile(fs, path, data, 0644))
}

func TestDecodeMidi(t *testing.T) {
	s := smf.New()
	s.TimeFormat = smf.MetricTicks(480)
	var tr smf.Track
	tr.Add(0, smf.MetaTempo(120))
	tr.Add(0, gomidi.NoteOn(0, 60, 100))
	tr.Add(0, gomidi.NoteOn(0, 64, 100))
	tr.Add(480, gomidi.NoteOff(0, 60))
	tr.Add(0, gomidi.NoteOff(0, 64))
	tr.Add(480, gomidi.NoteOn(0, 67, 100))
	tr.Add(240, gomidi.NoteOff(0, 67))
	tr.Close(0)
	require.NoError(t, s.Add(tr))
	var buf bytes.Buffer
	_, err := s.WriteTo(&buf)
	require.NoError(t, err)

	fs := afero.NewMemMapFs()
	writeFile(t, fs, "/songs/song.mid", buf.Bytes())

	schedule, err := NewDecoder(fs).Decode("/songs/song.mid")
	require.NoError(t, err)
	assert.Equal(t, model.Schedule{Groups: []model.Group{
		{Timestamp: 0, Events: []model.NoteEvent{
			{Name: "C", Octave: 4, Duration: 0.5},
			{Name: "E", Octave: 4, Duration: 0.5},
		}},
		{Timestamp: 1, Events: []model.NoteEvent{
			{Name: "G", Octave: 4, Duration: 0.25},
		}},
	}}, schedule)
}

func TestDecodeMusicXML(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFile(t, fs, "/songs/piece.musicxml", []byte(testScore))

	schedule, err := NewDecoder(fs).Decode("/songs/piece.musicxml")
	require.NoError(t, err)
	assert.Equal(t, testSchedule, schedule)
}

func TestDecodeMusicXMLDefaultsTo120BPM(t *testing.T) {
	doc := `<score-partwise><part id="P1"><measure number="1">
		<attributes><divisions>1</divisions></attributes>
		<note><pitch><step>A</step><octave>4</octave></pitch><duration>1</duration></note>
		<note><pitch><step>B</step><octave>4</octave></pitch><duration>1</duration></note>
	</measure></part></score-partwise>`
	fs := afero.NewMemMapFs()
	writeFile(t, fs, "/a.xml", []byte(doc))

	schedule, err := NewDecoder(fs).Decode("/a.xml")
	require.NoError(t, err)
	assert.Equal(t, model.Schedule{Groups: []model.Group{
		{Timestamp: 0, Events: []model.NoteEvent{{Name: "A", Octave: 4, Duration: 0.5}}},
		{Timestamp: 0.5, Events: []model.NoteEvent{{Name: "B", Octave: 4, Duration: 0.5}}},
	}}, schedule)
}

func TestDecodeCompressedMusicXML(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("META-INF/container.xml")
	require.NoError(t, err)
	_, err = w.Write([]byte(`<container><rootfiles><rootfile full-path="score/piece.xml"/></rootfiles></container>`))
	require.NoError(t, err)
	w, err = zw.Create("score/piece.xml")
	require.NoError(t, err)
	_, err = w.Write([]byte(testScore))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	fs := afero.NewMemMapFs()
	writeFile(t, fs, "/piece.mxl", buf.Bytes())

	schedule, err := NewDecoder(fs).Decode("/piece.mxl")
	require.NoError(t, err)
	assert.Equal(t, testSchedule, schedule)
}

func TestDecodeFailures(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFile(t, fs, "/broken.mid", []byte("MThd but not really"))
	writeFile(t, fs, "/broken.xml", []byte("<score-partwise><part"))
	writeFile(t, fs, "/broken.mxl", []byte("not a zip"))
	writeFile(t, fs, "/song.wav", []byte("RIFF"))
	d := NewDecoder(fs)

	assert := assert.New(t)
	for _, path := range []string{"/broken.mid", "/broken.xml", "/broken.mxl", "/missing.mid"} {
		_, err := d.Decode(path)
		assert.ErrorIs(err, model.ErrDecode, path)
	}
	_, err := d.Decode("/song.wav")
	assert.ErrorIs(err, model.ErrUnsupportedFormat)
}

package score

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"math"
	"path"
	"sort"
	"strings"

	"github.com/jsphweid/fingerbot/midi"
	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

// MusicXML is rendered to a standard midi file at this resolution and then
// decoded like any other .mid.
const ticksPerQuarter = 960

const defaultBPM = 120

type scorePartwise struct {
	XMLName xml.Name  `xml:"score-partwise"`
	Parts   []xmlPart `xml:"part"`
}

type xmlPart struct {
	ID       string       `xml:"id,attr"`
	Measures []xmlMeasure `xml:"measure"`
}

type xmlMeasure struct {
	Number   string       `xml:"number,attr"`
	Elements []xmlElement `xml:",any"`
}

// xmlElement is any child of <measure>. Only the fields relevant to the
// element named by XMLName are populated.
type xmlElement struct {
	XMLName xml.Name

	Pitch    *xmlPitch `xml:"pitch"`
	Rest     *struct{} `xml:"rest"`
	Chord    *struct{} `xml:"chord"`
	Grace    *struct{} `xml:"grace"`
	Duration int64     `xml:"duration"`
	Ties     []xmlTie  `xml:"tie"`

	Divisions int64 `xml:"divisions"`

	Sound *xmlSound `xml:"sound"`
	Tempo float64   `xml:"tempo,attr"`
}

type xmlPitch struct {
	Step   string  `xml:"step"`
	Alter  float64 `xml:"alter"`
	Octave int     `xml:"octave"`
}

type xmlTie struct {
	Type string `xml:"type,attr"`
}

type xmlSound struct {
	Tempo float64 `xml:"tempo,attr"`
}

type container struct {
	Rootfiles []struct {
		FullPath string `xml:"full-path,attr"`
	} `xml:"rootfiles>rootfile"`
}

type xmlNote struct {
	pitch uint8
	start int64
	end   int64
}

type tempoMark struct {
	tick int64
	bpm  float64
}

func parseMusicXML(r io.Reader) (*scorePartwise, error) {
	var doc scorePartwise
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("Error parsing musicxml... %w", err)
	}
	if len(doc.Parts) == 0 {
		return nil, errors.New("Error parsing musicxml... no parts")
	}
	return &doc, nil
}

func unzipMusicXML(dat []byte) (*scorePartwise, error) {
	zr, err := zip.NewReader(bytes.NewReader(dat), int64(len(dat)))
	if err != nil {
		return nil, fmt.Errorf("Error opening mxl archive... %w", err)
	}

	files := make(map[string]*zip.File)
	for _, f := range zr.File {
		files[f.Name] = f
	}

	root := ""
	if c, ok := files["META-INF/container.xml"]; ok {
		rc, err := c.Open()
		if err != nil {
			return nil, err
		}
		var ct container
		err = xml.NewDecoder(rc).Decode(&ct)
		rc.Close()
		if err == nil && len(ct.Rootfiles) > 0 {
			root = ct.Rootfiles[0].FullPath
		}
	}
	if root == "" {
		for _, f := range zr.File {
			ext := strings.ToLower(path.Ext(f.Name))
			if !strings.HasPrefix(f.Name, "META-INF/") && (ext == ".xml" || ext == ".musicxml") {
				root = f.Name
				break
			}
		}
	}

	f, ok := files[root]
	if !ok {
		return nil, errors.New("Error opening mxl archive... no score document")
	}
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return parseMusicXML(rc)
}

func pitchOf(p *xmlPitch) (uint8, error) {
	name := strings.TrimSpace(p.Step)
	alter := int(math.Round(p.Alter))
	for ; alter > 0; alter-- {
		name += "#"
	}
	for ; alter < 0; alter++ {
		name += "b"
	}
	return midi.PitchOf(name, p.Octave)
}

func hasTie(ties []xmlTie, kind string) bool {
	for _, t := range ties {
		if t.Type == kind {
			return true
		}
	}
	return false
}

// collectPart walks one part in document order. backup/forward move the
// cursor for multi-voice measures, chord notes reuse the previous start,
// and tied notes are merged into one sounding note.
func collectPart(part xmlPart, tempos *[]tempoMark) ([]xmlNote, error) {
	var notes []xmlNote
	tied := make(map[uint8]*xmlNote)
	divisions := int64(1)
	var cursor, lastStart int64

	ticks := func(d int64) int64 {
		return d * ticksPerQuarter / divisions
	}

	for _, m := range part.Measures {
		for _, el := range m.Elements {
			switch el.XMLName.Local {
			case "attributes":
				if el.Divisions > 0 {
					divisions = el.Divisions
				}
			case "direction":
				if el.Sound != nil && el.Sound.Tempo > 0 {
					*tempos = append(*tempos, tempoMark{cursor, el.Sound.Tempo})
				}
			case "sound":
				if el.Tempo > 0 {
					*tempos = append(*tempos, tempoMark{cursor, el.Tempo})
				}
			case "backup":
				cursor -= ticks(el.Duration)
				if cursor < 0 {
					return nil, fmt.Errorf("measure %s: backup before start of part %s", m.Number, part.ID)
				}
			case "forward":
				cursor += ticks(el.Duration)
			case "note":
				if el.Grace != nil {
					continue
				}
				dur := ticks(el.Duration)
				start := cursor
				if el.Chord != nil {
					start = lastStart
				} else {
					cursor += dur
				}
				lastStart = start
				if el.Rest != nil || el.Pitch == nil {
					continue
				}

				pitch, err := pitchOf(el.Pitch)
				if err != nil {
					return nil, fmt.Errorf("measure %s: %w", m.Number, err)
				}
				if prev, ok := tied[pitch]; ok && hasTie(el.Ties, "stop") {
					prev.end = start + dur
					if !hasTie(el.Ties, "start") {
						notes = append(notes, *prev)
						delete(tied, pitch)
					}
					continue
				}
				n := xmlNote{pitch: pitch, start: start, end: start + dur}
				if hasTie(el.Ties, "start") {
					tied[pitch] = &n
					continue
				}
				notes = append(notes, n)
			}
		}
	}
	for _, n := range tied {
		notes = append(notes, *n)
	}
	return notes, nil
}

type timedMsg struct {
	tick  int64
	off   bool
	bytes []byte
}

func addTimed(track *smf.Track, msgs []timedMsg) {
	// note offs go first on a shared tick so repeated pitches pair up
	sort.SliceStable(msgs, func(i, j int) bool {
		if msgs[i].tick != msgs[j].tick {
			return msgs[i].tick < msgs[j].tick
		}
		return msgs[i].off && !msgs[j].off
	})
	var last int64
	for _, m := range msgs {
		track.Add(uint32(m.tick-last), m.bytes)
		last = m.tick
	}
	track.Close(0)
}

// toSMF renders the parsed score into a standard midi file and reads it
// back so the result carries the same tempo map a .mid would.
func toSMF(doc *scorePartwise) (*smf.SMF, error) {
	var tempos []tempoMark
	var parts [][]xmlNote
	for _, p := range doc.Parts {
		notes, err := collectPart(p, &tempos)
		if err != nil {
			return nil, err
		}
		parts = append(parts, notes)
	}

	sm := smf.New()
	sm.TimeFormat = smf.MetricTicks(ticksPerQuarter)

	sort.SliceStable(tempos, func(i, j int) bool { return tempos[i].tick < tempos[j].tick })
	if len(tempos) == 0 || tempos[0].tick > 0 {
		tempos = append([]tempoMark{{0, defaultBPM}}, tempos...)
	}
	var tempoMsgs []timedMsg
	for _, t := range tempos {
		tempoMsgs = append(tempoMsgs, timedMsg{tick: t.tick, bytes: smf.MetaTempo(t.bpm)})
	}
	var track0 smf.Track
	addTimed(&track0, tempoMsgs)
	if err := sm.Add(track0); err != nil {
		return nil, fmt.Errorf("error adding tempo track: %w", err)
	}

	for i, notes := range parts {
		ch := uint8(i % 16)
		var msgs []timedMsg
		for _, n := range notes {
			if n.end <= n.start {
				continue
			}
			msgs = append(msgs,
				timedMsg{tick: n.start, bytes: gomidi.NoteOn(ch, n.pitch, 100)},
				timedMsg{tick: n.end, off: true, bytes: gomidi.NoteOff(ch, n.pitch)},
			)
		}
		var track smf.Track
		addTimed(&track, msgs)
		if err := sm.Add(track); err != nil {
			return nil, fmt.Errorf("error adding track %d: %w", i, err)
		}
	}

	var buf bytes.Buffer
	if _, err := sm.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("error writing midi: %w", err)
	}
	return midi.ReadMidi(&buf)
}

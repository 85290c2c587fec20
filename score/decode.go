package score

import (
	"fmt"

	logging "github.com/ipfs/go-log/v2"
	"github.com/jsphweid/fingerbot/midi"
	"github.com/jsphweid/fingerbot/model"
	"github.com/spf13/afero"
	"gitlab.com/gomidi/midi/v2/smf"
)

var log = logging.Logger("score")

// Decoder turns stored score files into playback schedules.
type Decoder struct {
	fs afero.Fs
}

func NewDecoder(fs afero.Fs) *Decoder {
	return &Decoder{fs: fs}
}

func (d *Decoder) Decode(path string) (model.Schedule, error) {
	format, err := FormatOf(path)
	if err != nil {
		return model.Schedule{}, err
	}

	var s *smf.SMF
	switch format {
	case FormatMIDI:
		s, err = midi.ReadMidiFile(d.fs, path)
	case FormatMusicXML:
		s, err = d.readMusicXML(path)
	case FormatCompressedMusicXML:
		s, err = d.readCompressedMusicXML(path)
	}
	if err != nil {
		return model.Schedule{}, fmt.Errorf("%w: %s: %v", model.ErrDecode, path, err)
	}

	schedule := Group(midi.GetTriples(s))
	log.Debugw("decoded score", "path", path, "format", format.String(),
		"groups", schedule.Len(), "notes", schedule.NumEvents(), "end", schedule.End())
	return schedule, nil
}

func (d *Decoder) readMusicXML(path string) (*smf.SMF, error) {
	f, err := d.fs.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	doc, err := parseMusicXML(f)
	if err != nil {
		return nil, err
	}
	return toSMF(doc)
}

func (d *Decoder) readCompressedMusicXML(path string) (*smf.SMF, error) {
	dat, err := afero.ReadFile(d.fs, path)
	if err != nil {
		return nil, err
	}
	doc, err := unzipMusicXML(dat)
	if err != nil {
		return nil, err
	}
	return toSMF(doc)
}

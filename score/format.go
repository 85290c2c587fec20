package score

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/jsphweid/fingerbot/model"
)

// Format is the closed set of score encodings the device can play.
type Format int

const (
	FormatMIDI Format = iota + 1
	FormatMusicXML
	FormatCompressedMusicXML
)

func (f Format) String() string {
	switch f {
	case FormatMIDI:
		return "midi"
	case FormatMusicXML:
		return "musicxml"
	case FormatCompressedMusicXML:
		return "mxl"
	}
	return "unknown"
}

var extensions = map[string]Format{
	".mid":      FormatMIDI,
	".midi":     FormatMIDI,
	".musicxml": FormatMusicXML,
	".xml":      FormatMusicXML,
	".mxl":      FormatCompressedMusicXML,
}

func FormatOf(path string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if f, ok := extensions[ext]; ok {
		return f, nil
	}
	return 0, fmt.Errorf("%w: %q", model.ErrUnsupportedFormat, ext)
}

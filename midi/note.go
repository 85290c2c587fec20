package midi

import (
	"fmt"
	"strings"
)

var noteNames = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// NoteName splits a MIDI pitch into a sharp-spelled name and octave, with
// 60 being C4.
func NoteName(pitch uint8) (string, int) {
	return noteNames[pitch%12], int(pitch)/12 - 1
}

// PitchOf is the inverse of NoteName. Flats are accepted as well.
func PitchOf(name string, octave int) (uint8, error) {
	if name == "" {
		return 0, fmt.Errorf("empty note name")
	}
	step := strings.ToUpper(name[:1])
	base := -1
	for i, n := range noteNames {
		if n == step {
			base = i
			break
		}
	}
	if base < 0 {
		return 0, fmt.Errorf("unknown note name %q", name)
	}
	for _, accidental := range name[1:] {
		switch accidental {
		case '#':
			base++
		case 'b', '-':
			base--
		default:
			return 0, fmt.Errorf("unknown accidental in %q", name)
		}
	}
	pitch := (octave+1)*12 + base
	if pitch < 0 || pitch > 127 {
		return 0, fmt.Errorf("note %s%d out of midi range", name, octave)
	}
	return uint8(pitch), nil
}

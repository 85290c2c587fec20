package actuator

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jsphweid/fingerbot/midi"
)

// MotorMapping lists the notes a motor can finger. A note written without
// an octave ("C#") matches that pitch class in any octave; one written with
// an octave ("C#5") matches only that pitch.
type MotorMapping struct {
	ID    int      `yaml:"id"`
	Notes []string `yaml:"notes"`
}

type mappedNote struct {
	motor     int
	pitch     uint8
	anyOctave bool
}

// Resolver maps note names to motor ids. Exact pitch entries win over
// any-octave entries; within each kind the first configured motor wins.
type Resolver struct {
	entries []mappedNote
}

func NewResolver(mappings []MotorMapping) (*Resolver, error) {
	r := &Resolver{}
	for _, m := range mappings {
		for _, n := range m.Notes {
			e, err := parseMappedNote(n)
			if err != nil {
				return nil, fmt.Errorf("motor %d: %w", m.ID, err)
			}
			e.motor = m.ID
			r.entries = append(r.entries, e)
		}
	}
	return r, nil
}

func parseMappedNote(s string) (mappedNote, error) {
	s = strings.TrimSpace(s)
	i := len(s)
	for i > 0 && (s[i-1] >= '0' && s[i-1] <= '9') {
		i--
	}
	name, octaveText := s[:i], s[i:]
	if octaveText == "" {
		p, err := midi.PitchOf(name, 4)
		if err != nil {
			return mappedNote{}, err
		}
		return mappedNote{pitch: p % 12, anyOctave: true}, nil
	}
	octave, err := strconv.Atoi(octaveText)
	if err != nil {
		return mappedNote{}, fmt.Errorf("bad octave in %q", s)
	}
	p, err := midi.PitchOf(name, octave)
	if err != nil {
		return mappedNote{}, err
	}
	return mappedNote{pitch: p}, nil
}

// Resolve returns the motor for a note, or false when none is mapped.
func (r *Resolver) Resolve(name string, octave int) (int, bool) {
	p, err := midi.PitchOf(name, octave)
	if err != nil {
		return 0, false
	}
	for _, e := range r.entries {
		if !e.anyOctave && e.pitch == p {
			return e.motor, true
		}
	}
	for _, e := range r.entries {
		if e.anyOctave && e.pitch == p%12 {
			return e.motor, true
		}
	}
	return 0, false
}

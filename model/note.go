package model

// NoteEvent is a single decoded note. Duration is in seconds.
type NoteEvent struct {
	Name     string
	Octave   int
	Duration float64
}

// Triple is what a score decoder produces before grouping: a MIDI pitch
// with absolute start and end times in seconds.
type Triple struct {
	Pitch uint8
	Start float64
	End   float64
}

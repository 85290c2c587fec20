package score

import (
	"github.com/jsphweid/fingerbot/midi"
	"github.com/jsphweid/fingerbot/model"
	"github.com/jsphweid/fingerbot/util"
)

// Group buckets triples by start time. The key is the start rounded to
// whole milliseconds, the same rounding the decoders apply, so two starts
// that print the same never land in different groups.
func Group(triples []model.Triple) model.Schedule {
	byStart := make(map[int64][]model.NoteEvent)
	for _, t := range triples {
		start := util.Millis(t.Start)
		name, octave := midi.NoteName(t.Pitch)
		byStart[start] = append(byStart[start], model.NoteEvent{
			Name:     name,
			Octave:   octave,
			Duration: util.Seconds(util.Millis(t.End) - start),
		})
	}

	var res model.Schedule
	for _, start := range util.GetKeysSorted(byStart) {
		res.Groups = append(res.Groups, model.Group{
			Timestamp: util.Seconds(start),
			Events:    byStart[start],
		})
	}
	return res
}

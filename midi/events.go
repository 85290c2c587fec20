package midi

import (
	"sort"

	"github.com/jsphweid/fingerbot/model"
	"github.com/jsphweid/fingerbot/util"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

type noteKey struct {
	channel uint8
	key     uint8
}

// GetTriples pairs note starts with note ends across all tracks. Times are
// rounded to whole milliseconds. Notes that never end are dropped.
func GetTriples(s *smf.SMF) []model.Triple {
	var res []model.Triple

	for _, events := range s.Tracks {
		var absTicks int64
		open := make(map[noteKey][]int64)
		for _, event := range events {
			absTicks += int64(event.Delta)
			absTime := s.TimeAt(absTicks)
			msg := midi.Message(event.Message)
			var channel, key, velocity uint8
			switch {
			case msg.GetNoteStart(&channel, &key, &velocity):
				k := noteKey{channel, key}
				open[k] = append(open[k], absTime)
			case msg.GetNoteEnd(&channel, &key):
				k := noteKey{channel, key}
				starts := open[k]
				if len(starts) == 0 {
					continue
				}
				// first in, first out, like overlapping notes on a keyboard
				start := starts[0]
				open[k] = starts[1:]
				res = append(res, model.Triple{
					Pitch: key,
					Start: util.Seconds(util.Millis(float64(start) / 1e6)),
					End:   util.Seconds(util.Millis(float64(absTime) / 1e6)),
				})
			}
		}
	}

	sort.SliceStable(res, func(i, j int) bool {
		return res[i].Start < res[j].Start
	})
	return res
}

package model

type Group struct {
	Timestamp float64
	Events    []NoteEvent
}

// Schedule is ordered by strictly ascending Timestamp with no duplicates.
type Schedule struct {
	Groups []Group
}

func (s Schedule) Len() int {
	return len(s.Groups)
}

// NumEvents counts notes across all groups.
func (s Schedule) NumEvents() int {
	var n int
	for _, g := range s.Groups {
		n += len(g.Events)
	}
	return n
}

// End is the timestamp of the last group, or 0 for an empty schedule.
func (s Schedule) End() float64 {
	if len(s.Groups) == 0 {
		return 0
	}
	return s.Groups[len(s.Groups)-1].Timestamp
}

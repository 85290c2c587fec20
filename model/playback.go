package model

import "fmt"

type PlaybackState int

const (
	Idle PlaybackState = iota
	Scheduled
	Paused
	Completed
	Cancelled
)

func (s PlaybackState) String() string {
	switch s {
	case Idle:
		return "idle"
	case Scheduled:
		return "scheduled"
	case Paused:
		return "paused"
	case Completed:
		return "completed"
	case Cancelled:
		return "cancelled"
	}
	return "unknown"
}

func (s PlaybackState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *PlaybackState) UnmarshalText(b []byte) error {
	for st := Idle; st <= Cancelled; st++ {
		if st.String() == string(b) {
			*s = st
			return nil
		}
	}
	return fmt.Errorf("unknown playback state %q", b)
}

// PlaybackStatus is a point-in-time copy of the scheduler's state.
type PlaybackStatus struct {
	State        PlaybackState `json:"state"`
	RunID        string        `json:"run_id,omitempty"`
	SourcePath   string        `json:"source_path,omitempty"`
	HasResume    bool          `json:"has_resume"`
	ResumeOffset float64       `json:"resume_offset"`
}

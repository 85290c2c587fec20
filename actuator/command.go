package actuator

import (
	"fmt"

	"github.com/jsphweid/fingerbot/model"
)

// Command is one instruction for a single motor board.
type Command struct {
	Motor int
	Type  byte
	Note  model.NoteEvent
}

func (c Command) String() string {
	return fmt.Sprintf("motor=%d type=%d note=%s%d dur=%.3fs", c.Motor, c.Type, c.Note.Name, c.Note.Octave, c.Note.Duration)
}

// Driver delivers commands to physical actuators.
type Driver interface {
	Send(cmd Command) error
	Close() error
}

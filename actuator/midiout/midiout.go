// Package midiout plays motor commands as notes on a MIDI output port so a
// score can be checked on a synth before the motors are connected. The
// motor id picks the channel.
package midiout

import (
	"fmt"
	"strings"
	"sync"
	"time"

	logging "github.com/ipfs/go-log/v2"
	"github.com/jsphweid/fingerbot/actuator"
	fmidi "github.com/jsphweid/fingerbot/midi"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	"gitlab.com/gomidi/midi/v2/drivers/rtmididrv"
)

var log = logging.Logger("midiout")

type Driver struct {
	mu  sync.Mutex
	drv *rtmididrv.Driver
	out drivers.Out
}

// Open connects to the first output port whose name contains portName.
func Open(portName string) (*Driver, error) {
	drv, err := rtmididrv.New()
	if err != nil {
		return nil, fmt.Errorf("rtmididrv: %w", err)
	}
	outs, err := drv.Outs()
	if err != nil {
		drv.Close()
		return nil, err
	}
	for _, o := range outs {
		if strings.Contains(strings.ToLower(o.String()), strings.ToLower(portName)) {
			if err := o.Open(); err != nil {
				drv.Close()
				return nil, fmt.Errorf("open %q: %w", o.String(), err)
			}
			log.Infow("midi out connected", "port", o.String())
			return &Driver{drv: drv, out: o}, nil
		}
	}
	drv.Close()
	return nil, fmt.Errorf("midi output %q not found", portName)
}

func (d *Driver) Send(cmd actuator.Command) error {
	key, err := fmidi.PitchOf(cmd.Note.Name, cmd.Note.Octave)
	if err != nil {
		return err
	}
	ch := uint8(cmd.Motor % 16)
	if err := d.send(midi.NoteOn(ch, key, 100)); err != nil {
		return err
	}
	time.AfterFunc(time.Duration(cmd.Note.Duration*float64(time.Second)), func() {
		if err := d.send(midi.NoteOff(ch, key)); err != nil {
			log.Warnw("note off failed", "channel", ch, "key", key, "err", err)
		}
	})
	return nil
}

func (d *Driver) send(msg midi.Message) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.out == nil {
		return fmt.Errorf("midi output closed")
	}
	return d.out.Send(msg.Bytes())
}

func (d *Driver) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	var err error
	if d.out != nil {
		err = d.out.Close()
		d.out = nil
	}
	d.drv.Close()
	return err
}

var _ actuator.Driver = (*Driver)(nil)

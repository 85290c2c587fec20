package actuator

import (
	"fmt"
	"math"
	"sync"

	logging "github.com/ipfs/go-log/v2"
	"github.com/jsphweid/fingerbot/midi"
	"go.bug.st/serial"
)

var log = logging.Logger("actuator")

// SerialDriver sends framed commands to the motor controller board.
type SerialDriver struct {
	mu   sync.Mutex
	port serial.Port
}

// OpenSerial opens the named serial device at the given baud rate.
func OpenSerial(name string, baud int) (*SerialDriver, error) {
	mode := &serial.Mode{BaudRate: baud}
	p, err := serial.Open(name, mode)
	if err != nil {
		return nil, fmt.Errorf("serial: open %s: %w", name, err)
	}
	log.Infow("serial port opened", "device", name, "baud", baud)
	return &SerialDriver{port: p}, nil
}

func EncodeCommand(cmd Command) (Frame, error) {
	pitch, err := midi.PitchOf(cmd.Note.Name, cmd.Note.Octave)
	if err != nil {
		return Frame{}, err
	}
	if cmd.Motor < 0 || cmd.Motor > math.MaxUint8 {
		return Frame{}, fmt.Errorf("motor id %d does not fit a frame", cmd.Motor)
	}
	tenths := math.Round(cmd.Note.Duration * 10)
	if tenths < 0 {
		tenths = 0
	}
	if tenths > math.MaxUint16 {
		tenths = math.MaxUint16
	}
	return Frame{
		Motor:          byte(cmd.Motor),
		Cmd:            cmd.Type,
		Pitch:          pitch,
		DurationTenths: uint16(tenths),
	}, nil
}

func (s *SerialDriver) Send(cmd Command) error {
	f, err := EncodeCommand(cmd)
	if err != nil {
		return err
	}
	data := f.Encode()

	s.mu.Lock()
	defer s.mu.Unlock()
	n, err := s.port.Write(data)
	if err != nil {
		return fmt.Errorf("serial: write: %w", err)
	}
	log.Debugw("serial frame sent", "bytes", n, "motor", f.Motor, "pitch", f.Pitch)
	return nil
}

func (s *SerialDriver) Close() error {
	log.Info("serial: closing port")
	return s.port.Close()
}

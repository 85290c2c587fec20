package actuator

import (
	"bytes"
	"testing"

	"github.com/jsphweid/fingerbot/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.bug.st/serial"
)

type fakePort struct {
	serial.Port
	written bytes.Buffer
	closed  bool
}

func (p *fakePort) Write(b []byte) (int, error) {
	return p.written.Write(b)
}

func (p *fakePort) Close() error {
	p.closed = true
	return nil
}

func TestFrameEncode(t *testing.T) {
	f := Frame{Motor: 2, Cmd: 3, Pitch: 60, DurationTenths: 0x0105}

	length := byte(5)
	cks := length ^ 3 ^ 2 ^ 60 ^ 0x01 ^ 0x05
	assert.Equal(t, []byte{0xAA, 0x55, length, 3, 2, 60, 0x01, 0x05, cks}, f.Encode())
}

func TestEncodeCommand(t *testing.T) {
	f, err := EncodeCommand(Command{
		Motor: 4,
		Type:  3,
		Note:  model.NoteEvent{Name: "A", Octave: 4, Duration: 1.26},
	})
	require.NoError(t, err)
	assert.Equal(t, Frame{Motor: 4, Cmd: 3, Pitch: 69, DurationTenths: 13}, f)
}

func TestEncodeCommandRejectsWideMotorIds(t *testing.T) {
	_, err := EncodeCommand(Command{Motor: 300, Note: model.NoteEvent{Name: "C", Octave: 4}})
	assert.Error(t, err)
}

func TestSerialDriverWritesFrames(t *testing.T) {
	port := &fakePort{}
	d := &SerialDriver{port: port}

	cmd := Command{Motor: 1, Type: 3, Note: model.NoteEvent{Name: "C", Octave: 4, Duration: 0.5}}
	require.NoError(t, d.Send(cmd))
	require.NoError(t, d.Send(cmd))

	f, err := EncodeCommand(cmd)
	require.NoError(t, err)
	frame := f.Encode()
	assert.Equal(t, append(append([]byte{}, frame...), frame...), port.written.Bytes())

	require.NoError(t, d.Close())
	assert.True(t, port.closed)
}

package actuator

const (
	SOF0 = 0xAA
	SOF1 = 0x55
)

// Frame is one motor command on the wire.
type Frame struct {
	Motor          byte
	Cmd            byte
	Pitch          byte
	DurationTenths uint16
}

// Encode builds the on-wire representation:
//
//	[SOF0][SOF1][LEN][CMD][motor][pitch][dur_hi][dur_lo][CKS]
//
// LEN counts CMD plus payload, CKS is the xor of LEN through the payload.
func (f *Frame) Encode() []byte {
	payload := []byte{f.Motor, f.Pitch, byte(f.DurationTenths >> 8), byte(f.DurationTenths)}

	length := byte(len(payload) + 1)
	cks := length ^ f.Cmd
	for _, b := range payload {
		cks ^= b
	}

	out := []byte{SOF0, SOF1, length, f.Cmd}
	out = append(out, payload...)
	out = append(out, cks)
	return out
}

package protocol

import "math"

// joystickSectionHeader is the fixed header byte written after the
// per-joystick size prefix. The original source uses a single sentinel
// value here; there is no per-device type distinction on the wire.
const joystickSectionHeader = 0x0c

// JoystickSnapshot is the ordered tuple of one attached device's current
// axis, button and hat values at the moment a client packet is built.
type JoystickSnapshot struct {
	Axes    []float64 // each in [-1.0, +1.0]
	Buttons []bool
	Hats    []int // {-1, 0, 45, 90, ..., 315}; -1 = centered
}

// SectionSize returns the byte size a joystick occupies in the joystick
// section of a client packet, including its own size-prefix byte.
func SectionSize(j JoystickSnapshot) int {
	a := len(j.Axes)
	b := len(j.Buttons)
	h := len(j.Hats)
	return 5 + a + ceilDiv8(b) + 2*h
}

func ceilDiv8(n int) int {
	return (n + 7) / 8
}

// appendJoystick writes one joystick's encoded section, including its
// leading size-prefix byte, to dst.
func appendJoystick(dst []byte, j JoystickSnapshot) []byte {
	size := SectionSize(j)
	dst = append(dst, byte(size), joystickSectionHeader, byte(len(j.Axes)))

	for _, axis := range j.Axes {
		dst = append(dst, encodeAxis(axis))
	}

	dst = append(dst, byte(len(j.Buttons)))
	dst = appendButtonBits(dst, j.Buttons)

	dst = append(dst, byte(len(j.Hats)))
	for _, hat := range j.Hats {
		// Preserved on-wire quirk: two bytes per hat, the first always
		// zero regardless of value.
		dst = append(dst, 0x00, byte(hat))
	}

	return dst
}

func encodeAxis(axis float64) byte {
	if axis > 1.0 {
		axis = 1.0
	}
	if axis < -1.0 {
		axis = -1.0
	}
	return byte(int8(math.Floor(axis * 127)))
}

func appendButtonBits(dst []byte, buttons []bool) []byte {
	n := ceilDiv8(len(buttons))
	packed := make([]byte, n)
	for i, pressed := range buttons {
		if !pressed {
			continue
		}
		packed[i/8] |= 1 << uint(i%8)
	}
	return append(dst, packed...)
}

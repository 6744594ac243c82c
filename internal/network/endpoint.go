package network

import "net"

// SocketType is the closed sum of wire transports a named direction (FMS,
// radio, robot) may use. Modeled as a tagged variant rather than an
// abstract base class, per the component design notes.
type SocketType int

const (
	SocketUDP SocketType = iota
	SocketTCP
)

// DisabledPort is the sentinel port value that drops a send direction
// silently instead of opening a socket for it.
const DisabledPort = 0

// endpoint is the minimal send/receive contract both socket types satisfy.
// The Socket Pool talks to either variant through this interface; after
// construction its only branch on SocketType is SendToRobotFanout, which
// does nothing in TCP mode.
type endpoint interface {
	open() error
	// read performs one short poll, waiting about a millisecond at most.
	// It returns n == 0 with a nil error when no datagram/frame is
	// available within that time.
	read(buf []byte) (n int, from *net.UDPAddr, err error)
	write(buf []byte, to *net.UDPAddr) error
	close()
}

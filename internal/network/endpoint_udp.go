package network

import "net"

// udpEndpoint adapts UDPSocket to the endpoint interface.
type udpEndpoint struct {
	sock *UDPSocket
}

func newUDPEndpointServer(role string, port int) *udpEndpoint {
	return &udpEndpoint{sock: NewUDPSocketServer(role, port)}
}

func (e *udpEndpoint) open() error {
	return e.sock.Open()
}

func (e *udpEndpoint) read(buf []byte) (int, *net.UDPAddr, error) {
	return e.sock.Read(buf)
}

func (e *udpEndpoint) write(buf []byte, to *net.UDPAddr) error {
	return e.sock.Write(buf, to)
}

func (e *udpEndpoint) close() {
	e.sock.Close()
}

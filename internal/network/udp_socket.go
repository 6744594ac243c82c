package network

import (
	"context"
	"fmt"
	"log"
	"net"
	"syscall"
	"time"

	"golang.org/x/net/ipv4"
	"golang.org/x/sys/unix"
)

// UDPSocket provides polled UDP I/O by setting a read deadline one
// millisecond ahead before every read, rather than reading from a
// background goroutine. (A deadline that has already passed makes the
// net package report a timeout without looking at the socket at all.) A bound socket is opened with SO_REUSEADDR and SO_REUSEPORT
// so a restarted core can rebind its probe/robot ports immediately
// instead of waiting out the kernel's TIME_WAIT, and multicast loopback
// is disabled so a probe sent from this socket never gets echoed back to
// itself on the loop interface.
type UDPSocket struct {
	conn      *net.UDPConn
	address   string
	port      int
	role      string
	localAddr *net.UDPAddr
}

// NewUDPSocket creates a UDP socket bound to a specific address and
// port (client mode). role names the direction this socket serves
// (e.g. "robot-out"), used only for diagnostic logging.
func NewUDPSocket(role, address string, port int) *UDPSocket {
	return &UDPSocket{
		role:    role,
		address: address,
		port:    port,
	}
}

// NewUDPSocketServer creates a UDP socket for server mode (any address,
// specific port).
func NewUDPSocketServer(role string, port int) *UDPSocket {
	return &UDPSocket{
		role:    role,
		address: "",
		port:    port,
	}
}

// reuseControl sets SO_REUSEADDR and SO_REUSEPORT on the socket before
// bind, so multiple short-lived runs of the core (or, during
// development, a restarted process) can rebind the same probe/robot
// port without waiting for the previous socket's TIME_WAIT to expire.
func reuseControl(network, address string, c syscall.RawConn) error {
	var sockErr error
	err := c.Control(func(fd uintptr) {
		if err := syscall.SetsockoptInt(int(fd), syscall.SOL_SOCKET, syscall.SO_REUSEADDR, 1); err != nil {
			sockErr = fmt.Errorf("SO_REUSEADDR: %w", err)
			return
		}
		if err := syscall.SetsockoptInt(int(fd), syscall.SOL_SOCKET, unix.SO_REUSEPORT, 1); err != nil {
			sockErr = fmt.Errorf("SO_REUSEPORT: %w", err)
			return
		}
	})
	if err != nil {
		return err
	}
	return sockErr
}

// Open binds and marks the socket non-blocking.
func (s *UDPSocket) Open() error {
	lc := net.ListenConfig{Control: reuseControl}

	if s.port > 0 {
		if s.address == "" {
			s.localAddr = &net.UDPAddr{IP: net.IPv4zero, Port: s.port}
		} else {
			s.localAddr = &net.UDPAddr{IP: net.ParseIP(s.address), Port: s.port}
			if s.localAddr.IP == nil {
				return fmt.Errorf("invalid address: %s", s.address)
			}
		}

		pc, err := lc.ListenPacket(context.Background(), "udp4", s.localAddr.String())
		if err != nil {
			log.Printf("network: %s: error opening bound UDP socket: %v", s.role, err)
			return err
		}
		s.conn = pc.(*net.UDPConn)

		log.Printf("network: %s: UDP socket bound to %s", s.role, s.conn.LocalAddr())
	} else {
		pc, err := lc.ListenPacket(context.Background(), "udp4", "0.0.0.0:0")
		if err != nil {
			log.Printf("network: %s: error opening unbound UDP socket: %v", s.role, err)
			return err
		}
		s.conn = pc.(*net.UDPConn)

		log.Printf("network: %s: UDP socket created (unbound) on %s", s.role, s.conn.LocalAddr())
	}

	if err := ipv4.NewPacketConn(s.conn).SetMulticastLoopback(false); err != nil {
		log.Printf("network: %s: could not disable multicast loopback: %v", s.role, err)
	}

	if err := s.conn.SetReadDeadline(time.Now()); err != nil {
		s.conn.Close()
		return err
	}

	return nil
}

// Read polls for one datagram, waiting at most one millisecond. Returns
// (0, nil, nil) when no datagram arrives in that time.
func (s *UDPSocket) Read(buffer []byte) (int, *net.UDPAddr, error) {
	if s.conn == nil {
		return -1, nil, fmt.Errorf("socket not open")
	}

	s.conn.SetReadDeadline(time.Now().Add(time.Millisecond))

	n, addr, err := s.conn.ReadFromUDP(buffer)
	if err != nil {
		if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
			return 0, nil, nil
		}
		log.Printf("network: %s: UDP read error: %v", s.role, err)
		return -1, nil, err
	}

	return n, addr, nil
}

// Write sends data to the given address.
func (s *UDPSocket) Write(buffer []byte, addr *net.UDPAddr) error {
	if s.conn == nil {
		return fmt.Errorf("socket not open")
	}

	_, err := s.conn.WriteToUDP(buffer, addr)
	if err != nil {
		log.Printf("network: %s: UDP write error: %v", s.role, err)
		return err
	}

	return nil
}

// Close closes the UDP socket.
func (s *UDPSocket) Close() {
	if s.conn != nil {
		s.conn.Close()
		s.conn = nil
		log.Printf("network: %s: UDP socket closed", s.role)
	}
}

// Lookup resolves hostname to an IPv4 address, passing through anything
// that already parses as one.
func Lookup(hostname string) (net.IP, error) {
	if ip := net.ParseIP(hostname); ip != nil {
		return ip, nil
	}

	ips, err := net.LookupIP(hostname)
	if err != nil {
		return nil, err
	}

	for _, ip := range ips {
		if ip.To4() != nil {
			return ip, nil
		}
	}

	return nil, fmt.Errorf("no IPv4 address found for %s", hostname)
}

// ParseUDPAddr resolves address and pairs it with port.
func ParseUDPAddr(address string, port int) (*net.UDPAddr, error) {
	ip, err := Lookup(address)
	if err != nil {
		return nil, err
	}

	return &net.UDPAddr{IP: ip, Port: port}, nil
}

package network

import (
	"net"
)

// GenerateAddressList enumerates the host's non-loopback IPv4 interfaces
// and emits one /24 sweep per interface, followed by any caller-supplied
// static addresses, followed by the loopback fallback. Interfaces that
// are down or lack IPv4 entries are skipped silently.
func GenerateAddressList(extra []string) []string {
	var list []string

	ifaces, err := net.Interfaces()
	if err == nil {
		for _, iface := range ifaces {
			if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagRunning == 0 {
				continue
			}

			addrs, err := iface.Addrs()
			if err != nil {
				continue
			}

			for _, addr := range addrs {
				ip := extractIPv4(addr)
				if ip == nil || ip.IsLoopback() {
					continue
				}
				list = append(list, sweepSlash24(ip)...)
			}
		}
	}

	list = append(list, extra...)
	list = append(list, "127.0.0.1")

	return list
}

func extractIPv4(addr net.Addr) net.IP {
	ipNet, ok := addr.(*net.IPNet)
	if !ok {
		return nil
	}
	return ipNet.IP.To4()
}

// sweepSlash24 emits a.b.c.1 through a.b.c.254 for the /24 containing ip.
func sweepSlash24(ip net.IP) []string {
	octets := [4]byte{ip[0], ip[1], ip[2], 0}
	sweep := make([]string, 0, 254)
	for host := 1; host <= 254; host++ {
		octets[3] = byte(host)
		sweep = append(sweep, net.IPv4(octets[0], octets[1], octets[2], octets[3]).String())
	}
	return sweep
}

// SocketCount clamps the probe pool size to the contract in §3: unset
// (zero) counts derive from the address list length, otherwise the
// caller's explicit value is used verbatim (still bounded to 128).
func SocketCount(custom, addressListLen int) int {
	if custom > 0 {
		return clamp(custom, 1, 128)
	}
	return clamp(addressListLen/6, 1, 72)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

//go:build linux || darwin

package redirect

import (
	"net"

	"golang.org/x/sys/unix"
)

// iptosLowDelay is IPTOS_LOWDELAY from netinet/ip.h; x/sys/unix does not export it.
const iptosLowDelay = 0x10

// setLowDelay marks outgoing frames with the IPTOS_LOWDELAY type of service.
func setLowDelay(conn *net.UDPConn) error {
	rc, err := conn.SyscallConn()
	if err != nil {
		return err
	}
	var serr error
	if err := rc.Control(func(fd uintptr) {
		serr = unix.SetsockoptInt(int(fd), unix.IPPROTO_IP, unix.IP_TOS, iptosLowDelay)
	}); err != nil {
		return err
	}
	return serr
}

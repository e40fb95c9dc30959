//go:build linux || darwin

package redirect

import (
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

func TestSetLowDelayMarksSocket(t *testing.T) {
	conn, err := net.ListenUDP("udp4", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, setLowDelay(conn))

	rc, err := conn.SyscallConn()
	require.NoError(t, err)
	var tos int
	var gerr error
	require.NoError(t, rc.Control(func(fd uintptr) {
		tos, gerr = unix.GetsockoptInt(int(fd), unix.IPPROTO_IP, unix.IP_TOS)
	}))
	require.NoError(t, gerr)
	assert.Equal(t, iptosLowDelay, tos&0xFC)
}

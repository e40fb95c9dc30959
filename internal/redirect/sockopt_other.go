//go:build !linux && !darwin

package redirect

import "net"

func setLowDelay(conn *net.UDPConn) error {
	return nil
}

//go:build !linux

package web

import (
	"net"
	"time"
)

func roundTrip(net.Conn) (time.Duration, bool) {
	return 0, false
}

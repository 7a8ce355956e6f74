//go:build !unix

package web

import "net"

func listenConfig() *net.ListenConfig {
	return &net.ListenConfig{}
}

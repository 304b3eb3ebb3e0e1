package netutil

import (
	"fmt"
	"net"
	"strconv"

	"github.com/eleven-am/barrier/internal/domain"
)

// ListenUDP binds a datagram socket on host:port for the given network
// (udp, udp4 or udp6). An empty host binds the wildcard address and port 0
// lets the OS pick a port. Returns the socket and the port actually bound.
func ListenUDP(network, host string, port int) (*net.UDPConn, int, error) {
	addr := net.JoinHostPort(host, strconv.Itoa(port))
	udpAddr, err := net.ResolveUDPAddr(network, addr)
	if err != nil {
		return nil, 0, domain.NewSocketError(fmt.Sprintf("resolve bind address %s", addr), err)
	}

	conn, err := net.ListenUDP(network, udpAddr)
	if err != nil {
		return nil, 0, domain.NewSocketError(fmt.Sprintf("bind %s", addr), err)
	}

	actualPort := conn.LocalAddr().(*net.UDPAddr).Port
	return conn, actualPort, nil
}

// OpenUDPSender creates an unbound datagram socket for WriteTo-style sends.
func OpenUDPSender(network string) (*net.UDPConn, error) {
	conn, err := net.ListenUDP(network, nil)
	if err != nil {
		return nil, domain.NewSocketError("create sender socket", err)
	}
	return conn, nil
}

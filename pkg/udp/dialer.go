package udp

import (
	"context"
	"net"
)

// Dialer opens connected UDP sockets. The indirection exists so callers
// can inject failing or instrumented dialers in tests.
type Dialer interface {
	Dial(ctx context.Context, localAddr, remoteAddr *net.UDPAddr) (*net.UDPConn, error)
}

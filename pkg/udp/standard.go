package udp

import (
	"context"
	"fmt"
	"log/slog"
	"net"

	"golang.org/x/net/ipv4"
)

// StandardDialer dials connected UDP sockets with the standard net dialer.
type StandardDialer struct {
	log *slog.Logger

	// TTL sets the IPv4 time-to-live on dialed sockets when > 0.
	TTL int

	// WriteBuffer sets the socket send buffer in bytes when > 0.
	WriteBuffer int
}

func NewStandardDialer(log *slog.Logger) *StandardDialer {
	return &StandardDialer{log: log}
}

func (d *StandardDialer) Dial(ctx context.Context, localAddr, remoteAddr *net.UDPAddr) (*net.UDPConn, error) {
	dialer := net.Dialer{
		LocalAddr: localAddr,
	}
	conn, err := dialer.DialContext(ctx, "udp", remoteAddr.String())
	if err != nil {
		return nil, fmt.Errorf("failed to dial: %w", err)
	}
	uc := conn.(*net.UDPConn)

	// Tuning is best effort. A socket that cannot be tuned still sends.
	if d.WriteBuffer > 0 {
		if err := uc.SetWriteBuffer(d.WriteBuffer); err != nil {
			d.log.Warn("Failed to set write buffer", "bytes", d.WriteBuffer, "error", err)
		}
	}
	if d.TTL > 0 {
		if err := ipv4.NewConn(uc).SetTTL(d.TTL); err != nil {
			d.log.Warn("Failed to set TTL", "ttl", d.TTL, "error", err)
		}
	}
	return uc, nil
}

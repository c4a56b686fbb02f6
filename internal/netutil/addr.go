package netutil

import (
	"fmt"
	"net"
	"strconv"
)

// Target is a resolved send destination. Raw keeps the host:port exactly
// as the user gave it, for reports and metric labels.
type Target struct {
	Raw  string
	Addr *net.UDPAddr
}

func (t Target) String() string { return t.Raw }

// ParseHostPort splits a host:port string and converts the port. No
// resolution happens. Bracketed IPv6 literals are accepted.
func ParseHostPort(s string) (string, uint16, error) {
	host, portStr, err := net.SplitHostPort(s)
	if err != nil {
		return "", 0, fmt.Errorf("invalid address %s: %w", s, err)
	}
	port, err := strconv.ParseUint(portStr, 10, 16)
	if err != nil {
		return "", 0, fmt.Errorf("invalid port %s: %w", portStr, err)
	}
	return host, uint16(port), nil
}

// ResolveTarget parses and resolves one destination. Hostnames resolve to
// their first address.
func ResolveTarget(s string) (Target, error) {
	host, port, err := ParseHostPort(s)
	if err != nil {
		return Target{}, err
	}
	ips, err := net.LookupIP(host)
	if err != nil {
		return Target{}, fmt.Errorf("failed to resolve %s: %w", host, err)
	}
	if len(ips) == 0 {
		return Target{}, fmt.Errorf("no IP addresses found for %s", host)
	}
	return Target{
		Raw:  s,
		Addr: &net.UDPAddr{IP: ips[0], Port: int(port)},
	}, nil
}

// ResolveTargets resolves every destination, failing on the first bad one
// so nothing is sent when any target is malformed.
func ResolveTargets(targets []string) ([]Target, error) {
	out := make([]Target, 0, len(targets))
	for _, s := range targets {
		t, err := ResolveTarget(s)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

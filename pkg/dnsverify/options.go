package dnsverify

import (
	"log/slog"
	"net"
	"time"
)

const defaultDialTimeout = 5 * time.Second

// Option configures a Verifier.
type Option func(*Verifier)

// WithResolver replaces the default *net.Resolver.
func WithResolver(r Resolver) Option {
	return func(v *Verifier) {
		if r != nil {
			v.resolver = r
		}
	}
}

// WithNameserver sends queries to the given server (host:port, or host for
// port 53) instead of the system resolver.
func WithNameserver(addr string) Option {
	return func(v *Verifier) {
		if addr == "" {
			return
		}
		if _, _, err := net.SplitHostPort(addr); err != nil {
			addr = net.JoinHostPort(addr, "53")
		}
		v.resolver = nameserverResolver(addr, defaultDialTimeout)
	}
}

// WithLogger sets the logger for lookup diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(v *Verifier) {
		if l != nil {
			v.logger = l
		}
	}
}

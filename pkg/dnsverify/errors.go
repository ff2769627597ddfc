package dnsverify

import "errors"

var (
	ErrDNSLookupFailed   = errors.New("dns lookup failed")
	ErrDomainNotVerified = errors.New("domain not verified")
	ErrTXTRecordNotFound = errors.New("txt record not found")
	ErrInvalidInput      = errors.New("invalid domain or verification token")

	// ErrNoData may be returned by a Resolver when the name exists but holds
	// no records of the requested type.
	ErrNoData = errors.New("dns: no records of requested type")
)

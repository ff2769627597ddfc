// Package domainname normalizes and validates custom domains before they
// enter the verification workflow.
//
//	domain, err := domainname.Parse("https://www.Example.com/")
//	// domain == "example.com"
//
// Validation rejects wildcards, IP literals, names longer than 253 bytes,
// empty or oversized labels, consecutive dots, leading or trailing dots and
// hyphens, single-label names and top-level domains outside a fixed
// allow-list. Internationalized names are converted to their ASCII form
// before validation.
package domainname

package domainname

import (
	"fmt"
	"net/netip"
	"strings"

	"golang.org/x/net/idna"
)

const (
	maxDomainLength = 253
	maxLabelLength  = 63
)

// Normalize lowercases raw and strips scheme, path, query, trailing slash,
// a leading "www." and the root dot. Non-ASCII labels are converted to
// punycode when possible.
func Normalize(raw string) string {
	d := strings.ToLower(strings.TrimSpace(raw))
	d = strings.TrimPrefix(d, "https://")
	d = strings.TrimPrefix(d, "http://")
	if i := strings.IndexAny(d, "/?#"); i >= 0 {
		d = d[:i]
	}
	d = strings.TrimPrefix(d, "www.")
	d = strings.TrimSuffix(d, ".")

	if !isASCII(d) {
		if ascii, err := idna.Lookup.ToASCII(d); err == nil {
			d = ascii
		}
	}
	return d
}

// Validate checks an already normalized domain.
func Validate(domain string) error {
	if domain == "" {
		return ErrEmpty
	}
	if strings.Contains(domain, "*") {
		return ErrWildcard
	}
	if isIP(domain) {
		return ErrIPAddress
	}
	if len(domain) > maxDomainLength {
		return ErrTooLong
	}
	if strings.Contains(domain, "..") {
		return ErrConsecutiveDots
	}
	if strings.HasPrefix(domain, ".") || strings.HasSuffix(domain, ".") ||
		strings.HasPrefix(domain, "-") || strings.HasSuffix(domain, "-") {
		return ErrBoundary
	}

	labels := strings.Split(domain, ".")
	if len(labels) < 2 {
		return ErrMissingTLD
	}
	for _, label := range labels {
		if err := validateLabel(label); err != nil {
			return err
		}
	}

	tld := labels[len(labels)-1]
	if !IsSupportedTLD(tld) {
		return fmt.Errorf("%w: %s", ErrUnsupportedTLD, tld)
	}
	return nil
}

// Parse normalizes raw and validates the result.
func Parse(raw string) (string, error) {
	d := Normalize(raw)
	if err := Validate(d); err != nil {
		return "", err
	}
	return d, nil
}

func validateLabel(label string) error {
	if label == "" || len(label) > maxLabelLength {
		return fmt.Errorf("%w: %q", ErrInvalidLabel, label)
	}
	if label[0] == '-' || label[len(label)-1] == '-' {
		return fmt.Errorf("%w: %q", ErrInvalidLabel, label)
	}
	for i := 0; i < len(label); i++ {
		c := label[i]
		if (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') || c == '-' {
			continue
		}
		return fmt.Errorf("%w: %q", ErrInvalidCharacter, label)
	}
	return nil
}

func isIP(s string) bool {
	s = strings.TrimSuffix(strings.TrimPrefix(s, "["), "]")
	if _, err := netip.ParseAddr(s); err == nil {
		return true
	}
	if host, _, ok := strings.Cut(s, ":"); ok {
		_, err := netip.ParseAddr(host)
		return err == nil
	}
	return false
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			return false
		}
	}
	return true
}

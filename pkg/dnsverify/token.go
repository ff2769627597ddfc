package dnsverify

import (
	"strings"

	"github.com/google/uuid"
)

// RecordPrefix is the label under which verification TXT records live.
const RecordPrefix = "_scheduled-verification"

// TokenPrefix marks verification tokens so they are recognizable among
// other TXT values.
const TokenPrefix = "scheduled-verify-"

// RecordName returns the DNS name that must hold the verification record.
func RecordName(domain string) string {
	return RecordPrefix + "." + normalizeDomain(domain)
}

// NewToken issues a random verification token.
func NewToken() string {
	return TokenPrefix + strings.ReplaceAll(uuid.NewString(), "-", "")
}

func normalizeDomain(domain string) string {
	return strings.TrimSuffix(strings.ToLower(strings.TrimSpace(domain)), ".")
}

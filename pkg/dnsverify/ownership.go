package dnsverify

import "context"

var defaultVerifier = New()

// VerifyDomainOwnership checks that the domain's verification TXT record
// contains token using the system resolver.
// Returns nil if verification succeeds, otherwise a specific error.
func VerifyDomainOwnership(ctx context.Context, domain, token string) error {
	return defaultVerifier.VerifyOwnership(ctx, domain, token)
}

// VerifyOwnership is VerifyTXT expressed as an error.
func (v *Verifier) VerifyOwnership(ctx context.Context, domain, token string) error {
	_, err := v.verifyTXT(ctx, domain, token)
	return err
}

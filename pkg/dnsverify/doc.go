// Package dnsverify provides DNS-based domain ownership verification.
//
// A domain owner proves control by publishing a TXT record at
// "_scheduled-verification.<domain>" whose value contains a token issued by
// the application. The verifier looks the record up and reports a
// structured [Result]; DNS failures never surface as errors.
//
// # Basic Usage
//
//	token := dnsverify.NewToken()
//	// ask the user to publish: _scheduled-verification.example.com TXT "<token>"
//
//	v := dnsverify.New(dnsverify.WithLogger(log))
//	res := v.VerifyTXT(ctx, "example.com", token)
//	if !res.Success {
//		// show res.ErrorMessage, let the user retry later
//	}
//
// # Result
//
// Every call measures its wall-clock duration in ResponseTimeMS, on success
// and failure alike. Data.Found lists every record returned by the lookup
// (not only the matching one) and is nil when the lookup itself failed.
//
// Lookup errors are translated into messages:
//
//   - record not found: the name does not exist (NXDOMAIN)
//   - no records: the name exists but has no records of the requested type
//   - timeout: the resolver gave up
//   - anything else: "DNS error: <message>"
//
// # CNAME
//
// [Verifier.VerifyCNAME] is an alternative proof for hosts pointed at the
// application. Unlike TXT, where the token may sit next to other metadata,
// the CNAME target must match exactly.
//
// # Error-returning API
//
// [VerifyDomainOwnership] wraps the TXT check for callers that prefer
// sentinel errors:
//
//   - ErrInvalidInput: domain or token is empty
//   - ErrTXTRecordNotFound: no TXT records found for the domain
//   - ErrDNSLookupFailed: DNS lookup encountered a network error
//   - ErrDomainNotVerified: TXT records exist but do not contain the token
//
// # Resolver
//
// Any type with LookupTXT, LookupCNAME and LookupHost works as a [Resolver];
// *net.Resolver is the default. [WithNameserver] queries a specific server
// directly, bypassing local caches.
package dnsverify

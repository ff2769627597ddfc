package dnsverify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strings"
	"time"
)

// Result is the verdict of a TXT or CNAME verification.
type Result struct {
	ErrorMessage   string `json:"errorMessage,omitempty"`
	Data           Data   `json:"verificationData"`
	ResponseTimeMS int64  `json:"responseTimeMs"`
	Success        bool   `json:"success"`
}

// Data carries diagnostic detail for a verification attempt.
type Data struct {
	Expected   string   `json:"expected"`
	RecordName string   `json:"recordName"`
	Found      []string `json:"found"`
}

// ConnectivityResult reports whether a domain resolves at all.
type ConnectivityResult struct {
	ErrorMessage   string `json:"errorMessage,omitempty"`
	ResponseTimeMS int64  `json:"responseTimeMs"`
	Success        bool   `json:"success"`
}

// Verifier checks DNS records for domain ownership proofs.
// It holds no per-call state and is safe for concurrent use.
type Verifier struct {
	resolver Resolver
	logger   *slog.Logger
}

// New creates a Verifier backed by net.DefaultResolver unless overridden.
func New(opts ...Option) *Verifier {
	v := &Verifier{
		resolver: net.DefaultResolver,
		logger:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// VerifyTXT reports whether a TXT record at RecordName(domain) contains token.
func (v *Verifier) VerifyTXT(ctx context.Context, domain, token string) Result {
	res, _ := v.verifyTXT(ctx, domain, token)
	return res
}

// verifyTXT also returns the sentinel matching the outcome, nil on success.
func (v *Verifier) verifyTXT(ctx context.Context, domain, token string) (Result, error) {
	start := time.Now()
	token = strings.TrimSpace(token)
	res := Result{
		Data: Data{
			Expected:   token,
			RecordName: RecordName(domain),
		},
	}

	if normalizeDomain(domain) == "" || token == "" {
		res.ErrorMessage = "domain and verification token are required"
		res.ResponseTimeMS = elapsedMS(start)
		return res, ErrInvalidInput
	}

	records, err := v.resolver.LookupTXT(ctx, res.Data.RecordName)
	res.ResponseTimeMS = elapsedMS(start)
	if err != nil {
		res.ErrorMessage = lookupErrorMessage(err, res.Data.RecordName)
		v.logger.DebugContext(ctx, "txt lookup failed",
			slog.String("record", res.Data.RecordName),
			slog.Int64("response_time_ms", res.ResponseTimeMS),
			slog.Any("error", err),
		)
		if isNotFound(err) || errors.Is(err, ErrNoData) {
			return res, fmt.Errorf("%w: %v", ErrTXTRecordNotFound, err)
		}
		return res, fmt.Errorf("%w: %v", ErrDNSLookupFailed, err)
	}

	res.Data.Found = flatten(records)
	if len(res.Data.Found) == 0 {
		res.ErrorMessage = fmt.Sprintf("DNS lookup returned no records for %s", res.Data.RecordName)
		return res, ErrTXTRecordNotFound
	}

	for _, record := range res.Data.Found {
		if strings.Contains(record, token) {
			res.Success = true
			return res, nil
		}
	}

	res.ErrorMessage = fmt.Sprintf("verification token not found in TXT records at %s", res.Data.RecordName)
	return res, ErrDomainNotVerified
}

// VerifyCNAME reports whether domain is an alias of target.
// The comparison is exact apart from the trailing root dot.
func (v *Verifier) VerifyCNAME(ctx context.Context, domain, target string) Result {
	start := time.Now()
	host := normalizeDomain(domain)
	expected := strings.TrimSuffix(strings.TrimSpace(target), ".")
	res := Result{
		Data: Data{
			Expected:   expected,
			RecordName: host,
		},
	}

	if host == "" || expected == "" {
		res.ErrorMessage = "domain and CNAME target are required"
		res.ResponseTimeMS = elapsedMS(start)
		return res
	}

	cname, err := v.resolver.LookupCNAME(ctx, host)
	res.ResponseTimeMS = elapsedMS(start)
	if err != nil {
		res.ErrorMessage = lookupErrorMessage(err, host)
		v.logger.DebugContext(ctx, "cname lookup failed",
			slog.String("host", host),
			slog.Any("error", err),
		)
		return res
	}

	res.Data.Found = []string{strings.TrimSuffix(cname, ".")}
	for _, record := range res.Data.Found {
		if record == expected {
			res.Success = true
			return res
		}
	}

	res.ErrorMessage = fmt.Sprintf("CNAME for %s points to %s, expected %s", host, res.Data.Found[0], expected)
	return res
}

// CheckConnectivity reports whether domain resolves, ignoring the answer.
func (v *Verifier) CheckConnectivity(ctx context.Context, domain string) ConnectivityResult {
	start := time.Now()
	host := normalizeDomain(domain)
	if host == "" {
		return ConnectivityResult{
			ErrorMessage:   "domain is required",
			ResponseTimeMS: elapsedMS(start),
		}
	}

	_, err := v.resolver.LookupHost(ctx, host)
	res := ConnectivityResult{ResponseTimeMS: elapsedMS(start), Success: err == nil}
	if err != nil {
		res.ErrorMessage = lookupErrorMessage(err, host)
	}
	return res
}

// flatten copies records into a non-nil slice. net.Resolver already joins
// the character-strings of a single TXT record.
func flatten(records []string) []string {
	out := make([]string, 0, len(records))
	return append(out, records...)
}

func lookupErrorMessage(err error, name string) string {
	var dnsErr *net.DNSError
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Sprintf("DNS lookup timeout for %s", name)
	case errors.As(err, &dnsErr) && dnsErr.IsTimeout:
		return fmt.Sprintf("DNS lookup timeout for %s", name)
	case errors.Is(err, ErrNoData):
		return fmt.Sprintf("DNS lookup returned no records for %s", name)
	case errors.As(err, &dnsErr) && strings.Contains(dnsErr.Err, "no answer"):
		return fmt.Sprintf("DNS lookup returned no records for %s", name)
	case isNotFound(err):
		return fmt.Sprintf("DNS record not found: %s", name)
	default:
		return "DNS error: " + err.Error()
	}
}

func isNotFound(err error) bool {
	var dnsErr *net.DNSError
	return errors.As(err, &dnsErr) && dnsErr.IsNotFound
}

func elapsedMS(start time.Time) int64 {
	return time.Since(start).Milliseconds()
}

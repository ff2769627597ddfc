// Package verification runs a DNS ownership check for a stored custom
// domain, records the attempt and notifies the owner the first time the
// domain verifies.
package verification

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/dmitrymomot/scheduled/internal/repository"
	"github.com/dmitrymomot/scheduled/pkg/dnsverify"
	"github.com/dmitrymomot/scheduled/pkg/mailer"
)

const (
	MethodTXT   = "txt"
	MethodCNAME = "cname"

	verifiedTemplate = "domain_verified.md"
)

var ErrUnknownMethod = errors.New("verification: unknown method")

type Store interface {
	RecordAttempt(ctx context.Context, id uuid.UUID, a repository.Attempt) (repository.Domain, bool, error)
}

type Verifier interface {
	VerifyTXT(ctx context.Context, domain, token string) dnsverify.Result
	VerifyCNAME(ctx context.Context, domain, target string) dnsverify.Result
}

type Notifier interface {
	Send(ctx context.Context, msg mailer.Message) error
}

type Service struct {
	store       Store
	verifier    Verifier
	notifier    Notifier
	logger      *slog.Logger
	cnameTarget string
}

func New(store Store, verifier Verifier, notifier Notifier, cnameTarget string, log *slog.Logger) *Service {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Service{
		store:       store,
		verifier:    verifier,
		notifier:    notifier,
		cnameTarget: cnameTarget,
		logger:      log,
	}
}

// Outcome is a verification verdict together with the updated domain.
type Outcome struct {
	Result dnsverify.Result  `json:"result"`
	Domain repository.Domain `json:"domain"`
}

// Verify checks d with the given method ("" means txt) and records the
// attempt. A failed lookup is not an error; only storage failures are.
// Notification failures are logged and do not fail the call.
func (s *Service) Verify(ctx context.Context, d repository.Domain, method string) (Outcome, error) {
	var res dnsverify.Result
	switch method {
	case "", MethodTXT:
		method = MethodTXT
		res = s.verifier.VerifyTXT(ctx, d.Name, d.Token)
	case MethodCNAME:
		res = s.verifier.VerifyCNAME(ctx, d.Name, s.cnameTarget)
	default:
		return Outcome{}, fmt.Errorf("%w: %q", ErrUnknownMethod, method)
	}

	updated, first, err := s.store.RecordAttempt(ctx, d.ID, repository.Attempt{
		Method:         method,
		Success:        res.Success,
		ErrorMessage:   res.ErrorMessage,
		Found:          res.Data.Found,
		ResponseTimeMS: res.ResponseTimeMS,
	})
	if err != nil {
		return Outcome{}, err
	}

	log := s.logger.With(
		slog.String("domain", d.Name),
		slog.String("method", method),
		slog.Bool("success", res.Success),
	)
	log.InfoContext(ctx, "domain verification attempt", slog.Int64("response_time_ms", res.ResponseTimeMS))

	if first && updated.OwnerEmail != "" {
		if err := s.notify(ctx, updated); err != nil {
			log.ErrorContext(ctx, "failed to send domain verified email", slog.Any("error", err))
		}
	}

	return Outcome{Result: res, Domain: updated}, nil
}

func (s *Service) notify(ctx context.Context, d repository.Domain) error {
	return s.notifier.Send(ctx, mailer.Message{
		To:       d.OwnerEmail,
		Template: verifiedTemplate,
		Tags:     map[string]string{"kind": "domain_verified"},
		Data: map[string]string{
			"Domain":     d.Name,
			"RecordName": dnsverify.RecordName(d.Name),
			"Token":      d.Token,
		},
	})
}

// Package tasks holds the background jobs that keep custom domains
// verified.
package tasks

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/scheduled/internal/repository"
	"github.com/dmitrymomot/scheduled/internal/verification"
	"github.com/dmitrymomot/scheduled/pkg/db"
	"github.com/dmitrymomot/scheduled/pkg/job"
)

const (
	VerifyDomainName   = "domains.verify"
	RecheckPendingName = "domains.recheck"
)

type VerifyDomainPayload struct {
	DomainID uuid.UUID `json:"domain_id"`
}

type DomainGetter interface {
	Get(ctx context.Context, id uuid.UUID) (repository.Domain, error)
}

type PendingLister interface {
	ListPending(ctx context.Context, limit int) ([]repository.Domain, error)
}

type DomainVerifier interface {
	Verify(ctx context.Context, d repository.Domain, method string) (verification.Outcome, error)
}

// Enqueuer is satisfied by *job.Manager.
type Enqueuer interface {
	Enqueue(ctx context.Context, name string, payload any, opts ...job.EnqueueOption) error
}

// VerifyDomain checks one domain's TXT record.
type VerifyDomain struct {
	domains  DomainGetter
	verifier DomainVerifier
	logger   *slog.Logger
}

func NewVerifyDomain(domains DomainGetter, verifier DomainVerifier, log *slog.Logger) *VerifyDomain {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &VerifyDomain{domains: domains, verifier: verifier, logger: log}
}

func (t *VerifyDomain) Name() string { return VerifyDomainName }

// Handle drops jobs for deleted domains instead of retrying them.
func (t *VerifyDomain) Handle(ctx context.Context, p VerifyDomainPayload) error {
	d, err := t.domains.Get(ctx, p.DomainID)
	if errors.Is(err, db.ErrNotFound) {
		t.logger.WarnContext(ctx, "domain gone, skipping verification", slog.String("domain_id", p.DomainID.String()))
		return nil
	}
	if err != nil {
		return err
	}

	_, err = t.verifier.Verify(ctx, d, verification.MethodTXT)
	return err
}

// RecheckPending periodically enqueues a VerifyDomain job for every
// pending domain.
type RecheckPending struct {
	domains   PendingLister
	enqueuer  Enqueuer
	logger    *slog.Logger
	schedule  string
	batch     int
	uniqueFor time.Duration
}

func NewRecheckPending(domains PendingLister, enqueuer Enqueuer, schedule string, batch int, uniqueFor time.Duration, log *slog.Logger) *RecheckPending {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &RecheckPending{
		domains:   domains,
		enqueuer:  enqueuer,
		schedule:  schedule,
		batch:     max(batch, 1),
		uniqueFor: uniqueFor,
		logger:    log,
	}
}

func (t *RecheckPending) Name() string     { return RecheckPendingName }
func (t *RecheckPending) Schedule() string { return t.schedule }

// Handle keeps enqueueing after a failed insert and reports all failures.
func (t *RecheckPending) Handle(ctx context.Context) error {
	pending, err := t.domains.ListPending(ctx, t.batch)
	if err != nil {
		return err
	}

	var errs []error
	for _, d := range pending {
		id := d.ID.String()
		if err := t.enqueuer.Enqueue(ctx, VerifyDomainName,
			VerifyDomainPayload{DomainID: d.ID},
			job.Unique(id, t.uniqueFor),
		); err != nil {
			errs = append(errs, fmt.Errorf("domain %s: %w", id, err))
		}
	}

	t.logger.InfoContext(ctx, "pending domains rechecked",
		slog.Int("pending", len(pending)),
		slog.Int("failed", len(errs)),
	)
	return errors.Join(errs...)
}

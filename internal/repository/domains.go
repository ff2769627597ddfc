package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmitrymomot/scheduled/pkg/db"
)

const (
	StatusPending  = "pending"
	StatusVerified = "verified"
)

type Domain struct {
	CreatedAt     time.Time  `json:"created_at"`
	VerifiedAt    *time.Time `json:"verified_at,omitempty"`
	LastCheckedAt *time.Time `json:"last_checked_at,omitempty"`
	Reachable     *bool      `json:"reachable,omitempty"`
	BusinessID    string     `json:"business_id"`
	Name          string     `json:"domain"`
	OwnerEmail    string     `json:"owner_email,omitempty"`
	Token         string     `json:"token"`
	Status        string     `json:"status"`
	Attempts      int        `json:"attempts"`
	ID            uuid.UUID  `json:"id"`
}

type NewDomain struct {
	BusinessID string
	Name       string
	OwnerEmail string
	Token      string
}

// Attempt is one verification lookup.
type Attempt struct {
	Method         string
	ErrorMessage   string
	Found          []string
	ResponseTimeMS int64
	Success        bool
}

type Domains struct {
	pool *pgxpool.Pool
}

func NewDomains(pool *pgxpool.Pool) *Domains {
	return &Domains{pool: pool}
}

const domainColumns = `id, business_id, domain, owner_email, token, status, attempts,
	reachable, verified_at, last_checked_at, created_at`

func scanDomain(row pgx.Row) (Domain, error) {
	var d Domain
	err := row.Scan(&d.ID, &d.BusinessID, &d.Name, &d.OwnerEmail, &d.Token, &d.Status,
		&d.Attempts, &d.Reachable, &d.VerifiedAt, &d.LastCheckedAt, &d.CreatedAt)
	return d, err
}

// Create stores a pending domain. A domain already claimed by any business
// yields db.ErrDuplicate.
func (s *Domains) Create(ctx context.Context, nd NewDomain) (Domain, error) {
	d, err := scanDomain(s.pool.QueryRow(ctx, `
		INSERT INTO custom_domains (id, business_id, domain, owner_email, token, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+domainColumns,
		uuid.New(), nd.BusinessID, nd.Name, nd.OwnerEmail, nd.Token, StatusPending,
	))
	if err != nil {
		return Domain{}, fmt.Errorf("create domain %s: %w", nd.Name, db.TranslateError(err))
	}
	return d, nil
}

func (s *Domains) Get(ctx context.Context, id uuid.UUID) (Domain, error) {
	d, err := scanDomain(s.pool.QueryRow(ctx,
		`SELECT `+domainColumns+` FROM custom_domains WHERE id = $1`, id))
	if err != nil {
		return Domain{}, fmt.Errorf("get domain %s: %w", id, db.TranslateError(err))
	}
	return d, nil
}

// ListPending returns unverified domains, least recently checked first.
func (s *Domains) ListPending(ctx context.Context, limit int) ([]Domain, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+domainColumns+`
		FROM custom_domains
		WHERE status = $1
		ORDER BY last_checked_at NULLS FIRST, created_at
		LIMIT $2`, StatusPending, limit)
	if err != nil {
		return nil, fmt.Errorf("list pending domains: %w", err)
	}
	defer rows.Close()

	out := make([]Domain, 0, limit)
	for rows.Next() {
		d, err := scanDomain(rows)
		if err != nil {
			return nil, fmt.Errorf("list pending domains: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// RecordAttempt logs a verification attempt and updates the domain. A
// successful attempt marks the domain verified; failures leave the status
// alone. firstVerified is true when this attempt flipped the domain to
// verified.
func (s *Domains) RecordAttempt(ctx context.Context, id uuid.UUID, a Attempt) (d Domain, firstVerified bool, err error) {
	found := a.Found
	if found == nil {
		found = []string{}
	}

	err = db.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		var wasVerified bool
		if err := tx.QueryRow(ctx,
			`SELECT verified_at IS NOT NULL FROM custom_domains WHERE id = $1 FOR UPDATE`, id,
		).Scan(&wasVerified); err != nil {
			return db.TranslateError(err)
		}

		if _, err := tx.Exec(ctx, `
			INSERT INTO domain_verification_attempts (domain_id, method, success, error_message, found, response_time_ms)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			id, a.Method, a.Success, a.ErrorMessage, found, a.ResponseTimeMS,
		); err != nil {
			return err
		}

		var scanErr error
		d, scanErr = scanDomain(tx.QueryRow(ctx, `
			UPDATE custom_domains SET
				attempts        = attempts + 1,
				last_checked_at = now(),
				status          = CASE WHEN $2 THEN $3 ELSE status END,
				verified_at     = CASE WHEN $2 AND verified_at IS NULL THEN now() ELSE verified_at END
			WHERE id = $1
			RETURNING `+domainColumns,
			id, a.Success, StatusVerified,
		))
		firstVerified = a.Success && !wasVerified
		return scanErr
	})
	if err != nil {
		return Domain{}, false, fmt.Errorf("record attempt for %s: %w", id, err)
	}
	return d, firstVerified, nil
}

func (s *Domains) MarkConnectivity(ctx context.Context, id uuid.UUID, reachable bool) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE custom_domains SET reachable = $2 WHERE id = $1`, id, reachable)
	if err != nil {
		return fmt.Errorf("mark connectivity for %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("mark connectivity for %s: %w", id, db.ErrNotFound)
	}
	return nil
}

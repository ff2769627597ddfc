package httpapi

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/mail"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/dmitrymomot/scheduled/internal/repository"
	"github.com/dmitrymomot/scheduled/internal/tasks"
	"github.com/dmitrymomot/scheduled/internal/verification"
	"github.com/dmitrymomot/scheduled/pkg/db"
	"github.com/dmitrymomot/scheduled/pkg/dnsverify"
	"github.com/dmitrymomot/scheduled/pkg/domainname"
	"github.com/dmitrymomot/scheduled/pkg/job"
)

type DomainStore interface {
	Create(ctx context.Context, nd repository.NewDomain) (repository.Domain, error)
	Get(ctx context.Context, id uuid.UUID) (repository.Domain, error)
	MarkConnectivity(ctx context.Context, id uuid.UUID, reachable bool) error
}

type DomainVerifier interface {
	Verify(ctx context.Context, d repository.Domain, method string) (verification.Outcome, error)
}

type ConnectivityChecker interface {
	CheckConnectivity(ctx context.Context, domain string) dnsverify.ConnectivityResult
}

type Enqueuer = tasks.Enqueuer

type createDomainRequest struct {
	Domain     string `json:"domain"`
	OwnerEmail string `json:"owner_email"`
}

// dnsInstructions tells the owner which records prove ownership.
type dnsInstructions struct {
	TXT   dnsRecord `json:"txt"`
	CNAME dnsRecord `json:"cname"`
}

type dnsRecord struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type domainResponse struct {
	Instructions dnsInstructions `json:"instructions"`
	repository.Domain
}

func (s *Server) instructions(d repository.Domain) dnsInstructions {
	return dnsInstructions{
		TXT:   dnsRecord{Name: dnsverify.RecordName(d.Name), Value: d.Token},
		CNAME: dnsRecord{Name: d.Name, Value: s.opts.CNAMETarget},
	}
}

func (s *Server) createDomain(w http.ResponseWriter, r *http.Request) error {
	businessID := chi.URLParam(r, "businessID")

	var req createDomainRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return err
	}

	name, err := domainname.Parse(req.Domain)
	if err != nil {
		return ErrUnprocessable(err.Error(), WithErrorCode("invalid_domain"), WithError(err))
	}

	owner := strings.TrimSpace(req.OwnerEmail)
	if owner != "" {
		addr, err := mail.ParseAddress(owner)
		if err != nil {
			return ErrUnprocessable("owner_email is not a valid email address", WithErrorCode("invalid_email"))
		}
		owner = addr.Address
	}

	d, err := s.deps.Domains.Create(r.Context(), repository.NewDomain{
		BusinessID: businessID,
		Name:       name,
		OwnerEmail: owner,
		Token:      dnsverify.NewToken(),
	})
	if errors.Is(err, db.ErrDuplicate) {
		return ErrConflict("domain is already registered", WithErrorCode("domain_taken"))
	}
	if err != nil {
		return err
	}

	if s.deps.Jobs != nil {
		err := s.deps.Jobs.Enqueue(r.Context(), tasks.VerifyDomainName,
			tasks.VerifyDomainPayload{DomainID: d.ID},
			job.ScheduledIn(s.opts.FirstCheckDelay),
			job.Unique(d.ID.String(), s.opts.FirstCheckDelay),
		)
		if err != nil {
			s.logger.WarnContext(r.Context(), "failed to schedule domain verification",
				slog.String("domain", d.Name), slog.Any("error", err))
		}
	}

	s.logger.InfoContext(r.Context(), "domain registered",
		slog.String("domain", d.Name))

	writeJSON(w, http.StatusCreated, domainResponse{Domain: d, Instructions: s.instructions(d)})
	return nil
}

// loadDomain fetches the domain named by the route and hides domains owned
// by other businesses.
func (s *Server) loadDomain(r *http.Request) (repository.Domain, error) {
	id, err := uuid.Parse(chi.URLParam(r, "domainID"))
	if err != nil {
		return repository.Domain{}, ErrBadRequest("invalid domain id", WithErrorCode("invalid_id"))
	}

	d, err := s.deps.Domains.Get(r.Context(), id)
	if errors.Is(err, db.ErrNotFound) || (err == nil && d.BusinessID != chi.URLParam(r, "businessID")) {
		return repository.Domain{}, ErrNotFound("domain not found", WithErrorCode("domain_not_found"))
	}
	if err != nil {
		return repository.Domain{}, fmt.Errorf("load domain: %w", err)
	}
	return d, nil
}

func (s *Server) getDomain(w http.ResponseWriter, r *http.Request) error {
	d, err := s.loadDomain(r)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, domainResponse{Domain: d, Instructions: s.instructions(d)})
	return nil
}

func (s *Server) verifyDomain(w http.ResponseWriter, r *http.Request) error {
	d, err := s.loadDomain(r)
	if err != nil {
		return err
	}

	out, err := s.deps.Verifier.Verify(r.Context(), d, strings.ToLower(r.URL.Query().Get("method")))
	if errors.Is(err, verification.ErrUnknownMethod) {
		return ErrBadRequest("method must be txt or cname", WithErrorCode("invalid_method"))
	}
	if err != nil {
		return err
	}

	writeJSON(w, http.StatusOK, out)
	return nil
}

func (s *Server) checkConnectivity(w http.ResponseWriter, r *http.Request) error {
	d, err := s.loadDomain(r)
	if err != nil {
		return err
	}

	res := s.deps.Connectivity.CheckConnectivity(r.Context(), d.Name)
	if err := s.deps.Domains.MarkConnectivity(r.Context(), d.ID, res.Success); err != nil {
		s.logger.WarnContext(r.Context(), "failed to store connectivity result",
			slog.String("domain", d.Name), slog.Any("error", err))
	}

	writeJSON(w, http.StatusOK, res)
	return nil
}

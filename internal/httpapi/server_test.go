package httpapi_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/dmitrymomot/scheduled/internal/httpapi"
	"github.com/dmitrymomot/scheduled/internal/repository"
	"github.com/dmitrymomot/scheduled/internal/tasks"
	"github.com/dmitrymomot/scheduled/internal/verification"
	"github.com/dmitrymomot/scheduled/pkg/cache"
	"github.com/dmitrymomot/scheduled/pkg/db"
	"github.com/dmitrymomot/scheduled/pkg/dnsverify"
	"github.com/dmitrymomot/scheduled/pkg/health"
	"github.com/dmitrymomot/scheduled/pkg/job"
)

const business = "biz-1"

type appointmentStore struct {
	mu       sync.Mutex
	inserted []repository.NewAppointment
	err      error
}

func (s *appointmentStore) InsertBatch(_ context.Context, _ string, _ uuid.UUID, appts []repository.NewAppointment) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return 0, s.err
	}
	s.inserted = append(s.inserted, appts...)
	return int64(len(appts)), nil
}

type archive struct {
	mu   sync.Mutex
	keys []string
	err  error
}

func (a *archive) ArchiveKey(businessID, importID, filename string) string {
	return businessID + "/" + importID + "/" + filename
}

func (a *archive) Put(_ context.Context, key string, _ []byte, _ string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.err != nil {
		return a.err
	}
	a.keys = append(a.keys, key)
	return nil
}

type domainStore struct {
	mu        sync.Mutex
	domains   map[uuid.UUID]repository.Domain
	reachable map[uuid.UUID]bool
}

func newDomainStore() *domainStore {
	return &domainStore{domains: map[uuid.UUID]repository.Domain{}, reachable: map[uuid.UUID]bool{}}
}

func (s *domainStore) Create(_ context.Context, nd repository.NewDomain) (repository.Domain, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, d := range s.domains {
		if d.Name == nd.Name {
			return repository.Domain{}, db.ErrDuplicate
		}
	}
	d := repository.Domain{
		ID:         uuid.New(),
		BusinessID: nd.BusinessID,
		Name:       nd.Name,
		OwnerEmail: nd.OwnerEmail,
		Token:      nd.Token,
		Status:     repository.StatusPending,
		CreatedAt:  time.Now(),
	}
	s.domains[d.ID] = d
	return d, nil
}

func (s *domainStore) Get(_ context.Context, id uuid.UUID) (repository.Domain, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.domains[id]
	if !ok {
		return repository.Domain{}, db.ErrNotFound
	}
	return d, nil
}

func (s *domainStore) MarkConnectivity(_ context.Context, id uuid.UUID, reachable bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reachable[id] = reachable
	return nil
}

type domainVerifier struct{}

func (domainVerifier) Verify(_ context.Context, d repository.Domain, method string) (verification.Outcome, error) {
	switch method {
	case "", verification.MethodTXT, verification.MethodCNAME:
	default:
		return verification.Outcome{}, verification.ErrUnknownMethod
	}
	d.Status = repository.StatusVerified
	d.Attempts++
	return verification.Outcome{
		Result: dnsverify.Result{Success: true, Data: dnsverify.Data{Expected: d.Token, RecordName: dnsverify.RecordName(d.Name)}},
		Domain: d,
	}, nil
}

type connectivity struct{ ok bool }

func (c connectivity) CheckConnectivity(context.Context, string) dnsverify.ConnectivityResult {
	return dnsverify.ConnectivityResult{Success: c.ok}
}

type enqueued struct {
	name    string
	payload any
}

type enqueuer struct {
	mu   sync.Mutex
	jobs []enqueued
}

func (e *enqueuer) Enqueue(_ context.Context, name string, payload any, _ ...job.EnqueueOption) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.jobs = append(e.jobs, enqueued{name: name, payload: payload})
	return nil
}

type fixture struct {
	server  *httpapi.Server
	appts   *appointmentStore
	archive *archive
	domains *domainStore
	jobs    *enqueuer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		appts:   &appointmentStore{},
		archive: &archive{},
		domains: newDomainStore(),
		jobs:    &enqueuer{},
	}
	f.server = httpapi.New(httpapi.Deps{
		Sessions:     cache.NewMemory[httpapi.ImportSession](time.Minute),
		Appointments: f.appts,
		Archive:      f.archive,
		Domains:      f.domains,
		Verifier:     domainVerifier{},
		Connectivity: connectivity{ok: true},
		Jobs:         f.jobs,
		Checks: health.Checks{
			"ok": func(context.Context) error { return nil },
		},
	}, httpapi.Options{
		CNAMETarget:     "custom.scheduled.app",
		SessionTTL:      time.Minute,
		FirstCheckDelay: time.Minute,
		PreviewLimit:    5,
	}, nil)
	return f
}

func (f *fixture) do(t *testing.T, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	f.server.ServeHTTP(rec, req)
	return rec
}

func upload(t *testing.T, filename string, content []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/businesses/"+business+"/imports", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

type importBody struct {
	Mapping  map[string]int `json:"mapping"`
	Filename string         `json:"filename"`
	Preview  struct {
		Preview []map[string]any `json:"preview"`
		Total   int              `json:"total"`
	} `json:"preview"`
	Unmapped []string  `json:"unmapped"`
	Skipped  int       `json:"skipped"`
	ImportID uuid.UUID `json:"import_id"`
}

type commitBody struct {
	Errors   []string  `json:"errors"`
	Imported int64     `json:"imported"`
	Rejected int       `json:"rejected"`
	ImportID uuid.UUID `json:"import_id"`
}

type errorBody struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	RequestID string `json:"request_id"`
}

const sampleCSV = "Client Name,Email,Service,Date,Time,Price,Room\n" +
	"<b>Jane Doe</b>,jane@example.com,Haircut,2024-03-15,2:30 PM,$45.00,A\n" +
	"Bob,,Massage,tomorrow,10:00,,B\n" +
	",x@example.com,Color,2024-03-16,09:00,,C\n"

func TestImportAndCommit(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	rec := f.do(t, upload(t, "clients.csv", []byte(sampleCSV)))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	imp := decode[importBody](t, rec)
	assert.Equal(t, "clients.csv", imp.Filename)
	assert.Equal(t, 1, imp.Skipped)
	assert.Equal(t, 2, imp.Preview.Total)
	assert.Equal(t, []string{"Room"}, imp.Unmapped)
	assert.Equal(t, 0, imp.Mapping["clientName"])
	assert.Equal(t, 4, imp.Mapping["time"])
	assert.Len(t, f.archive.keys, 1)

	commit := httptest.NewRequest(http.MethodPost,
		"/api/businesses/"+business+"/imports/"+imp.ImportID.String()+"/commit", nil)
	rec = f.do(t, commit)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	res := decode[commitBody](t, rec)
	assert.Equal(t, imp.ImportID, res.ImportID)
	assert.EqualValues(t, 1, res.Imported)
	assert.Equal(t, 1, res.Rejected)
	require.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0], "Appointment 2")

	require.Len(t, f.appts.inserted, 1)
	got := f.appts.inserted[0]
	assert.Equal(t, "Jane Doe", got.ClientName)
	assert.Equal(t, "2024-03-15", got.StartsOn.Format(time.DateOnly))
	assert.Equal(t, 14*time.Hour+30*time.Minute, got.StartsAt)
	require.NotNil(t, got.Price)
	assert.InDelta(t, 45.0, *got.Price, 0.001)

	// The session is consumed by a successful commit.
	rec = f.do(t, httptest.NewRequest(http.MethodPost,
		"/api/businesses/"+business+"/imports/"+imp.ImportID.String()+"/commit", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestImportWorkbook(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	wb := excelize.NewFile()
	sheet := wb.GetSheetName(0)
	require.NoError(t, wb.SetSheetRow(sheet, "A1", &[]any{"Customer", "Date", "Time", "Service"}))
	require.NoError(t, wb.SetSheetRow(sheet, "A2", &[]any{"Ann", "03/15/2024", "09:15", "Nails"}))
	buf, err := wb.WriteToBuffer()
	require.NoError(t, err)
	require.NoError(t, wb.Close())

	rec := f.do(t, upload(t, "book.xlsx", buf.Bytes()))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	imp := decode[importBody](t, rec)
	assert.Equal(t, 1, imp.Preview.Total)
	require.Len(t, imp.Preview.Preview, 1)
	assert.Equal(t, "2024-03-15", imp.Preview.Preview[0]["date"])
}

func TestImportErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		filename string
		content  []byte
		status   int
		code     string
	}{
		{"unsupported type", "clients.pdf", []byte("%PDF"), http.StatusUnsupportedMediaType, "unsupported_file_type"},
		{"broken workbook", "book.xlsx", []byte("not a zip"), http.StatusUnprocessableEntity, "invalid_workbook"},
		{"no extension match", "clients.json", []byte("{}"), http.StatusUnsupportedMediaType, "unsupported_file_type"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			f := newFixture(t)

			rec := f.do(t, upload(t, tt.filename, tt.content))
			require.Equal(t, tt.status, rec.Code, rec.Body.String())
			assert.Equal(t, tt.code, decode[errorBody](t, rec).Code)
		})
	}
}

func TestImportMissingFile(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	req := httptest.NewRequest(http.MethodPost, "/api/businesses/"+business+"/imports", strings.NewReader(""))
	req.Header.Set("Content-Type", "multipart/form-data; boundary=x")
	rec := f.do(t, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "missing_file", decode[errorBody](t, rec).Code)
}

func TestImportArchiveFailureIsIgnored(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.archive.err = errors.New("s3 down")

	rec := f.do(t, upload(t, "clients.csv", []byte(sampleCSV)))
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestCommitUnknownSession(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	rec := f.do(t, upload(t, "clients.csv", []byte(sampleCSV)))
	require.Equal(t, http.StatusCreated, rec.Code)
	imp := decode[importBody](t, rec)

	tests := []struct {
		name   string
		path   string
		status int
	}{
		{"bad id", "/api/businesses/" + business + "/imports/nope/commit", http.StatusBadRequest},
		{"unknown id", "/api/businesses/" + business + "/imports/" + uuid.NewString() + "/commit", http.StatusNotFound},
		{"other business", "/api/businesses/other/imports/" + imp.ImportID.String() + "/commit", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := f.do(t, httptest.NewRequest(http.MethodPost, tt.path, nil))
			assert.Equal(t, tt.status, rec.Code)
		})
	}
}

func TestCommitStoreFailure(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.appts.err = errors.New("connection reset")

	rec := f.do(t, upload(t, "clients.csv", []byte(sampleCSV)))
	require.Equal(t, http.StatusCreated, rec.Code)
	imp := decode[importBody](t, rec)

	rec = f.do(t, httptest.NewRequest(http.MethodPost,
		"/api/businesses/"+business+"/imports/"+imp.ImportID.String()+"/commit", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "connection reset")
}

func createDomain(t *testing.T, f *fixture, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/businesses/"+business+"/domains", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return f.do(t, req)
}

type domainBody struct {
	Instructions struct {
		TXT   struct{ Name, Value string } `json:"txt"`
		CNAME struct{ Name, Value string } `json:"cname"`
	} `json:"instructions"`
	Domain     string    `json:"domain"`
	OwnerEmail string    `json:"owner_email"`
	Token      string    `json:"token"`
	Status     string    `json:"status"`
	ID         uuid.UUID `json:"id"`
}

func TestCreateDomain(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	rec := createDomain(t, f, `{"domain":"https://Book.Example.com/path","owner_email":"Owner <owner@example.com>"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	d := decode[domainBody](t, rec)
	assert.Equal(t, "book.example.com", d.Domain)
	assert.Equal(t, "owner@example.com", d.OwnerEmail)
	assert.Equal(t, repository.StatusPending, d.Status)
	assert.True(t, strings.HasPrefix(d.Token, dnsverify.TokenPrefix))
	assert.Equal(t, "_scheduled-verification.book.example.com", d.Instructions.TXT.Name)
	assert.Equal(t, d.Token, d.Instructions.TXT.Value)
	assert.Equal(t, "custom.scheduled.app", d.Instructions.CNAME.Value)

	require.Len(t, f.jobs.jobs, 1)
	assert.Equal(t, tasks.VerifyDomainName, f.jobs.jobs[0].name)
	assert.Equal(t, tasks.VerifyDomainPayload{DomainID: d.ID}, f.jobs.jobs[0].payload)

	rec = createDomain(t, f, `{"domain":"book.example.com"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "domain_taken", decode[errorBody](t, rec).Code)
}

func TestCreateDomainInvalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		body   string
		status int
		code   string
	}{
		{"not json", `{`, http.StatusBadRequest, "invalid_json"},
		{"unknown field", `{"domain":"a.com","extra":1}`, http.StatusBadRequest, "invalid_json"},
		{"empty domain", `{"domain":""}`, http.StatusUnprocessableEntity, "invalid_domain"},
		{"ip address", `{"domain":"192.168.0.1"}`, http.StatusUnprocessableEntity, "invalid_domain"},
		{"bad email", `{"domain":"example.com","owner_email":"nope"}`, http.StatusUnprocessableEntity, "invalid_email"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			f := newFixture(t)

			rec := createDomain(t, f, tt.body)
			require.Equal(t, tt.status, rec.Code, rec.Body.String())
			assert.Equal(t, tt.code, decode[errorBody](t, rec).Code)
			assert.Empty(t, f.jobs.jobs)
		})
	}
}

func TestDomainLifecycle(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	rec := createDomain(t, f, `{"domain":"example.com"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	d := decode[domainBody](t, rec)
	base := "/api/businesses/" + business + "/domains/" + d.ID.String()

	rec = f.do(t, httptest.NewRequest(http.MethodGet, base, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, d.Token, decode[domainBody](t, rec).Token)

	rec = f.do(t, httptest.NewRequest(http.MethodGet, "/api/businesses/other/domains/"+d.ID.String(), nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.do(t, httptest.NewRequest(http.MethodPost, base+"/verify?method=cname", nil))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var out struct {
		Result struct {
			Success bool `json:"success"`
		} `json:"result"`
		Domain domainBody `json:"domain"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.True(t, out.Result.Success)
	assert.Equal(t, repository.StatusVerified, out.Domain.Status)

	rec = f.do(t, httptest.NewRequest(http.MethodPost, base+"/verify?method=mx", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_method", decode[errorBody](t, rec).Code)

	rec = f.do(t, httptest.NewRequest(http.MethodGet, base+"/connectivity", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decode[dnsverify.ConnectivityResult](t, rec).Success)
	assert.True(t, f.domains.reachable[d.ID])

	rec = f.do(t, httptest.NewRequest(http.MethodGet, "/api/businesses/"+business+"/domains/bad-id", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRequestID(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/nowhere", nil)
	req.Header.Set("X-Request-ID", "req-123")
	rec := f.do(t, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "req-123", rec.Header().Get("X-Request-ID"))
	assert.Equal(t, "req-123", decode[errorBody](t, rec).RequestID)

	rec = f.do(t, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestHealth(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	for _, path := range []string{"/health/live", "/health/ready"} {
		rec := f.do(t, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, rec.Code, path)
		assert.Equal(t, health.StatusHealthy, decode[health.Response](t, rec).Status)
	}
}

package httpapi

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/scheduled/pkg/csvimport"
	"github.com/dmitrymomot/scheduled/pkg/logger"
)

func TestRecovererRendersPanic(t *testing.T) {
	t.Parallel()
	s := &Server{logger: slog.New(slog.DiscardHandler)}

	h := requestID(s.recoverer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	})))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	var body errorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "panic", body.Code)
	assert.NotEmpty(t, body.RequestID)
}

func TestRecovererRepanicsAbort(t *testing.T) {
	t.Parallel()
	s := &Server{logger: slog.New(slog.DiscardHandler)}

	h := s.recoverer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic(http.ErrAbortHandler)
	}))
	assert.PanicsWithValue(t, http.ErrAbortHandler, func() {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	})
}

func TestBusinessContextTagsLogs(t *testing.T) {
	t.Parallel()

	var attrs []slog.Attr
	r := chi.NewRouter()
	r.Route("/api/businesses/{businessID}", func(r chi.Router) {
		r.Use(businessContext)
		r.Get("/domains", func(_ http.ResponseWriter, r *http.Request) {
			attrs = logger.Attrs(r.Context())
		})
	})
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/businesses/biz-9/domains", nil))

	require.Len(t, attrs, 1)
	assert.Equal(t, "business_id", attrs[0].Key)
	assert.Equal(t, "biz-9", attrs[0].Value.String())
}

func TestRequestIDTooLong(t *testing.T) {
	t.Parallel()

	var seen string
	h := requestID(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		seen = RequestIDFromContext(r.Context())
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(requestIDHeader, strings.Repeat("x", 129))
	h.ServeHTTP(httptest.NewRecorder(), req)

	assert.Len(t, seen, 36)
	attr, ok := RequestIDExtractor()(context.WithValue(context.Background(), requestIDKey{}, seen))
	assert.True(t, ok)
	assert.Equal(t, seen, attr.Value.String())
}

func TestToNewAppointment(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		in      csvimport.Appointment
		wantErr error
	}{
		{"valid", csvimport.Appointment{ClientName: "Ann", Date: "2024-02-29", Time: "23:59"}, nil},
		{"impossible date", csvimport.Appointment{ClientName: "Ann", Date: "2023-02-29", Time: "10:00"}, errDateFormat},
		{"raw date", csvimport.Appointment{ClientName: "Ann", Date: "next week", Time: "10:00"}, errDateFormat},
		{"bad hour", csvimport.Appointment{ClientName: "Ann", Date: "2024-01-01", Time: "25:00"}, errTimeFormat},
		{"markup only name", csvimport.Appointment{ClientName: "<script>x</script>", Date: "2024-01-01", Time: "10:00"}, errNoClient},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := toNewAppointment(tt.in)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/reverio/leadgen/internal/entity"
	"github.com/reverio/leadgen/internal/infra/auth"
)

func protectedRouter(sessions *auth.SessionManager) http.Handler {
	r := chi.NewRouter()
	r.Group(func(r chi.Router) {
		r.Use(RequireSession(sessions))
		r.Get("/me", func(w http.ResponseWriter, r *http.Request) {
			s, _ := SessionFrom(r.Context())
			w.Write([]byte(s.UserID))
		})
		r.With(RequireAdmin).Get("/admin", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		})
	})
	return r
}

func TestRequireSession(t *testing.T) {
	sessions := auth.NewSessionManager("secret", time.Hour)
	customer, _, err := sessions.Issue("user-1", "anna@example.se", entity.RoleCustomer)
	require.NoError(t, err)
	admin, _, err := sessions.Issue("admin-1", "admin@example.se", entity.RoleAdmin)
	require.NoError(t, err)

	router := protectedRouter(sessions)

	tests := []struct {
		name   string
		path   string
		setup  func(r *http.Request)
		status int
	}{
		{"no token", "/me", func(*http.Request) {}, http.StatusUnauthorized},
		{"bad token", "/me", func(r *http.Request) { r.Header.Set("Authorization", "Bearer junk") }, http.StatusUnauthorized},
		{"bearer", "/me", func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+customer) }, http.StatusOK},
		{"cookie", "/me", func(r *http.Request) { r.AddCookie(&http.Cookie{Name: SessionCookie, Value: customer}) }, http.StatusOK},
		{"customer on admin route", "/admin", func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+customer) }, http.StatusForbidden},
		{"admin on admin route", "/admin", func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+admin) }, http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			tt.setup(req)
			rec := httptest.NewRecorder()

			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)
		})
	}
}

func TestMetricsUsesRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Metrics)
	r.Get("/api/lead/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	before := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "/api/lead/{id}", "418"))
	for _, id := range []string{"1", "2", "3"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/lead/"+id, nil))
	}
	after := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "/api/lead/{id}", "418"))

	assert.Equal(t, 3.0, after-before)
}

func TestDomainCounters(t *testing.T) {
	before := testutil.ToFloat64(leadsAssigned)
	RecordLeadsAssigned(4)
	assert.Equal(t, 4.0, testutil.ToFloat64(leadsAssigned)-before)

	before = testutil.ToFloat64(assignmentFailures.WithLabelValues("INSUFFICIENT_CREDIT"))
	RecordAssignmentFailure("INSUFFICIENT_CREDIT")
	assert.Equal(t, 1.0, testutil.ToFloat64(assignmentFailures.WithLabelValues("INSUFFICIENT_CREDIT"))-before)
}

func TestRequestLogger(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	r := chi.NewRouter()
	r.Use(RequestLogger(zap.New(core)))
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0].ContextMap()
	assert.Equal(t, "/health", entry["route"])
	assert.EqualValues(t, 200, entry["status"])
}

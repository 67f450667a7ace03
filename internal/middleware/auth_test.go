package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestAdminGuard(t *testing.T) {
	guard := AdminGuard("secret", okHandler())

	req := httptest.NewRequest(http.MethodPost, "/api/import/GEIPAN", nil)
	req.Header.Set("X-Admin-Token", "secret")
	rec := httptest.NewRecorder()
	guard.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("valid header token rejected: %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/api/import/GEIPAN?admin_token=secret", nil)
	rec = httptest.NewRecorder()
	guard.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("valid query token rejected: %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/api/import/GEIPAN", nil)
	req.Header.Set("X-Admin-Token", "wrong")
	rec = httptest.NewRecorder()
	guard.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("wrong token accepted: %d", rec.Code)
	}
}

func TestAdminGuardEmptyConfiguredToken(t *testing.T) {
	guard := AdminGuard("", okHandler())
	req := httptest.NewRequest(http.MethodPost, "/api/import/GEIPAN", nil)
	rec := httptest.NewRecorder()
	guard.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("unset token must close the endpoint, got %d", rec.Code)
	}
}

func TestCronGuard(t *testing.T) {
	guard := CronGuard("tick", okHandler())

	req := httptest.NewRequest(http.MethodPost, "/api/geocode?cron_token=tick", nil)
	rec := httptest.NewRecorder()
	guard.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("valid cron token rejected: %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/api/geocode", nil)
	rec = httptest.NewRecorder()
	guard.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("missing cron token accepted: %d", rec.Code)
	}
}

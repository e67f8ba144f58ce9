package health_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/MrWong99/parseltongue/internal/health"
)

type body struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func get(t *testing.T, h *health.Handler, path string) (int, body) {
	t.Helper()
	mux := http.NewServeMux()
	h.Register(mux)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))

	var b body
	if err := json.NewDecoder(rec.Body).Decode(&b); err != nil {
		t.Fatalf("decode %s: %v", path, err)
	}
	return rec.Code, b
}

func ok(context.Context) error { return nil }

func TestHealthz(t *testing.T) {
	t.Parallel()

	failing := health.New(health.Check{Name: "store", Probe: func(context.Context) error { return errors.New("down") }})
	code, b := get(t, failing, "/healthz")
	if code != http.StatusOK || b.Status != "ok" {
		t.Errorf("GET /healthz = %d %q, want 200 ok", code, b.Status)
	}
}

func TestReadyz(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		checks     []health.Check
		wantStatus int
		want       map[string]string
	}{
		{name: "no checks", wantStatus: http.StatusOK, want: map[string]string{}},
		{
			name:       "all pass",
			checks:     []health.Check{{Name: "store", Probe: ok}, {Name: "thesaurus", Probe: ok}},
			wantStatus: http.StatusOK,
			want:       map[string]string{"store": "ok", "thesaurus": "ok"},
		},
		{
			name: "one fails",
			checks: []health.Check{
				{Name: "store", Probe: func(context.Context) error { return errors.New("connection refused") }},
				{Name: "thesaurus", Probe: ok},
			},
			wantStatus: http.StatusServiceUnavailable,
			want:       map[string]string{"store": "fail: connection refused", "thesaurus": "ok"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			code, b := get(t, health.New(tc.checks...), "/readyz")
			if code != tc.wantStatus {
				t.Errorf("status = %d, want %d", code, tc.wantStatus)
			}
			for name, want := range tc.want {
				if b.Checks[name] != want {
					t.Errorf("check %q = %q, want %q", name, b.Checks[name], want)
				}
			}
			wantStatus := "ok"
			if tc.wantStatus != http.StatusOK {
				wantStatus = "fail"
			}
			if b.Status != wantStatus {
				t.Errorf("status field = %q, want %q", b.Status, wantStatus)
			}
		})
	}
}

func TestRun_CancelledContext(t *testing.T) {
	t.Parallel()

	h := health.New(health.Check{Name: "slow", Probe: func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := h.Run(ctx)["slow"]; !errors.Is(err, context.Canceled) {
		t.Errorf("Run: slow = %v, want Canceled", err)
	}
}

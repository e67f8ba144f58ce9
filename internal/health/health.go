// Package health serves liveness and readiness probes next to the metrics
// endpoint.
//
//   - /healthz answers 200 while the process can serve HTTP.
//   - /readyz answers 200 only when every registered [Check] passes, for
//     example when the function store is reachable.
//
// Both respond with a JSON object holding a "status" of "ok" or "fail" and,
// for /readyz, the outcome of every check by name.
package health

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"
)

// DefaultTimeout bounds a single probe.
const DefaultTimeout = 5 * time.Second

// Check is a named readiness probe. Probe returns nil when the dependency is
// usable and must return promptly once ctx is done.
type Check struct {
	Name  string
	Probe func(ctx context.Context) error
}

type report struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// Handler serves the probes. The check list is fixed at construction.
type Handler struct {
	checks  []Check
	timeout time.Duration
}

// New returns a [Handler] running checks on every /readyz request.
func New(checks ...Check) *Handler {
	return &Handler{checks: append([]Check(nil), checks...), timeout: DefaultTimeout}
}

// Register adds the /healthz and /readyz routes to mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", h.Healthz)
	mux.HandleFunc("GET /readyz", h.Readyz)
}

// Healthz always reports ok.
func (h *Handler) Healthz(w http.ResponseWriter, _ *http.Request) {
	write(w, http.StatusOK, report{Status: "ok"})
}

// Readyz runs every check concurrently and reports 503 if any fails.
func (h *Handler) Readyz(w http.ResponseWriter, r *http.Request) {
	outcomes := h.Run(r.Context())

	rep := report{Status: "ok", Checks: make(map[string]string, len(outcomes))}
	status := http.StatusOK
	for name, err := range outcomes {
		if err != nil {
			rep.Checks[name] = "fail: " + err.Error()
			rep.Status = "fail"
			status = http.StatusServiceUnavailable
			continue
		}
		rep.Checks[name] = "ok"
	}
	write(w, status, rep)
}

// Run executes every check and returns its error by name.
func (h *Handler) Run(ctx context.Context) map[string]error {
	var (
		mu  sync.Mutex
		wg  sync.WaitGroup
		out = make(map[string]error, len(h.checks))
	)
	for _, c := range h.checks {
		wg.Add(1)
		go func() {
			defer wg.Done()
			cctx, cancel := context.WithTimeout(ctx, h.timeout)
			defer cancel()
			err := c.Probe(cctx)
			mu.Lock()
			out[c.Name] = err
			mu.Unlock()
		}()
	}
	wg.Wait()
	return out
}

func write(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

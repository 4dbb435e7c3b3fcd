package command

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/urfave/cli/v2"
)

// fakeAPI serves the marketplace endpoints the commands call.
type fakeAPI struct {
	expired atomic.Bool // answer 401 on booking calls

	mu       sync.Mutex
	created  []map[string]any
	canceled []string
}

func (f *fakeAPI) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/users/login", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["password"] != "secret1" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"message":"Invalid email or password"}`))
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"id": 7, "name": "Asha", "email": body["email"]})
	})
	mux.HandleFunc("POST /api/users", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]any{"id": 9, "name": body["name"], "email": body["email"]})
	})
	mux.HandleFunc("GET /api/providers", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[
			{"id":1,"name":"Ravi Pipes","serviceType":"Plumbing","area":"Indiranagar","rating":4.5},
			{"id":2,"name":"Sparkle Co","serviceType":"Cleaning","area":"Koramangala","rating":4.1}
		]`))
	})
	mux.HandleFunc("GET /api/bookings", func(w http.ResponseWriter, r *http.Request) {
		if f.expired.Load() {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(`[
			{"id":1,"service":"Plumbing","status":"Pending","bookingDate":"2030-01-02","bookingTime":"10:00"},
			{"id":3,"service":"Painting","status":"Completed","bookingDate":"2030-01-05","bookingTime":"12:00"}
		]`))
	})
	mux.HandleFunc("GET /api/bookings/{id}", func(w http.ResponseWriter, r *http.Request) {
		status := "Pending"
		if r.PathValue("id") == "404" {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"message":"Booking not found"}`))
			return
		}
		if r.PathValue("id") == "3" {
			status = "Completed"
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"id": 1, "service": "Plumbing", "status": status})
	})
	mux.HandleFunc("POST /api/bookings", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		f.mu.Lock()
		f.created = append(f.created, body)
		f.mu.Unlock()
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]any{"id": 11, "status": body["status"]})
	})
	mux.HandleFunc("DELETE /api/bookings/{id}", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.canceled = append(f.canceled, r.PathValue("id"))
		f.mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	})
	return mux
}

func (f *fakeAPI) createdBodies() []map[string]any {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]map[string]any(nil), f.created...)
}

func (f *fakeAPI) canceledIDs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.canceled...)
}

// harness runs commands against a fake backend with an isolated home.
type harness struct {
	t       *testing.T
	api     *fakeAPI
	url     string
	session string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("HYPERLOCAL_CONFIG", "")
	t.Setenv("HYPERLOCAL_PASSWORD", "")

	api := &fakeAPI{}
	srv := httptest.NewServer(api.handler())
	t.Cleanup(srv.Close)
	return &harness{
		t:       t,
		api:     api,
		url:     srv.URL,
		session: filepath.Join(home, "session.yaml"),
	}
}

// run executes one CLI invocation and returns stdout and stderr.
func (h *harness) run(args ...string) (string, string, error) {
	h.t.Helper()
	return h.runWithInput("", args...)
}

// runWithInput is run with input fed to the command's reader.
func (h *harness) runWithInput(input string, args ...string) (string, string, error) {
	h.t.Helper()
	var stdout, stderr bytes.Buffer
	a := App()
	a.Writer = &stdout
	a.ErrWriter = &stderr
	a.Reader = strings.NewReader(input)
	a.ExitErrHandler = func(*cli.Context, error) {}

	argv := []string{a.Name, "--api-url", h.url, "--session-backend", "file", "--session-path", h.session}
	err := a.Run(append(argv, args...))
	return stdout.String(), stderr.String(), err
}

// mustRun fails the test when the invocation errors.
func (h *harness) mustRun(args ...string) string {
	h.t.Helper()
	out, stderr, err := h.run(args...)
	if err != nil {
		h.t.Fatalf("%v: error = %v (stderr %q)", args, err, stderr)
	}
	return out
}

func (h *harness) login() {
	h.t.Helper()
	h.mustRun("login", "--email", "asha@example.com", "--password", "secret1")
}

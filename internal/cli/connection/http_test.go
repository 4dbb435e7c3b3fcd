package connection

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/yndnr/hyperlocal-go/internal/telemetry/logger"
	"github.com/yndnr/hyperlocal-go/internal/telemetry/metric"
)

// fakeSession is a minimal Session.
type fakeSession struct {
	mu     sync.Mutex
	token  string
	clears int
}

func (s *fakeSession) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

func (s *fakeSession) Clear(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.clears++
	return nil
}

func newTestClient(t *testing.T, h http.HandlerFunc, sess Session, opts ...Option) *HTTPClient {
	t.Helper()
	server := httptest.NewServer(h)
	t.Cleanup(server.Close)
	opts = append([]Option{WithLogger(logger.Discard())}, opts...)
	return NewHTTPClient(server.URL, sess, opts...)
}

func TestNewHTTPClient_BaseURL(t *testing.T) {
	tests := []struct {
		name   string
		server string
		want   string
	}{
		{"with http prefix", "http://localhost:8080", "http://localhost:8080"},
		{"with https prefix", "https://api.example.com", "https://api.example.com"},
		{"without prefix", "api.example.com", "https://api.example.com"},
		{"trailing slash", "http://localhost:8080/", "http://localhost:8080"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewHTTPClient(tt.server, nil)
			if c.BaseURL() != tt.want {
				t.Errorf("BaseURL() = %q, want %q", c.BaseURL(), tt.want)
			}
		})
	}
}

func TestSend_Headers(t *testing.T) {
	tests := []struct {
		name     string
		token    string
		body     any
		wantAuth string
		wantCT   string
	}{
		{"authenticated with body", "tok-1", map[string]string{"a": "b"}, "Bearer tok-1", "application/json"},
		{"anonymous without body", "", nil, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got http.Header
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				got = r.Header.Clone()
				w.WriteHeader(http.StatusOK)
			}, &fakeSession{token: tt.token})

			_, err := c.Send(context.Background(), &Request{Method: "POST", Path: "/api/x", Body: tt.body})
			if err != nil {
				t.Fatalf("Send() error = %v", err)
			}

			if got.Get("Authorization") != tt.wantAuth {
				t.Errorf("Authorization = %q, want %q", got.Get("Authorization"), tt.wantAuth)
			}
			if _, present := got["Authorization"]; tt.wantAuth == "" && present {
				t.Error("Authorization header should be absent")
			}
			if got.Get("Content-Type") != tt.wantCT {
				t.Errorf("Content-Type = %q, want %q", got.Get("Content-Type"), tt.wantCT)
			}
			if got.Get("Accept") != "application/json" {
				t.Errorf("Accept = %q", got.Get("Accept"))
			}
			if !strings.HasPrefix(got.Get("User-Agent"), "hyperlocal-cli/") {
				t.Errorf("User-Agent = %q", got.Get("User-Agent"))
			}
			if len(got.Get("X-Request-ID")) != 26 {
				t.Errorf("X-Request-ID = %q, want a ULID", got.Get("X-Request-ID"))
			}
		})
	}
}

func TestSend_TokenReadAtDispatch(t *testing.T) {
	var auth []string
	sess := &fakeSession{token: "first"}
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		auth = append(auth, r.Header.Get("Authorization"))
	}, sess)

	ctx := context.Background()
	_ = c.Get(ctx, "/api/bookings", nil)
	sess.mu.Lock()
	sess.token = "second"
	sess.mu.Unlock()
	_ = c.Get(ctx, "/api/bookings", nil)

	if len(auth) != 2 || auth[0] != "Bearer first" || auth[1] != "Bearer second" {
		t.Errorf("Authorization headers = %v", auth)
	}
}

func TestSend_CallerCannotOverrideAuthorization(t *testing.T) {
	var got string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("Authorization")
	}, &fakeSession{})

	h := http.Header{}
	h.Set("Authorization", "Bearer forged")
	h.Set("X-Trace", "1")
	if _, err := c.Send(context.Background(), &Request{Method: "GET", Path: "/api/x", Header: h}); err != nil {
		t.Fatal(err)
	}
	if got != "" {
		t.Errorf("Authorization = %q, want empty", got)
	}
}

func TestSend_Success(t *testing.T) {
	type booking struct {
		ID     int64  `json:"id"`
		Status string `json:"status"`
	}

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %q, want POST", r.Method)
		}
		if r.URL.Path != "/api/bookings" {
			t.Errorf("path = %q", r.URL.Path)
		}
		var in map[string]any
		_ = json.NewDecoder(r.Body).Decode(&in)
		if in["notes"] != "gate code 42" {
			t.Errorf("body = %v", in)
		}
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id":9,"status":"PENDING"}`))
	}, &fakeSession{token: "t"})

	var out booking
	if err := c.Post(context.Background(), "/api/bookings", map[string]string{"notes": "gate code 42"}, &out); err != nil {
		t.Fatalf("Post() error = %v", err)
	}
	if out.ID != 9 || out.Status != "PENDING" {
		t.Errorf("decoded = %+v", out)
	}
}

func TestSend_EmptyBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}, nil)

	var out map[string]any
	if err := c.Delete(context.Background(), "/api/bookings/3", &out); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if out != nil {
		t.Errorf("out = %v, want untouched", out)
	}
}

func TestSend_MalformedBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{not json`))
	}, nil)

	var out map[string]any
	if err := c.Get(context.Background(), "/api/x", &out); err == nil {
		t.Error("expected decode error")
	}
}

func TestSend_Unauthorized(t *testing.T) {
	sess := &fakeSession{token: "expired"}
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message":"token expired"}`))
	}, sess)

	var events []UnauthorizedEvent
	c.OnUnauthorized(func(ctx context.Context, ev UnauthorizedEvent) {
		if sess.Token() != "" {
			t.Error("session should be cleared before handlers run")
		}
		events = append(events, ev)
	})

	_, err := c.Send(context.Background(), &Request{Method: "get", Path: "/api/bookings"})
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("error = %v, want ErrUnauthorized", err)
	}
	var ue *UnauthorizedError
	if !errors.As(err, &ue) || ue.Message != "token expired" {
		t.Errorf("UnauthorizedError = %+v", ue)
	}
	if sess.clears != 1 || sess.Token() != "" {
		t.Errorf("session clears = %d, token = %q", sess.clears, sess.Token())
	}
	if len(events) != 1 || events[0].Method != "GET" || events[0].Path != "/api/bookings" || events[0].RequestID == "" {
		t.Errorf("events = %+v", events)
	}
	if StatusCode(err) != 401 {
		t.Errorf("StatusCode() = %d", StatusCode(err))
	}
}

func TestSend_APIError(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantMsg  string
		wantCode string
	}{
		{"message field", 400, `{"message":"Email already exists","code":"DUP"}`, "Email already exists", "DUP"},
		{"error field", 500, `{"timestamp":"x","status":500,"error":"Internal Server Error"}`, "Internal Server Error", ""},
		{"no payload", 503, ``, "request failed with status 503", ""},
		{"not json", 502, `<html>bad gateway</html>`, "request failed with status 502", ""},
		{"forbidden", 403, `{"message":"not yours"}`, "not yours", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sess := &fakeSession{token: "keep"}
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				io.WriteString(w, tt.body)
			}, sess)

			_, err := c.Send(context.Background(), &Request{Method: "GET", Path: "/api/x"})
			var apiErr *APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("error = %v, want *APIError", err)
			}
			if apiErr.StatusCode != tt.status || apiErr.Message != tt.wantMsg || apiErr.Code != tt.wantCode {
				t.Errorf("APIError = %+v", apiErr)
			}
			if errors.Is(err, ErrUnauthorized) {
				t.Error("non-401 must not match ErrUnauthorized")
			}
			if sess.Token() != "keep" || sess.clears != 0 {
				t.Error("session must be untouched on non-401 errors")
			}
		})
	}
}

func TestSend_TruncatedBody(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		check   func(t *testing.T, err error)
		cleared bool
	}{
		{"unauthorized", http.StatusUnauthorized, func(t *testing.T, err error) {
			if !errors.Is(err, ErrUnauthorized) || errors.Is(err, ErrNetwork) {
				t.Errorf("error = %v, want ErrUnauthorized", err)
			}
		}, true},
		{"server error", http.StatusInternalServerError, func(t *testing.T, err error) {
			var apiErr *APIError
			if !errors.As(err, &apiErr) || apiErr.Message != "request failed with status 500" {
				t.Errorf("error = %v, want fallback APIError", err)
			}
		}, false},
		{"success", http.StatusOK, func(t *testing.T, err error) {
			if !errors.Is(err, ErrNetwork) {
				t.Errorf("error = %v, want ErrNetwork", err)
			}
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sess := &fakeSession{token: "stale"}
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Length", "100")
				w.WriteHeader(tt.status)
				io.WriteString(w, `{"message":"tok`)
			}, sess)

			var events atomic.Int32
			c.OnUnauthorized(func(context.Context, UnauthorizedEvent) { events.Add(1) })

			_, err := c.Send(context.Background(), &Request{Method: "GET", Path: "/api/bookings"})
			tt.check(t, err)

			if got := sess.Token() == ""; got != tt.cleared {
				t.Errorf("session cleared = %v, want %v", got, tt.cleared)
			}
			wantEvents := int32(0)
			if tt.cleared {
				wantEvents = 1
			}
			if events.Load() != wantEvents {
				t.Errorf("unauthorized events = %d, want %d", events.Load(), wantEvents)
			}
		})
	}
}

func TestSend_NetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	sess := &fakeSession{token: "keep"}
	c := NewHTTPClient(url, sess, WithLogger(logger.Discard()))
	_, err := c.Send(context.Background(), &Request{Method: "GET", Path: "/api/x"})
	if !errors.Is(err, ErrNetwork) {
		t.Fatalf("error = %v, want ErrNetwork", err)
	}
	var ne *NetworkError
	if !errors.As(err, &ne) || ne.Err == nil {
		t.Errorf("NetworkError = %+v", ne)
	}
	if sess.Token() != "keep" {
		t.Error("session must be untouched on network errors")
	}
}

func TestSend_ContextTimeout(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := c.Send(ctx, &Request{Method: "GET", Path: "/api/slow"})
	if !errors.Is(err, ErrNetwork) || !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("error = %v, want network error wrapping deadline", err)
	}
}

func TestSend_InvalidRequest(t *testing.T) {
	var hits int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
	}, nil)

	tests := []struct {
		name string
		req  *Request
	}{
		{"nil", nil},
		{"bad method", &Request{Method: "TRACE", Path: "/api/x"}},
		{"relative path", &Request{Method: "GET", Path: "api/x"}},
		{"absolute url", &Request{Method: "GET", Path: "/http://evil.example"}},
		{"unmarshalable body", &Request{Method: "POST", Path: "/api/x", Body: make(chan int)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.Send(context.Background(), tt.req)
			if !errors.Is(err, ErrInvalidRequest) {
				t.Errorf("error = %v, want ErrInvalidRequest", err)
			}
		})
	}
	if hits != 0 {
		t.Errorf("server was hit %d times", hits)
	}
}

func TestSend_ConcurrentUnauthorized(t *testing.T) {
	sess := &fakeSession{token: "expired"}
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}, sess)

	var events int32
	c.OnUnauthorized(func(context.Context, UnauthorizedEvent) {
		atomic.AddInt32(&events, 1)
	})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := c.Get(context.Background(), "/api/bookings", nil); !errors.Is(err, ErrUnauthorized) {
				t.Errorf("error = %v", err)
			}
		}()
	}
	wg.Wait()

	if sess.Token() != "" {
		t.Error("session should be cleared")
	}
	if events != 8 {
		t.Errorf("events = %d, want 8", events)
	}
}

func TestSend_Metrics(t *testing.T) {
	reg := metric.NewRegistry()
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/9") {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.WriteHeader(http.StatusOK)
	}, &fakeSession{}, WithMetrics(reg))

	ctx := context.Background()
	_ = c.Get(ctx, "/api/bookings/3", nil)
	_ = c.Get(ctx, "/api/bookings/9", nil)

	var buf strings.Builder
	if err := reg.WriteText(&buf); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{
		`hyperlocal_client_api_requests_total{method="GET",route="/api/bookings/:id",status="2xx"} 1`,
		`hyperlocal_client_api_requests_total{method="GET",route="/api/bookings/:id",status="4xx"} 1`,
		`hyperlocal_client_unauthorized_responses_total 1`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("metrics missing %q\n%s", want, out)
		}
	}
}

func TestSend_RateLimit(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {}, nil, WithRateLimit(1, 1))

	ctx := context.Background()
	if err := c.Get(ctx, "/api/x", nil); err != nil {
		t.Fatal(err)
	}

	short, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	if err := c.Get(short, "/api/x", nil); err == nil {
		t.Error("second request should be blocked by the limiter")
	}
}

func TestRouteLabel(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"/api/bookings", "/api/bookings"},
		{"/api/bookings/42", "/api/bookings/:id"},
		{"/api/users/7?x=1", "/api/users/:id"},
		{"/api/users/login", "/api/users/login"},
	}
	for _, tt := range tests {
		if got := routeLabel(tt.in); got != tt.want {
			t.Errorf("routeLabel(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestIsNotFound(t *testing.T) {
	if !IsNotFound(&APIError{StatusCode: 404}) {
		t.Error("IsNotFound(404) = false")
	}
	if IsNotFound(errors.New("x")) {
		t.Error("IsNotFound(plain) = true")
	}
}

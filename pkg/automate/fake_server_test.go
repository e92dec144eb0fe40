package automate

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/require"
)

const (
	testUser     = "api-user"
	testPassword = "s3cret"
	testClientID = "3f2c9a1e-7d1b-4c55-9e0f-2a6b8c4d1e77"
)

// fakeClock is a manually advanced clock.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// loggedRequest is a data request received by fakeAutomate.
type loggedRequest struct {
	Path  string
	Query url.Values
	Auth  string
}

// fakeAutomate is an in-process stand-in for an Automate server. Routes are
// only reached by requests carrying a token it issued.
type fakeAutomate struct {
	t      *testing.T
	server *httptest.Server

	mu               sync.Mutex
	logins           int
	loginBodies      []loginRequest
	valid            map[string]bool
	loginStatus      int
	requireTwoFactor string
	denyNext         int
	routes           map[string]http.HandlerFunc
	requests         []loggedRequest
}

func newFakeAutomate(t *testing.T) *fakeAutomate {
	t.Helper()

	f := &fakeAutomate{
		t:      t,
		valid:  map[string]bool{},
		routes: map[string]http.HandlerFunc{},
	}
	f.server = httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(f.server.Close)
	return f
}

func (f *fakeAutomate) handle(path string, h http.HandlerFunc) {
	f.mu.Lock()
	f.routes[path] = h
	f.mu.Unlock()
}

func (f *fakeAutomate) loginCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.logins
}

func (f *fakeAutomate) loginRequests() []loginRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]loginRequest, len(f.loginBodies))
	copy(out, f.loginBodies)
	return out
}

func (f *fakeAutomate) dataRequests() []loggedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]loggedRequest, len(f.requests))
	copy(out, f.requests)
	return out
}

func (f *fakeAutomate) serve(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get(headerClientID) != testClientID {
		http.Error(w, "missing ClientId", http.StatusBadRequest)
		return
	}

	if r.URL.Path == loginPath {
		f.serveLogin(w, r)
		return
	}

	auth := r.Header.Get("Authorization")

	f.mu.Lock()
	f.requests = append(f.requests, loggedRequest{Path: r.URL.Path, Query: r.URL.Query(), Auth: auth})
	authorized := strings.HasPrefix(auth, "Bearer ") && f.valid[strings.TrimPrefix(auth, "Bearer ")]
	if authorized && f.denyNext > 0 {
		f.denyNext--
		authorized = false
	}
	handler := f.routes[r.URL.Path]
	f.mu.Unlock()

	if !authorized {
		http.Error(w, `{"Message":"Authorization has been denied for this request."}`, http.StatusUnauthorized)
		return
	}
	if handler == nil {
		http.NotFound(w, r)
		return
	}
	handler(w, r)
}

func (f *fakeAutomate) serveLogin(w http.ResponseWriter, r *http.Request) {
	var body loginRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.logins++
	f.loginBodies = append(f.loginBodies, body)

	if f.loginStatus != 0 {
		http.Error(w, `{"Message":"Invalid username or password."}`, f.loginStatus)
		return
	}
	if body.UserName != testUser || body.Password != testPassword {
		http.Error(w, `{"Message":"Invalid username or password."}`, http.StatusBadRequest)
		return
	}
	if f.requireTwoFactor != "" && body.TwoFactorPasscode != f.requireTwoFactor {
		writeJSON(w, map[string]any{"IsTwoFactorRequired": true})
		return
	}

	token := fmt.Sprintf("token-%d", f.logins)
	f.valid[token] = true
	writeJSON(w, map[string]any{
		"AccessToken":    token,
		"TokenType":      "Bearer",
		"ExpirationDate": "2099-01-01T00:00:00",
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// pagedRecords serves records honoring page and pageSize.
func pagedRecords(records []Record) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		size, _ := strconv.Atoi(r.URL.Query().Get("pageSize"))
		if page < 1 {
			page = 1
		}
		if size < 1 {
			size = DefaultPageSize
		}

		start := min((page-1)*size, len(records))
		end := min(start+size, len(records))
		writeJSON(w, records[start:end])
	}
}

func newTestClient(t *testing.T, f *fakeAutomate, clock *fakeClock, opts ...func(*Config)) *Client {
	t.Helper()

	cfg := &Config{
		ServerURL: f.server.URL + "/",
		Username:  testUser,
		Password:  testPassword,
		ClientID:  testClientID,
		Logger:    hclog.NewNullLogger(),
		Now:       clock.Now,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	c, err := NewClient(cfg)
	require.NoError(t, err)
	return c
}

// computer builds a computer record with a few fields outside CompactFields.
func computer(id int, name, client, status, os string, lastContact time.Time) Record {
	return Record{
		"Id":                  float64(id),
		"ComputerName":        name,
		"Client":              map[string]any{"Id": float64(id%3 + 1), "Name": client},
		"Location":            map[string]any{"Id": float64(1), "Name": "Main Office"},
		"Status":              status,
		"Type":                "Workstation",
		"OperatingSystemName": os,
		"LastContact":         lastContact.UTC().Format("2006-01-02T15:04:05"),
		"BiosManufacturer":    "Dell Inc.",
		"BiosVersion":         "1.12.0",
		"AssetTag":            "A-" + strconv.Itoa(id),
		"VirusScanner":        map[string]any{"Name": "Defender"},
	}
}

package vmhub

import (
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
)

const testLoginStatus = `{"gwWan":"f","conType":"LAN","muti":""}`

// Recorded request to fake hub
type hubReq struct {
	Path       string
	RawQuery   string
	Query      url.Values
	Credential string
}

// Fake hub web UI
type fakeHub struct {
	mu       sync.Mutex
	srv      *httptest.Server
	reqs     []hubReq
	statuses map[string][]int  // queued response statuses per path, 200 when empty
	bodies   map[string]string // response body per path
	snmp     map[string]string // snmpGet values per oid
	walks    map[string]string // walk response body per oid
	delays   map[string]time.Duration
	logins   int
}

func newFakeHub(t *testing.T) *fakeHub {
	t.Helper()

	f := &fakeHub{
		statuses: make(map[string][]int),
		bodies: map[string]string{
			"/login":  loginToken(testLoginStatus),
			"/logout": "",
		},
		snmp:   make(map[string]string),
		walks:  make(map[string]string),
		delays: make(map[string]time.Duration),
	}
	f.srv = httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(f.srv.Close)

	return f
}

func loginToken(status string) string {
	return base64.StdEncoding.EncodeToString([]byte(status))
}

func (f *fakeHub) serve(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	d := f.delays[r.URL.Path]
	f.mu.Unlock()

	// stalled response, released when client gives up
	if d > 0 {
		select {
		case <-time.After(d):
		case <-r.Context().Done():
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	rec := hubReq{Path: r.URL.Path, RawQuery: r.URL.RawQuery, Query: r.URL.Query()}
	if c, err := r.Cookie("credential"); err == nil {
		rec.Credential = c.Value
	}
	f.reqs = append(f.reqs, rec)

	if q := f.statuses[r.URL.Path]; len(q) > 0 {
		f.statuses[r.URL.Path] = q[1:]
		if q[0] != http.StatusOK {
			w.WriteHeader(q[0])
			return
		}
	}

	switch r.URL.Path {
	case "/login":
		f.logins++
	case "/snmpGet":
		_, _ = w.Write([]byte(f.snmpBody(r.URL.RawQuery)))
		return
	case "/walk":
		_, _ = w.Write([]byte(f.walks[r.URL.Query().Get("oids")]))
		return
	}

	_, _ = w.Write([]byte(f.bodies[r.URL.Path]))
}

// Build snmpGet response for raw "oids=a;b;&..." query
func (f *fakeHub) snmpBody(rawQuery string) string {
	var oids []string
	for _, part := range strings.Split(rawQuery, "&") {
		if strings.HasPrefix(part, "oids=") {
			for _, o := range strings.Split(strings.TrimPrefix(part, "oids="), ";") {
				if o != "" {
					oids = append(oids, o)
				}
			}
		}
	}

	if body, ok := f.bodies["/snmpGet"]; ok {
		return body
	}

	var b strings.Builder
	b.WriteString("{")
	n := 0
	for _, o := range oids {
		v, ok := f.snmp[o]
		if !ok {
			continue
		}
		if n > 0 {
			b.WriteString(",")
		}
		b.WriteString(`"` + o + `":"` + v + `"`)
		n++
	}
	b.WriteString("}")

	return b.String()
}

func (f *fakeHub) queue(path string, statuses ...int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statuses[path] = append(f.statuses[path], statuses...)
}

func (f *fakeHub) delay(path string, d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.delays[path] = d
}

func (f *fakeHub) setBody(path, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bodies[path] = body
}

func (f *fakeHub) requests() []hubReq {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]hubReq, len(f.reqs))
	copy(out, f.reqs)
	return out
}

func (f *fakeHub) paths() []string {
	var out []string
	for _, r := range f.requests() {
		out = append(out, r.Path)
	}
	return out
}

func (f *fakeHub) reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reqs = nil
}

// New hub pointed to fake hub. Backoff sleeps are recorded instead of slept.
func newTestHub(t *testing.T, f *fakeHub, p *Hparams) (*Hub, *[]time.Duration) {
	t.Helper()

	if p == nil {
		p = new(Hparams)
	}
	p.URL = f.srv.URL
	if p.Logger == nil {
		p.Logger = zap.NewNop()
	}

	h, err := NewHub(p)
	if err != nil {
		t.Fatalf("NewHub: %v", err)
	}

	var sleeps []time.Duration
	h.sleep = func(d time.Duration) { sleeps = append(sleeps, d) }
	t.Cleanup(func() { _ = h.Close() })

	return h, &sleeps
}

func (f *fakeHub) setSnmp(oid, v string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.snmp[oid] = v
}

func (f *fakeHub) setWalk(oid, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.walks[oid] = body
}

func (f *fakeHub) loginCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.logins
}

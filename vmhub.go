// Package vmhub - client for Virgin Media Hub 3 web UI and its SNMP over HTTP interface
package vmhub

import (
	"fmt"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/kr/pretty"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

// Version of release
const Version = "0.1.0"

// Defaults for new Hub object
const (
	DefaultHost     = "192.168.0.1"
	DefaultTimeout  = 10 * time.Second
	DefaultRetry401 = 5
	DefaultRetry500 = 3
	DefaultBackoff  = time.Second
	DefaultCacheTTL = 5 * time.Minute
)

// Parameters for new Hub object initialization
type Hparams struct {
	Host     string        // hostname or ip of hub. Default "192.168.0.1"
	URL      string        // base url of hub web UI. Default "http://" + Host
	Username string        // login username. Resolved from hub if empty
	Password string        // login password. Login is made on initialization if set
	Timeout  time.Duration // timeout of every single request. Default 10s
	Retry401 int           // re-login retries on HTTP 401. Default 5, negative disables
	Retry500 int           // backoff retries on HTTP 500. Default 3, negative disables
	Backoff  time.Duration // first backoff sleep, doubled after every retry. Default 1s
	UseCache bool          // serve repeated SnmpGet of same oid from cache
	CacheTTL time.Duration // cache expiration. Default 5m
	Logger   *zap.Logger   // Default no-op logger
	// Resolves username when Login is called without it.
	// Default reads admin username from hub (AuthUserName).
	UsernameResolver func(*Hub) (string, error)
}

// Hub object. Single Hub must not be used from concurrent goroutines.
type Hub struct {
	host     string
	url      string
	web      *resty.Client
	log      *zap.Logger
	counters *Counters
	cache    *cache.Cache
	useCache bool

	credential string // set iff logged in
	username   string
	password   string
	nonce      nonce

	retry401 int
	retry500 int
	backoff  time.Duration
	sleep    func(time.Duration)

	resolveUser func(*Hub) (string, error)
}

// Initialize new hub object.
// Logs in if password is set in params.
func NewHub(p *Hparams) (*Hub, error) {
	if p == nil {
		p = new(Hparams)
	}

	h := Hub{
		host:        p.Host,
		url:         strings.TrimRight(p.URL, "/"),
		log:         p.Logger,
		counters:    newCounters(),
		useCache:    p.UseCache,
		nonce:       newNonce(time.Now()),
		retry401:    budget(p.Retry401, DefaultRetry401),
		retry500:    budget(p.Retry500, DefaultRetry500),
		backoff:     p.Backoff,
		sleep:       time.Sleep,
		resolveUser: p.UsernameResolver,
	}

	if h.host == "" {
		h.host = DefaultHost
	}
	if h.url == "" {
		h.url = "http://" + h.host
	} else if !strings.HasPrefix(h.url, "http://") && !strings.HasPrefix(h.url, "https://") {
		return nil, fmt.Errorf("not valid hub url - %s", p.URL)
	}
	if h.log == nil {
		h.log = zap.NewNop()
	}
	if h.backoff <= 0 {
		h.backoff = DefaultBackoff
	}
	if h.resolveUser == nil {
		h.resolveUser = (*Hub).AuthUserName
	}

	timeout := p.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	h.web = webClient(timeout, defaultHeaders)

	ttl := p.CacheTTL
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	h.cache = cache.New(ttl, 2*ttl)

	h.log = h.log.With(zap.String("hub", h.host))

	// DEBUG
	if _, set := os.LookupEnv("VMHUB_DEBUG"); set {
		fmt.Printf("%# v\n", pretty.Formatter(h))
	}

	if p.Password != "" {
		if err := h.Login(p.Username, p.Password); err != nil {
			return nil, err
		}
	}

	// best effort logout of dropped sessions. Use Close or Session to release explicitly.
	runtime.SetFinalizer(&h, func(h *Hub) {
		_ = h.Logout()
	})

	return &h, nil
}

// Session creates hub, runs fn with it and logs out.
// Logout error is returned only if fn succeeded.
func Session(p *Hparams, fn func(*Hub) error) (err error) {
	h, err := NewHub(p)
	if err != nil {
		return err
	}

	defer func() {
		lerr := h.Close()
		if lerr != nil && err == nil {
			err = lerr
		}
	}()

	return fn(h)
}

// Close logs out from hub
func (h *Hub) Close() error {
	return h.Logout()
}

// Counters of hub session
func (h *Hub) Counters() *Counters {
	return h.counters
}

// IsLoggedIn reports whether hub session holds credential
func (h *Hub) IsLoggedIn() bool {
	return h.credential != ""
}

// Username of logged in user
func (h *Hub) Username() string {
	return h.username
}

// Host of hub
func (h *Hub) Host() string {
	return h.host
}

func (h *Hub) String() string {
	return fmt.Sprintf("Hub(hostname=%s, username=%s)", h.host, h.username)
}

// Returns default for zero budget, 0 for negative
func budget(v, def int) int {
	switch {
	case v < 0:
		return 0
	case v == 0:
		return def
	}
	return v
}

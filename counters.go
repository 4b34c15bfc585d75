package vmhub

import (
	"sort"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Counter names
const (
	cntLoginCalls      = "login_calls"
	cntLogoutCalls     = "logout_calls"
	cntGetCalls        = "get_calls"
	cntSnmpGetCalls    = "snmp_get_calls"
	cntSnmpGetsCalls   = "snmp_gets_calls"
	cntSnmpCacheHits   = "snmp_get_cache_hits"
	cntWalkCalls       = "walk_calls"
	cntRetries401      = "get_retries_401"
	cntRetries500      = "get_retries_500"
	cntRetries500Wait  = "get_retries_500_sleep_ms"
	cntTransportErrors = "get_transport_errors"
	cntHTTPPrefix      = "received_http_"
)

// Counters holds diagnostic call and retry counts of a Hub.
// Counts never change Hub behaviour.
type Counters struct {
	mu sync.Mutex
	m  map[string]int64
}

func newCounters() *Counters {
	return &Counters{m: make(map[string]int64)}
}

// Increase a counter. Missing counter is created.
func (c *Counters) bump(name string, by int64) {
	c.mu.Lock()
	c.m[name] += by
	c.mu.Unlock()
}

// Get counter value
func (c *Counters) Get(name string) int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.m[name]
}

// Snapshot returns a copy of all counters
func (c *Counters) Snapshot() map[string]int64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make(map[string]int64, len(c.m))
	for k, v := range c.m {
		out[k] = v
	}

	return out
}

// Names returns sorted counter names
func (c *Counters) Names() []string {
	s := c.Snapshot()
	out := make([]string, 0, len(s))
	for k := range s {
		out = append(out, k)
	}
	sort.Strings(out)

	return out
}

var countersDesc = prometheus.NewDesc(
	"vmhub_calls_total",
	"Hub session calls, retries and received HTTP statuses.",
	[]string{"host", "counter"},
	nil,
)

type countersCollector struct {
	host string
	c    *Counters
}

// Collector exposes counters as a prometheus.Collector labeled with hub host.
func (c *Counters) Collector(host string) prometheus.Collector {
	return &countersCollector{host: host, c: c}
}

func (cc *countersCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- countersDesc
}

func (cc *countersCollector) Collect(ch chan<- prometheus.Metric) {
	for name, v := range cc.c.Snapshot() {
		ch <- prometheus.MustNewConstMetric(countersDesc, prometheus.CounterValue, float64(v), cc.host, name)
	}
}

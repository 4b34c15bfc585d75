package vmhub

import (
	"fmt"
	"math/rand"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Cache busting parameters. Generated once per Hub and sent with every request.
type nonce struct {
	ts  string // "_" unix milliseconds
	rnd string // "_n" random 5 digit string
}

func newNonce(t time.Time) nonce {
	return nonce{
		ts:  strconv.FormatInt(t.UnixMilli(), 10),
		rnd: fmt.Sprintf("%05d", 10000+rand.Intn(90000)),
	}
}

// Query parameters with nonce added
func (n nonce) params(kv url.Values) url.Values {
	out := url.Values{
		"_":  {n.ts},
		"_n": {n.rnd},
	}
	for k, v := range kv {
		out[k] = v
	}

	return out
}

func (n nonce) String() string {
	return "_n=" + n.rnd + "&_=" + n.ts
}

// Path without query
func endpoint(path string) string {
	if i := strings.IndexByte(path, '?'); i >= 0 {
		return path[:i]
	}
	return path
}

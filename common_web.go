package vmhub

import (
	"crypto/tls"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

// Add additional default headers
type headerRoundTripper struct {
	r http.RoundTripper
	h map[string][]string
}

func (rt headerRoundTripper) RoundTrip(r *http.Request) (*http.Response, error) {
	for k, v := range rt.h {
		r.Header[k] = v
	}

	return rt.r.RoundTrip(r)
}

// Headers sent with every request. Hub web UI sends the same.
var defaultHeaders = map[string][]string{
	"X-Requested-With": {"XMLHttpRequest"},
	"Accept":           {"application/json, text/javascript, */*"},
}

// Get underlying http client of hub session
func (h *Hub) WebSession() *http.Client {
	return h.web.GetClient()
}

// Create http client.
// No cookie jar is used. Credential cookie is attached per request only while logged in.
func webClient(timeout time.Duration, headers map[string][]string) *resty.Client {
	// disable certificate check
	tr := &http.Transport{
		Proxy:           http.ProxyFromEnvironment,
		TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
	}

	return resty.New().
		SetTransport(headerRoundTripper{r: tr, h: headers}).
		SetTimeout(timeout).
		SetRetryCount(0)
}

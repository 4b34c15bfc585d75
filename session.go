package vmhub

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// Retry budgets of single request
type retries struct {
	on401 int
	on500 int
}

func (h *Hub) defaultRetries() retries {
	return retries{on401: h.retry401, on500: h.retry500}
}

// Outcome of single request attempt
type attemptOutcome int

const (
	outcomeSuccess attemptOutcome = iota
	outcomeReauth
	outcomeBackoff
	outcomeFailed
)

func (o attemptOutcome) String() string {
	switch o {
	case outcomeSuccess:
		return "success"
	case outcomeReauth:
		return "reauth"
	case outcomeBackoff:
		return "backoff"
	default:
		return "failed"
	}
}

// Decide what to do with response status. Reauth needs remaining 401 budget and credential,
// backoff needs remaining 500 budget.
func classify(status int, left retries, loggedIn bool) attemptOutcome {
	switch {
	case status >= 200 && status < 300:
		return outcomeSuccess
	case status == http.StatusUnauthorized:
		if left.on401 > 0 && loggedIn {
			return outcomeReauth
		}
	case status == http.StatusInternalServerError:
		if left.on500 > 0 {
			return outcomeBackoff
		}
	}

	return outcomeFailed
}

// Terminal error of failed request
func failure(path string, res *resty.Response) error {
	if res.StatusCode() == http.StatusUnauthorized {
		return &AccessDeniedError{Path: path}
	}

	return &HTTPError{Path: path, StatusCode: res.StatusCode(), Status: res.Status()}
}

// Make http Get request to hub with retries.
// "path" may contain raw query string. Params are added to query.
// On HTTP 401 logs in again and retries, on HTTP 500 retries after exponential backoff.
func (h *Hub) get(path string, params url.Values, left retries) (*resty.Response, error) {
	h.counters.bump(cntGetCalls, 1)
	wait := h.backoff

	for {
		req := h.web.R()
		if params != nil {
			req.SetQueryParamsFromValues(params)
		}
		if h.IsLoggedIn() {
			req.SetCookie(&http.Cookie{Name: "credential", Value: h.credential})
		}

		res, err := req.Get(h.url + "/" + path)
		if err != nil {
			h.counters.bump(cntTransportErrors, 1)
			return nil, fmt.Errorf("request %s failed - %w", endpoint(path), err)
		}

		h.counters.bump(cntHTTPPrefix+strconv.Itoa(res.StatusCode()), 1)

		switch classify(res.StatusCode(), left, h.IsLoggedIn()) {
		case outcomeSuccess:
			return res, nil
		case outcomeReauth:
			left.on401--
			h.counters.bump(cntRetries401, 1)
			h.log.Warn("got http status - retrying after logging in again",
				zap.String("path", endpoint(path)),
				zap.Int("status", res.StatusCode()),
				zap.Int("retries_left", left.on401),
			)
			if err := h.Login(h.username, h.password); err != nil {
				return nil, fmt.Errorf("re-login after %s failed - %w", endpoint(path), err)
			}
		case outcomeBackoff:
			left.on500--
			h.log.Warn("got http status - retrying after backoff",
				zap.String("path", endpoint(path)),
				zap.Int("status", res.StatusCode()),
				zap.Duration("sleep", wait),
				zap.Int("retries_left", left.on500),
			)
			h.sleep(wait)
			h.counters.bump(cntRetries500, 1)
			h.counters.bump(cntRetries500Wait, wait.Milliseconds())
			wait *= 2
		default:
			return nil, failure(endpoint(path), res)
		}
	}
}

// Status flags of login response
type LoginStatus struct {
	GwWan   string `json:"gwWan"`
	ConType string `json:"conType"`
	Muti    string `json:"muti"`
}

// Another user session which was active on login. Empty if none.
func (s LoginStatus) OtherSession() string {
	switch {
	case s.GwWan == "f" && s.ConType == "LAN":
		switch s.Muti {
		case "GW_WAN":
			return "remote user"
		case "LAN":
			return "other local user"
		}
	case s.GwWan == "t":
		switch s.Muti {
		case "LAN":
			return "local user"
		case "GW_WAN":
			return "other remote user"
		}
	}

	return ""
}

// Login to hub and store credential for subsequent requests.
// Default username is resolved if "username" is empty.
func (h *Hub) Login(username, password string) error {
	_, err := h.login(username, password)
	return err
}

// LoginWithStatus logs in like Login and returns status flags reported by hub
func (h *Hub) LoginWithStatus(username, password string) (LoginStatus, error) {
	return h.login(username, password)
}

func (h *Hub) login(username, password string) (LoginStatus, error) {
	var st LoginStatus
	h.counters.bump(cntLoginCalls, 1)

	if username == "" {
		u, err := h.resolveUser(h)
		if err != nil {
			return st, fmt.Errorf("resolve login username failed - %w", err)
		}
		username = u
	}

	arg := base64.StdEncoding.EncodeToString([]byte(username + ":" + password))
	left := h.defaultRetries()
	left.on401 = 0

	res, err := h.get("login", h.nonce.params(url.Values{"arg": {arg}}), left)
	if err != nil {
		return st, err
	}

	body := res.Body()
	if len(body) == 0 {
		return st, &LoginFailedError{
			StatusCode: res.StatusCode(),
			Header:     res.Header(),
			Reason:     "empty response",
		}
	}

	decoded, err := base64.StdEncoding.DecodeString(strings.TrimSpace(string(body)))
	if err == nil {
		err = json.Unmarshal(decoded, &st)
	}
	if err != nil {
		return st, &LoginFailedError{
			StatusCode: res.StatusCode(),
			Header:     res.Header(),
			Content:    body,
			Reason:     err.Error(),
		}
	}

	if other := st.OtherSession(); other != "" {
		h.log.Warn("user has already logged in, some requests may fail with http status 401",
			zap.String("session", other),
			zap.String("gwWan", st.GwWan),
			zap.String("conType", st.ConType),
			zap.String("muti", st.Muti),
		)
	}

	h.credential = strings.TrimSpace(string(body))
	h.username = username
	h.password = password

	return st, nil
}

// Logout from hub. Does nothing if not logged in.
// Local session state is cleared even if hub notification fails.
func (h *Hub) Logout() error {
	if !h.IsLoggedIn() {
		return nil
	}
	h.counters.bump(cntLogoutCalls, 1)

	defer func() {
		h.credential = ""
		h.username = ""
		h.password = ""
		h.cache.Flush()
	}()

	_, err := h.get("logout", h.nonce.params(nil), retries{})
	if err != nil {
		var nerr net.Error
		if errors.As(err, &nerr) {
			h.log.Warn("logout notification failed", zap.Error(err))
			return nil
		}
		return err
	}

	return nil
}

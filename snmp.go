package vmhub

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

// Line injected by hub firmware into some walk responses
const walkErrLine = "Error in OID formatting!"

// Decode JSON object into map of strings.
// String values are unquoted, other values are kept as JSON text.
func (h *Hub) jsonStrings(op string, body []byte) (map[string]string, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		h.log.Error("can not decode response", zap.String("op", op), zap.ByteString("content", body))
		return nil, &DecodeError{Op: op, Content: string(body), Err: err}
	}

	out := make(map[string]string, len(raw))
	for k, v := range raw {
		var s string
		if err := json.Unmarshal(v, &s); err != nil {
			s = string(v)
		}
		out[k] = s
	}

	return out, nil
}

// Get single oid
func (h *Hub) SnmpGet(oid string) (string, error) {
	h.counters.bump(cntSnmpGetCalls, 1)

	// return from cache if allowed and cache is present
	if h.useCache {
		if x, found := h.cache.Get(oid); found {
			h.counters.bump(cntSnmpCacheHits, 1)
			return x.(string), nil
		}
	}

	r, err := h.SnmpGets([]string{oid})
	if err != nil {
		return "", err
	}

	v, ok := r[oid]
	if !ok {
		return "", &DecodeError{Op: "snmpGet", Content: oid, Err: fmt.Errorf("oid missing in response")}
	}

	return v, nil
}

// Get multiple oids with single request. Returns map of values keyed by oid.
func (h *Hub) SnmpGets(oids []string) (map[string]string, error) {
	h.counters.bump(cntSnmpGetsCalls, 1)

	// hub expects literal ";" separated oid list terminated with ";"
	path := "snmpGet?oids=" + strings.Join(oids, ";") + ";&" + h.nonce.String()
	res, err := h.get(path, nil, h.defaultRetries())
	if err != nil {
		return nil, err
	}

	out, err := h.jsonStrings("snmpGet", res.Body())
	if err != nil {
		return nil, err
	}

	// save to cache
	if h.useCache {
		for _, oid := range oids {
			if v, ok := out[oid]; ok {
				h.cache.Set(oid, v, cache.DefaultExpiration)
			}
		}
	}

	return out, nil
}

// Walk oid subtree. Returns map of values keyed by oid suffix after "oid.".
func (h *Hub) Walk(oid string) (map[string]string, error) {
	h.counters.bump(cntWalkCalls, 1)

	res, err := h.get("walk", h.nonce.params(url.Values{"oids": {oid}}), h.defaultRetries())
	if err != nil {
		return nil, err
	}

	r, err := h.jsonStrings("walk", repairWalkBody(res.Body()))
	if err != nil {
		return nil, err
	}

	return walkResult(oid, r), nil
}

// HACK hub firmware injects "Error in OID formatting!" line into otherwise valid JSON.
// Drop whole lines only, values may contain the same text.
func repairWalkBody(body []byte) []byte {
	lines := strings.Split(string(body), "\n")
	out := lines[:0]
	for _, l := range lines {
		if strings.TrimSpace(l) == walkErrLine {
			continue
		}
		out = append(out, l)
	}

	return []byte(strings.Join(out, "\n"))
}

// Drop trailing "1":"Finish" entry and strip oid prefix from keys
func walkResult(oid string, r map[string]string) map[string]string {
	if r["1"] == "Finish" {
		delete(r, "1")
	}

	prefix := strings.TrimPrefix(oid, ".") + "."
	out := make(map[string]string, len(r))
	for k, v := range r {
		out[strings.TrimPrefix(strings.TrimPrefix(k, "."), prefix)] = v
	}

	return out
}

// Get JSON endpoint response as map of strings
func (h *Hub) getJSON(path string) (map[string]string, error) {
	res, err := h.get(path, h.nonce.params(nil), h.defaultRetries())
	if err != nil {
		return nil, err
	}

	return h.jsonStrings(path, res.Body())
}

// Get connection type of current session ("LAN" or "WAN")
func (h *Hub) ConnectionType() (string, error) {
	r, err := h.getJSON("checkConnType")
	if err != nil {
		return "", err
	}

	v, ok := r["conType"]
	if !ok {
		return "", &DecodeError{Op: "checkConnType", Content: fmt.Sprint(r), Err: fmt.Errorf("conType missing")}
	}

	return v, nil
}

// Get gateway address reported before login
func (h *Hub) GatewayAddress() (string, error) {
	r, err := h.getJSON("getPreLoginData")
	if err != nil {
		return "", err
	}

	v, ok := r["gwaddr"]
	if !ok {
		return "", &DecodeError{Op: "getPreLoginData", Content: fmt.Sprint(r), Err: fmt.Errorf("gwaddr missing")}
	}

	return v, nil
}

// Get router status values keyed by oid
func (h *Hub) RouterStatus() (map[string]string, error) {
	return h.getJSON("getRouterStatus")
}

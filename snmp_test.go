package vmhub

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnmpGets(t *testing.T) {
	f := newFakeHub(t)
	f.setSnmp("1.2.3", "a")
	f.setSnmp("4.5.6", "$c2a80464")
	h, _ := newTestHub(t, f, nil)

	r, err := h.SnmpGets([]string{"1.2.3", "4.5.6", "7.8.9"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"1.2.3": "a", "4.5.6": "$c2a80464"}, r)

	reqs := f.requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "/snmpGet", reqs[0].Path)
	assert.Equal(t, "oids=1.2.3;4.5.6;7.8.9;&_n="+h.nonce.rnd+"&_="+h.nonce.ts, reqs[0].RawQuery)
	assert.Equal(t, int64(1), h.Counters().Get(cntSnmpGetsCalls))
}

func TestSnmpGetNonStringValues(t *testing.T) {
	f := newFakeHub(t)
	f.setBody("/snmpGet", `{"1.2.3": 42, "4.5.6": null}`)
	h, _ := newTestHub(t, f, nil)

	r, err := h.SnmpGets([]string{"1.2.3", "4.5.6"})
	require.NoError(t, err)
	assert.Equal(t, "42", r["1.2.3"])
	assert.Equal(t, "", r["4.5.6"])
}

func TestSnmpGetBadJSON(t *testing.T) {
	f := newFakeHub(t)
	f.setBody("/snmpGet", `{"1.2.3": "a",`)
	h, sleeps := newTestHub(t, f, nil)

	_, err := h.SnmpGet("1.2.3")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDecode))

	var derr *DecodeError
	require.True(t, errors.As(err, &derr))
	assert.Equal(t, `{"1.2.3": "a",`, derr.Content)
	assert.Equal(t, "snmpGet", derr.Op)

	// decode errors are not retried
	assert.Len(t, f.requests(), 1)
	assert.Empty(t, *sleeps)
}

func TestSnmpGetMissingOid(t *testing.T) {
	f := newFakeHub(t)
	h, _ := newTestHub(t, f, nil)

	_, err := h.SnmpGet("1.2.3")
	assert.True(t, errors.Is(err, ErrDecode))
}

func TestSnmpGetCache(t *testing.T) {
	f := newFakeHub(t)
	f.setSnmp("1.2.3", "a")
	h, _ := newTestHub(t, f, &Hparams{Username: "admin", Password: "secret", UseCache: true})
	f.reset()

	for i := 0; i < 3; i++ {
		v, err := h.SnmpGet("1.2.3")
		require.NoError(t, err)
		assert.Equal(t, "a", v)
	}
	assert.Equal(t, []string{"/snmpGet"}, f.paths())
	assert.Equal(t, int64(2), h.Counters().Get(cntSnmpCacheHits))

	require.NoError(t, h.Logout())
	f.setSnmp("1.2.3", "b")
	v, err := h.SnmpGet("1.2.3")
	require.NoError(t, err)
	assert.Equal(t, "b", v)
}

func TestSnmpGetNoCache(t *testing.T) {
	f := newFakeHub(t)
	f.setSnmp("1.2.3", "a")
	h, _ := newTestHub(t, f, nil)

	for i := 0; i < 2; i++ {
		_, err := h.SnmpGet("1.2.3")
		require.NoError(t, err)
	}
	assert.Len(t, f.requests(), 2)
}

const walkOid = "1.3.6.1.4.1.4115.1.20.1.1.6.7"

func TestWalk(t *testing.T) {
	clean := "{\n" +
		`"1.3.6.1.4.1.4115.1.20.1.1.6.7.1.2.1":"$c0a80001",` + "\n" +
		`"1.3.6.1.4.1.4115.1.20.1.1.6.7.1.3.1":"Error in OID formatting! is not a line",` + "\n" +
		`"1.3.6.1.4.1.4115.1.20.1.1.6.7.1.4.1":"1"` + "\n" +
		"}\n"
	quirky := "{\n" +
		`"1.3.6.1.4.1.4115.1.20.1.1.6.7.1.2.1":"$c0a80001",` + "\n" +
		"Error in OID formatting!\n" +
		`"1.3.6.1.4.1.4115.1.20.1.1.6.7.1.3.1":"Error in OID formatting! is not a line",` + "\n" +
		"  Error in OID formatting!  \n" +
		`"1.3.6.1.4.1.4115.1.20.1.1.6.7.1.4.1":"1",` + "\n" +
		`"1":"Finish"` + "\n" +
		"}\n"

	f := newFakeHub(t)
	h, _ := newTestHub(t, f, nil)

	f.setWalk(walkOid, clean)
	want, err := h.Walk(walkOid)
	require.NoError(t, err)

	f.setWalk(walkOid, quirky)
	got, err := h.Walk(walkOid)
	require.NoError(t, err)

	assert.Equal(t, want, got)
	assert.Equal(t, map[string]string{
		"1.2.1": "$c0a80001",
		"1.3.1": "Error in OID formatting! is not a line",
		"1.4.1": "1",
	}, got)

	reqs := f.requests()
	require.Len(t, reqs, 2)
	assert.Equal(t, walkOid, reqs[0].Query.Get("oids"))
	assert.Equal(t, h.nonce.rnd, reqs[0].Query.Get("_n"))
	assert.Equal(t, int64(2), h.Counters().Get(cntWalkCalls))
}

func TestWalkBadJSON(t *testing.T) {
	f := newFakeHub(t)
	f.setWalk(walkOid, "{\n\"a\":\n}")
	h, _ := newTestHub(t, f, nil)

	_, err := h.Walk(walkOid)
	var derr *DecodeError
	require.True(t, errors.As(err, &derr))
	assert.Equal(t, "walk", derr.Op)
}

func TestRepairWalkBody(t *testing.T) {
	in := "{\nError in OID formatting!\n\"a\":\"Error in OID formatting!\"\n}"
	assert.Equal(t, "{\n\"a\":\"Error in OID formatting!\"\n}", string(repairWalkBody([]byte(in))))
}

func TestWalkResult(t *testing.T) {
	r := walkResult(".1.2", map[string]string{
		"1.2.3.4": "a",
		"9.9":     "b",
		"1":       "Finish",
	})
	assert.Equal(t, map[string]string{"3.4": "a", "9.9": "b"}, r)

	// "1" is dropped only with "Finish" value
	r = walkResult("1.2", map[string]string{"1": "other"})
	assert.Equal(t, map[string]string{"1": "other"}, r)
}

func TestJSONEndpoints(t *testing.T) {
	f := newFakeHub(t)
	f.setBody("/checkConnType", `{"conType":"LAN"}`)
	f.setBody("/getPreLoginData", `{"gwaddr":"192.168.0.1"}`)
	f.setBody("/getRouterStatus", `{"1.2.3":"x","4.5":7}`)
	h, _ := newTestHub(t, f, nil)

	ct, err := h.ConnectionType()
	require.NoError(t, err)
	assert.Equal(t, "LAN", ct)

	gw, err := h.GatewayAddress()
	require.NoError(t, err)
	assert.Equal(t, "192.168.0.1", gw)

	st, err := h.RouterStatus()
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"1.2.3": "x", "4.5": "7"}, st)
}

func TestJSONEndpointMissingKey(t *testing.T) {
	f := newFakeHub(t)
	f.setBody("/checkConnType", `{}`)
	f.setBody("/getPreLoginData", `{}`)
	h, _ := newTestHub(t, f, nil)

	_, err := h.ConnectionType()
	assert.True(t, errors.Is(err, ErrDecode))
	_, err = h.GatewayAddress()
	assert.True(t, errors.Is(err, ErrDecode))
}

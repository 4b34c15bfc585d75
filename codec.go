package vmhub

import (
	"encoding/hex"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/praserx/ipconv"
)

// Common types for decoded values. IsSet is false for values the hub reports as not set.
type ValString struct {
	Value string
	IsSet bool
}

type ValI64 struct {
	Value int64
	IsSet bool
}

type ValTime struct {
	Value time.Time
	IsSet bool
}

// All zero encodings mean "not set"
var (
	ipv6Unset = strings.Repeat("0", 32)
	dateUnset = strings.Repeat("0", 16)
)

// Returns hex digits of hub encoded value after checking their count.
// Leading "$" is optional.
func hexDigits(op, s string, n int) (string, error) {
	h := strings.TrimPrefix(s, "$")
	if len(h) != n {
		return "", &DecodeError{
			Op:      op,
			Content: s,
			Err:     fmt.Errorf("expected %d hex digits, got %d", n, len(h)),
		}
	}

	return h, nil
}

// Returns bytes of hub encoded value
func hexBytes(op, s string, n int) ([]byte, error) {
	h, err := hexDigits(op, s, n)
	if err != nil {
		return nil, err
	}

	b, err := hex.DecodeString(h)
	if err != nil {
		return nil, &DecodeError{Op: op, Content: s, Err: err}
	}

	return b, nil
}

// Decode IPv4 address.
// The hub encodes IPv4 addresses in hex prefixed by a dollar sign, fe. "$c2a80464" => "192.168.4.100"
func ExtractIPv4(s string) (string, error) {
	b, err := hexBytes("ipv4", s, 8)
	if err != nil {
		return "", err
	}

	v := uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])

	return ipconv.IntToIPv4(v).String(), nil
}

// Decode IPv6 address.
// All zero value means that address is not assigned. Groups are not compressed.
func ExtractIPv6(s string) (ValString, error) {
	var out ValString
	h, err := hexDigits("ipv6", s, 32)
	if err != nil {
		return out, err
	}
	if h == ipv6Unset {
		return out, nil
	}
	if _, err := hex.DecodeString(h); err != nil {
		return out, &DecodeError{Op: "ipv6", Content: s, Err: err}
	}

	groups := make([]string, 0, 8)
	for i := 0; i < 32; i += 4 {
		groups = append(groups, h[i:i+4])
	}

	out.Value = strings.Join(groups, ":")
	out.IsSet = true

	return out, nil
}

// Decode MAC address, fe. "$787b8a6413f5" => "78:7b:8a:64:13:f5"
func ExtractMAC(s string) (string, error) {
	b, err := hexBytes("mac", s, 12)
	if err != nil {
		return "", err
	}

	return net.HardwareAddr(b).String(), nil
}

// Decode date.
// E.g. "$07e2030e10071100" is:
//
//	0x07e2 year = 2018
//	0x03   month = March
//	0x0e   day of month = 14
//	0x10   hour = 16
//	0x07   minute = 7
//	0x11   second = 17
//	0x00   unknown, ignored
//
// All zero value means that date is not set.
// Hub does not report time zone. Returned time is in UTC location with hub wall clock values.
func ExtractDate(s string) (ValTime, error) {
	var out ValTime
	if strings.TrimPrefix(s, "$") == dateUnset {
		return out, nil
	}

	b, err := hexBytes("date", s, 16)
	if err != nil {
		return out, err
	}

	year := int(b[0])<<8 | int(b[1])
	month, day := int(b[2]), int(b[3])
	hour, minute, sec := int(b[4]), int(b[5]), int(b[6])

	var rerr error
	switch {
	case month < 1 || month > 12:
		rerr = fmt.Errorf("month %d out of range", month)
	case day < 1 || day > daysIn(year, time.Month(month)):
		rerr = fmt.Errorf("day %d out of range", day)
	case hour > 23:
		rerr = fmt.Errorf("hour %d out of range", hour)
	case minute > 59:
		rerr = fmt.Errorf("minute %d out of range", minute)
	case sec > 59:
		rerr = fmt.Errorf("second %d out of range", sec)
	}
	if rerr != nil {
		return out, &DecodeError{Op: "date", Content: s, Err: rerr}
	}

	out.Value = time.Date(year, time.Month(month), day, hour, minute, sec, 0, time.UTC)
	out.IsSet = true

	return out, nil
}

// Number of days in month
func daysIn(year int, m time.Month) int {
	return time.Date(year, m+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// Decode integer. Empty value means that integer is not set.
func ExtractInt(s string) (ValI64, error) {
	var out ValI64
	s = strings.TrimSpace(s)
	if s == "" {
		return out, nil
	}

	i, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return out, &DecodeError{Op: "int", Content: s, Err: err}
	}

	out.Value = i
	out.IsSet = true

	return out, nil
}

// Decode boolean flag. Hub uses "1" for true.
func ExtractBool(s string) bool {
	return strings.TrimSpace(s) == "1"
}

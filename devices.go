package vmhub

import (
	"iter"
	"sort"
	"strconv"
	"strings"
)

// Tables walked for listings
const (
	oidLanClientTable   = "1.3.6.1.4.1.4115.1.20.1.1.2.4.2.1"
	oidPortForwardTable = "1.3.6.1.4.1.4115.1.20.1.1.4.12.1"
)

// Device known to hub LAN side
type LanDevice struct {
	Index    string
	IPv4     string
	HostName string
	MAC      string
	LeaseEnd ValTime
	Online   bool
}

// Port forwarding rule
type PortForward struct {
	Index          string
	ExtStartPort   ValI64
	ExtEndPort     ValI64
	Protocol       string
	LocalIPv4      string
	LocalStartPort ValI64
	LocalEndPort   ValI64
	Enabled        bool
}

// Group walked table values by row index.
// Walk keys are "<column>.<row index>".
func tableRows(w map[string]string) map[string]map[int]string {
	out := make(map[string]map[int]string)
	for k, v := range w {
		parts := strings.SplitN(k, ".", 2)
		if len(parts) != 2 {
			continue
		}
		col, err := strconv.Atoi(parts[0])
		if err != nil {
			continue
		}

		if out[parts[1]] == nil {
			out[parts[1]] = make(map[int]string)
		}
		out[parts[1]][col] = v
	}

	return out
}

// Returns row indexes sorted by numeric sub-identifiers
func sortedRows(rows map[string]map[int]string) []string {
	idx := make([]string, 0, len(rows))
	for k := range rows {
		idx = append(idx, k)
	}

	sort.Slice(idx, func(i, j int) bool {
		a, b := strings.Split(idx[i], "."), strings.Split(idx[j], ".")
		for n := 0; n < len(a) && n < len(b); n++ {
			x, errx := strconv.Atoi(a[n])
			y, erry := strconv.Atoi(b[n])
			if errx != nil || erry != nil {
				if a[n] != b[n] {
					return a[n] < b[n]
				}
				continue
			}
			if x != y {
				return x < y
			}
		}
		return len(a) < len(b)
	})

	return idx
}

// Returns iterator over devices known to hub LAN side in table index order
func (h *Hub) LanDevices() (iter.Seq[LanDevice], error) {
	w, err := h.Walk(oidLanClientTable)
	if err != nil {
		return nil, err
	}

	rows := tableRows(w)
	devs := make([]LanDevice, 0, len(rows))
	for _, i := range sortedRows(rows) {
		r := rows[i]
		d := LanDevice{
			Index:    i,
			HostName: r[3],
			Online:   ExtractBool(r[14]),
		}

		if v, ok := r[2]; ok {
			if d.IPv4, err = ExtractIPv4(v); err != nil {
				return nil, err
			}
		}
		if v, ok := r[4]; ok {
			if d.MAC, err = ExtractMAC(v); err != nil {
				return nil, err
			}
		}
		if v, ok := r[9]; ok {
			if d.LeaseEnd, err = ExtractDate(v); err != nil {
				return nil, err
			}
		}

		devs = append(devs, d)
	}

	return func(yield func(LanDevice) bool) {
		for _, d := range devs {
			if !yield(d) {
				return
			}
		}
	}, nil
}

// Port forwarding protocol name
func protoStr(s string) string {
	switch s {
	case "1":
		return "udp"
	case "2":
		return "tcp"
	case "3":
		return "both"
	default:
		return s
	}
}

// Returns iterator over port forwarding rules in table index order
func (h *Hub) PortForwards() (iter.Seq[PortForward], error) {
	w, err := h.Walk(oidPortForwardTable)
	if err != nil {
		return nil, err
	}

	rows := tableRows(w)
	rules := make([]PortForward, 0, len(rows))
	for _, i := range sortedRows(rows) {
		r := rows[i]
		f := PortForward{
			Index:    i,
			Protocol: protoStr(r[4]),
			Enabled:  ExtractBool(r[11]),
		}

		for col, dst := range map[int]*ValI64{
			2: &f.ExtStartPort,
			3: &f.ExtEndPort,
			7: &f.LocalStartPort,
			8: &f.LocalEndPort,
		} {
			if *dst, err = ExtractInt(r[col]); err != nil {
				return nil, err
			}
		}

		if v, ok := r[6]; ok {
			if f.LocalIPv4, err = ExtractIPv4(v); err != nil {
				return nil, err
			}
		}

		rules = append(rules, f)
	}

	return func(yield func(PortForward) bool) {
		for _, f := range rules {
			if !yield(f) {
				return
			}
		}
	}, nil
}

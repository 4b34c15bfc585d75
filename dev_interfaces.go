package vmhub

import "iter"

// Session functionality
type HubSession interface {
	Login(string, string) error
	Logout() error
	IsLoggedIn() bool
	Close() error
}

// SNMP over HTTP access
type HubSnmpReader interface {
	SnmpGet(string) (string, error)
	SnmpGets([]string) (map[string]string, error)
	Walk(string) (map[string]string, error)
}

// Get info about hub WAN side
type HubWanReader interface {
	WanIPv4Address() (string, error)
	WanIPv4Gateway() (string, error)
	WanIPv6Addr() (ValString, error)
	WanIPv6Gateway() (ValString, error)
	WanMACAddr() (string, error)
	DNSServers() (string, error)
}

// Get hub hardware and software info
type HubSysReader interface {
	HardwareVersion() (string, error)
	SerialNo() (string, error)
	SoftwareVersion() (string, error)
}

// Functionality related to LAN devices and port forwarding
type HubLanReader interface {
	LanDevices() (iter.Seq[LanDevice], error)
	PortForwards() (iter.Seq[PortForward], error)
}

var (
	_ HubSession    = (*Hub)(nil)
	_ HubSnmpReader = (*Hub)(nil)
	_ HubWanReader  = (*Hub)(nil)
	_ HubSysReader  = (*Hub)(nil)
	_ HubLanReader  = (*Hub)(nil)
)

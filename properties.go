package vmhub

import (
	"fmt"
	"sort"
)

// Kind of hub value. Defines how raw value is decoded.
type Kind int

const (
	KindString Kind = iota
	KindIPv4
	KindIPv6
	KindMAC
	KindDate
	KindInt
	KindBool
	KindWalk
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindIPv4:
		return "ipv4"
	case KindIPv6:
		return "ipv6"
	case KindMAC:
		return "mac"
	case KindDate:
		return "date"
	case KindInt:
		return "int"
	case KindBool:
		return "bool"
	case KindWalk:
		return "walk"
	default:
		return fmt.Sprintf("%d", int(k))
	}
}

// Named hub value
type Property struct {
	Name string
	OID  string
	Kind Kind
	Doc  string
}

// Known oids
const (
	oidWanIPv4Address      = "1.3.6.1.4.1.4115.1.20.1.1.1.7.1.3.1"
	oidDNSServers          = "1.3.6.1.4.1.4115.1.20.1.1.1.11.2.1.3.1"
	oidWanIPv4Gateway      = "1.3.6.1.4.1.4115.1.20.1.1.1.7.1.6.1"
	oidHardwareVersion     = "1.3.6.1.4.1.4115.1.20.1.1.5.10.0"
	oidSerialNo            = "1.3.6.1.4.1.4115.1.20.1.1.5.8.0"
	oidSoftwareVersion     = "1.3.6.1.4.1.4115.1.20.1.1.5.11.0"
	oidWanMACAddr          = "1.3.6.1.4.1.4115.1.20.1.1.1.13.0"
	oidLanguage            = "1.3.6.1.4.1.4115.1.20.1.1.5.6.0"
	oidFirstInstallWizard  = "1.3.6.1.4.1.4115.1.20.1.1.5.62.0"
	oidWanIPv4LeaseExpiry  = "1.3.6.1.4.1.4115.1.20.1.1.1.12.4.0"
	oidWanIPv4LeaseSecs    = "1.3.6.1.4.1.4115.1.20.1.1.1.12.3.0"
	oidWanIPv6Addr         = "1.3.6.1.4.1.4115.1.20.1.1.1.7.1.3.2"
	oidWanIPv6Gateway      = "1.3.6.1.4.1.4115.1.20.1.1.1.7.1.6.2"
	oidPacketCableRegion   = "1.3.6.1.4.1.4115.1.3.4.1.3.8.0"
	oidErouterInitModeCtrl = "1.3.6.1.4.1.4491.2.1.14.1.5.4.0"
	oidAuthUserName        = "1.3.6.1.4.1.4115.1.20.1.1.5.16.1.2.1"
	oidWebAccessTable      = "1.3.6.1.4.1.4115.1.20.1.1.6.7"
)

// Static table of known hub values
var properties = []Property{
	{"wanIPv4Address", oidWanIPv4Address, KindIPv4, "current external IP address of the hub"},
	{"dns_servers", oidDNSServers, KindIPv4, "DNS server used by the hub"},
	{"wanIPv4Gateway", oidWanIPv4Gateway, KindIPv4, "default gateway of the hub"},
	{"hardwareVersion", oidHardwareVersion, KindString, "hardware version of the hub"},
	{"serialNo", oidSerialNo, KindString, "serial number of the hub"},
	{"softwareVersion", oidSoftwareVersion, KindString, "software version of the hub"},
	{"wanMACAddr", oidWanMACAddr, KindMAC, "WAN MAC address"},
	{"language", oidLanguage, KindString, "web UI language"},
	{"firstInstallWizardCompleted", oidFirstInstallWizard, KindBool, "first install wizard is completed"},
	{"wanIPv4LeaseExpiryDate", oidWanIPv4LeaseExpiry, KindDate, "expiry date of WAN DHCP lease"},
	{"wanIPv4LeaseTimeSecsRemaining", oidWanIPv4LeaseSecs, KindInt, "seconds remaining of WAN DHCP lease"},
	{"wanIPv6Addr", oidWanIPv6Addr, KindIPv6, "current external IPv6 address of the hub"},
	{"wanIPv6Gateway", oidWanIPv6Gateway, KindIPv6, "default IPv6 gateway"},
	{"cmDoc30SetupPacketCableRegion", oidPacketCableRegion, KindInt, ""},
	{"esafeErouterInitModeCtrl", oidErouterInitModeCtrl, KindInt, ""},
	{"authUserName", oidAuthUserName, KindString, "name of the admin user"},
	{"docsisBaseCapability", "1.3.6.1.2.1.10.127.1.1.5", KindString, ""},
	{"docsBpi2CmPrivacyEnable", "1.3.6.1.2.1.126.1.1.1.1.1", KindString, ""},
	{"configFile", "1.3.6.1.2.1.69.1.4.5", KindString, ""},
	{"wanIPProvMode", "1.3.6.1.4.1.4115.1.20.1.1.1.17.0", KindString, ""},
	{"DSLiteWanEnable", "1.3.6.1.4.1.4115.1.20.1.1.1.18.1.0", KindString, ""},
	{"customID", "1.3.6.1.4.1.4115.1.20.1.1.5.14.0", KindString, ""},
	{"authAccountEnabled", "1.3.6.1.4.1.4115.1.20.1.1.5.16.1.6.2", KindString, ""},
	// some values can not be fetched with snmpGet, they have to be walked
	{"webAccessTable", oidWebAccessTable, KindWalk, ""},
}

var propertyIdx = func() map[string]Property {
	m := make(map[string]Property, len(properties))
	for _, p := range properties {
		m[p.Name] = p
	}
	return m
}()

// Properties returns known hub values sorted by name
func Properties() []Property {
	out := make([]Property, len(properties))
	copy(out, properties)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })

	return out
}

// Decode raw value according to kind.
// Returns string, ValString, ValTime, ValI64 or bool.
func Decode(k Kind, raw string) (interface{}, error) {
	switch k {
	case KindIPv4:
		return ExtractIPv4(raw)
	case KindIPv6:
		return ExtractIPv6(raw)
	case KindMAC:
		return ExtractMAC(raw)
	case KindDate:
		return ExtractDate(raw)
	case KindInt:
		return ExtractInt(raw)
	case KindBool:
		return ExtractBool(raw), nil
	default:
		return raw, nil
	}
}

// Get named value from hub. Walk values are returned as map[string]string.
func (h *Hub) Property(name string) (interface{}, error) {
	p, ok := propertyIdx[name]
	if !ok {
		return nil, fmt.Errorf("unknown property - %s", name)
	}

	if p.Kind == KindWalk {
		return h.Walk(p.OID)
	}

	raw, err := h.SnmpGet(p.OID)
	if err != nil {
		return nil, err
	}

	return Decode(p.Kind, raw)
}

// Get oid and decode its value
func getAs[T any](h *Hub, oid string, decode func(string) (T, error)) (T, error) {
	raw, err := h.SnmpGet(oid)
	if err != nil {
		var zero T
		return zero, err
	}

	return decode(raw)
}

func asString(s string) (string, error) {
	return s, nil
}

// Current external IP address of the hub
func (h *Hub) WanIPv4Address() (string, error) {
	return getAs(h, oidWanIPv4Address, ExtractIPv4)
}

// DNS server used by the hub.
// Hub always reports single address, the same one it hands out in DHCP responses.
func (h *Hub) DNSServers() (string, error) {
	return getAs(h, oidDNSServers, ExtractIPv4)
}

// Default gateway of the hub
func (h *Hub) WanIPv4Gateway() (string, error) {
	return getAs(h, oidWanIPv4Gateway, ExtractIPv4)
}

func (h *Hub) HardwareVersion() (string, error) {
	return getAs(h, oidHardwareVersion, asString)
}

func (h *Hub) SerialNo() (string, error) {
	return getAs(h, oidSerialNo, asString)
}

// Get running software version
func (h *Hub) SoftwareVersion() (string, error) {
	return getAs(h, oidSoftwareVersion, asString)
}

func (h *Hub) WanMACAddr() (string, error) {
	return getAs(h, oidWanMACAddr, ExtractMAC)
}

func (h *Hub) Language() (string, error) {
	return getAs(h, oidLanguage, asString)
}

func (h *Hub) FirstInstallWizardCompleted() (bool, error) {
	return getAs(h, oidFirstInstallWizard, func(s string) (bool, error) {
		return ExtractBool(s), nil
	})
}

// Expiry date of WAN DHCP lease
func (h *Hub) WanIPv4LeaseExpiryDate() (ValTime, error) {
	return getAs(h, oidWanIPv4LeaseExpiry, ExtractDate)
}

// Seconds remaining of WAN DHCP lease
func (h *Hub) WanIPv4LeaseTimeSecsRemaining() (ValI64, error) {
	return getAs(h, oidWanIPv4LeaseSecs, ExtractInt)
}

// Current external IPv6 address. Not set if hub has no IPv6 address.
func (h *Hub) WanIPv6Addr() (ValString, error) {
	return getAs(h, oidWanIPv6Addr, ExtractIPv6)
}

func (h *Hub) WanIPv6Gateway() (ValString, error) {
	return getAs(h, oidWanIPv6Gateway, ExtractIPv6)
}

func (h *Hub) CmDoc30SetupPacketCableRegion() (ValI64, error) {
	return getAs(h, oidPacketCableRegion, ExtractInt)
}

func (h *Hub) EsafeErouterInitModeCtrl() (ValI64, error) {
	return getAs(h, oidErouterInitModeCtrl, ExtractInt)
}

// Name of the admin user. Used as default login username.
func (h *Hub) AuthUserName() (string, error) {
	return getAs(h, oidAuthUserName, asString)
}

func (h *Hub) WebAccessTable() (map[string]string, error) {
	return h.Walk(oidWebAccessTable)
}

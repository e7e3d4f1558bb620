package types

import (
	"encoding/json"
	"fmt"
	"hash/fnv"
	"net/netip"
	"strings"
)

// An IPAddr is a Cedar IP address or range, e.g. `192.168.0.1` or
// `10.0.0.0/8`.
type IPAddr netip.Prefix

// ParseIPAddr converts a string containing an address or a CIDR range
// into an IPAddr.
func ParseIPAddr(s string) (IPAddr, error) {
	if strings.Contains(s, "/") {
		p, err := netip.ParsePrefix(s)
		if err != nil {
			return IPAddr{}, fmt.Errorf("error parsing ip value %q: %w", s, err)
		}
		return IPAddr(p), nil
	}
	a, err := netip.ParseAddr(s)
	if err != nil {
		return IPAddr{}, fmt.Errorf("error parsing ip value %q: %w", s, err)
	}
	return IPAddr(netip.PrefixFrom(a, a.BitLen())), nil
}

// Prefix returns the value as a netip.Prefix.
func (i IPAddr) Prefix() netip.Prefix { return netip.Prefix(i) }

// Addr returns the address part of the value.
func (i IPAddr) Addr() netip.Addr { return netip.Prefix(i).Addr() }

// Equal returns true if the input represents the same address or range.
func (i IPAddr) Equal(v Value) bool {
	other, ok := v.(IPAddr)
	return ok && netip.Prefix(i) == netip.Prefix(other)
}

// IsIPv4 reports whether the address is IPv4.
func (i IPAddr) IsIPv4() bool { return i.Addr().Is4() }

// IsIPv6 reports whether the address is IPv6.
func (i IPAddr) IsIPv6() bool { return i.Addr().Is6() && !i.Addr().Is4In6() }

// IsLoopback reports whether every address in the range is loopback.
func (i IPAddr) IsLoopback() bool {
	if i.IsIPv4() {
		loop := netip.MustParsePrefix("127.0.0.0/8")
		return loop.Contains(i.Addr()) && i.Prefix().Bits() >= 8
	}
	return i.Addr() == netip.IPv6Loopback() && i.Prefix().Bits() == 128
}

// IsMulticast reports whether every address in the range is multicast.
func (i IPAddr) IsMulticast() bool {
	if !i.Addr().IsMulticast() {
		return false
	}
	need := 4
	if i.IsIPv6() {
		need = 8
	}
	return i.Prefix().Bits() >= need
}

// Contains reports whether the range i fully contains the range of other.
func (i IPAddr) Contains(other IPAddr) bool {
	return i.Prefix().Bits() <= other.Prefix().Bits() &&
		i.Prefix().Contains(other.Addr())
}

// String produces the address in its canonical text form. The prefix
// length is omitted for single addresses.
func (i IPAddr) String() string {
	if i.Prefix().Bits() == i.Addr().BitLen() {
		return i.Addr().String()
	}
	return i.Prefix().String()
}

// MarshalCedar renders the IPAddr as a Cedar extension literal, e.g.
// `ip("10.0.0.0/8")`.
func (i IPAddr) MarshalCedar() []byte {
	return []byte(`ip(` + QuoteString(i.String()) + `)`)
}

// MarshalJSON marshals the IPAddr using the `__extn` escape.
func (i IPAddr) MarshalJSON() ([]byte, error) {
	return json.Marshal(entityEscapeJSON{Extn: &extnJSON{Fn: "ip", Arg: i.String()}})
}

func (i IPAddr) Hash() uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(i.String()))
	return h.Sum64()
}

package utils

import (
	"net"
	"net/http"
	"net/netip"
	"strings"
)

// Proxy headers carrying the client address, in the order ClientIP trusts them.
var proxyIPHeaders = []string{
	"X-Forwarded-For",
	"X-Nf-Client-Connection-Ip", // netlify
	"CF-Connecting-IP",          // cloudflared
	"X-Real-IP",
}

// ParseHostNoPort returns the host of "ip:port", "[v6]:port" or "host".
func ParseHostNoPort(s string) string {
	if s == "" {
		return ""
	}
	if h, _, err := net.SplitHostPort(s); err == nil {
		return h
	}
	return strings.Trim(s, "[]")
}

// FirstForwardedFor returns the left-most entry of an X-Forwarded-For value.
func FirstForwardedFor(xff string) string {
	first, _, _ := strings.Cut(xff, ",")
	return strings.TrimSpace(first)
}

// ClientIP resolves the client address. With trustProxy the proxy headers
// win over RemoteAddr; only enable it when the service is reachable through
// a trusted proxy alone (netlify, cloudflared).
func ClientIP(r *http.Request, trustProxy bool) string {
	if trustProxy {
		for _, h := range proxyIPHeaders {
			v := FirstForwardedFor(r.Header.Get(h))
			if ip := ParseHostNoPort(v); ip != "" {
				return ip
			}
		}
	}
	return ParseHostNoPort(r.RemoteAddr)
}

// IPMatcher matches addresses against exact IPs and CIDRs.
// An exact IP is stored as a single address prefix.
type IPMatcher struct {
	prefixes []netip.Prefix
}

// NewIPMatcher parses list, skipping entries that are neither an IP nor a CIDR.
func NewIPMatcher(list []string) *IPMatcher {
	m := &IPMatcher{}
	for _, raw := range list {
		s := strings.TrimSpace(raw)
		if s == "" {
			continue
		}
		if p, err := netip.ParsePrefix(s); err == nil {
			m.prefixes = append(m.prefixes, p.Masked())
			continue
		}
		if addr, err := netip.ParseAddr(s); err == nil {
			addr = addr.Unmap()
			m.prefixes = append(m.prefixes, netip.PrefixFrom(addr, addr.BitLen()))
		}
	}
	return m
}

func (m *IPMatcher) IsEmpty() bool { return len(m.prefixes) == 0 }

// Allow reports whether ip is matched. IPv4-mapped IPv6 addresses match
// their IPv4 rules.
func (m *IPMatcher) Allow(ip string) bool {
	addr, err := netip.ParseAddr(strings.TrimSpace(ip))
	if err != nil {
		return false
	}
	addr = addr.Unmap().WithZone("")
	for _, p := range m.prefixes {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}

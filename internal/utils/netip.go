package utils

import (
	"net"
	"net/http"
	"net/netip"
	"strings"
)

// ClientIP returns the caller address used for rate limiting and admin
// guards. Proxy headers (CF-Connecting-IP, then the left-most
// X-Forwarded-For hop, then X-Real-IP) are read only when trustProxy is
// set. Anything unparsable falls back to RemoteAddr without its port.
func ClientIP(r *http.Request, trustProxy bool) string {
	if trustProxy {
		for _, v := range []string{
			r.Header.Get("CF-Connecting-IP"),
			firstHop(r.Header.Get("X-Forwarded-For")),
			r.Header.Get("X-Real-IP"),
		} {
			if a, ok := parseAddr(v); ok {
				return a.String()
			}
		}
	}
	if a, ok := parseAddr(r.RemoteAddr); ok {
		return a.String()
	}
	if h, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return h
	}
	return r.RemoteAddr
}

func firstHop(xff string) string {
	hop, _, _ := strings.Cut(xff, ",")
	return hop
}

// parseAddr accepts "ip", "ip:port" and "[v6]:port". IPv4-mapped IPv6
// addresses are unmapped so they match IPv4 prefixes.
func parseAddr(s string) (netip.Addr, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return netip.Addr{}, false
	}
	if ap, err := netip.ParseAddrPort(s); err == nil {
		return ap.Addr().Unmap(), true
	}
	if a, err := netip.ParseAddr(s); err == nil {
		return a.Unmap(), true
	}
	return netip.Addr{}, false
}

// CIDRSet is an allow-list of prefixes. Bare addresses are stored as
// single-address prefixes.
type CIDRSet []netip.Prefix

// ParseCIDRSet skips blank and invalid items.
func ParseCIDRSet(list []string) CIDRSet {
	var set CIDRSet
	for _, raw := range list {
		s := strings.TrimSpace(raw)
		if s == "" {
			continue
		}
		if p, err := netip.ParsePrefix(s); err == nil {
			set = append(set, p.Masked())
			continue
		}
		if a, err := netip.ParseAddr(s); err == nil {
			a = a.Unmap()
			set = append(set, netip.PrefixFrom(a, a.BitLen()))
		}
	}
	return set
}

// Contains reports whether ip falls in any prefix of the set.
func (s CIDRSet) Contains(ip string) bool {
	a, ok := parseAddr(ip)
	if !ok {
		return false
	}
	for _, p := range s {
		if p.Contains(a) {
			return true
		}
	}
	return false
}

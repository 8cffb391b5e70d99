package httpserver

import (
	"fmt"
	"net"
	"net/http"
	"strings"
)

// ProxyList holds the networks of reverse proxies whose forwarding headers
// are trusted.
type ProxyList []*net.IPNet

// ParseNetworks parses IPs and CIDRs. A single IP becomes a host network.
func ParseNetworks(entries []string) ([]*net.IPNet, error) {
	networks := make([]*net.IPNet, 0, len(entries))
	for _, entry := range entries {
		entry = strings.TrimSpace(entry)
		if strings.Contains(entry, "/") {
			_, ipNet, err := net.ParseCIDR(entry)
			if err != nil {
				return nil, err
			}
			networks = append(networks, ipNet)
			continue
		}
		ip := net.ParseIP(entry)
		if ip == nil {
			return nil, fmt.Errorf("invalid IP %q", entry)
		}
		bits := 8 * net.IPv6len
		if v4 := ip.To4(); v4 != nil {
			ip, bits = v4, 8*net.IPv4len
		}
		networks = append(networks, &net.IPNet{IP: ip, Mask: net.CIDRMask(bits, bits)})
	}
	return networks, nil
}

func containsIP(networks []*net.IPNet, ip net.IP) bool {
	for _, network := range networks {
		if network.Contains(ip) {
			return true
		}
	}
	return false
}

// ClientIP returns the address of the client that sent r. Forwarding
// headers are only read when the direct peer is a trusted proxy. The
// X-Forwarded-For chain is walked right to left and the first hop that is
// not a trusted proxy is the client.
func (p ProxyList) ClientIP(r *http.Request) string {
	peer := remoteIP(r)
	ip := net.ParseIP(peer)
	if ip == nil || !containsIP(p, ip) {
		return peer
	}

	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		hops := strings.Split(xff, ",")
		for i := len(hops) - 1; i >= 0; i-- {
			hop := strings.TrimSpace(hops[i])
			hopIP := net.ParseIP(hop)
			if hopIP == nil {
				return peer
			}
			if !containsIP(p, hopIP) {
				return hop
			}
		}
	}

	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); net.ParseIP(xri) != nil {
		return xri
	}
	return peer
}

// remoteIP returns the host part of r.RemoteAddr.
func remoteIP(r *http.Request) string {
	// net.SplitHostPort handles IPv6 addresses like [::1]:8080.
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

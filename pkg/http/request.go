package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
)

// MaxBodyBytes bounds every JSON request body
const MaxBodyBytes = 4 << 10

// IPConfig holds configuration for IP extraction
type IPConfig struct {
	TrustedProxies []string // CIDR ranges of trusted proxies

	nets []*net.IPNet
}

// NewIPConfig parses the trusted proxy CIDRs up front. Invalid entries are reported.
func NewIPConfig(trustedProxies []string) (*IPConfig, error) {
	cfg := &IPConfig{TrustedProxies: trustedProxies}
	for _, cidr := range trustedProxies {
		_, ipNet, err := net.ParseCIDR(strings.TrimSpace(cidr))
		if err != nil {
			return nil, fmt.Errorf("invalid trusted proxy %q: %w", cidr, err)
		}
		cfg.nets = append(cfg.nets, ipNet)
	}
	return cfg, nil
}

// ExtractClientIP extracts the real client IP address from the request.
// X-Forwarded-For and X-Real-IP are honoured only when the direct peer is a
// trusted proxy. X-Forwarded-For is read from the right: each proxy appends
// the peer it saw, so the rightmost address outside the trusted ranges is the
// first one a client cannot forge.
//
// Flow:
// 1. If request is from trusted proxy, walk X-Forwarded-For right to left
// 2. If request is from trusted proxy, check X-Real-IP header
// 3. Fall back to RemoteAddr
func ExtractClientIP(r *http.Request, config *IPConfig) string {
	remoteIP := getRemoteAddr(r)

	if config == nil || !config.isTrustedProxy(remoteIP) {
		return remoteIP
	}

	if ip, ok := config.forwardedClient(r.Header.Values("X-Forwarded-For")); ok {
		return ip
	}

	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" && isValidIP(xri) {
		return xri
	}

	return remoteIP
}

// forwardedClient returns the rightmost untrusted hop. Walking stops at the
// first malformed entry since everything left of it is client supplied.
func (c *IPConfig) forwardedClient(headers []string) (string, bool) {
	var hops []string
	for _, h := range headers {
		hops = append(hops, strings.Split(h, ",")...)
	}

	for i := len(hops) - 1; i >= 0; i-- {
		ip := strings.TrimSpace(hops[i])
		if !isValidIP(ip) {
			return "", false
		}
		if !c.isTrustedProxy(ip) {
			return ip, true
		}
	}
	return "", false
}

// DecodeJSON decodes a size-limited JSON body into dst. An empty body is not an error.
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// getRemoteAddr extracts the IP address from RemoteAddr (removing port if present)
func getRemoteAddr(r *http.Request) string {
	if r.RemoteAddr != "" {
		if ip, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
			return ip
		}
		return r.RemoteAddr
	}
	return "unknown"
}

func (c *IPConfig) isTrustedProxy(ip string) bool {
	clientIP := net.ParseIP(ip)
	if clientIP == nil {
		return false
	}

	nets := c.nets
	if nets == nil {
		// Literal IPConfig values (tests) skip NewIPConfig
		for _, cidr := range c.TrustedProxies {
			if _, ipNet, err := net.ParseCIDR(cidr); err == nil {
				nets = append(nets, ipNet)
			}
		}
	}

	for _, ipNet := range nets {
		if ipNet.Contains(clientIP) {
			return true
		}
	}
	return false
}

// isValidIP checks if a string is a valid IPv4 or IPv6 address
func isValidIP(ip string) bool {
	return net.ParseIP(ip) != nil
}

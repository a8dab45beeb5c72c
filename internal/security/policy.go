// Package security validates URLs before the server fetches them,
// blocking requests that could reach internal networks or cloud
// metadata services.
package security

import (
	"errors"
	"fmt"
	"net"
	"strings"
)

// ValidationError reports why a URL was rejected. The reason is safe
// to return to clients.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

func errorf(format string, args ...any) error {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// IsValidationError reports whether err is a policy rejection rather
// than an operational failure.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

var blockedCIDRs = []string{
	"127.0.0.0/8",
	"10.0.0.0/8",
	"172.16.0.0/12",
	"192.168.0.0/16",
	"169.254.0.0/16",
	"224.0.0.0/4",
	"240.0.0.0/4",
	"::1/128",
	"fc00::/7",
	"fe80::/10",
}

var blockedHosts = map[string]struct{}{
	"localhost":                {},
	"127.0.0.1":                {},
	"0.0.0.0":                  {},
	"169.254.169.254":          {},
	"metadata.google.internal": {},
	"metadata":                 {},
	"metadata.azure.com":       {},
}

var blockedHostSubstrings = []string{"metadata", "internal"}

// Policy decides which URLs, hosts and resolved addresses the server
// is willing to contact.
type Policy struct {
	allowedSchemes map[string]struct{}
	allowedPorts   map[int]struct{}
	blockedNets    []*net.IPNet
}

// NewPolicy builds a Policy allowing only the given schemes and ports.
// The blocked network and host lists are fixed.
func NewPolicy(schemes []string, ports []int) *Policy {
	p := &Policy{
		allowedSchemes: make(map[string]struct{}, len(schemes)),
		allowedPorts:   make(map[int]struct{}, len(ports)),
		blockedNets:    make([]*net.IPNet, 0, len(blockedCIDRs)),
	}
	for _, s := range schemes {
		p.allowedSchemes[strings.ToLower(s)] = struct{}{}
	}
	for _, port := range ports {
		p.allowedPorts[port] = struct{}{}
	}
	for _, cidr := range blockedCIDRs {
		_, ipNet, err := net.ParseCIDR(cidr)
		if err != nil {
			panic(fmt.Sprintf("security: bad builtin CIDR %q: %v", cidr, err))
		}
		p.blockedNets = append(p.blockedNets, ipNet)
	}
	return p
}

// CheckHost rejects hostnames that are blocklisted or that look like
// internal or metadata endpoints.
func (p *Policy) CheckHost(host string) error {
	h := strings.ToLower(strings.TrimSuffix(host, "."))
	if h == "" {
		return errorf("empty hostname")
	}
	if _, ok := blockedHosts[h]; ok {
		return errorf("blocked hostname: %s", h)
	}
	for _, sub := range blockedHostSubstrings {
		if strings.Contains(h, sub) {
			return errorf("suspicious hostname: %s", h)
		}
	}
	return nil
}

// CheckIP rejects addresses inside any blocked network.
func (p *Policy) CheckIP(ip net.IP) error {
	if ip == nil {
		return errorf("invalid IP address")
	}
	for _, ipNet := range p.blockedNets {
		if ipNet.Contains(ip) {
			return errorf("blocked IP address: %s", ip)
		}
	}
	if ip.IsUnspecified() {
		return errorf("blocked IP address: %s", ip)
	}
	return nil
}

func (p *Policy) schemeAllowed(scheme string) bool {
	_, ok := p.allowedSchemes[strings.ToLower(scheme)]
	return ok
}

func (p *Policy) portAllowed(port int) bool {
	_, ok := p.allowedPorts[port]
	return ok
}

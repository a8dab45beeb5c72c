package security

import (
	"context"
	"net"
)

// Resolver is the subset of net.Resolver the guard needs. Tests swap
// in a fake to avoid real DNS.
type Resolver interface {
	LookupIPAddr(ctx context.Context, host string) ([]net.IPAddr, error)
}

// Guard resolves hostnames and checks every returned address against
// the policy. A single blocked address fails the whole lookup, which
// defeats DNS responses that mix public and private records. Results
// are never cached, so rebinding between redirect hops is caught by
// re-validating each hop.
type Guard struct {
	policy   *Policy
	resolver Resolver
}

// NewGuard builds a Guard using the system resolver when resolver is
// nil.
func NewGuard(policy *Policy, resolver Resolver) *Guard {
	if resolver == nil {
		resolver = net.DefaultResolver
	}
	return &Guard{policy: policy, resolver: resolver}
}

// Policy returns the guard's policy.
func (g *Guard) Policy() *Policy { return g.policy }

// ResolveAndCheck resolves host and verifies every address. Literal
// IP hosts are checked without a lookup.
func (g *Guard) ResolveAndCheck(ctx context.Context, host string) ([]net.IP, error) {
	if ip := net.ParseIP(host); ip != nil {
		if err := g.policy.CheckIP(ip); err != nil {
			return nil, err
		}
		return []net.IP{ip}, nil
	}

	addrs, err := g.resolver.LookupIPAddr(ctx, host)
	if err != nil {
		return nil, errorf("cannot resolve hostname: %s", host)
	}
	if len(addrs) == 0 {
		return nil, errorf("hostname resolved to no addresses: %s", host)
	}
	ips := make([]net.IP, 0, len(addrs))
	for _, addr := range addrs {
		if err := g.policy.CheckIP(addr.IP); err != nil {
			return nil, err
		}
		ips = append(ips, addr.IP)
	}
	return ips, nil
}

// CheckURL runs the full pre-connection validation for a URL: parse
// and policy checks, then DNS resolution with per-address checks.
func (g *Guard) CheckURL(ctx context.Context, raw string) error {
	u, err := g.policy.ValidateURL(raw)
	if err != nil {
		return err
	}
	_, err = g.ResolveAndCheck(ctx, u.Hostname())
	return err
}

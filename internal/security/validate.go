package security

import (
	"net"
	"net/url"
	"strconv"
)

// ValidateURL parses raw and checks it against the policy: scheme,
// credentials, hostname and port. It does not resolve DNS; callers
// must follow up with Guard.ResolveAndCheck before connecting.
func (p *Policy) ValidateURL(raw string) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, errorf("invalid URL: %v", err)
	}
	if !u.IsAbs() {
		return nil, errorf("URL must be absolute")
	}
	if !p.schemeAllowed(u.Scheme) {
		return nil, errorf("scheme not allowed: %s", u.Scheme)
	}
	if u.User != nil {
		return nil, errorf("URLs with embedded credentials are not allowed")
	}
	host := u.Hostname()
	if host == "" {
		return nil, errorf("URL has no hostname")
	}

	port, err := effectivePort(u)
	if err != nil {
		return nil, err
	}
	if !p.portAllowed(port) {
		return nil, errorf("port not allowed: %d", port)
	}

	// Literal addresses skip the hostname blocklist string matching
	// only in form, not effect: the IP check covers them.
	if ip := net.ParseIP(host); ip != nil {
		if err := p.CheckIP(ip); err != nil {
			return nil, err
		}
		return u, nil
	}
	if err := p.CheckHost(host); err != nil {
		return nil, err
	}
	return u, nil
}

func effectivePort(u *url.URL) (int, error) {
	if ps := u.Port(); ps != "" {
		port, err := strconv.Atoi(ps)
		if err != nil || port < 1 || port > 65535 {
			return 0, errorf("invalid port: %s", ps)
		}
		return port, nil
	}
	switch u.Scheme {
	case "https":
		return 443, nil
	default:
		return 80, nil
	}
}

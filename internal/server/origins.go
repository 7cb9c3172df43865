package server

import (
	"net/url"
	"strings"
)

// OriginPolicy decides which browser origins may talk to the bridge.
//
// An allowed entry without a port admits every port on that scheme and host,
// so "http://localhost" covers a dev server on http://localhost:5173.
type OriginPolicy struct {
	allowed []*url.URL
}

// NewOriginPolicy parses the allowed origins; unparsable entries are skipped.
func NewOriginPolicy(allowedOrigins []string) *OriginPolicy {
	p := &OriginPolicy{}
	for _, raw := range allowedOrigins {
		u, err := url.Parse(strings.TrimSpace(raw))
		if err != nil || u.Scheme == "" || u.Host == "" {
			continue
		}
		p.allowed = append(p.allowed, u)
	}
	return p
}

// IsAllowedOrigin implements websocket.OriginValidator.
func (p *OriginPolicy) IsAllowedOrigin(origin string) bool {
	if origin == "" {
		return false
	}
	o, err := url.Parse(origin)
	if err != nil || o.Host == "" {
		return false
	}

	for _, a := range p.allowed {
		if !strings.EqualFold(a.Scheme, o.Scheme) || !strings.EqualFold(a.Hostname(), o.Hostname()) {
			continue
		}
		if a.Port() == "" || a.Port() == o.Port() {
			return true
		}
	}
	return false
}

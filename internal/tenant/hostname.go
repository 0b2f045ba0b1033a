package tenant

import (
	"strings"
)

// HostParser extracts a tenant slug candidate from a request's Host header.
// It is pure string transformation: no I/O, and it never fails. Unknown
// hosts fall through to the resolver's custom-domain lookup.
type HostParser struct {
	rootDomain  string
	defaultSlug string
}

// NewHostParser creates a parser for the given platform root domain
func NewHostParser(rootDomain, defaultSlug string) *HostParser {
	return &HostParser{
		rootDomain:  strings.ToLower(rootDomain),
		defaultSlug: defaultSlug,
	}
}

// SlugFromHost produces the tenant slug candidate for a Host header value.
// An explicit override (the ?tenant= query parameter, a development escape
// hatch) wins unconditionally.
func (p *HostParser) SlugFromHost(host, override string) string {
	if override != "" {
		return strings.ToLower(override)
	}

	host = strings.ToLower(stripPort(host))

	// The platform's own domain serves the default demo tenant.
	if host == p.rootDomain || host == "www."+p.rootDomain {
		return p.defaultSlug
	}

	// Subdomain of the root domain: the left-most label is the slug.
	if suffix := "." + p.rootDomain; strings.HasSuffix(host, suffix) {
		label := strings.TrimSuffix(host, suffix)
		if i := strings.Index(label, "."); i >= 0 {
			label = label[:i]
		}
		if label == "" || label == "www" {
			return p.defaultSlug
		}
		return label
	}

	// Local development: <slug>.localhost or plain localhost.
	if strings.Contains(host, "localhost") {
		if i := strings.Index(host, "."); i > 0 {
			return host[:i]
		}
		return p.defaultSlug
	}

	// A fully custom domain. The resolver falls back to a custom-domain
	// lookup for these.
	return host
}

// stripPort removes a :port suffix from a host value. Host headers carry
// hostnames, not raw IPv6 literals, so cutting at the first colon is enough.
func stripPort(host string) string {
	if i := strings.Index(host, ":"); i >= 0 {
		return host[:i]
	}
	return host
}

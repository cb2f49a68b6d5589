package urlutil

import (
	"net/url"
	"strings"
)

// DomainPolicy restricts which discovered resources a crawl keeps.
// An empty SpecificDomain means no specific domain was requested.
type DomainPolicy struct {
	SpecificDomain string
	SameDomainOnly bool
}

// ExpectedDomain returns the domain that resources discovered on a page
// served from pageDomain must match. An empty domain means no restriction.
// ok is false when the page itself is outside the policy and must yield no
// resources at all.
func (p DomainPolicy) ExpectedDomain(pageDomain string) (domain string, ok bool) {
	switch {
	case p.SameDomainOnly && p.SpecificDomain != "":
		if p.SpecificDomain != pageDomain {
			return "", false
		}
		return pageDomain, true
	case p.SameDomainOnly:
		return pageDomain, true
	default:
		return p.SpecificDomain, true
	}
}

// HasAcceptableDomain reports whether rawURL's host equals expected.
// The comparison is exact: no case folding, no subdomain matching and no
// port or scheme normalization. An empty expected domain accepts everything.
func HasAcceptableDomain(rawURL, expected string) bool {
	if expected == "" {
		return true
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false
	}

	return parsed.Host == expected
}

// IsHTTPScheme returns true if the URL has an http or https scheme.
// Returns false for empty strings, non-HTTP schemes, or unparseable URLs.
func IsHTTPScheme(rawURL string) bool {
	if rawURL == "" {
		return false
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false
	}

	scheme := strings.ToLower(parsed.Scheme)
	return scheme == "http" || scheme == "https"
}

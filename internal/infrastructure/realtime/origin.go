package realtime

import (
	"net/http"
	"net/url"
	"strings"
)

// OriginPolicy decides which browser origins may open a websocket.
// Entries are exact origins ("https://app.example.com"), wildcard subdomains
// ("*.example.com", "https://*.example.com") or "*". An empty policy allows all.
type OriginPolicy struct {
	allowAll  bool
	exact     map[string]struct{}
	wildcards []wildcardOrigin
}

type wildcardOrigin struct {
	scheme string // empty matches any scheme
	suffix string // ".example.com"
}

// NewOriginPolicy normalizes entries. It returns the entries it had to ignore.
func NewOriginPolicy(origins []string) (*OriginPolicy, []string) {
	p := &OriginPolicy{exact: make(map[string]struct{})}
	var ignored []string
	configured := 0

	for _, origin := range origins {
		trimmed := strings.TrimSpace(origin)
		if trimmed == "" {
			continue
		}
		configured++
		if trimmed == "*" {
			p.allowAll = true
			continue
		}

		scheme := ""
		host := trimmed
		if i := strings.Index(trimmed, "://"); i >= 0 {
			scheme = strings.ToLower(trimmed[:i])
			host = trimmed[i+3:]
		}
		if rest, ok := strings.CutPrefix(host, "*."); ok && rest != "" && !strings.ContainsAny(rest, "/*") {
			p.wildcards = append(p.wildcards, wildcardOrigin{scheme: scheme, suffix: "." + strings.ToLower(rest)})
			continue
		}

		normalized, ok := normalizeOrigin(trimmed)
		if !ok {
			ignored = append(ignored, origin)
			continue
		}
		p.exact[normalized] = struct{}{}
	}

	if configured == 0 {
		p.allowAll = true
	}
	return p, ignored
}

func normalizeOrigin(origin string) (string, bool) {
	parsed, err := url.Parse(origin)
	if err != nil {
		return "", false
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return "", false
	}
	return strings.ToLower(parsed.Scheme) + "://" + strings.ToLower(parsed.Host), true
}

// Allowed reports whether origin passes the policy. Requests without an Origin
// header come from non-browser clients and are allowed.
func (p *OriginPolicy) Allowed(origin string) bool {
	if p == nil || p.allowAll || origin == "" {
		return true
	}
	normalized, ok := normalizeOrigin(origin)
	if !ok {
		return false
	}
	if _, ok := p.exact[normalized]; ok {
		return true
	}
	parsed, _ := url.Parse(normalized)
	host := parsed.Hostname()
	for _, w := range p.wildcards {
		if w.scheme != "" && w.scheme != parsed.Scheme {
			continue
		}
		if strings.HasSuffix(host, w.suffix) {
			return true
		}
	}
	return false
}

// CheckOrigin adapts the policy to websocket.Upgrader.CheckOrigin.
func (p *OriginPolicy) CheckOrigin(r *http.Request) bool {
	return p.Allowed(r.Header.Get("Origin"))
}

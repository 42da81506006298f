package ratelimit

import (
	"strings"
)

// MatchEndpoint returns the first configuration whose method and pattern
// match the request, preferring exact and parameterised patterns over
// trailing-slash prefixes. It returns nil when nothing matches.
func MatchEndpoint(path string, method string, configs []EndpointConfig) *EndpointConfig {
	for i := range configs {
		c := &configs[i]
		if methodMatches(c.Method, method) && !strings.HasSuffix(c.Pattern, "/") && patternMatches(c.Pattern, path) {
			return c
		}
	}

	for i := range configs {
		c := &configs[i]
		if methodMatches(c.Method, method) && strings.HasSuffix(c.Pattern, "/") && strings.HasPrefix(path, c.Pattern) {
			return c
		}
	}

	return nil
}

func methodMatches(pattern, method string) bool {
	return pattern == "*" || pattern == method
}

// patternMatches compares path segment by segment; "{...}" segments match
// any non-empty segment.
func patternMatches(pattern, path string) bool {
	ps := strings.Split(strings.Trim(pattern, "/"), "/")
	xs := strings.Split(strings.Trim(path, "/"), "/")
	if len(ps) != len(xs) {
		return false
	}
	for i := range ps {
		if strings.HasPrefix(ps[i], "{") && strings.HasSuffix(ps[i], "}") {
			if xs[i] == "" {
				return false
			}
			continue
		}
		if ps[i] != xs[i] {
			return false
		}
	}
	return true
}

package router

import (
	"net"
	"net/http"
	"strings"
)

// requireDashboardHost rejects dashboard API requests arriving on the
// public marketing host. When subdomain is empty the check is disabled
// (single-host deployments and tests).
func requireDashboardHost(subdomain string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if subdomain == "" || hostMatchesSubdomain(r.Host, subdomain) {
				next.ServeHTTP(w, r)
				return
			}
			http.NotFound(w, r)
		})
	}
}

func hostMatchesSubdomain(host, subdomain string) bool {
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	return strings.HasPrefix(strings.ToLower(host), strings.ToLower(subdomain)+".")
}

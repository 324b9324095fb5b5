package api

import (
	"context"
	"net"
	"net/http"
	"strings"

	log "github.com/sirupsen/logrus"
)

type contextKey string

const sessionContextKey contextKey = "session"

// SessionFromContext returns the claims the auth middleware stored for
// this request.
func SessionFromContext(ctx context.Context) (*SessionClaims, bool) {
	claims, ok := ctx.Value(sessionContextKey).(*SessionClaims)
	return claims, ok
}

// requireAuth validates the Bearer token and stores the session claims in
// the request context.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			writeError(w, http.StatusUnauthorized, "authorization header required")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			writeError(w, http.StatusUnauthorized, "invalid authorization header format")
			return
		}

		claims, err := parseToken(parts[1], s.cfg.JWTSecret)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid token")
			return
		}

		ctx := context.WithValue(r.Context(), sessionContextKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireAllowedIP rejects requests from addresses outside the allow-list.
// Outside production the local list is honored as well. An empty combined
// list blocks everything, which is the safe default for a misconfigured
// deployment.
func (s *Server) requireAllowedIP(next http.Handler) http.Handler {
	allowed := make(map[string]struct{})
	for _, ip := range s.cfg.AllowedIPs {
		allowed[ip] = struct{}{}
	}
	if s.cfg.Environment != "production" {
		for _, ip := range s.cfg.AllowedIPsLocal {
			allowed[ip] = struct{}{}
		}
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r)
		if _, ok := allowed[ip]; !ok {
			log.WithFields(log.Fields{
				"ip":   ip,
				"path": r.URL.Path,
			}).Warn("Rejected request from disallowed address")
			writeError(w, http.StatusForbidden, "forbidden")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientIP resolves the caller's address, preferring the first entry of
// X-Forwarded-For. IPv4-mapped IPv6 prefixes are stripped so the
// allow-list can be written in plain IPv4.
func clientIP(r *http.Request) string {
	ip := r.Header.Get("X-Forwarded-For")
	if ip != "" {
		if idx := strings.Index(ip, ","); idx != -1 {
			ip = ip[:idx]
		}
		ip = strings.TrimSpace(ip)
	} else {
		host, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			host = r.RemoteAddr
		}
		ip = host
	}
	return strings.TrimPrefix(ip, "::ffff:")
}

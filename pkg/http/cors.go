package http

import (
	"net/http"
	"strings"

	"github.com/ryanuber/go-glob"
)

const allowedMethods = "DELETE, GET, HEAD, OPTIONS, PATCH, POST, PUT"

// corsPolicy allows any method and header from a fixed set of origins,
// with credentials. Since credentials are allowed the matching origin is
// echoed back, never "*".
type corsPolicy struct {
	origins []string
}

func newCORSPolicy(origins []string) *corsPolicy {
	p := &corsPolicy{}
	for _, o := range origins {
		o = strings.TrimRight(strings.TrimSpace(o), "/")
		if o != "" {
			p.origins = append(p.origins, o)
		}
	}
	return p
}

func (p *corsPolicy) allowed(origin string) bool {
	for _, pattern := range p.origins {
		if glob.Glob(pattern, origin) {
			return true
		}
	}
	return false
}

func isPreflight(r *http.Request) bool {
	return r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != ""
}

// middleware - cors middleware
func (p *corsPolicy) middleware(rw http.ResponseWriter, r *http.Request, next http.HandlerFunc) {
	origin := r.Header.Get("Origin")
	if origin == "" {
		next(rw, r)
		return
	}

	rw.Header().Add("Vary", "Origin")

	if !p.allowed(origin) {
		if isPreflight(r) {
			http.Error(rw, "Disallowed CORS origin", http.StatusBadRequest)
			return
		}
		next(rw, r)
		return
	}

	rw.Header().Set("Access-Control-Allow-Origin", origin)
	rw.Header().Set("Access-Control-Allow-Credentials", "true")

	if isPreflight(r) {
		rw.Header().Set("Access-Control-Allow-Methods", allowedMethods)
		if headers := r.Header.Get("Access-Control-Request-Headers"); headers != "" {
			rw.Header().Set("Access-Control-Allow-Headers", headers)
		}
		rw.Header().Set("Access-Control-Max-Age", "600")
		rw.WriteHeader(http.StatusOK)
		return
	}

	next(rw, r)
}

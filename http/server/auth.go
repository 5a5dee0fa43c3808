package server

import (
	"crypto/subtle"
	"net/http"

	"github.com/gclaussn/go-procdoc/http/common"
	"github.com/go-logr/logr"
)

type basicAuthHandler struct {
	username string
	password string
	handler  http.Handler
	logger   logr.Logger
}

func (h *basicAuthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == common.PathReadiness {
		h.handler.ServeHTTP(w, r)
		return
	}

	username, password, ok := r.BasicAuth()
	if !ok || !equal(username, h.username) || !equal(password, h.password) {
		h.logger.Info("authentication failed", "method", r.Method, "uri", r.RequestURI, "remoteAddr", r.RemoteAddr)
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	h.handler.ServeHTTP(w, r)
}

func equal(a string, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

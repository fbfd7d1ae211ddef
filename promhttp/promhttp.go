// Package promhttp bridges a prom.Registry to the net/http and gin request
// pipelines, grounded on the "/metrics" route a remerge-go-service debug
// server wires by hand on its gin.Engine rather than pulling in a
// ready-made handler.
package promhttp

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/remerge/go-prom/prom"
)

// contentType is the exposition format version this package renders,
// matching the header a hand-rolled Prometheus /metrics route sets.
const contentType = "text/plain; version=0.0.4"

// Handler returns a plain net/http handler serving r's current scrape on
// every request. It answers only GET and HEAD; anything else is 405, and
// any path other than the one it's mounted at is the caller's problem to
// route correctly since Handler doesn't know its own mount point.
func Handler(r *prom.Registry) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodGet && req.Method != http.MethodHead {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}

		body, err := r.Bridge()
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", contentType)
		if body == "" {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		w.WriteHeader(http.StatusOK)
		if req.Method == http.MethodGet {
			_, _ = w.Write([]byte(body))
		}
	})
}

// Gin adapts Handler into a gin.HandlerFunc, for services that mount all
// their debug endpoints on a shared gin.Engine rather than net/http's
// default mux.
func Gin(r *prom.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		body, err := r.Bridge()
		if err != nil {
			_ = c.Error(err)
			c.String(http.StatusInternalServerError, err.Error())
			return
		}
		c.Header("Content-Type", contentType)
		if body == "" {
			c.Status(http.StatusNoContent)
			return
		}
		c.String(http.StatusOK, body)
	}
}

var (
	activeRegistry    *prom.Registry
	activeRegistrySet bool
)

// SetActiveRegistry designates the registry DefaultHandler serves. It
// exists for the common case of a single process-wide registry, mirroring
// the convenience prom.Default() offers for the registry itself.
func SetActiveRegistry(r *prom.Registry) {
	activeRegistry = r
	activeRegistrySet = true
}

// DefaultHandler serves the registry set by SetActiveRegistry, falling
// back to prom.Default() if none was set.
func DefaultHandler() http.Handler {
	if activeRegistrySet {
		return Handler(activeRegistry)
	}
	return Handler(prom.Default())
}

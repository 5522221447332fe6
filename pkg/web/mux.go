package web

import (
	"encoding/json"
	"expvar"
	"fmt"
	"net/http"
	"sort"
	"time"

	"github.com/golang/glog"
)

var (
	httpCounts    = expvar.NewMap("http_counts")
	httpLatencyMs = expvar.NewMap("http_latency_ms")
)

// Mux is a ServeMux whose API routes are counted, timed and logged per pattern.
// /statusz, /healthz and /debug/vars are served bare.
type Mux struct {
	http.ServeMux
	name     string
	patterns []string
}

func NewMux(name string) *Mux {
	mux := &Mux{name: name}
	mux.ServeMux.HandleFunc("GET /statusz", mux.handleStatusz)
	mux.ServeMux.HandleFunc("GET /healthz", mux.handleHealthz)
	mux.ServeMux.Handle("GET /debug/vars", expvar.Handler())
	return mux
}

// HandleFunc registers an instrumented handler for pattern.
func (mux *Mux) HandleFunc(pattern string, handler http.HandlerFunc) {
	mux.ServeMux.HandleFunc(pattern, instrument(pattern, handler))
	mux.patterns = append(mux.patterns, pattern)
	sort.Strings(mux.patterns)
}

func (mux *Mux) handleStatusz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"server":   mux.name,
		"patterns": mux.patterns,
	})
}

func (mux *Mux) handleHealthz(w http.ResponseWriter, r *http.Request) {
	fmt.Fprintf(w, "ok")
}

// statusRecorder remembers the status code a handler wrote.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rec *statusRecorder) WriteHeader(status int) {
	rec.status = status
	rec.ResponseWriter.WriteHeader(status)
}

func instrument(pattern string, f http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		f(rec, r)
		elapsed := time.Since(start)

		httpCounts.Add(pattern, 1)
		httpLatencyMs.Add(pattern, elapsed.Milliseconds())
		glog.Infof("%s %s from %s: %d in %s", r.Method, r.URL, r.RemoteAddr, rec.status, elapsed.Round(time.Microsecond))
	}
}

package arrowmetrics

import (
	_ "expvar" // Go documentation recommended usage
	"fmt"
	"net/http"
	_ "net/http/pprof" // Go documentation recommended usage

	"github.com/arrowtable/arrowtable/logger"
	"github.com/arrowtable/arrowtable/monitor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server exposes Prometheus metrics and the ops endpoints (/debug,
// /debug/loglevel, /debug/pprof, /debug/vars) a running arrowtrace
// process wants, on a single listener.
type Server struct {
	addr string
	reg  *prometheus.Registry
	log  logger.Logger
	mux  *http.ServeMux
}

// NewServer builds a Server that will listen on addr once Run is
// called. reg is typically the *prometheus.Registry passed to
// NewInstrumented.
func NewServer(addr string, reg *prometheus.Registry, log logger.Logger) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	mux.HandleFunc("/debug", debugHandler)
	mux.Handle("/debug/loglevel", monitor.NewLoglevelHandler())
	mux.HandleFunc("/debug/vars-pretty", varsPrettyHandler)
	// pprof and expvar register their handlers on http.DefaultServeMux.
	mux.Handle("/debug/pprof/", http.DefaultServeMux)
	mux.Handle("/debug/vars", http.DefaultServeMux)
	return &Server{addr: addr, reg: reg, log: log, mux: mux}
}

func debugHandler(w http.ResponseWriter, r *http.Request) {
	fmt.Fprint(w, `<html>
<head><title>/debug</title></head>
<body>
<p>/debug</p>
<div><a href="/metrics">metrics</a></div>
<div><a href="/debug/loglevel">loglevel</a></div>
<div><a href="/debug/vars">vars</a></div>
<div><a href="/debug/vars-pretty">vars (pretty)</a></div>
<div><a href="/debug/pprof">pprof</a></div>
</body>
</html>
`)
}

func varsPrettyHandler(w http.ResponseWriter, r *http.Request) {
	fmt.Fprint(w, monitor.VarsToString())
}

// Run starts the listener and blocks until it fails. Callers that want
// non-blocking behavior should invoke Run in its own goroutine, or via
// an errgroup.Group as cmd/arrowtrace does.
func (s *Server) Run() error {
	if err := http.ListenAndServe(s.addr, s.mux); err != nil {
		s.log.Errorf("arrowmetrics: server on %s exited: %s", s.addr, err)
		return err
	}
	return nil
}

package stats

import (
	"net/http"
	"net/http/pprof"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/omniscale/osmjson/log"
)

// Handler serves /metrics and the /debug/pprof/ endpoints.
func (s *Statistics) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	return mux
}

// StartHTTP serves Handler on bind in the background.
func (s *Statistics) StartHTTP(bind string) {
	log.Printf("[info] serving metrics and pprof on %s", bind)
	go func() {
		log.Println("[error]", http.ListenAndServe(bind, s.Handler()))
	}()
}

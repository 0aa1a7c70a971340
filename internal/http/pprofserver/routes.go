package pprofserver

import (
	"net/http"
	"net/http/pprof"

	"github.com/go-chi/chi/v5"
)

// Prefix is where Routes must be mounted; pprof.Index resolves profile names against it.
const Prefix = "/debug/pprof"

var profiles = []string{"heap", "goroutine", "allocs", "block", "mutex", "threadcreate"}

// Routes returns the runtime profiling endpoints. Callers mount it at Prefix behind operator auth.
func Routes() http.Handler {
	r := chi.NewRouter()
	r.Get("/", pprof.Index)
	r.Get("/cmdline", pprof.Cmdline)
	r.Get("/profile", pprof.Profile)
	r.Get("/symbol", pprof.Symbol)
	r.Post("/symbol", pprof.Symbol)
	r.Get("/trace", pprof.Trace)
	for _, name := range profiles {
		r.Method(http.MethodGet, "/"+name, pprof.Handler(name))
	}
	return r
}

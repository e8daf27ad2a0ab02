// Package pprofserver exposes the runtime profiling endpoints on a loopback
// listener separate from the public API server.
package pprofserver

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/http/pprof"
	"os"
)

func Handle(mux *http.ServeMux) {
	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
}

func newServeMux() *http.ServeMux {
	mux := http.NewServeMux()
	Handle(mux)
	return mux
}

func listenAndServe(addr string) error {
	srv := &http.Server{
		Addr:    addr,
		Handler: newServeMux(),
	}
	return srv.ListenAndServe()
}

// Launch serves pprof in the background on the ipv6 loopback address ::1 and
// the given port. The profiler is never exposed on a public interface.
func Launch(port string, logger *slog.Logger) {
	go func() {
		addr := fmt.Sprintf("[::1]%s", port)
		logger.Info("starting pprof server", slog.String("addr", addr))
		err := listenAndServe(addr)
		logger.Error("pprof server stopped", slog.String("error", err.Error()))
		os.Exit(0)
	}()
}

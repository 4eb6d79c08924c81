/*
A small HTTP API: the sentinel's status report as JSON on /status, Prometheus metrics on /metrics.
*/
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/n-y-z-o/nyzoVerifier-sub001/internal/logging"
	"github.com/n-y-z-o/nyzoVerifier-sub001/internal/nyzo/configuration"
	"github.com/n-y-z-o/nyzoVerifier-sub001/internal/nyzo/interfaces"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const shutdownTimeout = 5 * time.Second

type state struct {
	ctxt     *interfaces.Context
	listener net.Listener
	server   *http.Server
}

type Status struct {
	Version  string      `json:"version"`
	Sentinel interface{} `json:"sentinel"`
}

func (s *state) status(w http.ResponseWriter, r *http.Request) {
	status := Status{Version: configuration.Version}
	if s.ctxt.Sentinel != nil {
		status.Sentinel = s.ctxt.Sentinel.GetStatusReport()
	}
	w.Header().Set("Content-Type", "application/json")
	output, err := json.MarshalIndent(status, "", "    ")
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = fmt.Fprint(w, "{\"error\": \"unable to generate report\"}")
		return
	}
	_, _ = w.Write(output)
}

func (s *state) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/status", s.status)
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

// Main loop.
func (s *state) Start(ctx context.Context) error {
	defer logging.InfoLog.Print("Main loop of API exited gracefully.")
	served := make(chan error, 1)
	go func() {
		served <- s.server.Serve(s.listener)
	}()
	logging.InfoLog.Printf("API listening on %s.", s.listener.Addr().String())
	select {
	case err := <-served:
		return errors.Wrap(err, "API server failed")
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return s.server.Shutdown(shutdownCtx)
}

// Binds the listening address, so a port conflict shows up before anything starts.
func (s *state) Initialize() error {
	var err error
	s.listener, err = net.Listen("tcp", s.ctxt.Settings.ApiListenAddress)
	if err != nil {
		return errors.Wrap(err, "cannot start API")
	}
	s.server = &http.Server{Handler: s.handler(), ReadHeaderTimeout: 10 * time.Second}
	return nil
}

// Create new API.
func NewApi(ctxt *interfaces.Context) interfaces.Component {
	s := &state{}
	s.ctxt = ctxt
	return s
}

// Package server exposes the dispatcher over HTTP.
//
// POST /v1/commands takes a command envelope and streams the resulting
// records as newline-delimited JSON, one {"type":"output","data":...} line
// per record. An error raised before the first record is returned as a plain
// JSON error with a matching status; after that the status is already sent,
// so a final {"type":"error",...} line reports it instead.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/opmodel/platconn/internal/dispatch"
	oerrors "github.com/opmodel/platconn/internal/errors"
	"github.com/opmodel/platconn/internal/metrics"
	"github.com/opmodel/platconn/internal/output"
)

const (
	maxCommandBytes = 1 << 20
	shutdownTimeout = 10 * time.Second
	ndjsonType      = "application/x-ndjson"
)

// Line is one NDJSON line of a command response.
type Line struct {
	Type  string     `json:"type"`
	Data  any        `json:"data,omitempty"`
	Error *ErrorBody `json:"error,omitempty"`
}

// ErrorBody describes a failed command.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// NewRouter returns the HTTP handler for d. gatherer backs /metrics and may
// be nil.
func NewRouter(d *dispatch.Dispatcher, gatherer prometheus.Gatherer) http.Handler {
	r := chi.NewRouter()
	r.Use(recoveryMiddleware)
	r.Use(requestIDMiddleware)
	r.Use(loggingMiddleware)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	if gatherer != nil {
		r.Handle("/metrics", metrics.Handler(gatherer))
	}
	r.Post("/v1/commands", commandHandler(d))

	return r
}

// Run serves handler on addr until ctx is canceled, then shuts down
// gracefully.
func Run(ctx context.Context, addr string, handler http.Handler) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return oerrors.NewConnectivityError(
			fmt.Sprintf("listening on %s: %v", addr, err),
			nil,
			"Choose a free address with --addr or server.addr",
		)
	}
	return Serve(ctx, ln, handler)
}

// Serve is Run on an existing listener.
func Serve(ctx context.Context, ln net.Listener, handler http.Handler) error {
	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		output.Info("listening", "addr", ln.Addr().String())
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		output.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutting down server: %w", err)
		}
		return nil
	}
}

func commandHandler(d *dispatch.Dispatcher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var cmd dispatch.Command
		dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxCommandBytes))
		if err := dec.Decode(&cmd); err != nil {
			writeJSONError(w, http.StatusBadRequest, "validation", "invalid command envelope: "+err.Error())
			return
		}

		sink := &streamSink{w: w, rc: http.NewResponseController(w)}
		err := d.Dispatch(r.Context(), cmd, sink)
		if err == nil {
			sink.start()
			return
		}

		status, code := classify(err)
		if !sink.started {
			writeJSONError(w, status, code, errorMessage(err))
			return
		}
		_ = sink.writeLine(Line{Type: "error", Error: &ErrorBody{Code: code, Message: errorMessage(err)}})
	}
}

// streamSink writes records as NDJSON lines and flushes after each one.
type streamSink struct {
	w       http.ResponseWriter
	rc      *http.ResponseController
	started bool
}

func (s *streamSink) start() {
	if s.started {
		return
	}
	s.started = true
	s.w.Header().Set("Content-Type", ndjsonType)
	s.w.WriteHeader(http.StatusOK)
}

func (s *streamSink) Send(record any) error {
	return s.writeLine(Line{Type: "output", Data: record})
}

func (s *streamSink) writeLine(line Line) error {
	s.start()
	if err := json.NewEncoder(s.w).Encode(line); err != nil {
		return err
	}
	if err := s.rc.Flush(); err != nil && !errors.Is(err, http.ErrNotSupported) {
		return err
	}
	return nil
}

// classify maps an error onto an HTTP status and a short code.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, oerrors.ErrValidation):
		return http.StatusBadRequest, "validation"
	case errors.Is(err, oerrors.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, oerrors.ErrPermission):
		return http.StatusForbidden, "permission"
	case errors.Is(err, oerrors.ErrConnectivity):
		return http.StatusBadGateway, "connectivity"
	case errors.Is(err, oerrors.ErrUpstream):
		return http.StatusBadGateway, "upstream"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "timeout"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

// errorMessage prefers the one-line message of a DetailError over its
// multi-line terminal rendering.
func errorMessage(err error) string {
	var detail *oerrors.DetailError
	if errors.As(err, &detail) {
		return detail.Message
	}
	return err.Error()
}

func writeJSONError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(struct {
		Error ErrorBody `json:"error"`
	}{Error: ErrorBody{Code: code, Message: message}})
}

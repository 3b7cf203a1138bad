package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/opmodel/platconn/internal/cmdtypes"
	"github.com/opmodel/platconn/internal/cmdutil"
	"github.com/opmodel/platconn/internal/metrics"
	"github.com/opmodel/platconn/internal/output"
	"github.com/opmodel/platconn/internal/server"
)

// NewServeCmd creates the serve command.
func NewServeCmd(cfg *cmdtypes.GlobalConfig) *cobra.Command {
	var addr string

	c := &cobra.Command{
		Use:   "serve",
		Short: "Serve lifecycle commands over HTTP",
		Long: `Serve lifecycle commands over HTTP.

Endpoints:
  POST /v1/commands   run a {"type", "input"} envelope, streaming NDJSON records
  GET  /healthz       liveness
  GET  /metrics       Prometheus metrics`,
		Args: cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			return runServe(c.Context(), cfg, addr)
		},
	}

	c.Flags().StringVar(&addr, "addr", "", "Listen address (default from config server.addr)")

	return c
}

func runServe(ctx context.Context, cfg *cmdtypes.GlobalConfig, addr string) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	collector := metrics.NewCollector(reg)

	d, err := cmdutil.NewDispatcher(ctx, cfg, collector)
	if err != nil {
		return cmdutil.PrintError("cannot start server", err)
	}

	if addr == "" && cfg.Config != nil {
		addr = cfg.Config.Server.Addr
	}

	if err := server.Run(ctx, addr, server.NewRouter(d, reg)); err != nil {
		return cmdutil.PrintError("server stopped", err)
	}
	output.Debug("server stopped")
	return nil
}

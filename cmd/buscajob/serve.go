package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/buscajob/buscajob/internal/api"
	"github.com/buscajob/buscajob/internal/scheduler"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API and the daily scheduler",
	Long:  "Serves the HTTP API; when schedule.enabled is set, also runs the saved search at the configured times. Blocks until SIGINT/SIGTERM.",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a := mustApp(ctx, logger)
	defer a.Close()

	logger.Info("config loaded",
		"addr", a.cfg.Server.Addr,
		"sites", len(a.pipeline.Sites()),
		"output_dir", a.cfg.Output.Dir,
		"schedule", a.cfg.Schedule.Enabled,
		"cache", a.cfg.Cache.Type,
	)

	srv := api.NewServer(api.Deps{
		Searcher:    a.pipeline,
		Sink:        a.sink,
		Cache:       a.cache,
		Store:       a.store,
		Stats:       a.stats,
		Report:      a.report,
		CORSOrigins: a.cfg.Server.CORSOrigins,
	}, logger)
	httpServer := &http.Server{
		Addr:              a.cfg.Server.Addr,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("http server listening", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	if a.cfg.Schedule.Enabled {
		var opts []scheduler.Option
		if a.cfg.Schedule.ReportEnabled {
			opts = append(opts, scheduler.WithReport(a.report))
		}
		sched, err := scheduler.New(a.cfg.Schedule.Times, a.store, a.pipeline, a.sink, logger, opts...)
		if err != nil {
			logger.Error("invalid schedule", "error", err)
			return err
		}
		g.Go(func() error {
			return sched.Run(gctx)
		})
	}

	if err := g.Wait(); err != nil {
		logger.Error("server error", "error", err)
		return err
	}

	logger.Info("goodbye")
	return nil
}

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/foodlens/meal-vision/internal/bootstrap"
	"github.com/foodlens/meal-vision/internal/core/domain"
	"github.com/foodlens/meal-vision/internal/observability/metrics"
)

const serviceName = "meal-vision-worker"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, serviceName)
	if err != nil {
		os.Stderr.WriteString("bootstrap failed: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer app.Close()

	pipelineMetrics := metrics.NewPipelineMetrics(serviceName)
	metricsServer := startMetricsServer(app.Cfg.WorkerMetricsPort, pipelineMetrics)
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsServer.Shutdown(shutdownCtx)
	}()

	jobTimeout := time.Duration(app.Cfg.WorkerJobTimeoutSeconds) * time.Second

	handler := func(jobCtx context.Context, job domain.AnalysisJob) error {
		runCtx, cancel := context.WithTimeout(jobCtx, jobTimeout)
		defer cancel()

		if !job.RequestedAt.IsZero() {
			pipelineMetrics.ObserveQueueLag(serviceName, time.Since(job.RequestedAt))
		}

		pipelineMetrics.StartRun()
		started := time.Now()
		result := app.Analyzer.Analyze(runCtx, job)
		pipelineMetrics.FinishRun(serviceName, time.Since(started), result.Success)

		for _, entry := range result.Entries {
			pipelineMetrics.ObserveLookup(serviceName, lookupSource(entry.Source))
		}

		app.Logger.Info("analysis_job_done",
			"photo_key", job.PhotoKey,
			"day_id", job.DayID,
			"success", result.Success,
			"meal_id", result.MealID,
			"duration_ms", time.Since(started).Milliseconds(),
		)
		return nil
	}

	app.Logger.Info("worker_started", "subject", app.Cfg.NATSSubject, "job_timeout", jobTimeout.String())
	if err := app.Queue.SubscribeAnalysisRequested(ctx, handler); err != nil && !errors.Is(err, context.Canceled) {
		app.Logger.Error("worker_subscription_failed", "error", err)
		os.Exit(1)
	}
	app.Logger.Info("worker_stopped")
}

func lookupSource(source string) string {
	switch source {
	case domain.SourceEstimated, domain.SourceNone:
		return source
	default:
		return "search"
	}
}

func startMetricsServer(port string, m *metrics.PipelineMetrics) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	server := &http.Server{
		Addr:              ":" + port,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			os.Stderr.WriteString("metrics server failed: " + err.Error() + "\n")
		}
	}()
	return server
}

package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mkarasev/doccat/internal/bootstrap"
	"github.com/mkarasev/doccat/internal/config"
	"github.com/mkarasev/doccat/internal/core/domain"
	"github.com/mkarasev/doccat/internal/observability/logging"
	"github.com/mkarasev/doccat/internal/observability/metrics"
)

func main() {
	cfg := config.Load()
	logger := logging.NewJSONLogger(cfg.ServiceName, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	workerMetrics := metrics.NewWorkerMetrics(cfg.ServiceName)

	app, err := bootstrap.New(ctx, cfg, logger, workerMetrics)
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}
	defer app.Close()

	go serveMetrics(cfg.WorkerMetricsPort, workerMetrics)

	batchErr := make(chan error, 1)
	go func() {
		logger.Info("worker subscribed", "subject", cfg.NATSBatchSubject)
		batchErr <- app.Queue.SubscribeBatchSubmitted(ctx, func(handlerCtx context.Context, jobID string) error {
			processCtx, cancel := context.WithTimeout(handlerCtx, 15*time.Minute)
			defer cancel()

			workerMetrics.StartBatch()
			defer workerMetrics.FinishBatch()

			before, err := app.BatchUC.GetJob(processCtx, jobID)
			if err != nil {
				return err
			}
			if err := app.BatchUC.ProcessJob(processCtx, jobID); err != nil {
				return err
			}
			after, err := app.BatchUC.GetJob(processCtx, jobID)
			if err != nil {
				return err
			}
			workerMetrics.CountBatchDocuments(cfg.ServiceName, "succeeded", after.Succeeded-before.Succeeded)
			workerMetrics.CountBatchDocuments(cfg.ServiceName, "failed", after.Failed-before.Failed)
			return nil
		})
	}()

	feedbackErr := make(chan error, 1)
	go func() {
		logger.Info("worker subscribed", "subject", cfg.NATSFeedbackSubject)
		feedbackErr <- app.Queue.SubscribeFeedback(ctx, func(handlerCtx context.Context, event domain.FeedbackEvent) error {
			applyCtx, cancel := context.WithTimeout(handlerCtx, time.Minute)
			defer cancel()

			err := app.FeedbackUC.Apply(applyCtx, event)
			workerMetrics.CountAdaptation(cfg.ServiceName, err)
			return err
		})
	}()

	select {
	case err := <-batchErr:
		if err != nil {
			log.Fatalf("batch subscription error: %v", err)
		}
	case err := <-feedbackErr:
		if err != nil {
			log.Fatalf("feedback subscription error: %v", err)
		}
	case <-ctx.Done():
	}
}

func serveMetrics(port string, m *metrics.WorkerMetrics) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	server := &http.Server{
		Addr:              ":" + port,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Printf("metrics server error: %v", err)
	}
}

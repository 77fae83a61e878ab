// worker procesa la conciliación de existencias y la verificación de cartera en segundo
// plano (asynq sobre Redis). Requiere REDIS_ADDR.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jhoicas/Inventario-pos/internal/bootstrap"
	"github.com/jhoicas/Inventario-pos/internal/jobs"
	"github.com/jhoicas/Inventario-pos/pkg/config"
	"github.com/jhoicas/Inventario-pos/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})

	if !cfg.Redis.Enabled() {
		log.Fatal().Msg("REDIS_ADDR es obligatorio para el worker")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	svc, err := bootstrap.Build(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("inicialización")
	}
	defer svc.Close()

	now := time.Now().UTC()
	reconcileTask, err := jobs.NewReconcileTask(cfg.Worker.RepairDrift, now)
	if err != nil {
		log.Fatal().Err(err).Msg("tarea de conciliación")
	}
	verifyTask, err := jobs.NewCreditVerifyTask(now)
	if err != nil {
		log.Fatal().Err(err).Msg("tarea de verificación")
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts:   bootstrap.AsynqOpts(cfg.Redis),
		Concurrency: cfg.Worker.Concurrency,
		Logger:      log,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskLedgerReconcile, Handler: jobs.NewReconcileJob(svc.Ledger, log).Handle},
			{Type: jobs.TaskCreditVerify, Handler: jobs.NewCreditVerifyJob(svc.Credit, log).Handle},
		},
		Cron: []jobs.CronRegistration{
			{Spec: cfg.Worker.ReconcileCron, Task: reconcileTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
			{Spec: cfg.Worker.VerifyCron, Task: verifyTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
		},
	})
	if err != nil {
		log.Fatal().Err(err).Msg("configurar worker")
	}

	log.Info().Int("concurrency", cfg.Worker.Concurrency).Msg("worker iniciado")
	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Error().Err(err).Msg("worker finalizado con error")
		os.Exit(1)
	}
	log.Info().Msg("worker detenido")
}

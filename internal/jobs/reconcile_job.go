package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jhoicas/Inventario-pos/internal/application/ledger"
	"github.com/jhoicas/Inventario-pos/pkg/logger"
)

// Reconciler concilia caché de producto contra lotes (implementado por ledger.Engine).
type Reconciler interface {
	Reconcile(ctx context.Context, repair bool) (*ledger.ReconcileReport, error)
}

// ReconcileJob handler de TaskLedgerReconcile.
type ReconcileJob struct {
	ledger Reconciler
	log    *logger.Logger
}

// NewReconcileJob construye el handler.
func NewReconcileJob(l Reconciler, log *logger.Logger) *ReconcileJob {
	if log == nil {
		log = logger.Nop()
	}
	return &ReconcileJob{ledger: l, log: log.Named("jobs")}
}

// Handle ejecuta la conciliación. Un payload ilegible no se reintenta.
func (j *ReconcileJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.ledger == nil {
		return errors.New("reconcile: handler no configurado")
	}
	var payload ReconcilePayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("reconcile: payload: %v: %w", err, asynq.SkipRetry)
	}
	start := time.Now()
	report, err := j.ledger.Reconcile(ctx, payload.Repair)
	if err != nil {
		j.log.Error().Err(err).Str("task", TaskLedgerReconcile).Msg("conciliación fallida")
		return err
	}
	j.log.Info().
		Str("task", TaskLedgerReconcile).
		Int("checked", report.Checked).
		Int("drifts", len(report.Drifts)).
		Bool("repair", payload.Repair).
		Dur("duration", time.Since(start)).
		Msg("conciliación completada")
	return nil
}

package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jhoicas/Inventario-pos/internal/application/credit"
	"github.com/jhoicas/Inventario-pos/pkg/logger"
)

// CreditVerifier verifica la cartera (implementado por credit.Engine).
type CreditVerifier interface {
	VerifyAll(ctx context.Context) (*credit.VerifyReport, error)
}

// CreditVerifyJob handler de TaskCreditVerify.
type CreditVerifyJob struct {
	credit CreditVerifier
	log    *logger.Logger
}

// NewCreditVerifyJob construye el handler.
func NewCreditVerifyJob(v CreditVerifier, log *logger.Logger) *CreditVerifyJob {
	if log == nil {
		log = logger.Nop()
	}
	return &CreditVerifyJob{credit: v, log: log.Named("jobs")}
}

// Handle verifica todas las ventas. Las inconsistencias se registran; no hacen fallar la tarea.
func (j *CreditVerifyJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.credit == nil {
		return errors.New("credit verify: handler no configurado")
	}
	var payload CreditVerifyPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("credit verify: payload: %v: %w", err, asynq.SkipRetry)
	}
	start := time.Now()
	report, err := j.credit.VerifyAll(ctx)
	if err != nil {
		j.log.Error().Err(err).Str("task", TaskCreditVerify).Msg("verificación de cartera fallida")
		return err
	}
	for _, c := range report.Inconsistent {
		j.log.Warn().
			Str("receipt_id", c.ReceiptID).
			Str("paid", c.Paid.String()).
			Str("logged", c.Logged.String()).
			Msg("venta con abonos descuadrados")
	}
	j.log.Info().
		Str("task", TaskCreditVerify).
		Int("checked", report.Checked).
		Int("inconsistent", len(report.Inconsistent)).
		Dur("duration", time.Since(start)).
		Msg("verificación de cartera completada")
	return nil
}

// Package jobs trabajos en segundo plano sobre asynq: conciliación del libro de
// existencias y verificación de la cartera de crédito.
package jobs

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault cola por defecto de los trabajos.
	QueueDefault = "default"
	// TaskLedgerReconcile concilia la cantidad de cada producto contra sus lotes.
	TaskLedgerReconcile = "ledger:reconcile"
	// TaskCreditVerify verifica lo pagado de cada venta contra su registro de abonos.
	TaskCreditVerify = "credit:verify"
)

// ReconcilePayload parámetros de la conciliación.
type ReconcilePayload struct {
	Repair       bool      `json:"repair"`
	ScheduledFor time.Time `json:"scheduled_for"`
}

// NewReconcileTask construye la tarea de conciliación.
func NewReconcileTask(repair bool, at time.Time) (*asynq.Task, error) {
	body, err := json.Marshal(ReconcilePayload{Repair: repair, ScheduledFor: at})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskLedgerReconcile, body, asynq.Queue(QueueDefault)), nil
}

// CreditVerifyPayload metadatos de la verificación.
type CreditVerifyPayload struct {
	ScheduledFor time.Time `json:"scheduled_for"`
}

// NewCreditVerifyTask construye la tarea de verificación de crédito.
func NewCreditVerifyTask(at time.Time) (*asynq.Task, error) {
	body, err := json.Marshal(CreditVerifyPayload{ScheduledFor: at})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskCreditVerify, body, asynq.Queue(QueueDefault)), nil
}

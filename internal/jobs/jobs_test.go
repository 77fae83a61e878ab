package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jhoicas/Inventario-pos/internal/application/credit"
	"github.com/jhoicas/Inventario-pos/internal/application/ledger"
	"github.com/jhoicas/Inventario-pos/pkg/logger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLedger struct {
	repair *bool
	err    error
}

func (f *fakeLedger) Reconcile(_ context.Context, repair bool) (*ledger.ReconcileReport, error) {
	f.repair = &repair
	if f.err != nil {
		return nil, f.err
	}
	return &ledger.ReconcileReport{Checked: 3, Drifts: []ledger.Drift{{ProductID: "p1", Cached: decimal.NewFromInt(5), Actual: decimal.NewFromInt(4)}}}, nil
}

type fakeCredit struct {
	calls int
	err   error
}

func (f *fakeCredit) VerifyAll(context.Context) (*credit.VerifyReport, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &credit.VerifyReport{Checked: 2, Inconsistent: []credit.Consistency{{ReceiptID: "r1"}}}, nil
}

// ─── Tareas ───────────────────────────────────────────────────────────────────

func TestNewReconcileTask_Payload(t *testing.T) {
	at := time.Date(2026, 5, 1, 3, 0, 0, 0, time.UTC)
	task, err := NewReconcileTask(true, at)
	require.NoError(t, err)
	assert.Equal(t, TaskLedgerReconcile, task.Type())

	var p ReconcilePayload
	require.NoError(t, json.Unmarshal(task.Payload(), &p))
	assert.True(t, p.Repair)
	assert.True(t, p.ScheduledFor.Equal(at))
}

// ─── Handlers ─────────────────────────────────────────────────────────────────

func TestReconcileJob_PasaRepair(t *testing.T) {
	fake := &fakeLedger{}
	job := NewReconcileJob(fake, logger.Nop())
	task, err := NewReconcileTask(true, time.Now())
	require.NoError(t, err)

	require.NoError(t, job.Handle(context.Background(), task))
	require.NotNil(t, fake.repair)
	assert.True(t, *fake.repair)
}

func TestReconcileJob_ErrorSeReintenta(t *testing.T) {
	boom := errors.New("db caída")
	job := NewReconcileJob(&fakeLedger{err: boom}, nil)
	task, err := NewReconcileTask(false, time.Now())
	require.NoError(t, err)

	err = job.Handle(context.Background(), task)
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, asynq.SkipRetry)
}

func TestReconcileJob_PayloadInvalidoNoSeReintenta(t *testing.T) {
	job := NewReconcileJob(&fakeLedger{}, nil)
	err := job.Handle(context.Background(), asynq.NewTask(TaskLedgerReconcile, []byte("{")))
	assert.ErrorIs(t, err, asynq.SkipRetry)
}

func TestCreditVerifyJob(t *testing.T) {
	fake := &fakeCredit{}
	job := NewCreditVerifyJob(fake, logger.Nop())
	task, err := NewCreditVerifyTask(time.Now())
	require.NoError(t, err)
	assert.Equal(t, TaskCreditVerify, task.Type())

	require.NoError(t, job.Handle(context.Background(), task))
	assert.Equal(t, 1, fake.calls)

	var nilJob *CreditVerifyJob
	assert.Error(t, nilJob.Handle(context.Background(), task))
}

// ─── Worker ───────────────────────────────────────────────────────────────────

func TestNewWorker_CronInvalido(t *testing.T) {
	task, err := NewCreditVerifyTask(time.Now())
	require.NoError(t, err)

	_, err = NewWorker(WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: "127.0.0.1:0"},
		Cron:      []CronRegistration{{Spec: "no es cron", Task: task}},
	})
	assert.Error(t, err)
}

func TestNewWorker_RegistraHandlers(t *testing.T) {
	task, err := NewReconcileTask(false, time.Now())
	require.NoError(t, err)

	w, err := NewWorker(WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: "127.0.0.1:0"},
		Handlers:  []TaskHandler{{Type: TaskLedgerReconcile, Handler: NewReconcileJob(&fakeLedger{}, nil).Handle}},
		Cron:      []CronRegistration{{Spec: "0 3 * * *", Task: task}},
	})
	require.NoError(t, err)
	assert.NotNil(t, w.scheduler)

	// el mux despacha al handler registrado sin pasar por Redis
	require.NoError(t, w.mux.ProcessTask(context.Background(), task))
}

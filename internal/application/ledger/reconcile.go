package ledger

import (
	"context"
	"sort"
	"sync"

	"github.com/jhoicas/Inventario-pos/internal/domain"
	"github.com/jhoicas/Inventario-pos/internal/domain/repository"
	"golang.org/x/sync/errgroup"
)

// Reconcile compara la cantidad en caché de cada producto con la suma de sus lotes.
// Con repair, corrige la caché dentro de una transacción con el lock del producto.
func (e *Engine) Reconcile(ctx context.Context, repair bool) (*ReconcileReport, error) {
	ids, err := e.reads.Products.ListIDs(ctx)
	if err != nil {
		return nil, err
	}

	var mu sync.Mutex
	report := &ReconcileReport{Checked: len(ids)}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.cfg.ReconcileWorkers)
	for _, id := range ids {
		g.Go(func() error {
			drift, err := e.reconcileProduct(gctx, id, repair)
			if err != nil || drift == nil {
				return err
			}
			mu.Lock()
			report.Drifts = append(report.Drifts, *drift)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	sort.Slice(report.Drifts, func(i, j int) bool { return report.Drifts[i].ProductID < report.Drifts[j].ProductID })

	for _, d := range report.Drifts {
		e.log.Warn().
			Str("product_id", d.ProductID).
			Str("cached", d.Cached.String()).
			Str("actual", d.Actual.String()).
			Bool("repaired", d.Repaired).
			Msg("descuadre entre producto y lotes")
	}
	e.log.Info().Int("checked", report.Checked).Int("drifts", len(report.Drifts)).Msg("conciliación terminada")
	return report, nil
}

func (e *Engine) reconcileProduct(ctx context.Context, productID string, repair bool) (*Drift, error) {
	var drift *Drift
	err := e.Execute(ctx, []string{ProductKey(productID)}, func(r repository.Stores) error {
		drift = nil
		product, err := r.Products.GetForUpdate(ctx, productID)
		if err != nil {
			return err
		}
		if product == nil {
			return domain.ErrNotFound
		}
		sum, err := r.Batches.SumRemainingByProduct(ctx, productID)
		if err != nil {
			return err
		}
		if product.Quantity.Equal(sum) {
			return nil
		}
		drift = &Drift{ProductID: productID, Cached: product.Quantity, Actual: sum}
		if repair {
			if err := r.Products.SetQuantity(ctx, productID, sum); err != nil {
				return err
			}
			drift.Repaired = true
		}
		return nil
	})
	return drift, err
}

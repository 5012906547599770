package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"budgap/internal/core"
	"budgap/internal/ledger"
)

// RecurringProcessor materializes due recurring templates as fresh
// transactions dated now. Materialized copies are ordinary entries, so they
// flow through the normal alert path.
type RecurringProcessor struct {
	store        ledger.RecurringStore
	transactions *TransactionService
}

func NewRecurringProcessor(store ledger.RecurringStore, transactions *TransactionService) *RecurringProcessor {
	return &RecurringProcessor{
		store:        store,
		transactions: transactions,
	}
}

// ProcessDue runs one pass over all recurring templates and returns how many
// were materialized. A failing template is logged and skipped, never fatal
// for the pass.
func (p *RecurringProcessor) ProcessDue(ctx context.Context, now time.Time) (int, error) {
	if p.store == nil || p.transactions == nil {
		return 0, fmt.Errorf("processor not properly initialized")
	}

	templates, err := p.store.ListRecurringTemplates(ctx)
	if err != nil {
		return 0, fmt.Errorf("list recurring templates: %w", err)
	}

	slog.InfoContext(ctx, "Processing recurring templates",
		"total", len(templates),
		"processing_date", now.Format("2006-01-02"))

	processed := 0
	for _, tmpl := range templates {
		checker, err := GetDuenessChecker(tmpl.RecurringInterval)
		if err != nil {
			slog.ErrorContext(ctx, "Skipping template with unknown interval",
				"id", tmpl.ID, "interval", tmpl.RecurringInterval)
			continue
		}
		if !checker.IsDue(tmpl.LastRecurredAt, now, tmpl.Date) {
			continue
		}

		materialized := core.Transaction{
			OwnerID:       tmpl.OwnerID,
			Type:          tmpl.Type,
			Amount:        tmpl.Amount,
			Currency:      tmpl.Currency,
			Description:   tmpl.Description,
			Notes:         tmpl.Notes,
			Date:          core.DateOf(now),
			CategoryID:    tmpl.CategoryID,
			PaymentMethod: tmpl.PaymentMethod,
			Tags:          tmpl.Tags,
		}

		created, err := p.transactions.Create(ctx, materialized)
		if err != nil {
			slog.ErrorContext(ctx, "Failed to materialize recurring template",
				"template_id", tmpl.ID,
				"description", tmpl.Description,
				"error", err)
			continue
		}

		if err := p.store.MarkRecurringRun(ctx, tmpl.ID, now); err != nil {
			// The copy exists; a stale marker only risks an extra run.
			slog.ErrorContext(ctx, "Failed to record template run",
				"template_id", tmpl.ID, "error", err)
		}

		processed++
		slog.InfoContext(ctx, "Materialized recurring transaction",
			"template_id", tmpl.ID,
			"transaction_id", created.ID,
			"amount_cents", created.Amount.Cents(),
			"interval", tmpl.RecurringInterval)
	}

	slog.InfoContext(ctx, "Recurring processing complete",
		"processed", processed,
		"total_checked", len(templates))

	return processed, nil
}

// Run loops ProcessDue on the interval until the context ends. One pass runs
// immediately at startup.
func (p *RecurringProcessor) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if _, err := p.ProcessDue(ctx, time.Now().UTC()); err != nil {
			slog.ErrorContext(ctx, "Recurring pass failed", "error", err)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

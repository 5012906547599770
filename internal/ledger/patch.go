package ledger

import "budgap/internal/core"

// Patch application lives here so both store adapters resolve partial
// updates identically.

func ApplyTransactionPatch(t *core.Transaction, patch TransactionPatch) {
	if patch.Type != nil {
		t.Type = *patch.Type
	}
	if patch.Amount != nil {
		t.Amount = *patch.Amount
	}
	if patch.Currency != nil {
		t.Currency = *patch.Currency
	}
	if patch.Description != nil {
		t.Description = *patch.Description
	}
	if patch.Notes != nil {
		t.Notes = *patch.Notes
	}
	if patch.Date != nil {
		t.Date = *patch.Date
	}
	if patch.CategoryID != nil {
		t.CategoryID = *patch.CategoryID
	}
	if patch.PaymentMethod != nil {
		t.PaymentMethod = *patch.PaymentMethod
	}
	if patch.ReceiptRef != nil {
		t.ReceiptRef = *patch.ReceiptRef
	}
	if patch.IsRecurring != nil {
		t.IsRecurring = *patch.IsRecurring
	}
	if patch.RecurringInterval != nil {
		t.RecurringInterval = *patch.RecurringInterval
	}
	if patch.Tags != nil {
		t.Tags = *patch.Tags
	}
}

func ApplyBudgetPatch(b *core.Budget, patch BudgetPatch) {
	if patch.Name != nil {
		b.Name = *patch.Name
	}
	if patch.Amount != nil {
		b.Amount = *patch.Amount
	}
	if patch.AlertThreshold != nil {
		b.AlertThreshold = *patch.AlertThreshold
	}
	if patch.IsActive != nil {
		b.IsActive = *patch.IsActive
	}
}

// ApplyGoalPatch resolves a goal patch including the status rule: when the
// patched current amount reaches the patched target, status becomes
// completed regardless of what the caller asked for.
func ApplyGoalPatch(g *core.Goal, patch GoalPatch) {
	if patch.Name != nil {
		g.Name = *patch.Name
	}
	if patch.Description != nil {
		g.Description = *patch.Description
	}
	if patch.Target != nil {
		g.Target = *patch.Target
	}
	if patch.Current != nil {
		g.Current = *patch.Current
	}
	if patch.Currency != nil {
		g.Currency = *patch.Currency
	}
	if patch.TargetDate != nil {
		g.TargetDate = *patch.TargetDate
	}
	if patch.Color != nil {
		g.Color = *patch.Color
	}
	if patch.Icon != nil {
		g.Icon = *patch.Icon
	}
	if patch.Status != nil {
		g.Status = *patch.Status
	}
	if g.Current.Cmp(g.Target.Decimal) >= 0 && g.Target.IsPositive() {
		g.Status = core.GoalCompleted
	}
}

func ApplyCategoryPatch(c *core.Category, patch CategoryPatch) {
	if patch.Name != nil {
		c.Name = *patch.Name
	}
	if patch.Color != nil {
		c.Color = *patch.Color
	}
	if patch.Icon != nil {
		c.Icon = *patch.Icon
	}
}

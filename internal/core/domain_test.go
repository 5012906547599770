package core

import (
	"errors"
	"strings"
	"testing"
)

func validTransaction() Transaction {
	return Transaction{
		Type:        Expense,
		Amount:      MoneyFromFloat(42.50),
		Currency:    "EUR",
		Description: "Groceries",
		Date:        NewDate(2026, 8, 14),
	}
}

func TestTransactionValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Transaction)
		wantErr bool
		field   string
	}{
		{name: "valid", mutate: func(*Transaction) {}},
		{name: "bad type", mutate: func(tr *Transaction) { tr.Type = "transfer" }, wantErr: true, field: "type"},
		{name: "zero amount", mutate: func(tr *Transaction) { tr.Amount = Zero() }, wantErr: true, field: "amount"},
		{name: "negative amount", mutate: func(tr *Transaction) { tr.Amount = MoneyFromFloat(-1) }, wantErr: true, field: "amount"},
		{name: "blank description", mutate: func(tr *Transaction) { tr.Description = "   " }, wantErr: true, field: "description"},
		{name: "description too long", mutate: func(tr *Transaction) { tr.Description = strings.Repeat("x", 256) }, wantErr: true, field: "description"},
		{name: "zero date", mutate: func(tr *Transaction) { tr.Date = Date{} }, wantErr: true, field: "date"},
		{name: "recurring without interval", mutate: func(tr *Transaction) { tr.IsRecurring = true }, wantErr: true, field: "recurring_interval"},
		{name: "recurring monthly", mutate: func(tr *Transaction) { tr.IsRecurring = true; tr.RecurringInterval = Monthly }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := validTransaction()
			tt.mutate(&tr)
			err := tr.Validate()
			if !tt.wantErr {
				if err != nil {
					t.Fatalf("Validate() unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("Validate() expected error, got nil")
			}
			if !errors.Is(err, ErrValidation) {
				t.Errorf("Validate() error %v does not match ErrValidation", err)
			}
			var ve *ValidationError
			if !errors.As(err, &ve) || ve.Field != tt.field {
				t.Errorf("Validate() error field = %v, want %s", err, tt.field)
			}
		})
	}
}

func TestBudgetValidate(t *testing.T) {
	valid := Budget{
		Name:           "Food",
		CategoryID:     "cat_food",
		Amount:         MoneyFromFloat(500),
		Period:         PeriodMonthly,
		Month:          8,
		Year:           2026,
		AlertThreshold: 80,
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid budget rejected: %v", err)
	}

	b := valid
	b.Month = 13
	if err := b.Validate(); err == nil {
		t.Error("month 13 accepted")
	}

	b = valid
	b.AlertThreshold = 120
	if err := b.Validate(); err == nil {
		t.Error("threshold above 100 accepted")
	}

	b = valid
	b.CategoryID = ""
	if err := b.Validate(); err == nil {
		t.Error("budget without category accepted")
	}
}

func TestGoalProgressAndRemaining(t *testing.T) {
	tests := []struct {
		name          string
		target        float64
		current       float64
		wantProgress  float64
		wantRemaining string
	}{
		{name: "partial", target: 1000, current: 250, wantProgress: 25.0, wantRemaining: "750"},
		{name: "complete", target: 1000, current: 1000, wantProgress: 100.0, wantRemaining: "0"},
		{name: "over target capped", target: 1000, current: 1500, wantProgress: 100.0, wantRemaining: "0"},
		{name: "zero target", target: 0, current: 100, wantProgress: 0, wantRemaining: "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := Goal{Target: MoneyFromFloat(tt.target), Current: MoneyFromFloat(tt.current)}
			if got := g.Progress(); got != tt.wantProgress {
				t.Errorf("Progress() = %v, want %v", got, tt.wantProgress)
			}
			if got := g.Remaining().Decimal.String(); got != tt.wantRemaining {
				t.Errorf("Remaining() = %s, want %s", got, tt.wantRemaining)
			}
		})
	}
}

func TestMonthWindow(t *testing.T) {
	tests := []struct {
		year, month int
		first, last string
	}{
		{2026, 2, "2026-02-01", "2026-02-28"},
		{2024, 2, "2024-02-01", "2024-02-29"},
		{2026, 4, "2026-04-01", "2026-04-30"},
		{2026, 12, "2026-12-01", "2026-12-31"},
	}

	for _, tt := range tests {
		first, last := MonthWindow(tt.year, tt.month)
		if first.String() != tt.first || last.String() != tt.last {
			t.Errorf("MonthWindow(%d, %d) = %s..%s, want %s..%s",
				tt.year, tt.month, first, last, tt.first, tt.last)
		}
	}
}

package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"budgap/internal/core"
	"budgap/internal/ledger"
)

// GoalService owns savings-goal lifecycle and deposits.
type GoalService struct {
	store  ledger.Store
	alerts *AlertService
}

func NewGoalService(store ledger.Store, alerts *AlertService) *GoalService {
	return &GoalService{store: store, alerts: alerts}
}

func (s *GoalService) Create(ctx context.Context, g core.Goal) (*core.Goal, error) {
	if g.Status == "" {
		g.Status = core.GoalActive
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	g.ID = uuid.NewString()
	g.CreatedAt = now
	g.UpdatedAt = now

	if err := s.store.InsertGoal(ctx, &g); err != nil {
		return nil, fmt.Errorf("insert goal: %w", err)
	}

	slog.InfoContext(ctx, "Goal created",
		"id", g.ID, "target_cents", g.Target.Cents())
	return &g, nil
}

func (s *GoalService) Get(ctx context.Context, owner, id string) (*GoalView, error) {
	g, err := s.store.GetGoal(ctx, owner, id)
	if err != nil {
		return nil, err
	}
	view := goalView(g)
	return &view, nil
}

func (s *GoalService) List(ctx context.Context, owner string) ([]GoalView, error) {
	goals, err := s.store.ListGoals(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}
	views := make([]GoalView, 0, len(goals))
	for i := range goals {
		views = append(views, goalView(&goals[i]))
	}
	return views, nil
}

// Edit applies a partial update. Status is recomputed to completed whenever
// the patched balance reaches the patched target, regardless of what the
// caller asked for.
func (s *GoalService) Edit(ctx context.Context, owner, id string, patch ledger.GoalPatch) (*core.Goal, error) {
	if patch.Target != nil {
		if err := patch.Target.Validate(); err != nil {
			return nil, core.Invalid("target_amount", "must be a positive amount")
		}
	}
	if patch.Current != nil && patch.Current.IsNegative() {
		return nil, core.Invalid("current_amount", "must not be negative")
	}
	if patch.Status != nil && !patch.Status.Valid() {
		return nil, core.Invalid("status", "must be active, completed, paused or cancelled")
	}
	return s.store.UpdateGoal(ctx, owner, id, patch)
}

func (s *GoalService) Delete(ctx context.Context, owner, id string) error {
	return s.store.DeleteGoal(ctx, owner, id)
}

// Deposit advances the goal's balance, clamped to the target. Deposits
// against an already completed goal are refused here; the store primitive
// only clamps.
func (s *GoalService) Deposit(ctx context.Context, owner, id string, amount core.Money) (*DepositResult, error) {
	if err := amount.Validate(); err != nil {
		return nil, core.ErrInvalidAmount
	}

	current, err := s.store.GetGoal(ctx, owner, id)
	if err != nil {
		return nil, err
	}
	if current.Status == core.GoalCompleted {
		return nil, core.ErrGoalCompleted
	}

	g, completedNow, err := s.store.ApplyDeposit(ctx, owner, id, amount)
	if err != nil {
		return nil, fmt.Errorf("apply deposit: %w", err)
	}

	slog.InfoContext(ctx, "Deposit applied",
		"goal_id", g.ID,
		"amount_cents", amount.Cents(),
		"new_current_cents", g.Current.Cents(),
		"completed", completedNow)

	if completedNow && s.alerts != nil {
		if err := s.alerts.NotifyGoalCompleted(ctx, g); err != nil {
			slog.ErrorContext(ctx, "Failed to create goal completion notification",
				"goal_id", g.ID, "error", err)
		}
	}

	return &DepositResult{NewAmount: g.Current, Status: g.Status}, nil
}

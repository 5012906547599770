package services

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"budgap/internal/core"
	"budgap/internal/ledger"
)

const (
	trendMonths        = 6
	topCategoryCount   = 5
	dashboardGoalCount = 3
	recentDefaultLimit = 10
)

// StatsService is the aggregation engine. Every operation is a pure read
// recomputed from current ledger state and tolerates an empty ledger.
type StatsService struct {
	store   ledger.Store
	budgets *BudgetService
}

func NewStatsService(store ledger.Store, budgets *BudgetService) *StatsService {
	return &StatsService{store: store, budgets: budgets}
}

// MonthlySummary totals one calendar month. The savings rate is 0 when
// there is no income, never an error.
func (s *StatsService) MonthlySummary(ctx context.Context, owner string, year, month int) (*MonthlySummary, error) {
	from, to := core.MonthWindow(year, month)
	income, expenses, err := sumWindow(ctx, s.store, owner, from, to)
	if err != nil {
		return nil, fmt.Errorf("sum month: %w", err)
	}
	return buildMonthlySummary(income, expenses), nil
}

func buildMonthlySummary(income, expenses core.Money) *MonthlySummary {
	balance := income.Sub(expenses)
	return &MonthlySummary{
		Income:      income,
		Expenses:    expenses,
		Balance:     balance,
		SavingsRate: core.Round1(core.RawPercent(balance, income)),
	}
}

// MonthlyByCategory splits one month into income and expense buckets.
func (s *StatsService) MonthlyByCategory(ctx context.Context, owner string, year, month int) (*SummaryByCategory, error) {
	idx, err := loadCategoryIndex(ctx, s.store, owner)
	if err != nil {
		return nil, fmt.Errorf("load categories: %w", err)
	}
	from, to := core.MonthWindow(year, month)

	incomeBuckets, _, err := s.bucketize(ctx, owner, ledger.TransactionFilter{Type: core.Income, StartDate: from, EndDate: to}, idx)
	if err != nil {
		return nil, err
	}
	expenseBuckets, _, err := s.bucketize(ctx, owner, ledger.TransactionFilter{Type: core.Expense, StartDate: from, EndDate: to}, idx)
	if err != nil {
		return nil, err
	}
	return &SummaryByCategory{Income: incomeBuckets, Expenses: expenseBuckets}, nil
}

// BreakdownFilter narrows a category breakdown.
type BreakdownFilter struct {
	StartDate core.Date
	EndDate   core.Date
	Type      core.TransactionType
}

// CategoryBreakdown groups matching transactions by category. Dangling or
// absent references land in the shared uncategorized bucket. An empty
// window yields an empty breakdown with total 0.
func (s *StatsService) CategoryBreakdown(ctx context.Context, owner string, filter BreakdownFilter) (*BreakdownResponse, error) {
	typ := filter.Type
	if typ == "" {
		typ = core.Expense
	}
	idx, err := loadCategoryIndex(ctx, s.store, owner)
	if err != nil {
		return nil, fmt.Errorf("load categories: %w", err)
	}

	buckets, grand, err := s.bucketize(ctx, owner,
		ledger.TransactionFilter{Type: typ, StartDate: filter.StartDate, EndDate: filter.EndDate}, idx)
	if err != nil {
		return nil, err
	}

	breakdown := make([]BreakdownBucket, 0, len(buckets))
	for _, b := range buckets {
		breakdown = append(breakdown, BreakdownBucket{
			CategoryBucket: b,
			Percentage:     core.CappedPercent(b.Total, grand),
		})
	}
	return &BreakdownResponse{Breakdown: breakdown, Total: grand}, nil
}

// bucketize groups matching transactions by category id and returns the
// buckets sorted by total descending plus the grand total.
func (s *StatsService) bucketize(ctx context.Context, owner string, filter ledger.TransactionFilter, idx categoryIndex) ([]CategoryBucket, core.Money, error) {
	type group struct {
		total core.Money
		count int
	}
	groups := make(map[string]*group)
	grand := core.Zero()

	err := forEachTransaction(ctx, s.store, owner, filter, func(t core.Transaction) {
		key := t.CategoryID
		if _, ok := idx[key]; !ok {
			key = "" // dangling references share the uncategorized bucket
		}
		g, ok := groups[key]
		if !ok {
			g = &group{total: core.Zero()}
			groups[key] = g
		}
		g.total = g.total.Add(t.Amount)
		g.count++
		grand = grand.Add(t.Amount)
	})
	if err != nil {
		return nil, core.Zero(), fmt.Errorf("scan window: %w", err)
	}

	buckets := make([]CategoryBucket, 0, len(groups))
	for id, g := range groups {
		name, color, icon := idx.bucketDisplay(id)
		buckets = append(buckets, CategoryBucket{
			Name:  name,
			Color: color,
			Icon:  icon,
			Total: g.total,
			Count: g.count,
		})
	}
	sort.Slice(buckets, func(i, j int) bool {
		if c := buckets[i].Total.Cmp(buckets[j].Total.Decimal); c != 0 {
			return c > 0
		}
		return buckets[i].Name < buckets[j].Name
	})
	return buckets, grand, nil
}

// MonthlyTrend returns exactly six contiguous months ending at the month of
// now, oldest first.
func (s *StatsService) MonthlyTrend(ctx context.Context, owner string, now time.Time) ([]TrendPoint, error) {
	points := make([]TrendPoint, 0, trendMonths)
	for i := trendMonths - 1; i >= 0; i-- {
		ref := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -i, 0)
		p, err := s.trendPoint(ctx, owner, ref.Year(), int(ref.Month()))
		if err != nil {
			return nil, err
		}
		points = append(points, *p)
	}
	return points, nil
}

func (s *StatsService) trendPoint(ctx context.Context, owner string, year, month int) (*TrendPoint, error) {
	from, to := core.MonthWindow(year, month)
	income, expenses, err := sumWindow(ctx, s.store, owner, from, to)
	if err != nil {
		return nil, fmt.Errorf("sum %d-%02d: %w", year, month, err)
	}
	return &TrendPoint{
		Month:    month,
		Year:     year,
		Income:   income,
		Expenses: expenses,
		Balance:  income.Sub(expenses),
	}, nil
}

// YearlyRollup is the twelve-month trend for one year plus totals and the
// year's expense breakdown.
func (s *StatsService) YearlyRollup(ctx context.Context, owner string, year int) (*YearlyRollup, error) {
	months := make([]TrendPoint, 0, 12)
	income, expenses := core.Zero(), core.Zero()
	for m := 1; m <= 12; m++ {
		p, err := s.trendPoint(ctx, owner, year, m)
		if err != nil {
			return nil, err
		}
		months = append(months, *p)
		income = income.Add(p.Income)
		expenses = expenses.Add(p.Expenses)
	}

	from, to := core.NewDate(year, 1, 1), core.NewDate(year, 12, 31)
	breakdown, err := s.CategoryBreakdown(ctx, owner, BreakdownFilter{StartDate: from, EndDate: to, Type: core.Expense})
	if err != nil {
		return nil, err
	}

	return &YearlyRollup{
		Year:      year,
		Months:    months,
		Totals:    Totals{Income: income, Expenses: expenses, Balance: income.Sub(expenses)},
		Breakdown: breakdown.Breakdown,
	}, nil
}

// RecentTransactions returns the latest entries, date desc then creation
// time desc, joined with category display fields.
func (s *StatsService) RecentTransactions(ctx context.Context, owner string, limit int) ([]TransactionView, error) {
	if limit <= 0 {
		limit = recentDefaultLimit
	}
	idx, err := loadCategoryIndex(ctx, s.store, owner)
	if err != nil {
		return nil, fmt.Errorf("load categories: %w", err)
	}
	items, _, err := s.store.QueryTransactions(ctx, owner, ledger.TransactionFilter{},
		ledger.Sort{Field: ledger.SortDate}, ledger.Page{Limit: limit})
	if err != nil {
		return nil, fmt.Errorf("query recent: %w", err)
	}

	views := make([]TransactionView, 0, len(items))
	for _, t := range items {
		views = append(views, transactionView(t, idx))
	}
	return views, nil
}

// Dashboard composes the full summary. Sub-aggregations run concurrently;
// the first store error cancels the rest and propagates.
func (s *StatsService) Dashboard(ctx context.Context, owner string, now time.Time) (*Dashboard, error) {
	year, month := now.Year(), int(now.Month())

	var (
		monthly   *MonthlySummary
		total     Totals
		trend     []TrendPoint
		top       []CategoryBucket
		statuses  []BudgetStatus
		recent    []TransactionView
		goalViews []GoalView
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		m, err := s.MonthlySummary(gctx, owner, year, month)
		if err != nil {
			return err
		}
		monthly = m
		return nil
	})
	g.Go(func() error {
		income, expenses, err := sumWindow(gctx, s.store, owner, core.Date{}, core.Date{})
		if err != nil {
			return fmt.Errorf("sum all time: %w", err)
		}
		total = Totals{Income: income, Expenses: expenses, Balance: income.Sub(expenses)}
		return nil
	})
	g.Go(func() error {
		t, err := s.MonthlyTrend(gctx, owner, now)
		if err != nil {
			return err
		}
		trend = t
		return nil
	})
	g.Go(func() error {
		idx, err := loadCategoryIndex(gctx, s.store, owner)
		if err != nil {
			return fmt.Errorf("load categories: %w", err)
		}
		from, to := core.MonthWindow(year, month)
		buckets, _, err := s.bucketize(gctx, owner,
			ledger.TransactionFilter{Type: core.Expense, StartDate: from, EndDate: to}, idx)
		if err != nil {
			return err
		}
		if len(buckets) > topCategoryCount {
			buckets = buckets[:topCategoryCount]
		}
		top = buckets
		return nil
	})
	g.Go(func() error {
		all, err := s.budgets.List(gctx, owner, year, month, true)
		if err != nil {
			return err
		}
		statuses = all
		return nil
	})
	g.Go(func() error {
		r, err := s.RecentTransactions(gctx, owner, recentDefaultLimit)
		if err != nil {
			return err
		}
		recent = r
		return nil
	})
	g.Go(func() error {
		goals, err := s.store.ListGoals(gctx, owner)
		if err != nil {
			return fmt.Errorf("list goals: %w", err)
		}
		active := make([]core.Goal, 0, len(goals))
		for _, goal := range goals {
			if goal.Status == core.GoalActive {
				active = append(active, goal)
			}
		}
		// Newest first, capped.
		sort.Slice(active, func(i, j int) bool {
			return active[i].CreatedAt.After(active[j].CreatedAt)
		})
		if len(active) > dashboardGoalCount {
			active = active[:dashboardGoalCount]
		}
		goalViews = make([]GoalView, 0, len(active))
		for i := range active {
			goalViews = append(goalViews, goalView(&active[i]))
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	alerts := make([]BudgetStatus, 0, len(statuses))
	for _, b := range statuses {
		if b.IsWarning {
			alerts = append(alerts, b)
		}
	}

	// The health score feeds on the uncapped savings rate, which may be
	// negative when the month is overspent.
	rawRate := core.RawPercent(monthly.Balance, monthly.Income)

	return &Dashboard{
		Monthly:            *monthly,
		Total:              total,
		HealthScore:        healthScore(rawRate, len(alerts) == 0),
		MonthlyTrend:       trend,
		TopCategories:      top,
		BudgetAlerts:       alerts,
		RecentTransactions: recent,
		Goals:              goalViews,
	}, nil
}

// healthScore is the fixed heuristic: savings rate weighted 1.5 plus a
// 25-point bonus for having no budget warnings, clamped to [0, 100].
func healthScore(savingsRate float64, noWarnings bool) int {
	score := savingsRate * 1.5
	if noWarnings {
		score += 25
	}
	return int(math.Max(0, math.Min(100, math.Round(score))))
}

// ExportData assembles the transactions matching filter plus their totals.
func (s *StatsService) ExportData(ctx context.Context, owner string, filter ledger.TransactionFilter) (*ExportData, error) {
	idx, err := loadCategoryIndex(ctx, s.store, owner)
	if err != nil {
		return nil, fmt.Errorf("load categories: %w", err)
	}

	income, expenses := core.Zero(), core.Zero()
	views := make([]TransactionView, 0)
	err = forEachTransaction(ctx, s.store, owner, filter, func(t core.Transaction) {
		switch t.Type {
		case core.Income:
			income = income.Add(t.Amount)
		case core.Expense:
			expenses = expenses.Add(t.Amount)
		}
		views = append(views, transactionView(t, idx))
	})
	if err != nil {
		return nil, fmt.Errorf("scan export window: %w", err)
	}

	return &ExportData{
		Transactions: views,
		Summary:      Totals{Income: income, Expenses: expenses, Balance: income.Sub(expenses)},
		GeneratedAt:  time.Now().UTC(),
	}, nil
}

// Backup snapshots everything the owner has.
func (s *StatsService) Backup(ctx context.Context, owner string, now time.Time) (*Backup, error) {
	var transactions []core.Transaction
	err := forEachTransaction(ctx, s.store, owner, ledger.TransactionFilter{}, func(t core.Transaction) {
		transactions = append(transactions, t)
	})
	if err != nil {
		return nil, fmt.Errorf("scan transactions: %w", err)
	}

	goals, err := s.store.ListGoals(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}
	categories, err := s.store.ListCategories(ctx, owner, "")
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	notifications, err := s.store.ListNotifications(ctx, owner, 0)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}

	// Budgets are stored per (year, month); walk the months transactions
	// cover plus the current one.
	budgets, err := s.collectBudgets(ctx, owner, transactions, now)
	if err != nil {
		return nil, err
	}

	return &Backup{
		Transactions:  transactions,
		Budgets:       budgets,
		Goals:         goals,
		Categories:    categories,
		Notifications: notifications,
		GeneratedAt:   time.Now().UTC(),
	}, nil
}

func (s *StatsService) collectBudgets(ctx context.Context, owner string, transactions []core.Transaction, now time.Time) ([]core.Budget, error) {
	type period struct{ year, month int }
	periods := map[period]struct{}{
		{now.Year(), int(now.Month())}: {},
	}
	for _, t := range transactions {
		periods[period{t.Date.Year(), t.Date.Month()}] = struct{}{}
	}

	var budgets []core.Budget
	seen := make(map[string]struct{})
	for p := range periods {
		list, err := s.store.ListBudgets(ctx, owner, p.year, p.month, false)
		if err != nil {
			return nil, fmt.Errorf("list budgets %d-%02d: %w", p.year, p.month, err)
		}
		for _, b := range list {
			if _, ok := seen[b.ID]; ok {
				continue
			}
			seen[b.ID] = struct{}{}
			budgets = append(budgets, b)
		}
	}
	sort.Slice(budgets, func(i, j int) bool {
		if budgets[i].Year != budgets[j].Year {
			return budgets[i].Year < budgets[j].Year
		}
		if budgets[i].Month != budgets[j].Month {
			return budgets[i].Month < budgets[j].Month
		}
		return budgets[i].ID < budgets[j].ID
	})
	return budgets, nil
}

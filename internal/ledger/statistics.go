package ledger

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"budgetbot/internal/core"
	"budgetbot/internal/storage"
)

// Summary totals a user's income and expense in a context over the period
// named by arg. Missing rows sum to zero. Unlike the per-category views it
// does not filter on category state: soft-deleting a category hides it from
// breakdowns but never changes the recorded totals.
func (s *Service) Summary(ctx context.Context, scope Scope, sender Identity, arg string) (core.Summary, error) {
	period, err := core.ParsePeriod(arg, s.now())
	if err != nil {
		return core.Summary{}, err
	}

	var out core.Summary
	err = s.store.WithTx(ctx, func(q *storage.Queries) error {
		c, user, err := s.resolveScope(ctx, q, scope, sender)
		if err != nil {
			return err
		}
		income, err := q.AmountsInPeriod(ctx, core.Income, c.ID, user.ID, period.From, period.To)
		if err != nil {
			return err
		}
		expense, err := q.AmountsInPeriod(ctx, core.Expense, c.ID, user.ID, period.From, period.To)
		if err != nil {
			return err
		}
		out = core.Summary{Period: period, Income: sum(income), Expense: sum(expense)}
		return nil
	})
	return out, err
}

// ByCategory breaks a user's income and expense down per category over the
// period named by arg, excluding soft-deleted categories, ordered by summed
// amount descending with ties keeping first-appearance order.
func (s *Service) ByCategory(ctx context.Context, scope Scope, sender Identity, arg string) (core.Breakdown, error) {
	period, err := core.ParsePeriod(arg, s.now())
	if err != nil {
		return core.Breakdown{}, err
	}

	var out core.Breakdown
	err = s.store.WithTx(ctx, func(q *storage.Queries) error {
		c, user, err := s.resolveScope(ctx, q, scope, sender)
		if err != nil {
			return err
		}
		incomeRows, err := q.CategoryAmountsInPeriod(ctx, core.Income, c.ID, user.ID, period.From, period.To)
		if err != nil {
			return err
		}
		expenseRows, err := q.CategoryAmountsInPeriod(ctx, core.Expense, c.ID, user.ID, period.From, period.To)
		if err != nil {
			return err
		}
		out = core.Breakdown{
			Period:  period,
			Income:  groupByCategory(incomeRows),
			Expense: groupByCategory(expenseRows),
		}
		out.IncomeTotal = totalOf(out.Income)
		out.ExpenseTotal = totalOf(out.Expense)
		return nil
	})
	return out, err
}

// ItemizedToday lists a user's transactions since the start of today,
// chronologically, with per-kind totals. The detail view is fixed to the
// current day.
func (s *Service) ItemizedToday(ctx context.Context, scope Scope, sender Identity) (core.DayDetail, error) {
	now := s.now()
	period, err := core.ParsePeriod("day", now)
	if err != nil {
		return core.DayDetail{}, err
	}
	// The full day, so entries recorded after "now" within the same request
	// window still show.
	to := period.From.AddDate(0, 0, 1)

	var out core.DayDetail
	err = s.store.WithTx(ctx, func(q *storage.Queries) error {
		c, user, err := s.resolveScope(ctx, q, scope, sender)
		if err != nil {
			return err
		}
		incomeRows, err := q.LinesInPeriod(ctx, core.Income, c.ID, user.ID, period.From, to)
		if err != nil {
			return err
		}
		expenseRows, err := q.LinesInPeriod(ctx, core.Expense, c.ID, user.ID, period.From, to)
		if err != nil {
			return err
		}
		out = core.DayDetail{
			Date:    now,
			Income:  toLines(incomeRows),
			Expense: toLines(expenseRows),
		}
		for _, l := range out.Income {
			out.IncomeTotal = out.IncomeTotal.Add(l.Amount)
		}
		for _, l := range out.Expense {
			out.ExpenseTotal = out.ExpenseTotal.Add(l.Amount)
		}
		return nil
	})
	return out, err
}

// resolveScope fetches the context and the already-known user. Statistics
// never create a user: someone who has recorded nothing is not found.
func (s *Service) resolveScope(ctx context.Context, q *storage.Queries, scope Scope, sender Identity) (core.Context, core.User, error) {
	c, err := s.resolveContext(ctx, q, scope)
	if err != nil {
		return core.Context{}, core.User{}, err
	}
	user, err := q.UserByTelegramID(ctx, sender.TelegramID)
	if err != nil {
		return core.Context{}, core.User{}, err
	}
	return c, user, nil
}

func sum(amounts []decimal.Decimal) decimal.Decimal {
	var total decimal.Decimal
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total
}

func totalOf(groups []core.CategoryAmount) decimal.Decimal {
	var total decimal.Decimal
	for _, g := range groups {
		total = total.Add(g.Amount)
	}
	return total
}

// groupByCategory sums rows per title and orders groups by amount
// descending. The stable sort keeps first-appearance order on ties.
func groupByCategory(rows []storage.CategoryAmountRow) []core.CategoryAmount {
	index := make(map[string]int, len(rows))
	var groups []core.CategoryAmount
	for _, r := range rows {
		if i, ok := index[r.Title]; ok {
			groups[i].Amount = groups[i].Amount.Add(r.Amount)
			continue
		}
		index[r.Title] = len(groups)
		groups = append(groups, core.CategoryAmount{Title: r.Title, Amount: r.Amount})
	}
	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].Amount.GreaterThan(groups[j].Amount)
	})
	return groups
}

func toLines(rows []storage.LineRow) []core.Line {
	lines := make([]core.Line, len(rows))
	for i, r := range rows {
		lines[i] = core.Line{At: r.CreatedAt, Amount: r.Amount, Category: r.Title}
	}
	return lines
}

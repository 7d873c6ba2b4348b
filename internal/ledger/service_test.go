package ledger

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"budgetbot/internal/core"
	"budgetbot/internal/storage"
)

var testNow = time.Date(2025, 6, 18, 12, 0, 0, 0, time.UTC)

// testClock is an injectable clock the tests move forward explicitly.
// Statistics windows are half-open [from, now), so a query must run at a
// later tick than the records it is meant to see.
type testClock struct {
	now time.Time
}

func (c *testClock) Now() time.Time {
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

var (
	alice = Identity{TelegramID: 100, Username: "alice", FirstName: "Alice"}
	bob   = Identity{TelegramID: 200, Username: "bob", FirstName: "Bob"}

	groupScope   = Scope{ChatID: -500, Kind: core.Group}
	privateScope = Scope{ChatID: 100, Kind: core.Private}
)

func newTestService(t *testing.T, privileged bool) (*Service, *testClock) {
	t.Helper()
	store, err := storage.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open storage: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	perms := PrivilegeFunc(func(context.Context, int64, int64) (bool, error) {
		return privileged, nil
	})
	clk := &testClock{now: testNow}
	return New(store, perms, clk.Now), clk
}

func mustRecord(t *testing.T, s *Service, scope Scope, who Identity, text string) Receipt {
	t.Helper()
	r, err := s.RecordTransaction(context.Background(), scope, who, text)
	if err != nil {
		t.Fatalf("record %q: %v", text, err)
	}
	return r
}

func TestResolveContextSeedsDefaults(t *testing.T) {
	s, _ := newTestService(t, true)
	ctx := context.Background()

	c1, err := s.ResolveContext(ctx, groupScope)
	if err != nil {
		t.Fatalf("resolve context: %v", err)
	}
	c2, err := s.ResolveContext(ctx, groupScope)
	if err != nil {
		t.Fatalf("resolve context again: %v", err)
	}
	if c1.ID != c2.ID {
		t.Fatalf("repeated resolve produced different contexts: %d vs %d", c1.ID, c2.ID)
	}

	titles, err := s.ListCategories(ctx, groupScope)
	if err != nil {
		t.Fatalf("list categories: %v", err)
	}
	if len(titles) != len(core.DefaultCategories) {
		t.Fatalf("expected %d default categories, got %d", len(core.DefaultCategories), len(titles))
	}
	for i := 1; i < len(titles); i++ {
		if titles[i-1] >= titles[i] {
			t.Fatalf("categories not sorted: %q before %q", titles[i-1], titles[i])
		}
	}
}

func TestPrivateAndGroupContextsAreDistinct(t *testing.T) {
	s, _ := newTestService(t, true)
	ctx := context.Background()

	// Same numeric chat id, different kinds: two separate ledgers.
	sameID := Scope{ChatID: 100, Kind: core.Group}
	c1, err := s.ResolveContext(ctx, privateScope)
	if err != nil {
		t.Fatalf("resolve private: %v", err)
	}
	c2, err := s.ResolveContext(ctx, sameID)
	if err != nil {
		t.Fatalf("resolve group: %v", err)
	}
	if c1.ID == c2.ID {
		t.Fatal("private and group contexts with the same chat id must be distinct")
	}
}

func TestResolveUserFirstWriteWins(t *testing.T) {
	s, _ := newTestService(t, true)
	ctx := context.Background()

	u1, err := s.ResolveUser(ctx, alice)
	if err != nil {
		t.Fatalf("resolve user: %v", err)
	}
	renamed := alice
	renamed.Username = "alice_new"
	u2, err := s.ResolveUser(ctx, renamed)
	if err != nil {
		t.Fatalf("resolve renamed user: %v", err)
	}
	if u1.ID != u2.ID {
		t.Fatalf("same platform id resolved to different users: %d vs %d", u1.ID, u2.ID)
	}
	if u2.Username != "alice" {
		t.Fatalf("profile fields must stay first-write-wins, got username %q", u2.Username)
	}
}

func TestCategoryLifecycle(t *testing.T) {
	s, _ := newTestService(t, true)
	ctx := context.Background()

	out, err := s.AddCategory(ctx, groupScope, alice, "Такси")
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if out != CategoryCreated {
		t.Fatalf("expected Created, got %v", out)
	}

	c, err := s.store.ContextByChat(ctx, groupScope.ChatID, groupScope.Kind)
	if err != nil {
		t.Fatalf("context: %v", err)
	}
	created, err := s.store.ActiveCategoryByTitle(ctx, c.ID, "такси")
	if err != nil {
		t.Fatalf("case-insensitive resolve after add: %v", err)
	}
	if created.IsDefault {
		t.Fatal("user-created category must not be default")
	}

	if out, _ = s.AddCategory(ctx, groupScope, alice, "ТАКСИ"); out != CategoryExists {
		t.Fatalf("duplicate add: expected AlreadyExists, got %v", out)
	}

	if err := s.RemoveCategory(ctx, groupScope, alice, "такси"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	titles, _ := s.ListCategories(ctx, groupScope)
	for _, title := range titles {
		if title == "Такси" {
			t.Fatal("removed category still listed")
		}
	}

	if err := s.RemoveCategory(ctx, groupScope, alice, "такси"); !errors.Is(err, core.ErrCategoryNotFound) {
		t.Fatalf("second remove: expected ErrCategoryNotFound, got %v", err)
	}

	out, err = s.AddCategory(ctx, groupScope, alice, "такси")
	if err != nil {
		t.Fatalf("re-add: %v", err)
	}
	if out != CategoryRestored {
		t.Fatalf("expected Restored, got %v", out)
	}
	restored, err := s.store.ActiveCategoryByTitle(ctx, c.ID, "Такси")
	if err != nil {
		t.Fatalf("resolve restored: %v", err)
	}
	if restored.ID != created.ID {
		t.Fatalf("restore must reuse the original row: %d vs %d", restored.ID, created.ID)
	}
}

func TestCategoryManagementGating(t *testing.T) {
	ctx := context.Background()

	s, _ := newTestService(t, true)
	if _, err := s.AddCategory(ctx, privateScope, alice, "такси"); !errors.Is(err, core.ErrNotGroup) {
		t.Fatalf("private chat: expected ErrNotGroup, got %v", err)
	}
	if _, err := s.AddCategory(ctx, groupScope, alice, "   "); !errors.Is(err, core.ErrEmptyTitle) {
		t.Fatalf("blank title: expected ErrEmptyTitle, got %v", err)
	}
	if err := s.ClearContext(ctx, privateScope, alice); !errors.Is(err, core.ErrNotGroup) {
		t.Fatalf("clear in private chat: expected ErrNotGroup, got %v", err)
	}

	member, _ := newTestService(t, false)
	if _, err := member.AddCategory(ctx, groupScope, alice, "такси"); !errors.Is(err, core.ErrNotAdmin) {
		t.Fatalf("plain member: expected ErrNotAdmin, got %v", err)
	}
	if err := member.RemoveCategory(ctx, groupScope, alice, "кафе"); !errors.Is(err, core.ErrNotAdmin) {
		t.Fatalf("plain member remove: expected ErrNotAdmin, got %v", err)
	}
}

func TestRecordTransaction(t *testing.T) {
	s, clk := newTestService(t, true)

	r := mustRecord(t, s, groupScope, alice, "1000 кафе")
	if r.Kind != core.Expense {
		t.Fatalf("unprefixed entry must be an expense, got %s", r.Kind)
	}
	if r.Amount.String() != "1000" || r.Category != "кафе" {
		t.Fatalf("unexpected receipt: %+v", r)
	}
	if !r.At.Equal(testNow) {
		t.Fatalf("receipt time must come from the injected clock, got %v", r.At)
	}

	r = mustRecord(t, s, groupScope, alice, "+5000 зарплата")
	if r.Kind != core.Income {
		t.Fatalf("plus-prefixed entry must be an income, got %s", r.Kind)
	}

	// Case-insensitive category resolution.
	mustRecord(t, s, groupScope, alice, "250 КАФЕ")

	clk.Advance(time.Minute)
	sum, err := s.Summary(context.Background(), groupScope, alice, "day")
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if sum.Income.String() != "5000" {
		t.Errorf("income: expected 5000, got %s", sum.Income)
	}
	if sum.Expense.String() != "1250" {
		t.Errorf("expense: expected 1250, got %s", sum.Expense)
	}
}

func TestRecordRejections(t *testing.T) {
	s, _ := newTestService(t, true)
	ctx := context.Background()

	if _, err := s.ResolveUser(ctx, alice); err != nil {
		t.Fatalf("resolve user: %v", err)
	}

	for _, text := range []string{"/stat day", "привет", "кафе 1000"} {
		if _, err := s.RecordTransaction(ctx, groupScope, alice, text); !errors.Is(err, core.ErrNotEntry) {
			t.Errorf("%q: expected ErrNotEntry, got %v", text, err)
		}
	}
	if _, err := s.RecordTransaction(ctx, groupScope, alice, "500 несуществующая"); !errors.Is(err, core.ErrCategoryNotFound) {
		t.Errorf("unknown category: expected ErrCategoryNotFound, got %v", err)
	}

	// A no-op rejection must not create ledger rows.
	sum, err := s.Summary(ctx, groupScope, alice, "day")
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if !sum.Income.IsZero() || !sum.Expense.IsZero() {
		t.Fatalf("rejected input mutated state: %+v", sum)
	}
}

func TestReverseTransaction(t *testing.T) {
	s, clk := newTestService(t, true)
	ctx := context.Background()

	r := mustRecord(t, s, groupScope, alice, "1000 кафе")
	mustRecord(t, s, groupScope, bob, "700 кафе")
	clk.Advance(time.Minute)

	if err := s.ReverseTransaction(ctx, r.Kind, r.ID, bob); !errors.Is(err, core.ErrNotAuthor) {
		t.Fatalf("reversal by non-author: expected ErrNotAuthor, got %v", err)
	}
	if err := s.ReverseTransaction(ctx, r.Kind, r.ID, alice); err != nil {
		t.Fatalf("reversal by author: %v", err)
	}

	sum, err := s.Summary(ctx, groupScope, alice, "day")
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if !sum.Expense.IsZero() {
		t.Fatalf("reversed amount still counted: %s", sum.Expense)
	}

	if err := s.ReverseTransaction(ctx, r.Kind, r.ID, alice); !errors.Is(err, core.ErrTransactionNotFound) {
		t.Fatalf("second reversal: expected ErrTransactionNotFound, got %v", err)
	}
}

func TestSummaryForUnknownUser(t *testing.T) {
	s, _ := newTestService(t, true)
	if _, err := s.Summary(context.Background(), groupScope, bob, "day"); !errors.Is(err, core.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

// The day/week/month windows end at the current tick exclusively: a row
// stamped exactly now shows up only once the clock has moved past it.
func TestSummaryWindowIsHalfOpen(t *testing.T) {
	s, clk := newTestService(t, true)
	ctx := context.Background()

	mustRecord(t, s, groupScope, alice, "1000 кафе")

	sum, err := s.Summary(ctx, groupScope, alice, "day")
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if !sum.Expense.IsZero() {
		t.Fatalf("row stamped at now must fall outside [from, now), got %s", sum.Expense)
	}

	clk.Advance(time.Second)
	sum, err = s.Summary(ctx, groupScope, alice, "day")
	if err != nil {
		t.Fatalf("summary after tick: %v", err)
	}
	if sum.Expense.String() != "1000" {
		t.Fatalf("expected 1000 after the clock moved on, got %s", sum.Expense)
	}
}

func TestSummaryBadPeriod(t *testing.T) {
	s, _ := newTestService(t, true)
	if _, err := s.Summary(context.Background(), groupScope, alice, "year"); !errors.Is(err, core.ErrBadPeriod) {
		t.Fatalf("expected ErrBadPeriod, got %v", err)
	}
}

func TestByCategoryOrderingAndGrouping(t *testing.T) {
	s, clk := newTestService(t, true)

	mustRecord(t, s, groupScope, alice, "200 кафе")
	mustRecord(t, s, groupScope, alice, "300 продукты")
	mustRecord(t, s, groupScope, alice, "100 кафе")
	mustRecord(t, s, groupScope, alice, "500 транспорт")

	clk.Advance(time.Minute)
	b, err := s.ByCategory(context.Background(), groupScope, alice, "day")
	if err != nil {
		t.Fatalf("by category: %v", err)
	}
	// транспорт 500, then кафе 300 and продукты 300 tied: first appearance
	// order keeps кафе ahead.
	want := []string{"транспорт", "кафе", "продукты"}
	if len(b.Expense) != len(want) {
		t.Fatalf("expected %d groups, got %+v", len(want), b.Expense)
	}
	for i, title := range want {
		if b.Expense[i].Title != title {
			t.Errorf("group %d: expected %s, got %s", i, title, b.Expense[i].Title)
		}
	}
	if b.Expense[1].Amount.String() != "300" {
		t.Errorf("кафе group: expected 300, got %s", b.Expense[1].Amount)
	}
	if b.ExpenseTotal.String() != "1100" {
		t.Errorf("expense total: expected 1100, got %s", b.ExpenseTotal)
	}
	if len(b.Income) != 0 || !b.IncomeTotal.IsZero() {
		t.Errorf("unexpected income groups: %+v", b.Income)
	}
}

func TestSoftDeletedCategoryExcludedFromViews(t *testing.T) {
	s, clk := newTestService(t, true)
	ctx := context.Background()

	mustRecord(t, s, groupScope, alice, "300 кафе")
	clk.Advance(time.Minute)
	if err := s.RemoveCategory(ctx, groupScope, alice, "кафе"); err != nil {
		t.Fatalf("remove: %v", err)
	}

	// Recording under the deleted category stops working.
	if _, err := s.RecordTransaction(ctx, groupScope, alice, "500 кафе"); !errors.Is(err, core.ErrCategoryNotFound) {
		t.Fatalf("expected ErrCategoryNotFound after delete, got %v", err)
	}

	// The breakdown and detail hide the category, the plain summary keeps
	// counting the recorded amount.
	b, err := s.ByCategory(ctx, groupScope, alice, "day")
	if err != nil {
		t.Fatalf("by category: %v", err)
	}
	if len(b.Expense) != 0 {
		t.Fatalf("deleted category still in breakdown: %+v", b.Expense)
	}
	d, err := s.ItemizedToday(ctx, groupScope, alice)
	if err != nil {
		t.Fatalf("itemized: %v", err)
	}
	if len(d.Expense) != 0 {
		t.Fatalf("deleted category still in detail: %+v", d.Expense)
	}
	sum, err := s.Summary(ctx, groupScope, alice, "day")
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if sum.Expense.String() != "300" {
		t.Fatalf("summary must keep counting recorded amounts, got %s", sum.Expense)
	}

	// Restoring brings the history back into the breakdown.
	if _, err := s.AddCategory(ctx, groupScope, alice, "кафе"); err != nil {
		t.Fatalf("restore: %v", err)
	}
	b, err = s.ByCategory(ctx, groupScope, alice, "day")
	if err != nil {
		t.Fatalf("by category after restore: %v", err)
	}
	if len(b.Expense) != 1 || b.Expense[0].Amount.String() != "300" {
		t.Fatalf("restored category history missing: %+v", b.Expense)
	}
}

func TestItemizedTodayOrderingAndWindow(t *testing.T) {
	s, _ := newTestService(t, true)
	ctx := context.Background()

	user, err := s.ResolveUser(ctx, alice)
	if err != nil {
		t.Fatalf("resolve user: %v", err)
	}
	c, err := s.ResolveContext(ctx, groupScope)
	if err != nil {
		t.Fatalf("resolve context: %v", err)
	}
	cat, err := s.store.ActiveCategoryByTitle(ctx, c.ID, "кафе")
	if err != nil {
		t.Fatalf("category: %v", err)
	}

	// Rows inserted directly so their timestamps differ: one yesterday
	// (outside the window), two today out of order.
	insert := func(amount string, at time.Time) {
		t.Helper()
		tx := core.Transaction{UserID: user.ID, ContextID: c.ID, CategoryID: cat.ID, CreatedAt: at}
		tx.Amount = decimal.RequireFromString(amount)
		if _, err := s.store.InsertTransaction(ctx, core.Expense, tx); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}
	insert("111", testNow.AddDate(0, 0, -1))
	insert("20", testNow.Add(time.Hour))
	insert("10", testNow.Add(-time.Hour))

	d, err := s.ItemizedToday(ctx, groupScope, alice)
	if err != nil {
		t.Fatalf("itemized: %v", err)
	}
	if len(d.Expense) != 2 {
		t.Fatalf("expected 2 lines inside today, got %+v", d.Expense)
	}
	if d.Expense[0].Amount.String() != "10" || d.Expense[1].Amount.String() != "20" {
		t.Fatalf("lines not in chronological order: %+v", d.Expense)
	}
	if d.ExpenseTotal.String() != "30" {
		t.Fatalf("expense total: expected 30, got %s", d.ExpenseTotal)
	}
	if len(d.Income) != 0 || !d.IncomeTotal.IsZero() {
		t.Fatalf("unexpected income lines: %+v", d.Income)
	}
}

func TestClearContext(t *testing.T) {
	s, clk := newTestService(t, true)
	ctx := context.Background()

	mustRecord(t, s, groupScope, alice, "1000 кафе")
	mustRecord(t, s, groupScope, alice, "+5000 зарплата")
	clk.Advance(time.Minute)

	if err := s.ClearContext(ctx, groupScope, alice); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if _, err := s.store.ContextByChat(ctx, groupScope.ChatID, groupScope.Kind); !errors.Is(err, core.ErrContextNotFound) {
		t.Fatalf("context must be gone, got %v", err)
	}

	// Clearing an untouched chat has nothing to clear.
	if err := s.ClearContext(ctx, Scope{ChatID: -999, Kind: core.Group}, alice); !errors.Is(err, core.ErrContextNotFound) {
		t.Fatalf("expected ErrContextNotFound, got %v", err)
	}

	// A later summary re-creates the context with fresh defaults and no rows.
	sum, err := s.Summary(ctx, groupScope, alice, "day")
	if err != nil {
		t.Fatalf("summary after clear: %v", err)
	}
	if !sum.Income.IsZero() || !sum.Expense.IsZero() {
		t.Fatalf("cleared context still has rows: %+v", sum)
	}
	titles, err := s.ListCategories(ctx, groupScope)
	if err != nil {
		t.Fatalf("list after clear: %v", err)
	}
	if len(titles) != len(core.DefaultCategories) {
		t.Fatalf("expected fresh default categories, got %d", len(titles))
	}
}

func TestSummaryPeriodWindow(t *testing.T) {
	s, _ := newTestService(t, true)
	ctx := context.Background()

	user, err := s.ResolveUser(ctx, alice)
	if err != nil {
		t.Fatalf("resolve user: %v", err)
	}
	c, err := s.ResolveContext(ctx, groupScope)
	if err != nil {
		t.Fatalf("resolve context: %v", err)
	}
	cat, err := s.store.ActiveCategoryByTitle(ctx, c.ID, "кафе")
	if err != nil {
		t.Fatalf("category: %v", err)
	}

	insert := func(amount string, at time.Time) {
		t.Helper()
		tx := core.Transaction{UserID: user.ID, ContextID: c.ID, CategoryID: cat.ID, CreatedAt: at}
		tx.Amount = decimal.RequireFromString(amount)
		if _, err := s.store.InsertTransaction(ctx, core.Expense, tx); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}
	insert("1", time.Date(2025, 6, 10, 10, 0, 0, 0, time.UTC))
	insert("2", time.Date(2025, 6, 16, 10, 0, 0, 0, time.UTC)) // this week's Monday
	insert("4", testNow.Add(-time.Hour))                       // today

	cases := []struct {
		arg  string
		want string
	}{
		{"day", "4"},
		{"week", "6"},
		{"month", "7"},
		{"10.06.2025", "1"},
		{"10.06.2025 - 16.06.2025", "3"},
	}
	for _, tc := range cases {
		sum, err := s.Summary(ctx, groupScope, alice, tc.arg)
		if err != nil {
			t.Fatalf("%q: %v", tc.arg, err)
		}
		if sum.Expense.String() != tc.want {
			t.Errorf("%q: expected expense %s, got %s", tc.arg, tc.want, sum.Expense)
		}
	}
}

package telegram

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	tele "gopkg.in/telebot.v3"

	"budgetbot/internal/core"
	"budgetbot/internal/ledger"
)

const ruler = "- - - - - - - - - -"

// displayAmount truncates to whole units for display only; stored values
// keep their exact decimals.
func displayAmount(d decimal.Decimal) string {
	return d.Truncate(0).String()
}

func userDisplay(u *tele.User) string {
	switch {
	case u == nil:
		return "Аноним"
	case u.Username != "":
		return "@" + u.Username
	case u.FirstName != "":
		return u.FirstName
	default:
		return "Аноним"
	}
}

func formatCategories(titles []string) string {
	if len(titles) == 0 {
		return "В этом чате нет доступных категорий."
	}
	var b strings.Builder
	b.WriteString("Доступные категории:\n")
	b.WriteString(ruler + "\n")
	for _, t := range titles {
		b.WriteString("• " + t + "\n")
	}
	b.WriteString(ruler)
	return b.String()
}

func formatReceipt(r ledger.Receipt, author string) string {
	kind := "Расход"
	if r.Kind == core.Income {
		kind = "Доход"
	}
	return fmt.Sprintf(
		"%s добавлен!\nСумма: %s\nКатегория: %s\nДата: %s\nПользователь: %s",
		kind, r.Amount, r.Category, r.At.Format("02.01.2006 15:04"), author,
	)
}

func formatSummary(s core.Summary, display string) string {
	return fmt.Sprintf(
		"Статистика для %s %s\n\n🟢 Доход: %s\n🔴 Расход: %s",
		display, s.Period.Label, displayAmount(s.Income), displayAmount(s.Expense),
	)
}

func formatBreakdown(b core.Breakdown, display string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Статистика для %s по категориям %s\n\n", display, b.Period.Label)

	sb.WriteString("🟢 Доход:\n" + ruler + "\n")
	sb.WriteString(categoryLines(b.Income))
	fmt.Fprintf(&sb, "\n%s\nИтого: %s\n", ruler, displayAmount(b.IncomeTotal))

	sb.WriteString("\n🔴 Расход:\n" + ruler + "\n")
	sb.WriteString(categoryLines(b.Expense))
	fmt.Fprintf(&sb, "\n%s\nИтого: %s", ruler, displayAmount(b.ExpenseTotal))
	return sb.String()
}

func categoryLines(groups []core.CategoryAmount) string {
	if len(groups) == 0 {
		return "нет"
	}
	lines := make([]string, len(groups))
	for i, g := range groups {
		lines[i] = displayAmount(g.Amount) + " " + g.Title
	}
	return strings.Join(lines, "\n")
}

func formatDetail(d core.DayDetail, display string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Детальная статистика за %s для %s\n\n", d.Date.Format("02.01.2006"), display)

	sb.WriteString("🟢 Доход\n" + ruler + "\n")
	sb.WriteString(detailLines(d.Income))
	fmt.Fprintf(&sb, "\n%s\nИтого: %s\n\n", ruler, displayAmount(d.IncomeTotal))

	sb.WriteString("🔴 Расход\n" + ruler + "\n")
	sb.WriteString(detailLines(d.Expense))
	fmt.Fprintf(&sb, "\n%s\nИтого: %s", ruler, displayAmount(d.ExpenseTotal))
	return sb.String()
}

func detailLines(lines []core.Line) string {
	if len(lines) == 0 {
		return "нет"
	}
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = fmt.Sprintf("%s | %s • %s",
			l.At.Format("02.01.2006 - 15:04"), displayAmount(l.Amount), l.Category)
	}
	return strings.Join(out, "\n")
}

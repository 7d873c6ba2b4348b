package telegram

import tele "gopkg.in/telebot.v3"

// Inline buttons. Uniques are the callback routing keys; the delete buttons
// carry the transaction id as data.
var (
	btnMainMenu       = tele.Btn{Unique: "main_menu", Text: "Меню"}
	btnBackToMenu     = tele.Btn{Unique: "back_to_menu", Text: "Назад"}
	btnShowCategories = tele.Btn{Unique: "show_categories", Text: "Категории"}
	btnStatisticsMenu = tele.Btn{Unique: "statistics_menu", Text: "Статистика"}
	btnShowCommands   = tele.Btn{Unique: "show_commands", Text: "Команды"}
	btnShowHelp       = tele.Btn{Unique: "show_help", Text: "Помощь"}

	btnStatByCategory = tele.Btn{Unique: "stat_by_category", Text: "По категориям"}
	btnStatDetail     = tele.Btn{Unique: "stat_detail", Text: "Детализация"}
	btnBackToStats    = tele.Btn{Unique: "statistics_menu", Text: "Назад"}

	btnStatCatDay    = tele.Btn{Unique: "stat_by_category_day", Text: "День"}
	btnStatCatWeek   = tele.Btn{Unique: "stat_by_category_week", Text: "Неделя"}
	btnStatCatMonth  = tele.Btn{Unique: "stat_by_category_month", Text: "Месяц"}
	btnStatDetailDay = tele.Btn{Unique: "stat_detail_day", Text: "День"}

	btnDeleteExpense = tele.Btn{Unique: "delete_expense", Text: "Удалить расход"}
	btnDeleteIncome  = tele.Btn{Unique: "delete_income", Text: "Удалить доход"}
)

func menuKeyboard() *tele.ReplyMarkup {
	m := &tele.ReplyMarkup{}
	m.Inline(m.Row(btnMainMenu))
	return m
}

func submenuKeyboard() *tele.ReplyMarkup {
	m := &tele.ReplyMarkup{}
	m.Inline(
		m.Row(btnShowCategories),
		m.Row(btnStatisticsMenu),
		m.Row(btnShowCommands),
		m.Row(btnShowHelp),
		m.Row(btnBackToMenu),
	)
	return m
}

func statisticsKeyboard() *tele.ReplyMarkup {
	m := &tele.ReplyMarkup{}
	m.Inline(
		m.Row(btnStatByCategory),
		m.Row(btnStatDetail),
		m.Row(btnBackToMenu),
	)
	return m
}

func periodKeyboard(day, week, month tele.Btn, weeks, months bool) *tele.ReplyMarkup {
	m := &tele.ReplyMarkup{}
	rows := []tele.Row{m.Row(day)}
	if weeks {
		rows = append(rows, m.Row(week))
	}
	if months {
		rows = append(rows, m.Row(month))
	}
	rows = append(rows, m.Row(btnBackToStats))
	m.Inline(rows...)
	return m
}

func deleteKeyboard(kindBtn tele.Btn, data string) *tele.ReplyMarkup {
	m := &tele.ReplyMarkup{}
	btn := kindBtn
	btn.Data = data
	m.Inline(m.Row(btn))
	return m
}

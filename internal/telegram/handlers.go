package telegram

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	tele "gopkg.in/telebot.v3"

	"budgetbot/internal/core"
	"budgetbot/internal/ledger"
	"budgetbot/internal/log"
)

const commandsText = `Доступные команды:

+сумма категория — добавить доход, например: +5000 зарплата

сумма категория — добавить расход, например: 1000 кафе

/stat day | week | month | ДД.ММ.ГГГГ | ДД.ММ.ГГГГ - ДД.ММ.ГГГГ — показать сумму доходов/расходов за день, неделю, месяц, дату, период

/statcat day | week | month | ДД.ММ.ГГГГ | ДД.ММ.ГГГГ - ДД.ММ.ГГГГ — показать статистику доходов/расходов по категориям за день, неделю, месяц, дату, период

/statdetail — показать детализацию доходов/расходов с начала дня

/categories — показать список доступных категорий

/add категория — добавить категорию (только для админов в группе)

/del категория — удалить категорию (только для админов в группе)

/clearcontext — удалить все категории и историю доходов/расходов (только для админов в группе)

/commands — показать это сообщение

/help — помощь`

const helpText = "По всем вопросам: @bazzzvl"

// Handler routes bot updates into the ledger service.
type Handler struct {
	bot *tele.Bot
	svc *ledger.Service
	log *log.Logger
}

func NewHandler(bot *tele.Bot, svc *ledger.Service, logger *log.Logger) *Handler {
	return &Handler{bot: bot, svc: svc, log: logger}
}

// Register installs the command table: commands, the free-text entry
// route, and every inline-button callback.
func (h *Handler) Register() {
	h.bot.Handle("/start", h.onStart)
	h.bot.Handle("/commands", h.onCommands)
	h.bot.Handle("/help", h.onHelp)
	h.bot.Handle("/categories", h.onCategories)
	h.bot.Handle("/add", h.onAddCategory)
	h.bot.Handle("/del", h.onRemoveCategory)
	h.bot.Handle("/clearcontext", h.onClearContext)
	h.bot.Handle("/stat", h.onStat)
	h.bot.Handle("/statcat", h.onStatCat)
	h.bot.Handle("/statdetail", h.onStatDetail)
	h.bot.Handle(tele.OnText, h.onText)

	h.bot.Handle(&btnDeleteExpense, h.deleteRecord(core.Expense))
	h.bot.Handle(&btnDeleteIncome, h.deleteRecord(core.Income))

	h.bot.Handle(&btnMainMenu, h.editMarkup(submenuKeyboard))
	h.bot.Handle(&btnBackToMenu, h.editMarkup(menuKeyboard))
	h.bot.Handle(&btnStatisticsMenu, h.editMarkup(statisticsKeyboard))
	h.bot.Handle(&btnStatByCategory, h.editMarkup(func() *tele.ReplyMarkup {
		return periodKeyboard(btnStatCatDay, btnStatCatWeek, btnStatCatMonth, true, true)
	}))
	h.bot.Handle(&btnStatDetail, h.editMarkup(func() *tele.ReplyMarkup {
		return periodKeyboard(btnStatDetailDay, tele.Btn{}, tele.Btn{}, false, false)
	}))
	h.bot.Handle(&btnShowCategories, h.answering(h.onCategories))
	h.bot.Handle(&btnShowCommands, h.answering(h.onCommands))
	h.bot.Handle(&btnShowHelp, h.answering(h.onHelp))
	h.bot.Handle(&btnStatCatDay, h.answering(h.statCatPeriod("day")))
	h.bot.Handle(&btnStatCatWeek, h.answering(h.statCatPeriod("week")))
	h.bot.Handle(&btnStatCatMonth, h.answering(h.statCatPeriod("month")))
	h.bot.Handle(&btnStatDetailDay, h.answering(h.onStatDetail))
}

func opContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), opTimeout)
}

func (h *Handler) onStart(c tele.Context) error {
	ctx, cancel := opContext()
	defer cancel()

	if _, err := h.svc.ResolveUser(ctx, identityOf(c.Sender())); err != nil {
		return err
	}
	if _, err := h.svc.ResolveContext(ctx, scopeOf(c.Chat())); err != nil {
		return err
	}
	h.log.Info("user started", "chat_id", c.Chat().ID, "user_id", c.Sender().ID)

	return c.Send(fmt.Sprintf(
		"Привет, <b>%s</b>!\nВы начали работу с ботом в чате <code>%d</code>",
		c.Sender().FirstName, c.Chat().ID,
	), menuKeyboard(), tele.ModeHTML)
}

func (h *Handler) onCommands(c tele.Context) error {
	return c.Send(commandsText, menuKeyboard())
}

func (h *Handler) onHelp(c tele.Context) error {
	return c.Send(helpText, menuKeyboard())
}

func (h *Handler) onCategories(c tele.Context) error {
	ctx, cancel := opContext()
	defer cancel()

	titles, err := h.svc.ListCategories(ctx, scopeOf(c.Chat()))
	if err != nil {
		return err
	}
	return c.Reply(formatCategories(titles), menuKeyboard())
}

func (h *Handler) onAddCategory(c tele.Context) error {
	ctx, cancel := opContext()
	defer cancel()

	title := c.Message().Payload
	outcome, err := h.svc.AddCategory(ctx, scopeOf(c.Chat()), identityOf(c.Sender()), title)
	switch {
	case errors.Is(err, core.ErrNotGroup):
		return c.Reply("Добавлять категории можно только в группах.", menuKeyboard())
	case errors.Is(err, core.ErrNotAdmin):
		return c.Reply("Добавлять категории могут только администраторы.", menuKeyboard())
	case errors.Is(err, core.ErrEmptyTitle):
		return c.Reply("Укажите название категории, например:\n/add кафе", menuKeyboard())
	case err != nil:
		return err
	}

	switch outcome {
	case ledger.CategoryRestored:
		return c.Reply(fmt.Sprintf("Категория '%s' восстановлена!", title), menuKeyboard())
	case ledger.CategoryExists:
		return c.Reply(fmt.Sprintf("Категория '%s' уже существует.", title), menuKeyboard())
	default:
		return c.Reply(fmt.Sprintf("Категория '%s' успешно добавлена!", title), menuKeyboard())
	}
}

func (h *Handler) onRemoveCategory(c tele.Context) error {
	ctx, cancel := opContext()
	defer cancel()

	title := c.Message().Payload
	err := h.svc.RemoveCategory(ctx, scopeOf(c.Chat()), identityOf(c.Sender()), title)
	switch {
	case errors.Is(err, core.ErrNotGroup):
		return c.Reply("Удалять категории можно только в группах.", menuKeyboard())
	case errors.Is(err, core.ErrNotAdmin):
		return c.Reply("Удалять категории могут только администраторы.", menuKeyboard())
	case errors.Is(err, core.ErrEmptyTitle):
		return c.Reply("Укажите название категории, например:\n/del кафе", menuKeyboard())
	case errors.Is(err, core.ErrCategoryNotFound):
		return c.Reply(fmt.Sprintf("Категория '%s' не найдена.", title), menuKeyboard())
	case err != nil:
		return err
	}
	return c.Reply(fmt.Sprintf("Категория '%s' успешно удалена.", title), menuKeyboard())
}

func (h *Handler) onClearContext(c tele.Context) error {
	ctx, cancel := opContext()
	defer cancel()

	h.log.Info("clear context requested", "chat_id", c.Chat().ID, "user_id", c.Sender().ID)
	err := h.svc.ClearContext(ctx, scopeOf(c.Chat()), identityOf(c.Sender()))
	switch {
	case errors.Is(err, core.ErrNotGroup):
		return c.Reply("Очищать контекст можно только в группах.", menuKeyboard())
	case errors.Is(err, core.ErrNotAdmin):
		return c.Reply("Очищать контекст могут только администраторы.", menuKeyboard())
	case errors.Is(err, core.ErrContextNotFound):
		return c.Reply("Контекст для этого чата не найден.", menuKeyboard())
	case err != nil:
		return err
	}
	return c.Reply("Контекст, категории, расходы и доходы успешно удалены.", menuKeyboard())
}

func (h *Handler) onStat(c tele.Context) error {
	ctx, cancel := opContext()
	defer cancel()

	s, err := h.svc.Summary(ctx, scopeOf(c.Chat()), identityOf(c.Sender()), c.Message().Payload)
	switch {
	case errors.Is(err, core.ErrBadPeriod):
		return c.Reply("Используйте: /stat day, /stat week, /stat month, /stat dd.mm.yyyy или /stat dd.mm.yyyy - dd.mm.yyyy")
	case errors.Is(err, core.ErrUserNotFound):
		return c.Reply("Пользователь не найден.")
	case err != nil:
		return err
	}
	return c.Send(formatSummary(s, userDisplay(c.Sender())), menuKeyboard())
}

func (h *Handler) onStatCat(c tele.Context) error {
	return h.statCat(c, c.Message().Payload)
}

func (h *Handler) statCatPeriod(period string) tele.HandlerFunc {
	return func(c tele.Context) error {
		return h.statCat(c, period)
	}
}

func (h *Handler) statCat(c tele.Context, period string) error {
	ctx, cancel := opContext()
	defer cancel()

	b, err := h.svc.ByCategory(ctx, scopeOf(c.Chat()), identityOf(c.Sender()), period)
	switch {
	case errors.Is(err, core.ErrBadPeriod):
		return c.Reply("Используйте: /statcat day, /statcat week, /statcat month, /statcat dd.mm.yyyy или /statcat dd.mm.yyyy - dd.mm.yyyy")
	case errors.Is(err, core.ErrUserNotFound):
		return c.Reply("Пользователь не найден.")
	case err != nil:
		return err
	}
	return c.Send(formatBreakdown(b, userDisplay(c.Sender())), menuKeyboard())
}

func (h *Handler) onStatDetail(c tele.Context) error {
	ctx, cancel := opContext()
	defer cancel()

	d, err := h.svc.ItemizedToday(ctx, scopeOf(c.Chat()), identityOf(c.Sender()))
	switch {
	case errors.Is(err, core.ErrUserNotFound):
		return c.Reply("Пользователь не найден.")
	case err != nil:
		return err
	}
	return c.Send(formatDetail(d, userDisplay(c.Sender())), menuKeyboard())
}

// onText feeds every non-command message to the recorder. Messages that do
// not look like ledger entries are ignored without a reply.
func (h *Handler) onText(c tele.Context) error {
	ctx, cancel := opContext()
	defer cancel()

	r, err := h.svc.RecordTransaction(ctx, scopeOf(c.Chat()), identityOf(c.Sender()), c.Text())
	switch {
	case errors.Is(err, core.ErrNotEntry):
		return nil
	case errors.Is(err, core.ErrNonPositiveAmount):
		return c.Reply("Сумма должна быть положительным числом.")
	case errors.Is(err, core.ErrInvalidAmount):
		return c.Reply("Неверная сумма. Введите число, например: 1000 бензин или +50000 зарплата.\n\nСписок доступных категорий: /categories")
	case errors.Is(err, core.ErrCategoryNotFound):
		entry, perr := core.ParseEntry(c.Text())
		if perr != nil {
			return nil
		}
		return c.Reply(fmt.Sprintf(
			"Категория '%s' не найдена в этом чате. Используйте /categories чтобы посмотреть доступные категории.",
			entry.CategoryTitle,
		))
	case err != nil:
		return err
	}

	kindBtn := btnDeleteExpense
	if r.Kind == core.Income {
		kindBtn = btnDeleteIncome
	}
	return c.Send(
		formatReceipt(r, userDisplay(c.Sender())),
		deleteKeyboard(kindBtn, strconv.FormatInt(r.ID, 10)),
	)
}

// deleteRecord handles a reversal button press. Only the author may
// reverse; an already-reversed record reads as not found.
func (h *Handler) deleteRecord(kind core.Kind) tele.HandlerFunc {
	return func(c tele.Context) error {
		ctx, cancel := opContext()
		defer cancel()

		id, err := strconv.ParseInt(c.Data(), 10, 64)
		if err != nil {
			return c.Respond(&tele.CallbackResponse{Text: "Запись уже удалена или не найдена.", ShowAlert: true})
		}

		err = h.svc.ReverseTransaction(ctx, kind, id, identityOf(c.Sender()))
		switch {
		case errors.Is(err, core.ErrTransactionNotFound):
			return c.Respond(&tele.CallbackResponse{Text: "Запись уже удалена или не найдена.", ShowAlert: true})
		case errors.Is(err, core.ErrNotAuthor):
			return c.Respond(&tele.CallbackResponse{Text: "Вы не можете удалить эту запись.", ShowAlert: true})
		case err != nil:
			return err
		}

		if err := c.Edit("Запись удалена."); err != nil {
			return err
		}
		return c.Respond(&tele.CallbackResponse{})
	}
}

// editMarkup swaps the inline keyboard under a menu message.
func (h *Handler) editMarkup(markup func() *tele.ReplyMarkup) tele.HandlerFunc {
	return func(c tele.Context) error {
		if err := c.Edit(markup()); err != nil {
			return err
		}
		return c.Respond(&tele.CallbackResponse{})
	}
}

// answering wraps a message handler for use as a callback: run it, then
// acknowledge the button press.
func (h *Handler) answering(fn tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		if err := fn(c); err != nil {
			return err
		}
		return c.Respond(&tele.CallbackResponse{})
	}
}

package bot

import (
	"fmt"
	"log"

	"github.com/AlekSi/pointer"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/kultdan/grief_team_bot/internal/db"
)

func (b *Service) handleMyBugsMenu(query *tgbotapi.CallbackQuery) {
	msg := tgbotapi.NewMessage(query.Message.Chat.ID, "🐞 Мои баги:")
	msg.ReplyMarkup = bugsMenuKeyboard([4]string{
		"⏳ В ожидании", "🛠️ В работе", "✅ Исправленные", "❌ Отклонённые",
	})
	if _, err := b.api.Send(msg); err != nil {
		log.Printf("send bugs menu to %d: %v", query.Message.Chat.ID, err)
	}
}

func (b *Service) handleAdminBugsMenu(query *tgbotapi.CallbackQuery) {
	if !b.isAdmin(query.From.ID) {
		b.send(query.Message.Chat.ID, "⛔ У вас нет прав администратора.")
		return
	}

	msg := tgbotapi.NewMessage(query.Message.Chat.ID, "🐛 Все баги (админ):")
	msg.ReplyMarkup = bugsMenuKeyboard([4]string{
		"⏳ Все в ожидании", "🛠️ Все в работе", "✅ Все исправленные", "❌ Все отклонённые",
	})
	if _, err := b.api.Send(msg); err != nil {
		log.Printf("send admin bugs menu to %d: %v", query.Message.Chat.ID, err)
	}
}

// handleListTasks показывает задачи со статусом status: админам все,
// остальным только свои. Ожидающие задачи в выдаче админа несут живые
// кнопки выполнить/отклонить.
func (b *Service) handleListTasks(query *tgbotapi.CallbackQuery, status, title string) {
	chatID := query.Message.Chat.ID
	isUserAdmin := b.isAdmin(query.From.ID)

	var authorID *int64
	if !isUserAdmin {
		authorID = pointer.ToInt64(query.From.ID)
	}

	tasks, err := b.tasks.GetByStatus(status, authorID)
	if err != nil {
		log.Printf("handleListTasks: %v", err)
		b.send(chatID, "❌ Не удалось получить список ТЗ.")
		return
	}

	if len(tasks) == 0 {
		b.send(chatID, fmt.Sprintf("📭 Нет задач в категории «%s».", title))
		return
	}

	for i := range tasks {
		task := &tasks[i]

		var markup *tgbotapi.InlineKeyboardMarkup
		if status == db.StatusPending && isUserAdmin {
			markup = taskActionKeyboard(task.ID)
		}

		media := ""
		if task.MediaFileID != nil {
			media = *task.MediaFileID
		}

		// Вид медиа в базе не хранится: сперва пробуем как фото, при
		// отказе — как видео.
		if _, err := b.sendWithMedia(chatID, 0, renderTaskNotification(task), media, false, markup); err != nil {
			if media == "" {
				log.Printf("handleListTasks: send task #%d: %v", task.ID, err)
				continue
			}
			if _, err := b.sendWithMedia(chatID, 0, renderTaskNotification(task), media, true, markup); err != nil {
				log.Printf("handleListTasks: send task #%d: %v", task.ID, err)
			}
		}
	}
}

func (b *Service) handleListBugs(query *tgbotapi.CallbackQuery, status, title string) {
	chatID := query.Message.Chat.ID

	var authorID *int64
	if !b.isAdmin(query.From.ID) {
		authorID = pointer.ToInt64(query.From.ID)
	}

	bugs, err := b.bugs.GetByStatus(status, authorID)
	if err != nil {
		log.Printf("handleListBugs: %v", err)
		b.send(chatID, "❌ Не удалось получить список багов.")
		return
	}

	if len(bugs) == 0 {
		b.send(chatID, fmt.Sprintf("📭 Нет багов в категории «%s».", title))
		return
	}

	for i := range bugs {
		bug := &bugs[i]
		text := renderBugNotification(bug) + "\nДата: " + bug.UpdatedAt.Format("02.01.2006 15:04")
		b.send(chatID, text)
	}
}

package bot

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/AlekSi/pointer"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/kultdan/grief_team_bot/internal/db"
)

// Таблицы переходов: из терминального статуса выходов нет, поэтому
// повторное нажатие старой кнопки отклоняется, а не перезаписывает запись.
var (
	taskTransitions = map[string][]string{
		db.StatusPending: {db.StatusCompleted, db.StatusRejected},
	}

	bugTransitions = map[string][]string{
		db.StatusPending:    {db.StatusInProgress, db.StatusCompleted, db.StatusRejected},
		db.StatusInProgress: {db.StatusCompleted, db.StatusRejected},
	}

	appTransitions = map[string][]string{
		db.StatusPending: {db.StatusApproved, db.StatusRejected},
	}
)

func transitionAllowed(table map[string][]string, from, to string) bool {
	for _, status := range table[from] {
		if status == to {
			return true
		}
	}

	return false
}

func (b *Service) handleStatusCallback(query *tgbotapi.CallbackQuery) {
	data := query.Data

	switch {
	case strings.HasPrefix(data, "bug_complete_"):
		b.handleBugAction(query, db.StatusCompleted)
	case strings.HasPrefix(data, "bug_progress_"):
		b.handleBugAction(query, db.StatusInProgress)
	case strings.HasPrefix(data, "bug_reject_"):
		b.handleBugAction(query, db.StatusRejected)
	case strings.HasPrefix(data, "app_approve_"):
		b.handleApplicationAction(query, db.StatusApproved)
	case strings.HasPrefix(data, "app_reject_"):
		b.handleApplicationAction(query, db.StatusRejected)
	case strings.HasPrefix(data, "complete_"):
		b.handleTaskAction(query, db.StatusCompleted)
	case strings.HasPrefix(data, "reject_"):
		b.handleTaskAction(query, db.StatusRejected)
	}
}

func (b *Service) handleTaskAction(query *tgbotapi.CallbackQuery, newStatus string) {
	chatID := query.Message.Chat.ID

	if !b.isAdmin(query.From.ID) {
		b.send(chatID, "⛔ У вас нет прав администратора.")
		return
	}

	taskID, err := payloadID(query.Data)
	if err != nil {
		log.Printf("handleTaskAction: %v", err)
		return
	}

	task, err := b.tasks.GetByID(taskID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			b.send(chatID, "❌ ТЗ не найдено.")
			return
		}
		log.Printf("handleTaskAction: %v", err)
		b.send(chatID, "❌ Не удалось загрузить ТЗ.")
		return
	}

	if !transitionAllowed(taskTransitions, task.Status, newStatus) {
		b.send(chatID, fmt.Sprintf("ℹ️ ТЗ #%d уже финализировано (статус: %s).", task.ID, taskStatusLabel(task.Status)))
		return
	}

	adminHandle := userHandle(query.From)

	if err := b.tasks.UpdateStatus(taskID, newStatus, query.From.ID, adminHandle); err != nil {
		log.Printf("handleTaskAction: %v", err)
		b.send(chatID, "❌ Не удалось обновить статус ТЗ.")
		return
	}

	task.Status = newStatus
	task.AssignedAdminID = pointer.ToInt64(query.From.ID)
	task.AssignedAdminUsername = pointer.ToString(adminHandle)

	b.notifyAuthor(task.AuthorID, fmt.Sprintf(
		"🔔 Ваше ТЗ:\n\n%s\n\nбыло %s администратором %s.",
		task.Description, taskStatusLabel(newStatus), adminHandle))

	// У ТЗ нет общего сообщения в группе: правим копию того админа,
	// который нажал кнопку. Копии остальных останутся со старыми
	// кнопками, их повторное нажатие отобьет таблица переходов.
	if err := b.editRecordMessage(chatID, query.Message.MessageID,
		messageHasMedia(query.Message), renderTaskNotification(task), nil); err != nil {
		log.Printf("handleTaskAction: edit message: %v", err)
	}
}

func (b *Service) handleBugAction(query *tgbotapi.CallbackQuery, newStatus string) {
	chatID := query.Message.Chat.ID

	if !b.isAdmin(query.From.ID) {
		b.send(chatID, "⛔ Только администраторы могут менять статус багов.")
		return
	}

	bugID, err := payloadID(query.Data)
	if err != nil {
		log.Printf("handleBugAction: %v", err)
		return
	}

	bug, err := b.bugs.GetByID(bugID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			b.send(chatID, "❌ Баг не найден.")
			return
		}
		log.Printf("handleBugAction: %v", err)
		b.send(chatID, "❌ Не удалось загрузить баг.")
		return
	}

	if !transitionAllowed(bugTransitions, bug.Status, newStatus) {
		b.send(chatID, fmt.Sprintf("ℹ️ Баг #%d уже финализирован (статус: %s).", bug.ID, bugStatusLabel(bug.Status)))
		return
	}

	adminHandle := userHandle(query.From)

	if err := b.bugs.UpdateStatus(bugID, newStatus, query.From.ID, adminHandle); err != nil {
		log.Printf("handleBugAction: %v", err)
		b.send(chatID, "❌ Не удалось обновить статус бага.")
		return
	}

	bug.Status = newStatus
	bug.AssignedAdminID = pointer.ToInt64(query.From.ID)
	bug.AssignedAdminUsername = pointer.ToString(adminHandle)

	text := renderBugNotification(bug)
	markup := bugStatusKeyboard(bugID, newStatus)
	hasMedia := bug.MediaFileID != nil

	if bug.GroupMessageID != nil {
		if err := b.editRecordMessage(b.cfg.GroupChatID, int(*bug.GroupMessageID), hasMedia, text, markup); err != nil {
			log.Printf("handleBugAction: edit group message for bug #%d: %v", bugID, err)
		}
	}

	// Кнопка могла быть нажата не в группе, а в списке багов в личке —
	// тогда правим и это сообщение.
	pressedInGroup := query.Message.Chat.ID == b.cfg.GroupChatID &&
		bug.GroupMessageID != nil && int64(query.Message.MessageID) == *bug.GroupMessageID
	if !pressedInGroup {
		if err := b.editRecordMessage(chatID, query.Message.MessageID,
			messageHasMedia(query.Message), text, markup); err != nil {
			log.Printf("handleBugAction: edit message: %v", err)
		}
	}

	b.notifyAuthor(bug.AuthorID, fmt.Sprintf(
		"🔔 Ваш баг:\n\n%s\n\nизменил статус на: %s (администратор %s)",
		bug.Description, bugStatusLabel(newStatus), adminHandle))
}

func (b *Service) handleApplicationAction(query *tgbotapi.CallbackQuery, newStatus string) {
	chatID := query.Message.Chat.ID

	if !b.isAdmin(query.From.ID) {
		b.send(chatID, "⛔ Только администраторы могут принимать заявки.")
		return
	}

	appID, err := payloadID(query.Data)
	if err != nil {
		log.Printf("handleApplicationAction: %v", err)
		return
	}

	app, err := b.apps.GetByID(appID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			b.send(chatID, "❌ Заявка не найдена.")
			return
		}
		log.Printf("handleApplicationAction: %v", err)
		b.send(chatID, "❌ Не удалось загрузить заявку.")
		return
	}

	if !transitionAllowed(appTransitions, app.Status, newStatus) {
		b.send(chatID, fmt.Sprintf("ℹ️ Заявка #%d уже рассмотрена (статус: %s).", app.ID, appStatusLabel(app.Status)))
		return
	}

	if err := b.apps.UpdateStatus(appID, newStatus); err != nil {
		log.Printf("handleApplicationAction: %v", err)
		b.send(chatID, "❌ Не удалось обновить статус заявки.")
		return
	}

	app.Status = newStatus

	authorMsg := "❌ Ваша заявка отклонена."
	if newStatus == db.StatusApproved {
		authorMsg = "✅ Ваша заявка одобрена! Ожидайте, когда вам напишет модератор."
	}
	b.notifyAuthor(app.UserID, authorMsg)

	text := renderApplicationNotification(app)

	if app.GroupMessageID != nil {
		if err := b.editRecordMessage(b.cfg.GroupChatID, int(*app.GroupMessageID), false, text, nil); err != nil {
			log.Printf("handleApplicationAction: edit group message for application #%d: %v", appID, err)
		}
	}

	pressedInGroup := query.Message.Chat.ID == b.cfg.GroupChatID &&
		app.GroupMessageID != nil && int64(query.Message.MessageID) == *app.GroupMessageID
	if !pressedInGroup {
		if err := b.editRecordMessage(chatID, query.Message.MessageID, false, text, nil); err != nil {
			log.Printf("handleApplicationAction: edit message: %v", err)
		}
	}
}

// notifyAuthor уведомляет автора о смене статуса. Неудача только
// логируется: автор мог никогда не писать боту.
func (b *Service) notifyAuthor(authorID int64, text string) {
	msg := tgbotapi.NewMessage(authorID, text)
	if _, err := b.api.Send(msg); err != nil {
		log.Printf("notifyAuthor %d: %v", authorID, err)
	}
}

package bot

import (
	"fmt"
	"log"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/kultdan/grief_team_bot/internal/session"
)

func (b *Service) handleAdminPanel(query *tgbotapi.CallbackQuery) {
	if query.From.ID != b.cfg.SuperAdminID {
		b.send(query.Message.Chat.ID, "⛔ Только суперадмин может управлять админами.")
		return
	}

	b.sendAdminPanel(query.Message.Chat.ID)
}

func (b *Service) sendAdminPanel(chatID int64) {
	msg := tgbotapi.NewMessage(chatID, "👑 Админ-панель:")
	msg.ReplyMarkup = adminPanelKeyboard()
	if _, err := b.api.Send(msg); err != nil {
		log.Printf("send admin panel to %d: %v", chatID, err)
	}
}

func (b *Service) handleAddAdminStart(query *tgbotapi.CallbackQuery) {
	if query.From.ID != b.cfg.SuperAdminID {
		return
	}

	b.sessions.Set(query.From.ID, session.FlowAdmin, &session.Session{
		Phase: session.PhaseAwaitingUsername,
	})

	b.send(query.Message.Chat.ID, "✏️ Отправьте @username пользователя для назначения админом:")
}

// handleAdminUsername принимает @username и создает приглашение. Строка в
// admins появится, когда этот username впервые напишет боту — до этого его
// реальный user_id неизвестен.
func (b *Service) handleAdminUsername(message *tgbotapi.Message) {
	s := b.sessions.Get(message.From.ID, session.FlowAdmin)
	if s == nil || s.Phase != session.PhaseAwaitingUsername {
		return
	}

	username := strings.TrimSpace(message.Text)
	if !strings.HasPrefix(username, "@") || len(username) < 2 {
		b.send(message.Chat.ID, "❌ Имя пользователя должно начинаться с @")
		return
	}

	if err := b.admins.CreateInvite(username, message.From.ID); err != nil {
		log.Printf("handleAdminUsername: %v", err)
		b.send(message.Chat.ID, "❌ Не удалось сохранить приглашение. Попробуйте позже.")
		return
	}

	b.sessions.Clear(message.From.ID, session.FlowAdmin)
	b.send(message.Chat.ID, fmt.Sprintf(
		"✅ Приглашение для %s сохранено. Права появятся, как только пользователь напишет боту.", username))
}

// promoteInvite превращает приглашение в настоящего админа, когда
// приглашенный username впервые появляется во входящем событии.
func (b *Service) promoteInvite(from *tgbotapi.User) {
	if from.UserName == "" {
		return
	}

	username := "@" + from.UserName

	invite, err := b.admins.GetInviteByUsername(username)
	if err != nil {
		log.Printf("promoteInvite: %v", err)
		return
	}

	if invite == nil {
		return
	}

	if err := b.admins.Upsert(from.ID, username); err != nil {
		log.Printf("promoteInvite: %v", err)
		return
	}

	if err := b.admins.DeleteInvite(username); err != nil {
		log.Printf("promoteInvite: %v", err)
	}

	log.Printf("promoteInvite: %s (ID %d) стал админом", username, from.ID)
}

func (b *Service) handleListAdmins(query *tgbotapi.CallbackQuery) {
	if query.From.ID != b.cfg.SuperAdminID {
		b.send(query.Message.Chat.ID, "⛔ Только суперадмин может управлять админами.")
		return
	}

	admins, err := b.admins.GetAll()
	if err != nil {
		log.Printf("handleListAdmins: %v", err)
		b.send(query.Message.Chat.ID, "❌ Не удалось получить список админов.")
		return
	}

	invites, err := b.admins.GetAllInvites()
	if err != nil {
		log.Printf("handleListAdmins: %v", err)
	}

	if len(admins) == 0 && len(invites) == 0 {
		b.send(query.Message.Chat.ID, "📭 Нет администраторов.")
		return
	}

	var sb strings.Builder
	sb.WriteString("📋 Список администраторов:\n")
	for _, admin := range admins {
		fmt.Fprintf(&sb, "• %s (ID: %d)\n", admin.Username, admin.UserID)
	}
	for _, invite := range invites {
		fmt.Fprintf(&sb, "• %s (приглашение, ждет первого сообщения)\n", invite.Username)
	}

	b.send(query.Message.Chat.ID, strings.TrimRight(sb.String(), "\n"))
}

func (b *Service) handleBackToMain(query *tgbotapi.CallbackQuery) {
	isUserAdmin := b.isAdmin(query.From.ID)

	msg := tgbotapi.NewMessage(query.Message.Chat.ID, "⬅️ Главное меню:")
	msg.ReplyMarkup = mainMenuKeyboard(isUserAdmin, query.From.ID == b.cfg.SuperAdminID)
	if _, err := b.api.Send(msg); err != nil {
		log.Printf("send main menu to %d: %v", query.Message.Chat.ID, err)
	}
}

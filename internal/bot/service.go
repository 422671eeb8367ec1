package bot

import (
	"fmt"
	"log"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/kultdan/grief_team_bot/internal/config"
	"github.com/kultdan/grief_team_bot/internal/db"
	"github.com/kultdan/grief_team_bot/internal/files"
	"github.com/kultdan/grief_team_bot/internal/session"
)

// sender — часть API бота, которая нужна обработчикам. *tgbotapi.BotAPI
// реализует его как есть.
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

type Service struct {
	api      sender
	tasks    *db.TaskRepository
	bugs     *db.BugRepository
	apps     *db.ApplicationRepository
	admins   *db.AdminRepository
	sessions *session.Registry
	archive  *files.MediaArchive
	cfg      *config.Config
	now      func() time.Time
}

func New(
	api sender,
	taskRepo *db.TaskRepository,
	bugRepo *db.BugRepository,
	appRepo *db.ApplicationRepository,
	adminRepo *db.AdminRepository,
	sessions *session.Registry,
	archive *files.MediaArchive,
	cfg *config.Config,
) *Service {
	return &Service{
		api:      api,
		tasks:    taskRepo,
		bugs:     bugRepo,
		apps:     appRepo,
		admins:   adminRepo,
		sessions: sessions,
		archive:  archive,
		cfg:      cfg,
		now:      time.Now,
	}
}

func (b *Service) Run(updates tgbotapi.UpdatesChannel) {
	for update := range updates {
		switch {
		case update.CallbackQuery != nil:
			b.handleCallback(update.CallbackQuery)
		case update.Message != nil:
			b.handleMessage(update.Message)
		}
	}
}

func (b *Service) handleMessage(message *tgbotapi.Message) {
	if message.From == nil || message.Chat == nil || !message.Chat.IsPrivate() {
		return
	}

	b.promoteInvite(message.From)

	if message.IsCommand() {
		b.handleCommand(message)
		return
	}

	if len(message.Photo) > 0 || message.Video != nil {
		b.handleMediaInput(message)
		return
	}

	if message.Text != "" {
		b.handleTextInput(message)
	}
}

func (b *Service) handleCommand(message *tgbotapi.Message) {
	chatID := message.Chat.ID

	switch message.Command() {
	case "start":
		b.handleStart(message)
	case "skip":
		b.handleSkipMedia(chatID, message.From.ID, taskFlow, bugFlow)
	case "skip_bug":
		b.handleSkipMedia(chatID, message.From.ID, bugFlow)
	case "cancel":
		b.handleCancelCommand(chatID, message.From.ID)
	case "admin":
		if message.From.ID != b.cfg.SuperAdminID {
			b.send(chatID, "⛔ Только суперадмин может управлять админами.")
			return
		}
		b.sendAdminPanel(chatID)
	case "id":
		msg := tgbotapi.NewMessage(chatID, fmt.Sprintf("🔑 Ваш Telegram ID: `%d`", message.From.ID))
		msg.ParseMode = tgbotapi.ModeMarkdown
		if _, err := b.api.Send(msg); err != nil {
			log.Printf("send id to %d: %v", chatID, err)
		}
	}
}

func (b *Service) handleStart(message *tgbotapi.Message) {
	userID := message.From.ID

	// Суперадмин попадает в таблицу админов при первом /start.
	if userID == b.cfg.SuperAdminID {
		if err := b.admins.Upsert(userID, userHandle(message.From)); err != nil {
			log.Printf("register super admin %d: %v", userID, err)
		}
	}

	isUserAdmin := b.isAdmin(userID)

	msg := tgbotapi.NewMessage(message.Chat.ID,
		"👋 Добро пожаловать в систему управления ТЗ и багами!\nВыберите действие:")
	msg.ReplyMarkup = mainMenuKeyboard(isUserAdmin, userID == b.cfg.SuperAdminID)
	if _, err := b.api.Send(msg); err != nil {
		log.Printf("send main menu to %d: %v", message.Chat.ID, err)
	}
}

func (b *Service) handleTextInput(message *tgbotapi.Message) {
	userID := message.From.ID
	chatID := message.Chat.ID

	if s := b.sessions.Get(userID, session.FlowApplication); s != nil {
		if s.Phase == session.PhaseCollecting {
			b.handleFlowAnswer(message, applicationFlow)
		}
		return
	}

	if s := b.sessions.Get(userID, session.FlowAdmin); s != nil {
		if s.Phase == session.PhaseAwaitingUsername {
			b.handleAdminUsername(message)
		}
		return
	}

	if s := b.sessions.Get(userID, session.FlowTask); s != nil {
		switch s.Phase {
		case session.PhaseCollecting:
			b.handleFlowAnswer(message, taskFlow)
		case session.PhaseAwaitingMedia:
			b.send(chatID, "📸 Пожалуйста, прикрепите фото/видео или отправьте /skip")
		}
		return
	}

	if s := b.sessions.Get(userID, session.FlowBug); s != nil {
		switch s.Phase {
		case session.PhaseCollecting:
			b.handleFlowAnswer(message, bugFlow)
		case session.PhaseAwaitingMedia:
			b.send(chatID, "📸 Пожалуйста, прикрепите скриншот/видео или отправьте /skip")
		}
		return
	}

	b.send(chatID, "ℹ️ Начните с команды /start")
}

func (b *Service) handleMediaInput(message *tgbotapi.Message) {
	userID := message.From.ID

	for _, spec := range []flowSpec{taskFlow, bugFlow} {
		s := b.sessions.Get(userID, spec.flow)
		if s != nil && s.Phase == session.PhaseAwaitingMedia {
			b.handleFlowMedia(message, spec)
			return
		}
	}
}

func (b *Service) handleCancelCommand(chatID, userID int64) {
	flow, ok := b.sessions.Active(userID)
	if !ok {
		b.send(chatID, "ℹ️ Нет активного процесса.")
		return
	}

	b.sessions.Clear(userID, flow)

	switch flow {
	case session.FlowTask:
		b.send(chatID, "🚫 Создание ТЗ отменено.")
	case session.FlowBug:
		b.send(chatID, "🚫 Создание бага отменено.")
	case session.FlowApplication:
		b.send(chatID, "🚫 Подача заявки отменена.")
	default:
		b.send(chatID, "🚫 Процесс отменён.")
	}
}

func (b *Service) handleCallback(query *tgbotapi.CallbackQuery) {
	if _, err := b.api.Request(tgbotapi.NewCallback(query.ID, "")); err != nil {
		log.Printf("answer callback %s: %v", query.ID, err)
	}

	if query.From == nil || query.Message == nil {
		return
	}

	b.promoteInvite(query.From)

	switch query.Data {
	case "create_task":
		b.startFlow(query, taskFlow)
	case "confirm_task":
		b.handleFlowConfirm(query, taskFlow)
	case "edit_task":
		b.handleFlowEdit(query, taskFlow)
	case "cancel_task":
		b.handleFlowCancel(query, taskFlow)

	case "create_bug":
		b.startFlow(query, bugFlow)
	case "confirm_bug":
		b.handleFlowConfirm(query, bugFlow)
	case "edit_bug":
		b.handleFlowEdit(query, bugFlow)
	case "cancel_bug":
		b.handleFlowCancel(query, bugFlow)

	case "apply_to_team":
		b.startApplication(query)
	case "apply_helper", "apply_moderator":
		b.setPosition(query)
	case "confirm_application":
		b.handleFlowConfirm(query, applicationFlow)
	case "edit_application":
		b.handleFlowEdit(query, applicationFlow)
	case "cancel_application":
		b.handleFlowCancel(query, applicationFlow)

	case "list_active":
		b.handleListTasks(query, db.StatusPending, "Активные задачи")
	case "list_completed":
		b.handleListTasks(query, db.StatusCompleted, "Выполненные задачи")
	case "list_rejected":
		b.handleListTasks(query, db.StatusRejected, "Отклонённые задачи")

	case "my_bugs_menu":
		b.handleMyBugsMenu(query)
	case "admin_bugs_menu":
		b.handleAdminBugsMenu(query)
	case "list_bugs_active":
		b.handleListBugs(query, db.StatusPending, "Баги в ожидании")
	case "list_bugs_in_progress":
		b.handleListBugs(query, db.StatusInProgress, "Баги в работе")
	case "list_bugs_completed":
		b.handleListBugs(query, db.StatusCompleted, "Исправленные баги")
	case "list_bugs_rejected":
		b.handleListBugs(query, db.StatusRejected, "Отклонённые баги")

	case "admin_panel":
		b.handleAdminPanel(query)
	case "add_admin_start":
		b.handleAddAdminStart(query)
	case "list_admins":
		b.handleListAdmins(query)
	case "back_to_main":
		b.handleBackToMain(query)

	default:
		b.handleStatusCallback(query)
	}
}

func (b *Service) isAdmin(userID int64) bool {
	if userID == b.cfg.SuperAdminID {
		return true
	}

	ok, err := b.admins.IsAdmin(userID)
	if err != nil {
		log.Printf("isAdmin %d: %v", userID, err)
		return false
	}

	return ok
}

func (b *Service) send(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.api.Send(msg); err != nil {
		log.Printf("send to %d: %v", chatID, err)
	}
}

package bot

import (
	"log"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/kultdan/grief_team_bot/internal/db"
	"github.com/kultdan/grief_team_bot/internal/session"
)

// dispatchTask сохраняет подтвержденное ТЗ и рассылает его каждому админу
// отдельным сообщением. Отказ доставки одному админу не прерывает рассылку
// остальным; если не дошло ни до кого — автор получает отдельное
// предупреждение, а запись остается в базе.
func (b *Service) dispatchTask(query *tgbotapi.CallbackQuery, s *session.Session) {
	chatID := query.Message.Chat.ID
	handle := userHandle(query.From)
	description := s.Answers[0]

	taskID, err := b.tasks.Create(query.From.ID, handle, description, mediaRef(s))
	if err != nil {
		log.Printf("dispatchTask: %v", err)
		b.send(chatID, "❌ Не удалось сохранить ТЗ. Попробуйте позже.")
		return
	}

	b.archiveMedia(s)

	admins, err := b.admins.GetAll()
	if err != nil {
		log.Printf("dispatchTask: load admins: %v", err)
	}

	text := renderTaskNotification(&db.Task{
		ID:             taskID,
		AuthorUsername: handle,
		Description:    description,
		Status:         db.StatusPending,
	})
	markup := taskActionKeyboard(taskID)

	sentToAnyone := false
	for _, admin := range admins {
		if _, err := b.sendWithMedia(admin.UserID, 0, text, s.MediaFileID, s.MediaIsVideo, markup); err != nil {
			log.Printf("dispatchTask: cannot notify admin %s (ID %d): %v", admin.Username, admin.UserID, err)
			continue
		}
		sentToAnyone = true
	}

	if !sentToAnyone {
		b.send(chatID,
			"⚠️ Ни одному администратору не удалось отправить ТЗ.\n"+
				"Убедитесь, что админы начали диалог с ботом — отправили ему команду /start.")
		return
	}

	b.send(chatID, "✅ ТЗ успешно создано и отправлено администраторам!")
}

// dispatchBug сохраняет баг и публикует его в тему багов общей группы,
// запоминая id сообщения для последующих правок статуса.
func (b *Service) dispatchBug(query *tgbotapi.CallbackQuery, s *session.Session) {
	chatID := query.Message.Chat.ID
	handle := userHandle(query.From)
	description := s.Answers[0]

	bugID, err := b.bugs.Create(query.From.ID, handle, description, mediaRef(s))
	if err != nil {
		log.Printf("dispatchBug: %v", err)
		b.send(chatID, "❌ Не удалось создать баг. Попробуйте позже.")
		return
	}

	b.archiveMedia(s)

	text := renderBugNotification(&db.Bug{
		ID:             bugID,
		AuthorUsername: handle,
		Description:    description,
		Status:         db.StatusPending,
	})

	sent, err := b.sendWithMedia(b.cfg.GroupChatID, b.cfg.BugsTopicID, text,
		s.MediaFileID, s.MediaIsVideo, bugStatusKeyboard(bugID, db.StatusPending))
	if err != nil {
		// Запись уже в базе; откатывать ее не нужно — админы увидят баг
		// через списки.
		log.Printf("dispatchBug: cannot send bug #%d to group: %v", bugID, err)
		b.send(chatID, "❌ Не удалось отправить баг в группу. Проверьте настройки группы и темы.")
		return
	}

	if err := b.bugs.SetGroupMessageID(bugID, int64(sent.MessageID)); err != nil {
		log.Printf("dispatchBug: %v", err)
	}

	b.send(chatID, "✅ Баг отправлен в группу на рассмотрение!")
}

// dispatchApplication сохраняет заявку и публикует анкету в тему заявок.
func (b *Service) dispatchApplication(query *tgbotapi.CallbackQuery, s *session.Session) {
	chatID := query.Message.Chat.ID
	handle := userHandle(query.From)

	appID, err := b.apps.Create(query.From.ID, handle, s.Position, s.Answers)
	if err != nil {
		log.Printf("dispatchApplication: %v", err)
		b.send(chatID, "❌ Не удалось сохранить заявку. Попробуйте позже.")
		return
	}

	app := &db.Application{
		ID:       appID,
		Username: handle,
		Position: s.Position,
		Status:   db.StatusPending,
	}
	fillAnswers(app, s.Answers)

	msg := tgbotapi.NewMessage(b.cfg.GroupChatID, renderApplicationNotification(app))
	msg.ReplyToMessageID = b.cfg.AppsTopicID
	msg.ReplyMarkup = applicationActionKeyboard(appID)

	sent, err := b.api.Send(msg)
	if err != nil {
		log.Printf("dispatchApplication: cannot send application #%d to group: %v", appID, err)
		b.send(chatID, "❌ Не удалось отправить заявку. Попробуйте позже.")
		return
	}

	if err := b.apps.SetGroupMessageID(appID, int64(sent.MessageID)); err != nil {
		log.Printf("dispatchApplication: %v", err)
	}

	b.send(chatID, "✅ Ваша заявка отправлена! Ожидайте решения.")
}

func (b *Service) archiveMedia(s *session.Session) {
	if b.archive == nil || s.MediaFileID == "" {
		return
	}

	path, err := b.archive.Save(s.MediaFileID)
	if err != nil {
		log.Printf("archiveMedia: %v", err)
		return
	}

	log.Printf("archiveMedia: saved %s", path)
}

func fillAnswers(app *db.Application, answers []string) {
	app.Timezone = answers[0]
	app.ModerationExperience = answers[1]
	app.OtherProjects = answers[2]
	app.CheatCheckKnowledge = answers[3]
	app.GrifExperience = answers[4]
	app.Age = answers[5]
	app.AvailableTime = answers[6]
}

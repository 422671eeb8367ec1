package bot

import (
	"log"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/kultdan/grief_team_bot/internal/session"
)

// applicationCooldown — минимальный срок между двумя заявками одного
// пользователя. Проверяется при старте визарда, не при подтверждении.
const applicationCooldown = 7 * 24 * time.Hour

// flowSpec описывает один вид визарда. Сами шаги у всех трех видов
// одинаковые: вопросы по очереди, опциональное медиа, предпросмотр.
type flowSpec struct {
	flow         session.Flow
	questions    []string
	editPrompt   string
	wantsMedia   bool
	mediaPrompt  string
	confirmLabel string
	confirmData  string
	editData     string
	cancelData   string
	cancelledMsg string
}

var taskFlow = flowSpec{
	flow:         session.FlowTask,
	questions:    []string{"📝 Введите описание задачи:"},
	editPrompt:   "✏️ Введите новое описание задачи:",
	wantsMedia:   true,
	mediaPrompt:  "📸 Прикрепите фото/видео (опционально) или отправьте /skip",
	confirmLabel: "✅ Подтвердить",
	confirmData:  "confirm_task",
	editData:     "edit_task",
	cancelData:   "cancel_task",
	cancelledMsg: "🚫 Создание ТЗ отменено.",
}

var bugFlow = flowSpec{
	flow:         session.FlowBug,
	questions:    []string{"🐞 Опишите баг (что сломалось, как воспроизвести):"},
	editPrompt:   "✏️ Введите новое описание бага:",
	wantsMedia:   true,
	mediaPrompt:  "📸 Прикрепите скриншот/видео (опционально) или отправьте /skip",
	confirmLabel: "✅ Отправить",
	confirmData:  "confirm_bug",
	editData:     "edit_bug",
	cancelData:   "cancel_bug",
	cancelledMsg: "🚫 Создание бага отменено.",
}

var applicationFlow = flowSpec{
	flow:         session.FlowApplication,
	questions:    applicationQuestions,
	confirmLabel: "✅ Отправить",
	confirmData:  "confirm_application",
	editData:     "edit_application",
	cancelData:   "cancel_application",
	cancelledMsg: "🚫 Подача заявки отменена.",
}

// startFlow начинает визард ТЗ или бага. Предыдущая сессия того же вида
// молча перезаписывается.
func (b *Service) startFlow(query *tgbotapi.CallbackQuery, spec flowSpec) {
	b.sessions.Set(query.From.ID, spec.flow, &session.Session{
		Phase:   session.PhaseCollecting,
		Answers: []string{},
	})

	b.send(query.Message.Chat.ID, spec.questions[0])
}

// startApplication — у заявок перед вопросами есть выбор должности и
// кулдаун: повторная заявка не раньше чем через 7 дней после предыдущей.
func (b *Service) startApplication(query *tgbotapi.CallbackQuery) {
	chatID := query.Message.Chat.ID

	last, err := b.apps.GetLatestByUserID(query.From.ID)
	if err != nil {
		log.Printf("startApplication: %v", err)
		b.send(chatID, "❌ Не удалось проверить предыдущие заявки. Попробуйте позже.")
		return
	}

	if last != nil && b.now().Sub(last.CreatedAt) < applicationCooldown {
		b.send(chatID, "⏳ Вы уже подавали заявку в течение последних 7 дней. Повторно можно через 7 дней с момента подачи.")
		return
	}

	msg := tgbotapi.NewMessage(chatID, "Выберите должность, на которую хотите подать заявку:")
	msg.ReplyMarkup = positionKeyboard()
	if _, err := b.api.Send(msg); err != nil {
		log.Printf("send position keyboard to %d: %v", chatID, err)
	}
}

func (b *Service) setPosition(query *tgbotapi.CallbackQuery) {
	var position string

	switch query.Data {
	case "apply_helper":
		position = "Хелпер"
	case "apply_moderator":
		position = "Модератор"
	default:
		return
	}

	b.sessions.Set(query.From.ID, session.FlowApplication, &session.Session{
		Phase:    session.PhaseCollecting,
		Position: position,
		Answers:  []string{},
	})

	b.send(query.Message.Chat.ID, "Вы выбрали: "+position+"\n\n"+applicationQuestions[0])
}

func (b *Service) handleFlowAnswer(message *tgbotapi.Message, spec flowSpec) {
	s := b.sessions.Get(message.From.ID, spec.flow)
	if s == nil || s.Phase != session.PhaseCollecting {
		return
	}

	s.Answers = append(s.Answers, message.Text)
	s.Question++

	if s.Question < len(spec.questions) {
		b.send(message.Chat.ID, spec.questions[s.Question])
		return
	}

	if spec.wantsMedia {
		s.Phase = session.PhaseAwaitingMedia
		b.send(message.Chat.ID, spec.mediaPrompt)
		return
	}

	b.sendPreview(message.Chat.ID, s, spec)
}

func (b *Service) handleFlowMedia(message *tgbotapi.Message, spec flowSpec) {
	s := b.sessions.Get(message.From.ID, spec.flow)
	if s == nil || s.Phase != session.PhaseAwaitingMedia {
		return
	}

	switch {
	case len(message.Photo) > 0:
		s.MediaFileID = message.Photo[len(message.Photo)-1].FileID
		s.MediaIsVideo = false
	case message.Video != nil:
		s.MediaFileID = message.Video.FileID
		s.MediaIsVideo = true
	}

	b.sendPreview(message.Chat.ID, s, spec)
}

// handleSkipMedia обрабатывает /skip: медиа пропускается в том визарде,
// который его сейчас ждет.
func (b *Service) handleSkipMedia(chatID, userID int64, specs ...flowSpec) {
	for _, spec := range specs {
		s := b.sessions.Get(userID, spec.flow)
		if s != nil && s.Phase == session.PhaseAwaitingMedia {
			s.MediaFileID = ""
			s.MediaIsVideo = false
			b.sendPreview(chatID, s, spec)
			return
		}
	}

	b.send(chatID, "ℹ️ Сейчас нечего пропускать.")
}

func (b *Service) sendPreview(chatID int64, s *session.Session, spec flowSpec) {
	s.Phase = session.PhasePreview

	markup := previewKeyboard(spec)
	if _, err := b.sendWithMedia(chatID, 0, renderPreview(s, spec), s.MediaFileID, s.MediaIsVideo, &markup); err != nil {
		log.Printf("send preview to %d: %v", chatID, err)
	}
}

// handleFlowEdit сбрасывает собранные ответы и начинает сбор заново.
// Частичной правки одного ответа нет: у потоков нет поадресного доступа
// к вопросам, редактирование — это полный повтор.
func (b *Service) handleFlowEdit(query *tgbotapi.CallbackQuery, spec flowSpec) {
	s := b.sessions.Get(query.From.ID, spec.flow)
	if s == nil || s.Phase != session.PhasePreview {
		b.send(query.Message.Chat.ID, "❌ Сессия устарела. Начните заново с /start")
		return
	}

	b.sessions.Set(query.From.ID, spec.flow, &session.Session{
		Phase:    session.PhaseCollecting,
		Position: s.Position,
		Answers:  []string{},
	})

	prompt := spec.editPrompt
	if prompt == "" {
		prompt = spec.questions[0]
	}

	b.send(query.Message.Chat.ID, prompt)
}

func (b *Service) handleFlowCancel(query *tgbotapi.CallbackQuery, spec flowSpec) {
	if b.sessions.Get(query.From.ID, spec.flow) == nil {
		b.send(query.Message.Chat.ID, "ℹ️ Нет активного процесса.")
		return
	}

	b.sessions.Clear(query.From.ID, spec.flow)
	b.send(query.Message.Chat.ID, spec.cancelledMsg)
}

// handleFlowConfirm — терминальный шаг визарда. Сессия снимается в любом
// случае: даже если рассылка не удалась, повторить можно только начав
// заново. Повторное нажатие "Подтвердить" находит пустую сессию и
// получает "сессия устарела" вместо второй записи.
func (b *Service) handleFlowConfirm(query *tgbotapi.CallbackQuery, spec flowSpec) {
	s := b.sessions.Get(query.From.ID, spec.flow)
	if s == nil || s.Phase != session.PhasePreview {
		b.send(query.Message.Chat.ID, "❌ Сессия устарела. Начните заново с /start")
		return
	}

	defer b.sessions.Clear(query.From.ID, spec.flow)

	switch spec.flow {
	case session.FlowTask:
		b.dispatchTask(query, s)
	case session.FlowBug:
		b.dispatchBug(query, s)
	case session.FlowApplication:
		b.dispatchApplication(query, s)
	}
}

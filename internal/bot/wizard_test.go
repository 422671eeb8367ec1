package bot

import (
	"strings"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kultdan/grief_team_bot/internal/db"
	"github.com/kultdan/grief_team_bot/internal/session"
)

const (
	authorID = int64(7)
	adminID  = int64(42)
)

func TestTaskWizardReachesPreview(t *testing.T) {
	svc, api, _ := newTestService(t)

	svc.handleCallback(callbackFrom(authorID, "author", "create_task"))
	svc.handleMessage(textMessage(authorID, "author", "сделать лаунчер"))
	svc.handleMessage(commandMessage(authorID, "author", "skip"))

	s := svc.sessions.Get(authorID, session.FlowTask)
	require.NotNil(t, s)
	assert.Equal(t, session.PhasePreview, s.Phase)
	require.Len(t, s.Answers, 1)
	assert.Equal(t, "сделать лаунчер", s.Answers[0])

	assert.Contains(t, api.lastTextTo(authorID), "Предпросмотр ТЗ")
}

func TestBugWizardWithPhotoPreview(t *testing.T) {
	svc, api, _ := newTestService(t)

	svc.handleCallback(callbackFrom(authorID, "author", "create_bug"))
	svc.handleMessage(textMessage(authorID, "author", "краш при телепорте"))
	svc.handleMessage(photoMessage(authorID, "author", "photo-file-1"))

	s := svc.sessions.Get(authorID, session.FlowBug)
	require.NotNil(t, s)
	assert.Equal(t, session.PhasePreview, s.Phase)
	assert.Equal(t, "photo-file-1", s.MediaFileID)

	// предпросмотр с медиа уходит фотографией с подписью
	last := api.sent[len(api.sent)-1]
	photo, ok := last.(tgbotapi.PhotoConfig)
	require.True(t, ok)
	assert.Contains(t, photo.Caption, "Предпросмотр бага")
}

func TestApplicationWizardCollectsAllAnswers(t *testing.T) {
	svc, api, _ := newTestService(t)

	svc.handleCallback(callbackFrom(authorID, "author", "apply_to_team"))
	assert.Contains(t, api.lastTextTo(authorID), "Выберите должность")

	svc.handleCallback(callbackFrom(authorID, "author", "apply_helper"))

	answers := []string{"МСК+3", "да, полгода", "нет", "да", "3 года", "19", "4 часа"}
	for _, answer := range answers {
		svc.handleMessage(textMessage(authorID, "author", answer))
	}

	s := svc.sessions.Get(authorID, session.FlowApplication)
	require.NotNil(t, s)
	assert.Equal(t, session.PhasePreview, s.Phase)
	assert.Equal(t, answers, s.Answers)
	assert.Equal(t, "Хелпер", s.Position)

	preview := api.lastTextTo(authorID)
	assert.Contains(t, preview, "Заявка на должность: Хелпер")
	for _, answer := range answers {
		assert.Contains(t, preview, answer)
	}
}

func TestEditResetsAnswersKeepsPosition(t *testing.T) {
	svc, _, _ := newTestService(t)

	svc.handleCallback(callbackFrom(authorID, "author", "apply_to_team"))
	svc.handleCallback(callbackFrom(authorID, "author", "apply_moderator"))
	for i := 0; i < 7; i++ {
		svc.handleMessage(textMessage(authorID, "author", "ответ"))
	}
	require.Equal(t, session.PhasePreview, svc.sessions.Get(authorID, session.FlowApplication).Phase)

	svc.handleCallback(callbackFrom(authorID, "author", "edit_application"))

	s := svc.sessions.Get(authorID, session.FlowApplication)
	require.NotNil(t, s)
	assert.Equal(t, session.PhaseCollecting, s.Phase)
	assert.Equal(t, 0, s.Question)
	assert.Empty(t, s.Answers)
	assert.Equal(t, "Модератор", s.Position)
}

func TestDoubleConfirmCreatesExactlyOneRecord(t *testing.T) {
	svc, api, conn := newTestService(t)

	require.NoError(t, db.NewAdminRepository(conn).Upsert(adminID, "@mod1"))

	svc.handleCallback(callbackFrom(authorID, "author", "create_task"))
	svc.handleMessage(textMessage(authorID, "author", "сделать лаунчер"))
	svc.handleMessage(commandMessage(authorID, "author", "skip"))

	svc.handleCallback(callbackFrom(authorID, "author", "confirm_task"))
	svc.handleCallback(callbackFrom(authorID, "author", "confirm_task"))

	var count int
	require.NoError(t, conn.Get(&count, "SELECT COUNT(*) FROM tasks"))
	assert.Equal(t, 1, count)

	assert.Nil(t, svc.sessions.Get(authorID, session.FlowTask))
	assert.Contains(t, api.lastTextTo(authorID), "Сессия устарела")
}

func TestCancelWithoutSessionIsNoop(t *testing.T) {
	svc, api, _ := newTestService(t)

	svc.handleMessage(commandMessage(authorID, "author", "cancel"))
	assert.Contains(t, api.lastTextTo(authorID), "Нет активного процесса")

	svc.handleCallback(callbackFrom(authorID, "author", "cancel_task"))
	assert.Contains(t, api.lastTextTo(authorID), "Нет активного процесса")
}

func TestCancelClearsSession(t *testing.T) {
	svc, api, _ := newTestService(t)

	svc.handleCallback(callbackFrom(authorID, "author", "create_bug"))
	require.NotNil(t, svc.sessions.Get(authorID, session.FlowBug))

	svc.handleCallback(callbackFrom(authorID, "author", "cancel_bug"))
	assert.Nil(t, svc.sessions.Get(authorID, session.FlowBug))
	assert.Contains(t, api.lastTextTo(authorID), "Создание бага отменено")
}

func TestApplicationCooldown(t *testing.T) {
	svc, api, conn := newTestService(t)

	svc.handleCallback(callbackFrom(authorID, "author", "apply_to_team"))
	svc.handleCallback(callbackFrom(authorID, "author", "apply_helper"))
	for i := 0; i < 7; i++ {
		svc.handleMessage(textMessage(authorID, "author", "ответ"))
	}
	svc.handleCallback(callbackFrom(authorID, "author", "confirm_application"))

	app, err := db.NewApplicationRepository(conn).GetLatestByUserID(authorID)
	require.NoError(t, err)
	require.NotNil(t, app)

	// шесть дней спустя — еще рано
	svc.now = func() time.Time { return app.CreatedAt.Add(6 * 24 * time.Hour) }
	svc.handleCallback(callbackFrom(authorID, "author", "apply_to_team"))
	assert.Contains(t, api.lastTextTo(authorID), "в течение последних 7 дней")
	assert.Nil(t, svc.sessions.Get(authorID, session.FlowApplication))

	// ровно семь суток — уже можно
	svc.now = func() time.Time { return app.CreatedAt.Add(7 * 24 * time.Hour) }
	svc.handleCallback(callbackFrom(authorID, "author", "apply_to_team"))
	assert.Contains(t, api.lastTextTo(authorID), "Выберите должность")
}

func TestStartOverwritesPreviousSession(t *testing.T) {
	svc, _, _ := newTestService(t)

	svc.handleCallback(callbackFrom(authorID, "author", "create_task"))
	svc.handleMessage(textMessage(authorID, "author", "старое описание"))
	require.Equal(t, session.PhaseAwaitingMedia, svc.sessions.Get(authorID, session.FlowTask).Phase)

	svc.handleCallback(callbackFrom(authorID, "author", "create_task"))

	s := svc.sessions.Get(authorID, session.FlowTask)
	require.NotNil(t, s)
	assert.Equal(t, session.PhaseCollecting, s.Phase)
	assert.Empty(t, s.Answers)
}

func TestTextWithoutSessionPointsToStart(t *testing.T) {
	svc, api, _ := newTestService(t)

	svc.handleMessage(textMessage(authorID, "author", "привет"))
	assert.True(t, strings.Contains(api.lastTextTo(authorID), "/start"))
}

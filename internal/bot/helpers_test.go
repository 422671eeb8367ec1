package bot

import (
	"errors"
	"sync"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"

	"github.com/kultdan/grief_team_bot/internal/config"
	"github.com/kultdan/grief_team_bot/internal/db"
	"github.com/kultdan/grief_team_bot/internal/session"
)

const (
	testSuperAdminID = int64(1000)
	testGroupChatID  = int64(-100500)
)

// fakeAPI подменяет Telegram: запоминает все отправленное и умеет
// "блокировать" доставку в отдельные чаты.
type fakeAPI struct {
	mu        sync.Mutex
	sent      []tgbotapi.Chattable
	failChats map[int64]bool
	nextID    int
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{failChats: make(map[int64]bool)}
}

func (f *fakeAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failChats[chatIDOf(c)] {
		return tgbotapi.Message{}, errors.New("Forbidden: bot was blocked by the user")
	}

	f.sent = append(f.sent, c)
	f.nextID++

	return tgbotapi.Message{MessageID: f.nextID}, nil
}

func (f *fakeAPI) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func chatIDOf(c tgbotapi.Chattable) int64 {
	switch v := c.(type) {
	case tgbotapi.MessageConfig:
		return v.ChatID
	case tgbotapi.PhotoConfig:
		return v.ChatID
	case tgbotapi.VideoConfig:
		return v.ChatID
	case tgbotapi.EditMessageTextConfig:
		return v.ChatID
	case tgbotapi.EditMessageCaptionConfig:
		return v.ChatID
	}

	return 0
}

func textOf(c tgbotapi.Chattable) string {
	switch v := c.(type) {
	case tgbotapi.MessageConfig:
		return v.Text
	case tgbotapi.PhotoConfig:
		return v.Caption
	case tgbotapi.VideoConfig:
		return v.Caption
	case tgbotapi.EditMessageTextConfig:
		return v.Text
	case tgbotapi.EditMessageCaptionConfig:
		return v.Caption
	}

	return ""
}

// lastTextTo — текст последнего сообщения, ушедшего в chatID.
func (f *fakeAPI) lastTextTo(chatID int64) string {
	f.mu.Lock()
	defer f.mu.Unlock()

	for i := len(f.sent) - 1; i >= 0; i-- {
		if chatIDOf(f.sent[i]) == chatID {
			return textOf(f.sent[i])
		}
	}

	return ""
}

// lastEditTo — последняя правка сообщения в chatID.
func (f *fakeAPI) lastEditTo(chatID int64) (tgbotapi.Chattable, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for i := len(f.sent) - 1; i >= 0; i-- {
		switch f.sent[i].(type) {
		case tgbotapi.EditMessageTextConfig, tgbotapi.EditMessageCaptionConfig:
			if chatIDOf(f.sent[i]) == chatID {
				return f.sent[i], true
			}
		}
	}

	return nil, false
}

func (f *fakeAPI) countTo(chatID int64) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	n := 0
	for _, c := range f.sent {
		if chatIDOf(c) == chatID {
			n++
		}
	}

	return n
}

func newTestService(t *testing.T) (*Service, *fakeAPI, *sqlx.DB) {
	t.Helper()

	conn, err := sqlx.Connect("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	// у :memory: база живет в соединении — пул должен остаться одним
	conn.SetMaxOpenConns(1)

	require.NoError(t, db.RunMigrations(conn, "../../db_scripts/init_sqlite.sql"))

	api := newFakeAPI()
	cfg := &config.Config{
		SuperAdminID: testSuperAdminID,
		GroupChatID:  testGroupChatID,
		BugsTopicID:  111,
		AppsTopicID:  222,
	}

	svc := New(
		api,
		db.NewTaskRepository(conn),
		db.NewBugRepository(conn),
		db.NewApplicationRepository(conn),
		db.NewAdminRepository(conn),
		session.NewRegistry(),
		nil,
		cfg,
	)

	return svc, api, conn
}

func callbackFrom(userID int64, username, data string) *tgbotapi.CallbackQuery {
	return callbackIn(userID, userID, username, data)
}

func callbackIn(chatID, userID int64, username, data string) *tgbotapi.CallbackQuery {
	return &tgbotapi.CallbackQuery{
		ID:   "cb",
		From: &tgbotapi.User{ID: userID, UserName: username},
		Message: &tgbotapi.Message{
			MessageID: 500,
			Chat:      &tgbotapi.Chat{ID: chatID, Type: "private"},
			Text:      "stub",
		},
		Data: data,
	}
}

func textMessage(userID int64, username, text string) *tgbotapi.Message {
	return &tgbotapi.Message{
		From: &tgbotapi.User{ID: userID, UserName: username},
		Chat: &tgbotapi.Chat{ID: userID, Type: "private"},
		Text: text,
	}
}

func commandMessage(userID int64, username, command string) *tgbotapi.Message {
	m := textMessage(userID, username, "/"+command)
	m.Entities = []tgbotapi.MessageEntity{
		{Type: "bot_command", Offset: 0, Length: len(command) + 1},
	}

	return m
}

func photoMessage(userID int64, username, fileID string) *tgbotapi.Message {
	m := textMessage(userID, username, "")
	m.Photo = []tgbotapi.PhotoSize{{FileID: fileID}}

	return m
}

package bot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kultdan/grief_team_bot/internal/db"
	"github.com/kultdan/grief_team_bot/internal/session"
)

func TestAdminPanelOnlyForSuperAdmin(t *testing.T) {
	svc, api, _ := newTestService(t)

	svc.handleMessage(commandMessage(authorID, "author", "admin"))
	assert.Contains(t, api.lastTextTo(authorID), "Только суперадмин")

	svc.handleMessage(commandMessage(testSuperAdminID, "boss", "admin"))
	assert.Contains(t, api.lastTextTo(testSuperAdminID), "Админ-панель")
}

func TestInvitePromotionOnFirstMessage(t *testing.T) {
	svc, api, conn := newTestService(t)

	admins := db.NewAdminRepository(conn)

	// суперадмин приглашает @mod1 по username
	svc.handleCallback(callbackFrom(testSuperAdminID, "boss", "add_admin_start"))
	svc.handleMessage(textMessage(testSuperAdminID, "boss", "@mod1"))

	assert.Contains(t, api.lastTextTo(testSuperAdminID), "Приглашение для @mod1 сохранено")
	assert.Nil(t, svc.sessions.Get(testSuperAdminID, session.FlowAdmin))

	invite, err := admins.GetInviteByUsername("@mod1")
	require.NoError(t, err)
	require.NotNil(t, invite)

	ok, err := admins.IsAdmin(42)
	require.NoError(t, err)
	assert.False(t, ok)

	// первое же сообщение от @mod1 превращает приглашение в админа
	svc.handleMessage(textMessage(42, "mod1", "привет"))

	ok, err = admins.IsAdmin(42)
	require.NoError(t, err)
	assert.True(t, ok)

	invite, err = admins.GetInviteByUsername("@mod1")
	require.NoError(t, err)
	assert.Nil(t, invite)
}

func TestInviteRequiresAtPrefix(t *testing.T) {
	svc, api, conn := newTestService(t)

	svc.handleCallback(callbackFrom(testSuperAdminID, "boss", "add_admin_start"))
	svc.handleMessage(textMessage(testSuperAdminID, "boss", "mod1"))

	assert.Contains(t, api.lastTextTo(testSuperAdminID), "должно начинаться с @")

	// сессия не снята: можно прислать исправленный username
	require.NotNil(t, svc.sessions.Get(testSuperAdminID, session.FlowAdmin))

	svc.handleMessage(textMessage(testSuperAdminID, "boss", "@mod1"))

	invite, err := db.NewAdminRepository(conn).GetInviteByUsername("@mod1")
	require.NoError(t, err)
	assert.NotNil(t, invite)
}

func TestAddAdminStartIgnoredForOthers(t *testing.T) {
	svc, _, _ := newTestService(t)

	svc.handleCallback(callbackFrom(authorID, "author", "add_admin_start"))
	assert.Nil(t, svc.sessions.Get(authorID, session.FlowAdmin))
}

func TestListAdminsShowsInvites(t *testing.T) {
	svc, api, conn := newTestService(t)

	admins := db.NewAdminRepository(conn)
	require.NoError(t, admins.Upsert(42, "@mod1"))
	require.NoError(t, admins.CreateInvite("@mod2", testSuperAdminID))

	svc.handleCallback(callbackFrom(testSuperAdminID, "boss", "list_admins"))

	text := api.lastTextTo(testSuperAdminID)
	assert.Contains(t, text, "@mod1 (ID: 42)")
	assert.Contains(t, text, "@mod2 (приглашение")
}

func TestStartRegistersSuperAdmin(t *testing.T) {
	svc, api, conn := newTestService(t)

	svc.handleMessage(commandMessage(testSuperAdminID, "boss", "start"))

	ok, err := db.NewAdminRepository(conn).IsAdmin(testSuperAdminID)
	require.NoError(t, err)
	assert.True(t, ok)

	assert.Contains(t, api.lastTextTo(testSuperAdminID), "Добро пожаловать")
}

func TestGroupMessagesIgnored(t *testing.T) {
	svc, api, _ := newTestService(t)

	m := textMessage(authorID, "author", "привет")
	m.Chat.Type = "supergroup"
	m.Chat.ID = testGroupChatID

	svc.handleMessage(m)
	assert.Empty(t, api.sent)
}

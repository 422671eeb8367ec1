package bot

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/AlekSi/pointer"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/kultdan/grief_team_bot/internal/session"
)

// userHandle возвращает "@username", а для пользователей без username —
// стабильный заменитель вида "user123456".
func userHandle(u *tgbotapi.User) string {
	if u.UserName != "" {
		return "@" + u.UserName
	}

	return fmt.Sprintf("user%d", u.ID)
}

// payloadID достает id записи из callback-данных: числовой суффикс после
// последнего подчеркивания ("bug_progress_17" -> 17).
func payloadID(data string) (int64, error) {
	idx := strings.LastIndex(data, "_")
	if idx < 0 || idx == len(data)-1 {
		return 0, fmt.Errorf("payloadID: no id suffix in %q", data)
	}

	id, err := strconv.ParseInt(data[idx+1:], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("payloadID: bad id in %q: %w", data, err)
	}

	return id, nil
}

func mediaRef(s *session.Session) *string {
	if s.MediaFileID == "" {
		return nil
	}

	return pointer.ToString(s.MediaFileID)
}

// sendWithMedia отправляет текст как сообщение, либо как подпись к
// фото/видео, если к сессии приложено медиа. topicID != 0 адресует
// сообщение в тему супергруппы (в v5 API это reply на корневое
// сообщение темы).
func (b *Service) sendWithMedia(chatID int64, topicID int, text, mediaFileID string, isVideo bool, markup *tgbotapi.InlineKeyboardMarkup) (tgbotapi.Message, error) {
	switch {
	case mediaFileID != "" && isVideo:
		video := tgbotapi.NewVideo(chatID, tgbotapi.FileID(mediaFileID))
		video.Caption = text
		video.ReplyToMessageID = topicID
		if markup != nil {
			video.ReplyMarkup = markup
		}
		return b.api.Send(video)

	case mediaFileID != "":
		photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileID(mediaFileID))
		photo.Caption = text
		photo.ReplyToMessageID = topicID
		if markup != nil {
			photo.ReplyMarkup = markup
		}
		return b.api.Send(photo)

	default:
		msg := tgbotapi.NewMessage(chatID, text)
		msg.ReplyToMessageID = topicID
		if markup != nil {
			msg.ReplyMarkup = markup
		}
		return b.api.Send(msg)
	}
}

// editRecordMessage перегенерированным текстом заменяет ранее отправленное
// уведомление. У сообщений с медиа правится подпись, у остальных — текст.
func (b *Service) editRecordMessage(chatID int64, messageID int, hasMedia bool, text string, markup *tgbotapi.InlineKeyboardMarkup) error {
	if hasMedia {
		edit := tgbotapi.NewEditMessageCaption(chatID, messageID, text)
		edit.ReplyMarkup = markup
		_, err := b.api.Send(edit)
		return err
	}

	edit := tgbotapi.NewEditMessageText(chatID, messageID, text)
	edit.ReplyMarkup = markup
	_, err := b.api.Send(edit)
	return err
}

func messageHasMedia(m *tgbotapi.Message) bool {
	return len(m.Photo) > 0 || m.Video != nil
}

package files

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
)

// MediaArchive скачивает приложенные к заявкам фото и видео на диск.
// Телеграмовский file_id остается основной ссылкой на медиа; архив — это
// локальная копия на случай, если файл протухнет на стороне Telegram.
type MediaArchive struct {
	botAPI *tgbotapi.BotAPI
	dir    string
}

func NewMediaArchive(botAPI *tgbotapi.BotAPI, dir string) (*MediaArchive, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("MediaArchive: cannot create dir %s: %w", dir, err)
	}

	return &MediaArchive{
		botAPI: botAPI,
		dir:    dir,
	}, nil
}

func (a *MediaArchive) Save(fileID string) (string, error) {
	file, err := a.botAPI.GetFile(tgbotapi.FileConfig{FileID: fileID})
	if err != nil {
		return "", fmt.Errorf("MediaArchive.Save: cannot get file: %w", err)
	}

	fileExt := filepath.Ext(file.FilePath)
	if fileExt == "" {
		fileExt = ".jpg"
	}

	fileName := fmt.Sprintf("%s%s", uuid.New().String(), fileExt)
	filePath := filepath.Join(a.dir, fileName)

	resp, err := http.Get(file.Link(a.botAPI.Token))
	if err != nil {
		return "", fmt.Errorf("MediaArchive.Save: cannot download file: %w", err)
	}

	defer resp.Body.Close()

	out, err := os.Create(filePath)
	if err != nil {
		return "", fmt.Errorf("MediaArchive.Save: cannot create file: %w", err)
	}

	defer out.Close()

	_, err = io.Copy(out, resp.Body)
	if err != nil {
		return "", fmt.Errorf("MediaArchive.Save: cannot save file: %w", err)
	}

	return filePath, nil
}

package db

import (
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

type Application struct {
	ID                   int64     `db:"id"`
	UserID               int64     `db:"user_id"`
	Username             string    `db:"username"`
	Position             string    `db:"position"`
	Timezone             string    `db:"timezone"`
	ModerationExperience string    `db:"moderation_experience"`
	OtherProjects        string    `db:"other_projects"`
	CheatCheckKnowledge  string    `db:"cheat_check_knowledge"`
	GrifExperience       string    `db:"grif_experience"`
	Age                  string    `db:"age"`
	AvailableTime        string    `db:"available_time"`
	Status               string    `db:"status"`
	GroupMessageID       *int64    `db:"group_message_id"`
	CreatedAt            time.Time `db:"created_at"`
	UpdatedAt            time.Time `db:"updated_at"`
}

// Answers возвращает ответы анкеты в порядке вопросов.
func (a *Application) Answers() []string {
	return []string{
		a.Timezone,
		a.ModerationExperience,
		a.OtherProjects,
		a.CheatCheckKnowledge,
		a.GrifExperience,
		a.Age,
		a.AvailableTime,
	}
}

type ApplicationRepository struct {
	db *sqlx.DB
}

func NewApplicationRepository(db *sqlx.DB) *ApplicationRepository {
	return &ApplicationRepository{
		db: db,
	}
}

// Create ожидает ровно семь ответов — по одному на каждый вопрос анкеты.
func (r *ApplicationRepository) Create(userID int64, username, position string, answers []string) (int64, error) {
	if len(answers) != 7 {
		return 0, fmt.Errorf("ApplicationRepository.Create: expected 7 answers, got %d", len(answers))
	}

	id, err := insertID(r.db, `
	    INSERT INTO applications
		(user_id, username, position, timezone, moderation_experience, other_projects,
		 cheat_check_knowledge, grif_experience, age, available_time)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, userID, username, position,
		answers[0], answers[1], answers[2], answers[3], answers[4], answers[5], answers[6])

	if err != nil {
		return 0, fmt.Errorf("ApplicationRepository.Create: %w", err)
	}

	return id, nil
}

func (r *ApplicationRepository) GetByID(appID int64) (*Application, error) {
	var app Application

	err := r.db.Get(&app, r.db.Rebind(`
	    SELECT * FROM applications WHERE id = ?
	`), appID)

	if err != nil {
		if notFound(err) {
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("ApplicationRepository.GetByID: %w", err)
	}

	return &app, nil
}

// GetLatestByUserID возвращает (nil, nil), если пользователь еще не подавал
// заявок — для проверки кулдауна это не ошибка.
func (r *ApplicationRepository) GetLatestByUserID(userID int64) (*Application, error) {
	var app Application

	err := r.db.Get(&app, r.db.Rebind(`
	    SELECT * FROM applications
		WHERE user_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT 1
	`), userID)

	if err != nil {
		if notFound(err) {
			return nil, nil
		}

		return nil, fmt.Errorf("ApplicationRepository.GetLatestByUserID: %w", err)
	}

	return &app, nil
}

func (r *ApplicationRepository) UpdateStatus(appID int64, status string) error {
	_, err := r.db.Exec(r.db.Rebind(`
	    UPDATE applications SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?
	`), status, appID)

	if err != nil {
		return fmt.Errorf("ApplicationRepository.UpdateStatus: %w", err)
	}

	return nil
}

func (r *ApplicationRepository) SetGroupMessageID(appID int64, messageID int64) error {
	_, err := r.db.Exec(r.db.Rebind(`
	    UPDATE applications SET group_message_id = ? WHERE id = ?
	`), messageID, appID)

	if err != nil {
		return fmt.Errorf("ApplicationRepository.SetGroupMessageID: %w", err)
	}

	return nil
}

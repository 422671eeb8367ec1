package db

import (
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

type Bug struct {
	ID                    int64     `db:"id"`
	AuthorID              int64     `db:"author_id"`
	AuthorUsername        string    `db:"author_username"`
	Description           string    `db:"description"`
	MediaFileID           *string   `db:"media_file_id"`
	Status                string    `db:"status"`
	AssignedAdminID       *int64    `db:"assigned_admin_id"`
	AssignedAdminUsername *string   `db:"assigned_admin_username"`
	GroupMessageID        *int64    `db:"group_message_id"`
	CreatedAt             time.Time `db:"created_at"`
	UpdatedAt             time.Time `db:"updated_at"`
}

type BugRepository struct {
	db *sqlx.DB
}

func NewBugRepository(db *sqlx.DB) *BugRepository {
	return &BugRepository{
		db: db,
	}
}

func (r *BugRepository) Create(authorID int64, authorUsername, description string, mediaFileID *string) (int64, error) {
	id, err := insertID(r.db, `
	    INSERT INTO bugs (author_id, author_username, description, media_file_id)
		VALUES (?, ?, ?, ?)
	`, authorID, authorUsername, description, mediaFileID)

	if err != nil {
		return 0, fmt.Errorf("BugRepository.Create: %w", err)
	}

	return id, nil
}

func (r *BugRepository) GetByID(bugID int64) (*Bug, error) {
	var bug Bug

	err := r.db.Get(&bug, r.db.Rebind(`
	    SELECT * FROM bugs WHERE id = ?
	`), bugID)

	if err != nil {
		if notFound(err) {
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("BugRepository.GetByID: %w", err)
	}

	return &bug, nil
}

func (r *BugRepository) GetByStatus(status string, authorID *int64) ([]Bug, error) {
	var (
		bugs []Bug
		err  error
	)

	if authorID != nil {
		err = r.db.Select(&bugs, r.db.Rebind(`
		    SELECT * FROM bugs WHERE status = ? AND author_id = ? ORDER BY created_at
		`), status, *authorID)
	} else {
		err = r.db.Select(&bugs, r.db.Rebind(`
		    SELECT * FROM bugs WHERE status = ? ORDER BY created_at
		`), status)
	}

	if err != nil {
		return nil, fmt.Errorf("BugRepository.GetByStatus: %w", err)
	}

	return bugs, nil
}

func (r *BugRepository) UpdateStatus(bugID int64, status string, adminID int64, adminUsername string) error {
	_, err := r.db.Exec(r.db.Rebind(`
	    UPDATE bugs
		SET status = ?, assigned_admin_id = ?, assigned_admin_username = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`), status, adminID, adminUsername, bugID)

	if err != nil {
		return fmt.Errorf("BugRepository.UpdateStatus: %w", err)
	}

	return nil
}

// SetGroupMessageID запоминает сообщение в группе, чтобы при смене статуса
// править его на месте.
func (r *BugRepository) SetGroupMessageID(bugID int64, messageID int64) error {
	_, err := r.db.Exec(r.db.Rebind(`
	    UPDATE bugs SET group_message_id = ? WHERE id = ?
	`), messageID, bugID)

	if err != nil {
		return fmt.Errorf("BugRepository.SetGroupMessageID: %w", err)
	}

	return nil
}

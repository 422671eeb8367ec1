package db

import (
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

type Task struct {
	ID                    int64     `db:"id"`
	AuthorID              int64     `db:"author_id"`
	AuthorUsername        string    `db:"author_username"`
	Description           string    `db:"description"`
	MediaFileID           *string   `db:"media_file_id"`
	Status                string    `db:"status"`
	AssignedAdminID       *int64    `db:"assigned_admin_id"`
	AssignedAdminUsername *string   `db:"assigned_admin_username"`
	CreatedAt             time.Time `db:"created_at"`
	UpdatedAt             time.Time `db:"updated_at"`
}

type TaskRepository struct {
	db *sqlx.DB
}

func NewTaskRepository(db *sqlx.DB) *TaskRepository {
	return &TaskRepository{
		db: db,
	}
}

func (r *TaskRepository) Create(authorID int64, authorUsername, description string, mediaFileID *string) (int64, error) {
	id, err := insertID(r.db, `
	    INSERT INTO tasks (author_id, author_username, description, media_file_id)
		VALUES (?, ?, ?, ?)
	`, authorID, authorUsername, description, mediaFileID)

	if err != nil {
		return 0, fmt.Errorf("TaskRepository.Create: %w", err)
	}

	return id, nil
}

func (r *TaskRepository) GetByID(taskID int64) (*Task, error) {
	var task Task

	err := r.db.Get(&task, r.db.Rebind(`
	    SELECT * FROM tasks WHERE id = ?
	`), taskID)

	if err != nil {
		if notFound(err) {
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("TaskRepository.GetByID: %w", err)
	}

	return &task, nil
}

// GetByStatus отдает задачи со статусом status; при authorID != nil только
// задачи этого автора.
func (r *TaskRepository) GetByStatus(status string, authorID *int64) ([]Task, error) {
	var (
		tasks []Task
		err   error
	)

	if authorID != nil {
		err = r.db.Select(&tasks, r.db.Rebind(`
		    SELECT * FROM tasks WHERE status = ? AND author_id = ? ORDER BY created_at
		`), status, *authorID)
	} else {
		err = r.db.Select(&tasks, r.db.Rebind(`
		    SELECT * FROM tasks WHERE status = ? ORDER BY created_at
		`), status)
	}

	if err != nil {
		return nil, fmt.Errorf("TaskRepository.GetByStatus: %w", err)
	}

	return tasks, nil
}

func (r *TaskRepository) UpdateStatus(taskID int64, status string, adminID int64, adminUsername string) error {
	_, err := r.db.Exec(r.db.Rebind(`
	    UPDATE tasks
		SET status = ?, assigned_admin_id = ?, assigned_admin_username = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`), status, adminID, adminUsername, taskID)

	if err != nil {
		return fmt.Errorf("TaskRepository.UpdateStatus: %w", err)
	}

	return nil
}

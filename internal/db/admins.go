package db

import (
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

type Admin struct {
	UserID   int64     `db:"user_id"`
	Username string    `db:"username"`
	AddedAt  time.Time `db:"added_at"`
}

// AdminInvite — админ, добавленный по @username до того, как его реальный
// user_id стал известен боту. Превращается в строку admins при первом
// сообщении от этого username.
type AdminInvite struct {
	Username  string    `db:"username"`
	InvitedBy int64     `db:"invited_by"`
	CreatedAt time.Time `db:"created_at"`
}

type AdminRepository struct {
	db *sqlx.DB
}

func NewAdminRepository(db *sqlx.DB) *AdminRepository {
	return &AdminRepository{
		db: db,
	}
}

func (r *AdminRepository) Upsert(userID int64, username string) error {
	_, err := r.db.Exec(r.db.Rebind(`
	    INSERT INTO admins (user_id, username) VALUES (?, ?)
		ON CONFLICT (user_id) DO UPDATE SET username = excluded.username
	`), userID, username)

	if err != nil {
		return fmt.Errorf("AdminRepository.Upsert: %w", err)
	}

	return nil
}

func (r *AdminRepository) IsAdmin(userID int64) (bool, error) {
	var exists bool

	err := r.db.Get(&exists, r.db.Rebind(`
	    SELECT EXISTS (SELECT 1 FROM admins WHERE user_id = ?)
	`), userID)

	if err != nil {
		return false, fmt.Errorf("AdminRepository.IsAdmin: %w", err)
	}

	return exists, nil
}

func (r *AdminRepository) GetAll() ([]Admin, error) {
	var admins []Admin

	err := r.db.Select(&admins, `
	    SELECT * FROM admins ORDER BY added_at
	`)

	if err != nil {
		return nil, fmt.Errorf("AdminRepository.GetAll: %w", err)
	}

	return admins, nil
}

func (r *AdminRepository) CreateInvite(username string, invitedBy int64) error {
	_, err := r.db.Exec(r.db.Rebind(`
	    INSERT INTO admin_invites (username, invited_by) VALUES (?, ?)
		ON CONFLICT (username) DO NOTHING
	`), username, invitedBy)

	if err != nil {
		return fmt.Errorf("AdminRepository.CreateInvite: %w", err)
	}

	return nil
}

func (r *AdminRepository) GetInviteByUsername(username string) (*AdminInvite, error) {
	var invite AdminInvite

	err := r.db.Get(&invite, r.db.Rebind(`
	    SELECT * FROM admin_invites WHERE username = ?
	`), username)

	if err != nil {
		if notFound(err) {
			return nil, nil
		}

		return nil, fmt.Errorf("AdminRepository.GetInviteByUsername: %w", err)
	}

	return &invite, nil
}

func (r *AdminRepository) DeleteInvite(username string) error {
	_, err := r.db.Exec(r.db.Rebind(`
	    DELETE FROM admin_invites WHERE username = ?
	`), username)

	if err != nil {
		return fmt.Errorf("AdminRepository.DeleteInvite: %w", err)
	}

	return nil
}

func (r *AdminRepository) GetAllInvites() ([]AdminInvite, error) {
	var invites []AdminInvite

	err := r.db.Select(&invites, `
	    SELECT * FROM admin_invites ORDER BY created_at
	`)

	if err != nil {
		return nil, fmt.Errorf("AdminRepository.GetAllInvites: %w", err)
	}

	return invites, nil
}

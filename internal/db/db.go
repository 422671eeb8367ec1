package db

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"github.com/kultdan/grief_team_bot/internal/config"
)

// ErrNotFound возвращается репозиториями, когда записи с таким id нет.
var ErrNotFound = errors.New("record not found")

const (
	StatusPending    = "pending"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
	StatusRejected   = "rejected"
	StatusApproved   = "approved"
)

type DB struct {
	Conn *sqlx.DB
}

func New(cfg *config.Config) (*DB, error) {
	var dsn string

	switch cfg.DBDriver {
	case "postgres":
		dsn = fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
			cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName)
	case "sqlite3":
		dsn = cfg.SQLitePath
	default:
		return nil, fmt.Errorf("db.New: unsupported driver %q", cfg.DBDriver)
	}

	dbConn, err := sqlx.Connect(cfg.DBDriver, dsn)
	if err != nil {
		return nil, fmt.Errorf("db.New: cannot connect to database: %w", err)
	}

	if cfg.DBDriver == "postgres" {
		dbConn.SetMaxOpenConns(20)
		dbConn.SetMaxIdleConns(5)
		dbConn.SetConnMaxLifetime(60 * time.Minute)
	}

	return &DB{Conn: dbConn}, nil
}

func (db *DB) Close() error {
	return db.Conn.Close()
}

func RunMigrations(conn *sqlx.DB, scripts ...string) error {
	for _, path := range scripts {
		raw, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("db.RunMigrations: cannot read %s: %w", path, err)
		}

		if _, err := conn.Exec(string(raw)); err != nil {
			return fmt.Errorf("db.RunMigrations: cannot apply %s: %w", path, err)
		}
	}

	return nil
}

// insertID выполняет INSERT и возвращает id новой строки. У postgres нет
// LastInsertId, поэтому туда уходит запрос с RETURNING id.
func insertID(conn *sqlx.DB, query string, args ...interface{}) (int64, error) {
	if conn.DriverName() == "postgres" {
		var id int64
		err := conn.Get(&id, conn.Rebind(query+" RETURNING id"), args...)
		return id, err
	}

	res, err := conn.Exec(conn.Rebind(query), args...)
	if err != nil {
		return 0, err
	}

	return res.LastInsertId()
}

func notFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

package config

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	BotToken     string
	SuperAdminID int64
	GroupChatID  int64
	BugsTopicID  int
	AppsTopicID  int

	DBDriver   string
	DBUser     string
	DBPassword string
	DBName     string
	DBHost     string
	DBPort     string
	SQLitePath string

	MediaDir string
}

func Load() (*Config, error) {
	err := godotenv.Load()
	if err != nil {
		log.Printf("config.Load: no .env file found - using env variables")
	}

	cfg := &Config{
		BotToken:   os.Getenv("BOT_TOKEN"),
		DBDriver:   os.Getenv("DB_DRIVER"),
		DBUser:     os.Getenv("DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     os.Getenv("DB_NAME"),
		DBHost:     os.Getenv("DB_HOST"),
		DBPort:     os.Getenv("DB_PORT"),
		SQLitePath: os.Getenv("SQLITE_PATH"),
		MediaDir:   os.Getenv("MEDIA_DIR"),
	}

	if cfg.BotToken == "" {
		return nil, fmt.Errorf("config.Load: BOT_TOKEN is required")
	}

	cfg.SuperAdminID, err = strconv.ParseInt(os.Getenv("SUPER_ADMIN_ID"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("config.Load: SUPER_ADMIN_ID is required: %w", err)
	}

	cfg.GroupChatID, err = strconv.ParseInt(os.Getenv("GROUP_CHAT_ID"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("config.Load: GROUP_CHAT_ID is required: %w", err)
	}

	if v := os.Getenv("TOPIC_THREAD_ID_BUGS"); v != "" {
		cfg.BugsTopicID, err = strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("config.Load: bad TOPIC_THREAD_ID_BUGS: %w", err)
		}
	}

	if v := os.Getenv("TOPIC_THREAD_ID_APPS"); v != "" {
		cfg.AppsTopicID, err = strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("config.Load: bad TOPIC_THREAD_ID_APPS: %w", err)
		}
	}

	if cfg.DBDriver == "" {
		cfg.DBDriver = "postgres"
	}

	switch cfg.DBDriver {
	case "postgres":
		if cfg.DBUser == "" || cfg.DBPassword == "" || cfg.DBName == "" {
			return nil, fmt.Errorf("config.Load: DB_USER, DB_PASSWORD, DB_NAME are required")
		}

		if cfg.DBHost == "" {
			cfg.DBHost = "localhost"
		}

		if cfg.DBPort == "" {
			cfg.DBPort = "5432"
		}
	case "sqlite3":
		if cfg.SQLitePath == "" {
			cfg.SQLitePath = "tasks.db"
		}
	default:
		return nil, fmt.Errorf("config.Load: unsupported DB_DRIVER %q", cfg.DBDriver)
	}

	return cfg, nil
}

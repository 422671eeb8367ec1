package main

import (
	"log"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/kultdan/grief_team_bot/internal/bot"
	"github.com/kultdan/grief_team_bot/internal/config"
	"github.com/kultdan/grief_team_bot/internal/db"
	"github.com/kultdan/grief_team_bot/internal/files"
	"github.com/kultdan/grief_team_bot/internal/session"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	database, err := db.New(cfg)
	if err != nil {
		log.Fatalf("Error connecting to database: %v", err)
	}
	defer database.Close()

	schema := "db_scripts/init.sql"
	if cfg.DBDriver == "sqlite3" {
		schema = "db_scripts/init_sqlite.sql"
	}

	if err := db.RunMigrations(database.Conn, schema); err != nil {
		log.Fatalf("Error running migrations: %v", err)
	}

	botAPI, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		log.Fatalf("Error creating telegram bot: %v", err)
	}

	taskRepo := db.NewTaskRepository(database.Conn)
	bugRepo := db.NewBugRepository(database.Conn)
	appRepo := db.NewApplicationRepository(database.Conn)
	adminRepo := db.NewAdminRepository(database.Conn)

	var archive *files.MediaArchive
	if cfg.MediaDir != "" {
		archive, err = files.NewMediaArchive(botAPI, cfg.MediaDir)
		if err != nil {
			log.Fatalf("Error creating media archive: %v", err)
		}
	}

	service := bot.New(
		botAPI,
		taskRepo,
		bugRepo,
		appRepo,
		adminRepo,
		session.NewRegistry(),
		archive,
		cfg,
	)

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	log.Printf("Bot started as @%s", botAPI.Self.UserName)

	service.Run(botAPI.GetUpdatesChan(u))
}

package app

import (
	"database/sql"
	"fmt"
	"log"

	"taskbot/internal/authz"
	"taskbot/internal/bot"
	"taskbot/internal/config"
	"taskbot/internal/handlers"
	"taskbot/internal/pdf"
	"taskbot/internal/repositories"
	"taskbot/internal/routes"
	"taskbot/internal/services"

	"github.com/gin-gonic/gin"
	_ "github.com/lib/pq"
)

func Run() {
	cfg := config.LoadConfig()

	// === Storage ===
	var backend repositories.Backend
	switch cfg.Storage.Driver {
	case "postgres":
		db, err := sql.Open("postgres", cfg.Storage.DSN)
		if err != nil {
			log.Fatal("failed to open database: ", err)
		}
		backend, err = repositories.NewPostgresBackend(db)
		if err != nil {
			log.Fatal("failed to init postgres backend: ", err)
		}
	default:
		backend = repositories.NewDiskBackend(cfg.Storage.Path)
	}

	// === Repos ===
	taskRepo := repositories.NewTaskRepository(backend)
	spaceRepo := repositories.NewSpaceRepository(backend)
	checklistRepo := repositories.NewChecklistRepository(backend)
	boardRepo := repositories.NewBoardRepository(backend)
	sessionRepo := repositories.NewSessionRepository(backend)
	settingsRepo := repositories.NewSettingsRepository(backend)

	// === Services ===
	lineService := services.NewLineService(cfg.Line.ChannelToken)
	taskService := services.NewTaskService(taskRepo)
	spaceService := services.NewSpaceService(spaceRepo)
	checklistService := services.NewChecklistService(checklistRepo)
	boardService := services.NewBoardService(boardRepo)

	digestGen := pdf.NewDigestGenerator(cfg.Export.Dir)
	exportService := services.NewExportService(
		cfg.Export.Secret,
		cfg.Export.BaseURL,
		digestGen,
		taskService,
		boardService,
		spaceService,
	)

	admins := authz.NewAdmins(cfg.Admins)

	// === Router + Handlers ===
	router := bot.NewRouter(
		lineService,
		taskService,
		checklistService,
		boardService,
		spaceService,
		exportService,
		sessionRepo,
		settingsRepo,
		admins,
	)
	webhookHandler := handlers.NewWebhookHandler(router)
	exportHandler := handlers.NewExportHandler(exportService)

	// === Gin ===
	engine := gin.Default()
	engine.Use(gin.Logger())
	engine.Use(gin.Recovery())

	routes.SetupRoutes(engine, webhookHandler, exportHandler, cfg.Line.ChannelSecret)

	// === Run ===
	listenAddr := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Printf("server listening on %s", listenAddr)
	if err := engine.Run(listenAddr); err != nil {
		log.Fatal("failed to start server: ", err)
	}
}

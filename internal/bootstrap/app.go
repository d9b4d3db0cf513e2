package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"

	"github.com/gin-gonic/gin"

	"aidocs-backend/internal/ai"
	"aidocs-backend/internal/documents"
	"aidocs-backend/internal/llm"
	openai "aidocs-backend/internal/llm/openai"
	"aidocs-backend/internal/search"
	"aidocs-backend/internal/shared/config"
	"aidocs-backend/internal/shared/metrics"
	"aidocs-backend/internal/shared/server"
	"aidocs-backend/internal/shared/storage/db"
	"aidocs-backend/internal/shared/storage/object"
	localstore "aidocs-backend/internal/shared/storage/object/local"
	"aidocs-backend/internal/users"
)

// App holds shared dependencies.
type App struct {
	Config  config.Config
	Router  *gin.Engine
	DB      *sql.DB
	Store   object.Store
	Metrics *metrics.Metrics

	UsersRepo     users.Repo
	DocumentsRepo documents.Repo

	UsersService     *users.Service
	DocumentsService *documents.Service
	AIService        *ai.Service
	SearchService    *search.Service

	UsersHandler     *users.Handler
	DocumentsHandler *documents.Handler
	AIHandler        *ai.Handler
	SearchHandler    *search.Handler
}

// Build prepares shared dependencies and the router. In dev-like environments
// a missing or unreachable database downgrades to in-memory repositories; in
// production it is fatal.
func Build(cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	ctx := context.Background()

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	app := &App{
		Config:  cfg,
		DB:      sqlDB,
		Store:   localstore.New(cfg.LocalStoreDir),
		Metrics: metrics.New(),
	}

	if err := buildServices(app); err != nil {
		return nil, err
	}

	app.Router = server.NewRouter(server.RouterDeps{
		Config:          app.Config,
		Metrics:         app.Metrics,
		UsersHandler:    app.UsersHandler,
		DocumentHandler: app.DocumentsHandler,
		AIHandler:       app.AIHandler,
		SearchHandler:   app.SearchHandler,
	})

	return app, nil
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: DATABASE_URL empty; using in-memory repositories")
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	opts := db.OptionsFromEnv(db.DefaultServerOptions())
	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, opts)
	if err != nil {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: database connect failed; using in-memory repositories: %v", err)
			return nil, nil
		}
		return nil, err
	}

	if err := db.RunMigrations(ctx, sqlDB); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return sqlDB, nil
}

func buildServices(app *App) error {
	var userRepo users.Repo
	var docRepo documents.Repo

	if app.DB != nil {
		userRepo = &users.PGRepo{DB: app.DB}
		docRepo = &documents.PGRepo{DB: app.DB}
	} else {
		userRepo = users.NewMemoryRepo()
		docRepo = documents.NewMemoryRepo()
	}

	llmClient := llm.Client(llm.DisabledClient{})
	if strings.TrimSpace(app.Config.OpenAIAPIKey) != "" {
		openaiClient, err := openai.NewClient(app.Config.OpenAIAPIKey, app.Config.LLMModel)
		if err != nil {
			return err
		}
		llmClient = openaiClient
	} else {
		log.Printf("bootstrap: OPENAI_API_KEY empty; AI endpoints will report unavailable")
	}
	llmClient = llm.NewResilientClient(llmClient)

	userSvc := users.NewService(userRepo)
	docSvc := documents.NewService(docRepo, app.Store, app.Metrics)
	aiSvc := ai.NewService(docRepo, llmClient, app.Metrics)
	searchSvc := search.NewService(docRepo, llmClient, app.Metrics)

	app.UsersRepo = userRepo
	app.DocumentsRepo = docRepo
	app.UsersService = userSvc
	app.DocumentsService = docSvc
	app.AIService = aiSvc
	app.SearchService = searchSvc
	app.UsersHandler = users.NewHandler(userSvc)
	app.DocumentsHandler = documents.NewHandler(docSvc)
	app.AIHandler = ai.NewHandler(aiSvc)
	app.SearchHandler = search.NewHandler(searchSvc)

	return nil
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}

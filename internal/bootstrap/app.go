package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/gin-gonic/gin"

	"interview-backend/internal/account"
	googleauth "interview-backend/internal/auth"
	"interview-backend/internal/documents"
	"interview-backend/internal/interviews"
	"interview-backend/internal/llm"
	"interview-backend/internal/llm/gemini"
	"interview-backend/internal/llm/groq"
	"interview-backend/internal/queue"
	"interview-backend/internal/reports"
	"interview-backend/internal/services/health"
	"interview-backend/internal/shared/config"
	"interview-backend/internal/shared/server"
	"interview-backend/internal/shared/storage/db"
	"interview-backend/internal/shared/storage/object"
	localstore "interview-backend/internal/shared/storage/object/local"
	s3store "interview-backend/internal/shared/storage/object/s3"
	"interview-backend/internal/speech"
	"interview-backend/internal/usage"
	"interview-backend/internal/users"
)

// App holds the wired dependencies for one process. The API server,
// the queue worker and the Lambda entrypoints all build the same App.
type App struct {
	Config config.Config
	Router *gin.Engine
	DB     *sql.DB
	Store  object.ObjectStore
	Queue  queue.Client

	DocumentsRepo documents.DocumentsRepo
	InterviewRepo interviews.Repo
	ReportRepo    reports.Repo
	UsersRepo     users.Repo

	UsageService     *usage.Service
	DocumentsService *documents.Service
	InterviewService *interviews.Service
	ReportService    *reports.Service
	AccountService   *account.Service
	UsersService     *users.Service
	HealthService    *health.Service
	GoogleAuth       *googleauth.GoogleService

	InterviewProcessor InterviewProcessor

	DocumentsHandler *documents.Handler
	InterviewHandler *interviews.Handler
	ReportHandler    *reports.Handler
	AccountHandler   *account.Handler
	UsageHandler     *usage.Handler
	UsersHandler     *users.Handler
}

// InterviewProcessor lets workers substitute pipeline processing.
type InterviewProcessor interface {
	ProcessInterview(ctx context.Context, sessionID string) error
}

// Build prepares shared dependencies and the router.
func Build(cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if strings.TrimSpace(cfg.ObjectStoreType) == "" {
		cfg.ObjectStoreType = "local"
	}
	ctx := context.Background()

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	store, err := buildStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	queueClient, err := buildQueue(ctx, cfg)
	if err != nil {
		return nil, err
	}

	app := &App{
		Config: cfg,
		DB:     sqlDB,
		Store:  store,
		Queue:  queueClient,
	}

	if err := buildServices(ctx, app); err != nil {
		return nil, err
	}

	app.Router = server.NewRouter(server.RouterDeps{
		Config:           app.Config,
		Health:           app.HealthService,
		GoogleAuth:       app.GoogleAuth,
		AccountHandler:   app.AccountHandler,
		DocumentHandler:  app.DocumentsHandler,
		InterviewHandler: app.InterviewHandler,
		ReportHandler:    app.ReportHandler,
		UsageHandler:     app.UsageHandler,
		UserHandler:      app.UsersHandler,
		UploadsEnabled:   strings.TrimSpace(os.Getenv("UPLOADS_S3_BUCKET")) != "",
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

	var (
		sqlDB *sql.DB
		err   error
	)
	if db.IsLambdaRuntime() {
		opts := db.OptionsFromEnv(db.DefaultLambdaOptions())
		sqlDB, err = db.GetSingleton(ctx, cfg.DatabaseURL, opts)
	} else {
		opts := db.OptionsFromEnv(db.DefaultServerOptions())
		sqlDB, err = db.Connect(ctx, cfg.DatabaseURL, opts)
	}
	if err != nil {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: database connect failed; using in-memory repositories: %v", err)
			return nil, nil
		}
		return nil, err
	}

	if !db.IsLambdaRuntime() {
		if err := db.RunMigrations(ctx, sqlDB); err != nil {
			if isDevLike(cfg.Env) {
				log.Printf("bootstrap: migrations failed; using in-memory repositories: %v", err)
				return nil, nil
			}
			return nil, err
		}
	}

	return sqlDB, nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
	default:
		return localstore.New(cfg.LocalStoreDir), nil
	}
}

func buildQueue(ctx context.Context, cfg config.Config) (queue.Client, error) {
	if strings.TrimSpace(cfg.QueueURL) == "" {
		return nil, nil
	}
	return queue.NewSQSClient(ctx, cfg.QueueURL, cfg.AWSRegion)
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}

// buildGateway assembles the provider cascade. Groq gets one client
// per API key so the gateway can rotate credentials on throttle.
func buildGateway(ctx context.Context, cfg config.Config) (*llm.Gateway, error) {
	policy := llm.DefaultPolicy()
	policy.Models = cfg.Models()
	if cfg.LLMMaxAttempts > 0 {
		policy.MaxAttempts = cfg.LLMMaxAttempts
	}
	if cfg.LLMRetryBaseDelay > 0 {
		policy.BaseDelay = cfg.LLMRetryBaseDelay
	}
	if cfg.LLMRetryMaxDelay > 0 {
		policy.MaxDelay = cfg.LLMRetryMaxDelay
	}
	if cfg.LLMMaxTokens > 0 {
		policy.MaxTokens = cfg.LLMMaxTokens
	}

	var clients []llm.Client
	switch cfg.LLMProvider {
	case "gemini":
		if strings.TrimSpace(cfg.GeminiAPIKey) != "" {
			client, err := gemini.NewClient(ctx, cfg.GeminiAPIKey)
			if err != nil {
				return nil, err
			}
			clients = append(clients, client)
		}
	default:
		for _, key := range cfg.GroqAPIKeys {
			client, err := groq.NewClient(key, cfg.GroqBaseURL)
			if err != nil {
				return nil, err
			}
			clients = append(clients, client)
		}
	}

	if len(clients) == 0 {
		if !isDevLike(cfg.Env) {
			return nil, fmt.Errorf("llm provider %q has no credentials", cfg.LLMProvider)
		}
		log.Printf("bootstrap: no %s credentials; llm calls will fail until configured", cfg.LLMProvider)
		clients = []llm.Client{llm.PlaceholderClient{}}
	}

	return llm.New(clients, policy)
}

// buildSpeech wires speech-to-text and text-to-speech. Speech rides on
// Groq credentials regardless of the text provider.
func buildSpeech(cfg config.Config) (interviews.Transcriber, interviews.Synthesizer) {
	if !cfg.SpeechEnabled {
		return nil, speech.Disabled{}
	}
	if len(cfg.GroqAPIKeys) == 0 {
		log.Printf("bootstrap: SPEECH_ENABLED without GROQ_API_KEYS; speech stays disabled")
		return nil, speech.Disabled{}
	}

	key := cfg.GroqAPIKeys[0]
	stt, err := speech.NewGroqTranscriber(key, cfg.GroqBaseURL, cfg.STTModel)
	if err != nil {
		log.Printf("bootstrap: transcriber init failed; speech stays disabled: %v", err)
		return nil, speech.Disabled{}
	}
	tts, err := speech.NewGroqSynthesizer(key, cfg.GroqBaseURL, cfg.TTSModel, cfg.TTSVoice)
	if err != nil {
		log.Printf("bootstrap: synthesizer init failed; replies stay text-only: %v", err)
		return stt, speech.Disabled{}
	}
	return stt, tts
}

func buildServices(ctx context.Context, app *App) error {
	cfg := app.Config

	var docRepo documents.DocumentsRepo
	var userRepo users.Repo
	var reportRepo reports.Repo
	if app.DB != nil {
		docRepo = &documents.PGRepo{DB: app.DB}
		userRepo = &users.PGRepo{DB: app.DB}
		reportRepo = &reports.PGRepo{DB: app.DB}
	} else {
		docRepo = documents.NewMemoryRepo()
		userRepo = users.NewMemoryRepo()
		reportRepo = reports.NewMemoryRepo()
	}

	interviewRepo, err := buildInterviewRepo(cfg, app.DB)
	if err != nil {
		return err
	}

	var usageSvc *usage.Service
	if app.DB != nil {
		usageSvc = usage.NewPostgresService(usage.NewPGStore(app.DB, cfg.FreeInterviewLimit))
	} else {
		usageSvc = usage.NewService(cfg.FreeInterviewLimit)
	}

	gateway, err := buildGateway(ctx, cfg)
	if err != nil {
		return err
	}
	stt, synth := buildSpeech(cfg)

	docSvc := &documents.Service{Store: app.Store, Repo: docRepo}

	interviewSvc := &interviews.Service{
		Repo:    interviewRepo,
		Gateway: gateway,
		Usage:   usageSvc,
		DocRepo: docRepo,
		Store:   app.Store,
		Queue:   app.Queue,
		Synth:   synth,
		Timeout: cfg.InterviewTimeout,
	}

	reportSvc := &reports.Service{Repo: reportRepo, Source: interviewSvc, Store: app.Store}

	userSvc := users.NewService(userRepo)
	accountSvc := account.NewService(docRepo, interviewRepo, reportRepo, usageSvc)
	googleAuthSvc := googleauth.NewGoogleService(
		cfg.GoogleClientID,
		cfg.GoogleClientSecret,
		cfg.GoogleRedirectURL,
		cfg.UIRedirectURL,
		userSvc,
	)

	app.DocumentsRepo = docRepo
	app.InterviewRepo = interviewRepo
	app.ReportRepo = reportRepo
	app.UsersRepo = userRepo
	app.UsageService = usageSvc
	app.DocumentsService = docSvc
	app.InterviewService = interviewSvc
	app.ReportService = reportSvc
	app.AccountService = accountSvc
	app.UsersService = userSvc
	app.HealthService = health.NewService(app.DB, app.Store, app.Queue, cfg.ObjectStoreType)
	app.GoogleAuth = googleAuthSvc
	app.InterviewProcessor = interviewSvc

	app.DocumentsHandler = documents.NewHandler(docSvc)
	app.InterviewHandler = interviews.NewHandler(interviewSvc, stt)
	app.ReportHandler = reports.NewHandler(reportSvc, reportRepo, app.Store)
	app.AccountHandler = account.NewHandler(accountSvc)
	app.UsageHandler = usage.NewHandler(usageSvc)
	app.UsersHandler = users.NewHandler(userSvc)

	return nil
}

// buildInterviewRepo honors SESSION_STORE. The file store survives
// restarts without a database; postgres needs a connection and falls
// back to memory in dev when none is available.
func buildInterviewRepo(cfg config.Config, sqlDB *sql.DB) (interviews.Repo, error) {
	switch cfg.SessionStore {
	case "postgres":
		if sqlDB == nil {
			if isDevLike(cfg.Env) {
				log.Printf("bootstrap: SESSION_STORE=postgres without database; using memory sessions")
				return interviews.NewMemoryRepo(), nil
			}
			return nil, fmt.Errorf("SESSION_STORE=postgres requires DATABASE_URL")
		}
		return &interviews.PGRepo{DB: sqlDB}, nil
	case "file":
		repo, err := interviews.NewFileRepo(cfg.SessionDir)
		if err != nil {
			return nil, fmt.Errorf("session file store: %w", err)
		}
		return repo, nil
	default:
		return interviews.NewMemoryRepo(), nil
	}
}

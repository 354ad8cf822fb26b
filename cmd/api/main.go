package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bryanwahyu/docmind/internal/application"
	"github.com/bryanwahyu/docmind/internal/application/analysis"
	appdocs "github.com/bryanwahyu/docmind/internal/application/documents"
	"github.com/bryanwahyu/docmind/internal/application/magic"
	"github.com/bryanwahyu/docmind/internal/config"
	"github.com/bryanwahyu/docmind/internal/domain/documents"
	"github.com/bryanwahyu/docmind/internal/domain/results"
	"github.com/bryanwahyu/docmind/internal/infra/ai/openai"
	"github.com/bryanwahyu/docmind/internal/infra/ai/prompt"
	"github.com/bryanwahyu/docmind/internal/infra/budget"
	"github.com/bryanwahyu/docmind/internal/infra/db/memory"
	mysqlp "github.com/bryanwahyu/docmind/internal/infra/db/mysql"
	"github.com/bryanwahyu/docmind/internal/infra/db/postgres"
	"github.com/bryanwahyu/docmind/internal/infra/db/sqlite"
	"github.com/bryanwahyu/docmind/internal/infra/extract"
	"github.com/bryanwahyu/docmind/internal/infra/httpserver"
	"github.com/bryanwahyu/docmind/internal/infra/storage"
	"github.com/bryanwahyu/docmind/internal/middleware"
	"github.com/bryanwahyu/docmind/internal/pkg/logger"
)

func main() {
	cfg, err := config.Load(config.Path())
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load error: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Log.Mode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger init error: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx := context.Background()

	db, docRepo, resultRepo, err := openRepositories(ctx, cfg)
	if err != nil {
		log.Fatal("database init failed", "driver", cfg.Database.Driver, "error", err)
	}
	if db != nil {
		defer db.Close()
	}

	store, err := openStore(ctx, cfg)
	if err != nil {
		log.Fatal("storage init failed", "driver", cfg.Storage.Driver, "error", err)
	}

	registry, err := prompt.LoadRegistry(cfg.Prompts.RegistryPath)
	if err != nil {
		log.Fatal("prompt registry load failed", "path", cfg.Prompts.RegistryPath, "error", err)
	}
	master := prompt.NewMasterPrompt(cfg.Prompts.MasterPath)
	if _, err := master.Load(); err != nil {
		// the asset is re-read per call, so it can be added later
		log.Warn("master prompt not available yet", "path", cfg.Prompts.MasterPath, "error", err)
	}

	if os.Getenv(openai.EnvAPIKey) == "" {
		log.Warn("llm credential not set; analysis requests will fail until it is", "env", openai.EnvAPIKey)
	}
	llm := openai.NewClient(cfg.LLM.BaseURL, cfg.LLM.Timeout)
	extractor := extract.New()
	clock := application.SystemClock{}

	docsSvc := &appdocs.Service{
		Docs:    docRepo,
		Results: resultRepo,
		Store:   store,
		Formats: extractor,
		Clock:   clock,
		Log:     log,
	}
	analysisSvc := &analysis.Service{
		Docs:      docRepo,
		Results:   resultRepo,
		Store:     store,
		Extractor: extractor,
		Prompts:   registry,
		LLM:       llm,
		Clock:     clock,
		Log:       log,
	}
	magicSvc := &magic.Service{
		Docs:           docRepo,
		Results:        resultRepo,
		Store:          store,
		Extractor:      extractor,
		Master:         master,
		LLM:            llm,
		DocumentBudget: budget.Document(cfg.Budget.DocumentChars),
		ResultBudget:   budget.Result(cfg.Budget.ResultChars),
		Log:            log,
	}

	checkers := map[string]middleware.HealthChecker{
		"master_prompt": &middleware.MasterPromptChecker{Source: master},
	}
	if db != nil {
		checkers["database"] = &middleware.DatabaseHealthChecker{DB: db}
	}

	handler := httpserver.NewRouter(docsSvc, analysisSvc, magicSvc, log, httpserver.Options{
		RateEvery:      cfg.Limits.RateEvery,
		RateBurst:      cfg.Limits.RateBurst,
		MaxConcurrent:  cfg.Limits.MaxConcurrent,
		MaxUploadBytes: cfg.Limits.MaxUploadBytes,
		HealthCheckers: checkers,
	})

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:        addr,
		Handler:     handler,
		ReadTimeout: 30 * time.Second,
		// model calls can take as long as the llm timeout
		WriteTimeout: cfg.LLM.Timeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("server listening", "addr", addr, "database", cfg.Database.Driver, "storage", cfg.Storage.Driver,
			"analysis_types", registry.Types())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("server error", "error", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	log.Info("shutting down server")

	ctx2, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx2); err != nil {
		log.Error("shutdown error", "error", err)
	}
}

func openRepositories(ctx context.Context, cfg *config.Config) (*sql.DB, documents.Repository, results.Repository, error) {
	var (
		db  *sql.DB
		err error
	)
	switch cfg.Database.Driver {
	case "memory":
		mem := memory.New()
		return nil, mem.Documents(), mem.Results(), nil
	case "mysql":
		if db, err = mysqlp.Connect(ctx, cfg.MySQLDSN()); err != nil {
			return nil, nil, nil, err
		}
		if err = mysqlp.Migrate(ctx, db); err != nil {
			break
		}
		return db, mysqlp.NewDocumentRepository(db), mysqlp.NewResultRepository(db), nil
	case "postgres":
		if db, err = postgres.Connect(ctx, cfg.PostgresDSN()); err != nil {
			return nil, nil, nil, err
		}
		if err = postgres.Migrate(ctx, db); err != nil {
			break
		}
		return db, postgres.NewDocumentRepository(db), postgres.NewResultRepository(db), nil
	default:
		if db, err = sqlite.Connect(ctx, cfg.SQLitePath()); err != nil {
			return nil, nil, nil, err
		}
		if err = sqlite.Migrate(ctx, db); err != nil {
			break
		}
		return db, sqlite.NewDocumentRepository(db), sqlite.NewResultRepository(db), nil
	}
	db.Close()
	return nil, nil, nil, fmt.Errorf("migrate: %w", err)
}

func openStore(ctx context.Context, cfg *config.Config) (documents.ByteStore, error) {
	if cfg.Storage.Driver == "minio" {
		return storage.NewMinio(ctx,
			cfg.Minio.Endpoint,
			cfg.Minio.Region,
			cfg.Minio.BucketName,
			cfg.Minio.AccessKey,
			cfg.Minio.SecretKey,
			cfg.Minio.UseSSL,
		)
	}
	return storage.NewLocal(cfg.Storage.Dir)
}

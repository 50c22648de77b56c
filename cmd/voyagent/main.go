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

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/xxxsen/common/logger"
	"github.com/xxxsen/common/logutil"
	"github.com/xxxsen/common/webapi"
	"go.uber.org/zap"

	"github.com/voyagent/voyagent/internal/ai"
	"github.com/voyagent/voyagent/internal/config"
	"github.com/voyagent/voyagent/internal/db"
	"github.com/voyagent/voyagent/internal/filestore"
	"github.com/voyagent/voyagent/internal/handler"
	"github.com/voyagent/voyagent/internal/job"
	"github.com/voyagent/voyagent/internal/middleware"
	"github.com/voyagent/voyagent/internal/repo"
	"github.com/voyagent/voyagent/internal/schedule"
	"github.com/voyagent/voyagent/internal/service"
)

func main() {
	var configPath string
	var seedFile string
	var seedEmbed bool

	rootCmd := &cobra.Command{
		Use:   "voyagent",
		Short: "voyagent travel assistant backend",
	}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run the voyagent server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, conn, err := setup(configPath)
			if err != nil {
				return err
			}
			return runServer(cfg, conn)
		},
	}
	runCmd.Flags().StringVar(&configPath, "config", "", "path to config.json")

	seedCmd := &cobra.Command{
		Use:   "seed",
		Short: "import destination guides from a markdown file",
		RunE: func(cmd *cobra.Command, args []string) error {
			if seedFile == "" {
				return fmt.Errorf("--file is required")
			}
			cfg, conn, err := setup(configPath)
			if err != nil {
				return err
			}
			defer conn.Close()
			return runSeed(cmd.Context(), cfg, conn, seedFile, seedEmbed)
		},
	}
	seedCmd.Flags().StringVar(&configPath, "config", "", "path to config.json")
	seedCmd.Flags().StringVar(&seedFile, "file", "", "markdown guide file to import")
	seedCmd.Flags().BoolVar(&seedEmbed, "embed", false, "generate embeddings while importing")

	rootCmd.AddCommand(runCmd, seedCmd)

	if err := rootCmd.Execute(); err != nil {
		logutil.GetLogger(context.Background()).Fatal("startup error", zap.Error(err))
	}
}

func setup(configPath string) (*config.Config, *sql.DB, error) {
	if configPath == "" {
		return nil, nil, fmt.Errorf("--config is required")
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}
	logger.Init(
		cfg.LogConfig.File,
		cfg.LogConfig.Level,
		int(cfg.LogConfig.FileCount),
		int(cfg.LogConfig.FileSize),
		int(cfg.LogConfig.KeepDays),
		cfg.LogConfig.Console,
	)
	logutil.GetLogger(context.Background()).Info("config loaded", zap.String("config", configPath))
	if missing := cfg.MissingSecrets(); len(missing) > 0 {
		logutil.GetLogger(context.Background()).Warn("missing environment variables, assistant will refuse requests",
			zap.Strings("missing", missing))
	}

	conn, err := db.Open(cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("open db: %w", err)
	}
	if err := db.ApplyMigrations(conn); err != nil {
		conn.Close()
		return nil, nil, fmt.Errorf("migrations: %w", err)
	}
	return cfg, conn, nil
}

func buildEmbeddingService(cfg *config.Config, docRepo *repo.DocumentRepo) (*service.EmbeddingService, error) {
	embedArgs := cfg.AI.Data
	if embedArgs == nil {
		embedArgs = map[string]interface{}{"api_key": cfg.AI.EmbedAPIKey}
	}
	embedProvider, err := ai.NewEmbedProvider(cfg.AI.EmbedProvider, embedArgs)
	if err != nil {
		return nil, fmt.Errorf("init embed provider: %w", err)
	}
	return service.NewEmbeddingService(embedProvider, cfg.AI, cfg.Chat, docRepo), nil
}

func runServer(cfg *config.Config, conn *sql.DB) error {
	logutil.GetLogger(context.Background()).Info(
		"starting server",
		zap.Int("port", cfg.Port),
		zap.String("chat_provider", cfg.AI.Provider),
		zap.String("embed_provider", cfg.AI.EmbedProvider),
		zap.String("file_store", cfg.FileStore.Type),
	)

	userRepo := repo.NewUserRepo(conn)
	destRepo := repo.NewDestinationRepo(conn)
	docRepo := repo.NewDocumentRepo(conn)
	historyRepo := repo.NewChatHistoryRepo(conn)

	embeddingService, err := buildEmbeddingService(cfg, docRepo)
	if err != nil {
		return err
	}
	chatArgs := cfg.AI.Data
	if chatArgs == nil {
		chatArgs = map[string]interface{}{"api_key": cfg.AI.APIKey}
	}
	chatProvider, err := ai.NewChatProvider(cfg.AI.Provider, chatArgs)
	if err != nil {
		return fmt.Errorf("init chat provider: %w", err)
	}

	retrievalService := service.NewRetrievalService(embeddingService, docRepo, cfg.Chat.SimilarityThreshold)
	chatService := service.NewChatService(chatProvider, historyRepo, retrievalService, cfg.AI, cfg.Chat)
	authService := service.NewAuthService(userRepo, []byte(cfg.JWTSecret), time.Hour*time.Duration(cfg.JWTTTLHours))
	destinationService := service.NewDestinationService(destRepo)
	documentService := service.NewDocumentService(docRepo, embeddingService)

	store, err := filestore.New(cfg.FileStore)
	if err != nil {
		return fmt.Errorf("init file store: %w", err)
	}

	deps := handler.RouterDeps{
		Assistant:    handler.NewAssistantHandler(cfg, chatService, embeddingService),
		Auth:         handler.NewAuthHandler(authService),
		Destinations: handler.NewDestinationHandler(destinationService),
		Documents:    handler.NewDocumentHandler(documentService),
		Files:        handler.NewFileHandler(store),
		JWTSecret:    []byte(cfg.JWTSecret),
		RateLimit:    time.Duration(cfg.RateLimitMS) * time.Millisecond,
	}

	engine, err := webapi.NewEngine(
		"/api/v1",
		fmt.Sprintf("0.0.0.0:%d", cfg.Port),
		webapi.WithRegister(func(group *gin.RouterGroup) {
			handler.RegisterRoutes(group, deps)
		}),
		webapi.WithExtraMiddlewares(
			middleware.RequestID(),
			middleware.CORS(cfg.CORS.AllowOrigins),
			gzip.Gzip(gzip.DefaultCompression),
		),
	)
	if err != nil {
		return fmt.Errorf("init web engine: %w", err)
	}
	logutil.GetLogger(context.Background()).Info("http server listening", zap.String("addr", fmt.Sprintf("0.0.0.0:%d", cfg.Port)))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	scheduler := schedule.NewCronScheduler()
	backfill := job.NewEmbeddingBackfillJob(
		embeddingService,
		docRepo,
		cfg.Schedule.BackfillBatchSize,
		time.Duration(cfg.Chat.BatchEmbedPauseMillis)*time.Millisecond,
	)
	if err := scheduler.AddJob(backfill, cfg.Schedule.EmbeddingBackfillSpec); err != nil {
		return fmt.Errorf("schedule backfill: %w", err)
	}
	scheduler.Start(ctx)
	defer scheduler.Stop()

	go func() {
		if err := engine.Run(); err != nil && err != http.ErrServerClosed {
			logutil.GetLogger(context.Background()).Error("server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logutil.GetLogger(context.Background()).Info("server stopping...")
	return nil
}

func runSeed(ctx context.Context, cfg *config.Config, conn *sql.DB, path string, embed bool) error {
	source, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read seed file: %w", err)
	}
	destRepo := repo.NewDestinationRepo(conn)
	docRepo := repo.NewDocumentRepo(conn)
	var embeddingService *service.EmbeddingService
	if embed {
		embeddingService, err = buildEmbeddingService(cfg, docRepo)
		if err != nil {
			return err
		}
	}
	seedService := service.NewSeedService(destRepo, docRepo, embeddingService)
	report, err := seedService.Import(ctx, source, embed)
	if err != nil {
		return err
	}
	logutil.GetLogger(ctx).Info("seed import finished",
		zap.Int("destinations", report.Destinations),
		zap.Int("documents", report.Documents),
		zap.Int("embedded", report.Embedded),
		zap.Strings("failed", report.Failed),
	)
	return nil
}

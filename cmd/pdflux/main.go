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

	"github.com/xxxsen/pdflux/internal/ai"
	"github.com/xxxsen/pdflux/internal/config"
	"github.com/xxxsen/pdflux/internal/db"
	"github.com/xxxsen/pdflux/internal/filestore"
	"github.com/xxxsen/pdflux/internal/handler"
	"github.com/xxxsen/pdflux/internal/middleware"
	"github.com/xxxsen/pdflux/internal/repo"
	"github.com/xxxsen/pdflux/internal/service"
)

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "pdflux",
		Short: "pdflux backend server",
	}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run pdflux server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if configPath == "" {
				return fmt.Errorf("--config is required")
			}
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
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

			conn, err := db.Open(cfg.Database)
			if err != nil {
				return fmt.Errorf("open db: %w", err)
			}
			if err := db.ApplyMigrations(conn); err != nil {
				return fmt.Errorf("migrations: %w", err)
			}
			return runServer(cfg, conn)
		},
	}

	runCmd.Flags().StringVar(&configPath, "config", "", "path to config.json")
	rootCmd.AddCommand(runCmd)

	if err := rootCmd.Execute(); err != nil {
		logutil.GetLogger(context.Background()).Fatal("startup error", zap.Error(err))
	}
}

func runServer(cfg *config.Config, conn *sql.DB) error {
	logutil.GetLogger(context.Background()).Info(
		"starting server",
		zap.Int("port", cfg.Port),
		zap.String("file_store", cfg.FileStore.Type),
	)

	docRepo := repo.NewDocumentRepo(conn)
	interactionRepo := repo.NewInteractionRepo(conn)

	store, err := filestore.New(cfg.FileStore)
	if err != nil {
		return fmt.Errorf("init file store: %w", err)
	}

	providers := map[string]ai.IProvider{}
	for _, entry := range ai.Catalog() {
		args := cfg.AI.Providers[entry.Name]
		if args == nil {
			args = map[string]interface{}{}
		}
		provider, err := ai.NewProvider(entry.Name, args)
		if err != nil {
			return fmt.Errorf("init ai provider %s: %w", entry.Name, err)
		}
		providers[entry.Name] = provider
	}
	dispatcher := ai.NewDispatcher(providers, time.Duration(cfg.AI.Timeout)*time.Second)

	documentService := service.NewDocumentService(docRepo, interactionRepo, store)
	aiService := service.NewAIService(dispatcher, documentService, interactionRepo)
	exportService := service.NewExportService(documentService, interactionRepo)

	deps := handler.RouterDeps{
		Documents: handler.NewDocumentHandler(documentService, exportService, cfg.MaxUploadBytes),
		AI:        handler.NewAIHandler(aiService),
	}

	engine, err := webapi.NewEngine(
		"/api/v1",
		fmt.Sprintf("0.0.0.0:%d", cfg.Port),
		webapi.WithRegister(func(group *gin.RouterGroup) {
			handler.RegisterRoutes(group, deps)
		}),
		webapi.WithExtraMiddlewares(
			middleware.RequestID(),
			middleware.CORS(cfg.CORSOrigins),
			gzip.Gzip(gzip.DefaultCompression),
		),
	)
	if err != nil {
		return fmt.Errorf("init web engine: %w", err)
	}
	logutil.GetLogger(context.Background()).Info("http server listening", zap.String("addr", fmt.Sprintf("0.0.0.0:%d", cfg.Port)))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := engine.Run(); err != nil && err != http.ErrServerClosed {
			logutil.GetLogger(context.Background()).Error("server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logutil.GetLogger(context.Background()).Info("server stopping...")
	return nil
}

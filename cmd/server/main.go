package main

import (
	"GophShare/internal/blob"
	"GophShare/internal/config"
	"GophShare/internal/handlers"
	"GophShare/internal/middleware"
	"GophShare/internal/repo"
	"GophShare/internal/service"
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
)

func main() {
	cfg := config.NewConfig()

	// создаём предустановленный регистратор zap
	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}

	// делаем регистратор SugaredLogger
	sugar := logger.Sugar()
	middleware.SetLogger(sugar) // передаём логгер в middleware
	//сброс буфера логгера
	defer func() {
		if err := logger.Sync(); err != nil {
			sugar.Errorw("Failed to sync logger", "error", err)
		}
	}()

	//context
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	gormDB, err := repo.InitDB(cfg.DatabaseDSN)
	if err != nil {
		sugar.Fatalw("failed to initialize database", "error", err)
	}

	signer := blob.NewURLSigner(cfg.AuthSecret, cfg.PublicURL, cfg.BlobURLTTL)
	store, err := blob.New(ctx, cfg, signer)
	if err != nil {
		sugar.Fatalw("failed to initialize blob store", "store", cfg.BlobStore, "error", err)
	}
	if c, ok := store.(io.Closer); ok {
		defer func() { _ = c.Close() }()
	}

	policy, err := config.LoadUploadPolicy(cfg.UploadPolicyFile, cfg.UploadPolicy())
	if err != nil {
		sugar.Fatalw("invalid upload policy", "file", cfg.UploadPolicyFile, "error", err)
	}

	tx := repo.NewTxManager(gormDB)
	userRepo := repo.NewUserRepository(gormDB)
	folderRepo := repo.NewFolderRepository(gormDB)
	fileRepo := repo.NewFileRepository(gormDB)
	shareRepo := repo.NewShareRepository(gormDB)

	shareService := service.NewShareService(tx, shareRepo, folderRepo, sugar, service.ShareConfig{
		PublicURL:  cfg.PublicURL,
		DefaultTTL: cfg.ShareDefaultTTL,
	})
	svc := handlers.Services{
		Users:   service.NewUserService(userRepo),
		Folders: service.NewFolderService(tx, folderRepo, fileRepo, shareRepo, store, sugar),
		Files:   service.NewFileService(tx, fileRepo, folderRepo, store, policy, sugar),
		Shares:  shareService,
		Public:  service.NewPublicService(shareService, folderRepo, fileRepo, store, sugar),
		Blobs:   store,
		Signer:  signer,
	}

	h := handlers.NewHandler(svc, sugar, cfg)

	if cfg.SharePurgeInterval > 0 {
		go shareService.RunPurge(ctx, cfg.SharePurgeInterval)
	}

	addr := cfg.BaseURL

	sugar.Infow(
		"Starting server",
		"addr", addr,
	)

	sugar.Infow("Config",
		"BaseURL", cfg.BaseURL,
		"PublicURL", cfg.PublicURL,
		"EnableHTTPS", cfg.EnableHTTPS,
		"DatabaseDSN", cfg.DatabaseDSN,
		"BlobStore", cfg.BlobStore,
		"MaxFileSize", policy.MaxFileSize,
		"MaxBatchFiles", policy.MaxBatchFiles,
	)

	srv := &http.Server{Addr: addr, Handler: h.Router}
	go func() {
		<-ctx.Done()
		shutdownCtx, done := context.WithTimeout(context.Background(), 10*time.Second)
		defer done()
		_ = srv.Shutdown(shutdownCtx)
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		sugar.Fatalw("Server failed", "error", err)
	}
	sugar.Infow("Server stopped")
}

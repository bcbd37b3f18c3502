package handlers

import (
	"GophShare/internal/blob"
	"GophShare/internal/config"
	"GophShare/internal/middleware"
	"GophShare/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type Handler struct {
	Router chi.Router
}

// Services зависимости хендлеров.
type Services struct {
	Users   *service.UserService
	Folders *service.FolderService
	Files   *service.FileService
	Shares  *service.ShareService
	Public  *service.PublicService
	Blobs   blob.Store
	Signer  *blob.URLSigner
}

// NewHandler разводящий для хендлеров
func NewHandler(
	svc Services,
	logger *zap.SugaredLogger,
	config *config.Config,
) *Handler {
	r := chi.NewRouter()

	r.Use(middleware.WithGzip)
	r.Use(middleware.WithLogging)
	r.Use(middleware.WithAuth(config.AuthSecret))
	r.Use(middleware.WithTimeout(config.RequestTimeout))

	// Handlers
	userHandler := NewUserHandler(svc.Users, logger, config)
	folderHandler := NewFolderHandler(svc.Folders, svc.Files, logger)
	fileHandler := NewFileHandler(svc.Files, logger)
	shareHandler := NewShareHandler(svc.Shares, logger)
	publicHandler := NewPublicHandler(svc.Public, svc.Blobs, svc.Signer, logger)

	// User routes
	r.Post("/api/user/register", userHandler.Register)
	r.Post("/api/user/login", userHandler.Login)
	r.Post("/api/user/test", userHandler.Status)

	// Folder routes
	r.Post("/api/folders", folderHandler.Create)
	r.Get("/api/folders", folderHandler.ListRoots)
	r.Get("/api/folders/{id}", folderHandler.Get)
	r.Patch("/api/folders/{id}", folderHandler.Update)
	r.Delete("/api/folders/{id}", folderHandler.Delete)

	// File routes
	r.Post("/api/files", fileHandler.Upload)
	r.Get("/api/files", fileHandler.List)
	r.Get("/api/files/{id}", fileHandler.Get)
	r.Patch("/api/files/{id}", fileHandler.Update)
	r.Delete("/api/files/{id}", fileHandler.Delete)

	// Share routes
	r.Post("/api/folders/{id}/shares", shareHandler.Issue)
	r.Get("/api/shares", shareHandler.List)
	r.Delete("/api/shares/{id}", shareHandler.Revoke)

	// Public routes
	r.Get("/s/{token}", publicHandler.Open)
	r.Get("/s/{token}/files/{fileID}", publicHandler.File)
	r.Get("/blobs/{token}", publicHandler.Blob)

	return &Handler{Router: r}
}

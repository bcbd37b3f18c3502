package handlers_test

import (
	"GophShare/internal/blob"
	"GophShare/internal/config"
	"GophShare/internal/handlers"
	"GophShare/internal/middleware"
	"GophShare/internal/model"
	"GophShare/internal/repo"
	"GophShare/internal/service"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	_ "modernc.org/sqlite"
)

const testSecret = "test-secret"

// stack роутер поверх настоящих сервисов, SQLite в памяти и memory-хранилища.
type stack struct {
	router http.Handler
	users  repo.UserRepository
	blobs  *blob.MemoryStore
}

func newStack(t *testing.T) *stack {
	t.Helper()
	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(gormsqlite.Dialector{DriverName: "sqlite", DSN: dsn}, &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, repo.Migrate(db))

	cfg := &config.Config{
		AuthSecret:      testSecret,
		PublicURL:       "http://share.test",
		UploadMaxMB:     1,
		UploadMaxFiles:  3,
		ShareDefaultTTL: 7 * 24 * time.Hour,
	}
	logger := zap.NewNop().Sugar()

	tx := repo.NewTxManager(db)
	users := repo.NewUserRepository(db)
	folders := repo.NewFolderRepository(db)
	files := repo.NewFileRepository(db)
	shares := repo.NewShareRepository(db)
	signer := blob.NewURLSigner(testSecret, cfg.PublicURL, time.Minute)
	store := blob.NewMemoryStore(signer)

	shareSvc := service.NewShareService(tx, shares, folders, logger, service.ShareConfig{
		PublicURL:  cfg.PublicURL,
		DefaultTTL: cfg.ShareDefaultTTL,
	})
	h := handlers.NewHandler(handlers.Services{
		Users:   service.NewUserService(users),
		Folders: service.NewFolderService(tx, folders, files, shares, store, logger),
		Files:   service.NewFileService(tx, files, folders, store, cfg.UploadPolicy(), logger),
		Shares:  shareSvc,
		Public:  service.NewPublicService(shareSvc, folders, files, store, logger),
		Blobs:   store,
		Signer:  signer,
	}, logger, cfg)

	return &stack{router: h.Router, users: users, blobs: store}
}

func (s *stack) user(t *testing.T, email string) int64 {
	t.Helper()
	u, err := s.users.CreateUser(context.Background(), &model.User{Email: email, Password: "hash"})
	require.NoError(t, err)
	return u.ID
}

// do выполняет запрос от имени userID (0: анонимно).
func (s *stack) do(t *testing.T, userID int64, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rdr = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, target, rdr)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if userID != 0 {
		addAuthCookie(t, req, userID, testSecret)
	}
	rr := httptest.NewRecorder()
	s.router.ServeHTTP(rr, req)
	return rr
}

type part struct {
	name  string
	ctype string
	data  []byte
}

// upload отправляет multipart с частями "files".
func (s *stack) upload(t *testing.T, userID int64, folderID string, parts ...part) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if folderID != "" {
		require.NoError(t, mw.WriteField("folder_id", folderID))
	}
	for _, p := range parts {
		hdr := make(textproto.MIMEHeader)
		hdr.Set("Content-Disposition", `form-data; name="files"; filename="`+p.name+`"`)
		if p.ctype != "" {
			hdr.Set("Content-Type", p.ctype)
		}
		w, err := mw.CreatePart(hdr)
		require.NoError(t, err)
		_, err = w.Write(p.data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/files", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if userID != 0 {
		addAuthCookie(t, req, userID, testSecret)
	}
	rr := httptest.NewRecorder()
	s.router.ServeHTTP(rr, req)
	return rr
}

func (s *stack) mkdir(t *testing.T, userID int64, name string, parentID *string) model.Folder {
	t.Helper()
	rr := s.do(t, userID, http.MethodPost, "/api/folders", map[string]any{"name": name, "parent_id": parentID})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	var f model.Folder
	decode(t, rr, &f)
	return f
}

func addAuthCookie(t *testing.T, req *http.Request, userID int64, secret string) {
	t.Helper()
	rr := httptest.NewRecorder()
	_ = middleware.SetLoginCookie(rr, userID, secret)
	for _, c := range rr.Result().Cookies() {
		req.AddCookie(c)
	}
}

func decode(t *testing.T, rr *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(bytes.NewReader(rr.Body.Bytes())).Decode(v), rr.Body.String())
}
